package handler

const (
	errInternalServer     = "Internal server error"
	errServiceUnavailable = "Service temporarily unavailable"
	errInvalidCredentials = "Invalid email or password"
	errDuplicateEmail     = "Email is already registered"
	errUserNotFound       = "User not found"
	errTokenInvalid       = "Token is invalid or expired"
	errGreetingNotFound   = "Greeting not found"
	errInvalidCursor      = "Invalid cursor"
	errInvalidLimit       = "limit must be an integer"
	errMissingResetToken  = "token query parameter is required"
	errUnauthorized       = "Unauthorized"
)
