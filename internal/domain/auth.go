package domain

import (
	"errors"
	"time"
)

var (
	ErrValidation         = errors.New("validation failed")
	ErrUserNotFound       = errors.New("user not found")
	ErrInvalidCredentials = errors.New("invalid email or password")
	ErrDuplicateEmail     = errors.New("email is already registered")
	ErrRegistrationFailed = errors.New("registration failed")
	ErrTokenInvalid       = errors.New("token is invalid or expired")
	ErrDependencyFailure  = errors.New("dependency unavailable")
	ErrUnauthorized       = errors.New("unauthorized")
)

type User struct {
	ID           string
	FirstName    string
	LastName     string
	Email        string
	PasswordHash string `json:"-"` // never leaves the repository/hasher boundary
	CreatedAt    time.Time
	UpdatedAt    time.Time
}

// UserProfile is the public projection of a User. It is what gets cached
// under user:<email> and returned to clients.
type UserProfile struct {
	FirstName string `json:"first_name"`
	LastName  string `json:"last_name"`
	Email     string `json:"email"`
}

func (u *User) Profile() UserProfile {
	return UserProfile{
		FirstName: u.FirstName,
		LastName:  u.LastName,
		Email:     u.Email,
	}
}
