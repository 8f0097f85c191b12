package usecase

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"strings"
	"time"

	"github.com/ErlanBelekov/greeting-api/internal/cache"
	"github.com/ErlanBelekov/greeting-api/internal/domain"
	"github.com/ErlanBelekov/greeting-api/internal/email"
	"github.com/ErlanBelekov/greeting-api/internal/metrics"
	"github.com/ErlanBelekov/greeting-api/internal/password"
	"github.com/ErlanBelekov/greeting-api/internal/repository"
	"github.com/ErlanBelekov/greeting-api/internal/token"
	"github.com/go-playground/validator/v10"
	"github.com/golang-jwt/jwt/v5"
)

const (
	defaultSessionTTL      = 24 * time.Hour
	defaultResetTokenTTL   = 15 * time.Minute
	defaultProfileCacheTTL = 10 * time.Minute
)

type AuthConfig struct {
	SessionTTL       time.Duration
	ResetTokenTTL    time.Duration
	ProfileCacheTTL  time.Duration
	ResetLinkBaseURL string
}

type AuthUsecase struct {
	users     repository.UserRepository
	cache     cache.Store
	email     email.Sender
	hasher    passwordHasher
	sessions  *token.Codec
	resets    *token.Codec
	validate  *validator.Validate
	cfg       AuthConfig
	logger    *slog.Logger
	dummyHash string
}

// passwordHasher is satisfied by *password.Hasher.
type passwordHasher interface {
	Hash(plaintext string) (string, error)
	Verify(plaintext, encoded string) bool
}

var _ passwordHasher = (*password.Hasher)(nil)

func NewAuthUsecase(
	users repository.UserRepository,
	store cache.Store,
	sender email.Sender,
	hasher passwordHasher,
	sessions, resets *token.Codec,
	cfg AuthConfig,
	logger *slog.Logger,
) (*AuthUsecase, error) {
	if cfg.SessionTTL <= 0 {
		cfg.SessionTTL = defaultSessionTTL
	}
	if cfg.ResetTokenTTL <= 0 {
		cfg.ResetTokenTTL = defaultResetTokenTTL
	}
	if cfg.ProfileCacheTTL <= 0 {
		cfg.ProfileCacheTTL = defaultProfileCacheTTL
	}

	// Verified against when the email is unknown so both Login failures cost
	// one key derivation. An empty hash would short-circuit Verify.
	dummyHash, err := hasher.Hash("dummy-password")
	if err != nil {
		return nil, fmt.Errorf("prepare dummy hash: %w", err)
	}

	return &AuthUsecase{
		users:     users,
		cache:     store,
		email:     sender,
		hasher:    hasher,
		sessions:  sessions,
		resets:    resets,
		validate:  validator.New(),
		cfg:       cfg,
		logger:    logger.With("component", "auth_usecase"),
		dummyHash: dummyHash,
	}, nil
}

type RegisterInput struct {
	FirstName string `validate:"max=100"`
	LastName  string `validate:"max=100"`
	Email     string `validate:"required,email,max=254"`
	Password  string `validate:"required,max=1024"`
}

// Register creates the user record and warms the profile cache. Any
// repository failure is reported as ErrRegistrationFailed, wrapping
// ErrDuplicateEmail when the email is taken.
func (u *AuthUsecase) Register(ctx context.Context, input RegisterInput) (_ domain.UserProfile, err error) {
	defer func() { observe("register", err) }()

	input.Email = normalizeEmail(input.Email)
	input.FirstName = strings.TrimSpace(input.FirstName)
	input.LastName = strings.TrimSpace(input.LastName)
	if err := u.validate.Struct(input); err != nil {
		return domain.UserProfile{}, fmt.Errorf("%w: %w", domain.ErrValidation, err)
	}

	hash, err := u.hash(input.Password)
	if err != nil {
		return domain.UserProfile{}, err
	}

	user, err := u.users.Create(ctx, &domain.User{
		FirstName:    input.FirstName,
		LastName:     input.LastName,
		Email:        input.Email,
		PasswordHash: hash,
	})
	if err != nil {
		if errors.Is(err, domain.ErrDuplicateEmail) {
			return domain.UserProfile{}, fmt.Errorf("%w: %w", domain.ErrRegistrationFailed, domain.ErrDuplicateEmail)
		}
		return domain.UserProfile{}, fmt.Errorf("%w: %w: %w", domain.ErrRegistrationFailed, domain.ErrDependencyFailure, err)
	}

	profile := user.Profile()
	u.cacheProfile(ctx, profile)
	return profile, nil
}

// Login returns a session token. An unknown email and a wrong password both
// yield exactly domain.ErrInvalidCredentials.
func (u *AuthUsecase) Login(ctx context.Context, emailAddr, plaintext string) (_ string, err error) {
	defer func() { observe("login", err) }()

	emailAddr = normalizeEmail(emailAddr)
	if emailAddr == "" || plaintext == "" {
		return "", domain.ErrInvalidCredentials
	}

	_, hit := u.cachedProfile(ctx, emailAddr)

	// The cache never holds password material, so the record is read even on
	// a hit.
	user, err := u.users.FindByEmail(ctx, emailAddr)
	switch {
	case errors.Is(err, domain.ErrUserNotFound):
		if hit {
			u.evict(ctx, cache.UserKey(emailAddr))
		}
		u.verify(plaintext, u.dummyHash)
		return "", domain.ErrInvalidCredentials
	case err != nil:
		return "", fmt.Errorf("%w: find user: %w", domain.ErrDependencyFailure, err)
	}

	if !hit {
		u.cacheProfile(ctx, user.Profile())
	}

	if !u.verify(plaintext, user.PasswordHash) {
		return "", domain.ErrInvalidCredentials
	}

	signed, err := u.sessions.Encode(token.Claims{
		Email:            user.Email,
		RegisteredClaims: jwt.RegisteredClaims{Subject: user.ID},
	}, u.cfg.SessionTTL)
	if err != nil {
		return "", fmt.Errorf("issue session token: %w", err)
	}
	return signed, nil
}

// ForgotPassword issues a reset token for a known email and mails it. The
// token is recorded under resetToken:<email> only after the mail was
// accepted, replacing any outstanding token at that point.
func (u *AuthUsecase) ForgotPassword(ctx context.Context, emailAddr string) (err error) {
	defer func() { observe("forgot_password", err) }()

	emailAddr = normalizeEmail(emailAddr)
	if err := u.validate.Var(emailAddr, "required,email"); err != nil {
		return fmt.Errorf("%w: %w", domain.ErrValidation, err)
	}

	user, err := u.users.FindByEmail(ctx, emailAddr)
	if err != nil {
		if errors.Is(err, domain.ErrUserNotFound) {
			return domain.ErrUserNotFound
		}
		return fmt.Errorf("%w: find user: %w", domain.ErrDependencyFailure, err)
	}

	raw, err := u.resets.Encode(token.Claims{
		Email:            user.Email,
		RegisteredClaims: jwt.RegisteredClaims{Subject: user.ID},
	}, u.cfg.ResetTokenTTL)
	if err != nil {
		return fmt.Errorf("issue reset token: %w", err)
	}

	msg, err := email.PasswordReset(user.Email, u.cfg.ResetLinkBaseURL, raw, u.cfg.ResetTokenTTL)
	if err != nil {
		return err
	}

	if err := u.email.Send(ctx, msg); err != nil {
		metrics.ResetEmailsTotal.WithLabelValues("failed").Inc()
		return fmt.Errorf("%w: send reset email: %w", domain.ErrDependencyFailure, err)
	}
	metrics.ResetEmailsTotal.WithLabelValues("sent").Inc()

	// The entry is written only after the mail was accepted, so a failed
	// dispatch leaves any earlier link usable.
	if err := u.cache.Set(ctx, cache.ResetTokenKey(user.Email), raw, u.cfg.ResetTokenTTL); err != nil {
		return fmt.Errorf("%w: store reset token: %w", domain.ErrDependencyFailure, err)
	}

	u.logger.InfoContext(ctx, "password reset requested", "user_id", user.ID)
	return nil
}

// ResetPassword consumes a reset token and replaces the password hash. The
// outstanding-token entry is claimed with a single compare-and-delete, so a
// token succeeds at most once even under concurrent use.
func (u *AuthUsecase) ResetPassword(ctx context.Context, raw, newPlaintext string) (err error) {
	defer func() { observe("reset_password", err) }()

	if err := u.validate.Var(newPlaintext, "required,max=1024"); err != nil {
		return fmt.Errorf("%w: %w", domain.ErrValidation, err)
	}

	claims, err := u.resets.Decode(raw)
	if err != nil {
		return fmt.Errorf("%w: %w", domain.ErrTokenInvalid, err)
	}
	emailAddr := normalizeEmail(claims.Email)

	claimed, err := u.cache.CompareAndDelete(ctx, cache.ResetTokenKey(emailAddr), raw)
	if err != nil {
		return fmt.Errorf("%w: claim reset token: %w", domain.ErrDependencyFailure, err)
	}
	if !claimed {
		return domain.ErrTokenInvalid
	}

	user, err := u.users.FindByEmail(ctx, emailAddr)
	if err != nil {
		if errors.Is(err, domain.ErrUserNotFound) {
			return domain.ErrUserNotFound
		}
		return fmt.Errorf("%w: find user: %w", domain.ErrDependencyFailure, err)
	}
	if user.ID != claims.Subject {
		return domain.ErrTokenInvalid
	}

	hash, err := u.hash(newPlaintext)
	if err != nil {
		return err
	}
	if err := u.users.UpdatePassword(ctx, user.ID, hash); err != nil {
		if errors.Is(err, domain.ErrUserNotFound) {
			return domain.ErrUserNotFound
		}
		return fmt.Errorf("%w: update password: %w", domain.ErrDependencyFailure, err)
	}

	u.logger.InfoContext(ctx, "password reset completed", "user_id", user.ID)
	return nil
}

// Profile returns the public projection of the user, served from the cache
// when possible.
func (u *AuthUsecase) Profile(ctx context.Context, emailAddr string) (domain.UserProfile, error) {
	emailAddr = normalizeEmail(emailAddr)

	if p, ok := u.cachedProfile(ctx, emailAddr); ok {
		return p, nil
	}

	user, err := u.users.FindByEmail(ctx, emailAddr)
	if err != nil {
		if errors.Is(err, domain.ErrUserNotFound) {
			return domain.UserProfile{}, domain.ErrUserNotFound
		}
		return domain.UserProfile{}, fmt.Errorf("%w: find user: %w", domain.ErrDependencyFailure, err)
	}

	profile := user.Profile()
	u.cacheProfile(ctx, profile)
	return profile, nil
}

// cachedProfile treats cache errors as misses.
func (u *AuthUsecase) cachedProfile(ctx context.Context, emailAddr string) (domain.UserProfile, bool) {
	p, ok, err := cache.Get[domain.UserProfile](ctx, u.cache, cache.UserKey(emailAddr))
	switch {
	case err != nil:
		metrics.CacheLookupsTotal.WithLabelValues("user", "error").Inc()
		u.logger.WarnContext(ctx, "profile cache read failed", "error", err)
		return domain.UserProfile{}, false
	case !ok:
		metrics.CacheLookupsTotal.WithLabelValues("user", "miss").Inc()
		return domain.UserProfile{}, false
	}
	metrics.CacheLookupsTotal.WithLabelValues("user", "hit").Inc()
	return p, true
}

func (u *AuthUsecase) cacheProfile(ctx context.Context, p domain.UserProfile) {
	if err := u.cache.Set(ctx, cache.UserKey(p.Email), p, u.cfg.ProfileCacheTTL); err != nil {
		u.logger.WarnContext(ctx, "profile cache write failed", "error", err)
	}
}

func (u *AuthUsecase) evict(ctx context.Context, key string) {
	if err := u.cache.Remove(ctx, key); err != nil {
		u.logger.WarnContext(ctx, "cache remove failed", "key", key, "error", err)
	}
}

func (u *AuthUsecase) hash(plaintext string) (string, error) {
	start := time.Now()
	defer func() { metrics.PasswordHashDuration.WithLabelValues("hash").Observe(time.Since(start).Seconds()) }()

	h, err := u.hasher.Hash(plaintext)
	if err != nil {
		return "", fmt.Errorf("hash password: %w", err)
	}
	return h, nil
}

func (u *AuthUsecase) verify(plaintext, encoded string) bool {
	start := time.Now()
	defer func() { metrics.PasswordHashDuration.WithLabelValues("verify").Observe(time.Since(start).Seconds()) }()

	return u.hasher.Verify(plaintext, encoded)
}

func normalizeEmail(s string) string {
	return strings.ToLower(strings.TrimSpace(s))
}

func observe(operation string, err error) {
	metrics.AuthOperationsTotal.WithLabelValues(operation, outcome(err)).Inc()
}

func outcome(err error) string {
	switch {
	case err == nil:
		return "success"
	case errors.Is(err, domain.ErrValidation):
		return "invalid_input"
	case errors.Is(err, domain.ErrInvalidCredentials):
		return "invalid_credentials"
	case errors.Is(err, domain.ErrDuplicateEmail):
		return "duplicate"
	case errors.Is(err, domain.ErrTokenInvalid):
		return "invalid_token"
	case errors.Is(err, domain.ErrUserNotFound):
		return "not_found"
	case errors.Is(err, domain.ErrDependencyFailure):
		return "dependency_failure"
	default:
		return "error"
	}
}
