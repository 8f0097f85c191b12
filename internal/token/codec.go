package token

import (
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/golang-jwt/jwt/v5"
	"github.com/google/uuid"
)

const (
	AudienceSession       = "session"
	AudiencePasswordReset = "password_reset"

	issuer = "greeting-api"
)

var (
	ErrBadSignature = errors.New("token signature is invalid")
	ErrExpired      = errors.New("token has expired")
	ErrMalformed    = errors.New("token is malformed")
)

var signingMethod = jwt.SigningMethodHS256

// Claims is the payload carried by both session and reset tokens.
// Subject holds the user id.
type Claims struct {
	Email string `json:"email"`
	jwt.RegisteredClaims
}

// Codec signs and verifies HS256 tokens for a single audience. Use one Codec
// per token purpose so a session token is never accepted as a reset token.
type Codec struct {
	secret   []byte
	audience string
	now      func() time.Time
	parser   *jwt.Parser
}

type Option func(*Codec)

// WithClock overrides time.Now for issuing and validating tokens.
func WithClock(now func() time.Time) Option {
	return func(c *Codec) { c.now = now }
}

func NewCodec(secret []byte, audience string, opts ...Option) *Codec {
	c := &Codec{
		secret:   secret,
		audience: audience,
		now:      time.Now,
	}
	for _, opt := range opts {
		opt(c)
	}
	c.parser = jwt.NewParser(
		jwt.WithValidMethods([]string{signingMethod.Alg()}),
		jwt.WithAudience(audience),
		jwt.WithIssuer(issuer),
		jwt.WithExpirationRequired(),
		jwt.WithStrictDecoding(),
		// exp is a whole second, so a token stays valid through the last
		// instant of that second.
		jwt.WithLeeway(time.Second),
		jwt.WithTimeFunc(func() time.Time { return c.now() }),
	)
	return c
}

// Encode stamps iat, exp, aud, iss and a random jti onto claims and signs them.
// exp is rounded up to the next whole second so a token never lapses before
// its ttl.
func (c *Codec) Encode(claims Claims, ttl time.Duration) (string, error) {
	now := c.now()
	claims.Issuer = issuer
	claims.Audience = jwt.ClaimStrings{c.audience}
	claims.IssuedAt = jwt.NewNumericDate(now)
	claims.ExpiresAt = jwt.NewNumericDate(ceilSecond(now.Add(ttl)))
	claims.ID = uuid.NewString()

	signed, err := jwt.NewWithClaims(signingMethod, claims).SignedString(c.secret)
	if err != nil {
		return "", fmt.Errorf("sign token: %w", err)
	}
	return signed, nil
}

func ceilSecond(t time.Time) time.Time {
	if r := t.Truncate(time.Second); !r.Equal(t) {
		return r.Add(time.Second)
	}
	return t
}

// Decode checks the signature before looking at any claim, then validates
// expiry, audience and issuer. It returns ErrBadSignature, ErrExpired or
// ErrMalformed (possibly wrapped) on failure.
func (c *Codec) Decode(raw string) (*Claims, error) {
	parts := strings.Split(raw, ".")
	if len(parts) != 3 {
		return nil, ErrMalformed
	}

	sig, err := c.parser.DecodeSegment(parts[2])
	if err != nil {
		return nil, ErrBadSignature
	}
	if err := signingMethod.Verify(parts[0]+"."+parts[1], sig, c.secret); err != nil {
		return nil, ErrBadSignature
	}

	claims := &Claims{}
	_, err = c.parser.ParseWithClaims(raw, claims, func(*jwt.Token) (any, error) {
		return c.secret, nil
	})
	switch {
	case err == nil:
		return claims, nil
	case errors.Is(err, jwt.ErrTokenExpired):
		return nil, ErrExpired
	default:
		return nil, fmt.Errorf("%w: %v", ErrMalformed, err)
	}
}
