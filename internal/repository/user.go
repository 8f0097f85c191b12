package repository

import (
	"context"

	"github.com/ErlanBelekov/greeting-api/internal/domain"
)

// UserRepository is the durable store of user records. Emails passed in are
// expected to be normalized already.
type UserRepository interface {
	FindByEmail(ctx context.Context, email string) (*domain.User, error)
	FindByID(ctx context.Context, id string) (*domain.User, error)
	Create(ctx context.Context, user *domain.User) (*domain.User, error)
	UpdatePassword(ctx context.Context, id, passwordHash string) error
}
