package repository

import (
	"context"
	"time"

	"github.com/ErlanBelekov/greeting-api/internal/domain"
)

type ListGreetingsInput struct {
	UserID     string
	CursorTime *time.Time // nil = first page
	CursorID   string     // used only when CursorTime is non-nil
	Limit      int
}

// Every method is scoped by owner: a greeting that exists but belongs to
// another user is reported as domain.ErrGreetingNotFound.
type GreetingRepository interface {
	Create(ctx context.Context, greeting *domain.Greeting) (*domain.Greeting, error)
	GetByID(ctx context.Context, id, userID string) (*domain.Greeting, error)
	List(ctx context.Context, input ListGreetingsInput) ([]*domain.Greeting, error)
	Update(ctx context.Context, id, userID, message string) (*domain.Greeting, error)
	Delete(ctx context.Context, id, userID string) error
}
