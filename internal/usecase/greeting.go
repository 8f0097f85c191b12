package usecase

import (
	"context"
	"encoding/base64"
	"encoding/json"
	"fmt"
	"log/slog"
	"strings"
	"time"

	"github.com/ErlanBelekov/greeting-api/internal/domain"
	"github.com/ErlanBelekov/greeting-api/internal/repository"
)

const (
	defaultPageSize = 20
	maxPageSize     = 100
	maxMessageLen   = 1000

	defaultGreeting = "Hello, World!"
)

type GreetingUsecase struct {
	repo   repository.GreetingRepository
	logger *slog.Logger
}

func NewGreetingUsecase(repo repository.GreetingRepository, logger *slog.Logger) *GreetingUsecase {
	return &GreetingUsecase{repo: repo, logger: logger.With("component", "greeting_usecase")}
}

func (u *GreetingUsecase) Hello() string {
	return defaultGreeting
}

// Personalized greets by whichever names are present, falling back to the
// default greeting.
func (u *GreetingUsecase) Personalized(firstName, lastName string) string {
	first := strings.TrimSpace(firstName)
	last := strings.TrimSpace(lastName)

	switch {
	case first != "" && last != "":
		return "Hello, " + first + " " + last + "!"
	case first != "":
		return "Hello, " + first + "!"
	case last != "":
		return "Hello, " + last + "!"
	default:
		return defaultGreeting
	}
}

func (u *GreetingUsecase) Create(ctx context.Context, userID, message string) (*domain.Greeting, error) {
	message, err := validMessage(message)
	if err != nil {
		return nil, err
	}

	created, err := u.repo.Create(ctx, &domain.Greeting{UserID: userID, Message: message})
	if err != nil {
		return nil, fmt.Errorf("create greeting: %w", err)
	}
	return created, nil
}

func (u *GreetingUsecase) Get(ctx context.Context, id, userID string) (*domain.Greeting, error) {
	g, err := u.repo.GetByID(ctx, id, userID)
	if err != nil {
		return nil, fmt.Errorf("get greeting: %w", err)
	}
	return g, nil
}

type ListGreetingsInput struct {
	UserID string
	Cursor string
	Limit  int
}

type ListGreetingsResult struct {
	Greetings  []*domain.Greeting
	NextCursor *string
}

func (u *GreetingUsecase) List(ctx context.Context, input ListGreetingsInput) (ListGreetingsResult, error) {
	limit := input.Limit
	if limit <= 0 {
		limit = defaultPageSize
	}
	if limit > maxPageSize {
		limit = maxPageSize
	}

	repoInput := repository.ListGreetingsInput{
		UserID: input.UserID,
		Limit:  limit + 1,
	}

	if input.Cursor != "" {
		cursorTime, cursorID, err := decodeCursor(input.Cursor)
		if err != nil {
			return ListGreetingsResult{}, fmt.Errorf("%w: %w", domain.ErrInvalidCursor, err)
		}
		repoInput.CursorTime = cursorTime
		repoInput.CursorID = cursorID
	}

	greetings, err := u.repo.List(ctx, repoInput)
	if err != nil {
		return ListGreetingsResult{}, fmt.Errorf("list greetings: %w", err)
	}

	var nextCursor *string
	if len(greetings) > limit {
		greetings = greetings[:limit]
		last := greetings[limit-1]
		s := encodeCursor(last.CreatedAt, last.ID)
		nextCursor = &s
	}

	return ListGreetingsResult{Greetings: greetings, NextCursor: nextCursor}, nil
}

func (u *GreetingUsecase) Update(ctx context.Context, id, userID, message string) (*domain.Greeting, error) {
	message, err := validMessage(message)
	if err != nil {
		return nil, err
	}

	g, err := u.repo.Update(ctx, id, userID, message)
	if err != nil {
		return nil, fmt.Errorf("update greeting: %w", err)
	}
	return g, nil
}

func (u *GreetingUsecase) Delete(ctx context.Context, id, userID string) error {
	if err := u.repo.Delete(ctx, id, userID); err != nil {
		return fmt.Errorf("delete greeting: %w", err)
	}
	u.logger.InfoContext(ctx, "greeting deleted", "greeting_id", id, "user_id", userID)
	return nil
}

func validMessage(message string) (string, error) {
	message = strings.TrimSpace(message)
	if message == "" {
		return "", fmt.Errorf("%w: message is required", domain.ErrValidation)
	}
	if len(message) > maxMessageLen {
		return "", fmt.Errorf("%w: message exceeds %d bytes", domain.ErrValidation, maxMessageLen)
	}
	return message, nil
}

type cursor struct {
	CreatedAt time.Time `json:"c"`
	ID        string    `json:"i"`
}

func decodeCursor(s string) (*time.Time, string, error) {
	b, err := base64.RawURLEncoding.DecodeString(s)
	if err != nil {
		return nil, "", fmt.Errorf("decode cursor: %w", err)
	}
	var c cursor
	if err := json.Unmarshal(b, &c); err != nil {
		return nil, "", fmt.Errorf("unmarshal cursor: %w", err)
	}
	if c.ID == "" || c.CreatedAt.IsZero() {
		return nil, "", fmt.Errorf("cursor is incomplete")
	}
	return &c.CreatedAt, c.ID, nil
}

func encodeCursor(createdAt time.Time, id string) string {
	b, _ := json.Marshal(cursor{CreatedAt: createdAt, ID: id})
	return base64.RawURLEncoding.EncodeToString(b)
}
