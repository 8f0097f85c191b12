package postgres

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"github.com/ErlanBelekov/greeting-api/internal/domain"
	"github.com/ErlanBelekov/greeting-api/internal/repository"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
)

const greetingColumns = `id, user_id, message, created_at, updated_at`

type GreetingRepository struct {
	pool *pgxpool.Pool
}

func NewGreetingRepository(pool *pgxpool.Pool) *GreetingRepository {
	return &GreetingRepository{pool: pool}
}

func (r *GreetingRepository) Create(ctx context.Context, g *domain.Greeting) (*domain.Greeting, error) {
	query := `
		INSERT INTO greetings (user_id, message)
		VALUES ($1, $2)
		RETURNING ` + greetingColumns

	created, err := scanGreeting(r.pool.QueryRow(ctx, query, g.UserID, g.Message))
	if err != nil {
		return nil, fmt.Errorf("insert greeting: %w", err)
	}
	return created, nil
}

func (r *GreetingRepository) GetByID(ctx context.Context, id, userID string) (*domain.Greeting, error) {
	query := `SELECT ` + greetingColumns + ` FROM greetings WHERE id = $1 AND user_id = $2`

	g, err := scanGreeting(r.pool.QueryRow(ctx, query, id, userID))
	if isInvalidText(err) {
		return nil, domain.ErrGreetingNotFound
	}
	return g, err
}

func (r *GreetingRepository) List(ctx context.Context, input repository.ListGreetingsInput) ([]*domain.Greeting, error) {
	args := []any{input.UserID}
	where := []string{"user_id = $1"}

	if input.CursorTime != nil {
		args = append(args, *input.CursorTime, input.CursorID)
		where = append(where, fmt.Sprintf("(created_at, id) < ($%d, $%d)", len(args)-1, len(args)))
	}
	args = append(args, input.Limit)

	query := fmt.Sprintf(`
		SELECT %s
		FROM greetings
		WHERE %s
		ORDER BY created_at DESC, id DESC
		LIMIT $%d`,
		greetingColumns, strings.Join(where, " AND "), len(args))

	rows, err := r.pool.Query(ctx, query, args...)
	if err != nil {
		if isInvalidText(err) {
			return nil, domain.ErrInvalidCursor
		}
		return nil, fmt.Errorf("list greetings: %w", err)
	}
	defer rows.Close()

	var greetings []*domain.Greeting
	for rows.Next() {
		g, err := scanGreeting(rows)
		if err != nil {
			return nil, err
		}
		greetings = append(greetings, g)
	}
	if err := rows.Err(); err != nil {
		if isInvalidText(err) {
			return nil, domain.ErrInvalidCursor
		}
		return nil, fmt.Errorf("list greetings: %w", err)
	}
	return greetings, nil
}

func (r *GreetingRepository) Update(ctx context.Context, id, userID, message string) (*domain.Greeting, error) {
	query := `
		UPDATE greetings
		SET    message = $3, updated_at = NOW()
		WHERE  id = $1 AND user_id = $2
		RETURNING ` + greetingColumns

	g, err := scanGreeting(r.pool.QueryRow(ctx, query, id, userID, message))
	if isInvalidText(err) {
		return nil, domain.ErrGreetingNotFound
	}
	return g, err
}

func (r *GreetingRepository) Delete(ctx context.Context, id, userID string) error {
	tag, err := r.pool.Exec(ctx, `DELETE FROM greetings WHERE id = $1 AND user_id = $2`, id, userID)
	if err != nil {
		if isInvalidText(err) {
			return domain.ErrGreetingNotFound
		}
		return fmt.Errorf("delete greeting: %w", err)
	}
	if tag.RowsAffected() == 0 {
		return domain.ErrGreetingNotFound
	}
	return nil
}

func scanGreeting(row rowScanner) (*domain.Greeting, error) {
	var g domain.Greeting
	err := row.Scan(&g.ID, &g.UserID, &g.Message, &g.CreatedAt, &g.UpdatedAt)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, domain.ErrGreetingNotFound
		}
		return nil, fmt.Errorf("scan greeting: %w", err)
	}
	return &g, nil
}
