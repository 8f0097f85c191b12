package domain

import (
	"errors"
	"time"
)

var (
	ErrGreetingNotFound = errors.New("greeting not found")
	ErrInvalidCursor    = errors.New("invalid cursor")
)

type Greeting struct {
	ID        string
	UserID    string
	Message   string
	CreatedAt time.Time
	UpdatedAt time.Time
}
