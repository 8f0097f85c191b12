package handler

import (
	"context"
	"errors"
	"log/slog"
	"net/http"
	"strconv"
	"time"

	"github.com/ErlanBelekov/greeting-api/internal/domain"
	"github.com/ErlanBelekov/greeting-api/internal/transport/http/middleware"
	"github.com/ErlanBelekov/greeting-api/internal/usecase"
	"github.com/gin-gonic/gin"
)

type greetingUsecaser interface {
	Hello() string
	Personalized(firstName, lastName string) string
	Create(ctx context.Context, userID, message string) (*domain.Greeting, error)
	Get(ctx context.Context, id, userID string) (*domain.Greeting, error)
	List(ctx context.Context, input usecase.ListGreetingsInput) (usecase.ListGreetingsResult, error)
	Update(ctx context.Context, id, userID, message string) (*domain.Greeting, error)
	Delete(ctx context.Context, id, userID string) error
}

type GreetingHandler struct {
	greetingUsecase greetingUsecaser
	logger          *slog.Logger
}

func NewGreetingHandler(greetingUsecase greetingUsecaser, logger *slog.Logger) *GreetingHandler {
	return &GreetingHandler{
		greetingUsecase: greetingUsecase,
		logger:          logger.With("component", "greeting_handler"),
	}
}

type personalizedRequest struct {
	FirstName string `json:"first_name"`
	LastName  string `json:"last_name"`
}

type greetingRequest struct {
	Message string `json:"message" binding:"required"`
}

type greetingResponse struct {
	ID        string    `json:"id"`
	Message   string    `json:"message"`
	CreatedAt time.Time `json:"created_at"`
	UpdatedAt time.Time `json:"updated_at"`
}

type listGreetingsResponse struct {
	Greetings  []greetingResponse `json:"greetings"`
	NextCursor *string            `json:"next_cursor"`
}

func toGreetingResponse(g *domain.Greeting) greetingResponse {
	return greetingResponse{
		ID:        g.ID,
		Message:   g.Message,
		CreatedAt: g.CreatedAt,
		UpdatedAt: g.UpdatedAt,
	}
}

// GET /hello
func (h *GreetingHandler) Hello(c *gin.Context) {
	c.JSON(http.StatusOK, messageResponse{Message: h.greetingUsecase.Hello()})
}

// POST /hello/personalized
// Both names are optional; an empty body greets the world.
func (h *GreetingHandler) Personalized(c *gin.Context) {
	var req personalizedRequest
	if c.Request.ContentLength != 0 {
		if err := c.ShouldBindJSON(&req); err != nil {
			c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
			return
		}
	}

	c.JSON(http.StatusOK, messageResponse{Message: h.greetingUsecase.Personalized(req.FirstName, req.LastName)})
}

// POST /greetings
func (h *GreetingHandler) Create(c *gin.Context) {
	var req greetingRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	g, err := h.greetingUsecase.Create(c.Request.Context(), c.GetString(middleware.UserIDKey), req.Message)
	if err != nil {
		h.respondError(c, "create greeting", err)
		return
	}

	c.JSON(http.StatusCreated, toGreetingResponse(g))
}

// GET /greetings?limit=&cursor=
func (h *GreetingHandler) List(c *gin.Context) {
	limit := 0
	if raw := c.Query("limit"); raw != "" {
		n, err := strconv.Atoi(raw)
		if err != nil {
			c.JSON(http.StatusBadRequest, gin.H{"error": errInvalidLimit})
			return
		}
		limit = n
	}

	res, err := h.greetingUsecase.List(c.Request.Context(), usecase.ListGreetingsInput{
		UserID: c.GetString(middleware.UserIDKey),
		Cursor: c.Query("cursor"),
		Limit:  limit,
	})
	if err != nil {
		h.respondError(c, "list greetings", err)
		return
	}

	items := make([]greetingResponse, 0, len(res.Greetings))
	for _, g := range res.Greetings {
		items = append(items, toGreetingResponse(g))
	}

	c.JSON(http.StatusOK, listGreetingsResponse{Greetings: items, NextCursor: res.NextCursor})
}

// GET /greetings/:id
func (h *GreetingHandler) GetByID(c *gin.Context) {
	g, err := h.greetingUsecase.Get(c.Request.Context(), c.Param("id"), c.GetString(middleware.UserIDKey))
	if err != nil {
		h.respondError(c, "get greeting", err)
		return
	}

	c.JSON(http.StatusOK, toGreetingResponse(g))
}

// PUT /greetings/:id
func (h *GreetingHandler) Update(c *gin.Context) {
	var req greetingRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	g, err := h.greetingUsecase.Update(c.Request.Context(), c.Param("id"), c.GetString(middleware.UserIDKey), req.Message)
	if err != nil {
		h.respondError(c, "update greeting", err)
		return
	}

	c.JSON(http.StatusOK, toGreetingResponse(g))
}

// DELETE /greetings/:id
func (h *GreetingHandler) Delete(c *gin.Context) {
	if err := h.greetingUsecase.Delete(c.Request.Context(), c.Param("id"), c.GetString(middleware.UserIDKey)); err != nil {
		h.respondError(c, "delete greeting", err)
		return
	}

	c.Status(http.StatusNoContent)
}

func (h *GreetingHandler) respondError(c *gin.Context, op string, err error) {
	switch {
	case errors.Is(err, domain.ErrValidation):
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
	case errors.Is(err, domain.ErrInvalidCursor):
		c.JSON(http.StatusBadRequest, gin.H{"error": errInvalidCursor})
	case errors.Is(err, domain.ErrGreetingNotFound):
		c.JSON(http.StatusNotFound, gin.H{"error": errGreetingNotFound})
	default:
		h.logger.ErrorContext(c.Request.Context(), op, "error", err)
		c.JSON(http.StatusInternalServerError, gin.H{"error": errInternalServer})
	}
}
