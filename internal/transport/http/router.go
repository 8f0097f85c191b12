package httptransport

import (
	"log/slog"

	"github.com/ErlanBelekov/greeting-api/internal/token"
	"github.com/ErlanBelekov/greeting-api/internal/transport/http/handler"
	"github.com/ErlanBelekov/greeting-api/internal/transport/http/middleware"
	"github.com/gin-gonic/gin"

	sloggin "github.com/samber/slog-gin"
)

func NewRouter(logger *slog.Logger, authHandler *handler.AuthHandler, greetingHandler *handler.GreetingHandler, sessions *token.Codec) *gin.Engine {
	r := gin.New()
	r.Use(gin.Recovery())
	r.Use(middleware.RequestID())
	r.Use(middleware.Security())
	r.Use(sloggin.New(logger))
	r.Use(middleware.Metrics())

	authMW := middleware.Auth(sessions)

	r.GET("/hello", greetingHandler.Hello)
	r.POST("/hello/personalized", greetingHandler.Personalized)

	users := r.Group("/users")
	users.POST("/register", authHandler.Register)
	users.POST("/login", authHandler.Login)
	users.POST("/forgot-password", authHandler.ForgotPassword)
	users.POST("/reset-password", authHandler.ResetPassword)
	users.GET("/me", authMW, authHandler.Me)

	// Protected greeting routes
	greetings := r.Group("/greetings", authMW)
	greetings.POST("", greetingHandler.Create)
	greetings.GET("", greetingHandler.List)
	greetings.GET("/:id", greetingHandler.GetByID)
	greetings.PUT("/:id", greetingHandler.Update)
	greetings.DELETE("/:id", greetingHandler.Delete)

	return r
}
