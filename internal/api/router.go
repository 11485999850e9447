// internal/api/router.go

// Package api exposes the services over HTTP with gin. Every response is a
// JSON Envelope; errors are mapped by kind.
package api

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/gurkanbulca/taskboard/internal/middleware"
	"github.com/gurkanbulca/taskboard/internal/service"
)

// Options configures the HTTP surface.
type Options struct {
	// Development exposes internal error details in responses.
	Development       bool
	AllowUserIDHeader bool
	MaxBodyBytes      int64
}

// Server is the HTTP API.
type Server struct {
	services    *service.Services
	development bool
	router      *gin.Engine
}

// NewServer builds the router and registers every route.
func NewServer(services *service.Services, opts Options) *Server {
	router := gin.New()
	router.HandleMethodNotAllowed = false

	s := &Server{
		services:    services,
		development: opts.Development,
		router:      router,
	}

	validation := middleware.DefaultValidationConfig()
	if opts.MaxBodyBytes > 0 {
		validation.MaxBodyBytes = opts.MaxBodyBytes
	}

	router.Use(
		middleware.ClientInfoMiddleware(),
		middleware.RequestLogger(),
		recovery(s.development),
		errorRenderer(s.development),
		middleware.NewRequestValidator(validation).Handler(),
		middleware.NewAuthMiddleware(services.Users, opts.AllowUserIDHeader).Handler(),
	)
	router.NoRoute(notFound)

	router.GET("/health", s.handleHealth)
	router.GET("/stats", s.handleStats)

	users := router.Group("/users")
	{
		users.POST("", s.handleRegister)
		users.POST("/register", s.handleRegister)
		users.POST("/login", s.handleLogin)
		users.POST("/token/refresh", s.handleRefresh)
		users.GET("/:id", s.handleGetUser)
		users.GET("/:id/profile", s.handleProfile)
		users.PUT("/:id", s.handleUpdateUser)
		users.PATCH("/:id", s.handleUpdateUser)
	}

	categories := router.Group("/categories")
	{
		categories.GET("", s.handleListCategories)
		categories.POST("", s.handleCreateCategory)
		categories.GET("/:id", s.handleGetCategory)
		categories.PUT("/:id", s.handleUpdateCategory)
		categories.PATCH("/:id", s.handleUpdateCategory)
		categories.DELETE("/:id", s.handleDeleteCategory)
	}

	tags := router.Group("/tags")
	{
		tags.GET("", s.handleListTags)
		tags.POST("", s.handleCreateTag)
		tags.GET("/:id", s.handleGetTag)
		tags.PUT("/:id", s.handleUpdateTag)
		tags.PATCH("/:id", s.handleUpdateTag)
		tags.DELETE("/:id", s.handleDeleteTag)
	}

	tasks := router.Group("/tasks")
	{
		tasks.GET("", s.handleListTasks)
		tasks.POST("", s.handleCreateTask)
		for _, status := range taskStatusShortcuts {
			tasks.GET("/"+string(status), s.handleListTasksByStatus(status))
		}
		tasks.GET("/:id", s.handleGetTask)
		tasks.PUT("/:id", s.handleUpdateTask)
		tasks.PATCH("/:id", s.handleUpdateTask)
		tasks.DELETE("/:id", s.handleDeleteTask)
		for path, tr := range taskTransitions {
			tasks.PATCH("/:id/"+path, s.handleTransition(tr))
		}
	}

	return s
}

// Handler returns the root HTTP handler.
func (s *Server) Handler() http.Handler {
	return s.router
}
