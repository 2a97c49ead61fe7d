package handlers

import (
	"log/slog"
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/yukikurage/taskboard-api/internal/middleware"
	"github.com/yukikurage/taskboard-api/internal/repository"
	"github.com/yukikurage/taskboard-api/internal/services"
	"golang.org/x/time/rate"
)

// RouterConfig carries what the routes need. The sessions middleware must
// already be installed on the engine.
type RouterConfig struct {
	AuthService   *services.AuthService
	TaskRepo      repository.TaskRepository
	Policy        services.TaskPolicy
	Logger        *slog.Logger
	AuthRateLimit rate.Limit
	AuthRateBurst int
}

// RegisterRoutes mounts the health check, auth and task endpoints on r.
func RegisterRoutes(r *gin.Engine, cfg RouterConfig) {
	authHandler := NewAuthHandler(cfg.AuthService, cfg.Logger)
	taskHandler := NewTaskHandler(cfg.TaskRepo, cfg.Policy, cfg.Logger)

	r.GET("/health", func(c *gin.Context) {
		c.JSON(http.StatusOK, gin.H{
			"status":  "ok",
			"message": "Task board API is running",
		})
	})

	api := r.Group("/api")
	api.Use(middleware.LoadSession(cfg.AuthService, cfg.Logger))
	{
		auth := api.Group("/auth")
		if cfg.AuthRateLimit > 0 {
			auth.Use(middleware.RateLimiter(cfg.AuthRateLimit, cfg.AuthRateBurst))
		}
		{
			auth.POST("/signup", authHandler.Signup)
			auth.POST("/login", authHandler.Login)
			auth.POST("/logout", authHandler.Logout)
			auth.GET("/me", middleware.RequireAuth(), authHandler.GetCurrentUser)
		}

		// listing works logged out and returns nothing; mutations answer 401
		tasks := api.Group("/tasks")
		{
			tasks.GET("", taskHandler.ListTasks)
			tasks.GET("/board", taskHandler.Board)
			tasks.POST("", taskHandler.CreateTask)
			tasks.GET("/:id", middleware.RequireTaskID(), taskHandler.GetTask)
			tasks.PUT("/:id", middleware.RequireTaskID(), taskHandler.UpdateTask)
			tasks.PATCH("/:id/status", middleware.RequireTaskID(), taskHandler.UpdateStatus)
			tasks.DELETE("/:id", middleware.RequireTaskID(), taskHandler.DeleteTask)
		}
	}
}
