package main

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"net/http"
	"os"
	"time"

	gfshutdown "github.com/gelmium/graceful-shutdown"
	"github.com/gin-contrib/sessions"
	"github.com/gin-contrib/sessions/cookie"
	redisStore "github.com/gin-contrib/sessions/redis"
	"github.com/gin-gonic/gin"
	"github.com/spf13/cobra"
	"github.com/yukikurage/taskboard-api/internal/config"
	"github.com/yukikurage/taskboard-api/internal/constants"
	"github.com/yukikurage/taskboard-api/internal/database"
	"github.com/yukikurage/taskboard-api/internal/docstore"
	"github.com/yukikurage/taskboard-api/internal/handlers"
	"github.com/yukikurage/taskboard-api/internal/middleware"
	"github.com/yukikurage/taskboard-api/internal/repository"
	"github.com/yukikurage/taskboard-api/internal/services"
	"golang.org/x/time/rate"
)

func serveCmd() *cobra.Command {
	var shutdownTimeout time.Duration

	cmd := &cobra.Command{
		Use:   "serve",
		Short: "Run the HTTP API",
		RunE: func(cmd *cobra.Command, args []string) error {
			return runServe(cmd.Context(), config.Load(), shutdownTimeout)
		},
	}

	cmd.Flags().DurationVar(&shutdownTimeout, "shutdown-timeout", 10*time.Second, "time allowed for in-flight requests on shutdown")
	return cmd
}

func newLogger(cfg *config.Config) *slog.Logger {
	logger := slog.New(slog.NewTextHandler(os.Stderr, &slog.HandlerOptions{Level: cfg.SlogLevel()}))
	slog.SetDefault(logger)
	return logger
}

func runServe(ctx context.Context, cfg *config.Config, shutdownTimeout time.Duration) error {
	if ctx == nil {
		ctx = context.Background()
	}
	logger := newLogger(cfg)
	gin.SetMode(cfg.GinMode)

	store, closeStore, err := openDocStore(ctx, cfg)
	if err != nil {
		return err
	}

	sessionStore, err := newSessionStore(cfg)
	if err != nil {
		closeStore(ctx)
		return err
	}

	r := gin.New()
	r.Use(gin.Logger())
	r.Use(middleware.RecoveryWithLog(logger))
	r.Use(sessions.Sessions(constants.SessionCookieName, sessionStore))

	handlers.RegisterRoutes(r, handlers.RouterConfig{
		AuthService: services.NewAuthService(repository.NewUserRepository(store)),
		TaskRepo:    repository.NewTaskRepository(store),
		Policy: services.TaskPolicy{
			RejectPastDueDate: cfg.RejectPastDueDate,
			RequireDueDate:    cfg.RequireDueDate,
			MaxDueDateDays:    cfg.MaxDueDateDays,
			StrictOwnership:   cfg.StrictOwnership,
		},
		Logger:        logger,
		AuthRateLimit: rate.Limit(cfg.AuthRateLimit),
		AuthRateBurst: cfg.AuthRateBurst,
	})

	srv := &http.Server{
		Addr:              cfg.HTTPAddr,
		Handler:           r,
		ReadHeaderTimeout: 5 * time.Second,
	}

	go func() {
		logger.Info("server starting", "addr", cfg.HTTPAddr, "doc_store", cfg.DocStore, "session_store", cfg.SessionStore)
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			logger.Error("server stopped", "error", err)
			os.Exit(1)
		}
	}()

	wait := gfshutdown.GracefulShutdown(ctx, shutdownTimeout, map[string]gfshutdown.Operation{
		"http-server": func(ctx context.Context) error {
			logger.Info("graceful shutdown initiated")
			return srv.Shutdown(ctx)
		},
		"doc-store": closeStore,
	})

	if code := <-wait; code != 0 {
		return fmt.Errorf("shutdown finished with exit code %d", code)
	}
	logger.Info("server exited")
	return nil
}

// openDocStore builds the document store selected by DOC_STORE together with
// the function that releases it.
func openDocStore(ctx context.Context, cfg *config.Config) (docstore.Store, func(context.Context) error, error) {
	switch cfg.DocStore {
	case config.StoreSQL:
		db, err := database.Connect(cfg)
		if err != nil {
			return nil, nil, err
		}
		if err := database.Migrate(db); err != nil {
			return nil, nil, fmt.Errorf("failed to run migrations: %w", err)
		}
		sqlDB, err := db.DB()
		if err != nil {
			return nil, nil, err
		}
		return docstore.NewSQL(db), func(context.Context) error { return sqlDB.Close() }, nil
	case config.StoreRedis:
		client, err := database.ConnectRedis(ctx, cfg)
		if err != nil {
			return nil, nil, err
		}
		return docstore.NewRedis(client, cfg.RedisPrefix), func(context.Context) error { return client.Close() }, nil
	case config.StoreMemory:
		slog.Warn("using the in-memory document store, data is lost on exit")
		return docstore.NewMemory(), func(context.Context) error { return nil }, nil
	default:
		return nil, nil, fmt.Errorf("unsupported document store %q", cfg.DocStore)
	}
}

func newSessionStore(cfg *config.Config) (sessions.Store, error) {
	var store sessions.Store
	switch cfg.SessionStore {
	case config.SessionStoreCookie:
		store = cookie.NewStore([]byte(cfg.SessionSecret))
	case config.SessionStoreRedis:
		rs, err := redisStore.NewStore(
			10,    // Redis pool size
			"tcp", // network type
			cfg.RedisAddr(),
			"", // username (empty for default user)
			cfg.RedisPassword,
			[]byte(cfg.SessionSecret),
		)
		if err != nil {
			return nil, fmt.Errorf("failed to create redis session store: %w", err)
		}
		store = rs
	default:
		return nil, fmt.Errorf("unsupported session store %q", cfg.SessionStore)
	}

	store.Options(sessions.Options{
		Path:     "/",
		MaxAge:   int((constants.SessionMaxAgeHours * time.Hour).Seconds()),
		HttpOnly: true,
		Secure:   cfg.GinMode == gin.ReleaseMode,
		SameSite: http.SameSiteLaxMode,
	})
	return store, nil
}
