package main

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"net/http"
	"time"

	"github.com/nkiryanov/authd/internal/apperrors"
	"github.com/nkiryanov/authd/internal/db"
	"github.com/nkiryanov/authd/internal/handlers"
	"github.com/nkiryanov/authd/internal/logger"
	"github.com/nkiryanov/authd/internal/models"
	"github.com/nkiryanov/authd/internal/repository"
	"github.com/nkiryanov/authd/internal/repository/memory"
	"github.com/nkiryanov/authd/internal/repository/postgres"
	"github.com/nkiryanov/authd/internal/service/auth"
	"github.com/nkiryanov/authd/internal/service/user"
	"github.com/nkiryanov/authd/internal/token"
)

type ServerApp struct {
	ListenAddr string
	Handler    http.Handler
}

func NewServerApp(ctx context.Context, c *Config) (*ServerApp, error) {
	// Initialize logger
	logger, err := logger.New(c.Environment, c.LogLevel)
	if err != nil {
		return nil, fmt.Errorf("error while initializing logger: %w", err)
	}

	// Pick storage backend: postgres when DSN is set, in-memory otherwise
	var storage repository.Storage
	switch c.DatabaseDSN {
	case "":
		logger.Info("no database configured, storing tokens and users in memory")
		storage = memory.NewStorage()
	default:
		pool, err := db.ConnectAndMigrate(ctx, c.DatabaseDSN)
		if err != nil {
			return nil, fmt.Errorf("error while connecting to db. Err: %w", err)
		}
		storage = postgres.NewStorage(pool)
	}

	// Initialize services
	codec, err := token.New(token.Config{
		SecretKey:  c.SecretKey,
		AccessTTL:  c.AccessTokenTTL,
		RefreshTTL: c.RefreshTokenTTL,
	})
	if err != nil {
		return nil, fmt.Errorf("error while creating token codec. Err: %w", err)
	}

	authService, err := auth.NewService(auth.Config{}, codec, storage)
	if err != nil {
		return nil, fmt.Errorf("error while creating auth service. Err: %w", err)
	}
	userService := user.NewService(nil, storage.Users())

	if err := seedAdmin(ctx, c, storage.Users()); err != nil {
		return nil, fmt.Errorf("error while seeding admin user. Err: %w", err)
	}

	mux := handlers.NewRouter(authService, userService, logger)

	return &ServerApp{
		ListenAddr: c.ListenAddr,
		Handler:    mux,
	}, nil
}

// seedAdmin creates the configured admin user on startup. An already
// existing user keeps its current password and role.
func seedAdmin(ctx context.Context, c *Config, users repository.UserRepo) error {
	if c.AdminUsername == "" || c.AdminPassword == "" {
		return nil
	}

	hash, err := auth.DefaultHasher.Hash(c.AdminPassword)
	if err != nil {
		return err
	}

	_, err = users.CreateUser(ctx, c.AdminUsername, hash, models.RoleAdmin)
	if err != nil && !errors.Is(err, apperrors.ErrUserAlreadyExists) {
		return err
	}

	return nil
}

// Run starts http server and closes gracefully on context cancellation
func (s *ServerApp) Run(ctx context.Context) error {
	httpServer := &http.Server{
		Addr:    s.ListenAddr,
		Handler: s.Handler,
	}

	idleConnsClosed := make(chan struct{})
	srvCtx, srvCtxCancel := context.WithCancel(ctx)
	defer srvCtxCancel()

	go func() {
		<-srvCtx.Done()

		timeoutCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancel()

		if err := httpServer.Shutdown(timeoutCtx); err == context.DeadlineExceeded {
			slog.Error("HTTP server shutdown timeout exceeded, forcing shutdown...")
		}
		slog.Info("HTTP server stopped")
		close(idleConnsClosed)
	}()

	// Listen and serve until context is cancelled; then close gracefully connections
	slog.Info("Starting server", "addr", s.ListenAddr)
	err := httpServer.ListenAndServe()
	srvCtxCancel()
	<-idleConnsClosed

	return err
}
