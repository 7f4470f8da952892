package main

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"time"

	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/nkiryanov/gym/internal/db"
	"github.com/nkiryanov/gym/internal/handlers"
	"github.com/nkiryanov/gym/internal/logger"
	"github.com/nkiryanov/gym/internal/repository/postgres"
	"github.com/nkiryanov/gym/internal/service/auth"
	"github.com/nkiryanov/gym/internal/service/auth/tokenmanager"
	"github.com/nkiryanov/gym/internal/service/tokensweeper"
	"github.com/nkiryanov/gym/internal/service/trainee"
	"github.com/nkiryanov/gym/internal/service/trainer"
	"github.com/nkiryanov/gym/internal/service/training"
	"github.com/nkiryanov/gym/internal/service/user"
)

const shutdownTimeout = 5 * time.Second

type ServerApp struct {
	ListenAddr string
	Handler    http.Handler

	logger  logger.Logger
	pool    *pgxpool.Pool
	sweeper *tokensweeper.Sweeper
}

func NewServerApp(ctx context.Context, c *Config) (*ServerApp, error) {
	// Initialize logger
	logger, err := logger.New(c.Environment, c.LogLevel)
	if err != nil {
		return nil, fmt.Errorf("error while initializing logger: %w", err)
	}

	tokenManager, err := tokenmanager.New(tokenmanager.Config{
		SecretKey:  c.SecretKey,
		AccessTTL:  c.AccessTokenTTL,
		RefreshTTL: c.RefreshTokenTTL,
	})
	if err != nil {
		return nil, fmt.Errorf("error while creating token manager. Err: %w", err)
	}

	// Connect to the database and run migrations
	pool, err := db.ConnectAndMigrate(ctx, c.DatabaseDSN)
	if err != nil {
		return nil, fmt.Errorf("error while connecting to db. Err: %w", err)
	}

	storage := postgres.NewStorage(pool)

	// Initialize services
	userService := user.NewService(user.DefaultHasher, storage)
	authService, err := auth.NewService(tokenManager, userService, storage, logger)
	if err != nil {
		pool.Close()
		return nil, fmt.Errorf("error while creating auth service. Err: %w", err)
	}

	router := handlers.NewRouter(handlers.Services{
		Auth:      authService,
		Users:     userService,
		Trainees:  trainee.NewService(userService, storage),
		Trainers:  trainer.NewService(userService, storage),
		Trainings: training.NewService(storage),
	}, logger)

	return &ServerApp{
		ListenAddr: c.ListenAddr,
		Handler:    router,
		logger:     logger,
		pool:       pool,
		sweeper:    tokensweeper.New(storage.Token(), c.SweepInterval, tokenManager.Now, logger),
	}, nil
}

// Run starts http server and closes gracefully on context cancellation
func (s *ServerApp) Run(ctx context.Context) error {
	defer s.pool.Close()

	httpServer := &http.Server{
		Addr:              s.ListenAddr,
		Handler:           s.Handler,
		ReadHeaderTimeout: 10 * time.Second,
	}

	idleConnsClosed := make(chan struct{})
	srvCtx, srvCtxCancel := context.WithCancel(ctx)
	defer srvCtxCancel()

	sweeperStopped := s.sweeper.Run(srvCtx)

	go func() {
		<-srvCtx.Done()

		timeoutCtx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
		defer cancel()

		if err := httpServer.Shutdown(timeoutCtx); errors.Is(err, context.DeadlineExceeded) {
			s.logger.Error("HTTP server shutdown timeout exceeded, forcing shutdown...")
		}
		s.logger.Info("HTTP server stopped")
		close(idleConnsClosed)
	}()

	// Listen and serve until context is cancelled; then close gracefully connections
	s.logger.Info("Starting server", "address", s.ListenAddr)
	err := httpServer.ListenAndServe()
	srvCtxCancel()
	<-idleConnsClosed
	<-sweeperStopped

	if errors.Is(err, http.ErrServerClosed) {
		return nil
	}
	return err
}
