// Package server wires the application together and owns its lifecycle.
package server

import (
	"context"
	"database/sql"
	"fmt"
	"log/slog"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/redis/go-redis/v9"
	"github.com/sethvargo/go-retry"

	"github.com/dmitrijs2005/contacthub/internal/logging"
	"github.com/dmitrijs2005/contacthub/internal/server/auth"
	"github.com/dmitrijs2005/contacthub/internal/server/config"
	"github.com/dmitrijs2005/contacthub/internal/server/contacts"
	"github.com/dmitrijs2005/contacthub/internal/server/email"
	"github.com/dmitrijs2005/contacthub/internal/server/httpapi"
	"github.com/dmitrijs2005/contacthub/internal/server/identity"
	"github.com/dmitrijs2005/contacthub/internal/server/shared/db"
	"github.com/dmitrijs2005/contacthub/internal/server/storage"
	"github.com/dmitrijs2005/contacthub/internal/server/users"
)

const shutdownTimeout = 10 * time.Second

// App owns the server's long-lived resources.
type App struct {
	cfg     *config.Config
	logger  logging.Logger
	db      *sql.DB
	redis   *redis.Client
	userSvc *users.Service
	httpSrv *httpapi.Server
}

// NewApp connects to the backing services and assembles the server.
func NewApp(ctx context.Context, cfg *config.Config) (*App, error) {
	logger := logging.NewSlogLogger(slog.New(slog.NewJSONHandler(os.Stdout, nil)))

	database, err := db.Open(ctx, cfg.DatabaseDSN)
	if err != nil {
		return nil, err
	}
	if err := db.RunMigrations(ctx, database); err != nil {
		database.Close()
		return nil, err
	}

	redisClient, err := openRedis(ctx, cfg.RedisAddr)
	if err != nil {
		database.Close()
		return nil, err
	}

	codec, err := auth.NewCodec([]byte(cfg.SecretKey), cfg.SigningAlgorithm)
	if err != nil {
		database.Close()
		redisClient.Close()
		return nil, err
	}

	var sender email.Sender
	if cfg.SMTPHost == "" {
		sender = email.NewLogSender(logger)
	} else {
		sender = email.NewSMTPSender(cfg.SMTPHost, cfg.SMTPPort, cfg.SMTPUsername, cfg.SMTPPassword, cfg.MailFrom)
	}

	avatars, err := storage.NewS3Store(ctx, cfg)
	if err != nil {
		database.Close()
		redisClient.Close()
		return nil, err
	}

	cache := identity.NewCache(redisClient, cfg.CacheTTL, logger)
	userRepo := users.NewPostgresRepository(database)
	userSvc := users.NewService(userRepo, cache, codec, sender, avatars, logger, cfg)
	contactSvc := contacts.NewService(contacts.NewPostgresRepository(database))

	httpSrv := httpapi.NewServer(cfg.EndpointAddr, userSvc, contactSvc, logger)

	return &App{
		cfg:     cfg,
		logger:  logger,
		db:      database,
		redis:   redisClient,
		userSvc: userSvc,
		httpSrv: httpSrv,
	}, nil
}

func openRedis(ctx context.Context, addr string) (*redis.Client, error) {
	client := redis.NewClient(&redis.Options{Addr: addr})

	backoff := retry.WithMaxRetries(5, retry.NewFibonacci(1*time.Second))
	err := retry.Do(ctx, backoff, func(ctx context.Context) error {
		return retry.RetryableError(client.Ping(ctx).Err())
	})
	if err != nil {
		client.Close()
		return nil, fmt.Errorf("pinging redis: %w", err)
	}
	return client, nil
}

// Run serves until the context is cancelled or a termination signal arrives,
// then shuts down gracefully: the HTTP server drains, background email
// workers finish, connections close.
func (a *App) Run(ctx context.Context) error {
	ctx, stop := signal.NotifyContext(ctx, syscall.SIGINT, syscall.SIGTERM, syscall.SIGQUIT)
	defer stop()

	errCh := make(chan error, 1)
	go func() {
		errCh <- a.httpSrv.Run()
	}()

	select {
	case err := <-errCh:
		a.close()
		return err
	case <-ctx.Done():
	}

	a.logger.Info(ctx, "shutting down")

	shutdownCtx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
	defer cancel()

	err := a.httpSrv.Shutdown(shutdownCtx)
	a.userSvc.Wait()
	a.close()
	return err
}

func (a *App) close() {
	if err := a.redis.Close(); err != nil {
		a.logger.Error(context.Background(), "closing redis", "error", err)
	}
	if err := a.db.Close(); err != nil {
		a.logger.Error(context.Background(), "closing database", "error", err)
	}
}
