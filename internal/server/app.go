// Package server initializes and runs the verification server. It selects
// the storage engine and rate limiter backend from configuration, wires the
// services, and serves the HTTP API with graceful shutdown.
package server

import (
	"context"
	"fmt"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"sync"
	"syscall"
	"time"

	"github.com/redis/go-redis/v9"

	"github.com/veritag/veritag/internal/logging"
	"github.com/veritag/veritag/internal/server/config"
	httpapi "github.com/veritag/veritag/internal/server/http"
	"github.com/veritag/veritag/internal/server/ratelimit"
	"github.com/veritag/veritag/internal/server/repositories/repomanager"
	"github.com/veritag/veritag/internal/server/services"
)

const shutdownTimeout = 5 * time.Second

type App struct {
	config  *config.Config
	logger  logging.Logger
	repos   repomanager.RepositoryManager
	handler *httpapi.Handler
}

func NewApp(cfg *config.Config) (*App, error) {
	sl := slog.New(slog.NewJSONHandler(os.Stdout, nil))
	logger := logging.NewSlogLogger(sl)

	var repos repomanager.RepositoryManager
	var err error
	switch cfg.StorageEngine {
	case config.EnginePostgres:
		repos, err = repomanager.NewPostgresRepositoryManager(cfg.DatabaseDSN)
	case config.EngineBolt:
		repos, err = repomanager.NewBoltRepositoryManager(cfg.BoltPath)
	default:
		return nil, fmt.Errorf("unknown storage engine: %q", cfg.StorageEngine)
	}
	if err != nil {
		return nil, fmt.Errorf("storage init error: %w", err)
	}

	var limiter ratelimit.Limiter
	switch cfg.RateLimitBackend {
	case config.RateLimitRedis:
		limiter = ratelimit.NewRedisLimiter(redis.NewClient(&redis.Options{Addr: cfg.RedisAddr}))
	case config.RateLimitMemory:
		limiter = ratelimit.NewMemoryLimiter()
	default:
		return nil, fmt.Errorf("unknown rate limiter backend: %q", cfg.RateLimitBackend)
	}

	orgService := services.NewOrganizationService(repos, logger)
	rewardService := services.NewRewardService(repos, services.SimulatedPayer{}, logger)
	verificationService := services.NewVerificationService(repos, limiter, rewardService, logger)
	productService := services.NewProductService(repos, verificationService, logger)
	resellerService := services.NewResellerService(repos, logger)
	adminService := services.NewAdminService(repos, limiter, logger)

	handler := httpapi.NewHandler(
		orgService, productService, verificationService, rewardService, resellerService,
		adminService, []byte(cfg.SecretKey), cfg.TokenValidityDuration, logger)

	return &App{config: cfg, logger: logger, repos: repos, handler: handler}, nil
}

func (app *App) initSignalHandler(cancelFunc context.CancelFunc) {
	sigs := make(chan os.Signal, 1)
	signal.Notify(sigs, syscall.SIGINT, syscall.SIGTERM, syscall.SIGQUIT)

	go func() {
		<-sigs
		cancelFunc()
	}()
}

func (app *App) startHTTPServer(ctx context.Context, cancelFunc context.CancelFunc) {
	srv := &http.Server{
		Addr:    app.config.EndpointAddrHTTP,
		Handler: httpapi.NewRouter(app.handler),
	}

	go func() {
		<-ctx.Done()
		shutdownCtx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
		defer cancel()
		if err := srv.Shutdown(shutdownCtx); err != nil {
			app.logger.Error(shutdownCtx, "http shutdown error", "error", err)
		}
	}()

	app.logger.Info(ctx, "http server listening", "addr", app.config.EndpointAddrHTTP)
	if err := srv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
		app.logger.Error(ctx, err.Error())
		cancelFunc()
	}
}

func (app *App) Run(ctx context.Context) {
	ctx, cancelFunc := context.WithCancel(ctx)
	defer cancelFunc()

	app.logger.Info(ctx, "starting app",
		"engine", app.config.StorageEngine, "rate_limiter", app.config.RateLimitBackend)

	app.initSignalHandler(cancelFunc)

	var wg sync.WaitGroup

	wg.Add(1)
	go func() {
		defer wg.Done()
		app.startHTTPServer(ctx, cancelFunc)
	}()

	wg.Wait()

	if err := app.repos.Close(); err != nil {
		app.logger.Error(ctx, "storage close error", "error", err)
	}
}
