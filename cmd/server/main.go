package main // Entry point package

import (
	"context"
	"errors"
	"log"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/joho/godotenv"
	"go.uber.org/zap"

	"github.com/iliyamo/count-game-api/internal/auth"
	"github.com/iliyamo/count-game-api/internal/config"
	"github.com/iliyamo/count-game-api/internal/database"
	"github.com/iliyamo/count-game-api/internal/handler"
	"github.com/iliyamo/count-game-api/internal/logging"
	"github.com/iliyamo/count-game-api/internal/metrics"
	"github.com/iliyamo/count-game-api/internal/middleware"
	"github.com/iliyamo/count-game-api/internal/queue"
	"github.com/iliyamo/count-game-api/internal/repository"
	"github.com/iliyamo/count-game-api/internal/router"
	"github.com/iliyamo/count-game-api/internal/service"
)

func main() {
	_ = godotenv.Load() // .env is optional; real env vars win

	cfg, err := config.Load()
	if err != nil {
		log.Fatalf("load config: %v", err)
	}

	logger := logging.New(cfg.Env, cfg.LogLevel, "count-game-api")
	defer func() { _ = logger.Sync() }()

	if err := run(cfg, logger); err != nil {
		logger.Fatal("server stopped", zap.Error(err))
	}
}

func run(cfg config.Config, logger *zap.Logger) error {
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	users, scores, closeStore, err := openStores(ctx, cfg, logger)
	if err != nil {
		return err
	}
	defer closeStore()

	tokens, err := auth.NewTokenService(auth.TokenConfig{
		Secret:    cfg.JWTSecret,
		Algorithm: cfg.JWTAlgorithm,
		TTL:       cfg.AccessTTL,
	})
	if err != nil {
		return err
	}
	authSvc, err := auth.NewService(users, auth.NewHasher(cfg.BcryptCost), tokens)
	if err != nil {
		return err
	}

	rdb := config.NewRedisClient(cfg.Redis)
	if rdb == nil {
		logger.Warn("redis unavailable, leaderboard cache disabled", zap.String("addr", cfg.Redis.Addr))
	} else {
		defer func() { _ = rdb.Close() }()
	}
	cache := middleware.NewResponseCache(cfg.Cache, rdb)

	// Leave the interface nil rather than holding a nil *Publisher.
	var publisher handler.EventPublisher
	if cfg.AMQPURL != "" {
		publisher = service.NewPublisher(cfg.AMQPURL, logger)
		consumer := queue.NewConsumer(cfg.AMQPURL, cache, logger)
		go func() {
			if err := consumer.Run(ctx); err != nil && !errors.Is(err, context.Canceled) {
				logger.Error("highscore consumer stopped", zap.Error(err))
			}
		}()
	} else {
		logger.Info("no broker configured, highscore events disabled")
	}

	m := metrics.New("countgame")
	e := router.New(router.Deps{
		Config:     cfg,
		Log:        logger,
		Metrics:    m,
		Auth:       handler.NewAuthHandler(authSvc, logger, m, cfg.RequestTimeout),
		Highscores: handler.NewHighscoreHandler(scores, authSvc, publisher, cache, logger, m, cfg.RequestTimeout),
		Cache:      cache,
	})

	errCh := make(chan error, 1)
	go func() {
		logger.Info("listening",
			zap.String("addr", cfg.Addr()),
			zap.String("store", cfg.StoreDriver),
			zap.String("jwt_alg", tokens.Algorithm()),
		)
		if err := e.Start(cfg.Addr()); err != nil && !errors.Is(err, http.ErrServerClosed) {
			errCh <- err
		}
		close(errCh)
	}()

	select {
	case err := <-errCh:
		return err
	case <-ctx.Done():
	}

	logger.Info("shutting down")
	shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	return e.Shutdown(shutdownCtx)
}

// openStores returns the credential and highscore stores for the configured
// driver plus a function releasing their resources.
func openStores(ctx context.Context, cfg config.Config, logger *zap.Logger) (auth.CredentialStore, handler.HighscoreStore, func(), error) {
	if cfg.StoreDriver == config.StoreMemory {
		logger.Warn("using in-memory store, data is lost on restart")
		users := repository.NewMemoryUserRepo()
		return users, repository.NewMemoryHighscoreRepo(users), func() {}, nil
	}

	db, err := database.Open(cfg.DBUser, cfg.DBPass, cfg.DBHost, cfg.DBPort, cfg.DBName)
	if err != nil {
		return nil, nil, nil, err
	}
	schemaCtx, cancel := context.WithTimeout(ctx, 10*time.Second)
	defer cancel()
	if err := database.EnsureSchema(schemaCtx, db); err != nil {
		_ = db.Close()
		return nil, nil, nil, err
	}
	return repository.NewUserRepo(db), repository.NewHighscoreRepo(db), func() { _ = db.Close() }, nil
}
