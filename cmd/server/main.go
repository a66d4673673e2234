package main

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
	"github.com/rs/zerolog"
	"github.com/spf13/pflag"

	httpapi "github.com/execution-hub/contest-hub/internal/api/http"
	"github.com/execution-hub/contest-hub/internal/application/draw"
	"github.com/execution-hub/contest-hub/internal/application/lifecycle"
	"github.com/execution-hub/contest-hub/internal/application/scheduler"
	"github.com/execution-hub/contest-hub/internal/config"
	"github.com/execution-hub/contest-hub/internal/domain/contest"
	domainJournal "github.com/execution-hub/contest-hub/internal/domain/journal"
	"github.com/execution-hub/contest-hub/internal/infrastructure/announcer"
	"github.com/execution-hub/contest-hub/internal/infrastructure/filestore"
	"github.com/execution-hub/contest-hub/internal/infrastructure/journal"
	"github.com/execution-hub/contest-hub/internal/infrastructure/postgres"
	"github.com/execution-hub/contest-hub/internal/infrastructure/sse"
)

func main() {
	_ = godotenv.Load()

	configPath := pflag.String("config", os.Getenv("CONTEST_HUB_CONFIG"), "path to a JSONC config file")
	addr := pflag.String("addr", "", "listen address, overrides config")
	dataDir := pflag.String("data-dir", "", "data directory, overrides config")
	pflag.Parse()

	cfg, err := config.LoadFile(*configPath)
	if err != nil {
		log.Fatalf("config error: %v", err)
	}
	if err := cfg.Override(*addr, *dataDir); err != nil {
		log.Fatalf("config error: %v", err)
	}

	logger := newLogger(cfg)
	ctx := context.Background()

	// storage
	var store contest.Store
	switch cfg.StoreDriver {
	case config.StorePostgres:
		pool, err := postgres.NewPool(ctx, cfg.DatabaseURL)
		if err != nil {
			logger.Fatal().Err(err).Msg("db error")
		}
		defer pool.Close()
		if err := postgres.RunMigrations(ctx, pool, postgres.Migrations()); err != nil {
			logger.Fatal().Err(err).Msg("migration error")
		}
		store = postgres.NewContestRepository(pool, logger)
	default:
		fileStore, err := filestore.New(cfg.DataDir, logger)
		if err != nil {
			logger.Fatal().Err(err).Msg("store error")
		}
		store = fileStore
	}

	var jrnl domainJournal.Journal
	switch cfg.JournalDriver {
	case config.JournalMemory:
		jrnl = journal.NewMemory()
	default:
		fileJournal, err := journal.NewFile(cfg.JournalDir, logger)
		if err != nil {
			logger.Fatal().Err(err).Msg("journal error")
		}
		jrnl = fileJournal
	}

	var book announcer.EntrantBook = announcer.NewMemoryBook()
	if cfg.EntrantsRedisAddr != "" {
		redisBook, err := announcer.NewRedisBook(ctx, announcer.RedisConfig{
			Addr:     cfg.EntrantsRedisAddr,
			Password: cfg.EntrantsRedisPass,
		})
		if err != nil {
			logger.Fatal().Err(err).Msg("redis error")
		}
		defer redisBook.Close()
		book = redisBook
	}

	// infrastructure
	sseHub := sse.NewHub(logger)
	broadcast := announcer.NewBroadcast(sseHub, book, cfg.PublicURL, logger,
		announcer.WithSystemIdentity(cfg.SystemIdentity))
	timers := scheduler.New(logger, scheduler.WithMaxDelay(cfg.SchedulerMaxDelay))
	selector := draw.NewSelector(cfg.SystemIdentity, logger)

	// services
	lifecycleSvc := lifecycle.NewService(store, broadcast, jrnl, timers, selector, logger)
	timers.Bind(lifecycleSvc.HandleDeadline)

	recovered, err := lifecycleSvc.Recover(ctx)
	if err != nil {
		logger.Fatal().Err(err).Msg("recovery failed")
	}
	logger.Info().Int("active", recovered).Msg("contest timers restored")

	// API server
	apiServer := httpapi.NewServer(lifecycleSvc, broadcast, sseHub, httpapi.Options{
		OperatorTokenHash: cfg.OperatorTokenHash,
		StreamEnabled:     cfg.StreamEnabled,
	}, logger)
	if cfg.OperatorTokenHash == "" {
		logger.Warn().Msg("operator auth disabled, OPERATOR_TOKEN_HASH is empty")
	}

	httpServer := &http.Server{
		Addr:              cfg.ServerAddr,
		Handler:           apiServer.Router(),
		ReadHeaderTimeout: 15 * time.Second,
		IdleTimeout:       60 * time.Second,
	}

	go func() {
		logger.Info().Str("addr", cfg.ServerAddr).Str("store", cfg.StoreDriver).Msg("http server started")
		if err := httpServer.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			logger.Fatal().Err(err).Msg("http server failed")
		}
	}()

	// graceful shutdown
	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit
	timers.Stop()
	sseHub.Stop()
	ctxShutdown, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	_ = httpServer.Shutdown(ctxShutdown)
	logger.Info().Msg("shutdown complete")
}

func newLogger(cfg *config.Config) zerolog.Logger {
	level, err := zerolog.ParseLevel(cfg.LogLevel)
	if err != nil || level == zerolog.NoLevel {
		level = zerolog.InfoLevel
	}
	zerolog.SetGlobalLevel(level)
	if cfg.LogFormat == "console" {
		return zerolog.New(zerolog.ConsoleWriter{Out: os.Stderr, TimeFormat: time.RFC3339}).With().Timestamp().Logger()
	}
	return zerolog.New(os.Stdout).With().Timestamp().Logger()
}
