package main

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"golang.org/x/sync/errgroup"

	"seniorweb/internal/broker/kafka"
	"seniorweb/internal/config"
	"seniorweb/internal/domain"
	"seniorweb/internal/httpserver"
	"seniorweb/internal/obs"
	"seniorweb/internal/security"
	"seniorweb/internal/service"
	"seniorweb/internal/store/postgres"
	"seniorweb/internal/store/sqlite"
	"seniorweb/internal/ws"
)

// @title           seniorweb API
// @version         1.0
// @description     Matching, threads and realtime chat for the seniorweb dating app.

// @host            localhost:8000
// @BasePath        /api

// @securityDefinitions.apikey BearerAuth
// @in header
// @name Authorization

type repos struct {
	users    domain.UserRepository
	matches  domain.MatchRepository
	messages domain.MessageRepository
}

func main() {
	cfg, err := config.Load()
	if err != nil {
		slog.Error("failed to load config", "err", err)
		os.Exit(1)
	}

	logger := obs.NewLogger(cfg.Env, cfg.Debug)
	slog.SetDefault(logger)

	if err := run(cfg, logger); err != nil {
		logger.Error("server stopped", "err", err)
		os.Exit(1)
	}
}

func run(cfg *config.Config, logger *slog.Logger) error {
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	db, store, err := openStore(cfg)
	if err != nil {
		return err
	}
	defer db.Close()

	tokenSvc := security.NewTokenService(cfg.JWTSecret, cfg.AccessTokenTTL())

	hub := ws.NewHub(logger.With("component", "hub"))

	g, gctx := errgroup.WithContext(ctx)
	g.Go(func() error {
		hub.Run(gctx)
		return nil
	})

	// In kafka mode services publish and every instance, this one included,
	// replays the topic into its local hub.
	var notifier service.Notifier = hub
	if cfg.RealtimeMode == config.RealtimeKafka {
		pub, err := kafka.NewPublisher(cfg.KafkaBrokers, cfg.KafkaTopic, nil)
		if err != nil {
			return err
		}
		defer pub.Close()
		notifier = pub

		consumer, err := kafka.NewConsumer(cfg.KafkaBrokers, cfg.KafkaGroupPrefix, nil,
			kafka.Dispatcher{Local: hub, Log: logger}, logger.With("component", "kafka"))
		if err != nil {
			return err
		}
		g.Go(func() error {
			defer consumer.Close()
			if err := consumer.Run(gctx, []string{cfg.KafkaTopic}); err != nil && !errors.Is(err, context.Canceled) {
				return fmt.Errorf("kafka consumer: %w", err)
			}
			return nil
		})
	}

	router := httpserver.NewRouter(httpserver.Deps{
		Config:   cfg,
		Logger:   logger,
		Tokens:   tokenSvc,
		Users:    store.users,
		Hub:      hub,
		Matches:  service.NewMatchService(store.users, store.matches, store.messages, notifier, logger),
		Threads:  service.NewThreadService(store.users, store.matches, store.messages),
		Messages: service.NewMessageService(store.users, store.messages, notifier, logger, cfg.HistoryLimit),
		Profiles: service.NewUserService(store.users, cfg.DiscoveryLimit),
		Ready:    db.Ping,
	})

	srv := &http.Server{
		Addr:        cfg.HTTPAddr(),
		Handler:     router,
		ReadTimeout: 15 * time.Second,
		IdleTimeout: 60 * time.Second,
	}

	g.Go(func() error {
		logger.Info("starting seniorweb server", "addr", cfg.HTTPAddr(), "db", cfg.DBDriver, "realtime", cfg.RealtimeMode)
		if err := srv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			return fmt.Errorf("server error: %w", err)
		}
		return nil
	})

	g.Go(func() error {
		<-gctx.Done()
		logger.Info("shutting down server")
		shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
		defer cancel()
		if err := srv.Shutdown(shutdownCtx); err != nil {
			logger.Warn("graceful shutdown failed", "err", err)
		}
		return nil
	})

	return g.Wait()
}

func openStore(cfg *config.Config) (*sql.DB, repos, error) {
	switch cfg.DBDriver {
	case config.DriverSQLite:
		db, err := sqlite.Open(cfg.DSN())
		if err != nil {
			return nil, repos{}, err
		}
		if err := sqlite.Migrate(db); err != nil {
			db.Close()
			return nil, repos{}, fmt.Errorf("failed to run migrations: %w", err)
		}
		return db, repos{
			users:    sqlite.NewUserRepo(db),
			matches:  sqlite.NewMatchRepo(db),
			messages: sqlite.NewMessageRepo(db),
		}, nil
	default:
		db, err := postgres.Open(cfg.DSN())
		if err != nil {
			return nil, repos{}, err
		}
		if err := postgres.Migrate(db); err != nil {
			db.Close()
			return nil, repos{}, fmt.Errorf("failed to run migrations: %w", err)
		}
		return db, repos{
			users:    postgres.NewUserRepo(db),
			matches:  postgres.NewMatchRepo(db),
			messages: postgres.NewMessageRepo(db),
		}, nil
	}
}
