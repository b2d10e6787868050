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

	"github.com/gin-gonic/gin"
	"github.com/monocle-dev/fleetwatch/db"
	"github.com/monocle-dev/fleetwatch/internal/auth"
	"github.com/monocle-dev/fleetwatch/internal/config"
	"github.com/monocle-dev/fleetwatch/internal/fleet"
	"github.com/monocle-dev/fleetwatch/internal/handlers"
	"github.com/monocle-dev/fleetwatch/internal/kv"
	"github.com/monocle-dev/fleetwatch/internal/logger"
	"github.com/monocle-dev/fleetwatch/internal/metrics"
	"github.com/monocle-dev/fleetwatch/internal/registry"
	"github.com/monocle-dev/fleetwatch/internal/router"
	"github.com/monocle-dev/fleetwatch/internal/status"
	"github.com/monocle-dev/fleetwatch/internal/store"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"
)

func main() {
	cfg, err := config.Load()

	if err != nil {
		log.Fatalf("Error loading configuration: %v", err)
	}

	logger.Init(cfg.LogFile, cfg.LogLevel)
	gin.SetMode(gin.ReleaseMode)

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	if err = db.ConnectDatabase(cfg.DBDriver, cfg.DatabaseURL); err != nil {
		log.Fatalf("Failed to connect to database: %v", err)
	}

	if err = db.MigrateDatabase(); err != nil {
		log.Fatalf("Failed to migrate database: %v", err)
	}

	kvStore, closeKV, err := openRegistryStore(ctx, cfg)

	if err != nil {
		log.Fatalf("Failed to open registry store: %v", err)
	}
	defer closeKV()

	promRegistry := prometheus.NewRegistry()
	promRegistry.MustRegister(collectors.NewGoCollector(), collectors.NewProcessCollector(collectors.ProcessCollectorOpts{}))

	hub := handlers.NewHub(cfg.AllowedOrigins)
	classifier := status.NewClassifier(cfg.WarningThreshold, cfg.OfflineThreshold)

	svc := fleet.NewService(
		registry.New(kvStore, registry.WithKeepToken(cfg.KeepTokenOnReregister)),
		store.New(db.DB),
		classifier,
		fleet.WithNotifier(hub),
	)

	var tokens *auth.TokenIssuer
	if cfg.JWTSecret != "" {
		if tokens, err = auth.NewTokenIssuer(cfg.JWTSecret, auth.DefaultTokenTTL); err != nil {
			log.Fatalf("Failed to configure session tokens: %v", err)
		}
	}

	if cfg.AuthUser == "" {
		logger.Log.Warn("AUTH_USER not set, dashboard credentials are read from the registry store")
	}

	r := router.NewRouter(router.Deps{
		Handler: handlers.New(svc,
			handlers.WithMetrics(metrics.New(promRegistry)),
			handlers.WithReadiness(func(ctx context.Context) error { return db.Ping(ctx, db.DB) }),
		),
		Hub:            hub,
		Credentials:    auth.NewCredentials(cfg.AuthUser, cfg.AuthPassword, kvStore),
		Tokens:         tokens,
		Gatherer:       promRegistry,
		AllowedOrigins: cfg.AllowedOrigins,
	})

	srv := &http.Server{
		Addr:              ":" + cfg.Port,
		Handler:           r,
		ReadHeaderTimeout: 10 * time.Second,
	}

	go func() {
		logger.Log.Info("fleetwatch listening",
			"port", cfg.Port,
			"db_driver", cfg.DBDriver,
			"registry_backend", cfg.RegistryBackend,
			"warning_threshold", classifier.WarningThreshold().String(),
			"offline_threshold", classifier.OfflineThreshold().String(),
		)

		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			log.Fatalf("Failed to start server: %v", err)
		}
	}()

	<-ctx.Done()
	logger.Log.Info("shutting down")

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()

	if err := srv.Shutdown(shutdownCtx); err != nil {
		logger.Log.Error("graceful shutdown failed", "err", err)
	}
}

func openRegistryStore(ctx context.Context, cfg *config.Config) (kv.Store, func(), error) {
	if cfg.RegistryBackend != config.BackendNATS {
		return kv.NewGormStore(db.DB), func() {}, nil
	}

	dialCtx, cancel := context.WithTimeout(ctx, 30*time.Second)
	defer cancel()

	natsStore, err := kv.Dial(dialCtx, cfg.NATSURL, cfg.NATSBucket)
	if err != nil {
		return nil, nil, err
	}

	logger.Log.Info("registry backed by NATS JetStream", "url", cfg.NATSURL, "bucket", cfg.NATSBucket)

	return natsStore, func() {
		if err := natsStore.Close(); err != nil {
			logger.Log.Warn("failed to close NATS connection", "err", err)
		}
	}, nil
}
