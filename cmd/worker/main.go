// Package main provides the entrypoint for the FleetDispatch event worker.
package main

import (
	"context"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/rs/zerolog"

	"github.com/fleetdispatch/fleetdispatch/internal/auth"
	"github.com/fleetdispatch/fleetdispatch/internal/config"
	"github.com/fleetdispatch/fleetdispatch/internal/database"
	"github.com/fleetdispatch/fleetdispatch/internal/notification"
	"github.com/fleetdispatch/fleetdispatch/internal/worker"
	"github.com/fleetdispatch/fleetdispatch/pkg/email"
)

// Version and BuildTime are set at compile time via ldflags.
var (
	Version   = "dev"
	BuildTime = "unknown"
)

func main() {
	const serviceName = "fleetdispatch-worker"

	log := zerolog.New(os.Stdout).
		With().
		Timestamp().
		Str("service", serviceName).
		Str("version", Version).
		Logger()

	log.Info().
		Str("build_time", BuildTime).
		Msg("starting FleetDispatch worker")

	cfg, err := config.Load(".")
	if err != nil {
		log.Fatal().Err(err).Msg("failed to load configuration")
	}

	if cfg.Events.ProjectID == "" || cfg.Events.Subscription == "" {
		log.Fatal().Msg("PUBSUB_PROJECT_ID and PUBSUB_SUBSCRIPTION are required")
	}

	// Create context for graceful shutdown
	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	// Connect to database
	pool, err := database.Connect(ctx, cfg.Database)
	if err != nil {
		log.Fatal().Err(err).Msg("failed to connect to database")
	}
	defer pool.Close()
	log.Info().
		Str("host", cfg.Database.Host).
		Str("database", cfg.Database.Name).
		Msg("database connected")

	userRepo := auth.NewPostgresUserRepository(pool)
	notificationRepo := notification.NewPostgresRepository(pool)

	// The worker has no websocket clients; stored notifications are
	// picked up by the API's unread count and list endpoints.
	notificationService := notification.NewService(notificationRepo, nil, log)

	// Optional SES email delivery
	var sender email.Sender
	if cfg.Email.Enabled {
		sesSender, sesErr := email.NewSESSender(ctx, cfg.Email.Region, cfg.Email.FromEmail, log)
		if sesErr != nil {
			log.Fatal().Err(sesErr).Msg("failed to initialize SES sender")
		}
		sender = sesSender
		log.Info().
			Str("region", cfg.Email.Region).
			Str("from", cfg.Email.FromEmail).
			Msg("email delivery enabled")
	}

	processor := worker.NewProcessor(worker.ProcessorConfig{
		Notifications: notificationService,
		Users:         userRepo,
		Sender:        sender,
		Logger:        log,
	})

	handler, err := worker.NewPubSubHandler(ctx, worker.PubSubConfig{
		ProjectID:        cfg.Events.ProjectID,
		SubscriptionName: cfg.Events.Subscription,
		Processor:        processor,
		Logger:           log,
	})
	if err != nil {
		log.Fatal().Err(err).Msg("failed to initialize pubsub handler")
	}
	defer func() {
		if closeErr := handler.Close(); closeErr != nil {
			log.Error().Err(closeErr).Msg("failed to close pubsub handler")
		}
	}()

	// Health check server for the container platform
	mux := http.NewServeMux()
	mux.HandleFunc("/health", func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "application/json")
		w.WriteHeader(http.StatusOK)
		fmt.Fprintf(w, `{"status":"healthy","version":%q}`, Version)
	})

	server := &http.Server{
		Addr:         ":" + cfg.Port,
		Handler:      mux,
		ReadTimeout:  15 * time.Second,
		WriteTimeout: 15 * time.Second,
	}

	go func() {
		log.Info().Str("addr", server.Addr).Msg("health server listening")
		if err := server.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			log.Error().Err(err).Msg("health server error")
		}
	}()

	// Start consuming; Start blocks until ctx is canceled
	errCh := make(chan error, 1)
	go func() {
		errCh <- handler.Start(ctx)
	}()

	// Wait for interrupt signal or consumer failure
	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)

	select {
	case <-quit:
		log.Info().Msg("shutting down worker")
	case err := <-errCh:
		if err != nil {
			log.Error().Err(err).Msg("pubsub consumer stopped")
		}
	}
	cancel()

	shutdownCtx, shutdownCancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer shutdownCancel()

	if err := server.Shutdown(shutdownCtx); err != nil {
		log.Error().Err(err).Msg("health server forced to shutdown")
	}

	log.Info().Msg("worker stopped")
}
