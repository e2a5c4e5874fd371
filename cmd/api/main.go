// Package main provides the entrypoint for the FleetDispatch API server.
package main

import (
	"context"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/rs/zerolog"

	"github.com/fleetdispatch/fleetdispatch/internal/api"
	"github.com/fleetdispatch/fleetdispatch/internal/api/middleware"
	"github.com/fleetdispatch/fleetdispatch/internal/auth"
	"github.com/fleetdispatch/fleetdispatch/internal/cache"
	"github.com/fleetdispatch/fleetdispatch/internal/config"
	"github.com/fleetdispatch/fleetdispatch/internal/database"
	"github.com/fleetdispatch/fleetdispatch/internal/events"
	"github.com/fleetdispatch/fleetdispatch/internal/fuel"
	"github.com/fleetdispatch/fleetdispatch/internal/geocoding"
	"github.com/fleetdispatch/fleetdispatch/internal/geocoding/nominatim"
	"github.com/fleetdispatch/fleetdispatch/internal/notification"
	"github.com/fleetdispatch/fleetdispatch/internal/planner"
	"github.com/fleetdispatch/fleetdispatch/internal/provider/resilience"
	"github.com/fleetdispatch/fleetdispatch/internal/route"
	"github.com/fleetdispatch/fleetdispatch/internal/routing"
	"github.com/fleetdispatch/fleetdispatch/internal/routing/googlemaps"
	"github.com/fleetdispatch/fleetdispatch/internal/routing/osrm"
	"github.com/fleetdispatch/fleetdispatch/internal/telemetry"
	"github.com/fleetdispatch/fleetdispatch/internal/vehicle"
)

// Version and BuildTime are set at compile time via ldflags.
var (
	Version   = "dev"
	BuildTime = "unknown"
)

func main() {
	const serviceName = "fleetdispatch-api"

	// Setup structured logging
	log := zerolog.New(os.Stdout).
		With().
		Timestamp().
		Str("service", serviceName).
		Str("version", Version).
		Logger()

	log.Info().
		Str("build_time", BuildTime).
		Msg("starting FleetDispatch API")

	cfg, err := config.Load(".")
	if err != nil {
		log.Fatal().Err(err).Msg("failed to load configuration")
	}

	// Initialize OpenTelemetry
	ctx := context.Background()

	tp, err := telemetry.Init(ctx, telemetry.Config{
		ServiceName:    serviceName,
		ServiceVersion: Version,
		Environment:    cfg.Env,
		OTLPEndpoint:   cfg.OTLPEndpoint,
		Enabled:        cfg.OTelEnabled,
	})
	if err != nil {
		log.Fatal().Err(err).Msg("failed to initialize telemetry")
	}
	defer func() {
		shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancel()
		if shutdownErr := tp.Shutdown(shutdownCtx); shutdownErr != nil {
			log.Error().Err(shutdownErr).Msg("failed to shutdown telemetry")
		}
	}()

	if cfg.OTelEnabled {
		log.Info().
			Str("otlp_endpoint", cfg.OTLPEndpoint).
			Msg("OpenTelemetry initialized")
	}

	// Initialize metrics
	metrics, err := middleware.NewMetrics()
	if err != nil {
		log.Error().Err(err).Msg("failed to initialize metrics")
		os.Exit(1) //nolint:gocritic // intentional exit, telemetry cleanup is best-effort
	}

	// Connect to database
	pool, err := database.Connect(ctx, cfg.Database)
	if err != nil {
		log.Fatal().Err(err).Msg("failed to connect to database")
	}
	defer pool.Close()
	log.Info().
		Str("host", cfg.Database.Host).
		Int("port", cfg.Database.Port).
		Str("database", cfg.Database.Name).
		Msg("database connected")

	// Provider health registry, shared by the geocoding and routing clients
	registry := resilience.NewRegistry()

	// Initialize auth repositories and service
	authUserRepo := auth.NewPostgresUserRepository(pool)
	authRefreshRepo := auth.NewPostgresRefreshTokenRepository(pool)

	signingKey := cfg.Auth.SigningKey
	if signingKey == "" {
		signingKey = "local-dev-signing-key-change-in-production"
		log.Warn().Msg("using default JWT signing key - not secure for production")
	}

	jwtService := auth.NewJWTService(auth.JWTConfig{
		SigningKey: signingKey,
		Issuer:     cfg.Auth.Issuer,
		Audience:   cfg.Auth.Audience,
	})

	authService := auth.NewService(auth.ServiceConfig{
		JWTService:  jwtService,
		UserRepo:    authUserRepo,
		RefreshRepo: authRefreshRepo,
	})
	log.Info().Msg("auth service initialized")

	// Initialize the event pipeline: in-process fanout always, Pub/Sub
	// when a project is configured
	fanout := events.NewFanoutPublisher(log)
	var publisher events.Publisher = fanout
	if cfg.Events.ProjectID != "" {
		pubsubPublisher, pubsubErr := events.NewPubSubPublisher(ctx, events.PubSubConfig{
			ProjectID: cfg.Events.ProjectID,
			TopicName: cfg.Events.Topic,
			Logger:    log,
		})
		if pubsubErr != nil {
			log.Fatal().Err(pubsubErr).Msg("failed to initialize pubsub publisher")
		}
		defer func() {
			if closeErr := pubsubPublisher.Close(); closeErr != nil {
				log.Error().Err(closeErr).Msg("failed to close pubsub publisher")
			}
		}()
		publisher = events.NewMultiPublisher(log, fanout, pubsubPublisher)
		log.Info().
			Str("project", cfg.Events.ProjectID).
			Str("topic", cfg.Events.Topic).
			Msg("pubsub publisher initialized")
	}

	// Initialize notification service and websocket hub; the listener
	// turns in-process events into stored notifications immediately
	hub := notification.NewHub(log)
	defer hub.CloseAll()
	notificationRepo := notification.NewPostgresRepository(pool)
	notificationService := notification.NewService(notificationRepo, hub, log)
	fanout.Subscribe(notification.NewListener(notificationService, log).Handle)
	log.Info().Msg("notification service initialized")

	// Initialize vehicle, fuel and route services
	vehicleService := vehicle.NewService(vehicle.NewPostgresRepository(pool), publisher)
	fuelService := fuel.NewService(fuel.NewPostgresRepository(pool))
	routeService := route.NewService(route.NewPostgresRepository(pool), vehicleService, fuelService, publisher)
	log.Info().Msg("fleet services initialized")

	// Initialize geocoding with an optional Redis cache in front
	var geocodeCache cache.Cache
	if cfg.Redis.Addr != "" {
		redisCache, redisErr := cache.NewRedisCache(cfg.Redis.Addr, cfg.Redis.Password, cfg.Redis.DB, log)
		if redisErr != nil {
			log.Fatal().Err(redisErr).Msg("failed to connect to redis")
		}
		geocodeCache = redisCache
		log.Info().Str("addr", cfg.Redis.Addr).Msg("redis cache initialized")
	} else {
		geocodeCache = cache.NewMemoryCache()
		log.Info().Msg("using in-memory geocode cache")
	}

	geocoder := nominatim.NewClient(nominatim.ClientConfig{
		BaseURL:   cfg.Geocode.BaseURL,
		UserAgent: cfg.Geocode.UserAgent,
		Registry:  registry,
		Logger:    log,
	})
	geocodingService := geocoding.NewService(geocoder, geocodeCache, geocoding.ServiceConfig{
		CacheTTL: cfg.Geocode.CacheTTL,
		Logger:   log,
	})
	log.Info().Msg("geocoding service initialized")

	// Initialize routing with the configured provider
	var routingProvider routing.Provider
	switch cfg.Routing.Provider {
	case "googlemaps":
		gm, gmErr := googlemaps.NewClient(googlemaps.ClientConfig{
			APIKey: cfg.Routing.GoogleAPIKey,
			Logger: log,
		})
		if gmErr != nil {
			log.Fatal().Err(gmErr).Msg("failed to initialize google maps client")
		}
		routingProvider = gm
	default:
		routingProvider = osrm.NewClient(osrm.ClientConfig{
			BaseURL:  cfg.Routing.OSRMBaseURL,
			Registry: registry,
			Logger:   log,
		})
	}
	routingService := routing.NewService(routing.ServiceConfig{
		Provider: routingProvider,
		Logger:   log,
	})
	log.Info().Str("provider", cfg.Routing.Provider).Msg("routing service initialized")

	// Initialize the route planner
	draftStore := planner.NewStore(cfg.Planner.DraftTTL)
	defer draftStore.Close()
	plannerService := planner.NewService(planner.Config{
		Store:    draftStore,
		Geocoder: geocodingService,
		Router:   routingService,
		Routes:   routeService,
		Logger:   log,
	})
	log.Info().Dur("draft_ttl", cfg.Planner.DraftTTL).Msg("planner service initialized")

	// Create router with configuration
	router := api.NewRouter(api.RouterConfig{
		Version:             Version,
		BuildTime:           BuildTime,
		Logger:              log,
		ServiceName:         serviceName,
		Metrics:             metrics,
		Pool:                pool,
		Registry:            registry,
		AuthService:         authService,
		VehicleService:      vehicleService,
		RouteService:        routeService,
		FuelService:         fuelService,
		GeocodingService:    geocodingService,
		PlannerService:      plannerService,
		NotificationService: notificationService,
		NotificationHub:     hub,
	})

	// Create HTTP server
	server := &http.Server{
		Addr:         ":" + cfg.Port,
		Handler:      router,
		ReadTimeout:  15 * time.Second,
		WriteTimeout: 15 * time.Second,
		IdleTimeout:  60 * time.Second,
	}

	// Start server in goroutine
	go func() {
		log.Info().
			Str("addr", server.Addr).
			Msg("server listening")

		if err := server.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			log.Fatal().Err(err).Msg("server error")
		}
	}()

	// Wait for interrupt signal
	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit

	log.Info().Msg("shutting down server")

	// Graceful shutdown with timeout
	shutdownCtx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer cancel()

	if err := server.Shutdown(shutdownCtx); err != nil {
		log.Error().Err(err).Msg("server forced to shutdown")
		os.Exit(1)
	}

	log.Info().Msg("server stopped")
}
