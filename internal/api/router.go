// Package api provides the HTTP API for FleetDispatch.
package api

import (
	"github.com/go-chi/chi/v5"
	chimiddleware "github.com/go-chi/chi/v5/middleware"
	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/rs/zerolog"

	"github.com/fleetdispatch/fleetdispatch/internal/api/handler"
	"github.com/fleetdispatch/fleetdispatch/internal/api/middleware"
	"github.com/fleetdispatch/fleetdispatch/internal/auth"
	"github.com/fleetdispatch/fleetdispatch/internal/fuel"
	"github.com/fleetdispatch/fleetdispatch/internal/geocoding"
	"github.com/fleetdispatch/fleetdispatch/internal/notification"
	"github.com/fleetdispatch/fleetdispatch/internal/planner"
	"github.com/fleetdispatch/fleetdispatch/internal/provider/resilience"
	"github.com/fleetdispatch/fleetdispatch/internal/route"
	"github.com/fleetdispatch/fleetdispatch/internal/vehicle"
)

// RouterConfig holds configuration for the router.
type RouterConfig struct {
	Version             string
	BuildTime           string
	Logger              zerolog.Logger
	ServiceName         string
	Metrics             *middleware.Metrics
	Pool                *pgxpool.Pool
	Registry            *resilience.Registry
	AuthService         *auth.Service
	VehicleService      *vehicle.Service
	RouteService        *route.Service
	FuelService         *fuel.Service
	GeocodingService    *geocoding.Service
	PlannerService      *planner.Service
	NotificationService *notification.Service
	NotificationHub     *notification.Hub
}

// NewRouter creates a new chi router with all API routes configured.
func NewRouter(cfg RouterConfig) *chi.Mux {
	r := chi.NewRouter()

	serviceName := cfg.ServiceName
	if serviceName == "" {
		serviceName = "fleetdispatch-api"
	}

	// Global middleware - order matters
	r.Use(middleware.RequestID)
	r.Use(middleware.Tracing(serviceName))
	if cfg.Metrics != nil {
		r.Use(cfg.Metrics.Middleware())
	}
	r.Use(middleware.Logger(cfg.Logger))
	r.Use(middleware.Recovery(cfg.Logger))
	r.Use(chimiddleware.RealIP)
	r.Use(middleware.SecurityHeaders)
	r.Use(middleware.RequireTLS)
	r.Use(middleware.ContentTypeJSON)

	// Initialize handlers
	opsHandler := handler.NewOpsHandler(cfg.Version, cfg.BuildTime, cfg.Pool, cfg.Registry)
	authHandler := handler.NewAuthHandler(cfg.AuthService)
	vehicleHandler := handler.NewVehicleHandler(cfg.VehicleService)
	routeHandler := handler.NewRouteHandler(cfg.RouteService)
	fuelHandler := handler.NewFuelHandler(cfg.FuelService, cfg.VehicleService)
	geocodeHandler := handler.NewGeocodeHandler(cfg.GeocodingService)
	draftHandler := handler.NewDraftHandler(cfg.PlannerService)
	notificationHandler := handler.NewNotificationHandler(cfg.NotificationService)
	streamHandler := handler.NewStreamHandler(cfg.NotificationHub, cfg.Logger)

	authMiddleware := middleware.Auth(cfg.AuthService)
	adminOnly := middleware.RequireRole(auth.RoleAdmin)

	authRateLimit := middleware.RateLimitByIP(middleware.AuthRateLimit)             // 10 req/min
	expensiveRateLimit := middleware.RateLimitByUser(middleware.ExpensiveRateLimit) // 30 req/min
	standardRateLimit := middleware.RateLimitByUser(middleware.StandardRateLimit)   // 100 req/min

	// API v1 routes
	r.Route("/v1", func(r chi.Router) {
		// Auth endpoints (public) - strict rate limiting
		r.Route("/auth", func(r chi.Router) {
			r.Use(authRateLimit)
			r.Post("/register", authHandler.Register)
			r.Post("/login", authHandler.Login)
			r.Post("/refresh", authHandler.RefreshToken)
			r.Post("/logout", authHandler.Logout)
			// logout-all requires authentication
			r.With(authMiddleware).Post("/logout-all", authHandler.LogoutAll)
		})

		// Ops endpoints (public)
		r.Route("/ops", func(r chi.Router) {
			r.Get("/health", opsHandler.HealthCheck)
			r.Get("/ready", opsHandler.ReadinessCheck)
			// Status endpoint requires authentication
			r.With(authMiddleware).Get("/status", opsHandler.SystemStatus)
		})

		// Account endpoints (authenticated) - user-based rate limiting
		r.Route("/me", func(r chi.Router) {
			r.Use(authMiddleware)
			r.Use(standardRateLimit)
			r.Get("/", authHandler.Me)
			r.Delete("/", authHandler.DeleteAccount)
			r.Put("/password", authHandler.ChangePassword)
			r.Put("/username", authHandler.ChangeUsername)
			r.Put("/email", authHandler.ChangeEmail)
		})

		// Role management (admin only)
		r.Route("/admin/roles", func(r chi.Router) {
			r.Use(authMiddleware)
			r.Use(adminOnly)
			r.Use(standardRateLimit)
			r.Post("/", authHandler.GrantRole)
			r.Delete("/", authHandler.RevokeRole)
		})

		// Vehicle endpoints (authenticated)
		r.Route("/vehicles", func(r chi.Router) {
			r.Use(authMiddleware)
			r.Use(standardRateLimit)
			r.Get("/", vehicleHandler.List)
			r.Post("/", vehicleHandler.Create)
			r.Post("/search", vehicleHandler.Search)
			r.Put("/route", vehicleHandler.RecordRouteResult)
			r.Get("/{licensePlate}", vehicleHandler.Get)
			r.Delete("/{licensePlate}", vehicleHandler.Delete)
		})

		// Route endpoints (authenticated)
		r.Route("/routes", func(r chi.Router) {
			r.Use(authMiddleware)
			r.Use(standardRateLimit)
			r.Get("/", routeHandler.List)
			r.Post("/", routeHandler.Create)
			r.Put("/status", routeHandler.UpdateStatus)
			r.Post("/search", routeHandler.Search)
			r.Get("/{routeId}", routeHandler.Get)
			r.Delete("/{routeId}", routeHandler.Delete)
		})

		// Planning drafts (authenticated) - geocoding and routing are
		// expensive upstream calls
		r.Route("/drafts", func(r chi.Router) {
			r.Use(authMiddleware)
			r.Use(expensiveRateLimit)
			r.Post("/", draftHandler.Create)
			r.Route("/{draftId}", func(r chi.Router) {
				r.Get("/", draftHandler.Get)
				r.Delete("/", draftHandler.Close)
				r.Post("/slots", draftHandler.AddSlot)
				r.Route("/slots/{slotId}", func(r chi.Router) {
					r.Delete("/", draftHandler.RemoveSlot)
					r.Put("/query", draftHandler.UpdateQuery)
					r.Post("/pick", draftHandler.PickSuggestion)
					r.Post("/address", draftHandler.StructuredSearch)
				})
				r.Put("/vehicle", draftHandler.SelectVehicle)
				r.Post("/attach", draftHandler.Attach)
				r.Post("/show-route", draftHandler.ShowRoute)
			})
		})

		// Geocoding proxy (authenticated) - strict rate limiting
		r.Route("/geocode", func(r chi.Router) {
			r.Use(authMiddleware)
			r.Use(expensiveRateLimit)
			r.Get("/", geocodeHandler.Search)
			r.Post("/", geocodeHandler.StructuredSearch)
		})

		// Fuel history (authenticated)
		r.Route("/fuel", func(r chi.Router) {
			r.Use(authMiddleware)
			r.Use(standardRateLimit)
			r.Get("/", fuelHandler.List)
			r.Post("/", fuelHandler.Record)
		})

		// Notifications (authenticated)
		r.Route("/notifications", func(r chi.Router) {
			r.Use(authMiddleware)
			r.Get("/stream", streamHandler.Serve)
			r.With(standardRateLimit).Get("/", notificationHandler.List)
			r.With(standardRateLimit).Get("/unread-count", notificationHandler.UnreadCount)
			r.With(standardRateLimit).Put("/read-all", notificationHandler.MarkAllRead)
			r.With(standardRateLimit).Put("/{notificationId}/read", notificationHandler.MarkRead)
		})
	})

	return r
}
