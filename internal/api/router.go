// Package api provides the HTTP API for ViaSegura.
package api

import (
	"github.com/go-chi/chi/v5"
	chimiddleware "github.com/go-chi/chi/v5/middleware"
	"github.com/rs/zerolog"

	"github.com/viasegura/viasegura/internal/api/handler"
	"github.com/viasegura/viasegura/internal/api/middleware"
	"github.com/viasegura/viasegura/internal/history"
	"github.com/viasegura/viasegura/internal/provider/resilience"
	"github.com/viasegura/viasegura/internal/scoring"
	"github.com/viasegura/viasegura/internal/zones"
)

// RouterConfig holds configuration for the router.
type RouterConfig struct {
	Version        string
	BuildTime      string
	Logger         zerolog.Logger
	ServiceName    string
	Metrics        *middleware.Metrics
	ScoringService *scoring.Service
	ZoneResolver   *zones.Resolver
	History        history.Repository
	Registry       *resilience.Registry
	DB             handler.Pinger
}

// NewRouter creates a new chi router with all API routes configured.
func NewRouter(cfg RouterConfig) *chi.Mux {
	r := chi.NewRouter()

	serviceName := cfg.ServiceName
	if serviceName == "" {
		serviceName = "viasegura-api"
	}

	// Global middleware - order matters
	r.Use(middleware.RequestID)            // Generate/propagate request ID first
	r.Use(middleware.Tracing(serviceName)) // Distributed tracing
	if cfg.Metrics != nil {
		r.Use(cfg.Metrics.Middleware()) // HTTP metrics
	}
	r.Use(middleware.Logger(cfg.Logger))   // Structured logging
	r.Use(middleware.Recovery(cfg.Logger)) // Panic recovery
	r.Use(chimiddleware.RealIP)            // Real IP extraction
	r.Use(middleware.SecurityHeaders)      // Security headers (HSTS, CSP, etc.)
	r.Use(middleware.RequireTLS)           // TLS enforcement (enabled via REQUIRE_TLS=true)
	r.Use(middleware.ContentTypeJSON)      // JSON content type
	r.Use(middleware.RequireJSON)          // Reject non-JSON bodies

	opsHandler := handler.NewOpsHandler(cfg.Version, cfg.BuildTime, cfg.Registry, cfg.DB)
	routeHandler := handler.NewRouteHandler(cfg.ScoringService)
	zoneHandler := handler.NewZoneHandler(cfg.ZoneResolver)
	historyHandler := handler.NewHistoryHandler(cfg.History)

	expensiveRateLimit := middleware.RateLimitByIP(middleware.ExpensiveRateLimit) // 30 req/min
	standardRateLimit := middleware.RateLimitByIP(middleware.StandardRateLimit)   // 100 req/min

	r.Route("/v1", func(r chi.Router) {
		// Ops endpoints (public)
		r.Route("/ops", func(r chi.Router) {
			r.Get("/health", opsHandler.HealthCheck)
			r.Get("/ready", opsHandler.ReadinessCheck)
			r.Get("/status", opsHandler.SystemStatus)
		})

		// Scoring endpoints - expensive compute, strict rate limiting
		r.With(expensiveRateLimit).Post("/routes:score", routeHandler.ScoreRoute)
		r.With(expensiveRateLimit).Post("/routes:recommend", routeHandler.RecommendRoutes)

		// Zone resolution - standard rate limiting
		r.With(standardRateLimit).Get("/zones/resolve", zoneHandler.ResolveZone)

		// History - standard rate limiting
		r.With(standardRateLimit).Get("/history/recent", historyHandler.RecentHistory)
	})

	return r
}
