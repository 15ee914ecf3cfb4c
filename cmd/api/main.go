// Package main provides the entrypoint for the ViaSegura API server.
package main

import (
	"context"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/rs/zerolog"

	"github.com/viasegura/viasegura/internal/api"
	"github.com/viasegura/viasegura/internal/api/handler"
	"github.com/viasegura/viasegura/internal/api/middleware"
	"github.com/viasegura/viasegura/internal/database"
	"github.com/viasegura/viasegura/internal/history"
	"github.com/viasegura/viasegura/internal/provider/resilience"
	"github.com/viasegura/viasegura/internal/risk"
	"github.com/viasegura/viasegura/internal/risk/modelserver"
	"github.com/viasegura/viasegura/internal/route"
	"github.com/viasegura/viasegura/internal/routing"
	"github.com/viasegura/viasegura/internal/routing/openrouteservice"
	"github.com/viasegura/viasegura/internal/scoring"
	"github.com/viasegura/viasegura/internal/telemetry"
	"github.com/viasegura/viasegura/internal/zones"
	"github.com/viasegura/viasegura/internal/zones/nominatim"
)

// Version and BuildTime are set at compile time via ldflags.
var (
	Version   = "dev"
	BuildTime = "unknown"
)

func main() {
	const serviceName = "viasegura-api"

	// Setup structured logging
	log := zerolog.New(os.Stdout).
		With().
		Timestamp().
		Str("service", serviceName).
		Str("version", Version).
		Logger()

	log.Info().
		Str("build_time", BuildTime).
		Msg("starting ViaSegura API")

	// Get configuration from environment
	port := os.Getenv("APP_PORT")
	if port == "" {
		port = "8080"
	}

	otlpEndpoint := os.Getenv("OTEL_EXPORTER_OTLP_ENDPOINT")
	if otlpEndpoint == "" {
		otlpEndpoint = "localhost:4317"
	}

	env := os.Getenv("APP_ENV")
	if env == "" {
		env = "development"
	}

	// Initialize OpenTelemetry
	ctx := context.Background()
	telemetryEnabled := os.Getenv("OTEL_ENABLED") == "true"

	tp, err := telemetry.Init(ctx, telemetry.Config{
		ServiceName:    serviceName,
		ServiceVersion: Version,
		Environment:    env,
		OTLPEndpoint:   otlpEndpoint,
		Enabled:        telemetryEnabled,
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

	if telemetryEnabled {
		log.Info().
			Str("otlp_endpoint", otlpEndpoint).
			Msg("OpenTelemetry initialized")
	}

	// Initialize metrics
	metrics, err := middleware.NewMetrics()
	if err != nil {
		log.Error().Err(err).Msg("failed to initialize metrics")
		os.Exit(1) //nolint:gocritic // intentional exit, telemetry cleanup is best-effort
	}

	scoringMetrics, err := telemetry.NewScoringMetrics(tp.Meter)
	if err != nil {
		log.Error().Err(err).Msg("failed to initialize scoring metrics")
		os.Exit(1)
	}

	// History persistence: PostgreSQL when reachable, in-memory otherwise.
	// Scoring works without the audit trail.
	var historyRepo history.Repository
	var dbPinger handler.Pinger

	dbConfig := database.ConfigFromEnv()
	pool, err := database.Connect(ctx, dbConfig)
	if err != nil {
		log.Warn().Err(err).Msg("database unavailable, using in-memory history")
		historyRepo = history.NewInMemoryRepository()
	} else {
		defer pool.Close()
		if err := database.EnsureSchema(ctx, pool); err != nil {
			log.Fatal().Err(err).Msg("failed to ensure database schema")
		}
		historyRepo = history.NewPostgresRepository(pool)
		dbPinger = pool
		log.Info().
			Str("host", dbConfig.Host).
			Int("port", dbConfig.Port).
			Str("database", dbConfig.Database).
			Msg("database connected")
	}

	// Provider health registry feeds the ops status endpoint.
	registry := resilience.NewRegistry()

	// Zone resolution: polygons when configured, Nominatim, then band heuristic.
	var districts, neighborhoods *zones.PolygonSet
	if path := os.Getenv("DISTRICTS_GEOJSON"); path != "" {
		districts, err = zones.LoadPolygonSet(path)
		if err != nil {
			log.Fatal().Err(err).Str("path", path).Msg("failed to load district polygons")
		}
		log.Info().Int("polygons", districts.Len()).Msg("district polygons loaded")
	}
	if path := os.Getenv("NEIGHBORHOODS_GEOJSON"); path != "" {
		neighborhoods, err = zones.LoadPolygonSet(path)
		if err != nil {
			log.Fatal().Err(err).Str("path", path).Msg("failed to load neighborhood polygons")
		}
		log.Info().Int("polygons", neighborhoods.Len()).Msg("neighborhood polygons loaded")
	}

	var geocoder zones.ReverseGeocoder
	if os.Getenv("NOMINATIM_DISABLED") != "true" {
		geocoder = nominatim.NewClient(nominatim.ClientConfig{
			BaseURL: os.Getenv("NOMINATIM_BASE_URL"),
			Logger:  log,
		})
	}

	resolver := zones.NewResolver(zones.ResolverConfig{
		Districts:     districts,
		Neighborhoods: neighborhoods,
		Geocoder:      geocoder,
		Metrics:       scoringMetrics,
		Logger:        log,
	})

	// Risk model
	modelServerURL := os.Getenv("MODEL_SERVER_URL")
	if modelServerURL == "" {
		modelServerURL = "http://localhost:8500"
	}
	classifier := modelserver.NewClient(modelserver.ClientConfig{
		BaseURL:  modelServerURL,
		Registry: registry,
		Logger:   log,
	})
	scorer := risk.NewScorer(risk.ScorerConfig{
		Classifier: classifier,
		Logger:     log,
	})

	aggregator := route.NewAggregator(route.AggregatorConfig{
		Resolver:           resolver,
		Scorer:             scorer,
		StrictZeroCoverage: os.Getenv("STRICT_ZERO_COVERAGE") == "true",
		Metrics:            scoringMetrics,
		Logger:             log,
	})

	// Routing provider
	orsAPIKey := os.Getenv("ORS_API_KEY")
	if orsAPIKey == "" {
		log.Warn().Msg("ORS_API_KEY not set - route recommendation will fail")
	}
	orsClient := openrouteservice.NewClient(openrouteservice.ClientConfig{
		APIKey:   orsAPIKey,
		BaseURL:  os.Getenv("ORS_BASE_URL"),
		Registry: registry,
		Logger:   log,
	})
	routingService := routing.NewService(routing.ServiceConfig{
		Provider: orsClient,
		Logger:   log,
	})
	log.Info().Msg("routing service initialized")

	scoringService := scoring.NewService(scoring.ServiceConfig{
		Directions: routingService,
		Aggregator: aggregator,
		History:    historyRepo,
		Metrics:    scoringMetrics,
		Logger:     log,
	})
	log.Info().Msg("scoring service initialized")

	// Create router with configuration
	router := api.NewRouter(api.RouterConfig{
		Version:        Version,
		BuildTime:      BuildTime,
		Logger:         log,
		ServiceName:    serviceName,
		Metrics:        metrics,
		ScoringService: scoringService,
		ZoneResolver:   resolver,
		History:        historyRepo,
		Registry:       registry,
		DB:             dbPinger,
	})

	// Create HTTP server
	server := &http.Server{
		Addr:         ":" + port,
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
