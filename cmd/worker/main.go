// Package main provides the entrypoint for the ViaSegura background worker.
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

	"github.com/viasegura/viasegura/internal/worker"
	"github.com/viasegura/viasegura/internal/zones"
	"github.com/viasegura/viasegura/internal/zones/nominatim"
)

// Version and BuildTime are set at compile time via ldflags.
var (
	Version   = "dev"
	BuildTime = "unknown"
)

func main() {
	const serviceName = "viasegura-worker"

	log := zerolog.New(os.Stdout).
		With().
		Timestamp().
		Str("service", serviceName).
		Str("version", Version).
		Logger()

	log.Info().
		Str("build_time", BuildTime).
		Msg("starting ViaSegura worker")

	// Worker also exposes a health endpoint for the container platform.
	port := os.Getenv("APP_PORT")
	if port == "" {
		port = "8080"
	}

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	// Zone resolution chain, same construction as the API.
	var districts, neighborhoods *zones.PolygonSet
	var err error
	if path := os.Getenv("DISTRICTS_GEOJSON"); path != "" {
		districts, err = zones.LoadPolygonSet(path)
		if err != nil {
			log.Fatal().Err(err).Str("path", path).Msg("failed to load district polygons")
		}
	}
	if path := os.Getenv("NEIGHBORHOODS_GEOJSON"); path != "" {
		neighborhoods, err = zones.LoadPolygonSet(path)
		if err != nil {
			log.Fatal().Err(err).Str("path", path).Msg("failed to load neighborhood polygons")
		}
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
		Logger:        log,
	})

	prewarmJob := worker.NewPrewarmJob(worker.PrewarmJobConfig{
		Resolver: resolver,
		Logger:   log,
	})

	// Health check server
	mux := http.NewServeMux()
	mux.HandleFunc("/health", func(w http.ResponseWriter, _ *http.Request) {
		w.Header().Set("Content-Type", "application/json")
		w.WriteHeader(http.StatusOK)
		fmt.Fprintf(w, `{"status":"healthy","version":%q}`, Version)
	})

	server := &http.Server{
		Addr:         ":" + port,
		Handler:      mux,
		ReadTimeout:  15 * time.Second,
		WriteTimeout: 15 * time.Second,
	}

	go func() {
		log.Info().Str("addr", server.Addr).Msg("health check server listening")
		if err := server.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			log.Fatal().Err(err).Msg("health server error")
		}
	}()

	// Pub/Sub driven when configured, periodic otherwise.
	projectID := os.Getenv("PUBSUB_PROJECT_ID")
	subscription := os.Getenv("PUBSUB_SUBSCRIPTION")

	if projectID != "" && subscription != "" {
		pubsubHandler, err := worker.NewPubSubHandler(ctx, worker.PubSubConfig{
			ProjectID:        projectID,
			SubscriptionName: subscription,
			PrewarmJob:       prewarmJob,
			Logger:           log,
		})
		if err != nil {
			log.Fatal().Err(err).Msg("failed to create pubsub handler")
		}
		defer pubsubHandler.Close()

		go func() {
			if err := pubsubHandler.Start(ctx); err != nil && ctx.Err() == nil {
				log.Fatal().Err(err).Msg("pubsub handler error")
			}
		}()
	} else {
		log.Info().Msg("pubsub not configured, running prewarm on a timer")

		interval := 15 * time.Minute
		if raw := os.Getenv("PREWARM_INTERVAL"); raw != "" {
			if parsed, err := time.ParseDuration(raw); err == nil {
				interval = parsed
			}
		}

		go func() {
			prewarmJob.Run(ctx)

			ticker := time.NewTicker(interval)
			defer ticker.Stop()

			for {
				select {
				case <-ctx.Done():
					return
				case <-ticker.C:
					prewarmJob.Run(ctx)
				}
			}
		}()
	}

	// Wait for interrupt signal
	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit

	log.Info().Msg("shutting down worker")
	cancel()

	shutdownCtx, shutdownCancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer shutdownCancel()

	if err := server.Shutdown(shutdownCtx); err != nil {
		log.Error().Err(err).Msg("health server forced to shutdown")
	}

	log.Info().Msg("worker stopped")
}
