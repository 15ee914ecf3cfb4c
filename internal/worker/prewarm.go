package worker

import (
	"context"
	"sync"
	"time"

	"github.com/rs/zerolog"

	"github.com/viasegura/viasegura/internal/zones"
)

// PrewarmJob resolves zone assignments for the landmark catalog ahead of
// traffic, so first requests on popular routes hit a warm cache.
type PrewarmJob struct {
	config   PrewarmConfig
	resolver *zones.Resolver
	logger   zerolog.Logger

	metrics *PrewarmMetrics
}

// PrewarmMetrics tracks prewarm job statistics.
type PrewarmMetrics struct {
	mu sync.RWMutex

	TotalRuns      int64
	PointsResolved int64

	// Per-source counts reveal how much of the catalog depends on each
	// resolution tier.
	PolygonHits   int64
	GeocoderHits  int64
	HeuristicHits int64
	CacheHits     int64

	LastRunAt       time.Time
	LastRunDuration time.Duration
}

// PrewarmJobConfig holds configuration for creating a PrewarmJob.
type PrewarmJobConfig struct {
	Config   PrewarmConfig
	Resolver *zones.Resolver
	Logger   zerolog.Logger
}

// NewPrewarmJob creates a new prewarm job processor.
func NewPrewarmJob(cfg PrewarmJobConfig) *PrewarmJob {
	config := cfg.Config
	if len(config.Targets) == 0 {
		config = DefaultPrewarmConfig()
	}
	if config.Concurrency <= 0 {
		config.Concurrency = 3
	}
	if config.Timeout <= 0 {
		config.Timeout = 30 * time.Second
	}

	return &PrewarmJob{
		config:   config,
		resolver: cfg.Resolver,
		logger:   cfg.Logger,
		metrics:  &PrewarmMetrics{},
	}
}

// PrewarmResult contains the result of a prewarm run.
type PrewarmResult struct {
	StartTime     time.Time
	EndTime       time.Time
	Duration      time.Duration
	TotalPoints   int
	Resolved      int
	PolygonHits   int
	GeocoderHits  int
	HeuristicHits int
	CacheHits     int
}

// Run resolves all configured points.
func (j *PrewarmJob) Run(ctx context.Context) *PrewarmResult {
	startTime := time.Now()
	result := &PrewarmResult{
		StartTime:   startTime,
		TotalPoints: j.config.TotalPoints(),
	}

	j.logger.Info().
		Int("total_points", result.TotalPoints).
		Int("concurrency", j.config.Concurrency).
		Msg("starting zone prewarm job")

	points := j.config.AllPoints()

	pointsChan := make(chan Point, len(points))
	resultsChan := make(chan zones.Source, len(points))

	var wg sync.WaitGroup
	for i := 0; i < j.config.Concurrency; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			j.prewarmWorker(ctx, pointsChan, resultsChan)
		}()
	}

	for _, p := range points {
		pointsChan <- p
	}
	close(pointsChan)

	go func() {
		wg.Wait()
		close(resultsChan)
	}()

	for source := range resultsChan {
		result.Resolved++
		switch source {
		case zones.SourcePolygon:
			result.PolygonHits++
		case zones.SourceGeocoder:
			result.GeocoderHits++
		case zones.SourceHeuristic:
			result.HeuristicHits++
		case zones.SourceCache:
			result.CacheHits++
		}
	}

	result.EndTime = time.Now()
	result.Duration = result.EndTime.Sub(startTime)

	j.updateMetrics(result)

	j.logger.Info().
		Dur("duration", result.Duration).
		Int("resolved", result.Resolved).
		Int("polygon", result.PolygonHits).
		Int("geocoder", result.GeocoderHits).
		Int("heuristic", result.HeuristicHits).
		Int("cached", result.CacheHits).
		Int("cache_size", j.resolver.CacheSize()).
		Msg("zone prewarm job completed")

	return result
}

func (j *PrewarmJob) prewarmWorker(ctx context.Context, points <-chan Point, results chan<- zones.Source) {
	for point := range points {
		select {
		case <-ctx.Done():
			return
		default:
			pointCtx, cancel := context.WithTimeout(ctx, j.config.Timeout)
			assignment := j.resolver.Resolve(pointCtx, point.Lat, point.Lon)
			cancel()
			results <- assignment.Source
		}
	}
}

func (j *PrewarmJob) updateMetrics(result *PrewarmResult) {
	j.metrics.mu.Lock()
	defer j.metrics.mu.Unlock()

	j.metrics.TotalRuns++
	j.metrics.PointsResolved += int64(result.Resolved)
	j.metrics.PolygonHits += int64(result.PolygonHits)
	j.metrics.GeocoderHits += int64(result.GeocoderHits)
	j.metrics.HeuristicHits += int64(result.HeuristicHits)
	j.metrics.CacheHits += int64(result.CacheHits)
	j.metrics.LastRunAt = result.EndTime
	j.metrics.LastRunDuration = result.Duration
}

// GetMetrics returns a copy of the current metrics.
func (j *PrewarmJob) GetMetrics() PrewarmMetrics {
	j.metrics.mu.RLock()
	defer j.metrics.mu.RUnlock()

	return PrewarmMetrics{
		TotalRuns:       j.metrics.TotalRuns,
		PointsResolved:  j.metrics.PointsResolved,
		PolygonHits:     j.metrics.PolygonHits,
		GeocoderHits:    j.metrics.GeocoderHits,
		HeuristicHits:   j.metrics.HeuristicHits,
		CacheHits:       j.metrics.CacheHits,
		LastRunAt:       j.metrics.LastRunAt,
		LastRunDuration: j.metrics.LastRunDuration,
	}
}

// MetricsSnapshot returns a snapshot of the current metrics as a map.
func (j *PrewarmJob) MetricsSnapshot() map[string]interface{} {
	m := j.GetMetrics()
	return map[string]interface{}{
		"total_runs":        m.TotalRuns,
		"points_resolved":   m.PointsResolved,
		"polygon_hits":      m.PolygonHits,
		"geocoder_hits":     m.GeocoderHits,
		"heuristic_hits":    m.HeuristicHits,
		"cache_hits":        m.CacheHits,
		"last_run_at":       m.LastRunAt,
		"last_run_duration": m.LastRunDuration.String(),
	}
}
