package worker_test

import (
	"context"
	"testing"
	"time"

	"github.com/rs/zerolog"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/viasegura/viasegura/internal/worker"
	"github.com/viasegura/viasegura/internal/zones"
)

func testTargets() []worker.PrewarmTarget {
	return []worker.PrewarmTarget{
		{
			Name:     "center",
			Priority: 1,
			Points: []worker.Point{
				{Lat: 41.3874, Lon: 2.1686}, // Plaça de Catalunya
				{Lat: 41.4036, Lon: 2.1744}, // Sagrada Família
			},
		},
		{
			Name:     "west",
			Priority: 2,
			Points: []worker.Point{
				{Lat: 41.3809, Lon: 2.1206}, // Camp Nou
			},
		},
	}
}

func newTestJob(targets []worker.PrewarmTarget) (*worker.PrewarmJob, *zones.Resolver) {
	resolver := zones.NewResolver(zones.ResolverConfig{Logger: zerolog.Nop()})
	job := worker.NewPrewarmJob(worker.PrewarmJobConfig{
		Config: worker.PrewarmConfig{
			Targets:     targets,
			Concurrency: 2,
			Timeout:     time.Second,
		},
		Resolver: resolver,
		Logger:   zerolog.Nop(),
	})
	return job, resolver
}

func TestPrewarmRun(t *testing.T) {
	job, resolver := newTestJob(testTargets())

	result := job.Run(context.Background())

	assert.Equal(t, 3, result.TotalPoints)
	assert.Equal(t, 3, result.Resolved)
	// No polygons or geocoder configured, everything lands on the heuristic.
	assert.Equal(t, 3, result.HeuristicHits)
	assert.Zero(t, result.PolygonHits)
	assert.Zero(t, result.GeocoderHits)
	assert.Zero(t, result.CacheHits)
	assert.Equal(t, 3, resolver.CacheSize())
}

func TestPrewarmSecondRunHitsCache(t *testing.T) {
	job, _ := newTestJob(testTargets())

	job.Run(context.Background())
	result := job.Run(context.Background())

	assert.Equal(t, 3, result.Resolved)
	assert.Equal(t, 3, result.CacheHits)
	assert.Zero(t, result.HeuristicHits)
}

func TestPrewarmMetricsAccumulate(t *testing.T) {
	job, _ := newTestJob(testTargets())

	job.Run(context.Background())
	job.Run(context.Background())

	metrics := job.GetMetrics()
	assert.Equal(t, int64(2), metrics.TotalRuns)
	assert.Equal(t, int64(6), metrics.PointsResolved)
	assert.Equal(t, int64(3), metrics.HeuristicHits)
	assert.Equal(t, int64(3), metrics.CacheHits)
	assert.False(t, metrics.LastRunAt.IsZero())
}

func TestPrewarmDefaultsToLandmarkCatalog(t *testing.T) {
	job, _ := newTestJob(nil)

	result := job.Run(context.Background())

	assert.Equal(t, worker.DefaultPrewarmConfig().TotalPoints(), result.TotalPoints)
	assert.Equal(t, result.TotalPoints, result.Resolved)
}

func TestDefaultPrewarmTargets(t *testing.T) {
	config := worker.DefaultPrewarmConfig()

	require.NotEmpty(t, config.Targets)
	assert.Positive(t, config.TotalPoints())

	points := config.AllPoints()
	assert.Len(t, points, config.TotalPoints())
	for _, p := range points {
		assert.InDelta(t, 41.4, p.Lat, 0.2, "latitude should stay within the metro area")
		assert.InDelta(t, 2.15, p.Lon, 0.2, "longitude should stay within the metro area")
	}
}
