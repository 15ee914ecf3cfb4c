// Package routing provides the boundary to external route-computation
// providers. Providers produce raw route geometry ahead of scoring; the core
// never performs path-finding itself.
package routing

import (
	"context"
	"errors"
	"time"

	"github.com/viasegura/viasegura/internal/route"
)

// Sentinel errors for routing operations.
var (
	// ErrProviderUnavailable indicates the provider is down or the circuit
	// breaker is open.
	ErrProviderUnavailable = errors.New("routing provider unavailable")
	// ErrNoRouteFound indicates no valid route exists between the points.
	ErrNoRouteFound = errors.New("no route found between the given points")
	// ErrRateLimitExceeded indicates the API quota has been exceeded.
	ErrRateLimitExceeded = errors.New("rate limit exceeded")
	// ErrInvalidCoordinates indicates coordinates outside valid ranges.
	ErrInvalidCoordinates = errors.New("invalid coordinates")
)

// Provider defines the interface for routing providers.
type Provider interface {
	// GetAlternatives retrieves route alternatives between two points.
	GetAlternatives(ctx context.Context, req DirectionsRequest) (*DirectionsResponse, error)
	// Name returns the provider identifier for logging and health tracking.
	Name() string
}

// Coordinate is a geographic point.
type Coordinate struct {
	Lat float64
	Lon float64
}

// DirectionsRequest asks for alternative routes between two points.
type DirectionsRequest struct {
	Origin          Coordinate
	Destination     Coordinate
	MaxAlternatives int // total routes wanted including the recommended one (default: 3)
}

// Alternative is one candidate route as delivered by the provider. Geometry
// stays in its wire encoding; normalization happens in the route package.
type Alternative struct {
	Geometry        route.RawGeometry
	DistanceMeters  int
	DurationSeconds int
	Summary         string
}

// DirectionsResponse holds the provider's route alternatives, recommended
// route first.
type DirectionsResponse struct {
	Alternatives []Alternative
	Provider     string
	FetchedAt    time.Time
}

// Error carries provider error details alongside the sentinel cause.
type Error struct {
	Provider string
	Code     string
	Message  string
	Err      error
}

func (e *Error) Error() string {
	if e.Err != nil {
		return e.Message + ": " + e.Err.Error()
	}
	return e.Message
}

func (e *Error) Unwrap() error {
	return e.Err
}

// IsRetryable reports whether the failure is transient.
func (e *Error) IsRetryable() bool {
	return errors.Is(e.Err, ErrProviderUnavailable) || errors.Is(e.Err, ErrRateLimitExceeded)
}

// ValidateCoordinate checks latitude/longitude ranges.
func ValidateCoordinate(c Coordinate) error {
	if c.Lat < -90 || c.Lat > 90 {
		return ErrInvalidCoordinates
	}
	if c.Lon < -180 || c.Lon > 180 {
		return ErrInvalidCoordinates
	}
	return nil
}
