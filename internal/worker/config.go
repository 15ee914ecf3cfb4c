// Package worker provides background job processing for ViaSegura.
package worker

import (
	"time"
)

// PrewarmTarget represents a group of points whose zone assignments get
// pre-resolved.
type PrewarmTarget struct {
	// Name is the human-readable name of the target.
	Name string

	// Points are the lat/lon coordinates to pre-resolve.
	// Typically landmarks and transport hubs popular as trip endpoints.
	Points []Point

	// Priority determines processing order (lower = higher priority).
	Priority int
}

// Point represents a geographic coordinate.
type Point struct {
	Lat float64
	Lon float64
}

// PrewarmConfig holds configuration for the zone prewarm job.
type PrewarmConfig struct {
	// Targets are the point groups to pre-resolve.
	// If empty, uses DefaultPrewarmTargets.
	Targets []PrewarmTarget

	// Concurrency is the number of concurrent resolution operations.
	// Default: 3
	Concurrency int

	// Timeout is the timeout for each resolution.
	// Default: 30 seconds
	Timeout time.Duration
}

// DefaultPrewarmConfig returns the default prewarm configuration.
func DefaultPrewarmConfig() PrewarmConfig {
	return PrewarmConfig{
		Targets:     DefaultPrewarmTargets(),
		Concurrency: 3,
		Timeout:     30 * time.Second,
	}
}

// DefaultPrewarmTargets returns the default prewarm targets for Barcelona.
// Covers the landmarks and neighborhood centers most requested as trip
// endpoints.
func DefaultPrewarmTargets() []PrewarmTarget {
	return []PrewarmTarget{
		{
			Name:     "center",
			Priority: 1,
			Points: []Point{
				{Lat: 41.3874, Lon: 2.1686}, // Plaça de Catalunya
				{Lat: 41.3809, Lon: 2.1730}, // La Rambla
				{Lat: 41.3800, Lon: 2.1699}, // El Raval
				{Lat: 41.3846, Lon: 2.1837}, // El Born
				{Lat: 41.3868, Lon: 2.1651}, // Universitat de Barcelona
				{Lat: 41.3917, Lon: 2.1650}, // Passeig de Gràcia
				{Lat: 41.3887, Lon: 2.1901}, // Parc de la Ciutadella
				{Lat: 41.3804, Lon: 2.1896}, // Barceloneta
			},
		},
		{
			Name:     "landmarks",
			Priority: 1,
			Points: []Point{
				{Lat: 41.4036, Lon: 2.1744}, // Sagrada Família
				{Lat: 41.4145, Lon: 2.1527}, // Park Güell
				{Lat: 41.3809, Lon: 2.1206}, // Camp Nou
				{Lat: 41.3641, Lon: 2.1580}, // Montjuïc
				{Lat: 41.4033, Lon: 2.1896}, // Torre Glòries
				{Lat: 41.4122, Lon: 2.1740}, // Hospital de Sant Pau
				{Lat: 41.3892, Lon: 2.1507}, // Hospital Clínic
			},
		},
		{
			Name:     "transport",
			Priority: 2,
			Points: []Point{
				{Lat: 41.3795, Lon: 2.1401}, // Estació de Sants
				{Lat: 41.2974, Lon: 2.0833}, // Aeroport El Prat
				{Lat: 41.4214, Lon: 2.1867}, // La Sagrera
				{Lat: 41.4035, Lon: 2.1884}, // Glòries
			},
		},
		{
			Name:     "north",
			Priority: 3,
			Points: []Point{
				{Lat: 41.4030, Lon: 2.1561}, // Gràcia
				{Lat: 41.4142, Lon: 2.1481}, // Vallcarca
				{Lat: 41.4300, Lon: 2.1672}, // Horta
				{Lat: 41.4338, Lon: 2.1486}, // Vall d'Hebron
				{Lat: 41.4416, Lon: 2.1777}, // Nou Barris
				{Lat: 41.4361, Lon: 2.1894}, // Sant Andreu
				{Lat: 41.4410, Lon: 2.1975}, // Trinitat Vella
				{Lat: 41.4365, Lon: 2.1980}, // Bon Pastor
			},
		},
		{
			Name:     "west",
			Priority: 3,
			Points: []Point{
				{Lat: 41.3859, Lon: 2.1357}, // Les Corts
				{Lat: 41.4001, Lon: 2.1218}, // Sarrià
				{Lat: 41.3991, Lon: 2.1303}, // Tres Torres
				{Lat: 41.3992, Lon: 2.1392}, // Sant Gervasi
				{Lat: 41.3818, Lon: 2.1202}, // Zona Universitària
				{Lat: 41.3914, Lon: 2.1161}, // Pedralbes
			},
		},
		{
			Name:     "east",
			Priority: 3,
			Points: []Point{
				{Lat: 41.3734, Lon: 2.1613}, // Poble-sec
				{Lat: 41.3801, Lon: 2.1400}, // Sants
				{Lat: 41.4031, Lon: 2.1999}, // Poblenou
				{Lat: 41.3909, Lon: 2.1992}, // Vila Olímpica
				{Lat: 41.4102, Lon: 2.1873}, // El Clot
				{Lat: 41.4098, Lon: 2.2037}, // Sant Martí
				{Lat: 41.4106, Lon: 2.2186}, // Diagonal Mar
				{Lat: 41.4097, Lon: 2.2293}, // Fòrum
			},
		},
	}
}

// AllPoints returns all points from all targets, ordered by priority.
func (c PrewarmConfig) AllPoints() []Point {
	var points []Point
	for _, target := range c.Targets {
		points = append(points, target.Points...)
	}
	return points
}

// TotalPoints returns the total number of points to pre-resolve.
func (c PrewarmConfig) TotalPoints() int {
	total := 0
	for _, target := range c.Targets {
		total += len(target.Points)
	}
	return total
}
