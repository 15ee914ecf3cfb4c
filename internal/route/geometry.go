package route

import (
	"fmt"

	"github.com/viasegura/viasegura/pkg/polyline"
)

// GeometryKind tags the encoding of a raw route geometry. The set is closed:
// adding an encoding means extending Normalize's switch, which the compiler
// and tests will flag.
type GeometryKind int

const (
	// GeometryCoordinates is an explicit coordinate list in the provider's
	// longitude-first ordering.
	GeometryCoordinates GeometryKind = iota + 1
	// GeometryPolyline is a precision-5 encoded polyline string.
	GeometryPolyline
	// GeometryBoundingBox is a min/max corner fallback carrying no path
	// shape. Last-resort degradation, not equivalent fidelity.
	GeometryBoundingBox
)

// BoundingBox is the [minLon, minLat, maxLon, maxLat] fallback shape.
type BoundingBox struct {
	MinLon float64
	MinLat float64
	MaxLon float64
	MaxLat float64
}

// RawGeometry is the tagged union of geometry encodings a routing provider
// may deliver. Exactly the fields matching Kind are read.
type RawGeometry struct {
	Kind GeometryKind

	// LonLatPairs holds [lon, lat] pairs for GeometryCoordinates.
	LonLatPairs [][]float64

	// Polyline holds the encoded string for GeometryPolyline.
	Polyline string

	// BBox holds the corners for GeometryBoundingBox.
	BBox *BoundingBox
}

// Normalize converts a raw geometry into the canonical latitude-first path.
// Consecutive duplicate points are collapsed. Returns ErrUnrecognizedGeometry
// when the union tag is unknown, the tagged payload is missing, or decoding
// yields fewer than two distinct points.
func Normalize(raw RawGeometry) (Geometry, error) {
	switch raw.Kind {
	case GeometryCoordinates:
		points := make([]Coordinate, 0, len(raw.LonLatPairs))
		for _, pair := range raw.LonLatPairs {
			if len(pair) < 2 {
				return Geometry{}, fmt.Errorf("%w: coordinate pair with %d values", ErrUnrecognizedGeometry, len(pair))
			}
			// Providers deliver [lon, lat]; internal order is lat-first.
			points = append(points, Coordinate{Lat: pair[1], Lon: pair[0]})
		}
		return finishGeometry(points, FidelityFull)

	case GeometryPolyline:
		decoded := polyline.Decode(raw.Polyline)
		points := make([]Coordinate, 0, len(decoded))
		for _, p := range decoded {
			points = append(points, Coordinate{Lat: p.Lat, Lon: p.Lon})
		}
		return finishGeometry(points, FidelityFull)

	case GeometryBoundingBox:
		if raw.BBox == nil {
			return Geometry{}, fmt.Errorf("%w: bounding box payload missing", ErrUnrecognizedGeometry)
		}
		// Only the two endpoint corners can be recovered from a box.
		points := []Coordinate{
			{Lat: raw.BBox.MinLat, Lon: raw.BBox.MinLon},
			{Lat: raw.BBox.MaxLat, Lon: raw.BBox.MaxLon},
		}
		return finishGeometry(points, FidelityApproximate)

	default:
		return Geometry{}, fmt.Errorf("%w: unknown encoding tag %d", ErrUnrecognizedGeometry, raw.Kind)
	}
}

// StraightLine builds a two-point approximate geometry between known
// endpoints. Caller policy for when normalization of richer geometry failed;
// Normalize itself never substitutes one.
func StraightLine(origin, destination Coordinate) (Geometry, error) {
	return finishGeometry([]Coordinate{origin, destination}, FidelityApproximate)
}

// finishGeometry collapses consecutive duplicates and validates length.
func finishGeometry(points []Coordinate, fidelity Fidelity) (Geometry, error) {
	collapsed := points[:0]
	for _, p := range points {
		if len(collapsed) > 0 && collapsed[len(collapsed)-1] == p {
			continue
		}
		collapsed = append(collapsed, p)
	}

	if len(collapsed) < 2 {
		return Geometry{}, fmt.Errorf("%w: %d distinct points, need at least 2", ErrUnrecognizedGeometry, len(collapsed))
	}

	return Geometry{
		Points:         collapsed,
		Fidelity:       fidelity,
		DistanceMeters: polyline.Length(toPath(collapsed)),
	}, nil
}

// toPath converts canonical coordinates to polyline vertices.
func toPath(points []Coordinate) []polyline.Point {
	path := make([]polyline.Point, len(points))
	for i, p := range points {
		path[i] = polyline.Point{Lat: p.Lat, Lon: p.Lon}
	}
	return path
}

// EncodePath returns the precision-5 encoded polyline of a geometry's points.
func EncodePath(g Geometry) string {
	return polyline.Encode(toPath(g.Points))
}
