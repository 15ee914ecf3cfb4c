package zones

import (
	"encoding/json"
	"fmt"
	"os"
)

// PolygonSet holds boundary polygons with their zone codes, loaded once at
// startup from a GeoJSON FeatureCollection. Features carry "name" and "code"
// properties.
type PolygonSet struct {
	features []polygonFeature
}

type polygonFeature struct {
	name  string
	code  int
	rings [][]vertex // outer ring per polygon part; holes are ignored
}

type vertex struct {
	lat float64
	lon float64
}

type geojsonCollection struct {
	Features []struct {
		Properties struct {
			Name string `json:"name"`
			Code int    `json:"code"`
		} `json:"properties"`
		Geometry struct {
			Type        string          `json:"type"`
			Coordinates json.RawMessage `json:"coordinates"`
		} `json:"geometry"`
	} `json:"features"`
}

// LoadPolygonSet reads a GeoJSON file of district or neighborhood boundaries.
func LoadPolygonSet(path string) (*PolygonSet, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("reading polygon file: %w", err)
	}
	return ParsePolygonSet(data)
}

// ParsePolygonSet parses GeoJSON boundary data.
func ParsePolygonSet(data []byte) (*PolygonSet, error) {
	var collection geojsonCollection
	if err := json.Unmarshal(data, &collection); err != nil {
		return nil, fmt.Errorf("parsing geojson: %w", err)
	}

	set := &PolygonSet{}
	for _, f := range collection.Features {
		feature := polygonFeature{
			name: f.Properties.Name,
			code: f.Properties.Code,
		}

		switch f.Geometry.Type {
		case "Polygon":
			var rings [][][]float64
			if err := json.Unmarshal(f.Geometry.Coordinates, &rings); err != nil {
				return nil, fmt.Errorf("parsing polygon %q: %w", feature.name, err)
			}
			if len(rings) > 0 {
				feature.rings = append(feature.rings, toVertices(rings[0]))
			}
		case "MultiPolygon":
			var polys [][][][]float64
			if err := json.Unmarshal(f.Geometry.Coordinates, &polys); err != nil {
				return nil, fmt.Errorf("parsing multipolygon %q: %w", feature.name, err)
			}
			for _, rings := range polys {
				if len(rings) > 0 {
					feature.rings = append(feature.rings, toVertices(rings[0]))
				}
			}
		default:
			// Skip point/line features; boundary files should not contain them.
			continue
		}

		set.features = append(set.features, feature)
	}

	return set, nil
}

// toVertices converts a GeoJSON ring ([lon, lat] pairs) to vertices.
func toVertices(ring [][]float64) []vertex {
	vertices := make([]vertex, 0, len(ring))
	for _, pair := range ring {
		if len(pair) < 2 {
			continue
		}
		vertices = append(vertices, vertex{lat: pair[1], lon: pair[0]})
	}
	return vertices
}

// Find returns the code of the first feature containing the coordinate.
func (s *PolygonSet) Find(lat, lon float64) (code int, ok bool) {
	if s == nil {
		return 0, false
	}
	for _, f := range s.features {
		for _, ring := range f.rings {
			if containsPoint(ring, lat, lon) {
				return f.code, true
			}
		}
	}
	return 0, false
}

// Len returns the number of loaded features.
func (s *PolygonSet) Len() int {
	if s == nil {
		return 0
	}
	return len(s.features)
}

// containsPoint is a ray casting containment test against a single ring.
func containsPoint(ring []vertex, lat, lon float64) bool {
	if len(ring) < 3 {
		return false
	}
	inside := false
	j := len(ring) - 1
	for i := 0; i < len(ring); i++ {
		vi, vj := ring[i], ring[j]
		if (vi.lat > lat) != (vj.lat > lat) &&
			lon < (vj.lon-vi.lon)*(lat-vi.lat)/(vj.lat-vi.lat)+vi.lon {
			inside = !inside
		}
		j = i
	}
	return inside
}
