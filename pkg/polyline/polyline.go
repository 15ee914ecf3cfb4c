// Package polyline implements Google's encoded polyline algorithm at the
// standard precision of 5 decimal places, the format delivered by the
// OpenRouteService directions API.
// See https://developers.google.com/maps/documentation/utilities/polylinealgorithm
package polyline

import "math"

const precisionFactor = 1e5

// Point is a decoded polyline vertex.
type Point struct {
	Lat float64
	Lon float64
}

// Decode converts an encoded polyline string into its ordered vertices.
// An empty string decodes to nil.
func Decode(encoded string) []Point {
	if encoded == "" {
		return nil
	}

	points := make([]Point, 0, len(encoded)/4)
	var lat, lon, i int

	for i < len(encoded) {
		dLat, next := decodeDelta(encoded, i)
		lat += dLat

		dLon, next2 := decodeDelta(encoded, next)
		lon += dLon
		i = next2

		points = append(points, Point{
			Lat: float64(lat) / precisionFactor,
			Lon: float64(lon) / precisionFactor,
		})
	}

	return points
}

// decodeDelta reads one zig-zag encoded delta starting at offset i.
func decodeDelta(s string, i int) (delta, next int) {
	var result, shift int
	for i < len(s) {
		chunk := int(s[i]) - 63
		i++
		result |= (chunk & 0x1f) << shift
		shift += 5
		if chunk < 0x20 {
			break
		}
	}
	if result&1 != 0 {
		return ^(result >> 1), i
	}
	return result >> 1, i
}

// Encode converts vertices into an encoded polyline string.
func Encode(points []Point) string {
	if len(points) == 0 {
		return ""
	}

	buf := make([]byte, 0, len(points)*4)
	var prevLat, prevLon int

	for _, p := range points {
		lat := int(math.Round(p.Lat * precisionFactor))
		lon := int(math.Round(p.Lon * precisionFactor))
		buf = appendDelta(buf, lat-prevLat)
		buf = appendDelta(buf, lon-prevLon)
		prevLat, prevLon = lat, lon
	}

	return string(buf)
}

func appendDelta(buf []byte, v int) []byte {
	if v < 0 {
		v = ^(v << 1)
	} else {
		v <<= 1
	}
	for v >= 0x20 {
		buf = append(buf, byte((v&0x1f)|0x20)+63)
		v >>= 5
	}
	return append(buf, byte(v)+63)
}

const earthRadiusMeters = 6371000

// Length returns the total path length in meters.
func Length(points []Point) float64 {
	var total float64
	for i := 1; i < len(points); i++ {
		total += Haversine(points[i-1].Lat, points[i-1].Lon, points[i].Lat, points[i].Lon)
	}
	return total
}

// Haversine returns the great-circle distance in meters between two coordinates.
func Haversine(lat1, lon1, lat2, lon2 float64) float64 {
	rLat1 := lat1 * math.Pi / 180
	rLat2 := lat2 * math.Pi / 180
	dLat := (lat2 - lat1) * math.Pi / 180
	dLon := (lon2 - lon1) * math.Pi / 180

	sLat := math.Sin(dLat / 2)
	sLon := math.Sin(dLon / 2)

	h := sLat*sLat + math.Cos(rLat1)*math.Cos(rLat2)*sLon*sLon
	return 2 * earthRadiusMeters * math.Asin(math.Sqrt(h))
}
