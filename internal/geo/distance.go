// Package geo provides great-circle distance math for audience selection.
package geo

import (
	"math"

	"github.com/mr1hm/go-report-alerts/internal/models"
)

const earthRadiusMeters = 6371000

// DistanceMeters returns the haversine great-circle distance between two
// points. Accurate to roughly 0.5% for the distances this service cares
// about (well under a few thousand kilometers).
func DistanceMeters(a, b models.GeoPoint) float64 {
	lat1 := a.Latitude * math.Pi / 180
	lat2 := b.Latitude * math.Pi / 180
	dLat := (b.Latitude - a.Latitude) * math.Pi / 180
	dLon := (b.Longitude - a.Longitude) * math.Pi / 180

	sinLat := math.Sin(dLat / 2)
	sinLon := math.Sin(dLon / 2)

	h := sinLat*sinLat + math.Cos(lat1)*math.Cos(lat2)*sinLon*sinLon
	return 2 * earthRadiusMeters * math.Asin(math.Sqrt(h))
}
