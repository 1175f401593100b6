package utils

import (
	"math"

	"safetrail/models"
)

const (
	EarthRadiusKm = 6371.0
	EarthRadiusM  = 6371000.0
	DegToRad      = math.Pi / 180.0
	RadToDeg      = 180.0 / math.Pi
)

// HaversineDistanceKm calculates the great-circle distance between two
// coordinates in kilometers.
func HaversineDistanceKm(lat1, lon1, lat2, lon2 float64) float64 {
	lat1Rad := lat1 * DegToRad
	lat2Rad := lat2 * DegToRad

	dlat := (lat2 - lat1) * DegToRad
	dlon := (lon2 - lon1) * DegToRad

	a := math.Sin(dlat/2)*math.Sin(dlat/2) + math.Cos(lat1Rad)*math.Cos(lat2Rad)*math.Sin(dlon/2)*math.Sin(dlon/2)
	c := 2 * math.Atan2(math.Sqrt(a), math.Sqrt(1-a))

	return EarthRadiusKm * c
}

// HaversineDistanceM is HaversineDistanceKm in meters.
func HaversineDistanceM(lat1, lon1, lat2, lon2 float64) float64 {
	return HaversineDistanceKm(lat1, lon1, lat2, lon2) * 1000
}

// IsPointInPolygon checks if a point is inside a polygon using the
// ray-casting algorithm. The vertex sequence is treated as closed (the
// last vertex connects back to the first) and non-convex polygons are
// handled correctly. Edges use the conventional half-open rule: a point
// exactly on a lower/left edge counts as inside, on an upper/right edge
// as outside, so adjacent polygons never both claim a shared boundary
// point. Polygons with fewer than three vertices contain nothing.
func IsPointInPolygon(lat, lon float64, polygon []models.Coordinate) bool {
	if len(polygon) < 3 {
		return false
	}

	x, y := lon, lat
	inside := false

	j := len(polygon) - 1
	for i := 0; i < len(polygon); i++ {
		xi, yi := polygon[i].Longitude, polygon[i].Latitude
		xj, yj := polygon[j].Longitude, polygon[j].Latitude

		if ((yi > y) != (yj > y)) && (x < (xj-xi)*(y-yi)/(yj-yi)+xi) {
			inside = !inside
		}
		j = i
	}

	return inside
}

// IsValidCoordinate checks if latitude and longitude values are valid.
func IsValidCoordinate(lat, lon float64) bool {
	return lat >= -90 && lat <= 90 && lon >= -180 && lon <= 180
}

// PolygonCenter calculates the vertex centroid of a polygon. Used for
// sorting zones by distance, not for containment tests.
func PolygonCenter(polygon []models.Coordinate) models.Coordinate {
	if len(polygon) == 0 {
		return models.Coordinate{}
	}

	var latSum, lonSum float64
	for _, c := range polygon {
		latSum += c.Latitude
		lonSum += c.Longitude
	}

	return models.Coordinate{
		Latitude:  latSum / float64(len(polygon)),
		Longitude: lonSum / float64(len(polygon)),
	}
}
