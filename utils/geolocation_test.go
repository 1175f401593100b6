package utils

import (
	"testing"

	"github.com/stretchr/testify/assert"

	"safetrail/models"
)

func TestHaversineDistanceKm(t *testing.T) {
	// India Gate to Connaught Place, roughly 2.5 km.
	d := HaversineDistanceKm(28.6129, 77.2295, 28.6315, 77.2167)
	assert.InDelta(t, 2.4, d, 0.3)

	// Delhi to Mumbai, roughly 1150 km.
	d = HaversineDistanceKm(28.6139, 77.2090, 19.0760, 72.8777)
	assert.InDelta(t, 1150, d, 25)
}

func TestHaversineDistanceZero(t *testing.T) {
	assert.Equal(t, 0.0, HaversineDistanceKm(28.6139, 77.2090, 28.6139, 77.2090))
}

func TestHaversineDistanceM(t *testing.T) {
	km := HaversineDistanceKm(28.6129, 77.2295, 28.6315, 77.2167)
	m := HaversineDistanceM(28.6129, 77.2295, 28.6315, 77.2167)
	assert.InDelta(t, km*1000, m, 0.001)
}

func squarePolygon() []models.Coordinate {
	return []models.Coordinate{
		{Latitude: 28.62, Longitude: 77.21},
		{Latitude: 28.62, Longitude: 77.23},
		{Latitude: 28.64, Longitude: 77.23},
		{Latitude: 28.64, Longitude: 77.21},
	}
}

func TestIsPointInPolygonInside(t *testing.T) {
	assert.True(t, IsPointInPolygon(28.63, 77.22, squarePolygon()))
}

func TestIsPointInPolygonOutside(t *testing.T) {
	assert.False(t, IsPointInPolygon(28.65, 77.22, squarePolygon()))
	assert.False(t, IsPointInPolygon(28.63, 77.25, squarePolygon()))
	assert.False(t, IsPointInPolygon(-28.63, 77.22, squarePolygon()))
}

func TestIsPointInPolygonConcave(t *testing.T) {
	// A U shape: the notch between the arms is outside.
	u := []models.Coordinate{
		{Latitude: 0, Longitude: 0},
		{Latitude: 0, Longitude: 3},
		{Latitude: 3, Longitude: 3},
		{Latitude: 3, Longitude: 2},
		{Latitude: 1, Longitude: 2},
		{Latitude: 1, Longitude: 1},
		{Latitude: 3, Longitude: 1},
		{Latitude: 3, Longitude: 0},
	}

	assert.True(t, IsPointInPolygon(0.5, 1.5, u))  // base of the U
	assert.False(t, IsPointInPolygon(2.0, 1.5, u)) // notch
	assert.True(t, IsPointInPolygon(2.0, 0.5, u))  // left arm
	assert.True(t, IsPointInPolygon(2.0, 2.5, u))  // right arm
}

func TestIsPointInPolygonTooFewVertices(t *testing.T) {
	line := []models.Coordinate{
		{Latitude: 28.62, Longitude: 77.21},
		{Latitude: 28.64, Longitude: 77.23},
	}
	assert.False(t, IsPointInPolygon(28.63, 77.22, line))
	assert.False(t, IsPointInPolygon(28.63, 77.22, nil))
}

func TestIsValidCoordinate(t *testing.T) {
	assert.True(t, IsValidCoordinate(0, 0))
	assert.True(t, IsValidCoordinate(90, 180))
	assert.True(t, IsValidCoordinate(-90, -180))
	assert.False(t, IsValidCoordinate(90.1, 0))
	assert.False(t, IsValidCoordinate(-90.1, 0))
	assert.False(t, IsValidCoordinate(0, 180.1))
	assert.False(t, IsValidCoordinate(0, -180.1))
}

func TestPolygonCenter(t *testing.T) {
	center := PolygonCenter(squarePolygon())
	assert.InDelta(t, 28.63, center.Latitude, 1e-9)
	assert.InDelta(t, 77.22, center.Longitude, 1e-9)

	assert.Equal(t, models.Coordinate{}, PolygonCenter(nil))
}
