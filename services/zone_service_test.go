package services

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"go.mongodb.org/mongo-driver/bson/primitive"

	"safetrail/models"
)

func squareZone(name string, level models.SafetyLevel, priority int, minLat, minLon, maxLat, maxLon float64) models.SafetyZone {
	return models.SafetyZone{
		ID:          primitive.NewObjectID(),
		Name:        name,
		SafetyLevel: level,
		Priority:    priority,
		Coordinates: []models.Coordinate{
			{Latitude: minLat, Longitude: minLon},
			{Latitude: minLat, Longitude: maxLon},
			{Latitude: maxLat, Longitude: maxLon},
			{Latitude: maxLat, Longitude: minLon},
		},
	}
}

func TestClassifyAgainstInsideZone(t *testing.T) {
	zones := []models.SafetyZone{
		squareZone("Market Square", models.SafetyLevelSafe, 20, 28.62, 77.21, 28.64, 77.23),
	}

	result := ClassifyAgainst(zones, models.Coordinate{Latitude: 28.63, Longitude: 77.22})

	assert.True(t, result.Success)
	assert.Equal(t, models.SafetyLevelSafe, result.SafetyLevel)
	assert.True(t, result.IsInSafeZone)
	if assert.NotNil(t, result.Zone) {
		assert.Equal(t, "Market Square", result.Zone.Name)
	}
}

func TestClassifyAgainstOutsideAllZones(t *testing.T) {
	zones := []models.SafetyZone{
		squareZone("Market Square", models.SafetyLevelSafe, 20, 28.62, 77.21, 28.64, 77.23),
	}

	result := ClassifyAgainst(zones, models.Coordinate{Latitude: 10.0, Longitude: 10.0})

	// Unmapped territory defaults to caution, never to safe.
	assert.True(t, result.Success)
	assert.Equal(t, models.SafetyLevelCaution, result.SafetyLevel)
	assert.False(t, result.IsInSafeZone)
	assert.Nil(t, result.Zone)
}

func TestClassifyAgainstOverlapPicksFirstInList(t *testing.T) {
	// The repository returns zones ordered by ascending priority, so a
	// restricted zone nested inside a safe one wins when it sorts first.
	zones := []models.SafetyZone{
		squareZone("Construction Pit", models.SafetyLevelRestricted, 1, 28.625, 77.215, 28.635, 77.225),
		squareZone("Market Square", models.SafetyLevelSafe, 20, 28.62, 77.21, 28.64, 77.23),
	}

	point := models.Coordinate{Latitude: 28.63, Longitude: 77.22}

	result := ClassifyAgainst(zones, point)
	assert.Equal(t, models.SafetyLevelRestricted, result.SafetyLevel)
	assert.False(t, result.IsInSafeZone)
	assert.Equal(t, "Construction Pit", result.Zone.Name)

	// The same point outside the nested zone falls through to the safe
	// one.
	edge := models.Coordinate{Latitude: 28.6215, Longitude: 77.2215}
	result = ClassifyAgainst(zones, edge)
	assert.Equal(t, models.SafetyLevelSafe, result.SafetyLevel)
	assert.True(t, result.IsInSafeZone)
}

func TestClassifyAgainstSkipsDegenerateZones(t *testing.T) {
	zones := []models.SafetyZone{
		{
			ID:          primitive.NewObjectID(),
			Name:        "Broken Zone",
			SafetyLevel: models.SafetyLevelRestricted,
			Priority:    1,
			Coordinates: []models.Coordinate{
				{Latitude: 28.62, Longitude: 77.21},
				{Latitude: 28.64, Longitude: 77.23},
			},
		},
		squareZone("Market Square", models.SafetyLevelSafe, 20, 28.62, 77.21, 28.64, 77.23),
	}

	result := ClassifyAgainst(zones, models.Coordinate{Latitude: 28.63, Longitude: 77.22})

	assert.Equal(t, models.SafetyLevelSafe, result.SafetyLevel)
	assert.Equal(t, "Market Square", result.Zone.Name)
}

func TestClassifyAgainstEmptyZoneList(t *testing.T) {
	result := ClassifyAgainst(nil, models.Coordinate{Latitude: 28.63, Longitude: 77.22})

	assert.True(t, result.Success)
	assert.Equal(t, models.SafetyLevelCaution, result.SafetyLevel)
	assert.False(t, result.IsInSafeZone)
}
