package models

import (
	"time"

	"go.mongodb.org/mongo-driver/bson/primitive"
)

type SafetyLevel string

const (
	SafetyLevelSafe       SafetyLevel = "safe"
	SafetyLevelCaution    SafetyLevel = "caution"
	SafetyLevelRestricted SafetyLevel = "restricted"
)

// EmergencyServicePoint is a service (police post, hospital, tourist
// help desk) associated with a zone.
type EmergencyServicePoint struct {
	Type       string  `json:"type" bson:"type"` // police, medical, fire, tourist_helpline
	Number     string  `json:"number" bson:"number"`
	DistanceKm float64 `json:"distanceKm" bson:"distanceKm"`
}

// SafetyZone is a named polygon area with an associated safety level.
// Coordinates form a closed polygon (last vertex implicitly connects
// back to the first) and must contain at least three vertices.
type SafetyZone struct {
	ID                primitive.ObjectID      `json:"id" bson:"_id,omitempty"`
	Name              string                  `json:"name" bson:"name" validate:"required"`
	SafetyLevel       SafetyLevel             `json:"safetyLevel" bson:"safetyLevel" validate:"required,oneof=safe caution restricted"`
	Coordinates       []Coordinate            `json:"coordinates" bson:"coordinates" validate:"min=3"`
	EmergencyServices []EmergencyServicePoint `json:"emergencyServices,omitempty" bson:"emergencyServices,omitempty"`
	Description       string                  `json:"description,omitempty" bson:"description,omitempty"`
	SafetyFeatures    []string                `json:"safetyFeatures,omitempty" bson:"safetyFeatures,omitempty"`
	RiskFactors       []string                `json:"riskFactors,omitempty" bson:"riskFactors,omitempty"`
	// Priority controls list order when zones overlap; lower sorts
	// first, so the most restrictive zones are checked first.
	Priority  int       `json:"priority" bson:"priority"`
	CreatedAt time.Time `json:"createdAt" bson:"createdAt"`
	UpdatedAt time.Time `json:"updatedAt" bson:"updatedAt"`
}

// ZoneID returns the hex id, or "" for a nil zone.
func (z *SafetyZone) ZoneID() string {
	if z == nil {
		return ""
	}
	return z.ID.Hex()
}

// ZoneClassification is the result of testing a location against the
// ordered zone list. Recomputed per sample, never persisted.
type ZoneClassification struct {
	Success      bool        `json:"success"`
	SafetyLevel  SafetyLevel `json:"safetyLevel"`
	IsInSafeZone bool        `json:"isInSafeZone"`
	Zone         *SafetyZone `json:"zone,omitempty"`
}

type ClassifyRequest struct {
	Latitude  float64 `json:"latitude" validate:"gte=-90,lte=90"`
	Longitude float64 `json:"longitude" validate:"gte=-180,lte=180"`
}

type CreateZoneRequest struct {
	Name              string                  `json:"name" validate:"required,min=2,max=120"`
	SafetyLevel       SafetyLevel             `json:"safetyLevel" validate:"required,oneof=safe caution restricted"`
	Coordinates       []Coordinate            `json:"coordinates" validate:"min=3"`
	EmergencyServices []EmergencyServicePoint `json:"emergencyServices,omitempty"`
	Description       string                  `json:"description,omitempty"`
	SafetyFeatures    []string                `json:"safetyFeatures,omitempty"`
	RiskFactors       []string                `json:"riskFactors,omitempty"`
	Priority          int                     `json:"priority"`
}
