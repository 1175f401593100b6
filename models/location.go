package models

import (
	"time"
)

// Coordinate is an immutable lat/lng pair in decimal degrees.
type Coordinate struct {
	Latitude  float64 `json:"latitude" bson:"latitude"`
	Longitude float64 `json:"longitude" bson:"longitude"`
}

// LocationSample is a single reading from the device location provider.
type LocationSample struct {
	Latitude  float64   `json:"latitude" bson:"latitude" validate:"gte=-90,lte=90"`
	Longitude float64   `json:"longitude" bson:"longitude" validate:"gte=-180,lte=180"`
	Accuracy  float64   `json:"accuracy" bson:"accuracy"` // meters
	Timestamp time.Time `json:"timestamp" bson:"timestamp"`
	Address   string    `json:"address,omitempty" bson:"address,omitempty"`
}

// Coordinate returns the sample's position without the metadata.
func (ls LocationSample) Coordinate() Coordinate {
	return Coordinate{Latitude: ls.Latitude, Longitude: ls.Longitude}
}

// LocationPing is one entry in an incident's location history.
type LocationPing struct {
	Location  LocationSample `json:"location" bson:"location"`
	Timestamp time.Time      `json:"timestamp" bson:"timestamp"`
}

// ZoneTransition records a detected zone boundary crossing. Empty zone
// ids mean "outside all known zones".
type ZoneTransition struct {
	ID                 string        `json:"id" bson:"id"`
	FromZoneID         string        `json:"fromZoneId,omitempty" bson:"fromZoneId,omitempty"`
	ToZoneID           string        `json:"toZoneId,omitempty" bson:"toZoneId,omitempty"`
	Timestamp          time.Time     `json:"timestamp" bson:"timestamp"`
	TimeInPreviousZone time.Duration `json:"timeInPreviousZone" bson:"timeInPreviousZone"`
}

type UpdateLocationRequest struct {
	Latitude  float64    `json:"latitude" validate:"gte=-90,lte=90"`
	Longitude float64    `json:"longitude" validate:"gte=-180,lte=180"`
	Accuracy  float64    `json:"accuracy" validate:"gte=0"`
	Timestamp *time.Time `json:"timestamp,omitempty"`
	Address   string     `json:"address,omitempty"`
}

// Sample converts the request into a LocationSample, defaulting the
// timestamp to now when the device did not supply one.
func (r UpdateLocationRequest) Sample() LocationSample {
	ts := time.Now()
	if r.Timestamp != nil {
		ts = *r.Timestamp
	}
	return LocationSample{
		Latitude:  r.Latitude,
		Longitude: r.Longitude,
		Accuracy:  r.Accuracy,
		Timestamp: ts,
		Address:   r.Address,
	}
}
