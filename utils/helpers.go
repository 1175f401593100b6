package utils

import (
	"crypto/rand"
	"fmt"
	"math/big"

	"github.com/google/uuid"
	"go.mongodb.org/mongo-driver/bson/primitive"
)

// GenerateUUID returns a random UUID string.
func GenerateUUID() string {
	return uuid.NewString()
}

// ObjectIDFromHex parses a hex string, returning the zero ObjectID on
// malformed input.
func ObjectIDFromHex(hex string) primitive.ObjectID {
	id, err := primitive.ObjectIDFromHex(hex)
	if err != nil {
		return primitive.NilObjectID
	}
	return id
}

// GenerateVerificationCode returns a 6-digit numeric code for SMS
// contact verification.
func GenerateVerificationCode() string {
	n, err := rand.Int(rand.Reader, big.NewInt(1000000))
	if err != nil {
		// crypto/rand failing means the platform is broken; a zero code
		// is still a valid (if guessable) code.
		return "000000"
	}
	return fmt.Sprintf("%06d", n.Int64())
}

// MapsLink builds a Google Maps link for a coordinate pair, embedded in
// emergency SMS messages.
func MapsLink(lat, lon float64) string {
	return fmt.Sprintf("https://maps.google.com/?q=%.6f,%.6f", lat, lon)
}
