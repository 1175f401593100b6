package database

import (
	"context"
	"fmt"
	"time"

	"github.com/sirupsen/logrus"
	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/bson/primitive"
	"go.mongodb.org/mongo-driver/mongo"
	"golang.org/x/crypto/bcrypt"

	"safetrail/models"
)

// Seeder represents a database seeder
type Seeder struct {
	Name        string
	Description string
	Seed        func(*mongo.Database) error
}

// seeders contains all database seeders
var seeders = []Seeder{
	{
		Name:        "safety_zones",
		Description: "Create Delhi safety zones",
		Seed:        seedSafetyZones,
	},
	{
		Name:        "demo_users",
		Description: "Create demo tourists for development",
		Seed:        seedDemoUsers,
	},
}

// RunSeeders executes all database seeders
func RunSeeders(db *mongo.Database) error {
	ctx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer cancel()

	seedersCol := db.Collection("seeders")
	count, err := seedersCol.CountDocuments(ctx, bson.M{})
	if err == nil && count > 0 {
		logrus.Info("🌱 Seeders already run, skipping...")
		return nil
	}

	logrus.Info("🌱 Running database seeders...")

	for _, seeder := range seeders {
		logrus.Infof("🔄 Running seeder: %s", seeder.Name)

		if err := seeder.Seed(db); err != nil {
			return fmt.Errorf("seeder %s failed: %w", seeder.Name, err)
		}

		_, err := seedersCol.InsertOne(ctx, bson.M{
			"name":     seeder.Name,
			"seededAt": time.Now(),
		})
		if err != nil {
			return fmt.Errorf("failed to record seeder %s: %w", seeder.Name, err)
		}

		logrus.Infof("✅ Seeder %s completed", seeder.Name)
	}

	return nil
}

// seedSafetyZones creates the initial zone map around central Delhi.
// Restricted zones carry the lowest priority numbers so classification
// checks them first when areas overlap.
func seedSafetyZones(db *mongo.Database) error {
	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()

	now := time.Now()

	zones := []models.SafetyZone{
		{
			ID:          primitive.NewObjectID(),
			Name:        "Yamuna Floodplain Restricted Area",
			SafetyLevel: models.SafetyLevelRestricted,
			Priority:    1,
			Coordinates: []models.Coordinate{
				{Latitude: 28.6450, Longitude: 77.2450},
				{Latitude: 28.6450, Longitude: 77.2650},
				{Latitude: 28.6150, Longitude: 77.2650},
				{Latitude: 28.6150, Longitude: 77.2450},
			},
			Description: "Flood-prone riverbank, off limits after dark",
			RiskFactors: []string{"Flooding", "No lighting", "Isolated"},
			EmergencyServices: []models.EmergencyServicePoint{
				{Type: "police", Number: "100", DistanceKm: 2.8},
				{Type: "ambulance", Number: "108", DistanceKm: 3.5},
			},
			CreatedAt: now,
			UpdatedAt: now,
		},
		{
			ID:          primitive.NewObjectID(),
			Name:        "Paharganj Market Area",
			SafetyLevel: models.SafetyLevelCaution,
			Priority:    10,
			Coordinates: []models.Coordinate{
				{Latitude: 28.6480, Longitude: 77.2080},
				{Latitude: 28.6480, Longitude: 77.2200},
				{Latitude: 28.6400, Longitude: 77.2200},
				{Latitude: 28.6400, Longitude: 77.2080},
			},
			Description: "Crowded market, watch for pickpockets",
			RiskFactors: []string{"Pickpocketing", "Heavy crowds", "Traffic"},
			SafetyFeatures: []string{
				"Police booth at main bazaar",
			},
			EmergencyServices: []models.EmergencyServicePoint{
				{Type: "police", Number: "100", DistanceKm: 0.4},
				{Type: "ambulance", Number: "108", DistanceKm: 1.2},
				{Type: "helpline", Number: "112", DistanceKm: 0.0},
			},
			CreatedAt: now,
			UpdatedAt: now,
		},
		{
			ID:          primitive.NewObjectID(),
			Name:        "Connaught Place Tourist Zone",
			SafetyLevel: models.SafetyLevelSafe,
			Priority:    20,
			Coordinates: []models.Coordinate{
				{Latitude: 28.6360, Longitude: 77.2140},
				{Latitude: 28.6360, Longitude: 77.2250},
				{Latitude: 28.6260, Longitude: 77.2250},
				{Latitude: 28.6260, Longitude: 77.2140},
			},
			Description: "Patrolled commercial district with tourist police",
			SafetyFeatures: []string{
				"Tourist police patrols",
				"CCTV coverage",
				"Well lit streets",
			},
			EmergencyServices: []models.EmergencyServicePoint{
				{Type: "police", Number: "100", DistanceKm: 0.3},
				{Type: "ambulance", Number: "108", DistanceKm: 0.9},
				{Type: "helpline", Number: "112", DistanceKm: 0.0},
			},
			CreatedAt: now,
			UpdatedAt: now,
		},
		{
			ID:          primitive.NewObjectID(),
			Name:        "India Gate Lawns",
			SafetyLevel: models.SafetyLevelSafe,
			Priority:    21,
			Coordinates: []models.Coordinate{
				{Latitude: 28.6170, Longitude: 77.2230},
				{Latitude: 28.6170, Longitude: 77.2340},
				{Latitude: 28.6080, Longitude: 77.2340},
				{Latitude: 28.6080, Longitude: 77.2230},
			},
			Description: "Open lawns around the memorial, patrolled until late",
			SafetyFeatures: []string{
				"Police presence",
				"Well lit until midnight",
			},
			EmergencyServices: []models.EmergencyServicePoint{
				{Type: "police", Number: "100", DistanceKm: 0.6},
				{Type: "ambulance", Number: "108", DistanceKm: 1.5},
			},
			CreatedAt: now,
			UpdatedAt: now,
		},
	}

	col := db.Collection("safety_zones")
	docs := make([]interface{}, len(zones))
	for i, z := range zones {
		docs[i] = z
	}

	_, err := col.InsertMany(ctx, docs)
	return err
}

// seedDemoUsers creates demo tourists for development
func seedDemoUsers(db *mongo.Database) error {
	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()

	hash, err := bcrypt.GenerateFromPassword([]byte("password123"), bcrypt.DefaultCost)
	if err != nil {
		return err
	}

	now := time.Now()

	users := []interface{}{
		models.User{
			ID:           primitive.NewObjectID(),
			Email:        "amelia@example.com",
			PasswordHash: string(hash),
			FirstName:    "Amelia",
			LastName:     "Hart",
			PhoneNumber:  "+447700900123",
			Nationality:  "British",
			PassportNo:   "GBR1234567",
			Contacts: []models.EmergencyContact{
				{
					ContactID:    primitive.NewObjectID(),
					Name:         "Oliver Hart",
					PhoneNumber:  "+447700900456",
					Relationship: "spouse",
					IsPrimary:    true,
					Verified:     true,
					VerifiedAt:   now,
					CreatedAt:    now,
					UpdatedAt:    now,
				},
				{
					ContactID:    primitive.NewObjectID(),
					Name:         "Grace Hart",
					PhoneNumber:  "+447700900789",
					Relationship: "mother",
					CreatedAt:    now,
					UpdatedAt:    now,
				},
			},
			Settings: models.UserSettings{
				Language:          "en",
				SafetyAlertsLevel: "all",
				ShareInterval:     5,
			},
			IsActive:  true,
			CreatedAt: now,
			UpdatedAt: now,
		},
	}

	col := db.Collection("users")
	_, err = col.InsertMany(ctx, users)
	return err
}
