package repositories

import (
	"context"
	"errors"
	"time"

	"github.com/sirupsen/logrus"
	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/bson/primitive"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"

	"safetrail/models"
)

// IncidentRepository persists panic incidents. It implements
// interfaces.IncidentStore.
type IncidentRepository struct {
	database           *mongo.Database
	incidentCollection *mongo.Collection
}

func NewIncidentRepository(database *mongo.Database) *IncidentRepository {
	return &IncidentRepository{
		database:           database,
		incidentCollection: database.Collection("incidents"),
	}
}

func (ir *IncidentRepository) CreateIncident(ctx context.Context, incident *models.EmergencyIncident) error {
	if incident.ID.IsZero() {
		incident.ID = primitive.NewObjectID()
	}
	incident.CreatedAt = time.Now()
	incident.UpdatedAt = time.Now()

	if incident.Status == "" {
		incident.Status = models.IncidentStatusActive
	}
	if incident.LocationHistory == nil {
		incident.LocationHistory = []models.LocationPing{}
	}

	_, err := ir.incidentCollection.InsertOne(ctx, incident)
	if err != nil {
		logrus.Errorf("Failed to create incident: %v", err)
		return err
	}

	return nil
}

func (ir *IncidentRepository) GetIncident(ctx context.Context, incidentID string) (*models.EmergencyIncident, error) {
	objectID, err := primitive.ObjectIDFromHex(incidentID)
	if err != nil {
		return nil, errors.New("invalid incident ID")
	}

	var incident models.EmergencyIncident
	err = ir.incidentCollection.FindOne(ctx, bson.M{"_id": objectID}).Decode(&incident)
	if err != nil {
		if err == mongo.ErrNoDocuments {
			return nil, errors.New("not found")
		}
		logrus.Errorf("Failed to get incident by ID: %v", err)
		return nil, err
	}

	return &incident, nil
}

func (ir *IncidentRepository) GetUserIncidents(ctx context.Context, userID string) ([]models.EmergencyIncident, error) {
	objectID, err := primitive.ObjectIDFromHex(userID)
	if err != nil {
		return nil, errors.New("invalid user ID")
	}

	opts := options.Find().SetSort(bson.D{{Key: "timestamp", Value: -1}}).SetLimit(100)

	cursor, err := ir.incidentCollection.Find(ctx, bson.M{"userId": objectID}, opts)
	if err != nil {
		logrus.Errorf("Failed to list incidents for user: %v", err)
		return nil, err
	}
	defer cursor.Close(ctx)

	var incidents []models.EmergencyIncident
	if err := cursor.All(ctx, &incidents); err != nil {
		return nil, err
	}

	return incidents, nil
}

func (ir *IncidentRepository) AppendLocation(ctx context.Context, incidentID string, ping models.LocationPing) error {
	objectID, err := primitive.ObjectIDFromHex(incidentID)
	if err != nil {
		return errors.New("invalid incident ID")
	}

	update := bson.M{
		"$push": bson.M{"locationHistory": ping},
		"$set":  bson.M{"updatedAt": time.Now()},
	}

	result, err := ir.incidentCollection.UpdateOne(ctx, bson.M{"_id": objectID}, update)
	if err != nil {
		logrus.Errorf("Failed to append incident location: %v", err)
		return err
	}
	if result.MatchedCount == 0 {
		return errors.New("not found")
	}

	return nil
}

func (ir *IncidentRepository) UpdateStatus(ctx context.Context, incidentID string, status models.IncidentStatus, resolution string) error {
	objectID, err := primitive.ObjectIDFromHex(incidentID)
	if err != nil {
		return errors.New("invalid incident ID")
	}

	updateFields := bson.M{
		"status":    status,
		"updatedAt": time.Now(),
	}
	if status == models.IncidentStatusResolved {
		updateFields["resolution"] = resolution
		updateFields["resolvedAt"] = time.Now()
	}

	result, err := ir.incidentCollection.UpdateOne(
		ctx,
		bson.M{"_id": objectID},
		bson.M{"$set": updateFields},
	)
	if err != nil {
		logrus.Errorf("Failed to update incident status: %v", err)
		return err
	}
	if result.MatchedCount == 0 {
		return errors.New("not found")
	}

	return nil
}
