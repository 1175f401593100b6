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

type ZoneRepository struct {
	database       *mongo.Database
	zoneCollection *mongo.Collection
}

func NewZoneRepository(database *mongo.Database) *ZoneRepository {
	return &ZoneRepository{
		database:       database,
		zoneCollection: database.Collection("safety_zones"),
	}
}

func (zr *ZoneRepository) Create(ctx context.Context, zone *models.SafetyZone) error {
	zone.ID = primitive.NewObjectID()
	zone.CreatedAt = time.Now()
	zone.UpdatedAt = time.Now()

	_, err := zr.zoneCollection.InsertOne(ctx, zone)
	if err != nil {
		logrus.Errorf("Failed to create safety zone: %v", err)
		return err
	}

	return nil
}

func (zr *ZoneRepository) GetByID(ctx context.Context, id string) (*models.SafetyZone, error) {
	objectID, err := primitive.ObjectIDFromHex(id)
	if err != nil {
		return nil, errors.New("invalid zone ID")
	}

	var zone models.SafetyZone
	err = zr.zoneCollection.FindOne(ctx, bson.M{"_id": objectID}).Decode(&zone)
	if err != nil {
		if err == mongo.ErrNoDocuments {
			return nil, errors.New("not found")
		}
		logrus.Errorf("Failed to get zone by ID: %v", err)
		return nil, err
	}

	return &zone, nil
}

// GetAllOrdered returns every zone sorted by priority ascending, so
// the most restrictive zones come first for classification.
func (zr *ZoneRepository) GetAllOrdered(ctx context.Context) ([]models.SafetyZone, error) {
	opts := options.Find().SetSort(bson.D{{Key: "priority", Value: 1}})

	cursor, err := zr.zoneCollection.Find(ctx, bson.M{}, opts)
	if err != nil {
		logrus.Errorf("Failed to list safety zones: %v", err)
		return nil, err
	}
	defer cursor.Close(ctx)

	var zones []models.SafetyZone
	if err := cursor.All(ctx, &zones); err != nil {
		return nil, err
	}

	return zones, nil
}

func (zr *ZoneRepository) Update(ctx context.Context, id string, updateFields bson.M) error {
	objectID, err := primitive.ObjectIDFromHex(id)
	if err != nil {
		return errors.New("invalid zone ID")
	}

	updateFields["updatedAt"] = time.Now()

	result, err := zr.zoneCollection.UpdateOne(
		ctx,
		bson.M{"_id": objectID},
		bson.M{"$set": updateFields},
	)
	if err != nil {
		logrus.Errorf("Failed to update zone: %v", err)
		return err
	}
	if result.MatchedCount == 0 {
		return errors.New("not found")
	}

	return nil
}

func (zr *ZoneRepository) Delete(ctx context.Context, id string) error {
	objectID, err := primitive.ObjectIDFromHex(id)
	if err != nil {
		return errors.New("invalid zone ID")
	}

	result, err := zr.zoneCollection.DeleteOne(ctx, bson.M{"_id": objectID})
	if err != nil {
		logrus.Errorf("Failed to delete zone: %v", err)
		return err
	}
	if result.DeletedCount == 0 {
		return errors.New("not found")
	}

	return nil
}
