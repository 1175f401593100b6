package repositories

import (
	"context"
	"errors"
	"time"

	"github.com/sirupsen/logrus"
	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/mongo"

	"safetrail/models"
)

// SessionRepository persists location-sharing sessions. It implements
// interfaces.SessionStore.
type SessionRepository struct {
	database          *mongo.Database
	sessionCollection *mongo.Collection
}

func NewSessionRepository(database *mongo.Database) *SessionRepository {
	return &SessionRepository{
		database:          database,
		sessionCollection: database.Collection("sharing_sessions"),
	}
}

func (sr *SessionRepository) CreateSession(ctx context.Context, session *models.LocationSharingSession) error {
	if session.LocationHistory == nil {
		session.LocationHistory = []models.LocationPing{}
	}

	_, err := sr.sessionCollection.InsertOne(ctx, session)
	if err != nil {
		logrus.Errorf("Failed to create sharing session: %v", err)
		return err
	}

	return nil
}

func (sr *SessionRepository) UpdateSession(ctx context.Context, session *models.LocationSharingSession) error {
	result, err := sr.sessionCollection.ReplaceOne(ctx, bson.M{"_id": session.ID}, session)
	if err != nil {
		logrus.Errorf("Failed to update sharing session: %v", err)
		return err
	}
	if result.MatchedCount == 0 {
		return errors.New("not found")
	}

	return nil
}

func (sr *SessionRepository) GetSession(ctx context.Context, sessionID string) (*models.LocationSharingSession, error) {
	var session models.LocationSharingSession
	err := sr.sessionCollection.FindOne(ctx, bson.M{"_id": sessionID}).Decode(&session)
	if err != nil {
		if err == mongo.ErrNoDocuments {
			return nil, errors.New("not found")
		}
		logrus.Errorf("Failed to get sharing session: %v", err)
		return nil, err
	}

	return &session, nil
}

// GetStaleSessions returns sessions still marked active whose last
// share predates the cutoff. The cleanup worker closes them.
func (sr *SessionRepository) GetStaleSessions(ctx context.Context, olderThan time.Time) ([]models.LocationSharingSession, error) {
	filter := bson.M{
		"isActive":     true,
		"lastSharedAt": bson.M{"$lt": olderThan},
	}

	cursor, err := sr.sessionCollection.Find(ctx, filter)
	if err != nil {
		logrus.Errorf("Failed to list stale sessions: %v", err)
		return nil, err
	}
	defer cursor.Close(ctx)

	var sessions []models.LocationSharingSession
	if err := cursor.All(ctx, &sessions); err != nil {
		return nil, err
	}

	return sessions, nil
}
