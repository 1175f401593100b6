package repositories

import (
	"context"
	"errors"
	"time"

	"github.com/sirupsen/logrus"
	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/bson/primitive"
	"go.mongodb.org/mongo-driver/mongo"

	"safetrail/models"
)

type UserRepository struct {
	database       *mongo.Database
	userCollection *mongo.Collection
}

func NewUserRepository(database *mongo.Database) *UserRepository {
	return &UserRepository{
		database:       database,
		userCollection: database.Collection("users"),
	}
}

func (ur *UserRepository) Create(ctx context.Context, user *models.User) error {
	user.ID = primitive.NewObjectID()
	user.CreatedAt = time.Now()
	user.UpdatedAt = time.Now()
	user.IsActive = true

	if user.Contacts == nil {
		user.Contacts = []models.EmergencyContact{}
	}

	_, err := ur.userCollection.InsertOne(ctx, user)
	if err != nil {
		if mongo.IsDuplicateKeyError(err) {
			return errors.New("email already registered")
		}
		logrus.Errorf("Failed to create user: %v", err)
		return err
	}

	return nil
}

func (ur *UserRepository) GetByID(ctx context.Context, id string) (*models.User, error) {
	objectID, err := primitive.ObjectIDFromHex(id)
	if err != nil {
		return nil, errors.New("invalid user ID")
	}

	var user models.User
	err = ur.userCollection.FindOne(ctx, bson.M{"_id": objectID}).Decode(&user)
	if err != nil {
		if err == mongo.ErrNoDocuments {
			return nil, errors.New("not found")
		}
		logrus.Errorf("Failed to get user by ID: %v", err)
		return nil, err
	}

	return &user, nil
}

func (ur *UserRepository) GetByEmail(ctx context.Context, email string) (*models.User, error) {
	var user models.User
	err := ur.userCollection.FindOne(ctx, bson.M{"email": email}).Decode(&user)
	if err != nil {
		if err == mongo.ErrNoDocuments {
			return nil, errors.New("not found")
		}
		logrus.Errorf("Failed to get user by email: %v", err)
		return nil, err
	}

	return &user, nil
}

func (ur *UserRepository) Update(ctx context.Context, id string, updateFields bson.M) error {
	objectID, err := primitive.ObjectIDFromHex(id)
	if err != nil {
		return errors.New("invalid user ID")
	}

	updateFields["updatedAt"] = time.Now()

	result, err := ur.userCollection.UpdateOne(
		ctx,
		bson.M{"_id": objectID},
		bson.M{"$set": updateFields},
	)
	if err != nil {
		logrus.Errorf("Failed to update user: %v", err)
		return err
	}
	if result.MatchedCount == 0 {
		return errors.New("not found")
	}

	return nil
}

// =================== EMERGENCY CONTACT SUBDOCUMENTS ===================

func (ur *UserRepository) AddContact(ctx context.Context, userID string, contact models.EmergencyContact) error {
	objectID, err := primitive.ObjectIDFromHex(userID)
	if err != nil {
		return errors.New("invalid user ID")
	}

	update := bson.M{
		"$push": bson.M{"emergencyContacts": contact},
		"$set":  bson.M{"updatedAt": time.Now()},
	}

	result, err := ur.userCollection.UpdateOne(ctx, bson.M{"_id": objectID}, update)
	if err != nil {
		logrus.Errorf("Failed to add emergency contact: %v", err)
		return err
	}
	if result.MatchedCount == 0 {
		return errors.New("not found")
	}

	return nil
}

func (ur *UserRepository) UpdateContact(ctx context.Context, userID, contactID string, updateFields bson.M) error {
	userObjID, err := primitive.ObjectIDFromHex(userID)
	if err != nil {
		return errors.New("invalid user ID")
	}
	contactObjID, err := primitive.ObjectIDFromHex(contactID)
	if err != nil {
		return errors.New("invalid contact ID")
	}

	set := bson.M{
		"updatedAt":                     time.Now(),
		"emergencyContacts.$.updatedAt": time.Now(),
	}
	for field, value := range updateFields {
		set["emergencyContacts.$."+field] = value
	}

	result, err := ur.userCollection.UpdateOne(
		ctx,
		bson.M{"_id": userObjID, "emergencyContacts.contactId": contactObjID},
		bson.M{"$set": set},
	)
	if err != nil {
		logrus.Errorf("Failed to update emergency contact: %v", err)
		return err
	}
	if result.MatchedCount == 0 {
		return errors.New("not found")
	}

	return nil
}

func (ur *UserRepository) RemoveContact(ctx context.Context, userID, contactID string) error {
	userObjID, err := primitive.ObjectIDFromHex(userID)
	if err != nil {
		return errors.New("invalid user ID")
	}
	contactObjID, err := primitive.ObjectIDFromHex(contactID)
	if err != nil {
		return errors.New("invalid contact ID")
	}

	update := bson.M{
		"$pull": bson.M{"emergencyContacts": bson.M{"contactId": contactObjID}},
		"$set":  bson.M{"updatedAt": time.Now()},
	}

	result, err := ur.userCollection.UpdateOne(ctx, bson.M{"_id": userObjID}, update)
	if err != nil {
		logrus.Errorf("Failed to remove emergency contact: %v", err)
		return err
	}
	if result.MatchedCount == 0 {
		return errors.New("not found")
	}

	return nil
}

// ClearPrimaryContacts unsets isPrimary on every contact, used before
// promoting a different contact to primary.
func (ur *UserRepository) ClearPrimaryContacts(ctx context.Context, userID string) error {
	objectID, err := primitive.ObjectIDFromHex(userID)
	if err != nil {
		return errors.New("invalid user ID")
	}

	update := bson.M{
		"$set": bson.M{
			"emergencyContacts.$[].isPrimary": false,
			"updatedAt":                       time.Now(),
		},
	}

	_, err = ur.userCollection.UpdateOne(ctx, bson.M{"_id": objectID}, update)
	if err != nil {
		logrus.Errorf("Failed to clear primary contacts: %v", err)
		return err
	}

	return nil
}
