package services

import (
	"context"
	"fmt"
	"net/http"
	"time"

	"github.com/go-redis/redis/v8"
	"github.com/sirupsen/logrus"
	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/bson/primitive"

	"safetrail/interfaces"
	"safetrail/models"
	"safetrail/repositories"
	"safetrail/utils"
)

const contactVerificationTTL = 10 * time.Minute

// UserService manages tourist profiles, identity QR codes, and the
// emergency contact list with its SMS verification flow.
type UserService struct {
	userRepo  *repositories.UserRepository
	transport interfaces.MessagingTransport
	redis     *redis.Client
}

func NewUserService(userRepo *repositories.UserRepository, transport interfaces.MessagingTransport, redisClient *redis.Client) *UserService {
	return &UserService{
		userRepo:  userRepo,
		transport: transport,
		redis:     redisClient,
	}
}

func (us *UserService) GetProfile(ctx context.Context, userID string) (*models.User, error) {
	user, err := us.userRepo.GetByID(ctx, userID)
	if err != nil {
		if err.Error() == "not found" {
			return nil, utils.NewServiceErrorWithStatus(models.ErrCodeNotFound, "user not found", http.StatusNotFound)
		}
		return nil, utils.NewServiceErrorWithStatus(models.ErrCodeValidation, err.Error(), http.StatusBadRequest)
	}
	return user, nil
}

func (us *UserService) UpdateProfile(ctx context.Context, userID string, req models.UpdateProfileRequest) (*models.User, error) {
	updateFields := bson.M{}
	if req.FirstName != "" {
		updateFields["firstName"] = req.FirstName
	}
	if req.LastName != "" {
		updateFields["lastName"] = req.LastName
	}
	if req.PhoneNumber != "" {
		updateFields["phoneNumber"] = req.PhoneNumber
	}
	if req.Nationality != "" {
		updateFields["nationality"] = req.Nationality
	}
	if req.PassportNo != "" {
		updateFields["passportNo"] = req.PassportNo
	}
	if req.DeviceToken != "" {
		updateFields["deviceToken"] = req.DeviceToken
	}
	if req.Settings != nil {
		updateFields["settings"] = req.Settings
	}

	if len(updateFields) > 0 {
		if err := us.userRepo.Update(ctx, userID, updateFields); err != nil {
			return nil, utils.NewServiceErrorWithCause(models.ErrCodeInternal, "failed to update profile", err)
		}
	}

	return us.GetProfile(ctx, userID)
}

// IdentityQR renders the tourist's identity QR code as a PNG. The
// payload carries the id, name, and nationality that checkpoints scan.
func (us *UserService) IdentityQR(ctx context.Context, userID string, size int) ([]byte, error) {
	user, err := us.GetProfile(ctx, userID)
	if err != nil {
		return nil, err
	}

	payload := utils.IdentityQRPayload(user.ID.Hex(), user.FullName(), user.Nationality)
	png, err := utils.GenerateQRPNG(payload, size)
	if err != nil {
		return nil, utils.NewServiceErrorWithCause(models.ErrCodeInternal, "failed to generate QR code", err)
	}

	return png, nil
}

// =================== EMERGENCY CONTACTS ===================

func (us *UserService) AddContact(ctx context.Context, userID string, req models.AddContactRequest) (*models.EmergencyContact, error) {
	now := time.Now()
	contact := models.EmergencyContact{
		ContactID:    primitive.NewObjectID(),
		Name:         req.Name,
		PhoneNumber:  req.PhoneNumber,
		Relationship: req.Relationship,
		IsPrimary:    req.IsPrimary,
		CreatedAt:    now,
		UpdatedAt:    now,
	}

	if req.IsPrimary {
		if err := us.userRepo.ClearPrimaryContacts(ctx, userID); err != nil {
			return nil, utils.NewServiceErrorWithCause(models.ErrCodeInternal, "failed to update primary contact", err)
		}
	}

	if err := us.userRepo.AddContact(ctx, userID, contact); err != nil {
		if err.Error() == "not found" {
			return nil, utils.NewServiceErrorWithStatus(models.ErrCodeNotFound, "user not found", http.StatusNotFound)
		}
		return nil, utils.NewServiceErrorWithCause(models.ErrCodeInternal, "failed to add contact", err)
	}

	// Kick off verification right away, best effort.
	if err := us.SendContactVerification(ctx, userID, contact.ContactID.Hex()); err != nil {
		logrus.Warnf("Failed to send verification to new contact: %v", err)
	}

	return &contact, nil
}

func (us *UserService) UpdateContact(ctx context.Context, userID, contactID string, req models.UpdateContactRequest) error {
	updateFields := bson.M{}
	if req.Name != "" {
		updateFields["name"] = req.Name
	}
	if req.PhoneNumber != "" {
		updateFields["phoneNumber"] = req.PhoneNumber
		// A new number must be verified again.
		updateFields["verified"] = false
	}
	if req.Relationship != "" {
		updateFields["relationship"] = req.Relationship
	}
	if req.IsPrimary != nil {
		if *req.IsPrimary {
			if err := us.userRepo.ClearPrimaryContacts(ctx, userID); err != nil {
				return utils.NewServiceErrorWithCause(models.ErrCodeInternal, "failed to update primary contact", err)
			}
		}
		updateFields["isPrimary"] = *req.IsPrimary
	}

	if len(updateFields) == 0 {
		return nil
	}

	if err := us.userRepo.UpdateContact(ctx, userID, contactID, updateFields); err != nil {
		if err.Error() == "not found" {
			return utils.NewServiceErrorWithStatus(models.ErrCodeNotFound, "contact not found", http.StatusNotFound)
		}
		return utils.NewServiceErrorWithCause(models.ErrCodeInternal, "failed to update contact", err)
	}

	return nil
}

func (us *UserService) RemoveContact(ctx context.Context, userID, contactID string) error {
	if err := us.userRepo.RemoveContact(ctx, userID, contactID); err != nil {
		if err.Error() == "not found" {
			return utils.NewServiceErrorWithStatus(models.ErrCodeNotFound, "contact not found", http.StatusNotFound)
		}
		return utils.NewServiceErrorWithCause(models.ErrCodeInternal, "failed to remove contact", err)
	}
	return nil
}

// SendContactVerification texts a six digit code to the contact's
// phone. The code lives in Redis for ten minutes.
func (us *UserService) SendContactVerification(ctx context.Context, userID, contactID string) error {
	user, err := us.GetProfile(ctx, userID)
	if err != nil {
		return err
	}

	var contact *models.EmergencyContact
	for i := range user.Contacts {
		if user.Contacts[i].ContactID.Hex() == contactID {
			contact = &user.Contacts[i]
			break
		}
	}
	if contact == nil {
		return utils.NewServiceErrorWithStatus(models.ErrCodeNotFound, "contact not found", http.StatusNotFound)
	}

	if !us.transport.IsAvailable() {
		return utils.NewServiceErrorWithStatus(models.ErrCodeInternal, "SMS transport unavailable", http.StatusServiceUnavailable)
	}

	code := utils.GenerateVerificationCode()
	key := verificationKey(userID, contactID)
	if err := us.redis.Set(ctx, key, code, contactVerificationTTL).Err(); err != nil {
		return utils.NewServiceErrorWithCause(models.ErrCodeInternal, "failed to store verification code", err)
	}

	body := fmt.Sprintf("%s added you as an emergency contact on SafeTrail. Verification code: %s", user.FullName(), code)
	if _, err := us.transport.SendSMS(ctx, contact.PhoneNumber, body); err != nil {
		return utils.NewServiceErrorWithCause(models.ErrCodeInternal, "failed to send verification SMS", err)
	}

	return nil
}

// VerifyContact checks the submitted code and marks the contact
// verified.
func (us *UserService) VerifyContact(ctx context.Context, userID, contactID, code string) error {
	key := verificationKey(userID, contactID)
	stored, err := us.redis.Get(ctx, key).Result()
	if err == redis.Nil {
		return utils.NewServiceErrorWithStatus(models.ErrCodeValidation, "verification code expired or not requested", http.StatusBadRequest)
	}
	if err != nil {
		return utils.NewServiceErrorWithCause(models.ErrCodeInternal, "failed to check verification code", err)
	}
	if stored != code {
		return utils.NewServiceErrorWithStatus(models.ErrCodeValidation, "incorrect verification code", http.StatusBadRequest)
	}

	updateFields := bson.M{
		"verified":   true,
		"verifiedAt": time.Now(),
	}
	if err := us.userRepo.UpdateContact(ctx, userID, contactID, updateFields); err != nil {
		return utils.NewServiceErrorWithCause(models.ErrCodeInternal, "failed to mark contact verified", err)
	}

	us.redis.Del(ctx, key)
	return nil
}

func verificationKey(userID, contactID string) string {
	return fmt.Sprintf("contact_verify:%s:%s", userID, contactID)
}
