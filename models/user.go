package models

import (
	"time"

	"go.mongodb.org/mongo-driver/bson/primitive"
)

// User is a registered tourist profile.
type User struct {
	ID           primitive.ObjectID `json:"id" bson:"_id,omitempty"`
	Email        string             `json:"email" bson:"email"`
	PasswordHash string             `json:"-" bson:"passwordHash"`
	FirstName    string             `json:"firstName" bson:"firstName"`
	LastName     string             `json:"lastName" bson:"lastName"`
	PhoneNumber  string             `json:"phoneNumber,omitempty" bson:"phoneNumber,omitempty"`
	Nationality  string             `json:"nationality,omitempty" bson:"nationality,omitempty"`
	PassportNo   string             `json:"passportNo,omitempty" bson:"passportNo,omitempty"`
	DeviceToken  string             `json:"-" bson:"deviceToken,omitempty"`
	Contacts     []EmergencyContact `json:"emergencyContacts,omitempty" bson:"emergencyContacts,omitempty"`
	Settings     UserSettings       `json:"settings" bson:"settings"`
	IsActive     bool               `json:"isActive" bson:"isActive"`
	CreatedAt    time.Time          `json:"createdAt" bson:"createdAt"`
	UpdatedAt    time.Time          `json:"updatedAt" bson:"updatedAt"`
}

// UserSettings is the client-side preference blob (theme, language,
// accessibility). The backend stores it opaquely except for the safety
// toggles it reads itself.
type UserSettings struct {
	Language          string            `json:"language,omitempty" bson:"language,omitempty"`
	DarkMode          bool              `json:"darkMode" bson:"darkMode"`
	Accessibility     map[string]string `json:"accessibility,omitempty" bson:"accessibility,omitempty"`
	SafetyAlertsLevel string            `json:"safetyAlertsLevel,omitempty" bson:"safetyAlertsLevel,omitempty"` // all, high_only, off
	ShareInterval     int               `json:"shareIntervalMinutes,omitempty" bson:"shareIntervalMinutes,omitempty"`
}

// FullName is the display name used in alert messages.
func (u *User) FullName() string {
	if u.LastName == "" {
		return u.FirstName
	}
	return u.FirstName + " " + u.LastName
}

type UpdateProfileRequest struct {
	FirstName   string        `json:"firstName,omitempty" validate:"omitempty,min=1,max=80"`
	LastName    string        `json:"lastName,omitempty" validate:"omitempty,max=80"`
	PhoneNumber string        `json:"phoneNumber,omitempty" validate:"omitempty,phone"`
	Nationality string        `json:"nationality,omitempty" validate:"omitempty,max=60"`
	PassportNo  string        `json:"passportNo,omitempty" validate:"omitempty,max=20"`
	DeviceToken string        `json:"deviceToken,omitempty"`
	Settings    *UserSettings `json:"settings,omitempty"`
}
