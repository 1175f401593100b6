package models

import (
	"time"

	"go.mongodb.org/mongo-driver/bson/primitive"
)

const (
	IncidentTypePanicButton = "panic_button"
)

type IncidentStatus string

const (
	IncidentStatusActive   IncidentStatus = "active"
	IncidentStatusResolved IncidentStatus = "resolved"
)

// EmergencyContact is one entry in a tourist's contact list. The
// dispatcher treats the list as read-only input; isPrimary entries are
// notified first.
type EmergencyContact struct {
	ContactID    primitive.ObjectID `json:"contactId" bson:"contactId"`
	Name         string             `json:"name" bson:"name"`
	PhoneNumber  string             `json:"phoneNumber" bson:"phoneNumber"`
	Relationship string             `json:"relationship,omitempty" bson:"relationship,omitempty"`
	IsPrimary    bool               `json:"isPrimary" bson:"isPrimary"`
	Verified     bool               `json:"verified" bson:"verified"`
	VerifiedAt   time.Time          `json:"verifiedAt,omitempty" bson:"verifiedAt,omitempty"`
	CreatedAt    time.Time          `json:"createdAt" bson:"createdAt"`
	UpdatedAt    time.Time          `json:"updatedAt" bson:"updatedAt"`
}

// EmergencyIncident is the persisted record of one panic activation.
// It is never deleted by the backend; resolution is a manual action.
type EmergencyIncident struct {
	ID              primitive.ObjectID `json:"id" bson:"_id,omitempty"`
	UserID          primitive.ObjectID `json:"userId" bson:"userId"`
	Type            string             `json:"type" bson:"type"`
	Location        LocationSample     `json:"location" bson:"location"`
	Message         string             `json:"message" bson:"message"`
	Contacts        []EmergencyContact `json:"emergencyContacts" bson:"emergencyContacts"` // snapshot at dispatch time
	Timestamp       time.Time          `json:"timestamp" bson:"timestamp"`
	Status          IncidentStatus     `json:"status" bson:"status"`
	LocationHistory []LocationPing     `json:"locationHistory" bson:"locationHistory"`
	Resolution      string             `json:"resolution,omitempty" bson:"resolution,omitempty"`
	ResolvedAt      time.Time          `json:"resolvedAt,omitempty" bson:"resolvedAt,omitempty"`
	CreatedAt       time.Time          `json:"createdAt" bson:"createdAt"`
	UpdatedAt       time.Time          `json:"updatedAt" bson:"updatedAt"`
}

// SendResult is the outcome of a single transport send.
type SendResult struct {
	Success   bool   `json:"success"`
	MessageID string `json:"messageId,omitempty"`
	Error     string `json:"error,omitempty"`
}

// ContactSendResult keys a transport outcome to the contact it targeted.
type ContactSendResult struct {
	Contact EmergencyContact `json:"contact"`
	Success bool             `json:"success"`
	Error   string           `json:"error,omitempty"`
}

// ChannelResult records one best-effort channel attempt (push, store).
type ChannelResult struct {
	Channel   string `json:"channel"`
	Success   bool   `json:"success"`
	MessageID string `json:"messageId,omitempty"`
	Error     string `json:"error,omitempty"`
}

// EmergencyAlertResult is the structured outcome of the full dispatch
// fan-out. Per-channel arrays are always populated so callers can show
// "X succeeded, Y failed" even when Success is true.
type EmergencyAlertResult struct {
	Success             bool                `json:"success"`
	Error               string              `json:"error,omitempty"`
	IncidentID          string              `json:"incidentId,omitempty"`
	Message             string              `json:"message,omitempty"`
	SMSResults          []ContactSendResult `json:"smsResults"`
	NotificationResults []ChannelResult     `json:"notificationResults"`
	StoreResults        []ChannelResult     `json:"storeResults"`
}

// CallResult is the outcome of a dialer-assisted emergency call.
type CallResult struct {
	Success bool   `json:"success"`
	Number  string `json:"number,omitempty"`
	Error   string `json:"error,omitempty"`
}

// LocationSharingSession throttles repeated location re-shares during
// an active incident.
type LocationSharingSession struct {
	ID              string             `json:"id" bson:"_id"`
	EmergencyID     string             `json:"emergencyId" bson:"emergencyId"`
	UserID          primitive.ObjectID `json:"userId" bson:"userId"`
	Contacts        []EmergencyContact `json:"contacts" bson:"contacts"`
	StartTime       time.Time          `json:"startTime" bson:"startTime"`
	EndTime         time.Time          `json:"endTime,omitempty" bson:"endTime,omitempty"`
	IsActive        bool               `json:"isActive" bson:"isActive"`
	LocationHistory []LocationPing     `json:"locationHistory" bson:"locationHistory"`
	ShareInterval   time.Duration      `json:"shareInterval" bson:"shareInterval"`
	LastSharedAt    time.Time          `json:"lastSharedAt" bson:"lastSharedAt"`
}

// ShareUpdateResult reports whether an update re-notified contacts or
// only appended to the history.
type ShareUpdateResult struct {
	Success    bool                `json:"success"`
	Error      string              `json:"error,omitempty"`
	Shared     bool                `json:"shared"`
	SMSResults []ContactSendResult `json:"smsResults,omitempty"`
}

type PanicRequest struct {
	Latitude  float64 `json:"latitude" validate:"gte=-90,lte=90"`
	Longitude float64 `json:"longitude" validate:"gte=-180,lte=180"`
	Accuracy  float64 `json:"accuracy" validate:"gte=0"`
	Address   string  `json:"address,omitempty"`
	Message   string  `json:"message,omitempty" validate:"max=500"`
}

type EmergencyCallRequest struct {
	Number string `json:"number,omitempty"`
}

type ShareStartRequest struct {
	EmergencyID string                `json:"emergencyId" validate:"required"`
	Location    UpdateLocationRequest `json:"location"`
}

type ShareUpdateRequest struct {
	SessionID string                `json:"sessionId" validate:"required"`
	Location  UpdateLocationRequest `json:"location"`
}

type ShareStopRequest struct {
	SessionID string `json:"sessionId" validate:"required"`
}

type ResolveIncidentRequest struct {
	Resolution string `json:"resolution" validate:"required,max=500"`
}

type AddContactRequest struct {
	Name         string `json:"name" validate:"required,min=2,max=120"`
	PhoneNumber  string `json:"phoneNumber" validate:"required,phone"`
	Relationship string `json:"relationship,omitempty" validate:"max=60"`
	IsPrimary    bool   `json:"isPrimary"`
}

type UpdateContactRequest struct {
	Name         string `json:"name,omitempty" validate:"omitempty,min=2,max=120"`
	PhoneNumber  string `json:"phoneNumber,omitempty" validate:"omitempty,phone"`
	Relationship string `json:"relationship,omitempty" validate:"max=60"`
	IsPrimary    *bool  `json:"isPrimary,omitempty"`
}

type VerifyContactRequest struct {
	Code string `json:"code" validate:"required,len=6"`
}
