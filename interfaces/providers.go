package interfaces

import (
	"context"
	"time"

	"safetrail/models"
)

// WatchOptions tunes a location subscription. The monitor switches
// between normal and emergency profiles by resubscribing.
type WatchOptions struct {
	Interval          time.Duration
	MinDistanceMeters float64
}

// Subscription is a handle to an active location watch. Unsubscribe is
// idempotent and stops further callback deliveries.
type Subscription interface {
	Unsubscribe()
}

// LocationProvider abstracts the device location source.
type LocationProvider interface {
	GetCurrentLocation(ctx context.Context) (*models.LocationSample, error)
	Watch(ctx context.Context, opts WatchOptions, fn func(models.LocationSample)) (Subscription, error)
}

// MessagingTransport abstracts SMS delivery. SendSMS returns a result
// describing the attempt even when err is non-nil.
type MessagingTransport interface {
	SendSMS(ctx context.Context, to, body string) (*models.SendResult, error)
	IsAvailable() bool
}

// PushNotifier abstracts push-notification delivery to a device token.
type PushNotifier interface {
	SendPush(ctx context.Context, deviceToken, title, body string, data map[string]string) (*models.SendResult, error)
}

// DialerCapability abstracts the platform dialer used for emergency
// calls.
type DialerCapability interface {
	CanOpenURL(url string) bool
	OpenURL(url string) error
}

// IncidentStore persists emergency incidents. Incident creation is the
// one mandatory channel in the dispatch fan-out.
type IncidentStore interface {
	CreateIncident(ctx context.Context, incident *models.EmergencyIncident) error
	GetIncident(ctx context.Context, incidentID string) (*models.EmergencyIncident, error)
	GetUserIncidents(ctx context.Context, userID string) ([]models.EmergencyIncident, error)
	AppendLocation(ctx context.Context, incidentID string, ping models.LocationPing) error
	UpdateStatus(ctx context.Context, incidentID string, status models.IncidentStatus, resolution string) error
}

// SessionStore persists location-sharing sessions.
type SessionStore interface {
	CreateSession(ctx context.Context, session *models.LocationSharingSession) error
	UpdateSession(ctx context.Context, session *models.LocationSharingSession) error
	GetSession(ctx context.Context, sessionID string) (*models.LocationSharingSession, error)
	GetStaleSessions(ctx context.Context, olderThan time.Time) ([]models.LocationSharingSession, error)
}

// IncidentBroadcaster streams live location pings for an incident to
// connected watchers.
type IncidentBroadcaster interface {
	BroadcastLocationUpdate(incidentID string, ping models.LocationPing)
}
