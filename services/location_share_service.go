package services

import (
	"context"
	"fmt"
	"net/http"
	"time"

	"github.com/sirupsen/logrus"

	"safetrail/interfaces"
	"safetrail/models"
	"safetrail/utils"
)

// LocationShareService manages live location sharing during an active
// incident. Every update lands in the incident's location history and
// the live broadcast; contact re-notification over SMS is throttled to
// the share interval.
type LocationShareService struct {
	sessionStore  interfaces.SessionStore
	incidentStore interfaces.IncidentStore
	transport     interfaces.MessagingTransport
	broadcaster   interfaces.IncidentBroadcaster
	shareInterval time.Duration

	// now is swappable for tests.
	now func() time.Time
}

func NewLocationShareService(
	sessionStore interfaces.SessionStore,
	incidentStore interfaces.IncidentStore,
	transport interfaces.MessagingTransport,
	broadcaster interfaces.IncidentBroadcaster,
	shareInterval time.Duration,
) *LocationShareService {
	return &LocationShareService{
		sessionStore:  sessionStore,
		incidentStore: incidentStore,
		transport:     transport,
		broadcaster:   broadcaster,
		shareInterval: shareInterval,
		now:           time.Now,
	}
}

// StartSharing opens a sharing session for an active incident and
// immediately shares the starting location with the contacts,
// bypassing the throttle.
func (lss *LocationShareService) StartSharing(ctx context.Context, user *models.User, emergencyID string, sample models.LocationSample) (*models.LocationSharingSession, error) {
	if user == nil {
		return nil, utils.NewServiceErrorWithStatus(models.ErrCodeValidation, "user profile unavailable", http.StatusBadRequest)
	}

	incident, err := lss.incidentStore.GetIncident(ctx, emergencyID)
	if err != nil {
		return nil, utils.NewServiceErrorWithStatus(models.ErrCodeNotFound, "incident not found", http.StatusNotFound)
	}
	if incident.UserID != user.ID {
		return nil, utils.NewServiceErrorWithStatus(models.ErrCodeForbidden, "incident belongs to another user", http.StatusForbidden)
	}
	if incident.Status != models.IncidentStatusActive {
		return nil, utils.NewServiceErrorWithStatus(models.ErrCodeConflict, "incident is not active", http.StatusConflict)
	}

	now := lss.now()
	ping := models.LocationPing{Location: sample, Timestamp: now}

	session := &models.LocationSharingSession{
		ID:              utils.GenerateUUID(),
		EmergencyID:     emergencyID,
		UserID:          user.ID,
		Contacts:        user.Contacts,
		StartTime:       now,
		IsActive:        true,
		LocationHistory: []models.LocationPing{ping},
		ShareInterval:   lss.shareInterval,
		LastSharedAt:    now,
	}

	if err := lss.sessionStore.CreateSession(ctx, session); err != nil {
		return nil, utils.NewServiceErrorWithCause(models.ErrCodeInternal, "failed to create sharing session", err)
	}

	lss.recordPing(ctx, session, ping)
	lss.shareWithContacts(ctx, session, sample)

	logrus.Infof("Location sharing started for incident %s (session %s)", emergencyID, session.ID)
	return session, nil
}

// ShareUpdate records a new location for an open session. Only the
// session owner may post updates. The ping is always appended and
// broadcast; SMS re-notification only happens when the share interval
// has elapsed since the last share.
func (lss *LocationShareService) ShareUpdate(ctx context.Context, userID, sessionID string, sample models.LocationSample) (*models.ShareUpdateResult, error) {
	session, err := lss.sessionStore.GetSession(ctx, sessionID)
	if err != nil {
		return nil, utils.NewServiceErrorWithStatus(models.ErrCodeNotFound, "sharing session not found", http.StatusNotFound)
	}
	if session.UserID.Hex() != userID {
		return nil, utils.NewServiceErrorWithStatus(models.ErrCodeForbidden, "sharing session belongs to another user", http.StatusForbidden)
	}
	if !session.IsActive {
		return nil, utils.NewServiceErrorWithStatus(models.ErrCodeConflict, "sharing session has ended", http.StatusConflict)
	}

	now := lss.now()
	ping := models.LocationPing{Location: sample, Timestamp: now}
	session.LocationHistory = append(session.LocationHistory, ping)

	result := &models.ShareUpdateResult{Success: true}

	if now.Sub(session.LastSharedAt) >= session.ShareInterval {
		result.Shared = true
		result.SMSResults = lss.shareWithContacts(ctx, session, sample)
		session.LastSharedAt = now
	}

	if err := lss.sessionStore.UpdateSession(ctx, session); err != nil {
		return nil, utils.NewServiceErrorWithCause(models.ErrCodeInternal, "failed to update sharing session", err)
	}

	lss.recordPing(ctx, session, ping)

	return result, nil
}

// StopSharing closes a session. Only the session owner may stop it;
// stopping an already closed session is a no-op.
func (lss *LocationShareService) StopSharing(ctx context.Context, userID, sessionID string) error {
	session, err := lss.sessionStore.GetSession(ctx, sessionID)
	if err != nil {
		return utils.NewServiceErrorWithStatus(models.ErrCodeNotFound, "sharing session not found", http.StatusNotFound)
	}
	if session.UserID.Hex() != userID {
		return utils.NewServiceErrorWithStatus(models.ErrCodeForbidden, "sharing session belongs to another user", http.StatusForbidden)
	}
	if !session.IsActive {
		return nil
	}

	session.IsActive = false
	session.EndTime = lss.now()

	if err := lss.sessionStore.UpdateSession(ctx, session); err != nil {
		return utils.NewServiceErrorWithCause(models.ErrCodeInternal, "failed to close sharing session", err)
	}

	logrus.Infof("Location sharing stopped (session %s)", sessionID)
	return nil
}

// recordPing appends the ping to the incident record and pushes it to
// live watchers. Both are best effort; the session remains the source
// of truth for the share history.
func (lss *LocationShareService) recordPing(ctx context.Context, session *models.LocationSharingSession, ping models.LocationPing) {
	if err := lss.incidentStore.AppendLocation(ctx, session.EmergencyID, ping); err != nil {
		logrus.Warnf("Failed to append location to incident %s: %v", session.EmergencyID, err)
	}
	if lss.broadcaster != nil {
		lss.broadcaster.BroadcastLocationUpdate(session.EmergencyID, ping)
	}
}

// shareWithContacts SMSes the current location to the session's
// contact snapshot.
func (lss *LocationShareService) shareWithContacts(ctx context.Context, session *models.LocationSharingSession, sample models.LocationSample) []models.ContactSendResult {
	results := make([]models.ContactSendResult, 0, len(session.Contacts))

	body := fmt.Sprintf("📍 Live location update: %s", utils.MapsLink(sample.Latitude, sample.Longitude))
	if sample.Address != "" {
		body += fmt.Sprintf("\nNear: %s", sample.Address)
	}

	if !lss.transport.IsAvailable() {
		for _, contact := range session.Contacts {
			results = append(results, models.ContactSendResult{
				Contact: contact,
				Success: false,
				Error:   "SMS transport unavailable",
			})
		}
		return results
	}

	for _, contact := range session.Contacts {
		sendResult := models.ContactSendResult{Contact: contact}
		if _, err := lss.transport.SendSMS(ctx, contact.PhoneNumber, body); err != nil {
			sendResult.Error = err.Error()
		} else {
			sendResult.Success = true
		}
		results = append(results, sendResult)
	}

	return results
}
