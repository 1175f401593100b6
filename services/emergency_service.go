package services

import (
	"context"
	"fmt"
	"net/http"
	"sort"
	"time"

	"github.com/sirupsen/logrus"

	"safetrail/interfaces"
	"safetrail/models"
	"safetrail/utils"
)

// EmergencyDispatchConfig tunes the alert fan-out.
type EmergencyDispatchConfig struct {
	ContactSendSpacing time.Duration
	PoliceNumber       string
	AmbulanceNumber    string
	HelplineNumber     string
}

// EmergencyService runs the panic-button pipeline: persist the
// incident, notify emergency contacts over SMS, push to the device,
// and alert the tourist helpline. Incident persistence is the only
// channel whose failure fails the whole dispatch; every other channel
// is recorded and skipped past.
type EmergencyService struct {
	incidentStore interfaces.IncidentStore
	transport     interfaces.MessagingTransport
	pushNotifier  interfaces.PushNotifier
	dialer        interfaces.DialerCapability
	config        EmergencyDispatchConfig
}

func NewEmergencyService(
	incidentStore interfaces.IncidentStore,
	transport interfaces.MessagingTransport,
	pushNotifier interfaces.PushNotifier,
	dialer interfaces.DialerCapability,
	config EmergencyDispatchConfig,
) *EmergencyService {
	return &EmergencyService{
		incidentStore: incidentStore,
		transport:     transport,
		pushNotifier:  pushNotifier,
		dialer:        dialer,
		config:        config,
	}
}

// SendEmergencyAlert executes the full fan-out for one panic
// activation. The result always carries per-channel outcomes so the
// client can show exactly who was reached.
func (es *EmergencyService) SendEmergencyAlert(ctx context.Context, user *models.User, location *models.LocationSample, message string) *models.EmergencyAlertResult {
	result := &models.EmergencyAlertResult{
		SMSResults:          []models.ContactSendResult{},
		NotificationResults: []models.ChannelResult{},
		StoreResults:        []models.ChannelResult{},
	}

	if user == nil {
		result.Error = "user profile unavailable"
		return result
	}
	if location == nil {
		result.Error = "current location unavailable"
		return result
	}

	if message == "" {
		message = "Emergency! I need help."
	}
	alertBody := es.buildAlertMessage(user, location, message)

	result.SMSResults = es.notifyContacts(ctx, user.Contacts, alertBody)

	// Push back to the device, best effort.
	pushResult := models.ChannelResult{Channel: "push"}
	if pr, err := es.pushNotifier.SendPush(ctx, user.DeviceToken,
		"🆘 Emergency Alert Sent",
		"Your emergency contacts have been notified and the incident is being recorded.",
		map[string]string{"type": "emergency_dispatched"},
	); err != nil {
		pushResult.Error = err.Error()
	} else {
		pushResult.Success = true
		pushResult.MessageID = pr.MessageID
	}
	result.NotificationResults = append(result.NotificationResults, pushResult)

	// Tourist helpline gets the same alert, best effort.
	helplineResult := models.ChannelResult{Channel: "helpline_sms"}
	if es.transport.IsAvailable() && es.config.HelplineNumber != "" {
		if sr, err := es.transport.SendSMS(ctx, es.config.HelplineNumber, alertBody); err != nil {
			helplineResult.Error = err.Error()
		} else {
			helplineResult.Success = true
			helplineResult.MessageID = sr.MessageID
		}
	} else {
		helplineResult.Error = "SMS transport unavailable"
	}
	result.NotificationResults = append(result.NotificationResults, helplineResult)

	// The incident record is the one mandatory channel. Without it the
	// emergency never happened for audit purposes, so its failure fails
	// the dispatch even when every notification went out.
	incident := &models.EmergencyIncident{
		UserID:    user.ID,
		Type:      models.IncidentTypePanicButton,
		Location:  *location,
		Message:   message,
		Contacts:  user.Contacts,
		Timestamp: time.Now(),
		Status:    models.IncidentStatusActive,
	}

	if err := es.incidentStore.CreateIncident(ctx, incident); err != nil {
		logrus.Errorf("Failed to persist emergency incident: %v", err)
		result.Error = "failed to record emergency incident"
		result.StoreResults = append(result.StoreResults, models.ChannelResult{
			Channel: "incident_store",
			Success: false,
			Error:   err.Error(),
		})
		return result
	}

	result.IncidentID = incident.ID.Hex()
	result.StoreResults = append(result.StoreResults, models.ChannelResult{
		Channel:   "incident_store",
		Success:   true,
		MessageID: result.IncidentID,
	})

	result.Success = true
	result.Message = fmt.Sprintf("Emergency alert dispatched to %d contact(s)", len(result.SMSResults))

	logrus.WithFields(logrus.Fields{
		"userId":     user.ID.Hex(),
		"incidentId": result.IncidentID,
		"contacts":   len(result.SMSResults),
	}).Info("Emergency alert dispatched")

	return result
}

// notifyContacts sends the alert to every contact, primary contacts
// first, preserving list order within each group. Sends are sequential
// with a spacing delay so a burst does not trip carrier filtering.
func (es *EmergencyService) notifyContacts(ctx context.Context, contacts []models.EmergencyContact, body string) []models.ContactSendResult {
	ordered := make([]models.EmergencyContact, len(contacts))
	copy(ordered, contacts)
	sort.SliceStable(ordered, func(i, j int) bool {
		return ordered[i].IsPrimary && !ordered[j].IsPrimary
	})

	results := make([]models.ContactSendResult, 0, len(ordered))

	if !es.transport.IsAvailable() {
		for _, contact := range ordered {
			results = append(results, models.ContactSendResult{
				Contact: contact,
				Success: false,
				Error:   "SMS transport unavailable",
			})
		}
		return results
	}

	for i, contact := range ordered {
		if i > 0 && es.config.ContactSendSpacing > 0 {
			time.Sleep(es.config.ContactSendSpacing)
		}

		sendResult := models.ContactSendResult{Contact: contact}
		if _, err := es.transport.SendSMS(ctx, contact.PhoneNumber, body); err != nil {
			sendResult.Error = err.Error()
			logrus.Warnf("Failed to notify contact %s: %v", contact.Name, err)
		} else {
			sendResult.Success = true
		}
		results = append(results, sendResult)
	}

	return results
}

// MakeEmergencyCall opens the platform dialer for the given number, or
// the police number when none is given.
func (es *EmergencyService) MakeEmergencyCall(number string) *models.CallResult {
	if number == "" {
		number = es.config.PoliceNumber
	}

	telURL := "tel:" + number
	if !es.dialer.CanOpenURL(telURL) {
		return &models.CallResult{
			Success: false,
			Number:  number,
			Error:   "device cannot place calls",
		}
	}

	if err := es.dialer.OpenURL(telURL); err != nil {
		return &models.CallResult{
			Success: false,
			Number:  number,
			Error:   err.Error(),
		}
	}

	return &models.CallResult{Success: true, Number: number}
}

// MessageTemplates returns the quick-send emergency messages offered
// by the client, keyed by template name.
func (es *EmergencyService) MessageTemplates() map[string]string {
	return map[string]string{
		"general":  "Emergency! I need help.",
		"lost":     "I'm lost and need assistance.",
		"unsafe":   "I feel unsafe in my current location.",
		"medical":  "Medical emergency, please send help.",
		"followed": "I'm being followed, please help.",
	}
}

func (es *EmergencyService) GetIncident(ctx context.Context, incidentID string) (*models.EmergencyIncident, error) {
	incident, err := es.incidentStore.GetIncident(ctx, incidentID)
	if err != nil {
		if err.Error() == "not found" {
			return nil, utils.NewServiceErrorWithStatus(models.ErrCodeNotFound, "incident not found", http.StatusNotFound)
		}
		return nil, utils.NewServiceErrorWithStatus(models.ErrCodeValidation, err.Error(), http.StatusBadRequest)
	}
	return incident, nil
}

func (es *EmergencyService) GetUserIncidents(ctx context.Context, userID string) ([]models.EmergencyIncident, error) {
	incidents, err := es.incidentStore.GetUserIncidents(ctx, userID)
	if err != nil {
		return nil, utils.NewServiceErrorWithCause(models.ErrCodeInternal, "failed to load incidents", err)
	}
	return incidents, nil
}

// SendLocationUpdate appends a new location to an incident's history
// and pushes one informational notification to the user's own device.
// The append is the mandatory part; the push is best effort.
func (es *EmergencyService) SendLocationUpdate(ctx context.Context, userID, incidentID string, user *models.User, sample models.LocationSample) error {
	incident, err := es.GetIncident(ctx, incidentID)
	if err != nil {
		return err
	}
	if incident.UserID.Hex() != userID {
		return utils.NewServiceErrorWithStatus(models.ErrCodeForbidden, "incident belongs to another user", http.StatusForbidden)
	}

	ping := models.LocationPing{Location: sample, Timestamp: time.Now()}
	if err := es.incidentStore.AppendLocation(ctx, incidentID, ping); err != nil {
		return utils.NewServiceErrorWithCause(models.ErrCodeInternal, "failed to record location update", err)
	}

	if user != nil && user.DeviceToken != "" {
		if _, err := es.pushNotifier.SendPush(ctx, user.DeviceToken,
			"Location Update Recorded",
			fmt.Sprintf("Your location was added to incident %s.", incidentID),
			map[string]string{"type": "location_update", "incidentId": incidentID},
		); err != nil {
			logrus.Warnf("Failed to push location update confirmation: %v", err)
		}
	}

	return nil
}

// ResolveIncident closes an active incident. Only the incident owner
// may resolve it.
func (es *EmergencyService) ResolveIncident(ctx context.Context, userID, incidentID, resolution string) error {
	incident, err := es.GetIncident(ctx, incidentID)
	if err != nil {
		return err
	}
	if incident.UserID.Hex() != userID {
		return utils.NewServiceErrorWithStatus(models.ErrCodeForbidden, "incident belongs to another user", http.StatusForbidden)
	}
	if incident.Status == models.IncidentStatusResolved {
		return utils.NewServiceErrorWithStatus(models.ErrCodeConflict, "incident already resolved", http.StatusConflict)
	}

	if err := es.incidentStore.UpdateStatus(ctx, incidentID, models.IncidentStatusResolved, resolution); err != nil {
		return utils.NewServiceErrorWithCause(models.ErrCodeInternal, "failed to resolve incident", err)
	}

	logrus.Infof("Incident %s resolved", incidentID)
	return nil
}

// buildAlertMessage assembles the SMS body sent to contacts and the
// helpline.
func (es *EmergencyService) buildAlertMessage(user *models.User, location *models.LocationSample, message string) string {
	body := fmt.Sprintf("🆘 EMERGENCY from %s: %s\nLocation: %s",
		user.FullName(), message, utils.MapsLink(location.Latitude, location.Longitude))
	if location.Address != "" {
		body += fmt.Sprintf("\nNear: %s", location.Address)
	}
	body += fmt.Sprintf("\nTime: %s", location.Timestamp.Format("15:04 MST, Jan 2"))
	body += fmt.Sprintf("\nPolice %s | Ambulance %s | Helpline %s",
		es.config.PoliceNumber, es.config.AmbulanceNumber, es.config.HelplineNumber)
	return body
}
