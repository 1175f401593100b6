package services

import (
	"context"
	"errors"
	"fmt"
	"sync"
	"time"

	"go.mongodb.org/mongo-driver/bson/primitive"

	"safetrail/models"
)

// fakeTransport records sends and can fail selected numbers.
type fakeTransport struct {
	mu          sync.Mutex
	available   bool
	failNumbers map[string]bool
	sent        []sentSMS
}

type sentSMS struct {
	to   string
	body string
}

func newFakeTransport() *fakeTransport {
	return &fakeTransport{available: true, failNumbers: map[string]bool{}}
}

func (ft *fakeTransport) SendSMS(ctx context.Context, to, body string) (*models.SendResult, error) {
	ft.mu.Lock()
	defer ft.mu.Unlock()

	if ft.failNumbers[to] {
		err := errors.New("carrier rejected message")
		return &models.SendResult{Success: false, Error: err.Error()}, err
	}

	ft.sent = append(ft.sent, sentSMS{to: to, body: body})
	return &models.SendResult{Success: true, MessageID: fmt.Sprintf("msg-%d", len(ft.sent))}, nil
}

func (ft *fakeTransport) IsAvailable() bool {
	return ft.available
}

func (ft *fakeTransport) sentTo() []string {
	ft.mu.Lock()
	defer ft.mu.Unlock()

	numbers := make([]string, len(ft.sent))
	for i, s := range ft.sent {
		numbers[i] = s.to
	}
	return numbers
}

// fakePush records push attempts.
type fakePush struct {
	mu     sync.Mutex
	fail   bool
	pushes []string
}

func (fp *fakePush) SendPush(ctx context.Context, deviceToken, title, body string, data map[string]string) (*models.SendResult, error) {
	fp.mu.Lock()
	defer fp.mu.Unlock()

	if fp.fail {
		err := errors.New("push service down")
		return &models.SendResult{Success: false, Error: err.Error()}, err
	}

	fp.pushes = append(fp.pushes, title)
	return &models.SendResult{Success: true, MessageID: "push-1"}, nil
}

// fakeIncidentStore keeps incidents in memory.
type fakeIncidentStore struct {
	mu        sync.Mutex
	failNext  bool
	incidents map[string]*models.EmergencyIncident
}

func newFakeIncidentStore() *fakeIncidentStore {
	return &fakeIncidentStore{incidents: map[string]*models.EmergencyIncident{}}
}

func (fs *fakeIncidentStore) CreateIncident(ctx context.Context, incident *models.EmergencyIncident) error {
	fs.mu.Lock()
	defer fs.mu.Unlock()

	if fs.failNext {
		return errors.New("database unavailable")
	}

	if incident.ID.IsZero() {
		incident.ID = primitive.NewObjectID()
	}
	if incident.LocationHistory == nil {
		incident.LocationHistory = []models.LocationPing{}
	}
	fs.incidents[incident.ID.Hex()] = incident
	return nil
}

func (fs *fakeIncidentStore) GetIncident(ctx context.Context, incidentID string) (*models.EmergencyIncident, error) {
	fs.mu.Lock()
	defer fs.mu.Unlock()

	incident, ok := fs.incidents[incidentID]
	if !ok {
		return nil, errors.New("not found")
	}
	copied := *incident
	return &copied, nil
}

func (fs *fakeIncidentStore) GetUserIncidents(ctx context.Context, userID string) ([]models.EmergencyIncident, error) {
	fs.mu.Lock()
	defer fs.mu.Unlock()

	var out []models.EmergencyIncident
	for _, incident := range fs.incidents {
		if incident.UserID.Hex() == userID {
			out = append(out, *incident)
		}
	}
	return out, nil
}

func (fs *fakeIncidentStore) AppendLocation(ctx context.Context, incidentID string, ping models.LocationPing) error {
	fs.mu.Lock()
	defer fs.mu.Unlock()

	incident, ok := fs.incidents[incidentID]
	if !ok {
		return errors.New("not found")
	}
	incident.LocationHistory = append(incident.LocationHistory, ping)
	return nil
}

func (fs *fakeIncidentStore) UpdateStatus(ctx context.Context, incidentID string, status models.IncidentStatus, resolution string) error {
	fs.mu.Lock()
	defer fs.mu.Unlock()

	incident, ok := fs.incidents[incidentID]
	if !ok {
		return errors.New("not found")
	}
	incident.Status = status
	incident.Resolution = resolution
	return nil
}

// fakeSessionStore keeps sharing sessions in memory.
type fakeSessionStore struct {
	mu       sync.Mutex
	sessions map[string]*models.LocationSharingSession
}

func newFakeSessionStore() *fakeSessionStore {
	return &fakeSessionStore{sessions: map[string]*models.LocationSharingSession{}}
}

func (fs *fakeSessionStore) CreateSession(ctx context.Context, session *models.LocationSharingSession) error {
	fs.mu.Lock()
	defer fs.mu.Unlock()
	copied := *session
	fs.sessions[session.ID] = &copied
	return nil
}

func (fs *fakeSessionStore) UpdateSession(ctx context.Context, session *models.LocationSharingSession) error {
	fs.mu.Lock()
	defer fs.mu.Unlock()
	if _, ok := fs.sessions[session.ID]; !ok {
		return errors.New("not found")
	}
	copied := *session
	fs.sessions[session.ID] = &copied
	return nil
}

func (fs *fakeSessionStore) GetSession(ctx context.Context, sessionID string) (*models.LocationSharingSession, error) {
	fs.mu.Lock()
	defer fs.mu.Unlock()
	session, ok := fs.sessions[sessionID]
	if !ok {
		return nil, errors.New("not found")
	}
	copied := *session
	return &copied, nil
}

func (fs *fakeSessionStore) GetStaleSessions(ctx context.Context, olderThan time.Time) ([]models.LocationSharingSession, error) {
	fs.mu.Lock()
	defer fs.mu.Unlock()

	var out []models.LocationSharingSession
	for _, session := range fs.sessions {
		if session.IsActive && session.LastSharedAt.Before(olderThan) {
			out = append(out, *session)
		}
	}
	return out, nil
}

// fakeDialer simulates the device dialing capability.
type fakeDialer struct {
	canCall bool
	opened  []string
}

func (fd *fakeDialer) CanOpenURL(url string) bool {
	return fd.canCall
}

func (fd *fakeDialer) OpenURL(url string) error {
	if !fd.canCall {
		return errors.New("cannot open URL")
	}
	fd.opened = append(fd.opened, url)
	return nil
}

// testUser builds a tourist with a primary and two secondary contacts.
func testUser() *models.User {
	return &models.User{
		ID:          primitive.NewObjectID(),
		Email:       "nina@example.com",
		FirstName:   "Nina",
		LastName:    "Kovacs",
		DeviceToken: "device-token-1",
		Contacts: []models.EmergencyContact{
			{ContactID: primitive.NewObjectID(), Name: "Second", PhoneNumber: "+31600000002", IsPrimary: false},
			{ContactID: primitive.NewObjectID(), Name: "First", PhoneNumber: "+31600000001", IsPrimary: true},
			{ContactID: primitive.NewObjectID(), Name: "Third", PhoneNumber: "+31600000003", IsPrimary: false},
		},
		IsActive: true,
	}
}

func testLocation() *models.LocationSample {
	return &models.LocationSample{
		Latitude:  28.6315,
		Longitude: 77.2190,
		Accuracy:  8,
		Timestamp: time.Now(),
		Address:   "Connaught Place, New Delhi",
	}
}
