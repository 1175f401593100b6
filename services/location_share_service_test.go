package services

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"safetrail/models"
)

func newShareHarness(t *testing.T) (*LocationShareService, *fakeSessionStore, *fakeIncidentStore, *fakeTransport, *models.User, string, *time.Time) {
	t.Helper()

	sessionStore := newFakeSessionStore()
	incidentStore := newFakeIncidentStore()
	transport := newFakeTransport()

	lss := NewLocationShareService(sessionStore, incidentStore, transport, nil, 5*time.Minute)

	current := time.Date(2026, 3, 10, 14, 0, 0, 0, time.UTC)
	clock := &current
	lss.now = func() time.Time { return *clock }

	user := testUser()
	incident := &models.EmergencyIncident{
		UserID:   user.ID,
		Type:     models.IncidentTypePanicButton,
		Location: *testLocation(),
		Status:   models.IncidentStatusActive,
	}
	require.NoError(t, incidentStore.CreateIncident(context.Background(), incident))

	return lss, sessionStore, incidentStore, transport, user, incident.ID.Hex(), clock
}

func TestStartSharingSendsImmediately(t *testing.T) {
	lss, _, incidentStore, transport, user, incidentID, _ := newShareHarness(t)

	session, err := lss.StartSharing(context.Background(), user, incidentID, *testLocation())
	require.NoError(t, err)

	assert.True(t, session.IsActive)
	assert.Len(t, session.LocationHistory, 1)

	// Start bypasses the throttle: every contact is notified at once.
	assert.Len(t, transport.sentTo(), 3)

	incident, err := incidentStore.GetIncident(context.Background(), incidentID)
	require.NoError(t, err)
	assert.Len(t, incident.LocationHistory, 1)
}

func TestShareUpdateThrottlesSMS(t *testing.T) {
	lss, _, incidentStore, transport, user, incidentID, clock := newShareHarness(t)

	session, err := lss.StartSharing(context.Background(), user, incidentID, *testLocation())
	require.NoError(t, err)
	require.Len(t, transport.sentTo(), 3)

	// Two minutes later: recorded but not re-shared.
	*clock = clock.Add(2 * time.Minute)
	result, err := lss.ShareUpdate(context.Background(), user.ID.Hex(), session.ID, *testLocation())
	require.NoError(t, err)
	assert.True(t, result.Success)
	assert.False(t, result.Shared)
	assert.Len(t, transport.sentTo(), 3)

	// The ping still lands in the incident history.
	incident, err := incidentStore.GetIncident(context.Background(), incidentID)
	require.NoError(t, err)
	assert.Len(t, incident.LocationHistory, 2)

	// Past the interval: contacts are notified again.
	*clock = clock.Add(4 * time.Minute)
	result, err = lss.ShareUpdate(context.Background(), user.ID.Hex(), session.ID, *testLocation())
	require.NoError(t, err)
	assert.True(t, result.Shared)
	assert.Len(t, result.SMSResults, 3)
	assert.Len(t, transport.sentTo(), 6)
}

func TestShareUpdateExactIntervalBoundaryShares(t *testing.T) {
	lss, _, _, transport, user, incidentID, clock := newShareHarness(t)

	session, err := lss.StartSharing(context.Background(), user, incidentID, *testLocation())
	require.NoError(t, err)

	// Exactly at the interval the share goes out.
	*clock = clock.Add(5 * time.Minute)
	result, err := lss.ShareUpdate(context.Background(), user.ID.Hex(), session.ID, *testLocation())
	require.NoError(t, err)
	assert.True(t, result.Shared)
	assert.Len(t, transport.sentTo(), 6)
}

func TestShareUpdateOnEndedSession(t *testing.T) {
	lss, _, _, _, user, incidentID, _ := newShareHarness(t)

	session, err := lss.StartSharing(context.Background(), user, incidentID, *testLocation())
	require.NoError(t, err)

	require.NoError(t, lss.StopSharing(context.Background(), user.ID.Hex(), session.ID))

	_, err = lss.ShareUpdate(context.Background(), user.ID.Hex(), session.ID, *testLocation())
	require.Error(t, err)
}

func TestShareUpdateRejectsOtherUsersSession(t *testing.T) {
	lss, sessionStore, _, transport, user, incidentID, clock := newShareHarness(t)

	session, err := lss.StartSharing(context.Background(), user, incidentID, *testLocation())
	require.NoError(t, err)
	require.Len(t, transport.sentTo(), 3)

	other := testUser()
	*clock = clock.Add(10 * time.Minute)

	_, err = lss.ShareUpdate(context.Background(), other.ID.Hex(), session.ID, *testLocation())
	require.Error(t, err)
	assert.Len(t, transport.sentTo(), 3)

	err = lss.StopSharing(context.Background(), other.ID.Hex(), session.ID)
	require.Error(t, err)

	stored, err := sessionStore.GetSession(context.Background(), session.ID)
	require.NoError(t, err)
	assert.True(t, stored.IsActive)
	assert.Len(t, stored.LocationHistory, 1)
}

func TestStartSharingRejectsOtherUsersIncident(t *testing.T) {
	lss, _, _, _, _, incidentID, _ := newShareHarness(t)

	_, err := lss.StartSharing(context.Background(), testUser(), incidentID, *testLocation())
	require.Error(t, err)
}

func TestStopSharingIsIdempotent(t *testing.T) {
	lss, sessionStore, _, _, user, incidentID, _ := newShareHarness(t)

	session, err := lss.StartSharing(context.Background(), user, incidentID, *testLocation())
	require.NoError(t, err)

	require.NoError(t, lss.StopSharing(context.Background(), user.ID.Hex(), session.ID))
	require.NoError(t, lss.StopSharing(context.Background(), user.ID.Hex(), session.ID))

	stored, err := sessionStore.GetSession(context.Background(), session.ID)
	require.NoError(t, err)
	assert.False(t, stored.IsActive)
	assert.False(t, stored.EndTime.IsZero())
}

func TestStartSharingRejectsInactiveIncident(t *testing.T) {
	lss, _, incidentStore, _, user, incidentID, _ := newShareHarness(t)

	require.NoError(t, incidentStore.UpdateStatus(context.Background(), incidentID, models.IncidentStatusResolved, "done"))

	_, err := lss.StartSharing(context.Background(), user, incidentID, *testLocation())
	require.Error(t, err)
}
