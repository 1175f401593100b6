package services

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"safetrail/models"
)

func newTestEmergencyService(store *fakeIncidentStore, transport *fakeTransport, push *fakePush, dialer *fakeDialer) *EmergencyService {
	return NewEmergencyService(store, transport, push, dialer, EmergencyDispatchConfig{
		ContactSendSpacing: 0,
		PoliceNumber:       "100",
		AmbulanceNumber:    "108",
		HelplineNumber:     "112",
	})
}

func TestSendEmergencyAlertNotifiesPrimaryContactsFirst(t *testing.T) {
	store := newFakeIncidentStore()
	transport := newFakeTransport()
	push := &fakePush{}
	es := newTestEmergencyService(store, transport, push, &fakeDialer{canCall: true})

	user := testUser()
	result := es.SendEmergencyAlert(context.Background(), user, testLocation(), "Help!")

	require.True(t, result.Success)
	require.Len(t, result.SMSResults, 3)

	// The primary contact jumps the queue; the rest keep list order.
	assert.Equal(t, "First", result.SMSResults[0].Contact.Name)
	assert.Equal(t, "Second", result.SMSResults[1].Contact.Name)
	assert.Equal(t, "Third", result.SMSResults[2].Contact.Name)

	sent := transport.sentTo()
	require.Len(t, sent, 4) // three contacts plus the helpline
	assert.Equal(t, "+31600000001", sent[0])
	assert.Equal(t, "112", sent[3])
}

func TestSendEmergencyAlertPartialSMSFailure(t *testing.T) {
	store := newFakeIncidentStore()
	transport := newFakeTransport()
	transport.failNumbers["+31600000002"] = true
	es := newTestEmergencyService(store, transport, &fakePush{}, &fakeDialer{canCall: true})

	result := es.SendEmergencyAlert(context.Background(), testUser(), testLocation(), "")

	// One contact failing does not fail the dispatch.
	require.True(t, result.Success)
	require.Len(t, result.SMSResults, 3)
	assert.True(t, result.SMSResults[0].Success)
	assert.False(t, result.SMSResults[1].Success)
	assert.Contains(t, result.SMSResults[1].Error, "carrier rejected")
	assert.True(t, result.SMSResults[2].Success)
}

func TestSendEmergencyAlertTransportUnavailable(t *testing.T) {
	store := newFakeIncidentStore()
	transport := newFakeTransport()
	transport.available = false
	es := newTestEmergencyService(store, transport, &fakePush{}, &fakeDialer{canCall: true})

	result := es.SendEmergencyAlert(context.Background(), testUser(), testLocation(), "Help!")

	// Still succeeds: the incident was persisted.
	require.True(t, result.Success)
	require.Len(t, result.SMSResults, 3)
	for _, r := range result.SMSResults {
		assert.False(t, r.Success)
		assert.Equal(t, "SMS transport unavailable", r.Error)
	}
	// No send was ever attempted.
	assert.Empty(t, transport.sentTo())
	assert.NotEmpty(t, result.IncidentID)
}

func TestSendEmergencyAlertStoreFailureFailsDispatch(t *testing.T) {
	store := newFakeIncidentStore()
	store.failNext = true
	transport := newFakeTransport()
	es := newTestEmergencyService(store, transport, &fakePush{}, &fakeDialer{canCall: true})

	result := es.SendEmergencyAlert(context.Background(), testUser(), testLocation(), "Help!")

	// Persistence is mandatory; its failure fails the whole dispatch
	// even though every notification channel went out.
	require.False(t, result.Success)
	assert.Empty(t, result.IncidentID)
	assert.Len(t, transport.sentTo(), 4)
	require.Len(t, result.SMSResults, 3)
	for _, r := range result.SMSResults {
		assert.True(t, r.Success)
	}
	require.Len(t, result.StoreResults, 1)
	assert.False(t, result.StoreResults[0].Success)
}

func TestSendEmergencyAlertNilGuards(t *testing.T) {
	store := newFakeIncidentStore()
	transport := newFakeTransport()
	es := newTestEmergencyService(store, transport, &fakePush{}, &fakeDialer{canCall: true})

	result := es.SendEmergencyAlert(context.Background(), nil, testLocation(), "Help!")
	require.False(t, result.Success)
	assert.Equal(t, "user profile unavailable", result.Error)

	result = es.SendEmergencyAlert(context.Background(), testUser(), nil, "Help!")
	require.False(t, result.Success)
	assert.Equal(t, "current location unavailable", result.Error)

	// Neither guard reached any channel.
	assert.Empty(t, transport.sentTo())
	assert.Empty(t, store.incidents)
}

func TestSendEmergencyAlertNoContacts(t *testing.T) {
	store := newFakeIncidentStore()
	transport := newFakeTransport()
	es := newTestEmergencyService(store, transport, &fakePush{}, &fakeDialer{canCall: true})

	user := testUser()
	user.Contacts = nil

	result := es.SendEmergencyAlert(context.Background(), user, testLocation(), "Help!")

	// The incident is still recorded and the helpline still notified.
	require.True(t, result.Success)
	assert.Empty(t, result.SMSResults)
	assert.NotEmpty(t, result.IncidentID)
	assert.Equal(t, []string{"112"}, transport.sentTo())
}

func TestMakeEmergencyCall(t *testing.T) {
	es := newTestEmergencyService(newFakeIncidentStore(), newFakeTransport(), &fakePush{}, &fakeDialer{canCall: true})

	result := es.MakeEmergencyCall("")
	require.True(t, result.Success)
	assert.Equal(t, "100", result.Number)

	result = es.MakeEmergencyCall("108")
	require.True(t, result.Success)
	assert.Equal(t, "108", result.Number)
}

func TestMakeEmergencyCallDialerUnavailable(t *testing.T) {
	es := newTestEmergencyService(newFakeIncidentStore(), newFakeTransport(), &fakePush{}, &fakeDialer{canCall: false})

	result := es.MakeEmergencyCall("100")
	require.False(t, result.Success)
	assert.Equal(t, "device cannot place calls", result.Error)
}

func TestSendLocationUpdate(t *testing.T) {
	store := newFakeIncidentStore()
	push := &fakePush{}
	es := newTestEmergencyService(store, newFakeTransport(), push, &fakeDialer{canCall: true})

	user := testUser()
	result := es.SendEmergencyAlert(context.Background(), user, testLocation(), "Help!")
	require.True(t, result.Success)

	err := es.SendLocationUpdate(context.Background(), user.ID.Hex(), result.IncidentID, user, *testLocation())
	require.NoError(t, err)

	incident, err := es.GetIncident(context.Background(), result.IncidentID)
	require.NoError(t, err)
	assert.Len(t, incident.LocationHistory, 1)

	// Another user may not append to it.
	other := testUser()
	err = es.SendLocationUpdate(context.Background(), other.ID.Hex(), result.IncidentID, other, *testLocation())
	require.Error(t, err)
	assert.Len(t, incident.LocationHistory, 1)

	// Unknown incident.
	err = es.SendLocationUpdate(context.Background(), user.ID.Hex(), "missing", user, *testLocation())
	require.Error(t, err)
}

func TestResolveIncident(t *testing.T) {
	store := newFakeIncidentStore()
	transport := newFakeTransport()
	es := newTestEmergencyService(store, transport, &fakePush{}, &fakeDialer{canCall: true})

	user := testUser()
	result := es.SendEmergencyAlert(context.Background(), user, testLocation(), "Help!")
	require.True(t, result.Success)

	err := es.ResolveIncident(context.Background(), user.ID.Hex(), result.IncidentID, "false alarm")
	require.NoError(t, err)

	incident, err := es.GetIncident(context.Background(), result.IncidentID)
	require.NoError(t, err)
	assert.Equal(t, models.IncidentStatusResolved, incident.Status)
	assert.Equal(t, "false alarm", incident.Resolution)

	// Resolving twice conflicts.
	err = es.ResolveIncident(context.Background(), user.ID.Hex(), result.IncidentID, "again")
	require.Error(t, err)

	// Another user may not resolve it.
	other := testUser()
	result2 := es.SendEmergencyAlert(context.Background(), other, testLocation(), "Help!")
	require.True(t, result2.Success)
	err = es.ResolveIncident(context.Background(), user.ID.Hex(), result2.IncidentID, "not mine")
	require.Error(t, err)
}
