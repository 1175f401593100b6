package workers

import (
	"context"
	"errors"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.mongodb.org/mongo-driver/bson/primitive"

	"safetrail/interfaces"
	"safetrail/models"
	"safetrail/services"
)

type stubSubscription struct {
	mu           sync.Mutex
	unsubscribed int
}

func (s *stubSubscription) Unsubscribe() {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.unsubscribed++
}

func (s *stubSubscription) count() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.unsubscribed
}

type watchCall struct {
	ctx  context.Context
	opts interfaces.WatchOptions
	fn   func(models.LocationSample)
	sub  *stubSubscription
}

type stubProvider struct {
	mu       sync.Mutex
	watches  []watchCall
	failNext error
}

func (p *stubProvider) GetCurrentLocation(ctx context.Context) (*models.LocationSample, error) {
	return nil, errors.New("no location available yet")
}

func (p *stubProvider) Watch(ctx context.Context, opts interfaces.WatchOptions, fn func(models.LocationSample)) (interfaces.Subscription, error) {
	p.mu.Lock()
	defer p.mu.Unlock()
	if p.failNext != nil {
		err := p.failNext
		p.failNext = nil
		return nil, err
	}
	call := watchCall{ctx: ctx, opts: opts, fn: fn, sub: &stubSubscription{}}
	p.watches = append(p.watches, call)
	return call.sub, nil
}

func (p *stubProvider) latest() watchCall {
	p.mu.Lock()
	defer p.mu.Unlock()
	return p.watches[len(p.watches)-1]
}

func (p *stubProvider) watchCount() int {
	p.mu.Lock()
	defer p.mu.Unlock()
	return len(p.watches)
}

type stubZoneSource struct {
	zones []models.SafetyZone
	err   error
}

func (zs *stubZoneSource) ListZones(ctx context.Context) ([]models.SafetyZone, error) {
	if zs.err != nil {
		return nil, zs.err
	}
	return zs.zones, nil
}

type recordedPush struct {
	token string
	title string
}

type stubPush struct {
	mu     sync.Mutex
	pushes []recordedPush
}

func (sp *stubPush) SendPush(ctx context.Context, deviceToken, title, body string, data map[string]string) (*models.SendResult, error) {
	sp.mu.Lock()
	defer sp.mu.Unlock()
	sp.pushes = append(sp.pushes, recordedPush{token: deviceToken, title: title})
	return &models.SendResult{Success: true}, nil
}

func (sp *stubPush) all() []recordedPush {
	sp.mu.Lock()
	defer sp.mu.Unlock()
	out := make([]recordedPush, len(sp.pushes))
	copy(out, sp.pushes)
	return out
}

func testZone(name string, level models.SafetyLevel, minLat, minLon, maxLat, maxLon float64) models.SafetyZone {
	return models.SafetyZone{
		ID:          primitive.NewObjectID(),
		Name:        name,
		SafetyLevel: level,
		Coordinates: []models.Coordinate{
			{Latitude: minLat, Longitude: minLon},
			{Latitude: minLat, Longitude: maxLon},
			{Latitude: maxLat, Longitude: maxLon},
			{Latitude: maxLat, Longitude: minLon},
		},
	}
}

func daySample(lat, lon float64) models.LocationSample {
	return models.LocationSample{
		Latitude:  lat,
		Longitude: lon,
		Timestamp: time.Date(2026, 3, 10, 14, 0, 0, 0, time.UTC),
	}
}

func nightSample(lat, lon float64) models.LocationSample {
	return models.LocationSample{
		Latitude:  lat,
		Longitude: lon,
		Timestamp: time.Date(2026, 3, 10, 23, 0, 0, 0, time.UTC),
	}
}

type monitorHarness struct {
	monitor  *GeofenceMonitor
	provider *stubProvider
	push     *stubPush
	zones    *stubZoneSource
}

func newMonitorHarness(t *testing.T, config GeofenceMonitorConfig) *monitorHarness {
	t.Helper()

	provider := &stubProvider{}
	push := &stubPush{}
	zones := &stubZoneSource{zones: []models.SafetyZone{
		testZone("Riverbed", models.SafetyLevelRestricted, 28.60, 77.26, 28.61, 77.27),
		testZone("Old Quarter", models.SafetyLevelCaution, 28.64, 77.20, 28.66, 77.22),
		testZone("Central Plaza", models.SafetyLevelSafe, 28.62, 77.21, 28.64, 77.23),
	}}

	safetyService := services.NewSafetyService(nil, 22, 6)
	monitor := NewGeofenceMonitor("user-1", "token-1", provider, zones, safetyService, push, nil, config)

	return &monitorHarness{monitor: monitor, provider: provider, push: push, zones: zones}
}

func TestMonitorStartIsIdempotent(t *testing.T) {
	h := newMonitorHarness(t, GeofenceMonitorConfig{})

	require.NoError(t, h.monitor.Start(context.Background()))
	require.NoError(t, h.monitor.Start(context.Background()))

	assert.True(t, h.monitor.IsRunning())
	assert.Equal(t, 1, h.provider.watchCount())
}

func TestMonitorStartFailsWhenZonesUnavailable(t *testing.T) {
	h := newMonitorHarness(t, GeofenceMonitorConfig{})
	h.zones.err = errors.New("database gone")

	err := h.monitor.Start(context.Background())
	assert.Error(t, err)
	assert.False(t, h.monitor.IsRunning())
}

func TestMonitorDetectsTransitions(t *testing.T) {
	h := newMonitorHarness(t, GeofenceMonitorConfig{})
	require.NoError(t, h.monitor.Start(context.Background()))

	fn := h.provider.latest().fn

	// Outside everything first, then into the safe plaza.
	fn(daySample(10.0, 10.0))
	fn(daySample(28.63, 77.22))
	// Same zone again, no new transition.
	fn(daySample(28.631, 77.221))
	// Into the caution quarter.
	fn(daySample(28.65, 77.21))

	transitions := h.monitor.GetTransitions()
	require.Len(t, transitions, 2)
	assert.Empty(t, transitions[0].FromZoneID)
	assert.NotEmpty(t, transitions[0].ToZoneID)
	assert.Equal(t, transitions[0].ToZoneID, transitions[1].FromZoneID)

	stats := h.monitor.GetStats()
	assert.Equal(t, int64(4), stats.SamplesProcessed)
	assert.Equal(t, int64(2), stats.TransitionsDetected)
}

func TestMonitorPushesAlertsOnWorseZone(t *testing.T) {
	h := newMonitorHarness(t, GeofenceMonitorConfig{})
	require.NoError(t, h.monitor.Start(context.Background()))

	fn := h.provider.latest().fn
	fn(daySample(28.605, 77.265)) // restricted riverbed

	pushes := h.push.all()
	// Restricted zone warning plus the critical risk alert.
	require.Len(t, pushes, 2)
	assert.Equal(t, "token-1", pushes[0].token)
	assert.Contains(t, pushes[0].title, "Restricted")

	assert.Equal(t, int64(2), h.monitor.GetStats().AlertsGenerated)
}

func TestMonitorScoresEverySample(t *testing.T) {
	h := newMonitorHarness(t, GeofenceMonitorConfig{})
	require.NoError(t, h.monitor.Start(context.Background()))

	fn := h.provider.latest().fn
	fn(daySample(28.63, 77.22)) // into the safe plaza

	stats := h.monitor.GetStats()
	require.NotNil(t, stats.LastScore)
	assert.Equal(t, 100, *stats.LastScore)
	assert.Equal(t, models.RiskLevelLow, stats.LastRiskLevel)

	// Night falls without leaving the plaza. The score snapshot moves
	// even though the zone did not change, and nothing is pushed.
	fn(nightSample(28.631, 77.221))

	stats = h.monitor.GetStats()
	require.NotNil(t, stats.LastScore)
	assert.Equal(t, 70, *stats.LastScore)
	assert.Equal(t, models.RiskLevelMedium, stats.LastRiskLevel)
	assert.Equal(t, int64(2), stats.SamplesProcessed)
	assert.Equal(t, int64(1), stats.TransitionsDetected)
	assert.Empty(t, h.push.all())
}

func TestMonitorTransitionLogIsBounded(t *testing.T) {
	h := newMonitorHarness(t, GeofenceMonitorConfig{TransitionLogSize: 2})
	require.NoError(t, h.monitor.Start(context.Background()))

	fn := h.provider.latest().fn
	fn(daySample(28.63, 77.22)) // into plaza
	fn(daySample(28.65, 77.21)) // into quarter
	fn(daySample(28.63, 77.22)) // back into plaza

	transitions := h.monitor.GetTransitions()
	require.Len(t, transitions, 2)
	// The oldest entry (outside -> plaza) was evicted.
	assert.NotEmpty(t, transitions[0].FromZoneID)
	assert.Equal(t, int64(3), h.monitor.GetStats().TransitionsDetected)
}

func TestMonitorStopDropsInFlightSamples(t *testing.T) {
	h := newMonitorHarness(t, GeofenceMonitorConfig{})
	require.NoError(t, h.monitor.Start(context.Background()))

	fn := h.provider.latest().fn
	sub := h.provider.latest().sub

	fn(daySample(28.63, 77.22))
	h.monitor.Stop()
	h.monitor.Stop() // second stop is a no-op

	// A sample already in flight when Stop ran must not touch state.
	fn(daySample(28.65, 77.21))

	assert.False(t, h.monitor.IsRunning())
	assert.Equal(t, 1, sub.count())
	assert.Equal(t, int64(1), h.monitor.GetStats().SamplesProcessed)
	assert.Len(t, h.monitor.GetTransitions(), 1)
}

func TestMonitorEmergencyModeResubscribes(t *testing.T) {
	config := GeofenceMonitorConfig{
		NormalInterval:     30 * time.Second,
		EmergencyInterval:  5 * time.Second,
		NormalDistanceM:    50,
		EmergencyDistanceM: 10,
	}
	h := newMonitorHarness(t, config)
	require.NoError(t, h.monitor.Start(context.Background()))

	first := h.provider.latest()
	assert.Equal(t, 30*time.Second, first.opts.Interval)
	assert.Equal(t, 50.0, first.opts.MinDistanceMeters)

	require.NoError(t, h.monitor.SetEmergencyMode(true))

	assert.Equal(t, 2, h.provider.watchCount())
	assert.Equal(t, 1, first.sub.count())
	second := h.provider.latest()
	assert.Equal(t, 5*time.Second, second.opts.Interval)
	assert.Equal(t, 10.0, second.opts.MinDistanceMeters)
	assert.True(t, h.monitor.GetStats().EmergencyMode)

	// Setting the same mode again does not churn the subscription.
	require.NoError(t, h.monitor.SetEmergencyMode(true))
	assert.Equal(t, 2, h.provider.watchCount())

	require.NoError(t, h.monitor.SetEmergencyMode(false))
	assert.Equal(t, 3, h.provider.watchCount())
	assert.Equal(t, 30*time.Second, h.provider.latest().opts.Interval)
}

func TestMonitorResubscribeFailureReleasesWatch(t *testing.T) {
	h := newMonitorHarness(t, GeofenceMonitorConfig{})
	require.NoError(t, h.monitor.Start(context.Background()))

	first := h.provider.latest()
	h.provider.failNext = errors.New("gps stack wedged")

	require.Error(t, h.monitor.SetEmergencyMode(true))
	assert.False(t, h.monitor.IsRunning())

	// The old subscription is gone and its watch context is cancelled,
	// so nothing is left waiting on the dead monitor.
	assert.Equal(t, 1, first.sub.count())
	select {
	case <-first.ctx.Done():
	default:
		t.Fatal("watch context still live after failed resubscribe")
	}

	h.monitor.Stop() // no-op on a dead monitor
}

func TestMonitorEmergencyModeWhileStopped(t *testing.T) {
	h := newMonitorHarness(t, GeofenceMonitorConfig{})

	require.NoError(t, h.monitor.SetEmergencyMode(true))
	assert.Equal(t, 0, h.provider.watchCount())
	assert.True(t, h.monitor.GetStats().EmergencyMode)
}
