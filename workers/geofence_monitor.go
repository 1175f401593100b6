package workers

import (
	"context"
	"sync"
	"time"

	"github.com/go-redis/redis/v8"
	"github.com/sirupsen/logrus"

	"safetrail/interfaces"
	"safetrail/models"
	"safetrail/services"
	"safetrail/utils"
)

// GeofenceMonitorConfig tunes one user's monitor. Emergency mode polls
// faster and reacts to smaller movements.
type GeofenceMonitorConfig struct {
	NormalInterval     time.Duration `json:"normalInterval"`
	EmergencyInterval  time.Duration `json:"emergencyInterval"`
	NormalDistanceM    float64       `json:"normalDistanceM"`
	EmergencyDistanceM float64       `json:"emergencyDistanceM"`
	TransitionLogSize  int           `json:"transitionLogSize"`
	ZoneRefreshEvery   time.Duration `json:"zoneRefreshEvery"`
}

// ZoneSource supplies the priority-ordered zone list the monitor
// classifies against.
type ZoneSource interface {
	ListZones(ctx context.Context) ([]models.SafetyZone, error)
}

// GeofenceMonitorStats are the counters exposed over the stats
// endpoint.
type GeofenceMonitorStats struct {
	SamplesProcessed    int64            `json:"samplesProcessed"`
	TransitionsDetected int64            `json:"transitionsDetected"`
	AlertsGenerated     int64            `json:"alertsGenerated"`
	EmergencyMode       bool             `json:"emergencyMode"`
	LastScore           *int             `json:"lastScore,omitempty"`
	LastRiskLevel       models.RiskLevel `json:"lastRiskLevel,omitempty"`
	StartedAt           *time.Time       `json:"startedAt,omitempty"`
	LastSampleAt        *time.Time       `json:"lastSampleAt,omitempty"`
}

// GeofenceMonitor watches one user's location stream, detects zone
// transitions, and pushes alerts when the user crosses into a worse
// zone. Samples that arrive after Stop are dropped by a running-flag
// check before any state is touched.
type GeofenceMonitor struct {
	userID        string
	provider      interfaces.LocationProvider
	zoneSource    ZoneSource
	safetyService *services.SafetyService
	pushNotifier  interfaces.PushNotifier
	redis         *redis.Client
	config        GeofenceMonitorConfig

	mu            sync.Mutex
	isRunning     bool
	emergencyMode bool
	subscription  interfaces.Subscription
	ctx           context.Context
	cancel        context.CancelFunc

	zones       []models.SafetyZone
	zonesLoaded time.Time
	currentZone *models.SafetyZone
	enteredAt   time.Time
	transitions []models.ZoneTransition
	deviceToken string

	stats GeofenceMonitorStats
}

func NewGeofenceMonitor(
	userID string,
	deviceToken string,
	provider interfaces.LocationProvider,
	zoneSource ZoneSource,
	safetyService *services.SafetyService,
	pushNotifier interfaces.PushNotifier,
	redisClient *redis.Client,
	config GeofenceMonitorConfig,
) *GeofenceMonitor {
	if config.TransitionLogSize <= 0 {
		config.TransitionLogSize = 50
	}
	if config.ZoneRefreshEvery <= 0 {
		config.ZoneRefreshEvery = 5 * time.Minute
	}

	return &GeofenceMonitor{
		userID:        userID,
		deviceToken:   deviceToken,
		provider:      provider,
		zoneSource:    zoneSource,
		safetyService: safetyService,
		pushNotifier:  pushNotifier,
		redis:         redisClient,
		config:        config,
		transitions:   []models.ZoneTransition{},
	}
}

// Start begins watching the user's location. Starting a running
// monitor is a no-op.
func (gm *GeofenceMonitor) Start(ctx context.Context) error {
	gm.mu.Lock()
	defer gm.mu.Unlock()

	if gm.isRunning {
		return nil
	}

	gm.ctx, gm.cancel = context.WithCancel(ctx)

	if err := gm.loadZonesLocked(gm.ctx); err != nil {
		gm.cancel()
		return err
	}

	sub, err := gm.provider.Watch(gm.ctx, gm.watchOptionsLocked(), gm.onSample)
	if err != nil {
		gm.cancel()
		return err
	}
	gm.subscription = sub
	gm.isRunning = true

	now := time.Now()
	gm.stats.StartedAt = &now

	logrus.Infof("Geofence monitor started for user %s", gm.userID)
	return nil
}

// Stop cancels the subscription and drops any in-flight samples.
// Stopping a stopped monitor is a no-op.
func (gm *GeofenceMonitor) Stop() {
	gm.mu.Lock()
	defer gm.mu.Unlock()

	if !gm.isRunning {
		return
	}

	gm.isRunning = false
	if gm.subscription != nil {
		gm.subscription.Unsubscribe()
		gm.subscription = nil
	}
	if gm.cancel != nil {
		gm.cancel()
	}

	logrus.Infof("Geofence monitor stopped for user %s", gm.userID)
}

// SetEmergencyMode switches the watch profile. The monitor
// resubscribes so the new interval and distance take effect
// immediately.
func (gm *GeofenceMonitor) SetEmergencyMode(enabled bool) error {
	gm.mu.Lock()
	defer gm.mu.Unlock()

	if gm.emergencyMode == enabled {
		return nil
	}
	gm.emergencyMode = enabled
	gm.stats.EmergencyMode = enabled

	if !gm.isRunning {
		return nil
	}

	if gm.subscription != nil {
		gm.subscription.Unsubscribe()
	}

	sub, err := gm.provider.Watch(gm.ctx, gm.watchOptionsLocked(), gm.onSample)
	if err != nil {
		// The monitor is dead at this point and Stop will no-op, so
		// the watch context has to be released here.
		gm.isRunning = false
		gm.subscription = nil
		gm.cancel()
		return err
	}
	gm.subscription = sub

	logrus.Infof("Geofence monitor for user %s switched emergency mode to %v", gm.userID, enabled)
	return nil
}

// GetStats returns a snapshot of the monitor counters.
func (gm *GeofenceMonitor) GetStats() GeofenceMonitorStats {
	gm.mu.Lock()
	defer gm.mu.Unlock()
	return gm.stats
}

// GetTransitions returns the recorded transition log, oldest first.
func (gm *GeofenceMonitor) GetTransitions() []models.ZoneTransition {
	gm.mu.Lock()
	defer gm.mu.Unlock()

	out := make([]models.ZoneTransition, len(gm.transitions))
	copy(out, gm.transitions)
	return out
}

// IsRunning reports whether the monitor is active.
func (gm *GeofenceMonitor) IsRunning() bool {
	gm.mu.Lock()
	defer gm.mu.Unlock()
	return gm.isRunning
}

// onSample handles one delivered location sample. Every sample is
// classified and scored so the stats snapshot stays current, but push
// alerts only go out on a zone transition so a user parked inside a
// caution zone is not nagged on every poll. The provider can deliver a
// sample that was already in flight when Stop ran, so the running flag
// is checked before anything else.
func (gm *GeofenceMonitor) onSample(sample models.LocationSample) {
	gm.mu.Lock()

	if !gm.isRunning {
		gm.mu.Unlock()
		return
	}

	gm.stats.SamplesProcessed++
	now := time.Now()
	gm.stats.LastSampleAt = &now

	if time.Since(gm.zonesLoaded) > gm.config.ZoneRefreshEvery {
		if err := gm.loadZonesLocked(gm.ctx); err != nil {
			logrus.Warnf("Geofence monitor failed to refresh zones: %v", err)
		}
	}

	classification := services.ClassifyAgainst(gm.zones, sample.Coordinate())
	score := gm.safetyService.CalculateScore(classification, models.ScoreOptions{At: sample.Timestamp})
	gm.stats.LastScore = &score.Score
	gm.stats.LastRiskLevel = gm.safetyService.RiskLevelFor(score.Score)

	previous := gm.currentZone
	next := classification.Zone

	if previous.ZoneID() == next.ZoneID() {
		gm.mu.Unlock()
		return
	}

	transition := models.ZoneTransition{
		ID:         utils.GenerateUUID(),
		FromZoneID: previous.ZoneID(),
		ToZoneID:   next.ZoneID(),
		Timestamp:  now,
	}
	if !gm.enteredAt.IsZero() {
		transition.TimeInPreviousZone = now.Sub(gm.enteredAt)
	}

	gm.recordTransitionLocked(transition)
	gm.currentZone = next
	gm.enteredAt = now
	gm.stats.TransitionsDetected++

	alerts := gm.safetyService.GenerateAlerts(classification, score, sample.Timestamp)
	deviceToken := gm.deviceToken
	ctx := gm.ctx
	gm.stats.AlertsGenerated += int64(len(alerts))

	gm.mu.Unlock()

	for _, alert := range alerts {
		if _, err := gm.pushNotifier.SendPush(ctx, deviceToken, alert.Title, alert.Message, map[string]string{
			"type":     "zone_alert",
			"priority": string(alert.Priority),
		}); err != nil {
			logrus.Warnf("Failed to push zone alert to user %s: %v", gm.userID, err)
		}
	}
}

// recordTransitionLocked appends to the bounded transition log,
// evicting the oldest entry when full, and mirrors the entry to Redis
// for the dashboard.
func (gm *GeofenceMonitor) recordTransitionLocked(transition models.ZoneTransition) {
	if len(gm.transitions) >= gm.config.TransitionLogSize {
		gm.transitions = gm.transitions[1:]
	}
	gm.transitions = append(gm.transitions, transition)

	if gm.redis != nil {
		key := "zone_transitions:" + gm.userID
		payload := transition.FromZoneID + ">" + transition.ToZoneID + "@" + transition.Timestamp.Format(time.RFC3339)
		pipe := gm.redis.Pipeline()
		pipe.LPush(gm.ctx, key, payload)
		pipe.LTrim(gm.ctx, key, 0, int64(gm.config.TransitionLogSize-1))
		if _, err := pipe.Exec(gm.ctx); err != nil {
			logrus.Debugf("Failed to mirror zone transition to redis: %v", err)
		}
	}
}

func (gm *GeofenceMonitor) loadZonesLocked(ctx context.Context) error {
	zones, err := gm.zoneSource.ListZones(ctx)
	if err != nil {
		return err
	}
	gm.zones = zones
	gm.zonesLoaded = time.Now()
	return nil
}

func (gm *GeofenceMonitor) watchOptionsLocked() interfaces.WatchOptions {
	if gm.emergencyMode {
		return interfaces.WatchOptions{
			Interval:          gm.config.EmergencyInterval,
			MinDistanceMeters: gm.config.EmergencyDistanceM,
		}
	}
	return interfaces.WatchOptions{
		Interval:          gm.config.NormalInterval,
		MinDistanceMeters: gm.config.NormalDistanceM,
	}
}
