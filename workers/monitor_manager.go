package workers

import (
	"context"
	"sync"

	"github.com/go-redis/redis/v8"

	"safetrail/interfaces"
	"safetrail/models"
	"safetrail/services"
)

// MonitorManager owns one geofence monitor and one location provider
// per user. Monitors are created lazily when a user starts monitoring
// and torn down on stop.
type MonitorManager struct {
	zoneService   *services.ZoneService
	safetyService *services.SafetyService
	pushNotifier  interfaces.PushNotifier
	redis         *redis.Client
	config        GeofenceMonitorConfig

	mu        sync.Mutex
	monitors  map[string]*GeofenceMonitor
	providers map[string]*services.DeviceLocationProvider
}

func NewMonitorManager(
	zoneService *services.ZoneService,
	safetyService *services.SafetyService,
	pushNotifier interfaces.PushNotifier,
	redisClient *redis.Client,
	config GeofenceMonitorConfig,
) *MonitorManager {
	return &MonitorManager{
		zoneService:   zoneService,
		safetyService: safetyService,
		pushNotifier:  pushNotifier,
		redis:         redisClient,
		config:        config,
		monitors:      make(map[string]*GeofenceMonitor),
		providers:     make(map[string]*services.DeviceLocationProvider),
	}
}

// StartMonitoring ensures a running monitor for the user. Calling it
// for an already monitored user is a no-op.
func (mm *MonitorManager) StartMonitoring(ctx context.Context, userID, deviceToken string) error {
	mm.mu.Lock()
	defer mm.mu.Unlock()

	if monitor, ok := mm.monitors[userID]; ok && monitor.IsRunning() {
		return nil
	}

	provider := mm.providerLocked(userID)
	monitor := NewGeofenceMonitor(userID, deviceToken, provider, mm.zoneService, mm.safetyService, mm.pushNotifier, mm.redis, mm.config)

	if err := monitor.Start(ctx); err != nil {
		return err
	}

	mm.monitors[userID] = monitor
	return nil
}

// StopMonitoring stops and removes the user's monitor if present.
func (mm *MonitorManager) StopMonitoring(userID string) {
	mm.mu.Lock()
	defer mm.mu.Unlock()

	if monitor, ok := mm.monitors[userID]; ok {
		monitor.Stop()
		delete(mm.monitors, userID)
	}
}

// SetEmergencyMode switches the user's monitor profile. A missing
// monitor is not an error; emergency mode simply has nothing to speed
// up.
func (mm *MonitorManager) SetEmergencyMode(userID string, enabled bool) error {
	mm.mu.Lock()
	monitor, ok := mm.monitors[userID]
	mm.mu.Unlock()

	if !ok {
		return nil
	}
	return monitor.SetEmergencyMode(enabled)
}

// PublishLocation feeds a device sample into the user's provider,
// creating the provider if this is the first sample.
func (mm *MonitorManager) PublishLocation(userID string, sample models.LocationSample) {
	mm.mu.Lock()
	provider := mm.providerLocked(userID)
	mm.mu.Unlock()

	provider.Publish(sample)
}

// Provider returns the user's location provider, creating it on first
// use.
func (mm *MonitorManager) Provider(userID string) *services.DeviceLocationProvider {
	mm.mu.Lock()
	defer mm.mu.Unlock()
	return mm.providerLocked(userID)
}

// GetMonitor returns the user's monitor, or nil when none exists.
func (mm *MonitorManager) GetMonitor(userID string) *GeofenceMonitor {
	mm.mu.Lock()
	defer mm.mu.Unlock()
	return mm.monitors[userID]
}

// StopAll stops every monitor, used during shutdown.
func (mm *MonitorManager) StopAll() {
	mm.mu.Lock()
	defer mm.mu.Unlock()

	for userID, monitor := range mm.monitors {
		monitor.Stop()
		delete(mm.monitors, userID)
	}
}

func (mm *MonitorManager) providerLocked(userID string) *services.DeviceLocationProvider {
	provider, ok := mm.providers[userID]
	if !ok {
		provider = services.NewDeviceLocationProvider()
		mm.providers[userID] = provider
	}
	return provider
}
