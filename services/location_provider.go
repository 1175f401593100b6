package services

import (
	"context"
	"errors"
	"sync"
	"time"

	"safetrail/interfaces"
	"safetrail/models"
	"safetrail/utils"
)

// DeviceLocationProvider is a location source fed by samples POSTed
// from the device. It implements interfaces.LocationProvider. Watch
// subscriptions receive published samples filtered by their interval
// and minimum-distance settings.
type DeviceLocationProvider struct {
	mu   sync.RWMutex
	last *models.LocationSample
	subs map[string]*deviceSubscription
}

type deviceSubscription struct {
	id       string
	opts     interfaces.WatchOptions
	fn       func(models.LocationSample)
	provider *DeviceLocationProvider

	mu            sync.Mutex
	lastDelivered *models.LocationSample
	lastAt        time.Time
	closed        bool
	once          sync.Once
}

func NewDeviceLocationProvider() *DeviceLocationProvider {
	return &DeviceLocationProvider{
		subs: make(map[string]*deviceSubscription),
	}
}

// Publish feeds a new sample from the device and fans it out to
// matching subscriptions.
func (dlp *DeviceLocationProvider) Publish(sample models.LocationSample) {
	dlp.mu.Lock()
	dlp.last = &sample
	subs := make([]*deviceSubscription, 0, len(dlp.subs))
	for _, sub := range dlp.subs {
		subs = append(subs, sub)
	}
	dlp.mu.Unlock()

	for _, sub := range subs {
		sub.deliver(sample)
	}
}

func (dlp *DeviceLocationProvider) GetCurrentLocation(ctx context.Context) (*models.LocationSample, error) {
	dlp.mu.RLock()
	defer dlp.mu.RUnlock()

	if dlp.last == nil {
		return nil, errors.New("no location available yet")
	}
	sample := *dlp.last
	return &sample, nil
}

func (dlp *DeviceLocationProvider) Watch(ctx context.Context, opts interfaces.WatchOptions, fn func(models.LocationSample)) (interfaces.Subscription, error) {
	if fn == nil {
		return nil, errors.New("watch callback is required")
	}

	sub := &deviceSubscription{
		id:       utils.GenerateUUID(),
		opts:     opts,
		fn:       fn,
		provider: dlp,
	}

	dlp.mu.Lock()
	dlp.subs[sub.id] = sub
	dlp.mu.Unlock()

	// Tear down with the caller's context.
	go func() {
		<-ctx.Done()
		sub.Unsubscribe()
	}()

	return sub, nil
}

// deliver applies the subscription's filters and invokes the callback.
func (ds *deviceSubscription) deliver(sample models.LocationSample) {
	ds.mu.Lock()
	if ds.closed {
		ds.mu.Unlock()
		return
	}

	now := time.Now()
	if !ds.lastAt.IsZero() && ds.opts.Interval > 0 && now.Sub(ds.lastAt) < ds.opts.Interval {
		ds.mu.Unlock()
		return
	}
	if ds.lastDelivered != nil && ds.opts.MinDistanceMeters > 0 {
		moved := utils.HaversineDistanceM(
			ds.lastDelivered.Latitude, ds.lastDelivered.Longitude,
			sample.Latitude, sample.Longitude,
		)
		if moved < ds.opts.MinDistanceMeters {
			ds.mu.Unlock()
			return
		}
	}

	ds.lastDelivered = &sample
	ds.lastAt = now
	fn := ds.fn
	ds.mu.Unlock()

	fn(sample)
}

// Unsubscribe stops further deliveries. Safe to call more than once.
func (ds *deviceSubscription) Unsubscribe() {
	ds.once.Do(func() {
		ds.mu.Lock()
		ds.closed = true
		ds.mu.Unlock()

		ds.provider.mu.Lock()
		delete(ds.provider.subs, ds.id)
		ds.provider.mu.Unlock()
	})
}
