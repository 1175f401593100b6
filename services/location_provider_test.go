package services

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"safetrail/interfaces"
	"safetrail/models"
)

func sampleAt(lat, lon float64) models.LocationSample {
	return models.LocationSample{
		Latitude:  lat,
		Longitude: lon,
		Accuracy:  5,
		Timestamp: time.Now(),
	}
}

func TestProviderDeliversPublishedSamples(t *testing.T) {
	provider := NewDeviceLocationProvider()

	var received []models.LocationSample
	sub, err := provider.Watch(context.Background(), interfaces.WatchOptions{}, func(s models.LocationSample) {
		received = append(received, s)
	})
	require.NoError(t, err)
	defer sub.Unsubscribe()

	provider.Publish(sampleAt(28.63, 77.22))
	provider.Publish(sampleAt(28.64, 77.23))

	assert.Len(t, received, 2)
	assert.Equal(t, 28.64, received[1].Latitude)
}

func TestProviderMinDistanceFilter(t *testing.T) {
	provider := NewDeviceLocationProvider()

	var received []models.LocationSample
	sub, err := provider.Watch(context.Background(), interfaces.WatchOptions{MinDistanceMeters: 100}, func(s models.LocationSample) {
		received = append(received, s)
	})
	require.NoError(t, err)
	defer sub.Unsubscribe()

	provider.Publish(sampleAt(28.6300, 77.2200))
	// Roughly 11 meters north, below the threshold.
	provider.Publish(sampleAt(28.6301, 77.2200))
	// Roughly 220 meters north of the last delivered sample.
	provider.Publish(sampleAt(28.6320, 77.2200))

	require.Len(t, received, 2)
	assert.Equal(t, 28.6300, received[0].Latitude)
	assert.Equal(t, 28.6320, received[1].Latitude)
}

func TestProviderIntervalFilter(t *testing.T) {
	provider := NewDeviceLocationProvider()

	var received []models.LocationSample
	sub, err := provider.Watch(context.Background(), interfaces.WatchOptions{Interval: time.Hour}, func(s models.LocationSample) {
		received = append(received, s)
	})
	require.NoError(t, err)
	defer sub.Unsubscribe()

	provider.Publish(sampleAt(28.63, 77.22))
	provider.Publish(sampleAt(28.64, 77.23))

	assert.Len(t, received, 1)
}

func TestProviderUnsubscribeStopsDelivery(t *testing.T) {
	provider := NewDeviceLocationProvider()

	count := 0
	sub, err := provider.Watch(context.Background(), interfaces.WatchOptions{}, func(models.LocationSample) {
		count++
	})
	require.NoError(t, err)

	provider.Publish(sampleAt(28.63, 77.22))
	sub.Unsubscribe()
	sub.Unsubscribe() // second call is a no-op
	provider.Publish(sampleAt(28.64, 77.23))

	assert.Equal(t, 1, count)
}

func TestProviderContextCancelUnsubscribes(t *testing.T) {
	provider := NewDeviceLocationProvider()
	ctx, cancel := context.WithCancel(context.Background())

	count := 0
	_, err := provider.Watch(ctx, interfaces.WatchOptions{}, func(models.LocationSample) {
		count++
	})
	require.NoError(t, err)

	provider.Publish(sampleAt(28.63, 77.22))
	cancel()

	assert.Eventually(t, func() bool {
		provider.Publish(sampleAt(28.64, 77.23))
		before := count
		provider.Publish(sampleAt(28.65, 77.24))
		return count == before
	}, time.Second, 10*time.Millisecond)
}

func TestProviderRejectsNilCallback(t *testing.T) {
	provider := NewDeviceLocationProvider()

	_, err := provider.Watch(context.Background(), interfaces.WatchOptions{}, nil)
	assert.Error(t, err)
}

func TestGetCurrentLocation(t *testing.T) {
	provider := NewDeviceLocationProvider()

	_, err := provider.GetCurrentLocation(context.Background())
	assert.Error(t, err)

	provider.Publish(sampleAt(28.63, 77.22))

	sample, err := provider.GetCurrentLocation(context.Background())
	require.NoError(t, err)
	assert.Equal(t, 28.63, sample.Latitude)
	assert.Equal(t, 77.22, sample.Longitude)
}
