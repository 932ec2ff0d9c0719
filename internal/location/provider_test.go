package location

import (
	"errors"
	"testing"
	"time"

	"github.com/benbjohnson/clock"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type fakeSource struct {
	deliver  func(Reading)
	startErr error
	starts   int
	stops    int
}

func (s *fakeSource) Start(deliver func(Reading)) error {
	if s.startErr != nil {
		return s.startErr
	}
	s.starts++
	s.deliver = deliver
	return nil
}

func (s *fakeSource) Stop() error {
	s.stops++
	s.deliver = nil
	return nil
}

type gate bool

func (g gate) CheckLocationPermission() bool { return bool(g) }

func (g gate) RequestLocationPermission(cb func(bool)) {
	if cb != nil {
		cb(bool(g))
	}
}

func ptr(v float64) *float64 { return &v }

func TestStartTrackingIsIdempotent(t *testing.T) {
	source := &fakeSource{}
	p := NewProvider(ProviderDependencies{Source: source, Permissions: gate(true)})

	assert.True(t, p.StartTracking())
	assert.False(t, p.StartTracking(), "second start is a no-op returning false")
	assert.Equal(t, 1, source.starts)
	assert.True(t, p.IsTracking())

	p.StopTracking()
	p.StopTracking()
	assert.Equal(t, 1, source.stops)
	assert.False(t, p.IsTracking())
}

func TestStartTrackingFailures(t *testing.T) {
	assert.False(t, NewProvider(ProviderDependencies{Source: &fakeSource{}, Permissions: gate(false)}).StartTracking())
	assert.False(t, NewProvider(ProviderDependencies{Permissions: gate(true)}).StartTracking())
	assert.False(t, NewProvider(ProviderDependencies{Source: &fakeSource{startErr: errors.New("gps off")}, Permissions: gate(true)}).StartTracking())
	assert.False(t, NewProvider(ProviderDependencies{Source: &fakeSource{}}).StartTracking())
}

func TestReadingsUpdateCurrentLocation(t *testing.T) {
	source := &fakeSource{}
	mock := clock.NewMock()
	mock.Set(time.Date(2026, 6, 1, 12, 0, 0, 0, time.UTC))
	p := NewProvider(ProviderDependencies{Source: source, Permissions: gate(true), Clock: mock})

	assert.Nil(t, p.CurrentLocation())
	require.True(t, p.StartTracking())

	source.deliver(Reading{Latitude: ptr(12.9716), Longitude: ptr(77.5946)})
	fix := p.CurrentLocation()
	require.NotNil(t, fix)
	assert.Nil(t, fix.Accuracy, "missing accuracy is tolerated")
	assert.True(t, fix.Timestamp.Equal(mock.Now()))

	source.deliver(Reading{Latitude: ptr(12.98), Longitude: ptr(77.6), Accuracy: ptr(5)})
	fix = p.CurrentLocation()
	require.NotNil(t, fix.Accuracy)
	assert.Equal(t, 5.0, *fix.Accuracy)

	source.deliver(Reading{Latitude: ptr(12.99)})
	source.deliver(Reading{Latitude: ptr(120), Longitude: ptr(10)})
	assert.Equal(t, 12.98, p.CurrentLocation().Latitude, "incomplete and invalid readings are ignored")
}

func TestRequestPermissionsWithoutGate(t *testing.T) {
	p := NewProvider(ProviderDependencies{})
	var granted *bool
	p.RequestPermissions(func(ok bool) { granted = &ok })
	require.NotNil(t, granted)
	assert.False(t, *granted)
}
