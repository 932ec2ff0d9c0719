package platform

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"sync"
	"testing"
	"time"

	"github.com/benbjohnson/clock"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/spec-kit/raksha/internal/location"
)

func TestFixedSourceDeliversUntilStopped(t *testing.T) {
	mock := clock.NewMock()
	accuracy := 15.0
	source := &FixedSource{Latitude: 19.07, Longitude: 72.87, Accuracy: &accuracy, Interval: time.Second, Clock: mock}

	var mu sync.Mutex
	var readings []location.Reading
	require.NoError(t, source.Start(func(r location.Reading) {
		mu.Lock()
		readings = append(readings, r)
		mu.Unlock()
	}))
	require.Error(t, source.Start(func(location.Reading) {}), "double start is rejected")

	count := func() int {
		mu.Lock()
		defer mu.Unlock()
		return len(readings)
	}
	require.Eventually(t, func() bool { return count() == 1 }, time.Second, 5*time.Millisecond)

	mock.Add(time.Second)
	require.Eventually(t, func() bool { return count() == 2 }, time.Second, 5*time.Millisecond)

	require.NoError(t, source.Stop())
	mu.Lock()
	first := readings[0]
	mu.Unlock()
	assert.Equal(t, 19.07, *first.Latitude)
	assert.Equal(t, 15.0, *first.Accuracy)
}

func TestUnavailableSource(t *testing.T) {
	assert.ErrorIs(t, UnavailableSource{}.Start(nil), ErrLocationUnavailable)
}

func TestPermissions(t *testing.T) {
	var got bool
	AllowAllPermissions{}.RequestLocationPermission(func(ok bool) { got = ok })
	assert.True(t, got)
	StaticPermissions{Granted: false}.RequestLocationPermission(func(ok bool) { got = ok })
	assert.False(t, got)
}

func TestWebhookNotifier(t *testing.T) {
	var payload map[string]any
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		_ = json.NewDecoder(r.Body).Decode(&payload)
		w.WriteHeader(http.StatusNoContent)
	}))
	defer server.Close()

	mock := clock.NewMock()
	mock.Set(time.Date(2026, 4, 2, 18, 30, 0, 0, time.UTC))
	n := NewWebhookNotifier(server.URL, time.Second, mock)
	require.NoError(t, n.Notify(context.Background(), "SOS Activated", "Emergency services notified"))
	assert.Equal(t, "SOS Activated", payload["title"])
	assert.Equal(t, "2026-04-02T18:30:00Z", payload["sent_at"])
}

type failingSink struct{}

func (failingSink) Notify(context.Context, string, string) error { return errors.New("no channel") }

func TestMultiNotifierReturnsFirstError(t *testing.T) {
	m := MultiNotifier{LogNotifier{}, failingSink{}}
	assert.Error(t, m.Notify(context.Background(), "t", "m"))
}
