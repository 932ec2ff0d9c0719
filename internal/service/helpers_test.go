package service

import (
	"context"
	"errors"
	"sync"
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/spec-kit/raksha/internal/domain"
	"github.com/spec-kit/raksha/internal/persistence"
	"github.com/spec-kit/raksha/internal/remote"
)

var errDiskFull = errors.New("disk full")

// flakyBackend wraps a file backend and fails writes to chosen keys.
type flakyBackend struct {
	persistence.Backend
	mu   sync.Mutex
	fail map[string]bool
}

func (b *flakyBackend) Write(ctx context.Context, key string, data []byte) error {
	b.mu.Lock()
	failing := b.fail[key]
	b.mu.Unlock()
	if failing {
		return errDiskFull
	}
	return b.Backend.Write(ctx, key, data)
}

func (b *flakyBackend) failWrites(key string, failing bool) {
	b.mu.Lock()
	defer b.mu.Unlock()
	b.fail[key] = failing
}

func newFlakyStore(t *testing.T) (*persistence.RecordStore, *flakyBackend) {
	t.Helper()
	file, err := persistence.NewFileBackend(t.TempDir())
	require.NoError(t, err)
	backend := &flakyBackend{Backend: file, fail: map[string]bool{}}
	return persistence.NewRecordStore(backend, nil), backend
}

func offline(endpoint string) error {
	return &remote.SyncError{Endpoint: endpoint, Kind: remote.KindOffline, Message: "connection refused"}
}

func rejected(endpoint, message string) error {
	return &remote.SyncError{Endpoint: endpoint, Kind: remote.KindRejected, StatusCode: 400, Message: message}
}

// fakeTracker is a LocationTracker with a settable fix.
type fakeTracker struct {
	mu       sync.Mutex
	fix      *domain.LocationFix
	tracking bool
	starts   int
	stops    int
}

func (f *fakeTracker) StartTracking() bool {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.starts++
	f.tracking = true
	return true
}

func (f *fakeTracker) StopTracking() {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.stops++
	f.tracking = false
}

func (f *fakeTracker) CurrentLocation() *domain.LocationFix {
	f.mu.Lock()
	defer f.mu.Unlock()
	if f.fix == nil {
		return nil
	}
	fix := *f.fix
	return &fix
}

func (f *fakeTracker) set(fix *domain.LocationFix) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.fix = fix
}
