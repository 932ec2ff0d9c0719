package location

import (
	"sync"

	"github.com/benbjohnson/clock"
	"go.uber.org/zap"

	"github.com/spec-kit/raksha/internal/domain"
)

// Provider tracks the last fix received from a LocationSource.
type Provider struct {
	mu          sync.RWMutex
	source      LocationSource
	permissions PermissionGate
	clock       clock.Clock
	logger      *zap.Logger

	current  *domain.LocationFix
	tracking bool
}

// ProviderDependencies bundles the provider's collaborators.
type ProviderDependencies struct {
	Source      LocationSource
	Permissions PermissionGate
	Clock       clock.Clock
	Logger      *zap.Logger
}

// NewProvider builds a provider. A nil Source means no location hardware.
func NewProvider(deps ProviderDependencies) *Provider {
	if deps.Clock == nil {
		deps.Clock = clock.New()
	}
	if deps.Logger == nil {
		deps.Logger = zap.NewNop()
	}
	return &Provider{
		source:      deps.Source,
		permissions: deps.Permissions,
		clock:       deps.Clock,
		logger:      deps.Logger.Named("location"),
	}
}

// StartTracking begins receiving fixes. It returns false when permission is
// missing, no source is available, the source fails to start, or tracking
// is already running.
func (p *Provider) StartTracking() bool {
	if p.permissions == nil || !p.permissions.CheckLocationPermission() {
		p.logger.Info("location permission not granted")
		return false
	}

	p.mu.Lock()
	defer p.mu.Unlock()
	if p.source == nil || p.tracking {
		return false
	}
	if err := p.source.Start(p.onReading); err != nil {
		p.logger.Warn("failed to start location tracking", zap.Error(err))
		return false
	}
	p.tracking = true
	p.logger.Info("location tracking started")
	return true
}

// StopTracking stops the source. Safe to call when not tracking.
func (p *Provider) StopTracking() {
	p.mu.Lock()
	defer p.mu.Unlock()
	if p.source == nil || !p.tracking {
		return
	}
	if err := p.source.Stop(); err != nil {
		p.logger.Warn("failed to stop location tracking", zap.Error(err))
		return
	}
	p.tracking = false
	p.logger.Info("location tracking stopped")
}

// IsTracking reports whether the source is running.
func (p *Provider) IsTracking() bool {
	p.mu.RLock()
	defer p.mu.RUnlock()
	return p.tracking
}

// CurrentLocation returns a copy of the last fix, which may be stale.
func (p *Provider) CurrentLocation() *domain.LocationFix {
	p.mu.RLock()
	defer p.mu.RUnlock()
	if p.current == nil {
		return nil
	}
	fix := *p.current
	return &fix
}

// RequestPermissions forwards to the permission gate.
func (p *Provider) RequestPermissions(callback func(granted bool)) {
	if p.permissions == nil {
		if callback != nil {
			callback(false)
		}
		return
	}
	p.permissions.RequestLocationPermission(callback)
}

func (p *Provider) onReading(r Reading) {
	if r.Latitude == nil || r.Longitude == nil {
		return
	}
	fix := domain.LocationFix{
		Latitude:  *r.Latitude,
		Longitude: *r.Longitude,
		Timestamp: p.clock.Now(),
	}
	if r.Accuracy != nil {
		accuracy := *r.Accuracy
		fix.Accuracy = &accuracy
	}
	if !fix.Valid() {
		p.logger.Warn("discarding out of range fix", zap.Float64("lat", fix.Latitude), zap.Float64("lon", fix.Longitude))
		return
	}

	p.mu.Lock()
	p.current = &fix
	p.mu.Unlock()
}
