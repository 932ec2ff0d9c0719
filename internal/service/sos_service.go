package service

import (
	"context"
	"sort"
	"sync"

	"github.com/benbjohnson/clock"
	"github.com/google/uuid"
	"go.uber.org/zap"

	"github.com/spec-kit/raksha/internal/domain"
	"github.com/spec-kit/raksha/internal/events"
	"github.com/spec-kit/raksha/internal/observability"
	"github.com/spec-kit/raksha/internal/repository"
	apperrors "github.com/spec-kit/raksha/pkg/util/errorutil"
)

// LocationTracker is the part of the location provider the SOS loop uses.
type LocationTracker interface {
	StartTracking() bool
	StopTracking()
	CurrentLocation() *domain.LocationFix
}

// SOSRemote is the backend surface for emergencies.
type SOSRemote interface {
	TriggerSOS(ctx context.Context, sosID string, initial *domain.LocationFix) error
	UpdateSOSLocation(ctx context.Context, sosID string, fix domain.LocationFix) error
	ResolveSOS(ctx context.Context, sosID, notes string) error
	SOSHistory(ctx context.Context) ([]domain.SOSEvent, error)
}

// SOSService owns the single active emergency and the local history log.
type SOSService struct {
	mu         sync.Mutex
	active     *domain.SOSEvent
	lastSynced *domain.LocationFix

	repo       repository.SOSRepository
	remote     SOSRemote
	location   LocationTracker
	dispatcher events.Dispatcher
	clock      clock.Clock
	logger     *zap.Logger
	metrics    *observability.Metrics
}

// SOSDependencies bundles collaborators for the SOS service.
type SOSDependencies struct {
	Repo       repository.SOSRepository
	Remote     SOSRemote
	Location   LocationTracker
	Dispatcher events.Dispatcher
	Clock      clock.Clock
	Logger     *zap.Logger
	Metrics    *observability.Metrics
}

// NewSOSService builds the service and restores a persisted active SOS.
// A restored emergency resumes location tracking.
func NewSOSService(ctx context.Context, deps SOSDependencies) *SOSService {
	if deps.Clock == nil {
		deps.Clock = clock.New()
	}
	if deps.Logger == nil {
		deps.Logger = zap.NewNop()
	}
	s := &SOSService{
		repo:       deps.Repo,
		remote:     deps.Remote,
		location:   deps.Location,
		dispatcher: deps.Dispatcher,
		clock:      deps.Clock,
		logger:     deps.Logger.Named("sos"),
		metrics:    deps.Metrics,
	}

	if event, ok := s.repo.LoadActive(ctx); ok && event.IsActive() {
		s.active = event
		s.lastSynced = event.LatestLocation()
		s.logger.Info("restored active sos", zap.String("sos_id", event.SOSID), zap.Int("points", len(event.LocationHistory)))
		if s.location != nil {
			s.location.StartTracking()
		}
	}
	return s
}

// TriggerSOS activates a new emergency for userID. If one is already active
// it returns a copy of it together with an ALREADY_ACTIVE error.
func (s *SOSService) TriggerSOS(ctx context.Context, userID string) (*domain.SOSEvent, error) {
	s.mu.Lock()
	event, pending, err := s.triggerLocked(ctx, userID)
	s.mu.Unlock()

	s.publish(ctx, pending)
	return event, err
}

func (s *SOSService) triggerLocked(ctx context.Context, userID string) (*domain.SOSEvent, *events.Event, error) {
	if s.active != nil {
		return s.active.Clone(), nil, apperrors.NewAlreadyActive("An SOS is already active")
	}

	event := &domain.SOSEvent{
		SOSID:           uuid.NewString(),
		UserID:          userID,
		Status:          domain.SOSStatusActive,
		StartTime:       s.clock.Now(),
		LocationHistory: []domain.LocationFix{},
	}

	var snapshot *domain.LocationFix
	if s.location != nil {
		snapshot = s.location.CurrentLocation()
	}
	if snapshot != nil {
		event.AddLocation(*snapshot)
	}

	synced := true
	if s.remote != nil {
		if err := s.remote.TriggerSOS(ctx, event.SOSID, snapshot); err != nil {
			synced = false
			s.logger.Warn("sos trigger not synced", zap.String("sos_id", event.SOSID), zap.Error(err))
		}
	}

	s.active = event
	if err := s.repo.SaveActive(ctx, event); err != nil {
		s.active = nil
		s.logger.Error("failed to persist active sos", zap.String("sos_id", event.SOSID), zap.Error(err))
		return nil, nil, apperrors.NewPersistenceError("Failed to activate SOS", err)
	}
	s.lastSynced = snapshot

	if s.location != nil {
		s.location.StartTracking()
	}
	s.metrics.RecordSOSTransition("triggered")
	s.logger.Info("sos activated", zap.String("sos_id", event.SOSID), zap.String("user_id", userID), zap.Bool("synced", synced))

	pending := s.newEvent(events.EventSOSTriggered, event, events.SOSTriggeredPayload{Location: snapshot, Synced: synced})
	return event.Clone(), pending, nil
}

// UpdateLocation appends fix to the active emergency. It returns false when
// nothing is active, the fix is unusable, or the fix could not be persisted.
func (s *SOSService) UpdateLocation(ctx context.Context, fix *domain.LocationFix) (bool, error) {
	s.mu.Lock()
	ok, pending, err := s.updateLocationLocked(ctx, fix)
	s.mu.Unlock()

	s.publish(ctx, pending)
	return ok, err
}

// SyncLocation polls the provider and records the fix if it is new. It is
// the body of the periodic location tick.
func (s *SOSService) SyncLocation(ctx context.Context) (bool, error) {
	if s.location == nil {
		return false, nil
	}
	fix := s.location.CurrentLocation()
	if fix == nil {
		return false, nil
	}

	s.mu.Lock()
	if s.active == nil || (s.lastSynced != nil && s.lastSynced.Equal(*fix)) {
		s.mu.Unlock()
		return false, nil
	}
	ok, pending, err := s.updateLocationLocked(ctx, fix)
	s.mu.Unlock()

	s.publish(ctx, pending)
	return ok, err
}

func (s *SOSService) updateLocationLocked(ctx context.Context, fix *domain.LocationFix) (bool, *events.Event, error) {
	if s.active == nil || fix == nil || !fix.Valid() {
		return false, nil, nil
	}

	previous := len(s.active.LocationHistory)
	if !s.active.AddLocation(*fix) {
		return false, nil, nil
	}

	if s.remote != nil {
		if err := s.remote.UpdateSOSLocation(ctx, s.active.SOSID, *fix); err != nil {
			s.logger.Warn("location update not synced", zap.String("sos_id", s.active.SOSID), zap.Error(err))
		}
	}

	if err := s.repo.SaveActive(ctx, s.active); err != nil {
		s.active.LocationHistory = s.active.LocationHistory[:previous]
		s.logger.Error("failed to persist location update", zap.String("sos_id", s.active.SOSID), zap.Error(err))
		return false, nil, apperrors.NewPersistenceError("Failed to save location update", err)
	}

	recorded := *fix
	s.lastSynced = &recorded
	pending := s.newEvent(events.EventSOSLocationUpdated, s.active, events.SOSLocationUpdatedPayload{
		Location: recorded,
		Points:   len(s.active.LocationHistory),
	})
	return true, pending, nil
}

// ResolveSOS closes the active emergency and moves it into history. If the
// history write fails the emergency stays active.
func (s *SOSService) ResolveSOS(ctx context.Context, notes string) (*domain.SOSEvent, error) {
	s.mu.Lock()
	resolved, pending, err := s.resolveLocked(ctx, notes)
	s.mu.Unlock()

	s.publish(ctx, pending)
	return resolved, err
}

func (s *SOSService) resolveLocked(ctx context.Context, notes string) (*domain.SOSEvent, *events.Event, error) {
	if s.active == nil {
		return nil, nil, apperrors.NewNoActiveSOS("No active SOS to resolve")
	}

	resolved := s.active.Resolved(s.clock.Now())

	if s.remote != nil {
		if err := s.remote.ResolveSOS(ctx, resolved.SOSID, notes); err != nil {
			s.logger.Warn("sos resolve not synced", zap.String("sos_id", resolved.SOSID), zap.Error(err))
		}
	}

	if err := s.repo.AppendHistory(ctx, resolved); err != nil {
		s.logger.Error("failed to append sos history", zap.String("sos_id", resolved.SOSID), zap.Error(err))
		return nil, nil, apperrors.NewPersistenceError("Failed to save SOS to history", err)
	}

	if s.location != nil {
		s.location.StopTracking()
	}
	s.active = nil
	s.lastSynced = nil
	if err := s.repo.ClearActive(ctx); err != nil {
		s.logger.Warn("failed to delete active sos record", zap.String("sos_id", resolved.SOSID), zap.Error(err))
	}

	s.metrics.RecordSOSTransition("resolved")
	duration := resolved.DurationSeconds(s.clock.Now())
	s.logger.Info("sos resolved", zap.String("sos_id", resolved.SOSID), zap.Int64("duration_seconds", duration))

	pending := s.newEvent(events.EventSOSResolved, resolved, events.SOSResolvedPayload{DurationSeconds: duration, Notes: notes})
	return resolved.Clone(), pending, nil
}

// ActiveSOS returns a copy of the active emergency or nil.
func (s *SOSService) ActiveSOS() *domain.SOSEvent {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.active.Clone()
}

// UserSOSHistory returns userID's past emergencies, newest first. The
// backend copy replaces the cached one when it can be fetched.
func (s *SOSService) UserSOSHistory(ctx context.Context, userID string) ([]domain.SOSEvent, error) {
	if s.remote != nil {
		remote, err := s.remote.SOSHistory(ctx)
		if err != nil {
			s.logger.Debug("serving cached sos history", zap.Error(err))
		} else {
			owned := make([]domain.SOSEvent, 0, len(remote))
			for _, event := range remote {
				if event.UserID == "" {
					event.UserID = userID
				}
				if event.UserID == userID && !event.IsActive() {
					owned = append(owned, event)
				}
			}
			if err := s.repo.ReplaceHistoryForUser(ctx, userID, owned); err != nil {
				s.logger.Warn("failed to cache sos history", zap.Error(err))
				sortByStart(owned)
				return owned, nil
			}
		}
	}
	return s.repo.HistoryByUser(ctx, userID), nil
}

func (s *SOSService) newEvent(eventType events.EventType, event *domain.SOSEvent, payload interface{}) *events.Event {
	return &events.Event{
		ID:        uuid.NewString(),
		Type:      eventType,
		SubjectID: event.SOSID,
		UserID:    event.UserID,
		Timestamp: s.clock.Now(),
		Payload:   payload,
	}
}

// publish runs outside the service lock so handlers may call back in.
func (s *SOSService) publish(ctx context.Context, event *events.Event) {
	if s.dispatcher == nil || event == nil {
		return
	}
	_ = s.dispatcher.Publish(ctx, *event)
}

func sortByStart(history []domain.SOSEvent) {
	sort.SliceStable(history, func(i, j int) bool {
		return history[i].StartTime.After(history[j].StartTime)
	})
}
