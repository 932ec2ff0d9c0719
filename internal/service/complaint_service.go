package service

import (
	"context"
	"strings"

	"github.com/benbjohnson/clock"
	"github.com/google/uuid"
	"go.uber.org/zap"

	"github.com/spec-kit/raksha/internal/domain"
	"github.com/spec-kit/raksha/internal/events"
	"github.com/spec-kit/raksha/internal/observability"
	"github.com/spec-kit/raksha/internal/remote"
	"github.com/spec-kit/raksha/internal/repository"
	apperrors "github.com/spec-kit/raksha/pkg/util/errorutil"
)

// Messages returned by FileComplaint.
const (
	MessageComplaintFiled   = "Complaint filed successfully"
	MessageComplaintPending = "Complaint saved locally - will sync later"
	MessageComplaintOffline = "Complaint saved locally - offline"
)

// ComplaintRemote is the backend surface for complaints.
type ComplaintRemote interface {
	FileComplaint(ctx context.Context, complaint domain.Complaint) (*domain.Complaint, error)
	ListComplaints(ctx context.Context, status string) ([]domain.Complaint, error)
	GetComplaint(ctx context.Context, complaintID string) (*domain.Complaint, error)
}

// ComplaintService files complaints and keeps the local cache in step with
// the backend.
type ComplaintService struct {
	repo       repository.ComplaintRepository
	remote     ComplaintRemote
	location   LocationTracker
	dispatcher events.Dispatcher
	clock      clock.Clock
	logger     *zap.Logger
	metrics    *observability.Metrics
}

// ComplaintDependencies bundles collaborators for the complaint service.
type ComplaintDependencies struct {
	Repo       repository.ComplaintRepository
	Remote     ComplaintRemote
	Location   LocationTracker
	Dispatcher events.Dispatcher
	Clock      clock.Clock
	Logger     *zap.Logger
	Metrics    *observability.Metrics
}

// NewComplaintService builds the service.
func NewComplaintService(deps ComplaintDependencies) *ComplaintService {
	if deps.Clock == nil {
		deps.Clock = clock.New()
	}
	if deps.Logger == nil {
		deps.Logger = zap.NewNop()
	}
	return &ComplaintService{
		repo:       deps.Repo,
		remote:     deps.Remote,
		location:   deps.Location,
		dispatcher: deps.Dispatcher,
		clock:      deps.Clock,
		logger:     deps.Logger.Named("complaints"),
		metrics:    deps.Metrics,
	}
}

// FileComplaint validates and records a complaint. The backend is tried
// first, but the complaint is kept locally whatever it answers; the returned
// message says which of the three outcomes happened.
func (s *ComplaintService) FileComplaint(ctx context.Context, userID, title, description string) (*domain.Complaint, string, error) {
	title = strings.TrimSpace(title)
	description = strings.TrimSpace(description)
	if err := validateComplaint(title, description); err != nil {
		return nil, "", err
	}

	complaint := domain.Complaint{
		ComplaintID: uuid.NewString(),
		UserID:      userID,
		Title:       title,
		Description: description,
		Timestamp:   s.clock.Now(),
		Status:      domain.ComplaintStatusPending,
	}
	if s.location != nil {
		if fix := s.location.CurrentLocation(); fix != nil {
			lat, lon := fix.Latitude, fix.Longitude
			complaint.Latitude = &lat
			complaint.Longitude = &lon
		}
	}

	message, mode := MessageComplaintOffline, "offline"
	if s.remote != nil {
		_, err := s.remote.FileComplaint(ctx, complaint)
		switch {
		case err == nil:
			complaint.Synced = true
			message, mode = MessageComplaintFiled, "synced"
		case remote.IsRejected(err):
			complaint.SyncRejected = remote.IsPermanent(err)
			message, mode = MessageComplaintPending, "rejected"
			s.logger.Warn("complaint rejected by backend", zap.String("complaint_id", complaint.ComplaintID), zap.Error(err))
		default:
			s.logger.Warn("complaint not synced", zap.String("complaint_id", complaint.ComplaintID), zap.Error(err))
		}
	}

	if err := s.repo.Append(ctx, complaint); err != nil {
		s.logger.Error("failed to save complaint", zap.String("complaint_id", complaint.ComplaintID), zap.Error(err))
		return nil, "", apperrors.NewPersistenceError("Failed to save complaint", err)
	}
	s.metrics.RecordComplaintFiled(mode)

	if s.dispatcher != nil {
		_ = s.dispatcher.Publish(ctx, events.Event{
			ID:        uuid.NewString(),
			Type:      events.EventComplaintFiled,
			SubjectID: complaint.ComplaintID,
			UserID:    userID,
			Timestamp: s.clock.Now(),
			Payload:   events.ComplaintFiledPayload{Title: complaint.Title, Synced: complaint.Synced},
		})
	}

	out := complaint
	return &out, message, nil
}

// UserComplaints returns userID's complaints newest first, optionally only
// those in status. Unsynced complaints are pushed again before the backend
// list replaces the cached one.
func (s *ComplaintService) UserComplaints(ctx context.Context, userID string, status *domain.ComplaintStatus) ([]domain.Complaint, error) {
	if s.remote != nil {
		s.pushUnsynced(ctx, userID)
		s.pullForUser(ctx, userID)
	}

	complaints := s.repo.ListByUser(ctx, userID)
	if status != nil {
		filtered := complaints[:0]
		for _, c := range complaints {
			if c.Status == *status {
				filtered = append(filtered, c)
			}
		}
		complaints = filtered
	}
	return complaints, nil
}

// pushUnsynced files pending complaints again, stopping at the first
// offline failure. Each push reuses the original complaint_id, which the
// backend uses to drop a duplicate of a request that timed out after it was
// stored. Complaints the backend refused outright are not retried.
func (s *ComplaintService) pushUnsynced(ctx context.Context, userID string) {
	for _, c := range s.repo.ListByUser(ctx, userID) {
		if c.Synced || c.SyncRejected {
			continue
		}
		if _, err := s.remote.FileComplaint(ctx, c); err != nil {
			if remote.IsOffline(err) {
				return
			}
			if remote.IsPermanent(err) {
				c.SyncRejected = true
				if err := s.repo.Update(ctx, c); err != nil {
					s.logger.Warn("failed to mark complaint rejected", zap.String("complaint_id", c.ComplaintID), zap.Error(err))
				}
			}
			continue
		}
		c.Synced = true
		if err := s.repo.Update(ctx, c); err != nil {
			s.logger.Warn("failed to mark complaint synced", zap.String("complaint_id", c.ComplaintID), zap.Error(err))
		}
	}
}

func (s *ComplaintService) pullForUser(ctx context.Context, userID string) {
	fetched, err := s.remote.ListComplaints(ctx, "")
	if err != nil {
		s.logger.Debug("serving cached complaints", zap.Error(err))
		return
	}

	merged := make([]domain.Complaint, 0, len(fetched))
	seen := make(map[string]struct{}, len(fetched))
	for _, c := range fetched {
		if c.UserID == "" {
			c.UserID = userID
		}
		if c.UserID != userID {
			continue
		}
		merged = append(merged, c)
		seen[c.ComplaintID] = struct{}{}
	}
	for _, local := range s.repo.ListByUser(ctx, userID) {
		if _, ok := seen[local.ComplaintID]; !ok && !local.Synced {
			merged = append(merged, local)
		}
	}

	if err := s.repo.ReplaceForUser(ctx, userID, merged); err != nil {
		s.logger.Warn("failed to cache complaints", zap.Error(err))
	}
}

// ComplaintByID fetches a complaint, refreshing the cached copy when the
// backend answers.
func (s *ComplaintService) ComplaintByID(ctx context.Context, complaintID string) (*domain.Complaint, error) {
	cached, found := s.repo.GetByID(ctx, complaintID)

	if s.remote != nil {
		fresh, err := s.remote.GetComplaint(ctx, complaintID)
		if err == nil && fresh != nil {
			if fresh.UserID == "" && found {
				fresh.UserID = cached.UserID
			}
			if err := s.repo.Update(ctx, *fresh); err != nil {
				s.logger.Warn("failed to cache complaint", zap.String("complaint_id", complaintID), zap.Error(err))
			}
			return fresh, nil
		}
	}

	if !found {
		return nil, apperrors.NewNotFound("complaint", map[string]any{"complaint_id": complaintID})
	}
	return cached, nil
}
