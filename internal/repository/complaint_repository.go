package repository

import (
	"context"
	"sort"

	"github.com/spec-kit/raksha/internal/domain"
	"github.com/spec-kit/raksha/internal/persistence"
)

// ComplaintRepository encapsulates the cached complaint list.
type ComplaintRepository interface {
	List(ctx context.Context) []domain.Complaint
	ListByUser(ctx context.Context, userID string) []domain.Complaint
	GetByID(ctx context.Context, complaintID string) (*domain.Complaint, bool)
	Append(ctx context.Context, complaint domain.Complaint) error
	// Update replaces the complaint with the same id, appending it when absent.
	Update(ctx context.Context, complaint domain.Complaint) error
	// ReplaceForUser swaps every cached complaint of userID for complaints.
	ReplaceForUser(ctx context.Context, userID string, complaints []domain.Complaint) error
}

type complaintRepository struct {
	store *persistence.RecordStore
}

// NewComplaintRepository instantiates repository.
func NewComplaintRepository(store *persistence.RecordStore) ComplaintRepository {
	return &complaintRepository{store: store}
}

func (r *complaintRepository) List(ctx context.Context) []domain.Complaint {
	var complaints []domain.Complaint
	if !r.store.Load(ctx, persistence.KeyComplaints, &complaints) {
		return []domain.Complaint{}
	}
	return complaints
}

func (r *complaintRepository) ListByUser(ctx context.Context, userID string) []domain.Complaint {
	out := []domain.Complaint{}
	for _, c := range r.List(ctx) {
		if c.UserID == userID {
			out = append(out, c)
		}
	}
	sort.SliceStable(out, func(i, j int) bool {
		return out[i].Timestamp.After(out[j].Timestamp)
	})
	return out
}

func (r *complaintRepository) GetByID(ctx context.Context, complaintID string) (*domain.Complaint, bool) {
	for _, c := range r.List(ctx) {
		if c.ComplaintID == complaintID {
			found := c
			return &found, true
		}
	}
	return nil, false
}

func (r *complaintRepository) Append(ctx context.Context, complaint domain.Complaint) error {
	complaints, err := r.listForUpdate(ctx)
	if err != nil {
		return err
	}
	return r.store.Save(ctx, persistence.KeyComplaints, append(complaints, complaint))
}

func (r *complaintRepository) Update(ctx context.Context, complaint domain.Complaint) error {
	complaints, err := r.listForUpdate(ctx)
	if err != nil {
		return err
	}
	for i := range complaints {
		if complaints[i].ComplaintID == complaint.ComplaintID {
			complaints[i] = complaint
			return r.store.Save(ctx, persistence.KeyComplaints, complaints)
		}
	}
	return r.store.Save(ctx, persistence.KeyComplaints, append(complaints, complaint))
}

func (r *complaintRepository) ReplaceForUser(ctx context.Context, userID string, complaints []domain.Complaint) error {
	current, err := r.listForUpdate(ctx)
	if err != nil {
		return err
	}
	kept := []domain.Complaint{}
	for _, c := range current {
		if c.UserID != userID {
			kept = append(kept, c)
		}
	}
	return r.store.Save(ctx, persistence.KeyComplaints, append(kept, complaints...))
}

func (r *complaintRepository) listForUpdate(ctx context.Context) ([]domain.Complaint, error) {
	complaints := []domain.Complaint{}
	ok, err := r.store.LoadStrict(ctx, persistence.KeyComplaints, &complaints)
	if err != nil {
		return nil, err
	}
	if !ok {
		return []domain.Complaint{}, nil
	}
	return complaints, nil
}
