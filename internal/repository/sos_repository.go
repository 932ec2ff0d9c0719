package repository

import (
	"context"
	"sort"

	"github.com/spec-kit/raksha/internal/domain"
	"github.com/spec-kit/raksha/internal/persistence"
)

// SOSRepository persists the active slot and the append-only history log.
type SOSRepository interface {
	LoadActive(ctx context.Context) (*domain.SOSEvent, bool)
	SaveActive(ctx context.Context, event *domain.SOSEvent) error
	ClearActive(ctx context.Context) error
	History(ctx context.Context) []domain.SOSEvent
	// HistoryByUser returns the user's events, newest start_time first.
	HistoryByUser(ctx context.Context, userID string) []domain.SOSEvent
	AppendHistory(ctx context.Context, event *domain.SOSEvent) error
	ReplaceHistoryForUser(ctx context.Context, userID string, events []domain.SOSEvent) error
}

type sosRepository struct {
	store *persistence.RecordStore
}

// NewSOSRepository instantiates repository.
func NewSOSRepository(store *persistence.RecordStore) SOSRepository {
	return &sosRepository{store: store}
}

func (r *sosRepository) LoadActive(ctx context.Context) (*domain.SOSEvent, bool) {
	var event domain.SOSEvent
	if !r.store.Load(ctx, persistence.KeyActiveSOS, &event) {
		return nil, false
	}
	return &event, true
}

func (r *sosRepository) SaveActive(ctx context.Context, event *domain.SOSEvent) error {
	return r.store.Save(ctx, persistence.KeyActiveSOS, event)
}

func (r *sosRepository) ClearActive(ctx context.Context) error {
	return r.store.Delete(ctx, persistence.KeyActiveSOS)
}

func (r *sosRepository) History(ctx context.Context) []domain.SOSEvent {
	var events []domain.SOSEvent
	if !r.store.Load(ctx, persistence.KeySOSHistory, &events) {
		return []domain.SOSEvent{}
	}
	return events
}

func (r *sosRepository) HistoryByUser(ctx context.Context, userID string) []domain.SOSEvent {
	out := []domain.SOSEvent{}
	for _, e := range r.History(ctx) {
		if e.UserID == userID {
			out = append(out, e)
		}
	}
	sort.SliceStable(out, func(i, j int) bool {
		return out[i].StartTime.After(out[j].StartTime)
	})
	return out
}

func (r *sosRepository) AppendHistory(ctx context.Context, event *domain.SOSEvent) error {
	events, err := r.historyForUpdate(ctx)
	if err != nil {
		return err
	}
	return r.store.Save(ctx, persistence.KeySOSHistory, append(events, *event))
}

func (r *sosRepository) ReplaceHistoryForUser(ctx context.Context, userID string, events []domain.SOSEvent) error {
	current, err := r.historyForUpdate(ctx)
	if err != nil {
		return err
	}
	kept := []domain.SOSEvent{}
	for _, e := range current {
		if e.UserID != userID {
			kept = append(kept, e)
		}
	}
	return r.store.Save(ctx, persistence.KeySOSHistory, append(kept, events...))
}

func (r *sosRepository) historyForUpdate(ctx context.Context) ([]domain.SOSEvent, error) {
	events := []domain.SOSEvent{}
	ok, err := r.store.LoadStrict(ctx, persistence.KeySOSHistory, &events)
	if err != nil {
		return nil, err
	}
	if !ok {
		return []domain.SOSEvent{}, nil
	}
	return events, nil
}
