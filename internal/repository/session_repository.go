package repository

import (
	"context"

	"github.com/spec-kit/raksha/internal/domain"
	"github.com/spec-kit/raksha/internal/persistence"
)

// SessionRepository stores the single login session record.
type SessionRepository interface {
	Load(ctx context.Context) (*domain.Session, bool)
	Save(ctx context.Context, session domain.Session) error
	Clear(ctx context.Context) error
}

type sessionRepository struct {
	store *persistence.RecordStore
}

// NewSessionRepository instantiates repository.
func NewSessionRepository(store *persistence.RecordStore) SessionRepository {
	return &sessionRepository{store: store}
}

func (r *sessionRepository) Load(ctx context.Context) (*domain.Session, bool) {
	var session domain.Session
	if !r.store.Load(ctx, persistence.KeySession, &session) {
		return nil, false
	}
	return &session, true
}

func (r *sessionRepository) Save(ctx context.Context, session domain.Session) error {
	return r.store.Save(ctx, persistence.KeySession, session)
}

func (r *sessionRepository) Clear(ctx context.Context) error {
	return r.store.Delete(ctx, persistence.KeySession)
}
