package repository

import (
	"context"

	"github.com/spec-kit/raksha/internal/domain"
	"github.com/spec-kit/raksha/internal/persistence"
)

// UserRepository manages locally known identities.
type UserRepository interface {
	List(ctx context.Context) []domain.User
	FindByEmail(ctx context.Context, email string) (*domain.User, bool)
	// Upsert replaces the user with the same email or appends a new one.
	Upsert(ctx context.Context, user domain.User) error
}

type userRepository struct {
	store *persistence.RecordStore
}

// NewUserRepository instantiates repository.
func NewUserRepository(store *persistence.RecordStore) UserRepository {
	return &userRepository{store: store}
}

func (r *userRepository) List(ctx context.Context) []domain.User {
	var users []domain.User
	if !r.store.Load(ctx, persistence.KeyUsers, &users) {
		return []domain.User{}
	}
	return users
}

func (r *userRepository) FindByEmail(ctx context.Context, email string) (*domain.User, bool) {
	for _, user := range r.List(ctx) {
		if user.SameEmail(email) {
			u := user
			return &u, true
		}
	}
	return nil, false
}

func (r *userRepository) Upsert(ctx context.Context, user domain.User) error {
	users := []domain.User{}
	ok, err := r.store.LoadStrict(ctx, persistence.KeyUsers, &users)
	if err != nil {
		return err
	}
	if !ok {
		users = []domain.User{}
	}
	replaced := false
	for i := range users {
		if users[i].SameEmail(user.Email) {
			users[i] = user
			replaced = true
			break
		}
	}
	if !replaced {
		users = append(users, user)
	}
	return r.store.Save(ctx, persistence.KeyUsers, users)
}
