package persistence

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"

	"go.uber.org/zap"

	"github.com/spec-kit/raksha/internal/config"
)

// Record names. Each one is a single JSON document.
const (
	KeyUsers      = "users"
	KeyComplaints = "complaints"
	KeySOSHistory = "sos_history"
	KeySession    = "session"
	KeyActiveSOS  = "active_sos"
)

// RecordStore is the single writer of the on-device representation of
// users, complaints, SOS history, the session and the active SOS.
type RecordStore struct {
	backend Backend
	logger  *zap.Logger
}

// NewRecordStore wraps a backend.
func NewRecordStore(backend Backend, logger *zap.Logger) *RecordStore {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &RecordStore{backend: backend, logger: logger.Named("store")}
}

// Open builds the backend selected by STORE_DRIVER.
func Open(ctx context.Context, cfg *config.Config, logger *zap.Logger) (*RecordStore, error) {
	var (
		backend Backend
		err     error
	)
	switch cfg.Store.Driver {
	case config.StoreDriverRedis:
		backend = NewRedis(cfg.Redis, logger)
	case config.StoreDriverPostgres:
		backend, err = NewPostgres(ctx, cfg.Postgres, logger)
	default:
		backend, err = NewFileBackend(cfg.Store.Dir)
	}
	if err != nil {
		return nil, fmt.Errorf("open %s store: %w", cfg.Store.Driver, err)
	}
	logger.Info("record store ready", zap.String("driver", cfg.Store.Driver))
	return NewRecordStore(backend, logger), nil
}

// Save encodes value as JSON and atomically replaces the record.
func (s *RecordStore) Save(ctx context.Context, key string, value any) error {
	data, err := json.MarshalIndent(value, "", "  ")
	if err != nil {
		return fmt.Errorf("encode %s: %w", key, err)
	}
	data = append(data, '\n')
	if err := s.backend.Write(ctx, key, data); err != nil {
		s.logger.Error("save failed", zap.String("key", key), zap.Error(err))
		return err
	}
	return nil
}

// Load decodes the record into dest. It returns false when the record is
// missing, unreadable or corrupt; callers treat all three as "no data".
func (s *RecordStore) Load(ctx context.Context, key string, dest any) bool {
	data, err := s.backend.Read(ctx, key)
	if err != nil {
		if !errors.Is(err, ErrNotFound) {
			s.logger.Warn("load failed", zap.String("key", key), zap.Error(err))
		}
		return false
	}
	if err := json.Unmarshal(data, dest); err != nil {
		s.logger.Warn("corrupt record ignored", zap.String("key", key), zap.Error(err))
		return false
	}
	return true
}

// LoadStrict is Load for read-modify-write callers. Missing and corrupt
// records still report false with a nil error, but a backend read failure
// is returned so the caller does not overwrite data it could not see.
func (s *RecordStore) LoadStrict(ctx context.Context, key string, dest any) (bool, error) {
	data, err := s.backend.Read(ctx, key)
	if errors.Is(err, ErrNotFound) {
		return false, nil
	}
	if err != nil {
		s.logger.Error("load for update failed", zap.String("key", key), zap.Error(err))
		return false, fmt.Errorf("read %s: %w", key, err)
	}
	if err := json.Unmarshal(data, dest); err != nil {
		s.logger.Warn("corrupt record will be replaced", zap.String("key", key), zap.Error(err))
		return false, nil
	}
	return true, nil
}

// Delete removes the record. Deleting a missing record succeeds.
func (s *RecordStore) Delete(ctx context.Context, key string) error {
	if err := s.backend.Remove(ctx, key); err != nil {
		s.logger.Error("delete failed", zap.String("key", key), zap.Error(err))
		return err
	}
	return nil
}

// Exists reports whether a record is present and readable.
func (s *RecordStore) Exists(ctx context.Context, key string) bool {
	_, err := s.backend.Read(ctx, key)
	return err == nil
}

// Ping checks the backend.
func (s *RecordStore) Ping(ctx context.Context) error {
	return s.backend.Ping(ctx)
}

// Close releases the backend.
func (s *RecordStore) Close() error {
	return s.backend.Close()
}
