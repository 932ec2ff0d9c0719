package persistence

import (
	"context"
	"errors"
)

// ErrNotFound is returned by Backend.Read when the key holds no record.
var ErrNotFound = errors.New("record not found")

// Backend stores opaque record bytes under a logical name.
// Write must replace the previous value atomically: readers see either
// the old bytes or the new bytes, never a mix.
type Backend interface {
	Write(ctx context.Context, key string, data []byte) error
	Read(ctx context.Context, key string) ([]byte, error)
	Remove(ctx context.Context, key string) error
	Ping(ctx context.Context) error
	Close() error
}
