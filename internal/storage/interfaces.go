package storage

import (
	"context"
	"errors"

	"github.com/google/uuid"
)

// ErrNotFound is returned when a key or identity has nothing stored under it.
var ErrNotFound = errors.New("not found")

// Storage persists opaque documents under slash-separated relative paths.
type Storage interface {
	Save(ctx context.Context, path string, data []byte) error
	Load(ctx context.Context, path string) ([]byte, error)
	List(ctx context.Context, pattern string) ([]string, error)
	Delete(ctx context.Context, path string) error
}

// Entity is anything a Repository can hold: it has an identity and can copy
// itself so stored state is never shared with callers.
type Entity[T any] interface {
	Identity() uuid.UUID
	Clone() T
}

// Repository stores entities keyed by identity. Implementations hand out
// copies: mutating a value after Save or after Get never changes what is stored.
type Repository[T Entity[T]] interface {
	Save(ctx context.Context, entity T) error
	Get(ctx context.Context, id uuid.UUID) (T, error)
	List(ctx context.Context) ([]T, error)
	Delete(ctx context.Context, id uuid.UUID) error
}
