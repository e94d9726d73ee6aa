package storage

import (
	"context"
	"fmt"
	"sync"

	"github.com/google/uuid"
)

// MemoryRepository keeps entities in an arena keyed by identity. Values are
// cloned on the way in and on the way out.
type MemoryRepository[T Entity[T]] struct {
	kind  string
	mu    sync.RWMutex
	arena map[uuid.UUID]T
	order []uuid.UUID
}

func NewMemoryRepository[T Entity[T]](kind string) *MemoryRepository[T] {
	return &MemoryRepository[T]{
		kind:  kind,
		arena: make(map[uuid.UUID]T),
	}
}

func (r *MemoryRepository[T]) Save(ctx context.Context, entity T) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	id := entity.Identity()
	if id == uuid.Nil {
		return fmt.Errorf("saving %s: identity is required", r.kind)
	}

	r.mu.Lock()
	defer r.mu.Unlock()

	if _, exists := r.arena[id]; !exists {
		r.order = append(r.order, id)
	}
	r.arena[id] = entity.Clone()
	return nil
}

func (r *MemoryRepository[T]) Get(ctx context.Context, id uuid.UUID) (T, error) {
	var zero T
	if err := ctx.Err(); err != nil {
		return zero, err
	}

	r.mu.RLock()
	defer r.mu.RUnlock()

	stored, ok := r.arena[id]
	if !ok {
		return zero, fmt.Errorf("%s %s: %w", r.kind, id, ErrNotFound)
	}
	return stored.Clone(), nil
}

// List returns copies of every entity in insertion order.
func (r *MemoryRepository[T]) List(ctx context.Context) ([]T, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}

	r.mu.RLock()
	defer r.mu.RUnlock()

	out := make([]T, 0, len(r.order))
	for _, id := range r.order {
		out = append(out, r.arena[id].Clone())
	}
	return out, nil
}

func (r *MemoryRepository[T]) Delete(ctx context.Context, id uuid.UUID) error {
	if err := ctx.Err(); err != nil {
		return err
	}

	r.mu.Lock()
	defer r.mu.Unlock()

	if _, ok := r.arena[id]; !ok {
		return fmt.Errorf("%s %s: %w", r.kind, id, ErrNotFound)
	}
	delete(r.arena, id)
	for i, existing := range r.order {
		if existing == id {
			r.order = append(r.order[:i:i], r.order[i+1:]...)
			break
		}
	}
	return nil
}

// Len reports how many entities are stored.
func (r *MemoryRepository[T]) Len() int {
	r.mu.RLock()
	defer r.mu.RUnlock()
	return len(r.arena)
}

