package storage

import (
	"context"
	"encoding/json"
	"fmt"
	"log/slog"
	"path"
	"sort"
	"strings"

	"github.com/google/uuid"
)

// DocumentRepository persists entities as indented JSON documents named
// "<kind>/<id>.json" on a Storage.
type DocumentRepository[T Entity[T]] struct {
	store  Storage
	kind   string
	newT   func() T
	logger *slog.Logger
}

// NewDocumentRepository creates a repository for one entity kind. newT must
// return an empty value ready to be unmarshalled into.
func NewDocumentRepository[T Entity[T]](store Storage, kind string, newT func() T) *DocumentRepository[T] {
	return &DocumentRepository[T]{
		store:  store,
		kind:   kind,
		newT:   newT,
		logger: slog.Default().With("component", "document_repository", "kind", kind),
	}
}

func (r *DocumentRepository[T]) documentPath(id uuid.UUID) string {
	return path.Join(r.kind, id.String()+".json")
}

func (r *DocumentRepository[T]) Save(ctx context.Context, entity T) error {
	id := entity.Identity()
	if id == uuid.Nil {
		return fmt.Errorf("saving %s: identity is required", r.kind)
	}

	data, err := json.MarshalIndent(entity, "", "  ")
	if err != nil {
		return fmt.Errorf("marshaling %s %s: %w", r.kind, id, err)
	}
	if err := r.store.Save(ctx, r.documentPath(id), data); err != nil {
		return fmt.Errorf("saving %s %s: %w", r.kind, id, err)
	}

	r.logger.Debug("Document saved", "id", id, "bytes", len(data))
	return nil
}

func (r *DocumentRepository[T]) Get(ctx context.Context, id uuid.UUID) (T, error) {
	var zero T
	data, err := r.store.Load(ctx, r.documentPath(id))
	if err != nil {
		return zero, fmt.Errorf("loading %s %s: %w", r.kind, id, err)
	}

	entity := r.newT()
	if err := json.Unmarshal(data, entity); err != nil {
		return zero, fmt.Errorf("parsing %s %s: %w", r.kind, id, err)
	}
	return entity, nil
}

// List loads every stored document ordered by identity. Documents that fail
// to parse are skipped and logged.
func (r *DocumentRepository[T]) List(ctx context.Context) ([]T, error) {
	paths, err := r.store.List(ctx, path.Join(r.kind, "*.json"))
	if err != nil {
		return nil, fmt.Errorf("listing %s: %w", r.kind, err)
	}
	sort.Strings(paths)

	out := make([]T, 0, len(paths))
	for _, p := range paths {
		if err := ctx.Err(); err != nil {
			return nil, err
		}
		id, err := uuid.Parse(strings.TrimSuffix(path.Base(p), ".json"))
		if err != nil {
			r.logger.Warn("Skipping document with non-uuid name", "path", p)
			continue
		}
		entity, err := r.Get(ctx, id)
		if err != nil {
			r.logger.Warn("Skipping unreadable document", "path", p, "error", err)
			continue
		}
		out = append(out, entity)
	}
	return out, nil
}

func (r *DocumentRepository[T]) Delete(ctx context.Context, id uuid.UUID) error {
	if err := r.store.Delete(ctx, r.documentPath(id)); err != nil {
		return fmt.Errorf("deleting %s %s: %w", r.kind, id, err)
	}
	return nil
}
