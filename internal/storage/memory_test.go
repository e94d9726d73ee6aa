package storage

import (
	"context"
	"errors"
	"sync"
	"testing"

	"github.com/google/uuid"

	"github.com/dotcommander/outline/internal/outline"
)

func newPlotline(t *testing.T, name string) *outline.Plotline {
	t.Helper()
	p, err := outline.NewPlotline(name, "")
	if err != nil {
		t.Fatal(err)
	}
	return p
}

func TestMemoryRepositorySnapshots(t *testing.T) {
	repo := NewMemoryRepository[*outline.Plotline]("plotline")
	ctx := context.Background()
	p := newPlotline(t, "Heist")

	if err := repo.Save(ctx, p); err != nil {
		t.Fatal(err)
	}

	// Mutating after Save does not reach the stored copy
	if err := p.Rename("Changed"); err != nil {
		t.Fatal(err)
	}
	got, err := repo.Get(ctx, p.ID)
	if err != nil {
		t.Fatal(err)
	}
	if got.Name != "Heist" {
		t.Errorf("stored Name = %q, want Heist", got.Name)
	}

	// Mutating a Get result does not either
	got.Name = "Also changed"
	again, _ := repo.Get(ctx, p.ID)
	if again.Name != "Heist" {
		t.Errorf("stored Name = %q after mutating Get result", again.Name)
	}
}

func TestMemoryRepositoryStoryClone(t *testing.T) {
	repo := NewMemoryRepository[*outline.Story]("story")
	ctx := context.Background()

	s, _ := outline.NewStory("Glass Harbour")
	c, _ := s.AppendChapter("Arrival")
	if err := repo.Save(ctx, s); err != nil {
		t.Fatal(err)
	}

	_ = c.Rename("Departure")
	s.RemoveChapter(c.ID)

	got, _ := repo.Get(ctx, s.ID)
	stored, ok := got.Chapter(c.ID)
	if !ok {
		t.Fatal("stored story lost its chapter")
	}
	if stored.Title != "Arrival" {
		t.Errorf("stored chapter Title = %q", stored.Title)
	}
}

func TestMemoryRepositoryListAndDelete(t *testing.T) {
	repo := NewMemoryRepository[*outline.Plotline]("plotline")
	ctx := context.Background()

	var ids []uuid.UUID
	for _, name := range []string{"A", "B", "C"} {
		p := newPlotline(t, name)
		ids = append(ids, p.ID)
		if err := repo.Save(ctx, p); err != nil {
			t.Fatal(err)
		}
	}

	if err := repo.Delete(ctx, ids[1]); err != nil {
		t.Fatal(err)
	}
	if err := repo.Delete(ctx, ids[1]); !errors.Is(err, ErrNotFound) {
		t.Errorf("second Delete error = %v, want ErrNotFound", err)
	}
	if _, err := repo.Get(ctx, ids[1]); !errors.Is(err, ErrNotFound) {
		t.Errorf("Get error = %v, want ErrNotFound", err)
	}

	list, err := repo.List(ctx)
	if err != nil {
		t.Fatal(err)
	}
	if len(list) != 2 || list[0].Name != "A" || list[1].Name != "C" {
		t.Errorf("List = %v", list)
	}
	if repo.Len() != 2 {
		t.Errorf("Len = %d", repo.Len())
	}
}

func TestMemoryRepositoryResaveKeepsPosition(t *testing.T) {
	repo := NewMemoryRepository[*outline.Plotline]("plotline")
	ctx := context.Background()

	a, b := newPlotline(t, "A"), newPlotline(t, "B")
	_ = repo.Save(ctx, a)
	_ = repo.Save(ctx, b)
	_ = a.Rename("A2")
	_ = repo.Save(ctx, a)

	list, _ := repo.List(ctx)
	if len(list) != 2 || list[0].Name != "A2" {
		t.Errorf("List = %v", list)
	}
}

func TestMemoryRepositoryRejectsNilIdentity(t *testing.T) {
	repo := NewMemoryRepository[*outline.Plotline]("plotline")
	if err := repo.Save(context.Background(), &outline.Plotline{}); err == nil {
		t.Error("Save accepted an entity without identity")
	}
}

func TestMemoryRepositoryConcurrentAccess(t *testing.T) {
	repo := NewMemoryRepository[*outline.Plotline]("plotline")
	ctx := context.Background()

	var wg sync.WaitGroup
	for i := 0; i < 16; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			p, err := outline.NewPlotline("Thread", "")
			if err != nil {
				return
			}
			_ = repo.Save(ctx, p)
			_, _ = repo.Get(ctx, p.ID)
			_, _ = repo.List(ctx)
		}()
	}
	wg.Wait()

	if repo.Len() != 16 {
		t.Errorf("Len = %d, want 16", repo.Len())
	}
}

var _ Repository[*outline.Scene] = (*MemoryRepository[*outline.Scene])(nil)
