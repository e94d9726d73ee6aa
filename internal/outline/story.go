package outline

import (
	"fmt"
	"sort"
	"time"

	"github.com/google/uuid"
)

// Story is the aggregate root of an outline. Chapter membership and order
// change only through its methods.
type Story struct {
	ID        uuid.UUID         `json:"id"`
	Title     string            `json:"title" validate:"notblank"`
	Summary   string            `json:"summary,omitempty"`
	Status    PublicationStatus `json:"status" validate:"enum"`
	CreatedAt time.Time         `json:"created_at"`
	UpdatedAt time.Time         `json:"updated_at"`

	chapters map[uuid.UUID]*Chapter
}

func NewStory(title string) (*Story, error) {
	ts := now()
	s := &Story{
		ID:        uuid.New(),
		Title:     title,
		Status:    PublicationDraft,
		CreatedAt: ts,
		UpdatedAt: ts,
		chapters:  make(map[uuid.UUID]*Chapter),
	}
	if v := s.Validate(); len(v) > 0 {
		return nil, newValidationError("story", v...)
	}
	return s, nil
}

func (s *Story) Identity() uuid.UUID { return s.ID }

func (s *Story) Validate() []Violation {
	violations := requireID("id", s.ID)
	violations = append(violations, checkStruct(s)...)
	for _, c := range s.chapters {
		if c.StoryID != s.ID {
			violations = append(violations, Violation{
				Field:   fmt.Sprintf("chapters[%s].story_id", c.ID),
				Rule:    "parent",
				Message: fmt.Sprintf("points at story %s", c.StoryID),
			})
		}
	}
	return violations
}

// Clone returns a deep copy including every chapter.
func (s *Story) Clone() *Story {
	c := *s
	c.chapters = make(map[uuid.UUID]*Chapter, len(s.chapters))
	for id, ch := range s.chapters {
		c.chapters[id] = ch.Clone()
	}
	return &c
}

func (s *Story) Rename(title string) error {
	return s.mutate(func(s *Story) { s.Title = title })
}

func (s *Story) SetSummary(summary string) error {
	return s.mutate(func(s *Story) { s.Summary = summary })
}

func (s *Story) Publish() error {
	return s.mutate(func(s *Story) { s.Status = PublicationPublished })
}

func (s *Story) Unpublish() error {
	return s.mutate(func(s *Story) { s.Status = PublicationDraft })
}

// =============================================================================
// Chapters
// =============================================================================

// Chapters returns the chapters sorted by position. The returned slice is a
// fresh copy; reordering it has no effect on the story.
func (s *Story) Chapters() []*Chapter {
	out := make([]*Chapter, 0, len(s.chapters))
	for _, c := range s.chapters {
		out = append(out, c)
	}
	sort.SliceStable(out, func(i, j int) bool {
		if out[i].OrderIndex != out[j].OrderIndex {
			return out[i].OrderIndex < out[j].OrderIndex
		}
		return out[i].CreatedAt.Before(out[j].CreatedAt)
	})
	return out
}

func (s *Story) Chapter(id uuid.UUID) (*Chapter, bool) {
	c, ok := s.chapters[id]
	return c, ok
}

func (s *Story) ChapterCount() int { return len(s.chapters) }

// AddChapter adds c to the story. A chapter with no story reference is
// adopted; duplicates and chapters of other stories are rejected.
func (s *Story) AddChapter(c *Chapter) error {
	if c == nil {
		return invalid("story", "chapters", "required", "chapter is required")
	}
	if _, exists := s.chapters[c.ID]; exists {
		return invalid("story", "chapters", "duplicate", fmt.Sprintf("chapter %s already exists", c.ID))
	}
	if c.StoryID != uuid.Nil && c.StoryID != s.ID {
		return invalid("story", "chapters", "parent",
			fmt.Sprintf("chapter %s belongs to story %s", c.ID, c.StoryID))
	}
	if v := c.Validate(); len(v) > 0 {
		return newValidationError("chapter", v...)
	}

	if s.chapters == nil {
		s.chapters = make(map[uuid.UUID]*Chapter)
	}
	c.StoryID = s.ID
	s.chapters[c.ID] = c
	s.touch()
	return nil
}

// AppendChapter creates a chapter positioned after the current last one.
func (s *Story) AppendChapter(title string) (*Chapter, error) {
	next := 0
	for _, c := range s.chapters {
		if c.OrderIndex >= next {
			next = c.OrderIndex + 1
		}
	}
	c, err := NewChapter(s.ID, title, next)
	if err != nil {
		return nil, err
	}
	if err := s.AddChapter(c); err != nil {
		return nil, err
	}
	return c, nil
}

// RemoveChapter detaches the chapter with id and returns it, or false when
// the story has no such chapter.
func (s *Story) RemoveChapter(id uuid.UUID) (*Chapter, bool) {
	c, ok := s.chapters[id]
	if !ok {
		return nil, false
	}
	delete(s.chapters, id)
	s.touch()
	return c, true
}

// ReorderChapters assigns each chapter the position of its id in orderedIDs.
// orderedIDs must be an exact permutation of the current chapter ids; a
// subset, superset or list with repeats fails and leaves every index as it was.
func (s *Story) ReorderChapters(orderedIDs []uuid.UUID) error {
	current := make([]uuid.UUID, 0, len(s.chapters))
	for id := range s.chapters {
		current = append(current, id)
	}
	if v := matchIDSet(current, orderedIDs); len(v) > 0 {
		return newValidationError("story", v...)
	}

	ts := now()
	for pos, id := range orderedIDs {
		c := s.chapters[id]
		c.OrderIndex = pos
		c.UpdatedAt = ts
	}
	s.touch()
	return nil
}

func (s *Story) mutate(change func(*Story)) error {
	prev := *s
	change(s)
	if v := s.Validate(); len(v) > 0 {
		*s = prev
		return newValidationError("story", v...)
	}
	s.touch()
	return nil
}

func (s *Story) touch() { s.UpdatedAt = now() }
