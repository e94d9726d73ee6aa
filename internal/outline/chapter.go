package outline

import (
	"time"

	"github.com/google/uuid"
)

// Chapter is an ordered container of Scenes. The scenes themselves are stored
// outside the chapter and point back at it through Scene.ChapterID.
type Chapter struct {
	ID         uuid.UUID         `json:"id"`
	StoryID    uuid.UUID         `json:"story_id"`
	Title      string            `json:"title" validate:"notblank"`
	Summary    string            `json:"summary,omitempty"`
	OrderIndex int               `json:"order_index" validate:"min=0"`
	Status     PublicationStatus `json:"status" validate:"enum"`
	CreatedAt  time.Time         `json:"created_at"`
	UpdatedAt  time.Time         `json:"updated_at"`
}

func NewChapter(storyID uuid.UUID, title string, orderIndex int) (*Chapter, error) {
	ts := now()
	c := &Chapter{
		ID:         uuid.New(),
		StoryID:    storyID,
		Title:      title,
		OrderIndex: orderIndex,
		Status:     PublicationDraft,
		CreatedAt:  ts,
		UpdatedAt:  ts,
	}
	if v := c.Validate(); len(v) > 0 {
		return nil, newValidationError("chapter", v...)
	}
	return c, nil
}

func (c *Chapter) Identity() uuid.UUID { return c.ID }

func (c *Chapter) Validate() []Violation {
	violations := requireID("id", c.ID)
	violations = append(violations, checkStruct(c)...)
	return violations
}

func (c *Chapter) Clone() *Chapter {
	cp := *c
	return &cp
}

func (c *Chapter) Rename(title string) error {
	return c.mutate(func(c *Chapter) { c.Title = title })
}

func (c *Chapter) SetSummary(summary string) error {
	return c.mutate(func(c *Chapter) { c.Summary = summary })
}

func (c *Chapter) Publish() error {
	return c.mutate(func(c *Chapter) { c.Status = PublicationPublished })
}

func (c *Chapter) Unpublish() error {
	return c.mutate(func(c *Chapter) { c.Status = PublicationDraft })
}

func (c *Chapter) MoveToPosition(index int) error {
	if err := checkPosition("chapter", index); err != nil {
		return err
	}
	return c.mutate(func(c *Chapter) { c.OrderIndex = index })
}

func (c *Chapter) mutate(change func(*Chapter)) error {
	prev := *c
	change(c)
	if v := c.Validate(); len(v) > 0 {
		*c = prev
		return newValidationError("chapter", v...)
	}
	c.touch()
	return nil
}

func (c *Chapter) touch() { c.UpdatedAt = now() }
