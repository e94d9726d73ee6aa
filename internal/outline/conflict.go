package outline

import (
	"time"

	"github.com/google/uuid"
)

// Conflict is a source of opposition attached to a scene.
type Conflict struct {
	ID               uuid.UUID        `json:"id"`
	SceneID          uuid.UUID        `json:"scene_id"`
	ConflictType     ConflictType     `json:"conflict_type" validate:"enum"`
	Stakes           Stakes           `json:"stakes" validate:"enum"`
	Description      string           `json:"description" validate:"notblank"`
	ResolutionStatus ResolutionStatus `json:"resolution_status" validate:"enum"`
	CreatedAt        time.Time        `json:"created_at"`
	UpdatedAt        time.Time        `json:"updated_at"`
}

func NewConflict(sceneID uuid.UUID, conflictType ConflictType, stakes Stakes, description string) (*Conflict, error) {
	ts := now()
	c := &Conflict{
		ID:               uuid.New(),
		SceneID:          sceneID,
		ConflictType:     conflictType,
		Stakes:           stakes,
		Description:      description,
		ResolutionStatus: ResolutionUnresolved,
		CreatedAt:        ts,
		UpdatedAt:        ts,
	}
	if v := c.Validate(); len(v) > 0 {
		return nil, newValidationError("conflict", v...)
	}
	return c, nil
}

func (c *Conflict) Identity() uuid.UUID { return c.ID }

func (c *Conflict) Validate() []Violation {
	violations := requireID("id", c.ID)
	violations = append(violations, requireID("scene_id", c.SceneID)...)
	violations = append(violations, checkStruct(c)...)
	return violations
}

func (c *Conflict) Clone() *Conflict {
	cp := *c
	return &cp
}

func (c *Conflict) SetStakes(stakes Stakes) error {
	return c.mutate(func(c *Conflict) { c.Stakes = stakes })
}

func (c *Conflict) SetConflictType(t ConflictType) error {
	return c.mutate(func(c *Conflict) { c.ConflictType = t })
}

func (c *Conflict) SetDescription(description string) error {
	return c.mutate(func(c *Conflict) { c.Description = description })
}

// IsActive reports whether the conflict still drives the story.
func (c *Conflict) IsActive() bool {
	return c.ResolutionStatus != ResolutionResolved
}

// Escalate moves an unresolved conflict to escalating.
func (c *Conflict) Escalate() error {
	if c.ResolutionStatus != ResolutionUnresolved {
		return c.reject(ResolutionEscalating, "only unresolved conflicts can escalate")
	}
	return c.transition(ResolutionEscalating)
}

// Resolve closes the conflict. Resolving twice is an error.
func (c *Conflict) Resolve() error {
	if c.ResolutionStatus == ResolutionResolved {
		return c.reject(ResolutionResolved, "already resolved")
	}
	return c.transition(ResolutionResolved)
}

// Reopen returns a resolved conflict to unresolved.
func (c *Conflict) Reopen() error {
	if c.ResolutionStatus != ResolutionResolved {
		return c.reject(ResolutionUnresolved, "only resolved conflicts can reopen")
	}
	return c.transition(ResolutionUnresolved)
}

func (c *Conflict) transition(to ResolutionStatus) error {
	return c.mutate(func(c *Conflict) { c.ResolutionStatus = to })
}

func (c *Conflict) reject(to ResolutionStatus, reason string) error {
	return &TransitionError{
		Entity: "conflict",
		From:   string(c.ResolutionStatus),
		To:     string(to),
		Reason: reason,
	}
}

func (c *Conflict) mutate(change func(*Conflict)) error {
	prev := *c
	change(c)
	if v := c.Validate(); len(v) > 0 {
		*c = prev
		return newValidationError("conflict", v...)
	}
	c.touch()
	return nil
}

func (c *Conflict) touch() { c.UpdatedAt = now() }
