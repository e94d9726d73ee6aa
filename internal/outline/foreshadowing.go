package outline

import (
	"fmt"
	"time"

	"github.com/google/uuid"
)

// Foreshadowing links a planted setup scene to the scene that pays it off.
//
// Status is paid_off exactly when PayoffSceneID is set. Within one chapter
// the payoff must come after the setup. Scenes in different chapters are not
// compared: there is no story-wide scene sequence to compare them on.
type Foreshadowing struct {
	ID            uuid.UUID           `json:"id"`
	SetupSceneID  uuid.UUID           `json:"setup_scene_id"`
	PayoffSceneID *uuid.UUID          `json:"payoff_scene_id,omitempty"`
	Description   string              `json:"description"`
	Status        ForeshadowingStatus `json:"status" validate:"enum"`
	CreatedAt     time.Time           `json:"created_at"`
	UpdatedAt     time.Time           `json:"updated_at"`
}

func NewForeshadowing(setupSceneID uuid.UUID, description string) (*Foreshadowing, error) {
	ts := now()
	f := &Foreshadowing{
		ID:           uuid.New(),
		SetupSceneID: setupSceneID,
		Description:  description,
		Status:       ForeshadowingPlanted,
		CreatedAt:    ts,
		UpdatedAt:    ts,
	}
	if v := f.Validate(); len(v) > 0 {
		return nil, newValidationError("foreshadowing", v...)
	}
	return f, nil
}

func (f *Foreshadowing) Identity() uuid.UUID { return f.ID }

func (f *Foreshadowing) Validate() []Violation {
	violations := requireID("id", f.ID)
	violations = append(violations, requireID("setup_scene_id", f.SetupSceneID)...)
	violations = append(violations, checkStruct(f)...)

	paid := f.Status == ForeshadowingPaidOff
	linked := f.PayoffSceneID != nil
	if paid != linked {
		violations = append(violations, Violation{
			Field:   "payoff_scene_id",
			Rule:    "paid_off",
			Message: "must be set exactly when status is paid_off",
		})
	}
	if linked && *f.PayoffSceneID == f.SetupSceneID {
		violations = append(violations, Violation{
			Field:   "payoff_scene_id",
			Rule:    "distinct",
			Message: "cannot equal the setup scene",
		})
	}
	return violations
}

func (f *Foreshadowing) Clone() *Foreshadowing {
	cp := *f
	if f.PayoffSceneID != nil {
		id := *f.PayoffSceneID
		cp.PayoffSceneID = &id
	}
	return &cp
}

func (f *Foreshadowing) IsPaidOff() bool { return f.Status == ForeshadowingPaidOff }

func (f *Foreshadowing) SetDescription(description string) error {
	return f.mutate(func(f *Foreshadowing) { f.Description = description })
}

// LinkPayoff marks payoffID as the scene that resolves this setup. Only a
// planted thread can be linked. Both scenes are resolved through lookup; a
// missing scene yields a NotFoundError.
func (f *Foreshadowing) LinkPayoff(payoffID uuid.UUID, lookup SceneLookup) error {
	if payoffID == f.SetupSceneID {
		return &TransitionError{
			Entity: "foreshadowing",
			From:   string(f.Status),
			To:     string(ForeshadowingPaidOff),
			Reason: "payoff scene cannot be the setup scene",
		}
	}
	if f.Status != ForeshadowingPlanted {
		return &TransitionError{
			Entity: "foreshadowing",
			From:   string(f.Status),
			To:     string(ForeshadowingPaidOff),
			Reason: "replant before linking a payoff",
		}
	}
	if lookup == nil {
		return invalid("foreshadowing", "lookup", "required", "scene lookup is required")
	}

	setup, ok := lookup(f.SetupSceneID)
	if !ok || setup == nil {
		return &NotFoundError{Kind: "setup scene", ID: f.SetupSceneID}
	}
	payoff, ok := lookup(payoffID)
	if !ok || payoff == nil {
		return &NotFoundError{Kind: "payoff scene", ID: payoffID}
	}

	if setup.ChapterID == payoff.ChapterID && payoff.OrderIndex <= setup.OrderIndex {
		return invalid("foreshadowing", "payoff_scene_id", "after_setup",
			fmt.Sprintf("payoff at position %d must come after setup at position %d",
				payoff.OrderIndex, setup.OrderIndex))
	}

	id := payoffID
	return f.mutate(func(f *Foreshadowing) {
		f.PayoffSceneID = &id
		f.Status = ForeshadowingPaidOff
	})
}

// Abandon drops the thread and clears any payoff.
func (f *Foreshadowing) Abandon() error {
	return f.mutate(func(f *Foreshadowing) {
		f.PayoffSceneID = nil
		f.Status = ForeshadowingAbandoned
	})
}

// Replant returns the thread to planted so it can be paid off again.
func (f *Foreshadowing) Replant() error {
	return f.mutate(func(f *Foreshadowing) {
		f.PayoffSceneID = nil
		f.Status = ForeshadowingPlanted
	})
}

func (f *Foreshadowing) mutate(change func(*Foreshadowing)) error {
	prev := *f
	change(f)
	if v := f.Validate(); len(v) > 0 {
		*f = prev
		return newValidationError("foreshadowing", v...)
	}
	f.touch()
	return nil
}

func (f *Foreshadowing) touch() { f.UpdatedAt = now() }
