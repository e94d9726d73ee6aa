package outline

import (
	"time"

	"github.com/google/uuid"
)

// Plotline is a narrative thread that scenes opt into by id. It keeps no
// list of its scenes; use ScenesForPlotline to derive one.
type Plotline struct {
	ID          uuid.UUID      `json:"id"`
	Name        string         `json:"name" validate:"notblank"`
	Color       string         `json:"color" validate:"plotcolor"`
	Description string         `json:"description,omitempty"`
	Status      PlotlineStatus `json:"status" validate:"enum"`
	CreatedAt   time.Time      `json:"created_at"`
	UpdatedAt   time.Time      `json:"updated_at"`
}

// DefaultPlotlineColor is used when no colour is supplied.
const DefaultPlotlineColor = "#3b82f6"

func NewPlotline(name, color string) (*Plotline, error) {
	if color == "" {
		color = DefaultPlotlineColor
	}
	ts := now()
	p := &Plotline{
		ID:        uuid.New(),
		Name:      name,
		Color:     color,
		Status:    PlotlineActive,
		CreatedAt: ts,
		UpdatedAt: ts,
	}
	if v := p.Validate(); len(v) > 0 {
		return nil, newValidationError("plotline", v...)
	}
	return p, nil
}

func (p *Plotline) Identity() uuid.UUID { return p.ID }

func (p *Plotline) Validate() []Violation {
	violations := requireID("id", p.ID)
	violations = append(violations, checkStruct(p)...)
	return violations
}

func (p *Plotline) Clone() *Plotline {
	cp := *p
	return &cp
}

func (p *Plotline) Rename(name string) error {
	return p.mutate(func(p *Plotline) { p.Name = name })
}

func (p *Plotline) SetColor(color string) error {
	return p.mutate(func(p *Plotline) { p.Color = color })
}

func (p *Plotline) SetDescription(description string) error {
	return p.mutate(func(p *Plotline) { p.Description = description })
}

func (p *Plotline) Resolve() error {
	if p.Status != PlotlineActive {
		return p.reject(PlotlineResolved, "only active plotlines can be resolved")
	}
	return p.mutate(func(p *Plotline) { p.Status = PlotlineResolved })
}

func (p *Plotline) Abandon() error {
	if p.Status != PlotlineActive {
		return p.reject(PlotlineAbandoned, "only active plotlines can be abandoned")
	}
	return p.mutate(func(p *Plotline) { p.Status = PlotlineAbandoned })
}

// Reactivate picks a resolved or abandoned thread back up.
func (p *Plotline) Reactivate() error {
	if p.Status == PlotlineActive {
		return p.reject(PlotlineActive, "already active")
	}
	return p.mutate(func(p *Plotline) { p.Status = PlotlineActive })
}

func (p *Plotline) reject(to PlotlineStatus, reason string) error {
	return &TransitionError{Entity: "plotline", From: string(p.Status), To: string(to), Reason: reason}
}

func (p *Plotline) mutate(change func(*Plotline)) error {
	prev := *p
	change(p)
	if v := p.Validate(); len(v) > 0 {
		*p = prev
		return newValidationError("plotline", v...)
	}
	p.touch()
	return nil
}

func (p *Plotline) touch() { p.UpdatedAt = now() }
