package outline

import (
	"time"

	"github.com/google/uuid"
)

// Beat is the smallest narrative unit inside a Scene.
type Beat struct {
	ID         uuid.UUID `json:"id"`
	SceneID    uuid.UUID `json:"scene_id"`
	Content    string    `json:"content"`
	OrderIndex int       `json:"order_index" validate:"min=0"`
	BeatType   BeatType  `json:"beat_type" validate:"enum"`
	MoodShift  int       `json:"mood_shift" validate:"min=-5,max=5"`
	Notes      string    `json:"notes,omitempty"`
	CreatedAt  time.Time `json:"created_at"`
	UpdatedAt  time.Time `json:"updated_at"`
}

// NewBeat creates a beat for sceneID. Empty content is allowed.
func NewBeat(sceneID uuid.UUID, beatType BeatType, content string, orderIndex int) (*Beat, error) {
	ts := now()
	b := &Beat{
		ID:         uuid.New(),
		SceneID:    sceneID,
		Content:    content,
		OrderIndex: orderIndex,
		BeatType:   beatType,
		CreatedAt:  ts,
		UpdatedAt:  ts,
	}
	if v := b.Validate(); len(v) > 0 {
		return nil, newValidationError("beat", v...)
	}
	return b, nil
}

func (b *Beat) Identity() uuid.UUID { return b.ID }

func (b *Beat) Validate() []Violation {
	violations := requireID("id", b.ID)
	violations = append(violations, checkStruct(b)...)
	return violations
}

// Clone returns an independent copy.
func (b *Beat) Clone() *Beat {
	c := *b
	return &c
}

func (b *Beat) SetContent(content string) error {
	return b.mutate(func(b *Beat) { b.Content = content })
}

func (b *Beat) SetNotes(notes string) error {
	return b.mutate(func(b *Beat) { b.Notes = notes })
}

func (b *Beat) SetBeatType(t BeatType) error {
	return b.mutate(func(b *Beat) { b.BeatType = t })
}

// SetMoodShift records how much the beat moves the mood, in [-5, +5].
func (b *Beat) SetMoodShift(shift int) error {
	return b.mutate(func(b *Beat) { b.MoodShift = shift })
}

func (b *Beat) MoveToPosition(index int) error {
	if err := checkPosition("beat", index); err != nil {
		return err
	}
	return b.mutate(func(b *Beat) { b.OrderIndex = index })
}

func (b *Beat) mutate(change func(*Beat)) error {
	prev := *b
	change(b)
	if v := b.Validate(); len(v) > 0 {
		*b = prev
		return newValidationError("beat", v...)
	}
	b.touch()
	return nil
}

func (b *Beat) touch() { b.UpdatedAt = now() }
