package outline

import (
	"fmt"
	"maps"
	"slices"
	"sort"
	"time"

	"github.com/google/uuid"
)

const (
	defaultTension = 5
	defaultEnergy  = 5
)

// Scene is an ordered container of Beats carrying the pacing attributes the
// analysis services read. Scenes belong to a Chapter by reference.
type Scene struct {
	ID           uuid.UUID      `json:"id"`
	ChapterID    uuid.UUID      `json:"chapter_id"`
	Title        string         `json:"title" validate:"notblank"`
	Summary      string         `json:"summary,omitempty"`
	OrderIndex   int            `json:"order_index" validate:"min=0"`
	Status       SceneStatus    `json:"status" validate:"enum"`
	StoryPhase   StoryPhase     `json:"story_phase" validate:"enum"`
	TensionLevel int            `json:"tension_level" validate:"min=1,max=10"`
	EnergyLevel  int            `json:"energy_level" validate:"min=1,max=10"`
	Metadata     map[string]any `json:"metadata,omitempty"`
	CreatedAt    time.Time      `json:"created_at"`
	UpdatedAt    time.Time      `json:"updated_at"`

	beats       []*Beat
	plotlineIDs []uuid.UUID
	autoTags    []string
	manualTags  []string
}

// NewScene creates a draft scene at orderIndex with mid-range pacing.
func NewScene(chapterID uuid.UUID, title string, orderIndex int, phase StoryPhase) (*Scene, error) {
	ts := now()
	s := &Scene{
		ID:           uuid.New(),
		ChapterID:    chapterID,
		Title:        title,
		OrderIndex:   orderIndex,
		Status:       SceneDraft,
		StoryPhase:   phase,
		TensionLevel: defaultTension,
		EnergyLevel:  defaultEnergy,
		Metadata:     make(map[string]any),
		CreatedAt:    ts,
		UpdatedAt:    ts,
	}
	if v := s.Validate(); len(v) > 0 {
		return nil, newValidationError("scene", v...)
	}
	return s, nil
}

func (s *Scene) Identity() uuid.UUID { return s.ID }

// Validate checks the scene's own fields and every owned beat.
func (s *Scene) Validate() []Violation {
	violations := requireID("id", s.ID)
	violations = append(violations, checkStruct(s)...)
	for _, b := range s.beats {
		for _, v := range b.Validate() {
			v.Field = fmt.Sprintf("beats[%s].%s", b.ID, v.Field)
			violations = append(violations, v)
		}
	}
	return violations
}

// Clone returns a deep copy; mutating it never affects s.
func (s *Scene) Clone() *Scene {
	c := *s
	c.Metadata = maps.Clone(s.Metadata)
	c.plotlineIDs = slices.Clone(s.plotlineIDs)
	c.autoTags = slices.Clone(s.autoTags)
	c.manualTags = slices.Clone(s.manualTags)
	c.beats = make([]*Beat, len(s.beats))
	for i, b := range s.beats {
		c.beats[i] = b.Clone()
	}
	return &c
}

// =============================================================================
// Attributes
// =============================================================================

func (s *Scene) Rename(title string) error {
	return s.mutate(func(s *Scene) { s.Title = title })
}

func (s *Scene) SetSummary(summary string) error {
	return s.mutate(func(s *Scene) { s.Summary = summary })
}

func (s *Scene) SetStatus(status SceneStatus) error {
	return s.mutate(func(s *Scene) { s.Status = status })
}

func (s *Scene) SetStoryPhase(phase StoryPhase) error {
	return s.mutate(func(s *Scene) { s.StoryPhase = phase })
}

func (s *Scene) SetTension(level int) error {
	return s.mutate(func(s *Scene) { s.TensionLevel = level })
}

func (s *Scene) SetEnergy(level int) error {
	return s.mutate(func(s *Scene) { s.EnergyLevel = level })
}

// SetPacing updates tension and energy together; neither changes unless both
// are in range.
func (s *Scene) SetPacing(tension, energy int) error {
	return s.mutate(func(s *Scene) {
		s.TensionLevel = tension
		s.EnergyLevel = energy
	})
}

func (s *Scene) SetMetadata(key string, value any) error {
	if key == "" {
		return invalid("scene", "metadata", "required", "key is required")
	}
	return s.mutate(func(s *Scene) {
		m := maps.Clone(s.Metadata)
		if m == nil {
			m = make(map[string]any)
		}
		m[key] = value
		s.Metadata = m
	})
}

func (s *Scene) MoveToPosition(index int) error {
	if err := checkPosition("scene", index); err != nil {
		return err
	}
	return s.mutate(func(s *Scene) { s.OrderIndex = index })
}

// =============================================================================
// Beats
// =============================================================================

// Beats returns the scene's beats sorted by position. The slice is a copy.
func (s *Scene) Beats() []*Beat {
	out := slices.Clone(s.beats)
	sort.SliceStable(out, func(i, j int) bool { return out[i].OrderIndex < out[j].OrderIndex })
	return out
}

func (s *Scene) BeatCount() int { return len(s.beats) }

func (s *Scene) Beat(id uuid.UUID) (*Beat, bool) {
	for _, b := range s.beats {
		if b.ID == id {
			return b, true
		}
	}
	return nil, false
}

// AddBeat attaches b to the scene. A beat with no scene reference is adopted;
// one that names another scene is rejected.
func (s *Scene) AddBeat(b *Beat) error {
	if b == nil {
		return invalid("scene", "beats", "required", "beat is required")
	}
	if _, exists := s.Beat(b.ID); exists {
		return invalid("scene", "beats", "duplicate", fmt.Sprintf("beat %s already exists", b.ID))
	}
	if b.SceneID != uuid.Nil && b.SceneID != s.ID {
		return invalid("scene", "beats", "parent",
			fmt.Sprintf("beat %s belongs to scene %s", b.ID, b.SceneID))
	}
	if v := b.Validate(); len(v) > 0 {
		return newValidationError("beat", v...)
	}

	b.SceneID = s.ID
	s.beats = append(slices.Clip(s.beats), b)
	s.touch()
	return nil
}

// AppendBeat creates a beat positioned after the current last beat.
func (s *Scene) AppendBeat(beatType BeatType, content string) (*Beat, error) {
	next := 0
	for _, b := range s.beats {
		if b.OrderIndex >= next {
			next = b.OrderIndex + 1
		}
	}
	b, err := NewBeat(s.ID, beatType, content, next)
	if err != nil {
		return nil, err
	}
	if err := s.AddBeat(b); err != nil {
		return nil, err
	}
	return b, nil
}

func (s *Scene) RemoveBeat(id uuid.UUID) (*Beat, bool) {
	for i, b := range s.beats {
		if b.ID == id {
			s.beats = slices.Delete(slices.Clone(s.beats), i, i+1)
			s.touch()
			return b, true
		}
	}
	return nil, false
}

// ReorderBeats assigns each beat the position of its id in orderedIDs. The
// list must name every beat exactly once; otherwise nothing changes.
func (s *Scene) ReorderBeats(orderedIDs []uuid.UUID) error {
	current := make([]uuid.UUID, len(s.beats))
	for i, b := range s.beats {
		current[i] = b.ID
	}
	if v := matchIDSet(current, orderedIDs); len(v) > 0 {
		return newValidationError("scene", v...)
	}

	ts := now()
	for pos, id := range orderedIDs {
		b, _ := s.Beat(id)
		b.OrderIndex = pos
		b.UpdatedAt = ts
	}
	s.touch()
	return nil
}

// =============================================================================
// Plotlines
// =============================================================================

func (s *Scene) PlotlineIDs() []uuid.UUID { return slices.Clone(s.plotlineIDs) }

func (s *Scene) HasPlotline(id uuid.UUID) bool { return slices.Contains(s.plotlineIDs, id) }

// LinkPlotline references a plotline. Linking an already linked plotline is a
// no-op.
func (s *Scene) LinkPlotline(id uuid.UUID) error {
	if id == uuid.Nil {
		return invalid("scene", "plotline_ids", "required", "plotline id is required")
	}
	if s.HasPlotline(id) {
		return nil
	}
	s.plotlineIDs = append(slices.Clip(s.plotlineIDs), id)
	s.touch()
	return nil
}

func (s *Scene) UnlinkPlotline(id uuid.UUID) bool {
	i := slices.Index(s.plotlineIDs, id)
	if i < 0 {
		return false
	}
	s.plotlineIDs = slices.Delete(slices.Clone(s.plotlineIDs), i, i+1)
	s.touch()
	return true
}

func (s *Scene) mutate(change func(*Scene)) error {
	prev := *s
	change(s)
	if v := s.Validate(); len(v) > 0 {
		*s = prev
		return newValidationError("scene", v...)
	}
	s.touch()
	return nil
}

func (s *Scene) touch() { s.UpdatedAt = now() }

// =============================================================================
// Scene lists
// =============================================================================

// SceneLookup resolves a scene by identity without touching storage.
type SceneLookup func(id uuid.UUID) (*Scene, bool)

// LookupFrom builds a SceneLookup over an in-memory scene list.
func LookupFrom(scenes []*Scene) SceneLookup {
	index := make(map[uuid.UUID]*Scene, len(scenes))
	for _, s := range scenes {
		index[s.ID] = s
	}
	return func(id uuid.UUID) (*Scene, bool) {
		s, ok := index[id]
		return s, ok
	}
}

// SortScenes returns a copy of scenes ordered by position.
func SortScenes(scenes []*Scene) []*Scene {
	out := slices.Clone(scenes)
	sort.SliceStable(out, func(i, j int) bool { return out[i].OrderIndex < out[j].OrderIndex })
	return out
}

// ReorderScenes applies the complete new order orderedIDs to a chapter's
// scenes. Every scene must belong to the same chapter. Like ReorderBeats it
// is all or nothing.
func ReorderScenes(scenes []*Scene, orderedIDs []uuid.UUID) error {
	current := make([]uuid.UUID, len(scenes))
	byID := make(map[uuid.UUID]*Scene, len(scenes))
	for i, s := range scenes {
		if s.ChapterID != scenes[0].ChapterID {
			return invalid("chapter", fmt.Sprintf("scenes[%s].chapter_id", s.ID), "same_chapter",
				fmt.Sprintf("belongs to chapter %s, not %s", s.ChapterID, scenes[0].ChapterID))
		}
		current[i] = s.ID
		byID[s.ID] = s
	}
	if v := matchIDSet(current, orderedIDs); len(v) > 0 {
		return newValidationError("chapter", v...)
	}

	for pos, id := range orderedIDs {
		s := byID[id]
		s.OrderIndex = pos
		s.touch()
	}
	return nil
}

// ScenesForPlotline returns the scenes that reference plotlineID, in input order.
func ScenesForPlotline(plotlineID uuid.UUID, scenes []*Scene) []*Scene {
	var out []*Scene
	for _, s := range scenes {
		if s.HasPlotline(plotlineID) {
			out = append(out, s)
		}
	}
	return out
}
