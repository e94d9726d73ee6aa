package outline

import (
	"encoding/json"
	"fmt"
	"slices"
	"time"

	"github.com/google/uuid"
)

// Story and Scene keep their owned collections unexported, so they carry
// explicit wire forms for repositories that persist them as JSON. Decoding
// validates the result and fails with a ValidationError.

type storyJSON struct {
	ID        uuid.UUID         `json:"id"`
	Title     string            `json:"title"`
	Summary   string            `json:"summary,omitempty"`
	Status    PublicationStatus `json:"status"`
	Chapters  []*Chapter        `json:"chapters"`
	CreatedAt time.Time         `json:"created_at"`
	UpdatedAt time.Time         `json:"updated_at"`
}

func (s *Story) MarshalJSON() ([]byte, error) {
	return json.Marshal(storyJSON{
		ID:        s.ID,
		Title:     s.Title,
		Summary:   s.Summary,
		Status:    s.Status,
		Chapters:  s.Chapters(),
		CreatedAt: s.CreatedAt,
		UpdatedAt: s.UpdatedAt,
	})
}

func (s *Story) UnmarshalJSON(data []byte) error {
	var doc storyJSON
	if err := json.Unmarshal(data, &doc); err != nil {
		return err
	}

	*s = Story{
		ID:        doc.ID,
		Title:     doc.Title,
		Summary:   doc.Summary,
		Status:    doc.Status,
		CreatedAt: doc.CreatedAt,
		UpdatedAt: doc.UpdatedAt,
		chapters:  make(map[uuid.UUID]*Chapter, len(doc.Chapters)),
	}
	var violations []Violation
	for _, c := range doc.Chapters {
		if c == nil {
			continue
		}
		if _, dup := s.chapters[c.ID]; dup {
			violations = append(violations, Violation{
				Field:   fmt.Sprintf("chapters[%s]", c.ID),
				Rule:    "unique",
				Message: "appears more than once",
			})
			continue
		}
		for _, v := range c.Validate() {
			v.Field = fmt.Sprintf("chapters[%s].%s", c.ID, v.Field)
			violations = append(violations, v)
		}
		s.chapters[c.ID] = c
	}
	violations = append(violations, s.Validate()...)
	if len(violations) > 0 {
		return newValidationError("story", violations...)
	}
	return nil
}

type sceneJSON struct {
	ID           uuid.UUID      `json:"id"`
	ChapterID    uuid.UUID      `json:"chapter_id"`
	Title        string         `json:"title"`
	Summary      string         `json:"summary,omitempty"`
	OrderIndex   int            `json:"order_index"`
	Status       SceneStatus    `json:"status"`
	StoryPhase   StoryPhase     `json:"story_phase"`
	TensionLevel int            `json:"tension_level"`
	EnergyLevel  int            `json:"energy_level"`
	Beats        []*Beat        `json:"beats"`
	PlotlineIDs  []uuid.UUID    `json:"plotline_ids,omitempty"`
	AutoTags     []string       `json:"auto_tags,omitempty"`
	ManualTags   []string       `json:"manual_tags,omitempty"`
	Metadata     map[string]any `json:"metadata,omitempty"`
	CreatedAt    time.Time      `json:"created_at"`
	UpdatedAt    time.Time      `json:"updated_at"`
}

func (s *Scene) MarshalJSON() ([]byte, error) {
	return json.Marshal(sceneJSON{
		ID:           s.ID,
		ChapterID:    s.ChapterID,
		Title:        s.Title,
		Summary:      s.Summary,
		OrderIndex:   s.OrderIndex,
		Status:       s.Status,
		StoryPhase:   s.StoryPhase,
		TensionLevel: s.TensionLevel,
		EnergyLevel:  s.EnergyLevel,
		Beats:        s.Beats(),
		PlotlineIDs:  s.plotlineIDs,
		AutoTags:     s.autoTags,
		ManualTags:   s.manualTags,
		Metadata:     s.Metadata,
		CreatedAt:    s.CreatedAt,
		UpdatedAt:    s.UpdatedAt,
	})
}

func (s *Scene) UnmarshalJSON(data []byte) error {
	var doc sceneJSON
	if err := json.Unmarshal(data, &doc); err != nil {
		return err
	}

	*s = Scene{
		ID:           doc.ID,
		ChapterID:    doc.ChapterID,
		Title:        doc.Title,
		Summary:      doc.Summary,
		OrderIndex:   doc.OrderIndex,
		Status:       doc.Status,
		StoryPhase:   doc.StoryPhase,
		TensionLevel: doc.TensionLevel,
		EnergyLevel:  doc.EnergyLevel,
		Metadata:     doc.Metadata,
		CreatedAt:    doc.CreatedAt,
		UpdatedAt:    doc.UpdatedAt,
		plotlineIDs:  doc.PlotlineIDs,
		autoTags:     normalizeTags(doc.AutoTags),
		manualTags:   normalizeTags(doc.ManualTags),
	}
	s.beats = slices.DeleteFunc(doc.Beats, func(b *Beat) bool { return b == nil })
	if v := s.Validate(); len(v) > 0 {
		return newValidationError("scene", v...)
	}
	return nil
}
