package outline

import (
	"fmt"

	"github.com/google/uuid"
	"gopkg.in/yaml.v3"
)

// Document is the hand-authored YAML form of an outline. Positions come from
// list order; scenes and plotlines are cross-referenced by key.
type Document struct {
	Story         StoryDoc           `yaml:"story" json:"story"`
	Plotlines     []PlotlineDoc      `yaml:"plotlines,omitempty" json:"plotlines,omitempty"`
	Foreshadowing []ForeshadowingDoc `yaml:"foreshadowing,omitempty" json:"foreshadowing,omitempty"`
}

type StoryDoc struct {
	Title    string       `yaml:"title" json:"title"`
	Summary  string       `yaml:"summary,omitempty" json:"summary,omitempty"`
	Status   string       `yaml:"status,omitempty" json:"status,omitempty"`
	Chapters []ChapterDoc `yaml:"chapters" json:"chapters"`
}

type ChapterDoc struct {
	Title   string     `yaml:"title" json:"title"`
	Summary string     `yaml:"summary,omitempty" json:"summary,omitempty"`
	Status  string     `yaml:"status,omitempty" json:"status,omitempty"`
	Scenes  []SceneDoc `yaml:"scenes" json:"scenes"`
}

type SceneDoc struct {
	Key       string        `yaml:"key,omitempty" json:"key,omitempty"`
	Title     string        `yaml:"title" json:"title"`
	Summary   string        `yaml:"summary,omitempty" json:"summary,omitempty"`
	Status    string        `yaml:"status,omitempty" json:"status,omitempty"`
	Phase     string        `yaml:"phase" json:"phase"`
	Tension   int           `yaml:"tension,omitempty" json:"tension,omitempty"`
	Energy    int           `yaml:"energy,omitempty" json:"energy,omitempty"`
	Plotlines []string      `yaml:"plotlines,omitempty" json:"plotlines,omitempty"`
	Tags      []string      `yaml:"tags,omitempty" json:"tags,omitempty"`
	Beats     []BeatDoc     `yaml:"beats,omitempty" json:"beats,omitempty"`
	Conflicts []ConflictDoc `yaml:"conflicts,omitempty" json:"conflicts,omitempty"`
}

type BeatDoc struct {
	Type      string `yaml:"type" json:"type"`
	Content   string `yaml:"content,omitempty" json:"content,omitempty"`
	MoodShift int    `yaml:"mood_shift,omitempty" json:"mood_shift,omitempty"`
	Notes     string `yaml:"notes,omitempty" json:"notes,omitempty"`
}

type ConflictDoc struct {
	Type        string `yaml:"type" json:"type"`
	Stakes      string `yaml:"stakes" json:"stakes"`
	Description string `yaml:"description" json:"description"`
	Status      string `yaml:"status,omitempty" json:"status,omitempty"`
}

type PlotlineDoc struct {
	Key         string `yaml:"key" json:"key"`
	Name        string `yaml:"name" json:"name"`
	Color       string `yaml:"color,omitempty" json:"color,omitempty"`
	Description string `yaml:"description,omitempty" json:"description,omitempty"`
	Status      string `yaml:"status,omitempty" json:"status,omitempty"`
}

type ForeshadowingDoc struct {
	Description string `yaml:"description" json:"description"`
	Setup       string `yaml:"setup" json:"setup"`
	Payoff      string `yaml:"payoff,omitempty" json:"payoff,omitempty"`
	Abandoned   bool   `yaml:"abandoned,omitempty" json:"abandoned,omitempty"`
}

// Outline is a fully built story together with its externally owned scenes
// and cross-cutting entities.
type Outline struct {
	Story         *Story
	Scenes        []*Scene
	Conflicts     []*Conflict
	Plotlines     []*Plotline
	Foreshadowing []*Foreshadowing
}

// ChapterScenes returns the scenes of chapterID sorted by position.
func (o *Outline) ChapterScenes(chapterID uuid.UUID) []*Scene {
	var out []*Scene
	for _, s := range o.Scenes {
		if s.ChapterID == chapterID {
			out = append(out, s)
		}
	}
	return SortScenes(out)
}

func (o *Outline) Lookup() SceneLookup { return LookupFrom(o.Scenes) }

// ParseDocument decodes a YAML outline.
func ParseDocument(data []byte) (*Document, error) {
	var doc Document
	if err := yaml.Unmarshal(data, &doc); err != nil {
		return nil, fmt.Errorf("parsing outline: %w", err)
	}
	return &doc, nil
}

// Marshal encodes the document as YAML.
func (d *Document) Marshal() ([]byte, error) {
	return yaml.Marshal(d)
}

// Build turns the document into validated entities. The first invalid field
// aborts the build.
func (d *Document) Build() (*Outline, error) {
	story, err := NewStory(d.Story.Title)
	if err != nil {
		return nil, err
	}
	if err := story.SetSummary(d.Story.Summary); err != nil {
		return nil, err
	}
	if PublicationStatus(d.Story.Status) == PublicationPublished {
		if err := story.Publish(); err != nil {
			return nil, err
		}
	} else if d.Story.Status != "" && !PublicationStatus(d.Story.Status).Valid() {
		return nil, invalid("story", "status", "enum", fmt.Sprintf("unknown value %q", d.Story.Status))
	}

	out := &Outline{Story: story}

	plotlines := make(map[string]*Plotline, len(d.Plotlines))
	for i, pd := range d.Plotlines {
		p, err := pd.build()
		if err != nil {
			return nil, fmt.Errorf("plotline %d: %w", i, err)
		}
		if pd.Key != "" {
			plotlines[pd.Key] = p
		}
		out.Plotlines = append(out.Plotlines, p)
	}

	scenes := make(map[string]*Scene)
	for ci, cd := range d.Story.Chapters {
		chapter, err := story.AppendChapter(cd.Title)
		if err != nil {
			return nil, fmt.Errorf("chapter %d: %w", ci, err)
		}
		if err := cd.apply(chapter); err != nil {
			return nil, fmt.Errorf("chapter %d: %w", ci, err)
		}

		for si, sd := range cd.Scenes {
			scene, conflicts, err := sd.build(chapter.ID, si, plotlines)
			if err != nil {
				return nil, fmt.Errorf("chapter %d scene %d: %w", ci, si, err)
			}
			if sd.Key != "" {
				if _, dup := scenes[sd.Key]; dup {
					return nil, invalid("scene", "key", "duplicate", fmt.Sprintf("key %q used twice", sd.Key))
				}
				scenes[sd.Key] = scene
			}
			out.Scenes = append(out.Scenes, scene)
			out.Conflicts = append(out.Conflicts, conflicts...)
		}
	}

	lookup := out.Lookup()
	for i, fd := range d.Foreshadowing {
		f, err := fd.build(scenes, lookup)
		if err != nil {
			return nil, fmt.Errorf("foreshadowing %d: %w", i, err)
		}
		out.Foreshadowing = append(out.Foreshadowing, f)
	}

	return out, nil
}

func (cd ChapterDoc) apply(c *Chapter) error {
	if err := c.SetSummary(cd.Summary); err != nil {
		return err
	}
	switch PublicationStatus(cd.Status) {
	case "", PublicationDraft:
		return nil
	case PublicationPublished:
		return c.Publish()
	default:
		return invalid("chapter", "status", "enum", fmt.Sprintf("unknown value %q", cd.Status))
	}
}

func (sd SceneDoc) build(chapterID uuid.UUID, position int, plotlines map[string]*Plotline) (*Scene, []*Conflict, error) {
	scene, err := NewScene(chapterID, sd.Title, position, StoryPhase(sd.Phase))
	if err != nil {
		return nil, nil, err
	}

	tension, energy := sd.Tension, sd.Energy
	if tension == 0 {
		tension = defaultTension
	}
	if energy == 0 {
		energy = defaultEnergy
	}
	if err := scene.SetPacing(tension, energy); err != nil {
		return nil, nil, err
	}
	if err := scene.SetSummary(sd.Summary); err != nil {
		return nil, nil, err
	}
	if sd.Status != "" {
		if err := scene.SetStatus(SceneStatus(sd.Status)); err != nil {
			return nil, nil, err
		}
	}

	for bi, bd := range sd.Beats {
		b, err := NewBeat(scene.ID, BeatType(bd.Type), bd.Content, bi)
		if err != nil {
			return nil, nil, fmt.Errorf("beat %d: %w", bi, err)
		}
		b.Notes = bd.Notes
		if err := b.SetMoodShift(bd.MoodShift); err != nil {
			return nil, nil, fmt.Errorf("beat %d: %w", bi, err)
		}
		if err := scene.AddBeat(b); err != nil {
			return nil, nil, fmt.Errorf("beat %d: %w", bi, err)
		}
	}

	for _, key := range sd.Plotlines {
		p, ok := plotlines[key]
		if !ok {
			return nil, nil, &NotFoundError{Kind: "plotline " + key}
		}
		if err := scene.LinkPlotline(p.ID); err != nil {
			return nil, nil, err
		}
	}

	for _, tag := range sd.Tags {
		if err := scene.AddManualTag(tag); err != nil {
			return nil, nil, err
		}
	}
	scene.RefreshAutoTags()

	var conflicts []*Conflict
	for ki, kd := range sd.Conflicts {
		c, err := kd.build(scene.ID)
		if err != nil {
			return nil, nil, fmt.Errorf("conflict %d: %w", ki, err)
		}
		conflicts = append(conflicts, c)
	}

	return scene, conflicts, nil
}

func (kd ConflictDoc) build(sceneID uuid.UUID) (*Conflict, error) {
	c, err := NewConflict(sceneID, ConflictType(kd.Type), Stakes(kd.Stakes), kd.Description)
	if err != nil {
		return nil, err
	}
	switch ResolutionStatus(kd.Status) {
	case "", ResolutionUnresolved:
	case ResolutionEscalating:
		err = c.Escalate()
	case ResolutionResolved:
		err = c.Resolve()
	default:
		err = invalid("conflict", "resolution_status", "enum", fmt.Sprintf("unknown value %q", kd.Status))
	}
	if err != nil {
		return nil, err
	}
	return c, nil
}

func (pd PlotlineDoc) build() (*Plotline, error) {
	p, err := NewPlotline(pd.Name, pd.Color)
	if err != nil {
		return nil, err
	}
	if err := p.SetDescription(pd.Description); err != nil {
		return nil, err
	}
	switch PlotlineStatus(pd.Status) {
	case "", PlotlineActive:
	case PlotlineResolved:
		err = p.Resolve()
	case PlotlineAbandoned:
		err = p.Abandon()
	default:
		err = invalid("plotline", "status", "enum", fmt.Sprintf("unknown value %q", pd.Status))
	}
	if err != nil {
		return nil, err
	}
	return p, nil
}

func (fd ForeshadowingDoc) build(scenes map[string]*Scene, lookup SceneLookup) (*Foreshadowing, error) {
	setup, ok := scenes[fd.Setup]
	if !ok {
		return nil, &NotFoundError{Kind: "setup scene " + fd.Setup}
	}
	f, err := NewForeshadowing(setup.ID, fd.Description)
	if err != nil {
		return nil, err
	}

	if fd.Payoff != "" {
		payoff, ok := scenes[fd.Payoff]
		if !ok {
			return nil, &NotFoundError{Kind: "payoff scene " + fd.Payoff}
		}
		if err := f.LinkPayoff(payoff.ID, lookup); err != nil {
			return nil, err
		}
	}
	if fd.Abandoned {
		if err := f.Abandon(); err != nil {
			return nil, err
		}
	}
	return f, nil
}
