package outline

import (
	"slices"
	"testing"

	"github.com/google/uuid"
)

func newTestScene(t *testing.T, beats int) *Scene {
	t.Helper()
	s, err := NewScene(uuid.New(), "Ambush at the ford", 0, PhaseRisingAction)
	if err != nil {
		t.Fatalf("NewScene: %v", err)
	}
	for i := 0; i < beats; i++ {
		if _, err := s.AppendBeat(BeatAction, "something happens"); err != nil {
			t.Fatalf("AppendBeat: %v", err)
		}
	}
	return s
}

func beatIDs(s *Scene) []uuid.UUID {
	var ids []uuid.UUID
	for _, b := range s.Beats() {
		ids = append(ids, b.ID)
	}
	return ids
}

func TestNewSceneDefaults(t *testing.T) {
	s := newTestScene(t, 0)

	if s.Status != SceneDraft {
		t.Errorf("Status = %s, want draft", s.Status)
	}
	if s.TensionLevel != 5 || s.EnergyLevel != 5 {
		t.Errorf("pacing = %d/%d, want 5/5", s.TensionLevel, s.EnergyLevel)
	}
	if s.BeatCount() != 0 {
		t.Errorf("BeatCount = %d", s.BeatCount())
	}
}

func TestNewSceneRejectsInvalidInput(t *testing.T) {
	tests := []struct {
		name  string
		title string
		order int
		phase StoryPhase
	}{
		{"blank title", " ", 0, PhaseSetup},
		{"negative order", "Title", -1, PhaseSetup},
		{"unknown phase", "Title", 0, StoryPhase("denouement")},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if _, err := NewScene(uuid.New(), tt.title, tt.order, tt.phase); !IsValidation(err) {
				t.Errorf("error = %v, want validation error", err)
			}
		})
	}
}

func TestScenePacingBounds(t *testing.T) {
	tests := []struct {
		name    string
		tension int
		energy  int
		wantErr bool
	}{
		{"lower bound", 1, 1, false},
		{"upper bound", 10, 10, false},
		{"tension zero", 0, 5, true},
		{"tension eleven", 11, 5, true},
		{"energy zero", 5, 0, true},
		{"energy eleven", 5, 11, true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			s := newTestScene(t, 0)
			err := s.SetPacing(tt.tension, tt.energy)
			if tt.wantErr {
				if !IsValidation(err) {
					t.Fatalf("error = %v, want validation error", err)
				}
				if s.TensionLevel != 5 || s.EnergyLevel != 5 {
					t.Errorf("pacing changed to %d/%d after rejection", s.TensionLevel, s.EnergyLevel)
				}
				return
			}
			if err != nil {
				t.Fatal(err)
			}
			if s.TensionLevel != tt.tension || s.EnergyLevel != tt.energy {
				t.Errorf("pacing = %d/%d", s.TensionLevel, s.EnergyLevel)
			}
		})
	}
}

func TestSceneMoveToPositionRejectsNegative(t *testing.T) {
	s := newTestScene(t, 0)
	if err := s.MoveToPosition(-3); !IsValidation(err) {
		t.Fatalf("error = %v, want validation error", err)
	}
	if s.OrderIndex != 0 {
		t.Errorf("OrderIndex = %d", s.OrderIndex)
	}
}

func TestBeatMoodShiftBounds(t *testing.T) {
	tests := []struct {
		name    string
		start   int
		shift   int
		wantErr bool
	}{
		{"lower bound", 0, -5, false},
		{"upper bound", 0, 5, false},
		{"below range", 0, -6, true},
		{"above range", 5, 6, true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			b, err := NewBeat(uuid.New(), BeatAction, "", 0)
			if err != nil {
				t.Fatal(err)
			}
			if err := b.SetMoodShift(tt.start); err != nil {
				t.Fatal(err)
			}
			updated := b.UpdatedAt

			err = b.SetMoodShift(tt.shift)
			if tt.wantErr {
				if !IsValidation(err) {
					t.Fatalf("SetMoodShift(%d) error = %v, want validation error", tt.shift, err)
				}
				if b.MoodShift != tt.start || !b.UpdatedAt.Equal(updated) {
					t.Errorf("beat changed after rejection: shift %d", b.MoodShift)
				}
				return
			}
			if err != nil {
				t.Fatal(err)
			}
			if b.MoodShift != tt.shift {
				t.Errorf("MoodShift = %d, want %d", b.MoodShift, tt.shift)
			}
		})
	}
}

func TestBeatMoveToPositionRejectsNegative(t *testing.T) {
	b, err := NewBeat(uuid.New(), BeatDialogue, "", 2)
	if err != nil {
		t.Fatal(err)
	}
	if err := b.MoveToPosition(-1); !IsValidation(err) {
		t.Fatalf("MoveToPosition(-1) error = %v, want validation error", err)
	}
	if b.OrderIndex != 2 {
		t.Errorf("OrderIndex = %d", b.OrderIndex)
	}
	if err := b.MoveToPosition(0); err != nil || b.OrderIndex != 0 {
		t.Errorf("MoveToPosition(0) = %v, index %d", err, b.OrderIndex)
	}
}

func TestAppendBeatOrdersAfterLast(t *testing.T) {
	s := newTestScene(t, 3)
	for pos, b := range s.Beats() {
		if b.OrderIndex != pos {
			t.Errorf("beat %d OrderIndex = %d", pos, b.OrderIndex)
		}
		if b.SceneID != s.ID {
			t.Errorf("beat %d SceneID = %s, want %s", pos, b.SceneID, s.ID)
		}
	}
}

func TestAddBeat(t *testing.T) {
	s := newTestScene(t, 0)

	t.Run("adopts orphan", func(t *testing.T) {
		b, err := NewBeat(uuid.Nil, BeatDialogue, "hello", 0)
		if err != nil {
			t.Fatal(err)
		}
		if err := s.AddBeat(b); err != nil {
			t.Fatal(err)
		}
		if b.SceneID != s.ID {
			t.Errorf("SceneID = %s", b.SceneID)
		}

		if err := s.AddBeat(b); !IsValidation(err) {
			t.Errorf("duplicate AddBeat error = %v", err)
		}
	})

	t.Run("rejects beat of another scene", func(t *testing.T) {
		b, _ := NewBeat(uuid.New(), BeatAction, "", 1)
		if err := s.AddBeat(b); !IsValidation(err) {
			t.Errorf("error = %v, want validation error", err)
		}
	})

	t.Run("rejects nil", func(t *testing.T) {
		if err := s.AddBeat(nil); !IsValidation(err) {
			t.Errorf("error = %v, want validation error", err)
		}
	})

	if s.BeatCount() != 1 {
		t.Errorf("BeatCount = %d, want 1", s.BeatCount())
	}
}

func TestRemoveBeat(t *testing.T) {
	s := newTestScene(t, 2)
	ids := beatIDs(s)

	if _, ok := s.RemoveBeat(ids[1]); !ok {
		t.Fatal("RemoveBeat returned false")
	}
	if _, ok := s.RemoveBeat(ids[1]); ok {
		t.Error("second RemoveBeat returned true")
	}
	if got := beatIDs(s); !slices.Equal(got, ids[:1]) {
		t.Errorf("remaining beats = %v", got)
	}
}

func TestReorderBeats(t *testing.T) {
	s := newTestScene(t, 3)
	ids := beatIDs(s)

	reversed := []uuid.UUID{ids[2], ids[1], ids[0]}
	if err := s.ReorderBeats(reversed); err != nil {
		t.Fatal(err)
	}
	if got := beatIDs(s); !slices.Equal(got, reversed) {
		t.Errorf("order = %v, want %v", got, reversed)
	}

	bad := [][]uuid.UUID{
		{ids[0], ids[1]},
		{ids[0], ids[0], ids[1]},
		{ids[0], ids[1], ids[2], uuid.New()},
	}
	for _, ordered := range bad {
		if err := s.ReorderBeats(ordered); !IsValidation(err) {
			t.Errorf("ReorderBeats(%v) error = %v", ordered, err)
		}
		if got := beatIDs(s); !slices.Equal(got, reversed) {
			t.Errorf("failed reorder changed order to %v", got)
		}
	}
}

func TestReorderScenes(t *testing.T) {
	chapterID := uuid.New()
	var scenes []*Scene
	for i := 0; i < 3; i++ {
		s, err := NewScene(chapterID, "Scene", i, PhaseSetup)
		if err != nil {
			t.Fatal(err)
		}
		scenes = append(scenes, s)
	}

	ordered := []uuid.UUID{scenes[1].ID, scenes[2].ID, scenes[0].ID}
	if err := ReorderScenes(scenes, ordered); err != nil {
		t.Fatal(err)
	}
	for pos, s := range SortScenes(scenes) {
		if s.ID != ordered[pos] || s.OrderIndex != pos {
			t.Errorf("position %d = %s (index %d)", pos, s.ID, s.OrderIndex)
		}
	}

	if err := ReorderScenes(scenes, ordered[:2]); !IsValidation(err) {
		t.Errorf("subset error = %v", err)
	}
	if scenes[0].OrderIndex != 2 {
		t.Errorf("failed reorder moved scene to %d", scenes[0].OrderIndex)
	}
}

func TestReorderScenesRejectsMixedChapters(t *testing.T) {
	a, _ := NewScene(uuid.New(), "A", 0, PhaseSetup)
	b, _ := NewScene(uuid.New(), "B", 0, PhaseSetup)
	scenes := []*Scene{a, b}

	err := ReorderScenes(scenes, []uuid.UUID{b.ID, a.ID})
	if !IsValidation(err) {
		t.Fatalf("error = %v, want validation error", err)
	}
	if a.OrderIndex != 0 || b.OrderIndex != 0 {
		t.Errorf("indexes changed to %d, %d", a.OrderIndex, b.OrderIndex)
	}
}

func TestScenePlotlineLinks(t *testing.T) {
	s := newTestScene(t, 0)
	p := uuid.New()

	if err := s.LinkPlotline(uuid.Nil); !IsValidation(err) {
		t.Errorf("LinkPlotline(Nil) error = %v", err)
	}
	if err := s.LinkPlotline(p); err != nil {
		t.Fatal(err)
	}
	if err := s.LinkPlotline(p); err != nil {
		t.Fatal(err)
	}
	if got := s.PlotlineIDs(); len(got) != 1 || got[0] != p {
		t.Errorf("PlotlineIDs = %v", got)
	}

	other := newTestScene(t, 0)
	if got := ScenesForPlotline(p, []*Scene{s, other}); len(got) != 1 || got[0] != s {
		t.Errorf("ScenesForPlotline = %v", got)
	}

	if !s.UnlinkPlotline(p) {
		t.Error("UnlinkPlotline returned false")
	}
	if s.UnlinkPlotline(p) {
		t.Error("second UnlinkPlotline returned true")
	}
}

func TestSceneCloneIsDeep(t *testing.T) {
	s := newTestScene(t, 1)
	if err := s.SetMetadata("pov", "Mara"); err != nil {
		t.Fatal(err)
	}
	c := s.Clone()

	c.Beats()[0].Content = "changed"
	_ = c.SetMetadata("pov", "Ilya")
	_ = c.LinkPlotline(uuid.New())

	if s.Beats()[0].Content == "changed" {
		t.Error("clone shares beats")
	}
	if s.Metadata["pov"] != "Mara" {
		t.Error("clone shares metadata")
	}
	if len(s.PlotlineIDs()) != 0 {
		t.Error("clone shares plotline ids")
	}
}

func TestDeriveTags(t *testing.T) {
	s := newTestScene(t, 0)
	if err := s.SetPacing(9, 2); err != nil {
		t.Fatal(err)
	}
	for _, bt := range []BeatType{BeatDialogue, BeatDialogue, BeatRevelation} {
		b, err := s.AppendBeat(bt, "")
		if err != nil {
			t.Fatal(err)
		}
		if err := b.SetMoodShift(-1); err != nil {
			t.Fatal(err)
		}
	}

	want := []string{"darkening", "dialogue-heavy", "high-tension", "quiet", "revelation", "rising-action"}
	if got := DeriveTags(s); !slices.Equal(got, want) {
		t.Errorf("DeriveTags = %v, want %v", got, want)
	}
}

func TestManualTagsSurviveRefresh(t *testing.T) {
	s := newTestScene(t, 0)
	if err := s.AddManualTag("  Red Herring "); err != nil {
		t.Fatal(err)
	}
	if err := s.AddManualTag(""); !IsValidation(err) {
		t.Errorf("AddManualTag(\"\") error = %v", err)
	}

	s.RefreshAutoTags()
	if err := s.SetPacing(10, 10); err != nil {
		t.Fatal(err)
	}
	s.RefreshAutoTags()

	want := []string{"high-energy", "high-tension", "red-herring", "rising-action"}
	if got := s.Tags(); !slices.Equal(got, want) {
		t.Errorf("Tags = %v, want %v", got, want)
	}
	if got := s.ManualTags(); !slices.Equal(got, []string{"red-herring"}) {
		t.Errorf("ManualTags = %v", got)
	}

	if !s.RemoveManualTag("red herring") {
		t.Error("RemoveManualTag returned false")
	}
}
