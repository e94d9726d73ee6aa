package outline

import (
	"slices"
	"strings"
)

// Smart tags are kept in two sets. Auto tags are recomputed from the scene's
// attributes; manual tags are set by the author and survive every refresh.

func normalizeTag(tag string) string {
	return strings.ToLower(strings.Join(strings.Fields(tag), "-"))
}

func normalizeTags(tags []string) []string {
	out := make([]string, 0, len(tags))
	for _, t := range tags {
		if n := normalizeTag(t); n != "" && !slices.Contains(out, n) {
			out = append(out, n)
		}
	}
	slices.Sort(out)
	return out
}

// Tags returns the sorted union of auto and manual tags.
func (s *Scene) Tags() []string {
	return normalizeTags(append(slices.Clone(s.autoTags), s.manualTags...))
}

func (s *Scene) AutoTags() []string   { return slices.Clone(s.autoTags) }
func (s *Scene) ManualTags() []string { return slices.Clone(s.manualTags) }

// SetAutoTags replaces the generated tag set. Manual tags are untouched.
func (s *Scene) SetAutoTags(tags []string) {
	s.autoTags = normalizeTags(tags)
	s.touch()
}

// RefreshAutoTags recomputes the generated tags from the scene's attributes.
func (s *Scene) RefreshAutoTags() []string {
	s.SetAutoTags(DeriveTags(s))
	return s.AutoTags()
}

func (s *Scene) AddManualTag(tag string) error {
	n := normalizeTag(tag)
	if n == "" {
		return invalid("scene", "manual_tags", "notblank", "tag is required")
	}
	if slices.Contains(s.manualTags, n) {
		return nil
	}
	s.manualTags = normalizeTags(append(slices.Clone(s.manualTags), n))
	s.touch()
	return nil
}

func (s *Scene) RemoveManualTag(tag string) bool {
	i := slices.Index(s.manualTags, normalizeTag(tag))
	if i < 0 {
		return false
	}
	s.manualTags = slices.Delete(slices.Clone(s.manualTags), i, i+1)
	s.touch()
	return true
}

// DeriveTags computes auto tags from phase, pacing levels and beat mix.
func DeriveTags(s *Scene) []string {
	tags := []string{strings.ReplaceAll(string(s.StoryPhase), "_", "-")}

	switch {
	case s.TensionLevel >= 8:
		tags = append(tags, "high-tension")
	case s.TensionLevel <= 3:
		tags = append(tags, "low-tension")
	}
	switch {
	case s.EnergyLevel >= 8:
		tags = append(tags, "high-energy")
	case s.EnergyLevel <= 3:
		tags = append(tags, "quiet")
	}

	if len(s.beats) == 0 {
		return normalizeTags(tags)
	}

	counts := make(map[BeatType]int)
	for _, b := range s.beats {
		counts[b.BeatType]++
	}
	half := len(s.beats) / 2
	if counts[BeatDialogue] > half {
		tags = append(tags, "dialogue-heavy")
	}
	if counts[BeatAction] > half {
		tags = append(tags, "action-heavy")
	}
	if counts[BeatRevelation] > 0 {
		tags = append(tags, "revelation")
	}

	var mood int
	for _, b := range s.beats {
		mood += b.MoodShift
	}
	switch {
	case mood >= 3:
		tags = append(tags, "uplifting")
	case mood <= -3:
		tags = append(tags, "darkening")
	}

	return normalizeTags(tags)
}
