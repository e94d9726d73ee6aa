package analysis

import (
	"fmt"

	"github.com/google/uuid"

	"github.com/dotcommander/outline/internal/outline"
)

const (
	wordsPerBeat        = 250
	wordCountBandPct    = 20
	climaxZonePct       = 60
	climaxMinTension    = 7
	risingActionCeiling = 0.7
	highEnergyThreshold = 7
	highEnergyRunLength = 3
	minBeatsPerScene    = 3
)

const (
	emptyChapterAdvice = "Add scenes to this chapter to begin structural analysis."
	healthyAdvice      = "Chapter structure looks balanced. Keep building on it."
)

// AnalyzeChapterStructure reports on phase balance, estimated length and the
// tension arc of a chapter, and grades its overall health. No scenes yields
// a fair-scored empty report.
func AnalyzeChapterStructure(chapterID uuid.UUID, scenes []*outline.Scene) ChapterHealthReport {
	if len(scenes) == 0 {
		return ChapterHealthReport{
			ChapterID:         chapterID,
			HealthScore:       HealthFair,
			PhaseDistribution: map[outline.StoryPhase]int{},
			TensionArc:        TensionArc{Shape: ArcFlat},
			Warnings:          []StructureWarning{},
			Recommendations:   []string{emptyChapterAdvice},
		}
	}

	sorted := outline.SortScenes(scenes)

	totalBeats := 0
	for _, s := range sorted {
		totalBeats += s.BeatCount()
	}

	tensions := make([]int, len(sorted))
	for i, s := range sorted {
		tensions[i] = s.TensionLevel
	}

	distribution := PhaseDistribution(sorted)
	arc := ClassifyTensionArc(tensions)
	warnings := detectWarnings(sorted, distribution, arc)

	return ChapterHealthReport{
		ChapterID:         chapterID,
		HealthScore:       ScoreHealth(warnings),
		PhaseDistribution: distribution,
		WordCount:         EstimateWordCount(totalBeats, len(sorted)),
		TotalScenes:       len(sorted),
		TotalBeats:        totalBeats,
		TensionArc:        arc,
		Warnings:          warnings,
		Recommendations:   recommendations(warnings),
	}
}

// PhaseDistribution counts scenes per story phase.
func PhaseDistribution(scenes []*outline.Scene) map[outline.StoryPhase]int {
	dist := make(map[outline.StoryPhase]int)
	for _, s := range scenes {
		dist[s.StoryPhase]++
	}
	return dist
}

// EstimateWordCount projects prose length from the beat count.
func EstimateWordCount(totalBeats, sceneCount int) WordCountEstimate {
	total := totalBeats * wordsPerBeat
	est := WordCountEstimate{
		TotalBeats: totalBeats,
		TotalWords: total,
		MinWords:   total * (100 - wordCountBandPct) / 100,
		MaxWords:   total * (100 + wordCountBandPct) / 100,
	}
	if total > 0 && sceneCount > 0 {
		est.PerSceneAverage = round2(float64(total) / float64(sceneCount))
	}
	return est
}

// ClassifyTensionArc describes the shape of an ordered tension sequence.
//
// The shape rules are checked in a fixed order and the first match wins.
func ClassifyTensionArc(tensions []int) TensionArc {
	if len(tensions) == 0 {
		return TensionArc{Shape: ArcFlat}
	}

	start, end := tensions[0], tensions[len(tensions)-1]
	peak, peakIndex := tensions[0], 0
	distinct := make(map[int]struct{})
	for i, t := range tensions {
		distinct[t] = struct{}{}
		if t > peak {
			peak, peakIndex = t, i
		}
	}

	// The climax zone is the final 40%: indexes from floor(0.6 * n) on.
	zone := len(tensions) * climaxZonePct / 100
	arc := TensionArc{
		StartsAt:       start,
		PeaksAt:        peak,
		EndsAt:         end,
		IsMonotonic:    len(distinct) <= 2,
		HasClearClimax: peakIndex >= zone && peak >= climaxMinTension,
	}

	switch {
	case arc.IsMonotonic:
		arc.Shape = ArcFlat
	case peak == start && peak == end:
		arc.Shape = ArcFlat
	case start < peak && end < peak:
		arc.Shape = ArcMountain
	case start < peak:
		arc.Shape = ArcRising
	case start > peak && end < peak:
		arc.Shape = ArcValley
	default:
		arc.Shape = ArcIrregular
	}
	return arc
}

// ScoreHealth grades a warning set. Rules are a priority cascade, not a sum.
func ScoreHealth(warnings []StructureWarning) HealthScore {
	counts := make(map[Severity]int)
	for _, w := range warnings {
		counts[w.Severity]++
	}

	switch {
	case counts[SeverityCritical] > 0 || counts[SeverityHigh] >= 2:
		return HealthCritical
	case counts[SeverityHigh] == 1 || counts[SeverityMedium] >= 3:
		return HealthPoor
	case counts[SeverityMedium] >= 1:
		return HealthFair
	case counts[SeverityLow] >= 2:
		return HealthGood
	default:
		return HealthExcellent
	}
}

func detectWarnings(scenes []*outline.Scene, dist map[outline.StoryPhase]int, arc TensionArc) []StructureWarning {
	warnings := []StructureWarning{}

	if dist[outline.PhaseClimax] == 0 {
		warnings = append(warnings, StructureWarning{
			Category:       CategoryStructure,
			Title:          "Missing Climax",
			Description:    "No scene in this chapter is tagged as a climax.",
			Severity:       SeverityHigh,
			SceneIDs:       []uuid.UUID{},
			Recommendation: "Add or retag a scene as the climax so the chapter has a clear peak.",
		})
	}

	if dist[outline.PhaseResolution] == 0 {
		warnings = append(warnings, StructureWarning{
			Category:       CategoryStructure,
			Title:          "Missing Resolution",
			Description:    "No scene in this chapter resolves its events.",
			Severity:       SeverityMedium,
			SceneIDs:       []uuid.UUID{},
			Recommendation: "Add a resolution scene to release tension after the climax.",
		})
	}

	rising := scenesWhere(scenes, func(s *outline.Scene) bool { return s.StoryPhase == outline.PhaseRisingAction })
	if float64(len(rising))/float64(len(scenes)) > risingActionCeiling {
		warnings = append(warnings, StructureWarning{
			Category: CategoryStructure,
			Title:    "Excessive Rising Action",
			Description: fmt.Sprintf("%d of %d scenes are rising action (over %.0f%%).",
				len(rising), len(scenes), risingActionCeiling*100),
			Severity:       SeverityMedium,
			SceneIDs:       rising,
			Recommendation: "Convert some rising-action scenes into setup, climax or resolution beats.",
		})
	}

	warnings = append(warnings, highEnergyRuns(scenes)...)

	if arc.Shape == ArcFlat && len(scenes) >= 3 {
		warnings = append(warnings, StructureWarning{
			Category:       CategoryTension,
			Title:          "Flat Tension Arc",
			Description:    fmt.Sprintf("Tension barely moves across %d scenes.", len(scenes)),
			Severity:       SeverityMedium,
			SceneIDs:       sceneIDs(scenes),
			Recommendation: "Vary tension levels so the chapter builds toward a peak.",
		})
	}

	thin := scenesWhere(scenes, func(s *outline.Scene) bool { return s.BeatCount() < minBeatsPerScene })
	if len(thin) > 0 {
		warnings = append(warnings, StructureWarning{
			Category:       CategoryContent,
			Title:          "Underdeveloped Scenes",
			Description:    fmt.Sprintf("%d scene(s) have fewer than %d beats.", len(thin), minBeatsPerScene),
			Severity:       SeverityLow,
			SceneIDs:       thin,
			Recommendation: fmt.Sprintf("Flesh out short scenes to at least %d beats.", minBeatsPerScene),
		})
	}

	return warnings
}

// highEnergyRuns reports every run of consecutive high-energy scenes long
// enough to exhaust the reader. A scene below the threshold ends the run.
func highEnergyRuns(scenes []*outline.Scene) []StructureWarning {
	var warnings []StructureWarning
	var run []uuid.UUID

	flush := func() {
		if len(run) >= highEnergyRunLength {
			warnings = append(warnings, StructureWarning{
				Category:       CategoryPacing,
				Title:          "No Breathing Room",
				Description:    fmt.Sprintf("%d consecutive scenes run at energy %d or higher.", len(run), highEnergyThreshold),
				Severity:       SeverityMedium,
				SceneIDs:       run,
				Recommendation: "Insert a lower-energy scene so readers can recover between high-intensity stretches.",
			})
		}
		run = nil
	}

	for _, s := range scenes {
		if s.EnergyLevel >= highEnergyThreshold {
			run = append(run, s.ID)
			continue
		}
		flush()
	}
	flush()

	return warnings
}

func recommendations(warnings []StructureWarning) []string {
	if len(warnings) == 0 {
		return []string{healthyAdvice}
	}
	seen := make(map[string]bool)
	var out []string
	for _, w := range warnings {
		if w.Recommendation == "" || seen[w.Recommendation] {
			continue
		}
		seen[w.Recommendation] = true
		out = append(out, w.Recommendation)
	}
	return out
}

func scenesWhere(scenes []*outline.Scene, keep func(*outline.Scene) bool) []uuid.UUID {
	ids := []uuid.UUID{}
	for _, s := range scenes {
		if keep(s) {
			ids = append(ids, s.ID)
		}
	}
	return ids
}

func sceneIDs(scenes []*outline.Scene) []uuid.UUID {
	ids := make([]uuid.UUID, len(scenes))
	for i, s := range scenes {
		ids[i] = s.ID
	}
	return ids
}
