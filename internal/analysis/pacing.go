package analysis

import (
	"fmt"
	"math"

	"github.com/google/uuid"

	"github.com/dotcommander/outline/internal/outline"
)

const (
	// monotonyRunLength is the shortest run of equal levels reported.
	monotonyRunLength = 3
	// spikeThreshold is the largest adjacent change that is not a spike.
	spikeThreshold = 4
)

// CalculateChapterPacing measures tension and energy rhythm across a
// chapter's scenes. Scenes are sorted by position first; the caller's order
// is ignored. No scenes yields a zeroed report.
func CalculateChapterPacing(chapterID uuid.UUID, scenes []*outline.Scene) ChapterPacingReport {
	report := ChapterPacingReport{
		ChapterID:    chapterID,
		SceneMetrics: []SceneMetrics{},
		Issues:       []PacingIssue{},
	}
	if len(scenes) == 0 {
		return report
	}

	sorted := outline.SortScenes(scenes)
	metrics := make([]SceneMetrics, 0, len(sorted))
	for _, s := range sorted {
		metrics = append(metrics, MetricsFor(s))
	}

	var tensionSum, energySum int
	report.TensionRange = Range{Min: metrics[0].Tension, Max: metrics[0].Tension}
	report.EnergyRange = Range{Min: metrics[0].Energy, Max: metrics[0].Energy}
	for _, m := range metrics {
		tensionSum += m.Tension
		energySum += m.Energy
		report.TensionRange.Min = min(report.TensionRange.Min, m.Tension)
		report.TensionRange.Max = max(report.TensionRange.Max, m.Tension)
		report.EnergyRange.Min = min(report.EnergyRange.Min, m.Energy)
		report.EnergyRange.Max = max(report.EnergyRange.Max, m.Energy)
	}

	n := float64(len(metrics))
	report.SceneMetrics = metrics
	report.AverageTension = round2(float64(tensionSum) / n)
	report.AverageEnergy = round2(float64(energySum) / n)
	report.Issues = AnalyzePacingIssues(metrics)
	return report
}

// MetricsFor extracts the pacing view of a single scene.
func MetricsFor(s *outline.Scene) SceneMetrics {
	return SceneMetrics{
		SceneID:    s.ID,
		Title:      s.Title,
		OrderIndex: s.OrderIndex,
		Tension:    s.TensionLevel,
		Energy:     s.EnergyLevel,
		StoryPhase: s.StoryPhase,
		BeatCount:  s.BeatCount(),
	}
}

// AnalyzePacingIssues finds monotonous runs and sudden spikes in already
// ordered metrics. Tension and energy are checked independently, so one pair
// of scenes can carry several issues.
func AnalyzePacingIssues(metrics []SceneMetrics) []PacingIssue {
	issues := []PacingIssue{}
	issues = append(issues, detectMonotony(metrics, IssueMonotonousTension, "tension", tensionOf)...)
	issues = append(issues, detectMonotony(metrics, IssueMonotonousEnergy, "energy", energyOf)...)
	issues = append(issues, detectSpikes(metrics, IssueTensionSpike, "tension", tensionOf)...)
	issues = append(issues, detectSpikes(metrics, IssueEnergySpike, "energy", energyOf)...)
	return issues
}

func tensionOf(m SceneMetrics) int { return m.Tension }
func energyOf(m SceneMetrics) int  { return m.Energy }

func detectMonotony(metrics []SceneMetrics, kind IssueType, label string, level func(SceneMetrics) int) []PacingIssue {
	var issues []PacingIssue
	var run []uuid.UUID
	var runLevel int

	flush := func() {
		if len(run) < monotonyRunLength {
			return
		}
		severity := SeverityMedium
		if len(run) > monotonyRunLength {
			severity = SeverityHigh
		}
		issues = append(issues, PacingIssue{
			Type:        kind,
			Severity:    severity,
			SceneIDs:    run,
			Value:       runLevel,
			Description: fmt.Sprintf("%d consecutive scenes share %s level %d", len(run), label, runLevel),
		})
	}

	for i, m := range metrics {
		v := level(m)
		if i > 0 && v == runLevel {
			run = append(run, m.SceneID)
			continue
		}
		flush()
		run = []uuid.UUID{m.SceneID}
		runLevel = v
	}
	// A run that reaches the last scene is still a run.
	flush()

	return issues
}

func detectSpikes(metrics []SceneMetrics, kind IssueType, label string, level func(SceneMetrics) int) []PacingIssue {
	var issues []PacingIssue
	for i := 1; i < len(metrics); i++ {
		prev, cur := metrics[i-1], metrics[i]
		delta := level(cur) - level(prev)
		size := abs(delta)
		if size <= spikeThreshold {
			continue
		}

		severity := SeverityMedium
		if size == spikeThreshold+1 {
			severity = SeverityLow
		}
		direction := "rises"
		if delta < 0 {
			direction = "drops"
		}
		issues = append(issues, PacingIssue{
			Type:     kind,
			Severity: severity,
			SceneIDs: []uuid.UUID{prev.SceneID, cur.SceneID},
			Value:    delta,
			Description: fmt.Sprintf("%s %s from %d to %d between %q and %q",
				label, direction, level(prev), level(cur), prev.Title, cur.Title),
		})
	}
	return issues
}

func abs(n int) int {
	if n < 0 {
		return -n
	}
	return n
}

func round2(f float64) float64 {
	return math.Round(f*100) / 100
}
