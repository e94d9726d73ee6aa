package analysis

import (
	"github.com/google/uuid"

	"github.com/dotcommander/outline/internal/outline"
)

// Severity ranks how urgently an issue or warning deserves attention.
type Severity string

const (
	SeverityLow      Severity = "low"
	SeverityMedium   Severity = "medium"
	SeverityHigh     Severity = "high"
	SeverityCritical Severity = "critical"
)

// =============================================================================
// Pacing
// =============================================================================

type IssueType string

const (
	IssueMonotonousTension IssueType = "monotonous_tension"
	IssueMonotonousEnergy  IssueType = "monotonous_energy"
	IssueTensionSpike      IssueType = "tension_spike"
	IssueEnergySpike       IssueType = "energy_spike"
)

// SceneMetrics is the pacing view of one scene.
type SceneMetrics struct {
	SceneID    uuid.UUID          `json:"scene_id"`
	Title      string             `json:"title"`
	OrderIndex int                `json:"order_index"`
	Tension    int                `json:"tension"`
	Energy     int                `json:"energy"`
	StoryPhase outline.StoryPhase `json:"story_phase"`
	BeatCount  int                `json:"beat_count"`
}

type PacingIssue struct {
	Type        IssueType   `json:"type"`
	Severity    Severity    `json:"severity"`
	SceneIDs    []uuid.UUID `json:"scene_ids"`
	Value       int         `json:"value"`
	Description string      `json:"description"`
}

// Range is an inclusive min/max pair.
type Range struct {
	Min int `json:"min"`
	Max int `json:"max"`
}

type ChapterPacingReport struct {
	ChapterID      uuid.UUID      `json:"chapter_id"`
	SceneMetrics   []SceneMetrics `json:"scene_metrics"`
	Issues         []PacingIssue  `json:"issues"`
	AverageTension float64        `json:"average_tension"`
	AverageEnergy  float64        `json:"average_energy"`
	TensionRange   Range          `json:"tension_range"`
	EnergyRange    Range          `json:"energy_range"`
}

// =============================================================================
// Structure
// =============================================================================

type HealthScore string

const (
	HealthExcellent HealthScore = "excellent"
	HealthGood      HealthScore = "good"
	HealthFair      HealthScore = "fair"
	HealthPoor      HealthScore = "poor"
	HealthCritical  HealthScore = "critical"
)

type ArcShape string

const (
	ArcFlat      ArcShape = "flat"
	ArcMountain  ArcShape = "mountain"
	ArcRising    ArcShape = "rising"
	ArcValley    ArcShape = "valley"
	ArcIrregular ArcShape = "irregular"
)

type WarningCategory string

const (
	CategoryStructure WarningCategory = "structure"
	CategoryPacing    WarningCategory = "pacing"
	CategoryTension   WarningCategory = "tension"
	CategoryContent   WarningCategory = "content"
)

type WordCountEstimate struct {
	TotalBeats      int     `json:"total_beats"`
	TotalWords      int     `json:"total_words"`
	MinWords        int     `json:"min_words"`
	MaxWords        int     `json:"max_words"`
	PerSceneAverage float64 `json:"per_scene_average"`
}

type TensionArc struct {
	StartsAt       int      `json:"starts_at"`
	PeaksAt        int      `json:"peaks_at"`
	EndsAt         int      `json:"ends_at"`
	Shape          ArcShape `json:"shape"`
	IsMonotonic    bool     `json:"is_monotonic"`
	HasClearClimax bool     `json:"has_clear_climax"`
}

type StructureWarning struct {
	Category       WarningCategory `json:"category"`
	Title          string          `json:"title"`
	Description    string          `json:"description"`
	Severity       Severity        `json:"severity"`
	SceneIDs       []uuid.UUID     `json:"scene_ids"`
	Recommendation string          `json:"recommendation"`
}

type ChapterHealthReport struct {
	ChapterID         uuid.UUID                  `json:"chapter_id"`
	HealthScore       HealthScore                `json:"health_score"`
	PhaseDistribution map[outline.StoryPhase]int `json:"phase_distribution"`
	WordCount         WordCountEstimate          `json:"word_count"`
	TotalScenes       int                        `json:"total_scenes"`
	TotalBeats        int                        `json:"total_beats"`
	TensionArc        TensionArc                 `json:"tension_arc"`
	Warnings          []StructureWarning         `json:"warnings"`
	Recommendations   []string                   `json:"recommendations"`
}
