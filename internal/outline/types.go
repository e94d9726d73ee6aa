package outline

// PublicationStatus is the lifecycle state of a Story or Chapter.
type PublicationStatus string

const (
	PublicationDraft     PublicationStatus = "draft"
	PublicationPublished PublicationStatus = "published"
)

func (s PublicationStatus) Valid() bool {
	switch s {
	case PublicationDraft, PublicationPublished:
		return true
	}
	return false
}

// SceneStatus is the editorial state of a Scene.
type SceneStatus string

const (
	SceneDraft      SceneStatus = "draft"
	SceneGenerating SceneStatus = "generating"
	SceneReview     SceneStatus = "review"
	ScenePublished  SceneStatus = "published"
)

func (s SceneStatus) Valid() bool {
	switch s {
	case SceneDraft, SceneGenerating, SceneReview, ScenePublished:
		return true
	}
	return false
}

// StoryPhase tags the narrative function a scene serves.
type StoryPhase string

const (
	PhaseSetup            StoryPhase = "setup"
	PhaseIncitingIncident StoryPhase = "inciting_incident"
	PhaseRisingAction     StoryPhase = "rising_action"
	PhaseClimax           StoryPhase = "climax"
	PhaseResolution       StoryPhase = "resolution"
)

// StoryPhases lists every phase in narrative order.
var StoryPhases = []StoryPhase{
	PhaseSetup,
	PhaseIncitingIncident,
	PhaseRisingAction,
	PhaseClimax,
	PhaseResolution,
}

func (p StoryPhase) Valid() bool {
	for _, v := range StoryPhases {
		if p == v {
			return true
		}
	}
	return false
}

// BeatType classifies what a beat does.
type BeatType string

const (
	BeatAction      BeatType = "action"
	BeatDialogue    BeatType = "dialogue"
	BeatReaction    BeatType = "reaction"
	BeatRevelation  BeatType = "revelation"
	BeatTransition  BeatType = "transition"
	BeatDescription BeatType = "description"
)

func (t BeatType) Valid() bool {
	switch t {
	case BeatAction, BeatDialogue, BeatReaction, BeatRevelation, BeatTransition, BeatDescription:
		return true
	}
	return false
}

type ConflictType string

const (
	ConflictInternal      ConflictType = "internal"
	ConflictExternal      ConflictType = "external"
	ConflictInterpersonal ConflictType = "interpersonal"
)

func (t ConflictType) Valid() bool {
	switch t {
	case ConflictInternal, ConflictExternal, ConflictInterpersonal:
		return true
	}
	return false
}

type Stakes string

const (
	StakesLow      Stakes = "low"
	StakesMedium   Stakes = "medium"
	StakesHigh     Stakes = "high"
	StakesCritical Stakes = "critical"
)

func (s Stakes) Valid() bool {
	switch s {
	case StakesLow, StakesMedium, StakesHigh, StakesCritical:
		return true
	}
	return false
}

type ResolutionStatus string

const (
	ResolutionUnresolved ResolutionStatus = "unresolved"
	ResolutionEscalating ResolutionStatus = "escalating"
	ResolutionResolved   ResolutionStatus = "resolved"
)

func (s ResolutionStatus) Valid() bool {
	switch s {
	case ResolutionUnresolved, ResolutionEscalating, ResolutionResolved:
		return true
	}
	return false
}

type PlotlineStatus string

const (
	PlotlineActive    PlotlineStatus = "active"
	PlotlineResolved  PlotlineStatus = "resolved"
	PlotlineAbandoned PlotlineStatus = "abandoned"
)

func (s PlotlineStatus) Valid() bool {
	switch s {
	case PlotlineActive, PlotlineResolved, PlotlineAbandoned:
		return true
	}
	return false
}

type ForeshadowingStatus string

const (
	ForeshadowingPlanted   ForeshadowingStatus = "planted"
	ForeshadowingPaidOff   ForeshadowingStatus = "paid_off"
	ForeshadowingAbandoned ForeshadowingStatus = "abandoned"
)

func (s ForeshadowingStatus) Valid() bool {
	switch s {
	case ForeshadowingPlanted, ForeshadowingPaidOff, ForeshadowingAbandoned:
		return true
	}
	return false
}

// Level bounds shared by tension and energy.
const (
	MinLevel     = 1
	MaxLevel     = 10
	MinMoodShift = -5
	MaxMoodShift = 5
)
