package flow

import "practice-service/internal/models"

type Phase string

const (
	PhasePassage  Phase = "passage"
	PhaseRotation Phase = "rotation"
	PhaseComplete Phase = "complete"
)

// State is the flow position within one practice session. It is a value: the
// transition function never mutates its input.
type State struct {
	Phase             Phase                `json:"phase"`
	PassagesCompleted int                  `json:"passages_completed"`
	BatchRemaining    int                  `json:"batch_remaining"`
	RotationProgress  map[models.Topic]int `json:"rotation_progress"`
}

// Event is the tagged union of things that can move the flow forward.
type Event interface {
	isEvent()
}

// BatchServed records that a passage batch of Size items was handed to the
// learner.
type BatchServed struct {
	Size int
}

// ItemCompleted records that one question was answered or abandoned.
type ItemCompleted struct {
	Topic models.Topic
}

func (BatchServed) isEvent()   {}
func (ItemCompleted) isEvent() {}

// Action tells the caller what a transition did, mostly for event publishing.
type Action int

const (
	ActionNone Action = iota
	// ActionPhaseAdvanced fires on the passage -> rotation move.
	ActionPhaseAdvanced
	// ActionCycleCompleted fires when the rotation phase exhausts; the
	// returned state is already reset to a fresh passage phase, since
	// sessions are time-bounded rather than phase-bounded.
	ActionCycleCompleted
)

// Config holds the flow quotas.
type Config struct {
	PassageQuota int `json:"passage_quota"`
	RotationMin  int `json:"rotation_min"`
	RotationMax  int `json:"rotation_max"`
}

// DefaultConfig returns the production quotas: two passage batches, then each
// rotation topic to at least 3 and at most 5 completions.
func DefaultConfig() *Config {
	return &Config{
		PassageQuota: 2,
		RotationMin:  3,
		RotationMax:  5,
	}
}

// NewState returns a fresh passage-phase state with zeroed counters.
func NewState() State {
	progress := make(map[models.Topic]int, len(models.RotationTopics))
	for _, topic := range models.RotationTopics {
		progress[topic] = 0
	}
	return State{
		Phase:            PhasePassage,
		RotationProgress: progress,
	}
}

func (s State) clone() State {
	progress := make(map[models.Topic]int, len(s.RotationProgress))
	for topic, count := range s.RotationProgress {
		progress[topic] = count
	}
	s.RotationProgress = progress
	return s
}
