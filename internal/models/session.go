package models

import "time"

// Session flow phases. Transitions are owned by the flow package; this model
// is only the persisted shape.
const (
	PhasePassage  = "passage"
	PhaseRotation = "rotation"
	PhaseComplete = "complete"
)

const (
	SessionActive = "active"
	SessionEnded  = "ended"
)

// PracticeSession is one learner's active practice run. Writes go through an
// optimistic version check so a duplicated request cannot double-advance the
// flow counters.
type PracticeSession struct {
	ID                string         `bson:"_id,omitempty" json:"id"`
	LearnerID         string         `bson:"learner_id" json:"learner_id"`
	Phase             string         `bson:"phase" json:"phase"`
	PassagesCompleted int            `bson:"passages_completed" json:"passages_completed"`
	BatchRemaining    int            `bson:"batch_remaining" json:"batch_remaining"`
	RotationProgress  map[string]int `bson:"rotation_progress" json:"rotation_progress"`
	ItemsCompleted    int            `bson:"items_completed" json:"items_completed"`
	ItemBudget        int            `bson:"item_budget" json:"item_budget"`
	DurationSeconds   int            `bson:"duration_seconds" json:"duration_seconds"`
	StartTime         time.Time      `bson:"start_time" json:"start_time"`
	EndTime           time.Time      `bson:"end_time,omitempty" json:"end_time,omitempty"`
	Status            string         `bson:"status" json:"status"`
	CompletionType    string         `bson:"completion_type,omitempty" json:"completion_type,omitempty"`
	Version           int64          `bson:"version" json:"version"`
}

// Expired reports whether the wall-clock timer has elapsed at now.
func (s *PracticeSession) Expired(now time.Time) bool {
	return now.Sub(s.StartTime) >= time.Duration(s.DurationSeconds)*time.Second
}

// BudgetSpent reports whether the total item budget has been reached.
func (s *PracticeSession) BudgetSpent() bool {
	return s.ItemsCompleted >= s.ItemBudget
}
