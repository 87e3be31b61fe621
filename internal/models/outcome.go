package models

import "time"

// Outcome result kinds.
const (
	OutcomeCorrect   = "correct"
	OutcomeIncorrect = "incorrect"
	OutcomeAbandoned = "abandoned"
)

// Outcome records one answered or abandoned question. Appending an outcome is
// the only event that marks a content hash as seen for the learner.
type Outcome struct {
	ID             string    `bson:"_id,omitempty" json:"id"`
	SessionID      string    `bson:"session_id" json:"session_id"`
	LearnerID      string    `bson:"learner_id" json:"learner_id"`
	ContentHash    string    `bson:"content_hash" json:"content_hash"`
	Topic          Topic     `bson:"topic" json:"topic"`
	Result         string    `bson:"result" json:"result"`
	ElapsedSeconds int       `bson:"elapsed_seconds" json:"elapsed_seconds"`
	Sequence       int       `bson:"sequence" json:"sequence"`
	ReportedAt     time.Time `bson:"reported_at" json:"reported_at"`
}
