package models

import "time"

// SessionResult is the summary written when a session ends.
type SessionResult struct {
	ID                string         `bson:"_id,omitempty" json:"id"`
	SessionID         string         `bson:"session_id" json:"session_id"`
	LearnerID         string         `bson:"learner_id" json:"learner_id"`
	ItemsCompleted    int            `bson:"items_completed" json:"items_completed"`
	CorrectCount      int            `bson:"correct_count" json:"correct_count"`
	PassagesCompleted int            `bson:"passages_completed" json:"passages_completed"`
	TopicBreakdown    map[string]int `bson:"topic_breakdown" json:"topic_breakdown"`
	DurationSeconds   int            `bson:"duration_seconds" json:"duration_seconds"`
	CompletionType    string         `bson:"completion_type" json:"completion_type"`
	CreatedAt         time.Time      `bson:"created_at" json:"created_at"`
}
