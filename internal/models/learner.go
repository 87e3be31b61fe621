package models

import "time"

// DefaultProficiency is the starting per-topic score for a new learner.
const DefaultProficiency = 5.0

// Learner is the per-user profile. Proficiency is keyed by topic and moves
// only through the proficiency model after an outcome; the seen-hash list is
// append-only and consulted on every retrieval.
type Learner struct {
	ID          string             `bson:"_id,omitempty" json:"id"`
	Grade       int                `bson:"grade" json:"grade"`
	Proficiency map[string]float64 `bson:"proficiency" json:"proficiency"`
	SeenHashes  []string           `bson:"seen_hashes" json:"seen_hashes"`
	CreatedAt   time.Time          `bson:"created_at" json:"created_at"`
	UpdatedAt   time.Time          `bson:"updated_at" json:"updated_at"`
}

// ProficiencyFor returns the learner's score for a topic, falling back to the
// default for topics never practiced.
func (l *Learner) ProficiencyFor(topic Topic) float64 {
	if l.Proficiency == nil {
		return DefaultProficiency
	}
	if score, ok := l.Proficiency[string(topic)]; ok {
		return score
	}
	return DefaultProficiency
}
