package models

// Topic identifies a practice subject area.
type Topic string

const (
	// TopicReading is served as passage batches during the passage phase.
	TopicReading Topic = "reading"

	TopicVocabulary Topic = "vocabulary"
	TopicGrammar    Topic = "grammar"
	TopicSpelling   Topic = "spelling"
	TopicMath       Topic = "math"
	TopicScience    Topic = "science"
	TopicLogic      Topic = "logic"
)

// RotationTopics is the declared rotation order. Tie-breaks during topic
// selection follow this order, so it must stay stable.
var RotationTopics = []Topic{
	TopicVocabulary,
	TopicGrammar,
	TopicSpelling,
	TopicMath,
	TopicScience,
	TopicLogic,
}

// AllTopics covers every servable topic including the passage topic.
var AllTopics = append([]Topic{TopicReading}, RotationTopics...)

// IsValidTopic reports whether t is a known topic.
func IsValidTopic(t Topic) bool {
	for _, known := range AllTopics {
		if t == known {
			return true
		}
	}
	return false
}

// IsRotationTopic reports whether t belongs to the rotation list.
func IsRotationTopic(t Topic) bool {
	for _, known := range RotationTopics {
		if t == known {
			return true
		}
	}
	return false
}

// Grade bounds for learners and content records.
const (
	MinGrade = 1
	MaxGrade = 12
)

// IsValidGrade reports whether g is within the supported grade range.
func IsValidGrade(g int) bool {
	return g >= MinGrade && g <= MaxGrade
}
