package flow

import (
	"sort"

	"practice-service/internal/models"
)

// Machine sequences topics across a practice session. All methods are pure
// over the passed state, so the session store stays out of the tests.
type Machine struct {
	config *Config
}

func NewMachine(config *Config) *Machine {
	if config == nil {
		config = DefaultConfig()
	}
	return &Machine{config: config}
}

// NextTopic returns the topic to request next and whether it should be served
// as a passage batch.
func (m *Machine) NextTopic(s State) (models.Topic, bool) {
	if s.Phase == PhasePassage {
		return models.TopicReading, true
	}

	if topic, ok := m.pickRotationTopic(s, m.config.RotationMin); ok {
		return topic, false
	}
	if topic, ok := m.pickRotationTopic(s, m.config.RotationMax); ok {
		return topic, false
	}
	// Transition resets an exhausted rotation, so a candidate always exists
	// for states it produced. Fresh cycle otherwise.
	return models.TopicReading, true
}

// pickRotationTopic returns the least-completed topic still below limit.
// Ties break by the declared rotation order.
func (m *Machine) pickRotationTopic(s State, limit int) (models.Topic, bool) {
	best := models.Topic("")
	bestCount := 0
	for _, topic := range models.RotationTopics {
		count := s.RotationProgress[topic]
		if count >= limit {
			continue
		}
		if best == "" || count < bestCount {
			best = topic
			bestCount = count
		}
	}
	return best, best != ""
}

// FallbackOrder lists rotation topics by retrieval-fallback priority:
// least completed in this session first, declared order on ties.
func (m *Machine) FallbackOrder(s State) []models.Topic {
	topics := make([]models.Topic, len(models.RotationTopics))
	copy(topics, models.RotationTopics)
	sort.SliceStable(topics, func(i, j int) bool {
		return s.RotationProgress[topics[i]] < s.RotationProgress[topics[j]]
	})
	return topics
}

// Transition applies one event and returns the next state plus the action
// taken. The input state is never mutated.
func (m *Machine) Transition(s State, e Event) (State, Action) {
	next := s.clone()

	switch event := e.(type) {
	case BatchServed:
		next.BatchRemaining = event.Size
		return next, ActionNone

	case ItemCompleted:
		switch next.Phase {
		case PhasePassage:
			return m.completePassageItem(next)
		case PhaseRotation:
			return m.completeRotationItem(next, event.Topic)
		}
	}
	return next, ActionNone
}

func (m *Machine) completePassageItem(next State) (State, Action) {
	if next.BatchRemaining > 0 {
		next.BatchRemaining--
	}
	if next.BatchRemaining > 0 {
		return next, ActionNone
	}

	// A drained batch counts as one completed unit; single items served in
	// degraded mode (no batch outstanding) count the same way.
	next.PassagesCompleted++
	if next.PassagesCompleted >= m.config.PassageQuota {
		next.Phase = PhaseRotation
		return next, ActionPhaseAdvanced
	}
	return next, ActionNone
}

func (m *Machine) completeRotationItem(next State, topic models.Topic) (State, Action) {
	if models.IsRotationTopic(topic) {
		next.RotationProgress[topic]++
	}

	for _, t := range models.RotationTopics {
		if next.RotationProgress[t] < m.config.RotationMax {
			return next, ActionNone
		}
	}

	// Every topic reached its maximum: the cycle is complete. Counters reset
	// and the flow re-enters the passage phase for a fresh cycle.
	return NewState(), ActionCycleCompleted
}
