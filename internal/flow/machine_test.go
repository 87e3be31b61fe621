package flow

import (
	"testing"

	"practice-service/internal/models"
)

func TestPassagePhaseUntilQuota(t *testing.T) {
	machine := NewMachine(nil)
	state := NewState()

	topic, batched := machine.NextTopic(state)
	if topic != models.TopicReading || !batched {
		t.Fatalf("fresh session should request a reading batch, got %s batched=%v", topic, batched)
	}

	// Complete two batches of 4 items each.
	for batch := 0; batch < 2; batch++ {
		state, _ = machine.Transition(state, BatchServed{Size: 4})
		for item := 0; item < 4; item++ {
			var action Action
			state, action = machine.Transition(state, ItemCompleted{Topic: models.TopicReading})
			isLast := batch == 1 && item == 3
			if isLast && action != ActionPhaseAdvanced {
				t.Errorf("final passage item should advance the phase, got action %d", action)
			}
			if !isLast && action != ActionNone {
				t.Errorf("batch %d item %d: unexpected action %d", batch, item, action)
			}
		}
	}

	if state.Phase != PhaseRotation {
		t.Fatalf("expected rotation phase after 2 completed batches, got %s", state.Phase)
	}
	if state.PassagesCompleted != 2 {
		t.Errorf("expected 2 passages completed, got %d", state.PassagesCompleted)
	}

	topic, batched = machine.NextTopic(state)
	if topic == models.TopicReading || batched {
		t.Errorf("after phase transition next topic must not be a passage topic, got %s batched=%v", topic, batched)
	}
}

func TestPartialBatchDoesNotCount(t *testing.T) {
	machine := NewMachine(nil)
	state := NewState()

	state, _ = machine.Transition(state, BatchServed{Size: 5})
	for i := 0; i < 4; i++ {
		state, _ = machine.Transition(state, ItemCompleted{Topic: models.TopicReading})
	}
	if state.PassagesCompleted != 0 {
		t.Errorf("batch with outstanding items counted as complete: %d", state.PassagesCompleted)
	}
	state, _ = machine.Transition(state, ItemCompleted{Topic: models.TopicReading})
	if state.PassagesCompleted != 1 {
		t.Errorf("drained batch should count once, got %d", state.PassagesCompleted)
	}
}

func rotationState() State {
	state := NewState()
	state.Phase = PhaseRotation
	state.PassagesCompleted = 2
	return state
}

func TestRotationPicksLeastCompletedBelowMinimum(t *testing.T) {
	machine := NewMachine(nil)
	state := rotationState()

	// 5 topics below the minimum, one already at it.
	state.RotationProgress[models.TopicVocabulary] = 3
	state.RotationProgress[models.TopicGrammar] = 2
	state.RotationProgress[models.TopicSpelling] = 1
	state.RotationProgress[models.TopicMath] = 2
	state.RotationProgress[models.TopicScience] = 0
	state.RotationProgress[models.TopicLogic] = 0

	topic, batched := machine.NextTopic(state)
	if batched {
		t.Fatal("rotation items are never batched")
	}
	// science and logic tie at 0; science precedes logic in declared order.
	if topic != models.TopicScience {
		t.Errorf("expected science (least completed, first in order), got %s", topic)
	}
	if topic == models.TopicVocabulary {
		t.Error("topic at minimum must not be picked while others are below it")
	}
}

func TestRotationContinuesToMaximumAfterMinimums(t *testing.T) {
	machine := NewMachine(nil)
	state := rotationState()

	for _, topic := range models.RotationTopics {
		state.RotationProgress[topic] = 3
	}
	state.RotationProgress[models.TopicMath] = 4

	topic, _ := machine.NextTopic(state)
	// All minimums met; least completed below max wins, ties by order.
	if topic != models.TopicVocabulary {
		t.Errorf("expected vocabulary, got %s", topic)
	}
}

func TestRotationExhaustionResetsCycle(t *testing.T) {
	machine := NewMachine(nil)
	state := rotationState()

	for _, topic := range models.RotationTopics {
		state.RotationProgress[topic] = 5
	}
	state.RotationProgress[models.TopicLogic] = 4

	state, action := machine.Transition(state, ItemCompleted{Topic: models.TopicLogic})
	if action != ActionCycleCompleted {
		t.Fatalf("expected cycle completion, got action %d", action)
	}
	if state.Phase != PhasePassage {
		t.Errorf("completed cycle must re-enter passage phase, got %s", state.Phase)
	}
	if state.PassagesCompleted != 0 {
		t.Errorf("counters must reset, passages=%d", state.PassagesCompleted)
	}
	for topic, count := range state.RotationProgress {
		if count != 0 {
			t.Errorf("rotation counter for %s not reset: %d", topic, count)
		}
	}
}

func TestFallbackOrder(t *testing.T) {
	machine := NewMachine(nil)
	state := rotationState()
	state.RotationProgress[models.TopicVocabulary] = 4
	state.RotationProgress[models.TopicGrammar] = 1
	state.RotationProgress[models.TopicSpelling] = 1
	state.RotationProgress[models.TopicMath] = 0

	order := machine.FallbackOrder(state)
	if order[0] != models.TopicMath {
		t.Errorf("least completed topic should lead, got %s", order[0])
	}
	// grammar and spelling tie; declared order keeps grammar first.
	foundGrammar := -1
	foundSpelling := -1
	for i, topic := range order {
		if topic == models.TopicGrammar {
			foundGrammar = i
		}
		if topic == models.TopicSpelling {
			foundSpelling = i
		}
	}
	if foundGrammar > foundSpelling {
		t.Errorf("declared order must break ties: grammar at %d, spelling at %d", foundGrammar, foundSpelling)
	}
	if order[len(order)-1] != models.TopicVocabulary {
		t.Errorf("most completed topic should be last, got %s", order[len(order)-1])
	}
}

func TestTransitionDoesNotMutateInput(t *testing.T) {
	machine := NewMachine(nil)
	state := rotationState()
	state.RotationProgress[models.TopicMath] = 2

	machine.Transition(state, ItemCompleted{Topic: models.TopicMath})
	if state.RotationProgress[models.TopicMath] != 2 {
		t.Errorf("input state mutated: math=%d", state.RotationProgress[models.TopicMath])
	}
}
