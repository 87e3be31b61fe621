package retrieval

import (
	"context"
	"errors"
	"fmt"
	"testing"

	"practice-service/internal/models"
)

func passageRecord(id, passageKey string, grade int) models.ContentRecord {
	r := record(id, models.TopicReading, grade, 3)
	r.PassageKey = passageKey
	return r
}

func TestRetrieveBatchGroupsByPassage(t *testing.T) {
	pool := newFakePool(
		passageRecord("p1", "passage-a", 8),
		passageRecord("p2", "passage-a", 8),
		passageRecord("p3", "passage-a", 8),
		passageRecord("p4", "passage-a", 8),
		passageRecord("p5", "passage-b", 8),
	)
	engine := NewEngine(pool, &fakeLedger{seen: map[string][]string{}})

	batch, err := engine.RetrieveBatch(context.Background(), "learner-1", models.TopicReading, 8)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if len(batch) != 4 {
		t.Fatalf("expected batch of 4, got %d", len(batch))
	}
	for i, record := range batch {
		if record.PassageKey != "passage-a" {
			t.Errorf("item %d from wrong passage: %s", i, record.PassageKey)
		}
		if pool.usage[record.ID] != 1 {
			t.Errorf("usage not incremented for %s", record.ID)
		}
	}
	// Window order preserved.
	if batch[0].ID != "p1" || batch[3].ID != "p4" {
		t.Errorf("batch order not preserved: %s .. %s", batch[0].ID, batch[3].ID)
	}
}

func TestRetrieveBatchTruncatesAtMaximum(t *testing.T) {
	var records []models.ContentRecord
	for i := 0; i < 8; i++ {
		records = append(records, passageRecord(fmt.Sprintf("p%d", i), "passage-a", 8))
	}
	pool := newFakePool(records...)
	engine := NewEngine(pool, &fakeLedger{seen: map[string][]string{}})

	batch, err := engine.RetrieveBatch(context.Background(), "learner-1", models.TopicReading, 8)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if len(batch) != BatchMax {
		t.Errorf("expected truncation to %d, got %d", BatchMax, len(batch))
	}
}

func TestRetrieveBatchBelowMinimumIsNotFound(t *testing.T) {
	pool := newFakePool(
		passageRecord("p1", "passage-a", 8),
		passageRecord("p2", "passage-a", 8),
		passageRecord("p3", "passage-a", 8),
		passageRecord("p4", "passage-b", 8),
	)
	engine := NewEngine(pool, &fakeLedger{seen: map[string][]string{}})

	_, err := engine.RetrieveBatch(context.Background(), "learner-1", models.TopicReading, 8)
	if !errors.Is(err, models.ErrNotFound) {
		t.Errorf("expected ErrNotFound when no group reaches %d, got %v", BatchMin, err)
	}
}

func TestRetrieveBatchSkipsStandaloneRecords(t *testing.T) {
	pool := newFakePool(
		passageRecord("s1", "", 8),
		passageRecord("s2", "", 8),
		passageRecord("s3", "", 8),
		passageRecord("s4", "", 8),
	)
	engine := NewEngine(pool, &fakeLedger{seen: map[string][]string{}})

	_, err := engine.RetrieveBatch(context.Background(), "learner-1", models.TopicReading, 8)
	if !errors.Is(err, models.ErrNotFound) {
		t.Errorf("standalone records must not form a batch, got %v", err)
	}
}

func TestRetrieveBatchExcludesSeen(t *testing.T) {
	pool := newFakePool(
		passageRecord("p1", "passage-a", 8),
		passageRecord("p2", "passage-a", 8),
		passageRecord("p3", "passage-a", 8),
		passageRecord("p4", "passage-a", 8),
	)
	ledger := &fakeLedger{seen: map[string][]string{
		"learner-1": {"hash-p1"},
	}}
	engine := NewEngine(pool, ledger)

	// With one item seen the group shrinks below the minimum.
	_, err := engine.RetrieveBatch(context.Background(), "learner-1", models.TopicReading, 8)
	if !errors.Is(err, models.ErrNotFound) {
		t.Errorf("expected ErrNotFound once the group falls below minimum, got %v", err)
	}
}

func TestRetrieveBatchPicksFirstQualifyingGroup(t *testing.T) {
	pool := newFakePool(
		passageRecord("a1", "passage-a", 8),
		passageRecord("b1", "passage-b", 8),
		passageRecord("b2", "passage-b", 8),
		passageRecord("b3", "passage-b", 8),
		passageRecord("b4", "passage-b", 8),
		passageRecord("a2", "passage-a", 8),
	)
	engine := NewEngine(pool, &fakeLedger{seen: map[string][]string{}})

	batch, err := engine.RetrieveBatch(context.Background(), "learner-1", models.TopicReading, 8)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	// passage-a appears first in the window but never qualifies; passage-b is
	// the first group to reach the minimum.
	if batch[0].PassageKey != "passage-b" {
		t.Errorf("expected first qualifying group passage-b, got %s", batch[0].PassageKey)
	}
}
