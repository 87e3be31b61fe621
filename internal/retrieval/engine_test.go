package retrieval

import (
	"context"
	"errors"
	"fmt"
	"sync"
	"testing"

	"practice-service/internal/models"
)

type fakePool struct {
	mu        sync.Mutex
	records   []models.ContentRecord
	usage     map[string]int
	queryErr  error
	lastQuery PoolQuery
}

func newFakePool(records ...models.ContentRecord) *fakePool {
	return &fakePool{records: records, usage: make(map[string]int)}
}

func (p *fakePool) Query(ctx context.Context, q PoolQuery) ([]models.ContentRecord, error) {
	p.mu.Lock()
	defer p.mu.Unlock()
	p.lastQuery = q
	if p.queryErr != nil {
		return nil, p.queryErr
	}
	excluded := make(map[string]bool, len(q.ExcludeHashes))
	for _, h := range q.ExcludeHashes {
		excluded[h] = true
	}
	var out []models.ContentRecord
	for _, r := range p.records {
		if r.Topic != q.Topic || r.Grade != q.Grade {
			continue
		}
		if q.Difficulty != 0 && r.Difficulty != q.Difficulty {
			continue
		}
		if q.Mood != "" && r.Mood != q.Mood {
			continue
		}
		if excluded[r.Hash] {
			continue
		}
		out = append(out, r)
		if int64(len(out)) >= q.Limit {
			break
		}
	}
	return out, nil
}

func (p *fakePool) IncrementUsage(ctx context.Context, id string) error {
	p.mu.Lock()
	defer p.mu.Unlock()
	p.usage[id]++
	return nil
}

type fakeLedger struct {
	seen map[string][]string
	err  error
}

func (l *fakeLedger) SeenHashes(ctx context.Context, learnerID string) ([]string, error) {
	if l.err != nil {
		return nil, l.err
	}
	return l.seen[learnerID], nil
}

func record(id string, topic models.Topic, grade, difficulty int) models.ContentRecord {
	return models.ContentRecord{
		ID:         id,
		Topic:      topic,
		Grade:      grade,
		Difficulty: difficulty,
		Hash:       "hash-" + id,
	}
}

func TestRetrieveExactMatch(t *testing.T) {
	pool := newFakePool(
		record("q1", models.TopicMath, 8, 5),
		record("q2", models.TopicMath, 8, 5),
	)
	engine := NewEngine(pool, &fakeLedger{seen: map[string][]string{}})

	got, err := engine.Retrieve(context.Background(), "learner-1", models.TopicMath, 8, 5, "")
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if got.Difficulty != 5 {
		t.Errorf("expected exact difficulty 5, got %d", got.Difficulty)
	}
	if pool.usage[got.ID] != 1 {
		t.Errorf("usage counter not incremented for %s", got.ID)
	}
}

func TestRetrieveSkipsSeenHashes(t *testing.T) {
	pool := newFakePool(
		record("q1", models.TopicMath, 8, 5),
		record("q2", models.TopicMath, 8, 5),
	)
	ledger := &fakeLedger{seen: map[string][]string{
		"learner-1": {"hash-q1"},
	}}
	engine := NewEngine(pool, ledger)

	for i := 0; i < 10; i++ {
		got, err := engine.Retrieve(context.Background(), "learner-1", models.TopicMath, 8, 5, "")
		if err != nil {
			t.Fatalf("unexpected error: %v", err)
		}
		if got.ID == "q1" {
			t.Fatal("served a hash the learner has already seen")
		}
	}
}

func TestRetrieveAdjacentDifficultyFallback(t *testing.T) {
	// Nothing at difficulty 5, three records at difficulty 4.
	pool := newFakePool(
		record("q1", models.TopicMath, 8, 4),
		record("q2", models.TopicMath, 8, 4),
		record("q3", models.TopicMath, 8, 4),
	)
	ledger := &fakeLedger{seen: map[string][]string{}}
	engine := NewEngine(pool, ledger)

	got, err := engine.Retrieve(context.Background(), "learner-1", models.TopicMath, 8, 5, "")
	if err != nil {
		t.Fatalf("expected adjacent-difficulty record, got error: %v", err)
	}
	if got.Difficulty != 4 {
		t.Errorf("expected difficulty 4 from relaxation, got %d", got.Difficulty)
	}

	// With all three marked seen the combination is exhausted.
	ledger.seen["learner-1"] = []string{"hash-q1", "hash-q2", "hash-q3"}
	_, err = engine.Retrieve(context.Background(), "learner-1", models.TopicMath, 8, 5, "")
	if !errors.Is(err, models.ErrNotFound) {
		t.Errorf("expected ErrNotFound after exhausting the pool, got %v", err)
	}
}

func TestRetrieveWidensAcrossFullRange(t *testing.T) {
	// Only content is at difficulty 8; request difficulty 1.
	pool := newFakePool(record("q1", models.TopicLogic, 6, 8))
	engine := NewEngine(pool, &fakeLedger{seen: map[string][]string{}})

	got, err := engine.Retrieve(context.Background(), "learner-1", models.TopicLogic, 6, 1, "")
	if err != nil {
		t.Fatalf("expected widening to reach difficulty 8, got error: %v", err)
	}
	if got.ID != "q1" {
		t.Errorf("unexpected record %s", got.ID)
	}
}

func TestRetrieveDropsMoodFilter(t *testing.T) {
	neutral := record("q1", models.TopicScience, 7, 3)
	pool := newFakePool(neutral)
	engine := NewEngine(pool, &fakeLedger{seen: map[string][]string{}})

	// No "playful" record exists; the mood filter is dropped before the
	// difficulty is widened.
	got, err := engine.Retrieve(context.Background(), "learner-1", models.TopicScience, 7, 3, "playful")
	if err != nil {
		t.Fatalf("expected mood relaxation to find the record, got %v", err)
	}
	if got.ID != "q1" {
		t.Errorf("unexpected record %s", got.ID)
	}
}

func TestRetrievePrefersMoodMatch(t *testing.T) {
	playful := record("q1", models.TopicScience, 7, 3)
	playful.Mood = "playful"
	neutral := record("q2", models.TopicScience, 7, 3)
	pool := newFakePool(neutral, playful)
	engine := NewEngine(pool, &fakeLedger{seen: map[string][]string{}})

	for i := 0; i < 10; i++ {
		got, err := engine.Retrieve(context.Background(), "learner-1", models.TopicScience, 7, 3, "playful")
		if err != nil {
			t.Fatalf("unexpected error: %v", err)
		}
		if got.ID != "q1" {
			t.Fatalf("mood filter ignored, got %s", got.ID)
		}
	}
}

func TestRetrieveValidation(t *testing.T) {
	engine := NewEngine(newFakePool(), &fakeLedger{})

	_, err := engine.Retrieve(context.Background(), "learner-1", "astrology", 8, 5, "")
	if !errors.Is(err, models.ErrInvalidTopic) {
		t.Errorf("expected ErrInvalidTopic, got %v", err)
	}

	_, err = engine.Retrieve(context.Background(), "learner-1", models.TopicMath, 99, 5, "")
	if !errors.Is(err, models.ErrInvalidGrade) {
		t.Errorf("expected ErrInvalidGrade, got %v", err)
	}
}

func TestRetrieveStoreFailure(t *testing.T) {
	pool := newFakePool()
	pool.queryErr = fmt.Errorf("connection refused")
	engine := NewEngine(pool, &fakeLedger{seen: map[string][]string{}})

	_, err := engine.Retrieve(context.Background(), "learner-1", models.TopicMath, 8, 5, "")
	if !errors.Is(err, models.ErrStoreUnavailable) {
		t.Errorf("expected ErrStoreUnavailable, got %v", err)
	}

	ledger := &fakeLedger{err: fmt.Errorf("timeout")}
	engine = NewEngine(newFakePool(), ledger)
	_, err = engine.Retrieve(context.Background(), "learner-1", models.TopicMath, 8, 5, "")
	if !errors.Is(err, models.ErrStoreUnavailable) {
		t.Errorf("expected ErrStoreUnavailable from ledger failure, got %v", err)
	}
}

func TestRetrieveConcurrentRequests(t *testing.T) {
	pool := newFakePool(
		record("q1", models.TopicMath, 8, 5),
		record("q2", models.TopicMath, 8, 5),
		record("q3", models.TopicMath, 8, 5),
	)
	engine := NewEngine(pool, &fakeLedger{seen: map[string][]string{}})

	var wg sync.WaitGroup
	for i := 0; i < 16; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			if _, err := engine.Retrieve(context.Background(), "learner-1", models.TopicMath, 8, 5, ""); err != nil {
				t.Errorf("concurrent retrieve failed: %v", err)
			}
		}()
	}
	wg.Wait()
}

func TestRetrieveBoundsCandidateQuery(t *testing.T) {
	pool := newFakePool(record("q1", models.TopicMath, 8, 5))
	engine := NewEngine(pool, &fakeLedger{seen: map[string][]string{}})

	if _, err := engine.Retrieve(context.Background(), "learner-1", models.TopicMath, 8, 5, ""); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if pool.lastQuery.Limit != DefaultCandidateLimit {
		t.Errorf("expected query limit %d, got %d", DefaultCandidateLimit, pool.lastQuery.Limit)
	}
}
