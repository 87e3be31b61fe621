// Package retrieval selects unseen content for a learner, relaxing the match
// constraints in a fixed order when the exact pool is empty.
package retrieval

import (
	"context"
	"fmt"
	"log"
	"math/rand"

	"practice-service/internal/models"
)

// Engine picks single questions from the pool. Topic-level fallback lives
// with the caller, which knows the session's completion counts; the engine
// only relaxes mood and difficulty. One engine serves all requests.
type Engine struct {
	pool           Pool
	ledger         Ledger
	candidateLimit int64
}

func NewEngine(pool Pool, ledger Ledger) *Engine {
	return &Engine{
		pool:           pool,
		ledger:         ledger,
		candidateLimit: DefaultCandidateLimit,
	}
}

// Retrieve returns an unseen record for (topic, grade, difficulty), trying
// relaxations in order: exact match, drop mood, widen difficulty one step at
// a time until [1,8] is exhausted. A miss after all relaxations is
// models.ErrNotFound so the caller can substitute another topic before
// declaring the pool exhausted.
func (e *Engine) Retrieve(ctx context.Context, learnerID string, topic models.Topic, grade, difficulty int, mood string) (*models.ContentRecord, error) {
	if !models.IsValidTopic(topic) {
		return nil, fmt.Errorf("%w: %q", models.ErrInvalidTopic, topic)
	}
	if !models.IsValidGrade(grade) {
		return nil, fmt.Errorf("%w: %d", models.ErrInvalidGrade, grade)
	}
	difficulty = clampDifficulty(difficulty)

	seen, err := e.ledger.SeenHashes(ctx, learnerID)
	if err != nil {
		return nil, fmt.Errorf("%w: reading ledger: %v", models.ErrStoreUnavailable, err)
	}

	// Exact match, with the mood filter when one was requested.
	if mood != "" {
		record, err := e.pickOne(ctx, PoolQuery{
			Topic: topic, Grade: grade, Difficulty: difficulty,
			Mood: mood, ExcludeHashes: seen, Limit: e.candidateLimit,
		})
		if err != nil || record != nil {
			return record, err
		}
	}

	// Relaxation (a): same target without the mood filter.
	record, err := e.pickOne(ctx, PoolQuery{
		Topic: topic, Grade: grade, Difficulty: difficulty,
		ExcludeHashes: seen, Limit: e.candidateLimit,
	})
	if err != nil || record != nil {
		return record, err
	}

	// Relaxation (b): widen difficulty one step at a time, easier first.
	for offset := 1; offset < models.MaxDifficulty; offset++ {
		for _, candidate := range []int{difficulty - offset, difficulty + offset} {
			if candidate < models.MinDifficulty || candidate > models.MaxDifficulty {
				continue
			}
			record, err := e.pickOne(ctx, PoolQuery{
				Topic: topic, Grade: grade, Difficulty: candidate,
				ExcludeHashes: seen, Limit: e.candidateLimit,
			})
			if err != nil || record != nil {
				return record, err
			}
		}
	}

	return nil, models.ErrNotFound
}

// pickOne runs one bounded query and selects uniformly among its candidates.
// A nil record with nil error means the query matched nothing.
func (e *Engine) pickOne(ctx context.Context, q PoolQuery) (*models.ContentRecord, error) {
	candidates, err := e.pool.Query(ctx, q)
	if err != nil {
		return nil, fmt.Errorf("%w: querying content pool: %v", models.ErrStoreUnavailable, err)
	}
	if len(candidates) == 0 {
		return nil, nil
	}

	// Top-level rand is safe for concurrent use.
	record := candidates[rand.Intn(len(candidates))]
	e.bumpUsage(ctx, record.ID)
	return &record, nil
}

// bumpUsage increments a record's usage counter. The counter is advisory, so
// failures are logged and dropped.
func (e *Engine) bumpUsage(ctx context.Context, id string) {
	if err := e.pool.IncrementUsage(ctx, id); err != nil {
		log.Printf("usage increment failed for %s: %v", id, err)
	}
}

func clampDifficulty(d int) int {
	if d < models.MinDifficulty {
		return models.MinDifficulty
	}
	if d > models.MaxDifficulty {
		return models.MaxDifficulty
	}
	return d
}
