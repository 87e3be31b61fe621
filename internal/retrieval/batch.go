package retrieval

import (
	"context"
	"fmt"

	"practice-service/internal/models"
)

// RetrieveBatch assembles an ordered passage batch for (topic, grade).
// Difficulty is not fixed for batches: the scan covers a bounded window of
// unseen candidates across all difficulties, grouped by passage key. The
// first group reaching BatchMin wins, truncated at BatchMax. A miss is
// models.ErrNotFound; the caller degrades to serving single items.
func (e *Engine) RetrieveBatch(ctx context.Context, learnerID string, topic models.Topic, grade int) ([]models.ContentRecord, error) {
	if !models.IsValidTopic(topic) {
		return nil, fmt.Errorf("%w: %q", models.ErrInvalidTopic, topic)
	}
	if !models.IsValidGrade(grade) {
		return nil, fmt.Errorf("%w: %d", models.ErrInvalidGrade, grade)
	}

	seen, err := e.ledger.SeenHashes(ctx, learnerID)
	if err != nil {
		return nil, fmt.Errorf("%w: reading ledger: %v", models.ErrStoreUnavailable, err)
	}

	window, err := e.pool.Query(ctx, PoolQuery{
		Topic:         topic,
		Grade:         grade,
		ExcludeHashes: seen,
		Limit:         batchWindowSize,
	})
	if err != nil {
		return nil, fmt.Errorf("%w: querying content pool: %v", models.ErrStoreUnavailable, err)
	}

	// Group by passage key preserving window order; standalone records
	// (empty key) cannot form a batch.
	groups := make(map[string][]models.ContentRecord)
	var keyOrder []string
	for _, record := range window {
		if record.PassageKey == "" {
			continue
		}
		if _, exists := groups[record.PassageKey]; !exists {
			keyOrder = append(keyOrder, record.PassageKey)
		}
		groups[record.PassageKey] = append(groups[record.PassageKey], record)
	}

	for _, key := range keyOrder {
		group := groups[key]
		if len(group) < BatchMin {
			continue
		}
		if len(group) > BatchMax {
			group = group[:BatchMax]
		}
		for _, record := range group {
			e.bumpUsage(ctx, record.ID)
		}
		return group, nil
	}

	return nil, models.ErrNotFound
}
