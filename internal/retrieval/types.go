package retrieval

import (
	"context"

	"practice-service/internal/models"
)

// PoolQuery describes one bounded lookup against the content pool.
// Zero Difficulty means any difficulty; empty Mood means any mood.
type PoolQuery struct {
	Topic         models.Topic
	Grade         int
	Difficulty    int
	Mood          string
	ExcludeHashes []string
	Limit         int64
}

// Pool is the content pool collaborator. Query results are bounded by
// Limit; IncrementUsage is advisory and best-effort.
type Pool interface {
	Query(ctx context.Context, q PoolQuery) ([]models.ContentRecord, error)
	IncrementUsage(ctx context.Context, id string) error
}

// Ledger exposes the per-learner record of previously served hashes.
type Ledger interface {
	SeenHashes(ctx context.Context, learnerID string) ([]string, error)
}

const (
	// DefaultCandidateLimit bounds each pool query. Picking uniformly among
	// up to this many candidates avoids hot-record bias without a full
	// shuffle of the pool.
	DefaultCandidateLimit = 10

	// batchWindowSize bounds the unseen-candidate scan for passage grouping.
	batchWindowSize = 60

	// BatchMin and BatchMax bound the size of a served passage batch.
	BatchMin = 4
	BatchMax = 6
)
