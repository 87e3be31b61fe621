package service

import (
	"context"
	"fmt"
	"time"

	"practice-service/internal/models"
)

// Store interfaces consumed by PracticeService. The Mongo repositories
// satisfy them; tests plug in in-memory fakes.

type SessionStore interface {
	Create(ctx context.Context, session *models.PracticeSession) error
	FindByID(ctx context.Context, id string) (*models.PracticeSession, error)
	UpdateCAS(ctx context.Context, session *models.PracticeSession) error
	End(ctx context.Context, id, completionType string) error
}

type LearnerStore interface {
	Ensure(ctx context.Context, id string, grade int) (*models.Learner, error)
	FindByID(ctx context.Context, id string) (*models.Learner, error)
	SetProficiency(ctx context.Context, id string, topic models.Topic, score float64) error
	AppendSeenHash(ctx context.Context, id, hash string) error
}

type ContentStore interface {
	FindByHash(ctx context.Context, hash string) (*models.ContentRecord, error)
}

type OutcomeStore interface {
	Create(ctx context.Context, outcome *models.Outcome) error
	FindBySession(ctx context.Context, sessionID string) ([]models.Outcome, error)
	CountCorrect(ctx context.Context, sessionID string) (int, error)
}

type ResultStore interface {
	Create(ctx context.Context, result *models.SessionResult) error
	FindBySession(ctx context.Context, sessionID string) (*models.SessionResult, error)
}

// Serving modes for NextItem.
const (
	ModeSingle = "single"
	ModeBatch  = "batch"
)

// NextItem is what RequestNext hands the caller: either one question or an
// ordered passage batch.
type NextItem struct {
	Mode  string                 `json:"mode"`
	Topic models.Topic           `json:"topic"`
	Item  *models.ContentRecord  `json:"item,omitempty"`
	Batch []models.ContentRecord `json:"batch,omitempty"`
}

// OutcomeReport is the caller's account of what happened to a served item.
type OutcomeReport struct {
	ContentHash    string `json:"content_hash"`
	Result         string `json:"result"`
	ElapsedSeconds int    `json:"elapsed_seconds"`
}

// OutcomeAck summarizes the state after an outcome was applied.
type OutcomeAck struct {
	Result         string  `json:"result"`
	NewProficiency float64 `json:"new_proficiency"`
	Phase          string  `json:"phase"`
	CycleCompleted bool    `json:"cycle_completed"`
	SessionEnded   bool    `json:"session_ended"`
}

// RateLimitError carries the retry-after hint. errors.Is matches it against
// models.ErrRateLimited.
type RateLimitError struct {
	RetryAfter time.Duration
}

func (e *RateLimitError) Error() string {
	return fmt.Sprintf("rate limited, retry after %s", e.RetryAfter)
}

func (e *RateLimitError) Is(target error) bool {
	return target == models.ErrRateLimited
}

// Session completion kinds recorded on termination.
const (
	CompletionExplicit = "explicit"
	CompletionTimer    = "timer_elapsed"
	CompletionBudget   = "budget_reached"
)
