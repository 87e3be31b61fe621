package models

import "errors"

// Engine error taxonomy. Handlers map these onto HTTP responses; the engine
// itself never retries (except the single CAS retry on session writes).
var (
	// ErrPoolExhausted means no content matched anywhere after full
	// relaxation. Retryable: the pool refills offline.
	ErrPoolExhausted = errors.New("content pool exhausted")

	// ErrNotFound is the narrow miss before caller-level topic fallback,
	// also used for missing sessions/learners.
	ErrNotFound = errors.New("not found")

	ErrInvalidTopic = errors.New("invalid topic")
	ErrInvalidGrade = errors.New("invalid grade")

	// ErrForbidden means the caller is not the learner the session
	// belongs to.
	ErrForbidden = errors.New("access denied")

	// ErrRateLimited carries a retry-after hint at the handler layer.
	ErrRateLimited = errors.New("rate limited")

	// ErrStoreUnavailable wraps collaborator I/O failures and unresolved
	// session write conflicts.
	ErrStoreUnavailable = errors.New("store unavailable")

	// ErrSessionEnded is returned once the wall clock or item budget for a
	// session has been spent.
	ErrSessionEnded = errors.New("session ended")

	// ErrConflict is the internal signal for an optimistic-lock miss on a
	// session write. The service retries once, then surfaces
	// ErrStoreUnavailable.
	ErrConflict = errors.New("session write conflict")
)
