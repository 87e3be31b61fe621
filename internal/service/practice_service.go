package service

import (
	"context"
	"errors"
	"fmt"
	"log"
	"time"

	"practice-service/internal/flow"
	"practice-service/internal/models"
	"practice-service/internal/proficiency"
	"practice-service/internal/ratelimit"
	"practice-service/internal/retrieval"
)

// Config bounds one practice session. Sessions are time- and budget-bounded,
// never phase-bounded: the flow cycles until one of these limits is hit.
type Config struct {
	SessionDuration time.Duration
	ItemBudget      int
}

func DefaultConfig() *Config {
	return &Config{
		SessionDuration: 25 * time.Minute,
		ItemBudget:      40,
	}
}

// PracticeService orchestrates sessions: it asks the flow machine for the
// next topic, retrieves content through the engine, and applies outcomes to
// the ledger, the proficiency scores, and the session flow.
type PracticeService struct {
	sessions SessionStore
	learners LearnerStore
	content  ContentStore
	outcomes OutcomeStore
	results  ResultStore
	engine   *retrieval.Engine
	machine  *flow.Machine
	limiter  ratelimit.Limiter
	config   *Config
	now      func() time.Time
}

func NewPracticeService(
	sessions SessionStore,
	learners LearnerStore,
	content ContentStore,
	outcomes OutcomeStore,
	results ResultStore,
	engine *retrieval.Engine,
	limiter ratelimit.Limiter,
	config *Config,
) *PracticeService {
	if config == nil {
		config = DefaultConfig()
	}
	return &PracticeService{
		sessions: sessions,
		learners: learners,
		content:  content,
		outcomes: outcomes,
		results:  results,
		engine:   engine,
		machine:  flow.NewMachine(nil),
		limiter:  limiter,
		config:   config,
		now:      time.Now,
	}
}

// StartSession creates the learner profile on first contact and opens a
// fresh session in the passage phase.
func (s *PracticeService) StartSession(ctx context.Context, learnerID string, grade int) (*models.PracticeSession, error) {
	if !models.IsValidGrade(grade) {
		return nil, fmt.Errorf("%w: %d", models.ErrInvalidGrade, grade)
	}
	if _, err := s.learners.Ensure(ctx, learnerID, grade); err != nil {
		return nil, fmt.Errorf("%w: ensuring learner: %v", models.ErrStoreUnavailable, err)
	}

	session := &models.PracticeSession{
		LearnerID:       learnerID,
		ItemBudget:      s.config.ItemBudget,
		DurationSeconds: int(s.config.SessionDuration.Seconds()),
		StartTime:       s.now(),
		Status:          models.SessionActive,
	}
	applyFlowState(session, flow.NewState())

	if err := s.sessions.Create(ctx, session); err != nil {
		return nil, fmt.Errorf("%w: creating session: %v", models.ErrStoreUnavailable, err)
	}
	return session, nil
}

// RequestNext returns the next item (or passage batch) for the session.
// The served content is not marked seen here: only ReportOutcome burns a
// hash, so a client retry of an unacknowledged serve is harmless.
func (s *PracticeService) RequestNext(ctx context.Context, learnerID, sessionID, mood string) (*NextItem, error) {
	allowed, retryAfter, err := s.limiter.Allow(ctx, learnerID)
	if err != nil {
		// The limiter is advisory; fail open rather than block practice.
		log.Printf("rate limiter unavailable for %s: %v", learnerID, err)
	} else if !allowed {
		return nil, &RateLimitError{RetryAfter: retryAfter}
	}

	session, err := s.loadActiveSession(ctx, learnerID, sessionID)
	if err != nil {
		return nil, err
	}
	if err := s.terminateIfSpent(ctx, session); err != nil {
		return nil, err
	}

	learner, err := s.learners.FindByID(ctx, learnerID)
	if err != nil {
		if errors.Is(err, models.ErrNotFound) {
			return nil, err
		}
		return nil, fmt.Errorf("%w: loading learner: %v", models.ErrStoreUnavailable, err)
	}

	state := flowState(session)
	topic, batched := s.machine.NextTopic(state)

	if batched {
		batch, err := s.engine.RetrieveBatch(ctx, learnerID, topic, learner.Grade)
		if err == nil {
			if _, err := s.updateSession(ctx, session, func(sess *models.PracticeSession) flow.Action {
				next, action := s.machine.Transition(flowState(sess), flow.BatchServed{Size: len(batch)})
				applyFlowState(sess, next)
				return action
			}); err != nil {
				return nil, err
			}
			return &NextItem{Mode: ModeBatch, Topic: topic, Batch: batch}, nil
		}
		if !errors.Is(err, models.ErrNotFound) {
			return nil, err
		}
		// Degraded mode: no assemblable passage group, serve single reading
		// items one at a time.
	}

	item, err := s.retrieveSingle(ctx, learner, topic, mood)
	if err == nil {
		return &NextItem{Mode: ModeSingle, Topic: topic, Item: item}, nil
	}
	if !errors.Is(err, models.ErrNotFound) {
		return nil, err
	}
	return s.fallbackAcrossTopics(ctx, learner, state, topic, mood)
}

// retrieveSingle maps the learner's proficiency to a difficulty bucket and
// asks the engine for one item.
func (s *PracticeService) retrieveSingle(ctx context.Context, learner *models.Learner, topic models.Topic, mood string) (*models.ContentRecord, error) {
	difficulty := proficiency.ToDifficulty(
		learner.ProficiencyFor(topic),
		proficiency.GradeMultiplier(learner.Grade),
	)
	return s.engine.Retrieve(ctx, learner.ID, topic, learner.Grade, difficulty, mood)
}

// fallbackAcrossTopics is relaxation step (c): substitute a different topic,
// least completed in this session first, declared order on ties. Only when
// every topic misses does the pool count as exhausted.
func (s *PracticeService) fallbackAcrossTopics(ctx context.Context, learner *models.Learner, state flow.State, attempted models.Topic, mood string) (*NextItem, error) {
	for _, topic := range s.machine.FallbackOrder(state) {
		if topic == attempted {
			continue
		}
		item, err := s.retrieveSingle(ctx, learner, topic, mood)
		if err == nil {
			return &NextItem{Mode: ModeSingle, Topic: topic, Item: item}, nil
		}
		if !errors.Is(err, models.ErrNotFound) {
			return nil, err
		}
	}
	return nil, models.ErrPoolExhausted
}

// ReportOutcome applies an answered or abandoned item: marks the hash seen,
// moves the proficiency score, appends the outcome history, and advances the
// session flow. This is the only place the dedup ledger grows.
func (s *PracticeService) ReportOutcome(ctx context.Context, learnerID, sessionID string, report OutcomeReport) (*OutcomeAck, error) {
	switch report.Result {
	case models.OutcomeCorrect, models.OutcomeIncorrect, models.OutcomeAbandoned:
	default:
		return nil, fmt.Errorf("unknown outcome result %q", report.Result)
	}

	session, err := s.loadActiveSession(ctx, learnerID, sessionID)
	if err != nil {
		return nil, err
	}

	record, err := s.content.FindByHash(ctx, report.ContentHash)
	if err != nil {
		if errors.Is(err, models.ErrNotFound) {
			return nil, err
		}
		return nil, fmt.Errorf("%w: loading content: %v", models.ErrStoreUnavailable, err)
	}

	learner, err := s.learners.FindByID(ctx, learnerID)
	if err != nil {
		if errors.Is(err, models.ErrNotFound) {
			return nil, err
		}
		return nil, fmt.Errorf("%w: loading learner: %v", models.ErrStoreUnavailable, err)
	}

	if err := s.learners.AppendSeenHash(ctx, learnerID, record.Hash); err != nil {
		return nil, fmt.Errorf("%w: marking seen: %v", models.ErrStoreUnavailable, err)
	}

	ack := &OutcomeAck{
		Result:         report.Result,
		NewProficiency: learner.ProficiencyFor(record.Topic),
	}

	// Abandonment burns the hash but does not move the score.
	if report.Result != models.OutcomeAbandoned {
		newScore := proficiency.Update(
			learner.ProficiencyFor(record.Topic),
			report.Result == models.OutcomeCorrect,
		)
		if err := s.learners.SetProficiency(ctx, learnerID, record.Topic, newScore); err != nil {
			return nil, fmt.Errorf("%w: updating proficiency: %v", models.ErrStoreUnavailable, err)
		}
		ack.NewProficiency = newScore
	}

	action, err := s.updateSession(ctx, session, func(sess *models.PracticeSession) flow.Action {
		next, action := s.machine.Transition(flowState(sess), flow.ItemCompleted{Topic: record.Topic})
		applyFlowState(sess, next)
		sess.ItemsCompleted++
		return action
	})
	if err != nil {
		return nil, err
	}

	// Sequence carries the committed items count, so the flow advance
	// happens before the history row is written.
	outcome := &models.Outcome{
		SessionID:      sessionID,
		LearnerID:      learnerID,
		ContentHash:    record.Hash,
		Topic:          record.Topic,
		Result:         report.Result,
		ElapsedSeconds: report.ElapsedSeconds,
		Sequence:       session.ItemsCompleted,
		ReportedAt:     s.now(),
	}
	if err := s.outcomes.Create(ctx, outcome); err != nil {
		return nil, fmt.Errorf("%w: recording outcome: %v", models.ErrStoreUnavailable, err)
	}

	ack.Phase = session.Phase
	ack.CycleCompleted = action == flow.ActionCycleCompleted

	if session.BudgetSpent() {
		if err := s.endSession(ctx, session, CompletionBudget); err != nil {
			return nil, err
		}
		ack.SessionEnded = true
	} else if session.Expired(s.now()) {
		if err := s.endSession(ctx, session, CompletionTimer); err != nil {
			return nil, err
		}
		ack.SessionEnded = true
	}

	return ack, nil
}

// EndSession closes a session on the learner's request and returns the
// written summary.
func (s *PracticeService) EndSession(ctx context.Context, learnerID, sessionID string) (*models.SessionResult, error) {
	session, err := s.findSession(ctx, learnerID, sessionID)
	if err != nil {
		return nil, err
	}
	if session.Status == models.SessionEnded {
		return s.results.FindBySession(ctx, sessionID)
	}
	if err := s.endSession(ctx, session, CompletionExplicit); err != nil {
		return nil, err
	}
	return s.results.FindBySession(ctx, sessionID)
}

// GetSession returns the current session document.
func (s *PracticeService) GetSession(ctx context.Context, learnerID, sessionID string) (*models.PracticeSession, error) {
	return s.findSession(ctx, learnerID, sessionID)
}

// endSession writes the summary document and marks the session ended.
func (s *PracticeService) endSession(ctx context.Context, session *models.PracticeSession, completionType string) error {
	correct, err := s.outcomes.CountCorrect(ctx, session.ID)
	if err != nil {
		return fmt.Errorf("%w: counting outcomes: %v", models.ErrStoreUnavailable, err)
	}
	history, err := s.outcomes.FindBySession(ctx, session.ID)
	if err != nil {
		return fmt.Errorf("%w: reading outcomes: %v", models.ErrStoreUnavailable, err)
	}
	breakdown := make(map[string]int)
	for _, o := range history {
		breakdown[string(o.Topic)]++
	}

	result := &models.SessionResult{
		SessionID:         session.ID,
		LearnerID:         session.LearnerID,
		ItemsCompleted:    session.ItemsCompleted,
		CorrectCount:      correct,
		PassagesCompleted: session.PassagesCompleted,
		TopicBreakdown:    breakdown,
		DurationSeconds:   int(s.now().Sub(session.StartTime).Seconds()),
		CompletionType:    completionType,
		CreatedAt:         s.now(),
	}
	if err := s.results.Create(ctx, result); err != nil {
		return fmt.Errorf("%w: writing result: %v", models.ErrStoreUnavailable, err)
	}
	if err := s.sessions.End(ctx, session.ID, completionType); err != nil {
		return fmt.Errorf("%w: ending session: %v", models.ErrStoreUnavailable, err)
	}
	session.Status = models.SessionEnded
	session.CompletionType = completionType
	return nil
}

// terminateIfSpent enforces the session-level bounds: wall clock first, then
// item budget.
func (s *PracticeService) terminateIfSpent(ctx context.Context, session *models.PracticeSession) error {
	switch {
	case session.Expired(s.now()):
		if err := s.endSession(ctx, session, CompletionTimer); err != nil {
			return err
		}
		return models.ErrSessionEnded
	case session.BudgetSpent():
		if err := s.endSession(ctx, session, CompletionBudget); err != nil {
			return err
		}
		return models.ErrSessionEnded
	}
	return nil
}

// findSession loads a session and checks it belongs to the caller.
func (s *PracticeService) findSession(ctx context.Context, learnerID, sessionID string) (*models.PracticeSession, error) {
	session, err := s.sessions.FindByID(ctx, sessionID)
	if err != nil {
		if errors.Is(err, models.ErrNotFound) {
			return nil, err
		}
		return nil, fmt.Errorf("%w: loading session: %v", models.ErrStoreUnavailable, err)
	}
	if session.LearnerID != learnerID {
		return nil, fmt.Errorf("%w: session %s", models.ErrForbidden, sessionID)
	}
	return session, nil
}

func (s *PracticeService) loadActiveSession(ctx context.Context, learnerID, sessionID string) (*models.PracticeSession, error) {
	session, err := s.findSession(ctx, learnerID, sessionID)
	if err != nil {
		return nil, err
	}
	if session.Status != models.SessionActive {
		return nil, models.ErrSessionEnded
	}
	return session, nil
}

// updateSession runs a read-modify-write against the session with one retry
// on an optimistic-lock miss. A second conflict surfaces as
// models.ErrStoreUnavailable per the write-conflict policy.
func (s *PracticeService) updateSession(ctx context.Context, session *models.PracticeSession, apply func(*models.PracticeSession) flow.Action) (flow.Action, error) {
	var action flow.Action
	for attempt := 0; attempt < 2; attempt++ {
		action = apply(session)
		err := s.sessions.UpdateCAS(ctx, session)
		if err == nil {
			return action, nil
		}
		if !errors.Is(err, models.ErrConflict) {
			return action, fmt.Errorf("%w: updating session: %v", models.ErrStoreUnavailable, err)
		}
		fresh, rerr := s.sessions.FindByID(ctx, session.ID)
		if rerr != nil {
			return action, fmt.Errorf("%w: re-reading session: %v", models.ErrStoreUnavailable, rerr)
		}
		*session = *fresh
	}
	return action, fmt.Errorf("%w: session %s write conflict persisted", models.ErrStoreUnavailable, session.ID)
}

// flowState reconstructs the pure flow state from the persisted session.
func flowState(session *models.PracticeSession) flow.State {
	progress := make(map[models.Topic]int, len(models.RotationTopics))
	for _, topic := range models.RotationTopics {
		progress[topic] = session.RotationProgress[string(topic)]
	}
	var phase flow.Phase
	switch session.Phase {
	case models.PhaseRotation:
		phase = flow.PhaseRotation
	case models.PhaseComplete:
		phase = flow.PhaseComplete
	default:
		phase = flow.PhasePassage
	}
	return flow.State{
		Phase:             phase,
		PassagesCompleted: session.PassagesCompleted,
		BatchRemaining:    session.BatchRemaining,
		RotationProgress:  progress,
	}
}

// applyFlowState writes a flow state back onto the session document.
func applyFlowState(session *models.PracticeSession, state flow.State) {
	progress := make(map[string]int, len(state.RotationProgress))
	for topic, count := range state.RotationProgress {
		progress[string(topic)] = count
	}
	session.Phase = string(state.Phase)
	session.PassagesCompleted = state.PassagesCompleted
	session.BatchRemaining = state.BatchRemaining
	session.RotationProgress = progress
}
