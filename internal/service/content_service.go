package service

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	"practice-service/internal/models"
	"practice-service/internal/repository"
)

// ContentService is the ingestion surface for the offline generator. Records
// are validated and normalized here so the engine only ever sees the
// canonical option shape.
type ContentService struct {
	Repo *repository.ContentRepository
}

func NewContentService(repo *repository.ContentRepository) *ContentService {
	return &ContentService{Repo: repo}
}

// ContentInput is the wire shape of one generated record. Options accept both
// historical generator formats: a plain array of texts or a letter-keyed
// object.
type ContentInput struct {
	Topic        models.Topic    `json:"topic" binding:"required"`
	Grade        int             `json:"grade" binding:"required"`
	Difficulty   int             `json:"difficulty" binding:"required"`
	Mood         string          `json:"mood"`
	PassageKey   string          `json:"passage_key"`
	Passage      string          `json:"passage"`
	Question     string          `json:"question" binding:"required"`
	Options      json.RawMessage `json:"options" binding:"required"`
	CorrectLabel string          `json:"correct_label" binding:"required"`
	Explanation  string          `json:"explanation"`
	ExpiresAt    *time.Time      `json:"expires_at"`
}

// ToRecord normalizes the input into a validated, hashed pool record.
func (in *ContentInput) ToRecord() (*models.ContentRecord, error) {
	options, err := models.NormalizeOptions(in.Options)
	if err != nil {
		return nil, fmt.Errorf("normalizing options: %w", err)
	}
	record := &models.ContentRecord{
		Topic:        in.Topic,
		Grade:        in.Grade,
		Difficulty:   in.Difficulty,
		Mood:         in.Mood,
		PassageKey:   in.PassageKey,
		Passage:      in.Passage,
		Question:     in.Question,
		Options:      options,
		CorrectLabel: in.CorrectLabel,
		Explanation:  in.Explanation,
		ExpiresAt:    in.ExpiresAt,
		Status:       "active",
		CreatedAt:    time.Now(),
	}
	if err := record.Validate(); err != nil {
		return nil, err
	}
	record.EnsureHash()
	return record, nil
}

func (s *ContentService) Ingest(ctx context.Context, in *ContentInput) (*models.ContentRecord, error) {
	record, err := in.ToRecord()
	if err != nil {
		return nil, err
	}
	if err := s.Repo.Create(ctx, record); err != nil {
		return nil, fmt.Errorf("%w: inserting content: %v", models.ErrStoreUnavailable, err)
	}
	return record, nil
}

// BulkIngest inserts a generator batch, skipping invalid records rather than
// rejecting the whole batch. Returns inserted count and per-record errors.
func (s *ContentService) BulkIngest(ctx context.Context, inputs []ContentInput) (int, []string) {
	var records []models.ContentRecord
	var problems []string
	for i := range inputs {
		record, err := inputs[i].ToRecord()
		if err != nil {
			problems = append(problems, fmt.Sprintf("record %d: %v", i, err))
			continue
		}
		records = append(records, *record)
	}
	if len(records) == 0 {
		return 0, problems
	}
	inserted, err := s.Repo.CreateMany(ctx, records)
	if err != nil {
		problems = append(problems, fmt.Sprintf("insert: %v", err))
	}
	return inserted, problems
}

func (s *ContentService) Get(ctx context.Context, id string) (*models.ContentRecord, error) {
	return s.Repo.FindByID(ctx, id)
}

func (s *ContentService) List(ctx context.Context, topic models.Topic, limit, offset int64) ([]models.ContentRecord, error) {
	if topic != "" && !models.IsValidTopic(topic) {
		return nil, fmt.Errorf("%w: %q", models.ErrInvalidTopic, topic)
	}
	if limit <= 0 || limit > 100 {
		limit = 50
	}
	return s.Repo.List(ctx, topic, limit, offset)
}

func (s *ContentService) Delete(ctx context.Context, id string) error {
	return s.Repo.Delete(ctx, id)
}

// PoolInfo reports the advisory pool-health distribution.
func (s *ContentService) PoolInfo(ctx context.Context) (map[string]interface{}, error) {
	rows, err := s.Repo.Distribution(ctx)
	if err != nil {
		return nil, fmt.Errorf("%w: aggregating pool: %v", models.ErrStoreUnavailable, err)
	}
	total := 0
	byTopic := make(map[string]int)
	for _, row := range rows {
		total += row.Count
		byTopic[row.Topic] += row.Count
	}
	return map[string]interface{}{
		"total_records": total,
		"by_topic":      byTopic,
		"distribution":  rows,
	}, nil
}
