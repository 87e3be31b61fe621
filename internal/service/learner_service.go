package service

import (
	"context"

	"practice-service/internal/models"
	"practice-service/internal/repository"
)

// LearnerService exposes read views over learner profiles and past session
// results.
type LearnerService struct {
	Learners *repository.LearnerRepository
	Results  *repository.ResultRepository
}

func NewLearnerService(learners *repository.LearnerRepository, results *repository.ResultRepository) *LearnerService {
	return &LearnerService{Learners: learners, Results: results}
}

func (s *LearnerService) GetProfile(ctx context.Context, id string) (*models.Learner, error) {
	return s.Learners.FindByID(ctx, id)
}

func (s *LearnerService) GetResults(ctx context.Context, learnerID string) ([]models.SessionResult, error) {
	return s.Results.FindByLearner(ctx, learnerID)
}
