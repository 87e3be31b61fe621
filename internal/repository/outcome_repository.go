package repository

import (
	"context"

	"practice-service/internal/models"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"
)

type OutcomeRepository struct {
	Col *mongo.Collection
}

func NewOutcomeRepository(db *mongo.Database) *OutcomeRepository {
	return &OutcomeRepository{Col: db.Collection("outcomes")}
}

func (r *OutcomeRepository) Create(ctx context.Context, outcome *models.Outcome) error {
	_, err := r.Col.InsertOne(ctx, outcome)
	return err
}

func (r *OutcomeRepository) FindBySession(ctx context.Context, sessionID string) ([]models.Outcome, error) {
	opts := options.Find().SetSort(bson.D{{Key: "sequence", Value: 1}})
	cur, err := r.Col.Find(ctx, bson.M{"session_id": sessionID}, opts)
	if err != nil {
		return nil, err
	}
	defer cur.Close(ctx)

	var outcomes []models.Outcome
	for cur.Next(ctx) {
		var o models.Outcome
		if err := cur.Decode(&o); err != nil {
			return nil, err
		}
		outcomes = append(outcomes, o)
	}
	return outcomes, cur.Err()
}

// CountCorrect tallies correct outcomes for one session.
func (r *OutcomeRepository) CountCorrect(ctx context.Context, sessionID string) (int, error) {
	count, err := r.Col.CountDocuments(ctx, bson.M{
		"session_id": sessionID,
		"result":     models.OutcomeCorrect,
	})
	return int(count), err
}
