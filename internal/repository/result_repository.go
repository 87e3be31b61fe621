package repository

import (
	"context"

	"practice-service/internal/models"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"
)

type ResultRepository struct {
	Col *mongo.Collection
}

func NewResultRepository(db *mongo.Database) *ResultRepository {
	return &ResultRepository{Col: db.Collection("results")}
}

func (r *ResultRepository) Create(ctx context.Context, result *models.SessionResult) error {
	_, err := r.Col.InsertOne(ctx, result)
	return err
}

func (r *ResultRepository) FindByLearner(ctx context.Context, learnerID string) ([]models.SessionResult, error) {
	opts := options.Find().SetSort(bson.D{{Key: "created_at", Value: -1}})
	cur, err := r.Col.Find(ctx, bson.M{"learner_id": learnerID}, opts)
	if err != nil {
		return nil, err
	}
	defer cur.Close(ctx)

	var results []models.SessionResult
	for cur.Next(ctx) {
		var res models.SessionResult
		if err := cur.Decode(&res); err != nil {
			return nil, err
		}
		results = append(results, res)
	}
	return results, cur.Err()
}

func (r *ResultRepository) FindBySession(ctx context.Context, sessionID string) (*models.SessionResult, error) {
	var res models.SessionResult
	err := r.Col.FindOne(ctx, bson.M{"session_id": sessionID}).Decode(&res)
	if err != nil {
		if err == mongo.ErrNoDocuments {
			return nil, models.ErrNotFound
		}
		return nil, err
	}
	return &res, nil
}
