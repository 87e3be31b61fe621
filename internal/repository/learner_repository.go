package repository

import (
	"context"
	"time"

	"practice-service/internal/models"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"
)

// LearnerRepository owns learner profiles, per-topic proficiency, and the
// seen-hash ledger. It satisfies retrieval.Ledger.
type LearnerRepository struct {
	Col *mongo.Collection
}

func NewLearnerRepository(db *mongo.Database) *LearnerRepository {
	return &LearnerRepository{Col: db.Collection("learners")}
}

func (r *LearnerRepository) FindByID(ctx context.Context, id string) (*models.Learner, error) {
	var learner models.Learner
	err := r.Col.FindOne(ctx, bson.M{"_id": id}).Decode(&learner)
	if err != nil {
		if err == mongo.ErrNoDocuments {
			return nil, models.ErrNotFound
		}
		return nil, err
	}
	return &learner, nil
}

// Ensure creates the learner profile on first contact and returns it.
func (r *LearnerRepository) Ensure(ctx context.Context, id string, grade int) (*models.Learner, error) {
	now := time.Now()
	update := bson.M{
		"$setOnInsert": bson.M{
			"grade":       grade,
			"proficiency": bson.M{},
			"seen_hashes": []string{},
			"created_at":  now,
		},
		"$set": bson.M{"updated_at": now},
	}
	opts := options.FindOneAndUpdate().
		SetUpsert(true).
		SetReturnDocument(options.After)

	var learner models.Learner
	if err := r.Col.FindOneAndUpdate(ctx, bson.M{"_id": id}, update, opts).Decode(&learner); err != nil {
		return nil, err
	}
	return &learner, nil
}

func (r *LearnerRepository) GetGrade(ctx context.Context, id string) (int, error) {
	learner, err := r.FindByID(ctx, id)
	if err != nil {
		return 0, err
	}
	return learner.Grade, nil
}

func (r *LearnerRepository) GetProficiency(ctx context.Context, id string, topic models.Topic) (float64, error) {
	learner, err := r.FindByID(ctx, id)
	if err != nil {
		return 0, err
	}
	return learner.ProficiencyFor(topic), nil
}

func (r *LearnerRepository) SetProficiency(ctx context.Context, id string, topic models.Topic, score float64) error {
	_, err := r.Col.UpdateOne(ctx, bson.M{"_id": id}, bson.M{
		"$set": bson.M{
			"proficiency." + string(topic): score,
			"updated_at":                   time.Now(),
		},
	})
	return err
}

// SeenHashes returns the learner's full dedup ledger.
func (r *LearnerRepository) SeenHashes(ctx context.Context, id string) ([]string, error) {
	learner, err := r.FindByID(ctx, id)
	if err != nil {
		if err == models.ErrNotFound {
			return nil, nil
		}
		return nil, err
	}
	return learner.SeenHashes, nil
}

// AppendSeenHash marks a hash as served-and-acted-upon. $addToSet keeps the
// append idempotent under duplicate outcome reports.
func (r *LearnerRepository) AppendSeenHash(ctx context.Context, id, hash string) error {
	_, err := r.Col.UpdateOne(ctx, bson.M{"_id": id}, bson.M{
		"$addToSet": bson.M{"seen_hashes": hash},
		"$set":      bson.M{"updated_at": time.Now()},
	})
	return err
}
