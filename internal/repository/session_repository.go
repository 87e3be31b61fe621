package repository

import (
	"context"
	"time"

	"practice-service/internal/models"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/bson/primitive"
	"go.mongodb.org/mongo-driver/mongo"
)

type SessionRepository struct {
	Col *mongo.Collection
}

func NewSessionRepository(db *mongo.Database) *SessionRepository {
	return &SessionRepository{Col: db.Collection("sessions")}
}

func (r *SessionRepository) FindByID(ctx context.Context, id string) (*models.PracticeSession, error) {
	objID, err := primitive.ObjectIDFromHex(id)
	if err != nil {
		return nil, models.ErrNotFound
	}
	var session models.PracticeSession
	err = r.Col.FindOne(ctx, bson.M{"_id": objID}).Decode(&session)
	if err != nil {
		if err == mongo.ErrNoDocuments {
			return nil, models.ErrNotFound
		}
		return nil, err
	}
	session.ID = id
	return &session, nil
}

func (r *SessionRepository) Create(ctx context.Context, session *models.PracticeSession) error {
	session.Version = 1
	res, err := r.Col.InsertOne(ctx, sessionDoc(session))
	if err != nil {
		return err
	}
	if oid, ok := res.InsertedID.(primitive.ObjectID); ok {
		session.ID = oid.Hex()
	}
	return nil
}

// UpdateCAS writes the session's mutable fields guarded by the version the
// caller read. A version miss means a concurrent writer advanced the session
// first; the caller re-reads and retries once.
func (r *SessionRepository) UpdateCAS(ctx context.Context, session *models.PracticeSession) error {
	objID, err := primitive.ObjectIDFromHex(session.ID)
	if err != nil {
		return models.ErrNotFound
	}

	res, err := r.Col.UpdateOne(ctx,
		bson.M{"_id": objID, "version": session.Version},
		bson.M{
			"$set": bson.M{
				"phase":              session.Phase,
				"passages_completed": session.PassagesCompleted,
				"batch_remaining":    session.BatchRemaining,
				"rotation_progress":  session.RotationProgress,
				"items_completed":    session.ItemsCompleted,
				"status":             session.Status,
				"completion_type":    session.CompletionType,
				"end_time":           session.EndTime,
			},
			"$inc": bson.M{"version": 1},
		},
	)
	if err != nil {
		return err
	}
	if res.MatchedCount == 0 {
		return models.ErrConflict
	}
	session.Version++
	return nil
}

func (r *SessionRepository) End(ctx context.Context, id, completionType string) error {
	objID, err := primitive.ObjectIDFromHex(id)
	if err != nil {
		return models.ErrNotFound
	}
	_, err = r.Col.UpdateOne(ctx, bson.M{"_id": objID}, bson.M{
		"$set": bson.M{
			"status":          models.SessionEnded,
			"completion_type": completionType,
			"end_time":        time.Now(),
		},
		"$inc": bson.M{"version": 1},
	})
	return err
}

// sessionDoc strips the string ID so Mongo assigns the ObjectID.
func sessionDoc(s *models.PracticeSession) bson.M {
	return bson.M{
		"learner_id":         s.LearnerID,
		"phase":              s.Phase,
		"passages_completed": s.PassagesCompleted,
		"batch_remaining":    s.BatchRemaining,
		"rotation_progress":  s.RotationProgress,
		"items_completed":    s.ItemsCompleted,
		"item_budget":        s.ItemBudget,
		"duration_seconds":   s.DurationSeconds,
		"start_time":         s.StartTime,
		"status":             s.Status,
		"version":            s.Version,
	}
}
