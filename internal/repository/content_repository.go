package repository

import (
	"context"

	"practice-service/internal/models"
	"practice-service/internal/retrieval"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"
)

// ContentRepository is the Mongo-backed content pool. It satisfies
// retrieval.Pool.
type ContentRepository struct {
	Col *mongo.Collection
}

func NewContentRepository(db *mongo.Database) *ContentRepository {
	return &ContentRepository{Col: db.Collection("content")}
}

// Query returns up to q.Limit active, never-expiring records matching the
// request, excluding the given hashes, in insertion order.
func (r *ContentRepository) Query(ctx context.Context, q retrieval.PoolQuery) ([]models.ContentRecord, error) {
	filter := bson.M{
		"topic":  q.Topic,
		"grade":  q.Grade,
		"status": "active",
		// Soft expiry exists on the schema but serving always filters to
		// records that never expire.
		"expires_at": nil,
	}
	if q.Difficulty != 0 {
		filter["difficulty"] = q.Difficulty
	}
	if q.Mood != "" {
		filter["mood"] = q.Mood
	}
	if len(q.ExcludeHashes) > 0 {
		filter["content_hash"] = bson.M{"$nin": q.ExcludeHashes}
	}

	opts := options.Find().
		SetSort(bson.D{{Key: "created_at", Value: 1}}).
		SetLimit(q.Limit)

	cur, err := r.Col.Find(ctx, filter, opts)
	if err != nil {
		return nil, err
	}
	defer cur.Close(ctx)

	var records []models.ContentRecord
	for cur.Next(ctx) {
		var rec models.ContentRecord
		if err := cur.Decode(&rec); err != nil {
			return nil, err
		}
		records = append(records, rec)
	}
	return records, cur.Err()
}

// IncrementUsage bumps the advisory usage counter.
func (r *ContentRepository) IncrementUsage(ctx context.Context, id string) error {
	_, err := r.Col.UpdateOne(ctx, bson.M{"_id": id}, bson.M{"$inc": bson.M{"usage_count": 1}})
	return err
}

func (r *ContentRepository) FindByID(ctx context.Context, id string) (*models.ContentRecord, error) {
	var rec models.ContentRecord
	err := r.Col.FindOne(ctx, bson.M{"_id": id}).Decode(&rec)
	if err != nil {
		if err == mongo.ErrNoDocuments {
			return nil, models.ErrNotFound
		}
		return nil, err
	}
	return &rec, nil
}

func (r *ContentRepository) FindByHash(ctx context.Context, hash string) (*models.ContentRecord, error) {
	var rec models.ContentRecord
	err := r.Col.FindOne(ctx, bson.M{"content_hash": hash}).Decode(&rec)
	if err != nil {
		if err == mongo.ErrNoDocuments {
			return nil, models.ErrNotFound
		}
		return nil, err
	}
	return &rec, nil
}

func (r *ContentRepository) Create(ctx context.Context, rec *models.ContentRecord) error {
	_, err := r.Col.InsertOne(ctx, rec)
	return err
}

func (r *ContentRepository) CreateMany(ctx context.Context, recs []models.ContentRecord) (int, error) {
	docs := make([]interface{}, len(recs))
	for i := range recs {
		docs[i] = recs[i]
	}
	// Unordered insert: one bad record must not block the rest of the batch.
	res, err := r.Col.InsertMany(ctx, docs, options.InsertMany().SetOrdered(false))
	if res != nil {
		return len(res.InsertedIDs), err
	}
	return 0, err
}

func (r *ContentRepository) List(ctx context.Context, topic models.Topic, limit, offset int64) ([]models.ContentRecord, error) {
	filter := bson.M{"status": "active"}
	if topic != "" {
		filter["topic"] = topic
	}
	opts := options.Find().
		SetSort(bson.D{{Key: "created_at", Value: 1}}).
		SetLimit(limit).
		SetSkip(offset)

	cur, err := r.Col.Find(ctx, filter, opts)
	if err != nil {
		return nil, err
	}
	defer cur.Close(ctx)

	var records []models.ContentRecord
	for cur.Next(ctx) {
		var rec models.ContentRecord
		if err := cur.Decode(&rec); err != nil {
			return nil, err
		}
		records = append(records, rec)
	}
	return records, cur.Err()
}

// Delete soft-deletes a record; the pool is append-only otherwise.
func (r *ContentRepository) Delete(ctx context.Context, id string) error {
	_, err := r.Col.UpdateOne(ctx, bson.M{"_id": id}, bson.M{"$set": bson.M{"status": "deleted"}})
	return err
}

// DistributionRow is one (topic, difficulty) bucket of the pool-health report.
type DistributionRow struct {
	Topic      string `bson:"topic" json:"topic"`
	Difficulty int    `bson:"difficulty" json:"difficulty"`
	Count      int    `bson:"count" json:"count"`
	TotalUsage int    `bson:"total_usage" json:"total_usage"`
}

// Distribution reports record counts and accumulated usage per
// (topic, difficulty). Advisory: used for offline pool-health checks only.
func (r *ContentRepository) Distribution(ctx context.Context) ([]DistributionRow, error) {
	pipeline := mongo.Pipeline{
		{{Key: "$match", Value: bson.M{"status": "active"}}},
		{{Key: "$group", Value: bson.M{
			"_id":         bson.M{"topic": "$topic", "difficulty": "$difficulty"},
			"count":       bson.M{"$sum": 1},
			"total_usage": bson.M{"$sum": "$usage_count"},
		}}},
		{{Key: "$project", Value: bson.M{
			"topic":       "$_id.topic",
			"difficulty":  "$_id.difficulty",
			"count":       1,
			"total_usage": 1,
			"_id":         0,
		}}},
		{{Key: "$sort", Value: bson.D{{Key: "topic", Value: 1}, {Key: "difficulty", Value: 1}}}},
	}

	cur, err := r.Col.Aggregate(ctx, pipeline)
	if err != nil {
		return nil, err
	}
	defer cur.Close(ctx)

	var rows []DistributionRow
	for cur.Next(ctx) {
		var row DistributionRow
		if err := cur.Decode(&row); err != nil {
			return nil, err
		}
		rows = append(rows, row)
	}
	return rows, cur.Err()
}
