package mongo

import (
	"context"
	"errors"
	"fmt"
	"time"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"

	"github.com/callsight/server/domain/entities"
	"github.com/callsight/server/domain/repositories"
)

type ConversationRepository struct {
	collection *mongo.Collection
}

// NewConversationRepository creates a new MongoDB conversation repository
func NewConversationRepository(db *mongo.Database) repositories.ConversationRepository {
	return &ConversationRepository{
		collection: db.Collection("conversations"),
	}
}

// Save implements repositories.ConversationRepository
func (r *ConversationRepository) Save(ctx context.Context, record *entities.ConversationRecord) error {
	if record == nil {
		return errors.New("record cannot be nil")
	}
	if record.SessionID == "" {
		return errors.New("session ID cannot be empty")
	}

	if record.Timestamp.IsZero() {
		record.Timestamp = time.Now()
	}

	if _, err := r.collection.InsertOne(ctx, record); err != nil {
		return fmt.Errorf("failed to save conversation record: %w", err)
	}

	return nil
}

// List implements repositories.ConversationRepository
func (r *ConversationRepository) List(ctx context.Context, limit, skip int64, session string) ([]entities.ConversationRecord, error) {
	if limit <= 0 {
		limit = 50
	}

	filter := bson.M{}
	if session != "" {
		filter["session_id"] = session
	}

	opts := options.Find().
		SetSort(bson.M{"timestamp": -1}).
		SetLimit(limit).
		SetSkip(skip)

	cursor, err := r.collection.Find(ctx, filter, opts)
	if err != nil {
		return nil, fmt.Errorf("failed to list conversation records: %w", err)
	}
	defer cursor.Close(ctx)

	records := make([]entities.ConversationRecord, 0, limit)
	if err := cursor.All(ctx, &records); err != nil {
		return nil, fmt.Errorf("failed to decode conversation records: %w", err)
	}

	return records, nil
}

// Stats implements repositories.ConversationRepository
func (r *ConversationRepository) Stats(ctx context.Context) (*repositories.DatabaseStats, error) {
	stats := &repositories.DatabaseStats{
		EmotionDistribution:  make(map[string]int64),
		CategoryDistribution: make(map[string]int64),
	}

	pipeline := mongo.Pipeline{
		{{Key: "$group", Value: bson.M{
			"_id":           nil,
			"total":         bson.M{"$sum": 1},
			"resolved":      bson.M{"$sum": bson.M{"$cond": bson.A{"$is_resolved", 1, 0}}},
			"avg_sentiment": bson.M{"$avg": "$sentiment_score"},
			"avg_overall":   bson.M{"$avg": "$overall_score"},
			"avg_agent":     bson.M{"$avg": "$agent_performance"},
		}}},
	}

	cursor, err := r.collection.Aggregate(ctx, pipeline)
	if err != nil {
		return nil, fmt.Errorf("failed to aggregate conversation stats: %w", err)
	}
	defer cursor.Close(ctx)

	var totals []struct {
		Total        int64   `bson:"total"`
		Resolved     int64   `bson:"resolved"`
		AvgSentiment float64 `bson:"avg_sentiment"`
		AvgOverall   float64 `bson:"avg_overall"`
		AvgAgent     float64 `bson:"avg_agent"`
	}
	if err := cursor.All(ctx, &totals); err != nil {
		return nil, fmt.Errorf("failed to decode conversation stats: %w", err)
	}
	if len(totals) > 0 {
		stats.TotalConversations = totals[0].Total
		stats.ResolvedConversations = totals[0].Resolved
		stats.AvgSentiment = totals[0].AvgSentiment
		stats.AvgOverallScore = totals[0].AvgOverall
		stats.AvgAgentPerformance = totals[0].AvgAgent
	}

	emotions, err := r.countByField(ctx, "$customer_emotion")
	if err != nil {
		return nil, err
	}
	stats.EmotionDistribution = emotions

	categories, err := r.countByField(ctx, "$category")
	if err != nil {
		return nil, err
	}
	stats.CategoryDistribution = categories

	return stats, nil
}

func (r *ConversationRepository) countByField(ctx context.Context, field string) (map[string]int64, error) {
	pipeline := mongo.Pipeline{
		{{Key: "$group", Value: bson.M{
			"_id":   field,
			"count": bson.M{"$sum": 1},
		}}},
	}

	cursor, err := r.collection.Aggregate(ctx, pipeline)
	if err != nil {
		return nil, fmt.Errorf("failed to aggregate %s distribution: %w", field, err)
	}
	defer cursor.Close(ctx)

	var groups []struct {
		ID    string `bson:"_id"`
		Count int64  `bson:"count"`
	}
	if err := cursor.All(ctx, &groups); err != nil {
		return nil, fmt.Errorf("failed to decode %s distribution: %w", field, err)
	}

	distribution := make(map[string]int64, len(groups))
	for _, group := range groups {
		key := group.ID
		if key == "" {
			key = "unknown"
		}
		distribution[key] = group.Count
	}

	return distribution, nil
}
