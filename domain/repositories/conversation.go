package repositories

import (
	"context"

	"github.com/callsight/server/domain/entities"
)

// ConversationRepository persists completed conversation analyses and
// serves the admin reporting queries.
type ConversationRepository interface {
	// Save stores one conversation record. Called fire-and-forget after an
	// agent-side analysis; failures are logged by the caller, never
	// surfaced to the analyzed party.
	Save(ctx context.Context, record *entities.ConversationRecord) error

	// List returns records sorted newest first. A non-empty session filters
	// to that session's records.
	List(ctx context.Context, limit, skip int64, session string) ([]entities.ConversationRecord, error)

	// Stats aggregates the stored records for the admin database view.
	Stats(ctx context.Context) (*DatabaseStats, error)
}

// DatabaseStats summarizes the conversations collection
type DatabaseStats struct {
	TotalConversations    int64            `json:"total_conversations"`
	ResolvedConversations int64            `json:"resolved_conversations"`
	AvgSentiment          float64          `json:"avg_sentiment"`
	AvgOverallScore       float64          `json:"avg_overall_score"`
	AvgAgentPerformance   float64          `json:"avg_agent_performance"`
	EmotionDistribution   map[string]int64 `json:"emotion_distribution"`
	CategoryDistribution  map[string]int64 `json:"category_distribution"`
}
