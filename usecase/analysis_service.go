package usecase

import (
	"context"
	"errors"
	"strings"
	"time"

	"go.uber.org/zap"

	"github.com/callsight/server/domain/entities"
	"github.com/callsight/server/domain/repositories"
)

// ErrEmptyConversation is returned when analysis is requested for a blank
// transcript. The analyzer is never invoked in that case.
var ErrEmptyConversation = errors.New("conversation text is empty")

const persistTimeout = 10 * time.Second

// AnalysisService coordinates analysis triggers: it guards the external
// analyzer against empty input and hands completed agent-side results to the
// persistence layer without blocking result delivery.
type AnalysisService struct {
	analyzer      repositories.ConversationAnalyzer
	conversations repositories.ConversationRepository
	logger        *zap.Logger
}

// NewAnalysisService creates a new analysis service. A nil conversation
// repository disables persistence; analysis still works.
func NewAnalysisService(
	analyzer repositories.ConversationAnalyzer,
	conversations repositories.ConversationRepository,
	logger *zap.Logger,
) *AnalysisService {
	return &AnalysisService{
		analyzer:      analyzer,
		conversations: conversations,
		logger:        logger,
	}
}

// Analyze scores a conversation transcript. Returns ErrEmptyConversation for
// blank input without calling the analyzer.
func (s *AnalysisService) Analyze(ctx context.Context, conversationText, conversationID string) (*entities.AnalysisResult, error) {
	if strings.TrimSpace(conversationText) == "" {
		return nil, ErrEmptyConversation
	}

	result, err := s.analyzer.Analyze(ctx, conversationText)
	if err != nil {
		return nil, err
	}

	result.ConversationID = conversationID
	return result, nil
}

// PersistAsync stores a completed analysis in the background. Failure is
// logged, never surfaced to the client-visible analysis response.
func (s *AnalysisService) PersistAsync(sessionID, transcript string, result *entities.AnalysisResult) {
	if s.conversations == nil {
		return
	}

	record := entities.NewConversationRecord(sessionID, transcript, result)

	go func() {
		ctx, cancel := context.WithTimeout(context.Background(), persistTimeout)
		defer cancel()

		if err := s.conversations.Save(ctx, record); err != nil {
			s.logger.Error("Failed to persist conversation record",
				zap.String("sessionID", sessionID),
				zap.Error(err))
			return
		}

		s.logger.Info("Conversation record persisted",
			zap.String("sessionID", sessionID),
			zap.Float64("overallScore", record.OverallScore))
	}()
}

// RecentConversations serves the admin conversation listing
func (s *AnalysisService) RecentConversations(ctx context.Context, limit, skip int64, session string) ([]entities.ConversationRecord, error) {
	if s.conversations == nil {
		return []entities.ConversationRecord{}, nil
	}
	return s.conversations.List(ctx, limit, skip, session)
}

// DatabaseStats serves the admin database-stats view
func (s *AnalysisService) DatabaseStats(ctx context.Context) (*repositories.DatabaseStats, error) {
	if s.conversations == nil {
		return &repositories.DatabaseStats{
			EmotionDistribution:  map[string]int64{},
			CategoryDistribution: map[string]int64{},
		}, nil
	}
	return s.conversations.Stats(ctx)
}
