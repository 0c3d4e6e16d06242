package llm

import (
	"context"

	"github.com/callsight/server/domain/entities"
	"github.com/callsight/server/domain/repositories"
)

// MockAnalyzer is a canned ConversationAnalyzer for tests and offline
// development (ANALYSIS_PROVIDER=mock)
type MockAnalyzer struct{}

// NewMockAnalyzer creates a new mock analyzer
func NewMockAnalyzer() repositories.ConversationAnalyzer {
	return &MockAnalyzer{}
}

// Analyze implements repositories.ConversationAnalyzer
func (m *MockAnalyzer) Analyze(ctx context.Context, conversationText string) (*entities.AnalysisResult, error) {
	return entities.NewAnalysisResult(7, 8, 9,
		[]entities.Insight{
			{Type: entities.InsightTypeSuccess, Text: "Temsilci sorunu hızlı çözdü"},
			{Type: entities.InsightTypeInfo, Text: "Müşteri takip araması bekliyor"},
		},
		entities.Metrics{
			ResponseTime:    "fast",
			EmpathyLevel:    "high",
			ProblemResolved: true,
			CustomerEmotion: "positive",
		},
	), nil
}
