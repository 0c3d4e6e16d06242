package entities

import (
	"errors"
	"fmt"
	"math"
	"time"
)

// InsightType categorizes a single analysis insight
type InsightType string

const (
	InsightTypeSuccess InsightType = "success"
	InsightTypeWarning InsightType = "warning"
	InsightTypeInfo    InsightType = "info"
)

// Insight bounds: the model must return at least MinInsights and at most MaxInsights
const (
	MinInsights = 2
	MaxInsights = 5
)

// Score domain for the three model sub-scores and the derived overall score
const (
	MinScore = 1
	MaxScore = 10
)

// Insight is a single observation extracted from a conversation
type Insight struct {
	Type InsightType `json:"type" bson:"type"`
	Text string      `json:"text" bson:"text"`
}

// Metrics holds the categorical conversation metrics returned by the model
type Metrics struct {
	ResponseTime    string `json:"responseTime" bson:"response_time"`
	EmpathyLevel    string `json:"empathyLevel" bson:"empathy_level"`
	ProblemResolved bool   `json:"problemResolved" bson:"problem_resolved"`
	CustomerEmotion string `json:"customerEmotion" bson:"customer_emotion"`
}

// AnalysisResult is the normalized output of one conversation analysis.
// Immutable once constructed; the session engine hands it to clients and,
// on the agent side, to the persistence layer.
type AnalysisResult struct {
	OverallScore     int       `json:"overallScore"`
	Sentiment        int       `json:"sentiment"`
	Resolution       int       `json:"resolution"`
	AgentPerformance int       `json:"agentPerformance"`
	Insights         []Insight `json:"insights"`
	Metrics          Metrics   `json:"metrics"`
	Category         string    `json:"category,omitempty"`
	Timestamp        string    `json:"timestamp"`
	ConversationID   string    `json:"conversation_id,omitempty"`
}

// NewAnalysisResult builds a result from the three model sub-scores,
// computing the overall score and stamping the construction time.
func NewAnalysisResult(sentiment, resolution, agentPerformance int, insights []Insight, metrics Metrics) *AnalysisResult {
	return &AnalysisResult{
		OverallScore:     OverallScore(sentiment, resolution, agentPerformance),
		Sentiment:        sentiment,
		Resolution:       resolution,
		AgentPerformance: agentPerformance,
		Insights:         insights,
		Metrics:          metrics,
		Timestamp:        time.Now().Format(time.RFC3339),
	}
}

// OverallScore is the rounded arithmetic mean of the three sub-scores.
// Rounding is half-to-even, matching the runtime the scores were originally
// produced under; the policy is user-visible and pinned by tests.
func OverallScore(sentiment, resolution, agentPerformance int) int {
	mean := float64(sentiment+resolution+agentPerformance) / 3.0
	return int(math.RoundToEven(mean))
}

// Validate checks score domains and the insight count constraint
func (a *AnalysisResult) Validate() error {
	for _, score := range []struct {
		name  string
		value int
	}{
		{"sentiment", a.Sentiment},
		{"resolution", a.Resolution},
		{"agentPerformance", a.AgentPerformance},
	} {
		if score.value < MinScore || score.value > MaxScore {
			return fmt.Errorf("%s must be between %d and %d, got %d", score.name, MinScore, MaxScore, score.value)
		}
	}

	if len(a.Insights) < MinInsights || len(a.Insights) > MaxInsights {
		return fmt.Errorf("insights must contain between %d and %d entries, got %d", MinInsights, MaxInsights, len(a.Insights))
	}

	for _, insight := range a.Insights {
		switch insight.Type {
		case InsightTypeSuccess, InsightTypeWarning, InsightTypeInfo:
		default:
			return fmt.Errorf("invalid insight type %q", insight.Type)
		}
		if insight.Text == "" {
			return errors.New("insight text cannot be empty")
		}
	}

	return nil
}
