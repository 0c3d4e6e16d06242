package entities

import (
	"strings"
	"time"
)

// customerEmotionVocabulary translates the model's categorical emotion values
// (Turkish or English) into the stored vocabulary. Unknown values pass
// through lower-cased rather than failing.
var customerEmotionVocabulary = map[string]string{
	"pozitif":  "satisfied",
	"positive": "satisfied",
	"nötr":     "neutral",
	"neutral":  "neutral",
	"negatif":  "frustrated",
	"negative": "frustrated",
}

var empathyLevelVocabulary = map[string]string{
	"yüksek": "high",
	"high":   "high",
	"orta":   "medium",
	"medium": "medium",
	"düşük":  "low",
	"low":    "low",
}

var responseTimeVocabulary = map[string]string{
	"hızlı":  "fast",
	"fast":   "fast",
	"orta":   "medium",
	"medium": "medium",
	"yavaş":  "slow",
	"slow":   "slow",
}

// Transcript line prefixes used by clients to label the speaking role
var (
	customerLinePrefixes = []string{"Müşteri:", "Customer:"}
	agentLinePrefixes    = []string{"Temsilci:", "Agent:"}
)

// ConversationRecord is the normalized conversation handed to the
// persistence layer after a completed agent-side analysis. Scores are
// rescaled to the 0-1 range and categorical values are mapped through the
// stored vocabulary.
type ConversationRecord struct {
	SessionID        string    `json:"session_id" bson:"session_id"`
	CustomerMessage  string    `json:"customer_message" bson:"customer_message"`
	AgentMessage     string    `json:"agent_message" bson:"agent_message"`
	SentimentScore   float64   `json:"sentiment_score" bson:"sentiment_score"`
	ResolutionScore  float64   `json:"resolution_score" bson:"resolution_score"`
	AgentPerformance float64   `json:"agent_performance" bson:"agent_performance"`
	OverallScore     float64   `json:"overall_score" bson:"overall_score"`
	IsResolved       bool      `json:"is_resolved" bson:"is_resolved"`
	CustomerEmotion  string    `json:"customer_emotion" bson:"customer_emotion"`
	ResponseTime     string    `json:"response_time" bson:"response_time"`
	EmpathyLevel     string    `json:"empathy_level" bson:"empathy_level"`
	Category         string    `json:"category" bson:"category"`
	Timestamp        time.Time `json:"timestamp" bson:"timestamp"`
}

// NewConversationRecord maps an analysis result and its transcript into the
// persistence contract: sub-scores divided by 10, emotion/empathy/response
// time run through the vocabulary tables, transcript split per role.
func NewConversationRecord(sessionID, transcript string, analysis *AnalysisResult) *ConversationRecord {
	customerText, agentText := SplitTranscript(transcript)

	category := analysis.Category
	if category == "" {
		category = "general"
	}

	return &ConversationRecord{
		SessionID:        sessionID,
		CustomerMessage:  customerText,
		AgentMessage:     agentText,
		SentimentScore:   float64(analysis.Sentiment) / 10,
		ResolutionScore:  float64(analysis.Resolution) / 10,
		AgentPerformance: float64(analysis.AgentPerformance) / 10,
		OverallScore:     float64(analysis.OverallScore) / 10,
		IsResolved:       analysis.Metrics.ProblemResolved,
		CustomerEmotion:  MapVocabulary(customerEmotionVocabulary, analysis.Metrics.CustomerEmotion),
		ResponseTime:     MapVocabulary(responseTimeVocabulary, analysis.Metrics.ResponseTime),
		EmpathyLevel:     MapVocabulary(empathyLevelVocabulary, analysis.Metrics.EmpathyLevel),
		Category:         category,
		Timestamp:        time.Now(),
	}
}

// MapVocabulary looks up a categorical model value case-insensitively.
// Unmapped values pass through lower-cased verbatim.
func MapVocabulary(vocabulary map[string]string, value string) string {
	lowered := strings.ToLower(strings.TrimSpace(value))
	if mapped, ok := vocabulary[lowered]; ok {
		return mapped
	}
	return lowered
}

// SplitTranscript separates a newline-joined transcript into customer and
// agent text by role line prefixes. Unlabeled lines count as customer text,
// since customers are the side whose clients may omit the label.
func SplitTranscript(transcript string) (customerText, agentText string) {
	var customerLines, agentLines []string

	for _, line := range strings.Split(transcript, "\n") {
		trimmed := strings.TrimSpace(line)
		if trimmed == "" {
			continue
		}

		if content, ok := stripAnyPrefix(trimmed, agentLinePrefixes); ok {
			agentLines = append(agentLines, content)
			continue
		}
		if content, ok := stripAnyPrefix(trimmed, customerLinePrefixes); ok {
			customerLines = append(customerLines, content)
			continue
		}
		customerLines = append(customerLines, trimmed)
	}

	return strings.Join(customerLines, "\n"), strings.Join(agentLines, "\n")
}

func stripAnyPrefix(line string, prefixes []string) (string, bool) {
	for _, prefix := range prefixes {
		if strings.HasPrefix(line, prefix) {
			return strings.TrimSpace(strings.TrimPrefix(line, prefix)), true
		}
	}
	return "", false
}
