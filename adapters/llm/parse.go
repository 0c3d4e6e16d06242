package llm

import (
	"encoding/json"
	"strings"

	"github.com/callsight/server/domain/entities"
	"github.com/callsight/server/domain/repositories"
)

// modelAnalysis mirrors the JSON object the model is instructed to emit
type modelAnalysis struct {
	Sentiment        *int               `json:"sentiment"`
	Resolution       *int               `json:"resolution"`
	AgentPerformance *int               `json:"agentPerformance"`
	Insights         []entities.Insight `json:"insights"`
	Metrics          *entities.Metrics  `json:"metrics"`
	Category         string             `json:"category"`
}

// ParseAnalysisResponse turns raw model output into a validated
// AnalysisResult. Code-block fences are stripped before parsing; anything
// else wrong with the body surfaces as a *repositories.ParseError.
func ParseAnalysisResponse(raw string) (*entities.AnalysisResult, error) {
	cleaned := StripCodeFences(raw)

	var parsed modelAnalysis
	if err := json.Unmarshal([]byte(cleaned), &parsed); err != nil {
		return nil, &repositories.ParseError{Reason: "invalid JSON: " + err.Error()}
	}

	if parsed.Sentiment == nil || parsed.Resolution == nil || parsed.AgentPerformance == nil {
		return nil, &repositories.ParseError{Reason: "missing one of sentiment, resolution, agentPerformance"}
	}
	if parsed.Metrics == nil {
		return nil, &repositories.ParseError{Reason: "missing metrics object"}
	}

	result := entities.NewAnalysisResult(
		*parsed.Sentiment,
		*parsed.Resolution,
		*parsed.AgentPerformance,
		parsed.Insights,
		*parsed.Metrics,
	)
	result.Category = parsed.Category

	if err := result.Validate(); err != nil {
		return nil, &repositories.ParseError{Reason: err.Error()}
	}

	return result, nil
}

// StripCodeFences removes a surrounding ```json / ``` fence, which some
// models wrap around the payload despite the JSON-only instruction
func StripCodeFences(raw string) string {
	cleaned := strings.TrimSpace(raw)
	if strings.HasPrefix(cleaned, "```json") {
		cleaned = cleaned[len("```json"):]
	} else if strings.HasPrefix(cleaned, "```") {
		cleaned = cleaned[len("```"):]
	}
	cleaned = strings.TrimSuffix(strings.TrimSpace(cleaned), "```")
	return strings.TrimSpace(cleaned)
}
