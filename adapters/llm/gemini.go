package llm

import (
	"context"
	"fmt"
	"os"

	"go.uber.org/zap"
	"google.golang.org/genai"

	"github.com/callsight/server/domain/entities"
	"github.com/callsight/server/domain/repositories"
)

const defaultGeminiModel = "gemini-2.0-flash"

// GeminiAnalyzer implements ConversationAnalyzer using Google's Gemini API.
// Same prompt and parse pipeline as the OpenAI-compatible analyzer, selected
// with ANALYSIS_PROVIDER=gemini.
type GeminiAnalyzer struct {
	client *genai.Client
	logger *zap.Logger
	model  string
}

// Ensure GeminiAnalyzer implements the ConversationAnalyzer interface
var _ repositories.ConversationAnalyzer = (*GeminiAnalyzer)(nil)

// NewGeminiAnalyzer creates a Gemini-backed analyzer
func NewGeminiAnalyzer(logger *zap.Logger) (*GeminiAnalyzer, error) {
	apiKey := os.Getenv("GEMINI_API_KEY")
	if apiKey == "" {
		return nil, fmt.Errorf("GEMINI_API_KEY environment variable is required")
	}

	ctx := context.Background()
	client, err := genai.NewClient(ctx, &genai.ClientConfig{
		APIKey:  apiKey,
		Backend: genai.BackendGeminiAPI,
	})
	if err != nil {
		return nil, fmt.Errorf("failed to create Gemini client: %w", err)
	}

	model := os.Getenv("GEMINI_MODEL")
	if model == "" {
		model = defaultGeminiModel
		logger.Info("Using default Gemini model", zap.String("model", model))
	}

	return &GeminiAnalyzer{
		client: client,
		logger: logger,
		model:  model,
	}, nil
}

// Analyze scores a conversation transcript via Gemini GenerateContent
func (g *GeminiAnalyzer) Analyze(ctx context.Context, conversationText string) (*entities.AnalysisResult, error) {
	contents := []*genai.Content{
		genai.NewContentFromText(systemPrompt, genai.RoleUser),
		genai.NewContentFromText(AnalysisPrompt(conversationText), genai.RoleUser),
	}

	config := &genai.GenerateContentConfig{
		Temperature:     genai.Ptr(float32(analysisTemperature)),
		TopP:            genai.Ptr(float32(analysisTopP)),
		MaxOutputTokens: int32(analysisMaxTokens),
	}

	// Same fixed deadline as the HTTP analyzer; a timed-out call fails the
	// analysis and is reported to the client, no retry.
	ctx, cancel := context.WithTimeout(ctx, defaultOpenAITimeout)
	defer cancel()

	response, err := g.client.Models.GenerateContent(ctx, g.model, contents, config)
	if err != nil {
		g.logger.Error("Gemini analysis request failed", zap.Error(err))
		return nil, fmt.Errorf("gemini request failed: %w", err)
	}

	if len(response.Candidates) == 0 || len(response.Candidates[0].Content.Parts) == 0 {
		return nil, &repositories.ParseError{Reason: "no content generated"}
	}

	var responseText string
	for _, part := range response.Candidates[0].Content.Parts {
		if part.Text != "" {
			responseText += part.Text
		}
	}

	result, err := ParseAnalysisResponse(responseText)
	if err != nil {
		return nil, err
	}

	g.logger.Info("Conversation analyzed",
		zap.Int("overallScore", result.OverallScore),
		zap.Int("sentiment", result.Sentiment))

	return result, nil
}
