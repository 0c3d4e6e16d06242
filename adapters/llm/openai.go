package llm

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"os"
	"time"

	"go.uber.org/zap"

	"github.com/callsight/server/domain/entities"
	"github.com/callsight/server/domain/repositories"
)

const (
	defaultOpenAIModel   = "gpt-oss-20b"
	defaultOpenAITimeout = 30 * time.Second

	analysisTemperature = 0.3
	analysisMaxTokens   = 1500
	analysisTopP        = 0.9
)

// OpenAIConfig holds configuration for the OpenAI-compatible analyzer.
// Required fields:
// - APIURL: full URL of the chat completions endpoint
// Optional fields with defaults:
// - APIKey: bearer token, omitted from the request when empty
// - Model: model name (default: "gpt-oss-20b")
type OpenAIConfig struct {
	APIURL string
	APIKey string
	Model  string
}

// OpenAIAnalyzer implements ConversationAnalyzer against any
// OpenAI-compatible chat completions endpoint
type OpenAIAnalyzer struct {
	apiURL     string
	apiKey     string
	model      string
	httpClient *http.Client
	logger     *zap.Logger
}

// Ensure OpenAIAnalyzer implements the ConversationAnalyzer interface
var _ repositories.ConversationAnalyzer = (*OpenAIAnalyzer)(nil)

type chatMessage struct {
	Role    string `json:"role"`
	Content string `json:"content"`
}

type chatCompletionRequest struct {
	Model       string        `json:"model"`
	Messages    []chatMessage `json:"messages"`
	Temperature float64       `json:"temperature"`
	MaxTokens   int           `json:"max_tokens"`
	TopP        float64       `json:"top_p"`
}

type chatCompletionResponse struct {
	Choices []struct {
		Message chatMessage `json:"message"`
	} `json:"choices"`
}

// NewOpenAIAnalyzer creates an analyzer for an OpenAI-compatible endpoint
func NewOpenAIAnalyzer(config OpenAIConfig, logger *zap.Logger) (*OpenAIAnalyzer, error) {
	if config.APIURL == "" {
		return nil, fmt.Errorf("analysis API URL is required")
	}

	model := config.Model
	if model == "" {
		model = defaultOpenAIModel
		logger.Info("Using default analysis model", zap.String("model", model))
	}

	return &OpenAIAnalyzer{
		apiURL: config.APIURL,
		apiKey: config.APIKey,
		model:  model,
		// Fixed timeout for the inference call; on expiry the analysis
		// fails and is reported to the client, no retry.
		httpClient: &http.Client{Timeout: defaultOpenAITimeout},
		logger:     logger,
	}, nil
}

// NewOpenAIConfigFromEnv builds an OpenAIConfig from environment variables
func NewOpenAIConfigFromEnv() OpenAIConfig {
	return OpenAIConfig{
		APIURL: os.Getenv("ANALYSIS_API_URL"),
		APIKey: os.Getenv("ANALYSIS_API_KEY"),
		Model:  os.Getenv("ANALYSIS_MODEL"),
	}
}

// Analyze scores a conversation transcript via the chat completions endpoint
func (a *OpenAIAnalyzer) Analyze(ctx context.Context, conversationText string) (*entities.AnalysisResult, error) {
	request := chatCompletionRequest{
		Model: a.model,
		Messages: []chatMessage{
			{Role: "system", Content: systemPrompt},
			{Role: "user", Content: AnalysisPrompt(conversationText)},
		},
		Temperature: analysisTemperature,
		MaxTokens:   analysisMaxTokens,
		TopP:        analysisTopP,
	}

	requestBody, err := json.Marshal(request)
	if err != nil {
		return nil, fmt.Errorf("failed to marshal analysis request: %w", err)
	}

	httpReq, err := http.NewRequestWithContext(ctx, http.MethodPost, a.apiURL, bytes.NewBuffer(requestBody))
	if err != nil {
		return nil, fmt.Errorf("failed to create HTTP request: %w", err)
	}
	httpReq.Header.Set("Content-Type", "application/json")
	if a.apiKey != "" {
		httpReq.Header.Set("Authorization", "Bearer "+a.apiKey)
	}

	resp, err := a.httpClient.Do(httpReq)
	if err != nil {
		a.logger.Error("Analysis request failed", zap.Error(err))
		return nil, fmt.Errorf("inference endpoint unreachable: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		errorBody, _ := io.ReadAll(resp.Body)
		a.logger.Error("Inference endpoint returned error",
			zap.Int("statusCode", resp.StatusCode),
			zap.String("response", string(errorBody)))
		return nil, fmt.Errorf("inference endpoint returned status %d", resp.StatusCode)
	}

	var completion chatCompletionResponse
	if err := json.NewDecoder(resp.Body).Decode(&completion); err != nil {
		return nil, fmt.Errorf("failed to decode completion response: %w", err)
	}
	if len(completion.Choices) == 0 {
		return nil, &repositories.ParseError{Reason: "completion contained no choices"}
	}

	result, err := ParseAnalysisResponse(completion.Choices[0].Message.Content)
	if err != nil {
		return nil, err
	}

	a.logger.Info("Conversation analyzed",
		zap.Int("overallScore", result.OverallScore),
		zap.Int("sentiment", result.Sentiment),
		zap.Bool("problemResolved", result.Metrics.ProblemResolved))

	return result, nil
}
