package llm

import (
	"errors"
	"testing"

	"github.com/callsight/server/domain/repositories"
)

const wellFormedResponse = `{
	"sentiment": 7,
	"resolution": 8,
	"agentPerformance": 9,
	"insights": [
		{"type": "success", "text": "Sorun ilk temasta çözüldü"},
		{"type": "info", "text": "Müşteri ek paket satın aldı"}
	],
	"metrics": {
		"responseTime": "fast",
		"empathyLevel": "high",
		"problemResolved": true,
		"customerEmotion": "positive"
	}
}`

func TestParseAnalysisResponse(t *testing.T) {
	result, err := ParseAnalysisResponse(wellFormedResponse)
	if err != nil {
		t.Fatalf("ParseAnalysisResponse() error = %v", err)
	}

	if result.OverallScore != 8 {
		t.Errorf("Expected overall score 8, got %d", result.OverallScore)
	}
	if result.Sentiment != 7 {
		t.Errorf("Expected sentiment 7, got %d", result.Sentiment)
	}
	if len(result.Insights) != 2 {
		t.Errorf("Expected 2 insights, got %d", len(result.Insights))
	}
	if !result.Metrics.ProblemResolved {
		t.Error("Expected problemResolved true")
	}
	if result.Timestamp == "" {
		t.Error("Expected timestamp to be set")
	}
}

func TestParseAnalysisResponseStripsFences(t *testing.T) {
	fenced := "```json\n" + wellFormedResponse + "\n```"

	result, err := ParseAnalysisResponse(fenced)
	if err != nil {
		t.Fatalf("ParseAnalysisResponse() error = %v", err)
	}
	if result.OverallScore != 8 {
		t.Errorf("Expected overall score 8, got %d", result.OverallScore)
	}

	bareFence := "```\n" + wellFormedResponse + "\n```"
	if _, err := ParseAnalysisResponse(bareFence); err != nil {
		t.Errorf("ParseAnalysisResponse() with bare fence error = %v", err)
	}
}

func TestParseAnalysisResponseFailures(t *testing.T) {
	tests := []struct {
		name string
		raw  string
	}{
		{"malformed JSON", `{"sentiment": }`},
		{"plain text", "Konuşma gayet olumluydu."},
		{"missing sentiment", `{"resolution": 8, "agentPerformance": 9, "insights": [{"type":"info","text":"a"},{"type":"info","text":"b"}], "metrics": {"responseTime":"fast","empathyLevel":"high","problemResolved":true,"customerEmotion":"positive"}}`},
		{"missing metrics", `{"sentiment": 7, "resolution": 8, "agentPerformance": 9, "insights": [{"type":"info","text":"a"},{"type":"info","text":"b"}]}`},
		{"score out of domain", `{"sentiment": 70, "resolution": 8, "agentPerformance": 9, "insights": [{"type":"info","text":"a"},{"type":"info","text":"b"}], "metrics": {"responseTime":"fast","empathyLevel":"high","problemResolved":true,"customerEmotion":"positive"}}`},
		{"single insight", `{"sentiment": 7, "resolution": 8, "agentPerformance": 9, "insights": [{"type":"info","text":"a"}], "metrics": {"responseTime":"fast","empathyLevel":"high","problemResolved":true,"customerEmotion":"positive"}}`},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := ParseAnalysisResponse(tt.raw)
			if err == nil {
				t.Fatal("Expected error, got nil")
			}
			var parseErr *repositories.ParseError
			if !errors.As(err, &parseErr) {
				t.Errorf("Expected *repositories.ParseError, got %T", err)
			}
		})
	}
}

func TestStripCodeFences(t *testing.T) {
	tests := []struct {
		name string
		raw  string
		want string
	}{
		{"no fence", `{"a": 1}`, `{"a": 1}`},
		{"json fence", "```json\n{\"a\": 1}\n```", `{"a": 1}`},
		{"bare fence", "```\n{\"a\": 1}\n```", `{"a": 1}`},
		{"surrounding whitespace", "  ```json\n{\"a\": 1}\n```  ", `{"a": 1}`},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := StripCodeFences(tt.raw); got != tt.want {
				t.Errorf("StripCodeFences() = %q, want %q", got, tt.want)
			}
		})
	}
}
