package entities

import (
	"math"
	"testing"
)

func TestNewConversationRecordRescalesScores(t *testing.T) {
	analysis := NewAnalysisResult(7, 8, 9, validInsights(), validMetrics())

	record := NewConversationRecord("session-1", "Müşteri: Merhaba\nTemsilci: Buyurun\n", analysis)

	scores := map[string]struct{ got, want float64 }{
		"sentiment":  {record.SentimentScore, 0.7},
		"resolution": {record.ResolutionScore, 0.8},
		"agent":      {record.AgentPerformance, 0.9},
		"overall":    {record.OverallScore, 0.8},
	}
	for name, s := range scores {
		if math.Abs(s.got-s.want) > 1e-9 {
			t.Errorf("%s score = %f, want %f", name, s.got, s.want)
		}
	}

	if !record.IsResolved {
		t.Error("Expected record to be resolved")
	}
	if record.SessionID != "session-1" {
		t.Errorf("Expected session-1, got %s", record.SessionID)
	}
	if record.Timestamp.IsZero() {
		t.Error("Expected timestamp to be set")
	}
}

func TestNewConversationRecordMapsVocabulary(t *testing.T) {
	tests := []struct {
		name        string
		metrics     Metrics
		wantEmotion string
		wantEmpathy string
		wantSpeed   string
	}{
		{
			name: "turkish vocabulary",
			metrics: Metrics{
				ResponseTime:    "Hızlı",
				EmpathyLevel:    "Yüksek",
				CustomerEmotion: "Pozitif",
			},
			wantEmotion: "satisfied",
			wantEmpathy: "high",
			wantSpeed:   "fast",
		},
		{
			name: "english vocabulary",
			metrics: Metrics{
				ResponseTime:    "slow",
				EmpathyLevel:    "low",
				CustomerEmotion: "negative",
			},
			wantEmotion: "frustrated",
			wantEmpathy: "low",
			wantSpeed:   "slow",
		},
		{
			name: "neutral maps to neutral",
			metrics: Metrics{
				ResponseTime:    "Orta",
				EmpathyLevel:    "Orta",
				CustomerEmotion: "Nötr",
			},
			wantEmotion: "neutral",
			wantEmpathy: "medium",
			wantSpeed:   "medium",
		},
		{
			name: "unknown values pass through lower-cased",
			metrics: Metrics{
				ResponseTime:    "Instant",
				EmpathyLevel:    "Extreme",
				CustomerEmotion: "Ecstatic",
			},
			wantEmotion: "ecstatic",
			wantEmpathy: "extreme",
			wantSpeed:   "instant",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			analysis := NewAnalysisResult(5, 5, 5, validInsights(), tt.metrics)
			record := NewConversationRecord("s", "Müşteri: test", analysis)

			if record.CustomerEmotion != tt.wantEmotion {
				t.Errorf("Emotion = %q, want %q", record.CustomerEmotion, tt.wantEmotion)
			}
			if record.EmpathyLevel != tt.wantEmpathy {
				t.Errorf("Empathy = %q, want %q", record.EmpathyLevel, tt.wantEmpathy)
			}
			if record.ResponseTime != tt.wantSpeed {
				t.Errorf("ResponseTime = %q, want %q", record.ResponseTime, tt.wantSpeed)
			}
		})
	}
}

func TestNewConversationRecordCategory(t *testing.T) {
	analysis := NewAnalysisResult(5, 5, 5, validInsights(), validMetrics())

	record := NewConversationRecord("s", "Müşteri: test", analysis)
	if record.Category != "general" {
		t.Errorf("Expected default category 'general', got %q", record.Category)
	}

	analysis.Category = "billing_error"
	record = NewConversationRecord("s", "Müşteri: test", analysis)
	if record.Category != "billing_error" {
		t.Errorf("Expected category 'billing_error', got %q", record.Category)
	}
}

func TestSplitTranscript(t *testing.T) {
	transcript := "Müşteri: İnternetim yavaş\n" +
		"Temsilci: Modemi resetlediniz mi?\n" +
		"Müşteri: Evet, üç kez\n" +
		"\n" +
		"Agent: Teknisyen gönderiyoruz\n" +
		"hattım da kesiliyor\n"

	customerText, agentText := SplitTranscript(transcript)

	wantCustomer := "İnternetim yavaş\nEvet, üç kez\nhattım da kesiliyor"
	if customerText != wantCustomer {
		t.Errorf("Customer text = %q, want %q", customerText, wantCustomer)
	}

	wantAgent := "Modemi resetlediniz mi?\nTeknisyen gönderiyoruz"
	if agentText != wantAgent {
		t.Errorf("Agent text = %q, want %q", agentText, wantAgent)
	}
}

func TestSplitTranscriptEmpty(t *testing.T) {
	customerText, agentText := SplitTranscript("")
	if customerText != "" || agentText != "" {
		t.Errorf("Expected empty split, got %q / %q", customerText, agentText)
	}
}
