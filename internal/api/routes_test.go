package api

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	gorilla "github.com/gorilla/websocket"
	"github.com/labstack/echo/v4"
	"go.uber.org/zap"

	"github.com/callsight/server/domain/entities"
	"github.com/callsight/server/internal/websocket"
	"github.com/callsight/server/usecase"
)

type fakeAnalyzer struct {
	err error
}

func (a *fakeAnalyzer) Analyze(ctx context.Context, conversationText string) (*entities.AnalysisResult, error) {
	if a.err != nil {
		return nil, a.err
	}
	return entities.NewAnalysisResult(7, 8, 9,
		[]entities.Insight{
			{Type: entities.InsightTypeSuccess, Text: "Sorun çözüldü"},
			{Type: entities.InsightTypeInfo, Text: "Müşteri memnun"},
		},
		entities.Metrics{
			ResponseTime:    "fast",
			EmpathyLevel:    "high",
			ProblemResolved: true,
			CustomerEmotion: "positive",
		},
	), nil
}

func newTestServer(t *testing.T, analyzer *fakeAnalyzer) *httptest.Server {
	t.Helper()
	logger := zap.NewNop()
	hub := websocket.NewHub(logger)
	go hub.Run()
	service := usecase.NewAnalysisService(analyzer, nil, logger)

	e := echo.New()
	InitRoutes(e, hub, service, logger)

	server := httptest.NewServer(e)
	t.Cleanup(server.Close)
	return server
}

func TestHealthEndpoint(t *testing.T) {
	server := newTestServer(t, &fakeAnalyzer{})

	resp, err := http.Get(server.URL + "/")
	if err != nil {
		t.Fatalf("GET / error = %v", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		t.Fatalf("Status = %d, want 200", resp.StatusCode)
	}

	var health HealthResponse
	if err := json.NewDecoder(resp.Body).Decode(&health); err != nil {
		t.Fatalf("Decode error = %v", err)
	}
	if health.Status != "online" {
		t.Errorf("Status = %q, want online", health.Status)
	}
	if health.Service != "callsight-server" {
		t.Errorf("Service = %q", health.Service)
	}
	if health.Connections != 0 {
		t.Errorf("Connections = %d, want 0", health.Connections)
	}
}

func TestStatsEndpoint(t *testing.T) {
	server := newTestServer(t, &fakeAnalyzer{})

	resp, err := http.Get(server.URL + "/api/stats")
	if err != nil {
		t.Fatalf("GET /api/stats error = %v", err)
	}
	defer resp.Body.Close()

	var stats StatsResponse
	if err := json.NewDecoder(resp.Body).Decode(&stats); err != nil {
		t.Fatalf("Decode error = %v", err)
	}
	if stats.ActiveConnections != 0 || len(stats.ActiveClients) != 0 {
		t.Errorf("Expected no active clients, got %+v", stats)
	}
}

func TestAnalyzeEndpoint(t *testing.T) {
	server := newTestServer(t, &fakeAnalyzer{})

	body := `{"text": "Müşteri: İnternetim yavaş\nTemsilci: Yardımcı olayım", "conversation_id": "conv-1"}`
	resp, err := http.Post(server.URL+"/api/analyze", "application/json", strings.NewReader(body))
	if err != nil {
		t.Fatalf("POST /api/analyze error = %v", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		t.Fatalf("Status = %d, want 200", resp.StatusCode)
	}

	var result entities.AnalysisResult
	if err := json.NewDecoder(resp.Body).Decode(&result); err != nil {
		t.Fatalf("Decode error = %v", err)
	}
	if result.OverallScore != 8 {
		t.Errorf("OverallScore = %d, want 8", result.OverallScore)
	}
	if result.ConversationID != "conv-1" {
		t.Errorf("ConversationID = %q, want conv-1", result.ConversationID)
	}
}

func TestAnalyzeEndpointEmptyText(t *testing.T) {
	server := newTestServer(t, &fakeAnalyzer{})

	resp, err := http.Post(server.URL+"/api/analyze", "application/json", strings.NewReader(`{"text": "   "}`))
	if err != nil {
		t.Fatalf("POST /api/analyze error = %v", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusBadRequest {
		t.Fatalf("Status = %d, want 400", resp.StatusCode)
	}

	var errResp ErrorResponse
	if err := json.NewDecoder(resp.Body).Decode(&errResp); err != nil {
		t.Fatalf("Decode error = %v", err)
	}
	if errResp.Error != "empty_conversation" {
		t.Errorf("Error = %q, want empty_conversation", errResp.Error)
	}
}

func TestAnalyzeEndpointFailure(t *testing.T) {
	server := newTestServer(t, &fakeAnalyzer{err: errors.New("inference endpoint unreachable")})

	resp, err := http.Post(server.URL+"/api/analyze", "application/json", strings.NewReader(`{"text": "Müşteri: test"}`))
	if err != nil {
		t.Fatalf("POST /api/analyze error = %v", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusInternalServerError {
		t.Fatalf("Status = %d, want 500", resp.StatusCode)
	}
}

func TestAdminConversationsWithoutDatabase(t *testing.T) {
	server := newTestServer(t, &fakeAnalyzer{})

	resp, err := http.Get(server.URL + "/api/admin/conversations?limit=5")
	if err != nil {
		t.Fatalf("GET /api/admin/conversations error = %v", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		t.Fatalf("Status = %d, want 200", resp.StatusCode)
	}

	var listing struct {
		Conversations []entities.ConversationRecord `json:"conversations"`
		Limit         int64                         `json:"limit"`
	}
	if err := json.NewDecoder(resp.Body).Decode(&listing); err != nil {
		t.Fatalf("Decode error = %v", err)
	}
	if len(listing.Conversations) != 0 {
		t.Errorf("Expected empty listing, got %d records", len(listing.Conversations))
	}
	if listing.Limit != 5 {
		t.Errorf("Limit = %d, want 5", listing.Limit)
	}
}

func TestWebSocketConnect(t *testing.T) {
	server := newTestServer(t, &fakeAnalyzer{})

	wsURL := "ws" + strings.TrimPrefix(server.URL, "http") + "/ws/customer/abc"
	conn, _, err := gorilla.DefaultDialer.Dial(wsURL, nil)
	if err != nil {
		t.Fatalf("Dial error = %v", err)
	}
	defer conn.Close()

	conn.SetReadDeadline(time.Now().Add(2 * time.Second))
	_, payload, err := conn.ReadMessage()
	if err != nil {
		t.Fatalf("ReadMessage error = %v", err)
	}

	var envelope map[string]interface{}
	if err := json.Unmarshal(payload, &envelope); err != nil {
		t.Fatalf("Unmarshal error = %v", err)
	}
	if envelope["type"] != "connected" {
		t.Errorf("type = %v, want connected", envelope["type"])
	}
	if envelope["client_id"] != "customer-abc" {
		t.Errorf("client_id = %v, want customer-abc", envelope["client_id"])
	}
}
