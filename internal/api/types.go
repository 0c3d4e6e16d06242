package api

import "time"

// AnalyzeRequest is the one-shot REST analysis request body
type AnalyzeRequest struct {
	Text           string                 `json:"text"`
	ConversationID string                 `json:"conversation_id,omitempty"`
	Metadata       map[string]interface{} `json:"metadata,omitempty"`
}

// HealthResponse describes the service root endpoint payload
type HealthResponse struct {
	Status      string `json:"status"`
	Service     string `json:"service"`
	Version     string `json:"version"`
	WebSocket   string `json:"websocket"`
	Connections int    `json:"connections"`
}

// StatsResponse reports live WebSocket connection statistics
type StatsResponse struct {
	ActiveConnections int       `json:"active_connections"`
	ActiveClients     []string  `json:"active_clients"`
	Timestamp         time.Time `json:"timestamp"`
}

// ErrorResponse is the common REST error payload
type ErrorResponse struct {
	Error   string `json:"error"`
	Message string `json:"message"`
}
