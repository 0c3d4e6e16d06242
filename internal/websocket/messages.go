package websocket

import (
	"fmt"
	"time"

	"github.com/callsight/server/domain/entities"
)

// MessageType defines the type of WebSocket envelope
type MessageType string

// Inbound envelope types
const (
	MessageTypeAddText  MessageType = "add_text"
	MessageTypeAnalyze  MessageType = "analyze"
	MessageTypeClear    MessageType = "clear"
	MessageTypeLiveMode MessageType = "live_mode"
	MessageTypePing     MessageType = "ping"
)

// Outbound envelope types
const (
	MessageTypeConnected       MessageType = "connected"
	MessageTypeTextAdded       MessageType = "text_added"
	MessageTypeNewMessage      MessageType = "new_message"
	MessageTypeAnalyzing       MessageType = "analyzing"
	MessageTypeAnalysisResult  MessageType = "analysis_result"
	MessageTypeCleared         MessageType = "cleared"
	MessageTypeLiveModeChanged MessageType = "live_mode_changed"
	MessageTypePong            MessageType = "pong"
	MessageTypeError           MessageType = "error"
)

// InboundEnvelope is the decoded form of any client message; fields beyond
// Type are populated per message type
type InboundEnvelope struct {
	Type    MessageType `json:"type"`
	Text    string      `json:"text,omitempty"`
	Enabled bool        `json:"enabled,omitempty"`
}

// BaseEnvelope carries the discriminator and the ISO-8601 timestamp every
// outbound envelope must have
type BaseEnvelope struct {
	Type      MessageType `json:"type"`
	Timestamp string      `json:"timestamp"`
}

func newBaseEnvelope(messageType MessageType) BaseEnvelope {
	return BaseEnvelope{
		Type:      messageType,
		Timestamp: time.Now().Format(time.RFC3339),
	}
}

// ConnectedMessage is the greeting sent right after a successful upgrade
type ConnectedMessage struct {
	BaseEnvelope
	Message  string `json:"message"`
	ClientID string `json:"client_id"`
}

// TextAddedMessage acknowledges an accepted add_text envelope
type TextAddedMessage struct {
	BaseEnvelope
	Message       string `json:"message"`
	CurrentBuffer string `json:"current_buffer"`
}

// NewMessageBroadcast fans a transcript line out to every connected party
type NewMessageBroadcast struct {
	BaseEnvelope
	Role     string `json:"role"`
	Text     string `json:"text"`
	ClientID string `json:"client_id"`
}

// AnalyzingMessage notifies that an analysis trigger entered flight
type AnalyzingMessage struct {
	BaseEnvelope
	Message string `json:"message"`
}

// AnalysisResultMessage delivers a completed analysis. Conversation carries
// the analyzed transcript on manual triggers only.
type AnalysisResultMessage struct {
	BaseEnvelope
	Analysis     *entities.AnalysisResult `json:"analysis"`
	Conversation string                   `json:"conversation,omitempty"`
}

// ClearedMessage acknowledges a buffer clear
type ClearedMessage struct {
	BaseEnvelope
	Message string `json:"message"`
}

// LiveModeChangedMessage acknowledges a live_mode toggle
type LiveModeChangedMessage struct {
	BaseEnvelope
	Enabled bool   `json:"enabled"`
	Message string `json:"message"`
}

// PongMessage answers a keepalive ping
type PongMessage struct {
	BaseEnvelope
}

// ErrorMessage reports a non-fatal processing fault to the client
type ErrorMessage struct {
	BaseEnvelope
	Message string `json:"message"`
}

// CreateConnectedMessage creates the post-upgrade greeting
func CreateConnectedMessage(clientID string) *ConnectedMessage {
	return &ConnectedMessage{
		BaseEnvelope: newBaseEnvelope(MessageTypeConnected),
		Message:      "WebSocket bağlantısı kuruldu",
		ClientID:     clientID,
	}
}

// CreateTextAddedMessage creates an add_text acknowledgement
func CreateTextAddedMessage(currentBuffer string) *TextAddedMessage {
	return &TextAddedMessage{
		BaseEnvelope:  newBaseEnvelope(MessageTypeTextAdded),
		Message:       "Metin eklendi",
		CurrentBuffer: currentBuffer,
	}
}

// CreateNewMessageBroadcast creates the dual-role transcript line broadcast
func CreateNewMessageBroadcast(role, text, clientID string) *NewMessageBroadcast {
	return &NewMessageBroadcast{
		BaseEnvelope: newBaseEnvelope(MessageTypeNewMessage),
		Role:         role,
		Text:         text,
		ClientID:     clientID,
	}
}

// CreateAnalyzingMessage creates the in-flight analysis notification
func CreateAnalyzingMessage() *AnalyzingMessage {
	return &AnalyzingMessage{
		BaseEnvelope: newBaseEnvelope(MessageTypeAnalyzing),
		Message:      "Analiz yapılıyor...",
	}
}

// CreateAnalysisResultMessage creates a completed-analysis envelope
func CreateAnalysisResultMessage(analysis *entities.AnalysisResult, conversation string) *AnalysisResultMessage {
	return &AnalysisResultMessage{
		BaseEnvelope: newBaseEnvelope(MessageTypeAnalysisResult),
		Analysis:     analysis,
		Conversation: conversation,
	}
}

// CreateClearedMessage creates a clear acknowledgement
func CreateClearedMessage() *ClearedMessage {
	return &ClearedMessage{
		BaseEnvelope: newBaseEnvelope(MessageTypeCleared),
		Message:      "Buffer temizlendi",
	}
}

// CreateLiveModeChangedMessage creates a live_mode acknowledgement
func CreateLiveModeChangedMessage(enabled bool) *LiveModeChangedMessage {
	message := "Canlı analiz modu kapatıldı"
	if enabled {
		message = "Canlı analiz modu açıldı"
	}
	return &LiveModeChangedMessage{
		BaseEnvelope: newBaseEnvelope(MessageTypeLiveModeChanged),
		Enabled:      enabled,
		Message:      message,
	}
}

// CreatePongMessage creates a keepalive response
func CreatePongMessage() *PongMessage {
	return &PongMessage{
		BaseEnvelope: newBaseEnvelope(MessageTypePong),
	}
}

// CreateErrorMessage creates a non-fatal error envelope
func CreateErrorMessage(message string) *ErrorMessage {
	return &ErrorMessage{
		BaseEnvelope: newBaseEnvelope(MessageTypeError),
		Message:      message,
	}
}

// CreateUnknownTypeError creates the error envelope for an unrecognized
// inbound type, echoing the offending type back
func CreateUnknownTypeError(messageType MessageType) *ErrorMessage {
	return CreateErrorMessage(fmt.Sprintf("Bilinmeyen mesaj tipi: %s", messageType))
}
