package websocket

import (
	"context"
	"encoding/json"
	"net/http"
	"strings"
	"sync"
	"time"

	"github.com/google/uuid"
	"github.com/gorilla/websocket"
	"github.com/labstack/echo/v4"
	"go.uber.org/zap"

	"github.com/callsight/server/usecase"
)

const (
	// Time allowed to write a message to the peer.
	writeWait = 10 * time.Second

	// Time allowed to read the next pong message from the peer.
	pongWait = 60 * time.Second

	// Send pings to peer with this period. Must be less than pongWait.
	pingPeriod = (pongWait * 9) / 10

	// Maximum message size allowed from peer.
	maxMessageSize = 16 * 1024

	// Deadline for one analysis trigger end to end.
	analysisTimeout = 60 * time.Second
)

var upgrader = websocket.Upgrader{
	CheckOrigin: func(r *http.Request) bool {
		// The dashboard is served from a different origin in development
		return true
	},
	ReadBufferSize:  1024,
	WriteBufferSize: 1024,
}

// Role identifies which side of the conversation a connection speaks for
type Role string

const (
	RoleCustomer Role = "customer"
	RoleAgent    Role = "agent"

	// RoleUnscoped is the legacy single-role protocol: private buffer, no
	// cross-connection fan-out.
	RoleUnscoped Role = "unscoped"
)

// Client is the per-connection protocol dispatcher: it owns one socket,
// decodes inbound envelopes one at a time and routes them to the hub and
// the analysis service.
type Client struct {
	hub *Hub

	// The websocket connection.
	conn *websocket.Conn

	// Buffered channel of outbound payloads.
	send chan []byte

	// Registry key; role-prefixed for role-scoped connections so customer
	// and agent using the same external token never collide.
	id string

	// The externally-supplied (or generated) token without role prefix;
	// identifies the shared session for persistence.
	sessionToken string

	role        Role
	connectedAt time.Time

	// Live mode: auto-trigger analysis after each accepted append. Only
	// touched from this connection's read loop, so unsynchronized.
	liveMode bool

	service *usecase.AnalysisService
	logger  *zap.Logger

	// Guards send against enqueue-after-close during disconnect races.
	sendMu sync.Mutex
	closed bool
}

// HandleWebSocket upgrades an HTTP request and runs the connection until
// the peer goes away. The clientID route parameter is the session token; a
// fresh one is generated when the client did not supply any.
func HandleWebSocket(hub *Hub, c echo.Context, role Role, service *usecase.AnalysisService, logger *zap.Logger) error {
	conn, err := upgrader.Upgrade(c.Response(), c.Request(), nil)
	if err != nil {
		logger.Error("WebSocket upgrade failed", zap.Error(err))
		return err
	}

	token := c.Param("clientID")
	if token == "" {
		token = uuid.NewString()
	}

	id := token
	if role != RoleUnscoped {
		id = string(role) + "-" + token
	}

	client := &Client{
		hub:          hub,
		conn:         conn,
		send:         make(chan []byte, 256),
		id:           id,
		sessionToken: token,
		role:         role,
		service:      service,
		logger:       logger,
	}

	client.hub.register <- client

	// Allow collection of memory referenced by the caller by doing all work in
	// new goroutines.
	go client.writePump()
	go client.readPump()

	client.sendEnvelope(CreateConnectedMessage(client.id))

	return nil
}

// readPump pumps envelopes from the websocket connection into the dispatcher.
// One envelope is processed at a time; only transport faults end the loop.
func (c *Client) readPump() {
	defer func() {
		c.hub.unregister <- c
		c.conn.Close()
	}()

	c.conn.SetReadLimit(maxMessageSize)
	c.conn.SetReadDeadline(time.Now().Add(pongWait))
	c.conn.SetPongHandler(func(string) error {
		c.conn.SetReadDeadline(time.Now().Add(pongWait))
		return nil
	})

	for {
		messageType, message, err := c.conn.ReadMessage()
		if err != nil {
			if websocket.IsUnexpectedCloseError(err, websocket.CloseGoingAway, websocket.CloseAbnormalClosure) {
				c.logger.Error("WebSocket error", zap.String("clientID", c.id), zap.Error(err))
			}
			break
		}

		if messageType != websocket.TextMessage {
			c.logger.Warn("Ignoring non-text message", zap.String("clientID", c.id), zap.Int("type", messageType))
			continue
		}

		c.processEnvelope(message)
	}
}

// writePump pumps queued payloads to the websocket connection
func (c *Client) writePump() {
	ticker := time.NewTicker(pingPeriod)
	defer func() {
		ticker.Stop()
		c.conn.Close()
	}()

	for {
		select {
		case payload, ok := <-c.send:
			c.conn.SetWriteDeadline(time.Now().Add(writeWait))
			if !ok {
				c.conn.WriteMessage(websocket.CloseMessage, []byte{})
				return
			}

			if err := c.conn.WriteMessage(websocket.TextMessage, payload); err != nil {
				c.logger.Error("Failed to write message", zap.String("clientID", c.id), zap.Error(err))
				return
			}

		case <-ticker.C:
			c.conn.SetWriteDeadline(time.Now().Add(writeWait))
			if err := c.conn.WriteMessage(websocket.PingMessage, nil); err != nil {
				return
			}
		}
	}
}

// processEnvelope decodes one inbound envelope and dispatches on its type.
// Faults here are reported to the client and never end the connection.
func (c *Client) processEnvelope(message []byte) {
	var envelope InboundEnvelope
	if err := json.Unmarshal(message, &envelope); err != nil {
		c.logger.Warn("Failed to parse envelope", zap.String("clientID", c.id), zap.Error(err))
		c.sendEnvelope(CreateErrorMessage("Geçersiz mesaj formatı"))
		return
	}

	switch envelope.Type {
	case MessageTypeAddText:
		c.handleAddText(envelope.Text)

	case MessageTypeAnalyze:
		c.runAnalysis(true)

	case MessageTypeClear:
		c.hub.ClearBuffer(c.id)
		c.sendEnvelope(CreateClearedMessage())

	case MessageTypeLiveMode:
		c.liveMode = envelope.Enabled
		c.logger.Info("Live mode changed", zap.String("clientID", c.id), zap.Bool("enabled", c.liveMode))
		c.sendEnvelope(CreateLiveModeChangedMessage(c.liveMode))

	case MessageTypePing:
		c.sendEnvelope(CreatePongMessage())

	default:
		c.sendEnvelope(CreateUnknownTypeError(envelope.Type))
	}
}

// handleAddText appends a transcript line and fans it out. Role-scoped
// connections share one logical transcript: the line lands in every
// registered buffer and a new_message broadcast synchronizes the views.
func (c *Client) handleAddText(text string) {
	if c.role == RoleUnscoped {
		c.hub.AppendOwn(c.id, text)
	} else {
		c.hub.AppendAll(text)
		if payload, err := json.Marshal(CreateNewMessageBroadcast(string(c.role), text, c.id)); err == nil {
			c.hub.Broadcast(payload)
		}
	}

	c.sendEnvelope(CreateTextAddedMessage(c.hub.Buffer(c.id)))

	if c.liveMode && strings.TrimSpace(c.hub.Buffer(c.id)) != "" {
		c.runAnalysis(false)
	}
}

// runAnalysis drives one trigger cycle: analyzing notification, then exactly
// one of analysis_result or error. Manual triggers echo the analyzed
// transcript back; live-mode triggers do not.
func (c *Client) runAnalysis(manual bool) {
	transcript := c.hub.Buffer(c.id)
	if strings.TrimSpace(transcript) == "" {
		c.sendEnvelope(CreateErrorMessage("Analiz için metin bulunamadı"))
		return
	}

	c.sendEnvelope(CreateAnalyzingMessage())

	ctx, cancel := context.WithTimeout(context.Background(), analysisTimeout)
	defer cancel()

	result, err := c.service.Analyze(ctx, transcript, c.sessionToken)
	if err != nil {
		c.logger.Error("Analysis failed", zap.String("clientID", c.id), zap.Error(err))
		c.deliver(CreateErrorMessage("Analiz hatası: " + err.Error()))
		return
	}

	conversation := ""
	if manual {
		conversation = transcript
	}
	c.deliver(CreateAnalysisResultMessage(result, conversation))

	if c.role == RoleAgent {
		c.service.PersistAsync(c.sessionToken, transcript, result)
	}
}

// sendEnvelope marshals and queues an envelope on this connection
func (c *Client) sendEnvelope(envelope interface{}) {
	payload, err := json.Marshal(envelope)
	if err != nil {
		c.logger.Error("Failed to marshal envelope", zap.String("clientID", c.id), zap.Error(err))
		return
	}
	c.enqueue(payload)
}

// deliver routes an envelope through the registry so that results arriving
// after a disconnect are silently dropped instead of reaching a dead handle
func (c *Client) deliver(envelope interface{}) {
	payload, err := json.Marshal(envelope)
	if err != nil {
		c.logger.Error("Failed to marshal envelope", zap.String("clientID", c.id), zap.Error(err))
		return
	}
	c.hub.SendToClient(c.id, payload)
}

// enqueue queues a payload without blocking. A slow or closing client loses
// the message; delivery is best-effort.
func (c *Client) enqueue(payload []byte) {
	c.sendMu.Lock()
	defer c.sendMu.Unlock()
	if c.closed {
		return
	}
	select {
	case c.send <- payload:
	default:
		c.logger.Warn("Dropping message to slow client", zap.String("clientID", c.id))
	}
}

// markClosed closes the send channel exactly once; enqueue afterwards is a
// no-op instead of a panic
func (c *Client) markClosed() {
	c.sendMu.Lock()
	defer c.sendMu.Unlock()
	if !c.closed {
		c.closed = true
		close(c.send)
	}
}
