package websocket

import (
	"sync"
	"time"

	"go.uber.org/zap"
)

// Hub is the session registry: it maps client identifiers to live
// connections and to their transcript buffers, and routes personal and
// broadcast deliveries. All structural mutations happen under the mutex at
// single-operation granularity; broadcast iterates over a snapshot so
// delivery never observes a half-mutated collection.
type Hub struct {
	// Registered clients keyed by role-prefixed identifier.
	clients map[string]*Client

	// Transcript buffers, one per registered client. Newline-joined text,
	// only ever appended to or fully cleared.
	buffers map[string]string

	// Register requests from the clients.
	register chan *Client

	// Unregister requests from clients.
	unregister chan *Client

	// Mutex for thread-safe access to clients and buffers
	mu sync.RWMutex

	logger *zap.Logger
}

// NewHub creates a new WebSocket hub
func NewHub(logger *zap.Logger) *Hub {
	return &Hub{
		clients:    make(map[string]*Client),
		buffers:    make(map[string]string),
		register:   make(chan *Client),
		unregister: make(chan *Client),
		logger:     logger,
	}
}

// Run starts the hub's main loop
func (h *Hub) Run() {
	for {
		select {
		case client := <-h.register:
			h.addClient(client)
			h.logger.Info("Client registered",
				zap.String("clientID", client.id),
				zap.String("role", string(client.role)),
				zap.Int("connections", h.ClientCount()))

		case client := <-h.unregister:
			h.removeClient(client)
			h.logger.Info("Client unregistered",
				zap.String("clientID", client.id),
				zap.Int("connections", h.ClientCount()))
		}
	}
}

func (h *Hub) addClient(client *Client) {
	h.mu.Lock()
	defer h.mu.Unlock()
	client.connectedAt = time.Now()
	h.clients[client.id] = client
	h.buffers[client.id] = ""
}

// removeClient drops the handle and its buffer. Idempotent: removing an
// already-absent client is a no-op.
func (h *Hub) removeClient(client *Client) {
	h.mu.Lock()
	defer h.mu.Unlock()
	if _, ok := h.clients[client.id]; ok {
		delete(h.clients, client.id)
		delete(h.buffers, client.id)
		client.markClosed()
	}
}

// SendToClient delivers a payload to one client if it is still registered.
// Deliveries to unknown identifiers are silently dropped; disconnect races
// are expected, not errors.
func (h *Hub) SendToClient(clientID string, payload []byte) {
	h.mu.RLock()
	client, ok := h.clients[clientID]
	h.mu.RUnlock()
	if !ok {
		return
	}
	client.enqueue(payload)
}

// Broadcast delivers a payload to every currently-registered client,
// independent of role. Best-effort: a full or closing recipient never
// aborts delivery to the rest. Order across recipients is unspecified.
func (h *Hub) Broadcast(payload []byte) {
	h.mu.RLock()
	recipients := make([]*Client, 0, len(h.clients))
	for _, client := range h.clients {
		recipients = append(recipients, client)
	}
	h.mu.RUnlock()

	for _, client := range recipients {
		client.enqueue(payload)
	}
}

// AppendOwn appends text plus a trailing newline to one client's buffer
// (legacy single-role protocol: buffers are private per client)
func (h *Hub) AppendOwn(clientID, text string) {
	h.mu.Lock()
	defer h.mu.Unlock()
	if _, ok := h.buffers[clientID]; ok {
		h.buffers[clientID] += text + "\n"
	}
}

// AppendAll appends text plus a trailing newline to every registered
// buffer. The dual-role protocol mirrors broadcast semantics here so both
// parties accumulate the same shared transcript; clear stays caller-only.
func (h *Hub) AppendAll(text string) {
	h.mu.Lock()
	defer h.mu.Unlock()
	for clientID := range h.buffers {
		h.buffers[clientID] += text + "\n"
	}
}

// Buffer returns the current transcript content for a client
func (h *Hub) Buffer(clientID string) string {
	h.mu.RLock()
	defer h.mu.RUnlock()
	return h.buffers[clientID]
}

// ClearBuffer resets one client's buffer to empty. Only ever the caller's
// own buffer, in both protocols.
func (h *Hub) ClearBuffer(clientID string) {
	h.mu.Lock()
	defer h.mu.Unlock()
	if _, ok := h.buffers[clientID]; ok {
		h.buffers[clientID] = ""
	}
}

// ActiveClients returns a snapshot of currently-registered identifiers
func (h *Hub) ActiveClients() []string {
	h.mu.RLock()
	defer h.mu.RUnlock()
	clients := make([]string, 0, len(h.clients))
	for clientID := range h.clients {
		clients = append(clients, clientID)
	}
	return clients
}

// ClientCount returns the number of live connections
func (h *Hub) ClientCount() int {
	h.mu.RLock()
	defer h.mu.RUnlock()
	return len(h.clients)
}
