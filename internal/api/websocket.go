package api

import (
	"encoding/json"
	"log"
	"net/http"
	"sync"
	"time"

	"space-rocks/internal/game"
	"space-rocks/internal/input"

	"github.com/gorilla/websocket"
	"golang.org/x/time/rate"
)

const (
	// MaxWSConnectionsTotal is the maximum number of WebSocket connections allowed
	MaxWSConnectionsTotal = 500

	// MaxWSConnectionsPerIP is the maximum WebSocket connections per IP
	MaxWSConnectionsPerIP = 10

	// BroadcastInterval is how often the latest frame is pushed to clients
	BroadcastInterval = 50 * time.Millisecond

	// Inbound control messages per second per connection
	wsMessagesPerSec = 60
	wsMessageBurst   = 120

	wsWriteTimeout = 2 * time.Second
	wsMaxMessage   = 1024
)

// wsClient tracks a WebSocket connection with its source IP
type wsClient struct {
	conn *websocket.Conn
	ip   string
}

// clientMessage is a control message sent by a browser client.
//
//	{"type":"hold","control":"thrust","down":true}
//	{"type":"press","event":"start"}
type clientMessage struct {
	Type    string `json:"type"`
	Control string `json:"control,omitempty"`
	Down    bool   `json:"down,omitempty"`
	Event   string `json:"event,omitempty"`
}

// WebSocketHub manages all WebSocket connections with DoS protection
type WebSocketHub struct {
	clients    map[*websocket.Conn]*wsClient
	broadcast  chan []byte
	register   chan *wsClient
	unregister chan *websocket.Conn
	stop       chan struct{}
	stopOnce   sync.Once
	mu         sync.RWMutex

	upgrader websocket.Upgrader
	controls *input.Controls

	// Connection limiting per IP
	wsLimiter *connLimiter
}

// NewWebSocketHub creates a hub that feeds client messages into controls.
// origins extends the localhost defaults accepted during the upgrade.
func NewWebSocketHub(controls *input.Controls, origins []string) *WebSocketHub {
	h := &WebSocketHub{
		clients:    make(map[*websocket.Conn]*wsClient),
		broadcast:  make(chan []byte, 256),
		register:   make(chan *wsClient),
		unregister: make(chan *websocket.Conn),
		stop:       make(chan struct{}),
		controls:   controls,
		wsLimiter:  newConnLimiter(MaxWSConnectionsPerIP),
	}
	h.upgrader = websocket.Upgrader{
		ReadBufferSize:  1024,
		WriteBufferSize: 4096,
		CheckOrigin: func(r *http.Request) bool {
			origin := r.Header.Get("Origin")
			if IsAllowedOrigin(origin, origins) {
				return true
			}
			log.Printf("⚠️ WebSocket connection rejected from origin: %s", origin)
			RecordConnectionRejected("origin")
			return false
		},
	}
	return h
}

// Run services registrations and broadcasts until Stop is called.
// It is the only goroutine that writes to connections.
func (h *WebSocketHub) Run() {
	for {
		select {
		case client := <-h.register:
			h.mu.Lock()
			h.clients[client.conn] = client
			count := len(h.clients)
			h.mu.Unlock()

			log.Printf("📱 Client connected from %s (%d total)", client.ip, count)
			UpdateWSConnections(count)

		case conn := <-h.unregister:
			h.remove(conn)

		case message := <-h.broadcast:
			h.mu.RLock()
			var failed []*websocket.Conn
			for conn := range h.clients {
				conn.SetWriteDeadline(time.Now().Add(wsWriteTimeout))
				if err := conn.WriteMessage(websocket.TextMessage, message); err != nil {
					failed = append(failed, conn)
				}
			}
			h.mu.RUnlock()
			for _, conn := range failed {
				h.remove(conn)
			}
			IncrementWSMessages()

		case <-h.stop:
			h.mu.Lock()
			for conn, client := range h.clients {
				h.wsLimiter.Release(client.ip)
				conn.Close()
				delete(h.clients, conn)
			}
			h.mu.Unlock()
			UpdateWSConnections(0)
			return
		}
	}
}

func (h *WebSocketHub) remove(conn *websocket.Conn) {
	h.mu.Lock()
	client, ok := h.clients[conn]
	if ok {
		// Release the connection slot for this IP
		h.wsLimiter.Release(client.ip)
		delete(h.clients, conn)
		conn.Close()
	}
	count := len(h.clients)
	h.mu.Unlock()

	if ok {
		log.Printf("📱 Client disconnected (%d remaining)", count)
		UpdateWSConnections(count)
	}
}

// Stop closes every connection and ends Run and the broadcast loop.
func (h *WebSocketHub) Stop() {
	h.stopOnce.Do(func() { close(h.stop) })
}

// Broadcast sends a message to all connected clients
func (h *WebSocketHub) Broadcast(event string, data interface{}) {
	msg := map[string]interface{}{
		"event": event,
		"data":  data,
	}

	jsonBytes, err := json.Marshal(msg)
	if err != nil {
		return
	}

	select {
	case h.broadcast <- jsonBytes:
	default:
		// Channel full, skip (backpressure)
	}
}

// BroadcastEvent forwards a gameplay event to clients. Events carry a
// pre-encoded payload, so it is embedded rather than re-marshaled.
func (h *WebSocketHub) BroadcastEvent(ev game.Event) {
	if h.ClientCount() == 0 {
		return
	}
	h.Broadcast("game:event", map[string]interface{}{
		"type":     ev.Type.String(),
		"tick":     ev.TickNum,
		"gameTime": ev.GameTime,
		"payload":  json.RawMessage(ev.Payload),
	})
}

// ClientCount returns the number of connected clients
func (h *WebSocketHub) ClientCount() int {
	h.mu.RLock()
	defer h.mu.RUnlock()
	return len(h.clients)
}

// HubStats describes the hub for /api/stats.
type HubStats struct {
	Clients     int          `json:"clients"`
	Connections LimiterStats `json:"connections"`
}

// Stats returns the client count and per-IP connection counters.
func (h *WebSocketHub) Stats() HubStats {
	return HubStats{
		Clients:     h.ClientCount(),
		Connections: h.wsLimiter.Stats(),
	}
}

// SnapshotSource publishes frames for broadcasting.
type SnapshotSource interface {
	GetSnapshot() *game.GameSnapshot
}

// StartBroadcastLoop pushes the latest frame to clients every interval,
// skipping frames that have already been sent.
func (h *WebSocketHub) StartBroadcastLoop(source SnapshotSource, interval time.Duration) {
	if interval <= 0 {
		interval = BroadcastInterval
	}
	ticker := time.NewTicker(interval)

	go func() {
		defer ticker.Stop()
		var lastSeq uint64
		for {
			select {
			case <-h.stop:
				return
			case <-ticker.C:
			}
			if h.ClientCount() == 0 {
				continue
			}
			snap := source.GetSnapshot()
			if snap.Sequence == lastSeq {
				continue
			}
			lastSeq = snap.Sequence
			h.Broadcast("game:state", snap)
		}
	}()
}

// HandleWebSocket handles incoming WebSocket connections with DoS protection
func (h *WebSocketHub) HandleWebSocket(w http.ResponseWriter, r *http.Request) {
	ip := clientIP(r)

	h.mu.RLock()
	totalConnections := len(h.clients)
	h.mu.RUnlock()

	if totalConnections >= MaxWSConnectionsTotal {
		log.Printf("⚠️ WebSocket connection rejected: total limit reached (%d)", totalConnections)
		RecordConnectionRejected("ws_total_limit")
		http.Error(w, "Too many connections", http.StatusServiceUnavailable)
		return
	}

	if !h.wsLimiter.Acquire(ip) {
		log.Printf("⚠️ WebSocket connection rejected from %s: per-IP limit reached", ip)
		RecordConnectionRejected("ws_ip_limit")
		http.Error(w, "Too many connections from your IP", http.StatusTooManyRequests)
		return
	}

	conn, err := h.upgrader.Upgrade(w, r, nil)
	if err != nil {
		log.Printf("WebSocket upgrade error: %v", err)
		h.wsLimiter.Release(ip) // Release the slot we reserved
		return
	}
	conn.SetReadLimit(wsMaxMessage)

	select {
	case h.register <- &wsClient{conn: conn, ip: ip}:
	case <-h.stop:
		conn.Close()
		h.wsLimiter.Release(ip)
		return
	}

	go h.readLoop(conn, ip)
}

// readLoop applies control messages until the connection closes. Controls
// this connection left held are released before it unregisters.
func (h *WebSocketHub) readLoop(conn *websocket.Conn, ip string) {
	held := make(map[input.Control]bool)
	defer func() {
		for ctl := range held {
			h.controls.Set(ctl, false)
		}
		select {
		case h.unregister <- conn:
		case <-h.stop:
		}
	}()

	limiter := rate.NewLimiter(wsMessagesPerSec, wsMessageBurst)
	for {
		_, message, err := conn.ReadMessage()
		if err != nil {
			return
		}
		if !limiter.Allow() {
			RecordConnectionRejected("ws_message_rate")
			continue
		}

		var msg clientMessage
		if err := json.Unmarshal(message, &msg); err != nil {
			RecordConnectionRejected("invalid")
			continue
		}
		if !h.apply(msg, held) {
			log.Printf("📨 Ignored WebSocket message from %s: %s", ip, message)
		}
	}
}

// apply routes a client message into the shared controls and tracks
// which controls the sender is holding.
func (h *WebSocketHub) apply(msg clientMessage, held map[input.Control]bool) bool {
	switch msg.Type {
	case "hold":
		ctl, ok := input.ParseControl(msg.Control)
		if !ok {
			return false
		}
		h.controls.Set(ctl, msg.Down)
		if msg.Down {
			held[ctl] = true
		} else {
			delete(held, ctl)
		}
		return true
	case "press":
		p, ok := input.ParsePress(msg.Event)
		if !ok {
			return false
		}
		h.controls.Press(p)
		return true
	}
	return false
}
