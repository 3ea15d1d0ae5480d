package handlers

import (
	"log"
	"net/http"
	"sync"
	"time"

	"github.com/google/uuid"
	"github.com/gorilla/websocket"

	"DROWSY_GUARD/go-monitor/internal/decision"
	"DROWSY_GUARD/go-monitor/internal/models"
	"DROWSY_GUARD/go-monitor/internal/services"
)

// Message is the envelope for everything crossing the websocket.
type Message struct {
	Type      string      `json:"type"`
	Payload   interface{} `json:"payload,omitempty"`
	ClientID  string      `json:"client_id,omitempty"`
	Timestamp int64       `json:"timestamp"`
}

type Client struct {
	conn     *websocket.Conn
	clientID string

	mu     sync.Mutex
	closed bool
	send   chan interface{}
}

// enqueue hands a message to the write pump. Returns false if the client
// is closed or its buffer is full; it never blocks and never writes to a
// closed channel.
func (c *Client) enqueue(msg interface{}) bool {
	c.mu.Lock()
	defer c.mu.Unlock()
	if c.closed {
		return false
	}
	select {
	case c.send <- msg:
		return true
	default:
		return false
	}
}

func (c *Client) shutdown() {
	c.mu.Lock()
	if !c.closed {
		c.closed = true
		close(c.send)
	}
	c.mu.Unlock()
	c.conn.Close()
}

// Hub tracks connected UI clients and pushes monitoring events to them.
// It is the alert surface: ALERT messages keep flowing until a client
// answers with ACK.
type Hub struct {
	metrics *services.Metrics

	mu      sync.RWMutex
	clients map[string]*Client

	ackMu sync.Mutex
	onAck func()
}

func NewHub(metrics *services.Metrics) *Hub {
	return &Hub{
		metrics: metrics,
		clients: make(map[string]*Client),
	}
}

// SetAckHandler registers the callback invoked when any client
// acknowledges an active alert.
func (h *Hub) SetAckHandler(fn func()) {
	h.ackMu.Lock()
	h.onAck = fn
	h.ackMu.Unlock()
}

func (h *Hub) Count() int {
	h.mu.RLock()
	defer h.mu.RUnlock()
	return len(h.clients)
}

func (h *Hub) HandleWS(w http.ResponseWriter, r *http.Request) {
	upgrader := websocket.Upgrader{
		ReadBufferSize:  1024,
		WriteBufferSize: 1024,
		CheckOrigin: func(r *http.Request) bool {
			return true
		},
	}

	conn, err := upgrader.Upgrade(w, r, nil)
	if err != nil {
		log.Printf("websocket upgrade failed: %v", err)
		h.metrics.IncrementWebSocketErrors()
		return
	}

	clientID := r.URL.Query().Get("clientId")
	if clientID == "" {
		clientID = "client-" + uuid.NewString()
	}

	log.Printf("WebSocket client connected: %s", clientID)

	client := &Client{
		conn:     conn,
		clientID: clientID,
		send:     make(chan interface{}, 256),
	}

	h.mu.Lock()
	h.clients[clientID] = client
	h.mu.Unlock()
	h.metrics.IncrementWebSocketConnections()

	go h.readPump(client)
	go writePump(client)

	client.enqueue(Message{
		Type:      "WELCOME",
		ClientID:  clientID,
		Timestamp: time.Now().Unix(),
		Payload: map[string]interface{}{
			"message": "Connected to Drowsiness Monitor",
			"version": "1.0",
		},
	})
}

// Цикл чтения из WebSocket
func (h *Hub) readPump(client *Client) {
	defer func() {
		h.mu.Lock()
		delete(h.clients, client.clientID)
		h.mu.Unlock()
		h.metrics.DecrementWebSocketConnections()

		client.shutdown()
		log.Printf("WebSocket client disconnected: %s", client.clientID)
	}()

	client.conn.SetReadDeadline(time.Now().Add(60 * time.Second))
	client.conn.SetPongHandler(func(string) error {
		client.conn.SetReadDeadline(time.Now().Add(60 * time.Second))
		return nil
	})

	for {
		var msg Message
		err := client.conn.ReadJSON(&msg)
		if err != nil {
			if websocket.IsUnexpectedCloseError(err, websocket.CloseGoingAway, websocket.CloseAbnormalClosure) {
				log.Printf("WebSocket error for %s: %v", client.clientID, err)
				h.metrics.IncrementWebSocketErrors()
			}
			break
		}

		switch msg.Type {
		case "PING":
			client.enqueue(Message{
				Type:      "PONG",
				ClientID:  client.clientID,
				Timestamp: time.Now().Unix(),
			})

		case "ACK":
			// водитель подтвердил, что не спит
			log.Printf("Alert acknowledged by %s", client.clientID)
			h.ackMu.Lock()
			fn := h.onAck
			h.ackMu.Unlock()
			if fn != nil {
				fn()
			}
			h.Broadcast(Message{
				Type:      "ALERT_CLEARED",
				ClientID:  client.clientID,
				Timestamp: time.Now().Unix(),
			})

		default:
			log.Printf("Unknown message type from %s: %s", client.clientID, msg.Type)
		}
	}
}

// Цикл отправки в WebSocket
func writePump(client *Client) {
	ticker := time.NewTicker(10 * time.Minute)
	defer func() {
		ticker.Stop()
		client.conn.Close()
	}()

	for {
		select {
		case msg, ok := <-client.send:
			client.conn.SetWriteDeadline(time.Now().Add(10 * time.Second))

			if !ok {
				client.conn.WriteMessage(websocket.CloseMessage, []byte{})
				return
			}

			if err := client.conn.WriteJSON(msg); err != nil {
				return
			}

		case <-ticker.C:
			client.conn.SetWriteDeadline(time.Now().Add(10 * time.Second))
			if err := client.conn.WriteMessage(websocket.PingMessage, nil); err != nil {
				return
			}
		}
	}
}

// Broadcast delivers a message to every connected client. Slow clients
// are skipped rather than blocking the loop.
func (h *Hub) Broadcast(msg Message) {
	h.mu.RLock()
	defer h.mu.RUnlock()

	for _, client := range h.clients {
		if client.enqueue(msg) {
			h.metrics.IncrementWebSocketMessages()
		} else {
			log.Printf("Dropping message for slow client %s", client.clientID)
			h.metrics.IncrementWebSocketErrors()
		}
	}
}

// CloseAll unregisters every client first, so no pump or broadcast can
// enqueue into a channel that is about to close.
func (h *Hub) CloseAll() {
	h.mu.Lock()
	clients := h.clients
	h.clients = make(map[string]*Client)
	h.mu.Unlock()

	for clientID, client := range clients {
		client.shutdown()
		log.Printf("Closed connection for client: %s", clientID)
	}
}

// PhaseChanged implements the monitoring event sink over the hub.
func (h *Hub) PhaseChanged(phase models.Phase, cycle int, reason string) {
	h.Broadcast(Message{
		Type:      "PHASE",
		Timestamp: time.Now().Unix(),
		Payload: map[string]interface{}{
			"phase":  phase,
			"cycle":  cycle,
			"reason": reason,
		},
	})
}

func (h *Hub) FrameScored(windowID string, fc models.FrameClassification) {
	h.Broadcast(Message{
		Type:      "FRAME",
		Timestamp: time.Now().Unix(),
		Payload: map[string]interface{}{
			"windowId": windowID,
			"frame":    fc,
		},
	})
}

func (h *Hub) WindowAnalyzed(summary models.WindowSummary, d decision.Decision) {
	h.Broadcast(Message{
		Type:      "WINDOW",
		Timestamp: time.Now().Unix(),
		Payload: map[string]interface{}{
			"summary":         summary,
			"alertFired":      d.AlertFired,
			"nextWaitSeconds": d.NextWaitSeconds,
			"reason":          d.Reason,
		},
	})
}

func (h *Hub) AlertRaised(windowID string, severity float64) {
	h.Broadcast(Message{
		Type:      "ALERT",
		Timestamp: time.Now().Unix(),
		Payload: map[string]interface{}{
			"windowId": windowID,
			"severity": severity,
		},
	})
}

func (h *Hub) MonitorError(code models.ErrorCode, detail string) {
	h.Broadcast(Message{
		Type:      "ERROR",
		Timestamp: time.Now().Unix(),
		Payload: map[string]interface{}{
			"code":   code,
			"detail": detail,
		},
	})
}
