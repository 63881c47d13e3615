package ws

import (
	"encoding/json"
	"fmt"
	"log"
	"sync"
	"time"

	"github.com/gofiber/websocket/v2"
)

// Event is the wire envelope for everything the hub pushes to clients.
type Event struct {
	Type    string      `json:"type"`
	Payload interface{} `json:"payload"`
}

// ClientConnection wraps one WebSocket connection with metadata. A user may
// hold several at once (one per device).
type ClientConnection struct {
	Conn       *websocket.Conn
	UserID     uint
	LastPong   time.Time
	PingTicker *time.Ticker
	CloseChan  chan struct{}

	writeMu sync.Mutex
	topics  map[string]struct{}
}

func (c *ClientConnection) writeJSON(v interface{}) error {
	c.writeMu.Lock()
	defer c.writeMu.Unlock()
	return c.Conn.WriteJSON(v)
}

func (c *ClientConnection) writeRaw(data []byte) error {
	c.writeMu.Lock()
	defer c.writeMu.Unlock()
	return c.Conn.WriteMessage(websocket.TextMessage, data)
}

// Hub manages all active WebSocket connections and implements the
// service.Broadcaster fan-out. Writes are fire-and-forget: a failed write
// closes the connection and the event is simply lost.
type Hub struct {
	mu      sync.RWMutex
	clients map[uint]map[*ClientConnection]struct{}
	topics  map[string]map[*ClientConnection]struct{}

	pingInterval time.Duration
	pongTimeout  time.Duration
}

func NewHub() *Hub {
	hub := &Hub{
		clients:      make(map[uint]map[*ClientConnection]struct{}),
		topics:       make(map[string]map[*ClientConnection]struct{}),
		pingInterval: 30 * time.Second,
		pongTimeout:  90 * time.Second,
	}

	go hub.connectionHealthChecker()

	return hub
}

// ChatTopic names a chat-scoped topic. Subtopic "typing" addresses the
// typing indicator stream; empty addresses the chat's main event stream.
func ChatTopic(chatID uint, subtopic string) string {
	if subtopic == "" {
		return fmt.Sprintf("chat:%d", chatID)
	}
	return fmt.Sprintf("chat:%d/%s", chatID, subtopic)
}

// Register adds a connection for a user. The second return value reports
// whether this is the user's first live connection, which is what should
// drive a presence mark-online.
func (h *Hub) Register(userID uint, conn *websocket.Conn) (*ClientConnection, bool) {
	client := &ClientConnection{
		Conn:       conn,
		UserID:     userID,
		LastPong:   time.Now(),
		PingTicker: time.NewTicker(h.pingInterval),
		CloseChan:  make(chan struct{}),
		topics:     make(map[string]struct{}),
	}

	conn.SetPongHandler(func(appData string) error {
		return h.pongReceived(client, conn)
	})
	conn.SetReadDeadline(time.Now().Add(h.pongTimeout))

	first := h.attach(client)

	go h.pingRoutine(client)

	return client, first
}

type readDeadlineSetter interface {
	SetReadDeadline(t time.Time) error
}

// pongReceived records liveness and pushes the read deadline out by the pong
// timeout. The deadline is absolute, so without this extension every
// connection's blocked read would time out one pongTimeout after
// establishment no matter how healthy the client is.
func (h *Hub) pongReceived(client *ClientConnection, conn readDeadlineSetter) error {
	h.mu.Lock()
	client.LastPong = time.Now()
	h.mu.Unlock()
	return conn.SetReadDeadline(time.Now().Add(h.pongTimeout))
}

// attach records the connection and reports whether it is the user's first.
func (h *Hub) attach(client *ClientConnection) bool {
	h.mu.Lock()
	conns, existed := h.clients[client.UserID]
	if !existed {
		conns = make(map[*ClientConnection]struct{})
		h.clients[client.UserID] = conns
	}
	first := len(conns) == 0
	conns[client] = struct{}{}
	total := len(conns)
	h.mu.Unlock()

	log.Printf("User %d connected to hub (connections: %d)", client.UserID, total)
	return first
}

// Unregister removes a connection. The return value reports whether the user
// has no connections left (drives presence mark-offline). Safe to call more
// than once for the same connection.
func (h *Hub) Unregister(client *ClientConnection) bool {
	h.mu.Lock()
	conns, ok := h.clients[client.UserID]
	if !ok {
		h.mu.Unlock()
		return false
	}
	if _, present := conns[client]; !present {
		h.mu.Unlock()
		return false
	}
	delete(conns, client)
	last := len(conns) == 0
	if last {
		delete(h.clients, client.UserID)
	}
	for topic := range client.topics {
		if subs := h.topics[topic]; subs != nil {
			delete(subs, client)
			if len(subs) == 0 {
				delete(h.topics, topic)
			}
		}
	}
	h.mu.Unlock()

	client.PingTicker.Stop()
	close(client.CloseChan)
	log.Printf("User %d disconnected from hub (last: %v)", client.UserID, last)
	return last
}

// Subscribe attaches the connection to a topic. Membership must already have
// been checked by the caller.
func (h *Hub) Subscribe(client *ClientConnection, topic string) {
	h.mu.Lock()
	defer h.mu.Unlock()
	subs, ok := h.topics[topic]
	if !ok {
		subs = make(map[*ClientConnection]struct{})
		h.topics[topic] = subs
	}
	subs[client] = struct{}{}
	client.topics[topic] = struct{}{}
}

func (h *Hub) Unsubscribe(client *ClientConnection, topic string) {
	h.mu.Lock()
	defer h.mu.Unlock()
	if subs := h.topics[topic]; subs != nil {
		delete(subs, client)
		if len(subs) == 0 {
			delete(h.topics, topic)
		}
	}
	delete(client.topics, topic)
}

// IsConnected checks whether a user has at least one live connection.
func (h *Hub) IsConnected(userID uint) bool {
	h.mu.RLock()
	defer h.mu.RUnlock()
	return len(h.clients[userID]) > 0
}

// ConnectedUsers returns the IDs of all users with a live connection.
func (h *Hub) ConnectedUsers() []uint {
	h.mu.RLock()
	defer h.mu.RUnlock()
	users := make([]uint, 0, len(h.clients))
	for userID := range h.clients {
		users = append(users, userID)
	}
	return users
}

// Count returns the number of live connections across all users.
func (h *Hub) Count() int {
	h.mu.RLock()
	defer h.mu.RUnlock()
	n := 0
	for _, conns := range h.clients {
		n += len(conns)
	}
	return n
}

// PublishGlobal sends an event to every connected client.
func (h *Hub) PublishGlobal(eventType string, payload interface{}) {
	h.send(h.allConnections(), eventType, payload)
}

// PublishToUser sends an event to all of one user's connections.
func (h *Hub) PublishToUser(userID uint, eventType string, payload interface{}) {
	h.mu.RLock()
	targets := make([]*ClientConnection, 0, len(h.clients[userID]))
	for client := range h.clients[userID] {
		targets = append(targets, client)
	}
	h.mu.RUnlock()
	h.send(targets, eventType, payload)
}

// PublishToChat sends an event to the subscribers of a chat topic.
func (h *Hub) PublishToChat(chatID uint, subtopic string, eventType string, payload interface{}) {
	topic := ChatTopic(chatID, subtopic)
	h.mu.RLock()
	targets := make([]*ClientConnection, 0, len(h.topics[topic]))
	for client := range h.topics[topic] {
		targets = append(targets, client)
	}
	h.mu.RUnlock()
	h.send(targets, eventType, payload)
}

func (h *Hub) allConnections() []*ClientConnection {
	h.mu.RLock()
	defer h.mu.RUnlock()
	targets := make([]*ClientConnection, 0)
	for _, conns := range h.clients {
		for client := range conns {
			targets = append(targets, client)
		}
	}
	return targets
}

func (h *Hub) send(targets []*ClientConnection, eventType string, payload interface{}) {
	if len(targets) == 0 {
		return
	}
	// Marshal once, write the same bytes to every target.
	data, err := json.Marshal(Event{Type: eventType, Payload: payload})
	if err != nil {
		log.Printf("Error marshaling %s event: %v", eventType, err)
		return
	}
	for _, client := range targets {
		if err := client.writeRaw(data); err != nil {
			log.Printf("Error sending %s to user %d: %v", eventType, client.UserID, err)
			// Dead connection; closing it ends the read loop, which
			// unregisters the client.
			client.Conn.Close()
		}
	}
}

// pingRoutine sends periodic ping frames to keep the connection alive.
func (h *Hub) pingRoutine(client *ClientConnection) {
	defer func() {
		if r := recover(); r != nil {
			log.Printf("Ping routine recovered from panic for user %d: %v", client.UserID, r)
		}
	}()

	for {
		select {
		case <-client.CloseChan:
			return
		case <-client.PingTicker.C:
			if err := client.Conn.WriteControl(websocket.PingMessage, []byte{}, time.Now().Add(10*time.Second)); err != nil {
				log.Printf("Ping failed for user %d: %v", client.UserID, err)
				client.Conn.Close()
				return
			}
		}
	}
}

// connectionHealthChecker closes connections that stopped answering pings.
// The read loop then exits and unregisters them.
func (h *Hub) connectionHealthChecker() {
	ticker := time.NewTicker(30 * time.Second)
	defer ticker.Stop()

	for range ticker.C {
		h.mu.RLock()
		dead := make([]*ClientConnection, 0)
		now := time.Now()
		for _, conns := range h.clients {
			for client := range conns {
				if now.Sub(client.LastPong) > h.pongTimeout {
					dead = append(dead, client)
				}
			}
		}
		h.mu.RUnlock()

		for _, client := range dead {
			log.Printf("Closing dead connection for user %d (no pong received)", client.UserID)
			client.Conn.Close()
		}
	}
}
