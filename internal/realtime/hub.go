// Package realtime fans out change hints to connected clients. The contract
// is deliberately "refetch over patch": events carry only the table and event
// type, and clients respond by re-fetching the relevant list, trading an
// extra round-trip for guaranteed consistency at campus-scale traffic.
package realtime

import (
	"log/slog"
	"net/http"
	"sync"
	"time"

	"github.com/google/uuid"
	"github.com/gorilla/websocket"
)

type EventType string

const (
	EventInsert EventType = "INSERT"
	EventUpdate EventType = "UPDATE"
	EventDelete EventType = "DELETE"
)

// Change is the hint pushed to subscribers. No row payload on purpose.
type Change struct {
	Table string    `json:"table"`
	Event EventType `json:"event"`
}

// subscriber wraps a connection with its write lock. gorilla/websocket allows
// one writer at a time, and Broadcast runs on whichever request goroutine
// finished a mutation, so concurrent broadcasts must serialize per connection.
type subscriber struct {
	conn *websocket.Conn
	mu   sync.Mutex
}

func (s *subscriber) write(change Change) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	_ = s.conn.SetWriteDeadline(time.Now().Add(5 * time.Second))
	return s.conn.WriteJSON(change)
}

type Hub struct {
	mu     sync.RWMutex
	subs   map[uuid.UUID]*subscriber
	logger *slog.Logger

	upgrader websocket.Upgrader
}

func NewHub(logger *slog.Logger) *Hub {
	return &Hub{
		subs:   make(map[uuid.UUID]*subscriber),
		logger: logger,
		upgrader: websocket.Upgrader{
			ReadBufferSize:  1024,
			WriteBufferSize: 1024,
			CheckOrigin:     func(r *http.Request) bool { return true },
		},
	}
}

// Subscribe upgrades the request and registers the connection for the user.
// The read loop exists only to detect disconnects.
func (h *Hub) Subscribe(w http.ResponseWriter, r *http.Request, userID uuid.UUID) error {
	conn, err := h.upgrader.Upgrade(w, r, nil)
	if err != nil {
		return err
	}

	sub := &subscriber{conn: conn}

	h.mu.Lock()
	if old, ok := h.subs[userID]; ok {
		_ = old.conn.Close()
	}
	h.subs[userID] = sub
	total := len(h.subs)
	h.mu.Unlock()

	h.logger.Info("realtime subscribed", "user_id", userID, "connections", total)

	go func() {
		defer h.unregister(userID, sub)
		for {
			if _, _, err := conn.ReadMessage(); err != nil {
				return
			}
		}
	}()
	return nil
}

func (h *Hub) unregister(userID uuid.UUID, sub *subscriber) {
	h.mu.Lock()
	if h.subs[userID] == sub {
		delete(h.subs, userID)
	}
	h.mu.Unlock()
	_ = sub.conn.Close()
	h.logger.Info("realtime unsubscribed", "user_id", userID)
}

// Broadcast sends the change hint to every subscriber. Slow or dead
// connections are dropped rather than retried.
func (h *Hub) Broadcast(table string, event EventType) {
	change := Change{Table: table, Event: event}

	h.mu.RLock()
	targets := make(map[uuid.UUID]*subscriber, len(h.subs))
	for id, sub := range h.subs {
		targets[id] = sub
	}
	h.mu.RUnlock()

	for id, sub := range targets {
		if err := sub.write(change); err != nil {
			h.logger.Warn("realtime write failed, dropping connection", "user_id", id, "error", err)
			h.unregister(id, sub)
		}
	}
}

// Broadcaster is the side of the hub the services see.
type Broadcaster interface {
	Broadcast(table string, event EventType)
}

// NopBroadcaster satisfies Broadcaster for tests.
type NopBroadcaster struct{}

func (NopBroadcaster) Broadcast(string, EventType) {}
