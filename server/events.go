package server

import (
	"net/http"
	"sync"
	"time"

	"Blockbuster/logger"

	"github.com/gorilla/websocket"
)

// EventType labels entries on the live event feed.
type EventType string

const (
	EventPlayStarted EventType = "play_started"
	EventPlaySent    EventType = "play_sent"
	EventPlayFailed  EventType = "play_failed"
)

// Event is one item on the feed the management UI subscribes to.
type Event struct {
	Type     EventType `json:"type"`
	DeviceID string    `json:"deviceId,omitempty"`
	EntryID  string    `json:"entryId,omitempty"`
	Title    string    `json:"title,omitempty"`
	Time     time.Time `json:"time"`
}

// EventHub fans events out to connected websocket clients. Slow clients are
// dropped rather than allowed to block publishers.
type EventHub struct {
	mu      sync.Mutex
	clients map[*websocket.Conn]chan Event
}

// NewEventHub creates an empty hub.
func NewEventHub() *EventHub {
	return &EventHub{clients: make(map[*websocket.Conn]chan Event)}
}

// Publish broadcasts an event to every connected client.
func (h *EventHub) Publish(event Event) {
	event.Time = time.Now()
	h.mu.Lock()
	defer h.mu.Unlock()
	for conn, ch := range h.clients {
		select {
		case ch <- event:
		default:
			// client is not keeping up
			delete(h.clients, conn)
			close(ch)
		}
	}
}

func (h *EventHub) add(conn *websocket.Conn) chan Event {
	ch := make(chan Event, 16)
	h.mu.Lock()
	h.clients[conn] = ch
	h.mu.Unlock()
	return ch
}

func (h *EventHub) remove(conn *websocket.Conn) {
	h.mu.Lock()
	if ch, ok := h.clients[conn]; ok {
		delete(h.clients, conn)
		close(ch)
	}
	h.mu.Unlock()
}

var wsUpgrader = websocket.Upgrader{
	CheckOrigin: func(r *http.Request) bool { return true },
}

// EventsHandler upgrades the connection and streams events until the client
// disconnects.
func (h *APIHandler) EventsHandler(w http.ResponseWriter, r *http.Request) {
	conn, err := wsUpgrader.Upgrade(w, r, nil)
	if err != nil {
		logger.Error("websocket upgrade failed", logger.ErrorField(err))
		return
	}
	defer conn.Close()

	ch := h.hub.add(conn)
	defer h.hub.remove(conn)

	// reader goroutine: detect client disconnect
	done := make(chan struct{})
	go func() {
		defer close(done)
		for {
			if _, _, err := conn.ReadMessage(); err != nil {
				return
			}
		}
	}()

	for {
		select {
		case event, ok := <-ch:
			if !ok {
				return
			}
			if err := conn.WriteJSON(event); err != nil {
				return
			}
		case <-done:
			return
		}
	}
}
