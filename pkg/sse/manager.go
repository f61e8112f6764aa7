package sse

import (
	"encoding/json"
	"fmt"
	"log"
	"sync"

	"github.com/gin-gonic/gin"
)

// Event is one server-sent message addressed to a user.
type Event struct {
	UserID string
	Type   string
	Data   interface{}
}

type client struct {
	userID string
	ch     chan Event
}

// Manager fans events out to every connected session of a user. Used to
// signal sync confirmations/failures and completed analysis reports so
// other open sessions can refresh.
type Manager struct {
	register   chan *client
	unregister chan *client
	events     chan Event
	clients    map[*client]struct{}
	mu         sync.RWMutex
}

func NewManager() *Manager {
	return &Manager{
		register:   make(chan *client),
		unregister: make(chan *client),
		events:     make(chan Event, 256),
		clients:    make(map[*client]struct{}),
	}
}

// Run processes registrations and event delivery. Start it in a goroutine.
func (m *Manager) Run() {
	for {
		select {
		case c := <-m.register:
			m.mu.Lock()
			m.clients[c] = struct{}{}
			m.mu.Unlock()
		case c := <-m.unregister:
			m.mu.Lock()
			if _, ok := m.clients[c]; ok {
				delete(m.clients, c)
				close(c.ch)
			}
			m.mu.Unlock()
		case ev := <-m.events:
			m.mu.RLock()
			for c := range m.clients {
				if c.userID != ev.UserID {
					continue
				}
				select {
				case c.ch <- ev:
				default:
					// Slow consumer, drop the event rather than block delivery.
				}
			}
			m.mu.RUnlock()
		}
	}
}

// Send queues an event for every session of the user.
func (m *Manager) Send(userID, eventType string, data interface{}) {
	select {
	case m.events <- Event{UserID: userID, Type: eventType, Data: data}:
	default:
		log.Printf("[SSE] Event queue full, dropping %s for user %s", eventType, userID)
	}
}

// ServeHTTP streams events to one connected session until the client closes.
func (m *Manager) ServeHTTP(c *gin.Context, userID string) {
	cl := &client{userID: userID, ch: make(chan Event, 32)}
	m.register <- cl
	defer func() { m.unregister <- cl }()

	c.Writer.Header().Set("Content-Type", "text/event-stream")
	c.Writer.Header().Set("Cache-Control", "no-cache")
	c.Writer.Header().Set("Connection", "keep-alive")
	c.Writer.Flush()

	for {
		select {
		case ev, ok := <-cl.ch:
			if !ok {
				return
			}
			payload, err := json.Marshal(ev.Data)
			if err != nil {
				continue
			}
			fmt.Fprintf(c.Writer, "event: %s\ndata: %s\n\n", ev.Type, payload)
			c.Writer.Flush()
		case <-c.Request.Context().Done():
			return
		}
	}
}
