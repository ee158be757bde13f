package ws

import (
	"encoding/json"
	"sync"
	"time"

	"github.com/google/uuid"
	"github.com/gorilla/websocket"
	"github.com/rs/zerolog"
)

const (
	writeWait    = 10 * time.Second
	pingInterval = 30 * time.Second
	sendBuffer   = 64
)

// Envelope is the frame written to subscribers.
type Envelope struct {
	Type      string    `json:"type"`
	Data      any       `json:"data"`
	Timestamp time.Time `json:"timestamp"`
}

type subscriber struct {
	id      string
	channel string
	conn    *websocket.Conn
	send    chan []byte
}

// Manager keeps track of connected real-time subscribers and fans out
// published events to them. Publishing never blocks: a subscriber whose
// buffer is full misses the event.
type Manager struct {
	mu          sync.RWMutex
	subscribers map[string]*subscriber // subscriberID -> subscriber
	log         zerolog.Logger
}

func NewManager(log zerolog.Logger) *Manager {
	return &Manager{subscribers: make(map[string]*subscriber), log: log}
}

// Register adds conn as a subscriber and starts its writer. channel names
// the endpoint it connected through.
func (m *Manager) Register(conn *websocket.Conn, channel string) string {
	s := &subscriber{
		id:      uuid.New().String(),
		channel: channel,
		conn:    conn,
		send:    make(chan []byte, sendBuffer),
	}
	m.mu.Lock()
	m.subscribers[s.id] = s
	m.mu.Unlock()

	go m.writeLoop(s)
	return s.id
}

// Unregister removes a subscriber and closes its connection.
func (m *Manager) Unregister(id string) {
	m.mu.Lock()
	s, ok := m.subscribers[id]
	if ok {
		delete(m.subscribers, id)
		close(s.send)
	}
	m.mu.Unlock()
}

// Publish sends event to every subscriber without waiting on any of them.
func (m *Manager) Publish(event string, payload any) {
	b, err := json.Marshal(Envelope{Type: event, Data: payload, Timestamp: time.Now().UTC()})
	if err != nil {
		m.log.Error().Err(err).Str("event", event).Msg("encode hub event")
		return
	}

	m.mu.RLock()
	defer m.mu.RUnlock()
	for _, s := range m.subscribers {
		select {
		case s.send <- b:
		default:
			m.log.Debug().Str("subscriber", s.id).Str("event", event).Msg("subscriber buffer full, dropping event")
		}
	}
}

func (m *Manager) writeLoop(s *subscriber) {
	ticker := time.NewTicker(pingInterval)
	defer func() {
		ticker.Stop()
		_ = s.conn.Close()
	}()

	for {
		select {
		case msg, ok := <-s.send:
			_ = s.conn.SetWriteDeadline(time.Now().Add(writeWait))
			if !ok {
				_ = s.conn.WriteMessage(websocket.CloseMessage, websocket.FormatCloseMessage(websocket.CloseNormalClosure, ""))
				return
			}
			if err := s.conn.WriteMessage(websocket.TextMessage, msg); err != nil {
				m.log.Debug().Err(err).Str("subscriber", s.id).Msg("write to subscriber failed")
				return
			}
		case <-ticker.C:
			_ = s.conn.SetWriteDeadline(time.Now().Add(writeWait))
			if err := s.conn.WriteMessage(websocket.PingMessage, nil); err != nil {
				return
			}
		}
	}
}

// Count returns the number of connected subscribers.
func (m *Manager) Count() int {
	m.mu.RLock()
	defer m.mu.RUnlock()
	return len(m.subscribers)
}

// List returns the connected subscribers grouped by channel.
func (m *Manager) List() map[string][]string {
	m.mu.RLock()
	defer m.mu.RUnlock()
	out := make(map[string][]string)
	for id, s := range m.subscribers {
		out[s.channel] = append(out[s.channel], id)
	}
	return out
}
