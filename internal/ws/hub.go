package ws

import (
	"encoding/json"
	"sync"
	"time"

	"github.com/gorilla/websocket"
	"github.com/rs/zerolog/log"
)

// writeWait bounds how long one stalled peer can hold up a broadcast.
const writeWait = 10 * time.Second

type Message struct {
	Type string `json:"type"`
	Data any    `json:"data"`
}

// Client wraps one websocket connection. gorilla/websocket permits a single
// concurrent writer per connection, so every outbound frame goes through the
// client's mutex.
type Client struct {
	conn *websocket.Conn
	mu   sync.Mutex
}

// Send writes one event frame to this client only.
func (c *Client) Send(eventType string, data any) error {
	payload, err := json.Marshal(Message{Type: eventType, Data: data})
	if err != nil {
		return err
	}
	return c.write(payload)
}

func (c *Client) write(payload []byte) error {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.conn.SetWriteDeadline(time.Now().Add(writeWait))
	return c.conn.WriteMessage(websocket.TextMessage, payload)
}

// Hub tracks the websocket clients of every room and fans broadcasts out to
// them.
type Hub struct {
	mu    sync.RWMutex
	rooms map[uint]map[*Client]bool
}

func NewHub() *Hub {
	return &Hub{
		rooms: make(map[uint]map[*Client]bool),
	}
}

func (h *Hub) AddConnection(roomID uint, conn *websocket.Conn) *Client {
	client := &Client{conn: conn}

	h.mu.Lock()
	defer h.mu.Unlock()

	if h.rooms[roomID] == nil {
		h.rooms[roomID] = make(map[*Client]bool)
	}
	h.rooms[roomID][client] = true
	log.Debug().Uint("room_id", roomID).Int("total", len(h.rooms[roomID])).Msg("ws client connected")
	return client
}

func (h *Hub) RemoveConnection(roomID uint, client *Client) {
	h.mu.Lock()
	defer h.mu.Unlock()
	h.removeLocked(roomID, client)
}

func (h *Hub) removeLocked(roomID uint, client *Client) {
	conns, ok := h.rooms[roomID]
	if !ok || !conns[client] {
		return
	}
	delete(conns, client)
	client.conn.Close()
	if len(conns) == 0 {
		delete(h.rooms, roomID)
	}
	log.Debug().Uint("room_id", roomID).Msg("ws client disconnected")
}

// BroadcastToRoom sends one event to every client in the room. The member
// list is snapshotted so writes happen outside the hub lock; clients whose
// write fails are dropped afterwards under the write lock. Overlapping
// broadcasts never mutate the room map mid-iteration.
func (h *Hub) BroadcastToRoom(roomID uint, eventType string, data any) {
	payload, err := json.Marshal(Message{Type: eventType, Data: data})
	if err != nil {
		log.Error().Err(err).Str("event", eventType).Msg("ws marshal error")
		return
	}

	h.mu.RLock()
	clients := make([]*Client, 0, len(h.rooms[roomID]))
	for c := range h.rooms[roomID] {
		clients = append(clients, c)
	}
	h.mu.RUnlock()

	var failed []*Client
	for _, c := range clients {
		if err := c.write(payload); err != nil {
			log.Warn().Err(err).Uint("room_id", roomID).Msg("ws write error")
			failed = append(failed, c)
		}
	}

	if len(failed) > 0 {
		h.mu.Lock()
		for _, c := range failed {
			h.removeLocked(roomID, c)
		}
		h.mu.Unlock()
	}
}
