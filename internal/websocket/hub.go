package schedulews

import (
	"context"
	"encoding/json"
	"errors"
	"log/slog"
	"strconv"
	"sync"
	"time"

	websocket "github.com/gofiber/contrib/websocket"
	"github.com/liangzixuan/ai-assisted-coding-kahunas/internal/events"
)

var ErrHubStopped = errors.New("schedule hub stopped")

// Hub fans schedule events out to every open connection of the affected users.
type Hub struct {
	clients    map[string]map[*Client]struct{}
	register   chan *Client
	unregister chan *Client
	broadcast  chan *Message
	done       chan struct{}
}

type Client struct {
	hub    *Hub
	conn   *websocket.Conn
	userID string
	send   chan []byte

	mu     sync.Mutex
	closed bool
}

type Message struct {
	Type       string                `json:"type"`
	Recipients []string              `json:"-"`
	Event      *events.ScheduleEvent `json:"event,omitempty"`
	Content    string                `json:"content,omitempty"`
	Timestamp  string                `json:"timestamp"`
}

func NewHub() *Hub {
	return &Hub{
		clients:    make(map[string]map[*Client]struct{}),
		register:   make(chan *Client),
		unregister: make(chan *Client),
		broadcast:  make(chan *Message, 64),
		done:       make(chan struct{}),
	}
}

func NewClient(hub *Hub, userID string) *Client {
	return &Client{
		hub:    hub,
		userID: userID,
		send:   make(chan []byte, 32),
	}
}

func (h *Hub) Run(ctx context.Context) {
	defer close(h.done)
	for {
		select {
		case <-ctx.Done():
			for userID, set := range h.clients {
				for client := range set {
					client.closeSend()
					if client.conn != nil {
						_ = client.conn.Close()
					}
				}
				delete(h.clients, userID)
			}
			return
		case client := <-h.register:
			set, ok := h.clients[client.userID]
			if !ok {
				set = make(map[*Client]struct{})
				h.clients[client.userID] = set
			}
			set[client] = struct{}{}
		case client := <-h.unregister:
			set, ok := h.clients[client.userID]
			if !ok {
				continue
			}
			if _, exists := set[client]; exists {
				delete(set, client)
				client.closeSend()
			}
			if len(set) == 0 {
				delete(h.clients, client.userID)
			}
		case message := <-h.broadcast:
			h.deliver(message)
		}
	}
}

func (h *Hub) Register(client *Client) {
	select {
	case h.register <- client:
	case <-h.done:
	}
}

func (h *Hub) Unregister(client *Client) {
	select {
	case h.unregister <- client:
	case <-h.done:
	}
}

// Publish queues a schedule event for live delivery.
func (h *Hub) Publish(ctx context.Context, event events.ScheduleEvent) error {
	recipients := make([]string, 0, 2)
	for _, id := range event.Recipients() {
		recipients = append(recipients, strconv.FormatInt(id, 10))
	}
	message := &Message{
		Type:       event.Type,
		Recipients: recipients,
		Event:      &event,
		Timestamp:  formatTimestamp(event.OccurredAt),
	}

	select {
	case h.broadcast <- message:
		return nil
	case <-h.done:
		return ErrHubStopped
	case <-ctx.Done():
		return ctx.Err()
	}
}

func (h *Hub) deliver(message *Message) {
	encoded, err := json.Marshal(message)
	if err != nil {
		slog.Error("schedule hub encode message", "error", err)
		return
	}
	for _, userID := range message.Recipients {
		h.sendToUser(userID, encoded)
	}
}

func (h *Hub) sendToUser(userID string, payload []byte) {
	set, ok := h.clients[userID]
	if !ok {
		return
	}

	for client := range set {
		select {
		case client.send <- payload:
		default:
			slog.Warn("schedule hub dropped message for slow client", "user_id", userID)
		}
	}
}

// Serve pumps events to conn until the peer disconnects.
func (h *Hub) Serve(conn *websocket.Conn, userID string) {
	client := NewClient(h, userID)
	client.conn = conn
	h.Register(client)
	go client.WritePump()
	client.ReadPump()
}

// ReadPump only answers pings; schedule changes go through the HTTP API.
func (c *Client) ReadPump() {
	defer func() {
		c.hub.Unregister(c)
		_ = c.conn.Close()
	}()

	for {
		_, payload, err := c.conn.ReadMessage()
		if err != nil {
			return
		}

		var incoming struct {
			Type string `json:"type"`
		}
		if err := json.Unmarshal(payload, &incoming); err != nil {
			c.reply("error", "invalid message payload")
			continue
		}
		if incoming.Type != "ping" {
			c.reply("error", "unsupported message type")
			continue
		}
		c.reply("pong", "")
	}
}

func (c *Client) WritePump() {
	defer func() {
		_ = c.conn.Close()
	}()

	for payload := range c.send {
		if err := c.conn.WriteMessage(websocket.TextMessage, payload); err != nil {
			return
		}
	}
}

// closeSend ends WritePump. Only the hub goroutine delivers to send, so the
// lock guards against reply alone.
func (c *Client) closeSend() {
	c.mu.Lock()
	defer c.mu.Unlock()
	if !c.closed {
		c.closed = true
		close(c.send)
	}
}

func (c *Client) reply(messageType, content string) {
	payload, err := json.Marshal(Message{
		Type:      messageType,
		Content:   content,
		Timestamp: formatTimestamp(time.Now().UTC()),
	})
	if err != nil {
		return
	}
	c.mu.Lock()
	defer c.mu.Unlock()
	if c.closed {
		return
	}
	select {
	case c.send <- payload:
	default:
	}
}

func formatTimestamp(t time.Time) string {
	return t.UTC().Format(time.RFC3339)
}
