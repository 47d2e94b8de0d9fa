/*
Package api
File: hub.go
Description:
    The WebSocket Hub is the core of the real-time communication layer.

    It maintains a registry of all active clients (players connected via the
    app) indexed by player, so game events reach every socket that player has
    open. Broadcast still reaches everyone (the shutdown notice uses it).

    Architecture:
    - Hub: The singleton manager. Implements session.Pusher.
    - Client: Represents one app connection.
    - ServeWs: Upgrades an authenticated GET request to a WebSocket.
*/

package api

import (
	"context"
	"encoding/json"
	"log"
	"net/http"
	"sync"
	"time"

	"github.com/gorilla/websocket"
)

const (
	writeWait      = 10 * time.Second
	pongWait       = 60 * time.Second
	pingPeriod     = (pongWait * 9) / 10
	maxMessageSize = 4096
)

// Message defines the standard JSON envelope for all real-time communication.
type Message struct {
	Type    string      `json:"type"`    // Event type ("notification", "state", "new_day", "position")
	Payload interface{} `json:"payload"` // The actual data
	Sender  string      `json:"sender"`  // "system" for server events
}

// Inbound is a message received from a client. The payload is decoded by
// whoever handles its type.
type Inbound struct {
	Type    string          `json:"type"`
	Payload json.RawMessage `json:"payload"`
}

// InboundFunc handles one message sent by userID.
type InboundFunc func(userID string, in Inbound)

// Client represents a single connected player/app instance.
type Client struct {
	hub    *Hub
	userID string
	conn   *websocket.Conn
	send   chan []byte // Buffered channel for outbound messages
}

type directMessage struct {
	userID string
	data   []byte
}

// Hub maintains the set of active clients and routes messages to them.
type Hub struct {
	// Registered clients, grouped by player. Run is the only writer; mu lets
	// Online read it from other goroutines.
	mu      sync.RWMutex
	clients map[string]map[*Client]bool

	// Messages for every connected client.
	Broadcast chan []byte

	// Messages for one player's clients.
	direct chan directMessage

	register   chan *Client
	unregister chan *Client
	closeAll   chan chan struct{}

	// Read pumps still running.
	pumps sync.WaitGroup

	onInbound InboundFunc
}

// NewHub creates a new Hub instance. onInbound may be nil.
// This should be called once in main.go and run as a goroutine.
func NewHub(onInbound InboundFunc) *Hub {
	return &Hub{
		Broadcast:  make(chan []byte, 16),
		direct:     make(chan directMessage, 256),
		register:   make(chan *Client),
		unregister: make(chan *Client),
		closeAll:   make(chan chan struct{}),
		clients:    make(map[string]map[*Client]bool),
		onInbound:  onInbound,
	}
}

// SetInbound replaces the inbound message handler. Call before Run.
func (h *Hub) SetInbound(fn InboundFunc) {
	h.onInbound = fn
}

// Run is the main event loop for the Hub.
// It blocks, so it must be run in a goroutine: `go hub.Run()`
func (h *Hub) Run() {
	for {
		select {
		case client := <-h.register:
			h.mu.Lock()
			if h.clients[client.userID] == nil {
				h.clients[client.userID] = make(map[*Client]bool)
			}
			h.clients[client.userID][client] = true
			h.mu.Unlock()
			log.Printf("WS: %s connected", client.userID)

		case client := <-h.unregister:
			h.remove(client)

		case message := <-h.Broadcast:
			for _, set := range h.clients {
				for client := range set {
					h.deliver(client, message)
				}
			}

		case dm := <-h.direct:
			for client := range h.clients[dm.userID] {
				h.deliver(client, dm.data)
			}

		case done := <-h.closeAll:
			// Deliver what was already broadcast (the shutdown notice) first.
			for pending := true; pending; {
				select {
				case message := <-h.Broadcast:
					for _, set := range h.clients {
						for client := range set {
							h.deliver(client, message)
						}
					}
				default:
					pending = false
				}
			}
			for _, set := range h.clients {
				for client := range set {
					h.remove(client)
				}
			}
			close(done)
		}
	}
}

func (h *Hub) deliver(client *Client, message []byte) {
	select {
	case client.send <- message:
	default:
		// If the client's send buffer is full, assume they hung or disconnected.
		h.remove(client)
	}
}

func (h *Hub) remove(client *Client) {
	set, ok := h.clients[client.userID]
	if !ok || !set[client] {
		return
	}
	h.mu.Lock()
	delete(set, client)
	if len(set) == 0 {
		delete(h.clients, client.userID)
	}
	h.mu.Unlock()
	close(client.send)
	log.Printf("WS: %s disconnected", client.userID)
}

// Online reports whether userID has at least one open socket.
func (h *Hub) Online(userID string) bool {
	h.mu.RLock()
	defer h.mu.RUnlock()
	return len(h.clients[userID]) > 0
}

// Shutdown closes every socket and waits until their read pumps have
// returned, so no inbound message is handled after it. Run must still be
// running.
func (h *Hub) Shutdown(ctx context.Context) error {
	done := make(chan struct{})
	select {
	case h.closeAll <- done:
	case <-ctx.Done():
		return ctx.Err()
	}
	<-done

	finished := make(chan struct{})
	go func() {
		h.pumps.Wait()
		close(finished)
	}()
	select {
	case <-finished:
		return nil
	case <-ctx.Done():
		return ctx.Err()
	}
}

// Push sends an event to every socket of userID.
func (h *Hub) Push(userID, kind string, payload any) {
	data, err := json.Marshal(Message{Type: kind, Payload: payload, Sender: "system"})
	if err != nil {
		log.Printf("WS: marshal %s: %v", kind, err)
		return
	}
	h.direct <- directMessage{userID: userID, data: data}
}

// BroadcastEvent sends an event to every connected client.
func (h *Hub) BroadcastEvent(kind string, payload any) error {
	data, err := json.Marshal(Message{Type: kind, Payload: payload, Sender: "system"})
	if err != nil {
		return err
	}
	h.Broadcast <- data
	return nil
}

// upgrader configures the WebSocket handshake.
// CheckOrigin returns true to allow connections from any host (the mobile app
// has no stable origin).
var upgrader = websocket.Upgrader{
	ReadBufferSize:  1024,
	WriteBufferSize: 1024,
	CheckOrigin:     func(r *http.Request) bool { return true },
}

// ServeWs upgrades the request for an already authenticated player.
func ServeWs(hub *Hub, userID string, w http.ResponseWriter, r *http.Request) *Client {
	conn, err := upgrader.Upgrade(w, r, nil)
	if err != nil {
		log.Println("WS Upgrade Error:", err)
		return nil
	}

	client := &Client{hub: hub, userID: userID, conn: conn, send: make(chan []byte, 256)}
	hub.pumps.Add(1)
	client.hub.register <- client

	// Start the read/write pumps in their own goroutines.
	// This ensures one slow client doesn't block the entire server.
	go client.writePump()
	go client.readPump()
	return client
}

// readPump reads client messages (position samples) and hands them to the
// hub's inbound handler.
func (c *Client) readPump() {
	defer func() {
		c.hub.unregister <- c
		c.conn.Close()
		c.hub.pumps.Done()
	}()
	c.conn.SetReadLimit(maxMessageSize)
	_ = c.conn.SetReadDeadline(time.Now().Add(pongWait))
	c.conn.SetPongHandler(func(string) error {
		return c.conn.SetReadDeadline(time.Now().Add(pongWait))
	})

	for {
		_, message, err := c.conn.ReadMessage()
		if err != nil {
			if websocket.IsUnexpectedCloseError(err, websocket.CloseGoingAway, websocket.CloseAbnormalClosure) {
				log.Printf("WS Error: %v", err)
			}
			break
		}
		var in Inbound
		if err := json.Unmarshal(message, &in); err != nil {
			log.Printf("WS: %s sent malformed message: %v", c.userID, err)
			continue
		}
		if c.hub.onInbound != nil {
			c.hub.onInbound(c.userID, in)
		}
	}
}

// writePump pumps messages from the hub to the websocket connection.
func (c *Client) writePump() {
	ticker := time.NewTicker(pingPeriod)
	defer func() {
		ticker.Stop()
		c.conn.Close()
	}()

	for {
		select {
		case message, ok := <-c.send:
			_ = c.conn.SetWriteDeadline(time.Now().Add(writeWait))
			if !ok {
				// The hub closed the channel.
				_ = c.conn.WriteMessage(websocket.CloseMessage, []byte{})
				return
			}
			w, err := c.conn.NextWriter(websocket.TextMessage)
			if err != nil {
				return
			}
			w.Write(message)
			if err := w.Close(); err != nil {
				return
			}

		case <-ticker.C:
			_ = c.conn.SetWriteDeadline(time.Now().Add(writeWait))
			if err := c.conn.WriteMessage(websocket.PingMessage, nil); err != nil {
				return
			}
		}
	}
}
