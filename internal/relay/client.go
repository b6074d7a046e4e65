package relay

import (
	"fmt"
	"log"
	"net/http"
	"strings"
	"sync/atomic"
	"time"

	"github.com/google/uuid"
	"github.com/gorilla/websocket"

	"github.com/inkwell-live/inkwell/internal/protocol"
	"github.com/inkwell-live/inkwell/internal/ratelimit"
)

const (
	writeWait  = 10 * time.Second
	pongWait   = 60 * time.Second
	pingPeriod = (pongWait * 9) / 10
)

// Lifecycle of one relay connection. Closed is terminal.
type State int32

const (
	StateConnecting State = iota
	StateOpen
	StateClosed
)

var upgrader = websocket.Upgrader{
	ReadBufferSize:  4096,
	WriteBufferSize: 4096,
	CheckOrigin: func(r *http.Request) bool {
		return true
	},
}

// Client is the server-side half of one participant's connection. It is
// bound to a single room for its whole lifetime.
type Client struct {
	hub     *Hub
	conn    *websocket.Conn
	send    chan []byte
	roomID  string
	id      string
	state   atomic.Int32
	limiter *ratelimit.Limiter
}

// ServeWS upgrades the request and hands the connection to the hub. The room
// is the first path segment; a bare path lands in the configured default
// room rather than being rejected.
func ServeWS(hub *Hub, w http.ResponseWriter, r *http.Request) {
	roomID := RoomFromPath(r.URL.Path, hub.cfg.DefaultRoom)

	conn, err := upgrader.Upgrade(w, r, nil)
	if err != nil {
		log.Println("Upgrade error:", err)
		return
	}

	client := &Client{
		hub:     hub,
		conn:    conn,
		send:    make(chan []byte, 512),
		roomID:  roomID,
		id:      uuid.NewString(),
		limiter: ratelimit.NewLimiter(hub.cfg.RateLimit.PerSecond, hub.cfg.RateLimit.Burst),
	}
	client.state.Store(int32(StateConnecting))

	hub.register <- client

	go client.writePump()
	go client.readPump()
}

// RoomFromPath resolves a request path to a room ID: the segment after the
// leading slash, or fallback when the path carries none.
func RoomFromPath(path, fallback string) string {
	trimmed := strings.Trim(path, "/")
	if trimmed == "" {
		return fallback
	}
	if i := strings.IndexByte(trimmed, '/'); i >= 0 {
		trimmed = trimmed[:i]
	}
	return trimmed
}

func (c *Client) setState(s State) {
	c.state.Store(int32(s))
}

// State returns the connection's current lifecycle state.
func (c *Client) State() State {
	return State(c.state.Load())
}

func (c *Client) readPump() {
	defer func() {
		c.hub.unregister <- c
		c.conn.Close()
	}()

	c.conn.SetReadLimit(c.hub.cfg.MaxMessageSize)
	c.conn.SetReadDeadline(time.Now().Add(pongWait))
	c.conn.SetPongHandler(func(string) error {
		c.conn.SetReadDeadline(time.Now().Add(pongWait))
		return nil
	})

	for {
		_, message, err := c.conn.ReadMessage()
		if err != nil {
			if websocket.IsUnexpectedCloseError(err, websocket.CloseGoingAway, websocket.CloseAbnormalClosure) {
				log.Printf("Client %s read error: %v", c.id, err)
			}
			break
		}

		if !c.limiter.Allow() {
			log.Printf("Rate limit exceeded for client %s in room %q, frame dropped", c.id, c.roomID)
			continue
		}

		if err := validateFrame(message); err != nil {
			log.Printf("Invalid frame from client %s: %v", c.id, err)
			continue
		}

		c.hub.broadcast <- &Message{
			RoomID: c.roomID,
			Data:   message,
			Sender: c,
		}
	}
}

// The relay never interprets payloads; it only refuses frames too short to
// carry a header, and the status tag reserved for its own notifications.
func validateFrame(data []byte) error {
	if len(data) == 0 {
		return fmt.Errorf("empty frame")
	}
	if protocol.Type(data) == protocol.FrameStatus {
		return fmt.Errorf("status frames are relay-origin only")
	}
	if protocol.Type(data) == protocol.FrameSync && len(data) < 2 {
		return fmt.Errorf("sync frame too short")
	}
	return nil
}

func (c *Client) writePump() {
	ticker := time.NewTicker(pingPeriod)
	defer func() {
		ticker.Stop()
		c.conn.Close()
	}()

	for {
		select {
		case message, ok := <-c.send:
			c.conn.SetWriteDeadline(time.Now().Add(writeWait))
			if !ok {
				c.conn.WriteMessage(websocket.CloseMessage, []byte{})
				return
			}

			w, err := c.conn.NextWriter(websocket.BinaryMessage)
			if err != nil {
				return
			}
			w.Write(message)

			if err := w.Close(); err != nil {
				return
			}

		case <-ticker.C:
			c.conn.SetWriteDeadline(time.Now().Add(writeWait))
			if err := c.conn.WriteMessage(websocket.PingMessage, nil); err != nil {
				return
			}
		}
	}
}
