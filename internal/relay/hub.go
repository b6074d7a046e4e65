// Package relay implements the room-scoped broadcast relay: every frame a
// participant sends is fanned out, untouched, to every other participant in
// the same room. The relay carries no document semantics; merging concurrent
// edits is the job of the replica library running on each client.
package relay

import (
	"log"

	"github.com/inkwell-live/inkwell/internal/config"
	"github.com/inkwell-live/inkwell/internal/protocol"
	"github.com/inkwell-live/inkwell/internal/room"
)

// Hub owns room membership and performs the fan-out. All membership
// mutations funnel through Run's loop via the register/unregister channels.
type Hub struct {
	registry *room.Registry[*Client]

	// Inbound frames from clients
	broadcast chan *Message

	// Join requests from freshly accepted connections
	register chan *Client

	// Leave requests from closing connections
	unregister chan *Client

	cfg config.Config
}

// Message is one relayed frame together with its origin.
type Message struct {
	RoomID string
	Data   []byte
	Sender *Client
}

func NewHub(cfg config.Config) *Hub {
	return &Hub{
		registry:   room.NewRegistry[*Client](),
		broadcast:  make(chan *Message),
		register:   make(chan *Client),
		unregister: make(chan *Client),
		cfg:        cfg,
	}
}

// Run processes registration, unregistration and broadcast events until the
// process exits. Call it in its own goroutine.
func (h *Hub) Run() {
	for {
		select {
		case client := <-h.register:
			h.registry.Join(client.roomID, client)
			client.setState(StateOpen)
			log.Printf("Client %s joined room %q (members: %d)",
				client.id, client.roomID, len(h.registry.Members(client.roomID)))

			// Greet the new connection only; nobody else hears about it.
			select {
			case client.send <- protocol.Connected():
			default:
			}

		case client := <-h.unregister:
			h.drop(client)

		case message := <-h.broadcast:
			for _, member := range h.registry.Members(message.RoomID) {
				if member == message.Sender {
					continue
				}
				// A slow or dead peer is dropped rather than allowed to
				// stall delivery to the rest of the room.
				select {
				case member.send <- message.Data:
				default:
					log.Printf("Client %s in room %q cannot keep up, dropping",
						member.id, member.roomID)
					h.drop(member)
				}
			}
		}
	}
}

// drop removes the client from its room and releases its send channel.
// Safe to call twice for the same client; only the first call acts.
func (h *Hub) drop(client *Client) {
	if !h.registry.Leave(client.roomID, client) {
		return
	}
	client.setState(StateClosed)
	close(client.send)

	if remaining := len(h.registry.Members(client.roomID)); remaining == 0 {
		log.Printf("Room %q closed (empty)", client.roomID)
	} else {
		log.Printf("Client %s left room %q (remaining: %d)", client.id, client.roomID, remaining)
	}
}

// Current number of open connections across all rooms
func (h *Hub) ClientCount() int {
	return h.registry.MemberCount()
}

// Current number of rooms with at least one member
func (h *Hub) RoomCount() int {
	return h.registry.RoomCount()
}

// Room ID -> member count for every live room
func (h *Hub) ActiveRooms() map[string]int {
	return h.registry.ActiveRooms()
}
