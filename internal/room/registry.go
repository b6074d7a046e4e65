package room

import (
	"sync"
)

// Registry maps room IDs to their current member sets. Rooms are created
// lazily on first join and removed the moment their last member leaves, so
// an empty room never persists.
type Registry[M comparable] struct {
	mu    sync.RWMutex
	rooms map[string]map[M]bool
	total int
}

func NewRegistry[M comparable]() *Registry[M] {
	return &Registry[M]{
		rooms: make(map[string]map[M]bool),
	}
}

// Adds the member to the room, creating the room if absent
func (r *Registry[M]) Join(roomID string, member M) {
	r.mu.Lock()
	defer r.mu.Unlock()

	members, ok := r.rooms[roomID]
	if !ok {
		members = make(map[M]bool)
		r.rooms[roomID] = members
	}
	if !members[member] {
		members[member] = true
		r.total++
	}
}

// Removes the member from the room; deletes the room once empty.
// Returns false if the member was not present.
func (r *Registry[M]) Leave(roomID string, member M) bool {
	r.mu.Lock()
	defer r.mu.Unlock()

	members, ok := r.rooms[roomID]
	if !ok || !members[member] {
		return false
	}
	delete(members, member)
	r.total--

	if len(members) == 0 {
		delete(r.rooms, roomID)
	}
	return true
}

// Returns a snapshot of the room's members, safe to iterate while other
// goroutines join and leave. Order is unspecified.
func (r *Registry[M]) Members(roomID string) []M {
	r.mu.RLock()
	defer r.mu.RUnlock()

	members := make([]M, 0, len(r.rooms[roomID]))
	for m := range r.rooms[roomID] {
		members = append(members, m)
	}
	return members
}

// Number of rooms with at least one member
func (r *Registry[M]) RoomCount() int {
	r.mu.RLock()
	defer r.mu.RUnlock()
	return len(r.rooms)
}

// Total members across all rooms
func (r *Registry[M]) MemberCount() int {
	r.mu.RLock()
	defer r.mu.RUnlock()
	return r.total
}

// Returns room ID -> member count for every live room
func (r *Registry[M]) ActiveRooms() map[string]int {
	r.mu.RLock()
	defer r.mu.RUnlock()

	active := make(map[string]int, len(r.rooms))
	for id, members := range r.rooms {
		active[id] = len(members)
	}
	return active
}
