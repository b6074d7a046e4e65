package client

import (
	"encoding/json"
	"fmt"
	"log"
	"sync"
	"time"

	"github.com/inkwell-live/inkwell/internal/protocol"
)

// AwarenessState is the structured, non-document record each participant
// publishes to the room: who they are and, optionally, the change they most
// recently submitted. It lives and dies with the owning connection.
type AwarenessState struct {
	Name       string  `json:"name"`
	Color      string  `json:"color"`
	LastChange *Change `json:"lastChange,omitempty"`
}

// Wire shape of one awareness announcement. A nil State withdraws the
// participant.
type awarenessFrame struct {
	ParticipantID string          `json:"participantId"`
	State         *AwarenessState `json:"state"`
}

// One remote participant's latest announcement and when it arrived
type remoteEntry struct {
	state AwarenessState
	seen  time.Time
}

// Awareness carries presence over the session's connection. Local mutations
// flush immediately and the session re-announces the local state on every
// resync tick, so a participant who joins mid-session still learns about
// everyone within one tick. Remote announcements accumulate in a map keyed
// by participant ID; entries that stop refreshing are expired, which reaps
// peers whose connection died without a clean withdraw.
type Awareness struct {
	mu     sync.RWMutex
	selfID string
	local  AwarenessState
	remote map[string]remoteEntry
	send   func(frame []byte) error
}

func newAwareness(selfID string, send func(frame []byte) error) *Awareness {
	return &Awareness{
		selfID: selfID,
		remote: make(map[string]remoteEntry),
		send:   send,
	}
}

// SetLocal updates one field of the local participant's visible state and
// announces the new state to the room. Delivery is best effort; a transport
// failure is logged, not returned, and the next flush carries the value.
func (a *Awareness) SetLocal(field string, value interface{}) error {
	a.mu.Lock()
	switch field {
	case "name":
		name, ok := value.(string)
		if !ok {
			a.mu.Unlock()
			return fmt.Errorf("client: awareness field %q wants a string", field)
		}
		a.local.Name = name
	case "color":
		color, ok := value.(string)
		if !ok {
			a.mu.Unlock()
			return fmt.Errorf("client: awareness field %q wants a string", field)
		}
		a.local.Color = color
	case "lastChange":
		change, ok := value.(Change)
		if !ok {
			a.mu.Unlock()
			return fmt.Errorf("client: awareness field %q wants a Change", field)
		}
		a.local.LastChange = &change
	default:
		a.mu.Unlock()
		return fmt.Errorf("client: unknown awareness field %q", field)
	}
	a.mu.Unlock()

	a.flush()
	return nil
}

// Local returns a copy of the local participant's state.
func (a *Awareness) Local() AwarenessState {
	a.mu.RLock()
	defer a.mu.RUnlock()
	return a.local
}

// States returns a snapshot of every remote participant's latest state.
func (a *Awareness) States() map[string]AwarenessState {
	a.mu.RLock()
	defer a.mu.RUnlock()

	states := make(map[string]AwarenessState, len(a.remote))
	for id, entry := range a.remote {
		states[id] = entry.state
	}
	return states
}

// expire drops remote entries not refreshed within maxAge.
func (a *Awareness) expire(maxAge time.Duration) {
	if maxAge <= 0 {
		return
	}
	cutoff := time.Now().Add(-maxAge)

	a.mu.Lock()
	defer a.mu.Unlock()
	for id, entry := range a.remote {
		if entry.seen.Before(cutoff) {
			delete(a.remote, id)
		}
	}
}

// flush announces the current local state to the room.
func (a *Awareness) flush() {
	a.mu.RLock()
	state := a.local
	frame := awarenessFrame{ParticipantID: a.selfID, State: &state}
	a.mu.RUnlock()

	a.announce(frame)
}

// withdraw announces that this participant is gone; peers drop its state.
func (a *Awareness) withdraw() {
	a.announce(awarenessFrame{ParticipantID: a.selfID})
}

func (a *Awareness) announce(frame awarenessFrame) {
	payload, err := json.Marshal(frame)
	if err != nil {
		log.Printf("Awareness encode failed: %v", err)
		return
	}
	if err := a.send(protocol.EncodeAwareness(payload)); err != nil {
		log.Printf("Awareness announce failed: %v", err)
	}
}

// apply merges one inbound awareness payload.
func (a *Awareness) apply(payload []byte) {
	var frame awarenessFrame
	if err := json.Unmarshal(payload, &frame); err != nil {
		log.Printf("Awareness decode failed: %v", err)
		return
	}
	if frame.ParticipantID == "" || frame.ParticipantID == a.selfID {
		return
	}

	a.mu.Lock()
	defer a.mu.Unlock()
	if frame.State == nil {
		delete(a.remote, frame.ParticipantID)
		return
	}
	a.remote[frame.ParticipantID] = remoteEntry{state: *frame.State, seen: time.Now()}
}
