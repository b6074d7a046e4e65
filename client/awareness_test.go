package client

import (
	"encoding/json"
	"testing"
	"time"

	"github.com/inkwell-live/inkwell/internal/protocol"
)

func encodeState(t *testing.T, id string, state *AwarenessState) []byte {
	t.Helper()

	payload, err := json.Marshal(awarenessFrame{ParticipantID: id, State: state})
	if err != nil {
		t.Fatalf("Marshal failed: %v", err)
	}
	return payload
}

func TestSetLocalAnnounces(t *testing.T) {
	var sent [][]byte
	a := newAwareness("self", func(frame []byte) error {
		sent = append(sent, frame)
		return nil
	})

	if err := a.SetLocal("name", "ada"); err != nil {
		t.Fatalf("Unexpected error: %v", err)
	}
	if err := a.SetLocal("color", "#F98181"); err != nil {
		t.Fatalf("Unexpected error: %v", err)
	}

	if len(sent) != 2 {
		t.Fatalf("Expected 2 announcements, got %d", len(sent))
	}

	last := sent[1]
	if protocol.Type(last) != protocol.FrameAwareness {
		t.Fatal("Announcement should be an awareness frame")
	}

	var frame awarenessFrame
	if err := json.Unmarshal(protocol.Payload(last), &frame); err != nil {
		t.Fatalf("Unmarshal failed: %v", err)
	}
	if frame.ParticipantID != "self" {
		t.Errorf("Expected participant 'self', got %q", frame.ParticipantID)
	}
	if frame.State == nil || frame.State.Name != "ada" || frame.State.Color != "#F98181" {
		t.Errorf("Unexpected state: %+v", frame.State)
	}
}

func TestSetLocalRejectsUnknownField(t *testing.T) {
	a := newAwareness("self", func([]byte) error { return nil })

	if err := a.SetLocal("mood", "chipper"); err == nil {
		t.Error("Unknown field should be rejected")
	}
	if err := a.SetLocal("name", 42); err == nil {
		t.Error("Wrong value type should be rejected")
	}
}

func TestApplyTracksRemoteStates(t *testing.T) {
	a := newAwareness("self", func([]byte) error { return nil })

	a.apply(encodeState(t, "peer-1", &AwarenessState{Name: "grace", Color: "#70CFF8"}))

	states := a.States()
	if got := states["peer-1"]; got.Name != "grace" {
		t.Errorf("Expected peer-1 name 'grace', got %q", got.Name)
	}

	// A nil state withdraws the participant
	a.apply(encodeState(t, "peer-1", nil))
	if _, ok := a.States()["peer-1"]; ok {
		t.Error("Withdrawn participant should be removed")
	}
}

func TestApplyIgnoresOwnAnnouncements(t *testing.T) {
	a := newAwareness("self", func([]byte) error { return nil })

	a.apply(encodeState(t, "self", &AwarenessState{Name: "echo"}))
	if len(a.States()) != 0 {
		t.Error("Own announcements must not land in the remote map")
	}
}

func TestExpireReapsStaleEntries(t *testing.T) {
	a := newAwareness("self", func([]byte) error { return nil })
	a.apply(encodeState(t, "peer-1", &AwarenessState{Name: "grace"}))

	a.expire(time.Hour)
	if _, ok := a.States()["peer-1"]; !ok {
		t.Fatal("Fresh entry should survive expiry")
	}

	// Backdate the entry as if the peer stopped announcing
	a.mu.Lock()
	entry := a.remote["peer-1"]
	entry.seen = time.Now().Add(-time.Minute)
	a.remote["peer-1"] = entry
	a.mu.Unlock()

	a.expire(time.Second)
	if _, ok := a.States()["peer-1"]; ok {
		t.Error("Entry that stopped refreshing should be reaped")
	}
}

func TestLastChangeTravels(t *testing.T) {
	var sent [][]byte
	a := newAwareness("self", func(frame []byte) error {
		sent = append(sent, frame)
		return nil
	})

	change := Change{ID: "c1", Author: "ada", Content: "Hello world"}
	if err := a.SetLocal("lastChange", change); err != nil {
		t.Fatalf("Unexpected error: %v", err)
	}

	b := newAwareness("other", func([]byte) error { return nil })
	b.apply(protocol.Payload(sent[0]))

	got := b.States()["self"]
	if got.LastChange == nil || got.LastChange.Content != "Hello world" {
		t.Errorf("Expected last change to travel, got %+v", got.LastChange)
	}
}
