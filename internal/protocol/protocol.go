package protocol

import "encoding/json"

// Represents the kind of frame carried over a room connection
type FrameType byte

const (
	// Document sync traffic produced by the replica library
	FrameSync FrameType = 0

	// Presence and change-announcement traffic
	FrameAwareness FrameType = 1

	// Relay-origin status notifications; never accepted from clients
	FrameStatus FrameType = 2
)

// Represents the step within the sync handshake
type SyncStep byte

const (
	// Peer asks for state it is missing, payload is its state vector
	SyncRequest SyncStep = 0

	// Reply carrying the requested state
	SyncState SyncStep = 1

	// Regular incremental update broadcast
	SyncUpdate SyncStep = 2
)

// Extracts the frame type from the first byte
func Type(data []byte) FrameType {
	if len(data) == 0 {
		return FrameSync
	}
	return FrameType(data[0])
}

// Extracts the sync step from the second byte
func Step(data []byte) SyncStep {
	if len(data) < 2 {
		return SyncRequest
	}
	return SyncStep(data[1])
}

// Returns the payload carried after the frame header
func Payload(data []byte) []byte {
	switch Type(data) {
	case FrameAwareness, FrameStatus:
		if len(data) < 1 {
			return nil
		}
		return data[1:]
	default:
		if len(data) < 2 {
			return nil
		}
		return data[2:]
	}
}

// Builds a sync frame: [FrameSync, step, payload...]
func EncodeSync(step SyncStep, payload []byte) []byte {
	frame := make([]byte, 0, 2+len(payload))
	frame = append(frame, byte(FrameSync), byte(step))
	return append(frame, payload...)
}

// Builds an awareness frame: [FrameAwareness, payload...]
func EncodeAwareness(payload []byte) []byte {
	frame := make([]byte, 0, 1+len(payload))
	frame = append(frame, byte(FrameAwareness))
	return append(frame, payload...)
}

// StatusFrame is the one frame the relay itself produces, sent to a
// connection immediately after it is accepted. On the wire it carries the
// FrameStatus tag so relayed peer payloads can never impersonate it.
type StatusFrame struct {
	Type   string `json:"type"`
	Status string `json:"status"`
}

// Encodes the connected status notification
func Connected() []byte {
	payload, _ := json.Marshal(StatusFrame{Type: "status", Status: "connected"})
	frame := make([]byte, 0, 1+len(payload))
	frame = append(frame, byte(FrameStatus))
	return append(frame, payload...)
}

// ParseStatus reports whether data is a relay status frame and decodes it.
func ParseStatus(data []byte) (StatusFrame, bool) {
	if len(data) < 2 || Type(data) != FrameStatus {
		return StatusFrame{}, false
	}
	var frame StatusFrame
	if err := json.Unmarshal(data[1:], &frame); err != nil || frame.Type != "status" {
		return StatusFrame{}, false
	}
	return frame, true
}
