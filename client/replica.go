// Package client is the Go SDK for the Inkwell relay. It owns the
// connection lifecycle for one participant: dialing the room, keeping the
// local document replica in sync with the rest of the room, carrying
// presence over the awareness channel, and gating when locally composed
// content becomes an accepted change.
//
// The document model itself is external. The SDK talks to it only through
// the Replica and Editor interfaces below and never inspects the bytes the
// replica produces.
package client

// Replica is the conflict-free document replica the SDK synchronizes. The
// SDK treats it as opaque: it forwards the updates the replica emits,
// merges the updates peers send back, and asks for state summaries during
// resync. Implementations must be safe for use from the session goroutine.
type Replica interface {
	// Merge applies a remote update or state payload to the local document.
	Merge(update []byte) error

	// Diff returns the state a peer with the given state vector is missing.
	// A nil vector asks for the full document state.
	Diff(stateVector []byte) ([]byte, error)

	// StateVector returns a compact summary of the replica's current state,
	// suitable as a Diff argument on a remote peer.
	StateVector() []byte

	// OnUpdate registers the sink for updates produced by local edits.
	// At most one sink is active; registering replaces the previous one.
	OnUpdate(fn func(update []byte))
}
