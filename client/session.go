package client

import (
	"errors"
	"log"
	"net/url"
	"strings"
	"sync"
	"sync/atomic"
	"time"

	"github.com/cenkalti/backoff"
	"github.com/gorilla/websocket"

	"github.com/inkwell-live/inkwell/internal/protocol"
)

// Status is the session's connection state as shown to the user. There is
// no blocking error surface; transport trouble only moves this indicator.
type Status int

const (
	StatusConnecting Status = iota
	StatusConnected
	StatusDisconnected
)

func (s Status) String() string {
	switch s {
	case StatusConnecting:
		return "connecting"
	case StatusConnected:
		return "connected"
	default:
		return "disconnected"
	}
}

var (
	// ErrSessionClosed is returned when operating on a torn-down session.
	ErrSessionClosed = errors.New("client: session closed")

	// ErrNotConnected is returned when a frame cannot be sent because no
	// socket is currently open. The resync timer will restore the link.
	ErrNotConnected = errors.New("client: not connected")
)

const (
	defaultResyncInterval = 5 * time.Second
	defaultDialRetries    = 3
	sessionWriteWait      = 10 * time.Second
)

// SessionConfig configures one participant's connection to the relay.
type SessionConfig struct {
	// Relay base URL, e.g. "ws://localhost:8080"
	BaseURL string

	Participant Participant

	// How often the session re-requests state, and retries the connection
	// when it has dropped. Defaults to 5s.
	ResyncInterval time.Duration

	// Extra dial attempts (exponential backoff) per connection attempt
	DialRetries uint64

	// Optional observer for status transitions
	OnStatus func(Status)
}

// One inbound read-loop result, tagged with the socket it came from so
// events from a replaced connection can be discarded.
type sessionEvent struct {
	conn  *websocket.Conn
	frame []byte
	err   error
}

// Session owns exactly one relay connection for a participant's visit.
// Opening an already-open session is a no-op, closing twice is a no-op, and
// a dropped connection is re-dialed by the resync timer rather than by the
// user.
type Session struct {
	baseURL   string
	dialer    *websocket.Dialer
	resync    time.Duration
	retries   uint64
	onStatus  func(Status)
	awareness *Awareness

	mu      sync.Mutex
	writeMu sync.Mutex
	roomID  string
	replica Replica
	conn    *websocket.Conn
	status  Status
	opened  bool
	closed  bool

	redialing atomic.Bool
	events    chan sessionEvent
	done      chan struct{}
	closeOnce sync.Once
}

func NewSession(cfg SessionConfig) *Session {
	if cfg.ResyncInterval <= 0 {
		cfg.ResyncInterval = defaultResyncInterval
	}
	if cfg.DialRetries == 0 {
		cfg.DialRetries = defaultDialRetries
	}

	s := &Session{
		baseURL:  cfg.BaseURL,
		dialer:   websocket.DefaultDialer,
		resync:   cfg.ResyncInterval,
		retries:  cfg.DialRetries,
		onStatus: cfg.OnStatus,
		status:   StatusDisconnected,
		events:   make(chan sessionEvent, 64),
		done:     make(chan struct{}),
	}
	s.awareness = newAwareness(cfg.Participant.ID, s.write)
	return s
}

// Awareness returns the presence channel piggybacked on this session.
func (s *Session) Awareness() *Awareness {
	return s.awareness
}

// Open binds the replica to the room and dials the relay. A second call on
// an open session does nothing, so a remounted view never produces a
// duplicate socket. If the initial dial fails the session stays open in the
// disconnected state and the resync timer keeps retrying; the dial error is
// returned for the caller's information only.
func (s *Session) Open(roomID string, replica Replica) error {
	s.mu.Lock()
	if s.closed {
		s.mu.Unlock()
		return ErrSessionClosed
	}
	if s.opened {
		s.mu.Unlock()
		return nil
	}
	s.opened = true
	s.roomID = roomID
	s.replica = replica
	s.mu.Unlock()

	// Local replica mutations go out as sync updates.
	replica.OnUpdate(func(update []byte) {
		if err := s.write(protocol.EncodeSync(protocol.SyncUpdate, update)); err != nil {
			log.Printf("Update send failed: %v", err)
		}
	})

	s.setStatus(StatusConnecting)
	go s.run()

	return s.connect()
}

// Close tears down the socket and all timers. Every exit path may call it;
// a stale close on an already-closed session is a safe no-op.
func (s *Session) Close() error {
	s.closeOnce.Do(func() {
		s.mu.Lock()
		conn := s.conn
		s.mu.Unlock()

		if conn != nil {
			// Best effort: tell peers this participant is gone.
			s.awareness.withdraw()
		}

		s.mu.Lock()
		s.closed = true
		// A reconnect may have swapped the socket since the first look.
		if s.conn != nil {
			conn = s.conn
		}
		s.conn = nil
		s.mu.Unlock()

		if conn != nil {
			conn.Close()
		}
		close(s.done)
		s.setStatus(StatusDisconnected)
	})
	return nil
}

// Status returns the current connection status.
func (s *Session) Status() Status {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.status
}

func (s *Session) setStatus(status Status) {
	s.mu.Lock()
	if s.status == status {
		s.mu.Unlock()
		return
	}
	s.status = status
	cb := s.onStatus
	s.mu.Unlock()

	if cb != nil {
		cb(status)
	}
}

// connect dials the room, retrying with exponential backoff, then starts
// the read loop, re-announces presence and requests missed state.
func (s *Session) connect() error {
	target, err := roomURL(s.baseURL, s.roomID)
	if err != nil {
		s.setStatus(StatusDisconnected)
		return err
	}

	var conn *websocket.Conn
	dial := func() error {
		c, _, err := s.dialer.Dial(target, nil)
		if err != nil {
			return err
		}
		conn = c
		return nil
	}

	policy := backoff.WithMaxRetries(backoff.NewExponentialBackOff(), s.retries)
	if err := backoff.Retry(dial, policy); err != nil {
		s.setStatus(StatusDisconnected)
		return err
	}

	s.mu.Lock()
	if s.closed {
		s.mu.Unlock()
		conn.Close()
		return ErrSessionClosed
	}
	s.conn = conn
	s.mu.Unlock()

	go s.readLoop(conn)
	s.setStatus(StatusConnected)

	s.awareness.flush()
	s.requestSync()
	return nil
}

// run is the session's event loop: it consumes inbound frames and drives
// the periodic resync until the session is closed.
func (s *Session) run() {
	ticker := time.NewTicker(s.resync)
	defer ticker.Stop()

	for {
		select {
		case <-s.done:
			return
		case ev := <-s.events:
			s.handle(ev)
		case <-ticker.C:
			s.tick()
		}
	}
}

func (s *Session) readLoop(conn *websocket.Conn) {
	for {
		_, frame, err := conn.ReadMessage()
		ev := sessionEvent{conn: conn, frame: frame, err: err}
		select {
		case s.events <- ev:
		case <-s.done:
			return
		}
		if err != nil {
			return
		}
	}
}

func (s *Session) handle(ev sessionEvent) {
	s.mu.Lock()
	current := s.conn
	s.mu.Unlock()
	if ev.conn != current {
		// Leftover from a connection already replaced or torn down
		return
	}

	if ev.err != nil {
		s.mu.Lock()
		s.conn = nil
		s.mu.Unlock()
		ev.conn.Close()
		s.setStatus(StatusDisconnected)
		return
	}

	if status, ok := protocol.ParseStatus(ev.frame); ok {
		if status.Status == "connected" {
			s.setStatus(StatusConnected)
		}
		return
	}

	switch protocol.Type(ev.frame) {
	case protocol.FrameAwareness:
		s.awareness.apply(protocol.Payload(ev.frame))

	case protocol.FrameSync:
		payload := protocol.Payload(ev.frame)
		switch protocol.Step(ev.frame) {
		case protocol.SyncRequest:
			var vector []byte
			if len(payload) > 0 {
				vector = payload
			}
			diff, err := s.replica.Diff(vector)
			if err != nil {
				log.Printf("Replica diff failed: %v", err)
				return
			}
			if err := s.write(protocol.EncodeSync(protocol.SyncState, diff)); err != nil {
				log.Printf("Sync reply failed: %v", err)
			}
		default:
			if err := s.replica.Merge(payload); err != nil {
				log.Printf("Replica merge failed: %v", err)
			}
		}
	}
}

// tick is the resync timer: a live connection proactively re-requests state
// and re-announces local presence in case either silently stalled, a dead
// one is re-dialed. Remote presence that stopped refreshing is reaped here,
// covering peers that vanished without a clean withdraw.
func (s *Session) tick() {
	s.mu.Lock()
	closed, connected := s.closed, s.conn != nil
	s.mu.Unlock()
	if closed {
		return
	}

	s.awareness.expire(3 * s.resync)

	if connected {
		s.requestSync()
		s.awareness.flush()
		return
	}

	if s.redialing.CompareAndSwap(false, true) {
		go func() {
			defer s.redialing.Store(false)
			if err := s.connect(); err != nil && !errors.Is(err, ErrSessionClosed) {
				log.Printf("Reconnect failed: %v", err)
			}
		}()
	}
}

func (s *Session) requestSync() {
	if err := s.write(protocol.EncodeSync(protocol.SyncRequest, s.replica.StateVector())); err != nil {
		log.Printf("Sync request failed: %v", err)
	}
}

// write sends one frame over the current socket, if any.
func (s *Session) write(frame []byte) error {
	s.mu.Lock()
	conn := s.conn
	closed := s.closed
	s.mu.Unlock()

	if closed {
		return ErrSessionClosed
	}
	if conn == nil {
		return ErrNotConnected
	}
	return s.writeTo(conn, frame)
}

func (s *Session) writeTo(conn *websocket.Conn, frame []byte) error {
	s.writeMu.Lock()
	defer s.writeMu.Unlock()

	conn.SetWriteDeadline(time.Now().Add(sessionWriteWait))
	return conn.WriteMessage(websocket.BinaryMessage, frame)
}

// roomURL joins the relay base URL and the room path segment.
func roomURL(base, roomID string) (string, error) {
	u, err := url.Parse(base)
	if err != nil {
		return "", err
	}
	u.Path = "/" + strings.Trim(roomID, "/")
	return u.String(), nil
}
