// Package session runs the pointer protocol for one client connection.
package session

import (
	"context"
	"errors"
	"fmt"
	"sync/atomic"
	"time"

	"github.com/google/uuid"
	"github.com/rs/zerolog"

	"github.com/frudas24/deskpointer/internal/actuator"
	"github.com/frudas24/deskpointer/internal/coalesce"
	"github.com/frudas24/deskpointer/internal/input"
	"github.com/frudas24/deskpointer/internal/protocol"
)

// State is the lifecycle stage of a session.
type State int32

const (
	// StateConnecting lies between New and Run. The transport handshake is already complete.
	StateConnecting State = iota
	// StateOpen runs the read loop.
	StateOpen
	// StateClosing flushes pending motion and releases the transport.
	StateClosing
	// StateClosed is terminal.
	StateClosed
)

// String returns the lowercase state name.
func (s State) String() string {
	switch s {
	case StateConnecting:
		return "connecting"
	case StateOpen:
		return "open"
	case StateClosing:
		return "closing"
	case StateClosed:
		return "closed"
	default:
		return fmt.Sprintf("state(%d)", int32(s))
	}
}

// ErrIdleTimeout ends a session that received no frames for the idle timeout.
var ErrIdleTimeout = errors.New("idle timeout")

// Config holds per-session settings.
type Config struct {
	Coalesce    coalesce.Config
	IdleTimeout time.Duration
}

// Info is a read-only view of a session.
type Info struct {
	ID        string    `json:"id"`
	Transport string    `json:"transport"`
	Remote    string    `json:"remote"`
	State     string    `json:"state"`
	Frames    int64     `json:"frames"`
	Malformed int64     `json:"malformed"`
	Opened    time.Time `json:"opened"`
}

// Session owns one transport, its move batch and a shared reference to the actuator.
type Session struct {
	id        string
	transport Transport
	cfg       Config
	co        *coalesce.Coalescer
	log       zerolog.Logger
	opened    time.Time

	state     atomic.Int32
	frames    atomic.Int64
	malformed atomic.Int64
}

// New creates a session in the Connecting state. The caller completes the transport handshake
// (websocket upgrade or data channel open) before New, so Connecting is only observable until Run
// moves the session to Open.
func New(t Transport, act actuator.Actuator, cfg Config, log zerolog.Logger) *Session {
	id := uuid.NewString()
	return &Session{
		id:        id,
		transport: t,
		cfg:       cfg,
		co:        coalesce.New(cfg.Coalesce, act),
		opened:    time.Now(),
		log: log.With().
			Str("session", id).
			Str("transport", t.Kind()).
			Str("remote", t.RemoteAddr()).
			Logger(),
	}
}

// ID returns the session identifier.
func (s *Session) ID() string {
	return s.id
}

// State returns the current lifecycle stage.
func (s *Session) State() State {
	return State(s.state.Load())
}

// Info returns a snapshot for status reporting.
func (s *Session) Info() Info {
	return Info{
		ID:        s.id,
		Transport: s.transport.Kind(),
		Remote:    s.transport.RemoteAddr(),
		State:     s.State().String(),
		Frames:    s.frames.Load(),
		Malformed: s.malformed.Load(),
		Opened:    s.opened,
	}
}

// Run processes frames until the peer closes, the transport fails, the idle timeout fires or ctx
// is cancelled. Pending motion is always flushed before Run returns. A clean close returns nil.
func (s *Session) Run(ctx context.Context) error {
	s.setState(StateOpen)
	s.log.Info().Msg("session open")

	msgs := make(chan []byte)
	readErr := make(chan error, 1)
	done := make(chan struct{})
	defer close(done)
	go s.readLoop(msgs, readErr, done)

	flushTimer := time.NewTimer(time.Hour)
	flushTimer.Stop()
	defer flushTimer.Stop()
	var flushC <-chan time.Time

	var idleC <-chan time.Time
	var idleTimer *time.Timer
	if s.cfg.IdleTimeout > 0 {
		idleTimer = time.NewTimer(s.cfg.IdleTimeout)
		defer idleTimer.Stop()
		idleC = idleTimer.C
	}

	var cause error
loop:
	for {
		select {
		case <-ctx.Done():
			cause = ctx.Err()
			break loop
		case err := <-readErr:
			cause = err
			break loop
		case <-idleC:
			cause = ErrIdleTimeout
			break loop
		case <-flushC:
			flushC = nil
			if err := s.co.FlushIfDue(); err != nil {
				s.log.Warn().Err(err).Msg("timed flush failed")
			}
		case data := <-msgs:
			if idleTimer != nil {
				idleTimer.Reset(s.cfg.IdleTimeout)
			}
			s.handleFrame(data)
		}

		if deadline, ok := s.co.Deadline(); ok {
			flushTimer.Reset(time.Until(deadline))
			flushC = flushTimer.C
		} else if flushC != nil {
			flushTimer.Stop()
			flushC = nil
		}
	}

	return s.teardown(cause)
}

// readLoop is the only goroutine reading the transport.
func (s *Session) readLoop(msgs chan<- []byte, readErr chan<- error, done <-chan struct{}) {
	for {
		binary, data, err := s.transport.ReadMessage()
		if err != nil {
			readErr <- err
			return
		}
		if !binary {
			s.log.Debug().Int("bytes", len(data)).Msg("ignoring non-binary message")
			continue
		}
		select {
		case msgs <- data:
		case <-done:
			return
		}
	}
}

// handleFrame decodes one frame and feeds the coalescer. Errors are logged, never fatal.
func (s *Session) handleFrame(data []byte) {
	s.frames.Add(1)

	ev, err := protocol.Decode(data)
	if err != nil {
		s.malformed.Add(1)
		s.log.Warn().Err(err).Msg("dropping frame")
		return
	}
	if ev == nil {
		return
	}

	if err := s.co.Handle(ev); err != nil {
		evt := s.log.Warn().Err(err)
		if click, ok := ev.(input.Click); ok {
			evt = evt.Stringer("button", click.Button)
		}
		evt.Msg("actuation failed")
	}
}

// teardown flushes pending motion, closes the transport and classifies the cause.
func (s *Session) teardown(cause error) error {
	s.setState(StateClosing)

	pending := s.co.Pending()
	if err := s.co.Flush(); err != nil {
		s.log.Warn().Err(err).Int("moves", pending).Msg("flush on close failed")
	}
	if err := s.transport.Close(); err != nil {
		s.log.Debug().Err(err).Msg("transport close")
	}
	s.setState(StateClosed)

	stats := s.co.Stats()
	evt := s.log.Info().
		Int64("frames", s.frames.Load()).
		Int64("malformed", s.malformed.Load()).
		Int("moves", stats.Moves).
		Int("batches", stats.Batches).
		Int("clicks", stats.Clicks).
		Dur("duration", time.Since(s.opened))

	switch {
	case cause == nil, errors.Is(cause, ErrPeerClosed), errors.Is(cause, context.Canceled):
		evt.Msg("session closed")
		return nil
	default:
		evt.Err(cause).Msg("session closed")
		return cause
	}
}

// setState stores the lifecycle stage.
func (s *Session) setState(st State) {
	s.state.Store(int32(st))
}
