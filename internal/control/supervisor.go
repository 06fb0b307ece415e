// Package control accepts pointer connections and runs one session per connection.
package control

import (
	"context"
	"net"
	"net/http"
	"sort"
	"sync"

	"github.com/gorilla/websocket"
	"github.com/puzpuzpuz/xsync/v3"
	"github.com/rs/zerolog"
	"github.com/sourcegraph/conc"

	"github.com/frudas24/deskpointer/internal/actuator"
	"github.com/frudas24/deskpointer/internal/session"
)

// DefaultReadLimit caps a single websocket message. Valid frames are at most 9 bytes.
const DefaultReadLimit = 512

// Option configures a Supervisor.
type Option func(*Supervisor)

// WithReadLimit sets the websocket message size limit.
func WithReadLimit(n int64) Option {
	return func(s *Supervisor) {
		if n > 0 {
			s.readLimit = n
		}
	}
}

// Supervisor upgrades websocket requests and spawns an independent session for each connection.
// All sessions share one actuator.
type Supervisor struct {
	mu        sync.RWMutex
	closed    bool
	upgrader  websocket.Upgrader
	act       actuator.Actuator
	cfg       session.Config
	log       zerolog.Logger
	readLimit int64
	sessions  *xsync.MapOf[string, *session.Session]
	wg        conc.WaitGroup
	ctx       context.Context
	cancel    context.CancelFunc
}

// NewSupervisor creates a supervisor sharing act across sessions.
func NewSupervisor(act actuator.Actuator, cfg session.Config, log zerolog.Logger, opts ...Option) *Supervisor {
	ctx, cancel := context.WithCancel(context.Background())
	s := &Supervisor{
		upgrader: websocket.Upgrader{
			ReadBufferSize:  1024,
			WriteBufferSize: 1024,
			CheckOrigin:     func(*http.Request) bool { return true },
		},
		act:       act,
		cfg:       cfg,
		log:       log,
		readLimit: DefaultReadLimit,
		sessions:  xsync.NewMapOf[string, *session.Session](),
		ctx:       ctx,
		cancel:    cancel,
	}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

// ServeHTTP upgrades the connection and hands it to a new session. It returns without waiting
// for the session; the hijacked connection outlives the handler.
func (s *Supervisor) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	if s.isClosed() {
		http.Error(w, "shutting down", http.StatusServiceUnavailable)
		return
	}

	conn, err := s.upgrader.Upgrade(w, r, nil)
	if err != nil {
		s.log.Debug().Err(err).Str("remote", r.RemoteAddr).Msg("websocket upgrade failed")
		return
	}
	conn.SetReadLimit(s.readLimit)
	if tc, ok := conn.NetConn().(*net.TCPConn); ok {
		_ = tc.SetNoDelay(true)
	}

	s.Serve(session.NewWSTransport(conn))
}

// Serve starts a session on a transport whose handshake already completed. It returns nil and
// closes the transport when the supervisor is shutting down.
func (s *Supervisor) Serve(t session.Transport) *session.Session {
	s.mu.RLock()
	defer s.mu.RUnlock()
	if s.closed {
		_ = t.Close()
		return nil
	}

	sess := session.New(t, s.act, s.cfg, s.log)
	s.sessions.Store(sess.ID(), sess)
	s.wg.Go(func() {
		defer s.sessions.Delete(sess.ID())
		_ = sess.Run(s.ctx)
	})
	return sess
}

// Sessions returns the live sessions ordered by open time.
func (s *Supervisor) Sessions() []session.Info {
	out := make([]session.Info, 0, s.sessions.Size())
	s.sessions.Range(func(_ string, sess *session.Session) bool {
		out = append(out, sess.Info())
		return true
	})
	sort.Slice(out, func(i, j int) bool {
		return out[i].Opened.Before(out[j].Opened)
	})
	return out
}

// Shutdown stops accepting sessions, cancels the live ones and waits for their teardown.
func (s *Supervisor) Shutdown(ctx context.Context) error {
	s.mu.Lock()
	if s.closed {
		s.mu.Unlock()
		return nil
	}
	s.closed = true
	s.mu.Unlock()
	s.cancel()

	done := make(chan struct{})
	go func() {
		defer close(done)
		if r := s.wg.WaitAndRecover(); r != nil {
			s.log.Error().Err(r.AsError()).Msg("session panicked")
		}
	}()

	select {
	case <-done:
		return nil
	case <-ctx.Done():
		return ctx.Err()
	}
}

// isClosed reports whether Shutdown has been called.
func (s *Supervisor) isClosed() bool {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.closed
}
