// Package signaling negotiates WebRTC peers over a websocket and hands their pointer data
// channels to the session supervisor.
package signaling

import (
	"errors"
	"fmt"
	"net/http"
	"sync"

	"github.com/gorilla/websocket"
	"github.com/pion/webrtc/v3"
	"github.com/rs/zerolog"

	"github.com/frudas24/deskpointer/internal/session"
	rtc "github.com/frudas24/deskpointer/internal/webrtc"
)

// ErrEmptyOffer is returned for an offer without SDP.
var ErrEmptyOffer = errors.New("empty offer")

// SessionStarter runs a session on an open transport.
type SessionStarter interface {
	Serve(t session.Transport) *session.Session
}

// Server handles WebRTC signaling over WebSocket. Each signaling connection owns one peer; the
// peer is closed when the signaling socket ends.
type Server struct {
	upgrader websocket.Upgrader
	peers    *rtc.PeerFactory
	sessions SessionStarter
	log      zerolog.Logger
}

// NewServer creates a signaling server.
func NewServer(peers *rtc.PeerFactory, sessions SessionStarter, log zerolog.Logger) *Server {
	return &Server{
		peers:    peers,
		sessions: sessions,
		log:      log,
		upgrader: websocket.Upgrader{
			ReadBufferSize:  4096,
			WriteBufferSize: 4096,
			CheckOrigin:     func(*http.Request) bool { return true },
		},
	}
}

// signalConn is one signaling socket and its peer.
type signalConn struct {
	writeMu sync.Mutex
	conn    *websocket.Conn
	peer    *webrtc.PeerConnection
	log     zerolog.Logger
}

// ServeHTTP upgrades the request and runs the signaling loop until the socket closes.
func (s *Server) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	conn, err := s.upgrader.Upgrade(w, r, nil)
	if err != nil {
		s.log.Debug().Err(err).Str("remote", r.RemoteAddr).Msg("signaling upgrade failed")
		return
	}
	defer conn.Close()

	peer, err := s.peers.NewPeer()
	if err != nil {
		s.log.Error().Err(err).Msg("create peer")
		return
	}
	defer peer.Close()

	sc := &signalConn{
		conn: conn,
		peer: peer,
		log:  s.log.With().Str("remote", r.RemoteAddr).Logger(),
	}

	peer.OnICECandidate(func(c *webrtc.ICECandidate) {
		if c == nil {
			return
		}
		candidate := c.ToJSON()
		_ = sc.send(Message{T: TypeICE, Candidate: &candidate})
	})
	peer.OnConnectionStateChange(func(state webrtc.PeerConnectionState) {
		sc.log.Debug().Stringer("state", state).Msg("peer connection state")
	})
	peer.OnDataChannel(func(dc *webrtc.DataChannel) {
		s.attachChannel(sc, dc, r.RemoteAddr)
	})

	for {
		var msg Message
		if err := conn.ReadJSON(&msg); err != nil {
			return
		}
		if err := sc.handleMessage(msg); err != nil {
			sc.log.Warn().Err(err).Str("type", msg.T).Msg("signaling failed")
			_ = sc.send(Message{T: TypeError, Error: err.Error()})
			return
		}
	}
}

// attachChannel starts a session once the pointer channel opens. Other labels are closed.
func (s *Server) attachChannel(sc *signalConn, dc *webrtc.DataChannel, remote string) {
	if dc.Label() != rtc.PointerLabel {
		sc.log.Warn().Str("label", dc.Label()).Msg("closing unexpected data channel")
		_ = dc.Close()
		return
	}
	tr := rtc.NewDataChannelTransport(dc, remote)
	dc.OnOpen(func() {
		if s.sessions.Serve(tr) == nil {
			sc.log.Warn().Msg("session refused")
		}
	})
}

// handleMessage dispatches signaling messages. Unknown types are ignored.
func (sc *signalConn) handleMessage(msg Message) error {
	switch msg.T {
	case TypeOffer:
		return sc.handleOffer(msg.SDP)
	case TypeICE:
		return sc.handleICE(msg.Candidate)
	default:
		return nil
	}
}

// handleOffer processes an SDP offer and replies with an answer.
func (sc *signalConn) handleOffer(sdp string) error {
	if sdp == "" {
		return ErrEmptyOffer
	}
	if err := sc.peer.SetRemoteDescription(webrtc.SessionDescription{
		Type: webrtc.SDPTypeOffer,
		SDP:  sdp,
	}); err != nil {
		return fmt.Errorf("set remote description: %w", err)
	}
	answer, err := sc.peer.CreateAnswer(nil)
	if err != nil {
		return fmt.Errorf("create answer: %w", err)
	}
	gatherComplete := webrtc.GatheringCompletePromise(sc.peer)
	if err := sc.peer.SetLocalDescription(answer); err != nil {
		return fmt.Errorf("set local description: %w", err)
	}
	<-gatherComplete
	local := sc.peer.LocalDescription()
	if local == nil {
		return fmt.Errorf("missing local description")
	}
	return sc.send(Message{T: TypeAnswer, SDP: local.SDP})
}

// handleICE adds a remote ICE candidate.
func (sc *signalConn) handleICE(candidate *webrtc.ICECandidateInit) error {
	if candidate == nil {
		return nil
	}
	return sc.peer.AddICECandidate(*candidate)
}

// send writes a message; writes from pion callbacks and the read loop are serialized.
func (sc *signalConn) send(msg Message) error {
	sc.writeMu.Lock()
	defer sc.writeMu.Unlock()
	return sc.conn.WriteJSON(msg)
}
