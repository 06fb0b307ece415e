package webrtc

import (
	"errors"
	"sync"

	"github.com/pion/webrtc/v3"

	"github.com/frudas24/deskpointer/internal/session"
)

// ErrTransportClosed is returned by ReadMessage after a local Close.
var ErrTransportClosed = errors.New("data channel transport closed")

const messageBuffer = 256

type dcMessage struct {
	binary bool
	data   []byte
}

// DataChannelTransport adapts a data channel to session.Transport. Messages are queued by the
// pion callback and consumed by ReadMessage; a full queue blocks the callback.
type DataChannelTransport struct {
	remote  string
	closeFn func() error

	msgs      chan dcMessage
	done      chan struct{}
	closeOnce sync.Once
	mu        sync.Mutex
	closeErr  error
}

var _ session.Transport = (*DataChannelTransport)(nil)

// NewDataChannelTransport wires dc's message and close callbacks. Call it before the channel
// opens so no message is missed.
func NewDataChannelTransport(dc *webrtc.DataChannel, remote string) *DataChannelTransport {
	t := newChannelTransport(remote, dc.Close)
	dc.OnMessage(func(msg webrtc.DataChannelMessage) {
		t.deliver(!msg.IsString, msg.Data)
	})
	dc.OnClose(t.peerClosed)
	dc.OnError(func(err error) {
		t.fail(&session.TransportError{Err: err})
	})
	return t
}

func newChannelTransport(remote string, closeFn func() error) *DataChannelTransport {
	return &DataChannelTransport{
		remote:  remote,
		closeFn: closeFn,
		msgs:    make(chan dcMessage, messageBuffer),
		done:    make(chan struct{}),
	}
}

// ReadMessage returns the next queued message. Messages queued before the channel closed are
// still returned.
func (t *DataChannelTransport) ReadMessage() (bool, []byte, error) {
	select {
	case m := <-t.msgs:
		return m.binary, m.data, nil
	case <-t.done:
		select {
		case m := <-t.msgs:
			return m.binary, m.data, nil
		default:
		}
		t.mu.Lock()
		defer t.mu.Unlock()
		return false, nil, t.closeErr
	}
}

// Close closes the data channel and unblocks ReadMessage.
func (t *DataChannelTransport) Close() error {
	t.fail(&session.TransportError{Err: ErrTransportClosed})
	if t.closeFn == nil {
		return nil
	}
	return t.closeFn()
}

// RemoteAddr returns the signaling peer address.
func (t *DataChannelTransport) RemoteAddr() string {
	return t.remote
}

// Kind returns "datachannel".
func (t *DataChannelTransport) Kind() string {
	return "datachannel"
}

// deliver queues a message unless the transport is already closed.
func (t *DataChannelTransport) deliver(binary bool, data []byte) {
	select {
	case <-t.done:
	case t.msgs <- dcMessage{binary: binary, data: data}:
	}
}

// peerClosed records an orderly close by the remote side.
func (t *DataChannelTransport) peerClosed() {
	t.fail(session.ErrPeerClosed)
}

// fail records the first close cause and releases readers.
func (t *DataChannelTransport) fail(err error) {
	t.closeOnce.Do(func() {
		t.mu.Lock()
		t.closeErr = err
		t.mu.Unlock()
		close(t.done)
	})
}
