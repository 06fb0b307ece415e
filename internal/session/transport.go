// Package session runs the pointer protocol for one client connection.
package session

import (
	"errors"
	"fmt"
	"net"
	"time"

	"github.com/gorilla/websocket"
)

// ErrPeerClosed reports an orderly close initiated by the client.
var ErrPeerClosed = errors.New("peer closed the connection")

// Transport delivers whole protocol messages. ReadMessage is only called from one goroutine;
// Close may be called concurrently and must unblock a pending ReadMessage.
type Transport interface {
	ReadMessage() (binary bool, data []byte, err error)
	Close() error
	RemoteAddr() string
	Kind() string
}

// TransportError is a fatal read failure.
type TransportError struct {
	Err error
}

// Error implements error.
func (e *TransportError) Error() string {
	return fmt.Sprintf("transport: %v", e.Err)
}

// Unwrap returns the underlying error.
func (e *TransportError) Unwrap() error {
	return e.Err
}

const closeWriteTimeout = time.Second

// WSTransport adapts a gorilla websocket connection.
type WSTransport struct {
	conn *websocket.Conn
}

// NewWSTransport wraps an upgraded connection.
func NewWSTransport(conn *websocket.Conn) *WSTransport {
	return &WSTransport{conn: conn}
}

// ReadMessage returns the next message. Normal close frames map to ErrPeerClosed.
func (t *WSTransport) ReadMessage() (bool, []byte, error) {
	mt, data, err := t.conn.ReadMessage()
	if err != nil {
		if websocket.IsCloseError(err, websocket.CloseNormalClosure, websocket.CloseGoingAway, websocket.CloseNoStatusReceived) {
			return false, nil, ErrPeerClosed
		}
		return false, nil, &TransportError{Err: err}
	}
	return mt == websocket.BinaryMessage, data, nil
}

// Close sends a close frame and closes the socket.
func (t *WSTransport) Close() error {
	msg := websocket.FormatCloseMessage(websocket.CloseNormalClosure, "")
	_ = t.conn.WriteControl(websocket.CloseMessage, msg, time.Now().Add(closeWriteTimeout))
	err := t.conn.Close()
	if errors.Is(err, net.ErrClosed) {
		return nil
	}
	return err
}

// RemoteAddr returns the peer address.
func (t *WSTransport) RemoteAddr() string {
	return t.conn.RemoteAddr().String()
}

// Kind returns "websocket".
func (t *WSTransport) Kind() string {
	return "websocket"
}
