// Package input defines the pointer events exchanged between the wire protocol and the host.
package input

import "fmt"

// Button identifies a mouse button.
type Button uint8

const (
	// ButtonLeft is the primary button.
	ButtonLeft Button = iota + 1
	// ButtonMiddle is the wheel button.
	ButtonMiddle
	// ButtonRight is the secondary button.
	ButtonRight
)

// Valid reports whether b is one of the known buttons.
func (b Button) Valid() bool {
	return b == ButtonLeft || b == ButtonMiddle || b == ButtonRight
}

// String returns the lowercase button name.
func (b Button) String() string {
	switch b {
	case ButtonLeft:
		return "left"
	case ButtonMiddle:
		return "middle"
	case ButtonRight:
		return "right"
	default:
		return fmt.Sprintf("button(%d)", uint8(b))
	}
}

// Delta is one relative cursor displacement.
type Delta struct {
	DX int32
	DY int32
}

// Event is a decoded pointer event. It is either a Move or a Click.
type Event interface {
	event()
}

// Move displaces the cursor relative to its current position.
type Move struct {
	DX int32
	DY int32
}

// Click presses and releases a button.
type Click struct {
	Button Button
}

func (Move) event()  {}
func (Click) event() {}

// Delta returns the displacement carried by the move.
func (m Move) Delta() Delta {
	return Delta{DX: m.DX, DY: m.DY}
}
