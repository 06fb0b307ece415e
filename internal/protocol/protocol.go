// Package protocol decodes and encodes the binary pointer frames sent by the web client.
//
// Every transport message carries exactly one frame:
//
//	0x01 dx:int32le dy:int32le   relative move (9 bytes)
//	0x03 button:uint8            click, 1=left 2=middle 3=right (2 bytes)
package protocol

import (
	"encoding/binary"
	"errors"
	"fmt"

	"github.com/frudas24/deskpointer/internal/input"
)

const (
	// TagMove marks a relative move frame.
	TagMove byte = 0x01
	// TagClick marks a click frame.
	TagClick byte = 0x03

	// MoveFrameLen is the exact length of a move frame.
	MoveFrameLen = 9
	// ClickFrameLen is the exact length of a click frame.
	ClickFrameLen = 2
)

// ErrMalformed is matched by every decode failure.
var ErrMalformed = errors.New("malformed frame")

// MalformedError describes why a frame was rejected.
type MalformedError struct {
	Tag    byte
	Length int
	Reason string
}

// Error implements error.
func (e *MalformedError) Error() string {
	return fmt.Sprintf("malformed frame (tag 0x%02x, %d bytes): %s", e.Tag, e.Length, e.Reason)
}

// Is lets errors.Is match ErrMalformed.
func (e *MalformedError) Is(target error) bool {
	return target == ErrMalformed
}

// Decode parses one complete frame. An empty frame yields a nil event and a nil error.
func Decode(data []byte) (input.Event, error) {
	if len(data) == 0 {
		return nil, nil
	}

	tag := data[0]
	switch tag {
	case TagMove:
		if len(data) != MoveFrameLen {
			return nil, malformed(data, "move frame must be 9 bytes")
		}
		return input.Move{
			DX: int32(binary.LittleEndian.Uint32(data[1:5])),
			DY: int32(binary.LittleEndian.Uint32(data[5:9])),
		}, nil
	case TagClick:
		if len(data) != ClickFrameLen {
			return nil, malformed(data, "click frame must be 2 bytes")
		}
		button := input.Button(data[1])
		if !button.Valid() {
			return nil, malformed(data, fmt.Sprintf("unknown button code %d", data[1]))
		}
		return input.Click{Button: button}, nil
	default:
		return nil, malformed(data, "unknown tag")
	}
}

// Encode returns the wire bytes for an event.
func Encode(ev input.Event) ([]byte, error) {
	switch e := ev.(type) {
	case input.Move:
		return AppendMove(make([]byte, 0, MoveFrameLen), e.DX, e.DY), nil
	case input.Click:
		if !e.Button.Valid() {
			return nil, fmt.Errorf("encode click: invalid button %d", uint8(e.Button))
		}
		return []byte{TagClick, byte(e.Button)}, nil
	default:
		return nil, fmt.Errorf("encode: unsupported event %T", ev)
	}
}

// AppendMove appends a move frame to dst.
func AppendMove(dst []byte, dx, dy int32) []byte {
	dst = append(dst, TagMove)
	dst = binary.LittleEndian.AppendUint32(dst, uint32(dx))
	return binary.LittleEndian.AppendUint32(dst, uint32(dy))
}

// malformed builds a MalformedError for the given frame.
func malformed(data []byte, reason string) *MalformedError {
	return &MalformedError{Tag: data[0], Length: len(data), Reason: reason}
}
