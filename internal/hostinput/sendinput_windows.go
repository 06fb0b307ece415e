package hostinput

import (
	"fmt"
	"sync"
	"unsafe"

	"github.com/lxn/win"
	"github.com/rs/zerolog"

	"github.com/frudas24/deskpointer/internal/actuator"
	"github.com/frudas24/deskpointer/internal/input"
)

// sendInputDevice injects mouse input with the WinAPI SendInput call.
type sendInputDevice struct {
	mu     sync.Mutex
	closed bool
}

func openSendInput(log zerolog.Logger) (actuator.Device, error) {
	log.Debug().Msg("using SendInput")
	return &sendInputDevice{}, nil
}

// MoveRelative moves the cursor by (dx, dy) mickeys.
func (d *sendInputDevice) MoveRelative(dx, dy int) error {
	d.mu.Lock()
	defer d.mu.Unlock()
	if d.closed {
		return actuator.ErrClosed
	}
	return sendMouseInput(win.MOUSEEVENTF_MOVE, int32(dx), int32(dy))
}

// PressAndRelease clicks button.
func (d *sendInputDevice) PressAndRelease(button input.Button) error {
	d.mu.Lock()
	defer d.mu.Unlock()
	if d.closed {
		return actuator.ErrClosed
	}

	down, up, err := sendInputFlags(button)
	if err != nil {
		return err
	}
	if err := sendMouseInput(down, 0, 0); err != nil {
		return err
	}
	return sendMouseInput(up, 0, 0)
}

// sendInputFlags returns the press and release flags for button.
func sendInputFlags(button input.Button) (down, up uint32, err error) {
	switch button {
	case input.ButtonLeft:
		return win.MOUSEEVENTF_LEFTDOWN, win.MOUSEEVENTF_LEFTUP, nil
	case input.ButtonMiddle:
		return win.MOUSEEVENTF_MIDDLEDOWN, win.MOUSEEVENTF_MIDDLEUP, nil
	case input.ButtonRight:
		return win.MOUSEEVENTF_RIGHTDOWN, win.MOUSEEVENTF_RIGHTUP, nil
	default:
		return 0, 0, fmt.Errorf("sendinput: unsupported %s", button)
	}
}

// Close marks the device closed.
func (d *sendInputDevice) Close() error {
	d.mu.Lock()
	defer d.mu.Unlock()
	d.closed = true
	return nil
}

// sendMouseInput dispatches a single mouse input event.
func sendMouseInput(flags uint32, dx, dy int32) error {
	in := win.MOUSE_INPUT{
		Type: win.INPUT_MOUSE,
		Mi: win.MOUSEINPUT{
			Dx:      dx,
			Dy:      dy,
			DwFlags: flags,
		},
	}
	if win.SendInput(1, unsafe.Pointer(&in), int32(unsafe.Sizeof(in))) != 1 {
		return fmt.Errorf("SendInput failed: error %d", win.GetLastError())
	}
	return nil
}
