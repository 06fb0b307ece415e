package hostinput

import (
	"fmt"
	"sync"

	"github.com/bendahl/uinput"
	"github.com/rs/zerolog"

	"github.com/frudas24/deskpointer/internal/actuator"
	"github.com/frudas24/deskpointer/internal/input"
)

const (
	uinputPath = "/dev/uinput"
	uinputName = "deskpointer-mouse"
)

// uinputDevice is a kernel virtual mouse. It needs write access to /dev/uinput.
type uinputDevice struct {
	mu     sync.Mutex
	mouse  uinput.Mouse
	closed bool
}

func openUinput(log zerolog.Logger) (actuator.Device, error) {
	mouse, err := uinput.CreateMouse(uinputPath, []byte(uinputName))
	if err != nil {
		return nil, fmt.Errorf("create virtual mouse: %w", err)
	}
	log.Debug().Str("path", uinputPath).Msg("uinput mouse created")
	return &uinputDevice{mouse: mouse}, nil
}

// MoveRelative moves the cursor by (dx, dy).
func (d *uinputDevice) MoveRelative(dx, dy int) error {
	d.mu.Lock()
	defer d.mu.Unlock()
	if d.closed {
		return actuator.ErrClosed
	}
	return d.mouse.Move(int32(dx), int32(dy))
}

// PressAndRelease clicks button.
func (d *uinputDevice) PressAndRelease(button input.Button) error {
	d.mu.Lock()
	defer d.mu.Unlock()
	if d.closed {
		return actuator.ErrClosed
	}
	return uinputClick(d.mouse, button)
}

// uinputClick presses and releases button on mouse.
func uinputClick(mouse uinput.Mouse, button input.Button) error {
	switch button {
	case input.ButtonLeft:
		return mouse.LeftClick()
	case input.ButtonMiddle:
		return mouse.MiddleClick()
	case input.ButtonRight:
		return mouse.RightClick()
	default:
		return fmt.Errorf("uinput: unsupported %s", button)
	}
}

// Close destroys the virtual mouse.
func (d *uinputDevice) Close() error {
	d.mu.Lock()
	defer d.mu.Unlock()
	if d.closed {
		return nil
	}
	d.closed = true
	return d.mouse.Close()
}
