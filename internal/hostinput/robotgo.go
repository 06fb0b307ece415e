//go:build cgo && !norobotgo

package hostinput

import (
	"fmt"
	"sync"

	"github.com/go-vgo/robotgo"
	"github.com/rs/zerolog"

	"github.com/frudas24/deskpointer/internal/actuator"
	"github.com/frudas24/deskpointer/internal/input"
)

// robotgoDevice drives the pointer through robotgo.
type robotgoDevice struct {
	mu     sync.Mutex
	closed bool
}

func openRobotgo(log zerolog.Logger) (actuator.Device, error) {
	w, h := robotgo.GetScreenSize()
	if w <= 0 || h <= 0 {
		return nil, fmt.Errorf("robotgo: no display (%dx%d)", w, h)
	}
	log.Debug().Int("width", w).Int("height", h).Msg("robotgo display")
	return &robotgoDevice{}, nil
}

// MoveRelative moves the cursor by (dx, dy).
func (d *robotgoDevice) MoveRelative(dx, dy int) error {
	d.mu.Lock()
	defer d.mu.Unlock()
	if d.closed {
		return actuator.ErrClosed
	}
	robotgo.MoveRelative(dx, dy)
	return nil
}

// PressAndRelease clicks button.
func (d *robotgoDevice) PressAndRelease(button input.Button) error {
	d.mu.Lock()
	defer d.mu.Unlock()
	if d.closed {
		return actuator.ErrClosed
	}
	name, err := robotgoButton(button)
	if err != nil {
		return err
	}
	if err := robotgo.MouseDown(name); err != nil {
		return fmt.Errorf("press %s: %w", name, err)
	}
	if err := robotgo.MouseUp(name); err != nil {
		return fmt.Errorf("release %s: %w", name, err)
	}
	return nil
}

// Close marks the device closed.
func (d *robotgoDevice) Close() error {
	d.mu.Lock()
	defer d.mu.Unlock()
	d.closed = true
	return nil
}
