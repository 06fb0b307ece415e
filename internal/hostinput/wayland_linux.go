package hostinput

import (
	"context"
	"errors"
	"fmt"
	"sync"
	"time"

	"github.com/bnema/wayland-virtual-input-go/virtual_pointer"
	"github.com/rs/zerolog"

	"github.com/frudas24/deskpointer/internal/actuator"
	"github.com/frudas24/deskpointer/internal/input"
)

// waylandDevice uses zwlr_virtual_pointer_v1. It works on wlroots compositors without root.
type waylandDevice struct {
	mu      sync.Mutex
	manager *virtual_pointer.VirtualPointerManager
	pointer *virtual_pointer.VirtualPointer
	closed  bool
}

func openWayland(log zerolog.Logger) (actuator.Device, error) {
	manager, err := virtual_pointer.NewVirtualPointerManager(context.Background())
	if err != nil {
		return nil, fmt.Errorf("create virtual pointer manager: %w", err)
	}
	pointer, err := manager.CreatePointer()
	if err != nil {
		manager.Close()
		return nil, fmt.Errorf("create virtual pointer: %w", err)
	}
	log.Debug().Msg("wayland virtual pointer created")
	return &waylandDevice{manager: manager, pointer: pointer}, nil
}

// MoveRelative moves the cursor by (dx, dy).
func (d *waylandDevice) MoveRelative(dx, dy int) error {
	d.mu.Lock()
	defer d.mu.Unlock()
	if d.closed {
		return actuator.ErrClosed
	}
	return d.pointer.MoveRelative(float64(dx), float64(dy))
}

// PressAndRelease clicks button. Each state change is committed with its own frame.
func (d *waylandDevice) PressAndRelease(button input.Button) error {
	d.mu.Lock()
	defer d.mu.Unlock()
	if d.closed {
		return actuator.ErrClosed
	}

	btn, err := waylandButton(button)
	if err != nil {
		return err
	}

	if err := d.pointer.Button(time.Now(), btn, virtual_pointer.ButtonStatePressed); err != nil {
		return fmt.Errorf("press %s: %w", button, err)
	}
	if err := d.pointer.Frame(); err != nil {
		return fmt.Errorf("press %s: %w", button, err)
	}
	if err := d.pointer.Button(time.Now(), btn, virtual_pointer.ButtonStateReleased); err != nil {
		return fmt.Errorf("release %s: %w", button, err)
	}
	if err := d.pointer.Frame(); err != nil {
		return fmt.Errorf("release %s: %w", button, err)
	}
	return nil
}

// waylandButton returns the evdev code for button.
func waylandButton(button input.Button) (uint32, error) {
	switch button {
	case input.ButtonLeft:
		return virtual_pointer.BTN_LEFT, nil
	case input.ButtonMiddle:
		return virtual_pointer.BTN_MIDDLE, nil
	case input.ButtonRight:
		return virtual_pointer.BTN_RIGHT, nil
	default:
		return 0, fmt.Errorf("wayland: unsupported %s", button)
	}
}

// Close releases the pointer and its manager.
func (d *waylandDevice) Close() error {
	d.mu.Lock()
	defer d.mu.Unlock()
	if d.closed {
		return nil
	}
	d.closed = true

	var errs []error
	if err := d.pointer.Close(); err != nil {
		errs = append(errs, fmt.Errorf("close pointer: %w", err))
	}
	if err := d.manager.Close(); err != nil {
		errs = append(errs, fmt.Errorf("close pointer manager: %w", err))
	}
	return errors.Join(errs...)
}
