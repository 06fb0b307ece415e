// Package actuator owns the host pointer device and serializes every action sent to it.
package actuator

import (
	"errors"
	"fmt"
	"sync"
	"time"

	"github.com/rs/zerolog"

	"github.com/frudas24/deskpointer/internal/input"
)

// ErrClosed is returned after Close.
var ErrClosed = errors.New("actuator closed")

// Device is the host input subsystem. Implementations need not be safe for concurrent use.
type Device interface {
	MoveRelative(dx, dy int) error
	PressAndRelease(button input.Button) error
	Close() error
}

// Actuator applies pointer actions to the host.
type Actuator interface {
	ApplyMoves(moves []input.Delta) error
	Click(button input.Button) error
}

// ActuationError reports a device failure for one operation.
type ActuationError struct {
	Op  string
	Err error
}

// Error implements error.
func (e *ActuationError) Error() string {
	return fmt.Sprintf("actuate %s: %v", e.Op, e.Err)
}

// Unwrap returns the device error.
func (e *ActuationError) Unwrap() error {
	return e.Err
}

// Option configures a Pointer.
type Option func(*Pointer)

// WithStepDelay pauses between consecutive deltas of one batch.
func WithStepDelay(d time.Duration) Option {
	return func(p *Pointer) {
		p.stepDelay = d
	}
}

// WithLogger sets the logger used for device lifecycle messages.
func WithLogger(log zerolog.Logger) Option {
	return func(p *Pointer) {
		p.log = log
	}
}

// Pointer is the process-wide Actuator. Each ApplyMoves or Click runs under one lock,
// so concurrent sessions never interleave inside a unit.
type Pointer struct {
	mu        sync.Mutex
	dev       Device
	closed    bool
	stepDelay time.Duration
	log       zerolog.Logger
	sleep     func(time.Duration)
}

// Ensure Pointer implements Actuator.
var _ Actuator = (*Pointer)(nil)

// New wraps dev. The Pointer takes ownership of the device.
func New(dev Device, opts ...Option) (*Pointer, error) {
	if dev == nil {
		return nil, errors.New("device is required")
	}
	p := &Pointer{
		dev:   dev,
		log:   zerolog.Nop(),
		sleep: time.Sleep,
	}
	for _, opt := range opts {
		opt(p)
	}
	return p, nil
}

// ApplyMoves issues each delta as its own relative move, in order.
// It stops at the first device error; remaining deltas are dropped.
func (p *Pointer) ApplyMoves(moves []input.Delta) error {
	if len(moves) == 0 {
		return nil
	}

	p.mu.Lock()
	defer p.mu.Unlock()
	if p.closed {
		return &ActuationError{Op: "move", Err: ErrClosed}
	}

	for i, d := range moves {
		if i > 0 && p.stepDelay > 0 {
			p.sleep(p.stepDelay)
		}
		if err := p.dev.MoveRelative(int(d.DX), int(d.DY)); err != nil {
			return &ActuationError{Op: "move", Err: err}
		}
	}
	return nil
}

// Click presses and releases button.
func (p *Pointer) Click(button input.Button) error {
	if !button.Valid() {
		return &ActuationError{Op: "click", Err: fmt.Errorf("invalid button %d", uint8(button))}
	}

	p.mu.Lock()
	defer p.mu.Unlock()
	if p.closed {
		return &ActuationError{Op: "click", Err: ErrClosed}
	}
	if err := p.dev.PressAndRelease(button); err != nil {
		return &ActuationError{Op: "click " + button.String(), Err: err}
	}
	return nil
}

// Close releases the device. Later calls fail with ErrClosed.
func (p *Pointer) Close() error {
	p.mu.Lock()
	defer p.mu.Unlock()
	if p.closed {
		return nil
	}
	p.closed = true
	if err := p.dev.Close(); err != nil {
		return fmt.Errorf("close device: %w", err)
	}
	p.log.Debug().Msg("pointer device closed")
	return nil
}
