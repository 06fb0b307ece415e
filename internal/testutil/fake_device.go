// Package testutil provides recording fakes for the pointer pipeline.
package testutil

import (
	"sync"
	"sync/atomic"

	"github.com/frudas24/deskpointer/internal/actuator"
	"github.com/frudas24/deskpointer/internal/input"
)

// Call records a single device or actuator call.
type Call struct {
	Name   string
	DX     int
	DY     int
	Moves  []input.Delta
	Button input.Button
}

// FakeDevice implements actuator.Device and records calls for tests.
type FakeDevice struct {
	mu       sync.Mutex
	Calls    []Call
	MoveErr  error
	ClickErr error
	Closed   bool

	inFlight   atomic.Int32
	Overlapped atomic.Bool
}

// Ensure FakeDevice implements the interface.
var _ actuator.Device = (*FakeDevice)(nil)

// MoveRelative records a relative move.
func (f *FakeDevice) MoveRelative(dx, dy int) error {
	f.enter()
	defer f.inFlight.Add(-1)

	f.mu.Lock()
	defer f.mu.Unlock()
	if f.MoveErr != nil {
		return f.MoveErr
	}
	f.Calls = append(f.Calls, Call{Name: "MoveRelative", DX: dx, DY: dy})
	return nil
}

// PressAndRelease records a click.
func (f *FakeDevice) PressAndRelease(button input.Button) error {
	f.enter()
	defer f.inFlight.Add(-1)

	f.mu.Lock()
	defer f.mu.Unlock()
	if f.ClickErr != nil {
		return f.ClickErr
	}
	f.Calls = append(f.Calls, Call{Name: "PressAndRelease", Button: button})
	return nil
}

// Close marks the device closed.
func (f *FakeDevice) Close() error {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.Closed = true
	return nil
}

// Snapshot returns a copy of the recorded calls.
func (f *FakeDevice) Snapshot() []Call {
	f.mu.Lock()
	defer f.mu.Unlock()
	out := make([]Call, len(f.Calls))
	copy(out, f.Calls)
	return out
}

// enter flags concurrent use of the device.
func (f *FakeDevice) enter() {
	if f.inFlight.Add(1) > 1 {
		f.Overlapped.Store(true)
	}
}
