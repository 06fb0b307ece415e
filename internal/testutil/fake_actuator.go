package testutil

import (
	"sync"

	"github.com/frudas24/deskpointer/internal/actuator"
	"github.com/frudas24/deskpointer/internal/input"
)

// FakeActuator implements actuator.Actuator and records batches and clicks in order.
type FakeActuator struct {
	mu       sync.Mutex
	calls    []Call
	MoveErr  error
	ClickErr error
}

// Ensure FakeActuator implements the interface.
var _ actuator.Actuator = (*FakeActuator)(nil)

// NewFakeActuator returns an empty recorder.
func NewFakeActuator() *FakeActuator {
	return &FakeActuator{}
}

// ApplyMoves records a batch. The slice is copied.
func (f *FakeActuator) ApplyMoves(moves []input.Delta) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	batch := make([]input.Delta, len(moves))
	copy(batch, moves)
	f.calls = append(f.calls, Call{Name: "ApplyMoves", Moves: batch})
	return f.MoveErr
}

// Click records a click.
func (f *FakeActuator) Click(button input.Button) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.calls = append(f.calls, Call{Name: "Click", Button: button})
	return f.ClickErr
}

// Calls returns a copy of the recorded calls.
func (f *FakeActuator) Calls() []Call {
	f.mu.Lock()
	defer f.mu.Unlock()
	out := make([]Call, len(f.calls))
	copy(out, f.calls)
	return out
}

// Deltas returns every recorded delta across all batches.
func (f *FakeActuator) Deltas() []input.Delta {
	f.mu.Lock()
	defer f.mu.Unlock()
	var out []input.Delta
	for _, c := range f.calls {
		out = append(out, c.Moves...)
	}
	return out
}
