package coalesce

import (
	"errors"
	"testing"
	"time"

	"github.com/stretchr/testify/require"

	"github.com/frudas24/deskpointer/internal/input"
	"github.com/frudas24/deskpointer/internal/testutil"
)

// newTestCoalescer returns a coalescer on a controllable clock.
func newTestCoalescer(size int, interval time.Duration) (*Coalescer, *testutil.FakeActuator, *time.Time) {
	act := testutil.NewFakeActuator()
	c := New(Config{MaxBatchSize: size, MaxBatchInterval: interval}, act)
	now := time.Unix(1000, 0)
	c.SetNowFunc(func() time.Time { return now })
	return c, act, &now
}

// TestMove_BelowThresholdsBuffers verifies moves below both thresholds stay buffered.
func TestMove_BelowThresholdsBuffers(t *testing.T) {
	c, act, _ := newTestCoalescer(32, 100*time.Millisecond)

	for i := 0; i < 5; i++ {
		require.NoError(t, c.Move(input.Move{DX: 1, DY: 2}))
	}
	require.Equal(t, 5, c.Pending())
	require.Empty(t, act.Calls())
}

// TestMove_SizeThresholdFlushes verifies the batch flushes when full.
func TestMove_SizeThresholdFlushes(t *testing.T) {
	c, act, _ := newTestCoalescer(3, time.Hour)

	for i := int32(0); i < 7; i++ {
		require.NoError(t, c.Move(input.Move{DX: i}))
	}

	calls := act.Calls()
	require.Len(t, calls, 2)
	require.Equal(t, []input.Delta{{DX: 0}, {DX: 1}, {DX: 2}}, calls[0].Moves)
	require.Equal(t, []input.Delta{{DX: 3}, {DX: 4}, {DX: 5}}, calls[1].Moves)
	require.Equal(t, 1, c.Pending())
}

// TestMove_IntervalThresholdFlushes verifies a late move flushes the whole window.
func TestMove_IntervalThresholdFlushes(t *testing.T) {
	c, act, now := newTestCoalescer(32, 8*time.Millisecond)

	require.NoError(t, c.Move(input.Move{DX: 1}))
	*now = now.Add(4 * time.Millisecond)
	require.NoError(t, c.Move(input.Move{DX: 2}))
	require.Empty(t, act.Calls())

	*now = now.Add(4 * time.Millisecond)
	require.NoError(t, c.Move(input.Move{DX: 3}))

	calls := act.Calls()
	require.Len(t, calls, 1)
	require.Equal(t, []input.Delta{{DX: 1}, {DX: 2}, {DX: 3}}, calls[0].Moves)
	require.Zero(t, c.Pending())
}

// TestMove_WindowOpensAtFirstBufferedMove verifies an idle gap does not shorten the next window.
func TestMove_WindowOpensAtFirstBufferedMove(t *testing.T) {
	c, act, now := newTestCoalescer(32, 10*time.Millisecond)

	*now = now.Add(time.Minute)
	require.NoError(t, c.Move(input.Move{DX: 1}))
	require.NoError(t, c.Move(input.Move{DX: 1}))
	require.Empty(t, act.Calls())
}

// TestClick_FlushesBeforeClick verifies buffered motion precedes a later click.
func TestClick_FlushesBeforeClick(t *testing.T) {
	c, act, _ := newTestCoalescer(32, 100*time.Millisecond)

	for i := 0; i < 5; i++ {
		require.NoError(t, c.Move(input.Move{DX: 1, DY: 2}))
	}
	require.NoError(t, c.Click(input.Click{Button: input.ButtonLeft}))

	calls := act.Calls()
	require.Len(t, calls, 2)
	require.Equal(t, "ApplyMoves", calls[0].Name)
	require.Len(t, calls[0].Moves, 5)
	for _, d := range calls[0].Moves {
		require.Equal(t, input.Delta{DX: 1, DY: 2}, d)
	}
	require.Equal(t, "Click", calls[1].Name)
	require.Equal(t, input.ButtonLeft, calls[1].Button)
}

// TestClick_WithoutMotion verifies a click with an empty batch issues only the click.
func TestClick_WithoutMotion(t *testing.T) {
	c, act, _ := newTestCoalescer(32, 100*time.Millisecond)

	require.NoError(t, c.Click(input.Click{Button: input.ButtonMiddle}))
	calls := act.Calls()
	require.Len(t, calls, 1)
	require.Equal(t, "Click", calls[0].Name)
}

// TestClick_StillClicksWhenFlushFails verifies a failed flush does not swallow the click.
func TestClick_StillClicksWhenFlushFails(t *testing.T) {
	c, act, _ := newTestCoalescer(32, 100*time.Millisecond)
	boom := errors.New("denied")
	act.MoveErr = boom

	require.NoError(t, c.Move(input.Move{DX: 1}))
	err := c.Click(input.Click{Button: input.ButtonLeft})
	require.ErrorIs(t, err, boom)

	calls := act.Calls()
	require.Len(t, calls, 2)
	require.Equal(t, "Click", calls[1].Name)
	require.Zero(t, c.Pending())
}

// TestFlush_EmptyIsNoop verifies flushing nothing never calls the actuator.
func TestFlush_EmptyIsNoop(t *testing.T) {
	c, act, _ := newTestCoalescer(32, 100*time.Millisecond)

	require.NoError(t, c.Flush())
	require.NoError(t, c.Flush())
	require.NoError(t, c.FlushIfDue())
	require.Empty(t, act.Calls())
}

// TestFlush_DrainsOnFailure verifies a failed batch is not replayed.
func TestFlush_DrainsOnFailure(t *testing.T) {
	c, act, _ := newTestCoalescer(32, 100*time.Millisecond)
	act.MoveErr = errors.New("device gone")

	require.NoError(t, c.Move(input.Move{DX: 1}))
	require.Error(t, c.Flush())
	require.Zero(t, c.Pending())

	act.MoveErr = nil
	require.NoError(t, c.Flush())
	require.Len(t, act.Calls(), 1)
}

// TestFlushIfDue_RespectsDeadline verifies the timer path only flushes after the interval.
func TestFlushIfDue_RespectsDeadline(t *testing.T) {
	c, act, now := newTestCoalescer(32, 8*time.Millisecond)

	_, ok := c.Deadline()
	require.False(t, ok)

	require.NoError(t, c.Move(input.Move{DX: 5}))
	deadline, ok := c.Deadline()
	require.True(t, ok)
	require.Equal(t, now.Add(8*time.Millisecond), deadline)

	*now = now.Add(7 * time.Millisecond)
	require.NoError(t, c.FlushIfDue())
	require.Empty(t, act.Calls())

	*now = now.Add(time.Millisecond)
	require.NoError(t, c.FlushIfDue())
	require.Len(t, act.Calls(), 1)
	require.Equal(t, *now, c.LastFlush())
}

// TestHandle_CountsStats verifies Handle routes events and tracks counters.
func TestHandle_CountsStats(t *testing.T) {
	c, _, _ := newTestCoalescer(2, time.Hour)

	require.NoError(t, c.Handle(input.Move{DX: 1}))
	require.NoError(t, c.Handle(input.Move{DX: 1}))
	require.NoError(t, c.Handle(input.Move{DX: 1}))
	require.NoError(t, c.Handle(input.Click{Button: input.ButtonLeft}))

	require.Equal(t, Stats{Moves: 3, Batches: 2, Clicks: 1}, c.Stats())
}

// TestConfig_Validate verifies invalid thresholds are rejected.
func TestConfig_Validate(t *testing.T) {
	require.NoError(t, DefaultConfig().Validate())
	require.Error(t, Config{MaxBatchSize: 0, MaxBatchInterval: time.Millisecond}.Validate())
	require.Error(t, Config{MaxBatchSize: 1, MaxBatchInterval: 0}.Validate())
}
