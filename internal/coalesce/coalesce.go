// Package coalesce batches consecutive pointer moves before they reach the actuator.
package coalesce

import (
	"errors"
	"fmt"
	"time"

	"github.com/frudas24/deskpointer/internal/actuator"
	"github.com/frudas24/deskpointer/internal/input"
)

const (
	// DefaultMaxBatchSize flushes after this many buffered moves.
	DefaultMaxBatchSize = 32
	// DefaultMaxBatchInterval bounds how long a move may wait in the buffer (~125 Hz).
	DefaultMaxBatchInterval = 8 * time.Millisecond
)

// Config holds the flush thresholds.
type Config struct {
	MaxBatchSize     int
	MaxBatchInterval time.Duration
}

// DefaultConfig returns the default thresholds.
func DefaultConfig() Config {
	return Config{
		MaxBatchSize:     DefaultMaxBatchSize,
		MaxBatchInterval: DefaultMaxBatchInterval,
	}
}

// Validate reports invalid thresholds.
func (c Config) Validate() error {
	if c.MaxBatchSize < 1 {
		return fmt.Errorf("max batch size must be >= 1, got %d", c.MaxBatchSize)
	}
	if c.MaxBatchInterval <= 0 {
		return fmt.Errorf("max batch interval must be > 0, got %s", c.MaxBatchInterval)
	}
	return nil
}

// Stats counts what the coalescer has sent to the actuator.
type Stats struct {
	Moves   int
	Batches int
	Clicks  int
}

// Coalescer buffers moves for one session. It is not safe for concurrent use.
//
// A batch is flushed when it reaches MaxBatchSize or when MaxBatchInterval has passed since
// its first move was buffered, and always before a click. The actuator must not retain the
// slice passed to ApplyMoves.
type Coalescer struct {
	cfg         Config
	act         actuator.Actuator
	batch       []input.Delta
	windowStart time.Time
	lastFlush   time.Time
	stats       Stats
	now         func() time.Time
}

// New returns a coalescer feeding act.
func New(cfg Config, act actuator.Actuator) *Coalescer {
	return &Coalescer{
		cfg:   cfg,
		act:   act,
		batch: make([]input.Delta, 0, cfg.MaxBatchSize),
		now:   time.Now,
	}
}

// SetNowFunc overrides the clock used for the time threshold.
func (c *Coalescer) SetNowFunc(fn func() time.Time) {
	if fn != nil {
		c.now = fn
	}
}

// Handle routes a decoded event.
func (c *Coalescer) Handle(ev input.Event) error {
	switch e := ev.(type) {
	case input.Move:
		return c.Move(e)
	case input.Click:
		return c.Click(e)
	default:
		return fmt.Errorf("unsupported event %T", ev)
	}
}

// Move buffers m and flushes if a threshold is reached.
func (c *Coalescer) Move(m input.Move) error {
	now := c.now()
	if len(c.batch) == 0 {
		c.windowStart = now
	}
	c.batch = append(c.batch, m.Delta())

	if len(c.batch) >= c.cfg.MaxBatchSize || now.Sub(c.windowStart) >= c.cfg.MaxBatchInterval {
		return c.Flush()
	}
	return nil
}

// Click flushes pending motion and then clicks. The click is issued even if the flush failed.
func (c *Coalescer) Click(cl input.Click) error {
	flushErr := c.Flush()
	c.stats.Clicks++
	return errors.Join(flushErr, c.act.Click(cl.Button))
}

// Flush drains the batch into one ApplyMoves call. An empty batch is a no-op.
// The batch is drained even when the actuator fails.
func (c *Coalescer) Flush() error {
	if len(c.batch) == 0 {
		return nil
	}
	err := c.act.ApplyMoves(c.batch)
	c.stats.Moves += len(c.batch)
	c.stats.Batches++
	c.batch = c.batch[:0]
	c.lastFlush = c.now()
	return err
}

// FlushIfDue flushes when the time threshold has passed.
func (c *Coalescer) FlushIfDue() error {
	deadline, ok := c.Deadline()
	if !ok || c.now().Before(deadline) {
		return nil
	}
	return c.Flush()
}

// Deadline returns when the pending batch must be flushed. ok is false when nothing is buffered.
func (c *Coalescer) Deadline() (time.Time, bool) {
	if len(c.batch) == 0 {
		return time.Time{}, false
	}
	return c.windowStart.Add(c.cfg.MaxBatchInterval), true
}

// Pending returns the number of buffered moves.
func (c *Coalescer) Pending() int {
	return len(c.batch)
}

// LastFlush returns when the last non-empty flush happened.
func (c *Coalescer) LastFlush() time.Time {
	return c.lastFlush
}

// Stats returns the running counters.
func (c *Coalescer) Stats() Stats {
	return c.stats
}
