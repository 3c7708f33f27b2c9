package oracletest

import (
	"sync/atomic"
	"time"
)

// ManualClock is a settable engine clock. The machine's only temporal input
// is a Unix-seconds instant compared against close_time, so the clock stores
// whole seconds and hands out whole-second times.
type ManualClock struct {
	sec atomic.Int64
}

// NewManualClock returns a clock parked at 2020-01-01 UTC, far past every
// fixture close_time; tests rewind with SetUnix to reach the deferred path.
func NewManualClock() *ManualClock {
	c := &ManualClock{}
	c.sec.Store(time.Date(2020, 1, 1, 0, 0, 0, 0, time.UTC).Unix())
	return c
}

// Now returns the current time on the clock.
func (c *ManualClock) Now() time.Time {
	return time.Unix(c.sec.Load(), 0).UTC()
}

// SetUnix parks the clock at a Unix-seconds timestamp.
func (c *ManualClock) SetUnix(sec int64) {
	c.sec.Store(sec)
}

// Advance moves the clock forward by sec seconds.
func (c *ManualClock) Advance(sec int64) {
	c.sec.Add(sec)
}
