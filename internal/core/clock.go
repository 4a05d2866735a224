package core

import (
	"sync"
	"time"

	"github.com/oklog/ulid/v2"
)

// Clock supplies the current time.
type Clock interface {
	Now() time.Time
}

// SystemClock reads the wall clock.
type SystemClock struct{}

func (SystemClock) Now() time.Time { return time.Now() }

// FixedClock returns a settable instant.
type FixedClock struct {
	mu  sync.Mutex
	now time.Time
}

func NewFixedClock(now time.Time) *FixedClock {
	return &FixedClock{now: now}
}

func (c *FixedClock) Now() time.Time {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.now
}

func (c *FixedClock) Set(now time.Time) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.now = now
}

// Today returns the calendar day of c.Now() in UTC.
func Today(c Clock) Date {
	return DateOf(c.Now().UTC())
}

// IDGenerator allocates identifiers for templates and transactions.
type IDGenerator interface {
	NewID() string
}

// ULIDGenerator produces monotonic ULIDs, safe to call in a tight loop.
type ULIDGenerator struct{}

func (ULIDGenerator) NewID() string {
	return ulid.Make().String()
}
