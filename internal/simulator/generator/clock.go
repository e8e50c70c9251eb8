package generator

import (
	"sync"
	"time"

	"github.com/brianvoe/gofakeit/v7"
)

// Default bounds of a single clock advance
const (
	DefaultMinStep = 10 * time.Second
	DefaultMaxStep = 300 * time.Second
)

// Clock is the simulated event clock owned by a Generator.
// Advance is atomic, so timestamps stay strictly increasing when the
// generator is shared between goroutines.
type Clock struct {
	mu      sync.Mutex
	current time.Time
	step    func() time.Duration
}

// NewClock creates a clock starting at start. step must return positive durations.
func NewClock(start time.Time, step func() time.Duration) *Clock {
	return &Clock{current: start, step: step}
}

// UniformStep draws a step uniformly from [min, max]
func UniformStep(faker *gofakeit.Faker, min, max time.Duration) func() time.Duration {
	return func() time.Duration {
		seconds := faker.Float64Range(min.Seconds(), max.Seconds())
		return time.Duration(seconds * float64(time.Second))
	}
}

// Advance moves the clock forward by one step and returns the new value
func (c *Clock) Advance() time.Time {
	c.mu.Lock()
	defer c.mu.Unlock()

	d := c.step()
	if d <= 0 {
		d = time.Microsecond
	}
	c.current = c.current.Add(d)
	return c.current
}

// Now returns the current clock value without advancing it
func (c *Clock) Now() time.Time {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.current
}
