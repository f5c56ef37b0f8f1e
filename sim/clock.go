package sim

import "fmt"

// Clock holds the current simulated time in minutes.
// A Clock belongs to exactly one Engine; it only moves forward while a run is
// in progress and is reset to zero when the next run is initialized.
type Clock struct {
	now float64
}

// Now returns the current simulated time.
func (c *Clock) Now() float64 {
	return c.now
}

// AdvanceTo moves the clock to t.
// Panics if t is earlier than the current time: events are popped in time
// order, so a backwards step means the event list is corrupted.
func (c *Clock) AdvanceTo(t float64) {
	if t < c.now {
		panic(fmt.Sprintf("Clock.AdvanceTo: time %v is before current time %v", t, c.now))
	}
	c.now = t
}

// Reset sets the clock back to zero.
func (c *Clock) Reset() {
	c.now = 0
}
