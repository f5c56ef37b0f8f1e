package sim

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestClock_AdvanceTo_MovesForward(t *testing.T) {
	var c Clock
	c.AdvanceTo(2.5)
	c.AdvanceTo(2.5) // same instant is allowed
	c.AdvanceTo(7)
	assert.Equal(t, 7.0, c.Now())
}

func TestClock_AdvanceTo_Backwards_Panics(t *testing.T) {
	var c Clock
	c.AdvanceTo(10)
	assert.Panics(t, func() { c.AdvanceTo(9.99) })
	assert.Equal(t, 10.0, c.Now(), "failed advance must not move the clock")
}

func TestClock_Reset(t *testing.T) {
	var c Clock
	c.AdvanceTo(42)
	c.Reset()
	assert.Equal(t, 0.0, c.Now())
}
