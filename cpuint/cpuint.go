// Package cpuint implements the ATtiny1626 interrupt controller (CPUINT):
// a flat vector-indexed shadow of every peripheral's enable/pending bits,
// address-order priority arbitration with one optional elevated vector,
// and the dispatch bookkeeping the AVR core needs between instructions.
//
// Peripherals never call back into the CPU; they only set/clear their
// vector's enabled/pending shadow bits here.
// The CPU core polls Controller.NextPending() once per retired
// instruction and vectors to it if SREG.I permits.
package cpuint

import "fmt"

// MaxVectors bounds the vector table. The ATtiny1626 defines 38 usable
// interrupt vectors (including the reset vector at 0); this is rounded
// up to give headroom for the stub peripherals.
const MaxVectors = 48

// Controller holds the pending/enabled shadow tables for every vector
// number and performs numerically-lowest-wins priority arbitration, with
// LVL1VEC able to elevate exactly one vector above that order.
type Controller struct {
	enabled [MaxVectors]bool
	pending [MaxVectors]bool
	lvl1    int // -1 == unset, else the elevated vector number
}

// New returns a Controller with no vectors enabled or pending and no
// elevated vector.
func New() *Controller {
	return &Controller{lvl1: -1}
}

// Reset clears all enabled/pending state and the elevated vector,
// matching a power-on/reset of CPUINT.
func (c *Controller) Reset() {
	for i := range c.enabled {
		c.enabled[i] = false
		c.pending[i] = false
	}
	c.lvl1 = -1
}

// SetEnabled updates the shadow enable bit for a vector. The peripherals
// here always pass true and fold their own IE (interrupt enable) bit
// into the value they give SetPending instead.
func (c *Controller) SetEnabled(vector int, enabled bool) {
	c.mustValid(vector)
	c.enabled[vector] = enabled
}

// SetPending asserts or deasserts a vector's pending shadow bit.
// Peripherals call this when their IF (interrupt flag) bit source
// changes, including clear-on-write-1 and hardware auto-clear.
func (c *Controller) SetPending(vector int, pending bool) {
	c.mustValid(vector)
	c.pending[vector] = pending
}

// Pending reports whether a vector is currently asserted regardless of
// enable state.
func (c *Controller) Pending(vector int) bool {
	c.mustValid(vector)
	return c.pending[vector]
}

// SetLVL1Vec sets the single vector number (per CPUINT.LVL1VEC) that
// takes priority over address-order arbitration. Pass -1 to clear it.
func (c *Controller) SetLVL1Vec(vector int) {
	if vector >= 0 {
		c.mustValid(vector)
	}
	c.lvl1 = vector
}

// NextPending returns the vector number that should be dispatched next,
// and true if one is available. The elevated LVL1VEC vector wins if it
// is itself pending and enabled; otherwise the numerically smallest
// pending-and-enabled vector wins, matching the ATtiny1626's
// address-order priority scheme.
func (c *Controller) NextPending() (int, bool) {
	if c.lvl1 >= 0 && c.pending[c.lvl1] && c.enabled[c.lvl1] {
		return c.lvl1, true
	}
	for v := 0; v < MaxVectors; v++ {
		if c.pending[v] && c.enabled[v] {
			return v, true
		}
	}
	return 0, false
}

// AnyPending reports whether any enabled vector is pending, regardless
// of priority. Used by the scheduler to decide whether a SLEEP can be
// woken without a new stimulus.
func (c *Controller) AnyPending() bool {
	_, ok := c.NextPending()
	return ok
}

func (c *Controller) mustValid(vector int) {
	if vector < 0 || vector >= MaxVectors {
		panic(fmt.Sprintf("cpuint: vector %d out of range [0,%d)", vector, MaxVectors))
	}
}
