// Package clkctrl models the ATtiny1626 CLKCTRL peripheral: the main
// clock's prescaler selection and the CPU/peripheral tick source every
// other peripheral derives its own divided tick from. The division
// arithmetic follows atari2600.VCS.Tick's approach of dividing a master
// tick count down for TIA vs CPU phase, adapted into a standalone
// register-backed peripheral instead of inline wiring logic.
package clkctrl

import "github.com/cab202/avremu/ccp"

// MCLKCTRLB prescaler divider table (datasheet-ordered index -> divisor).
var prescalerDivisors = [...]int{2, 4, 8, 16, 32, 64, 128, 256, 6, 10, 12, 24, 48}

// Registers offsets within the CLKCTRL I/O window.
const (
	RegMCLKCTRLA = 0x00
	RegMCLKCTRLB = 0x01
	RegMCLKLOCK  = 0x02
	RegMCLKSTATUS = 0x03
)

// Controller implements CLKCTRL's register block and divides the core
// clock down for anything that ticks slower than the CPU.
type Controller struct {
	mclkctrla ccp.ProtectedRegister
	mclkctrlb ccp.ProtectedRegister
	lock      uint8
	status    uint8

	// subCycle counts cycles within the current prescaled period.
	subCycle int
}

// New returns a Controller gated by the given CCP window source.
func New(gate ccp.Gate) *Controller {
	c := &Controller{}
	c.mclkctrla.Gate = gate
	c.mclkctrlb.Gate = gate
	c.Reset()
	return c
}

// Reset restores power-on defaults: internal oscillator selected, no
// prescaler, lock bit clear.
func (c *Controller) Reset() {
	c.mclkctrla.Set(0x00)
	c.mclkctrlb.Set(0x00)
	c.lock = 0
	c.status = 0x01 // SOSC stable
	c.subCycle = 0
}

// Divisor returns the currently configured prescaler divisor, or 1 if
// the prescaler is disabled (MCLKCTRLB bit 0 clear).
func (c *Controller) Divisor() int {
	b := c.mclkctrlb.Read()
	if b&0x01 == 0 {
		return 1
	}
	idx := int(b>>1) & 0x0F
	if idx >= len(prescalerDivisors) {
		return 1
	}
	return prescalerDivisors[idx]
}

// PeripheralTick advances by the given number of core clock cycles and
// reports how many divided "peripheral clock" ticks elapsed, for
// peripherals that run off the divided clock instead of the raw core
// clock (none currently do on the ATtiny1626's default wiring, but the
// hook exists for completeness since MCLKCTRLB is user-settable).
func (c *Controller) PeripheralTick(cycles int) int {
	div := c.Divisor()
	if div <= 1 {
		return cycles
	}
	c.subCycle += cycles
	ticks := c.subCycle / div
	c.subCycle -= ticks * div
	return ticks
}

// Read/Write implement the CLKCTRL register window for bus wiring.
func (c *Controller) Read(reg uint8) uint8 {
	switch reg {
	case RegMCLKCTRLA:
		return c.mclkctrla.Read()
	case RegMCLKCTRLB:
		return c.mclkctrlb.Read()
	case RegMCLKLOCK:
		return c.lock
	case RegMCLKSTATUS:
		return c.status
	}
	return 0
}

func (c *Controller) Write(reg uint8, val uint8) {
	switch reg {
	case RegMCLKCTRLA:
		c.mclkctrla.Write(val)
	case RegMCLKCTRLB:
		c.mclkctrlb.Write(val)
	case RegMCLKLOCK:
		c.lock = val & 0x01
	}
}
