// Package ccp defines the gate interface Configuration Change
// Protection peripherals (CLKCTRL, NVMCTRL's protected command
// register, the watchdog) consult before honoring a protected write.
// The unlock window itself is owned by avr.Chip (it is a CPU-cycle-scoped
// counter, opened by the two-instruction OUT CCP,key / OUT reg,val
// sequence); this package only defines the small interface peripherals
// depend on, so they don't import the avr package directly, the same
// "depend on a tiny interface, not a concrete type" shape as irq.Sender.
package ccp

// Gate reports whether a CCP-protected write should be honored this
// instruction. avr.Chip implements it via CCPOpen.
type Gate interface {
	CCPOpen() bool
}

// Unlocker opens the protected-write window; avr.Chip implements it via
// CCPUnlock. A write of IOREGKey or SPMKey to the CCP register is the
// only thing that may call it.
type Unlocker interface {
	CCPUnlock()
}

// Key values accepted by a write to the CCP register (ATtiny1626
// datasheet): IOREGKey opens CLKCTRL/WDT/BOD-class protected registers,
// SPMKey opens NVMCTRL's command register. This model does not
// distinguish between them; either opens the same four-instruction
// window for every protected register.
const (
	IOREGKey uint8 = 0xD8
	SPMKey   uint8 = 0x9D
)

// KeyRegister is the CCP register itself: a write-only strobe that opens
// the unlock window when written with a recognized key, and ignores any
// other value (matching real hardware's silent rejection of a bad key).
type KeyRegister struct {
	Unlocker Unlocker
}

// Write opens the window if val is a recognized key.
func (k *KeyRegister) Write(val uint8) {
	if val == IOREGKey || val == SPMKey {
		if k.Unlocker != nil {
			k.Unlocker.CCPUnlock()
		}
	}
}

// Read always returns 0; CCP has no readable state beyond its
// transient unlock window, which avr.Chip tracks internally.
func (k *KeyRegister) Read() uint8 { return 0 }

// ProtectedRegister wraps a byte register that only accepts writes while
// the gate reports the unlock window open; writes outside the window are
// silently dropped, matching real hardware.
type ProtectedRegister struct {
	Gate  Gate
	value uint8
}

// Write stores val only if the CCP window is currently open.
func (p *ProtectedRegister) Write(val uint8) {
	if p.Gate == nil || p.Gate.CCPOpen() {
		p.value = val
	}
}

// Read returns the current value regardless of CCP state.
func (p *ProtectedRegister) Read() uint8 { return p.value }

// Set forces the value unconditionally (used by Reset paths).
func (p *ProtectedRegister) Set(val uint8) { p.value = val }
