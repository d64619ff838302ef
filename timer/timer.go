// Package timer models the ATtiny1626 TCA0 (16-bit normal mode) and
// TCB0/TCB1 (periodic-interrupt/timeout-check mode) timer/counter
// peripherals. TCA0 split mode and TCB input capture are not modeled.
// Both share pia6532's idiom: writes to
// CNT/PER/CMPn land immediately, and Tick(cycles) advances the counter
// and raises CPUINT pending bits on compare-match/overflow, mirroring
// how pia6532's Tick decrements its own countdown and sets
// irq-relevant state every cycle.
package timer

import "github.com/cab202/avremu/cpuint"

// TCA0 register offsets (normal mode view; split mode is not modeled).
const (
	RegCTRLA    = 0x00
	RegCTRLB    = 0x01
	RegINTCTRL  = 0x0A
	RegINTFLAGS = 0x0B
	RegCNTL     = 0x20
	RegCNTH     = 0x21
	RegPERL     = 0x26
	RegPERH     = 0x27
	RegCMP0L    = 0x28
	RegCMP0H    = 0x29
)

// TCA16 is TCA0 in normal (16-bit) mode.
type TCA16 struct {
	cpuint *cpuint.Controller
	vector int

	ctrla, ctrlb   uint8
	intctrl        uint8
	intflags       uint8
	cnt, per, cmp0 uint16
}

// NewTCA16 constructs a 16-bit TCA0 raising the given overflow vector.
func NewTCA16(cpuint *cpuint.Controller, vector int) *TCA16 {
	t := &TCA16{cpuint: cpuint, vector: vector}
	t.Reset()
	return t
}

// Reset restores power-on defaults: counter stopped, PER at its max
// (0xFFFF), no pending flags.
func (t *TCA16) Reset() {
	t.ctrla = 0
	t.ctrlb = 0
	t.intctrl = 0
	t.intflags = 0
	t.cnt = 0
	t.per = 0xFFFF
	t.cmp0 = 0
	t.updateIRQ()
}

func (t *TCA16) enabled() bool { return t.ctrla&0x01 != 0 }

// Tick advances the counter by cycles core-clock ticks. CTRLA's CLKSEL
// prescaler field is not applied: the counter always runs at the core
// clock, which matches the common CLKSEL=DIV1 configuration.
func (t *TCA16) Tick(cycles int) {
	if !t.enabled() {
		return
	}
	for i := 0; i < cycles; i++ {
		if t.cnt >= t.per {
			t.cnt = 0
			t.intflags |= 0x01 // OVF
		} else {
			t.cnt++
		}
		if t.cnt == t.cmp0 {
			t.intflags |= 0x10 // CMP0
		}
	}
	t.updateIRQ()
}

func (t *TCA16) updateIRQ() {
	if t.cpuint == nil {
		return
	}
	t.cpuint.SetEnabled(t.vector, true)
	pending := t.intflags&t.intctrl != 0
	t.cpuint.SetPending(t.vector, pending)
}

func (t *TCA16) Read(reg uint8) uint8 {
	switch reg {
	case RegCTRLA:
		return t.ctrla
	case RegCTRLB:
		return t.ctrlb
	case RegINTCTRL:
		return t.intctrl
	case RegINTFLAGS:
		return t.intflags
	case RegCNTL:
		return uint8(t.cnt)
	case RegCNTH:
		return uint8(t.cnt >> 8)
	case RegPERL:
		return uint8(t.per)
	case RegPERH:
		return uint8(t.per >> 8)
	case RegCMP0L:
		return uint8(t.cmp0)
	case RegCMP0H:
		return uint8(t.cmp0 >> 8)
	}
	return 0
}

func (t *TCA16) Write(reg uint8, val uint8) {
	switch reg {
	case RegCTRLA:
		t.ctrla = val
	case RegCTRLB:
		t.ctrlb = val
	case RegINTCTRL:
		t.intctrl = val
	case RegINTFLAGS:
		t.intflags &^= val
	case RegCNTL:
		t.cnt = t.cnt&0xFF00 | uint16(val)
	case RegCNTH:
		t.cnt = t.cnt&0x00FF | uint16(val)<<8
	case RegPERL:
		t.per = t.per&0xFF00 | uint16(val)
	case RegPERH:
		t.per = t.per&0x00FF | uint16(val)<<8
	case RegCMP0L:
		t.cmp0 = t.cmp0&0xFF00 | uint16(val)
	case RegCMP0H:
		t.cmp0 = t.cmp0&0x00FF | uint16(val)<<8
	default:
		return
	}
	t.updateIRQ()
}

// TCB register offsets.
const (
	RegTCBCTRLA    = 0x00
	RegTCBCTRLB    = 0x01
	RegTCBINTCTRL  = 0x06
	RegTCBINTFLAGS = 0x07
	RegTCBCNTL     = 0x0A
	RegTCBCNTH     = 0x0B
	RegTCBCCMPL    = 0x0C
	RegTCBCCMPH    = 0x0D
)

// TCB modes relevant here: periodic interrupt (counts to CCMP then
// restarts) and single-shot timeout-check (counts to CCMP once then
// stops until rearmed).
const (
	TCBModePeriodic uint8 = 0
	TCBModeTimeout  uint8 = 1
)

// TCB is a 16-bit TCB0/TCB1 instance.
type TCB struct {
	cpuint *cpuint.Controller
	vector int

	ctrla, ctrlb  uint8
	intctrl       uint8
	intflags      uint8
	cnt, cmp      uint16
	running       bool
}

// NewTCB constructs a TCB instance raising the given capture/compare
// vector.
func NewTCB(cpuint *cpuint.Controller, vector int) *TCB {
	t := &TCB{cpuint: cpuint, vector: vector}
	t.Reset()
	return t
}

func (t *TCB) Reset() {
	t.ctrla = 0
	t.ctrlb = 0
	t.intctrl = 0
	t.intflags = 0
	t.cnt = 0
	t.cmp = 0xFFFF
	t.running = true
	t.updateIRQ()
}

func (t *TCB) mode() uint8 { return t.ctrlb & 0x07 }
func (t *TCB) enabled() bool { return t.ctrla&0x01 != 0 }

func (t *TCB) Tick(cycles int) {
	if !t.enabled() || !t.running {
		return
	}
	for i := 0; i < cycles; i++ {
		t.cnt++
		if t.cnt >= t.cmp {
			t.cnt = 0
			t.intflags |= 0x01
			if t.mode() == TCBModeTimeout {
				t.running = false
			}
		}
		if !t.running {
			break
		}
	}
	t.updateIRQ()
}

func (t *TCB) updateIRQ() {
	if t.cpuint == nil {
		return
	}
	t.cpuint.SetEnabled(t.vector, true)
	t.cpuint.SetPending(t.vector, t.intflags&t.intctrl != 0)
}

// Rearm restarts a stopped single-shot TCB (e.g. after firmware
// acknowledges a timeout), matching the real CAPT re-trigger behavior.
func (t *TCB) Rearm() {
	t.cnt = 0
	t.running = true
}

func (t *TCB) Read(reg uint8) uint8 {
	switch reg {
	case RegTCBCTRLA:
		return t.ctrla
	case RegTCBCTRLB:
		return t.ctrlb
	case RegTCBINTCTRL:
		return t.intctrl
	case RegTCBINTFLAGS:
		return t.intflags
	case RegTCBCNTL:
		return uint8(t.cnt)
	case RegTCBCNTH:
		return uint8(t.cnt >> 8)
	case RegTCBCCMPL:
		return uint8(t.cmp)
	case RegTCBCCMPH:
		return uint8(t.cmp >> 8)
	}
	return 0
}

func (t *TCB) Write(reg uint8, val uint8) {
	switch reg {
	case RegTCBCTRLA:
		t.ctrla = val
	case RegTCBCTRLB:
		t.ctrlb = val
	case RegTCBINTCTRL:
		t.intctrl = val
	case RegTCBINTFLAGS:
		t.intflags &^= val
	case RegTCBCNTL:
		t.cnt = t.cnt&0xFF00 | uint16(val)
	case RegTCBCNTH:
		t.cnt = t.cnt&0x00FF | uint16(val)<<8
	case RegTCBCCMPL:
		t.cmp = t.cmp&0xFF00 | uint16(val)
	case RegTCBCCMPH:
		t.cmp = t.cmp&0x00FF | uint16(val)<<8
	default:
		return
	}
	t.updateIRQ()
}
