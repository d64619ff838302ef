// Package adc models ADC0: MUXPOS channel selection and RESULT, sourced
// from a pin.Analog's voltage Fraction(). Each conversion takes a single
// sample; CTRLB (SAMPNUM) is stored but no accumulation is applied. A
// conversion is started by writing COMMAND's start bit and completes
// after a fixed cycle count, raising RESRDY the way usart's
// shift-complete raises TXCIF.
package adc

import (
	"github.com/cab202/avremu/cpuint"
	"github.com/cab202/avremu/pin"
)

const (
	RegCTRLA    = 0x00
	RegCTRLB    = 0x01
	RegCTRLC    = 0x02
	RegCOMMAND  = 0x0A
	RegINTCTRL  = 0x0C
	RegINTFLAGS = 0x0D
	RegRESL     = 0x10
	RegRESH     = 0x11
	RegMUXPOS   = 0x17
)

const conversionCycles = 13 // datasheet: 13 ADC clock cycles for a normal conversion

// ADC is ADC0 with up to 8 analog-capable input channels.
type ADC struct {
	cpuint *cpuint.Controller
	vector int
	inputs [8]pin.Analog

	ctrla, ctrlb, ctrlc uint8
	intctrl, intflags   uint8
	muxpos              uint8
	result              uint16

	converting bool
	countdown  int
}

// New constructs ADC0 wired to up to 8 analog input channels (nil
// entries read as 0).
func New(cpuint *cpuint.Controller, vector int, inputs [8]pin.Analog) *ADC {
	a := &ADC{cpuint: cpuint, vector: vector, inputs: inputs}
	a.Reset()
	return a
}

func (a *ADC) Reset() {
	a.ctrla, a.ctrlb, a.ctrlc = 0, 0, 0
	a.intctrl, a.intflags = 0, 0
	a.muxpos = 0
	a.result = 0
	a.converting = false
	a.countdown = 0
	a.updateIRQ()
}

func (a *ADC) enabled() bool { return a.ctrla&0x01 != 0 }

// resolution returns the configured result width (10 or 8 bits) from
// CTRLA's RESSEL bit.
func (a *ADC) resolution() uint16 {
	if a.ctrla&0x04 != 0 {
		return 8
	}
	return 10
}

func (a *ADC) start() {
	if !a.enabled() || a.converting {
		return
	}
	a.converting = true
	a.countdown = conversionCycles
}

func (a *ADC) Tick(cycles int) {
	if !a.converting {
		return
	}
	a.countdown -= cycles
	if a.countdown > 0 {
		return
	}
	a.converting = false
	ch := a.muxpos & 0x07
	frac := 0.0
	if a.inputs[ch] != nil {
		frac = a.inputs[ch].Fraction()
	}
	max := uint16(1)<<a.resolution() - 1
	a.result = uint16(frac * float64(max))
	a.intflags |= 0x01 // RESRDY
	a.updateIRQ()
}

func (a *ADC) updateIRQ() {
	if a.cpuint == nil {
		return
	}
	a.cpuint.SetEnabled(a.vector, true)
	a.cpuint.SetPending(a.vector, a.intflags&a.intctrl != 0)
}

func (a *ADC) Read(reg uint8) uint8 {
	switch reg {
	case RegCTRLA:
		return a.ctrla
	case RegCTRLB:
		return a.ctrlb
	case RegCTRLC:
		return a.ctrlc
	case RegINTCTRL:
		return a.intctrl
	case RegINTFLAGS:
		return a.intflags
	case RegRESL:
		return uint8(a.result)
	case RegRESH:
		return uint8(a.result >> 8)
	case RegMUXPOS:
		return a.muxpos
	}
	return 0
}

func (a *ADC) Write(reg uint8, val uint8) {
	switch reg {
	case RegCTRLA:
		a.ctrla = val
	case RegCTRLB:
		a.ctrlb = val
	case RegCTRLC:
		a.ctrlc = val
	case RegCOMMAND:
		if val&0x01 != 0 {
			a.start()
		}
	case RegINTCTRL:
		a.intctrl = val
	case RegINTFLAGS:
		a.intflags &^= val
	case RegMUXPOS:
		a.muxpos = val & 0x07
	default:
		return
	}
	a.updateIRQ()
}
