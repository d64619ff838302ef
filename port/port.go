// Package port implements the ATtiny1626 PORT peripheral (PORTA/PORTB/
// PORTC): DIR/OUT/IN registers, per-pin interrupt control (PINnCTRL) and
// flags (INTFLAGS), wired onto pin.Digital nets. It follows the
// teacher's pia6532 shape: writes land in shadow fields immediately
// (real hardware PORT registers are not double-buffered, unlike
// pia6532's timer, but the same "compute the externally visible state
// in one place" discipline is kept) and Tick only re-samples inputs and
// raises edge interrupts.
package port

import (
	"github.com/cab202/avremu/cpuint"
	"github.com/cab202/avremu/pin"
)

// Register offsets within one PORT's 32-byte I/O window.
const (
	RegDIR        = 0x00
	RegDIRSET     = 0x01
	RegDIRCLR     = 0x02
	RegDIRTGL     = 0x03
	RegOUT        = 0x04
	RegOUTSET     = 0x05
	RegOUTCLR     = 0x06
	RegOUTTGL     = 0x07
	RegIN         = 0x08
	RegINTFLAGS   = 0x09
	RegPIN0CTRL   = 0x10
)

// ISC (Input/Sense Configuration) values in PINnCTRL bits 2:0.
const (
	ISCIntDisable uint8 = iota
	ISCBothEdges
	ISCRising
	ISCFalling
	ISCInputDisable
	ISCLevelLow
)

// PullupEnBit is PINnCTRL.PULLUPEN: when set, a pin with nothing else
// driving it reads as High instead of floating-low, the same as the
// real ATtiny1626's internal pull-up resistor.
const PullupEnBit uint8 = 1 << 3

// Port is one 8-pin GPIO port.
type Port struct {
	vectorBase int // CPUINT vector for this port's combined pin interrupt
	cpuint     *cpuint.Controller

	dir uint8
	out uint8
	in  uint8 // last-sampled external level, bit set = high
	pinctrl [8]uint8
	intflags uint8

	nets [8]pin.DigitalDriver
}

// New constructs a Port wired to eight pin nets and the shared
// interrupt controller, raising the given vector when any enabled pin
// interrupt is pending.
func New(nets [8]pin.DigitalDriver, cpuint *cpuint.Controller, vector int) *Port {
	p := &Port{nets: nets, cpuint: cpuint, vectorBase: vector}
	p.Reset()
	return p
}

// Reset restores power-on defaults: all pins inputs, outputs low,
// interrupts disabled.
func (p *Port) Reset() {
	p.dir = 0
	p.out = 0
	p.in = 0
	p.intflags = 0
	for i := range p.pinctrl {
		p.pinctrl[i] = 0
	}
	p.driveOutputs()
	if p.cpuint != nil {
		p.cpuint.SetPending(p.vectorBase, false)
	}
}

// driveOutputs pushes OUT/DIR onto the wire nets: an output pin drives
// its level, an input pin floats (letting a device model or pull-up
// determine the net's level).
func (p *Port) driveOutputs() {
	for i := 0; i < 8; i++ {
		mask := uint8(1) << uint(i)
		if p.dir&mask == 0 {
			p.nets[i].Drive(pin.Floating)
			continue
		}
		if p.out&mask != 0 {
			p.nets[i].Drive(pin.High)
		} else {
			p.nets[i].Drive(pin.Low)
		}
	}
}

// sample reads every pin net into IN and raises INTFLAGS bits for any
// pin whose configured edge/level condition is met since the last
// sample, per-pin PINnCTRL ISC.
func (p *Port) sample() {
	prev := p.in
	var next uint8
	for i := 0; i < 8; i++ {
		mask := uint8(1) << uint(i)
		level := p.nets[i].Read()
		if level == pin.High || (level == pin.Floating && p.pinctrl[i]&PullupEnBit != 0) {
			next |= mask
		}
		wasHigh := prev&mask != 0
		isHigh := next&mask != 0
		isc := p.pinctrl[i] & 0x07
		fired := false
		switch isc {
		case ISCBothEdges:
			fired = wasHigh != isHigh
		case ISCRising:
			fired = !wasHigh && isHigh
		case ISCFalling:
			fired = wasHigh && !isHigh
		case ISCLevelLow:
			fired = !isHigh
		}
		if fired {
			p.intflags |= mask
		}
	}
	p.in = next
	if p.cpuint != nil {
		// PORT has no local interrupt-enable register of its own (the
		// per-pin ISC setting is the only gate); the vector stays
		// enabled at the controller and PINnCTRL governs whether
		// INTFLAGS bits ever get set in the first place.
		p.cpuint.SetEnabled(p.vectorBase, true)
		p.cpuint.SetPending(p.vectorBase, p.intflags != 0)
	}
}

// Tick re-samples every input pin. Called once per machine Step; the
// cycle count is ignored, treating PORT as combinational plus
// edge-detect latches sampled at instruction boundaries.
func (p *Port) Tick(cycles int) {
	p.sample()
}

// Read implements the register window.
func (p *Port) Read(reg uint8) uint8 {
	switch {
	case reg == RegDIR:
		return p.dir
	case reg == RegOUT:
		return p.out
	case reg == RegIN:
		return p.in
	case reg == RegINTFLAGS:
		return p.intflags
	case reg >= RegPIN0CTRL && reg < RegPIN0CTRL+8:
		return p.pinctrl[reg-RegPIN0CTRL]
	}
	return 0
}

// Write implements the register window, including the SET/CLR/TGL
// convenience aliases real PORT peripherals provide for DIR and OUT.
func (p *Port) Write(reg uint8, val uint8) {
	switch {
	case reg == RegDIR:
		p.dir = val
	case reg == RegDIRSET:
		p.dir |= val
	case reg == RegDIRCLR:
		p.dir &^= val
	case reg == RegDIRTGL:
		p.dir ^= val
	case reg == RegOUT:
		p.out = val
	case reg == RegOUTSET:
		p.out |= val
	case reg == RegOUTCLR:
		p.out &^= val
	case reg == RegOUTTGL:
		p.out ^= val
	case reg == RegINTFLAGS:
		p.intflags &^= val // write-1-to-clear
		if p.cpuint != nil {
			p.cpuint.SetPending(p.vectorBase, p.intflags != 0)
		}
	case reg >= RegPIN0CTRL && reg < RegPIN0CTRL+8:
		p.pinctrl[reg-RegPIN0CTRL] = val
	default:
		return
	}
	p.driveOutputs()
}
