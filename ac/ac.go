// Package ac models AC0, the analog comparator, at stub fidelity: a
// CTRLA enable bit, a STATUS output bit computed by comparing two
// pin.Analog fractions on each Tick, and an interrupt flag on every
// output transition.
package ac

import (
	"github.com/cab202/avremu/cpuint"
	"github.com/cab202/avremu/pin"
)

const (
	RegCTRLA    = 0x00
	RegINTCTRL  = 0x06
	RegSTATUS   = 0x07
)

const StatusCMP = 1 << 4
const StatusIF = 1 << 0

type AC struct {
	cpuint   *cpuint.Controller
	vector   int
	positive pin.Analog
	negative pin.Analog

	ctrla, intctrl, status uint8
}

func New(cpuint *cpuint.Controller, vector int, positive, negative pin.Analog) *AC {
	a := &AC{cpuint: cpuint, vector: vector, positive: positive, negative: negative}
	a.Reset()
	return a
}

func (a *AC) Reset() {
	a.ctrla, a.intctrl, a.status = 0, 0, 0
}

func (a *AC) enabled() bool { return a.ctrla&0x01 != 0 }

func (a *AC) Tick(cycles int) {
	if !a.enabled() || a.positive == nil || a.negative == nil {
		return
	}
	was := a.status&StatusCMP != 0
	now := a.positive.Fraction() > a.negative.Fraction()
	if now {
		a.status |= StatusCMP
	} else {
		a.status &^= StatusCMP
	}
	if now != was {
		a.status |= StatusIF
	}
	if a.cpuint != nil {
		a.cpuint.SetEnabled(a.vector, true)
		a.cpuint.SetPending(a.vector, a.status&StatusIF != 0 && a.intctrl&0x01 != 0)
	}
}

func (a *AC) Read(reg uint8) uint8 {
	switch reg {
	case RegCTRLA:
		return a.ctrla
	case RegINTCTRL:
		return a.intctrl
	case RegSTATUS:
		return a.status
	}
	return 0
}

func (a *AC) Write(reg uint8, val uint8) {
	switch reg {
	case RegCTRLA:
		a.ctrla = val
	case RegINTCTRL:
		a.intctrl = val
	case RegSTATUS:
		a.status &^= val & StatusIF
	}
}
