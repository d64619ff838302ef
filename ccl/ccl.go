// Package ccl models the Configurable Custom Logic peripheral (LUT0) at
// stub fidelity: a truth table register (TRUTH) and two pin.Digital
// inputs; Tick evaluates the 2-input truth table and drives an output
// net, enough to let firmware wire simple combinational glue logic
// without modeling CCL's full 3-input/sequencer feature set.
package ccl

import "github.com/cab202/avremu/pin"

const (
	RegCTRLA  = 0x00
	RegLUT0CTRLA = 0x01
	RegLUT0CTRLB = 0x02
	RegTRUTH0 = 0x04
)

type CCL struct {
	in0, in1 pin.Digital
	out      pin.DigitalDriver

	ctrla, lutCtrlA, lutCtrlB, truth uint8
}

func New(in0, in1 pin.Digital, out pin.DigitalDriver) *CCL {
	c := &CCL{in0: in0, in1: in1, out: out}
	c.Reset()
	return c
}

func (c *CCL) Reset() {
	c.ctrla, c.lutCtrlA, c.lutCtrlB, c.truth = 0, 0, 0, 0
	if c.out != nil {
		c.out.Drive(pin.Low)
	}
}

func (c *CCL) enabled() bool { return c.ctrla&0x01 != 0 && c.lutCtrlA&0x01 != 0 }

func (c *CCL) Tick(cycles int) {
	if !c.enabled() || c.out == nil {
		return
	}
	idx := 0
	if c.in0 != nil && c.in0.Read() == pin.High {
		idx |= 0x1
	}
	if c.in1 != nil && c.in1.Read() == pin.High {
		idx |= 0x2
	}
	if c.truth&(1<<uint(idx)) != 0 {
		c.out.Drive(pin.High)
	} else {
		c.out.Drive(pin.Low)
	}
}

func (c *CCL) Read(reg uint8) uint8 {
	switch reg {
	case RegCTRLA:
		return c.ctrla
	case RegLUT0CTRLA:
		return c.lutCtrlA
	case RegLUT0CTRLB:
		return c.lutCtrlB
	case RegTRUTH0:
		return c.truth
	}
	return 0
}

func (c *CCL) Write(reg uint8, val uint8) {
	switch reg {
	case RegCTRLA:
		c.ctrla = val
	case RegLUT0CTRLA:
		c.lutCtrlA = val
	case RegLUT0CTRLB:
		c.lutCtrlB = val
	case RegTRUTH0:
		c.truth = val
	}
}
