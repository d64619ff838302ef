package machine

import "github.com/cab202/avremu/cpuint"

// cpuintRegs exposes CPUINT's CTRLA/STATUS/LVL0PRI/LVL1VEC registers on
// the bus; the enable/pending shadow tables themselves live in
// cpuint.Controller and are touched directly by every peripheral, since
// peripherals never call back into the CPU.
type cpuintRegs struct {
	ctrl *cpuint.Controller

	ctrla uint8
}

func newCPUINTRegs(ctrl *cpuint.Controller) *cpuintRegs {
	return &cpuintRegs{ctrl: ctrl}
}

func (r *cpuintRegs) Reset() {
	r.ctrla = 0
	r.ctrl.Reset()
}

// Register offsets within CPUINT's window.
const (
	regCPUINTCTRLA  = 0x00
	regCPUINTSTATUS = 0x01
	regCPUINTLVL0PRI = 0x02
	regCPUINTLVL1VEC = 0x03
)

func (r *cpuintRegs) Read(reg uint8) uint8 {
	switch reg {
	case regCPUINTCTRLA:
		return r.ctrla
	case regCPUINTSTATUS:
		if r.ctrl.AnyPending() {
			return 0x01
		}
		return 0
	}
	return 0
}

func (r *cpuintRegs) Write(reg uint8, val uint8) {
	switch reg {
	case regCPUINTCTRLA:
		r.ctrla = val
	case regCPUINTLVL1VEC:
		if val == 0 {
			r.ctrl.SetLVL1Vec(-1)
		} else {
			r.ctrl.SetLVL1Vec(int(val))
		}
	}
}
