// Package vref models VREF at stub fidelity: a register that records
// the selected reference voltage per consumer (ADC0REFSEL/AC0REFSEL),
// read back verbatim. No other peripheral in this repository currently
// consults it (adc and ac use a normalized 0..1 fraction directly), but
// firmware that reads back its own VREF configuration still needs to
// see what it wrote.
package vref

const (
	RegCTRLA = 0x00
)

type VREF struct {
	ctrla uint8
}

func New() *VREF {
	return &VREF{}
}

func (v *VREF) Reset() { v.ctrla = 0 }

func (v *VREF) Read(reg uint8) uint8 {
	if reg == RegCTRLA {
		return v.ctrla
	}
	return 0
}

func (v *VREF) Write(reg uint8, val uint8) {
	if reg == RegCTRLA {
		v.ctrla = val
	}
}
