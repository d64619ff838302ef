// Package peripheral defines the small capability set every ATtiny1626
// peripheral in this repository implements: register-backed bus.Cells,
// a Tick(cycles) advance, and a Reset. It follows pia6532's shape
// (shadow registers applied in a TickDone-like commit step) rather than
// a per-peripheral ad hoc interface.
package peripheral

// Ticker is implemented by every peripheral that has time-dependent
// behavior (timers, USART baud generation, ADC conversion, RTC).
// Tick is called by machine.Step once per retired instruction (or
// interrupt dispatch) with the cycles it consumed, after the CPU's Step
// has retired, and never recurses into the CPU.
type Ticker interface {
	Tick(cycles int)
}

// Resettable is implemented by every peripheral; Reset restores
// power-on register state.
type Resettable interface {
	Reset()
}

// Peripheral is the minimal set the machine package expects from every
// chip component it wires onto the bus.
type Peripheral interface {
	Resettable
}
