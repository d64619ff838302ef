// Package spi models SPI0 as a reduced-fidelity byte-at-a-time shift
// peripheral: a DATA register write completes the transfer instantly
// from the CPU's point of view, raising the interrupt flag on the next
// Tick rather than bit-by-bit, the same simplification usart applies to
// its transmit shift register.
package spi

import "github.com/cab202/avremu/cpuint"

const (
	RegCTRLA = 0x00
	RegCTRLB = 0x01
	RegINTCTRL = 0x02
	RegINTFLAGS = 0x03
	RegDATA  = 0x04
)

const (
	StatusIF = 1 << 7
)

// Peer is a trivial loopback/peripheral model the host can attach, e.g.
// a test double or a device model exposing a byte-shift Transfer
// method. nil means transfers just shift in 0xFF (idle MISO).
type Peer interface {
	Transfer(out uint8) (in uint8)
}

type SPI struct {
	cpuint *cpuint.Controller
	vector int
	peer   Peer

	ctrla, ctrlb uint8
	intctrl, intflags uint8
	data uint8

	pending bool
}

func New(cpuint *cpuint.Controller, vector int, peer Peer) *SPI {
	s := &SPI{cpuint: cpuint, vector: vector, peer: peer}
	s.Reset()
	return s
}

func (s *SPI) Reset() {
	s.ctrla, s.ctrlb = 0, 0
	s.intctrl, s.intflags = 0, 0
	s.data = 0
	s.pending = false
	s.updateIRQ()
}

func (s *SPI) enabled() bool { return s.ctrla&0x01 != 0 }

// Tick completes any pending transfer started this cycle.
func (s *SPI) Tick(cycles int) {
	if !s.pending {
		return
	}
	s.pending = false
	if s.peer != nil {
		s.data = s.peer.Transfer(s.data)
	} else {
		s.data = 0xFF
	}
	s.intflags |= StatusIF
	s.updateIRQ()
}

// updateIRQ pushes the IF&IE product into CPUINT's pending shadow. This
// part's CPUINT has no separate per-vector enable register, so the
// vector is left permanently enabled here and the local IE/IF gating
// above is what actually governs dispatch.
func (s *SPI) updateIRQ() {
	if s.cpuint == nil {
		return
	}
	s.cpuint.SetEnabled(s.vector, true)
	s.cpuint.SetPending(s.vector, s.intflags&s.intctrl != 0)
}

func (s *SPI) Read(reg uint8) uint8 {
	switch reg {
	case RegCTRLA:
		return s.ctrla
	case RegCTRLB:
		return s.ctrlb
	case RegINTCTRL:
		return s.intctrl
	case RegINTFLAGS:
		return s.intflags
	case RegDATA:
		s.intflags &^= StatusIF
		s.updateIRQ()
		return s.data
	}
	return 0
}

func (s *SPI) Write(reg uint8, val uint8) {
	switch reg {
	case RegCTRLA:
		s.ctrla = val
	case RegCTRLB:
		s.ctrlb = val
	case RegINTCTRL:
		s.intctrl = val
	case RegDATA:
		if !s.enabled() {
			return
		}
		s.data = val
		s.pending = true
	default:
		return
	}
	s.updateIRQ()
}
