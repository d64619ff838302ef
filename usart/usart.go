// Package usart models USART0: BAUD-driven transmit timing, a one-byte
// transmit/receive shadow register each, and the DREIF/TXCIF/RXCIF
// status flags, forwarding every transmitted byte to an io.Writer sink
// (the serial console device model in package devices). It follows the
// teacher's pia6532 shadow-register idiom: TXDATAL latches into a
// shadow register on write, and the shift-out completion is what
// actually appears on the "wire" (here, the sink), decoupling the
// CPU-visible write from the externally observable effect.
package usart

import (
	"io"

	"github.com/cab202/avremu/cpuint"
)

// Register offsets within USART0's I/O window.
const (
	RegRXDATAL  = 0x00
	RegTXDATAL  = 0x02
	RegSTATUS   = 0x0A
	RegCTRLA    = 0x0B
	RegCTRLB    = 0x0C
	RegCTRLC    = 0x0D
	RegBAUDL    = 0x0E
	RegBAUDH    = 0x0F
)

// STATUS bits.
const (
	StatusRXCIF = 1 << 7
	StatusTXCIF = 1 << 6
	StatusDREIF = 1 << 5
)

// CTRLA interrupt-enable bits.
const (
	CtrlARXCIE = 1 << 7
	CtrlATXCIE = 1 << 6
	CtrlADREIE = 1 << 5
)

// USART is a reduced-fidelity USART0: transmit is modeled as completing
// after a fixed number of core-clock cycles proportional to BAUD. Two
// stages are kept distinct, as on real hardware: the TXDATAL buffer
// (what firmware writes) and the shift register actually being clocked
// out to the sink, so that a byte written while the previous one is
// still in flight is queued rather than clobbering it.
type USART struct {
	cpuint *cpuint.Controller
	vector int
	sink   io.Writer

	ctrla, ctrlb, ctrlc uint8
	baud                uint16
	status              uint8

	shiftData      uint8
	shiftBusy      bool
	shiftCountdown int

	txBuf     uint8
	txBufFull bool

	rxdata  uint8
	rxReady bool
}

// New constructs a USART0 forwarding transmitted bytes to sink (typically
// the serial console device model, or a plain bytes.Buffer in tests).
func New(cpuint *cpuint.Controller, vector int, sink io.Writer) *USART {
	u := &USART{cpuint: cpuint, vector: vector, sink: sink}
	u.Reset()
	return u
}

// Reset restores power-on defaults: transmitter/receiver disabled, DREIF
// set (the transmit buffer always starts empty).
func (u *USART) Reset() {
	u.ctrla, u.ctrlb, u.ctrlc = 0, 0, 0
	u.baud = 0
	u.status = StatusDREIF
	u.shiftBusy = false
	u.shiftCountdown = 0
	u.txBuf = 0
	u.txBufFull = false
	u.rxReady = false
	u.rxdata = 0
	u.updateIRQ()
}

func (u *USART) txEnabled() bool { return u.ctrlb&0x40 != 0 }

// cyclesPerByte derives an approximate transmit duration from BAUD,
// never less than one cycle, so a BAUD of 0 cannot wedge the model.
func (u *USART) cyclesPerByte() int {
	if u.baud == 0 {
		return 1
	}
	n := int(u.baud) / 64
	if n < 1 {
		n = 1
	}
	return n
}

// Tick advances any in-flight transmission. When the shift register
// finishes, a byte waiting in the TXDATAL buffer (if any) moves into the
// shift register and a new transmission begins immediately; TXCIF only
// asserts once the shift register goes idle with nothing queued behind
// it, matching the real USART's "entire frame shifted out" semantics.
func (u *USART) Tick(cycles int) {
	if !u.shiftBusy {
		return
	}
	u.shiftCountdown -= cycles
	if u.shiftCountdown > 0 {
		return
	}
	if u.sink != nil {
		u.sink.Write([]byte{u.shiftData})
	}
	if u.txBufFull {
		u.shiftData = u.txBuf
		u.txBufFull = false
		u.shiftCountdown = u.cyclesPerByte()
		u.status |= StatusDREIF
	} else {
		u.shiftBusy = false
		u.status |= StatusTXCIF
	}
	u.updateIRQ()
}

func (u *USART) updateIRQ() {
	if u.cpuint == nil {
		return
	}
	u.cpuint.SetEnabled(u.vector, true)
	pending := (u.status&StatusRXCIF != 0 && u.ctrla&CtrlARXCIE != 0) ||
		(u.status&StatusTXCIF != 0 && u.ctrla&CtrlATXCIE != 0) ||
		(u.status&StatusDREIF != 0 && u.ctrla&CtrlADREIE != 0)
	u.cpuint.SetPending(u.vector, pending)
}

// InjectRX delivers a byte from an external stimulus (an event script's
// USART-target line) as though it had been received on the wire.
func (u *USART) InjectRX(b byte) {
	u.rxdata = b
	u.rxReady = true
	u.status |= StatusRXCIF
	u.updateIRQ()
}

func (u *USART) Read(reg uint8) uint8 {
	switch reg {
	case RegRXDATAL:
		u.status &^= StatusRXCIF
		u.rxReady = false
		u.updateIRQ()
		return u.rxdata
	case RegSTATUS:
		return u.status
	case RegCTRLA:
		return u.ctrla
	case RegCTRLB:
		return u.ctrlb
	case RegCTRLC:
		return u.ctrlc
	case RegBAUDL:
		return uint8(u.baud)
	case RegBAUDH:
		return uint8(u.baud >> 8)
	}
	return 0
}

func (u *USART) Write(reg uint8, val uint8) {
	switch reg {
	case RegTXDATAL:
		if !u.txEnabled() {
			return
		}
		if u.shiftBusy {
			// Shift register still clocking out the previous byte: queue
			// this one in the TXDATAL buffer rather than clobbering it.
			u.txBuf = val
			u.txBufFull = true
			u.status &^= StatusDREIF
		} else {
			// Shift register idle: the byte goes straight through, so the
			// buffer is free again immediately.
			u.shiftData = val
			u.shiftBusy = true
			u.shiftCountdown = u.cyclesPerByte()
			u.status &^= StatusTXCIF
			u.status |= StatusDREIF
		}
	case RegSTATUS:
		u.status &^= val & (StatusRXCIF | StatusTXCIF)
	case RegCTRLA:
		u.ctrla = val
	case RegCTRLB:
		u.ctrlb = val
	case RegCTRLC:
		u.ctrlc = val
	case RegBAUDL:
		u.baud = u.baud&0xFF00 | uint16(val)
	case RegBAUDH:
		u.baud = u.baud&0x00FF | uint16(val)<<8
	default:
		return
	}
	u.updateIRQ()
}
