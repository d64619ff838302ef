// Package twi models TWI0 (the ATtiny1626's I2C-compatible peripheral)
// at the same reduced byte-at-a-time fidelity as package spi: address
// and data phases complete as single register writes, with MASTER's
// WIF/RIF status bits raised on the following Tick rather than by
// modeling SCL/SDA bit timing.
package twi

import "github.com/cab202/avremu/cpuint"

const (
	RegMCTRLA  = 0x03
	RegMSTATUS = 0x05
	RegMADDR   = 0x08
	RegMDATA   = 0x09
)

const (
	MStatusWIF = 1 << 6
	MStatusRIF = 1 << 7
	MStatusBUSSTATE_IDLE = 0x01
)

// Peer is the addressed device a master transfer reaches; nil means no
// device acks (every transfer returns 0xFF and sets no ack bit).
type Peer interface {
	// Respond is called once per address or data phase with the address
	// byte (including R/W bit) and the last written data byte, and
	// returns the byte read back for a read transfer (ignored for writes).
	Respond(addr uint8, writeData uint8) (readData uint8, ack bool)
}

type TWI struct {
	cpuint *cpuint.Controller
	vector int
	peer   Peer

	mctrla  uint8
	mstatus uint8
	maddr   uint8
	mdata   uint8

	pending bool
	isRead  bool
}

func New(cpuint *cpuint.Controller, vector int, peer Peer) *TWI {
	t := &TWI{cpuint: cpuint, vector: vector, peer: peer}
	t.Reset()
	return t
}

func (t *TWI) Reset() {
	t.mctrla = 0
	t.mstatus = MStatusBUSSTATE_IDLE
	t.maddr = 0
	t.mdata = 0
	t.pending = false
	t.updateIRQ()
}

func (t *TWI) Tick(cycles int) {
	if !t.pending {
		return
	}
	t.pending = false
	var ack bool
	rd := uint8(0xFF)
	if t.peer != nil {
		rd, ack = t.peer.Respond(t.maddr, t.mdata)
	}
	if t.isRead {
		t.mdata = rd
	}
	if !ack {
		t.mstatus |= 0x10 // RXACK: NACK received
	} else {
		t.mstatus &^= 0x10
	}
	if t.isRead {
		t.mstatus |= MStatusRIF
	} else {
		t.mstatus |= MStatusWIF
	}
	t.updateIRQ()
}

func (t *TWI) updateIRQ() {
	if t.cpuint == nil {
		return
	}
	t.cpuint.SetEnabled(t.vector, true)
	pending := t.mctrla&0x80 != 0 && t.mstatus&(MStatusWIF|MStatusRIF) != 0
	t.cpuint.SetPending(t.vector, pending)
}

func (t *TWI) Read(reg uint8) uint8 {
	switch reg {
	case RegMCTRLA:
		return t.mctrla
	case RegMSTATUS:
		return t.mstatus
	case RegMADDR:
		return t.maddr
	case RegMDATA:
		t.mstatus &^= MStatusRIF
		t.updateIRQ()
		return t.mdata
	}
	return 0
}

func (t *TWI) Write(reg uint8, val uint8) {
	switch reg {
	case RegMCTRLA:
		t.mctrla = val
	case RegMSTATUS:
		t.mstatus &^= val & (MStatusWIF | MStatusRIF)
	case RegMADDR:
		t.maddr = val
		t.isRead = val&0x01 != 0
		t.pending = true
	case RegMDATA:
		t.mdata = val
		t.mstatus &^= MStatusWIF
		t.pending = true
		t.isRead = false
	default:
		return
	}
	t.updateIRQ()
}
