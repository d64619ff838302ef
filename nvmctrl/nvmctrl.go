// Package nvmctrl models the NVM controller's command state machine:
// idle -> executing -> idle. A CTRLA command written while the CCP
// window is open goes straight to executing; there are no separate
// unlocked or ready stages, and StateCommandSet is never entered. It is
// gated by CCP the way
// clkctrl's MCLKCTRLA is, writing into the backing flash/EEPROM byte
// slices the avr.Flash interface also reads from. It follows the
// teacher's pia6532 "shadow state applied on completion" idiom: a
// command latches immediately but its effect (the actual page
// write/erase) is only committed once Tick has counted down the
// datasheet's programming-time cycles.
package nvmctrl

import (
	"github.com/cab202/avremu/ccp"
	"github.com/cab202/avremu/cpuint"
)

// State is the NVM controller's command FSM state.
type State int

const (
	StateIdle State = iota
	StateCommandSet
	StateExecuting
)

// Commands (NVMCTRL.CTRLA), the subset this simulator supports.
const (
	CmdNone       uint8 = 0x00
	CmdPageWrite  uint8 = 0x01
	CmdPageErase  uint8 = 0x02
	CmdPageEraseWrite uint8 = 0x03
	CmdChipErase  uint8 = 0x04
	CmdEEPageErase uint8 = 0x06
)

const (
	RegCTRLA  = 0x00
	RegSTATUS = 0x02
	RegINTCTRL = 0x03
	RegINTFLAGS = 0x04
	RegDATAL  = 0x06
	RegDATAH  = 0x07
	RegADDRL  = 0x08
	RegADDRH  = 0x09
)

const pageSize = 64 // bytes; matches the ATtiny1626's flash page size
const writeCycles = 50

// Controller drives flash and eeprom byte slices shared with avr.Flash
// and the data bus's SRAM/EEPROM regions.
type Controller struct {
	gate   ccp.Gate
	cpuint *cpuint.Controller
	vector int

	flash []uint8
	eeprom []uint8

	ctrla, status, intctrl, intflags uint8
	addr uint16

	state     State
	pending   uint8
	countdown int

	// stagedPage buffers bytes written via the flash page buffer before
	// a Page Write command commits them, per the datasheet's two-step
	// buffer-then-commit flash programming model.
	stagedPage map[uint16]uint8
}

// New constructs a Controller backed by the given flash and eeprom byte
// slices (owned by the caller, typically the machine package, and
// shared with the avr.Flash adapter and bus SRAM/EEPROM regions),
// raising the given vector on EEREADY/command-complete.
func New(gate ccp.Gate, cpuint *cpuint.Controller, vector int, flash, eeprom []uint8) *Controller {
	c := &Controller{gate: gate, cpuint: cpuint, vector: vector, flash: flash, eeprom: eeprom}
	c.Reset()
	return c
}

func (c *Controller) Reset() {
	c.ctrla, c.status, c.intctrl, c.intflags = 0, 0, 0, 0
	c.addr = 0
	c.state = StateIdle
	c.pending = CmdNone
	c.countdown = 0
	c.stagedPage = map[uint16]uint8{}
	c.updateIRQ()
}

// StageByte buffers a byte written to the flash address space while a
// page-write command is pending, per the datasheet's stage-then-commit
// model (a direct SRAM/EEPROM write bypasses this and is immediate).
func (c *Controller) StageByte(addr uint16, val uint8) {
	c.stagedPage[addr] = val
}

func (c *Controller) Tick(cycles int) {
	if c.state != StateExecuting {
		return
	}
	c.countdown -= cycles
	if c.countdown > 0 {
		return
	}
	c.commit()
	c.state = StateIdle
	c.status &^= 0x02 // BUSY
	c.intflags |= 0x01
	c.updateIRQ()
}

// updateIRQ folds INTFLAGS/INTCTRL into the shared controller's pending
// table, the same local-IE/IF product every other interrupt-capable
// peripheral here applies (CPUINT has no separate per-vector enable
// register on this part).
func (c *Controller) updateIRQ() {
	if c.cpuint == nil {
		return
	}
	c.cpuint.SetEnabled(c.vector, true)
	c.cpuint.SetPending(c.vector, c.intflags&c.intctrl != 0)
}

func (c *Controller) commit() {
	switch c.pending {
	case CmdPageWrite, CmdPageEraseWrite:
		base := c.addr - c.addr%pageSize
		if c.pending == CmdPageEraseWrite {
			for i := uint16(0); i < pageSize && int(base+i) < len(c.flash); i++ {
				c.flash[base+i] = 0xFF
			}
		}
		for a, v := range c.stagedPage {
			if int(a) < len(c.flash) {
				c.flash[a] = v
			}
		}
	case CmdPageErase:
		base := c.addr - c.addr%pageSize
		for i := uint16(0); i < pageSize && int(base+i) < len(c.flash); i++ {
			c.flash[base+i] = 0xFF
		}
	case CmdChipErase:
		for i := range c.flash {
			c.flash[i] = 0xFF
		}
	case CmdEEPageErase:
		for i := range c.eeprom {
			c.eeprom[i] = 0xFF
		}
	}
	c.stagedPage = map[uint16]uint8{}
}

// issue starts a protected command, honoring the CCP gate the same way
// clkctrl does.
func (c *Controller) issue(cmd uint8) {
	if c.gate != nil && !c.gate.CCPOpen() {
		return
	}
	if cmd == CmdNone {
		return
	}
	c.pending = cmd
	c.state = StateExecuting
	c.status |= 0x02
	c.countdown = writeCycles
}

func (c *Controller) Read(reg uint8) uint8 {
	switch reg {
	case RegCTRLA:
		return c.ctrla
	case RegSTATUS:
		return c.status
	case RegINTCTRL:
		return c.intctrl
	case RegINTFLAGS:
		return c.intflags
	case RegADDRL:
		return uint8(c.addr)
	case RegADDRH:
		return uint8(c.addr >> 8)
	}
	return 0
}

func (c *Controller) Write(reg uint8, val uint8) {
	switch reg {
	case RegCTRLA:
		c.ctrla = val & 0x07
		c.issue(c.ctrla)
	case RegINTCTRL:
		c.intctrl = val
		c.updateIRQ()
	case RegINTFLAGS:
		c.intflags &^= val
		c.updateIRQ()
	case RegADDRL:
		c.addr = c.addr&0xFF00 | uint16(val)
	case RegADDRH:
		c.addr = c.addr&0x00FF | uint16(val)<<8
	}
}
