package avr

// Control-flow instructions: unconditional jumps/calls (relative,
// indirect, absolute), RET/RETI, and every skip/branch-on-condition
// instruction. Cycle costs follow SPEC_FULL.md's Open Question decision:
// taken branches/skips cost one more cycle than not-taken, and skipping
// a 32-bit instruction costs one more again.

// signExtend12 sign-extends a 12-bit word offset (RJMP/RCALL).
func signExtend12(k uint16) int16 {
	if k&0x0800 != 0 {
		return int16(k) - 0x1000
	}
	return int16(k)
}

// signExtend7 sign-extends a 7-bit word offset (BRBS/BRBC).
func signExtend7(k uint16) int16 {
	if k&0x0040 != 0 {
		return int16(k) - 0x80
	}
	return int16(k)
}

// iRJMP: PC <- PC + k (k signed 12-bit word offset). 2 cycles.
func (c *Chip) iRJMP(op uint16) (int, error) {
	k := signExtend12(op & 0x0FFF)
	c.pc = uint16(int32(c.pc) + int32(k))
	return 2, nil
}

// iRCALL: push return PC, then PC <- PC + k. 3 cycles.
func (c *Chip) iRCALL(op uint16) (int, error) {
	k := signExtend12(op & 0x0FFF)
	c.push16(c.pc)
	c.pc = uint16(int32(c.pc) + int32(k))
	return 3, nil
}

// iIJMP: PC <- Z. 2 cycles.
func (c *Chip) iIJMP() (int, error) {
	c.pc = c.getZ()
	return 2, nil
}

// iICALL: push return PC, then PC <- Z. 3 cycles.
func (c *Chip) iICALL() (int, error) {
	c.push16(c.pc)
	c.pc = c.getZ()
	return 3, nil
}

// iJMP: PC <- k (absolute word address, the second opcode word). 3
// cycles. JMP's first word carries address bits above bit 15 for parts
// with more than 64K words of flash; this core has a 16-bit PC (no
// RAMPZ/EIND, matching the ATtiny1626's reduced core and its 8K-word
// flash), so those high bits are always zero for valid firmware and are
// not decoded.
func (c *Chip) iJMP(op uint16) (int, error) {
	c.pc = c.fetchExt()
	return 3, nil
}

// iCALL: push return PC, then PC <- k (absolute word address). 4 cycles.
func (c *Chip) iCALL(op uint16) (int, error) {
	ext := c.fetchExt()
	c.push16(c.pc)
	c.pc = ext
	return 4, nil
}

// iRET: PC <- pop16(). 4 cycles.
func (c *Chip) iRET() (int, error) {
	c.pc = c.pop16()
	return 4, nil
}

// iRETI: PC <- pop16(); SREG.I <- 1. 4 cycles.
func (c *Chip) iRETI() (int, error) {
	c.pc = c.pop16()
	c.flagSet(FlagI)
	return 4, nil
}

// isTwoWordOpcode reports whether op begins a 32-bit instruction (JMP,
// CALL, LDS, STS), so skip instructions can charge the extra cycle.
func isTwoWordOpcode(op uint16) bool {
	if op&0xFE0E == 0x940C || op&0xFE0E == 0x940E {
		return true // JMP / CALL
	}
	if op&0xFE0F == 0x9000 || op&0xFE0F == 0x9200 {
		return true // LDS / STS
	}
	return false
}

// skipCost returns the cycle cost of a skip instruction given whether it
// skipped, by peeking the next opcode without committing the fetch
// (peeking is safe: a skipped instruction's operands are never read by
// the CPU, only its width needs to be known).
func (c *Chip) skipCost(skip bool) int {
	if !skip {
		return 1
	}
	next := c.flash.FetchWord(c.pc)
	if isTwoWordOpcode(next) {
		c.pc += 2
		return 3
	}
	c.pc++
	return 2
}

// iCPSE: skip next instruction if Rd == Rr.
func (c *Chip) iCPSE(op uint16) (int, error) {
	d, r := rd(op), rr(op)
	return c.skipCost(c.r[d] == c.r[r]), nil
}

// iSBRC: skip next instruction if bit b of Rr is clear.
func (c *Chip) iSBRC(op uint16) (int, error) {
	return c.skipCost(!bit(c.r[rd(op)], uint(op&0x7))), nil
}

// iSBRS: skip next instruction if bit b of Rr is set.
func (c *Chip) iSBRS(op uint16) (int, error) {
	return c.skipCost(bit(c.r[rd(op)], uint(op&0x7))), nil
}

// sbicAddr extracts the 5-bit I/O register address used by SBI/CBI/
// SBIC/SBIS, mapped onto the data-space window starting at 0x20.
func sbicAddr(op uint16) uint16 { return uint16(op>>3) & 0x1F }

// iSBIC: skip next instruction if bit b of I/O register A is clear.
func (c *Chip) iSBIC(op uint16) (int, error) {
	val := c.bus.Read(0x20 + sbicAddr(op))
	return c.skipCost(!bit(val, uint(op&0x7))), nil
}

// iSBIS: skip next instruction if bit b of I/O register A is set.
func (c *Chip) iSBIS(op uint16) (int, error) {
	val := c.bus.Read(0x20 + sbicAddr(op))
	return c.skipCost(bit(val, uint(op&0x7))), nil
}

// iBRBS: branch if SREG bit s is set.
func (c *Chip) iBRBS(op uint16) (int, error) {
	s := uint(op & 0x7)
	if !bit(c.sreg, s) {
		return 1, nil
	}
	k := signExtend7((op >> 3) & 0x7F)
	c.pc = uint16(int32(c.pc) + int32(k))
	return 2, nil
}

// iBRBC: branch if SREG bit s is clear.
func (c *Chip) iBRBC(op uint16) (int, error) {
	s := uint(op & 0x7)
	if bit(c.sreg, s) {
		return 1, nil
	}
	k := signExtend7((op >> 3) & 0x7F)
	c.pc = uint16(int32(c.pc) + int32(k))
	return 2, nil
}
