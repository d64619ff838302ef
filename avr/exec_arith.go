package avr

// Two-register and immediate ALU instructions. SREG flag math follows the
// ATtiny1626 instruction-set datasheet tables; helper names (carryCheck,
// overflowCheck, halfCarryCheck) extend cpu.go's zeroCheck/negativeCheck
// convention.

func (c *Chip) carryCheck(set bool)     { c.flagWrite(FlagC, set) }
func (c *Chip) overflowCheck(set bool)  { c.flagWrite(FlagV, set) }
func (c *Chip) halfCarryCheck(set bool) { c.flagWrite(FlagH, set) }

// bit reports whether bit n of v is set.
func bit(v uint8, n uint) bool { return v&(1<<n) != 0 }

// finishAdd applies the datasheet ADD/ADC flag formulas given the two
// operands and the (already wrapped) 8-bit result.
func (c *Chip) finishAdd(d, r, res uint8) {
	d3, r3, s3 := bit(d, 3), bit(r, 3), bit(res, 3)
	d7, r7, s7 := bit(d, 7), bit(r, 7), bit(res, 7)
	c.halfCarryCheck((d3 && r3) || (r3 && !s3) || (!s3 && d3))
	c.carryCheck((d7 && r7) || (r7 && !s7) || (!s7 && d7))
	c.overflowCheck((d7 && r7 && !s7) || (!d7 && !r7 && s7))
	c.negativeCheck(res)
	c.zeroCheck(res)
	c.signCheck()
}

// finishSub applies the datasheet SUB/SUBI/CP/CPI flag formulas. Callers
// that implement SBC/SBCI/CPC additionally restore the Z flag themselves
// (Z must only clear, never re-set, across a borrow chain).
func (c *Chip) finishSub(d, r, res uint8) {
	d3, r3, s3 := bit(d, 3), bit(r, 3), bit(res, 3)
	d7, r7, s7 := bit(d, 7), bit(r, 7), bit(res, 7)
	c.halfCarryCheck((!d3 && r3) || (r3 && s3) || (s3 && !d3))
	c.carryCheck((!d7 && r7) || (r7 && s7) || (s7 && !d7))
	c.overflowCheck((d7 && !r7 && !s7) || (!d7 && r7 && s7))
	c.negativeCheck(res)
	c.zeroCheck(res)
	c.signCheck()
}

// finishSubCarry is finishSub plus the "Z only clears, never sets" rule
// used by SBC/SBCI/CPC so a multi-byte borrow chain reads correctly.
func (c *Chip) finishSubCarry(d, r, res uint8) {
	wasZero := c.flagTest(FlagZ)
	c.finishSub(d, r, res)
	if res != 0 {
		c.flagClear(FlagZ)
	} else {
		c.flagWrite(FlagZ, wasZero)
	}
}

func (c *Chip) carryIn() uint8 {
	if c.flagTest(FlagC) {
		return 1
	}
	return 0
}

// iADD: Rd <- Rd + Rr.
func (c *Chip) iADD(op uint16) (int, error) {
	d, r := rd(op), rr(op)
	dv, rv := c.r[d], c.r[r]
	res := dv + rv
	c.r[d] = res
	c.finishAdd(dv, rv, res)
	return 1, nil
}

// iADC: Rd <- Rd + Rr + C.
func (c *Chip) iADC(op uint16) (int, error) {
	d, r := rd(op), rr(op)
	dv, rv := c.r[d], c.r[r]
	res := dv + rv + c.carryIn()
	c.r[d] = res
	c.finishAdd(dv, rv, res)
	return 1, nil
}

// iSUB: Rd <- Rd - Rr.
func (c *Chip) iSUB(op uint16) (int, error) {
	d, r := rd(op), rr(op)
	dv, rv := c.r[d], c.r[r]
	res := dv - rv
	c.r[d] = res
	c.finishSub(dv, rv, res)
	return 1, nil
}

// iSBC: Rd <- Rd - Rr - C.
func (c *Chip) iSBC(op uint16) (int, error) {
	d, r := rd(op), rr(op)
	dv, rv := c.r[d], c.r[r]
	res := dv - rv - c.carryIn()
	c.r[d] = res
	c.finishSubCarry(dv, rv, res)
	return 1, nil
}

// iCP: compare Rd,Rr (sets flags as SUB, discards result).
func (c *Chip) iCP(op uint16) (int, error) {
	d, r := rd(op), rr(op)
	dv, rv := c.r[d], c.r[r]
	c.finishSub(dv, rv, dv-rv)
	return 1, nil
}

// iCPC: compare Rd,Rr with carry-in (sets flags as SBC, discards result).
func (c *Chip) iCPC(op uint16) (int, error) {
	d, r := rd(op), rr(op)
	dv, rv := c.r[d], c.r[r]
	c.finishSubCarry(dv, rv, dv-rv-c.carryIn())
	return 1, nil
}

// iCPI: compare Rd (r16-31) against an 8-bit immediate.
func (c *Chip) iCPI(op uint16) (int, error) {
	d := rd16(op)
	dv, kv := c.r[d], k8(op)
	c.finishSub(dv, kv, dv-kv)
	return 1, nil
}

// iSBCI: Rd <- Rd - K - C, Rd in r16-31.
func (c *Chip) iSBCI(op uint16) (int, error) {
	d := rd16(op)
	dv, kv := c.r[d], k8(op)
	res := dv - kv - c.carryIn()
	c.r[d] = res
	c.finishSubCarry(dv, kv, res)
	return 1, nil
}

// iSUBI: Rd <- Rd - K, Rd in r16-31.
func (c *Chip) iSUBI(op uint16) (int, error) {
	d := rd16(op)
	dv, kv := c.r[d], k8(op)
	res := dv - kv
	c.r[d] = res
	c.finishSub(dv, kv, res)
	return 1, nil
}

func (c *Chip) finishLogic(res uint8) {
	c.flagClear(FlagV)
	c.negativeCheck(res)
	c.zeroCheck(res)
	c.signCheck()
}

// iAND: Rd <- Rd & Rr.
func (c *Chip) iAND(op uint16) (int, error) {
	d, r := rd(op), rr(op)
	res := c.r[d] & c.r[r]
	c.r[d] = res
	c.finishLogic(res)
	return 1, nil
}

// iANDI: Rd <- Rd & K, Rd in r16-31.
func (c *Chip) iANDI(op uint16) (int, error) {
	d := rd16(op)
	res := c.r[d] & k8(op)
	c.r[d] = res
	c.finishLogic(res)
	return 1, nil
}

// iOR: Rd <- Rd | Rr.
func (c *Chip) iOR(op uint16) (int, error) {
	d, r := rd(op), rr(op)
	res := c.r[d] | c.r[r]
	c.r[d] = res
	c.finishLogic(res)
	return 1, nil
}

// iORI: Rd <- Rd | K, Rd in r16-31.
func (c *Chip) iORI(op uint16) (int, error) {
	d := rd16(op)
	res := c.r[d] | k8(op)
	c.r[d] = res
	c.finishLogic(res)
	return 1, nil
}

// iEOR: Rd <- Rd ^ Rr.
func (c *Chip) iEOR(op uint16) (int, error) {
	d, r := rd(op), rr(op)
	res := c.r[d] ^ c.r[r]
	c.r[d] = res
	c.finishLogic(res)
	return 1, nil
}

// iCOM: Rd <- 0xFF - Rd (one's complement). Always sets C.
func (c *Chip) iCOM(op uint16) (int, error) {
	d := rd(op)
	res := 0xFF - c.r[d]
	c.r[d] = res
	c.finishLogic(res)
	c.carryCheck(true)
	return 1, nil
}

// iNEG: Rd <- 0 - Rd (two's complement).
func (c *Chip) iNEG(op uint16) (int, error) {
	d := rd(op)
	dv := c.r[d]
	res := uint8(0) - dv
	c.r[d] = res
	c.halfCarryCheck(bit(res, 3) || bit(dv, 3))
	c.overflowCheck(res == 0x80)
	c.negativeCheck(res)
	c.zeroCheck(res)
	c.signCheck()
	c.carryCheck(res != 0)
	return 1, nil
}

// iINC: Rd <- Rd + 1. Overflow sets only when Rd was 0x7F; carry unaffected.
func (c *Chip) iINC(op uint16) (int, error) {
	d := rd(op)
	dv := c.r[d]
	res := dv + 1
	c.r[d] = res
	c.overflowCheck(dv == 0x7F)
	c.negativeCheck(res)
	c.zeroCheck(res)
	c.signCheck()
	return 1, nil
}

// iDEC: Rd <- Rd - 1. Overflow sets only when Rd was 0x80; carry unaffected.
func (c *Chip) iDEC(op uint16) (int, error) {
	d := rd(op)
	dv := c.r[d]
	res := dv - 1
	c.r[d] = res
	c.overflowCheck(dv == 0x80)
	c.negativeCheck(res)
	c.zeroCheck(res)
	c.signCheck()
	return 1, nil
}

// adiwSbiwPair maps the ADIW/SBIW 2-bit pair-select field to the low
// register index of one of {r24:25, r26:27, r28:29, r30:31}.
func adiwSbiwPair(op uint16) int {
	return 24 + 2*int((op>>4)&0x3)
}

// adiwSbiwImm extracts the 6-bit immediate (0-63) from an ADIW/SBIW
// opcode: K = op[7:6]<<4 | op[3:0].
func adiwSbiwImm(op uint16) uint16 {
	return uint16(op>>2)&0x30 | uint16(op&0x0F)
}

func (c *Chip) getWordPair(lo int) uint16 {
	return uint16(c.r[lo+1])<<8 | uint16(c.r[lo])
}

func (c *Chip) setWordPair(lo int, v uint16) {
	c.r[lo] = uint8(v)
	c.r[lo+1] = uint8(v >> 8)
}

// iADIW: word <- word + K (K in 0-63). 2 cycles.
func (c *Chip) iADIW(op uint16) (int, error) {
	lo := adiwSbiwPair(op)
	before := c.getWordPair(lo)
	after := before + adiwSbiwImm(op)
	c.setWordPair(lo, after)
	before7, after7 := bit(uint8(before>>8), 7), bit(uint8(after>>8), 7)
	c.overflowCheck(!before7 && after7)
	c.carryCheck(before7 && !after7)
	c.negativeCheck(uint8(after >> 8))
	c.zeroCheck(uint8(after) | uint8(after>>8))
	c.signCheck()
	return 2, nil
}

// iSBIW: word <- word - K (K in 0-63). 2 cycles.
func (c *Chip) iSBIW(op uint16) (int, error) {
	lo := adiwSbiwPair(op)
	before := c.getWordPair(lo)
	after := before - adiwSbiwImm(op)
	c.setWordPair(lo, after)
	before7, after7 := bit(uint8(before>>8), 7), bit(uint8(after>>8), 7)
	c.overflowCheck(before7 && !after7)
	c.carryCheck(!before7 && after7)
	c.negativeCheck(uint8(after >> 8))
	c.zeroCheck(uint8(after) | uint8(after>>8))
	c.signCheck()
	return 2, nil
}

// iMUL: R1:R0 <- Rd * Rr (unsigned x unsigned). 2 cycles.
func (c *Chip) iMUL(op uint16) (int, error) {
	d, r := rd(op), rr(op)
	res := uint16(c.r[d]) * uint16(c.r[r])
	c.r[0] = uint8(res)
	c.r[1] = uint8(res >> 8)
	c.carryCheck(res&0x8000 != 0)
	c.zeroCheck(uint8(res) | uint8(res>>8))
	return 2, nil
}

// mulsRd/mulsRr extract the 4-bit r16-31 operand fields used by MULS and
// the 3-bit r16-23 fields used by MULSU/FMUL/FMULS/FMULSU.
func mulsRd(op uint16) int { return int(op>>4)&0xF + 16 }
func mulsRr(op uint16) int { return int(op&0xF) + 16 }
func fmulRd(op uint16) int { return int(op>>4)&0x7 + 16 }
func fmulRr(op uint16) int { return int(op&0x7) + 16 }

// iMULS: R1:R0 <- Rd * Rr (signed x signed), Rd,Rr in r16-31. 2 cycles.
func (c *Chip) iMULS(op uint16) (int, error) {
	d, r := mulsRd(op), mulsRr(op)
	res := int16(int8(c.r[d])) * int16(int8(c.r[r]))
	c.r[0] = uint8(res)
	c.r[1] = uint8(res >> 8)
	c.carryCheck(res < 0)
	c.zeroCheck(uint8(res) | uint8(res>>8))
	return 2, nil
}

// iMULSU: R1:R0 <- Rd * Rr (signed x unsigned), Rd,Rr in r16-23. 2 cycles.
func (c *Chip) iMULSU(op uint16) (int, error) {
	d, r := fmulRd(op), fmulRr(op)
	res := int16(int8(c.r[d])) * int16(uint16(c.r[r]))
	c.r[0] = uint8(res)
	c.r[1] = uint8(res >> 8)
	c.carryCheck(res < 0)
	c.zeroCheck(uint8(res) | uint8(res>>8))
	return 2, nil
}

func (c *Chip) storeFmulResult(res int16) {
	doubled := uint16(res) << 1
	c.r[0] = uint8(doubled)
	c.r[1] = uint8(doubled >> 8)
	c.carryCheck(res < 0)
	c.zeroCheck(c.r[0] | c.r[1])
}

// iFMUL: R1:R0 <- (Rd * Rr) << 1, unsigned x unsigned, Rd,Rr in r16-23.
func (c *Chip) iFMUL(op uint16) (int, error) {
	d, r := fmulRd(op), fmulRr(op)
	res := int16(uint16(c.r[d]) * uint16(c.r[r]))
	c.storeFmulResult(res)
	return 2, nil
}

// iFMULS: R1:R0 <- (Rd * Rr) << 1, signed x signed, Rd,Rr in r16-23.
func (c *Chip) iFMULS(op uint16) (int, error) {
	d, r := fmulRd(op), fmulRr(op)
	res := int16(int8(c.r[d])) * int16(int8(c.r[r]))
	c.storeFmulResult(res)
	return 2, nil
}

// iFMULSU: R1:R0 <- (Rd * Rr) << 1, signed x unsigned, Rd,Rr in r16-23.
func (c *Chip) iFMULSU(op uint16) (int, error) {
	d, r := fmulRd(op), fmulRr(op)
	res := int16(int8(c.r[d])) * int16(uint16(c.r[r]))
	c.storeFmulResult(res)
	return 2, nil
}
