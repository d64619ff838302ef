package avr

// execute decodes and runs a single 16-bit opcode word (consuming a
// second word from flash for 32-bit instructions as needed) and returns
// the cycle cost of the instruction per the ATtiny1626 (reduced core,
// no RAMPZ/EIND) timing table.
//
// The dispatch order below starts from the most specific opcode classes
// (exact 16-bit matches for zero-operand instructions) down to the
// broadest two-register ALU class, mirroring how disassemble.Step
// organizes its opcode switch by byte value.
func (c *Chip) execute(op uint16) (int, error) {
	switch {
	case op == 0x0000: // NOP
		return 1, nil
	case op == 0x9598: // BREAK
		return 1, nil
	case op == 0x9588: // SLEEP
		c.sleeping = true
		return 1, nil
	case op == 0x95A8: // WDR
		if c.onWDR != nil {
			c.onWDR()
		}
		return 1, nil
	case op == 0x9509: // ICALL
		return c.iICALL()
	case op == 0x9409: // IJMP
		return c.iIJMP()
	case op == 0x9508: // RET
		return c.iRET()
	case op == 0x9518: // RETI
		return c.iRETI()
	}

	// 32-bit JMP/CALL: 1001 010k kkkk 110k / 1001 010k kkkk 111k
	if op&0xFE0E == 0x940C {
		return c.iJMP(op)
	}
	if op&0xFE0E == 0x940E {
		return c.iCALL(op)
	}

	switch op & 0xFC00 {
	case 0x0400: // CPC
		return c.iCPC(op)
	case 0x0800: // SBC
		return c.iSBC(op)
	case 0x0C00: // ADD / LSL alias
		return c.iADD(op)
	case 0x1000: // CPSE
		return c.iCPSE(op)
	case 0x1400: // CP
		return c.iCP(op)
	case 0x1800: // SUB
		return c.iSUB(op)
	case 0x1C00: // ADC / ROL alias
		return c.iADC(op)
	case 0x2000: // AND / TST alias
		return c.iAND(op)
	case 0x2400: // EOR / CLR alias
		return c.iEOR(op)
	case 0x2800: // OR
		return c.iOR(op)
	case 0x2C00: // MOV
		return c.iMOV(op)
	}

	switch op & 0xF000 {
	case 0x3000: // CPI
		return c.iCPI(op)
	case 0x4000: // SBCI
		return c.iSBCI(op)
	case 0x5000: // SUBI
		return c.iSUBI(op)
	case 0x6000: // ORI / SBR alias
		return c.iORI(op)
	case 0x7000: // ANDI / CBR alias
		return c.iANDI(op)
	case 0xA000, 0x8000: // LDD/STD with displacement (Y+q, Z+q); q=0 is plain LD/ST Y,Z
		if op&0x0200 == 0 {
			return c.iLDDisp(op)
		}
		return c.iSTDisp(op)
	case 0xC000: // RJMP
		return c.iRJMP(op)
	case 0xD000: // RCALL
		return c.iRCALL(op)
	case 0xE000: // LDI
		return c.iLDI(op)
	case 0xF000:
		return c.executeF(op)
	}

	if op&0xFC00 == 0x9C00 { // MUL
		return c.iMUL(op)
	}

	if op&0xFF00 == 0x9600 {
		return c.iADIW(op)
	}
	if op&0xFF00 == 0x9700 {
		return c.iSBIW(op)
	}
	if op&0xFF00 == 0x9800 {
		return c.iCBI(op)
	}
	if op&0xFF00 == 0x9900 {
		return c.iSBIC(op)
	}
	if op&0xFF00 == 0x9A00 {
		return c.iSBI(op)
	}
	if op&0xFF00 == 0x9B00 {
		return c.iSBIS(op)
	}
	if op&0xFC00 == 0xB000 {
		return c.iIN(op)
	}
	if op&0xFC00 == 0xB800 {
		return c.iOUT(op)
	}

	if op&0xFF00 == 0x0100 {
		return c.iMOVW(op)
	}
	if op&0xFF00 == 0x0200 {
		return c.iMULS(op)
	}
	if op&0xFF88 == 0x0300 {
		return c.iMULSU(op)
	}
	if op&0xFF88 == 0x0308 {
		return c.iFMUL(op)
	}
	if op&0xFF88 == 0x0380 {
		return c.iFMULS(op)
	}
	if op&0xFF88 == 0x0388 {
		return c.iFMULSU(op)
	}

	// 1001 00xd dddd xxxx load/store family (LDS/STS/LD/ST/LPM/PUSH/POP/XCH/LAS/LAC/LAT)
	if op&0xFC00 == 0x9000 {
		return c.execute9(op)
	}

	// 1001 010d dddd xxxx single-operand ALU family (COM/NEG/SWAP/INC/ASR/LSR/ROR/DEC/BSET/BCLR)
	if op&0xFE00 == 0x9400 {
		return c.executeSingle(op)
	}

	return 0, IllegalInstruction{PC: c.pc - 1, Word: op}
}

// executeF decodes the 1111 xxxx family: conditional branches, BLD/BST,
// SBRC/SBRS.
func (c *Chip) executeF(op uint16) (int, error) {
	switch op & 0xFC00 {
	case 0xF000:
		return c.iBRBS(op)
	case 0xF400:
		return c.iBRBC(op)
	case 0xF800:
		if op&0x0200 == 0 {
			return c.iBLD(op)
		}
		return c.iBST(op)
	case 0xFC00:
		if op&0x0200 == 0 {
			return c.iSBRC(op)
		}
		return c.iSBRS(op)
	}
	return 0, IllegalInstruction{PC: c.pc - 1, Word: op}
}

// execute9 decodes the 1001 00xd dddd xxxx family.
func (c *Chip) execute9(op uint16) (int, error) {
	sub := op & 0x0F
	isStore := op&0x0200 != 0
	switch {
	case sub == 0x0:
		if isStore {
			return c.iSTS(op)
		}
		return c.iLDS(op)
	case sub == 0x1:
		if isStore {
			return c.iSTPostInc(op, zReg)
		}
		return c.iLDPostInc(op, zReg)
	case sub == 0x2:
		if isStore {
			return c.iSTPreDec(op, zReg)
		}
		return c.iLDPreDec(op, zReg)
	case sub == 0x4 && !isStore:
		return c.iLPM(op, false)
	case sub == 0x5 && !isStore:
		return c.iLPM(op, true)
	case sub == 0x4 && isStore:
		return c.iXCH(op)
	case sub == 0x5 && isStore:
		return c.iLAS(op)
	case sub == 0x6 && isStore:
		return c.iLAC(op)
	case sub == 0x7 && isStore:
		return c.iLAT(op)
	case sub == 0x9:
		if isStore {
			return c.iSTPostInc(op, yReg)
		}
		return c.iLDPostInc(op, yReg)
	case sub == 0xA:
		if isStore {
			return c.iSTPreDec(op, yReg)
		}
		return c.iLDPreDec(op, yReg)
	case sub == 0xC:
		if isStore {
			return c.iSTIndirect(op, xReg)
		}
		return c.iLDIndirect(op, xReg)
	case sub == 0xD:
		if isStore {
			return c.iSTPostInc(op, xReg)
		}
		return c.iLDPostInc(op, xReg)
	case sub == 0xE:
		if isStore {
			return c.iSTPreDec(op, xReg)
		}
		return c.iLDPreDec(op, xReg)
	case sub == 0xF:
		if isStore {
			return c.iPUSH(op)
		}
		return c.iPOP(op)
	}
	return 0, IllegalInstruction{PC: c.pc - 1, Word: op}
}

// executeSingle decodes the 1001 010d dddd xxxx single-register ALU
// family plus BSET/BCLR (which reuse the same top bits with d folded
// into the s field).
func (c *Chip) executeSingle(op uint16) (int, error) {
	if op&0xFF8F == 0x9408 {
		return c.iBSET(op)
	}
	if op&0xFF8F == 0x9488 {
		return c.iBCLR(op)
	}
	switch op & 0x000F {
	case 0x0:
		return c.iCOM(op)
	case 0x1:
		return c.iNEG(op)
	case 0x2:
		return c.iSWAP(op)
	case 0x3:
		return c.iINC(op)
	case 0x5:
		return c.iASR(op)
	case 0x6:
		return c.iLSR(op)
	case 0x7:
		return c.iROR(op)
	case 0xA:
		return c.iDEC(op)
	}
	return 0, IllegalInstruction{PC: c.pc - 1, Word: op}
}

// register pair selector for indirect addressing helpers.
type ptrReg int

const (
	xReg ptrReg = iota
	yReg
	zReg
)

func (c *Chip) getPtr(p ptrReg) uint16 {
	switch p {
	case xReg:
		return c.getX()
	case yReg:
		return c.getY()
	default:
		return c.getZ()
	}
}

func (c *Chip) setPtr(p ptrReg, v uint16) {
	switch p {
	case xReg:
		c.setX(v)
	case yReg:
		c.setY(v)
	default:
		c.setZ(v)
	}
}

// rd extracts the 5-bit Rd field common to the 0000xx/0001xx/0010xx ALU
// classes and the 1001 00/01 load/store/single-op classes.
func rd(op uint16) int { return int(op>>4) & 0x1F }

// rr extracts the 5-bit Rr field for the two-register ALU classes.
func rr(op uint16) int { return int((op>>5)&0x10) | int(op&0x0F) }

// rd16 extracts a 4-bit Rd+16 field (range 16-31) for the immediate ALU
// classes (CPI/SBCI/SUBI/ORI/ANDI/LDI).
func rd16(op uint16) int { return int(op>>4)&0x0F + 16 }

// k8 extracts the 8-bit immediate for the immediate ALU classes.
func k8(op uint16) uint8 { return uint8(op>>4)&0xF0 | uint8(op&0x0F) }
