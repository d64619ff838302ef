package avr

// Data transfer instructions: register moves, immediate loads, every
// LD/ST addressing mode, LDS/STS, LPM, stack push/pop, the atomic
// read-modify-write family (XCH/LAS/LAC/LAT), and IN/OUT.

// iMOV: Rd <- Rr.
func (c *Chip) iMOV(op uint16) (int, error) {
	c.r[rd(op)] = c.r[rr(op)]
	return 1, nil
}

// iMOVW: register-pair move, Rd+1:Rd <- Rr+1:Rr. Both fields select an
// even register via a 4-bit index doubled (op bits 7:4 and 3:0).
func (c *Chip) iMOVW(op uint16) (int, error) {
	d := int(op>>4) & 0xF * 2
	r := int(op&0xF) * 2
	c.r[d] = c.r[r]
	c.r[d+1] = c.r[r+1]
	return 1, nil
}

// iLDI: Rd <- K, Rd in r16-31.
func (c *Chip) iLDI(op uint16) (int, error) {
	c.r[rd16(op)] = k8(op)
	return 1, nil
}

// iLDS: Rd <- data[k16] (32-bit instruction, second word is the address).
// Reduced-core tinyAVR costs this 3 cycles (one more than classic AVR's
// LDS) because the second instruction word has to be fetched from the
// same program-memory port used for the data access.
func (c *Chip) iLDS(op uint16) (int, error) {
	addr := c.fetchExt()
	c.r[rd(op)] = c.bus.Read(addr)
	return 3, nil
}

// iSTS: data[k16] <- Rd (32-bit instruction, second word is the address).
// See iLDS: reduced-core tinyAVR costs this 3 cycles, not classic AVR's 2.
func (c *Chip) iSTS(op uint16) (int, error) {
	addr := c.fetchExt()
	c.bus.Write(addr, c.r[rd(op)])
	return 3, nil
}

// iLDPostInc: Rd <- data[ptr]; ptr <- ptr + 1.
func (c *Chip) iLDPostInc(op uint16, p ptrReg) (int, error) {
	addr := c.getPtr(p)
	c.r[rd(op)] = c.bus.Read(addr)
	c.setPtr(p, addr+1)
	return 2, nil
}

// iSTPostInc: data[ptr] <- Rd; ptr <- ptr + 1.
func (c *Chip) iSTPostInc(op uint16, p ptrReg) (int, error) {
	addr := c.getPtr(p)
	c.bus.Write(addr, c.r[rd(op)])
	c.setPtr(p, addr+1)
	return 2, nil
}

// iLDPreDec: ptr <- ptr - 1; Rd <- data[ptr].
func (c *Chip) iLDPreDec(op uint16, p ptrReg) (int, error) {
	addr := c.getPtr(p) - 1
	c.setPtr(p, addr)
	c.r[rd(op)] = c.bus.Read(addr)
	return 2, nil
}

// iSTPreDec: ptr <- ptr - 1; data[ptr] <- Rd.
func (c *Chip) iSTPreDec(op uint16, p ptrReg) (int, error) {
	addr := c.getPtr(p) - 1
	c.setPtr(p, addr)
	c.bus.Write(addr, c.r[rd(op)])
	return 2, nil
}

// iLDIndirect: Rd <- data[ptr], pointer unchanged (used only for X).
func (c *Chip) iLDIndirect(op uint16, p ptrReg) (int, error) {
	c.r[rd(op)] = c.bus.Read(c.getPtr(p))
	return 2, nil
}

// iSTIndirect: data[ptr] <- Rd, pointer unchanged (used only for X).
func (c *Chip) iSTIndirect(op uint16, p ptrReg) (int, error) {
	c.bus.Write(c.getPtr(p), c.r[rd(op)])
	return 2, nil
}

// ldStDispFields decodes the scattered-bit displacement family shared by
// LDD/STD Y+q and Z+q: pointer select (bit3), q in 0-63 (bits 13,11,10,2,1,0).
func ldStDispFields(op uint16) (p ptrReg, q uint16) {
	if op&0x0008 != 0 {
		p = yReg
	} else {
		p = zReg
	}
	q = (op&0x2000)>>8 | (op&0x0C00)>>7 | (op & 0x0007)
	return
}

// iLDDisp: Rd <- data[ptr+q] (Y+q or Z+q; q=0 is the plain LD Rd,Y/Z form).
func (c *Chip) iLDDisp(op uint16) (int, error) {
	p, q := ldStDispFields(op)
	c.r[rd(op)] = c.bus.Read(c.getPtr(p) + q)
	return 2, nil
}

// iSTDisp: data[ptr+q] <- Rd (Y+q or Z+q; q=0 is the plain ST Y/Z,Rd form).
func (c *Chip) iSTDisp(op uint16) (int, error) {
	p, q := ldStDispFields(op)
	c.bus.Write(c.getPtr(p)+q, c.r[rd(op)])
	return 2, nil
}

// iLPM: Rd <- program_memory[Z] (or Z+, advancing Z). extended selects
// the post-increment form (LPM Rd, Z+) versus the fixed form (LPM Rd, Z).
func (c *Chip) iLPM(op uint16, extended bool) (int, error) {
	z := c.getZ()
	c.r[rd(op)] = c.flash.ReadByte(uint32(z))
	if extended {
		c.setZ(z + 1)
	}
	return 3, nil
}

// iXCH: exchange Rd with data[Z].
func (c *Chip) iXCH(op uint16) (int, error) {
	z := c.getZ()
	d := rd(op)
	mem := c.bus.Read(z)
	c.bus.Write(z, c.r[d])
	c.r[d] = mem
	return 2, nil
}

// iLAS: data[Z] <- data[Z] | Rd; Rd <- original data[Z] (load-and-set).
func (c *Chip) iLAS(op uint16) (int, error) {
	z := c.getZ()
	d := rd(op)
	mem := c.bus.Read(z)
	c.bus.Write(z, mem|c.r[d])
	c.r[d] = mem
	return 2, nil
}

// iLAC: data[Z] <- data[Z] & ^Rd; Rd <- original data[Z] (load-and-clear).
func (c *Chip) iLAC(op uint16) (int, error) {
	z := c.getZ()
	d := rd(op)
	mem := c.bus.Read(z)
	c.bus.Write(z, mem&^c.r[d])
	c.r[d] = mem
	return 2, nil
}

// iLAT: data[Z] <- data[Z] ^ Rd; Rd <- original data[Z] (load-and-toggle).
func (c *Chip) iLAT(op uint16) (int, error) {
	z := c.getZ()
	d := rd(op)
	mem := c.bus.Read(z)
	c.bus.Write(z, mem^c.r[d])
	c.r[d] = mem
	return 2, nil
}

// iPUSH: stack <- Rd; SP <- SP - 1.
func (c *Chip) iPUSH(op uint16) (int, error) {
	c.pushStack(c.r[rd(op)])
	return 2, nil
}

// iPOP: SP <- SP + 1; Rd <- stack.
func (c *Chip) iPOP(op uint16) (int, error) {
	c.r[rd(op)] = c.popStack()
	return 2, nil
}

// ioAddr extracts the 6-bit I/O address field used by IN/OUT, mapped onto
// the data-space window starting at 0x20.
func ioAddr(op uint16) uint16 {
	return uint16(op>>5)&0x30 | uint16(op&0x0F)
}

// iIN: Rd <- I/O[A], A in 0-63, mapped to data space 0x20+A.
func (c *Chip) iIN(op uint16) (int, error) {
	c.r[rd(op)] = c.bus.Read(0x20 + ioAddr(op))
	return 1, nil
}

// iOUT: I/O[A] <- Rd, A in 0-63, mapped to data space 0x20+A.
func (c *Chip) iOUT(op uint16) (int, error) {
	c.bus.Write(0x20+ioAddr(op), c.r[rd(op)])
	return 1, nil
}
