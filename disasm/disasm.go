// Package disasm renders one AVR opcode word as a mnemonic string for
// the `-d`/`--debug` CLI trace. It takes a PC and a word source and
// returns the disassembled text and how many words to advance, but
// only needs to name the instruction, not fully decode operands
// symbolically, since the trace line's job is "what just ran", not a
// disassembly listing.
package disasm

import "fmt"

// Words is the word-addressed program memory interface Step reads
// from; machine.Flash and avr.Flash both satisfy it via FetchWord.
type Words interface {
	FetchWord(pc uint16) uint16
}

// Step disassembles the instruction at word address pc, returning its
// mnemonic (with decoded register/immediate operands where cheap to
// name) and the number of words it occupies (1 or 2).
func Step(pc uint16, w Words) (string, int) {
	op := w.FetchWord(pc)

	switch {
	case op == 0x0000:
		return "nop", 1
	case op == 0x9598:
		return "break", 1
	case op == 0x9588:
		return "sleep", 1
	case op == 0x95A8:
		return "wdr", 1
	case op == 0x9509:
		return "icall", 1
	case op == 0x9409:
		return "ijmp", 1
	case op == 0x9508:
		return "ret", 1
	case op == 0x9518:
		return "reti", 1
	}

	if op&0xFE0E == 0x940C {
		k := w.FetchWord(pc + 1)
		return fmt.Sprintf("jmp 0x%04X", k), 2
	}
	if op&0xFE0E == 0x940E {
		k := w.FetchWord(pc + 1)
		return fmt.Sprintf("call 0x%04X", k), 2
	}

	d, r := rd(op), rr(op)
	switch op & 0xFC00 {
	case 0x0400:
		return fmt.Sprintf("cpc r%d,r%d", d, r), 1
	case 0x0800:
		return fmt.Sprintf("sbc r%d,r%d", d, r), 1
	case 0x0C00:
		if d == r {
			return fmt.Sprintf("lsl r%d", d), 1
		}
		return fmt.Sprintf("add r%d,r%d", d, r), 1
	case 0x1000:
		return fmt.Sprintf("cpse r%d,r%d", d, r), 1
	case 0x1400:
		return fmt.Sprintf("cp r%d,r%d", d, r), 1
	case 0x1800:
		return fmt.Sprintf("sub r%d,r%d", d, r), 1
	case 0x1C00:
		if d == r {
			return fmt.Sprintf("rol r%d", d), 1
		}
		return fmt.Sprintf("adc r%d,r%d", d, r), 1
	case 0x2000:
		if d == r {
			return fmt.Sprintf("tst r%d", d), 1
		}
		return fmt.Sprintf("and r%d,r%d", d, r), 1
	case 0x2400:
		if d == r {
			return fmt.Sprintf("clr r%d", d), 1
		}
		return fmt.Sprintf("eor r%d,r%d", d, r), 1
	case 0x2800:
		return fmt.Sprintf("or r%d,r%d", d, r), 1
	case 0x2C00:
		return fmt.Sprintf("mov r%d,r%d", d, r), 1
	}

	d16, k := rd16(op), k8(op)
	switch op & 0xF000 {
	case 0x3000:
		return fmt.Sprintf("cpi r%d,0x%02X", d16, k), 1
	case 0x4000:
		return fmt.Sprintf("sbci r%d,0x%02X", d16, k), 1
	case 0x5000:
		return fmt.Sprintf("subi r%d,0x%02X", d16, k), 1
	case 0x6000:
		return fmt.Sprintf("ori r%d,0x%02X", d16, k), 1
	case 0x7000:
		return fmt.Sprintf("andi r%d,0x%02X", d16, k), 1
	case 0x8000, 0xA000:
		name, ptr := "ld", "Z"
		if op&0x0008 != 0 {
			ptr = "Y"
		}
		q := dispQ(op)
		if op&0x0200 != 0 {
			name = "st"
			return fmt.Sprintf("%s %s+%d,r%d", name, ptr, q, d), 1
		}
		return fmt.Sprintf("%s r%d,%s+%d", name, d, ptr, q), 1
	case 0xC000:
		return fmt.Sprintf("rjmp .%+d", 2*int(signExtend12(op&0x0FFF))), 1
	case 0xD000:
		return fmt.Sprintf("rcall .%+d", 2*int(signExtend12(op&0x0FFF))), 1
	case 0xE000:
		return fmt.Sprintf("ldi r%d,0x%02X", d16, k), 1
	case 0xF000:
		return stepF(op, d)
	}

	if op&0xFC00 == 0x9C00 {
		return fmt.Sprintf("mul r%d,r%d", d, r), 1
	}
	if op&0xFF00 == 0x9600 {
		return fmt.Sprintf("adiw r%d:r%d,0x%02X", 24+2*((int(op>>4)&0x3)), 24+2*(int(op>>4)&0x3)+1, adiwK(op)), 1
	}
	if op&0xFF00 == 0x9700 {
		return fmt.Sprintf("sbiw r%d:r%d,0x%02X", 24+2*(int(op>>4)&0x3)+1, 24+2*(int(op>>4)&0x3), adiwK(op)), 1
	}
	if op&0xFF00 == 0x9800 {
		return fmt.Sprintf("cbi 0x%02X,%d", sbicAddr(op), op&0x7), 1
	}
	if op&0xFF00 == 0x9900 {
		return fmt.Sprintf("sbic 0x%02X,%d", sbicAddr(op), op&0x7), 1
	}
	if op&0xFF00 == 0x9A00 {
		return fmt.Sprintf("sbi 0x%02X,%d", sbicAddr(op), op&0x7), 1
	}
	if op&0xFF00 == 0x9B00 {
		return fmt.Sprintf("sbis 0x%02X,%d", sbicAddr(op), op&0x7), 1
	}
	if op&0xFC00 == 0xB000 {
		return fmt.Sprintf("in r%d,0x%02X", d, ioAddr(op)), 1
	}
	if op&0xFC00 == 0xB800 {
		return fmt.Sprintf("out 0x%02X,r%d", ioAddr(op), d), 1
	}
	if op&0xFF00 == 0x0100 {
		dd := (int(op>>4)&0xF)*2 + 0
		rr := (int(op&0xF))*2 + 0
		return fmt.Sprintf("movw r%d,r%d", dd, rr), 1
	}
	if op&0xFF00 == 0x0200 {
		return fmt.Sprintf("muls r%d,r%d", 16+int(op>>4)&0xF, 16+int(op&0xF)), 1
	}
	if op&0xFF88 == 0x0300 {
		return fmt.Sprintf("mulsu r%d,r%d", 16+int(op>>4)&0x7, 16+int(op&0x7)), 1
	}
	if op&0xFF88 == 0x0308 {
		return fmt.Sprintf("fmul r%d,r%d", 16+int(op>>4)&0x7, 16+int(op&0x7)), 1
	}
	if op&0xFF88 == 0x0380 {
		return fmt.Sprintf("fmuls r%d,r%d", 16+int(op>>4)&0x7, 16+int(op&0x7)), 1
	}
	if op&0xFF88 == 0x0388 {
		return fmt.Sprintf("fmulsu r%d,r%d", 16+int(op>>4)&0x7, 16+int(op&0x7)), 1
	}

	if op&0xFC00 == 0x9000 {
		return step9(op, d)
	}
	if op&0xFE00 == 0x9400 {
		return stepSingle(op, d)
	}

	return fmt.Sprintf(".word 0x%04X", op), 1
}

func stepF(op uint16, d int) (string, int) {
	switch op & 0xFC00 {
	case 0xF000:
		return fmt.Sprintf("brbs %d,.%+d", op&0x7, 2*int(signExtend7((op>>3)&0x7F))), 1
	case 0xF400:
		return fmt.Sprintf("brbc %d,.%+d", op&0x7, 2*int(signExtend7((op>>3)&0x7F))), 1
	case 0xF800:
		if op&0x0200 == 0 {
			return fmt.Sprintf("bld r%d,%d", d, op&0x7), 1
		}
		return fmt.Sprintf("bst r%d,%d", d, op&0x7), 1
	case 0xFC00:
		if op&0x0200 == 0 {
			return fmt.Sprintf("sbrc r%d,%d", d, op&0x7), 1
		}
		return fmt.Sprintf("sbrs r%d,%d", d, op&0x7), 1
	}
	return fmt.Sprintf(".word 0x%04X", op), 1
}

func step9(op uint16, d int) (string, int) {
	sub := op & 0x0F
	isStore := op&0x0200 != 0
	ptrName := map[int]string{0x1: "Z+", 0x2: "-Z", 0x9: "Y+", 0xA: "-Y", 0xC: "X", 0xD: "X+", 0xE: "-X"}
	switch {
	case sub == 0x0:
		if isStore {
			return fmt.Sprintf("sts k,r%d", d), 2
		}
		return fmt.Sprintf("lds r%d,k", d), 2
	case sub == 0x4 && !isStore:
		return fmt.Sprintf("lpm r%d,Z", d), 1
	case sub == 0x5 && !isStore:
		return fmt.Sprintf("lpm r%d,Z+", d), 1
	case sub == 0x4 && isStore:
		return fmt.Sprintf("xch Z,r%d", d), 1
	case sub == 0x5 && isStore:
		return fmt.Sprintf("las Z,r%d", d), 1
	case sub == 0x6 && isStore:
		return fmt.Sprintf("lac Z,r%d", d), 1
	case sub == 0x7 && isStore:
		return fmt.Sprintf("lat Z,r%d", d), 1
	case sub == 0xF:
		if isStore {
			return fmt.Sprintf("push r%d", d), 1
		}
		return fmt.Sprintf("pop r%d", d), 1
	}
	if name, ok := ptrName[int(sub)]; ok {
		if isStore {
			return fmt.Sprintf("st %s,r%d", name, d), 1
		}
		return fmt.Sprintf("ld r%d,%s", d, name), 1
	}
	return fmt.Sprintf(".word 0x%04X", op), 1
}

func stepSingle(op uint16, d int) (string, int) {
	if op&0xFF8F == 0x9408 {
		return fmt.Sprintf("bset %d", (op>>4)&0x7), 1
	}
	if op&0xFF8F == 0x9488 {
		return fmt.Sprintf("bclr %d", (op>>4)&0x7), 1
	}
	switch op & 0x000F {
	case 0x0:
		return fmt.Sprintf("com r%d", d), 1
	case 0x1:
		return fmt.Sprintf("neg r%d", d), 1
	case 0x2:
		return fmt.Sprintf("swap r%d", d), 1
	case 0x3:
		return fmt.Sprintf("inc r%d", d), 1
	case 0x5:
		return fmt.Sprintf("asr r%d", d), 1
	case 0x6:
		return fmt.Sprintf("lsr r%d", d), 1
	case 0x7:
		return fmt.Sprintf("ror r%d", d), 1
	case 0xA:
		return fmt.Sprintf("dec r%d", d), 1
	}
	return fmt.Sprintf(".word 0x%04X", op), 1
}

func rd(op uint16) int      { return int(op>>4) & 0x1F }
func rr(op uint16) int      { return int((op>>5)&0x10) | int(op&0x0F) }
func rd16(op uint16) int    { return int(op>>4)&0x0F + 16 }
func k8(op uint16) uint8    { return uint8(op>>4)&0xF0 | uint8(op&0x0F) }
func ioAddr(op uint16) int  { return int(op>>5)&0x30 | int(op&0xF) }
func sbicAddr(op uint16) int { return int(op>>3) & 0x1F }
func adiwK(op uint16) int   { return int(op>>2)&0x30 | int(op&0xF) }

func dispQ(op uint16) int {
	return int(op>>8)&0x20 | int(op>>7)&0x18 | int(op&0x7)
}

func signExtend12(k uint16) int16 {
	if k&0x0800 != 0 {
		return int16(k) - 0x1000
	}
	return int16(k)
}

func signExtend7(k uint16) int16 {
	if k&0x0040 != 0 {
		return int16(k) - 0x80
	}
	return int16(k)
}
