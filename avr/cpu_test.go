package avr

import (
	"testing"
	"testing/quick"

	"github.com/davecgh/go-spew/spew"
	"github.com/go-test/deep"

	"github.com/cab202/avremu/cpuint"
)

// flatBus is a simple 64KB data space for testing, standing in for
// bus.AddressSpace.
type flatBus struct {
	mem [65536]uint8
}

func (b *flatBus) Read(addr uint16) uint8   { return b.mem[addr] }
func (b *flatBus) Write(addr uint16, v uint8) { b.mem[addr] = v }

// flatFlash backs program memory with a flat word slice.
type flatFlash struct {
	words [4096]uint16
	bytes []uint8
}

func (f *flatFlash) FetchWord(pc uint16) uint16 { return f.words[pc] }
func (f *flatFlash) ReadByte(byteAddr uint32) uint8 {
	if f.bytes == nil {
		return 0
	}
	return f.bytes[byteAddr]
}
func (f *flatFlash) Words() int { return len(f.words) }

// load installs a sequence of opcode words starting at flash word 0.
func (f *flatFlash) load(words ...uint16) {
	copy(f.words[:], words)
}

func newTestChip() (*Chip, *flatBus, *flatFlash) {
	var regs [32]uint8
	bus := &flatBus{}
	flash := &flatFlash{}
	c := Init(&ChipDef{
		Bus:       bus,
		Flash:     flash,
		Registers: &regs,
		CPUINT:    cpuint.New(),
		SPTop:     0x3FFF,
	})
	return c, bus, flash
}

func TestPowerOnState(t *testing.T) {
	c, _, _ := newTestChip()
	if c.PC() != 0 {
		t.Fatalf("PC = %#04x, want 0", c.PC())
	}
	if c.SP() != 0x3FFF {
		t.Fatalf("SP = %#04x, want 0x3FFF", c.SP())
	}
	if c.SREG() != 0 {
		t.Fatalf("SREG = %#02x, want 0", c.SREG())
	}
	for i := 0; i < 32; i++ {
		if c.Reg(i) != 0 {
			t.Fatalf("R%d = %#02x, want 0 after PowerOn", i, c.Reg(i))
		}
	}
}

func TestAddFlags(t *testing.T) {
	tests := []struct {
		name     string
		d, r     uint8
		wantRes  uint8
		wantSREG uint8
	}{
		{"zero+zero", 0x00, 0x00, 0x00, FlagZ},
		{"half-carry", 0x0F, 0x01, 0x10, FlagH},
		{"overflow", 0x7F, 0x01, 0x80, FlagN | FlagV | FlagH},
		{"carry-and-zero", 0xFF, 0x01, 0x00, FlagZ | FlagH | FlagC},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			c, _, flash := newTestChip()
			c.r[2] = tt.d
			c.r[3] = tt.r
			// ADD R2, R3: 0000 11rd dddd rrrr with d=2, r=3
			op := uint16(0x0C00) | opRdRr(2, 3)
			flash.load(op)
			cycles, err := c.Step()
			if err != nil {
				t.Fatalf("Step: %v", err)
			}
			if cycles != 1 {
				t.Fatalf("cycles = %d, want 1", cycles)
			}
			if c.r[2] != tt.wantRes {
				t.Fatalf("R2 = %#02x, want %#02x", c.r[2], tt.wantRes)
			}
			if c.SREG() != tt.wantSREG {
				t.Fatalf("SREG = %#010b, want %#010b\n%s", c.SREG(), tt.wantSREG, spew.Sdump(c))
			}
		})
	}
}

// opRdRr packs a 5-bit Rd and 5-bit Rr field the way the two-register
// ALU opcode classes split them (bits 8:4 for d, bit 9 / bits 3:0 for
// r), matching rd()/rr() in decode.go.
func opRdRr(d, r int) uint16 {
	var op uint16
	op |= uint16(d&0x1F) << 4
	op |= uint16(r & 0x0F)
	op |= uint16((r>>4)&0x1) << 9
	return op
}

func TestSubSetsCarryOnBorrow(t *testing.T) {
	c, _, flash := newTestChip()
	c.r[5] = 0x00
	c.r[6] = 0x01
	op := uint16(0x1800) | opRdRr(5, 6) // SUB R5, R6
	flash.load(op)
	if _, err := c.Step(); err != nil {
		t.Fatalf("Step: %v", err)
	}
	if c.r[5] != 0xFF {
		t.Fatalf("R5 = %#02x, want 0xFF", c.r[5])
	}
	if !c.flagTest(FlagC) {
		t.Fatalf("expected carry (borrow) set")
	}
	if !c.flagTest(FlagN) {
		t.Fatalf("expected negative flag set")
	}
}

// opLDI packs an LDI Rd,K opcode: Rd in r16-31, K an 8-bit immediate.
func opLDI(d int, k uint8) uint16 {
	d4 := uint16(d - 16)
	return 0xE000 | uint16(k>>4)<<8 | d4<<4 | uint16(k&0x0F)
}

func TestLDIAndINOUT(t *testing.T) {
	c, bus, flash := newTestChip()
	// LDI R16, 0x55 ; OUT 0x20, R16 (data addr 0x20 + 0 = 0x20)
	ldi := opLDI(16, 0x55)
	out := uint16(0xB800) | uint16(16&0x1F)<<4 // A=0 -> data addr 0x20
	flash.load(ldi, out)

	if _, err := c.Step(); err != nil {
		t.Fatalf("Step 1: %v", err)
	}
	if c.r[16] != 0x55 {
		t.Fatalf("R16 = %#02x, want 0x55", c.r[16])
	}
	if _, err := c.Step(); err != nil {
		t.Fatalf("Step 2: %v", err)
	}
	if bus.mem[0x20] != 0x55 {
		t.Fatalf("data[0x20] = %#02x, want 0x55", bus.mem[0x20])
	}
}

func TestRJMP(t *testing.T) {
	c, _, flash := newTestChip()
	// RJMP +2 (skip the next two words)
	flash.load(0xC000 | 0x0002)
	cycles, err := c.Step()
	if err != nil {
		t.Fatalf("Step: %v", err)
	}
	if cycles != 2 {
		t.Fatalf("cycles = %d, want 2", cycles)
	}
	if c.PC() != 3 {
		t.Fatalf("PC = %d, want 3 (1 fetch + 2 offset)", c.PC())
	}
}

func TestCallRetRoundTrip(t *testing.T) {
	c, _, flash := newTestChip()
	// word 0-1: CALL 0x0003 (absolute word address 3, a two-word
	// instruction so the instruction after it starts at word 2).
	// word 3: RET (placed at the call target).
	callLo := uint16(0x940E)
	flash.load(callLo, 0x0003, 0x0000 /* filler */, 0x9508 /* RET */)

	cycles, err := c.Step() // executes CALL, consumes 2 words
	if err != nil {
		t.Fatalf("Step CALL: %v", err)
	}
	if cycles != 4 {
		t.Fatalf("CALL cycles = %d, want 4", cycles)
	}
	if c.PC() != 3 {
		t.Fatalf("PC after CALL = %d, want 3", c.PC())
	}
	savedSP := c.SP()
	if savedSP != 0x3FFF-2 {
		t.Fatalf("SP after CALL push = %#04x, want %#04x", savedSP, 0x3FFF-2)
	}

	cycles, err = c.Step() // executes RET
	if err != nil {
		t.Fatalf("Step RET: %v", err)
	}
	if cycles != 4 {
		t.Fatalf("RET cycles = %d, want 4", cycles)
	}
	if c.PC() != 2 {
		t.Fatalf("PC after RET = %d, want 2 (return address)", c.PC())
	}
	if c.SP() != 0x3FFF {
		t.Fatalf("SP after RET pop = %#04x, want restored 0x3FFF", c.SP())
	}
}

func TestIllegalInstructionHalts(t *testing.T) {
	c, _, flash := newTestChip()
	flash.load(0x9404) // single-operand ALU class, sub-opcode 0x4 is unassigned
	_, err := c.Step()
	if err == nil {
		t.Fatalf("expected IllegalInstruction, got nil")
	}
	if _, ok := err.(IllegalInstruction); !ok {
		t.Fatalf("err = %v (%T), want IllegalInstruction", err, err)
	}
	if !c.Halted() {
		t.Fatalf("core did not halt after illegal instruction")
	}
	if _, err := c.Step(); err == nil {
		t.Fatalf("Step on a halted core should keep erroring")
	}
}

func TestInterruptDispatchPushesReturnAddressAndClearsI(t *testing.T) {
	c, bus, flash := newTestChip()
	flash.load(0x0000) // NOP at PC 0
	c.flagSet(FlagI)
	c.SetPC(0x0010)
	ci := cpuint.New()
	c.cpuint = ci
	ci.SetEnabled(4, true)
	ci.SetPending(4, true)

	cycles, err := c.Step()
	if err != nil {
		t.Fatalf("Step: %v", err)
	}
	if cycles != 5 {
		t.Fatalf("interrupt dispatch cycles = %d, want 5", cycles)
	}
	if c.PC() != 8 { // vector 4 * 2
		t.Fatalf("PC = %d, want 8 (vector*2)", c.PC())
	}
	if c.flagTest(FlagI) {
		t.Fatalf("SREG.I should be cleared on interrupt entry")
	}
	pushedHi := bus.mem[0x3FFF]
	pushedLo := bus.mem[0x3FFE]
	got := uint16(pushedHi)<<8 | uint16(pushedLo)
	if got != 0x0010 {
		t.Fatalf("pushed return address = %#04x, want 0x0010", got)
	}
}

func TestDumpRegsMatchesRegisterFile(t *testing.T) {
	c, _, _ := newTestChip()
	c.r[10] = 0xAB
	got := c.DumpRegs()
	want := *c.r
	if diff := deep.Equal(got, want); diff != nil {
		t.Fatalf("DumpRegs diverged from register file: %v", diff)
	}
}

// TestQuickADDZeroAndNegativeFlags checks that FlagZ and FlagN always
// agree with the arithmetic result of ADD R2,R3, for arbitrary
// operands, independent of the specific bit patterns exercised by the
// table-driven cases above.
func TestQuickADDZeroAndNegativeFlags(t *testing.T) {
	f := func(d, r uint8) bool {
		c, _, flash := newTestChip()
		c.r[2] = d
		c.r[3] = r
		op := uint16(0x0C00) | opRdRr(2, 3)
		flash.load(op)
		if _, err := c.Step(); err != nil {
			return false
		}
		want := d + r
		if c.r[2] != want {
			return false
		}
		if c.flagTest(FlagZ) != (want == 0) {
			return false
		}
		if c.flagTest(FlagN) != (want&0x80 != 0) {
			return false
		}
		return true
	}
	if err := quick.Check(f, nil); err != nil {
		t.Fatalf("ADD flag property failed: %v", err)
	}
}

func TestCCPUnlockWindow(t *testing.T) {
	c, _, _ := newTestChip()
	if c.CCPOpen() {
		t.Fatalf("CCP should start closed")
	}
	c.CCPUnlock()
	if !c.CCPOpen() {
		t.Fatalf("CCP should be open immediately after unlock")
	}
	for i := 0; i < 4; i++ {
		c.tickCCP()
	}
	if c.CCPOpen() {
		t.Fatalf("CCP window should have closed after 4 ticks")
	}
}
