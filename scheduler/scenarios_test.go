package scheduler

import (
	"testing"

	"github.com/cab202/avremu/adc"
	"github.com/cab202/avremu/avr"
	"github.com/cab202/avremu/eventscript"
	"github.com/cab202/avremu/machine"
	"github.com/cab202/avremu/port"
	"github.com/cab202/avremu/usart"
)

// Small opcode assemblers mirroring avr/cpu_test.go's, duplicated here
// since these tests build firmware images from outside package avr.

func opLDI(d int, k uint8) uint16 {
	d4 := uint16(d - 16)
	return 0xE000 | uint16(k>>4)<<8 | d4<<4 | uint16(k&0x0F)
}

// opSTS assembles the two words of an STS k16,Rd instruction.
func opSTS(d int, addr uint16) (uint16, uint16) {
	return 0x9200 | uint16(d&0x1F)<<4, addr
}

func opPUSH(d int) uint16 {
	return 0x920F | uint16(d&0x1F)<<4
}

const opSEI = 0x9478 // BSET 7

// TestScenarioS1LDIAndOUTDriveLED covers spec scenario S1: firmware
// that configures a PORT pin as an output and drives it high should
// light the corresponding LED within a handful of cycles.
func TestScenarioS1LDIAndOUTDriveLED(t *testing.T) {
	dirHi, dirLo := opSTS(16, machine.AddrPORTB+port.RegDIR)
	outHi, outLo := opSTS(17, machine.AddrPORTB+port.RegOUT)
	m := newTestMachine(
		opLDI(16, 0x10), dirHi, dirLo, // DIR bit4 (LED pin) = output
		opLDI(17, 0x10), outHi, outLo, // OUT bit4 = high
		0xCFFF, // RJMP -1
	)
	if m.LED.Lit() {
		t.Fatalf("LED should start unlit")
	}
	s := New(m, nil, 20)
	if err := s.Run(); err == nil {
		t.Fatalf("expected TimeoutReached")
	}
	if !m.LED.Lit() {
		t.Fatalf("LED should be lit after LDI+STS drove PORTB.OUT bit4 high")
	}
}

// TestScenarioS2ButtonPinChangeInterrupt covers spec scenario S2: with
// the pull-up enabled and falling-edge sense configured on the button's
// pin, pressing it must raise the PORTC interrupt and vector the core
// away from its main loop. This is also the regression test for the
// PINnCTRL.PULLUPEN fix: without it, the idle (floating) pin reads low
// exactly like a press, so no edge is ever detected.
func TestScenarioS2ButtonPinChangeInterrupt(t *testing.T) {
	pinctrlAddr := uint16(machine.AddrPORTC + port.RegPIN0CTRL + 5) // button is PORTC pin 5
	ctrlHi, ctrlLo := opSTS(16, pinctrlAddr)
	m := newTestMachine(
		opLDI(16, port.ISCFalling|port.PullupEnBit),
		ctrlHi, ctrlLo,
		opSEI,
		0xCFFF, // RJMP -1: busy-wait loop
	)
	events := []eventscript.Event{
		{Cycle: 20, Target: "S0", Kind: eventscript.PayloadPress},
	}
	s := New(m, events, 200)
	if err := s.Run(); err == nil {
		t.Fatalf("expected TimeoutReached")
	}
	if m.PORTC.Read(port.RegINTFLAGS)&0x20 == 0 {
		t.Fatalf("PORTC INTFLAGS bit 5 should be set after the button press edge")
	}
	if m.Chip.SREG()&avr.FlagI != 0 {
		t.Fatalf("SREG.I should have been cleared on interrupt entry")
	}
	if m.Chip.PC() < machine.VecPORTC*2 {
		t.Fatalf("PC = %#04x, want it to have vectored to >= PORTC's vector address %#04x", m.Chip.PC(), machine.VecPORTC*2)
	}
}

// TestScenarioS3ADCSample covers spec scenario S3: a potentiometer
// fraction stimulus, once a conversion is started on its channel,
// should produce a proportional RESULT and raise RESRDY.
func TestScenarioS3ADCSample(t *testing.T) {
	m := newTestMachine(0xCFFF) // RJMP -1, just ticks peripherals forward
	events := []eventscript.Event{
		{Cycle: 0, Target: "R0", Kind: eventscript.PayloadFraction, Fraction: 0.25},
	}
	s := New(m, events, 1)
	_ = s.Run()

	m.ADC0.Write(adc.RegCTRLA, 0x01) // enable, 10-bit
	m.ADC0.Write(adc.RegMUXPOS, 0x00)
	m.ADC0.Write(adc.RegCOMMAND, 0x01) // start conversion

	s2 := New(m, nil, 20)
	if err := s2.Run(); err == nil {
		t.Fatalf("expected TimeoutReached")
	}

	if m.ADC0.Read(adc.RegINTFLAGS)&0x01 == 0 {
		t.Fatalf("RESRDY should be set once the conversion completes")
	}
	res := uint16(m.ADC0.Read(adc.RegRESL)) | uint16(m.ADC0.Read(adc.RegRESH))<<8
	if res < 200 || res > 300 {
		t.Fatalf("RESULT = %d, want roughly 256 (0.25 * 1023 10-bit full scale)", res)
	}
}

// TestScenarioS4USARTTransmitsBufferedBytes covers spec scenario S4: the
// idiomatic `while(!DREIF); TXDATAL = c;` firmware pattern, writing
// 'H','i','\n' in sequence, must deliver all three bytes to the sink in
// order. This is the regression test for the DREIF/shift-register race:
// the old implementation asserted DREIF synchronously on write and
// clobbered the in-flight byte, silently dropping everything but the
// last one.
func TestScenarioS4USARTTransmitsBufferedBytes(t *testing.T) {
	m := newTestMachine(0xCFFF) // RJMP -1, keeps Step() ticking USART0 each cycle
	m.USART0.Write(usart.RegCTRLB, 0x40) // TXEN
	m.USART0.Write(usart.RegBAUDL, 0x00) // fastest modeled rate

	for _, b := range []byte("Hi\n") {
		for i := 0; i < 1000 && m.USART0.Read(usart.RegSTATUS)&usart.StatusDREIF == 0; i++ {
			if _, err := m.Step(); err != nil {
				t.Fatalf("Step: %v", err)
			}
		}
		if m.USART0.Read(usart.RegSTATUS)&usart.StatusDREIF == 0 {
			t.Fatalf("DREIF never set before writing %q", b)
		}
		m.USART0.Write(usart.RegTXDATAL, b)
	}
	for i := 0; i < 20; i++ {
		if _, err := m.Step(); err != nil {
			t.Fatalf("Step: %v", err)
		}
	}

	if got, want := m.Serial.String(), "Hi\n"; got != want {
		t.Fatalf("serial sink = %q, want %q", got, want)
	}
	if m.USART0.Read(usart.RegSTATUS)&usart.StatusTXCIF == 0 {
		t.Fatalf("TXCIF should be set once the last byte finishes with nothing queued")
	}
}

// TestScenarioS5StackDump covers spec scenario S5: pushing four bytes
// leaves SP four below RAMEND and DumpStack reports them in pop order
// (most recently pushed first).
func TestScenarioS5StackDump(t *testing.T) {
	m := newTestMachine(
		opLDI(16, 0xDE), opPUSH(16),
		opLDI(16, 0xAD), opPUSH(16),
		opLDI(16, 0xBE), opPUSH(16),
		opLDI(16, 0xEF), opPUSH(16),
	)
	for i := 0; i < 8; i++ {
		if _, err := m.Chip.Step(); err != nil {
			t.Fatalf("Step %d: %v", i, err)
		}
	}
	wantSP := uint16(machine.SRAMBase+machine.SRAMSize-1) - 4
	if m.Chip.SP() != wantSP {
		t.Fatalf("SP = %#04x, want %#04x (RAMEND-4)", m.Chip.SP(), wantSP)
	}
	got := m.Chip.DumpStack(4)
	want := []uint8{0xEF, 0xBE, 0xAD, 0xDE}
	for i := range want {
		if got[i] != want[i] {
			t.Fatalf("DumpStack()[%d] = %#02x, want %#02x (dump=%v)", i, got[i], want[i], got)
		}
	}
}

// TestScenarioS6IllegalOpcodeHalts covers spec scenario S6: an
// unassigned opcode at the reset vector must be reported as
// avr.IllegalInstruction naming PC=0x0000, and the core must halt.
func TestScenarioS6IllegalOpcodeHalts(t *testing.T) {
	m := newTestMachine(0x9404) // single-operand ALU class, sub-opcode 4 is unassigned
	s := New(m, nil, 0)
	err := s.Run()
	ie, ok := err.(avr.IllegalInstruction)
	if !ok {
		t.Fatalf("err = %v (%T), want avr.IllegalInstruction", err, err)
	}
	if ie.PC != 0 {
		t.Fatalf("IllegalInstruction.PC = %#04x, want 0x0000", ie.PC)
	}
	if !m.Chip.Halted() {
		t.Fatalf("core should be halted after an illegal instruction")
	}
}
