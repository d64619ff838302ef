package machine

import (
	"testing"

	"github.com/cab202/avremu/ccp"
)

func TestNewWiresRegisterAlias(t *testing.T) {
	m := New(nil)
	m.Reset()
	m.Bus.Write(0x0003, 0x42)
	if m.Chip.Reg(3) != 0x42 {
		t.Fatalf("R3 = %#02x, want 0x42 (bus write should alias into the register file)", m.Chip.Reg(3))
	}
}

func TestNewWiresPortRegisterWindow(t *testing.T) {
	m := New(nil)
	m.Reset()
	m.Bus.Write(AddrPORTB+0x04, 0x10) // OUT register, bit 4 (LED pin)
	m.Bus.Write(AddrPORTB+0x00, 0x10) // DIR register, bit 4 as output
	if !m.LED.Lit() {
		t.Fatalf("LED should be lit after driving PORTB pin 4 high")
	}
}

func TestStepTicksPeripherals(t *testing.T) {
	m := New(nil)
	m.Reset()
	m.Bus.Write(AddrTCA0+0x00, 0x01) // TCA0 CTRLA: enable
	before := m.Bus.Read(AddrTCA0 + 0x20)
	m.Flash.LoadImage([]byte{0x00, 0x00}, 0) // NOP
	if _, err := m.Step(); err != nil {
		t.Fatalf("Step: %v", err)
	}
	after := m.Bus.Read(AddrTCA0 + 0x20)
	if before == after {
		t.Fatalf("TCA0 counter low byte did not advance across a Step (peripherals not ticked)")
	}
}

func TestCCPRegisterGatesClkctrlWrite(t *testing.T) {
	m := New(nil)
	m.Reset()

	m.Bus.Write(AddrCLKCTRL+0x01, 0xFF) // MCLKCTRLB, window closed: should be ignored
	if got := m.Bus.Read(AddrCLKCTRL + 0x01); got != 0 {
		t.Fatalf("MCLKCTRLB = %#02x, want 0 (write outside CCP window must be ignored)", got)
	}

	m.Bus.Write(AddrCCP, ccp.IOREGKey)
	m.Bus.Write(AddrCLKCTRL+0x01, 0xFF)
	if got := m.Bus.Read(AddrCLKCTRL + 0x01); got != 0xFF {
		t.Fatalf("MCLKCTRLB = %#02x, want 0xFF (write inside CCP window must be honored)", got)
	}
}

func TestCCPRegisterRejectsBadKey(t *testing.T) {
	m := New(nil)
	m.Reset()

	m.Bus.Write(AddrCCP, 0x00)
	m.Bus.Write(AddrCLKCTRL+0x01, 0xFF)
	if got := m.Bus.Read(AddrCLKCTRL + 0x01); got != 0 {
		t.Fatalf("MCLKCTRLB = %#02x, want 0 (bad key must not open the window)", got)
	}
}

func TestResetRestoresChipAndWDT(t *testing.T) {
	m := New(nil)
	m.Reset()
	if m.Chip.PC() != 0 {
		t.Fatalf("PC after Reset = %#04x, want 0", m.Chip.PC())
	}
	if m.Chip.Halted() {
		t.Fatalf("core should not start halted")
	}
	m.Bus.Write(AddrWDT, 0x03) // WDT CTRLA: enable, shortest period
	m.Reset()
	if got := m.Bus.Read(AddrWDT); got != 0 {
		t.Fatalf("WDT CTRLA after Reset = %#02x, want 0", got)
	}
}
