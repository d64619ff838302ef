package scheduler

import (
	"testing"

	"github.com/cab202/avremu/eventscript"
	"github.com/cab202/avremu/machine"
	"github.com/cab202/avremu/usart"
)

// loadWords packs opcode words little-endian into a fresh machine's
// flash, the same layout hexload.Load produces from an Intel HEX image.
func loadWords(m *machine.Machine, words ...uint16) {
	data := make([]byte, len(words)*2)
	for i, w := range words {
		data[2*i] = uint8(w)
		data[2*i+1] = uint8(w >> 8)
	}
	m.Flash.LoadImage(data, 0)
}

func newTestMachine(words ...uint16) *machine.Machine {
	m := machine.New(nil)
	m.Reset()
	loadWords(m, words...)
	return m
}

func TestRunReachesTimeout(t *testing.T) {
	m := newTestMachine(0xCFFF) // RJMP -1: tight infinite loop
	s := New(m, nil, 20)
	err := s.Run()
	if _, ok := err.(TimeoutReached); !ok {
		t.Fatalf("err = %v (%T), want TimeoutReached", err, err)
	}
	if s.Now() < 20 {
		t.Fatalf("Now() = %d, want >= timeout 20", s.Now())
	}
}

func TestRunHaltsOnSleepWithNoWakeSource(t *testing.T) {
	m := newTestMachine(0x9588) // SLEEP
	s := New(m, nil, 0)
	err := s.Run()
	if _, ok := err.(HaltReached); !ok {
		t.Fatalf("err = %v (%T), want HaltReached", err, err)
	}
}

func TestRunDoesNotHaltWhileInterruptPending(t *testing.T) {
	m := newTestMachine(0x9588) // SLEEP
	m.CPUInt.SetEnabled(machine.VecRTC, true)
	m.CPUInt.SetPending(machine.VecRTC, true)
	s := New(m, nil, 20)
	err := s.Run()
	if _, ok := err.(TimeoutReached); !ok {
		t.Fatalf("err = %v (%T), want TimeoutReached (a pending enabled vector should block HaltReached)", err, err)
	}
}

func TestRunAppliesButtonPressStimulus(t *testing.T) {
	m := newTestMachine(0xCFFF) // RJMP -1, so Run just idles until timeout
	events := []eventscript.Event{
		{Cycle: 0, Target: "S0", Kind: eventscript.PayloadPress},
	}
	s := New(m, events, 10)
	if err := s.Run(); err == nil {
		t.Fatalf("expected TimeoutReached, got nil")
	}
	if !m.Button.Pressed() {
		t.Fatalf("button should be pressed after a PRESS stimulus was applied")
	}
}

func TestRunAppliesUSARTRXStimulus(t *testing.T) {
	m := newTestMachine(0xCFFF) // RJMP -1
	events := []eventscript.Event{
		{Cycle: 0, Target: "U0", Kind: eventscript.PayloadBytes, Bytes: []byte("A")},
	}
	s := New(m, events, 10)
	if err := s.Run(); err == nil {
		t.Fatalf("expected TimeoutReached, got nil")
	}
	// Check RXCIF first: reading RXDATAL pops the byte and clears it.
	if m.USART0.Read(usart.RegSTATUS)&usart.StatusRXCIF == 0 {
		t.Fatalf("RXCIF should be set after an injected RX byte")
	}
	if got := m.USART0.Read(usart.RegRXDATAL); got != 'A' {
		t.Fatalf("RXDATAL = %#02x, want 'A'", got)
	}
}

func TestRunAppliesPotentiometerFractionStimulus(t *testing.T) {
	m := newTestMachine(0xCFFF)
	events := []eventscript.Event{
		{Cycle: 0, Target: "R0", Kind: eventscript.PayloadFraction, Fraction: 0.5},
	}
	s := New(m, events, 10)
	if err := s.Run(); err == nil {
		t.Fatalf("expected TimeoutReached, got nil")
	}
	if got := m.Pot.Position(); got != 0.5 {
		t.Fatalf("Pot.Position() = %v, want 0.5", got)
	}
}

func TestTraceCallbackFiresPerInstruction(t *testing.T) {
	m := newTestMachine(0x0000, 0x0000, 0x0000) // three NOPs
	s := New(m, nil, 3)
	var lines int
	s.Trace = func(line string) { lines++ }
	_ = s.Run()
	if lines != 3 {
		t.Fatalf("Trace callback fired %d times, want 3 (one per NOP)", lines)
	}
}
