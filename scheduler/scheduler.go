// Package scheduler drives a machine.Machine: a monotonic cycle counter,
// a stimulus queue, and the apply-stimuli / step / tick-peripherals loop.
// It follows atari2600.VCS.Run's shape (one object owning the aggregate
// machine, stepped in a loop by a small driver) generalized to dispatch
// pre-materialized stimuli instead of polling SDL2 input events.
package scheduler

import (
	"container/heap"
	"fmt"

	"github.com/cab202/avremu/disasm"
	"github.com/cab202/avremu/eventscript"
	"github.com/cab202/avremu/machine"
)

// TimeoutReached is returned when the configured cycle timeout is hit.
type TimeoutReached struct{ Cycle uint64 }

func (e TimeoutReached) Error() string {
	return fmt.Sprintf("timeout reached at cycle %d", e.Cycle)
}

// HaltReached is returned when the core enters SLEEP with no enabled
// interrupt source and no further stimuli that could ever wake it.
type HaltReached struct{ Cycle uint64 }

func (e HaltReached) Error() string {
	return fmt.Sprintf("halted (no wake source) at cycle %d", e.Cycle)
}

// stimulus is a queued event plus its index in the list New was given.
type stimulus struct {
	ev  eventscript.Event
	seq int
}

// stimulusQueue is a min-heap of pending events keyed by cycle, with
// file order as the tiebreak eventscript.Parse already sorted by.
type stimulusQueue []stimulus

func (q stimulusQueue) Len() int { return len(q) }
func (q stimulusQueue) Less(i, j int) bool {
	if q[i].ev.Cycle != q[j].ev.Cycle {
		return q[i].ev.Cycle < q[j].ev.Cycle
	}
	return q[i].seq < q[j].seq
}
func (q stimulusQueue) Swap(i, j int)       { q[i], q[j] = q[j], q[i] }
func (q *stimulusQueue) Push(x interface{}) { *q = append(*q, x.(stimulus)) }
func (q *stimulusQueue) Pop() interface{} {
	old := *q
	n := len(old)
	item := old[n-1]
	*q = old[:n-1]
	return item
}

// Scheduler runs a machine.Machine for a bounded number of cycles,
// applying a pre-parsed stimulus list at the right moments.
type Scheduler struct {
	M       *machine.Machine
	now     uint64
	timeout uint64 // 0 means unlimited
	queue   stimulusQueue

	// Trace, when non-nil, receives one line per retired instruction
	// (PC, mnemonic, cycle cost) for the -d/--debug CLI flag.
	Trace func(line string)
}

// New builds a Scheduler over m. A timeout of 0 means unlimited cycles.
func New(m *machine.Machine, events []eventscript.Event, timeout uint64) *Scheduler {
	s := &Scheduler{M: m, timeout: timeout}
	for i, ev := range events {
		s.queue = append(s.queue, stimulus{ev: ev, seq: i})
	}
	heap.Init(&s.queue)
	return s
}

// Now returns the current cycle count.
func (s *Scheduler) Now() uint64 { return s.now }

// Run drives the machine until a TimeoutReached, HaltReached, or a fatal
// CPU error (IllegalInstruction, InvalidCPUState) occurs.
func (s *Scheduler) Run() error {
	for {
		if s.timeout > 0 && s.now >= s.timeout {
			return TimeoutReached{Cycle: s.now}
		}
		for s.queue.Len() > 0 && s.queue[0].ev.Cycle <= s.now {
			ev := heap.Pop(&s.queue).(stimulus).ev
			s.apply(ev)
		}

		if s.M.Chip.Sleeping() && !s.M.CPUInt.AnyPending() && !s.hasFutureWake() {
			return HaltReached{Cycle: s.now}
		}

		pc := s.M.Chip.PC()
		var mnemonic string
		if s.Trace != nil {
			mnemonic, _ = disasm.Step(pc, s.M.Flash)
		}
		cycles, err := s.M.Step()
		if s.Trace != nil {
			s.Trace(fmt.Sprintf("0x%04X: %-24s ; %d cycle(s)", pc, mnemonic, cycles))
		}
		if err != nil {
			return err
		}
		s.now += uint64(cycles)
	}
}

// hasFutureWake reports whether any pending stimulus could plausibly
// wake a sleeping core (button press, RX byte) so a SLEEP isn't
// reported as halted when a wake event is still queued.
func (s *Scheduler) hasFutureWake() bool {
	return s.queue.Len() > 0
}

// apply routes one stimulus to its device by target id ('S' digit =
// button/switch, 'R' digit = potentiometer/rheostat, 'U' digit = USART
// RX injection).
func (s *Scheduler) apply(ev eventscript.Event) {
	if len(ev.Target) == 0 {
		return
	}
	switch ev.Target[0] {
	case 'S':
		switch ev.Kind {
		case eventscript.PayloadPress:
			s.M.Button.Press()
		case eventscript.PayloadRelease:
			s.M.Button.Release()
		}
	case 'R':
		if ev.Kind == eventscript.PayloadFraction {
			s.M.Pot.SetPosition(ev.Fraction)
		}
	case 'U':
		if ev.Kind == eventscript.PayloadBytes {
			for _, b := range ev.Bytes {
				s.M.USART0.InjectRX(b)
			}
		}
	}
}
