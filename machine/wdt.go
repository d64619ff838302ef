package machine

import "github.com/cab202/avremu/avr"

// wdt is a minimal Watchdog Timer: an enable bit and a period-derived
// countdown that resets the core if it reaches zero without being
// kicked by WDR.
type wdt struct {
	chip *avr.Chip

	ctrla     uint8
	countdown int
}

// period table indexed by CTRLA's PERIOD field (cycles, scaled down from
// the real ~1kHz oscillator to keep simulated firmware timeouts within a
// reasonable cycle budget).
var wdtPeriods = [...]int{0, 8, 16, 32, 64, 128, 256, 512, 1024, 2048, 4096, 8192}

func newWDT(chip *avr.Chip) *wdt {
	w := &wdt{chip: chip}
	w.Reset()
	return w
}

func (w *wdt) Reset() {
	w.ctrla = 0
	w.countdown = 0
}

func (w *wdt) enabled() bool { return w.ctrla&0x01 != 0 }

func (w *wdt) period() int {
	idx := (w.ctrla >> 1) & 0x0F
	if int(idx) >= len(wdtPeriods) {
		return wdtPeriods[len(wdtPeriods)-1]
	}
	return wdtPeriods[idx]
}

// Kick resets the countdown; called by the WDR instruction handler path
// (wired through machine, since avr.Chip has no direct wdt reference).
func (w *wdt) Kick() {
	w.countdown = w.period()
}

func (w *wdt) Tick(cycles int) {
	if !w.enabled() {
		return
	}
	w.countdown -= cycles
	if w.countdown <= 0 {
		w.chip.InjectResetCause(avr.ResetWatchdog)
		w.chip.PowerOn()
		w.countdown = w.period()
	}
}

const regWDTCTRLA = 0x00

func (w *wdt) Read(reg uint8) uint8 {
	if reg == regWDTCTRLA {
		return w.ctrla
	}
	return 0
}

func (w *wdt) Write(reg uint8, val uint8) {
	if reg == regWDTCTRLA {
		w.ctrla = val
		w.countdown = w.period()
	}
}
