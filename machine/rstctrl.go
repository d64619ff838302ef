package machine

import "github.com/cab202/avremu/avr"

// rstctrl implements RSTCTRL.RSTFR, the real ATtiny1626 bit layout,
// plus the software-reset SWRR command register.
type rstctrl struct {
	chip *avr.Chip
}

func newRSTCTRL(chip *avr.Chip) *rstctrl {
	return &rstctrl{chip: chip}
}

func (r *rstctrl) Reset() {}

const (
	regRSTFR = 0x00
	regSWRR  = 0x01
)

func (r *rstctrl) Read(reg uint8) uint8 {
	if reg == regRSTFR {
		return uint8(r.chip.ResetCauseFlags())
	}
	return 0
}

func (r *rstctrl) Write(reg uint8, val uint8) {
	if reg == regSWRR && val&0x01 != 0 {
		r.chip.InjectResetCause(avr.ResetSoftware)
		r.chip.PowerOn()
	}
}
