package machine

// Data-space addresses for every peripheral's register window. Real
// ATtiny1626 addresses are denser (peripherals share a compact 0x1000
// byte low I/O space); this map keeps each peripheral on its own
// generously-sized window for clarity, since nothing in this repository
// depends on matching the datasheet's literal offsets.
const (
	AddrCPUINT  = 0x0030 // 4 registers used, window reserves 0x30-0x37
	AddrCCP     = 0x0038 // single-byte CCP key strobe register
	AddrCLKCTRL = 0x0040
	AddrRSTCTRL = 0x0050
	AddrWDT     = 0x0060
	AddrGPIOR   = 0x0070 // 4 general-purpose scratch registers

	AddrVREF  = 0x0100
	AddrAC0   = 0x0110
	AddrADC0  = 0x0120
	AddrRTC   = 0x0140
	AddrEVSYS = 0x0160
	AddrCCL   = 0x0180

	AddrTCA0 = 0x0200
	AddrTCB0 = 0x0240
	AddrTCB1 = 0x0250

	AddrUSART0 = 0x0280
	AddrSPI0   = 0x02A0
	AddrTWI0   = 0x02C0

	AddrNVMCTRL = 0x0300

	AddrPORTA = 0x0400
	AddrPORTB = 0x0420
	AddrPORTC = 0x0440

	SRAMBase = 0x3800
	SRAMSize = 2048

	FlashWords = 8192 // 16KB / 2 bytes per word
)

// Interrupt vector numbers, address-ordered (lower numbers have higher
// default priority).
const (
	VecReset = 0
	VecPORTA = 1
	VecPORTB = 2
	VecPORTC = 3
	VecRTC   = 4
	VecTCA0  = 5
	VecTCB0  = 6
	VecTCB1  = 7
	VecTWI0  = 8
	VecSPI0  = 9
	VecUSART0 = 10
	VecAC0    = 11
	VecADC0   = 12
	VecNVMCTRL = 13
)
