// Package machine wires one ATtiny1626/QUTy board instance: the
// register file, address space, CPU core, interrupt controller, every
// peripheral, and the board's device models, all sharing one
// bus.AddressSpace. It follows atari2600.Init/VCS's wiring pattern (one
// constructor that allocates every component and installs it onto a
// shared bus) generalized from the Atari's three chips to the
// ATtiny1626's two dozen.
package machine

import (
	"io"

	"github.com/cab202/avremu/ac"
	"github.com/cab202/avremu/adc"
	"github.com/cab202/avremu/avr"
	"github.com/cab202/avremu/bus"
	"github.com/cab202/avremu/ccl"
	"github.com/cab202/avremu/clkctrl"
	"github.com/cab202/avremu/cpuint"
	"github.com/cab202/avremu/devices"
	"github.com/cab202/avremu/evsys"
	"github.com/cab202/avremu/nvmctrl"
	"github.com/cab202/avremu/peripheral"
	"github.com/cab202/avremu/pin"
	"github.com/cab202/avremu/port"
	"github.com/cab202/avremu/rtc"
	"github.com/cab202/avremu/spi"
	"github.com/cab202/avremu/timer"
	"github.com/cab202/avremu/twi"
	"github.com/cab202/avremu/usart"
	"github.com/cab202/avremu/vref"
)

// ioBlock is the shape every byte-addressed register block below
// implements, letting addRegion wire any of them onto the bus
// uniformly.
type ioBlock interface {
	Read(reg uint8) uint8
	Write(reg uint8, val uint8)
}

type regCell struct {
	blk ioBlock
	reg uint8
}

func (c regCell) Read() uint8    { return c.blk.Read(c.reg) }
func (c regCell) Write(v uint8)  { c.blk.Write(c.reg, v) }

func addRegion(as *bus.AddressSpace, base uint16, size int, blk ioBlock) {
	end := base + uint16(size) - 1
	as.AddRegion(bus.Region{
		Start: base,
		End:   end,
		Cell: func(addr uint16) bus.Cell {
			return regCell{blk: blk, reg: uint8(addr - base)}
		},
	})
}

// Machine is one fully wired ATtiny1626/QUTy instance.
type Machine struct {
	Chip   *avr.Chip
	Bus    *bus.AddressSpace
	CPUInt *cpuint.Controller
	Flash  *Flash

	registers [32]uint8

	CLKCTRL *clkctrl.Controller

	rstctrl    *rstctrl
	wdt        *wdt
	gpior      *gpior
	ccpReg     *ccpReg
	cpuintRegs *cpuintRegs

	PORTA, PORTB, PORTC *port.Port

	VREF  *vref.VREF
	AC0   *ac.AC
	ADC0  *adc.ADC
	RTC   *rtc.RTC
	EVSYS *evsys.EVSYS
	CCL   *ccl.CCL

	TCA0 *timer.TCA16
	TCB0 *timer.TCB
	TCB1 *timer.TCB

	USART0  *usart.USART
	SPI0    *spi.SPI
	TWI0    *twi.TWI
	NVMCTRL *nvmctrl.Controller

	Button  *devices.Button
	Pot     *devices.Potentiometer
	LED     *devices.LED
	Display *devices.SevenSegment
	Serial  *devices.SerialSink

	tickables []peripheral.Ticker
}

// New builds a complete ATtiny1626/QUTy machine. serialOut receives
// every byte the firmware transmits over USART0 (pass nil to only
// buffer it in Serial).
func New(serialOut io.Writer) *Machine {
	m := &Machine{Flash: NewFlash(FlashWords)}
	m.CPUInt = cpuint.New()

	m.Bus = bus.New(&m.registers, SRAMBase, SRAMSize)

	m.Chip = avr.Init(&avr.ChipDef{
		Bus:       m.Bus,
		Flash:     m.Flash,
		Registers: &m.registers,
		CPUINT:    m.CPUInt,
		SPTop:     SRAMBase + SRAMSize - 1,
	})

	m.CLKCTRL = clkctrl.New(m.Chip)
	addRegion(m.Bus, AddrCLKCTRL, 0x10, m.CLKCTRL)

	m.rstctrl = newRSTCTRL(m.Chip)
	addRegion(m.Bus, AddrRSTCTRL, 0x10, m.rstctrl)

	m.wdt = newWDT(m.Chip)
	m.Chip.SetWDRHook(m.wdt.Kick)
	addRegion(m.Bus, AddrWDT, 0x10, m.wdt)

	m.gpior = &gpior{}
	addRegion(m.Bus, AddrGPIOR, 0x04, m.gpior)

	m.cpuintRegs = newCPUINTRegs(m.CPUInt)
	addRegion(m.Bus, AddrCPUINT, 0x08, m.cpuintRegs)

	m.ccpReg = newCCPReg(m.Chip)
	addRegion(m.Bus, AddrCCP, 0x01, m.ccpReg)

	// Device-facing pin nets: one per GPIO pin on each of three ports.
	var portANets, portBNets, portCNets [8]pin.DigitalDriver
	for i := range portANets {
		portANets[i] = pin.NewNet()
		portBNets[i] = pin.NewNet()
		portCNets[i] = pin.NewNet()
	}

	m.PORTA = port.New(portANets, m.CPUInt, VecPORTA)
	m.PORTB = port.New(portBNets, m.CPUInt, VecPORTB)
	m.PORTC = port.New(portCNets, m.CPUInt, VecPORTC)
	addRegion(m.Bus, AddrPORTA, 0x20, m.PORTA)
	addRegion(m.Bus, AddrPORTB, 0x20, m.PORTB)
	addRegion(m.Bus, AddrPORTC, 0x20, m.PORTC)

	// Board wiring: button on PORTC pin 5, LED on PORTB pin 4,
	// potentiometer wired to an analog net read by ADC0 channel 0,
	// 7-segment display on PORTA pins 0-7, matching the QUTy board's
	// typical lab wiring.
	m.Button = devices.NewButton(portCNets[5])
	m.LED = devices.NewLED(portBNets[4])
	var segs [8]pin.Digital
	for i := range segs {
		segs[i] = portANets[i]
	}
	m.Display = devices.NewSevenSegment(segs)

	potNet := pin.NewAnalogNet()
	m.Pot = devices.NewPotentiometer(potNet)
	var adcInputs [8]pin.Analog
	adcInputs[0] = potNet

	m.VREF = vref.New()
	addRegion(m.Bus, AddrVREF, 0x10, m.VREF)

	m.AC0 = ac.New(m.CPUInt, VecAC0, potNet, nil)
	addRegion(m.Bus, AddrAC0, 0x10, m.AC0)

	m.ADC0 = adc.New(m.CPUInt, VecADC0, adcInputs)
	addRegion(m.Bus, AddrADC0, 0x20, m.ADC0)

	m.RTC = rtc.New(m.CPUInt, VecRTC)
	addRegion(m.Bus, AddrRTC, 0x20, m.RTC)

	m.EVSYS = evsys.New()
	addRegion(m.Bus, AddrEVSYS, 0x20, m.EVSYS)

	m.CCL = ccl.New(portCNets[6], portCNets[7], portBNets[5])
	addRegion(m.Bus, AddrCCL, 0x10, m.CCL)

	m.TCA0 = timer.NewTCA16(m.CPUInt, VecTCA0)
	addRegion(m.Bus, AddrTCA0, 0x40, m.TCA0)

	m.TCB0 = timer.NewTCB(m.CPUInt, VecTCB0)
	addRegion(m.Bus, AddrTCB0, 0x10, m.TCB0)

	m.TCB1 = timer.NewTCB(m.CPUInt, VecTCB1)
	addRegion(m.Bus, AddrTCB1, 0x10, m.TCB1)

	m.Serial = devices.NewSerialSink(serialOut)
	m.USART0 = usart.New(m.CPUInt, VecUSART0, m.Serial)
	addRegion(m.Bus, AddrUSART0, 0x20, m.USART0)

	m.SPI0 = spi.New(m.CPUInt, VecSPI0, nil)
	addRegion(m.Bus, AddrSPI0, 0x20, m.SPI0)

	m.TWI0 = twi.New(m.CPUInt, VecTWI0, nil)
	addRegion(m.Bus, AddrTWI0, 0x20, m.TWI0)

	m.NVMCTRL = nvmctrl.New(m.Chip, m.CPUInt, VecNVMCTRL, m.Flash.Bytes(), make([]uint8, 256))
	addRegion(m.Bus, AddrNVMCTRL, 0x20, m.NVMCTRL)

	m.tickables = []peripheral.Ticker{
		m.PORTA, m.PORTB, m.PORTC,
		m.AC0, m.ADC0, m.RTC, m.CCL,
		m.TCA0, m.TCB0, m.TCB1,
		m.USART0, m.SPI0, m.TWI0,
		m.NVMCTRL, m.wdt,
	}

	return m
}

// Reset restores every component to its power-on state and re-injects
// the power-on reset cause.
func (m *Machine) Reset() {
	m.Chip.InjectResetCause(avr.ResetPowerOn)
	m.Chip.PowerOn()
	m.cpuintRegs.Reset()
	m.CLKCTRL.Reset()
	m.rstctrl.Reset()
	m.wdt.Reset()
	m.gpior.Reset()
	m.PORTA.Reset()
	m.PORTB.Reset()
	m.PORTC.Reset()
	m.VREF.Reset()
	m.AC0.Reset()
	m.ADC0.Reset()
	m.RTC.Reset()
	m.EVSYS.Reset()
	m.CCL.Reset()
	m.TCA0.Reset()
	m.TCB0.Reset()
	m.TCB1.Reset()
	m.USART0.Reset()
	m.SPI0.Reset()
	m.TWI0.Reset()
	m.NVMCTRL.Reset()
}

// Step runs exactly one CPU instruction (or interrupt dispatch) and
// ticks every peripheral by the cycles it consumed, the same
// fetch-then-settle order atari2600.VCS.Tick applies to TIA/PIA/CPU.
func (m *Machine) Step() (int, error) {
	cycles, err := m.Chip.Step()
	if cycles > 0 {
		for _, t := range m.tickables {
			t.Tick(cycles)
		}
	}
	return cycles, err
}
