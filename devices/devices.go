// Package devices models the QUTy board's external peripherals: a
// push-button, a potentiometer, an LED, a 7-segment display, and the
// USB-serial console sink. It follows atari2600 Joystick/Paddle's shape
// (a small struct wrapping a pin reference with an Input-style
// accessor), adapted so each device drives or reads a pin.Digital/
// pin.Analog net instead of being polled directly by a CPU peripheral.
package devices

import (
	"fmt"
	"io"

	"github.com/cab202/avremu/pin"
)

// Button is a normally-open momentary push-button wired active-low (as
// on the QUTy board): Press drives the net low, Release lets it float
// so the port's internal pull-up (modeled by the caller) reads high.
type Button struct {
	net pin.DigitalDriver
}

// NewButton wraps a net the button drives.
func NewButton(net pin.DigitalDriver) *Button {
	b := &Button{net: net}
	b.Release()
	return b
}

// Press asserts the button (drives its net low).
func (b *Button) Press() { b.net.Drive(pin.Low) }

// Release deasserts the button (lets its net float).
func (b *Button) Release() { b.net.Drive(pin.Floating) }

// Pressed reports the button's current asserted state.
func (b *Button) Pressed() bool { return b.net.Read() == pin.Low }

// Potentiometer drives an analog net with a 0..1 wiper fraction, the
// ADC-facing analogue of atari2600.Paddle.
type Potentiometer struct {
	net pin.AnalogDriver
}

// NewPotentiometer wraps an analog net the potentiometer drives.
func NewPotentiometer(net pin.AnalogDriver) *Potentiometer {
	p := &Potentiometer{net: net}
	p.SetPosition(0)
	return p
}

// SetPosition sets the wiper position as a fraction in [0,1], clamped by
// the underlying net.
func (p *Potentiometer) SetPosition(frac float64) {
	p.net.DriveFraction(frac)
}

// Position returns the current wiper fraction.
func (p *Potentiometer) Position() float64 { return p.net.Fraction() }

// LED is a single LED wired to a GPIO output pin, read-only from the
// device model's perspective (the port drives it; the LED just reports
// whether it is lit).
type LED struct {
	net pin.Digital
}

// NewLED wraps the net a PORT pin drives.
func NewLED(net pin.Digital) *LED {
	return &LED{net: net}
}

// Lit reports whether the LED is currently illuminated (net driven high).
func (l *LED) Lit() bool { return l.net.Read() == pin.High }

// SevenSegment is a common-cathode 7-segment display driven by eight
// GPIO pins (segments a-g plus decimal point); this device model only
// exposes the current segment pattern for an external collaborator to
// render.
type SevenSegment struct {
	segs [8]pin.Digital // a,b,c,d,e,f,g,dp
}

// NewSevenSegment wraps the eight segment-driving nets in a,b,c,d,e,f,g,dp
// order.
func NewSevenSegment(segs [8]pin.Digital) *SevenSegment {
	return &SevenSegment{segs: segs}
}

// Pattern returns the eight segment states packed into one byte, bit 0
// = segment a through bit 7 = decimal point, matching the conventional
// seven-segment byte layout.
func (s *SevenSegment) Pattern() uint8 {
	var b uint8
	for i, seg := range s.segs {
		if seg != nil && seg.Read() == pin.High {
			b |= 1 << uint(i)
		}
	}
	return b
}

// glyphTable maps a segment pattern (as returned by Pattern, active
// high) to the digit it represents, for tests and -o style dumps that
// want a human-readable digit instead of a raw bitmask.
var glyphTable = map[uint8]rune{
	0x3F: '0', 0x06: '1', 0x5B: '2', 0x4F: '3', 0x66: '4',
	0x6D: '5', 0x7D: '6', 0x07: '7', 0x7F: '8', 0x6F: '9',
}

// Glyph returns the displayed digit character for the current segment
// pattern, or '?' if the pattern does not correspond to a decimal digit.
func (s *SevenSegment) Glyph() rune {
	if g, ok := glyphTable[s.Pattern()&0x7F]; ok {
		return g
	}
	return '?'
}

// SerialSink forwards USART0 transmit bytes to an optional io.Writer and
// also buffers everything written, so tests can assert on transcript
// content and the CLI's -o flag can write it to stdout.txt.
type SerialSink struct {
	out io.Writer
	buf []byte
}

// NewSerialSink wraps out; out may be nil to buffer only.
func NewSerialSink(out io.Writer) *SerialSink {
	return &SerialSink{out: out}
}

func (s *SerialSink) Write(p []byte) (int, error) {
	s.buf = append(s.buf, p...)
	if s.out != nil {
		return s.out.Write(p)
	}
	return len(p), nil
}

// String returns everything written so far, for test assertions.
func (s *SerialSink) String() string {
	return string(s.buf)
}

// Debug returns a one-line summary of the sink's buffered length.
func (s *SerialSink) Debug() string {
	return fmt.Sprintf("serial: %d bytes written", len(s.buf))
}
