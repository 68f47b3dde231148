// Copyright © 2019 mg
//
// Permission is hereby granted, free of charge, to any person obtaining a copy
// of this software and associated documentation files (the "Software"), to deal
// in the Software without restriction, including without limitation the rights
// to use, copy, modify, merge, publish, distribute, sublicense, and/or sell
// copies of the Software, and to permit persons to whom the Software is
// furnished to do so, subject to the following conditions:
//
// The above copyright notice and this permission notice shall be included in
// all copies or substantial portions of the Software.
//
// THE SOFTWARE IS PROVIDED "AS IS", WITHOUT WARRANTY OF ANY KIND, EXPRESS OR
// IMPLIED, INCLUDING BUT NOT LIMITED TO THE WARRANTIES OF MERCHANTABILITY,
// FITNESS FOR A PARTICULAR PURPOSE AND NONINFRINGEMENT. IN NO EVENT SHALL THE
// AUTHORS OR COPYRIGHT HOLDERS BE LIABLE FOR ANY CLAIM, DAMAGES OR OTHER
// LIABILITY, WHETHER IN AN ACTION OF CONTRACT, TORT OR OTHERWISE, ARISING FROM,
// OUT OF OR IN CONNECTION WITH THE SOFTWARE OR THE USE OR OTHER DEALINGS IN
// THE SOFTWARE.

package timer

import "github.com/mgavr/avrcore/internal/mem"

// FCPU is the fixed 16 MHz system clock both emulated parts run at.
const FCPU = 16_000_000

// Regs16 is the register window a 16-bit timer instance claims.
type Regs16 struct {
	TCCRA, TCCRB, TCCRC                 uint16
	TCNTL, TCNTH                        uint16
	OCRAL, OCRAH, OCRBL, OCRBH          uint16
	TIMSK, TIFR                         uint16
}

// TonePin names the PINx address/bit a timer toggles in CTC-toggle
// mode, reusing the dispatcher's existing PINx-write-toggles-PORTx
// path (spec §4.2) so the toggle also fires the normal GPIO edge
// fan-out the audio recorder already listens on.
type TonePin struct {
	PinAddr uint16
	Bit     uint8
}

// Timer16 models Timer1 or Timer3 (spec §4.3): 16-bit TCNT with a
// high-byte buffer register, CTC-mode reset at OCRA independent of
// interrupt-enable bits, and optional OC toggle output for tone
// generation.
type Timer16 struct {
	name string
	regs Regs16
	mem  *mem.Dispatcher
	pin  *TonePin

	tccrA, tccrB, tccrC   uint8
	tcnt                  uint16
	ocra, ocrb            uint16
	timsk, tifr           uint8
	highByteBuffer        uint8 // latched on TCNTH/OCRxH write, consumed by the paired low-byte write
	readHighLatch         uint8 // latched on TCNTL read, returned by the following TCNTH read

	prescaleCounter uint32
}

// NewTimer16 builds a 16-bit timer. pin may be nil if this timer
// instance never drives a tone output pin.
func NewTimer16(name string, regs Regs16, m *mem.Dispatcher, pin *TonePin) *Timer16 {
	return &Timer16{name: name, regs: regs, mem: m, pin: pin}
}

func (t *Timer16) Name() string { return t.name }

func (t *Timer16) Addresses() []uint16 {
	return []uint16{
		t.regs.TCCRA, t.regs.TCCRB, t.regs.TCCRC,
		t.regs.TCNTL, t.regs.TCNTH,
		t.regs.OCRAL, t.regs.OCRAH, t.regs.OCRBL, t.regs.OCRBH,
		t.regs.TIMSK, t.regs.TIFR,
	}
}

func (t *Timer16) ReadReg(addr uint16) uint8 {
	switch addr {
	case t.regs.TCCRA:
		return t.tccrA
	case t.regs.TCCRB:
		return t.tccrB
	case t.regs.TCCRC:
		return t.tccrC
	case t.regs.TCNTL:
		t.readHighLatch = uint8(t.tcnt >> 8)
		return uint8(t.tcnt)
	case t.regs.TCNTH:
		return t.readHighLatch
	case t.regs.OCRAL:
		return uint8(t.ocra)
	case t.regs.OCRAH:
		return uint8(t.ocra >> 8)
	case t.regs.OCRBL:
		return uint8(t.ocrb)
	case t.regs.OCRBH:
		return uint8(t.ocrb >> 8)
	case t.regs.TIMSK:
		return t.timsk
	case t.regs.TIFR:
		return t.tifr
	}
	return 0
}

func (t *Timer16) WriteReg(addr uint16, val uint8) {
	switch addr {
	case t.regs.TCCRA:
		t.tccrA = val
	case t.regs.TCCRB:
		t.tccrB = val
	case t.regs.TCCRC:
		t.tccrC = val
	case t.regs.TCNTH:
		t.highByteBuffer = val
	case t.regs.TCNTL:
		t.tcnt = uint16(t.highByteBuffer)<<8 | uint16(val)
	case t.regs.OCRAH:
		t.highByteBuffer = val
	case t.regs.OCRAL:
		t.ocra = uint16(t.highByteBuffer)<<8 | uint16(val)
	case t.regs.OCRBH:
		t.highByteBuffer = val
	case t.regs.OCRBL:
		t.ocrb = uint16(t.highByteBuffer)<<8 | uint16(val)
	case t.regs.TIMSK:
		t.timsk = val
	case t.regs.TIFR:
		t.tifr &^= val
	}
}

func (t *Timer16) mode() Mode {
	wgm := (t.tccrA & 0x03) | ((t.tccrB >> 1) & 0x0C)
	switch wgm {
	case 4, 12:
		return ModeCTC
	case 14, 15, 7:
		return ModeFastPWM
	default:
		return ModeNormal
	}
}

func (t *Timer16) toggleEnabled() bool {
	// COM1A1:0 == 01 selects "toggle OC1A on compare match" in CTC/
	// Normal mode, bits 7:6 of TCCRA.
	return t.tccrA&0xC0 == 0x40
}

func (t *Timer16) divisor() uint32 {
	cs := t.tccrB & 0x07
	table := [8]uint32{0, 1, 8, 64, 256, 1024, 0, 0}
	return table[cs]
}

// Advance steps the counter, handling multiple CTC periods within one
// call (spec §4.3: "wrap must handle multiple periods per advance
// step"). CTC reset at OCRA happens regardless of whether the compare
// interrupt is enabled.
func (t *Timer16) Advance(cycles uint32) {
	div := t.divisor()
	if div == 0 {
		return
	}
	t.prescaleCounter += cycles
	ticks := t.prescaleCounter / div
	t.prescaleCounter %= div
	if ticks == 0 {
		return
	}

	mode := t.mode()
	toggle := t.toggleEnabled() && t.pin != nil

	for i := uint32(0); i < ticks; i++ {
		prev := t.tcnt
		t.tcnt++

		if prev != t.ocra && t.tcnt == t.ocra {
			t.tifr |= 1 << 1 // OCFA
			if toggle && mode == ModeCTC {
				t.mem.Write(t.pin.PinAddr, 1<<t.pin.Bit)
			}
		}
		if prev != t.ocrb && t.tcnt == t.ocrb {
			t.tifr |= 1 << 2 // OCFB
		}
		if mode == ModeCTC && t.tcnt > t.ocra {
			t.tcnt = 0
		}
		if t.tcnt == 0 && prev == 0xFFFF {
			t.tifr |= 1 << 0 // TOV
		}
	}
}

// ToneHz reports the CTC-toggle tone frequency this timer currently
// drives, per spec §4.3: F_CPU / (2*prescaler*(OCRA+1)). active is
// false when the timer is not in a toggling CTC configuration.
func (t *Timer16) ToneHz() (hz float64, active bool) {
	if !t.toggleEnabled() || t.mode() != ModeCTC {
		return 0, false
	}
	div := t.divisor()
	if div == 0 {
		return 0, false
	}
	return float64(FCPU) / (2 * float64(div) * float64(uint32(t.ocra)+1)), true
}
