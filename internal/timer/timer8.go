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

// Regs8 is the register window one 8-bit timer instance claims.
type Regs8 struct {
	TCCRA, TCCRB, TCNT, OCRA, OCRB, TIMSK, TIFR uint16
}

// PWMSink receives each OCR2B write while Timer2 drives Fast-PWM
// mode, feeding the PWM-DAC audio path (Timer2 on the 328P driving
// OCR2B from a Timer1 ISR). Only Timer2 ever wires one; Timer0 has no
// PWM-DAC path.
type PWMSink interface {
	OnOCRBWrite(tick uint64, value uint8)
}

// Timer8 models Timer0 or Timer2 (spec §4.3). Timer2 alone uses the
// full eight-entry prescale table; Timer0 uses the shorter one.
type Timer8 struct {
	name    string
	regs    Regs8
	table   [8]uint32
	mem     *mem.Dispatcher
	pwmSink PWMSink

	tccrA, tccrB, tcnt, ocra, ocrb, timsk, tifr uint8
	prescaleCounter                            uint32
}

// NewTimer0 builds an 8-bit timer using Timer0's short prescale table.
func NewTimer0(regs Regs8, m *mem.Dispatcher) *Timer8 {
	return &Timer8{name: "timer0", regs: regs, table: timer0Prescale, mem: m}
}

// NewTimer2 builds an 8-bit timer using Timer2's full prescale table.
func NewTimer2(regs Regs8, m *mem.Dispatcher) *Timer8 {
	return &Timer8{name: "timer2", regs: regs, table: timer2Prescale, mem: m}
}

func (t *Timer8) Name() string { return t.name }

// SetPWMSink registers the PWM-DAC observer for OCR2B writes.
func (t *Timer8) SetPWMSink(s PWMSink) { t.pwmSink = s }

func (t *Timer8) Addresses() []uint16 {
	return []uint16{t.regs.TCCRA, t.regs.TCCRB, t.regs.TCNT, t.regs.OCRA, t.regs.OCRB, t.regs.TIMSK, t.regs.TIFR}
}

func (t *Timer8) ReadReg(addr uint16) uint8 {
	switch addr {
	case t.regs.TCCRA:
		return t.tccrA
	case t.regs.TCCRB:
		return t.tccrB
	case t.regs.TCNT:
		return t.tcnt
	case t.regs.OCRA:
		return t.ocra
	case t.regs.OCRB:
		return t.ocrb
	case t.regs.TIMSK:
		return t.timsk
	case t.regs.TIFR:
		return t.tifr
	}
	return 0
}

func (t *Timer8) WriteReg(addr uint16, val uint8) {
	switch addr {
	case t.regs.TCCRA:
		t.tccrA = val
	case t.regs.TCCRB:
		t.tccrB = val
	case t.regs.TCNT:
		t.tcnt = val
	case t.regs.OCRA:
		t.ocra = val
	case t.regs.OCRB:
		t.ocrb = val
		if t.pwmSink != nil && t.mode() == ModeFastPWM {
			t.pwmSink.OnOCRBWrite(t.mem.Now(), val)
		}
	case t.regs.TIMSK:
		t.timsk = val
	case t.regs.TIFR:
		// write-1-to-clear
		t.tifr &^= val
	}
}

func (t *Timer8) mode() Mode {
	wgm := (t.tccrA & 0x03) | ((t.tccrB >> 1) & 0x04)
	switch wgm {
	case 2:
		return ModeCTC
	case 3, 7:
		return ModeFastPWM
	default:
		return ModeNormal
	}
}

func (t *Timer8) divisor() uint32 {
	cs := t.tccrB & 0x07
	return t.table[cs]
}

func (t *Timer8) toggleEnabled() bool {
	// COM2A1:0 == 01 selects "toggle OC2A on compare match", same bit
	// layout as Timer16's COM1A1:0.
	return t.tccrA&0xC0 == 0x40
}

// ToneHz reports the CTC-toggle tone frequency Timer2 currently
// drives on OC2A, mirroring Timer16.ToneHz. Timer0 never wires a tone
// pin so this is dead weight there, harmlessly always inactive.
func (t *Timer8) ToneHz() (hz float64, active bool) {
	if !t.toggleEnabled() || t.mode() != ModeCTC {
		return 0, false
	}
	div := t.divisor()
	if div == 0 {
		return 0, false
	}
	return float64(FCPU) / (2 * float64(div) * float64(uint32(t.ocra)+1)), true
}

// PWMActive reports whether Timer2 is currently configured for
// Fast-PWM, the mode the PWM-DAC audio path drives OCR2B in.
func (t *Timer8) PWMActive() bool { return t.mode() == ModeFastPWM }

// Advance steps the prescaler and counter by cycles CPU ticks, raising
// OCFA/OCFB/TOV in TIFR. Hardware priority (COMPA > COMPB > OVF) is
// enforced by the interrupt controller's vector-table order, not by
// this function; Advance may set more than one flag per call.
func (t *Timer8) Advance(cycles uint32) {
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
	for i := uint32(0); i < ticks; i++ {
		prev := t.tcnt
		t.tcnt++

		if prev != t.ocra && t.tcnt == t.ocra {
			t.tifr |= 1 << 1 // OCFA
		}
		if prev != t.ocrb && t.tcnt == t.ocrb {
			t.tifr |= 1 << 2 // OCFB
		}

		if mode == ModeCTC && t.tcnt > t.ocra {
			t.tcnt = 0
		}
		if t.tcnt == 0 && prev == 0xFF {
			t.tifr |= 1 << 0 // TOV
		}
	}
}
