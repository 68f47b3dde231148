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

// Regs4 is the register window Timer4 claims (32u4 only).
type Regs4 struct {
	TCCRA, TCCRB, TCCRC, TCCRD, TCCRE uint16
	TC4H                              uint16 // high-byte buffer shared by all 10-bit accesses
	TCNT, OCRA, OCRB, OCRC            uint16
	TIMSK, TIFR                       uint16
}

// Timer4 models the ATmega32u4's 10-bit high-speed timer: OCR4C is
// the counter TOP (not a fixed 0x3FF wrap), and every 10-bit register
// access is split across an 8-bit low byte and the shared TC4H high
// two bits (spec §4.3).
type Timer4 struct {
	regs Regs4
	mem  *mem.Dispatcher

	tccrA, tccrB, tccrC, tccrD, tccrE uint8
	tc4h                              uint8
	tcnt, ocra, ocrb, ocrc            uint16
	timsk, tifr                       uint8

	prescaleCounter uint32
}

// NewTimer4 builds the Timer4 peripheral.
func NewTimer4(regs Regs4, m *mem.Dispatcher) *Timer4 {
	return &Timer4{regs: regs, mem: m, ocrc: 0x3FF}
}

func (t *Timer4) Name() string { return "timer4" }

func (t *Timer4) Addresses() []uint16 {
	return []uint16{
		t.regs.TCCRA, t.regs.TCCRB, t.regs.TCCRC, t.regs.TCCRD, t.regs.TCCRE,
		t.regs.TC4H, t.regs.TCNT, t.regs.OCRA, t.regs.OCRB, t.regs.OCRC,
		t.regs.TIMSK, t.regs.TIFR,
	}
}

func (t *Timer4) ReadReg(addr uint16) uint8 {
	switch addr {
	case t.regs.TCCRA:
		return t.tccrA
	case t.regs.TCCRB:
		return t.tccrB
	case t.regs.TCCRC:
		return t.tccrC
	case t.regs.TCCRD:
		return t.tccrD
	case t.regs.TCCRE:
		return t.tccrE
	case t.regs.TC4H:
		return t.tc4h
	case t.regs.TCNT:
		return uint8(t.tcnt)
	case t.regs.OCRA:
		return uint8(t.ocra)
	case t.regs.OCRB:
		return uint8(t.ocrb)
	case t.regs.OCRC:
		return uint8(t.ocrc)
	case t.regs.TIMSK:
		return t.timsk
	case t.regs.TIFR:
		return t.tifr
	}
	return 0
}

func (t *Timer4) WriteReg(addr uint16, val uint8) {
	ten := func(lo uint8) uint16 { return uint16(t.tc4h&0x03)<<8 | uint16(lo) }
	switch addr {
	case t.regs.TCCRA:
		t.tccrA = val
	case t.regs.TCCRB:
		t.tccrB = val
	case t.regs.TCCRC:
		t.tccrC = val
	case t.regs.TCCRD:
		t.tccrD = val
	case t.regs.TCCRE:
		t.tccrE = val
	case t.regs.TC4H:
		t.tc4h = val
	case t.regs.TCNT:
		t.tcnt = ten(val)
	case t.regs.OCRA:
		t.ocra = ten(val)
	case t.regs.OCRB:
		t.ocrb = ten(val)
	case t.regs.OCRC:
		t.ocrc = ten(val)
	case t.regs.TIMSK:
		t.timsk = val
	case t.regs.TIFR:
		t.tifr &^= val
	}
}

func (t *Timer4) divisor() uint32 {
	cs := t.tccrB & 0x0F
	return timer4Prescale[cs]
}

// Advance counts from 0 up to OCRC (TOP), wrapping and raising OVF on
// wrap and COMPA/COMPB on match, same multi-period-per-call handling
// as Timer16.
func (t *Timer4) Advance(cycles uint32) {
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
	top := t.ocrc
	if top == 0 {
		top = 0x3FF
	}
	for i := uint32(0); i < ticks; i++ {
		prev := t.tcnt
		t.tcnt++
		if prev != t.ocra && t.tcnt == t.ocra {
			t.tifr |= 1 << 1
		}
		if prev != t.ocrb && t.tcnt == t.ocrb {
			t.tifr |= 1 << 2
		}
		if t.tcnt > top {
			t.tcnt = 0
			t.tifr |= 1 << 6 // TOV4 is bit 6 on the real TIFR4 layout
		}
	}
}

// toggleEnabled mirrors Timer16's COM bit check: COM4A1:0 == 01
// selects "toggle OC4A on compare match", bits 7:6 of TCCR4A.
func (t *Timer4) toggleEnabled() bool {
	return t.tccrA&0xC0 == 0x40
}

// ToneHz reports the tone frequency this timer drives when configured
// as a toggling counter with OCR4C as TOP (spec §4.3/§4.7 channel
// priority), using the same F_CPU/(2*prescaler*(TOP+1)) relation as
// Timer16's CTC toggle mode.
func (t *Timer4) ToneHz() (hz float64, active bool) {
	if !t.toggleEnabled() {
		return 0, false
	}
	div := t.divisor()
	if div == 0 {
		return 0, false
	}
	top := t.ocrc
	if top == 0 {
		top = 0x3FF
	}
	return float64(FCPU) / (2 * float64(div) * float64(uint32(top)+1)), true
}
