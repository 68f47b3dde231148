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

// Package adc models the ADC peripheral register window. Spec §3
// lists ADC among the peripherals the dispatcher must route to but
// does not define conversion timing or channel semantics beyond
// register presence; games on both emulated targets poll ADLAR/ADSC
// for button-rail voltage reads that this core treats as inputs
// outside its scope (spec §1 "Out of scope": gamepad/keyboard
// polling), so conversions here complete immediately with a fixed
// mid-scale result rather than modeling the analog front end.
package adc

// Regs is the register window the ADC peripheral claims.
type Regs struct {
	ADMUX, ADCSRA, ADCSRB, ADCL, ADCH, DIDR0 uint16
}

// ADC is a register-accurate but timing-approximate 10-bit converter.
type ADC struct {
	regs Regs

	admux, adcsra, adcsrb, didr0 uint8
	result                       uint16
}

// New builds the peripheral; result is the fixed conversion value
// returned once ADSC completes (immediately, see package doc).
func New(regs Regs, result uint16) *ADC {
	return &ADC{regs: regs, result: result & 0x03FF}
}

func (a *ADC) Name() string { return "adc" }

func (a *ADC) Addresses() []uint16 {
	return []uint16{a.regs.ADMUX, a.regs.ADCSRA, a.regs.ADCSRB, a.regs.ADCL, a.regs.ADCH, a.regs.DIDR0}
}

func (a *ADC) ReadReg(addr uint16) uint8 {
	switch addr {
	case a.regs.ADMUX:
		return a.admux
	case a.regs.ADCSRA:
		return a.adcsra
	case a.regs.ADCSRB:
		return a.adcsrb
	case a.regs.ADCL:
		return uint8(a.result)
	case a.regs.ADCH:
		return uint8(a.result >> 8)
	case a.regs.DIDR0:
		return a.didr0
	}
	return 0
}

func (a *ADC) WriteReg(addr uint16, val uint8) {
	switch addr {
	case a.regs.ADMUX:
		a.admux = val
	case a.regs.ADCSRA:
		a.adcsra = val &^ 0x40 // ADSC (bit6) self-clears, conversion completes same cycle
	case a.regs.ADCSRB:
		a.adcsrb = val
	case a.regs.DIDR0:
		a.didr0 = val
	}
}

func (a *ADC) Advance(cycles uint32) {}
