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

// Package timer implements the four AVR timer/counter families this
// core models (spec §4.3): Timer8 (Timer0/Timer2), Timer16
// (Timer1/Timer3) and Timer4 (32u4 10-bit high-speed PWM). Each is
// driven externally by Advance(cycles) and claims its own register
// window through the peripheral.Peripheral interface, the same
// per-device ownership model the teacher's pkg/mappers.Mapper uses
// for cartridge banking logic inside pkg/bus.Bus.
package timer

// Mode selects the counting behavior a CS (clock-select) field and
// waveform-generation bits would normally select together; this core
// only needs to distinguish the three modes spec §4.3 calls out.
type Mode int

const (
	ModeNormal Mode = iota
	ModeCTC
	ModeFastPWM
)

// timer0Prescale and timer2Prescale are the CS[2:0] divisor tables;
// Timer2 alone supports the full eight-entry table (spec §4.3), all
// other 8/16-bit timers share the shorter /1../1024 table at indices
// 0-5 (AVR CS field 6 and 7 are reserved for external clock sources,
// not modeled here since no emulated game drives Tn externally).
var timer0Prescale = [8]uint32{0, 1, 8, 64, 256, 1024, 0, 0}
var timer2Prescale = [8]uint32{0, 1, 8, 32, 64, 128, 256, 1024}

// timer4Prescale is the extended Timer4 table, /1 through /16384.
var timer4Prescale = [16]uint32{0, 1, 2, 4, 8, 16, 32, 64, 128, 256, 512, 1024, 2048, 4096, 8192, 16384}
