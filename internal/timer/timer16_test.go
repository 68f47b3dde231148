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

import (
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/mgavr/avrcore/internal/cpuid"
	"github.com/mgavr/avrcore/internal/mem"
)

func newCTCTimer1(t *testing.T) (*Timer16, *mem.Dispatcher) {
	t.Helper()
	d := mem.NewDispatcher(cpuid.For328P(), &mem.Clock{})
	pin := &TonePin{PinAddr: 0x23, Bit: 1} // PINB, bit 1 (OC1A)
	regs := Regs16{
		TCCRA: 0x80, TCCRB: 0x81, TCCRC: 0x82,
		TCNTL: 0x84, TCNTH: 0x85,
		OCRAL: 0x88, OCRAH: 0x89, OCRBL: 0x8A, OCRBH: 0x8B,
		TIMSK: 0x6F, TIFR: 0x36,
	}
	tm := NewTimer16("timer1", regs, d, pin)

	tm.WriteReg(regs.TCCRA, 0x40) // COM1A1:0 = 01, toggle on compare match
	tm.WriteReg(regs.TCCRB, 0x09) // WGM13:12 = 01 (CTC, OCRA top), CS10 = 1 (no prescale)
	tm.WriteReg(regs.OCRAH, 0)
	tm.WriteReg(regs.OCRAL, 3)
	return tm, d
}

// S5: CTC-toggle mode flips the OC1A pin every OCRA+1 counts and
// reports the matching tone frequency.
func TestTimer16CTCToneFrequency(t *testing.T) {
	tm, _ := newCTCTimer1(t)
	hz, active := tm.ToneHz()
	require.True(t, active)
	require.InDelta(t, 2_000_000.0, hz, 0.001)
}

func TestTimer16CTCTogglesPinOnCompareMatch(t *testing.T) {
	tm, d := newCTCTimer1(t)

	tm.Advance(4) // one full OCRA+1 period at div=1
	require.Equal(t, uint8(1), d.ReadPort(mem.PortB)&0x02>>1)

	tm.Advance(4) // second period flips it back
	require.Equal(t, uint8(0), d.ReadPort(mem.PortB)&0x02>>1)
}

// Multiple CTC periods elapsing within one Advance call must all be
// accounted for (spec §4.3), not just the first.
func TestTimer16AdvanceHandlesMultiplePeriods(t *testing.T) {
	tm, d := newCTCTimer1(t)

	tm.Advance(16) // four full periods -> pin ends back where it started
	require.Equal(t, uint8(0), d.ReadPort(mem.PortB)&0x02>>1)
}
