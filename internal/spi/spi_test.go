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

package spi

import (
	"testing"

	"github.com/stretchr/testify/require"
)

type fakeDevice struct {
	active  bool
	seen    []uint8
	reply   uint8
}

func (d *fakeDevice) CSActive() bool { return d.active }
func (d *fakeDevice) Transfer(out uint8) uint8 {
	d.seen = append(d.seen, out)
	return d.reply
}

// spec §4.2: every SPDR write is offered to every device on the bus;
// only the asserted device's reply is latched.
func TestBroadcastOffersByteToEveryDevice(t *testing.T) {
	bus := NewBus(Regs{SPCR: 0x4C, SPSR: 0x4D, SPDR: 0x4E})
	display := &fakeDevice{active: false, reply: 0x11}
	flash := &fakeDevice{active: true, reply: 0x22}
	bus.AddDevice(display)
	bus.AddDevice(flash)

	bus.WriteReg(0x4E, 0x55)

	require.Equal(t, []uint8{0x55}, display.seen, "inactive device still sees the byte")
	require.Equal(t, []uint8{0x55}, flash.seen)
	require.Equal(t, uint8(0x22), bus.ReadReg(0x4E), "only the asserted device's reply is latched")
}

func TestSPDRReadsFFWhenNoDeviceActive(t *testing.T) {
	bus := NewBus(Regs{SPCR: 0x4C, SPSR: 0x4D, SPDR: 0x4E})
	bus.AddDevice(&fakeDevice{active: false, reply: 0x99})

	bus.WriteReg(0x4E, 0x01)
	require.Equal(t, uint8(0xFF), bus.ReadReg(0x4E))
}

func TestSPSRAlwaysReportsSPIFSet(t *testing.T) {
	bus := NewBus(Regs{SPCR: 0x4C, SPSR: 0x4D, SPDR: 0x4E})
	require.Equal(t, uint8(0x80), bus.ReadReg(0x4D)&0x80)
}
