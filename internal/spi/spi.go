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

// Package spi models the single shared SPI master register window
// (spec §4.2/§4.6): a byte written to the data register is offered to
// every device on the bus, and each decides whether to consume it
// based on its own chip-select line. This mirrors the teacher's
// pkg/bus.Bus fan-out to mappers, generalized from address-based
// routing to CS-gated broadcast.
package spi

// Device is one SPI slave sharing the bus. CSActive reports whether
// the device's own chip-select line is currently asserted; only an
// active device's Transfer return value is latched into SPDR.
type Device interface {
	CSActive() bool
	Transfer(out uint8) (in uint8)
}

// Regs is the register window the SPI peripheral claims.
type Regs struct {
	SPCR, SPSR, SPDR uint16
}

// Bus is the shared SPI master peripheral. Devices register
// themselves and are polled in registration order on every SPDR
// write; spec §4.2 requires the byte be offered to all of them, not
// routed exclusively by address.
type Bus struct {
	regs    Regs
	devices []Device

	spcr, spsr, spdr uint8
}

// NewBus builds the shared SPI peripheral.
func NewBus(regs Regs) *Bus {
	return &Bus{regs: regs}
}

// AddDevice registers a slave. Order does not affect correctness
// since at most one CS line is expected active at a time, but devices
// are still polled in this order.
func (b *Bus) AddDevice(d Device) {
	b.devices = append(b.devices, d)
}

func (b *Bus) Name() string { return "spi" }

func (b *Bus) Addresses() []uint16 {
	return []uint16{b.regs.SPCR, b.regs.SPSR, b.regs.SPDR}
}

func (b *Bus) ReadReg(addr uint16) uint8 {
	switch addr {
	case b.regs.SPCR:
		return b.spcr
	case b.regs.SPSR:
		return b.spsr | 0x80 // SPIF always appears set: transfers complete within one write
	case b.regs.SPDR:
		return b.spdr
	}
	return 0
}

func (b *Bus) WriteReg(addr uint16, val uint8) {
	switch addr {
	case b.regs.SPCR:
		b.spcr = val
	case b.regs.SPSR:
		b.spsr = val
	case b.regs.SPDR:
		b.broadcast(val)
	}
}

// broadcast offers out to every device; each decides by CS whether to
// consume it. The last device that reports itself active wins the
// SPDR readback, matching the single physical MISO line on a bus
// where only one CS is expected low at a time.
func (b *Bus) broadcast(out uint8) {
	b.spdr = 0xFF
	for _, d := range b.devices {
		in := d.Transfer(out)
		if d.CSActive() {
			b.spdr = in
		}
	}
}

func (b *Bus) Advance(cycles uint32) {}
