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

// Package usbfifo models USB endpoint data capture only, per spec §1
// non-goal "cycle-exact USB device enumeration (only endpoint data
// capture is modeled)": UEDATX/UEINTX/UEBCLX give firmware a drained
// FIFO view without a host-side enumeration state machine behind it.
package usbfifo

// Regs is the register window the peripheral claims.
type Regs struct {
	UEINTX, UEDATX, UEBCLX, UECONX, UDCON uint16
}

// FIFO is a single-endpoint capture buffer. Firmware writes to
// UEDATX append to the captured stream; reads drain a fixed queue of
// bytes a host interaction would have produced, none here since the
// host side is out of scope.
type FIFO struct {
	regs Regs

	ueintx, ueconx, udcon uint8
	captured              []byte
}

func New(regs Regs) *FIFO {
	return &FIFO{regs: regs, ueintx: 0x01} // TXINI set: "ready to accept data" at reset
}

func (f *FIFO) Name() string { return "usbfifo" }

func (f *FIFO) Addresses() []uint16 {
	return []uint16{f.regs.UEINTX, f.regs.UEDATX, f.regs.UEBCLX, f.regs.UECONX, f.regs.UDCON}
}

func (f *FIFO) ReadReg(addr uint16) uint8 {
	switch addr {
	case f.regs.UEINTX:
		return f.ueintx
	case f.regs.UEBCLX:
		return uint8(len(f.captured))
	case f.regs.UECONX:
		return f.ueconx
	case f.regs.UDCON:
		return f.udcon
	}
	return 0
}

func (f *FIFO) WriteReg(addr uint16, val uint8) {
	switch addr {
	case f.regs.UEINTX:
		f.ueintx = val // write-0-to-clear handled by firmware convention; stored verbatim
	case f.regs.UEDATX:
		f.captured = append(f.captured, val)
	case f.regs.UECONX:
		f.ueconx = val
	case f.regs.UDCON:
		f.udcon = val
	}
}

// Captured returns every byte firmware has written to the endpoint
// data register since the last reset, for test inspection.
func (f *FIFO) Captured() []byte { return f.captured }

func (f *FIFO) Advance(cycles uint32) {}
