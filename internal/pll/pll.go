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

// Package pll models the 32u4's USB PLL configuration registers
// (PLLCSR/PLLFRQ). Neither this core nor the games it runs depend on
// the PLL actually multiplying a clock — the system clock is fixed at
// 16 MHz (spec §3) regardless of PLL lock state — so this peripheral
// only tracks the lock bit software polls after requesting PLL
// enable, matching the way real firmware busy-waits on PLOCK before
// using the USB interface.
package pll

// Regs is the register window the PLL peripheral claims.
type Regs struct {
	PLLCSR, PLLFRQ uint16
}

// PLL reports itself locked one Advance cycle after PLLE is set,
// standing in for the real analog lock time.
type PLL struct {
	regs Regs

	pllcsr, pllfrq uint8
	lockPending    bool
}

func New(regs Regs) *PLL {
	return &PLL{regs: regs}
}

func (p *PLL) Name() string { return "pll" }

func (p *PLL) Addresses() []uint16 { return []uint16{p.regs.PLLCSR, p.regs.PLLFRQ} }

func (p *PLL) ReadReg(addr uint16) uint8 {
	switch addr {
	case p.regs.PLLCSR:
		return p.pllcsr
	case p.regs.PLLFRQ:
		return p.pllfrq
	}
	return 0
}

func (p *PLL) WriteReg(addr uint16, val uint8) {
	switch addr {
	case p.regs.PLLCSR:
		p.pllcsr = val & 0xFE // PLOCK (bit0) is read-only, hardware-set
		if val&0x02 != 0 {    // PLLE
			p.lockPending = true
		}
	case p.regs.PLLFRQ:
		p.pllfrq = val
	}
}

func (p *PLL) Advance(cycles uint32) {
	if p.lockPending {
		p.pllcsr |= 0x01 // PLOCK
		p.lockPending = false
	}
}
