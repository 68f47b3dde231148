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

// Package eeprom wraps internal/mem.EEPROM as a memory-mapped
// peripheral: EEAR/EEDR/EECR register access plus the EE_READY
// interrupt flag, the same split the teacher keeps between raw
// backing storage (pkg/memory.Memory) and the device that fronts it.
package eeprom

import "github.com/mgavr/avrcore/internal/mem"

// Regs is the register window the controller claims.
type Regs struct {
	EEARL, EEARH, EEDR, EECR uint16
}

// Controller fronts a mem.EEPROM with the AVR EEAR/EEDR/EECR protocol.
// Real EEPROM writes take ~3.4ms; since this core advances in whole
// instructions with no wall-clock throttling elsewhere, a write
// completes and raises EE_READY (EECR bit EERIE's paired flag) after
// a fixed cycle budget.
type Controller struct {
	regs Regs
	ee   *mem.EEPROM

	eear        uint16
	eedr        uint8
	eecr        uint8
	writeCycles uint32 // counts down while a write is "in flight"
}

const eepromWriteCycles = 52_800 // approximates the datasheet's ~3.3ms at 16MHz; emulator ticks are CPU cycles

// eeReadyFlagBit is a reserved (always-zero on real hardware) bit of
// EECR that this controller repurposes to carry the EE_READY
// condition: level-triggered on "no write in flight", independent of
// EERIE (bit 3), the enable bit it would otherwise collide with if the
// interrupt table reused it as its own flag bit.
const eeReadyFlagBit = 6

// eecrWritableMask covers the real control bits a CPU instruction can
// set: EERE, EEPE, EEMPE, EERIE. Higher bits are reserved.
const eecrWritableMask = 0x0F

// New builds the controller over an already-allocated EEPROM.
func New(regs Regs, ee *mem.EEPROM) *Controller {
	return &Controller{regs: regs, ee: ee, eecr: 0x00} // EEPE (bit1) clear: no write in flight at reset
}

func (c *Controller) Name() string { return "eeprom" }

func (c *Controller) Addresses() []uint16 {
	return []uint16{c.regs.EEARL, c.regs.EEARH, c.regs.EEDR, c.regs.EECR}
}

func (c *Controller) ReadReg(addr uint16) uint8 {
	switch addr {
	case c.regs.EEARL:
		return uint8(c.eear)
	case c.regs.EEARH:
		return uint8(c.eear >> 8)
	case c.regs.EEDR:
		return c.eedr
	case c.regs.EECR:
		val := c.eecr
		if !c.WritePending() {
			val |= 1 << eeReadyFlagBit
		}
		return val
	}
	return 0
}

func (c *Controller) WriteReg(addr uint16, val uint8) {
	switch addr {
	case c.regs.EEARL:
		c.eear = (c.eear &^ 0x00FF) | uint16(val)
	case c.regs.EEARH:
		c.eear = (c.eear & 0x00FF) | uint16(val)<<8
	case c.regs.EEDR:
		c.eedr = val
	case c.regs.EECR:
		if val == 1<<eeReadyFlagBit {
			// the interrupt controller's write-1-to-clear probe for
			// EE_READY; the flag is derived, not latched, so there is
			// nothing to clear here. The interrupt keeps re-asserting
			// every instruction boundary until the program clears
			// EERIE or starts another write, same as real hardware.
			return
		}
		c.applyEECR(val)
	}
}

func (c *Controller) applyEECR(val uint8) {
	if val&0x01 != 0 { // EERE: start a read
		c.eedr = c.ee.Read(c.eear)
	}
	if val&0x02 != 0 && c.writeCycles == 0 { // EEWE/EEPE: start a write
		c.ee.Write(c.eear, c.eedr)
		c.writeCycles = eepromWriteCycles
	}
	c.eecr = val & eecrWritableMask
}

// Advance counts down a pending write and, once done, clears EEPE
// (EECR bit1); reads of EECR then report EE_READY (bit 6) again.
func (c *Controller) Advance(cycles uint32) {
	if c.writeCycles == 0 {
		return
	}
	if cycles >= c.writeCycles {
		c.writeCycles = 0
		c.eecr &^= 0x02
	} else {
		c.writeCycles -= cycles
	}
}

// WritePending reports whether a write is still in flight, used by
// the interrupt controller to gate EE_READY.
func (c *Controller) WritePending() bool { return c.writeCycles > 0 }
