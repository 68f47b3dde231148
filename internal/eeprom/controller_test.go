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

package eeprom

import (
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/mgavr/avrcore/internal/mem"
)

func testRegs() Regs { return Regs{EEARL: 0x41, EEARH: 0x42, EEDR: 0x40, EECR: 0x3F} }

func TestReadRegLoadsFromEEPROMAtEEAR(t *testing.T) {
	regs := testRegs()
	ee := mem.NewEEPROM(1024)
	ee.Write(0x0005, 0x77)
	c := New(regs, ee)

	c.WriteReg(regs.EEARL, 0x05)
	c.WriteReg(regs.EEARH, 0x00)
	c.WriteReg(regs.EECR, 0x01) // EERE

	require.Equal(t, uint8(0x77), c.ReadReg(regs.EEDR))
}

func TestWriteRegStoresEEDRAtEEARAndStartsTimer(t *testing.T) {
	regs := testRegs()
	ee := mem.NewEEPROM(1024)
	c := New(regs, ee)

	c.WriteReg(regs.EEARH, 0x01)
	c.WriteReg(regs.EEARL, 0x00) // address 0x0100
	c.WriteReg(regs.EEDR, 0x99)
	c.WriteReg(regs.EECR, 0x02) // EEWE/EEPE

	require.Equal(t, uint8(0x99), ee.Read(0x0100))
	require.True(t, c.WritePending())
}

func TestAdvanceClearsWritePendingAfterBudget(t *testing.T) {
	regs := testRegs()
	ee := mem.NewEEPROM(1024)
	c := New(regs, ee)
	c.WriteReg(regs.EEDR, 0x01)
	c.WriteReg(regs.EECR, 0x02)
	require.True(t, c.WritePending())

	c.Advance(eepromWriteCycles - 1)
	require.True(t, c.WritePending())

	c.Advance(1)
	require.False(t, c.WritePending())
}

// A second EEWE while a write is already in flight must not restart
// the timer or clobber the in-progress write's destination.
func TestSecondWriteWhileBusyIsIgnored(t *testing.T) {
	regs := testRegs()
	ee := mem.NewEEPROM(1024)
	c := New(regs, ee)

	c.WriteReg(regs.EEDR, 0x01)
	c.WriteReg(regs.EECR, 0x02)
	c.Advance(eepromWriteCycles - 1)

	c.WriteReg(regs.EEARL, 0x05)
	c.WriteReg(regs.EEDR, 0x02)
	c.WriteReg(regs.EECR, 0x02) // busy, should be a no-op

	c.Advance(1)
	require.False(t, c.WritePending())
	require.Equal(t, uint8(0xFF), ee.Read(0x0005), "the ignored second write must not land")
}

// EE_READY's flag bit (bit 6) must track WritePending, not EERIE
// (bit 3) — the interrupt vector table reads them as two separate
// bits of the same register.
func TestReadRegEECRCarriesReadyFlagIndependentOfEERIE(t *testing.T) {
	regs := testRegs()
	ee := mem.NewEEPROM(1024)
	c := New(regs, ee)

	c.WriteReg(regs.EECR, 0x08) // EERIE only, no write started
	require.Equal(t, uint8(0x48), c.ReadReg(regs.EECR), "ready (bit6) set, EERIE (bit3) set, nothing else")

	c.WriteReg(regs.EEDR, 0x01)
	c.WriteReg(regs.EECR, 0x0A) // EEWE/EEPE + EERIE: start a write
	require.Equal(t, uint8(0x0A), c.ReadReg(regs.EECR), "ready bit clears while the write is in flight")

	c.Advance(eepromWriteCycles)
	require.Equal(t, uint8(0x48), c.ReadReg(regs.EECR), "ready bit returns once the write completes, EERIE still set")
}

// The interrupt controller's generic write-1-to-clear probe for
// EE_READY must not disturb the real control bits it shares a
// register with.
func TestWriteRegIgnoresInterruptControllerClearProbe(t *testing.T) {
	regs := testRegs()
	ee := mem.NewEEPROM(1024)
	c := New(regs, ee)
	c.WriteReg(regs.EECR, 0x08) // EERIE set

	c.WriteReg(regs.EECR, 1<<eeReadyFlagBit)

	require.Equal(t, uint8(0x48), c.ReadReg(regs.EECR), "EERIE must survive the dispatch-clear probe")
}
