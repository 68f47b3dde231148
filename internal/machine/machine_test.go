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

package machine

import (
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/mgavr/avrcore/internal/cpuid"
)

// rjmpSelfHex is a one-instruction program: RJMP .-2 (opcode 0xCFFF),
// an infinite loop at word address 0, 2 cycles per execution.
const rjmpSelfHex = ":02000000FFCF30\n:00000001FF\n"

// S1: loading a HEX image places its bytes in flash at the given
// address and the core executes them.
func TestLoadHexAndRun(t *testing.T) {
	m := New(cpuid.ATmega328P)
	require.NoError(t, m.LoadHex(rjmpSelfHex))

	spent, reason, err := m.RunFor(20)
	require.NoError(t, err)
	require.Equal(t, StopBudgetExhausted, reason)
	require.Equal(t, uint32(20), spent)
	require.Equal(t, uint32(0), m.CPU.PC)
}

// S7: RunFor(cycles) always consumes at least the requested budget,
// stopping only once an instruction boundary lands on or past it.
func TestRunForHonorsCycleBudget(t *testing.T) {
	m := New(cpuid.ATmega328P)
	require.NoError(t, m.LoadHex(rjmpSelfHex))

	spent, reason, err := m.RunFor(1)
	require.NoError(t, err)
	require.Equal(t, StopBudgetExhausted, reason)
	require.GreaterOrEqual(t, spent, uint32(1))
}

func TestRunForStopsOnBreakpoint(t *testing.T) {
	m := New(cpuid.ATmega328P)
	require.NoError(t, m.LoadHex(rjmpSelfHex))
	m.Breakpoints.Add(0)

	_, reason, err := m.RunFor(100)
	require.Error(t, err)
	require.Equal(t, StopBreakpoint, reason)
}

func TestUnknownOpcodeIsFatal(t *testing.T) {
	m := New(cpuid.ATmega328P)
	// 0xFFFF decodes to nothing in this instruction set.
	require.NoError(t, m.Flash.LoadBytesAt(0, []byte{0xFF, 0xFF}))

	_, reason, err := m.RunFor(100)
	require.Error(t, err)
	require.Equal(t, StopFatalError, reason)
	require.Equal(t, 3, ExitCode(err))
}

// Snapshot round-trip (spec §4.8 invariant #6): restoring a pushed
// snapshot must put the CPU, data space and EEPROM back exactly as
// they were when it was pushed, discarding any progress made after.
func TestSnapshotRoundTrip(t *testing.T) {
	m := New(cpuid.ATmega328P)
	require.NoError(t, m.LoadHex(rjmpSelfHex))
	m.CPU.R[5] = 0x42
	m.EEPROM.Write(10, 0x77)

	m.PushSnapshot()

	m.CPU.R[5] = 0x99
	m.EEPROM.Write(10, 0x01)
	_, _, err := m.RunFor(4)
	require.NoError(t, err)

	require.NoError(t, m.RestoreSnapshot(0))
	require.Equal(t, uint8(0x42), m.CPU.R[5])
	require.Equal(t, uint8(0x77), m.EEPROM.Read(10))
}

func TestLoadEEPROMImagePreloadsController(t *testing.T) {
	m := New(cpuid.ATmega328P)
	img := make([]byte, m.Variant.EEPROMSize)
	img[3] = 0x55
	m.LoadEEPROMImage(img)
	require.Equal(t, uint8(0x55), m.EEPROM.Read(3))
}
