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

package avrcpu

import (
	"testing"

	"github.com/mgavr/avrcore/internal/cpuid"
	"github.com/mgavr/avrcore/internal/mem"
	"github.com/stretchr/testify/require"
)

func newTestCPU(t *testing.T) (*CPU, *mem.Flash) {
	t.Helper()
	variant := cpuid.For328P()
	clock := &mem.Clock{}
	flash := mem.NewFlash(variant.FlashWords)
	disp := mem.NewDispatcher(variant, clock)
	cpu := New(disp, flash, clock)
	cpu.Reset(0x08FF)
	return cpu, flash
}

func assemble(t *testing.T, flash *mem.Flash, words ...uint16) {
	t.Helper()
	raw := make([]byte, len(words)*2)
	for i, w := range words {
		raw[2*i] = byte(w)
		raw[2*i+1] = byte(w >> 8)
	}
	require.NoError(t, flash.LoadBytes(raw))
}

// S2: R16=0x7F, ADD R16,R16 -> R16=0xFE, N=1 V=1 C=0 H=1 S=0 Z=0.
func TestAddFlagContractS2(t *testing.T) {
	cpu, flash := newTestCPU(t)
	assemble(t, flash, 0x0D00) // ADD R16,R16
	cpu.R[16] = 0x7F

	_, err := cpu.Step()
	require.NoError(t, err)

	require.Equal(t, uint8(0xFE), cpu.R[16])
	require.Equal(t, uint8(1), cpu.GetFlag(FlagN))
	require.Equal(t, uint8(1), cpu.GetFlag(FlagV))
	require.Equal(t, uint8(0), cpu.GetFlag(FlagC))
	require.Equal(t, uint8(1), cpu.GetFlag(FlagH))
	require.Equal(t, uint8(0), cpu.GetFlag(FlagS))
	require.Equal(t, uint8(0), cpu.GetFlag(FlagZ))
}

// S3: SREG.Z=1 going in, SBC R0,R0 with R0=0 and C=0 -> result 0, Z stays 1.
func TestSbcZeroPreservationS3(t *testing.T) {
	cpu, flash := newTestCPU(t)
	assemble(t, flash, 0x0800) // SBC R0,R0
	cpu.R[0] = 0
	cpu.SetFlag(FlagZ, true)
	cpu.SetFlag(FlagC, false)

	_, err := cpu.Step()
	require.NoError(t, err)

	require.Equal(t, uint8(0), cpu.R[0])
	require.Equal(t, uint8(1), cpu.GetFlag(FlagZ))
}

// CPC Rd,Rr followed by BREQ branches iff the 16-bit compare was zero.
func TestCpcBreqChain(t *testing.T) {
	cpu, flash := newTestCPU(t)
	// CP R2,R4 ; CPC R3,R5 ; BREQ +2
	assemble(t, flash,
		0x1424, // CP R2,R4  (0001 01rd dddd rrrr, d=2 r=4)
		0x0435, // CPC R3,R5 (0000 01rd dddd rrrr, d=3 r=5)
		0xF009, // BREQ .+1  (1111 00kk kkkkk sss, k=1 s=1/Z)
	)
	cpu.R[2], cpu.R[4] = 0x10, 0x10
	cpu.R[3], cpu.R[5] = 0x20, 0x20

	_, err := cpu.Step()
	require.NoError(t, err)
	_, err = cpu.Step()
	require.NoError(t, err)

	require.Equal(t, uint8(1), cpu.GetFlag(FlagZ), "16-bit compare of equal values must leave Z set")

	pcBefore := cpu.PC
	cycles, err := cpu.Step()
	require.NoError(t, err)
	require.Equal(t, uint32(2), cycles, "branch must be taken and cost 2 cycles")
	require.NotEqual(t, pcBefore+1, cpu.PC)
}

func TestPinxToggleIsPortxXor(t *testing.T) {
	variant := cpuid.For328P()
	clock := &mem.Clock{}
	disp := mem.NewDispatcher(variant, clock)

	const ddrb, portb, pinb = 0x24, 0x25, 0x23
	disp.Write(ddrb, 0xFF)
	disp.Write(portb, 0x0F)
	disp.Write(pinb, 0x05) // toggle bits 0 and 2

	require.Equal(t, uint8(0x0F^0x05), disp.Read(portb))
}
