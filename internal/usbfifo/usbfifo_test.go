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

package usbfifo

import (
	"testing"

	"github.com/stretchr/testify/require"
)

func testRegs() Regs {
	return Regs{UEINTX: 0xE8, UEDATX: 0xF1, UEBCLX: 0xF2, UECONX: 0xE7, UDCON: 0xE0}
}

func TestResetReportsTXINIReady(t *testing.T) {
	f := New(testRegs())
	require.Equal(t, uint8(0x01), f.ReadReg(testRegs().UEINTX))
}

func TestEndpointWritesAccumulateInOrder(t *testing.T) {
	regs := testRegs()
	f := New(regs)

	f.WriteReg(regs.UEDATX, 0x01)
	f.WriteReg(regs.UEDATX, 0x02)
	f.WriteReg(regs.UEDATX, 0x03)

	require.Equal(t, []byte{0x01, 0x02, 0x03}, f.Captured())
	require.Equal(t, uint8(3), f.ReadReg(regs.UEBCLX))
}

func TestUEINTXStoresVerbatim(t *testing.T) {
	regs := testRegs()
	f := New(regs)
	f.WriteReg(regs.UEINTX, 0x00)
	require.Equal(t, uint8(0x00), f.ReadReg(regs.UEINTX))
}

func TestUDCONAndUECONXArePlainStorage(t *testing.T) {
	regs := testRegs()
	f := New(regs)
	f.WriteReg(regs.UECONX, 0x01)
	f.WriteReg(regs.UDCON, 0x02)
	require.Equal(t, uint8(0x01), f.ReadReg(regs.UECONX))
	require.Equal(t, uint8(0x02), f.ReadReg(regs.UDCON))
}
