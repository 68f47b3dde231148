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

// setAddFlags applies the datasheet ADD/ADC flag formulas for
// Rd + Rr (+carry) = R. H is half-carry out of bit 3, V is signed
// overflow via sign-XOR, S = N^V (spec §4.1 "Flag contracts").
func (c *CPU) setAddFlags(rd, rr, r uint8) {
	h := (rd&0x08 != 0 && rr&0x08 != 0) || (rr&0x08 != 0 && r&0x08 == 0) || (r&0x08 == 0 && rd&0x08 != 0)
	v := (rd&0x80 != 0 && rr&0x80 != 0 && r&0x80 == 0) || (rd&0x80 == 0 && rr&0x80 == 0 && r&0x80 != 0)
	n := r&0x80 != 0
	carry := (rd&0x80 != 0 && rr&0x80 != 0) || (rr&0x80 != 0 && r&0x80 == 0) || (r&0x80 == 0 && rd&0x80 != 0)

	c.SetFlag(FlagH, h)
	c.SetFlag(FlagV, v)
	c.SetFlag(FlagN, n)
	c.SetFlag(FlagS, n != v)
	c.SetFlag(FlagZ, r == 0)
	c.SetFlag(FlagC, carry)
}

// setSubFlags applies the datasheet SUB/SUBI/CP flag formulas for
// Rd - Rr (-carry) = R.
func (c *CPU) setSubFlags(rd, rr, r uint8) {
	h := (rd&0x08 == 0 && rr&0x08 != 0) || (rr&0x08 != 0 && r&0x08 != 0) || (r&0x08 != 0 && rd&0x08 == 0)
	v := (rd&0x80 != 0 && rr&0x80 == 0 && r&0x80 == 0) || (rd&0x80 == 0 && rr&0x80 != 0 && r&0x80 != 0)
	n := r&0x80 != 0
	carry := (rd&0x80 == 0 && rr&0x80 != 0) || (rr&0x80 != 0 && r&0x80 != 0) || (r&0x80 != 0 && rd&0x80 == 0)

	c.SetFlag(FlagH, h)
	c.SetFlag(FlagV, v)
	c.SetFlag(FlagN, n)
	c.SetFlag(FlagS, n != v)
	c.SetFlag(FlagZ, r == 0)
	c.SetFlag(FlagC, carry)
}

// setSubFlagsZPreserving is SBC/SBCI/CPC: identical to setSubFlags
// except Z is "cleared if result is nonzero, otherwise unchanged"
// (spec §4.1): a multi-byte compare/subtract chain only looks zero if
// every byte along the chain was zero.
func (c *CPU) setSubFlagsZPreserving(rd, rr, r uint8) {
	prevZ := c.SREG&FlagZ != 0
	c.setSubFlags(rd, rr, r)
	c.SetFlag(FlagZ, r == 0 && prevZ)
}

// setLogicFlags applies the flag contract shared by AND/OR/EOR/ANDI/
// ORI/COM: V cleared, N/S/Z from the result, C and H
// untouched (COM instead forces C set, handled at the call site).
func (c *CPU) setLogicFlags(r uint8) {
	c.SetFlag(FlagV, false)
	n := r&0x80 != 0
	c.SetFlag(FlagN, n)
	c.SetFlag(FlagS, n) // S = N^V, V=0
	c.SetFlag(FlagZ, r == 0)
}
