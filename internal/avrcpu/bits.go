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

// execUnary handles the single-register group sharing the
// "1001010d dddd xxxx" shape: COM, NEG, SWAP, INC, ASR, LSR, ROR.
func (c *CPU) execUnary(w uint16) (uint32, bool) {
	if w&0xFE00 != 0x9400 {
		return 0, false
	}
	d := fieldD5(w)
	low := w & 0x000F
	rd := c.R[d]

	switch low {
	case 0x0: // COM
		res := ^rd
		c.setLogicFlags(res)
		c.SetFlag(FlagC, true)
		c.R[d] = res
		return 1, true
	case 0x1: // NEG
		res := uint8(0) - rd
		c.setSubFlags(0, rd, res)
		c.SetFlag(FlagC, res != 0)
		c.SetFlag(FlagH, (res&0x08) != 0 || (rd&0x08) != 0)
		c.R[d] = res
		return 1, true
	case 0x2: // SWAP
		c.R[d] = (rd << 4) | (rd >> 4)
		return 1, true
	case 0x3: // INC
		res := rd + 1
		c.SetFlag(FlagV, rd == 0x7F)
		c.SetFlag(FlagN, res&0x80 != 0)
		c.SetFlag(FlagS, c.GetFlag(FlagN) != c.GetFlag(FlagV))
		c.SetFlag(FlagZ, res == 0)
		c.R[d] = res
		return 1, true
	case 0x5: // ASR
		res := (rd >> 1) | (rd & 0x80)
		c.SetFlag(FlagC, rd&0x01 != 0)
		c.SetFlag(FlagN, res&0x80 != 0)
		c.SetFlag(FlagV, c.GetFlag(FlagN) != c.GetFlag(FlagC))
		c.SetFlag(FlagS, c.GetFlag(FlagN) != c.GetFlag(FlagV))
		c.SetFlag(FlagZ, res == 0)
		c.R[d] = res
		return 1, true
	case 0x6: // LSR
		res := rd >> 1
		c.SetFlag(FlagC, rd&0x01 != 0)
		c.SetFlag(FlagN, false)
		c.SetFlag(FlagV, c.GetFlag(FlagN) != c.GetFlag(FlagC))
		c.SetFlag(FlagS, c.GetFlag(FlagN) != c.GetFlag(FlagV))
		c.SetFlag(FlagZ, res == 0)
		c.R[d] = res
		return 1, true
	case 0x7: // ROR
		carryIn := c.GetFlag(FlagC)
		res := (rd >> 1) | (carryIn << 7)
		c.SetFlag(FlagC, rd&0x01 != 0)
		c.SetFlag(FlagN, res&0x80 != 0)
		c.SetFlag(FlagV, c.GetFlag(FlagN) != c.GetFlag(FlagC))
		c.SetFlag(FlagS, c.GetFlag(FlagN) != c.GetFlag(FlagV))
		c.SetFlag(FlagZ, res == 0)
		c.R[d] = res
		return 1, true
	case 0xA: // DEC
		res := rd - 1
		c.SetFlag(FlagV, rd == 0x80)
		c.SetFlag(FlagN, res&0x80 != 0)
		c.SetFlag(FlagS, c.GetFlag(FlagN) != c.GetFlag(FlagV))
		c.SetFlag(FlagZ, res == 0)
		c.R[d] = res
		return 1, true
	}
	return 0, false
}

// execBitOps handles BST, BLD, SBRC, SBRS.
func (c *CPU) execBitOps(w uint16) (uint32, bool) {
	switch {
	case w&0xFE08 == 0xFA00: // BST Rd,b
		d, b := fieldD5(w), bitIdx(w)
		c.SetFlag(FlagT, c.R[d]&(1<<b) != 0)
		return 1, true
	case w&0xFE08 == 0xF800: // BLD Rd,b
		d, b := fieldD5(w), bitIdx(w)
		if c.GetFlag(FlagT) != 0 {
			c.R[d] |= 1 << b
		} else {
			c.R[d] &^= 1 << b
		}
		return 1, true
	case w&0xFE08 == 0xFC00: // SBRC Rd,b
		d, b := fieldD5(w), bitIdx(w)
		if c.R[d]&(1<<b) == 0 {
			n := skipWords(c.fetchWord(c.PC))
			c.PC += uint32(n)
			return 1 + uint32(n), true
		}
		return 1, true
	case w&0xFE08 == 0xFE00: // SBRS Rd,b
		d, b := fieldD5(w), bitIdx(w)
		if c.R[d]&(1<<b) != 0 {
			n := skipWords(c.fetchWord(c.PC))
			c.PC += uint32(n)
			return 1 + uint32(n), true
		}
		return 1, true
	}
	return 0, false
}

// execSExCLx handles the SEC/CLC/SEZ/CLZ/.../SEI/CLI family that sets
// or clears a single SREG bit named by a 3-bit field.
func (c *CPU) execSExCLx(w uint16) (uint32, bool) {
	if w&0xFF0F != 0x9408 {
		return 0, false
	}
	set := w&0x0080 == 0
	bit := uint8((w >> 4) & 0x07)
	c.SetFlag(sregBitMask(bit), set)
	if bit == 7 && set {
		c.retiCooldown = true // SEI: the next instruction runs before any IRQ
	}
	return 1, true
}
