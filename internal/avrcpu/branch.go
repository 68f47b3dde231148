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

// execBranch handles RJMP, RCALL, RET, RETI, JMP, CALL, IJMP, ICALL
// and the eight BRBS/BRBC conditional-branch encodings.
func (c *CPU) execBranch(w uint16) (uint32, bool) {
	switch {
	case w == 0x9508: // RET
		c.PC = c.popPC()
		return 4, true
	case w == 0x9518: // RETI
		c.PC = c.popPC()
		c.SetFlag(FlagI, true)
		c.retiCooldown = true
		return 4, true
	case w == 0x9409: // IJMP
		c.PC = uint32(c.getZ())
		return 2, true
	case w == 0x9509: // ICALL
		c.pushPC(c.PC)
		c.PC = uint32(c.getZ())
		return 3, true
	case w&0xF000 == 0xC000: // RJMP k
		k := rel12(w)
		c.PC = uint32(int32(c.PC) + k)
		return 2, true
	case w&0xF000 == 0xD000: // RCALL k
		k := rel12(w)
		c.pushPC(c.PC)
		c.PC = uint32(int32(c.PC) + k)
		return 3, true
	case w&0xFE0E == 0x940C: // JMP k (second word = absolute word address)
		target := c.fetchWord(c.PC)
		c.PC = uint32(target)
		return 3, true
	case w&0xFE0E == 0x940E: // CALL k
		target := c.fetchWord(c.PC)
		retPC := c.PC + 1
		c.pushPC(retPC)
		c.PC = uint32(target)
		return 4, true
	case w&0xFC00 == 0xF000: // BRBS s,k — branch if SREG bit s set
		s := bitIdx(w)
		if c.SREG&sregBitMask(s) != 0 {
			c.PC = uint32(int32(c.PC) + rel7(w))
			return 2, true
		}
		return 1, true
	case w&0xFC00 == 0xF400: // BRBC s,k — branch if SREG bit s clear
		s := bitIdx(w)
		if c.SREG&sregBitMask(s) == 0 {
			c.PC = uint32(int32(c.PC) + rel7(w))
			return 2, true
		}
		return 1, true
	}
	return 0, false
}
