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

// execIO handles IN, OUT, SBI, CBI, SBIC, SBIS, PUSH, POP — the group
// that addresses the 64-entry I/O space rather than general SRAM.
func (c *CPU) execIO(w uint16) (uint32, bool) {
	switch {
	case w&0xF800 == 0xB000: // IN Rd,A
		d := fieldD5(w)
		c.R[d] = c.Mem.Read(ioAddrIN(w))
		return 1, true
	case w&0xF800 == 0xB800: // OUT A,Rr
		r := fieldD5(w) // same bit position as d
		c.Mem.Write(ioAddrIN(w), c.R[r])
		return 1, true
	case w&0xFF00 == 0x9A00: // SBI A,b
		addr, b := ioAddrSBI(w), bitIdx(w)
		c.Mem.Write(addr, c.Mem.Read(addr)|(1<<b))
		return 2, true
	case w&0xFF00 == 0x9800: // CBI A,b
		addr, b := ioAddrSBI(w), bitIdx(w)
		c.Mem.Write(addr, c.Mem.Read(addr)&^(1<<b))
		return 2, true
	case w&0xFF00 == 0x9900: // SBIC A,b
		addr, b := ioAddrSBI(w), bitIdx(w)
		if c.Mem.Read(addr)&(1<<b) == 0 {
			n := skipWords(c.fetchWord(c.PC))
			c.PC += uint32(n)
			return 1 + uint32(n), true
		}
		return 1, true
	case w&0xFF00 == 0x9B00: // SBIS A,b
		addr, b := ioAddrSBI(w), bitIdx(w)
		if c.Mem.Read(addr)&(1<<b) != 0 {
			n := skipWords(c.fetchWord(c.PC))
			c.PC += uint32(n)
			return 1 + uint32(n), true
		}
		return 1, true
	case w&0xFE0F == 0x920F: // PUSH Rd
		d := fieldD5(w)
		c.push8(c.R[d])
		return 2, true
	case w&0xFE0F == 0x900F: // POP Rd
		d := fieldD5(w)
		c.R[d] = c.pop8()
		return 2, true
	}
	return 0, false
}
