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

func (c *CPU) getX() uint16 { return uint16(c.R[26]) | uint16(c.R[27])<<8 }
func (c *CPU) setX(v uint16) { c.R[26] = uint8(v); c.R[27] = uint8(v >> 8) }
func (c *CPU) getY() uint16 { return uint16(c.R[28]) | uint16(c.R[29])<<8 }
func (c *CPU) setY(v uint16) { c.R[28] = uint8(v); c.R[29] = uint8(v >> 8) }
func (c *CPU) getZ() uint16 { return uint16(c.R[30]) | uint16(c.R[31])<<8 }
func (c *CPU) setZ(v uint16) { c.R[30] = uint8(v); c.R[31] = uint8(v >> 8) }

// execMovw handles MOVW Rd,Rr (register-pair move).
func (c *CPU) execMovw(w uint16) (uint32, bool) {
	if w&0xFF00 != 0x0100 {
		return 0, false
	}
	d := ((w >> 4) & 0x0F) * 2
	r := (w & 0x0F) * 2
	c.R[d] = c.R[r]
	c.R[d+1] = c.R[r+1]
	return 1, true
}

// execLdsSts handles the 32-bit LDS/STS forms: opcode word plus a
// second word holding the absolute data-space address.
func (c *CPU) execLdsSts(w uint16) (uint32, bool) {
	switch w & 0xFE0F {
	case 0x9000: // LDS Rd,k
		d := fieldD5(w)
		addr := c.fetchWord(c.PC)
		c.PC++
		c.R[d] = c.Mem.Read(addr)
		return 3, true
	case 0x9200: // STS k,Rr
		r := fieldD5(w)
		addr := c.fetchWord(c.PC)
		c.PC++
		c.Mem.Write(addr, c.R[r])
		return 3, true
	}
	return 0, false
}

// execIndirect handles LD/ST through X with plain/post-increment/
// pre-decrement addressing (the only modes X supports), plus the
// post-increment/pre-decrement forms through Y and Z. Plain Y/Z
// accesses are LDD/STD with q=0, handled by execDisplaced.
func (c *CPU) execIndirect(w uint16) (uint32, bool) {
	switch w & 0xFE0F {
	case 0x900C: // LD Rd,X
		d := fieldD5(w)
		c.R[d] = c.Mem.Read(c.getX())
		return 2, true
	case 0x900D: // LD Rd,X+
		d := fieldD5(w)
		x := c.getX()
		c.R[d] = c.Mem.Read(x)
		c.setX(x + 1)
		return 2, true
	case 0x900E: // LD Rd,-X
		d := fieldD5(w)
		x := c.getX() - 1
		c.setX(x)
		c.R[d] = c.Mem.Read(x)
		return 2, true
	case 0x9001: // LD Rd,Z+
		d := fieldD5(w)
		z := c.getZ()
		c.R[d] = c.Mem.Read(z)
		c.setZ(z + 1)
		return 2, true
	case 0x9002: // LD Rd,-Z
		d := fieldD5(w)
		z := c.getZ() - 1
		c.setZ(z)
		c.R[d] = c.Mem.Read(z)
		return 2, true
	case 0x9009: // LD Rd,Y+
		d := fieldD5(w)
		y := c.getY()
		c.R[d] = c.Mem.Read(y)
		c.setY(y + 1)
		return 2, true
	case 0x900A: // LD Rd,-Y
		d := fieldD5(w)
		y := c.getY() - 1
		c.setY(y)
		c.R[d] = c.Mem.Read(y)
		return 2, true
	case 0x920C: // ST X,Rr
		r := fieldD5(w)
		c.Mem.Write(c.getX(), c.R[r])
		return 2, true
	case 0x920D: // ST X+,Rr
		r := fieldD5(w)
		x := c.getX()
		c.Mem.Write(x, c.R[r])
		c.setX(x + 1)
		return 2, true
	case 0x920E: // ST -X,Rr
		r := fieldD5(w)
		x := c.getX() - 1
		c.setX(x)
		c.Mem.Write(x, c.R[r])
		return 2, true
	case 0x9201: // ST Z+,Rr
		r := fieldD5(w)
		z := c.getZ()
		c.Mem.Write(z, c.R[r])
		c.setZ(z + 1)
		return 2, true
	case 0x9202: // ST -Z,Rr
		r := fieldD5(w)
		z := c.getZ() - 1
		c.setZ(z)
		c.Mem.Write(z, c.R[r])
		return 2, true
	case 0x9209: // ST Y+,Rr
		r := fieldD5(w)
		y := c.getY()
		c.Mem.Write(y, c.R[r])
		c.setY(y + 1)
		return 2, true
	case 0x920A: // ST -Y,Rr
		r := fieldD5(w)
		y := c.getY() - 1
		c.setY(y)
		c.Mem.Write(y, c.R[r])
		return 2, true
	}
	return 0, false
}

// qDisplacement decodes the 6-bit q offset shared by LDD/STD.
func qDisplacement(w uint16) uint16 {
	q5 := (w >> 13) & 0x01
	q4 := (w >> 11) & 0x01
	q3 := (w >> 10) & 0x01
	q2 := (w >> 2) & 0x01
	q1 := (w >> 1) & 0x01
	q0 := w & 0x01
	return q5<<5 | q4<<4 | q3<<3 | q2<<2 | q1<<1 | q0
}

// execDisplaced handles LD/ST via Y/Z with a 6-bit displacement
// (LDD/STD), which also covers the "plain" Y/Z forms at q=0.
func (c *CPU) execDisplaced(w uint16) (uint32, bool) {
	if w&0xD000 != 0x8000 {
		return 0, false
	}
	isStore := w&0x0200 != 0
	useY := w&0x0008 != 0
	q := qDisplacement(w)
	reg := fieldD5(w)

	var base uint16
	if useY {
		base = c.getY()
	} else {
		base = c.getZ()
	}
	addr := base + q

	if isStore {
		c.Mem.Write(addr, c.R[reg])
	} else {
		c.R[reg] = c.Mem.Read(addr)
	}
	return 2, true
}

// execLpmElpm handles the explicit-operand LPM/ELPM forms (Z, Z+).
// RAMPZ:Z forms the 24-bit flash byte address for ELPM (spec §4.1
// open question: rare ELPM cycle variants assumed 5 cycles).
func (c *CPU) execLpmElpm(w uint16) (uint32, bool) {
	switch w & 0xFE0F {
	case 0x9004: // LPM Rd,Z
		d := fieldD5(w)
		c.R[d] = c.Flash.ReadByte(uint32(c.getZ()))
		return 3, true
	case 0x9005: // LPM Rd,Z+
		d := fieldD5(w)
		z := c.getZ()
		c.R[d] = c.Flash.ReadByte(uint32(z))
		c.setZ(z + 1)
		return 3, true
	case 0x9006: // ELPM Rd,Z
		d := fieldD5(w)
		addr := uint32(c.RAMPZ)<<16 | uint32(c.getZ())
		c.R[d] = c.Flash.ReadByte(addr)
		return 5, true
	case 0x9007: // ELPM Rd,Z+
		d := fieldD5(w)
		z := c.getZ()
		addr := uint32(c.RAMPZ)<<16 | uint32(z)
		c.R[d] = c.Flash.ReadByte(addr)
		z++
		if z == 0 {
			c.RAMPZ++
		}
		c.setZ(z)
		return 5, true
	}
	return 0, false
}
