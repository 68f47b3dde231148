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

// execAlu handles the two-register-operand arithmetic/logic group and
// CPSE/CP/CPC/MOV, all sharing the "0gggggrd dddd rrrr" shape.
func (c *CPU) execAlu(w uint16) (uint32, bool) {
	top6 := w & 0xFC00
	d := fieldD5(w)
	r := fieldR5(w)

	switch top6 {
	case 0x0400: // CPC
		res := c.R[d] - c.R[r] - c.GetFlag(FlagC)
		c.setSubFlagsZPreserving(c.R[d], c.R[r], res)
		return 1, true
	case 0x0800: // SBC
		rd, rr := c.R[d], c.R[r]
		res := rd - rr - c.GetFlag(FlagC)
		c.setSubFlagsZPreserving(rd, rr, res)
		c.R[d] = res
		return 1, true
	case 0x0C00: // ADD
		rd, rr := c.R[d], c.R[r]
		res := rd + rr
		c.setAddFlags(rd, rr, res)
		c.R[d] = res
		return 1, true
	case 0x1000: // CPSE
		rd, rr := c.R[d], c.R[r]
		if rd == rr {
			skipped := c.fetchWord(c.PC)
			n := skipWords(skipped)
			c.PC += uint32(n)
			return 1 + uint32(n), true
		}
		return 1, true
	case 0x1400: // CP
		rd, rr := c.R[d], c.R[r]
		res := rd - rr
		c.setSubFlags(rd, rr, res)
		return 1, true
	case 0x1800: // SUB
		rd, rr := c.R[d], c.R[r]
		res := rd - rr
		c.setSubFlags(rd, rr, res)
		c.R[d] = res
		return 1, true
	case 0x1C00: // ADC
		rd, rr := c.R[d], c.R[r]
		res := rd + rr + c.GetFlag(FlagC)
		c.setAddFlags(rd, rr, res)
		c.R[d] = res
		return 1, true
	case 0x2000: // AND
		res := c.R[d] & c.R[r]
		c.setLogicFlags(res)
		c.R[d] = res
		return 1, true
	case 0x2400: // EOR
		res := c.R[d] ^ c.R[r]
		c.setLogicFlags(res)
		c.R[d] = res
		return 1, true
	case 0x2800: // OR
		res := c.R[d] | c.R[r]
		c.setLogicFlags(res)
		c.R[d] = res
		return 1, true
	case 0x2C00: // MOV
		c.R[d] = c.R[r]
		return 1, true
	}
	return 0, false
}

// skipWords returns 2 if the word at PC begins a 32-bit instruction
// (LDS/STS/JMP/CALL), else 1, for CPSE/SBRC/SBRS/SBIC/SBIS skip math
// (spec open question: "1 + {1 or 2}" per datasheet).
func skipWords(w uint16) uint32 {
	if w&0xFE0F == 0x9000 || w&0xFE0F == 0x9200 || (w&0xFE0E) == 0x940C || (w&0xFE0E) == 0x940E {
		return 2
	}
	return 1
}

// execAluImmediate handles ANDI/ORI/SUBI/SBCI/CPI/LDI, all "KKKK dddd
// KKKK" with d restricted to R16-R31.
func (c *CPU) execAluImmediate(w uint16) (uint32, bool) {
	top4 := w & 0xF000
	d := fieldD4_16(w)
	k := fieldK8(w)

	switch top4 {
	case 0x3000: // CPI
		rd := c.R[d]
		res := rd - k
		c.setSubFlags(rd, k, res)
		return 1, true
	case 0x4000: // SBCI
		rd := c.R[d]
		res := rd - k - c.GetFlag(FlagC)
		c.setSubFlagsZPreserving(rd, k, res)
		c.R[d] = res
		return 1, true
	case 0x5000: // SUBI
		rd := c.R[d]
		res := rd - k
		c.setSubFlags(rd, k, res)
		c.R[d] = res
		return 1, true
	case 0x6000: // ORI
		res := c.R[d] | k
		c.setLogicFlags(res)
		c.R[d] = res
		return 1, true
	case 0x7000: // ANDI
		res := c.R[d] & k
		c.setLogicFlags(res)
		c.R[d] = res
		return 1, true
	case 0xE000: // LDI
		c.R[d] = k
		return 1, true
	}
	return 0, false
}

// execMulGroup handles MUL/MULS/MULSU/FMUL/FMULS/FMULSU, ADIW/SBIW.
func (c *CPU) execMulGroup(w uint16) (uint32, bool) {
	switch {
	case w&0xFC00 == 0x9C00: // MUL (unsigned x unsigned)
		d, r := fieldD5(w), fieldR5(w)
		prod := uint16(c.R[d]) * uint16(c.R[r])
		c.R[0] = uint8(prod)
		c.R[1] = uint8(prod >> 8)
		c.SetFlag(FlagC, prod&0x8000 != 0)
		c.SetFlag(FlagZ, prod == 0)
		return 2, true
	case w&0xFF00 == 0x0200: // MULS (signed x signed)
		d, r := fieldD4_16(w), uint8(16)+uint8(w&0x0F)
		prod := int16(int8(c.R[d])) * int16(int8(c.R[r]))
		c.R[0] = uint8(prod)
		c.R[1] = uint8(prod >> 8)
		c.SetFlag(FlagC, prod&(-32768) != 0)
		c.SetFlag(FlagZ, prod == 0)
		return 2, true
	case w&0xFF88 == 0x0300: // MULSU (signed Rd x unsigned Rr, both 16-23)
		d := 16 + uint8((w>>4)&0x07)
		r := 16 + uint8(w&0x07)
		prod := int16(int8(c.R[d])) * int16(uint8(c.R[r]))
		c.R[0] = uint8(prod)
		c.R[1] = uint8(prod >> 8)
		c.SetFlag(FlagC, prod < 0)
		c.SetFlag(FlagZ, prod == 0)
		return 2, true
	case w&0xFF88 == 0x0308: // FMUL (unsigned x unsigned, <<1)
		d := 16 + uint8((w>>4)&0x07)
		r := 16 + uint8(w&0x07)
		prod := uint16(c.R[d]) * uint16(c.R[r])
		c.SetFlag(FlagC, prod&0x8000 != 0)
		prod <<= 1
		c.R[0] = uint8(prod)
		c.R[1] = uint8(prod >> 8)
		c.SetFlag(FlagZ, prod == 0)
		return 2, true
	case w&0xFF88 == 0x0380: // FMULS (signed x signed, <<1)
		d := 16 + uint8((w>>4)&0x07)
		r := 16 + uint8(w&0x07)
		prod := int16(int8(c.R[d])) * int16(int8(c.R[r]))
		c.SetFlag(FlagC, prod&(-32768) != 0)
		up := uint16(prod) << 1
		c.R[0] = uint8(up)
		c.R[1] = uint8(up >> 8)
		c.SetFlag(FlagZ, up == 0)
		return 2, true
	case w&0xFF88 == 0x0388: // FMULSU (signed Rd x unsigned Rr, <<1)
		d := 16 + uint8((w>>4)&0x07)
		r := 16 + uint8(w&0x07)
		prod := int16(int8(c.R[d])) * int16(uint8(c.R[r]))
		c.SetFlag(FlagC, prod < 0)
		up := uint16(prod) << 1
		c.R[0] = uint8(up)
		c.R[1] = uint8(up >> 8)
		c.SetFlag(FlagZ, up == 0)
		return 2, true
	case w&0xFF00 == 0x9600: // ADIW
		lo := adiwPair(w)
		k := uint16((w>>6)&0x03)<<4 | uint16(w&0x0F)
		old := uint16(c.R[lo]) | uint16(c.R[lo+1])<<8
		res := old + k
		c.R[lo] = uint8(res)
		c.R[lo+1] = uint8(res >> 8)
		c.SetFlag(FlagV, old&0x8000 == 0 && res&0x8000 != 0)
		c.SetFlag(FlagN, res&0x8000 != 0)
		c.SetFlag(FlagS, c.GetFlag(FlagN) != c.GetFlag(FlagV))
		c.SetFlag(FlagZ, res == 0)
		c.SetFlag(FlagC, old&0x8000 != 0 && res&0x8000 == 0)
		return 2, true
	case w&0xFF00 == 0x9700: // SBIW
		lo := adiwPair(w)
		k := uint16((w>>6)&0x03)<<4 | uint16(w&0x0F)
		old := uint16(c.R[lo]) | uint16(c.R[lo+1])<<8
		res := old - k
		c.R[lo] = uint8(res)
		c.R[lo+1] = uint8(res >> 8)
		c.SetFlag(FlagV, old&0x8000 != 0 && res&0x8000 == 0)
		c.SetFlag(FlagN, res&0x8000 != 0)
		c.SetFlag(FlagS, c.GetFlag(FlagN) != c.GetFlag(FlagV))
		c.SetFlag(FlagZ, res == 0)
		c.SetFlag(FlagC, old&0x8000 == 0 && res&0x8000 != 0)
		return 2, true
	}
	return 0, false
}
