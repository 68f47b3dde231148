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

// Field extraction helpers shared by every opcode group. Names match
// the datasheet's instruction-set-summary field letters (d, r, K, k,
// A, b, q).

func fieldD5(w uint16) uint8  { return uint8((w >> 4) & 0x1F) }
func fieldR5(w uint16) uint8  { return uint8((w & 0x0F) | ((w >> 5) & 0x10)) }
func fieldD4_16(w uint16) uint8 { return 16 + uint8((w>>4)&0x0F) }
func fieldK8(w uint16) uint8 { return uint8(((w >> 4) & 0xF0) | (w & 0x0F)) }

// ioAddrIN decodes the 6-bit I/O address used by IN/OUT: bits 10:9
// and 3:0, placed at data-space offset +0x20.
func ioAddrIN(w uint16) uint16 {
	a := uint16(w&0x0F) | ((w>>9)&0x03)<<4
	return a + 0x20
}

// ioAddrSBI decodes the 5-bit I/O address used by SBI/CBI/SBIC/SBIS.
func ioAddrSBI(w uint16) uint16 {
	return uint16((w>>3)&0x1F) + 0x20
}

func bitIdx(w uint16) uint8 { return uint8(w & 0x07) }

// sregBitMask maps an SREG bit index (as encoded in SEx/CLx/BRBS/BRBC)
// to the flag mask.
func sregBitMask(idx uint8) uint8 { return uint8(1) << idx }

// adiwPair maps the ADIW/SBIW 2-bit field to the low register of the pair.
func adiwPair(w uint16) uint8 {
	sel := uint8((w >> 4) & 0x03)
	return 24 + sel*2
}

func rel7(w uint16) int32 {
	k := int32((w >> 3) & 0x7F)
	if k&0x40 != 0 {
		k -= 0x80
	}
	return k
}

func rel12(w uint16) int32 {
	k := int32(w & 0x0FFF)
	if k&0x0800 != 0 {
		k -= 0x1000
	}
	return k
}
