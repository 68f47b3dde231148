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

package elf

import "encoding/binary"

// parseDebugLine walks every compilation unit's line number program in
// a .debug_line section (DWARF 2, 3 and 4; the header shape that
// changed across those versions is handled by lineHeader) and returns
// the resulting PC->(file,line) rows. Vendor extended opcodes this
// core doesn't recognize are skipped using their declared length
// rather than aborting the whole section.
func parseDebugLine(buf []byte, le binary.ByteOrder) []LineEntry {
	var out []LineEntry
	off := 0
	for off < len(buf) {
		unitLen := le.Uint32(buf[off : off+4])
		unitEnd := off + 4 + int(unitLen)
		if unitLen == 0 || unitEnd > len(buf) {
			break
		}
		rows := parseUnit(buf[off+4:unitEnd], le)
		out = append(out, rows...)
		off = unitEnd
	}
	return out
}

type lineHeader struct {
	version          uint16
	minInstrLen      uint8
	defaultIsStmt    bool
	lineBase         int8
	lineRange        uint8
	opcodeBase       uint8
	stdOpcodeLengths []uint8
	files            []string
	programOff       int
}

func parseUnit(u []byte, le binary.ByteOrder) []LineEntry {
	if len(u) < 2 {
		return nil
	}
	r := &cursor{buf: u}
	h := lineHeader{version: le.Uint16(r.take(2))}

	headerLen := le.Uint32(r.take(4))
	programStart := r.pos + int(headerLen)

	h.minInstrLen = r.take(1)[0]
	if h.version >= 4 {
		r.take(1) // maximum_operations_per_instruction
	}
	h.defaultIsStmt = r.take(1)[0] != 0
	h.lineBase = int8(r.take(1)[0])
	h.lineRange = r.take(1)[0]
	h.opcodeBase = r.take(1)[0]
	h.stdOpcodeLengths = append([]byte(nil), r.take(int(h.opcodeBase)-1)...)

	for { // include_directories, terminated by an empty string
		s := r.cstring()
		if s == "" {
			break
		}
	}
	h.files = append(h.files, "")
	for { // file_names
		name := r.cstring()
		if name == "" {
			break
		}
		r.uleb128() // dir index
		r.uleb128() // mtime
		r.uleb128() // length
		h.files = append(h.files, name)
	}

	if programStart < 0 || programStart > len(u) {
		return nil
	}
	return runLineProgram(u[programStart:], h)
}

func runLineProgram(prog []byte, h lineHeader) []LineEntry {
	var out []LineEntry
	addr := uint32(0)
	file := 1
	line := 1

	reset := func() { addr, file, line = 0, 1, 1 }
	emit := func(endSeq bool) {
		name := ""
		if file >= 0 && file < len(h.files) {
			name = h.files[file]
		}
		out = append(out, LineEntry{PC: addr, File: name, Line: line})
		_ = endSeq
	}

	r := &cursor{buf: prog}
	for r.pos < len(prog) {
		op := r.take(1)[0]
		switch {
		case op == 0: // extended opcode
			length := int(r.uleb128())
			if length == 0 {
				continue
			}
			sub := r.take(1)[0]
			argLen := length - 1
			switch sub {
			case 1: // DW_LNE_end_sequence
				emit(true)
				reset()
			case 2: // DW_LNE_set_address
				addr = binary.LittleEndian.Uint32(r.take(4))
				argLen -= 4
			case 3: // DW_LNE_define_file
				r.cstring()
				r.uleb128()
				r.uleb128()
				r.uleb128()
				argLen = 0
			case 4: // DW_LNE_set_discriminator
				r.uleb128()
				argLen = 0
			}
			r.skip(argLen)

		case op < h.opcodeBase: // standard opcode
			switch op {
			case 1: // DW_LNS_copy
				emit(false)
			case 2: // DW_LNS_advance_pc
				addr += uint32(r.uleb128()) * uint32(h.minInstrLen)
			case 3: // DW_LNS_advance_line
				line += int(r.sleb128())
			case 4: // DW_LNS_set_file
				file = int(r.uleb128())
			case 5: // DW_LNS_set_column
				r.uleb128()
			case 6, 7, 10, 11: // negate_stmt, set_basic_block, prologue_end, epilogue_begin
			case 8: // DW_LNS_const_add_pc
				adjusted := 255 - h.opcodeBase
				addr += uint32(adjusted/h.lineRange) * uint32(h.minInstrLen)
			case 9: // DW_LNS_fixed_advance_pc
				addr += uint32(binary.LittleEndian.Uint16(r.take(2)))
			case 12: // DW_LNS_set_isa
				r.uleb128()
			default:
				n := 0
				if int(op)-1 < len(h.stdOpcodeLengths) {
					n = int(h.stdOpcodeLengths[op-1])
				}
				for i := 0; i < n; i++ {
					r.uleb128()
				}
			}

		default: // special opcode
			adjusted := op - h.opcodeBase
			addr += uint32(adjusted/h.lineRange) * uint32(h.minInstrLen)
			line += int(h.lineBase) + int(adjusted%h.lineRange)
			emit(false)
		}
	}
	return out
}

// cursor is a tiny forward-only byte reader shared by the section and
// per-unit header parsers.
type cursor struct {
	buf []byte
	pos int
}

func (c *cursor) take(n int) []byte {
	if c.pos+n > len(c.buf) {
		c.pos = len(c.buf)
		return nil
	}
	b := c.buf[c.pos : c.pos+n]
	c.pos += n
	return b
}

func (c *cursor) skip(n int) {
	if n <= 0 {
		return
	}
	c.take(n)
}

func (c *cursor) cstring() string {
	start := c.pos
	for c.pos < len(c.buf) && c.buf[c.pos] != 0 {
		c.pos++
	}
	s := string(c.buf[start:c.pos])
	if c.pos < len(c.buf) {
		c.pos++ // consume the terminator
	}
	return s
}

func (c *cursor) uleb128() uint64 {
	var result uint64
	var shift uint
	for {
		b := c.take(1)
		if b == nil {
			return result
		}
		result |= uint64(b[0]&0x7F) << shift
		if b[0]&0x80 == 0 {
			break
		}
		shift += 7
	}
	return result
}

func (c *cursor) sleb128() int64 {
	var result int64
	var shift uint
	var b byte
	for {
		next := c.take(1)
		if next == nil {
			break
		}
		b = next[0]
		result |= int64(b&0x7F) << shift
		shift += 7
		if b&0x80 == 0 {
			break
		}
	}
	if shift < 64 && b&0x40 != 0 {
		result |= -1 << shift
	}
	return result
}
