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

import (
	"encoding/binary"
	"testing"

	"github.com/stretchr/testify/require"
)

func uleb128(v uint64) []byte {
	var out []byte
	for {
		b := byte(v & 0x7F)
		v >>= 7
		if v != 0 {
			b |= 0x80
		}
		out = append(out, b)
		if v == 0 {
			break
		}
	}
	return out
}

func sleb128(v int64) []byte {
	var out []byte
	more := true
	for more {
		b := byte(v & 0x7F)
		v >>= 7
		signBit := b&0x40 != 0
		if (v == 0 && !signBit) || (v == -1 && signBit) {
			more = false
		} else {
			b |= 0x80
		}
		out = append(out, b)
	}
	return out
}

// buildDebugLine assembles one DWARF-4 compilation unit's line number
// program: set_address(0x100) -> copy -> advance_pc(4) ->
// advance_line(+1) -> copy -> end_sequence, with a single source file
// "main.c". The header lengths are computed from the actual encoded
// bytes rather than hand counted, matching how a real toolchain emits
// the section.
func buildDebugLine(t *testing.T) []byte {
	t.Helper()
	le := binary.LittleEndian

	var header []byte
	header = append(header, 1)    // minimum_instruction_length
	header = append(header, 1)    // maximum_operations_per_instruction (version>=4)
	header = append(header, 1)    // default_is_stmt
	header = append(header, byte(int8(-5))) // line_base
	header = append(header, 14)   // line_range
	header = append(header, 13)   // opcode_base
	header = append(header, make([]byte, 12)...) // standard_opcode_lengths
	header = append(header, 0x00)                // include_directories terminator
	header = append(header, []byte("main.c")...)
	header = append(header, 0x00)        // file name terminator
	header = append(header, uleb128(0)...) // dir index
	header = append(header, uleb128(0)...) // mtime
	header = append(header, uleb128(0)...) // length
	header = append(header, 0x00)          // file_names terminator

	var program []byte
	// DW_LNE_set_address 0x100
	addr := make([]byte, 4)
	le.PutUint32(addr, 0x100)
	program = append(program, 0x00)
	program = append(program, uleb128(uint64(1+len(addr)))...)
	program = append(program, 0x02)
	program = append(program, addr...)
	// DW_LNS_copy
	program = append(program, 0x01)
	// DW_LNS_advance_pc 4
	program = append(program, 0x02)
	program = append(program, uleb128(4)...)
	// DW_LNS_advance_line +1
	program = append(program, 0x03)
	program = append(program, sleb128(1)...)
	// DW_LNS_copy
	program = append(program, 0x01)
	// DW_LNE_end_sequence
	program = append(program, 0x00)
	program = append(program, uleb128(1)...)
	program = append(program, 0x01)

	var unit []byte
	unit = append(unit, 0, 0) // version, filled below
	le.PutUint16(unit[0:2], 4)
	headerLenField := make([]byte, 4)
	le.PutUint32(headerLenField, uint32(len(header)))
	unit = append(unit, headerLenField...)
	unit = append(unit, header...)
	unit = append(unit, program...)

	var buf []byte
	unitLenField := make([]byte, 4)
	le.PutUint32(unitLenField, uint32(len(unit)))
	buf = append(buf, unitLenField...)
	buf = append(buf, unit...)
	return buf
}

func TestParseDebugLineEmitsRowsInProgramOrder(t *testing.T) {
	buf := buildDebugLine(t)
	rows := parseDebugLine(buf, binary.LittleEndian)

	require.Len(t, rows, 3) // two DW_LNS_copy rows plus the end_sequence row
	require.Equal(t, LineEntry{PC: 0x100, File: "main.c", Line: 1}, rows[0])
	require.Equal(t, LineEntry{PC: 0x104, File: "main.c", Line: 2}, rows[1])
	require.Equal(t, LineEntry{PC: 0x104, File: "main.c", Line: 2}, rows[2])
}

func TestParseDebugLineStopsAtZeroLengthUnit(t *testing.T) {
	rows := parseDebugLine([]byte{0, 0, 0, 0}, binary.LittleEndian)
	require.Empty(t, rows)
}

func TestULEB128RoundTripsThroughCursor(t *testing.T) {
	c := &cursor{buf: uleb128(300)}
	require.Equal(t, uint64(300), c.uleb128())
}

func TestSLEB128RoundTripsNegativeValue(t *testing.T) {
	c := &cursor{buf: sleb128(-64)}
	require.Equal(t, int64(-64), c.sleb128())
}

func TestCursorCStringConsumesTerminator(t *testing.T) {
	c := &cursor{buf: []byte("abc\x00def")}
	require.Equal(t, "abc", c.cstring())
	require.Equal(t, byte('d'), c.buf[c.pos])
}
