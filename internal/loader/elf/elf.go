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

// Package elf parses 32-bit little-endian ELF images for AVR (spec
// §6): PT_LOAD segments go into flash at their physical address, the
// symbol table is extracted as name->byte-address, and .debug_line is
// walked for source:line <-> PC mapping.
package elf

import (
	"encoding/binary"

	"github.com/mgavr/avrcore/internal/avrerr"
)

const (
	etExec   = 2
	emAVR    = 83
	ptLoad   = 1
	shtSymTab = 2
	shtStrTab = 3
)

// Segment is one PT_LOAD payload destined for flash.
type Segment struct {
	PhysAddr uint32
	Data     []byte
}

// Symbol is one extracted symbol-table entry.
type Symbol struct {
	Name string
	Addr uint32
}

// LineEntry is one source:line <-> PC row from .debug_line.
type LineEntry struct {
	PC   uint32
	File string
	Line int
}

// Image is the parsed result: flash segments, symbols and source line
// mapping, plus the entry point.
type Image struct {
	Segments []Segment
	Symbols  []Symbol
	Lines    []LineEntry
	Entry    uint32
}

type sectionHeader struct {
	name      uint32
	shType    uint32
	addr      uint32
	offset    uint32
	size      uint32
	link      uint32
	entsize   uint32
}

// Parse reads a full ELF32 LE file into an Image.
func Parse(raw []byte) (*Image, error) {
	if len(raw) < 52 || raw[0] != 0x7F || raw[1] != 'E' || raw[2] != 'L' || raw[3] != 'F' {
		return nil, avrerr.FileLoad("elf", errNotELF)
	}
	if raw[4] != 1 { // EI_CLASS: ELFCLASS32
		return nil, avrerr.FileLoad("elf", errNot32Bit)
	}
	if raw[5] != 1 { // EI_DATA: ELFDATA2LSB
		return nil, avrerr.FileLoad("elf", errNotLittleEndian)
	}

	le := binary.LittleEndian
	etype := le.Uint16(raw[16:18])
	machine := le.Uint16(raw[18:20])
	if etype != etExec {
		return nil, avrerr.FileLoad("elf", errNotExecutable)
	}
	if machine != emAVR {
		return nil, avrerr.FileLoad("elf", errWrongMachine)
	}

	entry := le.Uint32(raw[24:28])
	phoff := le.Uint32(raw[28:32])
	shoff := le.Uint32(raw[32:36])
	phentsize := le.Uint16(raw[42:44])
	phnum := le.Uint16(raw[44:46])
	shentsize := le.Uint16(raw[46:48])
	shnum := le.Uint16(raw[48:50])
	shstrndx := le.Uint16(raw[50:52])

	img := &Image{Entry: entry}

	for i := uint16(0); i < phnum; i++ {
		base := phoff + uint32(i)*uint32(phentsize)
		if int(base)+32 > len(raw) {
			break
		}
		ptype := le.Uint32(raw[base : base+4])
		offset := le.Uint32(raw[base+4 : base+8])
		paddr := le.Uint32(raw[base+12 : base+16])
		filesz := le.Uint32(raw[base+16 : base+20])
		if ptype != ptLoad || filesz == 0 {
			continue
		}
		if int(offset)+int(filesz) > len(raw) {
			return nil, avrerr.FileLoad("elf", errTruncated)
		}
		data := make([]byte, filesz)
		copy(data, raw[offset:offset+filesz])
		img.Segments = append(img.Segments, Segment{PhysAddr: paddr, Data: data})
	}

	sections := make([]sectionHeader, 0, shnum)
	for i := uint16(0); i < shnum; i++ {
		base := shoff + uint32(i)*uint32(shentsize)
		if int(base)+40 > len(raw) {
			break
		}
		sections = append(sections, sectionHeader{
			name:    le.Uint32(raw[base : base+4]),
			shType:  le.Uint32(raw[base+4 : base+8]),
			addr:    le.Uint32(raw[base+12 : base+16]),
			offset:  le.Uint32(raw[base+16 : base+20]),
			size:    le.Uint32(raw[base+20 : base+24]),
			link:    le.Uint32(raw[base+24 : base+28]),
			entsize: le.Uint32(raw[base+36 : base+40]),
		})
	}

	var shstrtab []byte
	if int(shstrndx) < len(sections) {
		sh := sections[shstrndx]
		if int(sh.offset)+int(sh.size) <= len(raw) {
			shstrtab = raw[sh.offset : sh.offset+sh.size]
		}
	}
	sectionName := func(off uint32) string { return cStr(shstrtab, off) }

	var debugLine []byte
	for _, sh := range sections {
		switch {
		case sh.shType == shtSymTab:
			strtab := sections[sh.link]
			var strBytes []byte
			if int(strtab.offset)+int(strtab.size) <= len(raw) {
				strBytes = raw[strtab.offset : strtab.offset+strtab.size]
			}
			img.Symbols = append(img.Symbols, parseSymbols(raw, sh, strBytes, le)...)
		case sectionName(sh.name) == ".debug_line":
			if int(sh.offset)+int(sh.size) <= len(raw) {
				debugLine = raw[sh.offset : sh.offset+sh.size]
			}
		}
	}

	if debugLine != nil {
		img.Lines = parseDebugLine(debugLine, le)
	}

	return img, nil
}

func parseSymbols(raw []byte, sh sectionHeader, strtab []byte, le binary.ByteOrder) []Symbol {
	if sh.entsize == 0 {
		return nil
	}
	count := int(sh.size / sh.entsize)
	out := make([]Symbol, 0, count)
	for i := 0; i < count; i++ {
		base := sh.offset + uint32(i)*sh.entsize
		if int(base)+16 > len(raw) {
			break
		}
		nameOff := le.Uint32(raw[base : base+4])
		value := le.Uint32(raw[base+4 : base+8])
		name := cStr(strtab, nameOff)
		if name == "" {
			continue
		}
		out = append(out, Symbol{Name: name, Addr: value})
	}
	return out
}

func cStr(buf []byte, off uint32) string {
	if int(off) >= len(buf) {
		return ""
	}
	end := off
	for end < uint32(len(buf)) && buf[end] != 0 {
		end++
	}
	return string(buf[off:end])
}

var (
	errNotELF          = simpleErr("not an ELF file")
	errNot32Bit        = simpleErr("not a 32-bit ELF file")
	errNotLittleEndian = simpleErr("not a little-endian ELF file")
	errNotExecutable   = simpleErr("ELF file is not executable (ET_EXEC)")
	errWrongMachine    = simpleErr("ELF machine is not AVR")
	errTruncated       = simpleErr("ELF segment data runs past end of file")
)

type simpleErr string

func (e simpleErr) Error() string { return string(e) }
