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

// Package hex parses Intel HEX program images (spec §6): record types
// 00 (data), 01 (EOF) and 02 (extended segment address), ASCII-hex
// encoded with a two's-complement checksum.
package hex

import (
	"encoding/hex"
	"strconv"
	"strings"

	"github.com/mgavr/avrcore/internal/avrerr"
)

// Segment is one contiguous run of bytes destined for flash, starting
// at a byte address within the image (the caller divides by 2 for a
// word address when placing it in program memory).
type Segment struct {
	Addr uint32
	Data []byte
}

// Parse reads an Intel HEX text image and returns the data segments
// in record order, honoring type-02 extended segment address records.
func Parse(text string) ([]Segment, error) {
	var segments []Segment
	var segmentBase uint32

	lines := strings.Split(text, "\n")
	for lineNo, raw := range lines {
		line := strings.TrimSpace(raw)
		if line == "" {
			continue
		}
		if !strings.HasPrefix(line, ":") {
			return nil, avrerr.FileLoad("hex", errBadLine(lineNo))
		}
		rec, err := decodeRecord(line[1:])
		if err != nil {
			return nil, avrerr.FileLoad("hex", errBadLine(lineNo))
		}
		switch rec.recType {
		case 0x00:
			addr := segmentBase + uint32(rec.addr)
			segments = append(segments, Segment{Addr: addr, Data: rec.data})
		case 0x01:
			return segments, nil
		case 0x02:
			if len(rec.data) != 2 {
				return nil, avrerr.FileLoad("hex", errBadLine(lineNo))
			}
			segmentBase = (uint32(rec.data[0])<<8 | uint32(rec.data[1])) << 4
		}
	}
	return segments, nil
}

type record struct {
	addr    uint16
	recType uint8
	data    []byte
}

func errBadLine(lineNo int) error {
	return &malformedLineError{lineNo}
}

type malformedLineError struct{ lineNo int }

func (e *malformedLineError) Error() string {
	return "malformed HEX record at line " + strconv.Itoa(e.lineNo+1)
}

// decodeRecord parses everything after the leading ':'.
func decodeRecord(body string) (record, error) {
	raw, err := hex.DecodeString(body)
	if err != nil || len(raw) < 5 {
		return record{}, &malformedLineError{}
	}
	count := raw[0]
	addr := uint16(raw[1])<<8 | uint16(raw[2])
	recType := raw[3]
	if len(raw) != int(count)+5 {
		return record{}, &malformedLineError{}
	}
	data := raw[4 : 4+count]
	checksum := raw[4+count]

	var sum byte
	for _, b := range raw[:len(raw)-1] {
		sum += b
	}
	if byte(-sum) != checksum {
		return record{}, &malformedLineError{}
	}

	return record{addr: addr, recType: recType, data: data}, nil
}
