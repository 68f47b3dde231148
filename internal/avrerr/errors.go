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

// Package avrerr defines the core's error taxonomy (spec §7). Each
// kind is a sentinel wrapped with call-site context via pkg/errors so
// a front-end can both match on kind (errors.Is) and print a full
// cause chain. FileLoad and EepromWriteIO are the exception: they wrap
// their cause instead, so their kind shows only in the message text.
package avrerr

import "github.com/pkg/errors"

// Sentinel kinds, one per row of the spec's error table.
var (
	ErrFileLoad       = errors.New("file load failed")
	ErrFlashOverflow  = errors.New("program image exceeds flash capacity")
	ErrUnknownOpcode  = errors.New("unknown opcode")
	ErrWatchpointHit  = errors.New("watchpoint hit")
	ErrBreakpointHit  = errors.New("breakpoint hit")
	ErrSnapshotFull   = errors.New("snapshot ring full")
	ErrGdbProtocol    = errors.New("malformed GDB RSP packet")
	ErrEepromWriteIO  = errors.New("EEPROM persistence write failed")
)

// FileLoad wraps a loader failure with the offending path.
func FileLoad(path string, cause error) error {
	return errors.Wrapf(cause, "%s: %s", ErrFileLoad, path)
}

// FlashOverflow wraps a too-large program image with its size.
func FlashOverflow(gotBytes, maxBytes int) error {
	return errors.Wrapf(ErrFlashOverflow, "image is %d bytes, flash holds %d", gotBytes, maxBytes)
}

// UnknownOpcode wraps a fatal decode failure with PC and the raw word.
type UnknownOpcodeError struct {
	PC   uint32 // word address
	Word uint16
}

func (e *UnknownOpcodeError) Error() string {
	return errors.Wrapf(ErrUnknownOpcode, "at PC=0x%04X word=0x%04X", e.PC, e.Word).Error()
}

func (e *UnknownOpcodeError) Unwrap() error { return ErrUnknownOpcode }

// UnknownOpcode constructs the fatal decode error.
func UnknownOpcode(pc uint32, word uint16) error {
	return &UnknownOpcodeError{PC: pc, Word: word}
}

// BreakpointHit wraps a PC breakpoint stop with the word address hit.
func BreakpointHit(pc uint32) error {
	return errors.Wrapf(ErrBreakpointHit, "at PC=0x%04X", pc)
}

// WatchpointHit wraps a data watchpoint stop with the address touched.
func WatchpointHit(addr uint16, write bool) error {
	verb := "read"
	if write {
		verb = "write"
	}
	return errors.Wrapf(ErrWatchpointHit, "%s at 0x%04X", verb, addr)
}

// SnapshotOutOfRange wraps a rewind request past the ring's held
// history with the requested age and the number of records available.
func SnapshotOutOfRange(age, available int) error {
	return errors.Wrapf(ErrSnapshotFull, "requested age %d exceeds %d held records", age, available)
}

// GdbProtocol wraps a malformed RSP packet with the raw bytes seen.
func GdbProtocol(raw string) error {
	return errors.Wrapf(ErrGdbProtocol, "packet=%q", raw)
}

// EepromWriteIO wraps a persistence-file write failure with its path.
func EepromWriteIO(path string, cause error) error {
	return errors.Wrapf(cause, "%s: %s", ErrEepromWriteIO, path)
}
