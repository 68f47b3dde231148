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

package mem

// EEPROM is the 1 KiB persistent byte array (spec §3). It tracks a
// dirty flag so the front-end's persistence layer (outside this core,
// per spec §1) knows when a flush is due.
type EEPROM struct {
	bytes []byte
	dirty bool
}

// NewEEPROM allocates an EEPROM of the given size, pre-erased to 0xFF
// as real AVR EEPROM reads after a bulk erase.
func NewEEPROM(size int) *EEPROM {
	b := make([]byte, size)
	for i := range b {
		b[i] = 0xFF
	}
	return &EEPROM{bytes: b}
}

// LoadImage replaces the contents from a previously persisted image.
func (e *EEPROM) LoadImage(img []byte) {
	n := copy(e.bytes, img)
	for i := n; i < len(e.bytes); i++ {
		e.bytes[i] = 0xFF
	}
	e.dirty = false
}

// Read returns the byte at addr (0 outside range).
func (e *EEPROM) Read(addr uint16) uint8 {
	if int(addr) >= len(e.bytes) {
		return 0
	}
	return e.bytes[addr]
}

// Write stores val at addr and marks the EEPROM dirty.
func (e *EEPROM) Write(addr uint16, val uint8) {
	if int(addr) >= len(e.bytes) {
		return
	}
	e.bytes[addr] = val
	e.dirty = true
}

// Dirty reports whether bytes have changed since the last LoadImage
// or ClearDirty.
func (e *EEPROM) Dirty() bool { return e.dirty }

// ClearDirty resets the dirty flag, called by the front-end after a
// successful (or abandoned, per EepromWriteIo) persistence write.
func (e *EEPROM) ClearDirty() { e.dirty = false }

// Image returns a copy of the full byte array for persistence/snapshot.
func (e *EEPROM) Image() []byte {
	cp := make([]byte, len(e.bytes))
	copy(cp, e.bytes)
	return cp
}

// Clone deep-copies the EEPROM for snapshotting.
func (e *EEPROM) Clone() *EEPROM {
	return &EEPROM{bytes: e.Image(), dirty: e.dirty}
}

// Restore overwrites this EEPROM's contents from a snapshot clone.
func (e *EEPROM) Restore(snap *EEPROM) {
	copy(e.bytes, snap.bytes)
	e.dirty = snap.dirty
}
