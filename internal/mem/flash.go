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

import "github.com/mgavr/avrcore/internal/avrerr"

// Flash is word-addressable program memory. It is read-only during
// execution; LPM/ELPM read individual bytes out of it via ReadByte.
type Flash struct {
	words []uint16
}

// NewFlash allocates a flash of the given word capacity, matching a
// cpuid.Variant.FlashWords.
func NewFlash(capacityWords int) *Flash {
	return &Flash{words: make([]uint16, capacityWords)}
}

// ReadWord returns the 16-bit instruction word at a word address.
func (f *Flash) ReadWord(wordAddr uint32) uint16 {
	if int(wordAddr) >= len(f.words) {
		return 0xFFFF
	}
	return f.words[wordAddr]
}

// ReadByte returns one byte of flash, used by LPM/ELPM: even
// byte-addresses are the low byte of the word, odd are the high byte.
func (f *Flash) ReadByte(byteAddr uint32) uint8 {
	w := f.ReadWord(byteAddr / 2)
	if byteAddr%2 == 0 {
		return uint8(w)
	}
	return uint8(w >> 8)
}

// LoadBytes writes a raw little-endian byte image starting at word 0,
// used by the HEX/ELF loaders. It returns avrerr.FlashOverflow if the
// image does not fit.
func (f *Flash) LoadBytes(data []byte) error {
	maxBytes := len(f.words) * 2
	if len(data) > maxBytes {
		return avrerr.FlashOverflow(len(data), maxBytes)
	}
	for i := 0; i+1 < len(data); i += 2 {
		f.words[i/2] = uint16(data[i]) | uint16(data[i+1])<<8
	}
	if len(data)%2 == 1 {
		last := len(data) - 1
		f.words[last/2] = uint16(data[last])
	}
	return nil
}

// LoadBytesAt writes data starting at a given byte offset (ELF
// PT_LOAD physical address), growing no further than capacity.
func (f *Flash) LoadBytesAt(byteOffset uint32, data []byte) error {
	maxBytes := len(f.words) * 2
	if int(byteOffset)+len(data) > maxBytes {
		return avrerr.FlashOverflow(int(byteOffset)+len(data), maxBytes)
	}
	for i, b := range data {
		addr := byteOffset + uint32(i)
		w := f.words[addr/2]
		if addr%2 == 0 {
			w = (w &^ 0x00FF) | uint16(b)
		} else {
			w = (w &^ 0xFF00) | uint16(b)<<8
		}
		f.words[addr/2] = w
	}
	return nil
}

// Words exposes the backing store for snapshotting; callers must not
// retain the slice past the snapshot copy.
func (f *Flash) Words() []uint16 { return f.words }

// Clone returns a deep copy for snapshotting.
func (f *Flash) Clone() *Flash {
	cp := make([]uint16, len(f.words))
	copy(cp, f.words)
	return &Flash{words: cp}
}

// Restore overwrites this flash's contents from a snapshot clone.
func (f *Flash) Restore(snap *Flash) {
	copy(f.words, snap.words)
}
