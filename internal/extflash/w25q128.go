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

// Package extflash implements the optional W25Q128 SPI flash present
// on Arduboy FX units (spec §4.6). It shares the SPI bus with the
// display controller via the spi.Device interface, deciding whether
// to consume each byte by its own CS line, and lazily allocates its
// 16 MiB backing array the way internal/mem.Flash allocates program
// memory eagerly at a far smaller size.
package extflash

import "github.com/mgavr/avrcore/internal/mem"

const (
	sizeBytes  = 16 * 1024 * 1024
	pageSize   = 256
	sectorSize = 4096
)

type cmdState int

const (
	stIdle cmdState = iota
	stReadAddr
	stReading
	stFastReadDummy
	stPageProgramAddr
	stPageProgramData
	stSectorEraseAddr
	stJedecID
)

// CSPin names the GPIO line this flash's chip-select is wired to.
// Spec §4.5 fixes external FX flash CS at PD7 on 32u4; the 328P
// Gamebuino target has no FX flash.
type CSPin struct {
	Port mem.Port
	Bit  uint8
}

// DefaultCSPin is the 32u4 Arduboy FX wiring.
var DefaultCSPin = CSPin{Port: mem.PortD, Bit: 7}

// W25Q128 models the command state machine and right-aligned image
// layout spec §4.6 describes.
type W25Q128 struct {
	cs CSPin

	csLevel bool
	data    []byte // nil until the first image load or write

	state       cmdState
	addr        uint32
	addrBytes   int
	jedecIdx    int
	writeEnable bool
	poweredDown bool
	fastRead    bool
	pageBase    uint32
}

// NewW25Q128 builds an (initially unloaded) flash. Reads before a
// LoadImage return 0xFF, matching erased/unpopulated flash.
func NewW25Q128(cs CSPin) *W25Q128 {
	return &W25Q128{cs: cs}
}

// LoadImage places img right-aligned in the 16 MiB space, left-padded
// with 0xFF (spec §4.6/§6 "FX flash layout").
func (f *W25Q128) LoadImage(img []byte) {
	f.data = make([]byte, sizeBytes)
	for i := range f.data {
		f.data[i] = 0xFF
	}
	if len(img) > sizeBytes {
		img = img[len(img)-sizeBytes:]
	}
	copy(f.data[sizeBytes-len(img):], img)
}

func (f *W25Q128) ensureBacking() {
	if f.data == nil {
		f.data = make([]byte, sizeBytes)
		for i := range f.data {
			f.data[i] = 0xFF
		}
	}
}

func (f *W25Q128) OnGPIOEdge(e mem.GPIOEdge) {
	if e.Port != f.cs.Port || e.Pin != f.cs.Bit {
		return
	}
	wasActive := f.CSActive()
	f.csLevel = e.Rising
	if wasActive && !f.CSActive() {
		f.state = stIdle
		f.addrBytes = 0
	}
}

// CSActive is active-low, like the display's CS.
func (f *W25Q128) CSActive() bool { return !f.csLevel }

// Transfer runs the command byte stream: 0x03 Read, 0x0B Fast Read
// (one dummy byte), 0x9F JEDEC ID, 0xAB release power-down, 0x05 read
// status, 0xB9 power-down, 0x06/0x04 write enable/disable, 0x02 page
// program, 0x20 sector erase (spec §4.6).
func (f *W25Q128) Transfer(out uint8) uint8 {
	if !f.CSActive() {
		return 0xFF
	}
	switch f.state {
	case stIdle:
		return f.dispatchCommand(out)
	case stReadAddr:
		return f.consumeAddrByte(out, stReading)
	case stFastReadDummy:
		f.state = stReading
		return 0xFF
	case stReading:
		f.ensureBacking()
		v := f.data[f.addr%sizeBytes]
		f.addr++
		return v
	case stPageProgramAddr:
		return f.consumeAddrByte(out, stPageProgramData)
	case stPageProgramData:
		f.ensureBacking()
		if f.writeEnable {
			// writes past the 256-byte page boundary wrap back to its
			// start rather than spilling into the next page.
			off := (f.addr - f.pageBase) % pageSize
			f.data[(f.pageBase+off)%sizeBytes] = out
		}
		f.addr++
		return 0xFF
	case stSectorEraseAddr:
		return f.consumeAddrByte(out, stIdle)
	case stJedecID:
		ids := [3]byte{0xEF, 0x40, 0x18}
		v := ids[f.jedecIdx%3]
		f.jedecIdx++
		return v
	}
	return 0xFF
}

func (f *W25Q128) dispatchCommand(cmd uint8) uint8 {
	switch cmd {
	case 0x03:
		f.state, f.addrBytes, f.addr = stReadAddr, 0, 0
	case 0x0B:
		f.state, f.addrBytes, f.addr = stReadAddr, 0, 0
		// the dummy byte after the 3-address-byte sequence is handled by
		// consumeAddrByte transitioning to stFastReadDummy for this cmd
		f.fastRead = true
	case 0x9F:
		f.state, f.jedecIdx = stJedecID, 0
	case 0xAB:
		f.poweredDown = false
	case 0x05:
		return 0x00
	case 0xB9:
		f.poweredDown = true
	case 0x06:
		f.writeEnable = true
	case 0x04:
		f.writeEnable = false
	case 0x02:
		f.state, f.addrBytes, f.addr = stPageProgramAddr, 0, 0
	case 0x20:
		f.state, f.addrBytes, f.addr = stSectorEraseAddr, 0, 0
	}
	return 0xFF
}

func (f *W25Q128) consumeAddrByte(b uint8, next cmdState) uint8 {
	f.addr = (f.addr << 8) | uint32(b)
	f.addrBytes++
	if f.addrBytes < 3 {
		return 0xFF
	}
	if next == stIdle { // sector erase: fires once the 3-byte address is complete
		f.eraseSector(f.addr)
		f.state = stIdle
		return 0xFF
	}
	if next == stReading && f.fastRead {
		f.fastRead = false
		f.state = stFastReadDummy
		return 0xFF
	}
	if next == stPageProgramData {
		f.pageBase = (f.addr / pageSize) * pageSize
	}
	f.state = next
	return 0xFF
}

func (f *W25Q128) eraseSector(addr uint32) {
	f.ensureBacking()
	base := (addr / sectorSize) * sectorSize
	for i := uint32(0); i < sectorSize; i++ {
		f.data[(base+i)%sizeBytes] = 0xFF
	}
}

func (f *W25Q128) Advance(cycles uint32) {}

func (f *W25Q128) Name() string { return "extflash" }
