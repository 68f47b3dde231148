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

package display

import "github.com/mgavr/avrcore/internal/mem"

const (
	ssd1306Width  = 128
	ssd1306Height = 64
	ssd1306Pages  = ssd1306Height / 8
)

// addrMode selects how column/page auto-increment after a data write.
type addrMode int

const (
	addrHorizontal addrMode = iota
	addrVertical
	addrPage
)

// pendingCmd names a command awaiting trailing argument bytes.
type pendingCmd int

const (
	pendNone pendingCmd = iota
	pendContrast
	pendAddrMode
	pendColRange
	pendPageRange
)

// SSD1306 drives the 128x64 1bpp OLED panel used on Arduboy (spec
// §4.5). GDDRAM is stored page-major: plane[page*Width+col] holds 8
// vertically-stacked pixels, matching the real controller's layout.
type SSD1306 struct {
	pins PinConfig

	csLevel, dcLevel bool
	on               bool
	inverted         bool
	contrast         uint8
	mode             addrMode

	colStart, colEnd   uint8
	pageStart, pageEnd uint8
	col, page          uint8

	pending    pendingCmd
	pendingArg []uint8

	plane [ssd1306Pages * ssd1306Width]byte

	initSeen []byte
}

// NewSSD1306 builds a controller watching the given CS/DC pins.
func NewSSD1306(pins PinConfig) *SSD1306 {
	c := &SSD1306{pins: pins}
	c.colEnd = ssd1306Width - 1
	c.pageEnd = ssd1306Pages - 1
	return c
}

// OnGPIOEdge tracks the CS and D/C pin levels this controller cares
// about; every other pin edge is ignored.
func (c *SSD1306) OnGPIOEdge(e mem.GPIOEdge) {
	if e.Port == c.pins.CSPort && e.Pin == c.pins.CSBit {
		c.csLevel = e.Rising
	}
	if e.Port == c.pins.DCPort && e.Pin == c.pins.DCBit {
		c.dcLevel = e.Rising
	}
}

// CSActive reports chip-select asserted, which on this wiring is
// active-low (CS pin driven low selects the chip).
func (c *SSD1306) CSActive() bool { return !c.csLevel }

// Transfer consumes one SPI byte if CS is asserted, routing it to
// command or data handling based on the D/C pin level.
func (c *SSD1306) Transfer(out uint8) uint8 {
	if !c.CSActive() {
		return 0xFF
	}
	if c.dcLevel {
		c.writeData(out)
	} else {
		c.writeCommand(out)
	}
	return 0xFF
}

func (c *SSD1306) writeCommand(b uint8) {
	if len(c.initSeen) < 16 {
		c.initSeen = append(c.initSeen, b)
	}
	if c.pending != pendNone {
		c.applyPendingByte(b)
		return
	}
	switch {
	case b == 0xAE:
		c.on = false
	case b == 0xAF:
		c.on = true
	case b == 0xA6:
		c.inverted = false
	case b == 0xA7:
		c.inverted = true
	case b == 0x81:
		c.pending = pendContrast
	case b == 0x20:
		c.pending = pendAddrMode
	case b == 0x21:
		c.pending = pendColRange
	case b == 0x22:
		c.pending = pendPageRange
	case b&0xB0 == 0xB0: // 0xB0-0xB7: set page start for page addressing mode
		c.page = b & 0x07
	case b&0xF0 == 0x00: // set lower column start nibble (page mode)
		c.col = (c.col &^ 0x0F) | (b & 0x0F)
	case b&0xF0 == 0x10: // set higher column start nibble (page mode)
		c.col = (c.col & 0x0F) | ((b & 0x0F) << 4)
	}
}

func (c *SSD1306) applyPendingByte(b uint8) {
	switch c.pending {
	case pendContrast:
		c.contrast = b
		c.pending = pendNone
	case pendAddrMode:
		switch b & 0x03 {
		case 0:
			c.mode = addrHorizontal
		case 1:
			c.mode = addrVertical
		default:
			c.mode = addrPage
		}
		c.pending = pendNone
	case pendColRange:
		c.pendingArg = append(c.pendingArg, b)
		if len(c.pendingArg) == 2 {
			c.colStart, c.colEnd = c.pendingArg[0], c.pendingArg[1]
			c.col = c.colStart
			c.pendingArg = nil
			c.pending = pendNone
		}
	case pendPageRange:
		c.pendingArg = append(c.pendingArg, b)
		if len(c.pendingArg) == 2 {
			c.pageStart, c.pageEnd = c.pendingArg[0], c.pendingArg[1]
			c.page = c.pageStart
			c.pendingArg = nil
			c.pending = pendNone
		}
	}
}

func (c *SSD1306) writeData(b uint8) {
	idx := int(c.page)*ssd1306Width + int(c.col)
	if idx >= 0 && idx < len(c.plane) {
		c.plane[idx] = b
	}
	c.advanceCursor()
}

func (c *SSD1306) advanceCursor() {
	switch c.mode {
	case addrHorizontal:
		c.col++
		if c.col > c.colEnd {
			c.col = c.colStart
			c.page++
			if c.page > c.pageEnd {
				c.page = c.pageStart
			}
		}
	case addrVertical:
		c.page++
		if c.page > c.pageEnd {
			c.page = c.pageStart
			c.col++
			if c.col > c.colEnd {
				c.col = c.colStart
			}
		}
	case addrPage:
		c.col++
		if c.col > c.colEnd {
			c.col = c.colStart
		}
	}
}

// Plane returns the raw GDDRAM bytes for rendering.
func (c *SSD1306) Plane() (bits []byte, w, h int, inverted bool, contrast uint8) {
	return c.plane[:], ssd1306Width, ssd1306Height, c.inverted, c.contrast
}

// InitBytes exposes the first init command bytes seen, for auto-detection.
func (c *SSD1306) InitBytes() []byte { return c.initSeen }
