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
	pcd8544Width  = 84
	pcd8544Height = 48
	pcd8544Banks  = pcd8544Height / 8
)

// PCD8544 drives the 84x48 1bpp LCD used by the Gamebuino Classic
// (spec §4.5): function-set H bit toggles the extended instruction
// set used for VOP contrast and bias, the normal set carries display
// mode and X/Y addressing.
type PCD8544 struct {
	pins PinConfig

	csLevel, dcLevel bool
	extended         bool
	poweredDown      bool
	inverted         bool
	blank            bool
	contrastVOP      uint8
	bias             uint8

	x, y int

	buf [pcd8544Width * pcd8544Banks]byte

	initSeen []byte
}

// NewPCD8544 builds a controller watching the given CS/DC pins.
func NewPCD8544(pins PinConfig) *PCD8544 {
	return &PCD8544{pins: pins}
}

func (c *PCD8544) OnGPIOEdge(e mem.GPIOEdge) {
	if e.Port == c.pins.CSPort && e.Pin == c.pins.CSBit {
		c.csLevel = e.Rising
	}
	if e.Port == c.pins.DCPort && e.Pin == c.pins.DCBit {
		c.dcLevel = e.Rising
	}
}

func (c *PCD8544) CSActive() bool { return !c.csLevel }

func (c *PCD8544) Transfer(out uint8) uint8 {
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

func (c *PCD8544) writeCommand(b uint8) {
	if len(c.initSeen) < 16 {
		c.initSeen = append(c.initSeen, b)
	}
	switch {
	case b&0xE0 == 0x20: // function set: 0 0 1 PD V H
		c.poweredDown = b&0x04 != 0
		c.extended = b&0x01 != 0
	case c.extended && b&0x80 != 0: // extended: set Vop contrast, 1 VVVVVVV
		c.contrastVOP = b & 0x7F
	case c.extended && b&0xF0 == 0x10: // extended: bias system, 0 0 0 1 0 BBB
		c.bias = b & 0x07
	case !c.extended && b&0xF8 == 0x08: // normal: display control, 0 0 0 0 1 D 0 E
		c.blank = b&0x04 == 0
		c.inverted = b == 0x0D
	case !c.extended && b&0xC0 == 0x40: // normal: set Y (bank) address, 0 1 0 0 0 YYY
		c.y = int(b & 0x07)
	case !c.extended && b&0x80 != 0: // normal: set X (column) address
		c.x = int(b & 0x7F)
	}
}

func (c *PCD8544) writeData(b uint8) {
	idx := c.y*pcd8544Width + c.x
	if idx >= 0 && idx < len(c.buf) {
		c.buf[idx] = b
	}
	c.x++
	if c.x >= pcd8544Width {
		c.x = 0
		c.y = (c.y + 1) % pcd8544Banks
	}
}

// Plane returns the linear GDDRAM bytes. contrast is derived from the
// Vop register since PCD8544 has no separate 0-255 contrast byte.
func (c *PCD8544) Plane() (bits []byte, w, h int, inverted bool, contrast uint8) {
	return c.buf[:], pcd8544Width, pcd8544Height, c.inverted, c.contrastVOP * 2
}

func (c *PCD8544) InitBytes() []byte { return c.initSeen }
