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

// Package display implements the two monochrome controllers this core
// drives over the shared SPI bus (spec §4.5): SSD1306 (128x64, used by
// Arduboy/32u4) and PCD8544 (84x48, used by Gamebuino Classic/328P).
// Both watch their CS/D-C pins as mem.GPIOSink listeners and act as
// spi.Device bus participants, the same dual-role pattern the teacher
// uses for pkg/mappers.Mapper instances that are both bus-addressable
// and driven by the PPU's scanline clock.
package display

import "github.com/mgavr/avrcore/internal/mem"

// PinConfig names the CS/DC/RST GPIO pins a controller instance
// watches. Defaults per spec §4.5: 32u4 SSD1306 uses CS=PD6, DC=PD4;
// 328P PCD8544 (Gamebuino Classic) uses CS=PC1, DC=PC2, RST=PC0.
type PinConfig struct {
	CSPort, DCPort, RSTPort mem.Port
	CSBit, DCBit, RSTBit    uint8
}

// DefaultSSD1306Pins is the Arduboy 32u4 wiring.
var DefaultSSD1306Pins = PinConfig{
	CSPort: mem.PortD, CSBit: 6,
	DCPort: mem.PortD, DCBit: 4,
}

// DefaultPCD8544Pins is the Gamebuino Classic 328P wiring.
var DefaultPCD8544Pins = PinConfig{
	CSPort: mem.PortC, CSBit: 1,
	DCPort: mem.PortC, DCBit: 2,
	RSTPort: mem.PortC, RSTBit: 0,
}

// Controller is the common operation surface both display chips
// implement: spi.Device participation plus GPIO pin tracking and a
// 1bpp plane readout for the RGBA render path.
type Controller interface {
	mem.GPIOSink

	// CSActive satisfies spi.Device; Controller does not import the
	// spi package to avoid a dependency cycle risk as the two grow.
	CSActive() bool
	Transfer(out uint8) (in uint8)

	// Plane returns the 1bpp framebuffer, width and height, ready for
	// an RGBA render pass (internal/machine wires golang.org/x/image
	// draw over this for --snapshot output).
	Plane() (bits []byte, w, h int, inverted bool, contrast uint8)
}

// DetectFromInit inspects the first init command bytes a boot sequence
// writes in command mode and guesses the controller family (spec §4.5
// "Auto-detection"). SSD1306 init sequences begin with 0xAE (display
// off); PCD8544 sequences begin with 0x21 (function-set, extended
// instruction mode) or 0x20. When the sequence is inconclusive it
// falls back to "ssd1306" if is32u4 is set and "pcd8544" otherwise.
func DetectFromInit(initBytes []byte, is32u4 bool) string {
	for _, b := range initBytes {
		switch b {
		case 0xAE, 0xAF:
			return "ssd1306"
		case 0x20, 0x21:
			return "pcd8544"
		}
	}
	if is32u4 {
		return "ssd1306"
	}
	return "pcd8544"
}
