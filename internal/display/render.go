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

import (
	"image"
	"image/color"

	"golang.org/x/image/draw"
)

// CanvasWidth and CanvasHeight are the fixed snapshot output size;
// PCD8544's smaller 84x48 plane is centered inside it (spec §4.5).
const (
	CanvasWidth  = 128
	CanvasHeight = 64
)

var (
	colorOn  = color.RGBA{R: 0xE0, G: 0xE0, B: 0xE0, A: 0xFF}
	colorOff = color.RGBA{R: 0x08, G: 0x08, B: 0x08, A: 0xFF}
)

// Render converts a controller's 1bpp plane to an RGBA canvas, scaling
// per-pixel intensity by contrast and XORing every bit when inverted.
// SSD1306's 128x64 plane fills the canvas directly; PCD8544's 84x48
// plane is centered, matching its physical rendering on the
// Gamebuino Classic's larger emulated display area.
func Render(ctrl Controller) *image.RGBA {
	bits, w, h, inverted, contrast := ctrl.Plane()
	src := image.NewRGBA(image.Rect(0, 0, w, h))

	scale := func(c color.RGBA) color.RGBA {
		f := float64(contrast) / 255.0
		if contrast == 0 {
			f = 1.0
		}
		return color.RGBA{
			R: uint8(float64(c.R) * f),
			G: uint8(float64(c.G) * f),
			B: uint8(float64(c.B) * f),
			A: 0xFF,
		}
	}

	pagedPlane := len(bits) == (w*h)/8 && w >= 8
	for y := 0; y < h; y++ {
		for x := 0; x < w; x++ {
			var bit bool
			if pagedPlane {
				// page-major layout used by both controllers: byte index
				// is (y/8)*w + x, bit (y%8) within that byte.
				page := y / 8
				idx := page*w + x
				if idx < len(bits) {
					bit = bits[idx]&(1<<uint(y%8)) != 0
				}
			}
			if inverted {
				bit = !bit
			}
			c := colorOff
			if bit {
				c = colorOn
			}
			src.Set(x, y, scale(c))
		}
	}

	if w == CanvasWidth && h == CanvasHeight {
		return src
	}

	dst := image.NewRGBA(image.Rect(0, 0, CanvasWidth, CanvasHeight))
	draw.Draw(dst, dst.Bounds(), &image.Uniform{C: colorOff}, image.Point{}, draw.Src)
	ox := (CanvasWidth - w) / 2
	oy := (CanvasHeight - h) / 2
	draw.Draw(dst, image.Rect(ox, oy, ox+w, oy+h), src, image.Point{}, draw.Src)
	return dst
}
