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
	"testing"

	"github.com/stretchr/testify/require"
)

// SSD1306's plane fills the canvas 1:1, so the set pixel must land
// exactly at (0,0) at full brightness, with an untouched pixel dark.
func TestRenderSSD1306FillsCanvasDirectly(t *testing.T) {
	c := NewSSD1306(DefaultSSD1306Pins)
	selectChip(c)
	setDataMode(c)
	c.Transfer(0x01) // page0,col0 byte with bit0 set -> pixel (0,0) on

	img := Render(c)
	require.Equal(t, CanvasWidth, img.Bounds().Dx())
	require.Equal(t, CanvasHeight, img.Bounds().Dy())
	require.Equal(t, colorOn, img.RGBAAt(0, 0))
	require.Equal(t, colorOff, img.RGBAAt(1, 0))
}

// PCD8544's smaller plane is centered inside the fixed canvas, with
// the surrounding margin left at the background color.
func TestRenderPCD8544CentersSmallerPlane(t *testing.T) {
	c := NewPCD8544(DefaultPCD8544Pins)
	selectPCD(c)
	pcdCommandMode(c)
	c.Transfer(0x80) // set X=0
	c.Transfer(0x40) // set Y=bank0
	pcdDataMode(c)
	c.Transfer(0x01) // bit0 set -> pixel (0,0) of the 84x48 plane on

	img := Render(c)
	ox, oy := (CanvasWidth-pcd8544Width)/2, (CanvasHeight-pcd8544Height)/2

	require.Equal(t, colorOff, img.RGBAAt(0, 0), "margin outside the centered plane stays background")
	require.Equal(t, colorOn, img.RGBAAt(ox, oy))
}

func TestRenderInvertedFlipsBits(t *testing.T) {
	c := NewSSD1306(DefaultSSD1306Pins)
	selectChip(c)
	setCommandMode(c)
	c.Transfer(0xA7) // inverted on

	img := Render(c)
	require.Equal(t, colorOn, img.RGBAAt(0, 0), "an untouched (0) bit renders as on once inverted")
}

func TestRenderScalesByContrast(t *testing.T) {
	c := NewSSD1306(DefaultSSD1306Pins)
	selectChip(c)
	setCommandMode(c)
	c.Transfer(0x81) // set contrast
	c.Transfer(0x7F) // half-scale contrast value

	setDataMode(c)
	c.Transfer(0x01)

	img := Render(c)
	px := img.RGBAAt(0, 0)
	require.Less(t, px.R, colorOn.R, "contrast below 0xFF must dim the lit pixel")
	require.Greater(t, px.R, colorOff.R)
}
