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

func TestDetectFromInitRecognizesSSD1306DisplayOff(t *testing.T) {
	require.Equal(t, "ssd1306", DetectFromInit([]byte{0xAE, 0x81, 0x7F}, false))
}

func TestDetectFromInitRecognizesPCD8544FunctionSet(t *testing.T) {
	require.Equal(t, "pcd8544", DetectFromInit([]byte{0x21, 0x90}, true))
}

func TestDetectFromInitFallsBackToVariantWhenInconclusive(t *testing.T) {
	require.Equal(t, "ssd1306", DetectFromInit(nil, true))
	require.Equal(t, "pcd8544", DetectFromInit(nil, false))
}

func TestDetectFromInitStopsAtFirstRecognizedByte(t *testing.T) {
	require.Equal(t, "pcd8544", DetectFromInit([]byte{0x00, 0x20, 0xAE}, true))
}
