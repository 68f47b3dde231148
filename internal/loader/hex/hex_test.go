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

package hex

import (
	"testing"

	"github.com/stretchr/testify/require"
)

func TestParseDataAndEOF(t *testing.T) {
	text := ":0400000001020304F2\n:02000400AABB95\n:00000001FF\n"

	segs, err := Parse(text)
	require.NoError(t, err)
	require.Len(t, segs, 2)
	require.Equal(t, uint32(0), segs[0].Addr)
	require.Equal(t, []byte{0x01, 0x02, 0x03, 0x04}, segs[0].Data)
	require.Equal(t, uint32(4), segs[1].Addr)
	require.Equal(t, []byte{0xAA, 0xBB}, segs[1].Data)
}

func TestParseExtendedSegmentAddress(t *testing.T) {
	text := ":020000020010EC\n:010000009966\n:00000001FF\n"

	segs, err := Parse(text)
	require.NoError(t, err)
	require.Len(t, segs, 1)
	require.Equal(t, uint32(0x100), segs[0].Addr)
	require.Equal(t, []byte{0x99}, segs[0].Data)
}

func TestParseRejectsBadChecksum(t *testing.T) {
	_, err := Parse(":0400000001020304FF\n")
	require.Error(t, err)
}

func TestParseRejectsMissingColon(t *testing.T) {
	_, err := Parse("0400000001020304F2\n")
	require.Error(t, err)
}

func TestParseStopsAtEOFRecord(t *testing.T) {
	// A data record after the EOF record must never be reached.
	text := ":00000001FF\n:0400000001020304F2\n"
	segs, err := Parse(text)
	require.NoError(t, err)
	require.Empty(t, segs)
}
