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

package gdbrsp

import (
	"bufio"
	"strings"
	"testing"

	"github.com/stretchr/testify/require"
)

func TestEncodePacketFramesWithChecksum(t *testing.T) {
	// "OK" = 0x4F+0x4B = 0x9A, truncated to one byte -> 0x9a
	require.Equal(t, "$OK#9a", encodePacket("OK"))
}

func TestEncodePacketEmptyPayload(t *testing.T) {
	require.Equal(t, "$#00", encodePacket(""))
}

func TestReadPacketSkipsLeadingAckNack(t *testing.T) {
	r := bufio.NewReader(strings.NewReader("+-$g#67"))
	payload, err := readPacket(r)
	require.NoError(t, err)
	require.Equal(t, "g", payload)
}

func TestReadPacketCtrlCReturnsRawByte(t *testing.T) {
	r := bufio.NewReader(strings.NewReader("\x03"))
	payload, err := readPacket(r)
	require.NoError(t, err)
	require.Equal(t, "\x03", payload)
}

func TestReadPacketBadChecksumReturnsProtocolError(t *testing.T) {
	r := bufio.NewReader(strings.NewReader("$g#00"))
	_, err := readPacket(r)
	require.Error(t, err)
}

func TestReadPacketRoundTripsEncodedPayload(t *testing.T) {
	encoded := encodePacket("vCont?")
	r := bufio.NewReader(strings.NewReader(encoded))
	payload, err := readPacket(r)
	require.NoError(t, err)
	require.Equal(t, "vCont?", payload)
}
