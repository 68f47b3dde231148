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

package avrerr

import (
	"testing"

	"github.com/pkg/errors"
	"github.com/stretchr/testify/require"
)

func TestFileLoadWrapsPathAndCause(t *testing.T) {
	cause := errors.New("disk error")
	err := FileLoad("/tmp/prog.hex", cause)

	// FileLoad wraps cause directly; ErrFileLoad only appears in the
	// message text, so it is not part of the errors.Is chain here.
	require.Contains(t, err.Error(), "file load failed")
	require.Contains(t, err.Error(), "/tmp/prog.hex")
	require.Contains(t, err.Error(), "disk error")
}

func TestFlashOverflowReportsSizes(t *testing.T) {
	err := FlashOverflow(40000, 32768)
	require.ErrorIs(t, err, ErrFlashOverflow)
	require.Contains(t, err.Error(), "40000")
	require.Contains(t, err.Error(), "32768")
}

func TestUnknownOpcodeCarriesPCAndWord(t *testing.T) {
	err := UnknownOpcode(0x1234, 0xFFFF)
	require.ErrorIs(t, err, ErrUnknownOpcode)

	var oe *UnknownOpcodeError
	require.ErrorAs(t, err, &oe)
	require.Equal(t, uint32(0x1234), oe.PC)
	require.Equal(t, uint16(0xFFFF), oe.Word)
}

func TestBreakpointHitReportsPC(t *testing.T) {
	err := BreakpointHit(0x80)
	require.ErrorIs(t, err, ErrBreakpointHit)
	require.Contains(t, err.Error(), "0x0080")
}

func TestWatchpointHitNamesReadOrWrite(t *testing.T) {
	readErr := WatchpointHit(0x20, false)
	require.Contains(t, readErr.Error(), "read")

	writeErr := WatchpointHit(0x20, true)
	require.Contains(t, writeErr.Error(), "write")
}

func TestSnapshotOutOfRangeReportsAgeAndAvailable(t *testing.T) {
	err := SnapshotOutOfRange(10, 4)
	require.Contains(t, err.Error(), "10")
	require.Contains(t, err.Error(), "4")
}

func TestGdbProtocolQuotesRawPacket(t *testing.T) {
	err := GdbProtocol("$g#00")
	require.ErrorIs(t, err, ErrGdbProtocol)
	require.Contains(t, err.Error(), "$g#00")
}

func TestEepromWriteIOWrapsPathAndCause(t *testing.T) {
	cause := errors.New("permission denied")
	err := EepromWriteIO("/tmp/save.eep", cause)
	require.Contains(t, err.Error(), "/tmp/save.eep")
	require.Contains(t, err.Error(), "permission denied")
}
