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

package logx

import (
	"bytes"
	"testing"

	"github.com/stretchr/testify/require"
)

// resetState restores the package-level enable switch after a test
// mutates it, since it is a shared global.
func resetState(t *testing.T) {
	t.Helper()
	t.Cleanup(func() {
		logEnable = true
	})
}

func TestLLogsToConfiguredOutput(t *testing.T) {
	resetState(t)
	var buf bytes.Buffer
	SetOutput(&buf)

	L("frame boundary reached")

	require.Contains(t, buf.String(), "frame boundary reached")
}

func TestSetLogEnableFalseSuppressesL(t *testing.T) {
	resetState(t)
	var buf bytes.Buffer
	SetOutput(&buf)
	SetLogEnable(false)

	L("should not appear")

	require.Empty(t, buf.String())
}

func TestComponentAttachesNameField(t *testing.T) {
	resetState(t)
	var buf bytes.Buffer
	SetOutput(&buf)

	Component("timer1").Info().Msg("tick")

	require.Contains(t, buf.String(), "timer1")
	require.Contains(t, buf.String(), "tick")
}

func TestWarnIncludesStructuredFields(t *testing.T) {
	resetState(t)
	var buf bytes.Buffer
	SetOutput(&buf)

	Warn("eeprom", "write failed", map[string]interface{}{"addr": 0x20})

	out := buf.String()
	require.Contains(t, out, "eeprom")
	require.Contains(t, out, "write failed")
	require.Contains(t, out, "32") // 0x20 in decimal, as zerolog renders ints
}

func TestFatalIncludesStructuredFields(t *testing.T) {
	resetState(t)
	var buf bytes.Buffer
	SetOutput(&buf)

	Fatal("avrcpu", "unknown opcode", map[string]interface{}{"opcode": "0xFFFF"})

	out := buf.String()
	require.Contains(t, out, "avrcpu")
	require.Contains(t, out, "unknown opcode")
	require.Contains(t, out, "0xFFFF")
}
