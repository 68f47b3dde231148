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

// Package logx is the core's structured logging seam. It generalizes
// the teacher's SetLogger/SetLogEnable switch into a real structured
// sink so callers (the CLI, an embedding front-end) can route core
// diagnostics without the core depending on any particular output.
package logx

import (
	"io"
	"os"

	"github.com/rs/zerolog"
)

var (
	logEnable = true
	base      = zerolog.New(os.Stderr).With().Timestamp().Logger()
)

// SetOutput redirects all subsequent log records to w.
func SetOutput(w io.Writer) {
	base = zerolog.New(w).With().Timestamp().Logger()
}

// SetLogEnable toggles emission without changing the configured sink,
// mirroring the teacher's debug-trace on/off switch.
func SetLogEnable(enable bool) {
	logEnable = enable
}

// Component returns a named sub-logger, e.g. logx.Component("timer1").
func Component(name string) zerolog.Logger {
	return base.With().Str("component", name).Logger()
}

// L logs a single free-form info line, the structured analogue of the
// teacher's package-level log.L(msg) convenience call.
func L(msg string) {
	if !logEnable {
		return
	}
	base.Info().Msg(msg)
}

// Warn logs a recoverable-error line (EEPROM write failure, malformed
// GDB packet, evicted snapshot) with structured fields.
func Warn(component, msg string, fields map[string]interface{}) {
	ev := base.Warn().Str("component", component)
	for k, v := range fields {
		ev = ev.Interface(k, v)
	}
	ev.Msg(msg)
}

// Fatal logs an unrecoverable emulation fault (UnknownOpcode) with
// structured fields. It does not terminate the process; callers decide.
func Fatal(component, msg string, fields map[string]interface{}) {
	ev := base.Error().Str("component", component)
	for k, v := range fields {
		ev = ev.Interface(k, v)
	}
	ev.Msg(msg)
}
