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

package machine

import (
	"strings"

	"github.com/pkg/errors"

	"github.com/mgavr/avrcore/internal/avrerr"
)

// ExitCode maps a RunFor outcome to the process exit codes spec §6
// defines: 0 normal, 2 file load failure, 3 fatal CPU error.
func ExitCode(err error) int {
	switch {
	case err == nil:
		return 0
	case errors.Is(err, avrerr.ErrFileLoad),
		strings.Contains(err.Error(), avrerr.ErrFileLoad.Error()):
		// FileLoad wraps its cause rather than the sentinel, so the
		// kind is visible only in the message text.
		return 2
	case errors.Is(err, avrerr.ErrUnknownOpcode):
		return 3
	default:
		return 3
	}
}
