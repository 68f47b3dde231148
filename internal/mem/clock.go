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

package mem

// Clock is the shared 64-bit tick counter T (spec §3). It is owned by
// the Machine and handed by pointer to the CPU, the dispatcher and
// every peripheral that needs to timestamp an observation (audio
// edges). It only moves forward, except when a snapshot is restored.
type Clock struct {
	t uint64
}

// Now returns the current tick count.
func (c *Clock) Now() uint64 { return c.t }

// Advance moves the clock forward by n ticks. n is always the elapsed
// cycle count of one instruction (plus interrupt dispatch overhead),
// so T only ever increases during normal execution.
func (c *Clock) Advance(n uint32) { c.t += uint64(n) }

// Set forces the clock to an absolute value; used only by snapshot
// restore.
func (c *Clock) Set(t uint64) { c.t = t }
