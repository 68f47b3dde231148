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

// Package debug implements the debugger-facing facilities spec §4.8
// names: PC breakpoints, data watchpoints (as an internal/mem access
// observer), a PC-histogram/call-graph/CPI profiler and a bounded
// snapshot ring. None of these mutate emulation semantics; they
// observe the CPU and dispatcher the way the teacher's disassembler
// in go/mgnes/disassembly.go observes decoded instructions without
// altering execution.
package debug

// Breakpoints is a set of word-address PC breakpoints, checked at
// every instruction boundary (spec §4.8).
type Breakpoints struct {
	set map[uint32]bool
}

func NewBreakpoints() *Breakpoints {
	return &Breakpoints{set: make(map[uint32]bool)}
}

func (b *Breakpoints) Add(pc uint32)    { b.set[pc] = true }
func (b *Breakpoints) Remove(pc uint32) { delete(b.set, pc) }
func (b *Breakpoints) Hit(pc uint32) bool {
	return b.set[pc]
}
func (b *Breakpoints) List() []uint32 {
	out := make([]uint32, 0, len(b.set))
	for pc := range b.set {
		out = append(out, pc)
	}
	return out
}
