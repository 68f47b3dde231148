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

package debug

// CallEdge is one observed call-graph edge: the PC of a CALL/RCALL/
// ICALL paired with the PC execution landed on, plus how often.
type CallEdge struct {
	Caller, Callee uint32
	Count          uint64
}

// Profiler accumulates a PC histogram, a call-graph and a rolling
// cycles-per-instruction average (spec §4.8). It is fed explicitly by
// the frame loop rather than by instrumenting avrcpu, keeping the
// interpreter itself free of debug-only branches on the hot path.
type Profiler struct {
	histogram map[uint32]uint64
	edges     map[[2]uint32]uint64
	callStack []uint32

	totalCycles      uint64
	totalInstr       uint64
	cpiWindow        []uint32
	cpiWindowSize    int
}

const defaultCPIWindow = 4096

func NewProfiler() *Profiler {
	return &Profiler{
		histogram:     make(map[uint32]uint64),
		edges:         make(map[[2]uint32]uint64),
		cpiWindowSize: defaultCPIWindow,
	}
}

// RecordInstruction accounts for one decoded-and-executed instruction
// at pc taking cycles ticks.
func (p *Profiler) RecordInstruction(pc uint32, cycles uint32) {
	p.histogram[pc]++
	p.totalCycles += uint64(cycles)
	p.totalInstr++

	p.cpiWindow = append(p.cpiWindow, cycles)
	if len(p.cpiWindow) > p.cpiWindowSize {
		p.cpiWindow = p.cpiWindow[1:]
	}
}

// RecordCall pushes a caller PC onto the virtual call stack; the edge
// itself is recorded by RecordCallee once the callee's PC is known.
func (p *Profiler) RecordCall(callerPC uint32) {
	p.callStack = append(p.callStack, callerPC)
}

// RecordCallee pairs the most recent call with the PC execution
// landed on, per spec §4.8 "pair with callee PC".
func (p *Profiler) RecordCallee(calleePC uint32) {
	if len(p.callStack) == 0 {
		return
	}
	caller := p.callStack[len(p.callStack)-1]
	p.edges[[2]uint32{caller, calleePC}]++
}

// RecordReturn pops the virtual call stack on RET/RETI.
func (p *Profiler) RecordReturn() {
	if len(p.callStack) == 0 {
		return
	}
	p.callStack = p.callStack[:len(p.callStack)-1]
}

// Histogram returns a copy of the PC execution-count table.
func (p *Profiler) Histogram() map[uint32]uint64 {
	cp := make(map[uint32]uint64, len(p.histogram))
	for k, v := range p.histogram {
		cp[k] = v
	}
	return cp
}

// Edges returns the accumulated call-graph as a flat list.
func (p *Profiler) Edges() []CallEdge {
	out := make([]CallEdge, 0, len(p.edges))
	for k, v := range p.edges {
		out = append(out, CallEdge{Caller: k[0], Callee: k[1], Count: v})
	}
	return out
}

// AverageCPI returns the rolling cycles-per-instruction average over
// the most recent window of instructions.
func (p *Profiler) AverageCPI() float64 {
	if len(p.cpiWindow) == 0 {
		return 0
	}
	var sum uint64
	for _, c := range p.cpiWindow {
		sum += uint64(c)
	}
	return float64(sum) / float64(len(p.cpiWindow))
}

// OverallCPI returns cycles-per-instruction across the whole run.
func (p *Profiler) OverallCPI() float64 {
	if p.totalInstr == 0 {
		return 0
	}
	return float64(p.totalCycles) / float64(p.totalInstr)
}
