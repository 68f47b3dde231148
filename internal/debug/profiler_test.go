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

import (
	"testing"

	"github.com/stretchr/testify/require"
)

func TestProfilerHistogramCountsPerPC(t *testing.T) {
	p := NewProfiler()
	p.RecordInstruction(0x100, 1)
	p.RecordInstruction(0x100, 2)
	p.RecordInstruction(0x104, 1)

	h := p.Histogram()
	require.Equal(t, uint64(2), h[0x100])
	require.Equal(t, uint64(1), h[0x104])
}

func TestProfilerCallGraphPairsCallerWithCallee(t *testing.T) {
	p := NewProfiler()
	p.RecordCall(0x10)
	p.RecordCallee(0x200)
	p.RecordCallee(0x200)
	p.RecordReturn()

	edges := p.Edges()
	require.Len(t, edges, 1)
	require.Equal(t, CallEdge{Caller: 0x10, Callee: 0x200, Count: 2}, edges[0])
}

func TestProfilerRecordCalleeWithoutCallIsNoop(t *testing.T) {
	p := NewProfiler()
	p.RecordCallee(0x200)
	require.Empty(t, p.Edges())
}

func TestProfilerRecordReturnOnEmptyStackIsNoop(t *testing.T) {
	p := NewProfiler()
	require.NotPanics(t, func() { p.RecordReturn() })
}

func TestProfilerNestedCallsTrackSeparateCallers(t *testing.T) {
	p := NewProfiler()
	p.RecordCall(0x10)
	p.RecordCallee(0x200)
	p.RecordCall(0x204) // call made from within the callee at 0x200
	p.RecordCallee(0x300)
	p.RecordReturn()
	p.RecordCallee(0x208) // back in 0x10's frame after the nested call returns

	edges := p.Edges()
	require.Len(t, edges, 3)
}

func TestAverageCPIIsMeanOfWindow(t *testing.T) {
	p := NewProfiler()
	p.RecordInstruction(0x0, 1)
	p.RecordInstruction(0x0, 3)

	require.InDelta(t, 2.0, p.AverageCPI(), 1e-9)
}

func TestAverageCPIZeroWithNoInstructions(t *testing.T) {
	p := NewProfiler()
	require.Equal(t, 0.0, p.AverageCPI())
}

func TestAverageCPIWindowEvictsOldestEntries(t *testing.T) {
	p := NewProfiler()
	p.cpiWindowSize = 2

	p.RecordInstruction(0x0, 10) // evicted once the window fills
	p.RecordInstruction(0x0, 2)
	p.RecordInstruction(0x0, 4)

	require.InDelta(t, 3.0, p.AverageCPI(), 1e-9)
}

func TestOverallCPIAveragesAcrossWholeRun(t *testing.T) {
	p := NewProfiler()
	p.cpiWindowSize = 1 // rolling window shrinks, overall must not

	p.RecordInstruction(0x0, 1)
	p.RecordInstruction(0x0, 2)
	p.RecordInstruction(0x0, 3)

	require.InDelta(t, 2.0, p.OverallCPI(), 1e-9)
	require.InDelta(t, 3.0, p.AverageCPI(), 1e-9)
}

func TestOverallCPIZeroWithNoInstructions(t *testing.T) {
	p := NewProfiler()
	require.Equal(t, 0.0, p.OverallCPI())
}
