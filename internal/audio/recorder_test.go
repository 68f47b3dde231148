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

package audio

import (
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/mgavr/avrcore/internal/mem"
)

func TestRecorderCapturesOnlyMonitoredPins(t *testing.T) {
	r := NewRecorder(Recorder328P)

	r.OnGPIOEdge(mem.GPIOEdge{Port: mem.PortD, Pin: 3, Rising: true, Tick: 10})
	r.OnGPIOEdge(mem.GPIOEdge{Port: mem.PortB, Pin: 5, Rising: true, Tick: 12})
	r.OnGPIOEdge(mem.GPIOEdge{Port: mem.PortD, Pin: 2, Rising: true, Tick: 14}) // unmonitored pin, ignored

	require.Len(t, r.Trace(ChannelLeft), 1)
	require.Len(t, r.Trace(ChannelRight), 1)
	require.True(t, r.Level(ChannelLeft))
	require.True(t, r.Level(ChannelRight))
}

// spec §8 invariant 7: the dispatcher emits edges in program order, so
// a channel's trace ticks must be non-decreasing within a frame.
func TestRecorderTraceTicksAreMonotonicWithinFrame(t *testing.T) {
	r := NewRecorder(Recorder328P)

	ticks := []uint64{5, 5, 9, 20, 20, 31}
	rising := true
	for _, tick := range ticks {
		r.OnGPIOEdge(mem.GPIOEdge{Port: mem.PortD, Pin: 3, Rising: rising, Tick: tick})
		rising = !rising
	}

	trace := r.Trace(ChannelLeft)
	require.Len(t, trace, len(ticks))
	for i := 1; i < len(trace); i++ {
		require.GreaterOrEqual(t, trace[i].Tick, trace[i-1].Tick, "edge ticks must never regress within a frame")
	}
}

// EndFrame must clear the trace but preserve the last known level, so
// a silent frame can still report the correct starting level.
func TestRecorderEndFrameClearsTraceButKeepsLevel(t *testing.T) {
	r := NewRecorder(Recorder328P)
	r.OnGPIOEdge(mem.GPIOEdge{Port: mem.PortD, Pin: 3, Rising: true, Tick: 1})
	require.Len(t, r.Trace(ChannelLeft), 1)

	r.EndFrame()

	require.Len(t, r.Trace(ChannelLeft), 0)
	require.True(t, r.Level(ChannelLeft), "level persists across frame boundaries even with no edges")
}

func TestRecorder32u4WatchesDifferentLeftPin(t *testing.T) {
	r := NewRecorder(Recorder32u4)

	r.OnGPIOEdge(mem.GPIOEdge{Port: mem.PortD, Pin: 3, Rising: true, Tick: 1}) // 328P's left pin, ignored here
	r.OnGPIOEdge(mem.GPIOEdge{Port: mem.PortC, Pin: 6, Rising: true, Tick: 2}) // 32u4's left pin

	require.Len(t, r.Trace(ChannelLeft), 1)
	require.Equal(t, uint64(2), r.Trace(ChannelLeft)[0].Tick)
}
