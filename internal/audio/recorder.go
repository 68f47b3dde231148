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

// Package audio implements the sample-accurate edge recorder and DSP
// post-process chain (spec §4.7): GPIO toggles on the monitored audio
// pins are captured as a per-frame ordered edge trace, then resampled
// to host-rate stereo PCM by time-weighted integration between edges.
// The recorder is a plain mem.GPIOSink with no back-edge into the
// CPU, same fan-out discipline as internal/led.Tracker.
package audio

import "github.com/mgavr/avrcore/internal/mem"

// Edge is one pin transition captured within the current frame.
type Edge struct {
	Tick   uint64
	Rising bool
}

// Channel names a monitored audio pin.
type Channel int

const (
	ChannelLeft Channel = iota
	ChannelRight
)

// PinSet names the two monitored bit-bang pins per spec §4.2: PC6 or
// PD3 for one channel, PB5 shared between targets for the other.
type PinSet struct {
	Left, Right struct {
		Port mem.Port
		Bit  uint8
	}
}

// Recorder32u4 watches PC6 (left) and PB5 (right).
var Recorder32u4 = func() PinSet {
	var p PinSet
	p.Left.Port, p.Left.Bit = mem.PortC, 6
	p.Right.Port, p.Right.Bit = mem.PortB, 5
	return p
}()

// Recorder328P watches PD3 (left) and PB5 (right).
var Recorder328P = func() PinSet {
	var p PinSet
	p.Left.Port, p.Left.Bit = mem.PortD, 3
	p.Right.Port, p.Right.Bit = mem.PortB, 5
	return p
}()

// Recorder accumulates a per-frame edge trace for each channel. Edges
// are cleared at the start of each frame after the previous frame's
// trace has been consumed by the resampler (spec §3 "Audio edge
// trace": rebuilt per frame).
type Recorder struct {
	pins PinSet

	trace [2][]Edge
	level [2]bool
}

func NewRecorder(pins PinSet) *Recorder {
	return &Recorder{pins: pins}
}

// OnGPIOEdge appends a trace entry when the edge matches a monitored
// pin. The trace is append-only within a frame; ticks are
// monotonically non-decreasing because the dispatcher emits edges in
// program order (spec §8 invariant 7).
func (r *Recorder) OnGPIOEdge(e mem.GPIOEdge) {
	if e.Port == r.pins.Left.Port && e.Pin == r.pins.Left.Bit {
		r.level[ChannelLeft] = e.Rising
		r.trace[ChannelLeft] = append(r.trace[ChannelLeft], Edge{Tick: e.Tick, Rising: e.Rising})
	}
	if e.Port == r.pins.Right.Port && e.Pin == r.pins.Right.Bit {
		r.level[ChannelRight] = e.Rising
		r.trace[ChannelRight] = append(r.trace[ChannelRight], Edge{Tick: e.Tick, Rising: e.Rising})
	}
}

// Trace returns the current frame's edge list for a channel.
func (r *Recorder) Trace(ch Channel) []Edge { return r.trace[ch] }

// Level reports the pin's current level, needed by the resampler to
// know the starting level of a frame with zero edges in it.
func (r *Recorder) Level(ch Channel) bool { return r.level[ch] }

// EndFrame clears both channel traces, ready for the next frame.
func (r *Recorder) EndFrame() {
	r.trace[ChannelLeft] = r.trace[ChannelLeft][:0]
	r.trace[ChannelRight] = r.trace[ChannelRight][:0]
}
