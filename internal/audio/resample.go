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

// Resampler converts a frame's edge trace into host-rate PCM by
// time-weighted integration between edges (spec §4.7): each output
// sample's value is the fraction of its tick span spent at logic
// high, avoiding the aliasing a naive nearest-edge sample would
// introduce on the square waves these timers produce.
type Resampler struct {
	cpuHz, sampleHz uint64
}

// NewResampler fixes the CPU clock (always 16 MHz, spec §3) and the
// host output sample rate.
func NewResampler(cpuHz, sampleHz uint64) *Resampler {
	return &Resampler{cpuHz: cpuHz, sampleHz: sampleHz}
}

// Resample produces one float32 sample per host sample period inside
// [frameStartTick, frameEndTick), starting from startLevel and walking
// edges in order. Amplitude is 0.0 (low) to 1.0 (high); callers
// wanting a centered waveform should subtract 0.5 and scale by 2.
func (r *Resampler) Resample(edges []Edge, startLevel bool, frameStartTick, frameEndTick uint64) []float32 {
	span := frameEndTick - frameStartTick
	if span == 0 {
		return nil
	}
	ticksPerSample := float64(r.cpuHz) / float64(r.sampleHz)
	n := int(float64(span) / ticksPerSample)
	if n <= 0 {
		return nil
	}
	out := make([]float32, n)

	level := startLevel
	edgeIdx := 0
	cursor := float64(frameStartTick)

	for i := 0; i < n; i++ {
		sampleStart := cursor
		sampleEnd := cursor + ticksPerSample
		if i == n-1 {
			sampleEnd = float64(frameEndTick)
		}

		var highTicks float64
		pos := sampleStart
		curLevel := level

		for edgeIdx < len(edges) && float64(edges[edgeIdx].Tick) < sampleEnd {
			et := float64(edges[edgeIdx].Tick)
			if et > pos {
				if curLevel {
					highTicks += et - pos
				}
				pos = et
			}
			curLevel = edges[edgeIdx].Rising
			edgeIdx++
		}
		if curLevel {
			highTicks += sampleEnd - pos
		}
		level = curLevel

		width := sampleEnd - sampleStart
		if width > 0 {
			out[i] = float32(highTicks / width)
		}
		cursor = sampleEnd
	}
	return out
}
