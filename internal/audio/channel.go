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

// ToneSource is satisfied by internal/timer.Timer16/Timer4 instances:
// a peripheral that may be driving a fixed-frequency square wave via
// CTC toggle mode. Selector prefers a live tone source's exact
// frequency over resampling its already-captured GPIO edges, since a
// hardware timer's toggle period is known exactly while edge capture
// at audio sample rates can under-resolve very high tone frequencies.
type ToneSource interface {
	ToneHz() (hz float64, active bool)
}

// Selector implements the channel priority table (spec §4.7):
// Left:  Timer3-CTC -> Timer4-CTC -> Timer2-CTC (328P) -> GPIO bit-bang
// Right: Timer1-CTC -> GPIO bit-bang
type Selector struct {
	Timer1, Timer3 ToneSource // 16-bit timers; Timer4 is 10-bit PWM, handled separately
	Timer4         ToneSource
	Timer2         ToneSource // 328P only; nil on 32u4
}

// pick walks a priority list and returns the first active source.
func pick(sources ...ToneSource) (ToneSource, bool) {
	for _, s := range sources {
		if s == nil {
			continue
		}
		if _, active := s.ToneHz(); active {
			return s, true
		}
	}
	return nil, false
}

// LeftSource resolves which source currently drives the left channel,
// or false if none is active and the bit-bang trace should be used.
func (s *Selector) LeftSource() (ToneSource, bool) {
	return pick(s.Timer3, s.Timer4, s.Timer2)
}

// RightSource resolves the right channel's active tone source.
func (s *Selector) RightSource() (ToneSource, bool) {
	return pick(s.Timer1)
}

// SquareWave synthesizes n samples of a 50%-duty square wave at hz
// starting at phase (0..1, carried across frames so the waveform
// stays continuous), returning the updated phase.
func SquareWave(hz float64, sampleHz float64, n int, phase float64) ([]float32, float64) {
	out := make([]float32, n)
	step := hz / sampleHz
	for i := 0; i < n; i++ {
		if phase < 0.5 {
			out[i] = 1
		} else {
			out[i] = 0
		}
		phase += step
		if phase >= 1 {
			phase -= 1
		}
	}
	return out, phase
}
