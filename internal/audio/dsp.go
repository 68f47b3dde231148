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

import "math"

// biquad is a direct-form-II transposed second-order IIR section,
// used here for the 8 kHz Butterworth low-pass stage.
type biquad struct {
	b0, b1, b2, a1, a2 float64
	z1, z2             float64
}

// newButterworthLPF builds a 2nd-order Butterworth low-pass via the
// RBJ cookbook formulas at cutoff fc for sample rate fs (spec §4.7
// "2nd-order Butterworth LPF at 8 kHz").
func newButterworthLPF(fs, fc float64) *biquad {
	const q = 1 / math.Sqrt2 // Butterworth response
	w0 := 2 * math.Pi * fc / fs
	alpha := math.Sin(w0) / (2 * q)
	cosw0 := math.Cos(w0)

	b0 := (1 - cosw0) / 2
	b1 := 1 - cosw0
	b2 := (1 - cosw0) / 2
	a0 := 1 + alpha
	a1 := -2 * cosw0
	a2 := 1 - alpha

	return &biquad{
		b0: b0 / a0, b1: b1 / a0, b2: b2 / a0,
		a1: a1 / a0, a2: a2 / a0,
	}
}

func (f *biquad) step(x float64) float64 {
	y := f.b0*x + f.z1
	f.z1 = f.b1*x - f.a1*y + f.z2
	f.z2 = f.b2*x - f.a2*y
	return y
}

// onePoleHP is a 1-pole DC-blocking high-pass (spec §4.7 "1-pole
// DC-blocking HPF at 20 Hz"): y[n] = a*(y[n-1] + x[n] - x[n-1]).
type onePoleHP struct {
	a     float64
	prevX float64
	prevY float64
}

func newDCBlocker(fs, fc float64) *onePoleHP {
	rc := 1.0 / (2 * math.Pi * fc)
	dt := 1.0 / fs
	return &onePoleHP{a: rc / (rc + dt)}
}

func (f *onePoleHP) step(x float64) float64 {
	y := f.a * (f.prevY + x - f.prevX)
	f.prevX = x
	f.prevY = y
	return y
}

// clickEnvelope smooths abrupt level changes with separate attack and
// release time constants (spec §4.7: 2ms attack / 5ms release),
// standing in for the piezo's mechanical response instead of a
// bit-exact analog model (spec §1 non-goal).
type clickEnvelope struct {
	attackCoef, releaseCoef float64
	level                   float64
}

func newClickEnvelope(fs float64) *clickEnvelope {
	return &clickEnvelope{
		attackCoef:  math.Exp(-1.0 / (0.002 * fs)),
		releaseCoef: math.Exp(-1.0 / (0.005 * fs)),
	}
}

func (e *clickEnvelope) step(x float64) float64 {
	target := x
	if target > e.level {
		e.level = e.attackCoef*e.level + (1-e.attackCoef)*target
	} else {
		e.level = e.releaseCoef*e.level + (1-e.releaseCoef)*target
	}
	return e.level
}

// Chain is the full five-stage per-channel DSP path: Butterworth LPF
// -> DC-blocking HPF -> click envelope, with stereo crossfeed applied
// across the two channels' chains as the final stage.
type Chain struct {
	lpf [2]*biquad
	hpf [2]*onePoleHP
	env [2]*clickEnvelope
}

// NewChain builds a stereo DSP chain at the given host sample rate.
func NewChain(sampleHz float64) *Chain {
	c := &Chain{}
	for ch := 0; ch < 2; ch++ {
		c.lpf[ch] = newButterworthLPF(sampleHz, 8000)
		c.hpf[ch] = newDCBlocker(sampleHz, 20)
		c.env[ch] = newClickEnvelope(sampleHz)
	}
	return c
}

// crossfeedAmount is the fixed 20% stereo crossfeed spec §4.7 names.
const crossfeedAmount = 0.20

// Process runs a stereo buffer pair through LPF->HPF->envelope per
// channel, then mixes 20% of each channel into the other.
func (c *Chain) Process(left, right []float32) {
	n := len(left)
	if len(right) < n {
		n = len(right)
	}
	for i := 0; i < n; i++ {
		l := c.stage(0, float64(left[i]))
		r := c.stage(1, float64(right[i]))
		left[i] = float32((1-crossfeedAmount)*l + crossfeedAmount*r)
		right[i] = float32((1-crossfeedAmount)*r + crossfeedAmount*l)
	}
}

func (c *Chain) stage(ch int, x float64) float64 {
	x = c.lpf[ch].step(x)
	x = c.hpf[ch].step(x)
	x = c.env[ch].step(x)
	return x
}
