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

// Mixer ties the edge recorder, channel-priority selection, resampler
// and DSP chain into the single per-frame call the Machine makes
// (spec §4.7 dataflow: GPIO edges -> resample -> DSP -> PCM out).
type Mixer struct {
	recorder   *Recorder
	resampler  *Resampler
	selector   *Selector
	chain      *Chain
	sampleHz   float64
	leftPhase  float64
	rightPhase float64
	muted      bool

	pwmDAC  *PWMDAC
	pwmSink *PWMUpdateSink
	pwmSrc  PWMSource
}

// NewMixer wires a recorder, tone-source selector and sample rate
// into a ready-to-use per-frame mixer.
func NewMixer(recorder *Recorder, cpuHz, sampleHz uint64, selector *Selector) *Mixer {
	return &Mixer{
		recorder:  recorder,
		resampler: NewResampler(cpuHz, sampleHz),
		selector:  selector,
		chain:     NewChain(float64(sampleHz)),
		sampleHz:  float64(sampleHz),
	}
}

// SetMuted disables sample generation per the --mute CLI flag (spec §6).
func (m *Mixer) SetMuted(muted bool) { m.muted = muted }

// WirePWMDAC attaches Timer2's PWM-DAC path: src reports whether
// Timer2 is currently in Fast-PWM mode, sink collects its OCR2B
// writes. When active, PWM-DAC output preempts the selector's CTC
// tone and GPIO bit-bang sources on the left channel, same priority
// OC2B takes over OC2A on real Gamebuino Classic hardware.
func (m *Mixer) WirePWMDAC(src PWMSource, sink *PWMUpdateSink) {
	m.pwmSrc = src
	m.pwmSink = sink
	m.pwmDAC = NewPWMDAC(m.resampler.cpuHz, uint64(m.sampleHz))
}

// RenderFrame produces this frame's stereo PCM and clears the
// recorder's edge trace. Returns nil, nil when muted.
func (m *Mixer) RenderFrame(frameStartTick, frameEndTick uint64) (left, right []float32) {
	defer m.recorder.EndFrame()
	if m.muted {
		return nil, nil
	}

	n := int(float64(frameEndTick-frameStartTick) / (float64(m.resampler.cpuHz) / m.sampleHz))
	if n <= 0 {
		return nil, nil
	}

	var pwmUpdates []PWMUpdate
	if m.pwmSink != nil {
		pwmUpdates = m.pwmSink.drain()
	}

	if m.pwmSrc != nil && m.pwmSrc.PWMActive() {
		left = m.pwmDAC.Resample(pwmUpdates, frameStartTick, frameEndTick)
	} else if src, active := m.selector.LeftSource(); active {
		hz, _ := src.ToneHz()
		left, m.leftPhase = SquareWave(hz, m.sampleHz, n, m.leftPhase)
	} else {
		left = m.resampler.Resample(m.recorder.Trace(ChannelLeft), m.recorder.Level(ChannelLeft), frameStartTick, frameEndTick)
	}

	if src, active := m.selector.RightSource(); active {
		hz, _ := src.ToneHz()
		right, m.rightPhase = SquareWave(hz, m.sampleHz, n, m.rightPhase)
	} else {
		right = m.resampler.Resample(m.recorder.Trace(ChannelRight), m.recorder.Level(ChannelRight), frameStartTick, frameEndTick)
	}

	m.chain.Process(left, right)
	return left, right
}
