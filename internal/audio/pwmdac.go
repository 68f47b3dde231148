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

// PWMUpdate is one OCR2B (or equivalent PWM duty register) write
// observed within a frame, used as the PWM DAC's sample-and-hold
// source (spec §4.7: "sample-and-hold interpolation is used at the
// OCR2B update rate").
type PWMUpdate struct {
	Tick  uint64
	Value uint8 // 0..255 duty cycle
}

// PWMDAC holds the last OCR2B value between register writes and
// resamples it to host rate, standing in for the low-pass response an
// external RC filter would apply to a raw PWM output on real
// hardware.
type PWMDAC struct {
	cpuHz, sampleHz uint64
	last            uint8
}

// NewPWMDAC fixes the CPU and host sample rates.
func NewPWMDAC(cpuHz, sampleHz uint64) *PWMDAC {
	return &PWMDAC{cpuHz: cpuHz, sampleHz: sampleHz}
}

// Resample walks updates in tick order and holds the most recent
// duty-cycle value across each host sample period, same loop
// structure as Resampler.Resample but held rather than integrated
// since a PWM duty register's value (not a toggling pin) is the
// signal of interest.
func (d *PWMDAC) Resample(updates []PWMUpdate, frameStartTick, frameEndTick uint64) []float32 {
	span := frameEndTick - frameStartTick
	if span == 0 {
		return nil
	}
	ticksPerSample := float64(d.cpuHz) / float64(d.sampleHz)
	n := int(float64(span) / ticksPerSample)
	if n <= 0 {
		return nil
	}
	out := make([]float32, n)

	idx := 0
	cursor := float64(frameStartTick)
	held := d.last

	for i := 0; i < n; i++ {
		sampleEnd := cursor + ticksPerSample
		for idx < len(updates) && float64(updates[idx].Tick) < sampleEnd {
			held = updates[idx].Value
			idx++
		}
		out[i] = float32(held) / 255.0
		cursor = sampleEnd
	}
	d.last = held
	return out
}

// PWMSource is satisfied by internal/timer.Timer8 (Timer2 on the
// 328P): reports whether Timer2 is currently generating PWM-DAC
// output on OCR2B rather than a CTC tone on OCR2A.
type PWMSource interface {
	PWMActive() bool
}

// PWMUpdateSink collects a frame's OCR2B writes. It implements
// internal/timer.PWMSink structurally, without importing the timer
// package, the same way ToneSource avoids importing it for ToneHz.
type PWMUpdateSink struct {
	updates []PWMUpdate
}

// NewPWMUpdateSink returns an empty sink ready to register with a
// Timer8's SetPWMSink.
func NewPWMUpdateSink() *PWMUpdateSink { return &PWMUpdateSink{} }

// OnOCRBWrite appends one observed OCR2B write.
func (s *PWMUpdateSink) OnOCRBWrite(tick uint64, value uint8) {
	s.updates = append(s.updates, PWMUpdate{Tick: tick, Value: value})
}

// drain returns the accumulated updates and resets the sink for the
// next frame.
func (s *PWMUpdateSink) drain() []PWMUpdate {
	u := s.updates
	s.updates = nil
	return u
}
