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
)

// The 20 Hz DC blocker must drive a sustained offset toward zero once
// its short time constant has elapsed (spec §4.7 "1-pole DC-blocking
// HPF at 20 Hz").
func TestChainDCBlockerConvergesSustainedOffsetToZero(t *testing.T) {
	c := NewChain(48000)

	var left, right []float32
	for i := 0; i < 10_000; i++ {
		left, right = []float32{1}, []float32{1}
		c.Process(left, right)
	}

	require.InDelta(t, 0, left[0], 1e-3)
	require.InDelta(t, 0, right[0], 1e-3)
}

// spec §4.7 20% stereo crossfeed: driving only the left channel must
// bleed a smaller, same-sign contribution into the right channel.
func TestChainAppliesStereoCrossfeed(t *testing.T) {
	c := NewChain(48000)
	left, right := []float32{1}, []float32{0}

	c.Process(left, right)

	require.Greater(t, right[0], float32(0), "right channel must pick up some of the left signal")
	require.Greater(t, left[0], right[0], "crossfeed amount is under 50%, so left keeps the majority of its own signal")
}

func TestChainProcessHandlesMismatchedLengths(t *testing.T) {
	c := NewChain(48000)
	left := []float32{1, 1, 1}
	right := []float32{1}

	require.NotPanics(t, func() { c.Process(left, right) })
}
