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

func TestWatchpointsFiresOnMatchingWrite(t *testing.T) {
	w := NewWatchpoints()
	w.Add(Watchpoint{Addr: 0x40, Mask: AccessWrite})

	w.OnAccess(0x40, true, 0x7F)

	hits := w.DrainHits()
	require.Len(t, hits, 1)
	require.Equal(t, uint8(0x7F), hits[0].Val)
	require.True(t, hits[0].Write)
}

func TestWatchpointsIgnoresMismatchedAddress(t *testing.T) {
	w := NewWatchpoints()
	w.Add(Watchpoint{Addr: 0x40, Mask: AccessWrite})

	w.OnAccess(0x41, true, 0x01)

	require.Empty(t, w.DrainHits())
}

func TestWatchpointsIgnoresWrongAccessDirection(t *testing.T) {
	w := NewWatchpoints()
	w.Add(Watchpoint{Addr: 0x40, Mask: AccessRead})

	w.OnAccess(0x40, true, 0x01) // write, but only read is watched

	require.Empty(t, w.DrainHits())
}

func TestWatchpointsValueFilterOnlyMatchesExactByte(t *testing.T) {
	w := NewWatchpoints()
	w.Add(Watchpoint{Addr: 0x40, Mask: AccessWrite, HasValue: true, Value: 0x05})

	w.OnAccess(0x40, true, 0x06)
	require.Empty(t, w.DrainHits())

	w.OnAccess(0x40, true, 0x05)
	require.Len(t, w.DrainHits(), 1)
}

func TestWatchpointsDrainHitsClearsBuffer(t *testing.T) {
	w := NewWatchpoints()
	w.Add(Watchpoint{Addr: 0x40, Mask: AccessWrite | AccessRead})
	w.OnAccess(0x40, true, 0x01)

	require.Len(t, w.DrainHits(), 1)
	require.Empty(t, w.DrainHits(), "a second drain must return nothing new")
}

func TestWatchpointsClearRemovesAllPoints(t *testing.T) {
	w := NewWatchpoints()
	w.Add(Watchpoint{Addr: 0x40, Mask: AccessWrite})
	w.Clear()

	w.OnAccess(0x40, true, 0x01)
	require.Empty(t, w.DrainHits())
}

func TestWatchpointsMultiplePointsCanMatchSameAccess(t *testing.T) {
	w := NewWatchpoints()
	w.Add(Watchpoint{Addr: 0x40, Mask: AccessWrite})
	w.Add(Watchpoint{Addr: 0x40, Mask: AccessWrite | AccessRead})

	w.OnAccess(0x40, true, 0x01)

	require.Len(t, w.DrainHits(), 2)
}
