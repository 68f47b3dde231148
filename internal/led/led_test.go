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

package led

import (
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/mgavr/avrcore/internal/mem"
)

func TestTrackerUpdatesMatchingPinOnly(t *testing.T) {
	tr := New(DefaultPins)

	tr.OnGPIOEdge(mem.GPIOEdge{Port: mem.PortB, Pin: 5, Rising: true})
	tr.OnGPIOEdge(mem.GPIOEdge{Port: mem.PortB, Pin: 1, Rising: true}) // unmonitored bit

	require.True(t, tr.State("led_b5"))
	require.False(t, tr.State("led_b0"))
}

func TestTrackerUnknownNameReadsFalse(t *testing.T) {
	tr := New(DefaultPins)
	require.False(t, tr.State("not_a_led"))
}

func TestSnapshotIsACopyNotALiveView(t *testing.T) {
	tr := New(DefaultPins)
	tr.OnGPIOEdge(mem.GPIOEdge{Port: mem.PortD, Pin: 5, Rising: true})

	snap := tr.Snapshot()
	require.True(t, snap["led_d5"])

	tr.OnGPIOEdge(mem.GPIOEdge{Port: mem.PortD, Pin: 5, Rising: false})
	require.True(t, snap["led_d5"], "snapshot must not reflect state changes after it was taken")
	require.False(t, tr.State("led_d5"))
}
