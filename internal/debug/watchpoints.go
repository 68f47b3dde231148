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

// AccessMask selects which access kinds a watchpoint fires on.
type AccessMask uint8

const (
	AccessRead  AccessMask = 1 << 0
	AccessWrite AccessMask = 1 << 1
)

// Watchpoint is a (address, access-mask, optional expected-value)
// rule (spec §4.8).
type Watchpoint struct {
	Addr     uint16
	Mask     AccessMask
	HasValue bool
	Value    uint8
}

// Event is raised when a watchpoint's rule is satisfied.
type Event struct {
	Watchpoint Watchpoint
	Write      bool
	Val        uint8
}

// Watchpoints implements internal/mem.AccessObserver, installed on
// the dispatcher so it fires inside the I/O dispatch path rather than
// inside the CPU (spec §4.8: "checked inside the I/O dispatcher").
type Watchpoints struct {
	points []Watchpoint
	hits   []Event
}

func NewWatchpoints() *Watchpoints {
	return &Watchpoints{}
}

func (w *Watchpoints) Add(wp Watchpoint) { w.points = append(w.points, wp) }

func (w *Watchpoints) Clear() { w.points = w.points[:0] }

// OnAccess satisfies mem.AccessObserver.
func (w *Watchpoints) OnAccess(addr uint16, write bool, val uint8) {
	for _, wp := range w.points {
		if wp.Addr != addr {
			continue
		}
		if write && wp.Mask&AccessWrite == 0 {
			continue
		}
		if !write && wp.Mask&AccessRead == 0 {
			continue
		}
		if wp.HasValue && wp.Value != val {
			continue
		}
		w.hits = append(w.hits, Event{Watchpoint: wp, Write: write, Val: val})
	}
}

// DrainHits returns and clears every watchpoint event raised since
// the last drain, for the frame loop to surface to the caller.
func (w *Watchpoints) DrainHits() []Event {
	out := w.hits
	w.hits = nil
	return out
}
