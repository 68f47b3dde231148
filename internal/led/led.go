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

// Package led tracks the handful of GPIO pins wired to status LEDs
// across both targets (spec §4.2: PB0/PB5/PB6/PB7/PD5), as a plain
// mem.GPIOSink with no back-edge into the CPU, the same fan-out
// pattern the audio recorder and display CS routers use.
package led

import "github.com/mgavr/avrcore/internal/mem"

// Pin identifies one tracked LED by port and bit.
type Pin struct {
	Port mem.Port
	Bit  uint8
	Name string
}

// DefaultPins covers the RX/TX/status LEDs spec §4.2 names; a given
// Variant only drives the subset its board actually wires.
var DefaultPins = []Pin{
	{Port: mem.PortB, Bit: 0, Name: "led_b0"},
	{Port: mem.PortB, Bit: 5, Name: "led_b5"},
	{Port: mem.PortB, Bit: 6, Name: "led_b6"},
	{Port: mem.PortB, Bit: 7, Name: "led_b7"},
	{Port: mem.PortD, Bit: 5, Name: "led_d5"},
}

// Tracker holds the current on/off state of every tracked LED pin.
type Tracker struct {
	pins  []Pin
	state map[string]bool
}

func New(pins []Pin) *Tracker {
	return &Tracker{pins: pins, state: make(map[string]bool, len(pins))}
}

// OnGPIOEdge updates the tracked pin's state on a matching edge.
func (t *Tracker) OnGPIOEdge(e mem.GPIOEdge) {
	for _, p := range t.pins {
		if p.Port == e.Port && p.Bit == e.Pin {
			t.state[p.Name] = e.Rising
		}
	}
}

// State returns the current on/off value of a named LED.
func (t *Tracker) State(name string) bool { return t.state[name] }

// Snapshot returns a copy of every tracked LED's current state.
func (t *Tracker) Snapshot() map[string]bool {
	cp := make(map[string]bool, len(t.state))
	for k, v := range t.state {
		cp[k] = v
	}
	return cp
}
