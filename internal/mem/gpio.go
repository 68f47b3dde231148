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

package mem

// Port identifies one GPIO port register triple (PINx/DDRx/PORTx).
type Port uint8

const (
	PortB Port = iota
	PortC
	PortD
	PortE
	PortF
)

// portRegs is the (PIN, DDR, PORT) address triple for each port,
// shared between the two AVR parts this core emulates; the 328P
// simply never receives writes addressed to PortE/PortF.
var portRegs = map[Port][3]uint16{
	PortB: {0x23, 0x24, 0x25},
	PortC: {0x26, 0x27, 0x28},
	PortD: {0x29, 0x2A, 0x2B},
	PortE: {0x2C, 0x2D, 0x2E},
	PortF: {0x2F, 0x30, 0x31},
}

func portOf(addr uint16) (Port, bool) {
	for p, regs := range portRegs {
		if addr == regs[0] || addr == regs[1] || addr == regs[2] {
			return p, true
		}
	}
	return 0, false
}

// GPIOEdge describes one pin transition observed on a PORTx write.
type GPIOEdge struct {
	Port    Port
	Pin     uint8 // 0..7
	Rising  bool
	Tick    uint64
}

// GPIOSink receives every pin edge produced by a PORTx write. Per
// spec §4.2 this is a single fan-out list owned by the dispatcher:
// the audio edge recorder, the LED tracker and the display/flash CS
// routers are all plain sinks with no back-edge into the CPU.
type GPIOSink interface {
	OnGPIOEdge(e GPIOEdge)
}
