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

// Package mem implements the flat AVR data-space and the single I/O
// dispatcher indirection through which every read and write passes
// (spec §4.2). It plays the role the teacher's pkg/bus.Bus plays for
// the NES: one object that owns the backing storage and fans reads
// and writes for mapped addresses out to the right peripheral.
package mem

import (
	"github.com/mgavr/avrcore/internal/cpuid"
	"github.com/mgavr/avrcore/internal/peripheral"
)

// AccessObserver is notified of every data-space access after it has
// been applied. Data watchpoints (spec §4.8, §8 invariant) are
// implemented as an observer registered here, never inside the CPU.
type AccessObserver interface {
	OnAccess(addr uint16, write bool, val uint8)
}

// Dispatcher is the single indirection all CPU LD/ST/IN/OUT traffic
// passes through. It owns the data-space backing array; peripherals
// never hold a direct reference to it (spec §9 "shared memory").
type Dispatcher struct {
	variant cpuid.Variant
	clock   *Clock

	data []uint8 // full data-space: [0,0x20) regfile alias, [0x20,ExtIOEnd) I/O, rest SRAM
	regs []uint8 // the CPU's 32 general registers, aliased at data[0:32]

	peripherals map[uint16]peripheral.Peripheral
	allPeriphs  []peripheral.Peripheral // registration order, for Advance/pending_irq scans

	gpioSinks []GPIOSink
	observers []AccessObserver

	portShadow map[Port]uint8
}

// NewDispatcher allocates the data-space for a variant.
func NewDispatcher(variant cpuid.Variant, clock *Clock) *Dispatcher {
	d := &Dispatcher{
		variant:     variant,
		clock:       clock,
		data:        make([]uint8, variant.DataSpaceSize),
		peripherals: make(map[uint16]peripheral.Peripheral),
		portShadow:  make(map[Port]uint8),
	}
	return d
}

// SetRegisterFile points the low 32 data-space bytes at the CPU's
// register array so IN/OUT/LD/ST of addresses 0x00-0x1F observe and
// mutate the same storage the ALU instructions use directly.
func (d *Dispatcher) SetRegisterFile(regs []uint8) {
	d.regs = regs
}

// RegisterPeripheral claims every address the peripheral reports via
// Addresses() for ReadReg/WriteReg dispatch.
func (d *Dispatcher) RegisterPeripheral(p peripheral.Peripheral) {
	for _, addr := range p.Addresses() {
		d.peripherals[addr] = p
	}
	d.allPeriphs = append(d.allPeriphs, p)
}

// Peripherals returns every registered peripheral in registration
// order.
func (d *Dispatcher) Peripherals() []peripheral.Peripheral {
	return d.allPeriphs
}

// AddGPIOSink appends a sink to the single GPIO fan-out list.
func (d *Dispatcher) AddGPIOSink(s GPIOSink) {
	d.gpioSinks = append(d.gpioSinks, s)
}

// Now returns the shared clock's current tick, used by peripherals
// that need to timestamp an observation outside the GPIO edge path
// (Timer2's PWM-DAC duty writes).
func (d *Dispatcher) Now() uint64 { return d.clock.Now() }

// AddAccessObserver appends a watchpoint-style observer.
func (d *Dispatcher) AddAccessObserver(o AccessObserver) {
	d.observers = append(d.observers, o)
}

// AdvancePeripherals drives every registered peripheral's clock by
// cycles CPU ticks; called once per instruction boundary.
func (d *Dispatcher) AdvancePeripherals(cycles uint32) {
	for _, p := range d.allPeriphs {
		p.Advance(cycles)
	}
}

// Read returns the byte at a data-space address, dispatching to a
// peripheral's ReadReg when one claims the address.
func (d *Dispatcher) Read(addr uint16) uint8 {
	var v uint8
	switch {
	case addr < 0x20 && d.regs != nil:
		v = d.regs[addr]
	default:
		if port, ok := portOf(addr); ok && addr == portRegs[port][0] {
			// PINx mirrors the line level, which this model keeps in
			// the PORTx slot; this is also where an external driver
			// (a button, a host poking GPIO) sets the level a
			// digitalRead-style IN instruction observes.
			v = d.data[portRegs[port][2]]
		} else if p, ok := d.peripherals[addr]; ok {
			v = p.ReadReg(addr)
		} else if int(addr) < len(d.data) {
			v = d.data[addr]
		}
	}
	for _, o := range d.observers {
		o.OnAccess(addr, false, v)
	}
	return v
}

// Write stores val at a data-space address, fanning out to a claiming
// peripheral, to GPIO edge sinks on PORTx/PINx writes, and to any
// watchpoint observers.
func (d *Dispatcher) Write(addr uint16, val uint8) {
	d.writeRaw(addr, val)
	for _, o := range d.observers {
		o.OnAccess(addr, true, val)
	}
}

func (d *Dispatcher) writeRaw(addr uint16, val uint8) {
	if addr < 0x20 && d.regs != nil {
		d.regs[addr] = val
		return
	}

	if port, ok := portOf(addr); ok {
		regs := portRegs[port]
		if addr == regs[0] { // PINx: AVR semantic is toggle-on-write
			cur := d.data[regs[2]]
			d.writeRaw(regs[2], cur^val) // re-enter PORTx path so side effects fire
			return
		}
		if addr == regs[2] { // PORTx
			old := d.data[addr]
			d.data[addr] = val
			d.emitPortEdges(port, old, val)
			return
		}
		// DDRx: plain storage, no side effects modeled
		d.data[addr] = val
		return
	}

	if p, ok := d.peripherals[addr]; ok {
		p.WriteReg(addr, val)
		return
	}
	if int(addr) < len(d.data) {
		d.data[addr] = val
	}
}

func (d *Dispatcher) emitPortEdges(port Port, old, new uint8) {
	changed := old ^ new
	if changed == 0 {
		return
	}
	tick := d.clock.Now()
	for bit := uint8(0); bit < 8; bit++ {
		mask := uint8(1) << bit
		if changed&mask == 0 {
			continue
		}
		edge := GPIOEdge{Port: port, Pin: bit, Rising: new&mask != 0, Tick: tick}
		for _, s := range d.gpioSinks {
			s.OnGPIOEdge(edge)
		}
	}
}

// ReadPort returns the current value of a port's PORTx register,
// used by peripherals that need a level rather than an edge.
func (d *Dispatcher) ReadPort(port Port) uint8 {
	return d.data[portRegs[port][2]]
}

// WritePort drives a port's electrical level directly through the
// normal write path, so GPIO sinks and PINx readers see the change
// exactly as they would a CPU-issued OUT. This is how an external
// driver (the CLI's --press, a future gamepad front-end) injects
// input without the core depending on any particular host.
func (d *Dispatcher) WritePort(port Port, val uint8) {
	d.Write(portRegs[port][2], val)
}

// SetPortBit sets or clears a single bit of a port's electrical
// level, preserving the other bits.
func (d *Dispatcher) SetPortBit(port Port, bit uint8, high bool) {
	cur := d.ReadPort(port)
	mask := uint8(1) << bit
	if high {
		d.WritePort(port, cur|mask)
	} else {
		d.WritePort(port, cur&^mask)
	}
}

// RawSRAM exposes the backing array for snapshotting only.
func (d *Dispatcher) RawSRAM() []uint8 { return d.data }

// Clone deep-copies the data-space contents for a snapshot. The
// register-file alias is copied by value; restoring does not
// reconnect the alias (the CPU restores its own registers and the
// Machine re-calls SetRegisterFile after a full snapshot restore).
func (d *Dispatcher) Clone() []uint8 {
	cp := make([]uint8, len(d.data))
	copy(cp, d.data)
	return cp
}

// Restore overwrites the SRAM/I-O backing array from a snapshot copy.
func (d *Dispatcher) Restore(snap []uint8) {
	copy(d.data, snap)
}
