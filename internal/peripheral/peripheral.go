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

// Package peripheral declares the uniform surface every memory-mapped
// AVR peripheral implements. Per spec §9 this is a closed variant set
// with a flat operation surface, not an open class hierarchy: the I/O
// dispatcher owns each peripheral by value and polls them in a fixed
// order, the same role the teacher's pkg/mappers.Mapper interface
// plays for cartridge mappers inside pkg/bus.Bus.
package peripheral

// VectorID names one entry in a cpuid.Variant's vector table by index.
// Peripherals never compute interrupt priority themselves; they only
// raise flags. The interrupt controller resolves priority.
type VectorID int

// Peripheral is the operation surface every memory-mapped device
// implements. Addr is a data-space byte address within the device's
// claimed range.
type Peripheral interface {
	// Name identifies the peripheral for logging and snapshot tagging.
	Name() string

	// Addresses returns every I/O register address this peripheral
	// owns, so the dispatcher can route reads/writes to it.
	Addresses() []uint16

	// ReadReg returns the current value of register addr. The
	// dispatcher only calls this for addresses in Addresses().
	ReadReg(addr uint16) uint8

	// WriteReg applies a write of val to register addr.
	WriteReg(addr uint16, val uint8)

	// Advance moves the peripheral's internal state forward by cycles
	// CPU clocks. Called once per instruction boundary with the
	// instruction's elapsed cycle count.
	Advance(cycles uint32)
}
