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

// Package interrupt implements the vector-priority scan and dispatch
// described in spec §4.4: on each instruction boundary, if global
// interrupts are enabled, scan the CPU's static vector table
// top-to-bottom and dispatch the first pending, enabled entry.
package interrupt

import (
	"github.com/mgavr/avrcore/internal/avrcpu"
	"github.com/mgavr/avrcore/internal/cpuid"
	"github.com/mgavr/avrcore/internal/mem"
)

// DispatchCost is the fixed cycle cost of an interrupt dispatch.
const DispatchCost = 4

// Controller owns no state of its own beyond the static vector table;
// all flag/enable state lives in the data-space the dispatcher
// already exposes, so a Controller is cheap to construct per Machine.
type Controller struct {
	vectors []cpuid.VectorEntry
	mem     *mem.Dispatcher
	cpu     *avrcpu.CPU
}

// New builds a controller bound to one CPU/dispatcher pair.
func New(vectors []cpuid.VectorEntry, m *mem.Dispatcher, cpu *avrcpu.CPU) *Controller {
	return &Controller{vectors: vectors, mem: m, cpu: cpu}
}

// Tick runs one scan-and-dispatch pass. It must be called exactly
// once per instruction boundary (spec §5: "interrupt dispatch happens
// only at instruction boundaries; in-flight instructions complete
// first"). Returns the extra cycles consumed by a dispatch, 0 if none
// fired.
func (c *Controller) Tick() uint32 {
	if c.cpu.RetiCooldownActive() {
		c.cpu.ClearRetiCooldown()
		return 0
	}
	if c.cpu.GetFlag(avrcpu.FlagI) == 0 {
		return 0
	}

	for _, v := range c.vectors {
		flagReg := c.mem.Read(v.FlagAddr)
		if flagReg&(1<<v.FlagBit) == 0 {
			continue
		}
		enableReg := c.mem.Read(v.EnableAddr)
		if enableReg&(1<<v.EnableBit) == 0 {
			continue
		}

		// TIFR registers are write-1-to-clear; the owning peripheral's
		// WriteReg interprets a set bit here as "clear this flag".
		c.mem.Write(v.FlagAddr, 1<<v.FlagBit)

		c.cpu.SetFlag(avrcpu.FlagI, false)
		c.cpu.PushReturnAddress(c.cpu.PC)
		c.cpu.PC = uint32(v.VectorWord)
		return DispatchCost
	}
	return 0
}
