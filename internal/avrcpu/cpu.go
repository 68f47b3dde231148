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

// Package avrcpu implements the AVR instruction decoder and
// interpreter (spec §4.1). Decode is a branch tree on instruction-word
// nibbles into a discriminated record, mirroring the teacher's
// two-stage "addressing-mode function + opcode function" split in
// go/mgnes/mg6502.go and go/mgnes/instruction.go, generalized here
// into a single decode-then-execute step since AVR addressing modes
// are baked into the opcode rather than factored the way 6502's are.
package avrcpu

import (
	"github.com/mgavr/avrcore/internal/avrerr"
	"github.com/mgavr/avrcore/internal/mem"
)

// SREG bit positions, datasheet order.
const (
	FlagC uint8 = 1 << 0
	FlagZ uint8 = 1 << 1
	FlagN uint8 = 1 << 2
	FlagV uint8 = 1 << 3
	FlagS uint8 = 1 << 4
	FlagH uint8 = 1 << 5
	FlagT uint8 = 1 << 6
	FlagI uint8 = 1 << 7
)

// CPU holds the 32 general registers, SREG, program counter (word
// address), stack pointer (byte address) and the two extended
// addressing registers RAMPZ/EIND.
type CPU struct {
	R [32]uint8

	SREG  uint8
	PC    uint32 // word address into flash
	SP    uint16 // byte address into SRAM
	RAMPZ uint8
	EIND  uint8

	Mem   *mem.Dispatcher
	Flash *mem.Flash
	Clock *mem.Clock

	// retiCooldown models the one-instruction IRQ-dispatch delay that
	// follows RETI/SEI on real hardware (spec §9 "interrupt state").
	retiCooldown bool

	Halted      bool
	HaltedError error
}

// New constructs a CPU wired to a dispatcher, flash and shared clock.
// It registers its own register file as the data-space alias for
// addresses 0x00-0x1F.
func New(m *mem.Dispatcher, flash *mem.Flash, clock *mem.Clock) *CPU {
	c := &CPU{Mem: m, Flash: flash, Clock: clock}
	m.SetRegisterFile(c.R[:])
	return c
}

// Reset clears registers, SREG and PC, and sets SP to the top of the
// data space (the caller, typically Machine, supplies the top address
// since that depends on the variant).
func (c *CPU) Reset(spTop uint16) {
	c.R = [32]uint8{}
	c.SREG = 0
	c.PC = 0
	c.SP = spTop
	c.RAMPZ = 0
	c.EIND = 0
	c.retiCooldown = false
	c.Halted = false
	c.HaltedError = nil
}

// GetFlag returns 1 if the given SREG bit is set, else 0.
func (c *CPU) GetFlag(mask uint8) uint8 {
	if c.SREG&mask != 0 {
		return 1
	}
	return 0
}

// SetFlag sets or clears an SREG bit.
func (c *CPU) SetFlag(mask uint8, v bool) {
	if v {
		c.SREG |= mask
	} else {
		c.SREG &^= mask
	}
}

// RetiCooldownActive reports whether the interrupt controller should
// skip its scan this instruction boundary.
func (c *CPU) RetiCooldownActive() bool { return c.retiCooldown }

// ClearRetiCooldown is called by the interrupt controller once it has
// honored (or skipped past) the one-instruction delay.
func (c *CPU) ClearRetiCooldown() { c.retiCooldown = false }

func (c *CPU) fetchWord(pc uint32) uint16 {
	return c.Flash.ReadWord(pc)
}

// Step decodes and executes one instruction at PC, returning elapsed
// cycles. It never returns a nonzero error for a valid instruction;
// on an unrecognized opcode it halts the CPU and returns
// avrerr.UnknownOpcode wrapped with PC and the offending word.
func (c *CPU) Step() (uint32, error) {
	if c.Halted {
		return 0, c.HaltedError
	}
	word := c.fetchWord(c.PC)
	startPC := c.PC
	c.PC++

	cycles, err := c.execute(word)
	if err != nil {
		c.Halted = true
		c.HaltedError = avrerr.UnknownOpcode(startPC, word)
		return 0, c.HaltedError
	}
	c.Mem.AdvancePeripherals(cycles)
	c.Clock.Advance(cycles)
	return cycles, nil
}

// PushReturnAddress pushes a word-address PC as the interrupt
// controller's dispatch sequence requires, using the same big-endian
// stack convention as CALL/RCALL.
func (c *CPU) PushReturnAddress(pc uint32) {
	c.pushPC(pc)
}

// push8 pushes one byte and decrements SP.
func (c *CPU) push8(v uint8) {
	c.Mem.Write(c.SP, v)
	c.SP--
}

// pop8 increments SP and returns the byte read.
func (c *CPU) pop8() uint8 {
	c.SP++
	return c.Mem.Read(c.SP)
}

// pushPC pushes a word-address PC as two bytes, low byte first, high
// byte second (spec §4.4 "AVR big-endian stack pushes").
func (c *CPU) pushPC(pc uint32) {
	c.push8(uint8(pc))
	c.push8(uint8(pc >> 8))
	if pc > 0xFFFF { // 22-bit PC parts (32u4 has 16K words, fits in 16 bits; kept for future 3-byte PC variants)
		c.push8(uint8(pc >> 16))
	}
}

// popPC is the LIFO-consistent inverse of pushPC.
func (c *CPU) popPC() uint32 {
	hi := c.pop8()
	lo := c.pop8()
	return uint32(hi)<<8 | uint32(lo)
}
