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

// Package cpuid describes the two AVR parts this core emulates and
// their static interrupt vector tables.
package cpuid

// Kind identifies which AVR part a Machine is emulating.
type Kind int

const (
	// ATmega32u4 is the Arduboy's microcontroller.
	ATmega32u4 Kind = iota
	// ATmega328P is the Gamebuino Classic's microcontroller.
	ATmega328P
)

func (k Kind) String() string {
	switch k {
	case ATmega32u4:
		return "atmega32u4"
	case ATmega328P:
		return "atmega328p"
	default:
		return "unknown"
	}
}

// VectorEntry is one row of the static interrupt vector table: a flag
// bit in a peripheral's flag register, gated by an enable bit in a
// mask register, dispatching to a fixed word address in flash.
type VectorEntry struct {
	Name       string
	FlagAddr   uint16
	FlagBit    uint8
	EnableAddr uint16
	EnableBit  uint8
	VectorWord uint16
}

// Variant is the static description of one AVR part: memory geometry
// and interrupt priority order. Priority is the slice index, ascending.
type Variant struct {
	Kind Kind

	DataSpaceSize int // bytes, including register file and I/O windows
	IOBase        int // first I/O register address (0x20)
	IOEnd         int // one past last low-I/O address
	ExtIOEnd      int // one past last extended-I/O address (== IOEnd if none)
	SRAMBase      int // first general SRAM address

	FlashWords int
	EEPROMSize int

	Vectors []VectorEntry
}

// For32u4 returns the ATmega32u4 variant (Arduboy).
func For32u4() Variant {
	return Variant{
		Kind:          ATmega32u4,
		DataSpaceSize: 2560, // 2.5 KiB
		IOBase:        0x20,
		IOEnd:         0x100,
		ExtIOEnd:      0x200,
		SRAMBase:      0x200,
		FlashWords:    16 * 1024,
		EEPROMSize:    1024,
		Vectors:       vectors32u4,
	}
}

// For328P returns the ATmega328P variant (Gamebuino Classic).
func For328P() Variant {
	return Variant{
		Kind:          ATmega328P,
		DataSpaceSize: 2048, // 2 KiB
		IOBase:        0x20,
		IOEnd:         0x100,
		ExtIOEnd:      0x100, // no extended I/O window on 328P
		SRAMBase:      0x100,
		FlashWords:    16 * 1024,
		EEPROMSize:    1024,
		Vectors:       vectors328p,
	}
}

// Registers shared between the two parts, addresses per datasheet.
const (
	RegTIFR0 = 0x35
	RegTIMSK0 = 0x6E
	RegTIFR1 = 0x36
	RegTIMSK1 = 0x6F
	RegTIFR2 = 0x37
	RegTIMSK2 = 0x70
	RegTIFR3 = 0x38
	RegTIMSK3 = 0x71
	RegTIFR4 = 0x39
	RegTIMSK4 = 0x72
	RegSPCR   = 0x4C
	RegSPSR   = 0x4D
	RegSPDR   = 0x4E
	RegEECR   = 0x3F
	RegEEDR   = 0x40
	RegEEARL  = 0x41
	RegEEARH  = 0x42
	RegADCSRA = 0x7A
	RegUDINT  = 0xE1
	RegUEINTX = 0xE8
)

// vectors32u4 is the ATmega32u4 interrupt vector table, priority
// ascending, restricted to the vectors this core's peripherals raise.
var vectors32u4 = []VectorEntry{
	{Name: "INT0", FlagAddr: 0x3C, FlagBit: 0, EnableAddr: 0x3D, EnableBit: 0, VectorWord: 0x0002},
	{Name: "TIMER1_CAPT", FlagAddr: RegTIFR1, FlagBit: 5, EnableAddr: RegTIMSK1, EnableBit: 5, VectorWord: 0x0016},
	{Name: "TIMER1_COMPA", FlagAddr: RegTIFR1, FlagBit: 1, EnableAddr: RegTIMSK1, EnableBit: 1, VectorWord: 0x0018},
	{Name: "TIMER1_COMPB", FlagAddr: RegTIFR1, FlagBit: 2, EnableAddr: RegTIMSK1, EnableBit: 2, VectorWord: 0x001A},
	{Name: "TIMER1_OVF", FlagAddr: RegTIFR1, FlagBit: 0, EnableAddr: RegTIMSK1, EnableBit: 0, VectorWord: 0x001C},
	{Name: "TIMER0_COMPA", FlagAddr: RegTIFR0, FlagBit: 1, EnableAddr: RegTIMSK0, EnableBit: 1, VectorWord: 0x001E},
	{Name: "TIMER0_COMPB", FlagAddr: RegTIFR0, FlagBit: 2, EnableAddr: RegTIMSK0, EnableBit: 2, VectorWord: 0x0020},
	{Name: "TIMER0_OVF", FlagAddr: RegTIFR0, FlagBit: 0, EnableAddr: RegTIMSK0, EnableBit: 0, VectorWord: 0x0022},
	{Name: "SPI_STC", FlagAddr: RegSPSR, FlagBit: 7, EnableAddr: RegSPCR, EnableBit: 7, VectorWord: 0x0024},
	{Name: "ADC", FlagAddr: RegADCSRA, FlagBit: 4, EnableAddr: RegADCSRA, EnableBit: 3, VectorWord: 0x002A},
	// FlagBit 6 is internal/eeprom's synthetic "write not pending" bit,
	// not EERIE (bit 3, the enable this shares a register with).
	{Name: "EE_READY", FlagAddr: RegEECR, FlagBit: 6, EnableAddr: RegEECR, EnableBit: 3, VectorWord: 0x002E},
	{Name: "TIMER3_CAPT", FlagAddr: RegTIFR3, FlagBit: 5, EnableAddr: RegTIMSK3, EnableBit: 5, VectorWord: 0x0032},
	{Name: "TIMER3_COMPA", FlagAddr: RegTIFR3, FlagBit: 1, EnableAddr: RegTIMSK3, EnableBit: 1, VectorWord: 0x0034},
	{Name: "TIMER3_COMPB", FlagAddr: RegTIFR3, FlagBit: 2, EnableAddr: RegTIMSK3, EnableBit: 2, VectorWord: 0x0036},
	{Name: "TIMER3_OVF", FlagAddr: RegTIFR3, FlagBit: 0, EnableAddr: RegTIMSK3, EnableBit: 0, VectorWord: 0x0038},
	{Name: "USB_GEN", FlagAddr: RegUDINT, FlagBit: 0, EnableAddr: 0xE2, EnableBit: 0, VectorWord: 0x003A},
	{Name: "USB_COM", FlagAddr: RegUEINTX, FlagBit: 0, EnableAddr: 0xE1, EnableBit: 0, VectorWord: 0x003C},
	{Name: "TIMER4_COMPA", FlagAddr: RegTIFR4, FlagBit: 1, EnableAddr: RegTIMSK4, EnableBit: 1, VectorWord: 0x0046},
	{Name: "TIMER4_COMPB", FlagAddr: RegTIFR4, FlagBit: 2, EnableAddr: RegTIMSK4, EnableBit: 2, VectorWord: 0x0048},
	{Name: "TIMER4_OVF", FlagAddr: RegTIFR4, FlagBit: 6, EnableAddr: RegTIMSK4, EnableBit: 6, VectorWord: 0x004C},
}

// vectors328p is the ATmega328P interrupt vector table.
var vectors328p = []VectorEntry{
	{Name: "INT0", FlagAddr: 0x3C, FlagBit: 0, EnableAddr: 0x3D, EnableBit: 0, VectorWord: 0x0002},
	{Name: "TIMER1_CAPT", FlagAddr: RegTIFR1, FlagBit: 5, EnableAddr: RegTIMSK1, EnableBit: 5, VectorWord: 0x000A},
	{Name: "TIMER1_COMPA", FlagAddr: RegTIFR1, FlagBit: 1, EnableAddr: RegTIMSK1, EnableBit: 1, VectorWord: 0x000B},
	{Name: "TIMER1_COMPB", FlagAddr: RegTIFR1, FlagBit: 2, EnableAddr: RegTIMSK1, EnableBit: 2, VectorWord: 0x000C},
	{Name: "TIMER1_OVF", FlagAddr: RegTIFR1, FlagBit: 0, EnableAddr: RegTIMSK1, EnableBit: 0, VectorWord: 0x000D},
	{Name: "TIMER0_COMPA", FlagAddr: RegTIFR0, FlagBit: 1, EnableAddr: RegTIMSK0, EnableBit: 1, VectorWord: 0x000E},
	{Name: "TIMER0_COMPB", FlagAddr: RegTIFR0, FlagBit: 2, EnableAddr: RegTIMSK0, EnableBit: 2, VectorWord: 0x000F},
	{Name: "TIMER0_OVF", FlagAddr: RegTIFR0, FlagBit: 0, EnableAddr: RegTIMSK0, EnableBit: 0, VectorWord: 0x0010},
	{Name: "SPI_STC", FlagAddr: RegSPSR, FlagBit: 7, EnableAddr: RegSPCR, EnableBit: 7, VectorWord: 0x0011},
	{Name: "ADC", FlagAddr: RegADCSRA, FlagBit: 4, EnableAddr: RegADCSRA, EnableBit: 3, VectorWord: 0x0012},
	// FlagBit 6 is internal/eeprom's synthetic "write not pending" bit,
	// not EERIE (bit 3, the enable this shares a register with).
	{Name: "EE_READY", FlagAddr: RegEECR, FlagBit: 6, EnableAddr: RegEECR, EnableBit: 3, VectorWord: 0x0013},
	{Name: "TIMER2_COMPA", FlagAddr: RegTIFR2, FlagBit: 1, EnableAddr: RegTIMSK2, EnableBit: 1, VectorWord: 0x0016},
	{Name: "TIMER2_COMPB", FlagAddr: RegTIFR2, FlagBit: 2, EnableAddr: RegTIMSK2, EnableBit: 2, VectorWord: 0x0017},
	{Name: "TIMER2_OVF", FlagAddr: RegTIFR2, FlagBit: 0, EnableAddr: RegTIMSK2, EnableBit: 0, VectorWord: 0x0018},
}
