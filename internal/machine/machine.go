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

// Package machine wires every peripheral package into one runnable
// AVR core (spec §3, §5): CPU + dispatcher + timers + SPI-attached
// display/flash + ADC/PLL/EEPROM/USB + interrupt controller + the
// debug facilities + the audio mixer + the GDB mailbox, and drives
// the run_for(cycles) frame loop that the host (cmd/avrcore) calls
// once per emulated video frame. It plays the role the teacher's
// pkg/bus.Bus + gui.Console pairing plays for the NES core, but
// collapsed into a single owning struct since this core has exactly
// two fixed wiring configurations (32u4, 328P) rather than an open
// set of cartridge mappers.
package machine

import (
	"github.com/rs/zerolog"

	"github.com/mgavr/avrcore/internal/adc"
	"github.com/mgavr/avrcore/internal/audio"
	"github.com/mgavr/avrcore/internal/avrcpu"
	"github.com/mgavr/avrcore/internal/avrerr"
	"github.com/mgavr/avrcore/internal/cpuid"
	"github.com/mgavr/avrcore/internal/debug"
	"github.com/mgavr/avrcore/internal/display"
	"github.com/mgavr/avrcore/internal/eeprom"
	"github.com/mgavr/avrcore/internal/extflash"
	"github.com/mgavr/avrcore/internal/gdbrsp"
	"github.com/mgavr/avrcore/internal/interrupt"
	"github.com/mgavr/avrcore/internal/led"
	"github.com/mgavr/avrcore/internal/loader/arduboy"
	"github.com/mgavr/avrcore/internal/loader/elf"
	"github.com/mgavr/avrcore/internal/loader/hex"
	"github.com/mgavr/avrcore/internal/logx"
	"github.com/mgavr/avrcore/internal/mem"
	"github.com/mgavr/avrcore/internal/peripheral"
	"github.com/mgavr/avrcore/internal/pll"
	"github.com/mgavr/avrcore/internal/spi"
	"github.com/mgavr/avrcore/internal/timer"
	"github.com/mgavr/avrcore/internal/usbfifo"
)

// snapshotRingCapacity bounds the rewind-by-duration ring (spec
// §4.8); chosen so a 60fps session holds about ten seconds of history
// without the per-record framebuffer+SRAM copies growing unbounded.
const snapshotRingCapacity = 600

// Machine is one fully wired AVR core instance: exactly one of the
// two cpuid.Kind variants, for the lifetime of the process.
type Machine struct {
	Variant cpuid.Variant
	Clock   *mem.Clock
	Mem     *mem.Dispatcher
	Flash   *mem.Flash
	CPU     *avrcpu.CPU
	irq     *interrupt.Controller

	Timer0 *timer.Timer8
	Timer1 *timer.Timer16
	Timer2 *timer.Timer8  // 328P only
	Timer3 *timer.Timer16 // 32u4 only
	Timer4 *timer.Timer4  // 32u4 only

	SPI      *spi.Bus
	Display  display.Controller
	ExtFlash *extflash.W25Q128 // 32u4 only

	ADC        *adc.ADC
	PLL        *pll.PLL // 32u4 only
	EEPROM     *mem.EEPROM
	EEPROMCtrl *eeprom.Controller
	USB        *usbfifo.FIFO // 32u4 only

	LEDs        *led.Tracker
	audioRec    *audio.Recorder
	AudioMixer  *audio.Mixer

	Breakpoints *debug.Breakpoints
	Watchpoints *debug.Watchpoints
	Profiler    *debug.Profiler
	Snapshots   *debug.Ring

	Symbols []elf.Symbol
	Lines   []elf.LineEntry

	Mailbox   gdbrsp.Mailbox // nil unless the host started a gdbrsp.Server
	Profiling bool

	log zerolog.Logger

	pendingCall uint32
	inCall      bool
}

// New builds a fully wired Machine for the given part, registers
// every peripheral with the dispatcher and resets the CPU to its
// power-on state.
func New(kind cpuid.Kind) *Machine {
	var variant cpuid.Variant
	switch kind {
	case cpuid.ATmega328P:
		variant = cpuid.For328P()
	default:
		variant = cpuid.For32u4()
	}

	clock := &mem.Clock{}
	m := &Machine{
		Variant: variant,
		Clock:   clock,
		Mem:     mem.NewDispatcher(variant, clock),
		Flash:   mem.NewFlash(variant.FlashWords),
		EEPROM:  mem.NewEEPROM(variant.EEPROMSize),
		log:     logx.Component("machine"),
	}
	m.CPU = avrcpu.New(m.Mem, m.Flash, clock)
	m.irq = interrupt.New(variant.Vectors, m.Mem, m.CPU)

	m.wireTimers()
	m.wireSPIAndDevices()
	m.wireADCAndPLL()
	m.wireEEPROM()
	m.wireUSB()
	m.wireAudioAndLEDs()
	m.wireDebug()

	m.Reset()
	m.log.Info().Str("variant", variant.Kind.String()).Int("flash_words", variant.FlashWords).Msg("machine ready")
	return m
}

func (m *Machine) register(p peripheral.Peripheral) {
	m.Mem.RegisterPeripheral(p)
}

func (m *Machine) is32u4() bool { return m.Variant.Kind == cpuid.ATmega32u4 }

func (m *Machine) wireTimers() {
	m.Timer0 = timer.NewTimer0(timer.Regs8{
		TCCRA: 0x44, TCCRB: 0x45, TCNT: 0x46, OCRA: 0x47, OCRB: 0x48,
		TIMSK: cpuid.RegTIMSK0, TIFR: cpuid.RegTIFR0,
	}, m.Mem)
	m.register(m.Timer0)

	timer1Pin := &timer.TonePin{PinAddr: 0x23, Bit: 1} // PINB1 (OC1A), shared wiring both parts
	m.Timer1 = timer.NewTimer16("timer1", timer.Regs16{
		TCCRA: 0x80, TCCRB: 0x81, TCCRC: 0x82,
		TCNTL: 0x84, TCNTH: 0x85,
		OCRAL: 0x88, OCRAH: 0x89, OCRBL: 0x8A, OCRBH: 0x8B,
		TIMSK: cpuid.RegTIMSK1, TIFR: cpuid.RegTIFR1,
	}, m.Mem, timer1Pin)
	m.register(m.Timer1)

	if m.is32u4() {
		timer3Pin := &timer.TonePin{PinAddr: 0x29, Bit: 0} // PIND0 (OC3A)
		m.Timer3 = timer.NewTimer16("timer3", timer.Regs16{
			TCCRA: 0x90, TCCRB: 0x91, TCCRC: 0x92,
			TCNTL: 0x94, TCNTH: 0x95,
			OCRAL: 0x98, OCRAH: 0x99, OCRBL: 0x9A, OCRBH: 0x9B,
			TIMSK: cpuid.RegTIMSK3, TIFR: cpuid.RegTIFR3,
		}, m.Mem, timer3Pin)
		m.register(m.Timer3)

		m.Timer4 = timer.NewTimer4(timer.Regs4{
			TCCRA: 0xC0, TCCRB: 0xC1, TCCRC: 0xC2, TCCRD: 0xC3, TCCRE: 0xC4,
			TC4H: 0xC6, TCNT: 0xBE, OCRA: 0xCD, OCRB: 0xCE, OCRC: 0xCF,
			TIMSK: cpuid.RegTIMSK4, TIFR: cpuid.RegTIFR4,
		}, m.Mem)
		m.register(m.Timer4)
	} else {
		m.Timer2 = timer.NewTimer2(timer.Regs8{
			TCCRA: 0xB0, TCCRB: 0xB1, TCNT: 0xB2, OCRA: 0xB3, OCRB: 0xB4,
			TIMSK: cpuid.RegTIMSK2, TIFR: cpuid.RegTIFR2,
		}, m.Mem)
		m.register(m.Timer2)
	}
}

func (m *Machine) wireSPIAndDevices() {
	m.SPI = spi.NewBus(spi.Regs{SPCR: cpuid.RegSPCR, SPSR: cpuid.RegSPSR, SPDR: cpuid.RegSPDR})
	m.register(m.SPI)

	if m.is32u4() {
		ssd := display.NewSSD1306(display.DefaultSSD1306Pins)
		m.Display = ssd
		m.Mem.AddGPIOSink(ssd)
		m.SPI.AddDevice(ssd)

		m.ExtFlash = extflash.NewW25Q128(extflash.DefaultCSPin)
		m.Mem.AddGPIOSink(m.ExtFlash)
		m.SPI.AddDevice(m.ExtFlash)
	} else {
		pcd := display.NewPCD8544(display.DefaultPCD8544Pins)
		m.Display = pcd
		m.Mem.AddGPIOSink(pcd)
		m.SPI.AddDevice(pcd)
	}
}

func (m *Machine) wireADCAndPLL() {
	m.ADC = adc.New(adc.Regs{
		ADMUX: 0x7C, ADCSRA: cpuid.RegADCSRA, ADCSRB: 0x7B, ADCL: 0x78, ADCH: 0x79, DIDR0: 0x7E,
	}, 0x0200) // mid-scale result, see package doc
	m.register(m.ADC)

	if m.is32u4() {
		m.PLL = pll.New(pll.Regs{PLLCSR: 0x49, PLLFRQ: 0x52})
		m.register(m.PLL)
	}
}

func (m *Machine) wireEEPROM() {
	m.EEPROMCtrl = eeprom.New(eeprom.Regs{
		EEARL: cpuid.RegEEARL, EEARH: cpuid.RegEEARH, EEDR: cpuid.RegEEDR, EECR: cpuid.RegEECR,
	}, m.EEPROM)
	m.register(m.EEPROMCtrl)
}

func (m *Machine) wireUSB() {
	if !m.is32u4() {
		return
	}
	m.USB = usbfifo.New(usbfifo.Regs{
		UEINTX: cpuid.RegUEINTX, UEDATX: 0xF1, UEBCLX: 0xF2, UECONX: 0xF3, UDCON: 0xE0,
	})
	m.register(m.USB)
}

func (m *Machine) wireAudioAndLEDs() {
	m.LEDs = led.New(led.DefaultPins)
	m.Mem.AddGPIOSink(m.LEDs)

	pins := audio.Recorder328P
	if m.is32u4() {
		pins = audio.Recorder32u4
	}
	m.audioRec = audio.NewRecorder(pins)
	m.Mem.AddGPIOSink(m.audioRec)

	sel := &audio.Selector{Timer1: m.Timer1}
	if m.is32u4() {
		sel.Timer3 = m.Timer3
		sel.Timer4 = m.Timer4
	} else {
		sel.Timer2 = m.Timer2
	}
	m.AudioMixer = audio.NewMixer(m.audioRec, timer.FCPU, 44100, sel)

	if !m.is32u4() {
		pwmSink := audio.NewPWMUpdateSink()
		m.Timer2.SetPWMSink(pwmSink)
		m.AudioMixer.WirePWMDAC(m.Timer2, pwmSink)
	}
}

func (m *Machine) wireDebug() {
	m.Breakpoints = debug.NewBreakpoints()
	m.Watchpoints = debug.NewWatchpoints()
	m.Mem.AddAccessObserver(m.Watchpoints)
	m.Profiler = debug.NewProfiler()
	m.Snapshots = debug.NewRing(snapshotRingCapacity)
}

// Reset restores the CPU to its power-on state. SP starts at the top
// of the data space, the datasheet-mandated reset value.
func (m *Machine) Reset() {
	m.CPU.Reset(uint16(m.Variant.DataSpaceSize - 1))
	m.Clock.Set(0)
}

// LoadHex parses an Intel HEX program image and loads it into flash.
func (m *Machine) LoadHex(text string) error {
	segments, err := hex.Parse(text)
	if err != nil {
		return err
	}
	for _, seg := range segments {
		if err := m.Flash.LoadBytesAt(seg.Addr, seg.Data); err != nil {
			return err
		}
	}
	return nil
}

// LoadELF parses a 32-bit AVR ELF image, loads its PT_LOAD segments
// into flash and retains its symbol table and line mapping for the
// debugger.
func (m *Machine) LoadELF(raw []byte) error {
	img, err := elf.Parse(raw)
	if err != nil {
		return err
	}
	for _, seg := range img.Segments {
		if err := m.Flash.LoadBytesAt(seg.PhysAddr, seg.Data); err != nil {
			return err
		}
	}
	m.Symbols = img.Symbols
	m.Lines = img.Lines
	m.CPU.PC = uint32(img.Entry) / 2
	return nil
}

// LoadArduboy unpacks a .arduboy cartridge, loading its HEX program
// and, when present and this Machine has an FX flash, its data image.
func (m *Machine) LoadArduboy(raw []byte) error {
	cart, err := arduboy.Open(raw)
	if err != nil {
		return err
	}
	if err := m.LoadHex(cart.HexText); err != nil {
		return err
	}
	if cart.FXData != nil && m.ExtFlash != nil {
		m.ExtFlash.LoadImage(cart.FXData)
	}
	return nil
}

// LoadEEPROMImage preloads EEPROM contents, e.g. from a prior run's
// persisted state (spec §6 "--no-save" gate around the inverse path).
func (m *Machine) LoadEEPROMImage(img []byte) {
	m.EEPROM.LoadImage(img)
}

// ConnectGDB attaches a mailbox the host has already wired to a
// running gdbrsp.Server; the frame loop starts draining it.
func (m *Machine) ConnectGDB(mailbox gdbrsp.Mailbox) {
	m.Mailbox = mailbox
}

// StopReason enumerates why RunFor returned before exhausting its
// cycle budget.
type StopReason int

const (
	StopBudgetExhausted StopReason = iota
	StopBreakpoint
	StopWatchpoint
	StopFatalError
	StopGdbRequest
)

// RunFor executes instructions until at least `cycles` CPU ticks have
// elapsed, a breakpoint or watchpoint fires, a fatal decode error
// halts the CPU, or a drained GDB mailbox command asks for an early
// stop (spec §5's host loop: run_for -> collect framebuffer/audio/LED
// state -> hand back to the caller). Returns the cycles actually
// consumed.
func (m *Machine) RunFor(cycles uint32) (uint32, StopReason, error) {
	var spent uint32
	for spent < cycles {
		if m.Mailbox != nil {
			if reason, err := m.drainMailboxNonBlocking(); reason != StopBudgetExhausted {
				return spent, reason, err
			}
		}

		if m.Breakpoints.Hit(m.CPU.PC) {
			return spent, StopBreakpoint, avrerr.BreakpointHit(m.CPU.PC)
		}

		startPC := m.CPU.PC
		word := m.Flash.ReadWord(startPC)
		m.preStepProfile(startPC, word)

		n, err := m.step()
		if err != nil {
			return spent, StopFatalError, err
		}
		spent += n

		m.postStepProfile(startPC, word, n)

		if hits := m.Watchpoints.DrainHits(); len(hits) > 0 {
			h := hits[0]
			return spent, StopWatchpoint, avrerr.WatchpointHit(h.Watchpoint.Addr, h.Write)
		}
	}
	return spent, StopBudgetExhausted, nil
}

// step runs exactly one instruction plus the interrupt controller's
// scan-and-dispatch pass, matching spec §5's "interrupt dispatch
// happens only at instruction boundaries".
func (m *Machine) step() (uint32, error) {
	n, err := m.CPU.Step()
	if err != nil {
		return 0, err
	}
	n += m.irq.Tick()
	return n, nil
}

func (m *Machine) preStepProfile(pc uint32, word uint16) {
	if !m.Profiling {
		return
	}
	switch {
	case word&0xF000 == 0xD000, word == 0x9509, word&0xFE0E == 0x940E: // RCALL, ICALL, CALL
		m.Profiler.RecordCall(pc)
		m.inCall = true
	}
}

func (m *Machine) postStepProfile(pc uint32, word uint16, cycles uint32) {
	if !m.Profiling {
		return
	}
	m.Profiler.RecordInstruction(pc, cycles)
	if m.inCall {
		m.Profiler.RecordCallee(m.CPU.PC)
		m.inCall = false
	}
	if word == 0x9508 || word == 0x9518 { // RET, RETI
		m.Profiler.RecordReturn()
	}
}

// drainMailboxNonBlocking services at most one queued GDB command
// without blocking the emulation thread (spec §5: the I/O thread
// posts, the emulation thread drains once per frame and once per
// instruction while halted for single-stepping).
func (m *Machine) drainMailboxNonBlocking() (StopReason, error) {
	select {
	case cmd := <-m.Mailbox:
		m.serviceMailboxCommand(cmd)
		if cmd.Kind == gdbrsp.KindBreakNow {
			return StopGdbRequest, nil
		}
		return StopBudgetExhausted, nil
	default:
		return StopBudgetExhausted, nil
	}
}

func (m *Machine) serviceMailboxCommand(cmd gdbrsp.Command) {
	reply := gdbrsp.Reply{}
	switch cmd.Kind {
	case gdbrsp.KindReadRegs:
		reply.Data = m.encodeRegisters()
	case gdbrsp.KindWriteRegs:
		m.decodeRegisters(cmd.Data)
	case gdbrsp.KindReadMem:
		reply.Data = m.readMemForGdb(cmd.Addr, cmd.Length)
	case gdbrsp.KindWriteMem:
		m.writeMemForGdb(cmd.Addr, cmd.Data)
	case gdbrsp.KindSetBreak:
		m.Breakpoints.Add(cmd.Addr)
	case gdbrsp.KindClearBreak:
		m.Breakpoints.Remove(cmd.Addr)
	case gdbrsp.KindStep:
		_, err := m.step()
		reply.Err = err
		reply.Stopped = true
	case gdbrsp.KindContinue:
		_, _, err := m.RunFor(^uint32(0))
		reply.Err = err
		reply.Stopped = true
	case gdbrsp.KindHaltReason:
		reply.Stopped = true
	case gdbrsp.KindBreakNow:
		reply.Stopped = true
	}
	if cmd.Reply != nil {
		cmd.Reply <- reply
	}
}

// encodeRegisters packs R0-R31, SREG, SP and PC in avr-gdb's expected
// order for the 'g' packet.
func (m *Machine) encodeRegisters() []byte {
	out := make([]byte, 0, 32+1+2+4)
	out = append(out, m.CPU.R[:]...)
	out = append(out, m.CPU.SREG)
	out = append(out, uint8(m.CPU.SP), uint8(m.CPU.SP>>8))
	pcBytes := m.CPU.PC * 2 // avr-gdb reports PC as a byte address
	out = append(out, uint8(pcBytes), uint8(pcBytes>>8), uint8(pcBytes>>16), uint8(pcBytes>>24))
	return out
}

func (m *Machine) decodeRegisters(data []byte) {
	if len(data) < 32+1+2+4 {
		return
	}
	copy(m.CPU.R[:], data[0:32])
	m.CPU.SREG = data[32]
	m.CPU.SP = uint16(data[33]) | uint16(data[34])<<8
	pcBytes := uint32(data[35]) | uint32(data[36])<<8 | uint32(data[37])<<16 | uint32(data[38])<<24
	m.CPU.PC = pcBytes / 2
}

func (m *Machine) readMemForGdb(addr uint32, length int) []byte {
	isFlash, offset := gdbrsp.MapAddress(addr)
	out := make([]byte, length)
	for i := 0; i < length; i++ {
		if isFlash {
			out[i] = m.Flash.ReadByte(offset + uint32(i))
		} else {
			out[i] = m.Mem.Read(uint16(offset) + uint16(i))
		}
	}
	return out
}

func (m *Machine) writeMemForGdb(addr uint32, data []byte) {
	isFlash, offset := gdbrsp.MapAddress(addr)
	if isFlash {
		m.Flash.LoadBytesAt(offset, data)
		return
	}
	for i, b := range data {
		m.Mem.Write(uint16(offset)+uint16(i), b)
	}
}

// Framebuffer renders the attached display's current plane to RGBA.
func (m *Machine) Framebuffer() []byte {
	img := display.Render(m.Display)
	return img.Pix
}

// AudioFrame renders this frame's stereo PCM and clears the edge
// recorder, mirroring the host's once-per-frame pull (spec §4.7).
func (m *Machine) AudioFrame(frameStartTick, frameEndTick uint64) (left, right []float32) {
	return m.AudioMixer.RenderFrame(frameStartTick, frameEndTick)
}

// SetMuted forwards to the audio mixer (spec §6 "--mute").
func (m *Machine) SetMuted(muted bool) { m.AudioMixer.SetMuted(muted) }

// PushSnapshot records the current machine state into the rewind
// ring.
func (m *Machine) PushSnapshot() {
	m.Snapshots.Push(debug.Record{
		T:           m.Clock.Now(),
		CPU:         *m.CPU,
		Data:        m.Mem.Clone(),
		EEPROM:      m.EEPROM.Clone(),
		Framebuffer: m.Framebuffer(),
	})
}

// RestoreSnapshot rewinds the machine to the record `age` frames back
// (0 = most recent).
func (m *Machine) RestoreSnapshot(age int) error {
	rec, err := m.Snapshots.AtAge(age)
	if err != nil {
		return err
	}
	*m.CPU = rec.CPU
	m.CPU.Mem = m.Mem
	m.CPU.Flash = m.Flash
	m.CPU.Clock = m.Clock
	m.Mem.SetRegisterFile(m.CPU.R[:])
	m.Mem.Restore(rec.Data)
	m.EEPROM.Restore(rec.EEPROM)
	m.Clock.Set(rec.T)
	return nil
}
