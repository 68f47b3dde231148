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

// Package tui is the `avrcore run --step` interactive debugger: a
// termui CPU/flags pane, two SRAM hex-dump pages and a flash
// disassembly window around PC, driven by the same
// init-layout/draw/poll-events shape as the teacher's go/gui console,
// rebuilt against avrcpu registers and internal/machine's RunFor
// instead of mg6502/Bus.
package tui

import (
	"fmt"
	"strings"

	ui "github.com/gizak/termui/v3"
	"github.com/gizak/termui/v3/widgets"

	"github.com/mgavr/avrcore/internal/avrcpu"
	"github.com/mgavr/avrcore/internal/machine"
)

// flagGlyphs lists SREG bits high-to-low in datasheet order, paired
// with the mask renderCPU tests to decide on/off color.
var flagGlyphs = []struct {
	name string
	mask uint8
}{
	{"I", avrcpu.FlagI}, {"T", avrcpu.FlagT}, {"H", avrcpu.FlagH}, {"S", avrcpu.FlagS},
	{"V", avrcpu.FlagV}, {"N", avrcpu.FlagN}, {"Z", avrcpu.FlagZ}, {"C", avrcpu.FlagC},
}

// Debugger owns the termui widgets and the Machine they mirror. One
// instance drives one interactive session; Run blocks until the user
// quits.
type Debugger struct {
	m *machine.Machine

	// onPress, if set, is invoked on the "p" key. The CLI hangs its
	// simulated A-button poke here since the core has no gamepad pin
	// of its own (spec §1 lists gamepad polling as an external
	// collaborator).
	onPress func()

	paragraphCPU   *widgets.Paragraph
	paragraphCode  *widgets.Paragraph
	paragraphRam0  *widgets.Paragraph
	paragraphRam1  *widgets.Paragraph
	paragraphStat  *widgets.Paragraph
}

// New wraps an already-loaded Machine. The caller has already called
// LoadHex/LoadELF/LoadArduboy and any --break flags onto m.Breakpoints
// before calling Run.
func New(m *machine.Machine) *Debugger {
	return &Debugger{m: m}
}

// OnPress registers a callback for the "p" key, the CLI's stand-in
// for a host's button poll.
func (d *Debugger) OnPress(fn func()) {
	d.onPress = fn
}

func (d *Debugger) initLayout() {
	d.paragraphRam0 = widgets.NewParagraph()
	d.paragraphRam0.Title = "SRAM 0x0000"
	d.paragraphRam0.SetRect(0, 0, 56, 18)

	d.paragraphRam1 = widgets.NewParagraph()
	d.paragraphRam1.Title = "SRAM 0x0100"
	d.paragraphRam1.SetRect(0, 18, 56, 36)

	d.paragraphCPU = widgets.NewParagraph()
	d.paragraphCPU.Title = "CPU"
	d.paragraphCPU.SetRect(56, 0, 56+30, 14)

	d.paragraphCode = widgets.NewParagraph()
	d.paragraphCode.Title = "Flash @ PC"
	d.paragraphCode.SetRect(56, 14, 56+30, 36)

	d.paragraphStat = widgets.NewParagraph()
	d.paragraphStat.Title = "Status"
	d.paragraphStat.SetRect(0, 36, 86, 40)
}

func (d *Debugger) renderCPU() {
	cpu := d.m.CPU
	sb := &strings.Builder{}
	for _, f := range flagGlyphs {
		color := "red"
		if cpu.SREG&f.mask != 0 {
			color = "green"
		}
		fmt.Fprintf(sb, "[%s](fg:%s) ", f.name, color)
	}
	sb.WriteRune('\n')
	fmt.Fprintf(sb, "PC: 0x%06X  SP: 0x%04X\n", cpu.PC*2, cpu.SP)
	for i := 0; i < 32; i += 8 {
		fmt.Fprintf(sb, "R%-2d: %02X %02X %02X %02X %02X %02X %02X %02X\n",
			i, cpu.R[i], cpu.R[i+1], cpu.R[i+2], cpu.R[i+3], cpu.R[i+4], cpu.R[i+5], cpu.R[i+6], cpu.R[i+7])
	}
	d.paragraphCPU.Text = sb.String()
}

func (d *Debugger) renderRAM(p *widgets.Paragraph, base uint16, rows, cols int) {
	sb := &strings.Builder{}
	addr := base
	for r := 0; r < rows; r++ {
		fmt.Fprintf(sb, "$%04X:", addr)
		for c := 0; c < cols; c++ {
			fmt.Fprintf(sb, " %02X", d.m.Mem.Read(addr))
			addr++
		}
		sb.WriteRune('\n')
	}
	p.Text = sb.String()
}

// renderCode prints the raw flash words bracketing PC; symbol names
// from a loaded ELF (Machine.Symbols) annotate any word whose byte
// address matches a known function entry.
func (d *Debugger) renderCode() {
	sb := &strings.Builder{}
	pc := d.m.CPU.PC
	for off := -4; off <= 8; off++ {
		word := uint32(int64(pc) + int64(off))
		marker := "  "
		if off == 0 {
			marker = "->"
		}
		line := fmt.Sprintf("%s %06X: %04X", marker, word*2, d.m.Flash.ReadWord(word))
		if name := d.symbolAt(word * 2); name != "" {
			line += " ; " + name
		}
		sb.WriteString(line)
		sb.WriteRune('\n')
	}
	d.paragraphCode.Text = sb.String()
}

func (d *Debugger) symbolAt(byteAddr uint32) string {
	for _, s := range d.m.Symbols {
		if s.Addr == byteAddr {
			return s.Name
		}
	}
	return ""
}

func (d *Debugger) renderStatus(msg string) {
	d.paragraphStat.Text = msg
}

func (d *Debugger) draw() {
	d.renderCPU()
	d.renderCode()
	d.renderRAM(d.paragraphRam0, 0x0000, 16, 16)
	d.renderRAM(d.paragraphRam1, 0x0100, 16, 16)
	ui.Render(d.paragraphCPU, d.paragraphCode, d.paragraphRam0, d.paragraphRam1, d.paragraphStat)
}

// Run initializes the terminal, draws the initial state and services
// keyboard events until the user quits:
//
//	<Space>/s  single-step one instruction
//	c          run to the next breakpoint
//	p          invoke the registered button-press callback, if any
//	q, <C-c>   quit
func (d *Debugger) Run() error {
	if err := ui.Init(); err != nil {
		return err
	}
	defer ui.Close()

	d.initLayout()
	d.renderStatus("ready")
	d.draw()

	for e := range ui.PollEvents() {
		if e.Type != ui.KeyboardEvent {
			continue
		}
		switch e.ID {
		case "q", "<C-c>":
			return nil
		case "<Space>", "s":
			d.step()
		case "c":
			d.cont()
		case "p":
			if d.onPress != nil {
				d.onPress()
			}
		}
		d.draw()
	}
	return nil
}

func (d *Debugger) step() {
	_, reason, err := d.m.RunFor(1)
	d.renderStatus(statusLine(reason, err))
}

func (d *Debugger) cont() {
	_, reason, err := d.m.RunFor(^uint32(0))
	d.renderStatus(statusLine(reason, err))
}

func statusLine(reason machine.StopReason, err error) string {
	if err != nil {
		return err.Error()
	}
	switch reason {
	case machine.StopBreakpoint:
		return "stopped: breakpoint"
	case machine.StopWatchpoint:
		return "stopped: watchpoint"
	case machine.StopFatalError:
		return "stopped: fatal error"
	default:
		return "ok"
	}
}
