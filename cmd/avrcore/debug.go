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

package main

import (
	"fmt"
	"image/png"
	"os"
	"sort"
	"strings"

	"github.com/pkg/errors"
	"github.com/rs/zerolog"

	"github.com/mgavr/avrcore/internal/avrerr"
	"github.com/mgavr/avrcore/internal/cpuid"
	"github.com/mgavr/avrcore/internal/debug/tui"
	"github.com/mgavr/avrcore/internal/display"
	"github.com/mgavr/avrcore/internal/machine"
)

// pressButtonA pulls the A-button pin low, the CLI's stand-in for a
// host's gamepad poll (spec §1 lists gamepad polling as an external
// collaborator the core does not implement). Nothing releases the pin
// afterwards, so the button reads as held from then on.
func pressButtonA(m *machine.Machine, kind cpuid.Kind) {
	pin, ok := buttonAPin[kind]
	if !ok {
		return
	}
	m.Mem.SetPortBit(pin.Port, pin.Bit, false) // active-low: pressed pulls the line down
}

// writeSnapshot renders the current framebuffer to a PNG named after
// the source file and frame number (spec §6 "--snapshot F").
func writeSnapshot(m *machine.Machine, sourcePath string, frame int) error {
	out := fmt.Sprintf("%s.frame%d.png", sourcePath, frame)
	f, err := os.Create(out)
	if err != nil {
		return err
	}
	defer f.Close()
	return png.Encode(f, display.Render(m.Display))
}

// dumpSurroundingBytes logs the flash words around the faulting PC
// on a fatal decode error (spec §7 "dump PC and surrounding bytes").
func dumpSurroundingBytes(m *machine.Machine, log zerolog.Logger) {
	pc := m.CPU.PC
	var opErr *avrerr.UnknownOpcodeError
	if errors.As(m.CPU.HaltedError, &opErr) {
		pc = opErr.PC // Step has already moved PC past the faulting word
	}
	var sb strings.Builder
	for offset := int32(-4); offset <= 4; offset++ {
		addr := int64(pc) + int64(offset)
		if addr < 0 {
			continue
		}
		word := m.Flash.ReadWord(uint32(addr))
		if offset == 0 {
			fmt.Fprintf(&sb, "[%04X]=%04X ", addr, word)
		} else {
			fmt.Fprintf(&sb, "%04X=%04X ", addr, word)
		}
	}
	log.Error().Str("words", sb.String()).Msg("flash dump around fault")
}

// printProfile prints the hottest PCs and the call graph gathered
// while m.Profiling was set (spec §4.8 profiler, spec §6 "--profile").
func printProfile(m *machine.Machine, log zerolog.Logger) {
	hist := m.Profiler.Histogram()
	type row struct {
		pc    uint32
		count uint64
	}
	rows := make([]row, 0, len(hist))
	for pc, n := range hist {
		rows = append(rows, row{pc, n})
	}
	sort.Slice(rows, func(i, j int) bool { return rows[i].count > rows[j].count })

	fmt.Printf("overall CPI: %.3f\n", m.Profiler.OverallCPI())
	fmt.Println("hottest PCs:")
	for i, r := range rows {
		if i >= 20 {
			break
		}
		fmt.Printf("  0x%04X  %d executions\n", r.pc, r.count)
	}

	edges := m.Profiler.Edges()
	sort.Slice(edges, func(i, j int) bool { return edges[i].Count > edges[j].Count })
	fmt.Println("hottest call edges:")
	for i, e := range edges {
		if i >= 20 {
			break
		}
		fmt.Printf("  0x%04X -> 0x%04X  %d calls\n", e.Caller, e.Callee, e.Count)
	}
}

// saveEEPROMIfDirty mirrors spec §6's persistence file: raw bytes at
// the game path with its extension replaced by .eep, written only
// when dirty, with the dirty flag cleared even if the write fails
// (spec §7 "EepromWriteIo ... clear dirty flag anyway").
func saveEEPROMIfDirty(m *machine.Machine, path string, log zerolog.Logger) {
	if !m.EEPROM.Dirty() {
		return
	}
	if err := os.WriteFile(path, m.EEPROM.Image(), 0o644); err != nil {
		log.Warn().Err(err).Str("path", path).Msg("EEPROM persistence write failed")
	}
	m.EEPROM.ClearDirty()
}

// runInteractive is the --step debugger: internal/debug/tui's termui
// console wired to this process's button-press stand-in.
func runInteractive(m *machine.Machine, kind cpuid.Kind) {
	d := tui.New(m)
	d.OnPress(func() { pressButtonA(m, kind) })
	if err := d.Run(); err != nil {
		fmt.Fprintf(os.Stderr, "failed to run debugger: %v\n", err)
	}
}
