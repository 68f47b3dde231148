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

// Package avrcore is the stable surface for embedding the core in a
// front-end other than cmd/avrcore: it re-exports internal/machine's
// Machine type and enough of its dependents (cpuid.Kind, gdbrsp's
// mailbox/server, the avrerr sentinels) that a caller never has to
// import an internal package directly.
package avrcore

import (
	"github.com/mgavr/avrcore/internal/avrerr"
	"github.com/mgavr/avrcore/internal/cpuid"
	"github.com/mgavr/avrcore/internal/gdbrsp"
	"github.com/mgavr/avrcore/internal/machine"
)

// Kind selects which AVR part to emulate.
type Kind = cpuid.Kind

const (
	ATmega32u4 = cpuid.ATmega32u4
	ATmega328P = cpuid.ATmega328P
)

// Machine is one fully wired, runnable AVR core.
type Machine = machine.Machine

// StopReason explains why a RunFor call returned early.
type StopReason = machine.StopReason

const (
	StopBudgetExhausted = machine.StopBudgetExhausted
	StopBreakpoint      = machine.StopBreakpoint
	StopWatchpoint      = machine.StopWatchpoint
	StopFatalError      = machine.StopFatalError
	StopGdbRequest      = machine.StopGdbRequest
)

// New builds a fresh Machine for the given part.
func New(kind Kind) *Machine {
	return machine.New(kind)
}

// ExitCode maps a RunFor/load error to the process exit codes spec §6
// defines.
func ExitCode(err error) int {
	return machine.ExitCode(err)
}

// Mailbox and Server re-export the GDB RSP transport so a host can
// wire --gdb without importing internal/gdbrsp.
type Mailbox = gdbrsp.Mailbox
type Server = gdbrsp.Server

// NewMailbox allocates a command mailbox for ConnectGDB / gdbrsp.Listen.
func NewMailbox() Mailbox { return gdbrsp.NewMailbox() }

// ListenGDB opens a GDB RSP TCP listener bound to the mailbox.
func ListenGDB(port int, mailbox Mailbox) (*Server, error) {
	return gdbrsp.Listen(port, mailbox)
}

// Error sentinels, re-exported for callers that want errors.Is without
// an internal/avrerr import.
var (
	ErrFileLoad      = avrerr.ErrFileLoad
	ErrUnknownOpcode = avrerr.ErrUnknownOpcode
	ErrBreakpointHit = avrerr.ErrBreakpointHit
	ErrWatchpointHit = avrerr.ErrWatchpointHit
)
