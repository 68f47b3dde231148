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

package gdbrsp

// Kind names one mailbox command the I/O thread may request of the
// emulation thread.
type Kind int

const (
	KindReadRegs Kind = iota
	KindWriteRegs
	KindReadMem
	KindWriteMem
	KindSetBreak
	KindClearBreak
	KindStep
	KindContinue
	KindHaltReason
	KindBreakNow
)

// Command is one request, carrying its own reply channel so the
// emulation thread can answer asynchronously without a shared lock.
type Command struct {
	Kind   Kind
	Addr   uint32
	Length int
	Data   []byte
	Reply  chan Reply
}

// Reply is the emulation thread's answer to a Command.
type Reply struct {
	Data    []byte
	Err     error
	Stopped bool // true once a step/continue has halted again (breakpoint, watchpoint, Ctrl-C)
}

// Mailbox is a small buffered channel of commands, drained once per
// frame and once per emulated instruction while halted (spec §5).
type Mailbox chan Command

// NewMailbox allocates a mailbox with reasonable headroom so the I/O
// thread never blocks enqueueing a single in-flight request.
func NewMailbox() Mailbox {
	return make(Mailbox, 8)
}

// Send posts cmd and blocks for its reply. Used by the I/O thread;
// never called from the emulation thread.
func (m Mailbox) Send(cmd Command) Reply {
	cmd.Reply = make(chan Reply, 1)
	m <- cmd
	return <-cmd.Reply
}
