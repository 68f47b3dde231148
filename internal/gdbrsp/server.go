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

import (
	"bufio"
	"context"
	"encoding/hex"
	"fmt"
	"net"
	"strconv"
	"strings"

	"github.com/pkg/errors"
	"github.com/rs/zerolog"
	"golang.org/x/sync/errgroup"

	"github.com/mgavr/avrcore/internal/avrerr"
	"github.com/mgavr/avrcore/internal/logx"
)

// flashWindowBase is avr-gdb's convention for addressing program
// memory through the same linear address space as data memory (spec
// §4.8 "m/M memory read/write with address mapping").
const flashWindowBase = 0x800000

// Server accepts a single GDB client connection on a TCP port and
// proxies its requests to the emulation thread via a Mailbox.
type Server struct {
	listener net.Listener
	mailbox  Mailbox
	log      zerolog.Logger
}

// Listen opens the TCP port. The caller should then run Serve in its
// own goroutine (the "separate I/O thread" spec §5 requires).
func Listen(port int, mailbox Mailbox) (*Server, error) {
	l, err := net.Listen("tcp", fmt.Sprintf("127.0.0.1:%d", port))
	if err != nil {
		return nil, errors.Wrapf(err, "gdbrsp: listen on port %d", port)
	}
	return &Server{listener: l, mailbox: mailbox, log: logx.Component("gdbrsp")}, nil
}

// Addr returns the bound address, useful when port 0 was requested.
func (s *Server) Addr() net.Addr { return s.listener.Addr() }

// Close stops accepting and closes any open connection.
func (s *Server) Close() error { return s.listener.Close() }

// Serve accepts connections until ctx is canceled or the listener is
// closed. Each connection is handled on its own goroutine coordinated
// through an errgroup so Serve returns once every connection has
// wound down.
func (s *Server) Serve(ctx context.Context) error {
	g, ctx := errgroup.WithContext(ctx)
	g.Go(func() error {
		<-ctx.Done()
		return s.listener.Close()
	})

	for {
		conn, err := s.listener.Accept()
		if err != nil {
			select {
			case <-ctx.Done():
				return g.Wait()
			default:
				return errors.Wrap(err, "gdbrsp: accept")
			}
		}
		g.Go(func() error {
			s.handleConn(ctx, conn)
			return nil
		})
	}
}

func (s *Server) handleConn(ctx context.Context, conn net.Conn) {
	defer conn.Close()
	r := bufio.NewReader(conn)

	for {
		select {
		case <-ctx.Done():
			return
		default:
		}

		payload, err := readPacket(r)
		if errors.Is(err, avrerr.ErrGdbProtocol) {
			s.log.Warn().Err(err).Msg("gdbrsp malformed packet")
			if _, err := conn.Write([]byte(encodePacket(""))); err != nil {
				return
			}
			continue
		}
		if err != nil {
			s.log.Warn().Err(err).Msg("gdbrsp read failed")
			return
		}
		if _, err := conn.Write([]byte("+")); err != nil {
			return
		}
		resp := s.dispatch(payload)
		if _, err := conn.Write([]byte(encodePacket(resp))); err != nil {
			return
		}
	}
}

// dispatch turns one RSP payload into a reply payload, blocking on
// the mailbox for anything that touches emulator state.
func (s *Server) dispatch(payload string) string {
	if payload == "\x03" {
		s.mailbox.Send(Command{Kind: KindBreakNow})
		return "S05"
	}

	switch {
	case payload == "?":
		reply := s.mailbox.Send(Command{Kind: KindHaltReason})
		return haltStatus(reply)

	case payload == "g":
		reply := s.mailbox.Send(Command{Kind: KindReadRegs})
		if reply.Err != nil {
			return ""
		}
		return hex.EncodeToString(reply.Data)

	case strings.HasPrefix(payload, "G"):
		data, err := hex.DecodeString(payload[1:])
		if err != nil {
			return "E01"
		}
		reply := s.mailbox.Send(Command{Kind: KindWriteRegs, Data: data})
		if reply.Err != nil {
			return "E01"
		}
		return "OK"

	case strings.HasPrefix(payload, "m"):
		addr, length, ok := parseAddrLength(payload[1:])
		if !ok {
			return "E01"
		}
		reply := s.mailbox.Send(Command{Kind: KindReadMem, Addr: addr, Length: length})
		if reply.Err != nil {
			return "E01"
		}
		return hex.EncodeToString(reply.Data)

	case strings.HasPrefix(payload, "M"):
		addr, data, ok := parseWriteMem(payload[1:])
		if !ok {
			return "E01"
		}
		reply := s.mailbox.Send(Command{Kind: KindWriteMem, Addr: addr, Data: data})
		if reply.Err != nil {
			return "E01"
		}
		return "OK"

	case strings.HasPrefix(payload, "Z0,"):
		addr, ok := parseBreakAddr(payload[3:])
		if !ok {
			return "E01"
		}
		s.mailbox.Send(Command{Kind: KindSetBreak, Addr: addr})
		return "OK"

	case strings.HasPrefix(payload, "z0,"):
		addr, ok := parseBreakAddr(payload[3:])
		if !ok {
			return "E01"
		}
		s.mailbox.Send(Command{Kind: KindClearBreak, Addr: addr})
		return "OK"

	case payload == "s" || strings.HasPrefix(payload, "vCont;s"):
		reply := s.mailbox.Send(Command{Kind: KindStep})
		return haltStatus(reply)

	case payload == "c" || strings.HasPrefix(payload, "vCont;c"):
		reply := s.mailbox.Send(Command{Kind: KindContinue})
		return haltStatus(reply)

	case payload == "vCont?":
		return "vCont;c;s"

	default:
		return ""
	}
}

func haltStatus(r Reply) string {
	if r.Err != nil {
		return "E01"
	}
	return "S05" // SIGTRAP: breakpoint/step/watchpoint, the only stop reasons this core raises
}

// MapAddress translates a GDB linear address into this core's
// (isFlash, offset) pair per spec §4.8's avr-gdb convention. Exported
// for internal/machine, which owns the actual SRAM/flash backing and
// answers KindReadMem/KindWriteMem commands.
func MapAddress(addr uint32) (isFlash bool, offset uint32) {
	if addr >= flashWindowBase {
		return true, addr - flashWindowBase
	}
	return false, addr
}

func parseAddrLength(s string) (addr uint32, length int, ok bool) {
	parts := strings.SplitN(s, ",", 2)
	if len(parts) != 2 {
		return 0, 0, false
	}
	a, err1 := strconv.ParseUint(parts[0], 16, 32)
	l, err2 := strconv.ParseUint(parts[1], 16, 32)
	if err1 != nil || err2 != nil {
		return 0, 0, false
	}
	return uint32(a), int(l), true
}

func parseWriteMem(s string) (addr uint32, data []byte, ok bool) {
	header := strings.SplitN(s, ":", 2)
	if len(header) != 2 {
		return 0, nil, false
	}
	addrLen := strings.SplitN(header[0], ",", 2)
	if len(addrLen) != 2 {
		return 0, nil, false
	}
	a, err := strconv.ParseUint(addrLen[0], 16, 32)
	if err != nil {
		return 0, nil, false
	}
	d, err := hex.DecodeString(header[1])
	if err != nil {
		return 0, nil, false
	}
	return uint32(a), d, true
}

func parseBreakAddr(s string) (uint32, bool) {
	parts := strings.SplitN(s, ",", 2)
	if len(parts) == 0 {
		return 0, false
	}
	a, err := strconv.ParseUint(parts[0], 16, 32)
	if err != nil {
		return 0, false
	}
	return uint32(a), true
}
