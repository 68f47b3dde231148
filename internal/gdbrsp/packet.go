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

// Package gdbrsp implements a TCP server speaking the GDB Remote
// Serial Protocol subset spec §4.8 names (g/G, m/M, Z0/z0, s, c,
// vCont, Ctrl-C, '?'). It runs on its own I/O goroutine and never
// touches emulator state directly; every request becomes a Command on
// a mailbox channel that internal/machine drains on the emulation
// thread (spec §5 "no emulated register is mutated from the I/O
// thread directly").
package gdbrsp

import (
	"bufio"
	"fmt"
	"strings"

	"github.com/mgavr/avrcore/internal/avrerr"
)

// encodePacket frames payload as "$<payload>#<checksum>".
func encodePacket(payload string) string {
	var sum byte
	for i := 0; i < len(payload); i++ {
		sum += payload[i]
	}
	return fmt.Sprintf("$%s#%02x", payload, sum)
}

// readPacket reads one RSP packet from r, skipping any '+'/'-'
// acknowledgements left from a previous exchange. Malformed packets
// return avrerr.GdbProtocol rather than a transport error, per spec §7
// "respond with empty packet, continue".
func readPacket(r *bufio.Reader) (string, error) {
	for {
		b, err := r.ReadByte()
		if err != nil {
			return "", err
		}
		switch b {
		case '+', '-':
			continue // ack/nack from a previous exchange, ignore and keep reading
		case 0x03:
			return "\x03", nil // Ctrl-C break, not length/checksum framed
		case '$':
			payload, err := r.ReadString('#')
			if err != nil {
				return "", err
			}
			payload = strings.TrimSuffix(payload, "#")
			checksum := make([]byte, 2)
			if _, err := r.Read(checksum); err != nil {
				return "", err
			}
			var want byte
			for i := 0; i < len(payload); i++ {
				want += payload[i]
			}
			got := fmt.Sprintf("%02x", want)
			if got != string(checksum) {
				return "", avrerr.GdbProtocol(payload)
			}
			return payload, nil
		}
	}
}
