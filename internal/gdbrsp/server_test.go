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
	"testing"

	"github.com/stretchr/testify/require"
)

// serveOne answers exactly one command on mb with reply, for a single
// dispatch() call run on the test goroutine.
func serveOne(t *testing.T, mb Mailbox, wantKind Kind, reply Reply) {
	t.Helper()
	cmd := <-mb
	require.Equal(t, wantKind, cmd.Kind)
	cmd.Reply <- reply
}

func newTestServer() (*Server, Mailbox) {
	mb := NewMailbox()
	return &Server{mailbox: mb}, mb
}

func TestDispatchCtrlCSendsBreakNow(t *testing.T) {
	s, mb := newTestServer()
	go serveOne(t, mb, KindBreakNow, Reply{})

	require.Equal(t, "S05", s.dispatch("\x03"))
}

func TestDispatchHaltReasonQuery(t *testing.T) {
	s, mb := newTestServer()
	go serveOne(t, mb, KindHaltReason, Reply{})

	require.Equal(t, "S05", s.dispatch("?"))
}

func TestDispatchReadRegsHexEncodesData(t *testing.T) {
	s, mb := newTestServer()
	go serveOne(t, mb, KindReadRegs, Reply{Data: []byte{0xAB, 0xCD}})

	require.Equal(t, "abcd", s.dispatch("g"))
}

func TestDispatchReadRegsErrorReturnsEmpty(t *testing.T) {
	s, mb := newTestServer()
	go serveOne(t, mb, KindReadRegs, Reply{Err: require.AnError})

	require.Equal(t, "", s.dispatch("g"))
}

func TestDispatchWriteRegsDecodesHexPayload(t *testing.T) {
	s, mb := newTestServer()
	go func() {
		cmd := <-mb
		require.Equal(t, KindWriteRegs, cmd.Kind)
		require.Equal(t, []byte{0xAB, 0xCD}, cmd.Data)
		cmd.Reply <- Reply{}
	}()

	require.Equal(t, "OK", s.dispatch("Gabcd"))
}

func TestDispatchWriteRegsBadHexReturnsError(t *testing.T) {
	s, _ := newTestServer()
	require.Equal(t, "E01", s.dispatch("Gzz"))
}

func TestDispatchReadMemParsesAddrAndLength(t *testing.T) {
	s, mb := newTestServer()
	go func() {
		cmd := <-mb
		require.Equal(t, KindReadMem, cmd.Kind)
		require.Equal(t, uint32(0x100), cmd.Addr)
		require.Equal(t, 4, cmd.Length)
		cmd.Reply <- Reply{Data: []byte{0x01, 0x02, 0x03, 0x04}}
	}()

	require.Equal(t, "01020304", s.dispatch("m100,4"))
}

func TestDispatchReadMemMalformedReturnsError(t *testing.T) {
	s, _ := newTestServer()
	require.Equal(t, "E01", s.dispatch("mnotvalid"))
}

func TestDispatchWriteMemParsesAddrAndData(t *testing.T) {
	s, mb := newTestServer()
	go func() {
		cmd := <-mb
		require.Equal(t, KindWriteMem, cmd.Kind)
		require.Equal(t, uint32(0x20), cmd.Addr)
		require.Equal(t, []byte{0xDE, 0xAD}, cmd.Data)
		cmd.Reply <- Reply{}
	}()

	require.Equal(t, "OK", s.dispatch("M20,2:dead"))
}

func TestDispatchSetAndClearBreakpoint(t *testing.T) {
	s, mb := newTestServer()
	go serveOne(t, mb, KindSetBreak, Reply{})
	require.Equal(t, "OK", s.dispatch("Z0,200,1"))

	go serveOne(t, mb, KindClearBreak, Reply{})
	require.Equal(t, "OK", s.dispatch("z0,200,1"))
}

func TestDispatchStepAndContinue(t *testing.T) {
	s, mb := newTestServer()
	go serveOne(t, mb, KindStep, Reply{})
	require.Equal(t, "S05", s.dispatch("s"))

	go serveOne(t, mb, KindContinue, Reply{})
	require.Equal(t, "S05", s.dispatch("c"))
}

func TestDispatchVContQueryAdvertisesStepAndContinue(t *testing.T) {
	s, _ := newTestServer()
	require.Equal(t, "vCont;c;s", s.dispatch("vCont?"))
}

func TestDispatchUnknownPayloadReturnsEmpty(t *testing.T) {
	s, _ := newTestServer()
	require.Equal(t, "", s.dispatch("qSupported"))
}

func TestMapAddressDataSpaceIsIdentity(t *testing.T) {
	isFlash, offset := MapAddress(0x100)
	require.False(t, isFlash)
	require.Equal(t, uint32(0x100), offset)
}

func TestMapAddressFlashWindowSubtractsBase(t *testing.T) {
	isFlash, offset := MapAddress(flashWindowBase + 0x40)
	require.True(t, isFlash)
	require.Equal(t, uint32(0x40), offset)
}

func TestParseAddrLengthRejectsMissingComma(t *testing.T) {
	_, _, ok := parseAddrLength("100")
	require.False(t, ok)
}

func TestParseBreakAddrAcceptsKindSuffix(t *testing.T) {
	addr, ok := parseBreakAddr("1a0,1")
	require.True(t, ok)
	require.Equal(t, uint32(0x1a0), addr)
}
