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

func TestMailboxSendBlocksUntilReply(t *testing.T) {
	mb := NewMailbox()

	go func() {
		cmd := <-mb
		require.Equal(t, KindReadRegs, cmd.Kind)
		cmd.Reply <- Reply{Data: []byte{0x01, 0x02}}
	}()

	reply := mb.Send(Command{Kind: KindReadRegs})
	require.Equal(t, []byte{0x01, 0x02}, reply.Data)
}

func TestMailboxSendAssignsFreshReplyChannelPerCall(t *testing.T) {
	mb := NewMailbox()

	go func() {
		for i := 0; i < 2; i++ {
			cmd := <-mb
			cmd.Reply <- Reply{Stopped: true}
		}
	}()

	r1 := mb.Send(Command{Kind: KindStep})
	r2 := mb.Send(Command{Kind: KindContinue})
	require.True(t, r1.Stopped)
	require.True(t, r2.Stopped)
}

func TestMailboxCapacityAllowsBufferedEnqueue(t *testing.T) {
	mb := NewMailbox()
	require.Equal(t, 8, cap(mb))
}
