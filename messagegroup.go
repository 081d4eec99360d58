// Copyright (c) Liam Stanley <me@liamstanley.io>. All rights reserved. Use
// of this source code is governed by the MIT license that can be found in
// the LICENSE file.

package ircweave

// MessageGroupBuf is a NUL-delimited buffer of owned messages, grounded
// on original_source/src/message_group.rs's MessageGroupBuf. Where the
// original used unsafe pointer transmutes to iterate a shared byte slice
// as a sequence of &IrcMsg without copying, this keeps the same NUL
// framing but iterates via ordinary byte-slice aliasing -- no unsafe is
// needed since IrcMsg already borrows from arbitrary backing storage.
type MessageGroupBuf struct {
	inner []byte
}

// NewMessageGroupBuf constructs an empty group.
func NewMessageGroupBuf() *MessageGroupBuf { return &MessageGroupBuf{} }

// Push appends msg's raw bytes followed by a NUL separator.
func (g *MessageGroupBuf) Push(msg *IrcMsg) {
	g.inner = append(g.inner, msg.Raw()...)
	g.inner = append(g.inner, 0x00)
}

// Bytes returns the group's raw NUL-delimited storage.
func (g *MessageGroupBuf) Bytes() []byte { return g.inner }

// Iter returns a borrowing iterator over the group's messages, in the
// order they were pushed.
func (g *MessageGroupBuf) Iter() *MessageGroupIter {
	return &MessageGroupIter{data: g.inner}
}

// MessageGroupIter borrows from a MessageGroupBuf (or any NUL-delimited
// byte slice) and yields one *IrcMsg per call to Next.
type MessageGroupIter struct {
	data []byte
}

// Next returns the next message view, or (nil, false) once exhausted.
// Messages that fail to re-parse (should not happen for a group built
// entirely from Push) are skipped.
func (it *MessageGroupIter) Next() (*IrcMsg, bool) {
	for len(it.data) > 0 {
		idx := indexByteSlice(it.data, 0x00)
		if idx < 0 {
			it.data = nil
			return nil, false
		}
		line := it.data[:idx]
		it.data = it.data[idx+1:]

		msg, err := NewIrcMsg(line)
		if err != nil {
			continue
		}
		return msg, true
	}
	return nil, false
}

func indexByteSlice(b []byte, c byte) int {
	for i, v := range b {
		if v == c {
			return i
		}
	}
	return -1
}
