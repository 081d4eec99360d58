// Copyright (c) Liam Stanley <me@liamstanley.io>. All rights reserved. Use
// of this source code is governed by the MIT license that can be found in
// the LICENSE file.

package ircweave

// IrcEventKind discriminates the union held by IrcEvent.
type IrcEventKind uint8

const (
	// EventRaw carries a single parsed message. Pipeline.Feed emits one
	// for every message, including messages a bundler also consumed.
	EventRaw IrcEventKind = iota
	// EventJoinBundle carries the correlated result of a self-JOIN,
	// per spec §4.3/§4.4.
	EventJoinBundle
	// EventWhoBundle carries the correlated result of a self-WHO.
	EventWhoBundle
)

// NamesEntry is one nick/prefix pair from a NAMES reply, collected by a
// JoinBundler while it accumulates RPL_NAMREPLY lines.
type NamesEntry struct {
	Nick   string
	Prefix string // e.g. "@", "+", "" -- the symbol in front of the nick, if any.
}

// JoinBundle is the correlated result of a self-JOIN: every piece of
// state the server sends in response to one JOIN command, bundled into a
// single event instead of delivered as a scatter of raw numerics. Grounded
// on original_source/src/watchers/join.rs's JoinResult.
type JoinBundle struct {
	Channel    string
	Topic      string
	HasTopic   bool
	TopicSetBy string // nick!user@host from RPL_TOPICWHOTIME (333), if sent.
	TopicSetAt int64  // unix timestamp from RPL_TOPICWHOTIME (333), if sent.
	Names      []NamesEntry
	Err        *JoinError // non-nil on failure; Topic/Names are unset.
}

// WhoBundle is the correlated result of a self-WHO: every RPL_WHOREPLY
// line up to RPL_ENDOFWHO, bundled into one event.
type WhoBundle struct {
	Mask    string
	Entries []WhoEntry
}

// WhoEntry is one RPL_WHOREPLY line's parsed fields.
type WhoEntry struct {
	Channel string
	User    string
	Host    string
	Server  string
	Nick    string
	Flags   string
	Hops    int
	Real    string
}

// IrcEvent is the value a consumer of the bundler pipeline receives: the
// raw, per-message stream merged with the higher-level bundles the
// pipeline has correlated. Exactly one of Raw/Join/Who is populated,
// selected by Kind.
type IrcEvent struct {
	Kind IrcEventKind
	Raw  *IrcMsgBuf
	Join *JoinBundle
	Who  *WhoBundle
}
