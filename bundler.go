// Copyright (c) Liam Stanley <me@liamstanley.io>. All rights reserved. Use
// of this source code is governed by the MIT license that can be found in
// the LICENSE file.

package ircweave

import (
	"strconv"
	"sync"
)

// Bundler correlates a run of related messages into a single IrcEvent.
// Grounded on original_source/src/watchers/join.rs and
// original_source/src/watchers/who.rs's Bundler trait.
type Bundler interface {
	// OnMessage is fed every message until Finished reports true. It
	// returns zero or more events produced by this step.
	OnMessage(msg *IrcMsg) []IrcEvent
	Finished() bool
}

// Trigger inspects every message flowing through the pipeline and may
// spawn new Bundlers in response, per original_source's BundlerTrigger.
type Trigger interface {
	OnMessage(msg *IrcMsg) []Bundler
}

// joinTriggerState mirrors original_source's JoinBundlerTriggerState.
type joinTriggerState uint8

const (
	joinTriggerUnregistered joinTriggerState = iota
	joinTriggerRunning
)

// JoinTrigger watches for this connection's own successful registration
// (numeric 001) and subsequent self-JOINs, spawning a JoinBundler for
// each one. It also tracks NICK changes so self-JOIN detection survives a
// nick change mid-session.
type JoinTrigger struct {
	state       joinTriggerState
	currentNick string
	mapping     CaseMapping
}

// NewJoinTrigger constructs a JoinTrigger. mapping controls how self-join
// detection folds nicknames for comparison.
func NewJoinTrigger(mapping CaseMapping) *JoinTrigger {
	return &JoinTrigger{mapping: mapping}
}

func (t *JoinTrigger) isSelf(pfx Prefix) bool {
	return t.mapping.Equal(pfx.Nick, t.currentNick)
}

// OnMessage implements Trigger.
func (t *JoinTrigger) OnMessage(msg *IrcMsg) []Bundler {
	switch t.state {
	case joinTriggerUnregistered:
		if msg.Command() == "001" && msg.NumArgs() > 0 {
			t.state = joinTriggerRunning
			t.currentNick = msg.ArgString(0)
		}
		return nil
	case joinTriggerRunning:
		switch msg.Command() {
		case "NICK":
			if pfx, ok := msg.Prefix(); ok && t.isSelf(pfx) && msg.NumArgs() > 0 {
				t.currentNick = msg.ArgString(0)
			}
			return nil
		case "JOIN":
			pfx, ok := msg.Prefix()
			if !ok || !t.isSelf(pfx) || msg.NumArgs() == 0 {
				return nil
			}
			return []Bundler{NewJoinBundler(msg.ArgString(0), t.mapping)}
		}
	}
	return nil
}

// joinBundlerState mirrors original_source's JoinBundlerState.
type joinBundlerState uint8

const (
	joinStatePreJoin joinBundlerState = iota
	joinStateJoining
	joinStateJoined
	joinStateJoinFail
)

// JoinBundler accumulates RPL_TOPIC/RPL_TOPICWHOIS/RPL_NAMREPLY/
// RPL_ENDOFNAMES for one channel join into a single JoinBundle, or a
// JoinError if the join is rejected (ERR_CANNOTJOIN). Grounded on
// original_source/src/watchers/join.rs's JoinBundler state machine.
type JoinBundler struct {
	channel    string
	mapping    CaseMapping
	topic      string
	hasTopic   bool
	topicSetBy string
	topicSetAt int64
	names      []NamesEntry
	state      joinBundlerState
}

// NewJoinBundler constructs a bundler waiting for channel's join sequence.
func NewJoinBundler(channel string, mapping CaseMapping) *JoinBundler {
	return &JoinBundler{channel: channel, mapping: mapping, state: joinStatePreJoin}
}

func (b *JoinBundler) sameChannel(other string) bool {
	return b.mapping.Equal(b.channel, other)
}

func (b *JoinBundler) OnMessage(msg *IrcMsg) []IrcEvent {
	switch b.state {
	case joinStatePreJoin:
		return b.acceptPreJoin(msg)
	case joinStateJoining:
		return b.acceptJoining(msg)
	default:
		return nil
	}
}

func (b *JoinBundler) acceptPreJoin(msg *IrcMsg) []IrcEvent {
	switch msg.Command() {
	case "JOIN":
		if msg.NumArgs() == 0 || !b.sameChannel(msg.ArgString(0)) {
			return nil
		}
		b.state = joinStateJoining
		return nil
	case "475":
		if msg.NumArgs() < 2 || !b.sameChannel(msg.ArgString(1)) {
			return nil
		}
		b.state = joinStateJoinFail
		return []IrcEvent{{Kind: EventJoinBundle, Join: &JoinBundle{
			Channel: b.channel,
			Err:     &JoinError{Channel: b.channel, Numeric: ERR_CANNOTJOIN, Message: msg.ArgString(msg.NumArgs() - 1)},
		}}}
	}
	return nil
}

func (b *JoinBundler) acceptJoining(msg *IrcMsg) []IrcEvent {
	switch msg.Command() {
	case "332":
		// <client> <channel> :<topic>
		if msg.NumArgs() >= 3 && b.sameChannel(msg.ArgString(1)) {
			b.topic = msg.ArgString(msg.NumArgs() - 1)
			b.hasTopic = true
		}
	case "333":
		// <client> <channel> <nick> <setat>
		if msg.NumArgs() >= 4 && b.sameChannel(msg.ArgString(1)) {
			if setAt, ok := parseUnixTime(msg.ArgString(3)); ok {
				b.topicSetBy = msg.ArgString(2)
				b.topicSetAt = setAt
			}
		}
	case "353":
		// <client> <symbol> <channel> :<nicks>
		if msg.NumArgs() >= 4 && isNamesSymbol(msg.ArgString(1)) && b.sameChannel(msg.ArgString(2)) {
			for _, nick := range splitNonEmpty(msg.ArgString(msg.NumArgs()-1), ' ') {
				b.names = append(b.names, parseNamesEntry(nick))
			}
		}
	case "366":
		// <client> <channel> :End of /NAMES list.
		if msg.NumArgs() >= 2 && b.sameChannel(msg.ArgString(1)) {
			b.state = joinStateJoined
			return []IrcEvent{{Kind: EventJoinBundle, Join: &JoinBundle{
				Channel:    b.channel,
				Topic:      b.topic,
				HasTopic:   b.hasTopic,
				TopicSetBy: b.topicSetBy,
				TopicSetAt: b.topicSetAt,
				Names:      b.names,
			}}}
		}
	}
	return nil
}

func (b *JoinBundler) Finished() bool {
	return b.state == joinStateJoined || b.state == joinStateJoinFail
}

// namePrefixSymbols are the membership-prefix symbols a NAMES reply may
// prepend to a nick (op, half-op, voice, owner, admin).
const namePrefixSymbols = "~&@%+"

// isNamesSymbol reports whether s is an RPL_NAMREPLY channel visibility
// symbol: "=" (public), "*" (private) or "@" (secret).
func isNamesSymbol(s string) bool {
	return s == "=" || s == "*" || s == "@"
}

// parseNamesEntry splits a NAMES token into its membership prefix and
// nick. A userhost-in-names token ("nick!user@host") yields just the nick.
func parseNamesEntry(tok string) NamesEntry {
	var entry NamesEntry
	if len(tok) > 0 && indexByte(namePrefixSymbols, tok[0]) {
		entry.Prefix, tok = tok[:1], tok[1:]
	}
	for i := 0; i < len(tok); i++ {
		if tok[i] == '!' {
			tok = tok[:i]
			break
		}
	}
	entry.Nick = tok
	return entry
}

// parseUnixTime parses an RPL_TOPICWHOTIME timestamp field.
func parseUnixTime(s string) (int64, bool) {
	n, err := strconv.ParseInt(s, 10, 64)
	if err != nil {
		return 0, false
	}
	return n, true
}

func indexByte(set string, b byte) bool {
	for i := 0; i < len(set); i++ {
		if set[i] == b {
			return true
		}
	}
	return false
}

func splitNonEmpty(s string, sep byte) []string {
	var out []string
	start := 0
	for i := 0; i <= len(s); i++ {
		if i == len(s) || s[i] == sep {
			if i > start {
				out = append(out, s[start:i])
			}
			start = i + 1
		}
	}
	return out
}

// WhoBundler accumulates RPL_WHOREPLY lines for one WHO mask until
// RPL_ENDOFWHO, per original_source/src/watchers/who.rs.
type WhoBundler struct {
	mask    string
	entries []WhoEntry
	done    bool
}

// NewWhoBundler constructs a bundler waiting for mask's WHO replies.
func NewWhoBundler(mask string) *WhoBundler {
	return &WhoBundler{mask: mask}
}

func (b *WhoBundler) OnMessage(msg *IrcMsg) []IrcEvent {
	if msg.NumArgs() < 2 || !CaseMappingRFC1459.Equal(msg.ArgString(1), b.mask) {
		return nil
	}
	switch msg.Command() {
	case "352":
		// <client> <channel> <user> <host> <server> <nick> <flags> :<hopcount> <realname>
		if msg.NumArgs() < 8 {
			return nil
		}
		hops, real := splitHopsReal(msg.ArgString(7))
		b.entries = append(b.entries, WhoEntry{
			Channel: msg.ArgString(1),
			User:    msg.ArgString(2),
			Host:    msg.ArgString(3),
			Server:  msg.ArgString(4),
			Nick:    msg.ArgString(5),
			Flags:   msg.ArgString(6),
			Hops:    hops,
			Real:    real,
		})
	case "315":
		b.done = true
		return []IrcEvent{{Kind: EventWhoBundle, Who: &WhoBundle{Mask: b.mask, Entries: b.entries}}}
	}
	return nil
}

func (b *WhoBundler) Finished() bool { return b.done }

// splitHopsReal splits a WHO reply's trailing "<hopcount> <realname>"
// field.
func splitHopsReal(s string) (int, string) {
	for i := 0; i < len(s); i++ {
		if s[i] == ' ' {
			n := 0
			for j := 0; j < i; j++ {
				if s[j] < '0' || s[j] > '9' {
					return 0, s
				}
				n = n*10 + int(s[j]-'0')
			}
			return n, s[i+1:]
		}
	}
	return 0, s
}

// Pipeline is the bundler engine that sits between the stream framer and
// application-level consumers: every message is wrapped as an EventRaw,
// and the configured Trigger/active Bundlers additionally correlate
// higher-level bundle events alongside it.
type Pipeline struct {
	mu       sync.Mutex
	triggers []Trigger
	active   []Bundler
}

// NewPipeline constructs an empty pipeline with the given triggers
// pre-registered (typically a JoinTrigger).
func NewPipeline(triggers ...Trigger) *Pipeline {
	return &Pipeline{triggers: triggers}
}

// AddBundler registers an already-constructed bundler directly, bypassing
// trigger-based spawning -- used for client-initiated correlations like
// WHO, which a Trigger cannot observe before the request is sent.
func (p *Pipeline) AddBundler(b Bundler) {
	p.mu.Lock()
	defer p.mu.Unlock()
	p.active = append(p.active, b)
}

// Feed runs msg through every trigger and active bundler, returning the
// message's own EventRaw plus any bundle-completion events produced this
// step. Finished bundlers are dropped after this call.
func (p *Pipeline) Feed(msg *IrcMsgBuf) []IrcEvent {
	view := msg.Borrow()
	out := []IrcEvent{{Kind: EventRaw, Raw: msg}}

	p.mu.Lock()
	defer p.mu.Unlock()

	for _, t := range p.triggers {
		if spawned := t.OnMessage(view); len(spawned) > 0 {
			p.active = append(p.active, spawned...)
		}
	}

	remaining := p.active[:0]
	for _, b := range p.active {
		out = append(out, b.OnMessage(view)...)
		if !b.Finished() {
			remaining = append(remaining, b)
		}
	}
	p.active = remaining

	return out
}
