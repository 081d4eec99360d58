// Copyright (c) Liam Stanley <me@liamstanley.io>. All rights reserved. Use
// of this source code is governed by the MIT license that can be found in
// the LICENSE file.

package ircweave

import (
	"bytes"
	"strconv"
	"strings"
)

// writeLine renders prefix/command/args/trailing into dst, IRC wire-format
// style, grounded on girc/event.go's Event.Bytes() buffer assembly. It does
// not itself validate field contents -- callers validate before calling,
// and BuildInto/BuildOwned re-parse the result to confirm it round-trips.
func writeLine(dst *bytes.Buffer, prefix, command string, args []string, trailing string, hasTrailing bool) {
	if prefix != "" {
		dst.WriteByte(prefixByte)
		dst.WriteString(prefix)
		dst.WriteByte(space)
	}
	dst.WriteString(command)
	for _, a := range args {
		dst.WriteByte(space)
		dst.WriteString(a)
	}
	if hasTrailing {
		dst.WriteByte(space)
		dst.WriteByte(prefixByte)
		dst.WriteString(trailing)
	}
}

// BuildInto writes a message into a caller-provided fixed buffer and
// returns a borrowed view over the written bytes. Returns
// ErrBufferTooSmall if dst cannot hold the rendered line.
func BuildInto(dst []byte, prefix, command string, args []string, trailing string, hasTrailing bool) (*IrcMsg, error) {
	var tmp bytes.Buffer
	writeLine(&tmp, prefix, command, args, trailing, hasTrailing)
	if tmp.Len() > len(dst) {
		return nil, &ConstructionError{Kind: ErrBufferTooSmall}
	}
	n := copy(dst, tmp.Bytes())
	view, err := NewIrcMsg(dst[:n])
	if err != nil {
		return nil, &ConstructionError{Kind: ErrInvalidBody, Value: err.Error()}
	}
	return view, nil
}

// BuildOwned writes a message into newly allocated, owned storage.
func BuildOwned(prefix, command string, args []string, trailing string, hasTrailing bool) (*IrcMsgBuf, error) {
	var tmp bytes.Buffer
	writeLine(&tmp, prefix, command, args, trailing, hasTrailing)
	return NewIrcMsgBuf(tmp.Bytes())
}

// validTargetByte rejects NUL/CR/LF/space in PRIVMSG/NOTICE targets.
func validTargetByte(s string) bool {
	for i := 0; i < len(s); i++ {
		switch s[i] {
		case 0x00, '\r', '\n', ' ':
			return false
		}
	}
	return len(s) > 0
}

// validBodyByte rejects NUL/CR/LF in PRIVMSG/NOTICE bodies.
func validBodyByte(s string) bool {
	for i := 0; i < len(s); i++ {
		switch s[i] {
		case 0x00, '\r', '\n':
			return false
		}
	}
	return true
}

// BuildPrivmsg constructs a PRIVMSG into owned storage, rejecting targets
// containing NUL/CR/LF/space and bodies containing NUL/CR/LF, per spec
// §4.1.
func BuildPrivmsg(target, body string) (*IrcMsgBuf, error) {
	if !validTargetByte(target) {
		return nil, &ConstructionError{Kind: ErrInvalidTarget, Value: target}
	}
	if !validBodyByte(body) {
		return nil, &ConstructionError{Kind: ErrInvalidBody, Value: body}
	}
	return BuildOwned("", "PRIVMSG", []string{target}, body, true)
}

// BuildNotice constructs a NOTICE into owned storage, with the same target
// and body validation as BuildPrivmsg.
func BuildNotice(target, body string) (*IrcMsgBuf, error) {
	if !validTargetByte(target) {
		return nil, &ConstructionError{Kind: ErrInvalidTarget, Value: target}
	}
	if !validBodyByte(body) {
		return nil, &ConstructionError{Kind: ErrInvalidBody, Value: body}
	}
	return BuildOwned("", "NOTICE", []string{target}, body, true)
}

// BuildJoin constructs a JOIN for one or more channels, optionally with
// keys (parallel list, empty string for "no key"). Channel names are
// validated with IsValidChannel; this is a programmer-mistake error for
// constant commands, surfaced for user-supplied arguments, per spec
// §4.1's construction error policy.
func BuildJoin(channels []string, keys []string) (*IrcMsgBuf, error) {
	for _, c := range channels {
		if !IsValidChannel(c) {
			return nil, &ConstructionError{Kind: ErrInvalidTarget, Value: c}
		}
	}
	args := []string{strings.Join(channels, ",")}
	if len(keys) > 0 {
		args = append(args, strings.Join(keys, ","))
	}
	return BuildOwned("", "JOIN", args, "", false)
}

// BuildPart constructs a PART for one or more channels with an optional
// part message.
func BuildPart(channels []string, message string) (*IrcMsgBuf, error) {
	for _, c := range channels {
		if !IsValidChannel(c) {
			return nil, &ConstructionError{Kind: ErrInvalidTarget, Value: c}
		}
	}
	args := []string{strings.Join(channels, ",")}
	if message == "" {
		return BuildOwned("", "PART", args, "", false)
	}
	return BuildOwned("", "PART", args, message, true)
}

// BuildNick constructs a NICK change request.
func BuildNick(nick string) (*IrcMsgBuf, error) {
	if !IsValidNick(nick) {
		return nil, &ConstructionError{Kind: ErrInvalidTarget, Value: nick}
	}
	return BuildOwned("", "NICK", []string{nick}, "", false)
}

// BuildUser constructs the USER registration command. mode is the bitmask
// described in spec §4.5 (bit 2 = wallops, bit 3 = invisible).
func BuildUser(user string, mode int, realname string) (*IrcMsgBuf, error) {
	if user == "" {
		return nil, &ConstructionError{Kind: ErrInvalidTarget, Value: user}
	}
	return BuildOwned("", "USER", []string{user, strconv.Itoa(mode), "*"}, realname, true)
}

// BuildPong constructs a PONG reply echoing token.
func BuildPong(token string) (*IrcMsgBuf, error) {
	return BuildOwned("", "PONG", nil, token, true)
}

// BuildPing constructs a PING with token.
func BuildPing(token string) (*IrcMsgBuf, error) {
	return BuildOwned("", "PING", nil, token, true)
}

// BuildQuit constructs a QUIT carrying message as its trailing argument.
// An empty message renders a bare "QUIT", which NewIrcMsg rejects as
// truncated (a line needs at least one argument), so it returns an error.
func BuildQuit(message string) (*IrcMsgBuf, error) {
	if message == "" {
		return BuildOwned("", "QUIT", nil, "", false)
	}
	return BuildOwned("", "QUIT", nil, message, true)
}

