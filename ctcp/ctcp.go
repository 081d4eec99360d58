// Copyright (c) Liam Stanley <me@liamstanley.io>. All rights reserved. Use
// of this source code is governed by the MIT license that can be found in
// the LICENSE file.

// Package ctcp decodes the CTCP framing (DELIM+TAG[+SPACE+TEXT]+DELIM)
// that IRC servers pass through unmodified inside PRIVMSG/NOTICE
// trailing parameters, and encodes payloads into that framing. It is
// deliberately limited to the framing: responding to a CTCP query is
// policy that belongs to a consuming client, not this codec. Grounded on
// girc/ctcp.go's decodeCTCP/encodeCTCPRaw, without the handler registry.
package ctcp

import "strings"

// Delim is the byte framing a CTCP payload on both ends.
const Delim byte = 0x01

// Event is a decoded CTCP query or reply.
type Event struct {
	// Command is the CTCP tag, e.g. "PING", "VERSION", "ACTION".
	Command string
	// Text is everything after the first space following the tag, or
	// empty if the payload was tag-only.
	Text string
	// Reply is true when the frame arrived over NOTICE rather than
	// PRIVMSG, per the CTCP convention that replies use NOTICE.
	Reply bool
}

// Decode parses body (a PRIVMSG/NOTICE trailing parameter) as a CTCP
// frame. It returns ok=false if body is not a validly framed CTCP
// payload -- callers should treat that as "ordinary chat text", not an
// error. isNotice should be true when body came from a NOTICE command.
func Decode(body string, isNotice bool) (Event, bool) {
	if len(body) < 3 {
		return Event{}, false
	}
	if body[0] != Delim || body[len(body)-1] != Delim {
		return Event{}, false
	}

	text := body[1 : len(body)-1]

	s := strings.IndexByte(text, ' ')
	if s < 0 {
		if !isTag(text) {
			return Event{}, false
		}
		return Event{Command: text, Reply: isNotice}, true
	}

	if !isTag(text[:s]) {
		return Event{}, false
	}
	return Event{Command: text[:s], Text: text[s+1:], Reply: isNotice}, true
}

// Encode frames cmd/text as a CTCP payload, suitable as a PRIVMSG or
// NOTICE trailing parameter. Returns "" if cmd is empty.
func Encode(cmd, text string) string {
	if cmd == "" {
		return ""
	}
	out := string(Delim) + cmd
	if text != "" {
		out += " " + text
	}
	return out + string(Delim)
}

// isTag reports whether s consists only of A-Z and 0-9, the character
// set girc's CTCP tag validation allows.
func isTag(s string) bool {
	if s == "" {
		return false
	}
	for i := 0; i < len(s); i++ {
		if (s[i] < 'A' || s[i] > 'Z') && (s[i] < '0' || s[i] > '9') {
			return false
		}
	}
	return true
}
