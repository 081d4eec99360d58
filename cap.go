// Copyright (c) Liam Stanley <me@liamstanley.io>. All rights reserved. Use
// of this source code is governed by the MIT license that can be found in
// the LICENSE file.

package ircweave

import (
	"strings"

	"github.com/emersion/go-sasl"
)

// CapInfo describes one entry in the capability registry: the set of
// sub-values a server may advertise for it (e.g. SASL mechanism names),
// or nil when the capability is a bare flag.
type CapInfo struct {
	Values []string
}

// capRegistry is the static {name -> info} table this client knows how to
// negotiate, grounded on girc/cap.go's possibleCap map, trimmed and
// extended to the set spec §3 names.
var capRegistry = map[string]CapInfo{
	"multi-prefix":      {},
	"extended-join":     {},
	"account-notify":    {},
	"batch":             {},
	"invite-notify":     {},
	"tls":               {},
	"cap-notify":        {},
	"server-time":       {},
	"userhost-in-names": {},
	"sasl":              {},
}

// SupportsCap reports whether name is in the static capability registry.
func SupportsCap(name string) bool {
	_, ok := capRegistry[name]
	return ok
}

// ParseCapLS parses the trailing argument of a "CAP * LS" line into a
// {name -> values} map, grounded on girc/cap.go's parseCap.
func ParseCapLS(raw string) map[string][]string {
	out := make(map[string][]string)
	for _, part := range strings.Fields(raw) {
		if eq := strings.IndexByte(part, '='); eq > 0 && eq+1 < len(part) {
			out[part[:eq]] = strings.Split(part[eq+1:], ",")
		} else {
			out[strings.TrimSuffix(part, "=")] = nil
		}
	}
	return out
}

// NegotiateRequest selects, from the server's advertised LS set, every
// capability this client's registry also knows, and renders the "CAP REQ"
// trailing argument to send. Returns ("", false) when nothing overlaps, in
// which case the caller should send CAP END directly (girc's handleCAP
// does the same early-out).
func NegotiateRequest(advertised map[string][]string) (string, bool) {
	var want []string
	for name := range advertised {
		if SupportsCap(name) {
			want = append(want, name)
		}
	}
	if len(want) == 0 {
		return "", false
	}
	return strings.Join(want, " "), true
}

// CapState tracks the CAP negotiation dance's progress for one connection:
// which capabilities the server acknowledged, and which SASL mechanisms it
// advertised (parsed from the "sasl" capability's values, if present).
type CapState struct {
	Enabled       []string
	SASLMechanism []string
}

// ApplyAck records the trailing argument of a "CAP * ACK" line.
func (s *CapState) ApplyAck(raw string) {
	s.Enabled = append(s.Enabled, strings.Fields(raw)...)
}

// ApplyLS records SASL mechanism advertisement from a parsed LS map.
func (s *CapState) ApplyLS(advertised map[string][]string) {
	if mechs, ok := advertised["sasl"]; ok {
		s.SASLMechanism = mechs
	}
}

// HasSASLMechanism reports whether the server advertised mech (case
// sensitive, per the SASL IRCv3 spec's mechanism naming).
func (s *CapState) HasSASLMechanism(mech string) bool {
	for _, m := range s.SASLMechanism {
		if m == mech {
			return true
		}
	}
	return false
}

// NewSASLPlain builds a PLAIN-mechanism SASL client via go-sasl, rather
// than hand-rolling the authzid\0authcid\0passwd framing.
func NewSASLPlain(identity, username, password string) sasl.Client {
	return sasl.NewPlainClient(identity, username, password)
}

// NewSASLExternal builds an EXTERNAL-mechanism SASL client (certificate
// based authentication; identity is usually empty).
func NewSASLExternal(identity string) sasl.Client {
	return sasl.NewExternalClient(identity)
}
