// Copyright (c) Liam Stanley <me@liamstanley.io>. All rights reserved. Use
// of this source code is governed by the MIT license that can be found in
// the LICENSE file.

package ircweave

// CaseMapping selects which RFC 1459 §2.2 case-folding table an identifier
// is compared and hashed under. Two identifiers constructed with different
// mappings are never equal, even if their bytes match.
type CaseMapping uint8

const (
	// CaseMappingRFC1459 folds 'A'-'Z' plus "[]\~" to "{}|^", the mapping
	// used by almost every deployed ircd.
	CaseMappingRFC1459 CaseMapping = iota
	// CaseMappingStrictRFC1459 folds 'A'-'Z' plus "[]\" to "{}|", leaving
	// '~'/'^' alone.
	CaseMappingStrictRFC1459
	// CaseMappingASCII folds only 'A'-'Z' to 'a'-'z'.
	CaseMappingASCII
)

// foldTables are 256-byte lookup tables, one per CaseMapping, built once at
// init time the way the original rust irccase.rs table is laid out:
// identity except for the bytes each mapping folds.
var foldTables = [3]*[256]byte{}

func init() {
	for m := CaseMappingRFC1459; m <= CaseMappingASCII; m++ {
		var tbl [256]byte
		for i := range tbl {
			tbl[i] = byte(i)
		}
		for c := byte('A'); c <= 'Z'; c++ {
			tbl[c] = c + ('a' - 'A')
		}
		switch m {
		case CaseMappingRFC1459:
			tbl['['], tbl[']'], tbl['\\'], tbl['~'] = '{', '}', '|', '^'
		case CaseMappingStrictRFC1459:
			tbl['['], tbl[']'], tbl['\\'] = '{', '}', '|'
		case CaseMappingASCII:
			// no extra folding.
		}
		foldTables[m] = &tbl
	}
}

// foldByte returns the case-folded form of b under mapping m.
func (m CaseMapping) foldByte(b byte) byte {
	return foldTables[m][b]
}

// Fold returns a lower-cased copy of s under the receiver's case mapping.
func (m CaseMapping) Fold(s string) string {
	out := make([]byte, len(s))
	tbl := foldTables[m]
	for i := 0; i < len(s); i++ {
		out[i] = tbl[s[i]]
	}
	return string(out)
}

// Equal reports whether a and b are equal under the receiver's case
// mapping.
func (m CaseMapping) Equal(a, b string) bool {
	if len(a) != len(b) {
		return false
	}
	tbl := foldTables[m]
	for i := 0; i < len(a); i++ {
		if tbl[a[i]] != tbl[b[i]] {
			return false
		}
	}
	return true
}

// hashFNV computes an FNV-1a hash of s after folding each byte under m, so
// that hash_m(x) == hash_m(y) whenever x == y (under m), as required by the
// identifier hashing invariant.
func (m CaseMapping) hashFNV(s string) uint64 {
	const offset64 = 14695981039346656037
	const prime64 = 1099511628211

	tbl := foldTables[m]
	h := uint64(offset64)
	for i := 0; i < len(s); i++ {
		h ^= uint64(tbl[s[i]])
		h *= prime64
	}
	return h
}

// IsValidNick reports whether nick is a syntactically valid IRC nickname:
// the first byte must be a letter or special, subsequent bytes letters,
// digits, specials, or '-'. Length limits are left to the caller/server.
//
//	nickname = ( letter / special ) *( letter / digit / special / "-" )
//	special  = 0x5B-0x60 / 0x7B-0x7D
func IsValidNick(nick string) bool {
	if len(nick) == 0 {
		return false
	}
	if !isNickLead(nick[0]) {
		return false
	}
	for i := 1; i < len(nick); i++ {
		c := nick[i]
		if !isNickLead(c) && !(c >= '0' && c <= '9') && c != '-' {
			return false
		}
	}
	return true
}

func isNickLead(c byte) bool {
	return (c >= 'A' && c <= 'Z') || (c >= 'a' && c <= 'z') || (c >= 0x5B && c <= 0x60) || (c >= 0x7B && c <= 0x7D)
}

// IsValidChannel reports whether channel is a syntactically valid IRC
// channel identifier: non-empty, every byte outside
// {NUL, BEL, LF, CR, space, comma, colon}.
func IsValidChannel(channel string) bool {
	if len(channel) == 0 {
		return false
	}
	for i := 0; i < len(channel); i++ {
		switch channel[i] {
		case 0x00, 0x07, '\n', '\r', ' ', ',', ':':
			return false
		}
	}
	return true
}

// Nickname is a validated, case-mapped nickname identifier. Two Nicknames
// compare equal only when both their mapping and folded bytes match; Hash
// is consistent with Equal but does not mix in the mapping.
type Nickname struct {
	mapping CaseMapping
	raw     string
}

// NewNickname validates raw as a nickname and pairs it with mapping.
func NewNickname(raw string, mapping CaseMapping) (Nickname, error) {
	if !IsValidNick(raw) {
		return Nickname{}, &ViewError{Kind: ErrBadPrefix, Detail: "invalid nickname: " + raw}
	}
	return Nickname{mapping: mapping, raw: raw}, nil
}

// String returns the original-case bytes of the nickname.
func (n Nickname) String() string { return n.raw }

// Equal reports whether n and other denote the same nickname under n's
// case mapping. Nicknames built with different mappings are never equal.
func (n Nickname) Equal(other Nickname) bool {
	return n.mapping == other.mapping && n.mapping.Equal(n.raw, other.raw)
}

// Hash returns a hash consistent with Equal: n.Equal(o) implies
// n.Hash() == o.Hash().
func (n Nickname) Hash() uint64 { return n.mapping.hashFNV(n.raw) }

// ChannelName is a validated, case-mapped channel identifier. It is
// distinct from the tracked Channel state type in state.go: ChannelName is
// the wire-level identifier, Channel is the live tracker record keyed by
// ChannelId.
type ChannelName struct {
	mapping CaseMapping
	raw     string
}

// NewChannelName validates raw as a channel name and pairs it with mapping.
func NewChannelName(raw string, mapping CaseMapping) (ChannelName, error) {
	if !IsValidChannel(raw) {
		return ChannelName{}, &ViewError{Kind: ErrBadPrefix, Detail: "invalid channel: " + raw}
	}
	return ChannelName{mapping: mapping, raw: raw}, nil
}

// String returns the original-case bytes of the channel name.
func (c ChannelName) String() string { return c.raw }

// Equal reports whether c and other denote the same channel under c's case
// mapping.
func (c ChannelName) Equal(other ChannelName) bool {
	return c.mapping == other.mapping && c.mapping.Equal(c.raw, other.raw)
}

// Hash returns a hash consistent with Equal.
func (c ChannelName) Hash() uint64 { return c.mapping.hashFNV(c.raw) }
