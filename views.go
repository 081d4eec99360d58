// Copyright (c) Liam Stanley <me@liamstanley.io>. All rights reserved. Use
// of this source code is governed by the MIT license that can be found in
// the LICENSE file.

package ircweave

import (
	"strconv"
	"unicode/utf8"

	"github.com/ircweave/ircweave/ctcp"
)

// TypedView is the shared contract every command-specific view implements,
// per spec Design Notes ("distinct tag types with a shared validate/as_raw
// contract rather than a class hierarchy"). Views are immutable and never
// mutate the message. They are not allocation-free: each Parse* call
// allocates the view struct and copies the fields it exposes into strings.
type TypedView interface {
	// AsRaw returns the underlying IrcMsg this view was validated from.
	AsRaw() *IrcMsg
}

// requireHostmask rejects msg unless it carries a full nick!user@host
// prefix. The views for commands that, per spec §4.1(c), need one when
// server-sourced call it.
func requireHostmask(msg *IrcMsg) error {
	pfx, ok := msg.Prefix()
	if !ok || !pfx.IsHostmask() {
		return &ViewError{Kind: ErrBadPrefix, Msg: msg, Detail: "expected full nick!user@host prefix"}
	}
	return nil
}

func checkUTF8(msg *IrcMsg, field, s string) error {
	if !utf8.ValidString(s) {
		return &ViewError{Kind: ErrNonUTF8Field, Msg: msg, Detail: field}
	}
	return nil
}

func wrongCommand(msg *IrcMsg, want string) error {
	return &ViewError{Kind: ErrWrongCommand, Msg: msg, Detail: "expected " + want + ", got " + msg.Command()}
}

func insufficientArgs(msg *IrcMsg, want int) error {
	return &ViewError{Kind: ErrInsufficientArgs, Msg: msg, Detail: "need at least " + strconv.Itoa(want) + " args"}
}

// Join is a typed view over a JOIN message.
type Join struct {
	msg     *IrcMsg
	Source  Prefix
	Channel string
}

// ParseJoin validates msg as a server-relayed JOIN.
func ParseJoin(msg *IrcMsg) (*Join, error) {
	if !msg.EqualCommand("JOIN") {
		return nil, wrongCommand(msg, "JOIN")
	}
	if msg.NumArgs() < 1 {
		return nil, insufficientArgs(msg, 1)
	}
	if err := requireHostmask(msg); err != nil {
		return nil, err
	}
	pfx, _ := msg.Prefix()
	channel := msg.ArgString(0)
	if err := checkUTF8(msg, "channel", channel); err != nil {
		return nil, err
	}
	return &Join{msg: msg, Source: pfx, Channel: channel}, nil
}

func (v *Join) AsRaw() *IrcMsg { return v.msg }

// Part is a typed view over a PART message.
type Part struct {
	msg     *IrcMsg
	Source  Prefix
	Channel string
	Message string
	HasMsg  bool
}

func ParsePart(msg *IrcMsg) (*Part, error) {
	if !msg.EqualCommand("PART") {
		return nil, wrongCommand(msg, "PART")
	}
	if msg.NumArgs() < 1 {
		return nil, insufficientArgs(msg, 1)
	}
	if err := requireHostmask(msg); err != nil {
		return nil, err
	}
	pfx, _ := msg.Prefix()
	p := &Part{msg: msg, Source: pfx, Channel: msg.ArgString(0)}
	if msg.NumArgs() > 1 {
		p.Message = msg.ArgString(msg.NumArgs() - 1)
		p.HasMsg = true
		if err := checkUTF8(msg, "message", p.Message); err != nil {
			return nil, err
		}
	}
	return p, nil
}

func (v *Part) AsRaw() *IrcMsg { return v.msg }

// Kick is a typed view over a KICK message.
type Kick struct {
	msg     *IrcMsg
	Source  Prefix
	Channel string
	Nick    string
	Comment string
	HasMsg  bool
}

func ParseKick(msg *IrcMsg) (*Kick, error) {
	if !msg.EqualCommand("KICK") {
		return nil, wrongCommand(msg, "KICK")
	}
	if msg.NumArgs() < 2 {
		return nil, insufficientArgs(msg, 2)
	}
	if err := requireHostmask(msg); err != nil {
		return nil, err
	}
	pfx, _ := msg.Prefix()
	k := &Kick{msg: msg, Source: pfx, Channel: msg.ArgString(0), Nick: msg.ArgString(1)}
	if msg.NumArgs() > 2 {
		k.Comment = msg.ArgString(msg.NumArgs() - 1)
		k.HasMsg = true
		if err := checkUTF8(msg, "comment", k.Comment); err != nil {
			return nil, err
		}
	}
	return k, nil
}

func (v *Kick) AsRaw() *IrcMsg { return v.msg }

// Mode is a typed view over a MODE message.
type Mode struct {
	msg      *IrcMsg
	Source   Prefix
	Target   string
	ModeStr  string
	ModeArgs []string
}

func ParseMode(msg *IrcMsg) (*Mode, error) {
	if !msg.EqualCommand("MODE") {
		return nil, wrongCommand(msg, "MODE")
	}
	if msg.NumArgs() < 1 {
		return nil, insufficientArgs(msg, 1)
	}
	if err := requireHostmask(msg); err != nil {
		return nil, err
	}
	pfx, _ := msg.Prefix()
	m := &Mode{msg: msg, Source: pfx, Target: msg.ArgString(0)}
	if msg.NumArgs() > 1 {
		m.ModeStr = msg.ArgString(1)
	}
	for i := 2; i < msg.NumArgs(); i++ {
		m.ModeArgs = append(m.ModeArgs, msg.ArgString(i))
	}
	return m, nil
}

func (v *Mode) AsRaw() *IrcMsg { return v.msg }

// Nick is a typed view over a NICK message.
type Nick struct {
	msg     *IrcMsg
	Source  Prefix
	NewNick string
}

func ParseNick(msg *IrcMsg) (*Nick, error) {
	if !msg.EqualCommand("NICK") {
		return nil, wrongCommand(msg, "NICK")
	}
	if msg.NumArgs() < 1 {
		return nil, insufficientArgs(msg, 1)
	}
	pfx, _ := msg.Prefix()
	newNick := msg.ArgString(0)
	if !IsValidNick(newNick) {
		return nil, &ViewError{Kind: ErrInsufficientArgs, Msg: msg, Detail: "invalid new nick"}
	}
	return &Nick{msg: msg, Source: pfx, NewNick: newNick}, nil
}

func (v *Nick) AsRaw() *IrcMsg { return v.msg }

// Notice is a typed view over a NOTICE message.
type Notice struct {
	msg    *IrcMsg
	Source Prefix
	Target string
	Body   string
}

func ParseNotice(msg *IrcMsg) (*Notice, error) {
	if !msg.EqualCommand("NOTICE") {
		return nil, wrongCommand(msg, "NOTICE")
	}
	if msg.NumArgs() < 2 {
		return nil, insufficientArgs(msg, 2)
	}
	if err := requireHostmask(msg); err != nil {
		return nil, err
	}
	pfx, _ := msg.Prefix()
	body := msg.ArgString(msg.NumArgs() - 1)
	if err := checkUTF8(msg, "body", body); err != nil {
		return nil, err
	}
	return &Notice{msg: msg, Source: pfx, Target: msg.ArgString(0), Body: body}, nil
}

// CTCP reports whether Body carries a CTCP reply frame, stripping the
// delimiters.
func (v *Notice) CTCP() (ctcp.Event, bool) {
	return ctcp.Decode(v.Body, true)
}

func (v *Notice) AsRaw() *IrcMsg { return v.msg }

// Ping is a typed view over a PING message.
type Ping struct {
	msg   *IrcMsg
	Token string
}

func ParsePing(msg *IrcMsg) (*Ping, error) {
	if !msg.EqualCommand("PING") {
		return nil, wrongCommand(msg, "PING")
	}
	if msg.NumArgs() < 1 {
		return nil, insufficientArgs(msg, 1)
	}
	return &Ping{msg: msg, Token: msg.ArgString(msg.NumArgs() - 1)}, nil
}

func (v *Ping) AsRaw() *IrcMsg { return v.msg }

// Pong is a typed view over a PONG message.
type Pong struct {
	msg   *IrcMsg
	Token string
}

func ParsePong(msg *IrcMsg) (*Pong, error) {
	if !msg.EqualCommand("PONG") {
		return nil, wrongCommand(msg, "PONG")
	}
	if msg.NumArgs() < 1 {
		return nil, insufficientArgs(msg, 1)
	}
	return &Pong{msg: msg, Token: msg.ArgString(msg.NumArgs() - 1)}, nil
}

func (v *Pong) AsRaw() *IrcMsg { return v.msg }

// Privmsg is a typed view over a PRIVMSG message. S1 in spec §8 exercises
// this directly.
type Privmsg struct {
	msg    *IrcMsg
	Source Prefix
	Target string
	Body   string
}

func ParsePrivmsg(msg *IrcMsg) (*Privmsg, error) {
	if !msg.EqualCommand("PRIVMSG") {
		return nil, wrongCommand(msg, "PRIVMSG")
	}
	if msg.NumArgs() < 2 {
		return nil, insufficientArgs(msg, 2)
	}
	if err := requireHostmask(msg); err != nil {
		return nil, err
	}
	pfx, _ := msg.Prefix()
	body := msg.ArgString(msg.NumArgs() - 1)
	// Body must be valid UTF-8. A non-UTF-8 body fails with
	// ErrNonUTF8Field; the raw bytes stay reachable via the error's Msg.
	if err := checkUTF8(msg, "body", body); err != nil {
		return nil, err
	}
	return &Privmsg{msg: msg, Source: pfx, Target: msg.ArgString(0), Body: body}, nil
}

// RawBody returns the message body's bytes without copying. ParsePrivmsg
// has already rejected non-UTF-8 bodies, so these bytes are valid UTF-8.
func (v *Privmsg) RawBody() []byte { return v.msg.Arg(v.msg.NumArgs() - 1) }

// CTCP reports whether Body carries a CTCP frame (e.g. ACTION, VERSION),
// stripping the delimiters. Ordinary chat text reports ok=false.
func (v *Privmsg) CTCP() (ctcp.Event, bool) {
	return ctcp.Decode(v.Body, false)
}

func (v *Privmsg) AsRaw() *IrcMsg { return v.msg }

// Quit is a typed view over a QUIT message.
type Quit struct {
	msg     *IrcMsg
	Source  Prefix
	Message string
	HasMsg  bool
}

func ParseQuit(msg *IrcMsg) (*Quit, error) {
	if !msg.EqualCommand("QUIT") {
		return nil, wrongCommand(msg, "QUIT")
	}
	pfx, _ := msg.Prefix()
	q := &Quit{msg: msg, Source: pfx}
	if msg.NumArgs() > 0 {
		q.Message = msg.ArgString(msg.NumArgs() - 1)
		q.HasMsg = true
	}
	return q, nil
}

func (v *Quit) AsRaw() *IrcMsg { return v.msg }

// Topic is a typed view over a TOPIC message.
type Topic struct {
	msg     *IrcMsg
	Source  Prefix
	Channel string
	Text    string
	HasText bool
}

func ParseTopic(msg *IrcMsg) (*Topic, error) {
	if !msg.EqualCommand("TOPIC") {
		return nil, wrongCommand(msg, "TOPIC")
	}
	if msg.NumArgs() < 1 {
		return nil, insufficientArgs(msg, 1)
	}
	if err := requireHostmask(msg); err != nil {
		return nil, err
	}
	pfx, _ := msg.Prefix()
	t := &Topic{msg: msg, Source: pfx, Channel: msg.ArgString(0)}
	if msg.NumArgs() > 1 {
		t.Text = msg.ArgString(msg.NumArgs() - 1)
		t.HasText = true
		if err := checkUTF8(msg, "text", t.Text); err != nil {
			return nil, err
		}
	}
	return t, nil
}

func (v *Topic) AsRaw() *IrcMsg { return v.msg }

// Invite is a typed view over an INVITE message.
type Invite struct {
	msg     *IrcMsg
	Source  Prefix
	Nick    string
	Channel string
}

func ParseInvite(msg *IrcMsg) (*Invite, error) {
	if !msg.EqualCommand("INVITE") {
		return nil, wrongCommand(msg, "INVITE")
	}
	if msg.NumArgs() < 2 {
		return nil, insufficientArgs(msg, 2)
	}
	if err := requireHostmask(msg); err != nil {
		return nil, err
	}
	pfx, _ := msg.Prefix()
	return &Invite{msg: msg, Source: pfx, Nick: msg.ArgString(0), Channel: msg.ArgString(1)}, nil
}

func (v *Invite) AsRaw() *IrcMsg { return v.msg }

// Numeric is a typed view over a 3-digit numeric reply.
type Numeric struct {
	msg  *IrcMsg
	Code uint16
}

func ParseNumeric(msg *IrcMsg) (*Numeric, error) {
	code, err := strconv.ParseUint(msg.Command(), 10, 16)
	if err != nil || len(msg.Command()) != 3 {
		return nil, &ViewError{Kind: ErrWrongCommand, Msg: msg, Detail: "not a 3-digit numeric"}
	}
	return &Numeric{msg: msg, Code: uint16(code)}, nil
}

func (v *Numeric) AsRaw() *IrcMsg { return v.msg }

// Client returns the numeric's first argument, conventionally the target
// client's current nickname.
func (v *Numeric) Client() string {
	if v.msg.NumArgs() == 0 {
		return ""
	}
	return v.msg.ArgString(0)
}

// Text returns the numeric's trailing text, if present.
func (v *Numeric) Text() string {
	if v.msg.NumArgs() == 0 {
		return ""
	}
	return v.msg.ArgString(v.msg.NumArgs() - 1)
}

// CapSubcommand enumerates the CAP negotiation subcommands spec §4.1/§6
// names.
type CapSubcommand string

const (
	CapLS   CapSubcommand = "LS"
	CapList CapSubcommand = "LIST"
	CapReq  CapSubcommand = "REQ"
	CapAck  CapSubcommand = "ACK"
	CapNak  CapSubcommand = "NAK"
	CapEnd  CapSubcommand = "END"
)

// Cap is a typed view over a CAP message.
type Cap struct {
	msg        *IrcMsg
	Subcommand CapSubcommand
	Target     string
	Trailing   string
	HasTrail   bool
}

func ParseCap(msg *IrcMsg) (*Cap, error) {
	if !msg.EqualCommand("CAP") {
		return nil, wrongCommand(msg, "CAP")
	}
	if msg.NumArgs() < 2 {
		return nil, insufficientArgs(msg, 2)
	}
	sub := CapSubcommand(upperASCII(msg.ArgString(1)))
	switch sub {
	case CapLS, CapList, CapReq, CapAck, CapNak, CapEnd:
	default:
		return nil, &ViewError{Kind: ErrInsufficientArgs, Msg: msg, Detail: "unknown CAP subcommand"}
	}
	c := &Cap{msg: msg, Subcommand: sub, Target: msg.ArgString(0)}
	if msg.NumArgs() > 2 {
		c.Trailing = msg.ArgString(msg.NumArgs() - 1)
		c.HasTrail = true
	}
	return c, nil
}

func (v *Cap) AsRaw() *IrcMsg { return v.msg }

func upperASCII(s string) string {
	b := []byte(s)
	for i, c := range b {
		if c >= 'a' && c <= 'z' {
			b[i] = c - ('a' - 'A')
		}
	}
	return string(b)
}
