// Copyright (c) Liam Stanley <me@liamstanley.io>. All rights reserved. Use
// of this source code is governed by the MIT license that can be found in
// the LICENSE file.

package ircweave

import "testing"

func parseOrFatal(t *testing.T, raw string) *IrcMsg {
	t.Helper()
	msg, err := NewIrcMsg([]byte(raw))
	if err != nil {
		t.Fatalf("NewIrcMsg(%q) error = %v", raw, err)
	}
	return msg
}

func TestParsePrivmsg(t *testing.T) {
	v, err := ParsePrivmsg(parseOrFatal(t, ":nick!user@host PRIVMSG #chan :hello there"))
	if err != nil {
		t.Fatalf("ParsePrivmsg() error = %v", err)
	}
	if v.Target != "#chan" || v.Body != "hello there" {
		t.Fatalf("got Target=%q Body=%q", v.Target, v.Body)
	}
	if v.Source.Nick != "nick" {
		t.Errorf("Source.Nick = %q, want nick", v.Source.Nick)
	}
}

func TestParsePrivmsgRequiresFullPrefix(t *testing.T) {
	_, err := ParsePrivmsg(parseOrFatal(t, ":nick PRIVMSG #chan :hi"))
	if err == nil {
		t.Fatal("expected error for a bare-nick prefix")
	}
	var ve *ViewError
	if !asViewError(err, &ve) || ve.Kind != ErrBadPrefix {
		t.Fatalf("error = %#v, want ErrBadPrefix", err)
	}
}

func TestParsePrivmsgWrongCommand(t *testing.T) {
	_, err := ParsePrivmsg(parseOrFatal(t, ":nick!user@host NOTICE #chan :hi"))
	var ve *ViewError
	if !asViewError(err, &ve) || ve.Kind != ErrWrongCommand {
		t.Fatalf("error = %#v, want ErrWrongCommand", err)
	}
}

func TestParsePrivmsgCTCP(t *testing.T) {
	v, err := ParsePrivmsg(parseOrFatal(t, ":nick!user@host PRIVMSG #chan :\x01ACTION waves\x01"))
	if err != nil {
		t.Fatalf("ParsePrivmsg() error = %v", err)
	}
	ev, ok := v.CTCP()
	if !ok {
		t.Fatal("CTCP() ok = false, want true")
	}
	if ev.Command != "ACTION" || ev.Text != "waves" {
		t.Fatalf("CTCP() = %+v", ev)
	}
}

func TestParseJoin(t *testing.T) {
	v, err := ParseJoin(parseOrFatal(t, ":nick!user@host JOIN #chan"))
	if err != nil {
		t.Fatalf("ParseJoin() error = %v", err)
	}
	if v.Channel != "#chan" {
		t.Errorf("Channel = %q, want #chan", v.Channel)
	}
}

func TestParsePartWithAndWithoutMessage(t *testing.T) {
	withMsg, err := ParsePart(parseOrFatal(t, ":nick!user@host PART #chan :later"))
	if err != nil || !withMsg.HasMsg || withMsg.Message != "later" {
		t.Fatalf("ParsePart() with message = %+v, err = %v", withMsg, err)
	}

	bare, err := ParsePart(parseOrFatal(t, ":nick!user@host PART #chan"))
	if err != nil || bare.HasMsg {
		t.Fatalf("ParsePart() bare = %+v, err = %v", bare, err)
	}
}

func TestParseKick(t *testing.T) {
	v, err := ParseKick(parseOrFatal(t, ":op!user@host KICK #chan baduser :spamming"))
	if err != nil {
		t.Fatalf("ParseKick() error = %v", err)
	}
	if v.Nick != "baduser" || v.Comment != "spamming" {
		t.Fatalf("got %+v", v)
	}
}

func TestParseMode(t *testing.T) {
	v, err := ParseMode(parseOrFatal(t, ":op!user@host MODE #chan +ov nick1 nick2"))
	if err != nil {
		t.Fatalf("ParseMode() error = %v", err)
	}
	if v.ModeStr != "+ov" || len(v.ModeArgs) != 2 {
		t.Fatalf("got %+v", v)
	}
}

func TestParseNickRejectsInvalid(t *testing.T) {
	_, err := ParseNick(parseOrFatal(t, ":old!user@host NICK ###bad"))
	if err == nil {
		t.Fatal("expected error for invalid new nick")
	}
}

func TestParseNumeric(t *testing.T) {
	v, err := ParseNumeric(parseOrFatal(t, ":dummy.int 001 nick :Welcome"))
	if err != nil {
		t.Fatalf("ParseNumeric() error = %v", err)
	}
	if v.Code != 1 || v.Client() != "nick" || v.Text() != "Welcome" {
		t.Fatalf("got Code=%d Client=%q Text=%q", v.Code, v.Client(), v.Text())
	}
}

func TestParseNumericRejectsNonNumericCommand(t *testing.T) {
	_, err := ParseNumeric(parseOrFatal(t, "PING :token"))
	if err == nil {
		t.Fatal("expected error for non-numeric command")
	}
}

func TestParseCapSubcommands(t *testing.T) {
	tests := []struct {
		raw  string
		want CapSubcommand
	}{
		{"CAP * LS :multi-prefix sasl", CapLS},
		{"CAP * ACK :multi-prefix", CapAck},
		{"CAP * NAK :sasl", CapNak},
	}
	for _, tt := range tests {
		v, err := ParseCap(parseOrFatal(t, tt.raw))
		if err != nil {
			t.Fatalf("ParseCap(%q) error = %v", tt.raw, err)
		}
		if v.Subcommand != tt.want {
			t.Errorf("ParseCap(%q).Subcommand = %q, want %q", tt.raw, v.Subcommand, tt.want)
		}
	}
}

func TestParseCapUnknownSubcommand(t *testing.T) {
	_, err := ParseCap(parseOrFatal(t, "CAP * BOGUS :x"))
	if err == nil {
		t.Fatal("expected error for an unknown CAP subcommand")
	}
}

func TestParsePingPong(t *testing.T) {
	ping, err := ParsePing(parseOrFatal(t, "PING :12345"))
	if err != nil || ping.Token != "12345" {
		t.Fatalf("ParsePing() = %+v, err = %v", ping, err)
	}

	pong, err := ParsePong(parseOrFatal(t, "PONG :12345"))
	if err != nil || pong.Token != "12345" {
		t.Fatalf("ParsePong() = %+v, err = %v", pong, err)
	}
}

func asViewError(err error, target **ViewError) bool {
	ve, ok := err.(*ViewError)
	if !ok {
		return false
	}
	*target = ve
	return true
}
