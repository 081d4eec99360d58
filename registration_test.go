// Copyright (c) Liam Stanley <me@liamstanley.io>. All rights reserved. Use
// of this source code is governed by the MIT license that can be found in
// the LICENSE file.

package ircweave

import (
	"bytes"
	"errors"
	"testing"
)

// scriptedSource replays a fixed list of lines as MessageSource.Next,
// returning io.EOF-equivalent once exhausted.
type scriptedSource struct {
	lines []string
	pos   int
}

var errScriptExhausted = errors.New("scripted source exhausted")

func (s *scriptedSource) Next() (*IrcMsg, error) {
	if s.pos >= len(s.lines) {
		return nil, errScriptExhausted
	}
	line := s.lines[s.pos]
	s.pos++
	return NewIrcMsg([]byte(line))
}

func TestRegisterSucceedsOnWelcome(t *testing.T) {
	var sink bytes.Buffer
	src := &scriptedSource{lines: []string{
		":dummy.int NOTICE * :*** Looking up your hostname...",
		":dummy.int 001 fhjones :Welcome to the DUMMY IRC Network fhjones",
	}}

	msg, err := Register(&sink, src, RegistrationParams{Nick: "fhjones", User: "user", RealName: "Test User"})
	if err != nil {
		t.Fatalf("Register() error = %v", err)
	}
	if msg.Command() != "001" {
		t.Fatalf("Register() returned command %q, want 001", msg.Command())
	}

	written := sink.String()
	if !bytes.Contains(sink.Bytes(), []byte("NICK fhjones\r\n")) {
		t.Errorf("sink missing NICK line, got %q", written)
	}
	if !bytes.Contains(sink.Bytes(), []byte("USER user")) {
		t.Errorf("sink missing USER line, got %q", written)
	}
}

func TestRegisterSendsPassFirst(t *testing.T) {
	var sink bytes.Buffer
	src := &scriptedSource{lines: []string{
		":dummy.int 001 fhjones :Welcome",
	}}

	_, err := Register(&sink, src, RegistrationParams{Nick: "fhjones", User: "user", Pass: "secret"})
	if err != nil {
		t.Fatalf("Register() error = %v", err)
	}
	if !bytes.HasPrefix(sink.Bytes(), []byte("PASS secret\r\n")) {
		t.Fatalf("expected PASS to be the first line written, got %q", sink.String())
	}
}

func TestRegisterFailsOnNickInUse(t *testing.T) {
	var sink bytes.Buffer
	src := &scriptedSource{lines: []string{
		":dummy.int 433 * fhjones :Nickname is already in use.",
	}}

	_, err := Register(&sink, src, RegistrationParams{Nick: "fhjones", User: "user"})
	if err == nil {
		t.Fatal("expected an error for ERR_NICKNAMEINUSE")
	}
	var regErr *RegistrationError
	if !errors.As(err, &regErr) || regErr.Kind != RegErrNickInUse {
		t.Fatalf("error = %#v, want RegErrNickInUse", err)
	}
}

func TestNickInUseRetrySucceeds(t *testing.T) {
	var sink bytes.Buffer
	src := &scriptedSource{lines: []string{
		":dummy.int 001 fhjones_ :Welcome",
	}}

	msg, err := NickInUseRetry(&sink, src, "fhjones_")
	if err != nil {
		t.Fatalf("NickInUseRetry() error = %v", err)
	}
	if msg.Command() != "001" {
		t.Fatalf("got command %q, want 001", msg.Command())
	}
	if !bytes.Equal(sink.Bytes(), []byte("NICK fhjones_\r\n")) {
		t.Fatalf("sink = %q, want just the NICK line", sink.String())
	}
}

func TestRegisterIgnoresPreRegistrationNotices(t *testing.T) {
	var sink bytes.Buffer
	src := &scriptedSource{lines: []string{
		":dummy.int NOTICE * :*** Looking up your hostname...",
		":dummy.int NOTICE * :*** Checking Ident",
		":dummy.int 375 fhjones :- dummy.int Message of the Day -",
		":dummy.int 001 fhjones :Welcome",
	}}

	_, err := Register(&sink, src, RegistrationParams{Nick: "fhjones", User: "user"})
	if err != nil {
		t.Fatalf("Register() error = %v", err)
	}
}
