// Copyright (c) Liam Stanley <me@liamstanley.io>. All rights reserved. Use
// of this source code is governed by the MIT license that can be found in
// the LICENSE file.

package ircweave

import "io"

// RegistrationParams are the NICK/USER fields sent at the start of a
// connection, per spec §4.5.
type RegistrationParams struct {
	Nick     string
	User     string
	RealName string
	Mode     int
	Pass     string
}

// MessageSource yields the next parsed message from a connection. It is
// the minimal contract Register needs from whatever reads the
// transport -- usually a small adapter over a socket (Framer has Recv,
// not Next, so it needs wrapping; cmd/ircweave-demo's connReader reads
// lines directly), but any source of messages works, which keeps
// Register testable against a canned
// in-memory transcript (see registration_test.go).
type MessageSource interface {
	Next() (*IrcMsg, error)
}

// Register performs the USER/NICK handshake over sink/src: it writes the
// initial PASS (if set)/USER/NICK lines, then reads messages from src
// until it sees either RPL_WELCOME (success) or one of the closed set of
// registration-failure numerics from spec §4.5. On ERR_NICKNAMEINUSE the
// caller may retry with NickInUseRetry, mutating only the nickname.
func Register(sink io.Writer, src MessageSource, params RegistrationParams) (*IrcMsg, error) {
	if params.Pass != "" {
		if _, err := sink.Write(passLine(params.Pass)); err != nil {
			return nil, &RegistrationError{Kind: RegErrStream, Cause: err}
		}
	}
	if err := sendUserNick(sink, params); err != nil {
		return nil, err
	}
	return awaitRegistration(src)
}

// NickInUseRetry resends just a new NICK line and resumes waiting for
// registration to complete, for use after Register returns a
// *RegistrationError with Kind RegErrNickInUse.
func NickInUseRetry(sink io.Writer, src MessageSource, newNick string) (*IrcMsg, error) {
	buf, err := BuildNick(newNick)
	if err != nil {
		return nil, &RegistrationError{Kind: RegErrInvalidNick}
	}
	if _, err := sink.Write(appendCRLF(buf.Bytes())); err != nil {
		return nil, &RegistrationError{Kind: RegErrStream, Cause: err}
	}
	return awaitRegistration(src)
}

func passLine(pass string) []byte {
	buf, _ := BuildOwned("", "PASS", []string{pass}, "", false)
	return appendCRLF(buf.Bytes())
}

func sendUserNick(sink io.Writer, params RegistrationParams) error {
	userBuf, err := BuildUser(params.User, params.Mode, params.RealName)
	if err != nil {
		return &RegistrationError{Kind: RegErrStream, Cause: err}
	}
	if _, err := sink.Write(appendCRLF(userBuf.Bytes())); err != nil {
		return &RegistrationError{Kind: RegErrStream, Cause: err}
	}

	nickBuf, err := BuildNick(params.Nick)
	if err != nil {
		return &RegistrationError{Kind: RegErrInvalidNick}
	}
	if _, err := sink.Write(appendCRLF(nickBuf.Bytes())); err != nil {
		return &RegistrationError{Kind: RegErrStream, Cause: err}
	}
	return nil
}

func appendCRLF(line []byte) []byte {
	out := make([]byte, len(line)+2)
	copy(out, line)
	out[len(line)] = '\r'
	out[len(line)+1] = '\n'
	return out
}

// awaitRegistration reads messages until a terminal numeric, ignoring
// everything else (servers commonly interleave NOTICE AUTH and similar
// pre-registration chatter).
func awaitRegistration(src MessageSource) (*IrcMsg, error) {
	for {
		msg, err := src.Next()
		if err != nil {
			return nil, &RegistrationError{Kind: RegErrStream, Cause: err}
		}

		num, err := ParseNumeric(msg)
		if err != nil {
			continue
		}

		if int(num.Code) == RPL_WELCOME {
			return msg, nil
		}

		if kind, ok := registrationFailureNumerics[int(num.Code)]; ok {
			return nil, &RegistrationError{Kind: kind, Msg: msg, Numeric: int(num.Code)}
		}
	}
}
