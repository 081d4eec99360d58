// Copyright (c) Liam Stanley <me@liamstanley.io>. All rights reserved. Use
// of this source code is governed by the MIT license that can be found in
// the LICENSE file.

package ircweave

import "fmt"

// ParseErrorKind enumerates the ways NewIrcMsg can reject a raw line.
type ParseErrorKind uint8

const (
	ErrEncoding ParseErrorKind = iota
	ErrTruncated
	ErrTooManyArgs
	ErrUnexpectedByte
)

func (k ParseErrorKind) String() string {
	switch k {
	case ErrEncoding:
		return "encoding error"
	case ErrTruncated:
		return "truncated message"
	case ErrTooManyArgs:
		return "too many arguments"
	case ErrUnexpectedByte:
		return "unexpected byte"
	default:
		return "unknown parse error"
	}
}

// ParseError is returned by NewIrcMsg/NewIrcMsgBuf. It carries
// the offending raw bytes and a human-readable phase tag so a caller can
// recover the original input for logging.
type ParseError struct {
	Kind  ParseErrorKind
	Raw   []byte
	Phase string
	Byte  byte
}

func (e *ParseError) Error() string {
	if e.Kind == ErrUnexpectedByte {
		return fmt.Sprintf("irc: %s: byte %q in phase %s", e.Kind, e.Byte, e.Phase)
	}
	if e.Phase != "" {
		return fmt.Sprintf("irc: %s: phase %s", e.Kind, e.Phase)
	}
	return fmt.Sprintf("irc: %s", e.Kind)
}

// ConstructionErrorKind enumerates why an outgoing message builder failed.
type ConstructionErrorKind uint8

const (
	ErrInvalidTarget ConstructionErrorKind = iota
	ErrInvalidBody
	ErrBufferTooSmall
)

func (k ConstructionErrorKind) String() string {
	switch k {
	case ErrInvalidTarget:
		return "invalid target"
	case ErrInvalidBody:
		return "invalid body"
	case ErrBufferTooSmall:
		return "buffer too small"
	default:
		return "unknown construction error"
	}
}

// ConstructionError is returned by owned and stack message builders.
type ConstructionError struct {
	Kind  ConstructionErrorKind
	Value string
}

func (e *ConstructionError) Error() string {
	if e.Value == "" {
		return fmt.Sprintf("irc: %s", e.Kind)
	}
	return fmt.Sprintf("irc: %s: %q", e.Kind, e.Value)
}

// ViewErrorKind enumerates why a Parse* view constructor rejected an IrcMsg.
type ViewErrorKind uint8

const (
	ErrWrongCommand ViewErrorKind = iota
	ErrInsufficientArgs
	ErrBadPrefix
	ErrNonUTF8Field
)

func (k ViewErrorKind) String() string {
	switch k {
	case ErrWrongCommand:
		return "wrong command"
	case ErrInsufficientArgs:
		return "insufficient arguments"
	case ErrBadPrefix:
		return "bad prefix"
	case ErrNonUTF8Field:
		return "non-utf8 field"
	default:
		return "unknown view error"
	}
}

// ViewError is returned by the Parse* view constructors (ParseJoin,
// ParsePrivmsg, ...). It carries the
// original IrcMsg so the caller can recover the raw message.
type ViewError struct {
	Kind   ViewErrorKind
	Detail string
	Msg    *IrcMsg
}

func (e *ViewError) Error() string {
	if e.Detail == "" {
		return fmt.Sprintf("irc: %s", e.Kind)
	}
	return fmt.Sprintf("irc: %s: %s", e.Kind, e.Detail)
}

// FrameErrorKind enumerates stream framer failures.
type FrameErrorKind uint8

const (
	ErrFrameFull FrameErrorKind = iota
	ErrFrameMoreData
	ErrFrameParse
)

func (k FrameErrorKind) String() string {
	switch k {
	case ErrFrameFull:
		return "frame buffer full"
	case ErrFrameMoreData:
		return "need more data"
	case ErrFrameParse:
		return "frame parse error"
	default:
		return "unknown frame error"
	}
}

// FrameError is returned by Framer.Recv.
type FrameError struct {
	Kind  FrameErrorKind
	Cause *ParseError
}

func (e *FrameError) Error() string {
	if e.Cause != nil {
		return fmt.Sprintf("irc: %s: %v", e.Kind, e.Cause)
	}
	return fmt.Sprintf("irc: %s", e.Kind)
}

func (e *FrameError) Unwrap() error {
	if e.Cause == nil {
		return nil
	}
	return e.Cause
}

// RegistrationErrorKind enumerates the closed set of NICK/USER handshake
// failures from spec §4.5.
type RegistrationErrorKind uint8

const (
	RegErrNoNicknameGiven RegistrationErrorKind = iota
	RegErrInvalidNick
	RegErrNickInUse
	RegErrUnavailableResource
	RegErrErroneousNickname
	RegErrNicknameCollision
	RegErrRestricted
	RegErrStream
)

func (k RegistrationErrorKind) String() string {
	switch k {
	case RegErrNoNicknameGiven:
		return "no nickname given"
	case RegErrInvalidNick:
		return "invalid nickname"
	case RegErrNickInUse:
		return "nickname in use"
	case RegErrUnavailableResource:
		return "unavailable resource"
	case RegErrErroneousNickname:
		return "erroneous nickname"
	case RegErrNicknameCollision:
		return "nickname collision"
	case RegErrRestricted:
		return "restricted"
	case RegErrStream:
		return "transport error"
	default:
		return "unknown registration error"
	}
}

// RegistrationError is returned by Register when the handshake fails.
// NickInUse is recoverable: the caller may mutate the nick and retry.
type RegistrationError struct {
	Kind    RegistrationErrorKind
	Msg     *IrcMsg
	Cause   error
	Numeric int
}

func (e *RegistrationError) Error() string {
	if e.Kind == RegErrStream {
		return fmt.Sprintf("irc: registration: %s: %v", e.Kind, e.Cause)
	}
	return fmt.Sprintf("irc: registration: %s (numeric %d)", e.Kind, e.Numeric)
}

func (e *RegistrationError) Unwrap() error { return e.Cause }

// JoinError is the failure half of a JoinBundle event.
type JoinError struct {
	Channel string
	Numeric int
	Message string
}

func (e *JoinError) Error() string {
	return fmt.Sprintf("irc: join %s failed (numeric %d): %s", e.Channel, e.Numeric, e.Message)
}

// PatchGenerationError is returned by FrozenState.Patch when the diff's
// from_generation doesn't match the target state's current generation.
type PatchGenerationError struct {
	Have uint64
	Want uint64
}

func (e *PatchGenerationError) Error() string {
	return fmt.Sprintf("irc: state patch: generation mismatch: have %d, diff wants %d", e.Have, e.Want)
}
