// Copyright (c) Liam Stanley <me@liamstanley.io>. All rights reserved. Use
// of this source code is governed by the MIT license that can be found in
// the LICENSE file.

package ircweave

// Numeric reply codes this client recognizes, per spec §6's external
// interface table. girc's retrieved copy of cmds.go (the numeric-constant
// file referenced throughout builtin.go/handler.go) was not present in the
// pack, so these are authored directly from spec §6 and RFC 2812/IRCv3
// rather than adapted from a teacher source -- the set and meanings below
// are exactly what spec §6 enumerates.
const (
	RPL_WELCOME     = 1
	RPL_TOPIC       = 332
	RPL_TOPICWHOIS  = 333
	RPL_NAMREPLY    = 353
	RPL_ENDOFNAMES  = 366
	RPL_WHOREPLY    = 352
	RPL_ENDOFWHO    = 315
	ERR_NONICKGIVEN = 431
	ERR_NONICKNAME  = 432 // ERR_ERRONEUSNICKNAME
	ERR_NICKINUSE   = 433
	ERR_NICKCOLLIDE = 436
	ERR_UNAVAILRES  = 437
	ERR_RESTRICTED  = 484
	ERR_NOSUCHCHAN  = 403
	ERR_CANNOTJOIN  = 475 // ERR_BADCHANNELKEY
)

// registrationFailureNumerics is the closed set of numerics that end a
// Register attempt unsuccessfully, per spec §4.5.
var registrationFailureNumerics = map[int]RegistrationErrorKind{
	ERR_NONICKGIVEN: RegErrNoNicknameGiven,
	ERR_NONICKNAME:  RegErrErroneousNickname,
	ERR_NICKINUSE:   RegErrNickInUse,
	ERR_NICKCOLLIDE: RegErrNicknameCollision,
	ERR_UNAVAILRES:  RegErrUnavailableResource,
	ERR_RESTRICTED:  RegErrRestricted,
}

// joinBundleNumerics are the numerics a JoinBundler correlates into one
// JoinBundle event, per spec §4.3/§4.4.
var joinBundleNumerics = map[int]bool{
	RPL_TOPIC:      true,
	RPL_TOPICWHOIS: true,
	RPL_NAMREPLY:   true,
	RPL_ENDOFNAMES: true,
}

// whoBundleNumerics are the numerics a WhoBundler correlates into one
// WhoBundle event.
var whoBundleNumerics = map[int]bool{
	RPL_WHOREPLY: true,
	RPL_ENDOFWHO: true,
}
