// Copyright (c) Liam Stanley <me@liamstanley.io>. All rights reserved. Use
// of this source code is governed by the MIT license that can be found in
// the LICENSE file.

package ircweave

import (
	"strconv"
	"sync"

	cmap "github.com/orcaman/concurrent-map/v2"
)

// UserId identifies a tracked user for the lifetime of a State, stable
// across nick changes. Grounded on original_source/src/state.rs's
// UserId(u64) newtype.
type UserId uint64

// ChannelId identifies a tracked channel for the lifetime of a State,
// stable across any rename (IRC has none, but the indirection still
// decouples storage from display name the way the original does).
type ChannelId uint64

// User is a tracked IRC user: their current full prefix, and the set of
// channels (by id) the tracker has observed them in.
type User struct {
	ID       UserId
	Prefix   Prefix
	Channels map[ChannelId]struct{}
}

func (u *User) clone() *User {
	nu := &User{ID: u.ID, Prefix: u.Prefix, Channels: make(map[ChannelId]struct{}, len(u.Channels))}
	for id := range u.Channels {
		nu.Channels[id] = struct{}{}
	}
	return nu
}

// equal reports field-for-field equality, used by FrozenState.Diff.
func (u *User) equal(o *User) bool {
	if u.Prefix != o.Prefix || len(u.Channels) != len(o.Channels) {
		return false
	}
	for id := range u.Channels {
		if _, ok := o.Channels[id]; !ok {
			return false
		}
	}
	return true
}

// Channel is a tracked IRC channel: its topic and the set of users (by
// id) the tracker believes are joined.
type Channel struct {
	ID    ChannelId
	Name  string
	Topic string
	Users map[UserId]struct{}
}

func (c *Channel) clone() *Channel {
	nc := &Channel{ID: c.ID, Name: c.Name, Topic: c.Topic, Users: make(map[UserId]struct{}, len(c.Users))}
	for id := range c.Users {
		nc.Users[id] = struct{}{}
	}
	return nc
}

func (c *Channel) equal(o *Channel) bool {
	if c.Name != o.Name || c.Topic != o.Topic || len(c.Users) != len(o.Users) {
		return false
	}
	for id := range c.Users {
		if _, ok := o.Users[id]; !ok {
			return false
		}
	}
	return true
}

// UserDiffCmdKind enumerates the per-user patch operations.
type UserDiffCmdKind uint8

const (
	UserDiffChangePrefix UserDiffCmdKind = iota
	UserDiffAddChannel
	UserDiffRemoveChannel
)

// UserDiffCmd is one step of a per-user diff, per
// original_source/src/state.rs's UserDiffCmd enum.
type UserDiffCmd struct {
	Kind      UserDiffCmdKind
	Prefix    Prefix
	ChannelId ChannelId
}

// ChannelDiffCmdKind enumerates the per-channel patch operations.
type ChannelDiffCmdKind uint8

const (
	ChannelDiffChangeTopic ChannelDiffCmdKind = iota
	ChannelDiffAddUser
	ChannelDiffRemoveUser
)

// ChannelDiffCmd is one step of a per-channel diff.
type ChannelDiffCmd struct {
	Kind   ChannelDiffCmdKind
	Topic  string
	UserId UserId
}

// StateCommandKind enumerates the top-level patch operations a StateDiff
// carries, per original_source/src/state.rs's StateCommand enum.
type StateCommandKind uint8

const (
	CmdCreateUser StateCommandKind = iota
	CmdUpdateUser
	CmdRemoveUser
	CmdCreateChannel
	CmdUpdateChannel
	CmdRemoveChannel
	CmdUpdateSelfNick
	CmdSetGeneration
)

// StateCommand is one operation within a StateDiff.
type StateCommand struct {
	Kind        StateCommandKind
	UserId      UserId
	ChannelId   ChannelId
	UserInfo    *User
	ChannelInfo *Channel
	UserDiff    []UserDiffCmd
	ChannelDiff []ChannelDiffCmd
	NewNick     string
	Generation  uint64
}

// StateDiff is a generation-stamped sequence of commands that carries one
// State forward to another. Patch rejects a diff whose FromGeneration
// doesn't match the target's current generation.
type StateDiff struct {
	FromGeneration uint64
	ToGeneration   uint64
	Commands       []StateCommand
}

// State is the live tracker: every user and channel this connection has
// observed, cross-linked so a channel knows its members and a user knows
// their channels. Grounded throughout on original_source/src/state.rs,
// generalized from single-threaded HashMaps to concurrent-map's sharded
// maps since, unlike the original's single-owner-thread model, this
// tracker is meant to be read from multiple goroutines concurrently (the
// way girc/state.go's cmap-backed state is used).
type State struct {
	mapping CaseMapping

	mu         sync.Mutex
	userSeq    uint64
	channelSeq uint64
	selfNick   string
	selfID     UserId
	generation uint64

	userMap    cmap.ConcurrentMap[string, UserId]
	users      cmap.ConcurrentMap[string, *User]
	channelMap cmap.ConcurrentMap[string, ChannelId]
	channels   cmap.ConcurrentMap[string, *Channel]
}

// NewState constructs an empty tracker. mapping controls how identifiers
// (nicks, channel names) are folded for lookup.
func NewState(mapping CaseMapping) *State {
	return &State{
		mapping:    mapping,
		userSeq:    1,
		userMap:    cmap.New[UserId](),
		users:      cmap.New[*User](),
		channelMap: cmap.New[ChannelId](),
		channels:   cmap.New[*Channel](),
	}
}

func (s *State) fold(id string) string { return s.mapping.Fold(id) }

func userKey(id UserId) string       { return strconv.FormatUint(uint64(id), 10) }
func channelKey(id ChannelId) string { return strconv.FormatUint(uint64(id), 10) }

// IdentifyChannel resolves a channel name to its stable ChannelId.
func (s *State) IdentifyChannel(name string) (ChannelId, bool) {
	return s.channelMap.Get(s.fold(name))
}

// ResolveChannel returns the live Channel record for id.
func (s *State) ResolveChannel(id ChannelId) (*Channel, bool) {
	return s.channels.Get(channelKey(id))
}

// IdentifyUser resolves a nickname to its stable UserId.
func (s *State) IdentifyUser(nick string) (UserId, bool) {
	return s.userMap.Get(s.fold(nick))
}

// ResolveUser returns the live User record for id.
func (s *State) ResolveUser(id UserId) (*User, bool) {
	return s.users.Get(userKey(id))
}

// SelfNick returns the tracker's current idea of this connection's own
// nickname.
func (s *State) SelfNick() string {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.selfNick
}

func (s *State) nextUserID() UserId {
	s.mu.Lock()
	defer s.mu.Unlock()
	id := s.userSeq
	s.userSeq++
	return UserId(id)
}

func (s *State) nextChannelID() ChannelId {
	s.mu.Lock()
	defer s.mu.Unlock()
	id := s.channelSeq
	s.channelSeq++
	return ChannelId(id)
}

func (s *State) insertUser(u *User, nick string) {
	s.users.Set(userKey(u.ID), u)
	s.userMap.Set(s.fold(nick), u.ID)
}

// initializeSelfNick records this connection's own identity the first
// time RPL_WELCOME (001) is observed.
func (s *State) initializeSelfNick(nick string) {
	s.mu.Lock()
	s.selfID = UserId(0)
	s.selfNick = nick
	s.mu.Unlock()

	s.insertUser(&User{ID: s.selfID, Prefix: Prefix{Nick: nick}, Channels: map[ChannelId]struct{}{}}, nick)
}

func (s *State) isSelf(nick string) bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.selfNick != "" && s.mapping.Equal(nick, s.selfNick)
}

func (s *State) setSelfNick(nick string) {
	s.mu.Lock()
	old := s.selfNick
	s.selfNick = nick
	id := s.selfID
	s.mu.Unlock()

	if old != "" {
		s.userMap.Remove(s.fold(old))
	}
	s.userMap.Set(s.fold(nick), id)
}

// linkUserChannel cross-links a user into a channel and vice versa,
// creating the user record if necessary.
func (s *State) linkUserChannel(nick string, pfx Prefix, chID ChannelId) {
	uID, ok := s.IdentifyUser(nick)
	if !ok {
		uID = s.nextUserID()
		s.insertUser(&User{ID: uID, Prefix: pfx, Channels: map[ChannelId]struct{}{}}, nick)
	}
	if u, ok := s.users.Get(userKey(uID)); ok {
		u.Channels[chID] = struct{}{}
	}
	if ch, ok := s.channels.Get(channelKey(chID)); ok {
		ch.Users[uID] = struct{}{}
	}
}

// unlinkUserChannel removes the two-way link between a user and a
// channel; if that was the user's (or channel's) only remaining link, the
// now-orphaned record is removed entirely, per
// original_source/src/state.rs's unlink_user_channel.
func (s *State) unlinkUserChannel(uID UserId, chID ChannelId) {
	if u, ok := s.users.Get(userKey(uID)); ok {
		delete(u.Channels, chID)
		if len(u.Channels) == 0 && uID != s.selfID {
			s.userMap.Remove(s.fold(u.Prefix.Nick))
			s.users.Remove(userKey(uID))
		}
	}
	if ch, ok := s.channels.Get(channelKey(chID)); ok {
		delete(ch.Users, uID)
		if len(ch.Users) == 0 {
			s.channelMap.Remove(s.fold(ch.Name))
			s.channels.Remove(channelKey(chID))
		}
	}
}

// OnMessage applies a single raw message's state-tracking effects, per
// original_source/src/state.rs's State::on_message.
func (s *State) OnMessage(msg *IrcMsg) {
	pfx, hasPfx := msg.Prefix()

	switch msg.Command() {
	case "001":
		if msg.NumArgs() > 0 {
			s.initializeSelfNick(msg.ArgString(0))
		}
		return
	case "JOIN":
		if !hasPfx || msg.NumArgs() == 0 {
			return
		}
		if s.isSelf(pfx.Nick) {
			// Self-joins are handled by the JoinBundle event once the
			// server finishes sending NAMES/TOPIC, not here.
			return
		}
		chID, ok := s.IdentifyChannel(msg.ArgString(0))
		if !ok {
			return
		}
		s.linkUserChannel(pfx.Nick, pfx, chID)
		return
	case "PART":
		if !hasPfx || msg.NumArgs() == 0 {
			return
		}
		chID, ok := s.IdentifyChannel(msg.ArgString(0))
		if !ok {
			return
		}
		if s.isSelf(pfx.Nick) {
			s.removeChannel(chID)
			return
		}
		uID, ok := s.IdentifyUser(pfx.Nick)
		if !ok {
			return
		}
		s.unlinkUserChannel(uID, chID)
		return
	case "QUIT":
		if !hasPfx {
			return
		}
		if uID, ok := s.IdentifyUser(pfx.Nick); ok {
			s.removeUser(uID)
		}
		return
	case "NICK":
		if !hasPfx || msg.NumArgs() == 0 {
			return
		}
		s.renameUser(pfx.Nick, msg.ArgString(0))
		return
	case "KICK":
		if msg.NumArgs() < 2 {
			return
		}
		chID, chOK := s.IdentifyChannel(msg.ArgString(0))
		uID, uOK := s.IdentifyUser(msg.ArgString(1))
		if chOK && uOK {
			s.unlinkUserChannel(uID, chID)
		}
		return
	case "TOPIC":
		if msg.NumArgs() < 2 {
			return
		}
		if chID, ok := s.IdentifyChannel(msg.ArgString(0)); ok {
			if ch, ok := s.channels.Get(channelKey(chID)); ok {
				ch.Topic = msg.ArgString(msg.NumArgs() - 1)
			}
		}
		return
	}
}

func (s *State) removeChannel(chID ChannelId) {
	ch, ok := s.channels.Get(channelKey(chID))
	if !ok {
		return
	}
	for uID := range ch.Users {
		if u, ok := s.users.Get(userKey(uID)); ok {
			delete(u.Channels, chID)
		}
	}
	s.channelMap.Remove(s.fold(ch.Name))
	s.channels.Remove(channelKey(chID))
}

func (s *State) removeUser(uID UserId) {
	u, ok := s.users.Get(userKey(uID))
	if !ok || uID == s.selfID {
		return
	}
	for chID := range u.Channels {
		if ch, ok := s.channels.Get(channelKey(chID)); ok {
			delete(ch.Users, uID)
		}
	}
	s.userMap.Remove(s.fold(u.Prefix.Nick))
	s.users.Remove(userKey(uID))
}

func (s *State) renameUser(from, to string) {
	uID, ok := s.IdentifyUser(from)
	if s.isSelf(from) {
		s.setSelfNick(to)
	}
	if !ok {
		return
	}
	u, ok := s.users.Get(userKey(uID))
	if !ok {
		return
	}
	s.userMap.Remove(s.fold(from))
	u.Prefix.Nick = to
	s.userMap.Set(s.fold(to), uID)
}

// OnEvent applies a pipeline IrcEvent, dispatching raw messages to
// OnMessage and correlated bundles to their dedicated handlers, per
// original_source/src/state.rs's State::on_event.
func (s *State) OnEvent(ev IrcEvent) {
	switch ev.Kind {
	case EventRaw:
		if ev.Raw != nil {
			s.OnMessage(ev.Raw.Borrow())
		}
	case EventJoinBundle:
		if ev.Join != nil && ev.Join.Err == nil {
			s.onSelfJoin(ev.Join)
		}
	case EventWhoBundle:
		if ev.Who != nil {
			s.onWho(ev.Who)
		}
	}
}

func (s *State) onSelfJoin(join *JoinBundle) {
	if _, ok := s.IdentifyChannel(join.Channel); ok {
		return
	}
	chID := s.nextChannelID()
	ch := &Channel{ID: chID, Name: join.Channel, Topic: join.Topic, Users: map[UserId]struct{}{}}
	s.channels.Set(channelKey(chID), ch)
	s.channelMap.Set(s.fold(join.Channel), chID)

	for _, entry := range join.Names {
		s.linkUserChannel(entry.Nick, Prefix{Nick: entry.Nick}, chID)
	}
}

func (s *State) onWho(who *WhoBundle) {
	chID, ok := s.IdentifyChannel(who.Mask)
	if !ok {
		return
	}
	for _, rec := range who.Entries {
		pfx := Prefix{Nick: rec.Nick, User: rec.User, Host: rec.Host}
		s.linkUserChannel(rec.Nick, pfx, chID)
	}
}

// CloneFrozen returns an independent, deep-copied snapshot of the current
// state -- safe to read from any goroutine without further
// synchronization, per original_source/src/state.rs's clone_frozen.
func (s *State) CloneFrozen() *FrozenState {
	out := NewState(s.mapping)
	s.mu.Lock()
	out.userSeq = s.userSeq
	out.channelSeq = s.channelSeq
	out.selfNick = s.selfNick
	out.selfID = s.selfID
	out.generation = s.generation
	s.mu.Unlock()

	s.users.IterCb(func(k string, v *User) { out.users.Set(k, v.clone()) })
	s.userMap.IterCb(func(k string, v UserId) { out.userMap.Set(k, v) })
	s.channels.IterCb(func(k string, v *Channel) { out.channels.Set(k, v.clone()) })
	s.channelMap.IterCb(func(k string, v ChannelId) { out.channelMap.Set(k, v) })

	return &FrozenState{state: out}
}

// FrozenState is an immutable snapshot returned by CloneFrozen.
type FrozenState struct {
	state *State
}

// IdentifyChannel resolves within the frozen snapshot.
func (f *FrozenState) IdentifyChannel(name string) (ChannelId, bool) { return f.state.IdentifyChannel(name) }

// ResolveChannel resolves within the frozen snapshot.
func (f *FrozenState) ResolveChannel(id ChannelId) (*Channel, bool) { return f.state.ResolveChannel(id) }

// IdentifyUser resolves within the frozen snapshot.
func (f *FrozenState) IdentifyUser(nick string) (UserId, bool) { return f.state.IdentifyUser(nick) }

// ResolveUser resolves within the frozen snapshot.
func (f *FrozenState) ResolveUser(id UserId) (*User, bool) { return f.state.ResolveUser(id) }

// Generation returns the snapshot's generation counter.
func (f *FrozenState) Generation() uint64 {
	f.state.mu.Lock()
	defer f.state.mu.Unlock()
	return f.state.generation
}

// Diff computes the sequence of StateCommands that carries self forward
// to other, stamped with both generations, per
// original_source/src/state.rs's Diff<StateDiff> impl for State.
func (f *FrozenState) Diff(other *FrozenState) StateDiff {
	var commands []StateCommand

	f.state.mu.Lock()
	selfNick, selfGen := f.state.selfNick, f.state.generation
	f.state.mu.Unlock()
	other.state.mu.Lock()
	otherNick, otherGen := other.state.selfNick, other.state.generation
	other.state.mu.Unlock()

	if selfNick != otherNick {
		commands = append(commands, StateCommand{Kind: CmdUpdateSelfNick, NewNick: otherNick})
	}

	other.state.channels.IterCb(func(key string, oc *Channel) {
		if sc, ok := f.state.channels.Get(key); ok {
			if !sc.equal(oc) {
				commands = append(commands, StateCommand{Kind: CmdUpdateChannel, ChannelId: oc.ID, ChannelDiff: diffChannel(sc, oc)})
			}
		} else {
			commands = append(commands, StateCommand{Kind: CmdCreateChannel, ChannelInfo: oc.clone()})
		}
	})
	f.state.channels.IterCb(func(key string, sc *Channel) {
		if _, ok := other.state.channels.Get(key); !ok {
			commands = append(commands, StateCommand{Kind: CmdRemoveChannel, ChannelId: sc.ID})
		}
	})

	other.state.users.IterCb(func(key string, ou *User) {
		if su, ok := f.state.users.Get(key); ok {
			if !su.equal(ou) {
				commands = append(commands, StateCommand{Kind: CmdUpdateUser, UserId: ou.ID, UserDiff: diffUser(su, ou)})
			}
		} else {
			commands = append(commands, StateCommand{Kind: CmdCreateUser, UserInfo: ou.clone()})
		}
	})
	f.state.users.IterCb(func(key string, su *User) {
		if _, ok := other.state.users.Get(key); !ok {
			commands = append(commands, StateCommand{Kind: CmdRemoveUser, UserId: su.ID})
		}
	})

	if selfGen != otherGen {
		commands = append(commands, StateCommand{Kind: CmdSetGeneration, Generation: otherGen})
	}

	return StateDiff{FromGeneration: selfGen, ToGeneration: otherGen, Commands: commands}
}

func diffChannel(from, to *Channel) []ChannelDiffCmd {
	var cmds []ChannelDiffCmd
	if from.Topic != to.Topic {
		cmds = append(cmds, ChannelDiffCmd{Kind: ChannelDiffChangeTopic, Topic: to.Topic})
	}
	for id := range to.Users {
		if _, ok := from.Users[id]; !ok {
			cmds = append(cmds, ChannelDiffCmd{Kind: ChannelDiffAddUser, UserId: id})
		}
	}
	for id := range from.Users {
		if _, ok := to.Users[id]; !ok {
			cmds = append(cmds, ChannelDiffCmd{Kind: ChannelDiffRemoveUser, UserId: id})
		}
	}
	return cmds
}

func diffUser(from, to *User) []UserDiffCmd {
	var cmds []UserDiffCmd
	if from.Prefix != to.Prefix {
		cmds = append(cmds, UserDiffCmd{Kind: UserDiffChangePrefix, Prefix: to.Prefix})
	}
	for id := range to.Channels {
		if _, ok := from.Channels[id]; !ok {
			cmds = append(cmds, UserDiffCmd{Kind: UserDiffAddChannel, ChannelId: id})
		}
	}
	for id := range from.Channels {
		if _, ok := to.Channels[id]; !ok {
			cmds = append(cmds, UserDiffCmd{Kind: UserDiffRemoveChannel, ChannelId: id})
		}
	}
	return cmds
}

// Patch applies diff to the frozen snapshot, returning a new snapshot.
// Returns a *PatchGenerationError if diff.FromGeneration doesn't match
// the snapshot's current generation.
func (f *FrozenState) Patch(diff StateDiff) (*FrozenState, error) {
	if f.Generation() != diff.FromGeneration {
		return nil, &PatchGenerationError{Have: f.Generation(), Want: diff.FromGeneration}
	}

	out := f.clone()
	for _, cmd := range diff.Commands {
		out.apply(cmd)
	}
	return out, nil
}

func (f *FrozenState) clone() *FrozenState {
	out := NewState(f.state.mapping)
	f.state.mu.Lock()
	out.userSeq = f.state.userSeq
	out.channelSeq = f.state.channelSeq
	out.selfNick = f.state.selfNick
	out.selfID = f.state.selfID
	out.generation = f.state.generation
	f.state.mu.Unlock()

	f.state.users.IterCb(func(k string, v *User) { out.users.Set(k, v.clone()) })
	f.state.userMap.IterCb(func(k string, v UserId) { out.userMap.Set(k, v) })
	f.state.channels.IterCb(func(k string, v *Channel) { out.channels.Set(k, v.clone()) })
	f.state.channelMap.IterCb(func(k string, v ChannelId) { out.channelMap.Set(k, v) })

	return &FrozenState{state: out}
}

func (f *FrozenState) apply(cmd StateCommand) {
	s := f.state
	switch cmd.Kind {
	case CmdUpdateSelfNick:
		s.selfNick = cmd.NewNick
	case CmdSetGeneration:
		s.generation = cmd.Generation
	case CmdCreateUser:
		s.users.Set(userKey(cmd.UserInfo.ID), cmd.UserInfo.clone())
		s.userMap.Set(s.fold(cmd.UserInfo.Prefix.Nick), cmd.UserInfo.ID)
	case CmdUpdateUser:
		if u, ok := s.users.Get(userKey(cmd.UserId)); ok {
			oldNick := u.Prefix.Nick
			for _, d := range cmd.UserDiff {
				switch d.Kind {
				case UserDiffChangePrefix:
					u.Prefix = d.Prefix
				case UserDiffAddChannel:
					u.Channels[d.ChannelId] = struct{}{}
				case UserDiffRemoveChannel:
					delete(u.Channels, d.ChannelId)
				}
			}
			if oldNick != u.Prefix.Nick {
				s.userMap.Remove(s.fold(oldNick))
				s.userMap.Set(s.fold(u.Prefix.Nick), cmd.UserId)
			}
		}
	case CmdRemoveUser:
		if u, ok := s.users.Get(userKey(cmd.UserId)); ok {
			s.userMap.Remove(s.fold(u.Prefix.Nick))
			s.users.Remove(userKey(cmd.UserId))
		}
	case CmdCreateChannel:
		s.channels.Set(channelKey(cmd.ChannelInfo.ID), cmd.ChannelInfo.clone())
		s.channelMap.Set(s.fold(cmd.ChannelInfo.Name), cmd.ChannelInfo.ID)
	case CmdUpdateChannel:
		if ch, ok := s.channels.Get(channelKey(cmd.ChannelId)); ok {
			for _, d := range cmd.ChannelDiff {
				switch d.Kind {
				case ChannelDiffChangeTopic:
					ch.Topic = d.Topic
				case ChannelDiffAddUser:
					ch.Users[d.UserId] = struct{}{}
				case ChannelDiffRemoveUser:
					delete(ch.Users, d.UserId)
				}
			}
		}
	case CmdRemoveChannel:
		if ch, ok := s.channels.Get(channelKey(cmd.ChannelId)); ok {
			s.channelMap.Remove(s.fold(ch.Name))
			s.channels.Remove(channelKey(cmd.ChannelId))
		}
	}
}
