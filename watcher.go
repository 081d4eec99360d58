// Copyright (c) Liam Stanley <me@liamstanley.io>. All rights reserved. Use
// of this source code is governed by the MIT license that can be found in
// the LICENSE file.

package ircweave

import "sync"

// JoinWatcher is a single-shot future over a pipeline's JoinBundle events,
// grounded on original_source/src/watchers/join.rs's JoinEventWatcher:
// the Rust version dispatches a cloned result to every registered
// SyncSender monitor and is then spent; Go expresses the same contract as
// a receive-once channel plus Cancel.
type JoinWatcher struct {
	channel string
	mapping CaseMapping
	ch      chan JoinBundle
	once    sync.Once
}

// NewJoinWatcher constructs a watcher for channel's join result.
func NewJoinWatcher(channel string, mapping CaseMapping) *JoinWatcher {
	return &JoinWatcher{channel: channel, mapping: mapping, ch: make(chan JoinBundle, 1)}
}

// Feed delivers ev to the watcher. Returns true once the watcher has
// fired (on the first matching event only -- subsequent calls are no-ops).
func (w *JoinWatcher) Feed(ev IrcEvent) bool {
	if ev.Kind != EventJoinBundle || ev.Join == nil {
		return false
	}
	if !w.mapping.Equal(ev.Join.Channel, w.channel) {
		return false
	}
	fired := false
	w.once.Do(func() {
		w.ch <- *ev.Join
		close(w.ch)
		fired = true
	})
	return fired
}

// Result returns the channel the eventual JoinBundle arrives on. Reading
// from it after Cancel returns the zero value on a closed channel.
func (w *JoinWatcher) Result() <-chan JoinBundle { return w.ch }

// Cancel releases the watcher without a result ever arriving, unblocking
// any goroutine waiting on Result().
func (w *JoinWatcher) Cancel() {
	w.once.Do(func() { close(w.ch) })
}

// WhoWatcher is a single-shot future over a pipeline's WhoBundle events.
type WhoWatcher struct {
	mask string
	ch   chan WhoBundle
	once sync.Once
}

// NewWhoWatcher constructs a watcher for mask's WHO result.
func NewWhoWatcher(mask string) *WhoWatcher {
	return &WhoWatcher{mask: mask, ch: make(chan WhoBundle, 1)}
}

func (w *WhoWatcher) Feed(ev IrcEvent) bool {
	if ev.Kind != EventWhoBundle || ev.Who == nil {
		return false
	}
	if !CaseMappingRFC1459.Equal(ev.Who.Mask, w.mask) {
		return false
	}
	fired := false
	w.once.Do(func() {
		w.ch <- *ev.Who
		close(w.ch)
		fired = true
	})
	return fired
}

func (w *WhoWatcher) Result() <-chan WhoBundle { return w.ch }

func (w *WhoWatcher) Cancel() {
	w.once.Do(func() { close(w.ch) })
}
