// Copyright (c) Liam Stanley <me@liamstanley.io>. All rights reserved. Use
// of this source code is governed by the MIT license that can be found in
// the LICENSE file.

package ircweave

import "testing"

func TestJoinWatcherFiresOnMatchingChannel(t *testing.T) {
	w := NewJoinWatcher("#channel", CaseMappingRFC1459)

	fired := w.Feed(IrcEvent{Kind: EventJoinBundle, Join: &JoinBundle{Channel: "#other"}})
	if fired {
		t.Fatal("Feed() fired for a non-matching channel")
	}

	fired = w.Feed(IrcEvent{Kind: EventJoinBundle, Join: &JoinBundle{Channel: "#channel", Topic: "hi"}})
	if !fired {
		t.Fatal("Feed() did not fire for the matching channel")
	}

	select {
	case got := <-w.Result():
		if got.Topic != "hi" {
			t.Errorf("Result() Topic = %q, want hi", got.Topic)
		}
	default:
		t.Fatal("Result() channel has no value after Feed fired")
	}
}

func TestJoinWatcherOnlyFiresOnce(t *testing.T) {
	w := NewJoinWatcher("#channel", CaseMappingRFC1459)
	if !w.Feed(IrcEvent{Kind: EventJoinBundle, Join: &JoinBundle{Channel: "#channel"}}) {
		t.Fatal("first Feed() should fire")
	}
	if w.Feed(IrcEvent{Kind: EventJoinBundle, Join: &JoinBundle{Channel: "#channel"}}) {
		t.Fatal("second Feed() should be a no-op")
	}
}

func TestJoinWatcherCancelClosesResult(t *testing.T) {
	w := NewJoinWatcher("#channel", CaseMappingRFC1459)
	w.Cancel()

	_, ok := <-w.Result()
	if ok {
		t.Fatal("Result() should be a closed, empty channel after Cancel")
	}
}

func TestWhoWatcherFiresOnMatchingMask(t *testing.T) {
	w := NewWhoWatcher("#channel")

	if w.Feed(IrcEvent{Kind: EventWhoBundle, Who: &WhoBundle{Mask: "#other"}}) {
		t.Fatal("Feed() fired for a non-matching mask")
	}
	if !w.Feed(IrcEvent{Kind: EventWhoBundle, Who: &WhoBundle{Mask: "#channel"}}) {
		t.Fatal("Feed() did not fire for the matching mask")
	}

	select {
	case got := <-w.Result():
		if got.Mask != "#channel" {
			t.Errorf("Result() Mask = %q, want #channel", got.Mask)
		}
	default:
		t.Fatal("Result() channel has no value after Feed fired")
	}
}

func TestWatchersIgnoreWrongEventKind(t *testing.T) {
	jw := NewJoinWatcher("#channel", CaseMappingRFC1459)
	if jw.Feed(IrcEvent{Kind: EventWhoBundle, Who: &WhoBundle{Mask: "#channel"}}) {
		t.Fatal("JoinWatcher should ignore EventWhoBundle")
	}

	ww := NewWhoWatcher("#channel")
	if ww.Feed(IrcEvent{Kind: EventJoinBundle, Join: &JoinBundle{Channel: "#channel"}}) {
		t.Fatal("WhoWatcher should ignore EventJoinBundle")
	}
}
