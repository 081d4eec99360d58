// Copyright (c) Liam Stanley <me@liamstanley.io>. All rights reserved. Use
// of this source code is governed by the MIT license that can be found in
// the LICENSE file.

package ircweave

import "testing"

func TestIrcEventKindDiscriminatesPayload(t *testing.T) {
	raw, err := NewIrcMsgBuf([]byte("PING :tok"))
	if err != nil {
		t.Fatalf("NewIrcMsgBuf() error = %v", err)
	}

	tests := []struct {
		name string
		ev   IrcEvent
	}{
		{"raw", IrcEvent{Kind: EventRaw, Raw: raw}},
		{"join", IrcEvent{Kind: EventJoinBundle, Join: &JoinBundle{Channel: "#chan"}}},
		{"who", IrcEvent{Kind: EventWhoBundle, Who: &WhoBundle{Mask: "#chan"}}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			switch tt.ev.Kind {
			case EventRaw:
				if tt.ev.Raw == nil || tt.ev.Join != nil || tt.ev.Who != nil {
					t.Fatalf("EventRaw payload = %+v", tt.ev)
				}
			case EventJoinBundle:
				if tt.ev.Join == nil || tt.ev.Raw != nil || tt.ev.Who != nil {
					t.Fatalf("EventJoinBundle payload = %+v", tt.ev)
				}
			case EventWhoBundle:
				if tt.ev.Who == nil || tt.ev.Raw != nil || tt.ev.Join != nil {
					t.Fatalf("EventWhoBundle payload = %+v", tt.ev)
				}
			}
		})
	}
}
