// Copyright (c) Liam Stanley <me@liamstanley.io>. All rights reserved. Use
// of this source code is governed by the MIT license that can be found in
// the LICENSE file.

package ctcp

import "testing"

func TestDecode(t *testing.T) {
	tests := []struct {
		name     string
		body     string
		isNotice bool
		want     Event
		wantOK   bool
	}{
		{
			name:   "tag only",
			body:   "\x01VERSION\x01",
			want:   Event{Command: "VERSION"},
			wantOK: true,
		},
		{
			name:     "tag with text, reply",
			body:     "\x01PING 12345\x01",
			isNotice: true,
			want:     Event{Command: "PING", Text: "12345", Reply: true},
			wantOK:   true,
		},
		{
			name:   "missing trailing delim",
			body:   "\x01VERSION",
			wantOK: false,
		},
		{
			name:   "too short",
			body:   "\x01\x01",
			wantOK: false,
		},
		{
			name:   "not framed",
			body:   "hello there",
			wantOK: false,
		},
		{
			name:   "lowercase tag rejected",
			body:   "\x01version\x01",
			wantOK: false,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, ok := Decode(tt.body, tt.isNotice)
			if ok != tt.wantOK {
				t.Fatalf("Decode() ok = %v, want %v", ok, tt.wantOK)
			}
			if !ok {
				return
			}
			if got != tt.want {
				t.Fatalf("Decode() = %+v, want %+v", got, tt.want)
			}
		})
	}
}

func TestEncode(t *testing.T) {
	tests := []struct {
		cmd, text, want string
	}{
		{"VERSION", "", "\x01VERSION\x01"},
		{"PING", "12345", "\x01PING 12345\x01"},
		{"", "ignored", ""},
	}

	for _, tt := range tests {
		if got := Encode(tt.cmd, tt.text); got != tt.want {
			t.Errorf("Encode(%q, %q) = %q, want %q", tt.cmd, tt.text, got, tt.want)
		}
	}
}

func TestDecodeEncodeRoundTrip(t *testing.T) {
	want := Event{Command: "ACTION", Text: "waves"}
	framed := Encode(want.Command, want.Text)
	got, ok := Decode(framed, false)
	if !ok {
		t.Fatalf("Decode(%q) failed", framed)
	}
	if got != want {
		t.Fatalf("round trip = %+v, want %+v", got, want)
	}
}
