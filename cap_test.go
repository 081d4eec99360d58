// Copyright (c) Liam Stanley <me@liamstanley.io>. All rights reserved. Use
// of this source code is governed by the MIT license that can be found in
// the LICENSE file.

package ircweave

import (
	"reflect"
	"testing"
)

func TestParseCapLS(t *testing.T) {
	tests := []struct {
		name string
		in   string
		want map[string][]string
	}{
		{
			name: "bare caps",
			in:   "multi-prefix invite-notify",
			want: map[string][]string{"multi-prefix": nil, "invite-notify": nil},
		},
		{
			name: "sasl with mechanism list",
			in:   "sasl=PLAIN,EXTERNAL server-time",
			want: map[string][]string{"sasl": {"PLAIN", "EXTERNAL"}, "server-time": nil},
		},
		{
			name: "empty",
			in:   "",
			want: map[string][]string{},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := ParseCapLS(tt.in)
			if !reflect.DeepEqual(got, tt.want) {
				t.Fatalf("ParseCapLS(%q) = %#v, want %#v", tt.in, got, tt.want)
			}
		})
	}
}

func TestNegotiateRequest(t *testing.T) {
	advertised := map[string][]string{
		"multi-prefix": nil,
		"sasl":         {"PLAIN"},
		"unknown-cap":  nil,
	}

	req, ok := NegotiateRequest(advertised)
	if !ok {
		t.Fatal("NegotiateRequest() ok = false, want true")
	}

	for _, want := range []string{"multi-prefix", "sasl"} {
		if !containsToken(req, want) {
			t.Errorf("request %q missing %q", req, want)
		}
	}
	if containsToken(req, "unknown-cap") {
		t.Errorf("request %q should not include unsupported cap", req)
	}
}

func TestNegotiateRequestNoneSupported(t *testing.T) {
	_, ok := NegotiateRequest(map[string][]string{"unknown-cap": nil})
	if ok {
		t.Fatal("NegotiateRequest() ok = true, want false")
	}
}

func TestCapStateApplyAckAndLS(t *testing.T) {
	var s CapState
	s.ApplyLS(map[string][]string{"sasl": {"PLAIN", "EXTERNAL"}})
	s.ApplyAck("multi-prefix server-time")

	if !reflect.DeepEqual(s.Enabled, []string{"multi-prefix", "server-time"}) {
		t.Fatalf("Enabled = %v", s.Enabled)
	}
	if !s.HasSASLMechanism("PLAIN") || !s.HasSASLMechanism("EXTERNAL") {
		t.Fatalf("SASLMechanism = %v", s.SASLMechanism)
	}
	if s.HasSASLMechanism("SCRAM-SHA-256") {
		t.Fatal("HasSASLMechanism() reported an unadvertised mechanism")
	}
}

func TestSupportsCap(t *testing.T) {
	if !SupportsCap("sasl") {
		t.Error("SupportsCap(\"sasl\") = false, want true")
	}
	if SupportsCap("draft/does-not-exist") {
		t.Error("SupportsCap() reported support for an unregistered cap")
	}
}

func containsToken(s, tok string) bool {
	for _, f := range splitNonEmpty(s, ' ') {
		if f == tok {
			return true
		}
	}
	return false
}
