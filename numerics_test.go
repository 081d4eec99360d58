// Copyright (c) Liam Stanley <me@liamstanley.io>. All rights reserved. Use
// of this source code is governed by the MIT license that can be found in
// the LICENSE file.

package ircweave

import "testing"

func TestRegistrationFailureNumericsCoverErrorKinds(t *testing.T) {
	want := map[int]RegistrationErrorKind{
		ERR_NONICKGIVEN: RegErrNoNicknameGiven,
		ERR_NONICKNAME:  RegErrErroneousNickname,
		ERR_NICKINUSE:   RegErrNickInUse,
		ERR_NICKCOLLIDE: RegErrNicknameCollision,
		ERR_UNAVAILRES:  RegErrUnavailableResource,
		ERR_RESTRICTED:  RegErrRestricted,
	}

	if len(registrationFailureNumerics) != len(want) {
		t.Fatalf("len(registrationFailureNumerics) = %d, want %d", len(registrationFailureNumerics), len(want))
	}
	for code, kind := range want {
		if registrationFailureNumerics[code] != kind {
			t.Errorf("registrationFailureNumerics[%d] = %v, want %v", code, registrationFailureNumerics[code], kind)
		}
	}
}

func TestJoinAndWhoBundleNumericSets(t *testing.T) {
	for _, code := range []int{RPL_TOPIC, RPL_TOPICWHOIS, RPL_NAMREPLY, RPL_ENDOFNAMES} {
		if !joinBundleNumerics[code] {
			t.Errorf("joinBundleNumerics missing %d", code)
		}
	}
	for _, code := range []int{RPL_WHOREPLY, RPL_ENDOFWHO} {
		if !whoBundleNumerics[code] {
			t.Errorf("whoBundleNumerics missing %d", code)
		}
	}
}
