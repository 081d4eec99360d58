// Copyright (c) Liam Stanley <me@liamstanley.io>. All rights reserved. Use
// of this source code is governed by the MIT license that can be found in
// the LICENSE file.

package connect

import (
	"context"
	"errors"
	"net"
	"testing"
	"time"
)

type stubDialer struct {
	fails   int
	conn    net.Conn
	calls   int
	lastErr error
}

func (d *stubDialer) Dial(network, address string) (net.Conn, error) {
	d.calls++
	if d.calls <= d.fails {
		d.lastErr = errors.New("refused")
		return nil, d.lastErr
	}
	client, server := net.Pipe()
	server.Close()
	return client, nil
}

func TestDialPlain(t *testing.T) {
	d := &stubDialer{}
	conn, err := Dial(Config{Addr: "irc.example.org:6667"}, d)
	if err != nil {
		t.Fatalf("Dial() error = %v", err)
	}
	defer conn.Close()
	if d.calls != 1 {
		t.Fatalf("calls = %d, want 1", d.calls)
	}
}

func TestDialPropagatesError(t *testing.T) {
	d := &stubDialer{fails: 1}
	_, err := Dial(Config{Addr: "irc.example.org:6667"}, d)
	if err == nil {
		t.Fatal("expected error")
	}
}

func TestReconnectorRetriesThenSucceeds(t *testing.T) {
	d := &stubDialer{fails: 2}
	r := NewReconnector(Config{Addr: "irc.example.org:6667"}, d)

	var retries int
	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()

	conn, err := r.Dial(ctx, func(err error, delay time.Duration) {
		retries++
	})
	if err != nil {
		t.Fatalf("Dial() error = %v", err)
	}
	defer conn.Close()

	if retries != 2 {
		t.Fatalf("retries = %d, want 2", retries)
	}
	if d.calls != 3 {
		t.Fatalf("calls = %d, want 3", d.calls)
	}
}

func TestReconnectorRespectsContextCancellation(t *testing.T) {
	d := &stubDialer{fails: 100}
	r := NewReconnector(Config{Addr: "irc.example.org:6667"}, d)

	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	_, err := r.Dial(ctx, nil)
	if err == nil {
		t.Fatal("expected error on cancelled context")
	}
}
