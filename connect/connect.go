// Copyright (c) Liam Stanley <me@liamstanley.io>. All rights reserved. Use
// of this source code is governed by the MIT license that can be found in
// the LICENSE file.

// Package connect wraps the transport-level concerns a socket-owning
// caller needs around the codec: dialing (plain or TLS) and
// reconnect-with-backoff. Grounded on girc/conn.go's newConn/Dialer, but
// trimmed to dial-only -- framing and registration are handled by the
// root package's Framer and Register.
package connect

import (
	"context"
	"crypto/tls"
	"net"
	"time"

	"github.com/cenkalti/backoff/v4"
)

// Dialer is the same shape as net.Dialer's Dial method, so callers can
// substitute a proxy dialer (e.g. golang.org/x/net/proxy) without this
// package depending on it directly.
type Dialer interface {
	Dial(network, address string) (net.Conn, error)
}

// Config controls how Dial reaches the server.
type Config struct {
	// Addr is "host:port".
	Addr string
	// TLS enables a TLS handshake after the raw dial. When TLSConfig is
	// nil, a default config using Addr's host as ServerName is used.
	TLS       bool
	TLSConfig *tls.Config
	// DialTimeout bounds the raw TCP dial. Zero means 5 seconds, matching
	// the teacher's default.
	DialTimeout time.Duration
	// LocalAddr optionally binds the outgoing connection to a local
	// address.
	LocalAddr string
}

// Dial opens a connection per cfg, using dialer if non-nil or a
// net.Dialer otherwise.
func Dial(cfg Config, dialer Dialer) (net.Conn, error) {
	if dialer == nil {
		timeout := cfg.DialTimeout
		if timeout <= 0 {
			timeout = 5 * time.Second
		}
		nd := &net.Dialer{Timeout: timeout}
		if cfg.LocalAddr != "" {
			local, err := net.ResolveTCPAddr("tcp", cfg.LocalAddr+":0")
			if err != nil {
				return nil, err
			}
			nd.LocalAddr = local
		}
		dialer = nd
	}

	conn, err := dialer.Dial("tcp", cfg.Addr)
	if err != nil {
		return nil, err
	}

	if cfg.TLS {
		host, _, splitErr := net.SplitHostPort(cfg.Addr)
		if splitErr != nil {
			host = cfg.Addr
		}
		tlsConf := cfg.TLSConfig
		if tlsConf == nil {
			tlsConf = &tls.Config{ServerName: host} //nolint:gosec
		}
		conn = tls.Client(conn, tlsConf)
	}

	return conn, nil
}

// Reconnector drives Dial through an exponential backoff loop, retrying
// until ctx is cancelled or a dial succeeds. Unlike girc, which leaves
// reconnect policy to the caller's Connect loop, this wraps
// github.com/cenkalti/backoff/v4 directly so the connect/backoff/jitter
// concern lives in one place rather than a hand-rolled sleep.
type Reconnector struct {
	cfg    Config
	dialer Dialer
	policy backoff.BackOff
}

// NewReconnector constructs a Reconnector with an exponential backoff
// policy (500ms initial interval, the library's default 1.5x multiplier
// and 50% jitter, 1 minute max interval, no overall time limit -- callers
// bound total duration via ctx).
func NewReconnector(cfg Config, dialer Dialer) *Reconnector {
	b := backoff.NewExponentialBackOff()
	b.InitialInterval = 500 * time.Millisecond
	b.MaxInterval = time.Minute
	b.MaxElapsedTime = 0
	return &Reconnector{cfg: cfg, dialer: dialer, policy: b}
}

// Dial attempts to connect, retrying with backoff until it succeeds or
// ctx is done. onRetry, if non-nil, is called with each failed attempt's
// error and the delay before the next attempt.
func (r *Reconnector) Dial(ctx context.Context, onRetry func(err error, delay time.Duration)) (net.Conn, error) {
	r.policy.Reset()

	var conn net.Conn
	operation := func() error {
		c, err := Dial(r.cfg, r.dialer)
		if err != nil {
			return err
		}
		conn = c
		return nil
	}

	notify := func(err error, delay time.Duration) {
		if onRetry != nil {
			onRetry(err, delay)
		}
	}

	err := backoff.RetryNotify(operation, backoff.WithContext(r.policy, ctx), notify)
	if err != nil {
		return nil, err
	}
	return conn, nil
}
