// Copyright (c) Liam Stanley <me@liamstanley.io>. All rights reserved. Use
// of this source code is governed by the MIT license that can be found in
// the LICENSE file.

// Command ircweave-demo wires the codec, bundler pipeline, and state
// tracker together into a minimal client: it dials, registers, tracks
// channel/user state, and logs each join and WHO bundle via log/slog. It is
// intentionally thin -- a worked example, not a feature of the library
// -- replacing girc's example/main.go reconnect-loop sketch with the
// same shape adapted to this module's API.
package main

import (
	"bufio"
	"context"
	"errors"
	"flag"
	"log/slog"
	"os"
	"time"

	"github.com/ircweave/ircweave"
	"github.com/ircweave/ircweave/connect"
)

func main() {
	addr := flag.String("addr", "irc.libera.chat:6667", "server address")
	nick := flag.String("nick", "ircweave-demo", "nickname")
	user := flag.String("user", "ircweave", "username")
	channel := flag.String("join", "#ircweave-test", "channel to join after registering")
	flag.Parse()

	logger := slog.New(slog.NewTextHandler(os.Stdout, nil))

	if err := run(*addr, *nick, *user, *channel, logger); err != nil {
		logger.Error("exiting", "error", err)
		os.Exit(1)
	}
}

func run(addr, nick, user, channel string, logger *slog.Logger) error {
	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	reconnector := connect.NewReconnector(connect.Config{Addr: addr}, nil)
	conn, err := reconnector.Dial(ctx, func(err error, delay time.Duration) {
		logger.Warn("dial failed, retrying", "error", err, "delay", delay)
	})
	if err != nil {
		return err
	}
	defer conn.Close()

	reader := &connReader{r: bufio.NewReader(conn)}

	logger.Info("registering", "nick", nick, "user", user)
	_, err = ircweave.Register(conn, reader, ircweave.RegistrationParams{
		Nick:     nick,
		User:     user,
		RealName: "ircweave demo client",
	})

	var regErr *ircweave.RegistrationError
	for errors.As(err, &regErr) && regErr.Kind == ircweave.RegErrNickInUse {
		nick += "_"
		logger.Warn("nick in use, retrying", "nick", nick)
		_, err = ircweave.NickInUseRetry(conn, reader, nick)
	}
	if err != nil {
		return err
	}
	logger.Info("registered")

	state := ircweave.NewState(ircweave.CaseMappingRFC1459)
	pipeline := ircweave.NewPipeline(ircweave.NewJoinTrigger(ircweave.CaseMappingRFC1459))

	joinBuf, err := ircweave.BuildJoin([]string{channel}, nil)
	if err != nil {
		return err
	}
	if _, err := conn.Write(appendCRLF(joinBuf.Bytes())); err != nil {
		return err
	}
	pipeline.AddBundler(ircweave.NewJoinBundler(channel, ircweave.CaseMappingRFC1459))

	framer := ircweave.NewFramer(0)
	buf := make([]byte, 4096)

	for {
		n, err := conn.Read(buf)
		if err != nil {
			return err
		}
		if err := framer.Push(buf[:n]); err != nil {
			return err
		}

		for {
			msg, err := framer.Recv()
			if err != nil {
				var fe *ircweave.FrameError
				if errors.As(err, &fe) && fe.Kind == ircweave.ErrFrameMoreData {
					break
				}
				logger.Warn("frame error", "error", err)
				continue
			}

			view := msg.Borrow()
			if view.Command() == "PING" && view.NumArgs() > 0 {
				pongBuf, _ := ircweave.BuildPong(view.ArgString(0))
				_, _ = conn.Write(appendCRLF(pongBuf.Bytes()))
			}

			state.OnMessage(view)
			for _, ev := range pipeline.Feed(msg) {
				state.OnEvent(ev)
				logEvent(logger, ev)
			}
		}
	}
}

func logEvent(logger *slog.Logger, ev ircweave.IrcEvent) {
	switch ev.Kind {
	case ircweave.EventJoinBundle:
		logger.Info("joined channel", "channel", ev.Join.Channel, "names", len(ev.Join.Names))
	case ircweave.EventWhoBundle:
		logger.Info("who result", "mask", ev.Who.Mask, "entries", len(ev.Who.Entries))
	}
}

func appendCRLF(line []byte) []byte {
	return append(append([]byte{}, line...), '\r', '\n')
}

// connReader adapts a bufio.Reader into ircweave.MessageSource for the
// registration handshake, which needs whole parsed messages rather than
// a raw byte stream.
type connReader struct {
	r *bufio.Reader
}

func (c *connReader) Next() (*ircweave.IrcMsg, error) {
	line, err := c.r.ReadString('\n')
	if err != nil {
		return nil, err
	}
	buf, perr := ircweave.NewIrcMsgBuf([]byte(trimCRLF(line)))
	if perr != nil {
		return nil, perr
	}
	return buf.Borrow(), nil
}

func trimCRLF(s string) string {
	for len(s) > 0 && (s[len(s)-1] == '\n' || s[len(s)-1] == '\r') {
		s = s[:len(s)-1]
	}
	return s
}
