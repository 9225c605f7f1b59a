package main

import (
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/desertbit/grumble"
	"github.com/jedib0t/go-pretty/table"

	"github.com/arloliu/go-packetlink/internal/util"
	"github.com/arloliu/go-packetlink/link"
)

var errNotInitialized = errors.New("linkshell: client not initialized")

func addCommands(app *grumble.App, sh *shell) {
	app.AddCommand(&grumble.Command{
		Name: "open",
		Help: "connect to the configured peer",
		Run: func(c *grumble.Context) error {
			if sh.client == nil {
				return errNotInitialized
			}
			if err := sh.client.Open(); err != nil {
				return err
			}
			c.App.Println("connected to", sh.medium.Name())

			return nil
		},
	})

	app.AddCommand(&grumble.Command{
		Name: "close",
		Help: "disconnect from the peer, outstanding packets time out",
		Run: func(c *grumble.Context) error {
			if sh.client == nil {
				return errNotInitialized
			}

			return sh.client.CloseMedium()
		},
	})

	app.AddCommand(&grumble.Command{
		Name:    "send",
		Aliases: []string{"tx"},
		Help:    "send a payload given as hex bytes and wait for the reply",
		Flags: func(f *grumble.Flags) {
			f.Bool("a", "async", false, "return immediately, the reply is logged when it arrives")
			f.Bool("n", "no-reply", false, "fire and forget, do not expect a reply")
			f.Duration("w", "wait", 0, "per-attempt reply wait time, 0 uses the client default")
			f.Int("r", "resend", -2, "resend limit, -2 uses the client default")
		},
		Args: func(a *grumble.Args) {
			a.StringList("bytes", "payload bytes in hex, e.g. 41 42 43")
		},
		Run: func(c *grumble.Context) error {
			if sh.client == nil {
				return errNotInitialized
			}

			payload, err := parseHex(strings.Join(c.Args.StringList("bytes"), " "))
			if err != nil {
				return err
			}

			p := sh.client.CreatePacket()
			p.SetPayload(payload)
			if d := c.Flags.Duration("wait"); d > 0 {
				p.SetWaitTime(d)
			}
			if c.Flags.Bool("no-reply") {
				p.SetResendLimit(link.ResendNever)
			} else if n := c.Flags.Int("resend"); n != link.ResendDefault {
				p.SetResendLimit(n)
			}

			if c.Flags.Bool("async") {
				if err := sh.client.SendAsync(p); err != nil {
					return err
				}
				c.App.Println("queued packet", p.ID())

				return nil
			}

			defer sh.client.ReleasePacket(p)

			start := time.Now()
			if err := sh.client.Send(p); err != nil {
				return err
			}
			c.App.Println(describeResult(p, time.Since(start)))

			return nil
		},
	})

	app.AddCommand(&grumble.Command{
		Name: "stats",
		Help: "show scheduler and client counters",
		Run: func(c *grumble.Context) error {
			if sh.client == nil {
				return errNotInitialized
			}
			s := sh.client.Scheduler()
			if s == nil {
				return errors.New("linkshell: no scheduler attached")
			}
			c.App.Println(renderStats(s.Metrics().Snapshot(), sh.client.Metrics()))

			return nil
		},
	})

	app.AddCommand(&grumble.Command{
		Name: "media",
		Help: "list the media in use and how many clients share each",
		Run: func(c *grumble.Context) error {
			if sh.client == nil {
				return errNotInitialized
			}
			c.App.Println("client", sh.client.Name(), sh.client.ID())
			c.App.Println(renderMedia(link.DefaultRegistry))

			return nil
		},
	})
}

func describeResult(p *link.Packet, elapsed time.Duration) string {
	status := p.Status()
	switch {
	case status.Has(link.StatusReceived):
		return fmt.Sprintf("reply from %s after %s (%d sends): %s",
			p.SenderInfo(), p.ReplyDelay().Round(time.Microsecond), p.SendCount(), util.HexDump(p.Payload()))
	case status.Has(link.StatusTimeout):
		return fmt.Sprintf("no reply after %s (%d sends)", elapsed.Round(time.Millisecond), p.SendCount())
	default:
		return fmt.Sprintf("sent, status %s", status)
	}
}

func renderStats(s link.Snapshot, cm *link.ClientMetrics) string {
	t := table.NewWriter()
	t.SetStyle(table.StyleRounded)

	t.AppendHeader(table.Row{"Scope", "Counter", "Value"})

	rows := []table.Row{
		{"medium", "packets sent", s.PacketsSent},
		{"medium", "packets resent", s.PacketsResent},
		{"medium", "packets lost", s.PacketsLost},
		{"medium", "send failures", s.SendFailures},
		{"medium", "replies received", s.RepliesReceived},
		{"medium", "notifications", s.NotificationsReceived},
		{"medium", "corrupt data", s.CorruptData},
		{"medium", "bytes sent", s.BytesSent},
		{"medium", "bytes received", s.BytesReceived},
		{"medium", "outstanding", s.Outstanding},
		{"client", "queued", cm.PacketsQueued.Load()},
		{"client", "replies", cm.Replies.Load()},
		{"client", "timeouts", cm.Timeouts.Load()},
		{"client", "send failures", cm.SendFailures.Load()},
		{"client", "notifications", cm.Notifications.Load()},
		{"client", "errors", cm.Errors.Load()},
	}
	for _, r := range rows {
		t.AppendRow(r)
	}

	return t.Render()
}

func renderMedia(reg *link.Registry) string {
	t := table.NewWriter()
	t.SetStyle(table.StyleRounded)
	t.AppendHeader(table.Row{"Medium", "Clients", "Outstanding", "Buffered"})

	reg.Range(func(name string, s *link.Scheduler) bool {
		t.AppendRow(table.Row{name, s.ClientCount(), s.OutstandingCount(), s.BufferedBytes()})
		return true
	})

	return t.Render()
}
