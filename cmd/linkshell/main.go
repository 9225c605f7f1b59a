// Command linkshell is an interactive shell that sends framed packets to a TCP peer
// and prints replies and unsolicited frames.
package main

import (
	"fmt"
	"os"
	"path/filepath"

	"github.com/desertbit/grumble"

	"github.com/arloliu/go-packetlink/internal/util"
	"github.com/arloliu/go-packetlink/link"
	"github.com/arloliu/go-packetlink/logger"
)

const banner = `
  linkshell - framed request/reply over TCP
  -----------------------------------------

`

func main() {
	sh := &shell{}
	app := setupCLI(sh)
	addCommands(app, sh)

	if err := app.Run(); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}

	sh.shutdown()
}

func setupCLI(sh *shell) *grumble.App {
	histFile := ".linkshell_history"
	if home, err := os.UserHomeDir(); err == nil {
		histFile = filepath.Join(home, ".linkshell_history")
	}

	app := grumble.New(&grumble.Config{
		Name:        "linkshell",
		Description: "framed request/reply shell",
		HistoryFile: histFile,
		Flags: func(f *grumble.Flags) {
			f.String("c", "config", "", "path to a TOML configuration file")
			f.String("a", "address", "", "peer address, overrides the configuration file")
			f.String("l", "log-level", "", "log level (debug, info, warn, error)")
		},
	})

	app.SetPrintASCIILogo(func(*grumble.App) {
		fmt.Print(banner)
	})

	app.OnInit(func(_ *grumble.App, flags grumble.FlagMap) error {
		cfg, err := loadShellConfig(flags.String("config"))
		if err != nil {
			return err
		}
		if addr := flags.String("address"); addr != "" {
			cfg.Address = addr
		}
		if lvl := flags.String("log-level"); lvl != "" {
			cfg.LogLevel = lvl
		}

		return sh.init(cfg)
	})

	return app
}

// shell holds the state shared by linkshell commands.
type shell struct {
	logger logger.Logger
	medium *tcpMedium
	client *link.Client
}

func (sh *shell) init(cfg shellConfig) error {
	sh.logger = logger.NewZerologConsole(os.Stdout, logger.ParseLevel(cfg.LogLevel))
	logger.SetDefault(sh.logger)

	opts := append([]link.ClientOption{
		link.WithLogger(sh.logger),
		link.WithHooks(sh.hooks()),
	}, cfg.Options...)

	client, err := link.NewClient(opts...)
	if err != nil {
		return fmt.Errorf("create client: %w", err)
	}

	sh.medium = newTCPMedium(cfg.Address, cfg.DialTimeout, sh.logger)
	if err := client.AssignMedium(sh.medium); err != nil {
		return fmt.Errorf("assign medium: %w", err)
	}
	sh.client = client

	sh.logger.Info("client ready", "client", client.Name(), "medium", sh.medium.Name())

	return nil
}

func (sh *shell) hooks() link.Hooks {
	return link.Hooks{
		OnReceived: func(p *link.Packet, isReply bool) {
			if isReply {
				sh.logger.Info("async reply", "id", p.ID(), "status", p.Status(), "payload", util.HexDump(p.Payload()))
				return
			}
			sh.logger.Info("frame received", "from", p.SenderInfo(), "payload", util.HexDump(p.Payload()))
		},
		OnError: func(err error) {
			sh.logger.Warn("link error", "error", err)
		},
		OnStateChange: func(state link.MediaState) {
			sh.logger.Debug("medium state", "state", state)
		},
	}
}

func (sh *shell) shutdown() {
	if sh.client != nil {
		_ = sh.client.Close()
	}
}
