package main

import (
	"context"
	"fmt"
	"io"
	"log/slog"
	"os"
	"os/signal"
	"path/filepath"
	"strings"
	"syscall"

	"github.com/urfave/cli"
	"golang.org/x/term"

	"github.com/valerio/go-jeebie-dbg/jeebie"
	"github.com/valerio/go-jeebie-dbg/jeebie/backend"
	"github.com/valerio/go-jeebie-dbg/jeebie/backend/headless"
	"github.com/valerio/go-jeebie-dbg/jeebie/backend/terminal"
	"github.com/valerio/go-jeebie-dbg/jeebie/debug"
	"github.com/valerio/go-jeebie-dbg/jeebie/protocol"
	"github.com/valerio/go-jeebie-dbg/jeebie/session"
	"github.com/valerio/go-jeebie-dbg/jeebie/timing"
	"github.com/valerio/go-jeebie-dbg/jeebie/transport"
)

func main() {
	app := cli.NewApp()
	app.Name = "jeebie-dbg"
	app.Description = "Remote debugger for a Game Boy emulator"
	app.Usage = "jeebie-dbg [options]"
	app.Version = "1.0.0"
	app.Flags = []cli.Flag{
		cli.StringFlag{
			Name:   "url",
			Usage:  "WebSocket URL of the emulator debug server",
			Value:  transport.DefaultURL,
			EnvVar: "JEEBIE_URL",
		},
		cli.StringFlag{
			Name:  "replay",
			Usage: "Read server messages from a JSON lines file instead of connecting",
		},
		cli.StringFlag{
			Name:  "commands-out",
			Usage: "File receiving the commands sent in replay mode (- for stdout)",
		},
		cli.BoolFlag{
			Name:  "headless",
			Usage: "Print each step as text instead of running the terminal UI",
		},
		cli.IntFlag{
			Name:  "steps",
			Usage: "Number of steps to request in headless mode (0 = only observe)",
			Value: 0,
		},
		cli.StringSliceFlag{
			Name:  "table",
			Usage: "Memory table as <region>:<anchor>; region pc or operand follows that address, anchor is start, end, pc or prev-pc",
		},
		cli.IntFlag{
			Name:  "fps",
			Usage: "Terminal refresh rate",
			Value: timing.DefaultFPS,
		},
		cli.StringFlag{
			Name:   "log-level",
			Usage:  "Log level: debug, info, warn or error",
			Value:  "info",
			EnvVar: "JEEBIE_LOG_LEVEL",
		},
		cli.IntFlag{
			Name:  "snapshot-interval",
			Usage: "Save text snapshots every N steps in headless mode (0 = disabled)",
			Value: 0,
		},
		cli.StringFlag{
			Name:  "snapshot-dir",
			Usage: "Directory to save snapshots (default: temp directory)",
		},
	}
	app.Action = runDebugger

	err := app.Run(os.Args)
	if err != nil {
		slog.Error("Error running debugger", "error", err)
		os.Exit(1)
	}
}

func runDebugger(c *cli.Context) error {
	var level slog.Level
	if err := level.UnmarshalText([]byte(c.String("log-level"))); err != nil {
		return fmt.Errorf("invalid log level: %w", err)
	}

	tables, err := parseTables(c.StringSlice("table"))
	if err != nil {
		return err
	}

	headlessMode := c.Bool("headless")
	if headlessMode || !term.IsTerminal(int(os.Stdout.Fd())) {
		handler := slog.NewTextHandler(os.Stderr, &slog.HandlerOptions{Level: level})
		slog.SetDefault(slog.New(handler))
		if !headlessMode {
			slog.Warn("Standard output is not a terminal, running headless")
			headlessMode = true
		}
	}

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	var (
		sender         session.Sender
		inbox          <-chan protocol.Message
		name           = "session"
		closeTransport = func() {}
	)

	replayPath := c.String("replay")
	if replayPath != "" {
		f, err := os.Open(replayPath)
		if err != nil {
			return fmt.Errorf("failed to open replay: %w", err)
		}
		defer f.Close()

		out, closeOut, err := openCommandsOut(c.String("commands-out"))
		if err != nil {
			return err
		}
		defer closeOut()

		sender = transport.NewCommandLog(out)
		inbox = transport.NewReplay(f).Messages(ctx)
		name = strings.TrimSuffix(filepath.Base(replayPath), filepath.Ext(replayPath))
		slog.Info("Replaying session", "path", replayPath)
	} else {
		ws, err := transport.Dial(ctx, c.String("url"))
		if err != nil {
			return err
		}
		closeTransport = func() {
			if err := ws.Close(); err != nil {
				slog.Debug("Closing connection failed", "error", err)
			}
		}

		sender = ws
		inbox = ws.Messages(ctx)
	}

	s := session.New(sender, session.Config{Tables: tables})
	defer func() {
		// unblocks a send in flight before the outbox is stopped
		closeTransport()
		s.Close()
	}()

	var (
		b       backend.Backend
		limiter timing.Limiter
		config  = jeebie.Config{Title: "jeebie-dbg"}
	)
	if replayPath != "" && headlessMode {
		limiter = timing.NewNoOpLimiter()
	} else {
		ticker := timing.NewTickerLimiter(c.Int("fps"))
		defer ticker.Stop()
		limiter = ticker
	}

	if headlessMode {
		snapshotConfig, err := headless.CreateSnapshotConfig(c.Int("snapshot-interval"), c.String("snapshot-dir"), name)
		if err != nil {
			return err
		}
		b = headless.New(os.Stdout, c.Int("steps"), snapshotConfig)
		// one message per frame so every step is printed
		config.MessagesPerFrame = 1
		config.ExitOnDisconnect = true
	} else {
		b = terminal.New(level)
	}

	d := jeebie.New(s, b, inbox, limiter, config)
	if headlessMode {
		d.Input().SetDebounce(0)
	}
	return d.Run(ctx)
}

// parseTables parses --table values of the form <region>:<anchor>.
func parseTables(values []string) ([]debug.TableSpec, error) {
	var tables []debug.TableSpec
	for _, v := range values {
		region, anchorName, ok := strings.Cut(v, ":")
		if !ok || region == "" {
			return nil, fmt.Errorf("invalid table %q, expected <region>:<anchor>", v)
		}
		anchor, err := debug.ParseAnchor(anchorName)
		if err != nil {
			return nil, err
		}

		spec := debug.TableSpec{Anchor: anchor}
		switch region {
		case "pc":
		case "operand":
			spec.Operand = true
		default:
			spec.Region = region
		}
		tables = append(tables, spec)
	}
	return tables, nil
}

func openCommandsOut(path string) (io.Writer, func(), error) {
	switch path {
	case "":
		return io.Discard, func() {}, nil
	case "-":
		return os.Stdout, func() {}, nil
	}
	f, err := os.Create(path)
	if err != nil {
		return nil, nil, fmt.Errorf("failed to create commands file: %w", err)
	}
	return f, func() {
		if err := f.Close(); err != nil {
			slog.Error("Failed to close commands file", "error", err)
		}
	}, nil
}
