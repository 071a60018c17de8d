package main

import (
	"context"
	"errors"
	"flag"
	"fmt"
	"io"
	"log/slog"
	"os"
	"os/signal"
	"strings"
	"syscall"

	"golang.org/x/term"

	"github.com/1broseidon/framewm/internal/config"
	"github.com/1broseidon/framewm/internal/daemon"
	"github.com/1broseidon/framewm/internal/platform"
	"github.com/1broseidon/framewm/internal/runtimepath"
	"github.com/1broseidon/framewm/internal/tty"
)

// runFlags are the command line overrides of run.
type runFlags struct {
	display    string
	backend    string
	width      int
	height     int
	demo       string
	socket     string
	fullscreen bool
	verbose    bool
}

// apply writes the flags that were set into cfg.
func (f runFlags) apply(cfg *config.Config) {
	if f.backend != "" {
		cfg.Backend = config.Backend(f.backend)
	}
	if f.width > 0 {
		cfg.Screen.Width = f.width
	}
	if f.height > 0 {
		cfg.Screen.Height = f.height
	}
	if f.demo != "" {
		cfg.Demo.Windows = splitList(f.demo)
	}
	if f.socket != "" {
		cfg.Control.Socket = f.socket
	}
	if f.fullscreen {
		cfg.Screen.Fullscreen = true
	}
	if f.verbose {
		cfg.Logging.Level = "debug"
	}
}

// splitList parses a comma separated list. "none" is the empty list.
func splitList(s string) []string {
	if s == "none" {
		return []string{}
	}
	var out []string
	for _, part := range strings.Split(s, ",") {
		if part = strings.TrimSpace(part); part != "" {
			out = append(out, part)
		}
	}
	return out
}

func runDaemon(args []string) int {
	fs := flag.NewFlagSet("run", flag.ContinueOnError)
	fs.SetOutput(os.Stderr)
	path := fs.String("config", "", "Config file path (default: ~/.config/framewm/config.yaml)")
	var f runFlags
	fs.StringVar(&f.display, "display", "", "X display for the x11 backend (default: $DISPLAY)")
	fs.StringVar(&f.backend, "backend", "", "Presentation backend: headless, x11 or tty")
	fs.IntVar(&f.width, "width", 0, "Screen width in pixels")
	fs.IntVar(&f.height, "height", 0, "Screen height in pixels")
	fs.StringVar(&f.demo, "demo", "", "Comma separated demo windows, or \"none\"")
	fs.StringVar(&f.socket, "socket", "", "Control socket path")
	fs.BoolVar(&f.fullscreen, "fullscreen", false, "Ask the window manager for fullscreen (x11)")
	fs.BoolVar(&f.verbose, "verbose", false, "Log at debug level")
	fs.Usage = func() {
		fmt.Fprintln(os.Stderr, "Usage: framewm run [options]")
		fmt.Fprintln(os.Stderr, "")
		fs.PrintDefaults()
	}
	if err := fs.Parse(args); err != nil {
		if err == flag.ErrHelp {
			return 0
		}
		return 2
	}
	if fs.NArg() != 0 {
		fmt.Fprintln(os.Stderr, "run takes no arguments")
		fs.Usage()
		return 2
	}

	configPath, err := resolveConfigPath(*path)
	if err != nil {
		fmt.Fprintln(os.Stderr, err)
		return 1
	}
	res, err := config.LoadFromPath(configPath)
	if err != nil {
		fmt.Fprintf(os.Stderr, "Failed to load configuration: %v\n", err)
		return 1
	}
	cfg := res.Config
	f.apply(cfg)
	if err := cfg.Validate(); err != nil {
		fmt.Fprintln(os.Stderr, err)
		return 1
	}
	if _, err := os.Stat(configPath); err != nil {
		// Running on defaults: nothing to watch or reload.
		configPath = ""
	}

	logger, closeLog, err := newLogger(cfg)
	if err != nil {
		fmt.Fprintln(os.Stderr, err)
		return 1
	}
	defer closeLog()

	dev, closeDev, err := openDevice(cfg, f, logger)
	if err != nil {
		logger.Error("failed to open backend", "backend", cfg.Backend, "error", err)
		fmt.Fprintln(os.Stderr, err)
		return 1
	}
	defer closeDev()

	socket, err := runtimepath.SocketPath(cfg.Control.Socket)
	if err != nil {
		logger.Warn("control socket disabled", "error", err)
		socket = ""
	}

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	opts := daemon.Options{
		Config:     cfg,
		ConfigPath: configPath,
		Device:     dev,
		Logger:     logger,
		Socket:     socket,
		Override:   f.apply,
	}
	go reloadOnHangup(ctx, socket, logger)

	logger.Info("framewm starting",
		"version", version,
		"backend", cfg.Backend,
		"width", dev.Width(),
		"height", dev.Height(),
		"socket", socket)
	if err := daemon.Run(ctx, opts); err != nil {
		logger.Error("framewm stopped with error", "error", err)
		return 1
	}
	return 0
}

// reloadOnHangup turns SIGHUP into a RELOAD on the daemon's own socket.
func reloadOnHangup(ctx context.Context, socket string, logger *slog.Logger) {
	if socket == "" {
		return
	}
	sigCh := make(chan os.Signal, 1)
	signal.Notify(sigCh, syscall.SIGHUP)
	defer signal.Stop(sigCh)
	for {
		select {
		case <-ctx.Done():
			return
		case <-sigCh:
			logger.Info("received SIGHUP, reloading config")
			if err := newClient(socket).Reload(); err != nil {
				logger.Warn("config reload failed", "error", err)
			}
		}
	}
}

func resolveConfigPath(path string) (string, error) {
	if path != "" {
		return path, nil
	}
	return config.DefaultConfigPath()
}

func parseLevel(s string) slog.Level {
	var level slog.Level
	if err := level.UnmarshalText([]byte(s)); err != nil {
		return slog.LevelInfo
	}
	return level
}

// newLogger builds the daemon logger from logging.level and logging.file.
// The tty backend owns the terminal, so without a log file its logs go to
// the runtime directory instead of stderr.
func newLogger(cfg *config.Config) (*slog.Logger, func(), error) {
	var out io.Writer = os.Stderr
	closeFn := func() {}

	file := cfg.Logging.File
	if file == "" && cfg.Backend == config.BackendTTY && term.IsTerminal(int(os.Stderr.Fd())) {
		path, err := runtimepath.LogPath()
		if err != nil {
			return nil, nil, err
		}
		file = path
	}
	if file != "" {
		fh, err := os.OpenFile(file, os.O_CREATE|os.O_WRONLY|os.O_APPEND, 0o600)
		if err != nil {
			return nil, nil, fmt.Errorf("open log file: %w", err)
		}
		out = fh
		closeFn = func() { fh.Close() }
	}

	logger := slog.New(slog.NewTextHandler(out, &slog.HandlerOptions{
		Level: parseLevel(cfg.Logging.Level),
	}))
	return logger, closeFn, nil
}

// openDevice creates the presentation backend named by cfg.Backend.
func openDevice(cfg *config.Config, f runFlags, logger *slog.Logger) (platform.Device, func(), error) {
	switch cfg.Backend {
	case config.BackendHeadless:
		return platform.NewMemoryDevice(cfg.Screen.Width, cfg.Screen.Height), func() {}, nil

	case config.BackendX11:
		dev, err := platform.NewX11Device(f.display, "framewm", cfg.Screen.Width, cfg.Screen.Height)
		if err != nil {
			return nil, nil, err
		}
		if cfg.Screen.Fullscreen {
			if err := dev.SetFullscreen(true); err != nil {
				logger.Warn("fullscreen request failed", "error", err)
			}
		}
		if err := dev.Activate(); err != nil {
			logger.Debug("activate request failed", "error", err)
		}
		return dev, dev.Close, nil

	case config.BackendTTY:
		if !term.IsTerminal(int(os.Stdout.Fd())) {
			return nil, nil, errors.New("tty backend needs a terminal on stdout")
		}
		dev, err := tty.Open(cfg.Screen.Width, cfg.Screen.Height)
		if err != nil {
			return nil, nil, err
		}
		return dev, dev.Close, nil

	default:
		return nil, nil, fmt.Errorf("unknown backend %q", cfg.Backend)
	}
}
