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
	"syscall"

	"github.com/rook-computer/drawloop/internal/app"
	"github.com/rook-computer/drawloop/internal/config"
	"github.com/rook-computer/drawloop/internal/logging"
)

func main() {
	os.Exit(run())
}

func run() int {
	defaults := config.Default()
	configPath := flag.String("config", "", "TOML config file")
	title := flag.String("title", defaults.Title, "window title")
	width := flag.Int("width", defaults.Width, "window width in pixels")
	height := flag.Int("height", defaults.Height, "window height in pixels")
	backend := flag.String("backend", defaults.Backend, "window system: shiny, fbdev or headless")
	fbDevice := flag.String("fb-device", defaults.FBDevice, "framebuffer device for the fbdev backend")
	resize := flag.String("resize", defaults.ResizePolicy, "framebuffer resize policy: reflow or preserve")
	interval := flag.Duration("frame-interval", defaults.FrameInterval.Duration, "minimum time between redraws")
	hud := flag.Bool("hud", false, "draw frame time and size over the window")
	debug := flag.Bool("debug", false, "shorthand for -log-level debug")
	logLevel := flag.String("log-level", defaults.LogLevel, "debug, info, warn or error")
	logFile := flag.String("log-file", "", "append logs to this file instead of stderr")
	stdioLog := flag.String("stdio-log", "", "redirect stdout+stderr (including panics) to this file; also configurable via "+config.EnvStdioLog)
	scriptPath := flag.String("script", "", "YAML script of host calls to run instead of the demo")
	watch := flag.Bool("watch", false, "rerun the script whenever it changes")
	snapshot := flag.String("snapshot", "", "write the last headless frame to this PNG file")
	flag.Parse()

	cfg := config.Default()
	if *configPath != "" {
		if err := cfg.LoadFile(*configPath); err != nil {
			fmt.Fprintln(os.Stderr, err)
			return 2
		}
	}
	if err := cfg.ApplyEnv(os.LookupEnv); err != nil {
		fmt.Fprintln(os.Stderr, err)
		return 2
	}
	// Flags given on the command line win over file and environment.
	flag.Visit(func(f *flag.Flag) {
		switch f.Name {
		case "title":
			cfg.Title = *title
		case "width":
			cfg.Width = *width
		case "height":
			cfg.Height = *height
		case "backend":
			cfg.Backend = *backend
		case "fb-device":
			cfg.FBDevice = *fbDevice
		case "resize":
			cfg.ResizePolicy = *resize
		case "frame-interval":
			cfg.FrameInterval.Duration = *interval
		case "hud":
			cfg.HUD = *hud
		case "log-level":
			cfg.LogLevel = *logLevel
		case "debug":
			if *debug {
				cfg.LogLevel = "debug"
			}
		case "log-file":
			cfg.LogFile = *logFile
		case "stdio-log":
			cfg.StdioLog = *stdioLog
		case "script":
			cfg.Script = *scriptPath
		case "watch":
			cfg.Watch = *watch
		case "snapshot":
			cfg.Snapshot = *snapshot
		}
	})
	if err := cfg.Validate(); err != nil {
		fmt.Fprintln(os.Stderr, err)
		return 2
	}

	// Best-effort: send all stdout/stderr output (including panic stack
	// traces) to a file, since the fbdev backend leaves the console in
	// graphics mode.
	if cfg.StdioLog != "" {
		if err := redirectStdIO(cfg.StdioLog); err != nil {
			fmt.Println("stdio log redirect error:", err)
		}
	}

	level, _ := logging.ParseLevel(cfg.LogLevel)
	var out io.Writer = os.Stderr
	if cfg.LogFile != "" {
		f, err := os.OpenFile(cfg.LogFile, os.O_CREATE|os.O_APPEND|os.O_WRONLY, 0644)
		if err != nil {
			fmt.Fprintln(os.Stderr, "log file open error:", err)
			return 1
		}
		defer f.Close()
		out = f
	}
	logger := logging.NewTextLogger(out, level)
	slog.SetDefault(logger.Slog())

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	a, err := app.New(cfg, logger)
	if err != nil {
		logger.Errorf("main", "setup: %v", err)
		return 1
	}
	if err := a.Start(ctx); err != nil && !errors.Is(err, context.Canceled) {
		logger.Errorf("main", "%v", err)
		return 1
	}
	return 0
}
