// Package config loads drawloop settings. Later sources override earlier
// ones: defaults, then a TOML file, then DRAWLOOP_* environment variables,
// then command-line flags (applied by main).
package config

import (
	"errors"
	"fmt"
	"os"
	"strconv"
	"time"

	"github.com/pelletier/go-toml/v2"

	"github.com/rook-computer/drawloop/internal/framebuffer"
	"github.com/rook-computer/drawloop/internal/logging"
)

const (
	BackendShiny    = "shiny"
	BackendFBDev    = "fbdev"
	BackendHeadless = "headless"
)

const (
	EnvTitle         = "DRAWLOOP_TITLE"
	EnvWidth         = "DRAWLOOP_WIDTH"
	EnvHeight        = "DRAWLOOP_HEIGHT"
	EnvBackend       = "DRAWLOOP_BACKEND"
	EnvFBDevice      = "DRAWLOOP_FB_DEVICE"
	EnvResizePolicy  = "DRAWLOOP_RESIZE_POLICY"
	EnvFrameInterval = "DRAWLOOP_FRAME_INTERVAL"
	EnvHUD           = "DRAWLOOP_HUD"
	EnvLogLevel      = "DRAWLOOP_LOG_LEVEL"
	EnvLogFile       = "DRAWLOOP_LOG_FILE"
	EnvStdioLog      = "DRAWLOOP_STDIO_LOG"
	EnvSnapshot      = "DRAWLOOP_SNAPSHOT"
	EnvScript        = "DRAWLOOP_SCRIPT"
)

var ErrInvalid = errors.New("invalid config")

// Duration is a time.Duration written as a string such as "16ms" in TOML.
type Duration struct {
	time.Duration
}

func (d Duration) MarshalText() ([]byte, error) {
	return []byte(d.String()), nil
}

func (d *Duration) UnmarshalText(b []byte) error {
	v, err := time.ParseDuration(string(b))
	if err != nil {
		return err
	}
	d.Duration = v
	return nil
}

type Config struct {
	Title  string `toml:"title"`
	Width  int    `toml:"width"`
	Height int    `toml:"height"`

	// Backend is one of shiny, fbdev or headless.
	Backend  string `toml:"backend"`
	FBDevice string `toml:"fb_device"`

	// ResizePolicy is reflow or preserve.
	ResizePolicy  string   `toml:"resize_policy"`
	FrameInterval Duration `toml:"frame_interval"`
	HUD           bool     `toml:"hud"`

	LogLevel string `toml:"log_level"`
	// LogFile receives structured logs; empty means stderr.
	LogFile  string `toml:"log_file"`
	StdioLog string `toml:"stdio_log"`

	// Script runs instead of the demo scene when set.
	Script string `toml:"script"`
	Watch  bool   `toml:"watch"`
	// Snapshot is a PNG path written with the last headless frame.
	Snapshot string `toml:"snapshot"`
}

func Default() Config {
	return Config{
		Title:         "hello",
		Width:         640,
		Height:        480,
		Backend:       BackendShiny,
		FBDevice:      "/dev/fb0",
		ResizePolicy:  framebuffer.Reflow.String(),
		FrameInterval: Duration{time.Second / 60},
		LogLevel:      "info",
	}
}

// LoadFile overlays the TOML file at path onto c. Unknown keys are errors.
func (c *Config) LoadFile(path string) error {
	f, err := os.Open(path)
	if err != nil {
		return fmt.Errorf("open config: %w", err)
	}
	defer f.Close()
	dec := toml.NewDecoder(f)
	dec.DisallowUnknownFields()
	if err := dec.Decode(c); err != nil {
		return fmt.Errorf("parse config %s: %w", path, err)
	}
	return nil
}

// ApplyEnv overlays DRAWLOOP_* variables found through lookup, usually
// os.LookupEnv.
func (c *Config) ApplyEnv(lookup func(string) (string, bool)) error {
	str := func(key string, dst *string) {
		if v, ok := lookup(key); ok && v != "" {
			*dst = v
		}
	}
	str(EnvTitle, &c.Title)
	str(EnvBackend, &c.Backend)
	str(EnvFBDevice, &c.FBDevice)
	str(EnvResizePolicy, &c.ResizePolicy)
	str(EnvLogLevel, &c.LogLevel)
	str(EnvLogFile, &c.LogFile)
	str(EnvStdioLog, &c.StdioLog)
	str(EnvSnapshot, &c.Snapshot)
	str(EnvScript, &c.Script)

	var errs []error
	for key, dst := range map[string]*int{EnvWidth: &c.Width, EnvHeight: &c.Height} {
		raw, ok := lookup(key)
		if !ok || raw == "" {
			continue
		}
		v, err := strconv.Atoi(raw)
		if err != nil {
			errs = append(errs, fmt.Errorf("%s must be an integer (got %q): %w", key, raw, err))
			continue
		}
		*dst = v
	}
	if raw, ok := lookup(EnvHUD); ok && raw != "" {
		v, err := strconv.ParseBool(raw)
		if err != nil {
			errs = append(errs, fmt.Errorf("%s must be a boolean (got %q): %w", EnvHUD, raw, err))
		} else {
			c.HUD = v
		}
	}
	if raw, ok := lookup(EnvFrameInterval); ok && raw != "" {
		v, err := time.ParseDuration(raw)
		if err != nil {
			errs = append(errs, fmt.Errorf("%s must be a duration (got %q): %w", EnvFrameInterval, raw, err))
		} else {
			c.FrameInterval.Duration = v
		}
	}
	return errors.Join(errs...)
}

// Validate reports every invalid field at once.
func (c Config) Validate() error {
	var errs []error
	if c.Width <= 0 || c.Height <= 0 {
		errs = append(errs, fmt.Errorf("%w: window size %dx%d", ErrInvalid, c.Width, c.Height))
	}
	switch c.Backend {
	case BackendShiny, BackendFBDev, BackendHeadless:
	default:
		errs = append(errs, fmt.Errorf("%w: unknown backend %q", ErrInvalid, c.Backend))
	}
	if _, err := framebuffer.ParseResizePolicy(c.ResizePolicy); err != nil {
		errs = append(errs, fmt.Errorf("%w: %v", ErrInvalid, err))
	}
	if _, err := logging.ParseLevel(c.LogLevel); err != nil {
		errs = append(errs, fmt.Errorf("%w: %v", ErrInvalid, err))
	}
	if c.FrameInterval.Duration < 0 {
		errs = append(errs, fmt.Errorf("%w: negative frame interval %s", ErrInvalid, c.FrameInterval))
	}
	if c.Watch && c.Script == "" {
		errs = append(errs, fmt.Errorf("%w: watch needs a script", ErrInvalid))
	}
	return errors.Join(errs...)
}

// Policy is the parsed ResizePolicy. Call Validate first.
func (c Config) Policy() framebuffer.ResizePolicy {
	p, _ := framebuffer.ParseResizePolicy(c.ResizePolicy)
	return p
}
