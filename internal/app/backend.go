package app

import (
	"fmt"

	"github.com/rook-computer/drawloop/internal/config"
	"github.com/rook-computer/drawloop/internal/logging"
	"github.com/rook-computer/drawloop/internal/platform"
	"github.com/rook-computer/drawloop/internal/platform/fbdev"
	"github.com/rook-computer/drawloop/internal/platform/headless"
	"github.com/rook-computer/drawloop/internal/platform/shiny"
)

// NewBackend returns the window system named by cfg.Backend.
func NewBackend(cfg config.Config, logger logging.Logger) (platform.Backend, error) {
	switch cfg.Backend {
	case config.BackendShiny:
		return shiny.New(), nil
	case config.BackendFBDev:
		return fbdev.New(cfg.FBDevice, cfg.FrameInterval.Duration, logger), nil
	case config.BackendHeadless:
		return headless.New(cfg.FrameInterval.Duration), nil
	default:
		return nil, fmt.Errorf("unknown backend %q", cfg.Backend)
	}
}
