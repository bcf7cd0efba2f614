// Package processor applies one frame's batch of commands to the
// framebuffer.
package processor

import (
	"github.com/rook-computer/drawloop/internal/command"
	"github.com/rook-computer/drawloop/internal/framebuffer"
	"github.com/rook-computer/drawloop/internal/logging"
	"github.com/rook-computer/drawloop/internal/raster"
	"github.com/rook-computer/drawloop/internal/state"
)

// Stats counts what one Apply did.
type Stats struct {
	Applied int
	Skipped int
}

// Processor owns the persistent current color. It must only be used from
// the render goroutine.
type Processor struct {
	fb       *framebuffer.Framebuffer
	registry *state.Registry
	current  command.Color
	Logger   logging.Logger
}

func New(fb *framebuffer.Framebuffer, registry *state.Registry) *Processor {
	return &Processor{fb: fb, registry: registry, Logger: logging.NoopLogger{}}
}

// Current is the color DrawRect and DrawLine use.
func (p *Processor) Current() command.Color { return p.current }

// Apply runs batch in order. SetColor persists across calls.
func (p *Processor) Apply(batch []command.Command) Stats {
	var st Stats
	for _, cmd := range batch {
		if p.apply(cmd) {
			st.Applied++
		} else {
			st.Skipped++
		}
	}
	return st
}

func (p *Processor) apply(cmd command.Command) bool {
	switch c := cmd.(type) {
	case command.NewFrame:
	case command.Flush:
		p.fb.Fill(0)
	case command.SetColor:
		p.current = c.Color
		if p.registry != nil {
			p.registry.SetColor(c.Color)
		}
	case command.SetPixel:
		raster.Plot(p.fb, c.At, c.Color.Pack())
	case command.DrawRect:
		raster.FillRect(p.fb, c.From, c.To, p.current.Pack())
	case command.DrawLine:
		raster.Line(p.fb, c.From, c.To, p.current.Pack())
	default:
		p.Logger.Errorf("processor", "skipping unsupported command %T", cmd)
		return false
	}
	return true
}
