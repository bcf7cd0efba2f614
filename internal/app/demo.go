package app

import (
	"context"
	"time"

	"github.com/chewxy/math32"

	"github.com/rook-computer/drawloop/internal/command"
	"github.com/rook-computer/drawloop/internal/logging"
	"github.com/rook-computer/drawloop/internal/render"
)

const (
	demoSpokes     = 24
	demoBoxSize    = 40
	demoSpinSpeed  = 0.8 // radians per second
	demoBoxSpeed   = 180 // pixels per second
	demoMaxStepSec = 0.1
)

// Demo animates a rotating line fan and a bouncing box through the public
// engine API. Every frame ends with Flush, so each frame starts cleared.
type Demo struct {
	Engine   *render.Engine
	Logger   logging.Logger
	Interval time.Duration

	angle  float32
	box    [2]float32
	vel    [2]float32
	frames int
}

func (d *Demo) Run(ctx context.Context) error {
	interval := d.Interval
	if interval <= 0 {
		interval = time.Second / 60
	}
	logger := d.Logger
	if logger == nil {
		logger = logging.NoopLogger{}
	}
	d.vel = [2]float32{demoBoxSpeed, demoBoxSpeed * 0.7}

	ticker := time.NewTicker(interval)
	defer ticker.Stop()
	for {
		select {
		case <-ctx.Done():
			return ctx.Err()
		case <-d.Engine.Done():
			logger.Infof("demo", "window closed after %d frames", d.frames)
			return nil
		case <-ticker.C:
		}
		if err := d.Frame(); err != nil {
			return err
		}
	}
}

// Frame advances the animation by the published delta time and submits one
// frame of commands.
func (d *Demo) Frame() error {
	dt, err := d.Engine.DeltaTime()
	if err != nil {
		return err
	}
	dims, err := d.Engine.ScreenDimensions()
	if err != nil {
		return err
	}
	w, h := float32(dims.Width), float32(dims.Height)
	if w <= 0 || h <= 0 {
		return d.Engine.Flush()
	}
	step := min(float32(dt), demoMaxStepSec)
	d.angle += demoSpinSpeed * step
	d.move(step, w, h)

	cx, cy := w/2, h/2
	radius := min(w, h) * 0.45
	for i := 0; i < demoSpokes; i++ {
		a := d.angle + float32(i)*2*math32.Pi/demoSpokes
		if err := d.Engine.SetColor(spokeColor(i)); err != nil {
			return err
		}
		to := command.Pt(int(cx+radius*math32.Cos(a)), int(cy+radius*math32.Sin(a)))
		if err := d.Engine.DrawLine(command.Pt(int(cx), int(cy)), to); err != nil {
			return err
		}
	}

	if err := d.Engine.SetColor(command.White); err != nil {
		return err
	}
	from := command.Pt(int(d.box[0]), int(d.box[1]))
	if err := d.Engine.DrawRect(from, command.Pt(from.X+demoBoxSize, from.Y+demoBoxSize)); err != nil {
		return err
	}
	d.frames++
	return d.Engine.Flush()
}

// move bounces the box off the edges of a w x h canvas.
func (d *Demo) move(step, w, h float32) {
	limits := [2]float32{w - demoBoxSize, h - demoBoxSize}
	for i := range d.box {
		d.box[i] += d.vel[i] * step
		switch {
		case limits[i] <= 0:
			d.box[i] = 0
		case d.box[i] < 0:
			d.box[i] = -d.box[i]
			d.vel[i] = -d.vel[i]
		case d.box[i] > limits[i]:
			d.box[i] = 2*limits[i] - d.box[i]
			d.vel[i] = -d.vel[i]
		}
		d.box[i] = max(0, min(d.box[i], max(limits[i], 0)))
	}
}

// spokeColor walks the hue circle in demoSpokes steps.
func spokeColor(i int) command.Color {
	t := float32(i) / demoSpokes * 2 * math32.Pi
	ch := func(phase float32) uint8 {
		return uint8(127.5 + 127.5*math32.Sin(t+phase))
	}
	return command.Color{R: ch(0), G: ch(2 * math32.Pi / 3), B: ch(4 * math32.Pi / 3)}
}
