package render

import (
	"fmt"
	"image"
	"image/draw"

	"github.com/golang/freetype"
	"github.com/golang/freetype/truetype"
	"golang.org/x/image/font"
	"golang.org/x/image/font/gofont/goregular"

	"github.com/rook-computer/drawloop/internal/command"
	"github.com/rook-computer/drawloop/internal/state"
)

// HUD draws a one-line status text over the presented surface. It never
// touches the framebuffer.
type HUD struct {
	ctx    *freetype.Context
	size   float64
	color  command.Color
	canvas *image.Alpha
}

const hudMaxWidth = 320

// NewHUD parses the Go Regular font and prepares a text context at the given
// point size.
func NewHUD(size float64, c command.Color) (*HUD, error) {
	if size <= 0 {
		size = 12
	}
	f, err := truetype.Parse(goregular.TTF)
	if err != nil {
		return nil, fmt.Errorf("parse hud font: %w", err)
	}
	ctx := freetype.NewContext()
	ctx.SetDPI(72)
	ctx.SetFont(f)
	ctx.SetFontSize(size)
	ctx.SetHinting(font.HintingFull)
	ctx.SetSrc(image.Opaque)
	return &HUD{ctx: ctx, size: size, color: c}, nil
}

// Text is the line drawn for snap.
func (h *HUD) Text(snap state.Snapshot) string {
	return fmt.Sprintf("dt %.1fms  %.0fx%.0f", snap.DeltaTime*1000, snap.Dimensions.Width, snap.Dimensions.Height)
}

func (h *HUD) lineHeight() int { return int(h.size*1.5) + 1 }

// Draw renders the status line into the top-left corner of a width x height
// packed pixel buffer. Glyph coverage is thresholded, not blended.
func (h *HUD) Draw(dst []uint32, width, height int, snap state.Snapshot) {
	w := min(width, hudMaxWidth)
	lh := min(height, h.lineHeight())
	if w <= 0 || lh <= 0 || len(dst) < width*lh {
		return
	}
	bounds := image.Rect(0, 0, w, lh)
	if h.canvas == nil || h.canvas.Bounds() != bounds {
		h.canvas = image.NewAlpha(bounds)
	}
	draw.Draw(h.canvas, bounds, image.Transparent, image.Point{}, draw.Src)

	h.ctx.SetDst(h.canvas)
	h.ctx.SetClip(bounds)
	baseline := freetype.Pt(4, int(h.size)+2)
	if _, err := h.ctx.DrawString(h.Text(snap), baseline); err != nil {
		return
	}

	packed := h.color.Pack()
	for y := 0; y < lh; y++ {
		row := h.canvas.Pix[y*h.canvas.Stride : y*h.canvas.Stride+w]
		for x, a := range row {
			if a >= 0x80 {
				dst[y*width+x] = packed
			}
		}
	}
}
