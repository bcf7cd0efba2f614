package processor

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/rook-computer/drawloop/internal/command"
	"github.com/rook-computer/drawloop/internal/framebuffer"
	"github.com/rook-computer/drawloop/internal/state"
)

var (
	green = command.Color{G: 0xFF}
	blue  = command.Color{B: 0xFF}
)

func newProcessor(w, h int) (*Processor, *framebuffer.Framebuffer, *state.Registry) {
	fb := framebuffer.New(w, h)
	reg := state.NewRegistry()
	return New(fb, reg), fb, reg
}

func TestSetPixelLastWriteWins(t *testing.T) {
	p, fb, _ := newProcessor(4, 4)
	p.Apply([]command.Command{
		command.SetPixel{At: command.Pt(1, 1), Color: command.Red},
		command.SetPixel{At: command.Pt(2, 3), Color: green},
		command.SetPixel{At: command.Pt(1, 1), Color: blue},
	})
	assert.Equal(t, blue.Pack(), fb.At(1, 1))
	assert.Equal(t, green.Pack(), fb.At(2, 3))
}

func TestSetPixelIgnoresCurrentColor(t *testing.T) {
	p, fb, _ := newProcessor(4, 4)
	p.Apply([]command.Command{
		command.SetColor{Color: command.Red},
		command.SetPixel{At: command.Pt(0, 0), Color: green},
	})
	assert.Equal(t, green.Pack(), fb.At(0, 0))
	assert.Equal(t, command.Red, p.Current())
}

func TestFlushZeroesEverything(t *testing.T) {
	p, fb, _ := newProcessor(3, 3)
	fb.Fill(0x123456)
	st := p.Apply([]command.Command{command.Flush{}})
	assert.Equal(t, Stats{Applied: 1}, st)
	for _, px := range fb.Pixels() {
		assert.Zero(t, px)
	}
}

func TestSetColorScopesLaterCommands(t *testing.T) {
	p, fb, reg := newProcessor(8, 8)
	p.Apply([]command.Command{
		command.SetColor{Color: command.Red},
		command.DrawRect{From: command.Pt(0, 0), To: command.Pt(2, 2)},
		command.DrawLine{From: command.Pt(0, 4), To: command.Pt(3, 4)},
		command.SetColor{Color: blue},
		command.DrawRect{From: command.Pt(4, 0), To: command.Pt(6, 2)},
	})
	assert.Equal(t, command.Red.Pack(), fb.At(1, 1))
	assert.Equal(t, command.Red.Pack(), fb.At(3, 4))
	assert.Equal(t, blue.Pack(), fb.At(5, 1))
	assert.Equal(t, blue, reg.Color())
}

func TestCurrentColorPersistsAcrossBatches(t *testing.T) {
	p, fb, _ := newProcessor(4, 4)
	p.Apply([]command.Command{command.SetColor{Color: green}})
	p.Apply([]command.Command{command.DrawLine{From: command.Pt(0, 0), To: command.Pt(0, 3)}})
	for y := 0; y < 4; y++ {
		assert.Equal(t, green.Pack(), fb.At(0, y))
	}
}

func TestDefaultColorIsBlack(t *testing.T) {
	p, fb, _ := newProcessor(4, 4)
	fb.Fill(0xFFFFFF)
	p.Apply([]command.Command{command.DrawLine{From: command.Pt(0, 0), To: command.Pt(3, 3)}})
	for i := 0; i < 4; i++ {
		assert.Zero(t, fb.At(i, i))
	}
	assert.Equal(t, uint32(0xFFFFFF), fb.At(1, 0))
}

type bogus struct{}

func (bogus) Kind() command.Kind { return "bogus" }

func TestUnknownCommandSkipped(t *testing.T) {
	p, fb, _ := newProcessor(2, 2)
	st := p.Apply([]command.Command{
		bogus{},
		command.NewFrame{},
		command.SetPixel{At: command.Pt(1, 1), Color: command.White},
	})
	require.Equal(t, Stats{Applied: 2, Skipped: 1}, st)
	assert.Equal(t, command.White.Pack(), fb.At(1, 1))
}
