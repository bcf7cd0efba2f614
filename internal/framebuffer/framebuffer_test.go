package framebuffer

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/rook-computer/drawloop/internal/command"
)

func TestNewIsZeroed(t *testing.T) {
	fb := New(4, 3)
	w, h := fb.Size()
	assert.Equal(t, 4, w)
	assert.Equal(t, 3, h)
	require.Len(t, fb.Pixels(), 12)
	for _, p := range fb.Pixels() {
		assert.Zero(t, p)
	}
}

func TestNegativeExtentClamped(t *testing.T) {
	fb := New(-3, 5)
	w, h := fb.Size()
	assert.Equal(t, 0, w)
	assert.Equal(t, 5, h)
	assert.Empty(t, fb.Pixels())
}

func TestSetIndexAndBounds(t *testing.T) {
	fb := New(4, 4)
	fb.Set(1, 2, 0xABCDEF)
	assert.Equal(t, uint32(0xABCDEF), fb.Pixels()[2*4+1])
	assert.Equal(t, uint32(0xABCDEF), fb.At(1, 2))

	for _, p := range [][2]int{{-1, 0}, {0, -1}, {4, 0}, {0, 4}, {100, 100}} {
		fb.Set(p[0], p[1], 1)
		assert.Zero(t, fb.At(p[0], p[1]))
	}
	count := 0
	for _, p := range fb.Pixels() {
		if p != 0 {
			count++
		}
	}
	assert.Equal(t, 1, count)
}

func TestFill(t *testing.T) {
	fb := New(3, 3)
	fb.Set(0, 0, 5)
	fb.Fill(0)
	for _, p := range fb.Pixels() {
		assert.Zero(t, p)
	}
	fb.Fill(command.Red.Pack())
	for _, p := range fb.Pixels() {
		assert.Equal(t, command.Red.Pack(), p)
	}
}

func fillSequence(fb *Framebuffer) {
	for i := range fb.Pixels() {
		fb.Pixels()[i] = uint32(i + 1)
	}
}

func TestResizeReflowKeepsLinearIndex(t *testing.T) {
	cases := []struct{ w1, h1, w2, h2 int }{
		{4, 4, 2, 8},
		{4, 4, 8, 8},
		{5, 3, 2, 2},
		{2, 2, 7, 1},
		{3, 3, 0, 0},
	}
	for _, tc := range cases {
		fb := New(tc.w1, tc.h1)
		fillSequence(fb)
		old := append([]uint32(nil), fb.Pixels()...)

		fb.Resize(tc.w2, tc.h2)
		w, h := fb.Size()
		require.Equal(t, tc.w2, w)
		require.Equal(t, tc.h2, h)
		require.Len(t, fb.Pixels(), tc.w2*tc.h2)

		n := min(len(old), tc.w2*tc.h2)
		for i := 0; i < n; i++ {
			assert.Equal(t, old[i], fb.Pixels()[i], "index %d", i)
		}
		for i := n; i < len(fb.Pixels()); i++ {
			assert.Zero(t, fb.Pixels()[i], "index %d", i)
		}
	}
}

func TestResizePreserveKeepsCoordinates(t *testing.T) {
	fb := New(3, 2)
	fb.SetResizePolicy(Preserve)
	fillSequence(fb)
	before := map[[2]int]uint32{}
	for y := 0; y < 2; y++ {
		for x := 0; x < 3; x++ {
			before[[2]int{x, y}] = fb.At(x, y)
		}
	}

	fb.Resize(2, 4)
	for y := 0; y < 4; y++ {
		for x := 0; x < 2; x++ {
			want, ok := before[[2]int{x, y}]
			if !ok {
				want = 0
			}
			assert.Equal(t, want, fb.At(x, y), "(%d,%d)", x, y)
		}
	}
}

func TestBlitToOverlap(t *testing.T) {
	fb := New(3, 3)
	fillSequence(fb)

	dst := make([]uint32, 2*4)
	for i := range dst {
		dst[i] = 99
	}
	fb.BlitTo(dst, 2, 4)
	assert.Equal(t, []uint32{1, 2, 4, 5, 7, 8, 99, 99}, dst)

	short := make([]uint32, 3)
	fb.BlitTo(short, 3, 3)
	assert.Equal(t, []uint32{1, 2, 3}, short)
}

func TestImage(t *testing.T) {
	fb := New(2, 1)
	fb.Set(1, 0, command.Color{R: 1, G: 2, B: 3}.Pack())
	img := fb.Image()
	assert.Equal(t, command.Color{R: 1, G: 2, B: 3}.RGBA(), img.RGBAAt(1, 0))
	assert.Equal(t, uint8(0xFF), img.RGBAAt(0, 0).A)
}

func TestParseResizePolicy(t *testing.T) {
	p, err := ParseResizePolicy("Preserve")
	require.NoError(t, err)
	assert.Equal(t, Preserve, p)
	p, err = ParseResizePolicy("")
	require.NoError(t, err)
	assert.Equal(t, Reflow, p)
	_, err = ParseResizePolicy("stretch")
	assert.Error(t, err)
}
