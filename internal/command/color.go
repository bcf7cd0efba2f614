package command

import "image/color"

// Color is an opaque RGB triple.
type Color struct {
	R, G, B uint8
}

var (
	Black = Color{}
	White = Color{R: 0xFF, G: 0xFF, B: 0xFF}
	Red   = Color{R: 0xFF}
)

// Pack folds the channels into the 0x00RRGGBB layout stored in the framebuffer.
func (c Color) Pack() uint32 {
	return uint32(c.R)<<16 | uint32(c.G)<<8 | uint32(c.B)
}

// Unpack is the inverse of Pack. The top byte is ignored.
func Unpack(packed uint32) Color {
	return Color{R: uint8(packed >> 16), G: uint8(packed >> 8), B: uint8(packed)}
}

// RGBA converts to an opaque image/color value.
func (c Color) RGBA() color.RGBA {
	return color.RGBA{R: c.R, G: c.G, B: c.B, A: 0xFF}
}
