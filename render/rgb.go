// Package render converts RGBA frames into coloured terminal cells
package render

import (
	"image/color"

	"github.com/gdamore/tcell/v2"
)

// RGB is an opaque 8-bit colour
type RGB struct {
	R, G, B uint8
}

// Predefined colours
var (
	RGBBlack = RGB{0, 0, 0}
	RGBWhite = RGB{255, 255, 255}
)

// FromColor converts any color.Color to RGB, undoing alpha premultiplication
func FromColor(c color.Color) RGB {
	r, g, b, a := c.RGBA()
	if a == 0 {
		return RGBBlack
	}
	return RGB{
		R: uint8((r * 0xff) / a),
		G: uint8((g * 0xff) / a),
		B: uint8((b * 0xff) / a),
	}
}

// RGBToTcell converts RGB to tcell.Color
func RGBToTcell(rgb RGB) tcell.Color {
	return tcell.NewRGBColor(int32(rgb.R), int32(rgb.G), int32(rgb.B))
}
