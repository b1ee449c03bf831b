package sceneio

import (
	"image"
	"image/color"
	"image/png"
	"io"

	"github.com/ajhager/lumentrace/pkg/core"
	"github.com/ajhager/lumentrace/pkg/texture"
)

func encodePNG(w io.Writer, img *image.NRGBA) error {
	return png.Encode(w, img)
}

// encodePixel converts a linear RGB radiance sample and its alpha into an
// 8-bit sRGB straight-alpha pixel.
func encodePixel(c core.Vec3, alpha float64) color.NRGBA {
	clamped := c.Clamp(0, 1)
	if alpha < 0 {
		alpha = 0
	} else if alpha > 1 {
		alpha = 1
	}
	return color.NRGBA{
		R: uint8(texture.LinearToSRGB(clamped.X)*255 + 0.5),
		G: uint8(texture.LinearToSRGB(clamped.Y)*255 + 0.5),
		B: uint8(texture.LinearToSRGB(clamped.Z)*255 + 0.5),
		A: uint8(alpha*255 + 0.5),
	}
}
