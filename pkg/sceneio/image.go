// Package sceneio holds the renderer's external-collaborator adapters:
// image decoding and glTF/PLY scene import, which the core library treats
// as out-of-scope but a complete renderer still needs to be useful.
package sceneio

import (
	"fmt"
	"image"
	_ "image/jpeg" // JPEG decoder, registered with image.Decode
	_ "image/png"  // PNG decoder, registered with image.Decode
	"os"

	"github.com/ajhager/lumentrace/pkg/core"
	"github.com/ajhager/lumentrace/pkg/texture"
	"github.com/nfnt/resize"
	"golang.org/x/image/bmp"
	"golang.org/x/image/tiff"
)

func init() {
	image.RegisterFormat("bmp", "BM", bmp.Decode, bmp.DecodeConfig)
	image.RegisterFormat("tiff", "II*\x00", tiff.Decode, tiff.DecodeConfig)
	image.RegisterFormat("tiff", "MM\x00*", tiff.Decode, tiff.DecodeConfig)
}

// LoadTexture decodes a PNG/JPEG/BMP/TIFF file into a byte-backed sRGB RGB
// texture. maxDim, if positive, downsamples the image so its longer edge
// does not exceed it.
func LoadTexture(path string, maxDim int) (*texture.Texture, error) {
	file, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("sceneio: opening texture %q: %w", path, err)
	}
	defer file.Close()

	img, _, err := image.Decode(file)
	if err != nil {
		return nil, fmt.Errorf("sceneio: decoding texture %q: %w", path, err)
	}
	return textureFromImage(img, maxDim), nil
}

// textureFromImage converts a decoded image into a byte-backed sRGB RGB
// texture, downsampling so its longer edge does not exceed maxDim when
// maxDim is positive.
func textureFromImage(img image.Image, maxDim int) *texture.Texture {
	if maxDim > 0 {
		bounds := img.Bounds()
		if bounds.Dx() > maxDim || bounds.Dy() > maxDim {
			if bounds.Dx() >= bounds.Dy() {
				img = resize.Resize(uint(maxDim), 0, img, resize.Lanczos3)
			} else {
				img = resize.Resize(0, uint(maxDim), img, resize.Lanczos3)
			}
		}
	}

	bounds := img.Bounds()
	w, h := bounds.Dx(), bounds.Dy()
	pixels := make([]uint8, w*h*3)
	for y := 0; y < h; y++ {
		for x := 0; x < w; x++ {
			r, g, b, _ := img.At(x+bounds.Min.X, y+bounds.Min.Y).RGBA()
			i := (y*w + x) * 3
			pixels[i] = uint8(r >> 8)
			pixels[i+1] = uint8(g >> 8)
			pixels[i+2] = uint8(b >> 8)
		}
	}
	return texture.NewByteRGB(w, h, pixels)
}

// WritePNG writes a linear-RGB render buffer and its matching per-pixel
// alpha (surface coverage, 1 for an opaque hit or an environment miss) out
// as an 8-bit sRGB straight-alpha PNG.
func WritePNG(path string, render [][]core.Vec3, alpha [][]float64) error {
	height := len(render)
	if height == 0 {
		return fmt.Errorf("sceneio: empty render buffer")
	}
	width := len(render[0])

	img := image.NewNRGBA(image.Rect(0, 0, width, height))
	for y := 0; y < height; y++ {
		for x := 0; x < width; x++ {
			img.SetNRGBA(x, y, encodePixel(render[y][x], alpha[y][x]))
		}
	}

	file, err := os.Create(path)
	if err != nil {
		return fmt.Errorf("sceneio: creating %q: %w", path, err)
	}
	defer file.Close()
	return encodePNG(file, img)
}
