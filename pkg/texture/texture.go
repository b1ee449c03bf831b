// Package texture implements the four-kind texture storage and bilinear,
// wrap-addressed lookup described by the renderer's scene model: a texture is
// either a linear-float RGB grid, a byte (sRGB-encoded) RGB grid, a
// linear-float scalar grid, or a byte scalar grid. An empty texture (zero
// value) always evaluates to white.
package texture

import (
	"math"

	"github.com/ajhager/lumentrace/pkg/core"
)

// Kind identifies which backing pixel grid a Texture carries.
type Kind int

const (
	// KindEmpty marks a texture with no backing pixels; Eval returns white.
	KindEmpty Kind = iota
	KindFloatRGB
	KindByteRGB
	KindFloatScalar
	KindByteScalar
)

// Texture is a 2D grid of either color or scalar texels, stored either as
// linear floats or sRGB-encoded bytes. Exactly one of the slices below is
// populated, selected by Kind.
type Texture struct {
	Kind   Kind
	Width  int
	Height int

	FloatRGB    []core.Vec3 // row-major, linear space
	ByteRGB     []uint8     // row-major, 3 bytes/texel, sRGB-encoded
	FloatScalar []float64   // row-major, linear space
	ByteScalar  []uint8     // row-major, sRGB-encoded
}

// NewFloatRGB wraps a row-major linear-float RGB grid.
func NewFloatRGB(w, h int, px []core.Vec3) *Texture {
	return &Texture{Kind: KindFloatRGB, Width: w, Height: h, FloatRGB: px}
}

// NewByteRGB wraps a row-major sRGB-encoded byte RGB grid (3 bytes/texel).
func NewByteRGB(w, h int, px []uint8) *Texture {
	return &Texture{Kind: KindByteRGB, Width: w, Height: h, ByteRGB: px}
}

// NewFloatScalar wraps a row-major linear-float scalar grid.
func NewFloatScalar(w, h int, px []float64) *Texture {
	return &Texture{Kind: KindFloatScalar, Width: w, Height: h, FloatScalar: px}
}

// NewByteScalar wraps a row-major sRGB-encoded byte scalar grid.
func NewByteScalar(w, h int, px []uint8) *Texture {
	return &Texture{Kind: KindByteScalar, Width: w, Height: h, ByteScalar: px}
}

// texelRGB returns the (possibly broadcast) linear-space color at integer
// texel (i, j), decoding bytes to [0,1] and, unless ldrAsLinear, applying
// sRGB->linear decoding.
func (t *Texture) texelRGB(i, j int, ldrAsLinear bool) core.Vec3 {
	idx := j*t.Width + i
	switch t.Kind {
	case KindFloatRGB:
		return t.FloatRGB[idx]
	case KindByteRGB:
		base := idx * 3
		r := float64(t.ByteRGB[base]) / 255.0
		g := float64(t.ByteRGB[base+1]) / 255.0
		b := float64(t.ByteRGB[base+2]) / 255.0
		if !ldrAsLinear {
			r, g, b = SRGBToLinear(r), SRGBToLinear(g), SRGBToLinear(b)
		}
		return core.NewVec3(r, g, b)
	case KindFloatScalar:
		s := t.FloatScalar[idx]
		return core.NewVec3(s, s, s)
	case KindByteScalar:
		s := float64(t.ByteScalar[idx]) / 255.0
		if !ldrAsLinear {
			s = SRGBToLinear(s)
		}
		return core.NewVec3(s, s, s)
	default:
		return core.NewVec3(1, 1, 1)
	}
}

// Eval evaluates a texture at normalized coordinates uv, with tiled
// addressing and bilinear filtering. A nil or empty texture returns
// (1,1,1). ldrAsLinear suppresses the sRGB->linear decode applied to
// byte-backed textures (used by the integrator to sample parameters that are
// stored as linear scalars even when packed into 8-bit images).
func Eval(t *Texture, uv core.Vec2, ldrAsLinear bool) core.Vec3 {
	if t == nil || t.Kind == KindEmpty || t.Width <= 0 || t.Height <= 0 {
		return core.NewVec3(1, 1, 1)
	}

	u := fracWrap(uv.X) * float64(t.Width)
	v := fracWrap(uv.Y) * float64(t.Height)

	i := clampInt(int(math.Floor(u)), 0, t.Width-1)
	j := clampInt(int(math.Floor(v)), 0, t.Height-1)
	ii := (i + 1) % t.Width
	jj := (j + 1) % t.Height

	du := u - float64(i)
	dv := v - float64(j)

	c00 := t.texelRGB(i, j, ldrAsLinear)
	c10 := t.texelRGB(ii, j, ldrAsLinear)
	c01 := t.texelRGB(i, jj, ldrAsLinear)
	c11 := t.texelRGB(ii, jj, ldrAsLinear)

	top := c00.Multiply(1 - du).Add(c10.Multiply(du))
	bottom := c01.Multiply(1 - du).Add(c11.Multiply(du))
	return top.Multiply(1 - dv).Add(bottom.Multiply(dv))
}

// fracWrap returns the fractional part of x, wrapped into [0, 1) even for
// negative x. x - floor(x) is already non-negative; the checks below keep
// floating-point rounding from leaving the result outside [0, 1).
func fracWrap(x float64) float64 {
	f := x - math.Floor(x)
	if f < 0 {
		f += 1
	}
	if f >= 1 {
		f -= 1
	}
	return f
}

func clampInt(v, lo, hi int) int {
	if v < lo {
		return lo
	}
	if v > hi {
		return hi
	}
	return v
}
