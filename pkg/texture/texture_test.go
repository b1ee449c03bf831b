package texture

import (
	"testing"

	"github.com/ajhager/lumentrace/pkg/core"
	"github.com/stretchr/testify/assert"
)

func TestEvalEmptyTextureIsWhite(t *testing.T) {
	assert.Equal(t, core.NewVec3(1, 1, 1), Eval(nil, core.NewVec2(0.3, 0.7), false))
	assert.Equal(t, core.NewVec3(1, 1, 1), Eval(&Texture{}, core.NewVec2(0.3, 0.7), false))
}

func TestEvalIsPeriodic(t *testing.T) {
	px := []core.Vec3{
		core.NewVec3(1, 0, 0), core.NewVec3(0, 1, 0),
		core.NewVec3(0, 0, 1), core.NewVec3(1, 1, 0),
	}
	tex := NewFloatRGB(2, 2, px)

	uv := core.NewVec2(0.3, 0.8)
	base := Eval(tex, uv, false)
	for _, shift := range []core.Vec2{{X: 1, Y: 0}, {X: 0, Y: 1}, {X: -2, Y: 3}} {
		shifted := Eval(tex, core.NewVec2(uv.X+shift.X, uv.Y+shift.Y), false)
		assert.InDelta(t, base.X, shifted.X, 1e-9)
		assert.InDelta(t, base.Y, shifted.Y, 1e-9)
		assert.InDelta(t, base.Z, shifted.Z, 1e-9)
	}
}

func TestEvalTexelCenterSingleTexel(t *testing.T) {
	// A single-texel texture has no neighbors to blend with, so any uv
	// (after wrap) must return the texel value exactly.
	tex := NewFloatRGB(1, 1, []core.Vec3{core.NewVec3(0.2, 0.4, 0.6)})
	got := Eval(tex, core.NewVec2(0.5, 0.5), false)
	assert.InDelta(t, 0.2, got.X, 1e-12)
	assert.InDelta(t, 0.4, got.Y, 1e-12)
	assert.InDelta(t, 0.6, got.Z, 1e-12)
}

func TestEvalByteRGBSRGBRoundTrip(t *testing.T) {
	px := []uint8{128, 64, 32}
	tex := NewByteRGB(1, 1, px)

	linear := Eval(tex, core.NewVec2(0.5, 0.5), true)
	assert.InDelta(t, 128.0/255.0, linear.X, 1e-12)
	assert.InDelta(t, 64.0/255.0, linear.Y, 1e-12)
	assert.InDelta(t, 32.0/255.0, linear.Z, 1e-12)

	decoded := Eval(tex, core.NewVec2(0.5, 0.5), false)
	assert.InDelta(t, SRGBToLinear(128.0/255.0), decoded.X, 1e-12)
}

func TestEvalScalarBroadcasts(t *testing.T) {
	tex := NewFloatScalar(1, 1, []float64{0.75})
	got := Eval(tex, core.NewVec2(0.1, 0.9), false)
	assert.Equal(t, core.NewVec3(0.75, 0.75, 0.75), got)
}

func TestEvalNegativeUVWraps(t *testing.T) {
	px := []core.Vec3{
		core.NewVec3(1, 0, 0), core.NewVec3(0, 1, 0),
		core.NewVec3(0, 0, 1), core.NewVec3(1, 1, 0),
	}
	tex := NewFloatRGB(2, 2, px)

	positive := Eval(tex, core.NewVec2(0.2, 0.2), false)
	negative := Eval(tex, core.NewVec2(-0.8, -0.8), false)
	assert.InDelta(t, positive.X, negative.X, 1e-9)
	assert.InDelta(t, positive.Y, negative.Y, 1e-9)
	assert.InDelta(t, positive.Z, negative.Z, 1e-9)
}

func TestSRGBRoundTrip(t *testing.T) {
	for _, c := range []float64{0, 0.01, 0.1, 0.5, 0.9, 1.0} {
		back := LinearToSRGB(SRGBToLinear(c))
		assert.InDelta(t, c, back, 1e-9)
	}
}
