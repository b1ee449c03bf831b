package material

import (
	"testing"

	"github.com/ajhager/lumentrace/pkg/core"
	"github.com/ajhager/lumentrace/pkg/texture"
	"github.com/stretchr/testify/assert"
)

func TestSetRoughnessStoresSquare(t *testing.T) {
	m := NewMaterial()
	m.SetRoughness(0.5)
	assert.InDelta(t, 0.25, m.Roughness, 1e-12)
}

func TestEvalColorWithoutTexture(t *testing.T) {
	m := NewMaterial()
	m.Color = core.NewVec3(0.2, 0.3, 0.4)
	got := EvalColor(m, core.NewVec2(0.5, 0.5))
	assert.Equal(t, m.Color, got)
}

func TestEvalColorModulatesByTexture(t *testing.T) {
	m := NewMaterial()
	m.Color = core.NewVec3(1, 1, 1)
	m.ColorTex = texture.NewFloatRGB(1, 1, []core.Vec3{core.NewVec3(0.5, 0.25, 1)})
	got := EvalColor(m, core.NewVec2(0.1, 0.1))
	assert.InDelta(t, 0.5, got.X, 1e-9)
	assert.InDelta(t, 0.25, got.Y, 1e-9)
	assert.InDelta(t, 1.0, got.Z, 1e-9)
}

func TestEvalOpacityTakesMeanOfRGB(t *testing.T) {
	m := NewMaterial()
	m.Opacity = 1
	m.OpacityTex = texture.NewFloatRGB(1, 1, []core.Vec3{core.NewVec3(0.2, 0.4, 0.6)})
	got := EvalOpacity(m, core.NewVec2(0.1, 0.1))
	assert.InDelta(t, 0.4, got, 1e-9)
}

func TestFresnelSchlickAtNormalIncidence(t *testing.T) {
	f0 := core.NewVec3(0.04, 0.04, 0.04)
	n := core.NewVec3(0, 0, 1)
	wo := core.NewVec3(0, 0, 1)
	f := FresnelSchlickScalar(f0.X, n, wo)
	assert.InDelta(t, 0.04, f, 1e-12)
}

func TestFresnelSchlickGrazingAngleApproachesOne(t *testing.T) {
	n := core.NewVec3(0, 0, 1)
	wo := core.NewVec3(1, 0, 0.001).Normalize()
	f := FresnelSchlickScalar(0.04, n, wo)
	assert.Greater(t, f, 0.9)
}

func TestGGXDistributionPeaksAtNormalForLowRoughness(t *testing.T) {
	n := core.NewVec3(0, 0, 1)
	alpha := 0.01 * 0.01
	dAtNormal := GGXDistribution(alpha, n, n)
	dOffNormal := GGXDistribution(alpha, n, core.NewVec3(0.3, 0, 0.95).Normalize())
	assert.Greater(t, dAtNormal, dOffNormal)
}

func TestMicrofacetSpecularZeroBelowHorizon(t *testing.T) {
	n := core.NewVec3(0, 0, 1)
	wo := core.NewVec3(0, 0, -1) // below the surface
	wi := core.NewVec3(0, 0, 1)
	got := MicrofacetSpecular(core.NewVec3(1, 1, 1), 0.1, n, wo, wi)
	assert.Equal(t, core.Vec3{}, got)
}
