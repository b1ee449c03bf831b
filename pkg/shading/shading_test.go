package shading

import (
	"testing"

	"github.com/ajhager/lumentrace/pkg/core"
	"github.com/ajhager/lumentrace/pkg/material"
	"github.com/ajhager/lumentrace/pkg/scenegraph"
	"github.com/ajhager/lumentrace/pkg/shape"
	"github.com/stretchr/testify/assert"
)

func facingQuadScene(mat *material.Material) *scenegraph.Scene {
	s := scenegraph.NewScene()
	sh := &shape.Shape{
		Kind: shape.KindTriangles,
		Positions: []core.Vec3{
			core.NewVec3(-10, -10, 0), core.NewVec3(10, -10, 0),
			core.NewVec3(10, 10, 0), core.NewVec3(-10, 10, 0),
		},
		Triangles: [][3]int{{0, 1, 2}, {0, 2, 3}},
	}
	shHandle := s.AddShape(sh)
	matHandle := s.AddMaterial(mat)
	s.AddObject(scenegraph.Object{Frame: core.Identity(), Shape: shHandle, Material: matHandle})
	return s
}

func TestParseShaderKnownNames(t *testing.T) {
	for _, name := range []string{"raytrace", "eyelight", "normal", "texcoord", "color"} {
		_, err := ParseShader(name)
		assert.NoError(t, err)
	}
}

func TestParseShaderUnknownNameIsInvalidConfig(t *testing.T) {
	_, err := ParseShader("bogus")
	assert.Error(t, err)
	var cfgErr *core.InvalidConfigError
	assert.ErrorAs(t, err, &cfgErr)
}

func TestColorShaderReturnsMaterialColorOnHit(t *testing.T) {
	mat := material.NewMaterial()
	mat.Color = core.NewVec3(0.1, 0.2, 0.3)
	s := facingQuadScene(mat)
	assert.NoError(t, s.Build())

	ray := core.NewRay(core.NewVec3(0, 0, 5), core.NewVec3(0, 0, -1))
	rgb, alpha := Color(s, ray, 0, core.NewRNG(1, 1), Params{})
	assert.Equal(t, core.NewVec3(0.1, 0.2, 0.3), rgb)
	assert.Equal(t, 1.0, alpha)
}

func TestColorShaderReturnsBlackOnMiss(t *testing.T) {
	s := scenegraph.NewScene()
	assert.NoError(t, s.Build())
	ray := core.NewRay(core.NewVec3(0, 0, 5), core.NewVec3(0, 0, -1))
	rgb, alpha := Color(s, ray, 0, core.NewRNG(1, 1), Params{})
	assert.Equal(t, core.Vec3{}, rgb)
	assert.Equal(t, 0.0, alpha)
}

func TestNormalShaderRangeIsZeroToOne(t *testing.T) {
	mat := material.NewMaterial()
	s := facingQuadScene(mat)
	assert.NoError(t, s.Build())

	ray := core.NewRay(core.NewVec3(0, 0, 5), core.NewVec3(0, 0, -1))
	rgb, _ := Normal(s, ray, 0, core.NewRNG(1, 1), Params{})
	assert.InDelta(t, 0.5, rgb.X, 1e-9)
	assert.InDelta(t, 0.5, rgb.Y, 1e-9)
	assert.InDelta(t, 1.0, rgb.Z, 1e-9)
}

func TestEyelightHeadOnViewIsFullBrightness(t *testing.T) {
	mat := material.NewMaterial()
	mat.Color = core.NewVec3(1, 1, 1)
	s := facingQuadScene(mat)
	assert.NoError(t, s.Build())

	ray := core.NewRay(core.NewVec3(0, 0, 5), core.NewVec3(0, 0, -1))
	rgb, _ := Eyelight(s, ray, 0, core.NewRNG(1, 1), Params{})
	assert.InDelta(t, 1.0, rgb.X, 1e-9)
}

func TestRaytraceMissReturnsEnvironment(t *testing.T) {
	s := scenegraph.NewScene()
	s.AddEnvironment(scenegraph.Environment{Frame: core.Identity(), Emission: core.NewVec3(0.5, 0.5, 0.5), EmissionTex: -1})
	assert.NoError(t, s.Build())

	ray := core.NewRay(core.NewVec3(0, 0, 5), core.NewVec3(0, 0, -1))
	rgb, alpha := Raytrace(s, ray, 0, core.NewRNG(1, 1), Params{Bounces: 4, Clamp: 10})
	assert.Equal(t, core.NewVec3(0.5, 0.5, 0.5), rgb)
	assert.Equal(t, 1.0, alpha)
}

func TestRaytraceEmissiveSurfaceAtBounceLimitReturnsEmission(t *testing.T) {
	mat := material.NewMaterial()
	mat.Emission = core.NewVec3(2, 2, 2)
	s := facingQuadScene(mat)
	assert.NoError(t, s.Build())

	ray := core.NewRay(core.NewVec3(0, 0, 5), core.NewVec3(0, 0, -1))
	rgb, _ := Raytrace(s, ray, 0, core.NewRNG(1, 1), Params{Bounces: 0})
	assert.Equal(t, core.NewVec3(2, 2, 2), rgb)
}

func TestOrientNormalFlipsBackfacingTriangle(t *testing.T) {
	n := core.NewVec3(0, 0, -1)
	wo := core.NewVec3(0, 0, 1)
	got := orientNormal(shape.KindTriangles, n, wo)
	assert.InDelta(t, 1.0, got.Z, 1e-9)
}

func TestOrientNormalLeavesPointsAsIs(t *testing.T) {
	n := core.NewVec3(0, 0, -1)
	wo := core.NewVec3(0, 0, 1)
	got := orientNormal(shape.KindPoints, n, wo)
	assert.Equal(t, n, got)
}

func TestCosineHemisphereSampleStaysInUpperHemisphere(t *testing.T) {
	rng := core.NewRNG(42, 7)
	n := core.NewVec3(0, 0, 1)
	for i := 0; i < 100; i++ {
		dir, pdf := cosineHemisphereSample(rng, n)
		assert.GreaterOrEqual(t, dir.Dot(n), 0.0)
		assert.Greater(t, pdf, 0.0)
	}
}
