package scenegraph

import (
	"testing"

	"github.com/ajhager/lumentrace/pkg/core"
	"github.com/ajhager/lumentrace/pkg/material"
	"github.com/ajhager/lumentrace/pkg/shape"
	"github.com/stretchr/testify/assert"
)

func unitQuadScene() *Scene {
	s := NewScene()
	sh := &shape.Shape{
		Kind: shape.KindTriangles,
		Positions: []core.Vec3{
			core.NewVec3(-1, -1, 0), core.NewVec3(1, -1, 0),
			core.NewVec3(1, 1, 0), core.NewVec3(-1, 1, 0),
		},
		Triangles: [][3]int{{0, 1, 2}, {0, 2, 3}},
	}
	shHandle := s.AddShape(sh)
	matHandle := s.AddMaterial(material.NewMaterial())
	s.AddObject(Object{Frame: core.Identity(), Shape: shHandle, Material: matHandle})
	return s
}

func TestBuildThenIntersectHitsQuad(t *testing.T) {
	s := unitQuadScene()
	assert.NoError(t, s.Build())

	ray := core.NewRay(core.NewVec3(0, 0, 5), core.NewVec3(0, 0, -1))
	hit, ok := s.Intersect(ray, 1e-4, 1e30, false)
	assert.True(t, ok)
	assert.InDelta(t, 5.0, hit.T, 1e-9)
	assert.Equal(t, Handle(0), hit.Object)
}

func TestIntersectMissesWhenRayPassesBy(t *testing.T) {
	s := unitQuadScene()
	assert.NoError(t, s.Build())

	ray := core.NewRay(core.NewVec3(10, 10, 5), core.NewVec3(0, 0, -1))
	_, ok := s.Intersect(ray, 1e-4, 1e30, false)
	assert.False(t, ok)
}

func TestEvalCameraProducesUnitLengthDirection(t *testing.T) {
	cam := Camera{Frame: core.Identity(), Lens: 1, Film: core.NewVec2(1, 1)}
	ray := EvalCamera(&cam, core.NewVec2(0.5, 0.5))
	assert.InDelta(t, 1.0, ray.Direction.Length(), 1e-9)
	assert.Equal(t, core.Vec3{}, ray.Origin)
}

func TestEvalCameraCenterPointsDownNegativeZ(t *testing.T) {
	cam := Camera{Frame: core.Identity(), Lens: 2, Film: core.NewVec2(1, 1)}
	ray := EvalCamera(&cam, core.NewVec2(0.5, 0.5))
	assert.InDelta(t, -1, ray.Direction.Z, 1e-9)
}

func TestEvalEnvironmentWithNoEnvironmentsIsBlack(t *testing.T) {
	s := NewScene()
	got := s.EvalEnvironment(core.NewRay(core.Vec3{}, core.NewVec3(0, 0, -1)))
	assert.Equal(t, core.Vec3{}, got)
}

func TestEvalEnvironmentConstantEmissionUniform(t *testing.T) {
	s := NewScene()
	s.AddEnvironment(Environment{Frame: core.Identity(), Emission: core.NewVec3(1, 2, 3), EmissionTex: -1})

	a := s.EvalEnvironment(core.NewRay(core.Vec3{}, core.NewVec3(1, 0, 0)))
	b := s.EvalEnvironment(core.NewRay(core.Vec3{}, core.NewVec3(0, 1, 0).Normalize()))
	assert.Equal(t, a, b)
	assert.Equal(t, core.NewVec3(1, 2, 3), a)
}

func TestSetLensWideAspect(t *testing.T) {
	s := NewScene()
	cam := s.AddCamera(Camera{Frame: core.Identity()})
	s.SetLens(cam, 1, 2, 1)
	assert.InDelta(t, 1.0, s.Cameras[cam].Film.X, 1e-9)
	assert.InDelta(t, 0.5, s.Cameras[cam].Film.Y, 1e-9)
}

func TestSetLensTallAspect(t *testing.T) {
	s := NewScene()
	cam := s.AddCamera(Camera{Frame: core.Identity()})
	s.SetLens(cam, 1, 0.5, 1)
	assert.InDelta(t, 0.5, s.Cameras[cam].Film.X, 1e-9)
	assert.InDelta(t, 1.0, s.Cameras[cam].Film.Y, 1e-9)
}
