// Package scenegraph assembles shapes, materials, textures, cameras, objects
// (instances), and environments into a Scene, owns the per-shape and
// top-level BVHs, and exposes camera ray generation and environment
// evaluation.
package scenegraph

import (
	"math"

	"github.com/ajhager/lumentrace/pkg/bvh"
	"github.com/ajhager/lumentrace/pkg/core"
	"github.com/ajhager/lumentrace/pkg/material"
	"github.com/ajhager/lumentrace/pkg/shape"
	"github.com/ajhager/lumentrace/pkg/texture"
)

// Handle indexes one of a Scene's owned entity arrays.
type Handle int

// Camera is a world-space orthonormal frame plus the film/lens parameters
// camera ray generation needs. Aperture/Focus round-trip through the data
// model but are not sampled by the core integrator (depth of field is a
// non-goal).
type Camera struct {
	Frame    core.Frame
	Lens     float64
	Film     core.Vec2
	Aperture float64
	Focus    float64
}

// Object is a world-frame instance of a shape with a material, both
// referenced by non-owning handle.
type Object struct {
	Frame    core.Frame
	Shape    Handle
	Material Handle
	// NonRigidFrame marks instances whose frame includes scale/shear, so
	// traversal must use the frame's general (non-orthonormal) inverse.
	NonRigidFrame bool
}

// Environment is a constant-emission background light, optionally modulated
// by a lat-long emission texture.
type Environment struct {
	Frame       core.Frame
	Emission    core.Vec3
	EmissionTex Handle // -1 when absent
}

// Scene owns every entity and the BVHs built over them. Objects/materials
// reference shapes/textures by handle; shapes and materials are shared and
// outlive any one object.
type Scene struct {
	Cameras      []Camera
	Textures     []*texture.Texture
	Shapes       []*shape.Shape
	Materials    []*material.Material
	Objects      []Object
	Environments []Environment

	shapeBVHs []*bvh.BVH
	topLevel  *bvh.BVH
}

// NewScene returns an empty scene.
func NewScene() *Scene {
	return &Scene{}
}

func (s *Scene) AddCamera(c Camera) Handle {
	s.Cameras = append(s.Cameras, c)
	return Handle(len(s.Cameras) - 1)
}

func (s *Scene) AddTexture(t *texture.Texture) Handle {
	s.Textures = append(s.Textures, t)
	return Handle(len(s.Textures) - 1)
}

func (s *Scene) AddShape(sh *shape.Shape) Handle {
	s.Shapes = append(s.Shapes, sh)
	return Handle(len(s.Shapes) - 1)
}

func (s *Scene) AddMaterial(m *material.Material) Handle {
	s.Materials = append(s.Materials, m)
	return Handle(len(s.Materials) - 1)
}

func (s *Scene) AddObject(o Object) Handle {
	s.Objects = append(s.Objects, o)
	return Handle(len(s.Objects) - 1)
}

func (s *Scene) AddEnvironment(e Environment) Handle {
	s.Environments = append(s.Environments, e)
	return Handle(len(s.Environments) - 1)
}

// SetLens fills a camera's film extent from a focal length and aspect ratio:
// film = (lens_film, lens_film/aspect) when aspect>=1, else (lens_film*aspect, lens_film).
func (s *Scene) SetLens(cam Handle, lens, aspect, filmSize float64) {
	c := &s.Cameras[cam]
	c.Lens = lens
	if aspect >= 1 {
		c.Film = core.NewVec2(filmSize, filmSize/aspect)
	} else {
		c.Film = core.NewVec2(filmSize*aspect, filmSize)
	}
}

// SetRoughness stores the squared (microfacet alpha) roughness on a material.
func (s *Scene) SetRoughness(mat Handle, r float64) {
	s.Materials[mat].SetRoughness(r)
}

// Build validates every shape and every object's shape/material handles and
// constructs the per-shape BVHs and the top-level BVH over instance
// world-space bounds. It must be called once after scene construction and
// before any intersection query; building twice simply rebuilds.
func (s *Scene) Build() error {
	for _, obj := range s.Objects {
		if obj.Shape < 0 || int(obj.Shape) >= len(s.Shapes) || s.Shapes[obj.Shape] == nil ||
			obj.Material < 0 || int(obj.Material) >= len(s.Materials) || s.Materials[obj.Material] == nil {
			return &core.BuildError{Stage: "object validation", Err: &core.MalformedSceneError{Entity: "object", Reason: "references a missing shape or material"}}
		}
	}
	s.shapeBVHs = s.shapeBVHs[:0]
	for _, sh := range s.Shapes {
		if err := sh.Validate(); err != nil {
			return &core.BuildError{Stage: "shape validation", Err: err}
		}
		s.shapeBVHs = append(s.shapeBVHs, bvh.Build(sh.NumElements(),
			func(e int) core.AABB { return sh.ElementBounds(e) },
			func(e int) core.Vec3 { return sh.ElementBounds(e).Center() },
		))
	}

	s.topLevel = bvh.Build(len(s.Objects),
		func(i int) core.AABB { return s.instanceBounds(i) },
		func(i int) core.Vec3 { return s.instanceBounds(i).Center() },
	)
	return nil
}

func (s *Scene) instanceBounds(objIdx int) core.AABB {
	obj := s.Objects[objIdx]
	shapeBVH := s.shapeBVHs[obj.Shape]
	localBox := shapeBVH.Nodes[0].Box
	corners := [8]core.Vec3{}
	i := 0
	for _, x := range []float64{localBox.Min.X, localBox.Max.X} {
		for _, y := range []float64{localBox.Min.Y, localBox.Max.Y} {
			for _, z := range []float64{localBox.Min.Z, localBox.Max.Z} {
				corners[i] = obj.Frame.TransformPoint(core.NewVec3(x, y, z))
				i++
			}
		}
	}
	return core.NewAABBFromPoints(corners[:]...)
}

// SceneHit is a ray/scene intersection: the hit object, its shape element,
// the barycentric/parametric uv, and the world-space hit distance.
type SceneHit struct {
	Object  Handle
	Element int
	UV      core.Vec2
	T       float64
}

// Intersect walks the top-level BVH, transforming the ray into each
// candidate instance's local space by the inverse instance frame before
// recursing into that instance's shape BVH.
func (s *Scene) Intersect(ray core.Ray, tMin, tMax float64, findAny bool) (SceneHit, bool) {
	var bestElement int

	hit, ok := s.topLevel.Intersect(ray, tMin, tMax, findAny, func(objIdx int, worldRay core.Ray, t0, t1 float64) (float64, core.Vec2, bool) {
		obj := s.Objects[objIdx]
		var inv core.Frame
		if obj.NonRigidFrame {
			inv = obj.Frame.InverseGeneral()
		} else {
			inv = obj.Frame.Inverse()
		}
		localRay := core.NewRay(inv.TransformPoint(worldRay.Origin), inv.TransformDirection(worldRay.Direction))

		sh := s.Shapes[obj.Shape]
		leafHit, leafOk := s.shapeBVHs[obj.Shape].Intersect(localRay, t0, t1, findAny, func(elem int, r core.Ray, lt0, lt1 float64) (float64, core.Vec2, bool) {
			h, ok := sh.IntersectElement(elem, r, lt0, lt1)
			return h.T, h.UV, ok
		})
		if !leafOk {
			return 0, core.Vec2{}, false
		}
		// The top-level traversal only advances its own bookkeeping when
		// this callback returns ok=true, in the same order, so the element
		// recorded here always matches whatever instance ends up winning.
		bestElement = leafHit.Prim
		return leafHit.Distance, leafHit.UV, true
	})

	if !ok {
		return SceneHit{}, false
	}
	return SceneHit{Object: Handle(hit.Prim), Element: bestElement, UV: hit.UV, T: hit.Distance}, true
}

// EvalCamera generates a world-space ray for normalized image coordinates
// uv ∈ [0,1]^2.
func EvalCamera(cam *Camera, uv core.Vec2) core.Ray {
	q := core.NewVec3(
		cam.Film.X*(0.5-uv.X),
		cam.Film.Y*(uv.Y-0.5),
		cam.Lens,
	)
	dir := q.Negate().Normalize()
	origin := cam.Frame.TransformPoint(core.Vec3{})
	return core.NewRay(origin, cam.Frame.TransformDirection(dir))
}

// EvalEnvironment sums the contribution of every environment for a ray that
// missed all scene geometry.
func (s *Scene) EvalEnvironment(ray core.Ray) core.Vec3 {
	total := core.Vec3{}
	for _, env := range s.Environments {
		inv := env.Frame.Inverse()
		localDir := inv.TransformDirection(ray.Direction).Normalize()

		u := math.Atan2(localDir.Z, localDir.X) / (2 * math.Pi)
		u -= math.Floor(u)
		v := math.Acos(math.Max(-1, math.Min(1, localDir.Y))) / math.Pi

		var tex *texture.Texture
		if env.EmissionTex >= 0 {
			tex = s.Textures[env.EmissionTex]
		}
		total = total.Add(env.Emission.MultiplyVec(texture.Eval(tex, core.NewVec2(u, v), false)))
	}
	return total
}
