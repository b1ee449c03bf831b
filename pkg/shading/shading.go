// Package shading implements the shader dispatch table and the recursive
// raytrace integrator: given a ray/scene intersection, it evaluates surface
// interaction and recurses on secondary rays to estimate radiance.
package shading

import (
	"fmt"
	"math"

	"github.com/ajhager/lumentrace/pkg/core"
	"github.com/ajhager/lumentrace/pkg/material"
	"github.com/ajhager/lumentrace/pkg/scenegraph"
	"github.com/ajhager/lumentrace/pkg/shape"
	"github.com/ajhager/lumentrace/pkg/texture"
)

// Shader selects which shading function the integrator runs per pixel.
type Shader int

const (
	ShaderRaytrace Shader = iota
	ShaderEyelight
	ShaderNormal
	ShaderTexcoord
	ShaderColor
)

func (s Shader) String() string {
	switch s {
	case ShaderRaytrace:
		return "raytrace"
	case ShaderEyelight:
		return "eyelight"
	case ShaderNormal:
		return "normal"
	case ShaderTexcoord:
		return "texcoord"
	case ShaderColor:
		return "color"
	default:
		return "unknown"
	}
}

// ParseShader resolves a shader name to its Shader value. An unrecognized
// name is an invalid-configuration error, surfaced at pass entry.
func ParseShader(name string) (Shader, error) {
	switch name {
	case "raytrace":
		return ShaderRaytrace, nil
	case "eyelight":
		return ShaderEyelight, nil
	case "normal":
		return ShaderNormal, nil
	case "texcoord":
		return ShaderTexcoord, nil
	case "color":
		return ShaderColor, nil
	default:
		return 0, &core.InvalidConfigError{Field: "shader", Reason: fmt.Sprintf("unknown shader %q", name)}
	}
}

// Params carries the per-pass rendering parameters the shader and
// integrator read; the scheduler owns resolution/seed/clamp at the pixel
// level and passes this subset down into the shade call.
type Params struct {
	Shader  Shader
	Bounces int
	Clamp   float64
}

// rayOriginEpsilon is the tmin offset applied to every secondary ray to
// avoid self-intersection against the surface it left.
const rayOriginEpsilon = 1e-4

// opacityPassThroughEpsilon offsets the origin along the ray direction when
// an opacity stochastic pass-through recurses through the surface.
const opacityPassThroughEpsilon = 1e-2

// ShadeFunc evaluates one camera (or recursive) ray and returns its RGB
// contribution plus alpha (1 for a hit or a miss into the environment).
type ShadeFunc func(scene *scenegraph.Scene, ray core.Ray, bounce int, rng core.RNG, params Params) (core.Vec3, float64)

// Dispatch resolves a Shader selector to its ShadeFunc.
func Dispatch(s Shader) (ShadeFunc, error) {
	switch s {
	case ShaderRaytrace:
		return Raytrace, nil
	case ShaderEyelight:
		return Eyelight, nil
	case ShaderNormal:
		return Normal, nil
	case ShaderTexcoord:
		return Texcoord, nil
	case ShaderColor:
		return Color, nil
	default:
		return nil, &core.InvalidConfigError{Field: "shader", Reason: "unknown shader value"}
	}
}

func hitShading(scene *scenegraph.Scene, ray core.Ray) (scenegraph.SceneHit, *material.Material, core.Vec3, core.Vec3, bool) {
	hit, ok := scene.Intersect(ray, rayOriginEpsilon, math.Inf(1), false)
	if !ok {
		return scenegraph.SceneHit{}, nil, core.Vec3{}, core.Vec3{}, false
	}
	obj := scene.Objects[hit.Object]
	sh := scene.Shapes[obj.Shape]
	mat := scene.Materials[obj.Material]

	localPos := sh.EvalPosition(hit.Element, hit.UV)
	localNormal := sh.EvalNormal(hit.Element, hit.UV)
	worldPos := obj.Frame.TransformPoint(localPos)
	worldNormal := obj.Frame.TransformDirection(localNormal).Normalize()
	return hit, mat, worldPos, worldNormal, true
}

// Eyelight returns material.color * max(0, dot(n, -d)) on hit, black on miss.
func Eyelight(scene *scenegraph.Scene, ray core.Ray, bounce int, rng core.RNG, params Params) (core.Vec3, float64) {
	hit, mat, _, n, ok := hitShading(scene, ray)
	if !ok {
		return core.Vec3{}, 0
	}
	uv := scene.Shapes[scene.Objects[hit.Object].Shape].EvalTexcoord(hit.Element, hit.UV)
	wo := ray.Direction.Negate()
	color := material.EvalColor(mat, uv)
	return color.Multiply(math.Max(0, n.Dot(wo))), 1
}

// Normal returns n*0.5+0.5 on hit, black on miss.
func Normal(scene *scenegraph.Scene, ray core.Ray, bounce int, rng core.RNG, params Params) (core.Vec3, float64) {
	_, _, _, n, ok := hitShading(scene, ray)
	if !ok {
		return core.Vec3{}, 0
	}
	return n.Multiply(0.5).Add(core.NewVec3(0.5, 0.5, 0.5)), 1
}

// Texcoord returns (frac(u), frac(v), 0) on hit, black on miss.
func Texcoord(scene *scenegraph.Scene, ray core.Ray, bounce int, rng core.RNG, params Params) (core.Vec3, float64) {
	hit, ok := scene.Intersect(ray, rayOriginEpsilon, math.Inf(1), false)
	if !ok {
		return core.Vec3{}, 0
	}
	obj := scene.Objects[hit.Object]
	uv := scene.Shapes[obj.Shape].EvalTexcoord(hit.Element, hit.UV)
	return core.NewVec3(frac(uv.X), frac(uv.Y), 0), 1
}

// Color returns material.color on hit, black on miss.
func Color(scene *scenegraph.Scene, ray core.Ray, bounce int, rng core.RNG, params Params) (core.Vec3, float64) {
	hit, mat, _, _, ok := hitShading(scene, ray)
	if !ok {
		return core.Vec3{}, 0
	}
	uv := scene.Shapes[scene.Objects[hit.Object].Shape].EvalTexcoord(hit.Element, hit.UV)
	return material.EvalColor(mat, uv), 1
}

func frac(x float64) float64 {
	return x - math.Floor(x)
}

// Raytrace is the recursive physically-based integrator: on hit it samples
// the textured material, branches on material class, and recurses on the
// sampled direction until params.Bounces is reached.
func Raytrace(scene *scenegraph.Scene, ray core.Ray, bounce int, rng core.RNG, params Params) (core.Vec3, float64) {
	hit, ok := scene.Intersect(ray, rayOriginEpsilon, math.Inf(1), false)
	if !ok {
		return scene.EvalEnvironment(ray), 1
	}

	obj := scene.Objects[hit.Object]
	sh := scene.Shapes[obj.Shape]
	mat := scene.Materials[obj.Material]

	localPos := sh.EvalPosition(hit.Element, hit.UV)
	localNormal := sh.EvalNormal(hit.Element, hit.UV)
	pos := obj.Frame.TransformPoint(localPos)
	n := obj.Frame.TransformDirection(localNormal).Normalize()
	uv := sh.EvalTexcoord(hit.Element, hit.UV)

	wo := ray.Direction.Negate().Normalize()
	n = orientNormal(sh.Kind, n, wo)

	color := material.EvalColor(mat, uv)
	specular := material.EvalSpecular(mat, uv)
	metallic := material.EvalMetallic(mat, uv)
	roughness := material.EvalRoughness(mat, uv)
	transmission := material.EvalTransmission(mat, uv)
	opacity := material.EvalOpacity(mat, uv)

	radiance := mat.Emission
	if mat.EmissionTex != nil {
		radiance = radiance.MultiplyVec(texture.Eval(mat.EmissionTex, uv, false))
	}

	if bounce >= params.Bounces {
		return radiance, 1
	}

	if opacity < 1 && rng.Float64() > opacity {
		passThroughOrigin := pos.Add(ray.Direction.Multiply(opacityPassThroughEpsilon))
		incoming, _ := Raytrace(scene, core.NewRay(passThroughOrigin, ray.Direction), bounce, rng, params)
		return incoming, 1
	}

	switch {
	case transmission > 0:
		f := material.FresnelSchlickScalar(color.X, n, wo)
		var wi core.Vec3
		var weight core.Vec3
		if rng.Float64() < f {
			wi = wo.Reflect(n)
			weight = core.NewVec3(1, 1, 1)
		} else {
			wi = wo.Negate()
			weight = color
		}
		incoming, _ := Raytrace(scene, core.NewRay(pos, wi), bounce+1, rng, params)
		radiance = radiance.Add(weight.MultiplyVec(incoming))

	case metallic > 0 && roughness == 0:
		wi := wo.Reflect(n)
		f := material.FresnelSchlick(color, n, wo)
		incoming, _ := Raytrace(scene, core.NewRay(pos, wi), bounce+1, rng, params)
		radiance = radiance.Add(f.MultiplyVec(incoming))

	case metallic > 0 && roughness > 0:
		wi := wo.Reflect(n)
		incoming, _ := Raytrace(scene, core.NewRay(pos, wi), bounce+1, rng, params)
		spec := material.MicrofacetSpecular(color, roughness, n, wo, wi)
		radiance = radiance.Add(spec.MultiplyVec(incoming))

	case specular > 0:
		wi, pdf := cosineHemisphereSample(rng, n)
		incoming, _ := Raytrace(scene, core.NewRay(pos, wi), bounce+1, rng, params)
		f0 := core.NewVec3(0.04, 0.04, 0.04)
		diffuse := color.Multiply(1 / math.Pi * math.Max(0, n.Dot(wi)))
		spec := material.MicrofacetSpecular(f0, roughness, n, wo, wi)
		if pdf > 0 {
			radiance = radiance.Add(diffuse.Add(spec).MultiplyVec(incoming).Multiply(1 / pdf))
		}

	default:
		wi, pdf := cosineHemisphereSample(rng, n)
		incoming, _ := Raytrace(scene, core.NewRay(pos, wi), bounce+1, rng, params)
		if pdf > 0 {
			contribution := color.Multiply(1 / math.Pi * math.Max(0, n.Dot(wi)) / pdf)
			radiance = radiance.Add(contribution.MultiplyVec(incoming))
		}
	}

	return radiance, 1
}

// orientNormal applies the normal-orientation correction per element kind:
// lines reorthonormalize against the outgoing direction, triangles flip if
// back-facing (two-sided shading), points are used as-is.
func orientNormal(kind shape.Kind, n, wo core.Vec3) core.Vec3 {
	switch kind {
	case shape.KindLines:
		return n.Subtract(wo.Multiply(n.Dot(wo))).Normalize()
	case shape.KindTriangles:
		if n.Dot(wo) < 0 {
			return n.Negate()
		}
		return n
	default:
		return n
	}
}

// cosineHemisphereSample draws a direction from the cosine-weighted
// hemisphere around n and returns it with its pdf = cos(theta)/pi.
func cosineHemisphereSample(rng core.RNG, n core.Vec3) (core.Vec3, float64) {
	u1, u2 := rng.Rand2f()
	r := math.Sqrt(u1)
	phi := 2 * math.Pi * u2
	x := r * math.Cos(phi)
	y := r * math.Sin(phi)
	z := math.Sqrt(math.Max(0, 1-u1))

	t, b := orthonormalBasis(n)
	dir := t.Multiply(x).Add(b.Multiply(y)).Add(n.Multiply(z)).Normalize()
	cosTheta := math.Max(0, dir.Dot(n))
	pdf := cosTheta / math.Pi
	return dir, pdf
}

func orthonormalBasis(n core.Vec3) (core.Vec3, core.Vec3) {
	var up core.Vec3
	if math.Abs(n.Z) < 0.999 {
		up = core.NewVec3(0, 0, 1)
	} else {
		up = core.NewVec3(1, 0, 0)
	}
	t := up.Cross(n).Normalize()
	b := n.Cross(t)
	return t, b
}
