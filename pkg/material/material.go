// Package material holds the renderer's reflectance parameter block and the
// texture-modulated evaluation used by the shading kernel: every scalar or
// vector parameter may optionally be driven by a texture sampled at the
// surface's interpolated texture coordinate.
package material

import (
	"github.com/ajhager/lumentrace/pkg/core"
	"github.com/ajhager/lumentrace/pkg/texture"
)

// Material is the full reflectance parameter block from the scene's data
// model. Every *Tex field is a non-owning reference into the scene's texture
// table; a nil texture leaves the corresponding scalar/vector untouched.
//
// Roughness is stored pre-squared: SetRoughness(r) assigns r*r, so the
// shading kernel always reads a ready-to-use microfacet alpha.
type Material struct {
	Emission    core.Vec3
	EmissionTex *texture.Texture

	Color    core.Vec3
	ColorTex *texture.Texture

	Specular    float64
	SpecularTex *texture.Texture

	Metallic    float64
	MetallicTex *texture.Texture

	IOR float64

	Transmission    float64
	TransmissionTex *texture.Texture

	// Roughness is the squared (microfacet alpha) value; use SetRoughness to
	// assign it from a perceptual roughness.
	Roughness    float64
	RoughnessTex *texture.Texture

	Opacity    float64
	OpacityTex *texture.Texture

	// Scattering/ScAnisotropy/TrDepth/Thin describe subsurface/volumetric
	// behavior; they round-trip through the data model, and the raytrace
	// integrator does not read them.
	Scattering   core.Vec3
	ScAnisotropy float64
	TrDepth      float64
	Thin         bool
}

// NewMaterial returns a material with the common raytracer defaults: opaque
// light-grey (0.8) diffuse, IOR of air/glass boundary.
func NewMaterial() *Material {
	return &Material{
		Color:    core.NewVec3(0.8, 0.8, 0.8),
		IOR:      1.5,
		Opacity:  1,
		TrDepth:  0.01,
	}
}

// SetRoughness stores the squared (microfacet alpha) value for a perceptual
// roughness r, per the scene data model's perceptual->microfacet mapping.
func (m *Material) SetRoughness(r float64) {
	m.Roughness = r * r
}

// EvalColor samples the material's base color at texcoord uv. Color is
// always sampled in sRGB space (ldr_as_linear=false), per the shading
// kernel's texture-sampling convention.
func EvalColor(m *Material, uv core.Vec2) core.Vec3 {
	if m.ColorTex == nil {
		return m.Color
	}
	return m.Color.MultiplyVec(texture.Eval(m.ColorTex, uv, false))
}

// evalLinearScalar samples a texture in linear space (ldr_as_linear=true) and
// takes its mean channel, then multiplies it onto the base scalar. A nil
// texture leaves the base value unchanged.
func evalLinearScalar(base float64, tex *texture.Texture, uv core.Vec2) float64 {
	if tex == nil {
		return base
	}
	c := texture.Eval(tex, uv, true)
	return base * (c.X + c.Y + c.Z) / 3.0
}

// EvalSpecular samples the specular parameter at texcoord uv.
func EvalSpecular(m *Material, uv core.Vec2) float64 {
	return evalLinearScalar(m.Specular, m.SpecularTex, uv)
}

// EvalMetallic samples the metallic parameter at texcoord uv.
func EvalMetallic(m *Material, uv core.Vec2) float64 {
	return evalLinearScalar(m.Metallic, m.MetallicTex, uv)
}

// EvalRoughness samples the (already-squared) roughness parameter at texcoord uv.
func EvalRoughness(m *Material, uv core.Vec2) float64 {
	return evalLinearScalar(m.Roughness, m.RoughnessTex, uv)
}

// EvalTransmission samples the transmission parameter at texcoord uv.
func EvalTransmission(m *Material, uv core.Vec2) float64 {
	return evalLinearScalar(m.Transmission, m.TransmissionTex, uv)
}

// EvalOpacity samples the opacity parameter at texcoord uv.
func EvalOpacity(m *Material, uv core.Vec2) float64 {
	return evalLinearScalar(m.Opacity, m.OpacityTex, uv)
}
