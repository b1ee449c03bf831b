package material

import (
	"math"

	"github.com/ajhager/lumentrace/pkg/core"
)

// FresnelSchlick returns the Schlick approximation of the Fresnel reflectance,
// using f0 as the reflectance at normal incidence. This generalizes the
// teacher's scalar dielectric Reflectance() to a per-channel color, needed
// for tinted metals.
func FresnelSchlick(f0 core.Vec3, n, wo core.Vec3) core.Vec3 {
	cosTheta := math.Max(0, n.Dot(wo))
	t := math.Pow(1-cosTheta, 5)
	one := core.NewVec3(1, 1, 1)
	return f0.Add(one.Subtract(f0).Multiply(t))
}

// FresnelSchlickScalar is the single-channel form used for the polished
// dielectric's reflect/transmit Russian-roulette split.
func FresnelSchlickScalar(f0 float64, n, wo core.Vec3) float64 {
	cosTheta := math.Max(0, n.Dot(wo))
	return f0 + (1-f0)*math.Pow(1-cosTheta, 5)
}

// GGXDistribution evaluates the GGX (Trowbridge-Reitz) normal distribution
// term D for a microfacet half-vector h, given the squared roughness alpha
// (already in the material's stored, pre-squared form).
func GGXDistribution(alpha float64, n, h core.Vec3) float64 {
	nh := n.Dot(h)
	if nh <= 0 {
		return 0
	}
	alpha2 := alpha * alpha
	nh2 := nh * nh
	denom := nh2*(alpha2-1) + 1
	if denom <= 0 {
		return 0
	}
	return alpha2 / (math.Pi * denom * denom)
}

// ggxG1 is the Smith masking-shadowing term for a single direction.
func ggxG1(alpha float64, n, v core.Vec3) float64 {
	nv := n.Dot(v)
	if nv <= 0 {
		return 0
	}
	alpha2 := alpha * alpha
	denom := nv + math.Sqrt(alpha2+(1-alpha2)*nv*nv)
	if denom <= 0 {
		return 0
	}
	return 2 * nv / denom
}

// GGXMasking evaluates the separable Smith masking-shadowing term G (the
// product of the single-direction terms) for outgoing direction wo and
// incoming direction wi.
func GGXMasking(alpha float64, n, wo, wi core.Vec3) float64 {
	return ggxG1(alpha, n, wo) * ggxG1(alpha, n, wi)
}

// MicrofacetSpecular evaluates the full microfacet specular lobe
// F * D(alpha, n, h) * G(alpha, n, h, wo, wi) / (4 * (n.wo) * (n.wi)),
// returning zero whenever either cosine is non-positive to avoid a division
// by zero or a negative radiance contribution (spec's numerical-corner-case
// recovery rule).
func MicrofacetSpecular(f0 core.Vec3, alpha float64, n, wo, wi core.Vec3) core.Vec3 {
	nwo := n.Dot(wo)
	nwi := n.Dot(wi)
	if nwo <= 0 || nwi <= 0 {
		return core.Vec3{}
	}
	h := wo.Add(wi).Normalize()
	d := GGXDistribution(alpha, n, h)
	g := GGXMasking(alpha, n, wo, wi)
	f := FresnelSchlick(f0, h, wo)
	denom := 4 * nwo * nwi
	if denom <= 0 {
		return core.Vec3{}
	}
	return f.Multiply(d * g / denom)
}
