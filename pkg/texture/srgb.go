package texture

import "math"

// SRGBToLinear decodes a single sRGB-encoded channel value in [0,1] to linear
// radiometric space using the standard piecewise sRGB transfer function.
func SRGBToLinear(c float64) float64 {
	if c <= 0.04045 {
		return c / 12.92
	}
	return math.Pow((c+0.055)/1.055, 2.4)
}

// LinearToSRGB encodes a single linear channel value in [0,1] to sRGB space.
func LinearToSRGB(c float64) float64 {
	if c <= 0.0031308 {
		return c * 12.92
	}
	return 1.055*math.Pow(c, 1.0/2.4) - 0.055
}
