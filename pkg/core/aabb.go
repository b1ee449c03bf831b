package core

import "math"

// AABB represents an axis-aligned bounding box
type AABB struct {
	Min Vec3 // Minimum corner
	Max Vec3 // Maximum corner
}

// NewAABB creates a new AABB from min and max points
func NewAABB(min, max Vec3) AABB {
	return AABB{Min: min, Max: max}
}

// NewAABBFromPoints creates an AABB that bounds all given points
func NewAABBFromPoints(points ...Vec3) AABB {
	if len(points) == 0 {
		return AABB{}
	}

	min := points[0]
	max := points[0]

	for _, point := range points[1:] {
		min.X = math.Min(min.X, point.X)
		min.Y = math.Min(min.Y, point.Y)
		min.Z = math.Min(min.Z, point.Z)

		max.X = math.Max(max.X, point.X)
		max.Y = math.Max(max.Y, point.Y)
		max.Z = math.Max(max.Z, point.Z)
	}

	return AABB{Min: min, Max: max}
}

// Hit tests a ray/AABB intersection using the slab method, given the ray's
// origin and precomputed inverse direction (1/dx, 1/dy, 1/dz). The BVH
// traversal computes invDir once per ray rather than once per node tested.
func (aabb AABB) Hit(origin, invDir Vec3, tMin, tMax float64) bool {
	t1 := (aabb.Min.X - origin.X) * invDir.X
	t2 := (aabb.Max.X - origin.X) * invDir.X
	if t1 > t2 {
		t1, t2 = t2, t1
	}
	tMin, tMax = math.Max(tMin, t1), math.Min(tMax, t2)
	if tMin > tMax {
		return false
	}

	t1 = (aabb.Min.Y - origin.Y) * invDir.Y
	t2 = (aabb.Max.Y - origin.Y) * invDir.Y
	if t1 > t2 {
		t1, t2 = t2, t1
	}
	tMin, tMax = math.Max(tMin, t1), math.Min(tMax, t2)
	if tMin > tMax {
		return false
	}

	t1 = (aabb.Min.Z - origin.Z) * invDir.Z
	t2 = (aabb.Max.Z - origin.Z) * invDir.Z
	if t1 > t2 {
		t1, t2 = t2, t1
	}
	tMin, tMax = math.Max(tMin, t1), math.Min(tMax, t2)
	return tMin <= tMax
}

// Union returns an AABB that bounds both this AABB and another
func (aabb AABB) Union(other AABB) AABB {
	min := Vec3{
		X: math.Min(aabb.Min.X, other.Min.X),
		Y: math.Min(aabb.Min.Y, other.Min.Y),
		Z: math.Min(aabb.Min.Z, other.Min.Z),
	}
	max := Vec3{
		X: math.Max(aabb.Max.X, other.Max.X),
		Y: math.Max(aabb.Max.Y, other.Max.Y),
		Z: math.Max(aabb.Max.Z, other.Max.Z),
	}
	return AABB{Min: min, Max: max}
}

// Center returns the center point of the AABB
func (aabb AABB) Center() Vec3 {
	return aabb.Min.Add(aabb.Max).Multiply(0.5)
}

// Size returns the size (extent) of the AABB along each axis
func (aabb AABB) Size() Vec3 {
	return aabb.Max.Subtract(aabb.Min)
}

// SurfaceArea returns the surface area of the AABB
func (aabb AABB) SurfaceArea() float64 {
	size := aabb.Size()
	return 2.0 * (size.X*size.Y + size.Y*size.Z + size.Z*size.X)
}

// LongestAxis returns the axis (0=X, 1=Y, 2=Z) with the longest extent
func (aabb AABB) LongestAxis() int {
	size := aabb.Size()
	if size.X > size.Y && size.X > size.Z {
		return 0 // X axis
	}
	if size.Y > size.Z {
		return 1 // Y axis
	}
	return 2 // Z axis
}

// IsValid returns true if this is a valid AABB (min <= max for all axes)
func (aabb AABB) IsValid() bool {
	return aabb.Min.X <= aabb.Max.X &&
		aabb.Min.Y <= aabb.Max.Y &&
		aabb.Min.Z <= aabb.Max.Z
}

// Expand returns an AABB expanded by the given amount in all directions
func (aabb AABB) Expand(amount float64) AABB {
	expansion := NewVec3(amount, amount, amount)
	return AABB{
		Min: aabb.Min.Subtract(expansion),
		Max: aabb.Max.Add(expansion),
	}
}
