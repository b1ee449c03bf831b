package shape

import (
	"math"

	"github.com/ajhager/lumentrace/pkg/core"
)

// Hit is the result of a successful element intersection: the ray parameter
// and the barycentric/parametric uv the BVH leaf walk carries forward into
// EvalPosition/EvalNormal/EvalTexcoord.
type Hit struct {
	T  float64
	UV core.Vec2
}

// IntersectElement tests a single element (selected by s.Kind) against a ray
// restricted to [tMin, tMax], dispatching to the kind-specific primitive
// test.
func (s *Shape) IntersectElement(elem int, ray core.Ray, tMin, tMax float64) (Hit, bool) {
	switch s.Kind {
	case KindTriangles:
		return s.intersectTriangle(elem, ray, tMin, tMax)
	case KindLines:
		return s.intersectLine(elem, ray, tMin, tMax)
	case KindPoints:
		return s.intersectPoint(elem, ray, tMin, tMax)
	default:
		return Hit{}, false
	}
}

// intersectTriangle is the Moeller-Trumbore ray/triangle test.
func (s *Shape) intersectTriangle(elem int, ray core.Ray, tMin, tMax float64) (Hit, bool) {
	tri := s.Triangles[elem]
	p0, p1, p2 := s.Positions[tri[0]], s.Positions[tri[1]], s.Positions[tri[2]]

	e1 := p1.Subtract(p0)
	e2 := p2.Subtract(p0)
	pvec := ray.Direction.Cross(e2)
	det := e1.Dot(pvec)
	if math.Abs(det) < 1e-12 {
		return Hit{}, false
	}
	invDet := 1.0 / det

	tvec := ray.Origin.Subtract(p0)
	u := tvec.Dot(pvec) * invDet
	if u < 0 || u > 1 {
		return Hit{}, false
	}

	qvec := tvec.Cross(e1)
	v := ray.Direction.Dot(qvec) * invDet
	if v < 0 || u+v > 1 {
		return Hit{}, false
	}

	t := e2.Dot(qvec) * invDet
	if t < tMin || t > tMax {
		return Hit{}, false
	}
	return Hit{T: t, UV: core.NewVec2(u, v)}, true
}

// intersectLine tests a ray against a cylinder around the line segment whose
// radius is the average of the two endpoint radii, keeping only hits whose
// projection falls within the segment. There are no end caps, and the radius
// does not vary along the segment.
func (s *Shape) intersectLine(elem int, ray core.Ray, tMin, tMax float64) (Hit, bool) {
	ln := s.Lines[elem]
	p0, p1 := s.Positions[ln[0]], s.Positions[ln[1]]
	r0, r1 := s.Radius[ln[0]], s.Radius[ln[1]]

	axis := p1.Subtract(p0)
	axisLen := axis.Length()
	if axisLen < 1e-12 {
		return Hit{}, false
	}
	axisDir := axis.Multiply(1.0 / axisLen)

	d := ray.Origin.Subtract(p0)
	dirDotAxis := ray.Direction.Dot(axisDir)
	dDotAxis := d.Dot(axisDir)

	// Project direction and offset onto the plane perpendicular to the axis.
	dirPerp := ray.Direction.Subtract(axisDir.Multiply(dirDotAxis))
	dPerp := d.Subtract(axisDir.Multiply(dDotAxis))

	// Use a constant radius (average of endpoints) for the quadratic solve.
	rAvg := (r0 + r1) / 2

	a := dirPerp.Dot(dirPerp)
	b := 2 * dirPerp.Dot(dPerp)
	c := dPerp.Dot(dPerp) - rAvg*rAvg
	if a < 1e-12 {
		return Hit{}, false
	}
	disc := b*b - 4*a*c
	if disc < 0 {
		return Hit{}, false
	}
	sq := math.Sqrt(disc)

	for _, t := range []float64{(-b - sq) / (2 * a), (-b + sq) / (2 * a)} {
		if t < tMin || t > tMax {
			continue
		}
		paramAlongAxis := (dDotAxis + t*dirDotAxis) / axisLen
		if paramAlongAxis < 0 || paramAlongAxis > 1 {
			continue
		}
		return Hit{T: t, UV: core.NewVec2(paramAlongAxis, 0)}, true
	}
	return Hit{}, false
}

// intersectPoint tests a ray against a sphere centered on the point's
// position with its per-vertex radius.
func (s *Shape) intersectPoint(elem int, ray core.Ray, tMin, tMax float64) (Hit, bool) {
	p := s.Points[elem]
	center := s.Positions[p]
	r := s.Radius[p]

	oc := ray.Origin.Subtract(center)
	a := ray.Direction.Dot(ray.Direction)
	b := 2 * oc.Dot(ray.Direction)
	c := oc.Dot(oc) - r*r
	disc := b*b - 4*a*c
	if disc < 0 {
		return Hit{}, false
	}
	sq := math.Sqrt(disc)
	for _, t := range []float64{(-b - sq) / (2 * a), (-b + sq) / (2 * a)} {
		if t >= tMin && t <= tMax {
			return Hit{T: t, UV: core.NewVec2(0, 0)}, true
		}
	}
	return Hit{}, false
}
