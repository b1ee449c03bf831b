// Package shape implements the scene's per-shape element arrays (triangles,
// lines, or points sharing one set of vertex attributes), their barycentric
// attribute evaluation, and the per-element ray intersection tests the BVH
// leaf walk dispatches to.
package shape

import (
	"fmt"

	"github.com/ajhager/lumentrace/pkg/core"
)

// Kind identifies which element array a Shape populates. At most one is
// populated per shape; a shape with none is a valid empty placeholder.
type Kind int

const (
	KindEmpty Kind = iota
	KindTriangles
	KindLines
	KindPoints
)

// Shape is one shape's worth of geometry: a single element kind (triangles,
// lines, or points) plus the parallel per-vertex attribute arrays shared by
// all of its elements.
type Shape struct {
	Kind Kind

	Positions []core.Vec3 // required
	Normals   []core.Vec3 // optional, same length as Positions when present
	Texcoords []core.Vec2 // optional, same length as Positions when present
	Radius    []float64   // required for lines/points, same length as Positions

	Triangles [][3]int // vertex index triples
	Lines     [][2]int // vertex index pairs
	Points    []int     // vertex indices
}

// Validate checks the invariants from the scene's data model: populated
// attribute arrays share Positions' length, element indices lie in
// [0, len(Positions)), at most one element kind is populated, and
// lines/points carry the required per-vertex radius.
func (s *Shape) Validate() error {
	n := len(s.Positions)

	populated := 0
	if len(s.Triangles) > 0 {
		populated++
	}
	if len(s.Lines) > 0 {
		populated++
	}
	if len(s.Points) > 0 {
		populated++
	}
	if populated > 1 {
		return &core.MalformedSceneError{Entity: "shape", Reason: "more than one element kind populated"}
	}

	if len(s.Normals) > 0 && len(s.Normals) != n {
		return &core.MalformedSceneError{Entity: "shape", Reason: "normals length does not match vertex count"}
	}
	if len(s.Texcoords) > 0 && len(s.Texcoords) != n {
		return &core.MalformedSceneError{Entity: "shape", Reason: "texcoords length does not match vertex count"}
	}

	switch s.Kind {
	case KindLines, KindPoints:
		if len(s.Radius) != n {
			return &core.MalformedSceneError{Entity: "shape", Reason: "radius required for lines/points and must match vertex count"}
		}
	}

	checkIdx := func(i int) error {
		if i < 0 || i >= n {
			return &core.MalformedSceneError{Entity: "shape", Reason: fmt.Sprintf("element index %d out of range [0,%d)", i, n)}
		}
		return nil
	}
	for _, tri := range s.Triangles {
		for _, i := range tri {
			if err := checkIdx(i); err != nil {
				return err
			}
		}
	}
	for _, ln := range s.Lines {
		for _, i := range ln {
			if err := checkIdx(i); err != nil {
				return err
			}
		}
	}
	for _, p := range s.Points {
		if err := checkIdx(p); err != nil {
			return err
		}
	}
	return nil
}

// NumElements returns the number of primitives (triangles, lines, or points)
// in the shape.
func (s *Shape) NumElements() int {
	switch s.Kind {
	case KindTriangles:
		return len(s.Triangles)
	case KindLines:
		return len(s.Lines)
	case KindPoints:
		return len(s.Points)
	default:
		return 0
	}
}

// ElementBounds returns the axis-aligned bounding box of a single element,
// used by the BVH builder.
func (s *Shape) ElementBounds(elem int) core.AABB {
	switch s.Kind {
	case KindTriangles:
		tri := s.Triangles[elem]
		return core.NewAABBFromPoints(s.Positions[tri[0]], s.Positions[tri[1]], s.Positions[tri[2]])
	case KindLines:
		ln := s.Lines[elem]
		r := maxF(s.Radius[ln[0]], s.Radius[ln[1]])
		box := core.NewAABBFromPoints(s.Positions[ln[0]], s.Positions[ln[1]])
		return box.Expand(r)
	case KindPoints:
		p := s.Points[elem]
		return core.NewAABB(s.Positions[p], s.Positions[p]).Expand(s.Radius[p])
	default:
		return core.AABB{}
	}
}

func maxF(a, b float64) float64 {
	if a > b {
		return a
	}
	return b
}

// EvalPosition interpolates the world/local-space position at barycentric uv
// for a triangle element; for a line it interpolates linearly between the two
// endpoints by uv.X, and for a point uv is ignored.
func (s *Shape) EvalPosition(elem int, uv core.Vec2) core.Vec3 {
	switch s.Kind {
	case KindTriangles:
		tri := s.Triangles[elem]
		w := 1 - uv.X - uv.Y
		p0, p1, p2 := s.Positions[tri[0]], s.Positions[tri[1]], s.Positions[tri[2]]
		return p0.Multiply(w).Add(p1.Multiply(uv.X)).Add(p2.Multiply(uv.Y))
	case KindLines:
		ln := s.Lines[elem]
		return s.Positions[ln[0]].Lerp(s.Positions[ln[1]], uv.X)
	case KindPoints:
		return s.Positions[s.Points[elem]]
	default:
		return core.Vec3{}
	}
}

// EvalElementNormal returns the geometric (flat, unshaded) normal of an
// element: the triangle's cross-product normal, the line's tangent, or
// (0,0,1) for points. The shading kernel uses the point normal as-is; no
// view-facing sprite normal is applied.
func (s *Shape) EvalElementNormal(elem int) core.Vec3 {
	switch s.Kind {
	case KindTriangles:
		tri := s.Triangles[elem]
		e1 := s.Positions[tri[1]].Subtract(s.Positions[tri[0]])
		e2 := s.Positions[tri[2]].Subtract(s.Positions[tri[0]])
		return e1.Cross(e2).Normalize()
	case KindLines:
		ln := s.Lines[elem]
		return s.Positions[ln[1]].Subtract(s.Positions[ln[0]]).Normalize()
	default:
		return core.NewVec3(0, 0, 1)
	}
}

// EvalNormal returns the shading normal at barycentric uv: the
// barycentric-interpolated, renormalized per-vertex normal when the shape
// carries one, otherwise the flat element normal.
func (s *Shape) EvalNormal(elem int, uv core.Vec2) core.Vec3 {
	if len(s.Normals) == 0 {
		return s.EvalElementNormal(elem)
	}
	switch s.Kind {
	case KindTriangles:
		tri := s.Triangles[elem]
		w := 1 - uv.X - uv.Y
		n0, n1, n2 := s.Normals[tri[0]], s.Normals[tri[1]], s.Normals[tri[2]]
		return n0.Multiply(w).Add(n1.Multiply(uv.X)).Add(n2.Multiply(uv.Y)).Normalize()
	case KindLines:
		ln := s.Lines[elem]
		return s.Normals[ln[0]].Lerp(s.Normals[ln[1]], uv.X).Normalize()
	case KindPoints:
		return s.Normals[s.Points[elem]].Normalize()
	default:
		return s.EvalElementNormal(elem)
	}
}

// EvalTexcoord returns the interpolated texture coordinate at barycentric uv,
// falling back to the raw barycentric uv itself when the shape has no
// per-vertex texcoords.
func (s *Shape) EvalTexcoord(elem int, uv core.Vec2) core.Vec2 {
	if len(s.Texcoords) == 0 {
		return uv
	}
	switch s.Kind {
	case KindTriangles:
		tri := s.Triangles[elem]
		w := 1 - uv.X - uv.Y
		t0, t1, t2 := s.Texcoords[tri[0]], s.Texcoords[tri[1]], s.Texcoords[tri[2]]
		return t0.Multiply(w).Add(t1.Multiply(uv.X)).Add(t2.Multiply(uv.Y))
	case KindLines:
		ln := s.Lines[elem]
		return s.Texcoords[ln[0]].Multiply(1 - uv.X).Add(s.Texcoords[ln[1]].Multiply(uv.X))
	case KindPoints:
		return s.Texcoords[s.Points[elem]]
	default:
		return uv
	}
}
