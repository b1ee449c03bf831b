// Package bvh implements the flat, array-packed bounding volume hierarchy
// used both to accelerate per-shape element intersection and, one level up,
// to accelerate per-instance intersection over a scene's objects.
package bvh

import "github.com/ajhager/lumentrace/pkg/core"

// leafSize is the maximum primitive count a leaf node may hold before the
// builder is forced to split further.
const leafSize = 4

// stackCapacity bounds the traversal's depth-first stack. A leaf size of 4
// keeps tree depth low enough that 128 entries comfortably covers any
// realistic scene.
const stackCapacity = 128

// Node is one entry of the flat node array. Internal nodes point at two
// contiguous child nodes (Start, Start+1); leaf nodes index a contiguous run
// of the BVH's Primitives permutation array.
type Node struct {
	Box      core.AABB
	Internal bool
	Axis     int
	Start    int
	Num      int
}

// BVH is a built hierarchy: the flat node array plus the permutation array
// mapping BVH-local leaf slots back to original primitive indices.
type BVH struct {
	Nodes      []Node
	Primitives []int
}

// Build constructs a BVH over n primitives using a top-down middle-split
// algorithm: the split axis is the longest axis of the range's centroid
// bounding box, and primitives partition by centroid position relative to
// that axis' midpoint, falling back to a range-midpoint split if one side
// would be empty.
//
// bounds(i) and centroid(i) are evaluated against the ORIGINAL primitive
// index i; Build handles the index permutation internally.
func Build(n int, bounds func(i int) core.AABB, centroid func(i int) core.Vec3) *BVH {
	primitives := make([]int, n)
	for i := range primitives {
		primitives[i] = i
	}

	if n == 0 {
		return &BVH{Nodes: []Node{{Box: core.AABB{}, Internal: false, Start: 0, Num: 0}}, Primitives: primitives}
	}

	nodes := make([]Node, 1, 2*n)

	var build func(nodeIdx, start, count int)
	build = func(nodeIdx, start, count int) {
		box := bounds(primitives[start])
		for i := start + 1; i < start+count; i++ {
			box = box.Union(bounds(primitives[i]))
		}

		if count <= leafSize {
			nodes[nodeIdx] = Node{Box: box, Internal: false, Start: start, Num: count}
			return
		}

		centroidBox := core.NewAABBFromPoints(centroid(primitives[start]))
		for i := start + 1; i < start+count; i++ {
			centroidBox = centroidBox.Union(core.NewAABB(centroid(primitives[i]), centroid(primitives[i])))
		}
		axis := centroidBox.LongestAxis()
		mid := partition(primitives[start:start+count], centroid, axis, component(centroidBox.Center(), axis)) + start

		if mid == start || mid == start+count {
			mid = start + count/2
		}

		leftIdx := len(nodes)
		nodes = append(nodes, Node{}, Node{})
		nodes[nodeIdx] = Node{Box: box, Internal: true, Axis: axis, Start: leftIdx, Num: 2}

		build(leftIdx, start, mid-start)
		build(leftIdx+1, mid, start+count-mid)
	}
	build(0, 0, n)

	return &BVH{Nodes: nodes, Primitives: primitives}
}

// partition reorders s in place so that every element whose centroid lies
// below mid (on the given axis) precedes every element at or above mid, and
// returns the split index.
func partition(s []int, centroid func(i int) core.Vec3, axis int, mid float64) int {
	i := 0
	for j := range s {
		if component(centroid(s[j]), axis) < mid {
			s[i], s[j] = s[j], s[i]
			i++
		}
	}
	return i
}

func component(v core.Vec3, axis int) float64 {
	switch axis {
	case 0:
		return v.X
	case 1:
		return v.Y
	default:
		return v.Z
	}
}

// Hit is the result of a successful BVH traversal: the hit distance, the
// original primitive index (after permutation), and the primitive test's
// own uv (barycentric for triangles, parametric for lines, zero for points;
// for the top-level instance BVH, the uv its shape BVH reported).
type Hit struct {
	Distance float64
	Prim     int
	UV       core.Vec2
}

// PrimTest intersects a single primitive (by its original index) against a
// ray restricted to [tMin, tMax].
type PrimTest func(prim int, ray core.Ray, tMin, tMax float64) (t float64, uv core.Vec2, ok bool)

// Intersect walks the hierarchy depth-first with a fixed-capacity stack,
// visiting the near child before the far child (relative to the ray
// direction's sign along each internal node's split axis) so that leaf hits
// tighten tMax as early as possible. If findAny is set, it returns on the
// first primitive hit (shadow-ray early out).
func (b *BVH) Intersect(ray core.Ray, tMin, tMax float64, findAny bool, test PrimTest) (Hit, bool) {
	invDir := core.NewVec3(1/ray.Direction.X, 1/ray.Direction.Y, 1/ray.Direction.Z)

	var stack [stackCapacity]int
	sp := 0
	stack[sp] = 0
	sp++

	var best Hit
	found := false

	for sp > 0 {
		sp--
		idx := stack[sp]
		node := b.Nodes[idx]

		if !node.Box.Hit(ray.Origin, invDir, tMin, tMax) {
			continue
		}

		if node.Internal {
			near, far := node.Start, node.Start+1
			if component(ray.Direction, node.Axis) < 0 {
				near, far = node.Start+1, node.Start
			}
			stack[sp] = far
			sp++
			stack[sp] = near
			sp++
			continue
		}

		for k := node.Start; k < node.Start+node.Num; k++ {
			prim := b.Primitives[k]
			t, uv, ok := test(prim, ray, tMin, tMax)
			if !ok {
				continue
			}
			tMax = t
			best = Hit{Distance: t, Prim: prim, UV: uv}
			found = true
			if findAny {
				return best, true
			}
		}
	}
	return best, found
}
