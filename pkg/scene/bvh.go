package scene

import "github.com/nwillc/raydist/pkg/vecmath"

// leafThreshold caps the number of shapes stored directly in a leaf before
// the builder attempts a further split.
const leafThreshold = 8

// bvhNode is a node in the bounding volume hierarchy.
type bvhNode struct {
	bounds      AABB
	left, right *bvhNode
	shapes      []Shape
}

// bvh is an immutable bounding volume hierarchy over a fixed shape set,
// built once and shared read-only across render threads.
type bvh struct {
	root *bvhNode
}

func newBVH(shapes []Shape) *bvh {
	if len(shapes) == 0 {
		return &bvh{}
	}
	cp := make([]Shape, len(shapes))
	copy(cp, shapes)
	return &bvh{root: buildBVH(cp)}
}

func buildBVH(shapes []Shape) *bvhNode {
	bounds := shapes[0].BoundingBox()
	for _, s := range shapes[1:] {
		bounds = bounds.Union(s.BoundingBox())
	}

	if len(shapes) <= leafThreshold {
		return &bvhNode{bounds: bounds, shapes: shapes}
	}

	axis := bounds.LongestAxis()
	splitPos := medianSplit(bounds, axis)
	if splitPos == nil {
		return &bvhNode{bounds: bounds, shapes: shapes}
	}

	left, right := partition(shapes, axis, *splitPos)
	if len(left) == 0 || len(right) == 0 {
		return &bvhNode{bounds: bounds, shapes: shapes}
	}

	return &bvhNode{bounds: bounds, left: buildBVH(left), right: buildBVH(right)}
}

func medianSplit(bounds AABB, axis int) *float64 {
	var lo, hi float64
	switch axis {
	case 0:
		lo, hi = bounds.Min.X, bounds.Max.X
	case 1:
		lo, hi = bounds.Min.Y, bounds.Max.Y
	default:
		lo, hi = bounds.Min.Z, bounds.Max.Z
	}
	if hi <= lo {
		return nil
	}
	mid := (lo + hi) * 0.5
	return &mid
}

func axisValue(v vecmath.Vec3, axis int) float64 {
	switch axis {
	case 0:
		return v.X
	case 1:
		return v.Y
	default:
		return v.Z
	}
}

func partition(shapes []Shape, axis int, splitPos float64) (left, right []Shape) {
	for _, s := range shapes {
		if axisValue(s.BoundingBox().Center(), axis) < splitPos {
			left = append(left, s)
		} else {
			right = append(right, s)
		}
	}
	return left, right
}

// hit returns the nearest hit on the ray within (tMin, tMax].
func (b *bvh) hit(ray vecmath.Ray, tMin, tMax float64) (*Hit, bool) {
	if b.root == nil {
		return nil, false
	}
	return hitNode(b.root, ray, tMin, tMax)
}

func hitNode(node *bvhNode, ray vecmath.Ray, tMin, tMax float64) (*Hit, bool) {
	if !node.bounds.Hit(ray, tMin, tMax) {
		return nil, false
	}

	if node.shapes != nil {
		var best *Hit
		closest := tMax
		for _, s := range node.shapes {
			if h, ok := s.Hit(ray, tMin, closest); ok && h.T <= closest {
				best = h
				closest = h.T
			}
		}
		return best, best != nil
	}

	leftHit, leftOK := hitNode(node.left, ray, tMin, tMax)
	searchMax := tMax
	if leftOK {
		searchMax = leftHit.T
	}
	rightHit, rightOK := hitNode(node.right, ray, tMin, searchMax)
	if rightOK {
		return rightHit, true
	}
	return leftHit, leftOK
}
