package scene

import (
	"math"

	"github.com/nwillc/raydist/pkg/vecmath"
)

// AABB is an axis-aligned bounding box used by the BVH.
type AABB struct {
	Min, Max vecmath.Vec3
}

// NewAABB builds an AABB from two corner points.
func NewAABB(min, max vecmath.Vec3) AABB {
	return AABB{Min: min, Max: max}
}

// Hit tests ray/AABB intersection using the slab method.
func (b AABB) Hit(r vecmath.Ray, tMin, tMax float64) bool {
	origin := [3]float64{r.Origin.X, r.Origin.Y, r.Origin.Z}
	dir := [3]float64{r.Direction.X, r.Direction.Y, r.Direction.Z}
	lo := [3]float64{b.Min.X, b.Min.Y, b.Min.Z}
	hi := [3]float64{b.Max.X, b.Max.Y, b.Max.Z}

	for axis := 0; axis < 3; axis++ {
		if math.Abs(dir[axis]) < 1e-8 {
			if origin[axis] < lo[axis] || origin[axis] > hi[axis] {
				return false
			}
			continue
		}
		inv := 1.0 / dir[axis]
		t1 := (lo[axis] - origin[axis]) * inv
		t2 := (hi[axis] - origin[axis]) * inv
		if t1 > t2 {
			t1, t2 = t2, t1
		}
		tMin = math.Max(tMin, t1)
		tMax = math.Min(tMax, t2)
		if tMin > tMax {
			return false
		}
	}
	return true
}

// Union returns the smallest AABB containing both inputs.
func (b AABB) Union(o AABB) AABB {
	return AABB{
		Min: vecmath.New(math.Min(b.Min.X, o.Min.X), math.Min(b.Min.Y, o.Min.Y), math.Min(b.Min.Z, o.Min.Z)),
		Max: vecmath.New(math.Max(b.Max.X, o.Max.X), math.Max(b.Max.Y, o.Max.Y), math.Max(b.Max.Z, o.Max.Z)),
	}
}

// Center returns the AABB's centroid.
func (b AABB) Center() vecmath.Vec3 {
	return b.Min.Add(b.Max).Scale(0.5)
}

// LongestAxis returns the axis (0=X, 1=Y, 2=Z) of greatest extent.
func (b AABB) LongestAxis() int {
	size := b.Max.Sub(b.Min)
	if size.X > size.Y && size.X > size.Z {
		return 0
	}
	if size.Y > size.Z {
		return 1
	}
	return 2
}
