package scene

import (
	"math"

	"github.com/nwillc/raydist/pkg/vecmath"
)

// Hit describes a ray/shape intersection.
type Hit struct {
	T        float64
	Point    vecmath.Vec3
	Normal   vecmath.Vec3
	Material Material
}

// Shape is anything the scene can intersect with a ray.
type Shape interface {
	Hit(ray vecmath.Ray, tMin, tMax float64) (*Hit, bool)
	BoundingBox() AABB
}

// Isometry is a translation plus rotation applied to a shape's local frame.
// Rotation is expressed as a 3x3 orthonormal matrix (row-major).
type Isometry struct {
	Translation vecmath.Vec3
	Rotation    [3][3]float64
}

// Identity returns the identity isometry (no rotation or translation).
func Identity() Isometry {
	return Isometry{
		Rotation: [3][3]float64{{1, 0, 0}, {0, 1, 0}, {0, 0, 1}},
	}
}

// Translate returns an identity-rotation isometry translating by v.
func Translate(v vecmath.Vec3) Isometry {
	iso := Identity()
	iso.Translation = v
	return iso
}

func (iso Isometry) apply(v vecmath.Vec3) vecmath.Vec3 {
	r := iso.Rotation
	return vecmath.New(
		r[0][0]*v.X+r[0][1]*v.Y+r[0][2]*v.Z,
		r[1][0]*v.X+r[1][1]*v.Y+r[1][2]*v.Z,
		r[2][0]*v.X+r[2][1]*v.Y+r[2][2]*v.Z,
	).Add(iso.Translation)
}

func (iso Isometry) applyInverse(v vecmath.Vec3) vecmath.Vec3 {
	p := v.Sub(iso.Translation)
	r := iso.Rotation
	// rotation matrices here are always orthonormal, so the inverse is the transpose
	return vecmath.New(
		r[0][0]*p.X+r[1][0]*p.Y+r[2][0]*p.Z,
		r[0][1]*p.X+r[1][1]*p.Y+r[2][1]*p.Z,
		r[0][2]*p.X+r[1][2]*p.Y+r[2][2]*p.Z,
	)
}

func (iso Isometry) applyNormal(n vecmath.Vec3) vecmath.Vec3 {
	r := iso.Rotation
	return vecmath.New(
		r[0][0]*n.X+r[0][1]*n.Y+r[0][2]*n.Z,
		r[1][0]*n.X+r[1][1]*n.Y+r[1][2]*n.Z,
		r[2][0]*n.X+r[2][1]*n.Y+r[2][2]*n.Z,
	)
}

// Sphere is a unit-radius-configurable sphere centered at the local origin,
// placed in the scene by an Isometry (see transformedShape).
type Sphere struct {
	Radius float64
}

func (s Sphere) localHit(ray vecmath.Ray, tMin, tMax float64) (t float64, normal vecmath.Vec3, ok bool) {
	oc := ray.Origin
	a := ray.Direction.Dot(ray.Direction)
	halfB := oc.Dot(ray.Direction)
	c := oc.Dot(oc) - s.Radius*s.Radius
	disc := halfB*halfB - a*c
	if disc < 0 {
		return 0, vecmath.Vec3{}, false
	}
	sqrtd := math.Sqrt(disc)

	root := (-halfB - sqrtd) / a
	if root < tMin || root > tMax {
		root = (-halfB + sqrtd) / a
		if root < tMin || root > tMax {
			return 0, vecmath.Vec3{}, false
		}
	}

	p := ray.At(root)
	n := p.Scale(1 / s.Radius)
	return root, n, true
}

func (s Sphere) localBounds() AABB {
	r := vecmath.New(s.Radius, s.Radius, s.Radius)
	return AABB{Min: vecmath.Vec3{}.Sub(r), Max: vecmath.Vec3{}.Add(r)}
}

// Box is an axis-aligned (in local frame) box centered at the local origin
// with the given half-extents.
type Box struct {
	HalfExtent vecmath.Vec3
}

func (bx Box) localHit(ray vecmath.Ray, tMin, tMax float64) (t float64, normal vecmath.Vec3, ok bool) {
	lo := vecmath.Vec3{}.Sub(bx.HalfExtent)
	hi := bx.HalfExtent

	origin := [3]float64{ray.Origin.X, ray.Origin.Y, ray.Origin.Z}
	dir := [3]float64{ray.Direction.X, ray.Direction.Y, ray.Direction.Z}
	loA := [3]float64{lo.X, lo.Y, lo.Z}
	hiA := [3]float64{hi.X, hi.Y, hi.Z}

	tNear, tFar := tMin, tMax
	nearAxis, nearSign := -1, 1.0

	for axis := 0; axis < 3; axis++ {
		if math.Abs(dir[axis]) < 1e-8 {
			if origin[axis] < loA[axis] || origin[axis] > hiA[axis] {
				return 0, vecmath.Vec3{}, false
			}
			continue
		}
		inv := 1.0 / dir[axis]
		t1 := (loA[axis] - origin[axis]) * inv
		t2 := (hiA[axis] - origin[axis]) * inv
		sign := -1.0
		if t1 > t2 {
			t1, t2 = t2, t1
			sign = 1.0
		}
		if t1 > tNear {
			tNear = t1
			nearAxis = axis
			nearSign = sign
		}
		if t2 < tFar {
			tFar = t2
		}
		if tNear > tFar {
			return 0, vecmath.Vec3{}, false
		}
	}

	if nearAxis < 0 || tNear < tMin || tNear > tMax {
		return 0, vecmath.Vec3{}, false
	}

	normal = vecmath.Vec3{}
	switch nearAxis {
	case 0:
		normal.X = nearSign
	case 1:
		normal.Y = nearSign
	case 2:
		normal.Z = nearSign
	}
	return tNear, normal, true
}

func (bx Box) localBounds() AABB {
	return AABB{Min: vecmath.Vec3{}.Sub(bx.HalfExtent), Max: bx.HalfExtent}
}

type localShape interface {
	localHit(ray vecmath.Ray, tMin, tMax float64) (float64, vecmath.Vec3, bool)
	localBounds() AABB
}

// transformedShape places a localShape in world space via an Isometry and
// attaches the Material it should report on hit.
type transformedShape struct {
	local    localShape
	iso      Isometry
	material Material
	bounds   AABB
}

// NewTransformedShape wraps a local-frame shape with its placement and
// material, precomputing a conservative world-space bounding box.
func NewTransformedShape(local localShape, iso Isometry, mat Material) Shape {
	lb := local.localBounds()
	corners := []vecmath.Vec3{
		{X: lb.Min.X, Y: lb.Min.Y, Z: lb.Min.Z}, {X: lb.Max.X, Y: lb.Min.Y, Z: lb.Min.Z},
		{X: lb.Min.X, Y: lb.Max.Y, Z: lb.Min.Z}, {X: lb.Max.X, Y: lb.Max.Y, Z: lb.Min.Z},
		{X: lb.Min.X, Y: lb.Min.Y, Z: lb.Max.Z}, {X: lb.Max.X, Y: lb.Min.Y, Z: lb.Max.Z},
		{X: lb.Min.X, Y: lb.Max.Y, Z: lb.Max.Z}, {X: lb.Max.X, Y: lb.Max.Y, Z: lb.Max.Z},
	}
	world := iso.apply(corners[0])
	worldBounds := AABB{Min: world, Max: world}
	for _, c := range corners[1:] {
		wc := iso.apply(c)
		worldBounds = worldBounds.Union(AABB{Min: wc, Max: wc})
	}

	return &transformedShape{local: local, iso: iso, material: mat, bounds: worldBounds}
}

func (ts *transformedShape) Hit(ray vecmath.Ray, tMin, tMax float64) (*Hit, bool) {
	localRay := vecmath.NewRay(ts.iso.applyInverse(ray.Origin), ts.iso.applyInverse(ray.Origin.Add(ray.Direction)).Sub(ts.iso.applyInverse(ray.Origin)))

	t, normal, ok := ts.local.localHit(localRay, tMin, tMax)
	if !ok {
		return nil, false
	}

	worldPoint := ray.At(t)
	worldNormal := ts.iso.applyNormal(normal).Normalize()

	return &Hit{T: t, Point: worldPoint, Normal: worldNormal, Material: ts.material}, true
}

func (ts *transformedShape) BoundingBox() AABB {
	return ts.bounds
}
