// Package scene holds the immutable shape/material collection, its BVH
// acceleration structure, and the recursive cast_ray incident-light
// evaluation of spec §4.B.
package scene

import (
	"math"
	"math/rand"

	"github.com/nwillc/raydist/pkg/reflect"
	"github.com/nwillc/raydist/pkg/vecmath"
)

// BackgroundFunc returns the incident color for a ray that hits nothing.
type BackgroundFunc func(ray vecmath.Ray) vecmath.Vec3

// epsilon is the minimum ray parameter considered a valid hit, avoiding
// self-intersection at the origin of a newly scattered ray.
var epsilon = math.Nextafter(1, 2) - 1

// Scene is an immutable collection of shapes placed in world space, freely
// shareable (by reference) across render threads once built.
type Scene struct {
	bvh        *bvh
	background BackgroundFunc
	maxDist    float64
	// UseLegacySampler selects the bit-for-bit-preserved (biased) lambertian
	// sampler of spec §9 Open Question 1 when true (the default), or the
	// corrected unit-sphere sampler when false.
	UseLegacySampler bool
}

// Builder incrementally assembles a Scene.
type Builder struct {
	maxDistance float64
	background  BackgroundFunc
	shapes      []Shape
	legacy      bool
}

// NewBuilder starts a new scene builder with the given ray max distance and
// background color function.
func NewBuilder(maxDistance float64, background BackgroundFunc) *Builder {
	return &Builder{maxDistance: maxDistance, background: background, legacy: true}
}

// WithLegacySampler toggles which lambertian sampler the built scene uses.
func (b *Builder) WithLegacySampler(legacy bool) *Builder {
	b.legacy = legacy
	return b
}

// Add places a local shape in the scene via an isometry with the given
// material.
func (b *Builder) Add(local localShape, iso Isometry, mat Material) *Builder {
	b.shapes = append(b.shapes, NewTransformedShape(local, iso, mat))
	return b
}

// Build finalizes the scene, constructing its BVH. The returned Scene is
// immutable and safe to share (by reference) across goroutines.
func (b *Builder) Build() *Scene {
	return &Scene{
		bvh:              newBVH(b.shapes),
		background:       b.background,
		maxDist:          b.maxDistance,
		UseLegacySampler: b.legacy,
	}
}

// CastRay returns the incident color along ray at the given recursion
// depth budget, per spec §4.B. CastRay(ray, 0) is always zero (property 5).
//
// The BRDF term multiplies the base color by the vector norm (not the
// luminance) of the recursively gathered light; this is intentionally
// non-physical and preserved from the original implementation.
func (s *Scene) CastRay(ray vecmath.Ray, depth int, rng *rand.Rand) vecmath.Vec3 {
	if depth == 0 {
		return vecmath.Vec3{}
	}

	hit, ok := s.bvh.hit(ray, epsilon, s.maxDist)
	if !ok {
		if s.background == nil {
			return vecmath.Vec3{}
		}
		return s.background(ray)
	}

	switch hit.Material.Kind {
	case Absorb:
		return vecmath.Vec3{}
	case Lambert, Mirror:
		scattered := s.scatter(ray, hit, rng)
		lightIn := s.CastRay(scattered, depth-1, rng)
		return hit.Material.BaseColor.
			Scale(hit.Material.ColorStrength * lightIn.Length()).
			Add(lightIn.Scale(hit.Material.ReflectiveStrength))
	default:
		return vecmath.Vec3{}
	}
}

func (s *Scene) scatter(ray vecmath.Ray, hit *Hit, rng *rand.Rand) vecmath.Ray {
	var scattered vecmath.Ray
	switch hit.Material.Kind {
	case Lambert:
		if s.UseLegacySampler {
			scattered = reflect.LambertianLegacy(hit.Point, hit.Normal, rng)
		} else {
			scattered = reflect.LambertianCorrected(hit.Point, hit.Normal, rng)
		}
	case Mirror:
		scattered = reflect.Mirror(ray.Direction, hit.Point, hit.Normal)
	}

	if hit.Material.Fuzz != nil {
		fuzzed := scattered.Direction.Normalize().Add(vecmath.RandomUnitCube(rng, *hit.Material.Fuzz))
		scattered = vecmath.NewRay(scattered.Origin, fuzzed)
	}
	return scattered
}
