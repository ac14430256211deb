// Package reflect implements the pure reflection kernels of spec §4.C:
// mirror reflection and the two lambertian samplers from spec §9 Open
// Question 1 (the original biased sampler, preserved bit-for-bit, and a
// corrected one).
package reflect

import (
	"math"
	"math/rand"

	"github.com/nwillc/raydist/pkg/vecmath"
)

// Mirror reflects direction d about normal n at point p: d - 2(d·n)n.
func Mirror(d, p, n vecmath.Vec3) vecmath.Ray {
	return vecmath.NewRay(p, d.Reflect(n))
}

// LambertianLegacy reproduces the original sampler bit-for-bit, including
// its bug: both the x and y components of the offset use cos(a), biasing
// samples toward a line rather than covering the hemisphere evenly. Spec §9
// Open Question 1 requires preserving this behavior rather than silently
// fixing it.
func LambertianLegacy(p, n vecmath.Vec3, rng *rand.Rand) vecmath.Ray {
	a := rng.Float64() * 2 * math.Pi
	z := rng.Float64()*2 - 1
	r := math.Sqrt(1 - z*z)
	u := vecmath.New(r*math.Cos(a), r*math.Cos(a), z)
	return vecmath.NewRay(p, n.Add(u))
}

// LambertianCorrected is the bug-fixed sampler: the y component uses sin(a)
// instead of a second cos(a), so u is drawn uniformly over the unit sphere
// rather than biased to a line.
func LambertianCorrected(p, n vecmath.Vec3, rng *rand.Rand) vecmath.Ray {
	a := rng.Float64() * 2 * math.Pi
	z := rng.Float64()*2 - 1
	r := math.Sqrt(1 - z*z)
	u := vecmath.New(r*math.Cos(a), r*math.Sin(a), z)
	return vecmath.NewRay(p, n.Add(u))
}
