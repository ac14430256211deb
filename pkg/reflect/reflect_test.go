package reflect

import (
	"math"
	"math/rand"
	"testing"

	"github.com/nwillc/raydist/pkg/vecmath"
)

func TestMirrorReflectsAboutNormal(t *testing.T) {
	d := vecmath.New(1, -1, 0)
	n := vecmath.New(0, 1, 0)
	p := vecmath.New(3, 4, 5)

	ray := Mirror(d, p, n)
	if ray.Origin != p {
		t.Errorf("Origin = %v, want %v", ray.Origin, p)
	}
	want := vecmath.New(1, 1, 0)
	if ray.Direction != want {
		t.Errorf("Direction = %v, want %v", ray.Direction, want)
	}
}

func TestLambertianLegacyMatchesBiasedFormula(t *testing.T) {
	rng := rand.New(rand.NewSource(42))
	p := vecmath.New(0, 0, 0)
	n := vecmath.New(0, 0, 1)

	ray := LambertianLegacy(p, n, rng)
	// Re-derive with a fresh rng of the same seed to confirm the x and y
	// offset components are identical (the preserved bug).
	rng2 := rand.New(rand.NewSource(42))
	a := rng2.Float64() * 2 * math.Pi
	z := rng2.Float64()*2 - 1
	r := math.Sqrt(1 - z*z)
	offset := ray.Direction.Sub(n)
	if offset.X != r*math.Cos(a) || offset.Y != r*math.Cos(a) {
		t.Errorf("legacy sampler offset = %v, want x = y = r*cos(a) = %v", offset, r*math.Cos(a))
	}
	if offset.X != offset.Y {
		t.Errorf("legacy sampler offset.X (%v) != offset.Y (%v), bug not preserved", offset.X, offset.Y)
	}
}

func TestLambertianCorrectedNotBiasedToLine(t *testing.T) {
	rng := rand.New(rand.NewSource(7))
	p := vecmath.New(0, 0, 0)
	n := vecmath.New(0, 0, 1)

	sawDifferent := false
	for i := 0; i < 20; i++ {
		ray := LambertianCorrected(p, n, rng)
		offset := ray.Direction.Sub(n)
		if offset.X != offset.Y {
			sawDifferent = true
			break
		}
	}
	if !sawDifferent {
		t.Error("corrected sampler never produced offset.X != offset.Y across 20 draws")
	}
}
