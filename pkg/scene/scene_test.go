package scene

import (
	"math/rand"
	"testing"

	"github.com/nwillc/raydist/pkg/vecmath"
)

func background(ray vecmath.Ray) vecmath.Vec3 {
	return vecmath.New(0.5, 0.7, 1.0)
}

func TestCastRayDepthZeroIsAlwaysZero(t *testing.T) {
	s := NewBuilder(1000, background).
		Add(Sphere{Radius: 1}, Translate(vecmath.New(0, 0, -5)), Material{Kind: Lambert, BaseColor: vecmath.New(1, 0, 0), ColorStrength: 1}).
		Build()

	rng := rand.New(rand.NewSource(1))
	ray := vecmath.NewRay(vecmath.Vec3{}, vecmath.New(0, 0, -1))
	got := s.CastRay(ray, 0, rng)
	if got != (vecmath.Vec3{}) {
		t.Fatalf("CastRay(depth=0) = %v, want zero vector", got)
	}
}

func TestCastRayMissReturnsBackground(t *testing.T) {
	s := NewBuilder(1000, background).Build()
	rng := rand.New(rand.NewSource(1))
	ray := vecmath.NewRay(vecmath.Vec3{}, vecmath.New(0, 0, -1))

	got := s.CastRay(ray, 5, rng)
	want := background(ray)
	if got != want {
		t.Fatalf("CastRay(miss) = %v, want background %v", got, want)
	}
}

func TestCastRayAbsorbIsZero(t *testing.T) {
	s := NewBuilder(1000, background).
		Add(Sphere{Radius: 1}, Translate(vecmath.New(0, 0, -5)), Material{Kind: Absorb}).
		Build()

	rng := rand.New(rand.NewSource(1))
	ray := vecmath.NewRay(vecmath.Vec3{}, vecmath.New(0, 0, -1))

	got := s.CastRay(ray, 5, rng)
	if got != (vecmath.Vec3{}) {
		t.Fatalf("CastRay(absorb) = %v, want zero", got)
	}
}

func TestTransformedSphereHitByTranslatedRay(t *testing.T) {
	shape := NewTransformedShape(Sphere{Radius: 1}, Translate(vecmath.New(0, 0, -5)), Material{Kind: Mirror})
	ray := vecmath.NewRay(vecmath.Vec3{}, vecmath.New(0, 0, -1))

	hit, ok := shape.Hit(ray, epsilon, 1000)
	if !ok {
		t.Fatal("expected hit")
	}
	if hit.T <= 0 {
		t.Fatalf("hit.T = %v, want positive", hit.T)
	}
}
