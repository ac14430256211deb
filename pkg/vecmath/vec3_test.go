package vecmath

import (
	"math"
	"math/rand"
	"testing"
)

func TestVec3Reflect(t *testing.T) {
	d := New(1, -1, 0)
	n := New(0, 1, 0)
	got := d.Reflect(n)
	want := New(1, 1, 0)
	if got != want {
		t.Errorf("Reflect() = %v, want %v", got, want)
	}
}

func TestVec3NormalizeZero(t *testing.T) {
	v := New(0, 0, 0)
	if got := v.Normalize(); got != v {
		t.Errorf("Normalize() of zero vector = %v, want zero vector", got)
	}
}

func TestRandomUnitSphereVecIsUnitLength(t *testing.T) {
	rng := rand.New(rand.NewSource(1))
	for i := 0; i < 100; i++ {
		v := RandomUnitSphereVec(rng)
		if l := v.Length(); math.Abs(l-1) > 1e-9 {
			t.Fatalf("RandomUnitSphereVec() length = %v, want 1", l)
		}
	}
}
