package fixedscene

import (
	"math/rand"
	"testing"

	"github.com/nwillc/raydist/pkg/vecmath"
)

func TestNewScenePopulatesNonEmptyBVH(t *testing.T) {
	sc := New()
	rng := rand.New(rand.NewSource(1))
	ray := vecmath.NewRay(vecmath.New(0, 0, 2), vecmath.New(0, 0, -1))

	got := sc.CastRay(ray, 8, rng)
	if got == (vecmath.Vec3{}) {
		t.Fatal("expected the fixed scene to produce a non-zero color along a ray through the center sphere")
	}
}

func TestSkyBackgroundVariesWithDirection(t *testing.T) {
	up := skyBackground(vecmath.NewRay(vecmath.Vec3{}, vecmath.New(0, 1, 0)))
	down := skyBackground(vecmath.NewRay(vecmath.Vec3{}, vecmath.New(0, -1, 0)))
	if up == down {
		t.Fatal("expected sky gradient to differ by ray direction")
	}
}
