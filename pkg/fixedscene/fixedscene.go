// Package fixedscene builds the single scene that cmd/raydist and
// cmd/tileworker both render, so a local run and a remote worker produce
// identical images for the same job.
package fixedscene

import (
	"github.com/nwillc/raydist/pkg/scene"
	"github.com/nwillc/raydist/pkg/vecmath"
)

// skyBackground is a vertical gradient from white at the horizon to sky
// blue overhead, sampled by ray direction the way a Lambertian-sky
// background is conventionally built.
func skyBackground(ray vecmath.Ray) vecmath.Vec3 {
	unit := ray.Direction.Normalize()
	t := 0.5 * (unit.Y + 1.0)
	white := vecmath.New(1.0, 1.0, 1.0)
	sky := vecmath.New(0.5, 0.7, 1.0)
	return white.Scale(1 - t).Add(sky.Scale(t))
}

// New builds the fixed scene: a ground plane and three spheres in Lambert,
// Mirror, and fuzzed-Mirror materials, under a sky gradient background.
func New() *scene.Scene {
	fuzz := 0.3
	b := scene.NewBuilder(1000, skyBackground)

	groundMat := scene.Material{Kind: scene.Lambert, BaseColor: vecmath.New(0.5, 0.5, 0.5), ColorStrength: 1}
	b.Add(scene.Box{HalfExtent: vecmath.New(500, 500, 500)}, scene.Translate(vecmath.New(0, -500.5, -1)), groundMat)

	centerMat := scene.Material{Kind: scene.Lambert, BaseColor: vecmath.New(0.1, 0.2, 0.5), ColorStrength: 1}
	b.Add(scene.Sphere{Radius: 0.5}, scene.Translate(vecmath.New(0, 0, -1)), centerMat)

	leftMat := scene.Material{Kind: scene.Mirror, BaseColor: vecmath.New(0.8, 0.8, 0.8), ReflectiveStrength: 1}
	b.Add(scene.Sphere{Radius: 0.5}, scene.Translate(vecmath.New(-1, 0, -1)), leftMat)

	rightMat := scene.Material{Kind: scene.Mirror, BaseColor: vecmath.New(0.8, 0.6, 0.2), ReflectiveStrength: 1, Fuzz: &fuzz}
	b.Add(scene.Sphere{Radius: 0.5}, scene.Translate(vecmath.New(1, 0, -1)), rightMat)

	return b.Build()
}
