package scene

import "github.com/nwillc/raydist/pkg/vecmath"

// ReflectionKind selects how a material scatters incident light.
type ReflectionKind int

const (
	// Lambert scatters diffusely about the surface normal.
	Lambert ReflectionKind = iota
	// Mirror reflects specularly about the surface normal.
	Mirror
	// Absorb returns zero incident light.
	Absorb
)

// Material describes how a surface responds to incoming light.
type Material struct {
	Kind               ReflectionKind
	BaseColor          vecmath.Vec3
	ColorStrength      float64
	ReflectiveStrength float64
	// Fuzz, when non-nil, normalizes the outgoing ray direction and then adds
	// a uniform cube jitter of this radius; the sum is not renormalized.
	Fuzz *float64
}
