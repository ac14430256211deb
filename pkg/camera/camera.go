// Package camera converts tile coordinates into primary rays, accumulates
// stratified samples, and renders a RenderJob's tile into a PixelPlane, per
// spec §4.D. It also implements the multi-thread whole-frame render path
// used by the local CLI.
package camera

import (
	"math"
	"math/rand"
	"runtime"
	"sync"

	"github.com/nwillc/raydist/pkg/job"
	"github.com/nwillc/raydist/pkg/pixel"
	"github.com/nwillc/raydist/pkg/scene"
	"github.com/nwillc/raydist/pkg/vecmath"
)

// Camera has a fixed viewport, focal length, origin at the world origin,
// and looks down -z, matching spec §4.D.
type Camera struct {
	origin          vecmath.Vec3
	lowerLeftCorner vecmath.Vec3
	horizontal      vecmath.Vec3
	vertical        vecmath.Vec3
}

// New builds a camera for the given viewport size and focal length.
func New(viewportW, viewportH, focalLength float64) *Camera {
	origin := vecmath.Vec3{}
	horizontal := vecmath.New(viewportW, 0, 0)
	vertical := vecmath.New(0, viewportH, 0)
	lowerLeft := origin.
		Sub(horizontal.Scale(0.5)).
		Sub(vertical.Scale(0.5)).
		Sub(vecmath.New(0, 0, focalLength))

	return &Camera{origin: origin, horizontal: horizontal, vertical: vertical, lowerLeftCorner: lowerLeft}
}

// NewDefault builds the camera with a 16:9-ish viewport and unit focal
// length, matching the fixed scene's default framing.
func NewDefault() *Camera {
	const aspect = 16.0 / 9.0
	const viewportH = 2.0
	return New(aspect*viewportH, viewportH, 1.0)
}

// rayAt returns the primary ray for camera-space UV coordinates in [0,1].
func (c *Camera) rayAt(u, v float64) vecmath.Ray {
	dir := c.lowerLeftCorner.
		Add(c.horizontal.Scale(u)).
		Add(c.vertical.Scale(v)).
		Sub(c.origin)
	return vecmath.NewRay(c.origin, dir)
}

// stratification returns (ws, hs) such that ws*hs == n_samples as closely
// as spec §4.D's floor(sqrt(n)) / floor(n/ws) rule allows.
func stratification(n uint32) (ws, hs int) {
	if n == 0 {
		n = 1
	}
	ws = int(math.Sqrt(float64(n)))
	if ws < 1 {
		ws = 1
	}
	hs = int(n) / ws
	if hs < 1 {
		hs = 1
	}
	return ws, hs
}

// RenderTile fills out[0..w, 0..h] for the tile described by j, after
// flipping the camera's bottom-up y-axis into the tile's top-down layout.
// It has no shared mutable state with any other tile, so concurrent calls
// for disjoint jobs against the same *scene.Scene are safe.
func RenderTile(sc *scene.Scene, j job.RenderJob, out pixel.Sink, rng *rand.Rand) error {
	if err := j.Validate(); err != nil {
		return err
	}

	cam := NewDefault()
	ws, hs := stratification(j.NSamples)
	samples := ws * hs

	for ty := 0; ty < int(j.H); ty++ {
		camY := int(j.Y) + ty
		for tx := 0; tx < int(j.W); tx++ {
			camX := int(j.X) + tx

			var accum vecmath.Vec3
			for sy := 0; sy < hs; sy++ {
				for sx := 0; sx < ws; sx++ {
					jitterU := (float64(sx) + rng.Float64()) / float64(ws)
					jitterV := (float64(sy) + rng.Float64()) / float64(hs)

					u := (float64(camX) + jitterU) / float64(j.CameraW-1)
					// flip y: camera space is bottom-up, tile space is top-down
					flippedY := int(j.CameraH) - 1 - camY
					v := (float64(flippedY) + jitterV) / float64(j.CameraH-1)

					ray := cam.rayAt(u, v)
					accum = accum.Add(sc.CastRay(ray, int(j.NRecursion), rng))
				}
			}

			avg := accum.Scale(1 / float64(samples))
			if err := out.SetPixel(tx, ty, pixel.NewPixel(avg.X, avg.Y, avg.Z)); err != nil {
				return err
			}
		}
	}
	return nil
}

// RenderFrame renders a full w x h frame at the given settings by splitting
// the output into one horizontal shard per thread, rendering each shard on
// its own goroutine against a shared read-only *scene.Scene, and
// reassembling the shards with pkg/pixel.
func RenderFrame(sc *scene.Scene, w, h int, settings job.RenderSettings, numThreads int) (*pixel.Plane, error) {
	if numThreads <= 0 {
		numThreads = runtime.NumCPU()
	}
	if numThreads > h {
		numThreads = h
	}

	plane := pixel.NewPlane(w, h)
	shards, err := pixel.Split(plane, numThreads)
	if err != nil {
		return nil, err
	}

	var wg sync.WaitGroup
	errs := make([]error, len(shards))
	for i, shard := range shards {
		wg.Add(1)
		go func(i int, shard *pixel.Shard) {
			defer wg.Done()
			rng := rand.New(rand.NewSource(int64(i) + 1))
			task := job.RenderTask{
				Rect:     job.Rect{X: 0, Y: shard.Y, W: shard.W, H: shard.H},
				Settings: settings,
			}
			j := task.ToJob(uint32(w), uint32(h))
			errs[i] = RenderTile(sc, j, shard, rng)
		}(i, shard)
	}
	wg.Wait()

	for _, e := range errs {
		if e != nil {
			return nil, e
		}
	}
	return pixel.Collect(shards), nil
}
