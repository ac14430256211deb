// Command raydist renders the fixed default scene locally and writes the
// result to out.png, configured entirely through environment variables per
// spec §6.
package main

import (
	"fmt"
	"image/png"
	"os"
	"strconv"
	"time"

	"github.com/nwillc/raydist/pkg/camera"
	"github.com/nwillc/raydist/pkg/fixedscene"
	"github.com/nwillc/raydist/pkg/job"
	"github.com/nwillc/raydist/pkg/pixel"
	"github.com/nwillc/raydist/pkg/rlog"
)

func envInt(name string, def int) int {
	v := os.Getenv(name)
	if v == "" {
		return def
	}
	n, err := strconv.Atoi(v)
	if err != nil || n <= 0 {
		return def
	}
	return n
}

func main() {
	log := rlog.New()

	numThreads := envInt("N_THREADS", 1)
	numSamples := envInt("N_SAMPLES", 9)
	sizeScalar := envInt("SIZE_SCALAR", 120)
	numRecursion := envInt("N_RECURSION", 50)

	width := 4 * sizeScalar
	height := 3 * sizeScalar

	log.Printf("rendering %dx%d at %d samples, %d recursion, %d threads\n",
		width, height, numSamples, numRecursion, numThreads)

	start := time.Now()
	sc := fixedscene.New()
	settings := job.RenderSettings{
		ResolutionW: uint32(width),
		ResolutionH: uint32(height),
		Samples:     uint32(numSamples),
		Recursion:   uint32(numRecursion),
	}

	plane, err := camera.RenderFrame(sc, width, height, settings, numThreads)
	if err != nil {
		log.Printf("render failed: %v\n", err)
		os.Exit(1)
	}
	log.Printf("render completed in %v\n", time.Since(start))

	if err := writePNG(plane, "out.png"); err != nil {
		log.Printf("failed to write out.png: %v\n", err)
		os.Exit(1)
	}
	fmt.Println("wrote out.png")
}

func writePNG(plane *pixel.Plane, path string) error {
	f, err := os.Create(path)
	if err != nil {
		return err
	}
	defer f.Close()
	return png.Encode(f, pixel.ToRGBA(plane))
}
