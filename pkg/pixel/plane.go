// Package pixel implements the output pixel plane and its partitioning into
// horizontal shards for distributed tile assembly.
package pixel

import (
	"errors"
	"fmt"
	"image"
	"image/color"
	"math"
)

// ErrTooManyShards is returned by Split when n exceeds the plane height.
var ErrTooManyShards = errors.New("pixel: cannot split into more shards than rows")

// Pixel is a single RGB sample, gamma-corrected to 8 bits per channel.
type Pixel struct {
	R, G, B uint8
}

// FromLinear converts a linear [0,1] color component to a gamma-corrected
// byte via u8 = clamp(255.999 * sqrt(f), 0, 255).
func FromLinear(f float64) uint8 {
	v := 255.999 * math.Sqrt(math.Max(f, 0))
	if v < 0 {
		v = 0
	}
	if v > 255 {
		v = 255
	}
	return uint8(v)
}

// NewPixel builds a Pixel from linear RGB components.
func NewPixel(r, g, b float64) Pixel {
	return Pixel{R: FromLinear(r), G: FromLinear(g), B: FromLinear(b)}
}

// Sink is anything that accepts pixels at local (x, y) coordinates. Plane
// and Shard both satisfy it, so a tile renderer can write into either a
// whole-frame buffer or one shard of one.
type Sink interface {
	SetPixel(x, y int, px Pixel) error
}

// Plane is a row-major, top-left-origin pixel buffer of size W x H.
type Plane struct {
	W, H   int
	Pixels []Pixel
}

// NewPlane allocates a zeroed plane of the given dimensions.
func NewPlane(w, h int) *Plane {
	return &Plane{W: w, H: h, Pixels: make([]Pixel, w*h)}
}

// SetPixel writes a pixel at (x, y) in plane-local coordinates.
func (p *Plane) SetPixel(x, y int, px Pixel) error {
	if x < 0 || x >= p.W || y < 0 || y >= p.H {
		return fmt.Errorf("pixel: (%d,%d) out of bounds for %dx%d plane", x, y, p.W, p.H)
	}
	p.Pixels[y*p.W+x] = px
	return nil
}

// At reads the pixel at (x, y) in plane-local coordinates.
func (p *Plane) At(x, y int) Pixel {
	return p.Pixels[y*p.W+x]
}

// Shard is a contiguous horizontal band of a Plane, starting at (0, Y) and
// spanning W x H pixels of its own local buffer.
type Shard struct {
	X, Y   int
	W, H   int
	Pixels []Pixel
}

// NewShard allocates a zeroed shard at row origin y with the given width and
// height.
func NewShard(y, w, h int) *Shard {
	return &Shard{X: 0, Y: y, W: w, H: h, Pixels: make([]Pixel, w*h)}
}

// SetPixel writes a pixel at (x, y) in shard-local coordinates, bounded by
// the shard's own extents.
func (s *Shard) SetPixel(x, y int, px Pixel) error {
	if x < 0 || x >= s.W || y < 0 || y >= s.H {
		return fmt.Errorf("pixel: (%d,%d) out of bounds for %dx%d shard", x, y, s.W, s.H)
	}
	s.Pixels[y*s.W+x] = px
	return nil
}

// At reads the pixel at (x, y) in shard-local coordinates.
func (s *Shard) At(x, y int) Pixel {
	return s.Pixels[y*s.W+x]
}

// Split partitions a Plane into n shards of equal band height, the last
// shard absorbing any remainder rows. Fails its precondition if n exceeds
// the plane's height.
func Split(p *Plane, n int) ([]*Shard, error) {
	if n <= 0 {
		return nil, fmt.Errorf("pixel: n must be positive, got %d", n)
	}
	if n > p.H {
		return nil, ErrTooManyShards
	}

	base := p.H / n
	remainder := p.H % n

	shards := make([]*Shard, 0, n)
	y := 0
	for i := 0; i < n; i++ {
		h := base
		if i == n-1 {
			h += remainder
		}
		shard := NewShard(y, p.W, h)
		for sy := 0; sy < h; sy++ {
			for sx := 0; sx < p.W; sx++ {
				shard.Pixels[sy*p.W+sx] = p.At(sx, y+sy)
			}
		}
		shards = append(shards, shard)
		y += h
	}
	return shards, nil
}

// ToRGBA renders a Plane into a standard library image, opaque throughout,
// suitable for image/png.Encode.
func ToRGBA(p *Plane) *image.RGBA {
	img := image.NewRGBA(image.Rect(0, 0, p.W, p.H))
	for y := 0; y < p.H; y++ {
		for x := 0; x < p.W; x++ {
			px := p.At(x, y)
			img.SetRGBA(x, y, color.RGBA{R: px.R, G: px.G, B: px.B, A: 255})
		}
	}
	return img
}

// Collect reassembles shards into a single Plane, copying shards back in
// reverse slice order (descending Y for Split's output); each shard is
// written at its own Y origin, restoring top-down layout.
func Collect(shards []*Shard) *Plane {
	if len(shards) == 0 {
		return NewPlane(0, 0)
	}

	w := shards[0].W
	totalH := 0
	for _, s := range shards {
		totalH += s.H
	}

	plane := NewPlane(w, totalH)

	ordered := make([]*Shard, len(shards))
	copy(ordered, shards)
	for i, j := 0, len(ordered)-1; i < j; i, j = i+1, j-1 {
		ordered[i], ordered[j] = ordered[j], ordered[i]
	}
	// ordered is now the input reversed (descending by Y when the input is
	// ascending, as Split returns it); each shard lands at its own Y offset,
	// so placement is top-down regardless of the input slice's ordering.
	for _, s := range ordered {
		for sy := 0; sy < s.H; sy++ {
			for sx := 0; sx < s.W; sx++ {
				plane.Pixels[(s.Y+sy)*w+sx] = s.At(sx, sy)
			}
		}
	}
	return plane
}
