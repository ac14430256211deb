// Package job implements the canonical RenderJob wire tuple, its text and
// integer-slice codecs, and the screen-space RenderTask/divider that maps
// render settings onto one or more RenderJobs.
package job

import (
	"fmt"
	"strconv"
	"strings"
)

// RenderJob is the canonical 8-tuple wire form of a tile request.
type RenderJob struct {
	X, Y                 uint32
	W, H                 uint32
	CameraW, CameraH     uint32
	NSamples, NRecursion uint32
}

// ErrIncorrectLength is returned by FromInts when given a slice whose
// length is not exactly 8.
type ErrIncorrectLength struct {
	Expected, Actual int
}

func (e ErrIncorrectLength) Error() string {
	return fmt.Sprintf("job: expected %d integers, got %d", e.Expected, e.Actual)
}

// ErrInvalidInt is returned when a text component cannot be parsed as an
// unsigned integer.
type ErrInvalidInt struct {
	Value string
}

func (e ErrInvalidInt) Error() string {
	return fmt.Sprintf("job: invalid integer %q", e.Value)
}

// ErrInvariantViolation is returned by Validate when a RenderJob fails one
// of the structural invariants of §3.
type ErrInvariantViolation struct {
	Reason string
}

func (e ErrInvariantViolation) Error() string {
	return fmt.Sprintf("job: invariant violated: %s", e.Reason)
}

// Validate checks the RenderJob invariants: x+w<=camera_w, y+h<=camera_h,
// w>=1, h>=1, n_samples>=1, n_recursion>=1.
func (j RenderJob) Validate() error {
	switch {
	case j.W < 1:
		return ErrInvariantViolation{"w must be >= 1"}
	case j.H < 1:
		return ErrInvariantViolation{"h must be >= 1"}
	case j.NSamples < 1:
		return ErrInvariantViolation{"n_samples must be >= 1"}
	case j.NRecursion < 1:
		return ErrInvariantViolation{"n_recursion must be >= 1"}
	case j.X+j.W > j.CameraW:
		return ErrInvariantViolation{"x+w must be <= camera_w"}
	case j.Y+j.H > j.CameraH:
		return ErrInvariantViolation{"y+h must be <= camera_h"}
	}
	return nil
}

// ToInts returns the canonical 8-element integer array form.
func (j RenderJob) ToInts() [8]uint32 {
	return [8]uint32{j.X, j.Y, j.W, j.H, j.CameraW, j.CameraH, j.NSamples, j.NRecursion}
}

// FromInts constructs a RenderJob from a slice of exactly 8 integers.
func FromInts(ints []uint32) (RenderJob, error) {
	if len(ints) != 8 {
		return RenderJob{}, ErrIncorrectLength{Expected: 8, Actual: len(ints)}
	}
	return RenderJob{
		X: ints[0], Y: ints[1], W: ints[2], H: ints[3],
		CameraW: ints[4], CameraH: ints[5],
		NSamples: ints[6], NRecursion: ints[7],
	}, nil
}

// ToText serializes the job as sep-separated decimal fields, e.g.
// "48/0/48/27/96/54/2/2" for sep='/'.
func (j RenderJob) ToText(sep byte) string {
	ints := j.ToInts()
	parts := make([]string, 8)
	for i, v := range ints {
		parts[i] = strconv.FormatUint(uint64(v), 10)
	}
	return strings.Join(parts, string(sep))
}

// FromText parses a sep-separated job. The slash form ('/') discards empty
// fragments (so a leading or trailing separator is tolerated); the comma
// form (',') is strict and treats any empty fragment as invalid.
func FromText(s string, sep byte) (RenderJob, error) {
	rawParts := strings.Split(s, string(sep))

	var parts []string
	if sep == '/' {
		for _, p := range rawParts {
			if p != "" {
				parts = append(parts, p)
			}
		}
	} else {
		parts = rawParts
	}

	if len(parts) != 8 {
		return RenderJob{}, ErrIncorrectLength{Expected: 8, Actual: len(parts)}
	}

	ints := make([]uint32, 8)
	for i, p := range parts {
		if p == "" {
			return RenderJob{}, ErrInvalidInt{Value: p}
		}
		v, err := strconv.ParseUint(p, 10, 32)
		if err != nil {
			return RenderJob{}, ErrInvalidInt{Value: p}
		}
		ints[i] = uint32(v)
	}
	return FromInts(ints)
}
