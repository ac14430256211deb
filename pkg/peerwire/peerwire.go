// Package peerwire implements the big-endian length-prefixed binary framing
// used between coordinator peers, per spec §4.I.
package peerwire

import (
	"encoding/binary"
	"fmt"
	"io"
)

// Header byte values identifying each frame kind.
const (
	HeaderRenderedPart  byte = 1
	HeaderStealWork     byte = 2
	HeaderJob           byte = 3
	HeaderRenderControl byte = 4
)

// ErrProtocolError is returned for an unrecognized header byte. Callers
// should drop the frame and log a warning rather than close the channel.
type ErrProtocolError struct {
	Header byte
}

func (e ErrProtocolError) Error() string {
	return fmt.Sprintf("peerwire: unknown frame header %d", e.Header)
}

// RenderedPart carries a completed tile's PNG-encoded pixels and its
// placement in the target image.
type RenderedPart struct {
	X, Y, PixelW, PixelH uint32
	PNGBytes             []byte
}

// StealWork requests jobs from whichever peer receives it.
type StealWork struct {
	NumJobs uint32
}

// Job carries a batch of canonical 8-tuple render jobs, encoded with
// pkg/job's ToInts representation.
type Job struct {
	Jobs [][8]uint32
}

// RenderControl announces that num_new_jobs jobs have been added to (or, at
// zero, that a render pass has been cancelled on) the sender's job pool.
type RenderControl struct {
	NumNewJobs uint32
}

// Frame is the decoded union of all peer-protocol messages. Exactly one
// field is non-nil.
type Frame struct {
	RenderedPart  *RenderedPart
	StealWork     *StealWork
	Job           *Job
	RenderControl *RenderControl
}

func writeU32(w io.Writer, v uint32) error {
	var buf [4]byte
	binary.BigEndian.PutUint32(buf[:], v)
	_, err := w.Write(buf[:])
	return err
}

func readU32(r io.Reader) (uint32, error) {
	var buf [4]byte
	if _, err := io.ReadFull(r, buf[:]); err != nil {
		return 0, err
	}
	return binary.BigEndian.Uint32(buf[:]), nil
}

// WriteRenderedPart encodes and writes a RenderedPart frame.
func WriteRenderedPart(w io.Writer, p RenderedPart) error {
	if _, err := w.Write([]byte{HeaderRenderedPart}); err != nil {
		return err
	}
	for _, v := range [5]uint32{p.X, p.Y, p.PixelW, p.PixelH, uint32(len(p.PNGBytes))} {
		if err := writeU32(w, v); err != nil {
			return err
		}
	}
	_, err := w.Write(p.PNGBytes)
	return err
}

// WriteStealWork encodes and writes a StealWork frame.
func WriteStealWork(w io.Writer, s StealWork) error {
	if _, err := w.Write([]byte{HeaderStealWork}); err != nil {
		return err
	}
	return writeU32(w, s.NumJobs)
}

// WriteJob encodes and writes a Job frame.
func WriteJob(w io.Writer, j Job) error {
	if _, err := w.Write([]byte{HeaderJob}); err != nil {
		return err
	}
	if err := writeU32(w, uint32(len(j.Jobs))); err != nil {
		return err
	}
	for _, ints := range j.Jobs {
		for _, v := range ints {
			if err := writeU32(w, v); err != nil {
				return err
			}
		}
	}
	return nil
}

// WriteRenderControl encodes and writes a RenderControl frame.
func WriteRenderControl(w io.Writer, c RenderControl) error {
	if _, err := w.Write([]byte{HeaderRenderControl}); err != nil {
		return err
	}
	return writeU32(w, c.NumNewJobs)
}

// ReadFrame reads one frame header and body from r. On ErrProtocolError the
// caller should log a warning and keep reading subsequent frames; the
// stream itself is left positioned after the unknown header byte, which may
// desynchronize framing for headers that don't carry a self-describing
// length — callers that see ErrProtocolError repeatedly should close the
// connection rather than loop forever.
func ReadFrame(r io.Reader) (Frame, error) {
	var header [1]byte
	if _, err := io.ReadFull(r, header[:]); err != nil {
		return Frame{}, err
	}

	switch header[0] {
	case HeaderRenderedPart:
		var vals [5]uint32
		for i := range vals {
			v, err := readU32(r)
			if err != nil {
				return Frame{}, err
			}
			vals[i] = v
		}
		body := make([]byte, vals[4])
		if _, err := io.ReadFull(r, body); err != nil {
			return Frame{}, err
		}
		return Frame{RenderedPart: &RenderedPart{X: vals[0], Y: vals[1], PixelW: vals[2], PixelH: vals[3], PNGBytes: body}}, nil

	case HeaderStealWork:
		n, err := readU32(r)
		if err != nil {
			return Frame{}, err
		}
		return Frame{StealWork: &StealWork{NumJobs: n}}, nil

	case HeaderJob:
		n, err := readU32(r)
		if err != nil {
			return Frame{}, err
		}
		jobs := make([][8]uint32, n)
		for i := range jobs {
			for k := 0; k < 8; k++ {
				v, err := readU32(r)
				if err != nil {
					return Frame{}, err
				}
				jobs[i][k] = v
			}
		}
		return Frame{Job: &Job{Jobs: jobs}}, nil

	case HeaderRenderControl:
		n, err := readU32(r)
		if err != nil {
			return Frame{}, err
		}
		return Frame{RenderControl: &RenderControl{NumNewJobs: n}}, nil

	default:
		return Frame{}, ErrProtocolError{Header: header[0]}
	}
}
