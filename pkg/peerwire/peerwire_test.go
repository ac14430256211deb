package peerwire

import (
	"bytes"
	"errors"
	"reflect"
	"testing"
)

func TestRenderedPartRoundTrip(t *testing.T) {
	var buf bytes.Buffer
	in := RenderedPart{X: 1, Y: 2, PixelW: 3, PixelH: 4, PNGBytes: []byte{0x89, 'P', 'N', 'G'}}
	if err := WriteRenderedPart(&buf, in); err != nil {
		t.Fatalf("WriteRenderedPart() error: %v", err)
	}

	frame, err := ReadFrame(&buf)
	if err != nil {
		t.Fatalf("ReadFrame() error: %v", err)
	}
	if frame.RenderedPart == nil {
		t.Fatal("expected RenderedPart frame")
	}
	if !reflect.DeepEqual(*frame.RenderedPart, in) {
		t.Fatalf("round trip mismatch: got %+v, want %+v", *frame.RenderedPart, in)
	}
}

func TestStealWorkRoundTrip(t *testing.T) {
	var buf bytes.Buffer
	if err := WriteStealWork(&buf, StealWork{NumJobs: 7}); err != nil {
		t.Fatalf("WriteStealWork() error: %v", err)
	}
	frame, err := ReadFrame(&buf)
	if err != nil {
		t.Fatalf("ReadFrame() error: %v", err)
	}
	if frame.StealWork == nil || frame.StealWork.NumJobs != 7 {
		t.Fatalf("got %+v, want NumJobs=7", frame.StealWork)
	}
}

func TestJobRoundTrip(t *testing.T) {
	var buf bytes.Buffer
	jobs := [][8]uint32{
		{48, 0, 48, 27, 96, 54, 2, 2},
		{0, 27, 48, 27, 96, 54, 2, 2},
	}
	if err := WriteJob(&buf, Job{Jobs: jobs}); err != nil {
		t.Fatalf("WriteJob() error: %v", err)
	}
	frame, err := ReadFrame(&buf)
	if err != nil {
		t.Fatalf("ReadFrame() error: %v", err)
	}
	if frame.Job == nil || len(frame.Job.Jobs) != 2 {
		t.Fatalf("got %+v, want 2 jobs", frame.Job)
	}
	if frame.Job.Jobs[0] != jobs[0] || frame.Job.Jobs[1] != jobs[1] {
		t.Fatalf("job contents mismatch: got %+v, want %+v", frame.Job.Jobs, jobs)
	}
}

func TestRenderControlRoundTrip(t *testing.T) {
	var buf bytes.Buffer
	if err := WriteRenderControl(&buf, RenderControl{NumNewJobs: 0}); err != nil {
		t.Fatalf("WriteRenderControl() error: %v", err)
	}
	frame, err := ReadFrame(&buf)
	if err != nil {
		t.Fatalf("ReadFrame() error: %v", err)
	}
	if frame.RenderControl == nil || frame.RenderControl.NumNewJobs != 0 {
		t.Fatalf("got %+v, want NumNewJobs=0", frame.RenderControl)
	}
}

func TestReadFrameUnknownHeaderIsProtocolError(t *testing.T) {
	buf := bytes.NewBuffer([]byte{99})
	_, err := ReadFrame(buf)
	var perr ErrProtocolError
	if !errors.As(err, &perr) {
		t.Fatalf("expected ErrProtocolError, got %v", err)
	}
	if perr.Header != 99 {
		t.Fatalf("perr.Header = %d, want 99", perr.Header)
	}
}
