// Package worker implements the uniform worker contract of spec §4.G over
// three backends: a local goroutine, a remote HTTP tile server, and a
// "Fermyon" HTTP variant.
package worker

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"image/png"
	"io"
	"math/rand"
	"net/http"
	"strings"
	"time"

	"github.com/nwillc/raydist/pkg/camera"
	"github.com/nwillc/raydist/pkg/job"
	"github.com/nwillc/raydist/pkg/pixel"
	"github.com/nwillc/raydist/pkg/rlog"
	"github.com/nwillc/raydist/pkg/scene"
)

// ErrTaskInFlight is returned by AcceptTask when the worker already has a
// task in progress.
var ErrTaskInFlight = errors.New("worker: task already in flight")

// ErrWorkerFailure wraps a backend failure (non-2xx response, timeout, or
// transport error) that should mark the worker not-ready.
type ErrWorkerFailure struct {
	Cause error
}

func (e ErrWorkerFailure) Error() string { return fmt.Sprintf("worker: failure: %v", e.Cause) }
func (e ErrWorkerFailure) Unwrap() error { return e.Cause }

// Result is delivered to the coordinator once a submitted task completes.
type Result struct {
	WorkerID  string
	ImageData []byte
	Err       error
}

// Worker is the uniform contract over all three backend kinds.
type Worker interface {
	ID() string
	Ready() bool
	AcceptTask(task job.RenderTask) error
	ClearTask() (job.RenderTask, time.Duration, bool)
	Interrupt()
	Interrupted() bool
	Results() <-chan Result
}

// baseWorker holds the state common to every backend: readiness, the
// in-flight task and its start time, and the interrupted flag.
type baseWorker struct {
	id          string
	ready       bool
	current     *job.RenderTask
	startTime   time.Time
	interrupted bool
	results     chan Result
}

func (b *baseWorker) ID() string { return b.id }
func (b *baseWorker) Ready() bool { return b.ready }

func (b *baseWorker) beginTask(task job.RenderTask) error {
	if b.current != nil {
		return ErrTaskInFlight
	}
	t := task
	b.current = &t
	b.startTime = time.Now()
	return nil
}

func (b *baseWorker) ClearTask() (job.RenderTask, time.Duration, bool) {
	if b.current == nil {
		return job.RenderTask{}, 0, false
	}
	elapsed := time.Since(b.startTime)
	task := *b.current
	b.current = nil
	b.interrupted = false
	return task, elapsed, true
}

func (b *baseWorker) Interrupt() {
	if b.current != nil {
		b.interrupted = true
	}
}

// Interrupted reports whether the in-flight task (or the task whose result
// has not yet been cleared) was cancelled via Interrupt. It resets to false
// the next time ClearTask runs, so it reflects only the most recent task.
func (b *baseWorker) Interrupted() bool { return b.interrupted }

func (b *baseWorker) Results() <-chan Result { return b.results }

// LocalWorker converts each accepted task to its 8-tuple job and renders it
// on a new goroutine directly against an in-process scene.
type LocalWorker struct {
	baseWorker
	scene       *scene.Scene
	screenW     uint32
	screenH     uint32
	rng         *rand.Rand
	log         rlog.Logger
}

// NewLocalWorker creates a local in-process worker. It becomes ready
// immediately — there is no handshake for an in-process backend.
func NewLocalWorker(id string, sc *scene.Scene, screenW, screenH uint32, log rlog.Logger) *LocalWorker {
	return &LocalWorker{
		baseWorker: baseWorker{id: id, ready: true, results: make(chan Result, 1)},
		scene:      sc,
		screenW:    screenW,
		screenH:    screenH,
		rng:        rand.New(rand.NewSource(time.Now().UnixNano())),
		log:        log,
	}
}

// AcceptTask renders the task on a new goroutine and delivers the resulting
// PNG bytes on Results(); it returns without waiting for the render.
func (w *LocalWorker) AcceptTask(task job.RenderTask) error {
	if err := w.beginTask(task); err != nil {
		return err
	}
	go func() {
		j := task.ToJob(w.screenW, w.screenH)
		plane := pixel.NewPlane(int(j.W), int(j.H))
		if err := camera.RenderTile(w.scene, j, plane, w.rng); err != nil {
			w.results <- Result{WorkerID: w.id, Err: ErrWorkerFailure{Cause: err}}
			return
		}
		data, err := encodePNG(plane)
		if err != nil {
			w.results <- Result{WorkerID: w.id, Err: ErrWorkerFailure{Cause: err}}
			return
		}
		w.results <- Result{WorkerID: w.id, ImageData: data}
	}()
	return nil
}

// RemoteWorker submits jobs to an HTTP tile-rendering server, per spec
// §4.G and §6. Per spec §9 Open Question 4, GETs are bounded by a
// conservative 60s client timeout rather than left unbounded.
type RemoteWorker struct {
	baseWorker
	baseURL string
	screenW uint32
	screenH uint32
	client  *http.Client
	log     rlog.Logger
}

// NewRemoteWorker creates a remote HTTP worker. The caller should call
// Probe before relying on Ready().
func NewRemoteWorker(id, baseURL string, screenW, screenH uint32, log rlog.Logger) *RemoteWorker {
	return &RemoteWorker{
		baseWorker: baseWorker{id: id, results: make(chan Result, 1)},
		baseURL:    strings.TrimRight(baseURL, "/"),
		screenW:    screenW,
		screenH:    screenH,
		client:     &http.Client{Timeout: 60 * time.Second},
		log:        log,
	}
}

// Probe issues a GET {base}/ping and marks the worker ready iff the
// response body is exactly "pong".
func (w *RemoteWorker) Probe(ctx context.Context) error {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, w.baseURL+"/ping", nil)
	if err != nil {
		return err
	}
	resp, err := w.client.Do(req)
	if err != nil {
		return ErrWorkerFailure{Cause: err}
	}
	defer resp.Body.Close()
	body, _ := io.ReadAll(resp.Body)
	if resp.StatusCode != http.StatusOK || string(body) != "pong" {
		return ErrWorkerFailure{Cause: fmt.Errorf("unexpected ping response: %d %q", resp.StatusCode, body)}
	}
	w.ready = true
	return nil
}

// AcceptTask issues the tile GET on a new goroutine and delivers the PNG
// body (or a WorkerFailure) on Results().
func (w *RemoteWorker) AcceptTask(task job.RenderTask) error {
	if err := w.beginTask(task); err != nil {
		return err
	}
	go func() {
		j := task.ToJob(w.screenW, w.screenH)
		url := w.baseURL + "/" + j.ToText('/')

		req, err := http.NewRequest(http.MethodGet, url, nil)
		if err != nil {
			w.fail(ErrWorkerFailure{Cause: err})
			return
		}
		resp, err := w.client.Do(req)
		if err != nil {
			w.fail(ErrWorkerFailure{Cause: err})
			return
		}
		defer resp.Body.Close()
		if resp.StatusCode/100 != 2 {
			w.fail(ErrWorkerFailure{Cause: fmt.Errorf("worker responded %d", resp.StatusCode)})
			return
		}
		data, err := io.ReadAll(resp.Body)
		if err != nil {
			w.fail(ErrWorkerFailure{Cause: err})
			return
		}
		w.results <- Result{WorkerID: w.id, ImageData: data}
	}()
	return nil
}

func (w *RemoteWorker) fail(err error) {
	w.ready = false
	w.results <- Result{WorkerID: w.id, Err: err}
}

// FermyonWorker is identical to RemoteWorker. Neither this package nor the
// coordinator limits how many FermyonWorkers are configured at once.
type FermyonWorker struct {
	*RemoteWorker
}

// NewFermyonWorker creates a Fermyon-backed remote worker.
func NewFermyonWorker(id, baseURL string, screenW, screenH uint32, log rlog.Logger) *FermyonWorker {
	return &FermyonWorker{RemoteWorker: NewRemoteWorker(id, baseURL, screenW, screenH, log)}
}

func encodePNG(plane *pixel.Plane) ([]byte, error) {
	img := pixel.ToRGBA(plane)
	var buf bytes.Buffer
	if err := png.Encode(&buf, img); err != nil {
		return nil, err
	}
	return buf.Bytes(), nil
}
