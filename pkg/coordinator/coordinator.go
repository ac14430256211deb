// Package coordinator dispatches render tasks to local and remote workers,
// tracks outstanding work against peers, and drives the progressive quality
// ladder, per spec §4.H.
package coordinator

import (
	"errors"
	"time"

	"github.com/nwillc/raydist/pkg/job"
	"github.com/nwillc/raydist/pkg/peerwire"
	"github.com/nwillc/raydist/pkg/rlog"
	"github.com/nwillc/raydist/pkg/steal"
	"github.com/nwillc/raydist/pkg/worker"
)

// ErrRenderInProgress is returned by EnqueueNewRender while a previous
// render still has outstanding jobs.
var ErrRenderInProgress = errors.New("coordinator: render already in progress")

// QualityPreset names the resolution, sample, and recursion settings for
// one rung of the progressive quality ladder.
type QualityPreset struct {
	ResolutionFactor float64
	Samples          uint32
	Recursion        uint32
	TileCount        int
}

// QualityLadder is the fixed preset table of spec §4.H. Level indices
// beyond the table's end reuse the final entry.
var QualityLadder = []QualityPreset{
	{ResolutionFactor: 0.25, Samples: 1, Recursion: 2, TileCount: 32},
	{ResolutionFactor: 0.5, Samples: 1, Recursion: 4, TileCount: 32},
	{ResolutionFactor: 1.0, Samples: 4, Recursion: 4, TileCount: 32},
	{ResolutionFactor: 1.0, Samples: 4, Recursion: 100, TileCount: 128},
	{ResolutionFactor: 1.0, Samples: 64, Recursion: 100, TileCount: 256},
	{ResolutionFactor: 1.0, Samples: 256, Recursion: 200, TileCount: 512},
	{ResolutionFactor: 1.0, Samples: 1024, Recursion: 512, TileCount: 1024},
}

// PresetForLevel returns the preset for quality_level, clamped to the
// ladder's last entry for any level beyond the table ("6+").
func PresetForLevel(level int) QualityPreset {
	if level < 0 {
		level = 0
	}
	if level >= len(QualityLadder) {
		level = len(QualityLadder) - 1
	}
	return QualityLadder[level]
}

// PeerBroadcaster is the narrow peer-fanout contract the coordinator needs;
// pkg/peertransport's connection pool satisfies it.
type PeerBroadcaster interface {
	BroadcastRenderControl(peerwire.RenderControl)
	BroadcastRenderedPart(peerwire.RenderedPart)
	PeerCount() int
}

// Coordinator owns the job pool, the worker set, and the progressive
// quality state machine for a single render surface.
type Coordinator struct {
	jobPool         []job.RenderTask
	workers         []worker.Worker
	outstandingJobs int
	oldImagesCount  int
	imagesStack     []RenderedImage
	qualityLevel    int
	manualSettings  bool

	steal    *steal.Proxy
	progress *Progress
	peers    PeerBroadcaster
	log      rlog.Logger
}

// RenderedImage is one accepted tile result, either rendered locally or
// relayed from a peer.
type RenderedImage struct {
	Rect job.Rect
	PNG  []byte
}

// New creates a coordinator over the given workers and peer broadcaster.
func New(workers []worker.Worker, peers PeerBroadcaster, log rlog.Logger) *Coordinator {
	return &Coordinator{
		workers:  workers,
		steal:    steal.New(),
		progress: NewProgress(),
		peers:    peers,
		log:      log,
	}
}

// Progress exposes the coordinator's 1:1-coupled progress tracker.
func (c *Coordinator) Progress() *Progress { return c.progress }

// QualityLevel reports the current rung of the progressive ladder.
func (c *Coordinator) QualityLevel() int { return c.qualityLevel }

// SetManualSettings marks that the user has overridden preset-driven
// settings; the quality level no longer auto-advances on completion.
func (c *Coordinator) SetManualSettings(manual bool) { c.manualSettings = manual }

// EnqueueNewRender starts a new render pass over tasks. It rejects the
// request outright if a previous pass is still outstanding.
func (c *Coordinator) EnqueueNewRender(tasks []job.RenderTask) error {
	if c.outstandingJobs > 0 {
		return ErrRenderInProgress
	}

	drop := c.oldImagesCount
	if drop > len(c.imagesStack) {
		drop = len(c.imagesStack)
	}
	c.imagesStack = c.imagesStack[drop:]
	c.oldImagesCount = len(c.imagesStack)

	c.outstandingJobs = len(tasks)
	c.jobPool = append(c.jobPool, tasks...)

	if c.peers != nil {
		c.peers.BroadcastRenderControl(peerwire.RenderControl{NumNewJobs: uint32(len(tasks))})
	}
	c.progress.Reset(c.outstandingJobs)
	return nil
}

// Tick runs one iteration of the dispatch loop: completed results are
// drained and routed, ready idle workers are handed a task from the pool,
// and the work-stealing proxy is polled when the pool has run dry.
func (c *Coordinator) Tick(now time.Time) {
	c.DrainResults()

	for _, w := range c.workers {
		if !w.Ready() {
			continue
		}
		if len(c.jobPool) == 0 {
			break
		}
		task := c.jobPool[len(c.jobPool)-1]
		c.jobPool = c.jobPool[:len(c.jobPool)-1]
		if err := w.AcceptTask(task); err != nil {
			c.jobPool = append(c.jobPool, task)
			continue
		}
	}

	if c.peers == nil {
		return
	}
	peerCount := c.peers.PeerCount()
	if c.steal.MaybeSteal(now, len(c.jobPool) == 0, peerCount, len(c.workers)) {
		c.log.Printf("coordinator: requesting work from %d peer(s)\n", peerCount)
	}
}

// DrainResults reads at most one pending result off each worker's Results
// channel without blocking, and routes it to OnWorkerInterrupted or
// OnWorkerResult depending on whether the worker was flagged interrupted
// while that task was in flight.
func (c *Coordinator) DrainResults() {
	for _, w := range c.workers {
		select {
		case res := <-w.Results():
			if w.Interrupted() {
				c.OnWorkerInterrupted(w)
			} else {
				c.OnWorkerResult(w, res)
			}
		default:
		}
	}
}

// OnWorkerResult processes a completed task from w. It does not check the
// interrupted flag; DrainResults routes results of interrupted workers to
// OnWorkerInterrupted instead.
func (c *Coordinator) OnWorkerResult(w worker.Worker, res worker.Result) {
	task, elapsed, ok := w.ClearTask()
	if !ok {
		return
	}

	if res.Err != nil {
		c.jobPool = append(c.jobPool, task)
		return
	}

	img := RenderedImage{Rect: task.Rect, PNG: res.ImageData}
	c.imagesStack = append(c.imagesStack, img)
	c.progress.MadeDomestic(elapsed)
	c.outstandingJobs--

	if c.peers != nil {
		c.peers.BroadcastRenderedPart(peerwire.RenderedPart{
			X:        uint32(task.Rect.X),
			Y:        uint32(task.Rect.Y),
			PixelW:   uint32(task.Rect.W),
			PixelH:   uint32(task.Rect.H),
			PNGBytes: res.ImageData,
		})
	}

	c.maybeAdvanceQuality()
}

// OnWorkerInterrupted handles a completion whose worker had been flagged
// interrupted: the result is dropped without touching outstanding counts.
func (c *Coordinator) OnWorkerInterrupted(w worker.Worker) {
	w.ClearTask()
}

// OnPeerRenderedPart records a tile completed remotely.
func (c *Coordinator) OnPeerRenderedPart(part peerwire.RenderedPart) {
	img := RenderedImage{
		Rect: job.Rect{X: int(part.X), Y: int(part.Y), W: int(part.PixelW), H: int(part.PixelH)},
		PNG:  part.PNGBytes,
	}
	c.imagesStack = append(c.imagesStack, img)
	c.progress.MadeForeign()
	c.outstandingJobs--
	c.maybeAdvanceQuality()
}

// OnPeerRenderControl absorbs a peer's announcement of newly enqueued (or,
// at zero, cancelled) jobs.
func (c *Coordinator) OnPeerRenderControl(ctrl peerwire.RenderControl) {
	c.outstandingJobs += int(ctrl.NumNewJobs)
	c.progress.Reset(c.outstandingJobs)
}

// OnJobFrameReceived clears the steal proxy's in-flight flag; wire this to
// every incoming peerwire.Job frame regardless of which request it answers.
func (c *Coordinator) OnJobFrameReceived() { c.steal.OnJobFrameReceived() }

// OnPeerConnected clears the steal proxy's in-flight flag as a coarse
// heuristic that a newly arrived peer may carry spare work.
func (c *Coordinator) OnPeerConnected() { c.steal.OnPeerConnected() }

// maybeAdvanceQuality bumps the quality level by one once the current pass
// has fully drained, unless the user has taken manual control of settings.
func (c *Coordinator) maybeAdvanceQuality() {
	if c.outstandingJobs != 0 {
		return
	}
	if !c.manualSettings {
		c.qualityLevel++
	}
}

// Stop cancels the in-flight render pass: the pool is cleared, every busy
// worker is flagged interrupted, images beyond the retained baseline are
// dropped, outstanding work resets to zero, the quality level regresses by
// one rung, and peers are told the pass produced zero new jobs.
func (c *Coordinator) Stop() {
	c.jobPool = nil
	for _, w := range c.workers {
		w.Interrupt()
	}
	if c.oldImagesCount < len(c.imagesStack) {
		c.imagesStack = c.imagesStack[:c.oldImagesCount]
	}
	c.outstandingJobs = 0
	c.qualityLevel--
	if c.qualityLevel < 0 {
		c.qualityLevel = 0
	}
	if c.peers != nil {
		c.peers.BroadcastRenderControl(peerwire.RenderControl{NumNewJobs: 0})
	}
}
