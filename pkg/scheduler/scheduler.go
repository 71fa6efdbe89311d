// Package scheduler implements the cooperative task loop that drives
// playback: a single goroutine owning one FIFO queue fed by three trigger
// sources: a periodic prefetch timer, a frame-cadence update/render timer,
// and chunk-fetch completions.
//
// The loop executes exactly one task per iteration and yields between tasks.
// Store I/O never runs on the loop: prefetch tasks only start fetch
// goroutines, whose results come back through the queue as admit tasks. A
// slow store therefore delays chunk admission, never a frame. Because every
// cache and object mutation happens on the loop goroutine in strict dequeue
// order, the data model needs no locks.
package scheduler

import (
	"context"
	"fmt"
	"log/slog"
	"runtime"
	"sort"
	"strings"
	"time"

	"github.com/karu-dev/chunkplay/pkg/playback"
	"github.com/karu-dev/chunkplay/pkg/scene"
)

// Renderer is the drawing surface collaborator. It is a pure consumer: one
// Begin/Draw.../Status/End cycle per rendered frame.
type Renderer interface {
	Begin()
	Draw(x, y, size float64, color string)
	Status(line string)
	End()
	Size() (w, h int)
}

// Input is the polled pointer collaborator. Buttons are indexed 0, 1, 2.
type Input interface {
	Pointer() (x, y float64)
	Pressed(button int) bool
}

// Metrics receives scheduler instrumentation. Implementations must be cheap;
// every hook runs on the loop goroutine.
type Metrics interface {
	RecordPrefetch(seconds float64)
	RecordFrame(seconds float64)
	RecordAdmit(objectID string, found bool)
	RecordStoreError(objectID string)
	RecordEviction(objectID string)
	RecordLookupMiss(objectID string)
}

type nopMetrics struct{}

func (nopMetrics) RecordPrefetch(float64) {}
func (nopMetrics) RecordFrame(float64) {}
func (nopMetrics) RecordAdmit(string, bool) {}
func (nopMetrics) RecordStoreError(string) {}
func (nopMetrics) RecordEviction(string) {}
func (nopMetrics) RecordLookupMiss(string) {}

type taskKind int

const (
	taskPrefetch taskKind = iota
	taskUpdateRender
	taskAdmit
)

// task is one queue entry. Tasks are transient: created by a trigger,
// destroyed once executed.
type task struct {
	kind  taskKind
	delta float64 // milliseconds, update tasks only
	fetch playback.FetchResult
}

// Options configures the scheduler's cadences.
type Options struct {
	// PrefetchInterval is the fixed period of the prefetch trigger.
	PrefetchInterval time.Duration
	// FrameInterval is the display refresh period.
	FrameInterval time.Duration
	// Yield is slept between tasks on top of the goroutine yield. Zero is
	// valid and keeps the loop as tight as the runtime allows.
	Yield time.Duration
}

// Scheduler owns the task queue and every per-object cache behind it.
type Scheduler struct {
	objects  []*scene.Object
	byID     map[string]*scene.Object
	results  <-chan playback.FetchResult
	renderer Renderer
	input    Input
	metrics  Metrics
	logger   *slog.Logger
	opts     Options

	queue []task
}

// New creates a scheduler over the registry's objects. results must be the
// same channel the objects' caches deliver fetch completions on.
func New(reg *scene.Registry, results <-chan playback.FetchResult, renderer Renderer, input Input, m Metrics, logger *slog.Logger, opts Options) (*Scheduler, error) {
	if renderer == nil || input == nil {
		return nil, fmt.Errorf("renderer and input collaborators required")
	}
	if opts.PrefetchInterval <= 0 {
		return nil, fmt.Errorf("prefetch interval must be positive, got %v", opts.PrefetchInterval)
	}
	if opts.FrameInterval <= 0 {
		return nil, fmt.Errorf("frame interval must be positive, got %v", opts.FrameInterval)
	}
	if m == nil {
		m = nopMetrics{}
	}
	if logger == nil {
		logger = slog.Default()
	}

	objects := reg.Objects()
	byID := make(map[string]*scene.Object, len(objects))
	for _, o := range objects {
		byID[o.ID()] = o
	}

	return &Scheduler{
		objects:  objects,
		byID:     byID,
		results:  results,
		renderer: renderer,
		input:    input,
		metrics:  m,
		logger:   logger,
		opts:     opts,
	}, nil
}

// EnqueuePrefetch appends one prefetch task.
func (s *Scheduler) EnqueuePrefetch() {
	s.queue = append(s.queue, task{kind: taskPrefetch})
}

// EnqueueUpdate appends one update/render task carrying the frame delta in
// milliseconds.
func (s *Scheduler) EnqueueUpdate(deltaMillis float64) {
	s.queue = append(s.queue, task{kind: taskUpdateRender, delta: deltaMillis})
}

// EnqueueAdmit appends one chunk-admission task for a completed fetch.
func (s *Scheduler) EnqueueAdmit(res playback.FetchResult) {
	s.queue = append(s.queue, task{kind: taskAdmit, fetch: res})
}

// QueueLen returns the number of pending tasks.
func (s *Scheduler) QueueLen() int { return len(s.queue) }

// Step dequeues and executes exactly one task. It reports whether a task ran.
func (s *Scheduler) Step(ctx context.Context) bool {
	if len(s.queue) == 0 {
		return false
	}
	t := s.queue[0]
	s.queue = s.queue[1:]

	switch t.kind {
	case taskPrefetch:
		s.runPrefetch(ctx)
	case taskUpdateRender:
		s.runUpdateRender(t.delta)
	case taskAdmit:
		s.runAdmit(t.fetch)
	}
	return true
}

// Run drains the queue until the context is canceled. The trigger paths only
// measure time and enqueue; all work happens through Step.
func (s *Scheduler) Run(ctx context.Context) error {
	s.logger.Info("starting scheduler",
		"objects", len(s.objects),
		"prefetch_interval", s.opts.PrefetchInterval,
		"frame_interval", s.opts.FrameInterval,
	)

	prefetch := time.NewTicker(s.opts.PrefetchInterval)
	defer prefetch.Stop()
	frame := time.NewTicker(s.opts.FrameInterval)
	defer frame.Stop()

	lastFrame := time.Now()

	// Seed the first prefetch so objects do not render a blank first window
	// while the ticker warms up.
	s.EnqueuePrefetch()

	for {
		// Pull every ready trigger without blocking, so enqueue order
		// follows trigger order.
		for drained := false; !drained; {
			select {
			case <-ctx.Done():
				s.logger.Info("scheduler stopped")
				return ctx.Err()
			case <-prefetch.C:
				s.EnqueuePrefetch()
			case now := <-frame.C:
				s.EnqueueUpdate(float64(now.Sub(lastFrame).Microseconds()) / 1000.0)
				lastFrame = now
			case res := <-s.results:
				s.EnqueueAdmit(res)
			default:
				drained = true
			}
		}

		if len(s.queue) == 0 {
			// Idle: block until the next trigger fires.
			select {
			case <-ctx.Done():
				s.logger.Info("scheduler stopped")
				return ctx.Err()
			case <-prefetch.C:
				s.EnqueuePrefetch()
			case now := <-frame.C:
				s.EnqueueUpdate(float64(now.Sub(lastFrame).Microseconds()) / 1000.0)
				lastFrame = now
			case res := <-s.results:
				s.EnqueueAdmit(res)
			}
			continue
		}

		s.Step(ctx)
		s.yield()
	}
}

// yield hands control back to the runtime between tasks so no task starves
// the trigger channels.
func (s *Scheduler) yield() {
	runtime.Gosched()
	if s.opts.Yield > 0 {
		time.Sleep(s.opts.Yield)
	}
}

// runPrefetch asks every object's cache to have the current and next chunk
// resident. One object's failure never aborts the others; fetch errors
// surface later through admit tasks.
func (s *Scheduler) runPrefetch(ctx context.Context) {
	start := time.Now()
	for _, obj := range s.objects {
		obj.Prefetch(ctx)
	}
	s.metrics.RecordPrefetch(time.Since(start).Seconds())
}

// runUpdateRender advances and draws the scene, or, while a pointer button
// is held, freezes playback and reports which objects the pointer hits.
func (s *Scheduler) runUpdateRender(deltaMillis float64) {
	start := time.Now()

	if s.anyPressed() {
		s.renderHits()
	} else {
		s.advanceAndRender(deltaMillis)
	}

	s.metrics.RecordFrame(time.Since(start).Seconds())
}

func (s *Scheduler) anyPressed() bool {
	return s.input.Pressed(0) || s.input.Pressed(1) || s.input.Pressed(2)
}

func (s *Scheduler) advanceAndRender(deltaMillis float64) {
	for _, obj := range s.objects {
		if !obj.Advance(deltaMillis) {
			s.metrics.RecordLookupMiss(obj.ID())
		}
	}

	s.renderer.Begin()
	for _, obj := range s.objects {
		pos := obj.Position()
		s.renderer.Draw(pos.X, pos.Y, obj.Size(), obj.Color())
	}
	s.renderer.Status("hits: none")
	s.renderer.End()
}

// renderHits draws the frozen scene and reports the indices of objects under
// the pointer. Playback time does not advance for this tick.
func (s *Scheduler) renderHits() {
	px, py := s.input.Pointer()

	var hits []int
	for _, obj := range s.objects {
		if obj.Hit(px, py) {
			hits = append(hits, obj.Index())
		}
	}
	sort.Ints(hits)

	s.renderer.Begin()
	for _, obj := range s.objects {
		pos := obj.Position()
		s.renderer.Draw(pos.X, pos.Y, obj.Size(), obj.Color())
	}
	s.renderer.Status("hits: " + formatHits(hits))
	s.renderer.End()
}

func formatHits(hits []int) string {
	if len(hits) == 0 {
		return "none"
	}
	parts := make([]string, len(hits))
	for i, h := range hits {
		parts[i] = fmt.Sprintf("%d", h)
	}
	return strings.Join(parts, ", ")
}

// runAdmit routes a fetch completion to the owning object's cache.
func (s *Scheduler) runAdmit(res playback.FetchResult) {
	obj, ok := s.byID[res.ObjectID]
	if !ok {
		s.logger.Warn("fetch result for unknown object", "object", res.ObjectID)
		return
	}

	if res.Err != nil {
		s.metrics.RecordStoreError(res.ObjectID)
	} else {
		s.metrics.RecordAdmit(res.ObjectID, res.Found)
	}

	for range obj.Admit(res) {
		s.metrics.RecordEviction(res.ObjectID)
	}
}
