package glide

import (
	"fmt"
	"sync"
	"time"

	"github.com/google/uuid"

	"github.com/gogpu/glide/image"
	"github.com/gogpu/glide/internal/stage"
)

// DefaultPermitWait is how long a capture callback may block waiting for
// an admission permit before the frame is dropped.
const DefaultPermitWait = 2 * time.Millisecond

// stopDrainTimeout bounds how long Stop waits for in-flight frames.
const stopDrainTimeout = 2 * time.Second

// Sink consumes one finished image per successfully processed frame and
// performs the final display submission. Present must not retain img
// after returning; the pipeline recycles it.
type Sink interface {
	Present(img *image.Image, captured time.Time) error
}

// SinkFunc adapts a function to the Sink interface.
type SinkFunc func(img *image.Image, captured time.Time) error

// Present calls f.
func (f SinkFunc) Present(img *image.Image, captured time.Time) error {
	return f(img, captured)
}

// Option configures an Engine during creation.
type Option func(*engineOptions)

type engineOptions struct {
	sink       Sink
	source     ConfigSource
	permits    int
	permitWait time.Duration
	poolCap    int
	now        func() time.Time
}

// WithSink sets the presentation sink. Required before Start.
func WithSink(s Sink) Option {
	return func(o *engineOptions) { o.sink = s }
}

// WithConfigSource sets the settings collaborator sampled once per frame.
// Defaults to a static DefaultConfig.
func WithConfigSource(src ConfigSource) Option {
	return func(o *engineOptions) { o.source = src }
}

// WithPermits sets the admission permit capacity (default 3).
func WithPermits(n int) Option {
	return func(o *engineOptions) { o.permits = n }
}

// WithPermitWait sets how long SubmitFrame may block waiting for a
// permit. Zero means drop immediately when at capacity.
func WithPermitWait(d time.Duration) Option {
	return func(o *engineOptions) { o.permitWait = d }
}

// WithPoolCap sets the maximum retired images per pool bucket.
func WithPoolCap(n int) Option {
	return func(o *engineOptions) { o.poolCap = n }
}

// WithClock overrides the engine's time source. Test seam.
func WithClock(now func() time.Time) Option {
	return func(o *engineOptions) { o.now = now }
}

// capturedFrame is one unit of intake from the capture provider.
type capturedFrame struct {
	raw      image.RawBuffer
	captured time.Time
}

// completion is the asynchronous per-frame completion signal delivered
// to the coordination goroutine.
type completion struct {
	job      *frameJob
	captured time.Time
	started  time.Time
}

// Engine is the frame processing core. One producer (the capture
// callback) feeds it through SubmitFrame; a single sequencing goroutine
// runs the batched stage pass per frame in arrival order; a single
// coordination goroutine presents results and updates statistics, so
// shared mutable state is never touched concurrently.
type Engine struct {
	opts  engineOptions
	stats *statsAggregator

	mu        sync.Mutex
	running   bool
	capturing bool
	session   uuid.UUID
	adm       *admission
	pipe      *pipeline
	frames    chan capturedFrame
	comps     chan completion
	lost      chan struct{}
	lostOnce  *sync.Once
	wg        sync.WaitGroup
}

// NewEngine creates an engine with the given options. The engine does
// not process frames until Start is called.
func NewEngine(opts ...Option) *Engine {
	o := engineOptions{
		permits:    DefaultPermits,
		permitWait: DefaultPermitWait,
		now:        time.Now,
	}
	for _, opt := range opts {
		opt(&o)
	}
	if o.source == nil {
		o.source = StaticSource(DefaultConfig())
	}

	return &Engine{
		opts:  o,
		stats: newStatsAggregator(o.now),
	}
}

// Start begins accepting captured frames. The hardware scaler capability
// is probed once per start; when it cannot serve, the bilinear fallback
// is latched until the next start or size change.
func (e *Engine) Start() error {
	e.mu.Lock()
	defer e.mu.Unlock()

	if e.opts.sink == nil {
		return ErrNoSink
	}
	if e.running {
		return nil
	}

	e.session = uuid.New()
	e.adm = newAdmission(e.opts.permits)
	e.pipe = newPipeline(image.NewPool(e.opts.poolCap), e.spatialScaler())
	e.frames = make(chan capturedFrame, e.adm.Capacity())
	e.comps = make(chan completion, e.adm.Capacity())

	// A window-lost channel handed out before Start stays live; only a
	// fired (or absent) one is replaced, so restart re-arms the signal
	// without orphaning early subscribers.
	rearm := e.lost == nil
	select {
	case <-e.lost:
		rearm = true
	default:
	}
	if rearm {
		e.lost = make(chan struct{})
		e.lostOnce = &sync.Once{}
	}
	e.running = true
	e.capturing = true

	e.wg.Add(2)
	go e.sequenceLoop(e.frames, e.comps)
	go e.coordinateLoop(e.comps)

	Logger().Info("capture session started",
		"session", e.session, "permits", e.adm.Capacity())
	return nil
}

// spatialScaler selects the scaler capability for this session: the
// registered hardware scaler when one probes healthy, otherwise the
// in-process kernel scaler.
func (e *Engine) spatialScaler() stage.SpatialScaler {
	if hw := Scaler(); hw != nil {
		if err := hw.Configure(2, 2, 4, 4, stage.ProcessLinear); err != nil {
			Logger().Warn("hardware scaler probe failed, using in-process scaler",
				"name", hw.Name(), "err", err)
		} else {
			Logger().Info("hardware scaler selected", "name", hw.Name())
			return hw
		}
	}
	return stage.NewDrawScaler()
}

// SubmitFrame is the capture-provider entry point. It blocks at most the
// configured permit wait; when the pipeline is at capacity the frame is
// dropped, counted in DroppedFrames, and ErrFrameDropped is returned.
//
// raw.Data must remain valid until the frame's processing completes.
// Frames are processed strictly in arrival order.
func (e *Engine) SubmitFrame(raw image.RawBuffer, captured time.Time) error {
	e.mu.Lock()
	if !e.capturing {
		e.mu.Unlock()
		return ErrNotCapturing
	}
	adm, frames := e.adm, e.frames
	e.mu.Unlock()

	if !adm.acquire(e.opts.permitWait) {
		e.stats.recordDrop()
		Logger().Debug("frame dropped at admission", "inFlight", adm.InFlight())
		return ErrFrameDropped
	}

	// Re-check under the lock so the intake channel cannot be closed
	// between the check and the send.
	e.mu.Lock()
	defer e.mu.Unlock()
	if !e.capturing {
		adm.release()
		return ErrNotCapturing
	}
	// The permit guarantees channel capacity; this send never blocks.
	frames <- capturedFrame{raw: raw, captured: captured}
	return nil
}

// sequenceLoop is the single sequencing goroutine: it runs the batched
// stage pass for each frame in arrival order and forwards the completion
// signal. It owns the pipeline's mutable state (pool, previous frame).
func (e *Engine) sequenceLoop(frames <-chan capturedFrame, comps chan<- completion) {
	defer e.wg.Done()
	defer close(comps)

	cfgSource := e.opts.source
	for f := range frames {
		started := e.opts.now()
		cfg := cfgSource.Snapshot()

		job, err := e.pipe.run(f.raw, cfg)
		if err != nil {
			// Resource errors drop the frame, never the session.
			Logger().Warn("frame dropped in pipeline", "err", err)
			e.stats.recordDrop()
			e.adm.release()
			continue
		}
		comps <- completion{job: job, captured: f.captured, started: started}
	}
}

// coordinateLoop is the single coordination goroutine: it serializes
// completion handling - presentation, statistics, permit release - so
// UI-visible state never races.
func (e *Engine) coordinateLoop(comps <-chan completion) {
	defer e.wg.Done()

	for c := range comps {
		e.mu.Lock()
		capturing := e.capturing
		sink := e.opts.sink
		e.mu.Unlock()

		if capturing {
			synthetic := 0
			if c.job.synthetic != nil {
				if err := sink.Present(c.job.synthetic, c.captured); err != nil {
					Logger().Warn("synthetic present failed", "err", err)
				} else {
					synthetic = 1
				}
			}
			if err := sink.Present(c.job.output, c.captured); err != nil {
				Logger().Warn("present failed", "err", err)
			}
			c.job.state = statePresented
			e.stats.recordCompletion(e.opts.now().Sub(c.started), synthetic)
		}
		// A stopped session discards output but still recycles and
		// releases, so Stop can drain deterministically.
		e.pipe.completeJob(c.job)
		c.job.state = stateIdle
		e.adm.release()
	}
}

// Stop stops capture. No pending frames are drained early: in-flight
// work completes, late completions observe the not-capturing flag and
// discard their output, and the shared pipeline state (image pool,
// previous-frame slot) is reset synchronously before Stop returns, so
// capture can be restarted cleanly.
func (e *Engine) Stop() {
	e.mu.Lock()
	if !e.running {
		e.mu.Unlock()
		return
	}
	e.capturing = false
	frames := e.frames
	e.mu.Unlock()

	close(frames)
	if !e.adm.drainWait(stopDrainTimeout) {
		Logger().Warn("stop timed out waiting for in-flight frames",
			"inFlight", e.adm.InFlight())
	}
	e.wg.Wait()

	e.mu.Lock()
	e.pipe.reset()
	e.running = false
	e.mu.Unlock()

	Logger().Info("capture session stopped", "session", e.session)
}

// NotifyWindowLost signals that the capture source became invalid. The
// engine resets exactly as for Stop and surfaces the condition through
// WindowLost; it does not reinitialize itself - restart is the external
// collaborator's responsibility.
func (e *Engine) NotifyWindowLost() {
	e.mu.Lock()
	lost, once, running := e.lost, e.lostOnce, e.running
	e.mu.Unlock()
	if !running {
		return
	}

	Logger().Warn("capture window lost", "session", e.session)
	e.Stop()
	once.Do(func() { close(lost) })
}

// WindowLost returns a channel closed when the capture source is lost.
// One-shot per session; a restart after the signal re-arms it with a
// fresh channel. A channel obtained before the first Start stays valid
// across Start.
func (e *Engine) WindowLost() <-chan struct{} {
	e.mu.Lock()
	defer e.mu.Unlock()
	if e.lost == nil {
		// Never started: return an open channel that never fires.
		e.lost = make(chan struct{})
		e.lostOnce = &sync.Once{}
	}
	return e.lost
}

// Capturing reports whether the engine is accepting frames.
func (e *Engine) Capturing() bool {
	e.mu.Lock()
	defer e.mu.Unlock()
	return e.capturing
}

// Session returns the current capture session identifier.
func (e *Engine) Session() uuid.UUID {
	e.mu.Lock()
	defer e.mu.Unlock()
	return e.session
}

// InFlight returns the number of frames currently holding a permit.
func (e *Engine) InFlight() int {
	e.mu.Lock()
	defer e.mu.Unlock()
	if e.adm == nil {
		return 0
	}
	return e.adm.InFlight()
}

// Stats returns the current statistics snapshot. Rates are smoothed over
// at least half a second; counters are cumulative.
func (e *Engine) Stats() EngineStats {
	return e.stats.snapshot()
}

// String describes the engine for diagnostics.
func (e *Engine) String() string {
	e.mu.Lock()
	defer e.mu.Unlock()
	return fmt.Sprintf("glide.Engine{session: %s, capturing: %t}", e.session, e.capturing)
}
