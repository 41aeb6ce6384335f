package glide

import (
	"errors"
	"math"

	"github.com/gogpu/glide/image"
	"github.com/gogpu/glide/internal/stage"
)

// frameState tracks a frame's progress through the pipeline state machine:
//
//	Idle -> Ingesting -> (Interpolating?) -> (AntiAliasing?) ->
//	    (Upscaling?) -> (Sharpening?) -> Ready -> Presented -> Idle
//
// Optional stages are skipped when disabled in the sampled config, when
// their kernel is unavailable, or when their precondition is unmet.
type frameState uint8

const (
	stateIdle frameState = iota
	stateIngesting
	stateInterpolating
	stateAntiAliasing
	stateUpscaling
	stateSharpening
	stateReady
	statePresented
)

// String returns the state name used in logs.
func (s frameState) String() string {
	switch s {
	case stateIdle:
		return "idle"
	case stateIngesting:
		return "ingesting"
	case stateInterpolating:
		return "interpolating"
	case stateAntiAliasing:
		return "antialiasing"
	case stateUpscaling:
		return "upscaling"
	case stateSharpening:
		return "sharpening"
	case stateReady:
		return "ready"
	case statePresented:
		return "presented"
	default:
		return "unknown"
	}
}

// frameJob is the result of one batched pipeline pass, handed to the
// coordination goroutine for presentation and recycling.
type frameJob struct {
	// state tracks this frame's progress through the state machine. The
	// job moves between goroutines over a channel, so only the current
	// owner touches it.
	state frameState
	// synthetic is the interpolated frame inserted before output, or nil.
	synthetic *image.Image

	// output is the display-ready image for the raw frame.
	output *image.Image

	// retired holds every pool-acquired intermediate of the pass,
	// released once presentation completes.
	retired []*image.Image
}

// pipeline sequences the enabled stages for each frame, wires their
// inputs and outputs, and owns the previous-frame slot and the image
// pool. All methods run on the engine's single sequencing goroutine;
// nothing here is safe for concurrent use.
type pipeline struct {
	pool *image.Pool

	interp  *stage.Interpolator
	aa      *stage.FastEdgeAA
	sharp   *stage.Sharpener
	upscale *stage.Upscaler

	// prev is the sole cross-frame object: the previous working-resolution
	// frame, replaced atomically at the end of each pass.
	prev *image.Image

	// lastValid is retained so an invalid snapshot degrades to the last
	// good configuration instead of failing the frame.
	lastValid PipelineConfig
	haveValid bool
}

// newPipeline wires the stage kernels around the given pool and spatial
// scaler capability.
func newPipeline(pool *image.Pool, scaler stage.SpatialScaler) *pipeline {
	return &pipeline{
		pool:    pool,
		interp:  &stage.Interpolator{},
		aa:      &stage.FastEdgeAA{},
		sharp:   &stage.Sharpener{},
		upscale: stage.NewUpscaler(scaler),
	}
}

// sampleConfig validates the snapshot, falling back to the last valid
// configuration on error.
func (p *pipeline) sampleConfig(cfg PipelineConfig) PipelineConfig {
	if err := cfg.Validate(); err != nil {
		Logger().Warn("invalid pipeline config, keeping last valid", "err", err)
		if p.haveValid {
			return p.lastValid
		}
		return DefaultConfig()
	}
	p.lastValid = cfg
	p.haveValid = true
	return cfg
}

// run executes one batched pipeline pass: ingest, the enabled stages for
// the (optional) synthetic frame and the current frame, and the
// previous-frame slot update. Errors mean the frame must be counted as
// dropped; they are never fatal.
func (p *pipeline) run(raw image.RawBuffer, cfg PipelineConfig) (*frameJob, error) {
	job := &frameJob{state: stateIngesting}
	cur, err := image.Ingest(p.pool, raw)
	if err != nil {
		return nil, err
	}

	cfg = p.sampleConfig(cfg)
	consts := cfg.constants()
	if cur.Pooled() {
		job.retired = append(job.retired, cur)
	}

	// Render-scale adjustment: processing runs at a fraction of the
	// native capture resolution.
	working := cur
	workW := scaleDim(cur.Width(), cfg.RenderScale)
	workH := scaleDim(cur.Height(), cfg.RenderScale)
	if workW != cur.Width() || workH != cur.Height() {
		scaled, err := p.pool.Acquire(workW, workH, image.FormatRGBA8, image.UsageDefault)
		if err != nil {
			return nil, err
		}
		job.retired = append(job.retired, scaled)
		if err := stage.BilinearResize(scaled, cur); err != nil {
			return nil, err
		}
		working = scaled
	}

	// Temporal interpolation: requires a previous frame of matching
	// size; the first frame of a session passes through unmodified.
	var synthetic *image.Image
	if cfg.Interpolate && p.prev != nil &&
		p.prev.Width() == workW && p.prev.Height() == workH {
		job.state = stateInterpolating
		dst, err := p.pool.Acquire(workW, workH, image.FormatRGBA8, image.UsageDefault)
		if err == nil {
			job.retired = append(job.retired, dst)
			if err := p.interp.Process(dst, working, p.prev, &consts); err != nil {
				Logger().Warn("interpolation skipped", "err", err)
			} else {
				synthetic = dst
			}
		}
	}

	// Remaining stages apply to the synthetic frame first, then the
	// current frame, so both reach the sink with identical treatment.
	if synthetic != nil {
		job.synthetic = p.finish(job, synthetic, cfg, &consts, workW, workH)
	}
	job.output = p.finish(job, working, cfg, &consts, workW, workH)

	// Previous-frame slot update: the single serialization point for
	// temporal state. The slot owns its pixels, so the capture buffer
	// can be recycled once this frame completes.
	if err := p.retainPrevious(working, workW, workH); err != nil {
		Logger().Warn("previous-frame retention failed", "err", err)
	}

	job.state = stateReady
	return job, nil
}

// finish runs the non-temporal stages (AA, upscale, sharpen) over one
// image, honoring skip semantics. The returned image is the stage-chain
// head; every intermediate is recorded in job.retired.
func (p *pipeline) finish(job *frameJob, img *image.Image, cfg PipelineConfig, consts *stage.Constants, workW, workH int) *image.Image {
	out := img

	// Anti-aliasing. Declared-but-unimplemented modes degrade to
	// pass-through.
	if cfg.AA != AAOff {
		if !cfg.AA.Available() {
			Logger().Debug("aa mode unavailable, passing through", "mode", cfg.AA)
		} else {
			job.state = stateAntiAliasing
			if dst, err := p.pool.Acquire(workW, workH, image.FormatRGBA8, image.UsageDefault); err == nil {
				job.retired = append(job.retired, dst)
				if err := p.aa.Process(dst, out, nil, consts); err != nil {
					Logger().Warn("aa skipped", "err", err)
				} else {
					out = dst
				}
			}
		}
	}

	// Spatial upscale. A unit target is a pass-through; configuration
	// errors keep the last valid scaler state and skip the stage.
	if cfg.Upscale != UpscaleOff {
		targetW := scaleDim(workW, cfg.ScaleFactor)
		targetH := scaleDim(workH, cfg.ScaleFactor)
		if targetW != workW || targetH != workH {
			job.state = stateUpscaling
			out = p.runUpscale(job, out, cfg, consts, workW, workH, targetW, targetH)
		}
	}

	// Sharpening. Intensity below epsilon skips the stage entirely.
	if cfg.SharpenIntensity >= stage.SharpenEpsilon {
		job.state = stateSharpening
		if dst, err := p.pool.Acquire(out.Width(), out.Height(), image.FormatRGBA8, image.UsageDefault); err == nil {
			job.retired = append(job.retired, dst)
			if err := p.sharp.Process(dst, out, nil, consts); err != nil {
				Logger().Warn("sharpen skipped", "err", err)
			} else {
				out = dst
			}
		}
	}

	return out
}

// runUpscale executes the configured upscale path, falling back to
// pass-through on configuration failure.
func (p *pipeline) runUpscale(job *frameJob, src *image.Image, cfg PipelineConfig, consts *stage.Constants, workW, workH, targetW, targetH int) *image.Image {
	if err := p.upscale.Configure(workW, workH, cfg.ScaleFactor, cfg.Quality.processMode()); err != nil {
		if !errors.Is(err, stage.ErrScalerUnavailable) {
			Logger().Warn("upscale configuration rejected, passing through", "err", err)
			return src
		}
		// Capability-unavailable: the bilinear fallback still serves.
		Logger().Debug("hardware scaler unavailable, bilinear fallback", "err", err)
	}

	dst, err := p.pool.Acquire(targetW, targetH, image.FormatRGBA8, image.UsageDefault|image.UsagePresentable)
	if err != nil {
		return src
	}
	job.retired = append(job.retired, dst)

	if cfg.Upscale == UpscaleBilinear {
		err = p.upscale.ProcessFallback(dst, src)
	} else {
		err = p.upscale.Process(dst, src, nil, consts)
	}
	if err != nil {
		Logger().Warn("upscale skipped", "err", err)
		return src
	}
	return dst
}

// retainPrevious copies the working frame into the previous-frame slot.
func (p *pipeline) retainPrevious(working *image.Image, w, h int) error {
	next, err := p.pool.Acquire(w, h, image.FormatRGBA8, image.UsageDefault)
	if err != nil {
		return err
	}
	if err := next.CopyFrom(working); err != nil {
		p.pool.Release(next)
		return err
	}
	if p.prev != nil {
		p.pool.Release(p.prev)
	}
	p.prev = next
	return nil
}

// completeJob recycles a presented (or discarded) job's intermediates.
// Runs on the coordination goroutine; Pool is safe for that.
func (p *pipeline) completeJob(job *frameJob) {
	for _, img := range job.retired {
		p.pool.Release(img)
	}
	job.retired = nil
}

// reset drops the previous-frame slot and all cached images. Called
// synchronously after a stop request or a window-lost signal, before
// capture can be restarted.
func (p *pipeline) reset() {
	if p.prev != nil {
		p.pool.Release(p.prev)
		p.prev = nil
	}
	p.pool.Drain()
	p.haveValid = false
}

// scaleDim scales a dimension, clamping to at least one pixel.
func scaleDim(v int, factor float64) int {
	out := int(math.Round(float64(v) * factor))
	if out < 1 {
		return 1
	}
	return out
}
