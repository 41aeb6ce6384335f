package glide

import (
	"sync"
	"time"
)

// statsWindow is the minimum smoothing window for the rolling rates.
// Snapshots between recomputations return the previous smoothed values,
// avoiding noisy instantaneous readings.
const statsWindow = 500 * time.Millisecond

// EngineStats is the pull-based statistics snapshot exposed to external
// display sinks (HUD, logging). Rates are smoothed over at least
// statsWindow; counters are cumulative for the engine lifetime.
type EngineStats struct {
	// FPS is the rate of raw captured frames completing the pipeline.
	FPS float64

	// InterpolatedFPS is the output rate including synthetic frames.
	InterpolatedFPS float64

	// ProcessingTimeMs is the mean per-frame processing latency over
	// the last window, in milliseconds.
	ProcessingTimeMs float64

	// FrameCount is the total number of raw frames processed.
	FrameCount uint64

	// InterpolatedFrameCount is the total number of synthetically
	// inserted frames. Raw frames processed while interpolation is
	// enabled do not count here.
	InterpolatedFrameCount uint64

	// DroppedFrames is the total number of frames rejected by admission
	// or failed ingest.
	DroppedFrames uint64
}

// statsAggregator derives FPS, latency and frame counters from completion
// timestamps. recordCompletion and recordDrop are called only from the
// engine's coordination goroutine; Snapshot may be called from any
// goroutine.
type statsAggregator struct {
	mu sync.Mutex

	framesProcessed    uint64
	framesInterpolated uint64
	framesDropped      uint64

	// Current accumulation window.
	windowStart     time.Time
	windowFrames    int
	windowSynthetic int
	windowProcTime  time.Duration

	// Last completed window's smoothed values.
	fps          float64
	interpFPS    float64
	processingMs float64

	now func() time.Time
}

func newStatsAggregator(now func() time.Time) *statsAggregator {
	if now == nil {
		now = time.Now
	}
	return &statsAggregator{now: now}
}

// recordCompletion folds one completed frame into the counters.
// synthetic counts the interpolated frames inserted alongside it.
func (s *statsAggregator) recordCompletion(procTime time.Duration, synthetic int) {
	s.mu.Lock()
	defer s.mu.Unlock()

	s.framesProcessed++
	s.framesInterpolated += uint64(synthetic)

	t := s.now()
	if s.windowStart.IsZero() {
		s.windowStart = t
	}
	s.windowFrames++
	s.windowSynthetic += synthetic
	s.windowProcTime += procTime

	if elapsed := t.Sub(s.windowStart); elapsed >= statsWindow {
		secs := elapsed.Seconds()
		s.fps = float64(s.windowFrames) / secs
		s.interpFPS = float64(s.windowFrames+s.windowSynthetic) / secs
		s.processingMs = s.windowProcTime.Seconds() * 1000 / float64(s.windowFrames)

		s.windowStart = t
		s.windowFrames = 0
		s.windowSynthetic = 0
		s.windowProcTime = 0
	}
}

// recordDrop counts a frame rejected by admission or failed ingest.
func (s *statsAggregator) recordDrop() {
	s.mu.Lock()
	s.framesDropped++
	s.mu.Unlock()
}

// snapshot returns the current statistics.
func (s *statsAggregator) snapshot() EngineStats {
	s.mu.Lock()
	defer s.mu.Unlock()
	return EngineStats{
		FPS:                    s.fps,
		InterpolatedFPS:        s.interpFPS,
		ProcessingTimeMs:       s.processingMs,
		FrameCount:             s.framesProcessed,
		InterpolatedFrameCount: s.framesInterpolated,
		DroppedFrames:          s.framesDropped,
	}
}
