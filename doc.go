// Package glide is a real-time frame processing pipeline for live window
// capture: temporal frame interpolation, edge anti-aliasing, spatial
// upscaling and contrast-adaptive sharpening, executed as one batched
// pass per captured frame.
//
// The package is the processing core only. Capture providers push raw
// frames into an [Engine] via [Engine.SubmitFrame]; a caller-provided
// [Sink] receives exactly one finished image per processed frame; a
// settings collaborator supplies an immutable [PipelineConfig] snapshot
// per frame through a [ConfigSource]. Window management, settings UI and
// on-screen statistics display are external collaborators.
//
// # Architecture
//
//	capture provider -> ingest/convert -> interpolate -> anti-alias ->
//	    upscale -> sharpen -> presentation sink
//	                                  \-> statistics aggregator
//
// Stages are independently enabled through the sampled config; disabled
// or unavailable stages pass their input through unchanged. A counting
// permit (default capacity 3) bounds in-flight frames so a processing
// backlog, not submission rate, throttles intake; frames beyond capacity
// are dropped and counted.
//
// # Hardware scaling
//
// Spatial upscaling prefers a registered hardware scaler capability and
// falls back to a direct bilinear pass when none can serve:
//
//	import _ "github.com/gogpu/glide/gpu" // enable the wgpu scaler
//
// By default glide produces no log output; call [SetLogger] to enable
// structured logging.
package glide
