package glide

import "errors"

// Engine errors.
var (
	// ErrNotCapturing is returned by SubmitFrame when the engine is not
	// started. It is also observed internally by completion handlers so
	// late frames are discarded instead of presented.
	ErrNotCapturing = errors.New("glide: engine is not capturing")

	// ErrFrameDropped is returned by SubmitFrame when no admission
	// permit was available within the permit wait. The frame has been
	// counted in DroppedFrames; the caller should not retry it.
	ErrFrameDropped = errors.New("glide: frame dropped, pipeline at capacity")

	// ErrWindowLost indicates the capture source disappeared. The engine
	// resets and waits for the external collaborator to restart it.
	ErrWindowLost = errors.New("glide: capture window lost")

	// ErrInvalidConfig is returned when a pipeline config fails validation.
	ErrInvalidConfig = errors.New("glide: invalid pipeline config")

	// ErrNoSink is returned by Start when no presentation sink is set.
	ErrNoSink = errors.New("glide: no presentation sink configured")
)
