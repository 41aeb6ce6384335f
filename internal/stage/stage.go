// Package stage implements the image-processing kernels of the glide
// pipeline: temporal interpolation, edge anti-aliasing, spatial upscaling
// and contrast-adaptive sharpening.
//
// Kernels are stateless over pixel data: each consumes one or two input
// images and a constants block and writes one output image. Inputs are
// never mutated in place; the orchestrator supplies a distinct,
// pool-acquired destination for every stage.
package stage

import (
	"errors"

	"github.com/gogpu/glide/image"
)

// Kernel errors shared by all stages.
var (
	// ErrNilImage is returned when a required input or output image is nil.
	ErrNilImage = errors.New("stage: nil image")

	// ErrSizeMismatch is returned when an output image does not match the
	// size contract of the stage.
	ErrSizeMismatch = errors.New("stage: image size mismatch")

	// ErrMissingPrevious is returned by temporal stages invoked without a
	// previous frame. The orchestrator treats this as a pass-through.
	ErrMissingPrevious = errors.New("stage: no previous frame")
)

// Constants is the per-frame constants block handed to every kernel.
// It is an immutable snapshot derived from the sampled pipeline config;
// kernels read it and never retain it across frames.
type Constants struct {
	// BlendT is the temporal interpolation position in (0,1).
	BlendT float64

	// MotionBlockSize is the block-matching block edge in pixels.
	MotionBlockSize int

	// MotionSearchRadius is the block-matching search radius in pixels.
	MotionSearchRadius int

	// MotionEnabled selects motion-compensated interpolation when a
	// motion field can be estimated.
	MotionEnabled bool

	// EdgeThreshold is the 3x3 luminance range below which a pixel is
	// left untouched by anti-aliasing, in [0,1].
	EdgeThreshold float64

	// SubpixelLimit caps the anti-aliasing blend weight, in [0,1].
	SubpixelLimit float64

	// SharpenIntensity is the user sharpening intensity in [0,1].
	SharpenIntensity float64
}

// Kernel is the stage capability: one pass over pixel data consuming a
// source image (plus an optional temporal neighbor) and producing dst.
//
// dst and src must be distinct. aux carries the previous frame for
// temporal kernels and is nil otherwise.
type Kernel interface {
	// Name returns the stage name used in logs.
	Name() string

	// OutputSize returns the output dimensions for a given input size.
	// Identity for all kernels except the upscaler.
	OutputSize(srcW, srcH int, c *Constants) (int, int)

	// Process runs the kernel. dst must have the dimensions reported by
	// OutputSize for src's dimensions.
	Process(dst, src, aux *image.Image, c *Constants) error
}

// checkSameSize validates the common non-resizing kernel contract.
func checkSameSize(dst, src *image.Image) error {
	if dst == nil || src == nil {
		return ErrNilImage
	}
	if dst.Width() != src.Width() || dst.Height() != src.Height() {
		return ErrSizeMismatch
	}
	return nil
}
