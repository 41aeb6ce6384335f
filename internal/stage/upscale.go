package stage

import (
	"errors"
	"fmt"
	"math"

	xdraw "golang.org/x/image/draw"

	"github.com/gogpu/glide/image"
)

// Upscaler errors.
var (
	// ErrScalerUnavailable is returned by a spatial scaler capability
	// that cannot serve on the current device. The upscaler falls back
	// to the bilinear path for the rest of the session.
	ErrScalerUnavailable = errors.New("stage: spatial scaler unavailable")

	// ErrInvalidScale is returned for scale factors outside [1, 10] or
	// zero target dimensions. The orchestrator keeps the last valid
	// configuration and passes the frame through.
	ErrInvalidScale = errors.New("stage: invalid scale configuration")
)

// Scale factor bounds.
const (
	MinScaleFactor = 1.0
	MaxScaleFactor = 10.0
)

// ProcessMode is the processing-mode enum set on a spatial scaler.
// Quality tiers map onto it.
type ProcessMode uint8

const (
	// ProcessLinear is plain linear filtering.
	ProcessLinear ProcessMode = iota

	// ProcessPerceptual applies perceptually weighted filtering.
	ProcessPerceptual

	// ProcessWideGamut filters with wide-gamut-safe weights.
	ProcessWideGamut
)

// String returns a human-readable name for the mode.
func (m ProcessMode) String() string {
	switch m {
	case ProcessLinear:
		return "linear"
	case ProcessPerceptual:
		return "perceptual"
	case ProcessWideGamut:
		return "wide-gamut"
	default:
		return "unknown"
	}
}

// SpatialScaler is the platform scaler capability. Implementations are
// selected at configuration time, not per call; the wgpu backend in
// glide/gpu provides one, and DrawScaler is the in-process default.
type SpatialScaler interface {
	// Configure prepares the scaler for an (input, output) size pair.
	// Requesting the same pair and mode as the last call is a no-op.
	// Returns ErrScalerUnavailable when the capability cannot serve.
	Configure(inW, inH, outW, outH int, mode ProcessMode) error

	// Encode resizes src into dst using the configured sizes.
	Encode(dst, src *image.Image) error

	// Close releases scaler resources.
	Close()
}

// Upscaler resizes an image to the target resolution. The hardware-spatial
// path delegates to a SpatialScaler capability; the fallback path is a
// direct bilinear resampling pass. Both paths honor the same size contract
// so downstream stages are path-agnostic.
type Upscaler struct {
	scaler SpatialScaler

	// Last accepted configuration; reconfiguration is idempotent.
	inW, inH   int
	outW, outH int
	mode       ProcessMode
	configured bool

	// Latched when the capability reports unavailable, until the next
	// explicit reconfigure.
	unavailable bool
}

// NewUpscaler creates an upscaler delegating hardware-spatial scaling to
// the given capability. A nil scaler means only the bilinear fallback
// path is available.
func NewUpscaler(scaler SpatialScaler) *Upscaler {
	return &Upscaler{scaler: scaler}
}

// Name returns the stage name.
func (*Upscaler) Name() string { return "upscale" }

// OutputSize returns the configured target dimensions, or the input
// dimensions when the upscaler has not been configured.
func (u *Upscaler) OutputSize(srcW, srcH int, _ *Constants) (int, int) {
	if !u.configured {
		return srcW, srcH
	}
	return u.outW, u.outH
}

// HardwareAvailable reports whether the spatial capability can currently
// serve. False before configuration or after an unavailable latch.
func (u *Upscaler) HardwareAvailable() bool {
	return u.scaler != nil && u.configured && !u.unavailable
}

// Configure sets the (input, output) size pair. Lazy and idempotent:
// requesting the pair already configured is a no-op. An unavailable
// capability is latched and cleared only by the next size change.
func (u *Upscaler) Configure(inW, inH int, scale float64, mode ProcessMode) error {
	if inW <= 0 || inH <= 0 {
		return fmt.Errorf("%w: input %dx%d", ErrInvalidScale, inW, inH)
	}
	if scale < MinScaleFactor || scale > MaxScaleFactor {
		return fmt.Errorf("%w: factor %g", ErrInvalidScale, scale)
	}

	outW := int(math.Round(float64(inW) * scale))
	outH := int(math.Round(float64(inH) * scale))
	if outW <= 0 || outH <= 0 {
		return fmt.Errorf("%w: target %dx%d", ErrInvalidScale, outW, outH)
	}

	if u.configured && inW == u.inW && inH == u.inH &&
		outW == u.outW && outH == u.outH && mode == u.mode {
		return nil
	}

	u.inW, u.inH = inW, inH
	u.outW, u.outH = outW, outH
	u.mode = mode
	u.configured = true
	u.unavailable = false

	if u.scaler != nil {
		if err := u.scaler.Configure(inW, inH, outW, outH, mode); err != nil {
			u.unavailable = true
			if errors.Is(err, ErrScalerUnavailable) {
				return err
			}
			return fmt.Errorf("%w: %v", ErrScalerUnavailable, err)
		}
	}
	return nil
}

// Process resizes src into dst. The hardware path is tried first when
// available; any failure falls back to the bilinear pass and latches the
// capability off for the session.
func (u *Upscaler) Process(dst, src, _ *image.Image, _ *Constants) error {
	if dst == nil || src == nil {
		return ErrNilImage
	}
	if !u.configured || src.Width() != u.inW || src.Height() != u.inH {
		return fmt.Errorf("%w: source %dx%d not configured", ErrInvalidScale, src.Width(), src.Height())
	}
	if dst.Width() != u.outW || dst.Height() != u.outH {
		return ErrSizeMismatch
	}

	if u.HardwareAvailable() {
		if err := u.scaler.Encode(dst, src); err != nil {
			u.unavailable = true
		} else {
			return nil
		}
	}
	return BilinearResize(dst, src)
}

// ProcessFallback resizes src into dst using only the bilinear pass,
// bypassing the hardware capability. Used when the configured mode
// explicitly requests the lightweight path.
func (u *Upscaler) ProcessFallback(dst, src *image.Image) error {
	if dst == nil || src == nil {
		return ErrNilImage
	}
	return BilinearResize(dst, src)
}

// Close releases the spatial capability.
func (u *Upscaler) Close() {
	if u.scaler != nil {
		u.scaler.Close()
	}
}

// BilinearResize is the direct resampling pass shared by the fallback
// path and render-scale adjustment. Identical dimensions degrade to a
// row copy, keeping unit-scale passes byte-identical.
func BilinearResize(dst, src *image.Image) error {
	if dst == nil || src == nil {
		return ErrNilImage
	}
	if dst.Width() == src.Width() && dst.Height() == src.Height() {
		return dst.CopyFrom(src)
	}

	w, h := dst.Bounds()
	fw, fh := float64(w), float64(h)
	for y := 0; y < h; y++ {
		v := (float64(y) + 0.5) / fh
		for x := 0; x < w; x++ {
			u := (float64(x) + 0.5) / fw
			r, g, b, a := image.SampleBilinear(src, u, v)
			_ = dst.SetRGBA(x, y, r, g, b, a)
		}
	}
	return nil
}

// DrawScaler is the in-process spatial scaler over golang.org/x/image
// resampling kernels. It serves as the always-available default when no
// hardware backend is registered. Quality mapping: linear uses the
// approximate bilinear kernel, perceptual the exact one, wide-gamut
// Catmull-Rom.
type DrawScaler struct {
	kernel     xdraw.Scaler
	inW, inH   int
	outW, outH int
	configured bool
}

// NewDrawScaler creates an unconfigured DrawScaler.
func NewDrawScaler() *DrawScaler { return &DrawScaler{} }

// Configure selects the resampling kernel for the size pair.
func (s *DrawScaler) Configure(inW, inH, outW, outH int, mode ProcessMode) error {
	if inW <= 0 || inH <= 0 || outW <= 0 || outH <= 0 {
		return fmt.Errorf("%w: %dx%d -> %dx%d", ErrInvalidScale, inW, inH, outW, outH)
	}

	switch mode {
	case ProcessLinear:
		s.kernel = xdraw.ApproxBiLinear
	case ProcessPerceptual:
		s.kernel = xdraw.BiLinear
	case ProcessWideGamut:
		s.kernel = xdraw.CatmullRom
	default:
		return fmt.Errorf("%w: mode %d", ErrScalerUnavailable, mode)
	}

	s.inW, s.inH = inW, inH
	s.outW, s.outH = outW, outH
	s.configured = true
	return nil
}

// Encode resizes src into dst with the configured kernel.
func (s *DrawScaler) Encode(dst, src *image.Image) error {
	if !s.configured {
		return ErrScalerUnavailable
	}
	if src.Width() != s.inW || src.Height() != s.inH ||
		dst.Width() != s.outW || dst.Height() != s.outH {
		return ErrSizeMismatch
	}

	srcStd := src.ToStdImage()
	dstStd := dst.ToStdImage()
	s.kernel.Scale(dstStd, dstStd.Bounds(), srcStd, srcStd.Bounds(), xdraw.Src, nil)

	// Non-RGBA8 destinations get a converted copy back.
	if dst.Format() != image.FormatRGBA8 || &dstStd.Pix[0] != &dst.Data()[0] {
		for y := 0; y < s.outH; y++ {
			for x := 0; x < s.outW; x++ {
				i := dstStd.PixOffset(x, y)
				_ = dst.SetRGBA(x, y, dstStd.Pix[i], dstStd.Pix[i+1], dstStd.Pix[i+2], dstStd.Pix[i+3])
			}
		}
	}
	return nil
}

// Close is a no-op for the in-process scaler.
func (*DrawScaler) Close() {}
