package glide

import (
	"fmt"

	"github.com/gogpu/glide/internal/stage"
)

// AAMode selects the anti-aliasing algorithm.
type AAMode uint8

const (
	// AAOff disables anti-aliasing.
	AAOff AAMode = iota

	// AAFastEdge is the luminance-contrast edge detector. Always available.
	AAFastEdge

	// AAMorphological is a declared capability slot with no kernel in
	// this core. Selecting it yields a pass-through.
	AAMorphological

	// AAMultisample is a declared hardware-multisample capability slot.
	AAMultisample

	// AATemporal is a declared temporal-AA capability slot.
	AATemporal

	aaModeCount
)

// String returns the config name of the mode.
func (m AAMode) String() string {
	switch m {
	case AAOff:
		return "off"
	case AAFastEdge:
		return "fast-edge"
	case AAMorphological:
		return "morphological"
	case AAMultisample:
		return "multisample"
	case AATemporal:
		return "temporal"
	default:
		return "unknown"
	}
}

// Available reports whether a kernel exists for the mode in this core.
// Unavailable modes degrade to pass-through.
func (m AAMode) Available() bool {
	return m == AAOff || m == AAFastEdge
}

// UpscaleMode selects the spatial upscaling path.
type UpscaleMode uint8

const (
	// UpscaleOff disables upscaling; output keeps the working resolution.
	UpscaleOff UpscaleMode = iota

	// UpscaleSpatial delegates to the hardware scaler capability,
	// falling back to bilinear when none can serve.
	UpscaleSpatial

	// UpscaleBilinear explicitly requests the lightweight bilinear path.
	UpscaleBilinear

	upscaleModeCount
)

// String returns the config name of the mode.
func (m UpscaleMode) String() string {
	switch m {
	case UpscaleOff:
		return "off"
	case UpscaleSpatial:
		return "spatial"
	case UpscaleBilinear:
		return "bilinear"
	default:
		return "unknown"
	}
}

// QualityTier maps to the processing mode set on the spatial scaler.
type QualityTier uint8

const (
	// QualityLinear is plain linear filtering.
	QualityLinear QualityTier = iota

	// QualityPerceptual applies perceptually weighted filtering.
	QualityPerceptual

	// QualityWideGamut filters with wide-gamut-safe weights.
	QualityWideGamut

	qualityTierCount
)

// String returns the config name of the tier.
func (q QualityTier) String() string {
	switch q {
	case QualityLinear:
		return "linear"
	case QualityPerceptual:
		return "perceptual"
	case QualityWideGamut:
		return "wide-gamut"
	default:
		return "unknown"
	}
}

// processMode converts the tier into the scaler processing-mode enum.
func (q QualityTier) processMode() stage.ProcessMode {
	switch q {
	case QualityPerceptual:
		return stage.ProcessPerceptual
	case QualityWideGamut:
		return stage.ProcessWideGamut
	default:
		return stage.ProcessLinear
	}
}

// PipelineConfig is the immutable-per-frame settings snapshot sampled by
// the pipeline at the start of each frame. Concurrent updates through a
// ConfigSource never retroactively affect an in-flight frame.
type PipelineConfig struct {
	// Interpolate enables temporal frame interpolation.
	Interpolate bool `yaml:"interpolate"`

	// BlendFactor is the interpolation position t in (0,1).
	BlendFactor float64 `yaml:"blend_factor"`

	// MotionCompensation selects the block-matching motion estimate;
	// when false the simple per-pixel blend is used.
	MotionCompensation bool `yaml:"motion_compensation"`

	// MotionBlockSize is the block-matching block edge in pixels.
	// Zero applies the default.
	MotionBlockSize int `yaml:"motion_block_size"`

	// MotionSearchRadius is the block-matching search radius in pixels.
	// Zero applies the default.
	MotionSearchRadius int `yaml:"motion_search_radius"`

	// AA selects the anti-aliasing mode.
	AA AAMode `yaml:"aa"`

	// EdgeThreshold is the AA luminance-contrast activation threshold
	// in [0,1]. Zero applies the default.
	EdgeThreshold float64 `yaml:"edge_threshold"`

	// SubpixelLimit caps the AA blend weight in [0,1]. Zero applies
	// the default.
	SubpixelLimit float64 `yaml:"subpixel_limit"`

	// Upscale selects the spatial upscaling path.
	Upscale UpscaleMode `yaml:"upscale"`

	// ScaleFactor is the upscale factor in [1, 10].
	ScaleFactor float64 `yaml:"scale_factor"`

	// Quality is the scaler quality tier.
	Quality QualityTier `yaml:"quality"`

	// SharpenIntensity is the sharpening intensity in [0,1]; below a
	// small epsilon the stage is skipped entirely.
	SharpenIntensity float64 `yaml:"sharpen_intensity"`

	// RenderScale is the fraction of the native capture resolution at
	// which processing runs, in (0,1].
	RenderScale float64 `yaml:"render_scale"`
}

// DefaultConfig returns the baseline configuration: interpolation off,
// fast-edge AA, spatial upscale at 1.0x, no sharpening, full render scale.
func DefaultConfig() PipelineConfig {
	return PipelineConfig{
		BlendFactor: 0.5,
		AA:          AAFastEdge,
		Upscale:     UpscaleSpatial,
		ScaleFactor: 1.0,
		Quality:     QualityPerceptual,
		RenderScale: 1.0,
	}
}

// Validate reports whether the config is usable. The pipeline validates
// the sampled snapshot each frame and keeps the last valid configuration
// when a field is out of range.
func (c PipelineConfig) Validate() error {
	if c.BlendFactor < 0 || c.BlendFactor > 1 {
		return fmt.Errorf("%w: blend factor %g outside (0,1)", ErrInvalidConfig, c.BlendFactor)
	}
	if c.AA >= aaModeCount {
		return fmt.Errorf("%w: aa mode %d", ErrInvalidConfig, c.AA)
	}
	if c.Upscale >= upscaleModeCount {
		return fmt.Errorf("%w: upscale mode %d", ErrInvalidConfig, c.Upscale)
	}
	if c.Quality >= qualityTierCount {
		return fmt.Errorf("%w: quality tier %d", ErrInvalidConfig, c.Quality)
	}
	if c.Upscale != UpscaleOff &&
		(c.ScaleFactor < stage.MinScaleFactor || c.ScaleFactor > stage.MaxScaleFactor) {
		return fmt.Errorf("%w: scale factor %g outside [%g,%g]",
			ErrInvalidConfig, c.ScaleFactor, stage.MinScaleFactor, stage.MaxScaleFactor)
	}
	if c.SharpenIntensity < 0 || c.SharpenIntensity > 1 {
		return fmt.Errorf("%w: sharpen intensity %g", ErrInvalidConfig, c.SharpenIntensity)
	}
	if c.RenderScale <= 0 || c.RenderScale > 1 {
		return fmt.Errorf("%w: render scale %g outside (0,1]", ErrInvalidConfig, c.RenderScale)
	}
	return nil
}

// constants derives the per-frame kernel constants block.
func (c PipelineConfig) constants() stage.Constants {
	return stage.Constants{
		BlendT:             c.BlendFactor,
		MotionBlockSize:    c.MotionBlockSize,
		MotionSearchRadius: c.MotionSearchRadius,
		MotionEnabled:      c.MotionCompensation,
		EdgeThreshold:      c.EdgeThreshold,
		SubpixelLimit:      c.SubpixelLimit,
		SharpenIntensity:   c.SharpenIntensity,
	}
}

// ConfigSource supplies the per-frame settings snapshot. Implementations
// must return a complete value on every call; the pipeline samples it
// once per frame so there are no torn reads across fields.
type ConfigSource interface {
	Snapshot() PipelineConfig
}

// StaticSource is a ConfigSource returning a fixed configuration.
type StaticSource PipelineConfig

// Snapshot returns the fixed configuration.
func (s StaticSource) Snapshot() PipelineConfig { return PipelineConfig(s) }
