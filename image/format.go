// Package image provides the GPU-resident image buffers, pixel formats and
// the buffer pool used by the glide frame pipeline.
package image

import "github.com/gogpu/gputypes"

// Format represents a pixel storage format.
type Format uint8

const (
	// FormatGray8 is 8-bit grayscale (1 byte per pixel).
	FormatGray8 Format = iota

	// FormatRGBA8 is 32-bit RGBA (4 bytes per pixel).
	// This is the working format of all pipeline stages.
	FormatRGBA8

	// FormatBGRA8 is 32-bit BGRA (4 bytes per pixel).
	// The common delivery format of window-capture providers.
	FormatBGRA8

	// formatCount is the number of formats (for internal use).
	formatCount
)

// FormatInfo contains metadata about a pixel format.
type FormatInfo struct {
	// BytesPerPixel is the number of bytes per pixel.
	BytesPerPixel int

	// Channels is the number of color channels.
	Channels int

	// HasAlpha indicates if the format has an alpha channel.
	HasAlpha bool

	// IsGrayscale indicates if this is a grayscale format.
	IsGrayscale bool
}

// formatInfoTable contains metadata for each format.
var formatInfoTable = [formatCount]FormatInfo{
	FormatGray8: {
		BytesPerPixel: 1,
		Channels:      1,
		HasAlpha:      false,
		IsGrayscale:   true,
	},
	FormatRGBA8: {
		BytesPerPixel: 4,
		Channels:      4,
		HasAlpha:      true,
		IsGrayscale:   false,
	},
	FormatBGRA8: {
		BytesPerPixel: 4,
		Channels:      4,
		HasAlpha:      true,
		IsGrayscale:   false,
	},
}

// IsValid reports whether the format is a recognized pixel format.
func (f Format) IsValid() bool {
	return f < formatCount
}

// Info returns the metadata for the format.
// Returns the zero FormatInfo for invalid formats.
func (f Format) Info() FormatInfo {
	if !f.IsValid() {
		return FormatInfo{}
	}
	return formatInfoTable[f]
}

// BytesPerPixel returns the number of bytes per pixel for the format.
func (f Format) BytesPerPixel() int {
	return f.Info().BytesPerPixel
}

// RowBytes returns the minimum number of bytes per row for the given width.
func (f Format) RowBytes(width int) int {
	return f.BytesPerPixel() * width
}

// String returns a human-readable name for the format.
func (f Format) String() string {
	switch f {
	case FormatGray8:
		return "Gray8"
	case FormatRGBA8:
		return "RGBA8"
	case FormatBGRA8:
		return "BGRA8"
	default:
		return "Unknown"
	}
}

// ToGPUFormat converts to the wgpu texture format used when the image is
// mirrored into a GPU texture.
func (f Format) ToGPUFormat() gputypes.TextureFormat {
	switch f {
	case FormatGray8:
		return gputypes.TextureFormatR8Unorm
	case FormatBGRA8:
		return gputypes.TextureFormatBGRA8Unorm
	default:
		return gputypes.TextureFormatRGBA8Unorm
	}
}

// Usage specifies how an image may be used by pipeline stages.
// The flags mirror GPU texture usage and can be combined with bitwise OR.
type Usage uint8

const (
	// UsageReadable allows the image to be sampled by stage kernels.
	UsageReadable Usage = 1 << iota

	// UsageWritable allows the image to be written as a stage output.
	UsageWritable

	// UsagePresentable allows the image to be handed to the presentation sink.
	UsagePresentable
)

// UsageDefault is the usage applied to pool-acquired intermediate images.
const UsageDefault = UsageReadable | UsageWritable

// Has reports whether all bits of q are set in u.
func (u Usage) Has(q Usage) bool {
	return u&q == q
}

// ToGPUUsage converts to the wgpu texture usage flags for a texture mirror.
func (u Usage) ToGPUUsage() gputypes.TextureUsage {
	usage := gputypes.TextureUsageCopySrc | gputypes.TextureUsageCopyDst
	if u.Has(UsageReadable) {
		usage |= gputypes.TextureUsageTextureBinding
	}
	if u.Has(UsageWritable) {
		usage |= gputypes.TextureUsageStorageBinding
	}
	if u.Has(UsagePresentable) {
		usage |= gputypes.TextureUsageRenderAttachment
	}
	return usage
}
