package image

import (
	"errors"
	stdimage "image"
)

// Common errors for image operations.
var (
	// ErrInvalidDimensions is returned when width or height is non-positive.
	ErrInvalidDimensions = errors.New("image: invalid dimensions")

	// ErrInvalidFormat is returned when the format is not recognized.
	ErrInvalidFormat = errors.New("image: invalid format")

	// ErrInvalidStride is returned when stride is less than minimum required.
	ErrInvalidStride = errors.New("image: stride too small for width")

	// ErrDataTooSmall is returned when provided data is smaller than required.
	ErrDataTooSmall = errors.New("image: data buffer too small")

	// ErrOutOfBounds is returned when pixel coordinates are outside image bounds.
	ErrOutOfBounds = errors.New("image: coordinates out of bounds")
)

// Residency describes where an image's pixel data currently lives.
type Residency uint8

const (
	// ResidentHost means the pixel data lives in host (staging) memory only.
	ResidentHost Residency = iota

	// ResidentDevice means a GPU texture mirror of the image exists.
	// Set by a hardware backend after upload; the host copy stays valid.
	ResidentDevice
)

// Image is a 2D pixel buffer threaded through pipeline stages.
//
// Pixel data lives in a contiguous byte slice with optional row stride.
// Ownership follows the stage-output chain: whichever component produced
// the image owns it until it is handed to the next stage; the Pool owns
// retired instances between uses.
//
// Thread safety: Image is safe for concurrent read access. Writes require
// external synchronization; inside the pipeline all writes happen on the
// single sequencing goroutine.
type Image struct {
	data      []byte
	width     int
	height    int
	stride    int
	format    Format
	usage     Usage
	residency Residency

	// pooled marks images acquired from a Pool. Release ignores images
	// that did not come from a pool (e.g. zero-copy capture wrappers).
	pooled bool
}

// New creates a new image with the given dimensions, format and usage.
// The pixel data is zero-initialized.
func New(width, height int, format Format, usage Usage) (*Image, error) {
	if width <= 0 || height <= 0 {
		return nil, ErrInvalidDimensions
	}
	if !format.IsValid() {
		return nil, ErrInvalidFormat
	}

	stride := format.RowBytes(width)
	return &Image{
		data:   make([]byte, stride*height),
		width:  width,
		height: height,
		stride: stride,
		format: format,
		usage:  usage,
	}, nil
}

// FromRaw creates an Image wrapping existing data without copying.
// The caller must ensure data remains valid for the lifetime of the Image.
// Stride must be at least format.RowBytes(width).
func FromRaw(data []byte, width, height int, format Format, stride int) (*Image, error) {
	if width <= 0 || height <= 0 {
		return nil, ErrInvalidDimensions
	}
	if !format.IsValid() {
		return nil, ErrInvalidFormat
	}

	minStride := format.RowBytes(width)
	if stride < minStride {
		return nil, ErrInvalidStride
	}
	required := stride * height
	if len(data) < required {
		return nil, ErrDataTooSmall
	}

	return &Image{
		data:   data[:required],
		width:  width,
		height: height,
		stride: stride,
		format: format,
		usage:  UsageReadable,
	}, nil
}

// Width returns the image width in pixels.
func (m *Image) Width() int { return m.width }

// Height returns the image height in pixels.
func (m *Image) Height() int { return m.height }

// Stride returns the number of bytes per row (including padding).
func (m *Image) Stride() int { return m.stride }

// Format returns the pixel format.
func (m *Image) Format() Format { return m.format }

// Usage returns the usage flags.
func (m *Image) Usage() Usage { return m.usage }

// Residency returns where the pixel data currently lives.
func (m *Image) Residency() Residency { return m.residency }

// SetResidency records a residency change, typically after a hardware
// backend uploads the image into a texture.
func (m *Image) SetResidency(r Residency) { m.residency = r }

// Pooled reports whether the image was acquired from a Pool and may be
// released back to it.
func (m *Image) Pooled() bool { return m.pooled }

// Bounds returns the image dimensions as (width, height).
func (m *Image) Bounds() (int, int) { return m.width, m.height }

// Data returns the raw pixel data slice.
func (m *Image) Data() []byte { return m.data }

// RowBytes returns a slice of the pixel data for row y.
// Returns nil if y is out of bounds.
func (m *Image) RowBytes(y int) []byte {
	if y < 0 || y >= m.height {
		return nil
	}
	start := y * m.stride
	return m.data[start : start+m.format.RowBytes(m.width)]
}

// PixelOffset returns the byte offset of pixel (x, y) in the data slice.
// Returns -1 if coordinates are out of bounds.
func (m *Image) PixelOffset(x, y int) int {
	if x < 0 || x >= m.width || y < 0 || y >= m.height {
		return -1
	}
	return y*m.stride + x*m.format.BytesPerPixel()
}

// GetRGBA returns the color at (x, y) as (r, g, b, a) in 0-255 range.
// For grayscale formats, r=g=b=gray and a=255.
// Returns (0,0,0,0) if coordinates are out of bounds.
func (m *Image) GetRGBA(x, y int) (r, g, b, a uint8) {
	off := m.PixelOffset(x, y)
	if off < 0 {
		return 0, 0, 0, 0
	}

	switch m.format {
	case FormatGray8:
		v := m.data[off]
		return v, v, v, 255
	case FormatRGBA8:
		return m.data[off], m.data[off+1], m.data[off+2], m.data[off+3]
	case FormatBGRA8:
		return m.data[off+2], m.data[off+1], m.data[off], m.data[off+3]
	default:
		return 0, 0, 0, 0
	}
}

// SetRGBA sets the color at (x, y) from (r, g, b, a) in 0-255 range.
// For grayscale formats, standard luminance weights are applied.
// Returns ErrOutOfBounds if coordinates are outside image bounds.
func (m *Image) SetRGBA(x, y int, r, g, b, a uint8) error {
	off := m.PixelOffset(x, y)
	if off < 0 {
		return ErrOutOfBounds
	}

	switch m.format {
	case FormatGray8:
		m.data[off] = Luminance(r, g, b)
	case FormatRGBA8:
		m.data[off] = r
		m.data[off+1] = g
		m.data[off+2] = b
		m.data[off+3] = a
	case FormatBGRA8:
		m.data[off] = b
		m.data[off+1] = g
		m.data[off+2] = r
		m.data[off+3] = a
	}
	return nil
}

// Luma returns the 0-255 luminance of the pixel at (x, y).
func (m *Image) Luma(x, y int) uint8 {
	r, g, b, _ := m.GetRGBA(x, y)
	return Luminance(r, g, b)
}

// Luminance computes the 0-255 luminance of an RGB triple using the
// standard BT.601 weights (0.299 R + 0.587 G + 0.114 B).
func Luminance(r, g, b uint8) uint8 {
	return uint8((299*uint32(r) + 587*uint32(g) + 114*uint32(b)) / 1000)
}

// Clear zeroes all pixel data.
func (m *Image) Clear() {
	clear(m.data)
}

// Clone creates a deep copy of the image.
func (m *Image) Clone() *Image {
	data := make([]byte, len(m.data))
	copy(data, m.data)
	return &Image{
		data:   data,
		width:  m.width,
		height: m.height,
		stride: m.stride,
		format: m.format,
		usage:  m.usage,
	}
}

// CopyFrom copies pixel data from src into m. Both images must have the
// same dimensions and format.
func (m *Image) CopyFrom(src *Image) error {
	if src.width != m.width || src.height != m.height || src.format != m.format {
		return ErrInvalidDimensions
	}
	if src.stride == m.stride {
		copy(m.data, src.data)
		return nil
	}
	for y := 0; y < m.height; y++ {
		copy(m.RowBytes(y), src.RowBytes(y))
	}
	return nil
}

// ToStdImage converts the image to a stdlib *image.RGBA.
// RGBA8 images with tight stride share pixel memory with the result;
// other formats are converted pixel by pixel.
func (m *Image) ToStdImage() *stdimage.RGBA {
	if m.format == FormatRGBA8 && m.stride == m.format.RowBytes(m.width) {
		return &stdimage.RGBA{
			Pix:    m.data,
			Stride: m.stride,
			Rect:   stdimage.Rect(0, 0, m.width, m.height),
		}
	}

	out := stdimage.NewRGBA(stdimage.Rect(0, 0, m.width, m.height))
	for y := 0; y < m.height; y++ {
		for x := 0; x < m.width; x++ {
			r, g, b, a := m.GetRGBA(x, y)
			i := out.PixOffset(x, y)
			out.Pix[i] = r
			out.Pix[i+1] = g
			out.Pix[i+2] = b
			out.Pix[i+3] = a
		}
	}
	return out
}
