package image

import (
	"errors"
	"fmt"
)

// ErrConversion is returned by Ingest when a raw capture buffer cannot be
// converted into a processable image. Callers treat this as a dropped
// frame, never as a fatal condition.
var ErrConversion = errors.New("image: unsupported capture buffer")

// RawBuffer is an externally captured pixel buffer as delivered by a
// capture provider callback. The Data slice is owned by the provider;
// it must remain valid until the frame referencing it completes.
type RawBuffer struct {
	// Data holds the pixel bytes, row by row with Stride bytes per row.
	Data []byte

	// Width and Height are the buffer dimensions in pixels.
	Width  int
	Height int

	// Stride is the number of bytes per row. Zero means tightly packed.
	Stride int

	// Format is the pixel layout of Data.
	Format Format
}

// Ingest converts a raw capture buffer into a processable RGBA8 image.
//
// When the source is already RGBA8 with a tight stride the backing memory
// is wrapped zero-copy; otherwise pixels are converted into a pool-acquired
// image (BGRA swizzle, grayscale expansion).
//
// Fails with ErrConversion when the source format is unsupported or the
// dimensions are zero.
func Ingest(pool *Pool, raw RawBuffer) (*Image, error) {
	if raw.Width <= 0 || raw.Height <= 0 {
		return nil, fmt.Errorf("%w: zero dimensions %dx%d", ErrConversion, raw.Width, raw.Height)
	}
	if !raw.Format.IsValid() {
		return nil, fmt.Errorf("%w: format %d", ErrConversion, raw.Format)
	}

	stride := raw.Stride
	if stride == 0 {
		stride = raw.Format.RowBytes(raw.Width)
	}
	if stride < raw.Format.RowBytes(raw.Width) {
		return nil, fmt.Errorf("%w: stride %d below row size", ErrConversion, stride)
	}
	if len(raw.Data) < stride*raw.Height {
		return nil, fmt.Errorf("%w: %d bytes for %dx%d stride %d",
			ErrConversion, len(raw.Data), raw.Width, raw.Height, stride)
	}

	// Zero-copy path: the backing memory already has the working layout.
	if raw.Format == FormatRGBA8 && stride == raw.Format.RowBytes(raw.Width) {
		return FromRaw(raw.Data, raw.Width, raw.Height, FormatRGBA8, stride)
	}

	dst, err := pool.Acquire(raw.Width, raw.Height, FormatRGBA8, UsageDefault)
	if err != nil {
		return nil, fmt.Errorf("ingest: %w", err)
	}

	switch raw.Format {
	case FormatRGBA8:
		// Padded stride: row-wise copy.
		rowSize := FormatRGBA8.RowBytes(raw.Width)
		for y := 0; y < raw.Height; y++ {
			copy(dst.RowBytes(y), raw.Data[y*stride:y*stride+rowSize])
		}
	case FormatBGRA8:
		for y := 0; y < raw.Height; y++ {
			src := raw.Data[y*stride:]
			row := dst.RowBytes(y)
			for x := 0; x < raw.Width; x++ {
				s := x * 4
				row[s] = src[s+2]
				row[s+1] = src[s+1]
				row[s+2] = src[s]
				row[s+3] = src[s+3]
			}
		}
	case FormatGray8:
		for y := 0; y < raw.Height; y++ {
			src := raw.Data[y*stride:]
			row := dst.RowBytes(y)
			for x := 0; x < raw.Width; x++ {
				v := src[x]
				d := x * 4
				row[d] = v
				row[d+1] = v
				row[d+2] = v
				row[d+3] = 255
			}
		}
	}

	return dst, nil
}
