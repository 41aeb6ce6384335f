package image

import (
	"errors"
	"testing"
)

func TestIngestZeroCopy(t *testing.T) {
	p := NewPool(4)
	data := make([]byte, 4*2*4)
	data[0] = 42

	img, err := Ingest(p, RawBuffer{Data: data, Width: 4, Height: 2, Format: FormatRGBA8})
	if err != nil {
		t.Fatalf("Ingest failed: %v", err)
	}
	if img.Pooled() {
		t.Error("tight RGBA8 ingest should be zero-copy, not pooled")
	}
	// Shares backing memory with the capture buffer.
	data[0] = 99
	if img.Data()[0] != 99 {
		t.Error("expected shared backing memory")
	}
}

func TestIngestBGRA(t *testing.T) {
	p := NewPool(4)
	data := make([]byte, 2*1*4)
	// One pixel: B=1 G=2 R=3 A=4.
	data[0], data[1], data[2], data[3] = 1, 2, 3, 4

	img, err := Ingest(p, RawBuffer{Data: data, Width: 2, Height: 1, Format: FormatBGRA8})
	if err != nil {
		t.Fatalf("Ingest failed: %v", err)
	}
	if img.Format() != FormatRGBA8 {
		t.Errorf("expected RGBA8 working format, got %v", img.Format())
	}
	if !img.Pooled() {
		t.Error("converted ingest should come from the pool")
	}
	r, g, b, a := img.GetRGBA(0, 0)
	if r != 3 || g != 2 || b != 1 || a != 4 {
		t.Errorf("swizzle got (%d,%d,%d,%d), want (3,2,1,4)", r, g, b, a)
	}
}

func TestIngestGray(t *testing.T) {
	p := NewPool(4)
	data := []byte{100, 200}

	img, err := Ingest(p, RawBuffer{Data: data, Width: 2, Height: 1, Format: FormatGray8})
	if err != nil {
		t.Fatalf("Ingest failed: %v", err)
	}
	r, g, b, a := img.GetRGBA(1, 0)
	if r != 200 || g != 200 || b != 200 || a != 255 {
		t.Errorf("gray expansion got (%d,%d,%d,%d), want (200,200,200,255)", r, g, b, a)
	}
}

func TestIngestPaddedStride(t *testing.T) {
	p := NewPool(4)
	// 2x2 RGBA with 4 bytes of row padding.
	stride := 2*4 + 4
	data := make([]byte, stride*2)
	// Pixel (0,1): offset stride.
	data[stride], data[stride+1], data[stride+2], data[stride+3] = 5, 6, 7, 8

	img, err := Ingest(p, RawBuffer{Data: data, Width: 2, Height: 2, Stride: stride, Format: FormatRGBA8})
	if err != nil {
		t.Fatalf("Ingest failed: %v", err)
	}
	if !img.Pooled() {
		t.Error("padded ingest should copy into a pool image")
	}
	if img.Stride() != 8 {
		t.Errorf("expected tight stride 8, got %d", img.Stride())
	}
	r, g, b, a := img.GetRGBA(0, 1)
	if r != 5 || g != 6 || b != 7 || a != 8 {
		t.Errorf("got (%d,%d,%d,%d), want (5,6,7,8)", r, g, b, a)
	}
}

func TestIngestErrors(t *testing.T) {
	p := NewPool(4)
	tests := []struct {
		name string
		raw  RawBuffer
	}{
		{"zero width", RawBuffer{Data: make([]byte, 16), Width: 0, Height: 2, Format: FormatRGBA8}},
		{"zero height", RawBuffer{Data: make([]byte, 16), Width: 2, Height: 0, Format: FormatRGBA8}},
		{"bad format", RawBuffer{Data: make([]byte, 16), Width: 2, Height: 2, Format: Format(77)}},
		{"short data", RawBuffer{Data: make([]byte, 8), Width: 2, Height: 2, Format: FormatRGBA8}},
		{"short stride", RawBuffer{Data: make([]byte, 32), Width: 2, Height: 2, Stride: 4, Format: FormatRGBA8}},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if _, err := Ingest(p, tt.raw); !errors.Is(err, ErrConversion) {
				t.Errorf("expected ErrConversion, got %v", err)
			}
		})
	}
}
