//go:build !nogpu

package gpu

import (
	"errors"
	"testing"

	"github.com/gogpu/glide/image"
	"github.com/gogpu/glide/internal/stage"
)

func newGray(t *testing.T, w, h int, v uint8) *image.Image {
	t.Helper()
	img, err := image.New(w, h, image.FormatRGBA8, image.UsageDefault)
	if err != nil {
		t.Fatalf("New failed: %v", err)
	}
	for y := 0; y < h; y++ {
		for x := 0; x < w; x++ {
			img.SetRGBA(x, y, v, v, v, 255)
		}
	}
	return img
}

func TestWGPUScalerName(t *testing.T) {
	s := NewWGPUScaler()
	if s.Name() != "wgpu" {
		t.Errorf("Name = %q, want wgpu", s.Name())
	}
}

func TestWGPUScalerInitDefersDevice(t *testing.T) {
	s := NewWGPUScaler()
	if err := s.Init(); err != nil {
		t.Errorf("Init should succeed without a device: %v", err)
	}
}

func TestWGPUScalerUnavailableWithoutDevice(t *testing.T) {
	s := NewWGPUScaler()
	err := s.Configure(8, 8, 16, 16, stage.ProcessLinear)
	if !errors.Is(err, stage.ErrScalerUnavailable) {
		t.Errorf("expected ErrScalerUnavailable before device attach, got %v", err)
	}

	dst := newGray(t, 16, 16, 0)
	src := newGray(t, 8, 8, 0)
	if err := s.Encode(dst, src); !errors.Is(err, stage.ErrScalerUnavailable) {
		t.Errorf("expected ErrScalerUnavailable, got %v", err)
	}
}

func TestWGPUScalerRejectsBadProvider(t *testing.T) {
	s := NewWGPUScaler()
	if err := s.SetDeviceProvider(struct{}{}); err == nil {
		t.Error("a provider without HAL handles should be rejected")
	}
}

func TestWGPUScalerCloseIdempotent(t *testing.T) {
	s := NewWGPUScaler()
	s.Close()
	s.Close()
}

// The CPU mirrors keep flat regions exact under every filter mode.
func TestFilterFlatInvariant(t *testing.T) {
	src := newGray(t, 8, 8, 100)

	dst := newGray(t, 16, 16, 0)
	scalePerceptual(dst, src)
	if got := dst.Luma(8, 8); got < 99 || got > 101 {
		t.Errorf("perceptual flat output = %d, want ~100", got)
	}

	dst = newGray(t, 16, 16, 0)
	scaleCatmull(dst, src)
	if got := dst.Luma(8, 8); got != 100 {
		t.Errorf("catmull flat output = %d, want 100", got)
	}
}

// Perceptual resampling blends in linear light: the midpoint between
// black and white lands brighter than the sRGB-space midpoint.
func TestScalePerceptualLinearLight(t *testing.T) {
	src, _ := image.New(2, 1, image.FormatRGBA8, image.UsageDefault)
	src.SetRGBA(0, 0, 0, 0, 0, 255)
	src.SetRGBA(1, 0, 255, 255, 255, 255)

	dst, _ := image.New(4, 1, image.FormatRGBA8, image.UsageDefault)
	scalePerceptual(dst, src)

	// dst x=1 and x=2 sample at source fractions 0.875/0.125; the inner
	// pair straddles the edge.
	l1 := dst.Luma(1, 0)
	l2 := dst.Luma(2, 0)
	if l1 >= l2 {
		t.Errorf("gradient not monotonic: %d >= %d", l1, l2)
	}
	// Gamma-aware blending pulls the 25% mix well above 0.25*255.
	if l2 <= 128 {
		t.Errorf("linear-light blend = %d, want > 128", l2)
	}
}

func TestCatmullWeight(t *testing.T) {
	if w := catmullWeight(0); w != 1 {
		t.Errorf("weight(0) = %v, want 1", w)
	}
	if w := catmullWeight(1); w != 0 {
		t.Errorf("weight(1) = %v, want 0", w)
	}
	if w := catmullWeight(2); w != 0 {
		t.Errorf("weight(2) = %v, want 0", w)
	}
	if w := catmullWeight(2.5); w != 0 {
		t.Errorf("weight(2.5) = %v, want 0", w)
	}
	// Symmetric.
	if catmullWeight(0.5) != catmullWeight(-0.5) {
		t.Error("kernel should be symmetric")
	}
	// Negative lobe between 1 and 2.
	if catmullWeight(1.5) >= 0 {
		t.Errorf("weight(1.5) = %v, want negative", catmullWeight(1.5))
	}
}

// Catmull-Rom overshoots at hard edges; clamping keeps output valid.
func TestScaleCatmullEdge(t *testing.T) {
	src, _ := image.New(4, 4, image.FormatRGBA8, image.UsageDefault)
	for y := 0; y < 4; y++ {
		for x := 2; x < 4; x++ {
			src.SetRGBA(x, y, 255, 255, 255, 255)
		}
	}
	dst, _ := image.New(8, 8, image.FormatRGBA8, image.UsageDefault)
	scaleCatmull(dst, src)

	if dst.Luma(0, 4) != 0 {
		t.Errorf("left side = %d, want 0", dst.Luma(0, 4))
	}
	if dst.Luma(7, 4) != 255 {
		t.Errorf("right side = %d, want 255", dst.Luma(7, 4))
	}
}

func TestGammaRoundTrip(t *testing.T) {
	for _, v := range []uint8{0, 1, 64, 128, 200, 255} {
		got := encodeGamma(decodeGamma(v))
		diff := int(got) - int(v)
		if diff < -1 || diff > 1 {
			t.Errorf("round trip %d -> %d", v, got)
		}
	}
}

func TestFetchClamped(t *testing.T) {
	img := newGray(t, 4, 4, 0)
	img.SetRGBA(0, 0, 10, 10, 10, 255)
	img.SetRGBA(3, 3, 20, 20, 20, 255)

	r, _, _, _ := fetchClamped(img, -2, -2)
	if r != 10 {
		t.Errorf("clamped top-left = %d, want 10", r)
	}
	r, _, _, _ = fetchClamped(img, 9, 9)
	if r != 20 {
		t.Errorf("clamped bottom-right = %d, want 20", r)
	}
}
