package stage

import (
	"bytes"
	"errors"
	"testing"

	"github.com/gogpu/glide/image"
)

// fakeScaler is a SpatialScaler test double that records calls and can be
// told to fail.
type fakeScaler struct {
	configures  int
	encodes     int
	closed      bool
	configErr   error
	encodeErr   error
	encodeValue uint8
}

func (s *fakeScaler) Configure(inW, inH, outW, outH int, mode ProcessMode) error {
	s.configures++
	return s.configErr
}

func (s *fakeScaler) Encode(dst, src *image.Image) error {
	s.encodes++
	if s.encodeErr != nil {
		return s.encodeErr
	}
	w, h := dst.Bounds()
	for y := 0; y < h; y++ {
		for x := 0; x < w; x++ {
			dst.SetRGBA(x, y, s.encodeValue, s.encodeValue, s.encodeValue, 255)
		}
	}
	return nil
}

func (s *fakeScaler) Close() { s.closed = true }

func TestUpscalerConfigureValidation(t *testing.T) {
	u := NewUpscaler(nil)
	tests := []struct {
		name     string
		inW, inH int
		scale    float64
	}{
		{"zero width", 0, 10, 2},
		{"zero height", 10, 0, 2},
		{"scale below 1", 10, 10, 0.5},
		{"scale above 10", 10, 10, 10.5},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if err := u.Configure(tt.inW, tt.inH, tt.scale, ProcessLinear); !errors.Is(err, ErrInvalidScale) {
				t.Errorf("expected ErrInvalidScale, got %v", err)
			}
		})
	}
	// Bounds are inclusive.
	if err := u.Configure(10, 10, 1.0, ProcessLinear); err != nil {
		t.Errorf("scale 1.0 should be accepted: %v", err)
	}
	if err := u.Configure(10, 10, 10.0, ProcessLinear); err != nil {
		t.Errorf("scale 10.0 should be accepted: %v", err)
	}
}

func TestUpscalerConfigureIdempotent(t *testing.T) {
	fs := &fakeScaler{}
	u := NewUpscaler(fs)

	if err := u.Configure(100, 50, 2.0, ProcessLinear); err != nil {
		t.Fatalf("Configure failed: %v", err)
	}
	if err := u.Configure(100, 50, 2.0, ProcessLinear); err != nil {
		t.Fatalf("repeat Configure failed: %v", err)
	}
	if fs.configures != 1 {
		t.Errorf("capability configured %d times, want 1", fs.configures)
	}

	// A different pair reconfigures.
	if err := u.Configure(100, 50, 3.0, ProcessLinear); err != nil {
		t.Fatalf("Configure failed: %v", err)
	}
	if fs.configures != 2 {
		t.Errorf("capability configured %d times, want 2", fs.configures)
	}

	w, h := u.OutputSize(100, 50, nil)
	if w != 300 || h != 150 {
		t.Errorf("OutputSize = %dx%d, want 300x150", w, h)
	}
}

func TestUpscalerUnavailableLatch(t *testing.T) {
	fs := &fakeScaler{configErr: ErrScalerUnavailable}
	u := NewUpscaler(fs)

	err := u.Configure(10, 10, 2.0, ProcessLinear)
	if !errors.Is(err, ErrScalerUnavailable) {
		t.Fatalf("expected ErrScalerUnavailable, got %v", err)
	}
	if u.HardwareAvailable() {
		t.Error("capability should be latched unavailable")
	}

	// Processing still succeeds via the fallback path.
	src := newFrame(t, 10, 10, 50, 50, 50)
	dst := newFrame(t, 20, 20, 0, 0, 0)
	if err := u.Process(dst, src, nil, nil); err != nil {
		t.Fatalf("fallback Process failed: %v", err)
	}
	if fs.encodes != 0 {
		t.Error("latched capability should not be asked to encode")
	}
	if dst.Luma(10, 10) != 50 {
		t.Errorf("fallback output = %d, want 50", dst.Luma(10, 10))
	}
}

func TestUpscalerEncodeFailureFallsBack(t *testing.T) {
	fs := &fakeScaler{encodeErr: errors.New("device lost")}
	u := NewUpscaler(fs)
	if err := u.Configure(8, 8, 2.0, ProcessLinear); err != nil {
		t.Fatalf("Configure failed: %v", err)
	}
	if !u.HardwareAvailable() {
		t.Fatal("capability should be available after Configure")
	}

	src := newFrame(t, 8, 8, 70, 70, 70)
	dst := newFrame(t, 16, 16, 0, 0, 0)
	if err := u.Process(dst, src, nil, nil); err != nil {
		t.Fatalf("Process should fall back, got %v", err)
	}
	if dst.Luma(8, 8) != 70 {
		t.Errorf("fallback output = %d, want 70", dst.Luma(8, 8))
	}
	// The failure latches the capability off for the session.
	if u.HardwareAvailable() {
		t.Error("encode failure should latch unavailable")
	}
	if err := u.Process(dst, src, nil, nil); err != nil {
		t.Fatalf("Process failed: %v", err)
	}
	if fs.encodes != 1 {
		t.Errorf("encode attempted %d times, want 1", fs.encodes)
	}
}

func TestUpscalerHardwarePath(t *testing.T) {
	fs := &fakeScaler{encodeValue: 200}
	u := NewUpscaler(fs)
	if err := u.Configure(8, 8, 2.0, ProcessPerceptual); err != nil {
		t.Fatalf("Configure failed: %v", err)
	}

	src := newFrame(t, 8, 8, 10, 10, 10)
	dst := newFrame(t, 16, 16, 0, 0, 0)
	if err := u.Process(dst, src, nil, nil); err != nil {
		t.Fatalf("Process failed: %v", err)
	}
	if dst.Luma(0, 0) != 200 {
		t.Error("expected the hardware path to produce the output")
	}

	u.Close()
	if !fs.closed {
		t.Error("Close should release the capability")
	}
}

func TestUpscalerProcessContract(t *testing.T) {
	u := NewUpscaler(nil)
	src := newFrame(t, 8, 8, 0, 0, 0)
	dst := newFrame(t, 16, 16, 0, 0, 0)

	// Unconfigured use is rejected.
	if err := u.Process(dst, src, nil, nil); !errors.Is(err, ErrInvalidScale) {
		t.Errorf("expected ErrInvalidScale, got %v", err)
	}

	if err := u.Configure(8, 8, 2.0, ProcessLinear); err != nil {
		t.Fatalf("Configure failed: %v", err)
	}
	wrong := newFrame(t, 10, 10, 0, 0, 0)
	if err := u.Process(wrong, src, nil, nil); !errors.Is(err, ErrSizeMismatch) {
		t.Errorf("expected ErrSizeMismatch, got %v", err)
	}
	if err := u.Process(nil, src, nil, nil); !errors.Is(err, ErrNilImage) {
		t.Errorf("expected ErrNilImage, got %v", err)
	}
}

// Unit scale is byte-identical to the input.
func TestBilinearResizeIdentity(t *testing.T) {
	src := newFrame(t, 16, 16, 0, 0, 0)
	for y := 0; y < 16; y++ {
		for x := 0; x < 16; x++ {
			src.SetRGBA(x, y, uint8(x*16), uint8(y*16), uint8(x^y), 255)
		}
	}
	dst := newFrame(t, 16, 16, 9, 9, 9)
	if err := BilinearResize(dst, src); err != nil {
		t.Fatalf("BilinearResize failed: %v", err)
	}
	if !bytes.Equal(dst.Data(), src.Data()) {
		t.Error("unit-scale resize should be byte-identical")
	}
}

func TestBilinearResizeUpscale(t *testing.T) {
	// 720p doubled to 1440p keeps flat regions exact and preserves a
	// half/half split.
	const inW, inH = 1280, 720
	src := newFrame(t, inW, inH, 0, 0, 0)
	for y := 0; y < inH; y++ {
		for x := inW / 2; x < inW; x++ {
			src.SetRGBA(x, y, 240, 240, 240, 255)
		}
	}
	dst := newFrame(t, inW*2, inH*2, 0, 0, 0)
	if err := BilinearResize(dst, src); err != nil {
		t.Fatalf("BilinearResize failed: %v", err)
	}
	if dst.Luma(10, 10) != 0 {
		t.Errorf("left half = %d, want 0", dst.Luma(10, 10))
	}
	if dst.Luma(inW*2-10, inH*2-10) != 240 {
		t.Errorf("right half = %d, want 240", dst.Luma(inW*2-10, inH*2-10))
	}
}

func TestDrawScalerModes(t *testing.T) {
	for _, mode := range []ProcessMode{ProcessLinear, ProcessPerceptual, ProcessWideGamut} {
		s := NewDrawScaler()
		if err := s.Configure(8, 8, 16, 16, mode); err != nil {
			t.Fatalf("mode %v: Configure failed: %v", mode, err)
		}
		src := newFrame(t, 8, 8, 60, 60, 60)
		dst := newFrame(t, 16, 16, 0, 0, 0)
		if err := s.Encode(dst, src); err != nil {
			t.Fatalf("mode %v: Encode failed: %v", mode, err)
		}
		// A flat source stays flat under every kernel.
		if dst.Luma(8, 8) != 60 {
			t.Errorf("mode %v: output = %d, want 60", mode, dst.Luma(8, 8))
		}
	}
}

func TestDrawScalerContract(t *testing.T) {
	s := NewDrawScaler()
	src := newFrame(t, 8, 8, 0, 0, 0)
	dst := newFrame(t, 16, 16, 0, 0, 0)

	if err := s.Encode(dst, src); !errors.Is(err, ErrScalerUnavailable) {
		t.Errorf("unconfigured Encode should fail, got %v", err)
	}
	if err := s.Configure(8, 8, 16, 16, ProcessMode(99)); !errors.Is(err, ErrScalerUnavailable) {
		t.Errorf("unknown mode should fail, got %v", err)
	}
	if err := s.Configure(0, 8, 16, 16, ProcessLinear); !errors.Is(err, ErrInvalidScale) {
		t.Errorf("expected ErrInvalidScale, got %v", err)
	}

	if err := s.Configure(8, 8, 16, 16, ProcessLinear); err != nil {
		t.Fatalf("Configure failed: %v", err)
	}
	wrong := newFrame(t, 10, 10, 0, 0, 0)
	if err := s.Encode(wrong, src); !errors.Is(err, ErrSizeMismatch) {
		t.Errorf("expected ErrSizeMismatch, got %v", err)
	}
}

func TestProcessModeString(t *testing.T) {
	tests := []struct {
		mode ProcessMode
		want string
	}{
		{ProcessLinear, "linear"},
		{ProcessPerceptual, "perceptual"},
		{ProcessWideGamut, "wide-gamut"},
		{ProcessMode(9), "unknown"},
	}
	for _, tt := range tests {
		if got := tt.mode.String(); got != tt.want {
			t.Errorf("ProcessMode(%d).String() = %q, want %q", tt.mode, got, tt.want)
		}
	}
}
