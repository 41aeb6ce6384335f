package glide

import (
	"errors"
	"path/filepath"
	"testing"
)

func TestParseConfig(t *testing.T) {
	data := []byte(`
interpolate: true
blend_factor: 0.25
motion_compensation: true
aa: fast-edge
upscale: bilinear
scale_factor: 2.0
quality: wide-gamut
sharpen_intensity: 0.6
render_scale: 0.5
`)
	cfg, err := ParseConfig(data)
	if err != nil {
		t.Fatalf("ParseConfig failed: %v", err)
	}
	if !cfg.Interpolate || cfg.BlendFactor != 0.25 || !cfg.MotionCompensation {
		t.Errorf("interpolation fields mismatch: %+v", cfg)
	}
	if cfg.AA != AAFastEdge || cfg.Upscale != UpscaleBilinear || cfg.Quality != QualityWideGamut {
		t.Errorf("enum fields mismatch: %+v", cfg)
	}
	if cfg.ScaleFactor != 2.0 || cfg.SharpenIntensity != 0.6 || cfg.RenderScale != 0.5 {
		t.Errorf("scalar fields mismatch: %+v", cfg)
	}
}

func TestParseConfigDefaults(t *testing.T) {
	// Unset fields keep their defaults.
	cfg, err := ParseConfig([]byte("interpolate: true\n"))
	if err != nil {
		t.Fatalf("ParseConfig failed: %v", err)
	}
	want := DefaultConfig()
	want.Interpolate = true
	if cfg != want {
		t.Errorf("got %+v, want %+v", cfg, want)
	}
}

func TestParseConfigErrors(t *testing.T) {
	if _, err := ParseConfig([]byte("aa: [nested]\n")); err == nil {
		t.Error("malformed YAML should fail")
	}
	if _, err := ParseConfig([]byte("aa: sorcery\n")); !errors.Is(err, ErrInvalidConfig) {
		t.Errorf("unknown aa mode should fail with ErrInvalidConfig, got %v", err)
	}
	if _, err := ParseConfig([]byte("upscale: nearest\n")); !errors.Is(err, ErrInvalidConfig) {
		t.Errorf("unknown upscale mode should fail with ErrInvalidConfig, got %v", err)
	}
	if _, err := ParseConfig([]byte("quality: ultra\n")); !errors.Is(err, ErrInvalidConfig) {
		t.Errorf("unknown quality tier should fail with ErrInvalidConfig, got %v", err)
	}
	// Parsed values are validated.
	if _, err := ParseConfig([]byte("blend_factor: 3.0\n")); !errors.Is(err, ErrInvalidConfig) {
		t.Errorf("out-of-range blend factor should fail, got %v", err)
	}
}

func TestConfigRoundTrip(t *testing.T) {
	cfg := DefaultConfig()
	cfg.Interpolate = true
	cfg.BlendFactor = 0.4
	cfg.AA = AAOff
	cfg.Upscale = UpscaleBilinear
	cfg.ScaleFactor = 1.5
	cfg.Quality = QualityLinear
	cfg.SharpenIntensity = 0.2
	cfg.RenderScale = 0.75

	path := filepath.Join(t.TempDir(), "glide.yaml")
	if err := SaveConfig(path, cfg); err != nil {
		t.Fatalf("SaveConfig failed: %v", err)
	}
	got, err := LoadConfig(path)
	if err != nil {
		t.Fatalf("LoadConfig failed: %v", err)
	}
	if got != cfg {
		t.Errorf("round trip mismatch:\n got %+v\nwant %+v", got, cfg)
	}
}

func TestLoadConfigMissingFile(t *testing.T) {
	if _, err := LoadConfig(filepath.Join(t.TempDir(), "absent.yaml")); err == nil {
		t.Error("missing file should fail")
	}
}
