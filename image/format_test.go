package image

import (
	"testing"

	"github.com/gogpu/gputypes"
)

func TestFormatIsValid(t *testing.T) {
	for _, f := range []Format{FormatGray8, FormatRGBA8, FormatBGRA8} {
		if !f.IsValid() {
			t.Errorf("%v.IsValid() = false, want true", f)
		}
	}
	if Format(formatCount).IsValid() {
		t.Error("formatCount should not be valid")
	}
	if Format(200).IsValid() {
		t.Error("Format(200) should not be valid")
	}
}

func TestFormatBytesPerPixel(t *testing.T) {
	tests := []struct {
		format Format
		want   int
	}{
		{FormatGray8, 1},
		{FormatRGBA8, 4},
		{FormatBGRA8, 4},
		{Format(99), 0},
	}
	for _, tt := range tests {
		if got := tt.format.BytesPerPixel(); got != tt.want {
			t.Errorf("%v.BytesPerPixel() = %d, want %d", tt.format, got, tt.want)
		}
	}
}

func TestFormatRowBytes(t *testing.T) {
	if got := FormatRGBA8.RowBytes(640); got != 2560 {
		t.Errorf("RGBA8.RowBytes(640) = %d, want 2560", got)
	}
	if got := FormatGray8.RowBytes(640); got != 640 {
		t.Errorf("Gray8.RowBytes(640) = %d, want 640", got)
	}
}

func TestFormatString(t *testing.T) {
	tests := []struct {
		format Format
		want   string
	}{
		{FormatGray8, "Gray8"},
		{FormatRGBA8, "RGBA8"},
		{FormatBGRA8, "BGRA8"},
		{Format(99), "Unknown"},
	}
	for _, tt := range tests {
		if got := tt.format.String(); got != tt.want {
			t.Errorf("Format(%d).String() = %q, want %q", tt.format, got, tt.want)
		}
	}
}

func TestFormatToGPUFormat(t *testing.T) {
	tests := []struct {
		format Format
		want   gputypes.TextureFormat
	}{
		{FormatGray8, gputypes.TextureFormatR8Unorm},
		{FormatRGBA8, gputypes.TextureFormatRGBA8Unorm},
		{FormatBGRA8, gputypes.TextureFormatBGRA8Unorm},
	}
	for _, tt := range tests {
		if got := tt.format.ToGPUFormat(); got != tt.want {
			t.Errorf("%v.ToGPUFormat() = %v, want %v", tt.format, got, tt.want)
		}
	}
}

func TestFormatInfo(t *testing.T) {
	info := FormatGray8.Info()
	if !info.IsGrayscale {
		t.Error("Gray8 should be grayscale")
	}
	if info.HasAlpha {
		t.Error("Gray8 should not have alpha")
	}
	if info.Channels != 1 {
		t.Errorf("Gray8 channels = %d, want 1", info.Channels)
	}

	info = FormatRGBA8.Info()
	if info.IsGrayscale {
		t.Error("RGBA8 should not be grayscale")
	}
	if !info.HasAlpha {
		t.Error("RGBA8 should have alpha")
	}

	// Invalid formats yield the zero info.
	if Format(50).Info() != (FormatInfo{}) {
		t.Error("invalid format should return zero FormatInfo")
	}
}

func TestUsageHas(t *testing.T) {
	u := UsageReadable | UsageWritable
	if !u.Has(UsageReadable) {
		t.Error("expected UsageReadable set")
	}
	if !u.Has(UsageReadable | UsageWritable) {
		t.Error("expected combined flags set")
	}
	if u.Has(UsagePresentable) {
		t.Error("UsagePresentable should not be set")
	}
}

func TestUsageToGPUUsage(t *testing.T) {
	u := UsageReadable.ToGPUUsage()
	if u&gputypes.TextureUsageTextureBinding == 0 {
		t.Error("readable usage should include texture binding")
	}
	if u&gputypes.TextureUsageStorageBinding != 0 {
		t.Error("readable-only usage should not include storage binding")
	}

	u = (UsageWritable | UsagePresentable).ToGPUUsage()
	if u&gputypes.TextureUsageStorageBinding == 0 {
		t.Error("writable usage should include storage binding")
	}
	if u&gputypes.TextureUsageRenderAttachment == 0 {
		t.Error("presentable usage should include render attachment")
	}

	// Copy src/dst always present for staging transfers.
	if u&gputypes.TextureUsageCopySrc == 0 || u&gputypes.TextureUsageCopyDst == 0 {
		t.Error("usage should always include copy src and dst")
	}
}
