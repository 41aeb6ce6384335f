package image

import "math"

// SampleBilinear performs bilinear interpolation at normalized coordinates
// (u, v) in [0,1], where (0,0) is top-left and (1,1) is bottom-right.
// Out-of-bounds coordinates are clamped to the edge.
func SampleBilinear(img *Image, u, v float64) (r, g, b, a uint8) {
	w, h := img.Bounds()

	// Continuous pixel coordinates with half-pixel centers.
	fx := u*float64(w) - 0.5
	fy := v*float64(h) - 0.5

	x0 := int(math.Floor(fx))
	y0 := int(math.Floor(fy))
	tx := fx - float64(x0)
	ty := fy - float64(y0)

	x1 := clampInt(x0+1, 0, w-1)
	y1 := clampInt(y0+1, 0, h-1)
	x0 = clampInt(x0, 0, w-1)
	y0 = clampInt(y0, 0, h-1)

	r00, g00, b00, a00 := img.GetRGBA(x0, y0)
	r10, g10, b10, a10 := img.GetRGBA(x1, y0)
	r01, g01, b01, a01 := img.GetRGBA(x0, y1)
	r11, g11, b11, a11 := img.GetRGBA(x1, y1)

	r = blend2(r00, r10, r01, r11, tx, ty)
	g = blend2(g00, g10, g01, g11, tx, ty)
	b = blend2(b00, b10, b01, b11, tx, ty)
	a = blend2(a00, a10, a01, a11, tx, ty)
	return r, g, b, a
}

// blend2 bilinearly blends four corner samples with fractions (tx, ty).
func blend2(c00, c10, c01, c11 uint8, tx, ty float64) uint8 {
	top := Lerp8(c00, c10, tx)
	bot := Lerp8(c01, c11, tx)
	return Lerp8(top, bot, ty)
}

// Lerp8 linearly interpolates between two 8-bit channel values with
// weight t in [0,1], rounding to nearest.
func Lerp8(a, b uint8, t float64) uint8 {
	return uint8(float64(a) + (float64(b)-float64(a))*t + 0.5)
}

// Clamp8 clamps v to the valid 8-bit channel range.
func Clamp8(v float64) uint8 {
	if v <= 0 {
		return 0
	}
	if v >= 255 {
		return 255
	}
	return uint8(v + 0.5)
}

func clampInt(v, lo, hi int) int {
	if v < lo {
		return lo
	}
	if v > hi {
		return hi
	}
	return v
}
