package stage

import "github.com/gogpu/glide/image"

// SharpenEpsilon is the intensity below which sharpening is treated as a
// no-op and the stage is skipped entirely.
const SharpenEpsilon = 1e-3

// Sharpener applies contrast-adaptive sharpening. Per pixel it samples
// the 3x3 neighborhood, derives the local contrast from the neighborhood
// min/max, scales it by the user intensity and subtracts a weighted sum
// of the four axis-neighbors from the center sample, clamped to the
// valid color range.
type Sharpener struct{}

// Name returns the stage name.
func (*Sharpener) Name() string { return "sharpen" }

// OutputSize is identity: sharpening never resizes.
func (*Sharpener) OutputSize(srcW, srcH int, _ *Constants) (int, int) {
	return srcW, srcH
}

// Process runs the sharpening pass. Intensity below SharpenEpsilon copies
// the source unmodified.
func (*Sharpener) Process(dst, src, _ *image.Image, c *Constants) error {
	if err := checkSameSize(dst, src); err != nil {
		return err
	}

	intensity := c.SharpenIntensity
	if intensity < SharpenEpsilon {
		return dst.CopyFrom(src)
	}
	if intensity > 1 {
		intensity = 1
	}

	w, h := src.Bounds()
	for y := 0; y < h; y++ {
		for x := 0; x < w; x++ {
			sharpenPixel(dst, src, x, y, w, h, intensity)
		}
	}
	return nil
}

// sharpenPixel computes one output pixel of the contrast-adaptive pass.
func sharpenPixel(dst, src *image.Image, x, y, w, h int, intensity float64) {
	xm := clampInt2(x-1, 0, w-1)
	xp := clampInt2(x+1, 0, w-1)
	ym := clampInt2(y-1, 0, h-1)
	yp := clampInt2(y+1, 0, h-1)

	var rs, gs, bs [5]float64 // center + 4 axis neighbors
	var rMin, gMin, bMin = 255.0, 255.0, 255.0
	var rMax, gMax, bMax float64

	coords := [5][2]int{{x, y}, {xm, y}, {xp, y}, {x, ym}, {x, yp}}
	for i, p := range coords {
		r, g, b, _ := src.GetRGBA(p[0], p[1])
		rs[i], gs[i], bs[i] = float64(r), float64(g), float64(b)
	}
	// Local min/max over the full 3x3 neighborhood.
	for dy := -1; dy <= 1; dy++ {
		for dx := -1; dx <= 1; dx++ {
			r, g, b, _ := src.GetRGBA(clampInt2(x+dx, 0, w-1), clampInt2(y+dy, 0, h-1))
			rMin, rMax = minMax(float64(r), rMin, rMax)
			gMin, gMax = minMax(float64(g), gMin, gMax)
			bMin, bMax = minMax(float64(b), bMin, bMax)
		}
	}

	_, _, _, a := src.GetRGBA(x, y)
	_ = dst.SetRGBA(x, y,
		casChannel(rs, rMin, rMax, intensity),
		casChannel(gs, gMin, gMax, intensity),
		casChannel(bs, bMin, bMax, intensity),
		a)
}

// casChannel sharpens a single channel. s[0] is the center sample,
// s[1..4] the four axis neighbors.
func casChannel(s [5]float64, lo, hi, intensity float64) uint8 {
	// Contrast-adaptive weight: strong edges (large local range) get a
	// smaller kernel weight so they do not ring.
	headroom := minf(lo, 255-hi)
	contrast := headroom / 255.0
	if contrast < 0 {
		contrast = 0
	}

	// Developer-tuned kernel strength range, scaled by user intensity.
	// At intensity 1 the peak weight is -0.2, easing to -0.125.
	peak := -(0.125 + 0.075*intensity)
	weight := peak * contrast

	total := s[0] + weight*(s[1]+s[2]+s[3]+s[4])
	norm := 1 + 4*weight
	if norm <= 0 {
		return image.Clamp8(s[0])
	}
	return image.Clamp8(total / norm)
}

func minMax(v, lo, hi float64) (float64, float64) {
	if v < lo {
		lo = v
	}
	if v > hi {
		hi = v
	}
	return lo, hi
}

func minf(a, b float64) float64 {
	if a < b {
		return a
	}
	return b
}
