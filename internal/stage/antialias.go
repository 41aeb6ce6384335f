package stage

import "github.com/gogpu/glide/image"

// Default fast-edge parameters, applied when the constants block carries
// zero values.
const (
	DefaultEdgeThreshold = 0.0625 // 1/16 luminance range
	DefaultSubpixelLimit = 0.75
)

// FastEdgeAA reduces aliasing with a per-pixel luminance-contrast edge
// detector over the 3x3 neighborhood. Pixels whose local luminance range
// falls below the threshold are copied unmodified; pixels above it are
// blended toward the neighbor average along the detected edge direction,
// capped by the subpixel-blend limit.
type FastEdgeAA struct{}

// Name returns the stage name.
func (*FastEdgeAA) Name() string { return "antialias" }

// OutputSize is identity: anti-aliasing never resizes.
func (*FastEdgeAA) OutputSize(srcW, srcH int, _ *Constants) (int, int) {
	return srcW, srcH
}

// Process runs the fast-edge pass.
func (*FastEdgeAA) Process(dst, src, _ *image.Image, c *Constants) error {
	if err := checkSameSize(dst, src); err != nil {
		return err
	}

	threshold := c.EdgeThreshold
	if threshold <= 0 {
		threshold = DefaultEdgeThreshold
	}
	limit := c.SubpixelLimit
	if limit <= 0 {
		limit = DefaultSubpixelLimit
	}

	w, h := src.Bounds()
	for y := 0; y < h; y++ {
		for x := 0; x < w; x++ {
			// 3x3 luminance neighborhood, edge-clamped.
			lNW := lumaAt(src, x-1, y-1)
			lN := lumaAt(src, x, y-1)
			lNE := lumaAt(src, x+1, y-1)
			lW := lumaAt(src, x-1, y)
			lC := lumaAt(src, x, y)
			lE := lumaAt(src, x+1, y)
			lSW := lumaAt(src, x-1, y+1)
			lS := lumaAt(src, x, y+1)
			lSE := lumaAt(src, x+1, y+1)

			lMin := min9(lNW, lN, lNE, lW, lC, lE, lSW, lS, lSE)
			lMax := max9(lNW, lN, lNE, lW, lC, lE, lSW, lS, lSE)

			r, g, b, a := src.GetRGBA(x, y)
			localRange := (lMax - lMin) / 255.0
			if localRange < threshold {
				_ = dst.SetRGBA(x, y, r, g, b, a)
				continue
			}

			// Edge direction from luminance gradients: a stronger
			// horizontal gradient means a vertical edge, so blending
			// happens with the horizontal neighbors, and vice versa.
			gradH := abs1(lW+lE-2*lC) + 0.5*abs1(lNW+lNE-2*lN) + 0.5*abs1(lSW+lSE-2*lS)
			gradV := abs1(lN+lS-2*lC) + 0.5*abs1(lNW+lSW-2*lW) + 0.5*abs1(lNE+lSE-2*lE)

			var nx0, ny0, nx1, ny1 int
			var lA, lB float64
			if gradH >= gradV {
				nx0, ny0, nx1, ny1 = x-1, y, x+1, y
				lA, lB = lW, lE
			} else {
				nx0, ny0, nx1, ny1 = x, y-1, x, y+1
				lA, lB = lN, lS
			}

			// Weight the two along-edge neighbors by how close their
			// luminance is to the center; the blend amount scales with
			// local contrast, capped by the subpixel limit.
			wA := 1.0 / (1.0 + abs1(lA-lC)/255.0)
			wB := 1.0 / (1.0 + abs1(lB-lC)/255.0)

			r0, g0, b0, a0 := src.GetRGBA(clampInt2(nx0, 0, w-1), clampInt2(ny0, 0, h-1))
			r1, g1, b1, a1 := src.GetRGBA(clampInt2(nx1, 0, w-1), clampInt2(ny1, 0, h-1))

			nr := (float64(r0)*wA + float64(r1)*wB) / (wA + wB)
			ng := (float64(g0)*wA + float64(g1)*wB) / (wA + wB)
			nb := (float64(b0)*wA + float64(b1)*wB) / (wA + wB)
			na := (float64(a0)*wA + float64(a1)*wB) / (wA + wB)

			blend := localRange
			if blend > limit {
				blend = limit
			}

			_ = dst.SetRGBA(x, y,
				image.Clamp8(float64(r)+(nr-float64(r))*blend),
				image.Clamp8(float64(g)+(ng-float64(g))*blend),
				image.Clamp8(float64(b)+(nb-float64(b))*blend),
				image.Clamp8(float64(a)+(na-float64(a))*blend))
		}
	}
	return nil
}

func lumaAt(img *image.Image, x, y int) float64 {
	w, h := img.Bounds()
	return float64(img.Luma(clampInt2(x, 0, w-1), clampInt2(y, 0, h-1)))
}

func abs1(v float64) float64 {
	if v < 0 {
		return -v
	}
	return v
}

func clampInt2(v, lo, hi int) int {
	if v < lo {
		return lo
	}
	if v > hi {
		return hi
	}
	return v
}

func min9(vs ...float64) float64 {
	m := vs[0]
	for _, v := range vs[1:] {
		if v < m {
			m = v
		}
	}
	return m
}

func max9(vs ...float64) float64 {
	m := vs[0]
	for _, v := range vs[1:] {
		if v > m {
			m = v
		}
	}
	return m
}
