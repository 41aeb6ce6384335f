//go:build !nogpu

package gpu

import (
	"math"

	"github.com/gogpu/glide/image"
)

// CPU mirrors of the scale.wgsl filter paths. Kept in exact agreement
// with the shader so the GPU and CPU results are interchangeable.

// scalePerceptual resamples bilinearly in gamma-decoded (linear-light)
// space, matching the shader's mode 1.
func scalePerceptual(dst, src *image.Image) {
	w, h := dst.Bounds()
	sw, sh := src.Bounds()

	for y := 0; y < h; y++ {
		sy := (float64(y)+0.5)*float64(sh)/float64(h) - 0.5
		for x := 0; x < w; x++ {
			sx := (float64(x)+0.5)*float64(sw)/float64(w) - 0.5

			x0 := int(math.Floor(sx))
			y0 := int(math.Floor(sy))
			tx := sx - math.Floor(sx)
			ty := sy - math.Floor(sy)

			var acc [4]float64
			for j := 0; j <= 1; j++ {
				wy := 1 - ty
				if j == 1 {
					wy = ty
				}
				for i := 0; i <= 1; i++ {
					wx := 1 - tx
					if i == 1 {
						wx = tx
					}
					r, g, b, a := fetchClamped(src, x0+i, y0+j)
					weight := wx * wy
					acc[0] += decodeGamma(r) * weight
					acc[1] += decodeGamma(g) * weight
					acc[2] += decodeGamma(b) * weight
					acc[3] += float64(a) / 255 * weight
				}
			}

			_ = dst.SetRGBA(x, y,
				encodeGamma(acc[0]), encodeGamma(acc[1]), encodeGamma(acc[2]),
				image.Clamp8(acc[3]*255))
		}
	}
}

// scaleCatmull resamples with the Catmull-Rom kernel, matching the
// shader's mode 2.
func scaleCatmull(dst, src *image.Image) {
	w, h := dst.Bounds()
	sw, sh := src.Bounds()

	for y := 0; y < h; y++ {
		sy := (float64(y)+0.5)*float64(sh)/float64(h) - 0.5
		for x := 0; x < w; x++ {
			sx := (float64(x)+0.5)*float64(sw)/float64(w) - 0.5

			x1 := int(math.Floor(sx))
			y1 := int(math.Floor(sy))
			tx := sx - math.Floor(sx)
			ty := sy - math.Floor(sy)

			var acc [4]float64
			var norm float64
			for j := -1; j <= 2; j++ {
				wy := catmullWeight(float64(j) - ty)
				for i := -1; i <= 2; i++ {
					weight := catmullWeight(float64(i)-tx) * wy
					if weight == 0 {
						continue
					}
					r, g, b, a := fetchClamped(src, x1+i, y1+j)
					acc[0] += float64(r) * weight
					acc[1] += float64(g) * weight
					acc[2] += float64(b) * weight
					acc[3] += float64(a) * weight
					norm += weight
				}
			}

			_ = dst.SetRGBA(x, y,
				image.Clamp8(acc[0]/norm),
				image.Clamp8(acc[1]/norm),
				image.Clamp8(acc[2]/norm),
				image.Clamp8(acc[3]/norm))
		}
	}
}

func catmullWeight(t float64) float64 {
	a := math.Abs(t)
	switch {
	case a < 1:
		return 1.5*a*a*a - 2.5*a*a + 1
	case a < 2:
		return -0.5*a*a*a + 2.5*a*a - 4*a + 2
	default:
		return 0
	}
}

func fetchClamped(img *image.Image, x, y int) (r, g, b, a uint8) {
	w, h := img.Bounds()
	if x < 0 {
		x = 0
	} else if x >= w {
		x = w - 1
	}
	if y < 0 {
		y = 0
	} else if y >= h {
		y = h - 1
	}
	return img.GetRGBA(x, y)
}

func decodeGamma(v uint8) float64 {
	return math.Pow(float64(v)/255, 2.2)
}

func encodeGamma(v float64) uint8 {
	if v <= 0 {
		return 0
	}
	return image.Clamp8(math.Pow(v, 1/2.2) * 255)
}
