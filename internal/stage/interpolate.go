package stage

import "github.com/gogpu/glide/image"

// Default block-matching parameters, applied when the constants block
// carries zero values.
const (
	DefaultMotionBlockSize    = 16
	DefaultMotionSearchRadius = 4
)

// Interpolator produces a temporally blended frame between the previous
// frame P (aux) and the current frame C (src) at position t in (0,1).
//
// Two algorithms are available. When motion compensation is enabled, a
// block-matching motion field is estimated in a single full-frame pass
// and both frames are sampled along the displaced coordinate before
// blending. Otherwise, or whenever no motion field can be produced, a
// per-pixel linear blend is used; this path is always available.
type Interpolator struct{}

// Name returns the stage name.
func (*Interpolator) Name() string { return "interpolate" }

// OutputSize is identity: interpolation never resizes.
func (*Interpolator) OutputSize(srcW, srcH int, _ *Constants) (int, int) {
	return srcW, srcH
}

// Process writes the blended frame into dst. aux is the previous frame;
// ErrMissingPrevious is returned when it is absent (first frame of a
// session) and the orchestrator passes the current frame through.
func (k *Interpolator) Process(dst, src, aux *image.Image, c *Constants) error {
	if err := checkSameSize(dst, src); err != nil {
		return err
	}
	if aux == nil {
		return ErrMissingPrevious
	}
	if aux.Width() != src.Width() || aux.Height() != src.Height() {
		return ErrSizeMismatch
	}

	if c.MotionEnabled {
		return k.motionBlend(dst, src, aux, c)
	}
	return k.simpleBlend(dst, src, aux, c.BlendT)
}

// simpleBlend is the per-pixel lerp(P, C, t) path.
func (*Interpolator) simpleBlend(dst, cur, prev *image.Image, t float64) error {
	w, h := cur.Bounds()
	for y := 0; y < h; y++ {
		for x := 0; x < w; x++ {
			pr, pg, pb, pa := prev.GetRGBA(x, y)
			cr, cg, cb, ca := cur.GetRGBA(x, y)
			_ = dst.SetRGBA(x, y,
				image.Lerp8(pr, cr, t),
				image.Lerp8(pg, cg, t),
				image.Lerp8(pb, cb, t),
				image.Lerp8(pa, ca, t))
		}
	}
	return nil
}

// motionBlend estimates a motion field and samples both frames along the
// displaced coordinate with weight t.
func (k *Interpolator) motionBlend(dst, cur, prev *image.Image, c *Constants) error {
	blockSize := c.MotionBlockSize
	if blockSize <= 0 {
		blockSize = DefaultMotionBlockSize
	}
	radius := c.MotionSearchRadius
	if radius <= 0 {
		radius = DefaultMotionSearchRadius
	}

	prevLuma := newLumaPlane(prev)
	curLuma := newLumaPlane(cur)
	field := estimateMotion(prevLuma, curLuma, blockSize, radius)

	t := c.BlendT
	w, h := cur.Bounds()
	fw, fh := float64(w), float64(h)

	for y := 0; y < h; y++ {
		for x := 0; x < w; x++ {
			dx, dy := field.VectorAt(x, y)

			// A feature at p in the previous frame sits at p+d in the
			// current one, so the intermediate position x maps back to
			// x-t*d in the previous frame and forward to x+(1-t)*d in
			// the current frame.
			px := float64(x) - t*float64(dx)
			py := float64(y) - t*float64(dy)
			cx := float64(x) + (1-t)*float64(dx)
			cy := float64(y) + (1-t)*float64(dy)

			pr, pg, pb, pa := image.SampleBilinear(prev, (px+0.5)/fw, (py+0.5)/fh)
			cr, cg, cb, ca := image.SampleBilinear(cur, (cx+0.5)/fw, (cy+0.5)/fh)

			_ = dst.SetRGBA(x, y,
				image.Lerp8(pr, cr, t),
				image.Lerp8(pg, cg, t),
				image.Lerp8(pb, cb, t),
				image.Lerp8(pa, ca, t))
		}
	}
	return nil
}
