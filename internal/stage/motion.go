package stage

import "github.com/gogpu/glide/image"

// MotionField is a per-block motion estimate between two frames.
// Vectors point from the previous frame toward the current frame, one
// vector per BlockSize x BlockSize block in row-major order.
type MotionField struct {
	BlockSize int
	Cols      int
	Rows      int
	DX        []int16
	DY        []int16
}

// VectorAt returns the motion vector for the block containing pixel (x, y).
func (f *MotionField) VectorAt(x, y int) (dx, dy int) {
	bx := x / f.BlockSize
	by := y / f.BlockSize
	if bx >= f.Cols {
		bx = f.Cols - 1
	}
	if by >= f.Rows {
		by = f.Rows - 1
	}
	i := by*f.Cols + bx
	return int(f.DX[i]), int(f.DY[i])
}

// lumaPlane extracts the 0-255 luminance plane used for block matching.
type lumaPlane struct {
	pix    []uint8
	width  int
	height int
}

func newLumaPlane(img *image.Image) *lumaPlane {
	w, h := img.Bounds()
	p := &lumaPlane{pix: make([]uint8, w*h), width: w, height: h}
	for y := 0; y < h; y++ {
		for x := 0; x < w; x++ {
			p.pix[y*w+x] = img.Luma(x, y)
		}
	}
	return p
}

func (p *lumaPlane) at(x, y int) uint8 {
	if x < 0 {
		x = 0
	} else if x >= p.width {
		x = p.width - 1
	}
	if y < 0 {
		y = 0
	} else if y >= p.height {
		y = p.height - 1
	}
	return p.pix[y*p.width+x]
}

// sad computes the sum of absolute luminance differences between a block
// at (bx, by) in prev and the same block displaced by (dx, dy) in cur.
func sad(prev, cur *lumaPlane, bx, by, size, dx, dy int) int {
	total := 0
	for y := 0; y < size; y++ {
		for x := 0; x < size; x++ {
			a := int(prev.at(bx+x, by+y))
			b := int(cur.at(bx+x+dx, by+y+dy))
			d := a - b
			if d < 0 {
				d = -d
			}
			total += d
		}
	}
	return total
}

// estimateMotion runs one full-frame block-matching pass between the
// previous and current luminance planes. A full search over the
// (2r+1)^2 displacement window is used; zero displacement wins ties so
// static content produces a zero field.
func estimateMotion(prev, cur *lumaPlane, blockSize, radius int) *MotionField {
	cols := (prev.width + blockSize - 1) / blockSize
	rows := (prev.height + blockSize - 1) / blockSize

	field := &MotionField{
		BlockSize: blockSize,
		Cols:      cols,
		Rows:      rows,
		DX:        make([]int16, cols*rows),
		DY:        make([]int16, cols*rows),
	}

	for by := 0; by < rows; by++ {
		for bx := 0; bx < cols; bx++ {
			px := bx * blockSize
			py := by * blockSize

			best := sad(prev, cur, px, py, blockSize, 0, 0)
			bestDX, bestDY := 0, 0

			for dy := -radius; dy <= radius; dy++ {
				for dx := -radius; dx <= radius; dx++ {
					if dx == 0 && dy == 0 {
						continue
					}
					cost := sad(prev, cur, px, py, blockSize, dx, dy)
					if cost < best {
						best = cost
						bestDX, bestDY = dx, dy
					}
				}
			}

			i := by*cols + bx
			field.DX[i] = int16(bestDX)
			field.DY[i] = int16(bestDY)
		}
	}

	return field
}
