package stage

import (
	"bytes"
	"errors"
	"testing"
)

func TestFastEdgeAAOutputSize(t *testing.T) {
	k := &FastEdgeAA{}
	w, h := k.OutputSize(100, 50, &Constants{})
	if w != 100 || h != 50 {
		t.Errorf("OutputSize = %dx%d, want 100x50", w, h)
	}
}

// Flat regions fall below the edge threshold and pass through untouched.
func TestFastEdgeAAFlatPassThrough(t *testing.T) {
	src := newFrame(t, 16, 16, 120, 130, 140)
	dst := newFrame(t, 16, 16, 0, 0, 0)

	k := &FastEdgeAA{}
	if err := k.Process(dst, src, nil, &Constants{}); err != nil {
		t.Fatalf("Process failed: %v", err)
	}
	if !bytes.Equal(dst.Data(), src.Data()) {
		t.Error("flat image should pass through unmodified")
	}
}

// A hard vertical edge gets softened: pixels adjacent to the edge move
// toward their along-edge neighbors.
func TestFastEdgeAASoftensEdge(t *testing.T) {
	const w, h = 16, 16
	src := newFrame(t, w, h, 0, 0, 0)
	for y := 0; y < h; y++ {
		for x := w / 2; x < w; x++ {
			src.SetRGBA(x, y, 255, 255, 255, 255)
		}
	}
	dst := newFrame(t, w, h, 0, 0, 0)

	k := &FastEdgeAA{}
	if err := k.Process(dst, src, nil, &Constants{}); err != nil {
		t.Fatalf("Process failed: %v", err)
	}

	// The dark pixel touching the edge should brighten, the bright one
	// should darken; pixels far from the edge stay put.
	if dst.Luma(w/2-1, h/2) == 0 {
		t.Error("dark edge pixel was not blended")
	}
	if dst.Luma(w/2, h/2) == 255 {
		t.Error("bright edge pixel was not blended")
	}
	if dst.Luma(1, h/2) != 0 || dst.Luma(w-2, h/2) != 255 {
		t.Error("pixels away from the edge should be untouched")
	}
}

// The subpixel limit caps how far an edge pixel can move.
func TestFastEdgeAASubpixelLimit(t *testing.T) {
	const w, h = 16, 16
	srcA := newFrame(t, w, h, 0, 0, 0)
	srcB := newFrame(t, w, h, 0, 0, 0)
	for y := 0; y < h; y++ {
		for x := w / 2; x < w; x++ {
			srcA.SetRGBA(x, y, 255, 255, 255, 255)
			srcB.SetRGBA(x, y, 255, 255, 255, 255)
		}
	}
	strong := newFrame(t, w, h, 0, 0, 0)
	weak := newFrame(t, w, h, 0, 0, 0)

	k := &FastEdgeAA{}
	if err := k.Process(strong, srcA, nil, &Constants{SubpixelLimit: 0.75}); err != nil {
		t.Fatalf("Process failed: %v", err)
	}
	if err := k.Process(weak, srcB, nil, &Constants{SubpixelLimit: 0.25}); err != nil {
		t.Fatalf("Process failed: %v", err)
	}

	// A tighter limit moves the dark edge pixel less.
	if weak.Luma(w/2-1, h/2) >= strong.Luma(w/2-1, h/2) {
		t.Errorf("limit 0.25 blended %d, limit 0.75 blended %d; want less",
			weak.Luma(w/2-1, h/2), strong.Luma(w/2-1, h/2))
	}
}

// A threshold above the local contrast disables the pass.
func TestFastEdgeAAThresholdGate(t *testing.T) {
	const w, h = 8, 8
	src := newFrame(t, w, h, 100, 100, 100)
	// Gentle texture well below a 0.9 threshold.
	for y := 0; y < h; y++ {
		for x := 0; x < w; x++ {
			if (x+y)%2 == 0 {
				src.SetRGBA(x, y, 110, 110, 110, 255)
			}
		}
	}
	dst := newFrame(t, w, h, 0, 0, 0)

	k := &FastEdgeAA{}
	if err := k.Process(dst, src, nil, &Constants{EdgeThreshold: 0.9}); err != nil {
		t.Fatalf("Process failed: %v", err)
	}
	if !bytes.Equal(dst.Data(), src.Data()) {
		t.Error("sub-threshold contrast should pass through unmodified")
	}
}

func TestFastEdgeAAErrors(t *testing.T) {
	k := &FastEdgeAA{}
	src := newFrame(t, 8, 8, 0, 0, 0)
	small := newFrame(t, 4, 4, 0, 0, 0)
	if err := k.Process(nil, src, nil, &Constants{}); !errors.Is(err, ErrNilImage) {
		t.Errorf("expected ErrNilImage, got %v", err)
	}
	if err := k.Process(small, src, nil, &Constants{}); !errors.Is(err, ErrSizeMismatch) {
		t.Errorf("expected ErrSizeMismatch, got %v", err)
	}
}
