package image

import "sync"

// DefaultMaxPerBucket is the default number of retired images retained
// per (width, height, format) bucket.
const DefaultMaxPerBucket = 4

// Pool is a pool for reusing Image instances between pipeline passes.
//
// Pool groups images by (width, height, format), allowing identically-sized
// intermediates to be recycled instead of reallocated every frame. Retired
// images beyond the per-bucket bound are discarded so memory growth stays
// capped when the working resolution changes.
//
// Thread safety: all methods are safe for concurrent use, although inside
// the pipeline the pool is only touched from the sequencing goroutine.
type Pool struct {
	mu      sync.Mutex
	buckets map[poolKey][]*Image
	maxSize int // max images per bucket
}

// poolKey identifies a bucket of identical image specifications.
type poolKey struct {
	width  int
	height int
	format Format
}

// NewPool creates a new image pool with the given maximum images per bucket.
// A maxPerBucket of 0 or less uses DefaultMaxPerBucket.
func NewPool(maxPerBucket int) *Pool {
	if maxPerBucket <= 0 {
		maxPerBucket = DefaultMaxPerBucket
	}
	return &Pool{
		buckets: make(map[poolKey][]*Image),
		maxSize: maxPerBucket,
	}
}

// Acquire retrieves an image from the pool or allocates a new one.
// The returned image has the requested dimensions, format and usage, and
// is safe for write-first stages: recycled images are cleared before reuse.
// Returns an error only for invalid dimensions or format.
func (p *Pool) Acquire(width, height int, format Format, usage Usage) (*Image, error) {
	key := poolKey{width: width, height: height, format: format}

	p.mu.Lock()
	bucket := p.buckets[key]
	if n := len(bucket); n > 0 {
		img := bucket[n-1]
		p.buckets[key] = bucket[:n-1]
		p.mu.Unlock()

		img.Clear()
		img.usage = usage
		img.residency = ResidentHost
		return img, nil
	}
	p.mu.Unlock()

	img, err := New(width, height, format, usage)
	if err != nil {
		return nil, err
	}
	img.pooled = true
	return img, nil
}

// Release returns an image to the pool for reuse.
// Images that did not come from a pool are ignored, so callers may hand
// back whatever reached the end of a stage chain. If the bucket is at
// capacity, the image is discarded.
func (p *Pool) Release(img *Image) {
	if img == nil || !img.pooled {
		return
	}

	key := poolKey{width: img.width, height: img.height, format: img.format}

	p.mu.Lock()
	defer p.mu.Unlock()

	bucket := p.buckets[key]
	if len(bucket) >= p.maxSize {
		return
	}
	p.buckets[key] = append(bucket, img)
}

// Drain discards all retired images. Called when the engine resets after
// a stop or a window-lost condition.
func (p *Pool) Drain() {
	p.mu.Lock()
	defer p.mu.Unlock()
	p.buckets = make(map[poolKey][]*Image)
}

// Len returns the total number of retired images currently held.
func (p *Pool) Len() int {
	p.mu.Lock()
	defer p.mu.Unlock()
	n := 0
	for _, bucket := range p.buckets {
		n += len(bucket)
	}
	return n
}
