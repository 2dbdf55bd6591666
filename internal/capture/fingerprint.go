package capture

import (
	"fmt"
	"image"
	"sync"

	"github.com/corona10/goimagehash"
)

// Fingerprint returns the perceptual difference hash of a frame
func Fingerprint(img image.Image) (*goimagehash.ImageHash, error) {
	hash, err := goimagehash.DifferenceHash(img)
	if err != nil {
		return nil, fmt.Errorf("failed to hash frame: %w", err)
	}
	return hash, nil
}

// ChangeTracker remembers the previous frame's hash
type ChangeTracker struct {
	mu          sync.Mutex
	last        *goimagehash.ImageHash
	maxDistance int
}

// NewChangeTracker treats frames within maxDistance bits as unchanged
func NewChangeTracker(maxDistance int) *ChangeTracker {
	return &ChangeTracker{maxDistance: maxDistance}
}

// Observe hashes img, compares it with the previous frame, and stores it.
// The first frame is never reported as unchanged.
func (t *ChangeTracker) Observe(img image.Image) (hash string, unchanged bool, err error) {
	h, err := Fingerprint(img)
	if err != nil {
		return "", false, err
	}

	t.mu.Lock()
	defer t.mu.Unlock()

	if t.last != nil {
		if dist, err := t.last.Distance(h); err == nil && dist <= t.maxDistance {
			unchanged = true
		}
	}
	t.last = h
	return h.ToString(), unchanged, nil
}

// Reset forgets the previous frame
func (t *ChangeTracker) Reset() {
	t.mu.Lock()
	defer t.mu.Unlock()
	t.last = nil
}
