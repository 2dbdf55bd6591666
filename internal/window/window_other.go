//go:build !windows

package window

import (
	"errors"
	"fmt"
	"runtime"
)

func listWindows() ([]Candidate, error) {
	return nil, fmt.Errorf("window enumeration on %s: %w", runtime.GOOS, errors.ErrUnsupported)
}

// Activate brings the window to the foreground
func Activate(g Geometry) error {
	return fmt.Errorf("window activation on %s: %w", runtime.GOOS, errors.ErrUnsupported)
}
