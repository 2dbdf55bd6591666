// Package window finds the target application window on screen.
package window

import (
	"errors"
	"fmt"
	"image"
	"strings"
)

// ErrNotFound matches every NotFoundError through errors.Is
var ErrNotFound = errors.New("window not found")

// NotFoundError reports that no visible window matched a title
type NotFoundError struct {
	Title string
}

func (e *NotFoundError) Error() string {
	return fmt.Sprintf("window not found: %q", e.Title)
}

func (e *NotFoundError) Is(target error) bool {
	return target == ErrNotFound
}

// IsNotFound reports whether err is or wraps a NotFoundError
func IsNotFound(err error) bool {
	var nf *NotFoundError
	return errors.As(err, &nf)
}

// Geometry is the screen rectangle of a window plus its native handle
type Geometry struct {
	Left   int
	Top    int
	Width  int
	Height int
	Title  string
	Handle uintptr
}

// Origin returns the top-left corner in screen coordinates
func (g Geometry) Origin() image.Point {
	return image.Point{X: g.Left, Y: g.Top}
}

// Rect returns the window bounds in screen coordinates
func (g Geometry) Rect() image.Rectangle {
	return image.Rect(g.Left, g.Top, g.Left+g.Width, g.Top+g.Height)
}

// Center returns the window center relative to its origin
func (g Geometry) Center() image.Point {
	return image.Point{X: g.Width / 2, Y: g.Height / 2}
}

func (g Geometry) String() string {
	return fmt.Sprintf("%q at (%d,%d) %dx%d", g.Title, g.Left, g.Top, g.Width, g.Height)
}

// Locator queries window geometry by title
type Locator interface {
	Locate(title string) (Geometry, error)
}

// LocatorFunc adapts a function to Locator
type LocatorFunc func(title string) (Geometry, error)

func (f LocatorFunc) Locate(title string) (Geometry, error) {
	return f(title)
}

// Candidate is a visible top-level window as reported by the platform
type Candidate struct {
	Title  string
	Handle uintptr
	Rect   image.Rectangle
}

// Match picks the first candidate whose title contains pattern, ignoring
// case. Windows with an empty rectangle are passed over.
func Match(candidates []Candidate, pattern string) (Geometry, error) {
	needle := strings.ToUpper(pattern)
	for _, c := range candidates {
		if !strings.Contains(strings.ToUpper(c.Title), needle) {
			continue
		}
		if c.Rect.Empty() {
			continue
		}
		return Geometry{
			Left:   c.Rect.Min.X,
			Top:    c.Rect.Min.Y,
			Width:  c.Rect.Dx(),
			Height: c.Rect.Dy(),
			Title:  c.Title,
			Handle: c.Handle,
		}, nil
	}
	return Geometry{}, &NotFoundError{Title: pattern}
}

// SystemLocator locates windows through the operating system
type SystemLocator struct {
	enumerate func() ([]Candidate, error)
}

// NewLocator returns the platform locator
func NewLocator() *SystemLocator {
	return &SystemLocator{enumerate: listWindows}
}

// Locate returns the geometry of the first visible window matching title
func (l *SystemLocator) Locate(title string) (Geometry, error) {
	if strings.TrimSpace(title) == "" {
		return Geometry{}, &NotFoundError{Title: title}
	}
	candidates, err := l.enumerate()
	if err != nil {
		return Geometry{}, fmt.Errorf("failed to enumerate windows: %w", err)
	}
	return Match(candidates, title)
}

// List returns every visible titled window
func (l *SystemLocator) List() ([]Candidate, error) {
	return l.enumerate()
}
