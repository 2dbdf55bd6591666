// Package capture grabs screen pixels for the target window.
package capture

import (
	"errors"
	"fmt"
	"image"

	"github.com/vova616/screenshot"
)

// CaptureError reports a failed screen grab
type CaptureError struct {
	Rect image.Rectangle
	Err  error
}

func (e *CaptureError) Error() string {
	return fmt.Sprintf("capture of %v failed: %v", e.Rect, e.Err)
}

func (e *CaptureError) Unwrap() error {
	return e.Err
}

// IsCaptureError reports whether err is or wraps a CaptureError
func IsCaptureError(err error) bool {
	var ce *CaptureError
	return errors.As(err, &ce)
}

// Capturer returns the pixels of a screen rectangle
type Capturer interface {
	Capture(rect image.Rectangle) (*image.RGBA, error)
}

// CapturerFunc adapts a function to Capturer
type CapturerFunc func(rect image.Rectangle) (*image.RGBA, error)

func (f CapturerFunc) Capture(rect image.Rectangle) (*image.RGBA, error) {
	return f(rect)
}

// ScreenCapturer grabs pixels from the desktop
type ScreenCapturer struct {
	grab func(image.Rectangle) (*image.RGBA, error)
}

// NewScreenCapturer creates a capturer backed by the OS screen
func NewScreenCapturer() *ScreenCapturer {
	return &ScreenCapturer{grab: screenshot.CaptureRect}
}

// Capture returns rect as an RGBA image whose bounds start at (0, 0)
func (c *ScreenCapturer) Capture(rect image.Rectangle) (*image.RGBA, error) {
	if rect.Empty() {
		return nil, &CaptureError{Rect: rect, Err: errors.New("empty rectangle")}
	}

	img, err := c.grab(rect)
	if err != nil {
		return nil, &CaptureError{Rect: rect, Err: err}
	}
	if img == nil || img.Bounds().Dx() != rect.Dx() || img.Bounds().Dy() != rect.Dy() {
		var got image.Rectangle
		if img != nil {
			got = img.Bounds()
		}
		return nil, &CaptureError{Rect: rect, Err: fmt.Errorf("unexpected frame size %v", got.Size())}
	}
	if img.Bounds().Min != (image.Point{}) {
		rebased := image.NewRGBA(image.Rect(0, 0, rect.Dx(), rect.Dy()))
		for y := 0; y < rect.Dy(); y++ {
			src := img.PixOffset(img.Bounds().Min.X, img.Bounds().Min.Y+y)
			copy(rebased.Pix[y*rebased.Stride:y*rebased.Stride+rect.Dx()*4], img.Pix[src:src+rect.Dx()*4])
		}
		img = rebased
	}
	return img, nil
}
