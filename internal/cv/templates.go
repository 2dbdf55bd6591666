package cv

import (
	"image"
)

// Template is a labeled grayscale reference patch
type Template struct {
	Label string
	Path  string
	Image *image.Gray
}

// NewTemplate converts img to grayscale and labels it
func NewTemplate(label string, img image.Image) (Template, error) {
	if img == nil || img.Bounds().Empty() {
		return Template{}, ErrInvalidImage
	}
	return Template{Label: label, Image: ToGray(img)}, nil
}

// WithPath records where the template was loaded from
func (t Template) WithPath(path string) Template {
	t.Path = path
	return t
}

// Width returns the patch width
func (t Template) Width() int {
	return t.Image.Bounds().Dx()
}

// Height returns the patch height
func (t Template) Height() int {
	return t.Image.Bounds().Dy()
}

// Flat reports whether every pixel of the patch has the same value. Such a
// patch carries no correlation signal and matches every placement.
func (t Template) Flat() bool {
	pix := t.Image.Pix
	if len(pix) == 0 {
		return true
	}
	b := t.Image.Bounds()
	first := pix[0]
	for y := 0; y < b.Dy(); y++ {
		for _, p := range pix[y*t.Image.Stride : y*t.Image.Stride+b.Dx()] {
			if p != first {
				return false
			}
		}
	}
	return true
}
