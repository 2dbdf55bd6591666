package templates

import (
	"fmt"
	"image"
	"os"
	"path/filepath"
	"strings"

	// Registered decoders for template files
	_ "image/jpeg"
	_ "image/png"

	_ "golang.org/x/image/bmp"
)

// supportedExtensions lists the image formats a template file may use
var supportedExtensions = map[string]bool{
	".png":  true,
	".bmp":  true,
	".jpg":  true,
	".jpeg": true,
}

func isImageFile(name string) bool {
	return supportedExtensions[strings.ToLower(filepath.Ext(name))]
}

// stem returns the file name without directory or extension
func stem(name string) string {
	base := filepath.Base(name)
	return strings.TrimSuffix(base, filepath.Ext(base))
}

func decodeFile(path string) (image.Image, error) {
	file, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("failed to open template %s: %w", path, err)
	}
	defer file.Close()

	img, format, err := image.Decode(file)
	if err != nil {
		return nil, fmt.Errorf("failed to decode template %s: %w", path, err)
	}
	if img.Bounds().Empty() {
		return nil, fmt.Errorf("template %s (%s) has no pixels", path, format)
	}
	return img, nil
}
