package templates

import (
	"errors"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"

	"gopkg.in/yaml.v3"
)

// ManifestNames are the file names checked, in order, for a manifest
var ManifestNames = []string{"templates.yaml", "templates.yml"}

// ManifestEntry adjusts how one template file is loaded
type ManifestEntry struct {
	File  string `yaml:"file"`
	Label string `yaml:"label,omitempty"` // overrides the file stem
	Skip  bool   `yaml:"skip,omitempty"`
}

// Manifest represents the structure of a templates.yaml file
type Manifest struct {
	Templates []ManifestEntry `yaml:"templates"`
}

// readManifest returns the manifest in dir, or an empty one if none exists
func readManifest(dir string) (*Manifest, error) {
	for _, name := range ManifestNames {
		path := filepath.Join(dir, name)
		data, err := os.ReadFile(path)
		if errors.Is(err, fs.ErrNotExist) {
			continue
		}
		if err != nil {
			return nil, fmt.Errorf("failed to read manifest %s: %w", path, err)
		}

		var manifest Manifest
		if err := yaml.Unmarshal(data, &manifest); err != nil {
			return nil, fmt.Errorf("failed to unmarshal manifest %s: %w", path, err)
		}
		for i, entry := range manifest.Templates {
			if entry.File == "" {
				return nil, fmt.Errorf("manifest entry %d: file cannot be empty", i+1)
			}
		}
		return &manifest, nil
	}
	return &Manifest{}, nil
}

// lookup returns the entry for a file name
func (m *Manifest) lookup(file string) (ManifestEntry, bool) {
	for _, entry := range m.Templates {
		if entry.File == file {
			return entry, true
		}
	}
	return ManifestEntry{}, false
}
