// Package templates loads the labeled glyph patches matched against each
// captured frame.
package templates

import (
	"fmt"
	"os"
	"path/filepath"
	"sort"

	"jordanella.com/tile-clicker-go/internal/cv"
	"jordanella.com/tile-clicker-go/internal/logging"
)

// LoadError means the template directory itself could not be used
type LoadError struct {
	Dir string
	Err error
}

func (e *LoadError) Error() string {
	return fmt.Sprintf("failed to load templates from %s: %v", e.Dir, e.Err)
}

func (e *LoadError) Unwrap() error {
	return e.Err
}

// Library is an immutable set of templates keyed by label
type Library struct {
	dir       string
	templates []cv.Template // sorted by label
	byLabel   map[string]int
}

// Loader reads a template directory
type Loader struct {
	dir    string
	logger *logging.Logger
}

// NewLoader creates a loader for dir
func NewLoader(dir string) *Loader {
	return &Loader{dir: dir}
}

// WithLogger sets the logger used for skipped-entry warnings
func (l *Loader) WithLogger(logger *logging.Logger) *Loader {
	l.logger = logger
	return l
}

// Load reads every template in dir
func Load(dir string) (*Library, error) {
	return NewLoader(dir).Load()
}

// Load reads every image file in the directory. The label is the file stem
// unless the manifest overrides it. Unreadable, duplicate or flat entries are
// skipped with a warning; only an unusable directory or manifest fails.
func (l *Loader) Load() (*Library, error) {
	logger := l.logger
	if logger == nil {
		logger = logging.NewLogger("Templates")
	}

	entries, err := os.ReadDir(l.dir)
	if err != nil {
		return nil, &LoadError{Dir: l.dir, Err: err}
	}

	manifest, err := readManifest(l.dir)
	if err != nil {
		return nil, &LoadError{Dir: l.dir, Err: err}
	}

	lib := &Library{dir: l.dir, byLabel: make(map[string]int)}

	// os.ReadDir returns entries sorted by file name
	for _, entry := range entries {
		if entry.IsDir() || !isImageFile(entry.Name()) {
			continue
		}

		label := stem(entry.Name())
		if override, ok := manifest.lookup(entry.Name()); ok {
			if override.Skip {
				logger.DebugWithContext("Template skipped by manifest", map[string]interface{}{"file": entry.Name()})
				continue
			}
			if override.Label != "" {
				label = override.Label
			}
		}

		path := filepath.Join(l.dir, entry.Name())
		ctx := map[string]interface{}{"file": entry.Name(), "label": label}

		if _, exists := lib.byLabel[label]; exists {
			logger.WarnWithContext("Duplicate template label, keeping first", ctx)
			continue
		}

		img, err := decodeFile(path)
		if err != nil {
			ctx["error"] = err.Error()
			logger.WarnWithContext("Skipping unreadable template", ctx)
			continue
		}

		tmpl, err := cv.NewTemplate(label, img)
		if err != nil {
			ctx["error"] = err.Error()
			logger.WarnWithContext("Skipping unusable template", ctx)
			continue
		}
		if tmpl.Flat() {
			logger.WarnWithContext("Skipping template with uniform pixels", ctx)
			continue
		}

		lib.byLabel[label] = len(lib.templates)
		lib.templates = append(lib.templates, tmpl.WithPath(path))
	}

	sort.SliceStable(lib.templates, func(i, j int) bool {
		return lib.templates[i].Label < lib.templates[j].Label
	})
	for i, tmpl := range lib.templates {
		lib.byLabel[tmpl.Label] = i
	}

	if len(lib.templates) == 0 {
		logger.WarnWithContext("No templates loaded", map[string]interface{}{"dir": l.dir})
	} else {
		logger.InfoWithContext("Templates loaded", map[string]interface{}{
			"dir":    l.dir,
			"count":  len(lib.templates),
			"labels": lib.Labels(),
		})
	}
	return lib, nil
}

// NewLibrary builds a library from already decoded templates
func NewLibrary(templates ...cv.Template) (*Library, error) {
	lib := &Library{byLabel: make(map[string]int)}
	for _, tmpl := range templates {
		if tmpl.Label == "" {
			return nil, fmt.Errorf("template label cannot be empty")
		}
		if _, exists := lib.byLabel[tmpl.Label]; exists {
			return nil, fmt.Errorf("duplicate template label %q", tmpl.Label)
		}
		lib.byLabel[tmpl.Label] = len(lib.templates)
		lib.templates = append(lib.templates, tmpl)
	}
	sort.SliceStable(lib.templates, func(i, j int) bool {
		return lib.templates[i].Label < lib.templates[j].Label
	})
	for i, tmpl := range lib.templates {
		lib.byLabel[tmpl.Label] = i
	}
	return lib, nil
}

// Dir returns the directory the library was loaded from
func (lib *Library) Dir() string {
	return lib.dir
}

// Len returns the number of templates
func (lib *Library) Len() int {
	return len(lib.templates)
}

// Labels returns all labels in sorted order
func (lib *Library) Labels() []string {
	labels := make([]string, len(lib.templates))
	for i, tmpl := range lib.templates {
		labels[i] = tmpl.Label
	}
	return labels
}

// Get retrieves a template by label
func (lib *Library) Get(label string) (cv.Template, bool) {
	i, ok := lib.byLabel[label]
	if !ok {
		return cv.Template{}, false
	}
	return lib.templates[i], true
}

// Templates returns the templates in label order. The slice is a copy; the
// pixel data is shared and must not be modified.
func (lib *Library) Templates() []cv.Template {
	out := make([]cv.Template, len(lib.templates))
	copy(out, lib.templates)
	return out
}
