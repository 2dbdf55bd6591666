package cv

import (
	"image"

	"jordanella.com/tile-clicker-go/internal/logging"
)

// DefaultProximity is the per-axis distance below which two candidates are
// treated as the same tile
const DefaultProximity = 5

// Detection is a matched template instance in frame-local coordinates
type Detection struct {
	Label      string
	X, Y       int
	Width      int
	Height     int
	Confidence float64
}

// Center returns the tile center, truncating odd sizes toward the top-left
func (d Detection) Center() image.Point {
	return image.Point{X: d.X + d.Width/2, Y: d.Y + d.Height/2}
}

// Detector finds tiles in a frame. The zero value uses threshold 0 and
// DefaultProximity.
type Detector struct {
	Threshold float64
	Proximity int
	Logger    *logging.Logger
}

// NewDetector creates a detector with the given threshold and proximity
func NewDetector(threshold float64, proximity int, logger *logging.Logger) *Detector {
	return &Detector{Threshold: threshold, Proximity: proximity, Logger: logger}
}

// Detect matches every template against frame and returns deduplicated
// detections. Candidates are pooled in template order, then scan order.
func (d *Detector) Detect(frame image.Image, templates []Template) []Detection {
	gray := ToGray(frame)
	var candidates []Detection

	for _, tmpl := range templates {
		if tmpl.Image == nil {
			continue
		}
		matches := MatchAll(gray, tmpl.Image, d.Threshold)
		if matches == nil && (tmpl.Width() > gray.Rect.Dx() || tmpl.Height() > gray.Rect.Dy()) {
			if d.Logger != nil {
				d.Logger.DebugWithContext("Template larger than frame, skipped", map[string]interface{}{
					"label": tmpl.Label,
					"size":  tmpl.Image.Bounds().Size().String(),
					"frame": gray.Rect.Size().String(),
				})
			}
			continue
		}
		for _, m := range matches {
			candidates = append(candidates, Detection{
				Label:      tmpl.Label,
				X:          m.Location.X,
				Y:          m.Location.Y,
				Width:      tmpl.Width(),
				Height:     tmpl.Height(),
				Confidence: m.Confidence,
			})
		}
	}

	proximity := d.Proximity
	if proximity <= 0 {
		proximity = DefaultProximity
	}
	detections := Deduplicate(candidates, proximity)

	if d.Logger != nil {
		d.Logger.DebugWithContext("Detection complete", map[string]interface{}{
			"candidates": len(candidates),
			"detections": len(detections),
		})
	}
	return detections
}

// Detect runs a Detector with DefaultProximity
func Detect(frame image.Image, templates []Template, threshold float64) []Detection {
	d := Detector{Threshold: threshold, Proximity: DefaultProximity}
	return d.Detect(frame, templates)
}

// Deduplicate keeps each candidate unless both |dx| and |dy| against some
// already accepted candidate are below proximity. The earliest candidate wins.
func Deduplicate(candidates []Detection, proximity int) []Detection {
	accepted := make([]Detection, 0, len(candidates))
	for _, c := range candidates {
		duplicate := false
		for _, a := range accepted {
			if abs(c.X-a.X) < proximity && abs(c.Y-a.Y) < proximity {
				duplicate = true
				break
			}
		}
		if !duplicate {
			accepted = append(accepted, c)
		}
	}
	return accepted
}

func abs(x int) int {
	if x < 0 {
		return -x
	}
	return x
}
