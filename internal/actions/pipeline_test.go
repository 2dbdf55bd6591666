package actions

import (
	"image"
	"image/color"
	"image/png"
	"math/rand"
	"os"
	"path/filepath"
	"testing"

	"jordanella.com/tile-clicker-go/internal/cv"
	"jordanella.com/tile-clicker-go/internal/logging"
	"jordanella.com/tile-clicker-go/pkg/templates"
)

const tileSize = 16

func randomTile(seed int64) *image.Gray {
	rng := rand.New(rand.NewSource(seed))
	g := image.NewGray(image.Rect(0, 0, tileSize, tileSize))
	for i := range g.Pix {
		g.Pix[i] = uint8(rng.Intn(256))
	}
	return g
}

// periodicTile repeats three random columns, so copies shifted by three
// pixels horizontally overlap without conflict
func periodicTile(seed int64) *image.Gray {
	rng := rand.New(rand.NewSource(seed))
	var base [3][tileSize]uint8
	for c := range base {
		for y := range base[c] {
			base[c][y] = uint8(rng.Intn(256))
		}
	}
	g := image.NewGray(image.Rect(0, 0, tileSize, tileSize))
	for y := 0; y < tileSize; y++ {
		for x := 0; x < tileSize; x++ {
			g.SetGray(x, y, color.Gray{Y: base[x%3][y]})
		}
	}
	return g
}

func pasteGray(dst *image.RGBA, src *image.Gray, at image.Point) {
	for y := 0; y < tileSize; y++ {
		for x := 0; x < tileSize; x++ {
			v := src.GrayAt(x, y).Y
			dst.SetRGBA(at.X+x, at.Y+y, color.RGBA{R: v, G: v, B: v, A: 255})
		}
	}
}

func TestDetectScheduleExecutePipeline(t *testing.T) {
	tiles := map[string]*image.Gray{
		"1": randomTile(11),
		"2": randomTile(22),
		"3": randomTile(33),
		"4": periodicTile(44),
		"5": randomTile(55),
	}

	dir := t.TempDir()
	for label, img := range tiles {
		f, err := os.Create(filepath.Join(dir, label+".png"))
		if err != nil {
			t.Fatal(err)
		}
		if err := png.Encode(f, img); err != nil {
			t.Fatal(err)
		}
		f.Close()
	}

	lib, err := templates.NewLoader(dir).WithLogger(logging.NewDiscardLogger("Templates")).Load()
	if err != nil {
		t.Fatalf("Failed to load templates: %v", err)
	}
	if lib.Len() != 5 {
		t.Fatalf("Expected 5 templates, got %d", lib.Len())
	}

	frame := image.NewRGBA(image.Rect(0, 0, 200, 80))
	for i := 3; i < len(frame.Pix); i += 4 {
		frame.Pix[i] = 255
	}
	pasteGray(frame, tiles["1"], image.Point{X: 10, Y: 10})
	pasteGray(frame, tiles["2"], image.Point{X: 60, Y: 40})
	pasteGray(frame, tiles["3"], image.Point{X: 120, Y: 15})
	pasteGray(frame, tiles["4"], image.Point{X: 160, Y: 50})
	pasteGray(frame, tiles["4"], image.Point{X: 163, Y: 50})

	tmpl4, _ := lib.Get("4")
	if raw := cv.MatchAll(cv.ToGray(frame), tmpl4.Image, 0.9); len(raw) != 2 {
		t.Fatalf("Expected two raw candidates for the overlapping pair, got %d", len(raw))
	}

	detector := cv.NewDetector(0.9, cv.DefaultProximity, nil)
	detections := detector.Detect(frame, lib.Templates())

	if len(detections) != 4 {
		t.Fatalf("Expected 4 detections, got %d: %+v", len(detections), detections)
	}
	wantDetections := []cv.Detection{
		{Label: "1", X: 10, Y: 10},
		{Label: "2", X: 60, Y: 40},
		{Label: "3", X: 120, Y: 15},
		{Label: "4", X: 160, Y: 50},
	}
	for i, want := range wantDetections {
		got := detections[i]
		if got.Label != want.Label || got.X != want.X || got.Y != want.Y {
			t.Errorf("Detection %d: expected %s@(%d,%d), got %s@(%d,%d)",
				i, want.Label, want.X, want.Y, got.Label, got.X, got.Y)
		}
	}

	origin := image.Point{X: 300, Y: 200}
	offset := image.Point{X: 2, Y: -1}
	commands := Schedule(detections, origin, offset)

	wantCommands := []ClickCommand{
		{Label: "4", X: 470, Y: 257},
		{Label: "3", X: 430, Y: 222},
		{Label: "2", X: 370, Y: 247},
		{Label: "1", X: 320, Y: 217},
	}
	if len(commands) != len(wantCommands) {
		t.Fatalf("Expected %d commands, got %d", len(wantCommands), len(commands))
	}
	for i, want := range wantCommands {
		if commands[i] != want {
			t.Errorf("Command %d: expected %v, got %v", i, want, commands[i])
		}
	}

	clicker := &mockClicker{failOn: map[int]bool{2: true}}
	executor, _ := newTestExecutor(0)
	report := executor.Execute(commands, clicker)

	if len(clicker.calls) != 4 {
		t.Errorf("Expected 4 delivered commands, got %d", len(clicker.calls))
	}
	if report.Attempted != 4 || report.Succeeded != 3 || report.Failed != 1 {
		t.Errorf("Expected 4 attempted, 3 succeeded, 1 failed; got %+v", report)
	}
	for i, want := range wantCommands {
		if clicker.calls[i] != (image.Point{X: want.X, Y: want.Y}) {
			t.Errorf("Call %d: expected (%d,%d), got %v", i, want.X, want.Y, clicker.calls[i])
		}
	}
}
