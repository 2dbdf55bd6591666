package cv

import (
	"errors"
	"image"
	"image/color"
	"math"
	"math/rand"
	"testing"
)

// randomPatch returns a w x h patch of pseudo-random luminance values
func randomPatch(seed int64, w, h int) *image.Gray {
	rng := rand.New(rand.NewSource(seed))
	g := image.NewGray(image.Rect(0, 0, w, h))
	for i := range g.Pix {
		g.Pix[i] = uint8(rng.Intn(256))
	}
	return g
}

func blankFrame(w, h int, value uint8) *image.Gray {
	g := image.NewGray(image.Rect(0, 0, w, h))
	for i := range g.Pix {
		g.Pix[i] = value
	}
	return g
}

func paste(dst, src *image.Gray, at image.Point) {
	b := src.Bounds()
	for y := 0; y < b.Dy(); y++ {
		for x := 0; x < b.Dx(); x++ {
			dst.SetGray(at.X+x, at.Y+y, src.GrayAt(b.Min.X+x, b.Min.Y+y))
		}
	}
}

func TestToGrayLuminance(t *testing.T) {
	img := image.NewRGBA(image.Rect(5, 5, 7, 6))
	img.SetRGBA(5, 5, color.RGBA{R: 255, A: 255})
	img.SetRGBA(6, 5, color.RGBA{R: 10, G: 200, B: 30, A: 255})

	gray := ToGray(img)

	if gray.Rect != image.Rect(0, 0, 2, 1) {
		t.Fatalf("Expected rebased bounds, got %v", gray.Rect)
	}
	if got := gray.GrayAt(0, 0).Y; got != 76 {
		t.Errorf("Expected red to map to 76, got %d", got)
	}
	want := uint8((10*299 + 200*587 + 30*114) / 1000)
	if got := gray.GrayAt(1, 0).Y; got != want {
		t.Errorf("Expected %d, got %d", want, got)
	}
}

func TestToGraySubImage(t *testing.T) {
	full := randomPatch(3, 20, 20)
	sub := full.SubImage(image.Rect(4, 6, 10, 9)).(*image.Gray)

	gray := ToGray(sub)

	if gray.Rect.Dx() != 6 || gray.Rect.Dy() != 3 {
		t.Fatalf("Unexpected size %v", gray.Rect)
	}
	if gray.GrayAt(0, 0) != full.GrayAt(4, 6) || gray.GrayAt(5, 2) != full.GrayAt(9, 8) {
		t.Error("Sub-image pixels were not copied from the right offset")
	}
}

func TestExactPatchRoundTrip(t *testing.T) {
	patch := randomPatch(42, 16, 12)
	frame := blankFrame(120, 90, 30)
	paste(frame, patch, image.Point{X: 37, Y: 21})

	tmpl, err := NewTemplate("7", patch)
	if err != nil {
		t.Fatalf("Failed to build template: %v", err)
	}

	detections := Detect(frame, []Template{tmpl}, 0.9)

	if len(detections) != 1 {
		t.Fatalf("Expected exactly 1 detection, got %d: %+v", len(detections), detections)
	}
	d := detections[0]
	if d.X != 37 || d.Y != 21 {
		t.Errorf("Expected detection at (37,21), got (%d,%d)", d.X, d.Y)
	}
	if d.Width != 16 || d.Height != 12 || d.Label != "7" {
		t.Errorf("Unexpected detection metadata: %+v", d)
	}
	if d.Confidence != 1 {
		t.Errorf("Expected confidence exactly 1, got %v", d.Confidence)
	}
}

func TestThresholdBoundary(t *testing.T) {
	patch := randomPatch(7, 14, 14)
	noisy := image.NewGray(patch.Rect)
	copy(noisy.Pix, patch.Pix)
	// Perturb a few pixels so the best score is strictly below 1
	noisy.Pix[3] ^= 0x40
	noisy.Pix[50] ^= 0x20
	noisy.Pix[120] ^= 0x10

	frame := blankFrame(60, 50, 0)
	paste(frame, noisy, image.Point{X: 20, Y: 11})

	best, err := Best(frame, patch)
	if err != nil {
		t.Fatalf("Unexpected error: %v", err)
	}
	if best.Confidence >= 1 || best.Confidence <= 0.5 {
		t.Fatalf("Expected a strong but imperfect score, got %v", best.Confidence)
	}
	if best.Location != (image.Point{X: 20, Y: 11}) {
		t.Fatalf("Expected best at (20,11), got %v", best.Location)
	}

	atThreshold := MatchAll(frame, patch, best.Confidence)
	if len(atThreshold) != 1 || atThreshold[0].Location != best.Location {
		t.Errorf("Score equal to threshold should be accepted, got %+v", atThreshold)
	}

	justAbove := math.Nextafter(best.Confidence, math.Inf(1))
	if matches := MatchAll(frame, patch, justAbove); len(matches) != 0 {
		t.Errorf("Score one ULP below threshold should be rejected, got %+v", matches)
	}
}

func TestTemplateLargerThanFrame(t *testing.T) {
	frame := randomPatch(1, 10, 10)
	big := randomPatch(2, 11, 4)

	if surface := Confidence(frame, big); surface != nil {
		t.Error("Expected nil surface for oversized template")
	}
	if matches := MatchAll(frame, big, 0); matches != nil {
		t.Errorf("Expected no matches, got %d", len(matches))
	}
	if _, err := Best(frame, big); !errors.Is(err, ErrTemplateTooLarge) {
		t.Errorf("Expected ErrTemplateTooLarge, got %v", err)
	}

	tmpl, _ := NewTemplate("big", big)
	if detections := Detect(frame, []Template{tmpl}, 0); len(detections) != 0 {
		t.Errorf("Expected no detections, got %d", len(detections))
	}
}

func TestSurfaceDimensions(t *testing.T) {
	surface := Confidence(randomPatch(1, 30, 20), randomPatch(2, 5, 4))
	if surface.Width != 26 || surface.Height != 17 {
		t.Errorf("Expected 26x17 surface, got %dx%d", surface.Width, surface.Height)
	}
	if len(surface.Scores) != 26*17 {
		t.Errorf("Unexpected score count %d", len(surface.Scores))
	}
}

func TestDegenerateScores(t *testing.T) {
	t.Run("flat window scores zero", func(t *testing.T) {
		surface := Confidence(blankFrame(20, 20, 99), randomPatch(5, 6, 6))
		for i, s := range surface.Scores {
			if s != 0 {
				t.Fatalf("Expected 0 at %d, got %v", i, s)
			}
		}
	})

	t.Run("flat template scores one", func(t *testing.T) {
		surface := Confidence(randomPatch(6, 20, 20), blankFrame(4, 4, 10))
		for i, s := range surface.Scores {
			if s != 1 {
				t.Fatalf("Expected 1 at %d, got %v", i, s)
			}
		}
	})

	t.Run("inverted patch scores minus one", func(t *testing.T) {
		patch := randomPatch(8, 10, 10)
		inverted := image.NewGray(patch.Rect)
		for i, p := range patch.Pix {
			inverted.Pix[i] = 255 - p
		}
		surface := Confidence(inverted, patch)
		if got := surface.At(0, 0); got != -1 {
			t.Errorf("Expected -1, got %v", got)
		}
		if matches := MatchAll(inverted, patch, 0); len(matches) != 0 {
			t.Errorf("Negative correlation should not pass threshold 0, got %d", len(matches))
		}
	})
}

func TestScoresAreBounded(t *testing.T) {
	frame := randomPatch(11, 40, 30)
	surface := Confidence(frame, randomPatch(12, 7, 5))
	for i, s := range surface.Scores {
		if s < -1 || s > 1 || math.IsNaN(s) {
			t.Fatalf("Score %v at %d outside [-1,1]", s, i)
		}
	}
}

func TestNewTemplateRejectsEmpty(t *testing.T) {
	if _, err := NewTemplate("x", image.NewGray(image.Rect(0, 0, 0, 0))); !errors.Is(err, ErrInvalidImage) {
		t.Errorf("Expected ErrInvalidImage, got %v", err)
	}
	if _, err := NewTemplate("x", nil); !errors.Is(err, ErrInvalidImage) {
		t.Errorf("Expected ErrInvalidImage for nil, got %v", err)
	}
}

func TestTemplateFlat(t *testing.T) {
	flat, _ := NewTemplate("flat", blankFrame(3, 3, 7))
	if !flat.Flat() {
		t.Error("Expected uniform patch to be flat")
	}
	textured, _ := NewTemplate("tex", randomPatch(9, 3, 3))
	if textured.Flat() {
		t.Error("Expected random patch not to be flat")
	}
}
