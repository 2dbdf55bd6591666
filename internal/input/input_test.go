package input

import (
	"errors"
	"image"
	"testing"
	"time"

	"jordanella.com/tile-clicker-go/internal/config"
	"jordanella.com/tile-clicker-go/internal/window"
)

type fakePointer struct {
	events  []string
	failOn  string
	failErr error
}

func (f *fakePointer) record(event string) error {
	f.events = append(f.events, event)
	if event == f.failOn {
		return f.failErr
	}
	return nil
}

func (f *fakePointer) MoveTo(x, y int) error {
	return f.record("move")
}

func (f *fakePointer) LeftDown() error {
	return f.record("down")
}

func (f *fakePointer) LeftUp() error {
	return f.record("up")
}

func TestDirectClickSequence(t *testing.T) {
	p := &fakePointer{}
	var held time.Duration
	d := NewDirect(0)
	d.pointer = p
	d.sleep = func(dur time.Duration) {
		p.events = append(p.events, "hold")
		held = dur
	}

	if err := d.Click(10, 20); err != nil {
		t.Fatalf("Unexpected error: %v", err)
	}

	want := []string{"move", "down", "hold", "up"}
	if len(p.events) != len(want) {
		t.Fatalf("Expected events %v, got %v", want, p.events)
	}
	for i := range want {
		if p.events[i] != want[i] {
			t.Errorf("Event %d: expected %s, got %s", i, want[i], p.events[i])
		}
	}
	if held != DefaultHold {
		t.Errorf("Expected default hold %v, got %v", DefaultHold, held)
	}
}

func TestDirectClickFailureIsClickError(t *testing.T) {
	cause := errors.New("blocked")
	p := &fakePointer{failOn: "down", failErr: cause}
	d := NewDirect(time.Millisecond)
	d.pointer = p
	d.sleep = func(time.Duration) {}

	err := d.Click(5, 6)

	var ce *ClickError
	if !errors.As(err, &ce) {
		t.Fatalf("Expected ClickError, got %v", err)
	}
	if ce.X != 5 || ce.Y != 6 || ce.Strategy != config.StrategyDirect {
		t.Errorf("Unexpected click error fields %+v", ce)
	}
	if !errors.Is(err, cause) {
		t.Error("Expected cause to be wrapped")
	}
	if len(p.events) != 2 {
		t.Errorf("Expected no release after failed press, got %v", p.events)
	}
}

type fakeWindowInput struct {
	handle uintptr
	at     image.Point
	err    error
}

func (f *fakeWindowInput) ClickRelative(handle uintptr, x, y int) error {
	f.handle = handle
	f.at = image.Point{X: x, Y: y}
	return f.err
}

func staticLocator(g window.Geometry, err error) window.Locator {
	return window.LocatorFunc(func(string) (window.Geometry, error) { return g, err })
}

func TestAccessibilityClickIsWindowRelative(t *testing.T) {
	geometry := window.Geometry{Left: 100, Top: 200, Width: 300, Height: 300, Handle: 77}
	wi := &fakeWindowInput{}
	a := NewAccessibility("Board", staticLocator(geometry, nil))
	a.input = wi

	if err := a.Click(150, 260); err != nil {
		t.Fatalf("Unexpected error: %v", err)
	}
	if wi.handle != 77 {
		t.Errorf("Expected handle 77, got %d", wi.handle)
	}
	if wi.at != (image.Point{X: 50, Y: 60}) {
		t.Errorf("Expected relative (50,60), got %v", wi.at)
	}
}

func TestAccessibilityFailures(t *testing.T) {
	geometry := window.Geometry{Left: 0, Top: 0, Width: 10, Height: 10, Handle: 1}

	tests := []struct {
		name    string
		locator window.Locator
		input   *fakeWindowInput
		x, y    int
	}{
		{"window gone", staticLocator(window.Geometry{}, &window.NotFoundError{Title: "Board"}), &fakeWindowInput{}, 1, 1},
		{"outside window", staticLocator(geometry, nil), &fakeWindowInput{}, 11, 1},
		{"delivery error", staticLocator(geometry, nil), &fakeWindowInput{err: errors.New("denied")}, 1, 1},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			a := NewAccessibility("Board", tt.locator)
			a.input = tt.input
			err := a.Click(tt.x, tt.y)
			if !IsClickError(err) {
				t.Errorf("Expected ClickError, got %v", err)
			}
		})
	}
}

func TestNewSelectsStrategy(t *testing.T) {
	d, err := New(config.StrategyDirect, Options{})
	if err != nil || d.Strategy() != config.StrategyDirect {
		t.Errorf("Expected direct driver, got %v, %v", d, err)
	}

	a, err := New(config.StrategyAccessibility, Options{WindowTitle: "Board", Locator: staticLocator(window.Geometry{}, nil)})
	if err != nil || a.Strategy() != config.StrategyAccessibility {
		t.Errorf("Expected accessibility driver, got %v, %v", a, err)
	}

	if _, err := New(config.StrategyAccessibility, Options{}); err == nil {
		t.Error("Expected error without window title")
	}
	if _, err := New(config.InputStrategy(42), Options{}); err == nil {
		t.Error("Expected error for unknown strategy")
	}
}

func TestFromConfigUsesHold(t *testing.T) {
	cfg := config.NewDefaultConfig()
	cfg.ButtonHold = 3 * time.Millisecond

	d, err := FromConfig(cfg, nil)
	if err != nil {
		t.Fatal(err)
	}
	direct, ok := d.(*Direct)
	if !ok {
		t.Fatalf("Expected *Direct, got %T", d)
	}
	if direct.hold != 3*time.Millisecond {
		t.Errorf("Expected 3ms hold, got %v", direct.hold)
	}
}
