package input

import (
	"fmt"

	"jordanella.com/tile-clicker-go/internal/config"
	"jordanella.com/tile-clicker-go/internal/window"
)

// windowInput delivers a click to a window at window-relative coordinates
type windowInput interface {
	ClickRelative(handle uintptr, x, y int) error
}

// Accessibility clicks through the target window itself instead of moving
// the system pointer. The window is resolved on every click.
type Accessibility struct {
	title   string
	locator window.Locator
	input   windowInput
}

// NewAccessibility creates an accessibility driver for windows matching title
func NewAccessibility(title string, locator window.Locator) *Accessibility {
	return &Accessibility{title: title, locator: locator, input: systemWindowInput{}}
}

// Strategy implements Driver
func (a *Accessibility) Strategy() config.InputStrategy {
	return config.StrategyAccessibility
}

// Click converts (x, y) to window-relative coordinates and clicks there
func (a *Accessibility) Click(x, y int) error {
	geometry, err := a.locator.Locate(a.title)
	if err != nil {
		return &ClickError{Strategy: config.StrategyAccessibility, X: x, Y: y, Err: err}
	}

	rx, ry := x-geometry.Left, y-geometry.Top
	if rx < 0 || ry < 0 || rx >= geometry.Width || ry >= geometry.Height {
		return &ClickError{
			Strategy: config.StrategyAccessibility,
			X:        x,
			Y:        y,
			Err:      fmt.Errorf("point outside window %s", geometry),
		}
	}

	if err := a.input.ClickRelative(geometry.Handle, rx, ry); err != nil {
		return &ClickError{Strategy: config.StrategyAccessibility, X: x, Y: y, Err: err}
	}
	return nil
}
