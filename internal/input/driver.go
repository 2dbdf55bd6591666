// Package input delivers synthetic mouse clicks to the target window.
package input

import (
	"errors"
	"fmt"
	"time"

	"jordanella.com/tile-clicker-go/internal/config"
	"jordanella.com/tile-clicker-go/internal/window"
)

// Driver clicks at absolute screen coordinates. A failed click is returned as
// an error; drivers never retry.
type Driver interface {
	Click(x, y int) error
	Strategy() config.InputStrategy
}

// ClickError reports a click that could not be delivered
type ClickError struct {
	Strategy config.InputStrategy
	X, Y     int
	Err      error
}

func (e *ClickError) Error() string {
	return fmt.Sprintf("%s click at (%d,%d) failed: %v", e.Strategy, e.X, e.Y, e.Err)
}

func (e *ClickError) Unwrap() error {
	return e.Err
}

// IsClickError reports whether err is or wraps a ClickError
func IsClickError(err error) bool {
	var ce *ClickError
	return errors.As(err, &ce)
}

// DefaultHold is how long the button stays down
const DefaultHold = time.Millisecond

// Options configures driver construction
type Options struct {
	WindowTitle string        // used by the accessibility strategy
	Hold        time.Duration // button hold for the direct strategy
	Locator     window.Locator
}

// New returns the driver for strategy
func New(strategy config.InputStrategy, opts Options) (Driver, error) {
	switch strategy {
	case config.StrategyDirect:
		return NewDirect(opts.Hold), nil
	case config.StrategyAccessibility:
		if opts.WindowTitle == "" {
			return nil, fmt.Errorf("accessibility strategy requires a window title")
		}
		locator := opts.Locator
		if locator == nil {
			locator = window.NewLocator()
		}
		return NewAccessibility(opts.WindowTitle, locator), nil
	default:
		return nil, fmt.Errorf("unknown input strategy: %d", strategy)
	}
}

// FromConfig builds the configured driver
func FromConfig(cfg config.Config, locator window.Locator) (Driver, error) {
	return New(cfg.InputStrategy, Options{
		WindowTitle: cfg.WindowTitle,
		Hold:        cfg.ButtonHold,
		Locator:     locator,
	})
}
