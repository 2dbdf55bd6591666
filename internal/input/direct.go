package input

import (
	"fmt"
	"time"

	"jordanella.com/tile-clicker-go/internal/config"
)

// pointer is the low-level pointer primitive
type pointer interface {
	MoveTo(x, y int) error
	LeftDown() error
	LeftUp() error
}

// Direct moves the system pointer and presses the left button in place
type Direct struct {
	hold    time.Duration
	pointer pointer
	sleep   func(time.Duration)
}

// NewDirect creates a direct driver. A non-positive hold uses DefaultHold.
func NewDirect(hold time.Duration) *Direct {
	if hold <= 0 {
		hold = DefaultHold
	}
	return &Direct{hold: hold, pointer: systemPointer{}, sleep: time.Sleep}
}

// Strategy implements Driver
func (d *Direct) Strategy() config.InputStrategy {
	return config.StrategyDirect
}

// Click moves to (x, y), presses, holds, then releases
func (d *Direct) Click(x, y int) error {
	fail := func(step string, err error) error {
		return &ClickError{Strategy: config.StrategyDirect, X: x, Y: y, Err: fmt.Errorf("%s: %w", step, err)}
	}

	if err := d.pointer.MoveTo(x, y); err != nil {
		return fail("move", err)
	}
	if err := d.pointer.LeftDown(); err != nil {
		return fail("button down", err)
	}
	d.sleep(d.hold)
	if err := d.pointer.LeftUp(); err != nil {
		return fail("button up", err)
	}
	return nil
}
