//go:build !windows

package input

import (
	"errors"
	"fmt"
	"runtime"
)

var errNoInput = fmt.Errorf("synthetic input on %s: %w", runtime.GOOS, errors.ErrUnsupported)

type systemPointer struct{}

func (systemPointer) MoveTo(x, y int) error { return errNoInput }
func (systemPointer) LeftDown() error       { return errNoInput }
func (systemPointer) LeftUp() error         { return errNoInput }

type systemWindowInput struct{}

func (systemWindowInput) ClickRelative(handle uintptr, x, y int) error { return errNoInput }
