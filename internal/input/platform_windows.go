//go:build windows

package input

import (
	"fmt"
	"unsafe"

	"golang.org/x/sys/windows"
)

const (
	mouseeventfLeftDown = 0x0002
	mouseeventfLeftUp   = 0x0004

	wmMouseMove   = 0x0200
	wmLButtonDown = 0x0201
	wmLButtonUp   = 0x0202
	mkLButton     = 0x0001
)

var (
	user32             = windows.NewLazySystemDLL("user32.dll")
	procSetCursorPos   = user32.NewProc("SetCursorPos")
	procMouseEvent     = user32.NewProc("mouse_event")
	procGetWindowRect  = user32.NewProc("GetWindowRect")
	procScreenToClient = user32.NewProc("ScreenToClient")
	procPostMessageW   = user32.NewProc("PostMessageW")
)

type point struct {
	X, Y int32
}

type rect struct {
	Left, Top, Right, Bottom int32
}

// systemPointer drives the real cursor through user32
type systemPointer struct{}

func (systemPointer) MoveTo(x, y int) error {
	if r, _, err := procSetCursorPos.Call(uintptr(int32(x)), uintptr(int32(y))); r == 0 {
		return fmt.Errorf("SetCursorPos: %w", err)
	}
	return nil
}

func (systemPointer) LeftDown() error {
	procMouseEvent.Call(mouseeventfLeftDown, 0, 0, 0, 0)
	return nil
}

func (systemPointer) LeftUp() error {
	procMouseEvent.Call(mouseeventfLeftUp, 0, 0, 0, 0)
	return nil
}

// systemWindowInput posts mouse messages to the window's queue
type systemWindowInput struct{}

func (systemWindowInput) ClickRelative(handle uintptr, x, y int) error {
	if handle == 0 {
		return fmt.Errorf("window has no handle")
	}

	var r rect
	if ok, _, err := procGetWindowRect.Call(handle, uintptr(unsafe.Pointer(&r))); ok == 0 {
		return fmt.Errorf("GetWindowRect: %w", err)
	}
	pt := point{X: r.Left + int32(x), Y: r.Top + int32(y)}
	if ok, _, err := procScreenToClient.Call(handle, uintptr(unsafe.Pointer(&pt))); ok == 0 {
		return fmt.Errorf("ScreenToClient: %w", err)
	}

	lparam := uintptr(uint32(uint16(pt.X)) | uint32(uint16(pt.Y))<<16)
	for _, msg := range []struct {
		id     uintptr
		wparam uintptr
	}{
		{wmMouseMove, 0},
		{wmLButtonDown, mkLButton},
		{wmLButtonUp, 0},
	} {
		if ok, _, err := procPostMessageW.Call(handle, msg.id, msg.wparam, lparam); ok == 0 {
			return fmt.Errorf("PostMessage(0x%04x): %w", msg.id, err)
		}
	}
	return nil
}
