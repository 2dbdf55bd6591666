//go:build windows

package window

import (
	"errors"
	"image"
	"strings"
	"sync"
	"syscall"
	"unsafe"

	"golang.org/x/sys/windows"
)

var (
	user32                  = windows.NewLazySystemDLL("user32.dll")
	procEnumWindows         = user32.NewProc("EnumWindows")
	procGetWindowTextW      = user32.NewProc("GetWindowTextW")
	procGetWindowTextLenW   = user32.NewProc("GetWindowTextLengthW")
	procIsWindowVisible     = user32.NewProc("IsWindowVisible")
	procGetWindowRect       = user32.NewProc("GetWindowRect")
	procSetForegroundWindow = user32.NewProc("SetForegroundWindow")
)

type rect struct {
	Left, Top, Right, Bottom int32
}

func windowText(hwnd uintptr) string {
	n, _, _ := procGetWindowTextLenW.Call(hwnd)
	if n == 0 {
		return ""
	}
	buf := make([]uint16, n+1)
	procGetWindowTextW.Call(hwnd, uintptr(unsafe.Pointer(&buf[0])), uintptr(len(buf)))
	return strings.TrimSpace(windows.UTF16ToString(buf))
}

func windowRect(hwnd uintptr) (image.Rectangle, bool) {
	var r rect
	ok, _, _ := procGetWindowRect.Call(hwnd, uintptr(unsafe.Pointer(&r)))
	if ok == 0 {
		return image.Rectangle{}, false
	}
	return image.Rect(int(r.Left), int(r.Top), int(r.Right), int(r.Bottom)), true
}

var (
	enumMu       sync.Mutex
	enumFound    []Candidate
	enumCallback = syscall.NewCallback(enumWindowsProc)
)

// enumWindowsProc collects into enumFound; callers hold enumMu. The callback
// is created once since Windows callbacks are never freed.
func enumWindowsProc(hwnd uintptr, lparam uintptr) uintptr {
	if vis, _, _ := procIsWindowVisible.Call(hwnd); vis == 0 {
		return 1
	}
	title := windowText(hwnd)
	if title == "" {
		return 1
	}
	r, ok := windowRect(hwnd)
	if !ok {
		return 1
	}
	enumFound = append(enumFound, Candidate{Title: title, Handle: hwnd, Rect: r})
	return 1
}

// listWindows enumerates visible top-level windows in z-order
func listWindows() ([]Candidate, error) {
	enumMu.Lock()
	defer enumMu.Unlock()

	enumFound = nil
	defer func() { enumFound = nil }()

	if r, _, err := procEnumWindows.Call(enumCallback, 0); r == 0 {
		if err != nil && !errors.Is(err, windows.ERROR_SUCCESS) {
			return nil, err
		}
		return nil, errors.New("EnumWindows failed")
	}
	return enumFound, nil
}

// Activate brings the window to the foreground
func Activate(g Geometry) error {
	if g.Handle == 0 {
		return errors.New("window has no handle")
	}
	if r, _, _ := procSetForegroundWindow.Call(g.Handle); r == 0 {
		return errors.New("SetForegroundWindow failed")
	}
	return nil
}
