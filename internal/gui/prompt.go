package gui

import (
	"sync"

	"fyne.io/fyne/v2"
	"fyne.io/fyne/v2/dialog"

	"jordanella.com/tile-clicker-go/internal/prompt"
)

// DialogPrompt shows operator prompts as modal dialogs on a window. Calls
// block the calling goroutine until the dialog is dismissed and must not be
// made from the fyne main goroutine.
type DialogPrompt struct {
	window fyne.Window

	closeOnce sync.Once
	closed    chan struct{}
}

var _ prompt.Prompt = (*DialogPrompt)(nil)

// NewDialogPrompt creates a prompt attached to window
func NewDialogPrompt(window fyne.Window) *DialogPrompt {
	return &DialogPrompt{window: window, closed: make(chan struct{})}
}

// Close releases pending and future prompts with prompt.ErrClosed
func (p *DialogPrompt) Close() {
	p.closeOnce.Do(func() { close(p.closed) })
}

func (p *DialogPrompt) isClosed() bool {
	select {
	case <-p.closed:
		return true
	default:
		return false
	}
}

// ConfirmInfo implements prompt.Prompt
func (p *DialogPrompt) ConfirmInfo(title, message string) error {
	if p.isClosed() {
		return prompt.ErrClosed
	}

	done := make(chan struct{}, 1)
	fyne.Do(func() {
		d := dialog.NewInformation(title, message, p.window)
		d.SetOnClosed(func() { done <- struct{}{} })
		p.window.RequestFocus()
		d.Show()
	})

	select {
	case <-done:
		return nil
	case <-p.closed:
		return prompt.ErrClosed
	}
}

// ConfirmYesNo implements prompt.Prompt
func (p *DialogPrompt) ConfirmYesNo(title, message string) (bool, error) {
	return p.confirm(title, message, "Yes", "No")
}

// ConfirmRetryCancel implements prompt.Prompt
func (p *DialogPrompt) ConfirmRetryCancel(title, message string) (bool, error) {
	return p.confirm(title, message, "Retry", "Cancel")
}

func (p *DialogPrompt) confirm(title, message, confirmText, dismissText string) (bool, error) {
	if p.isClosed() {
		return false, prompt.ErrClosed
	}

	answer := make(chan bool, 1)
	fyne.Do(func() {
		d := dialog.NewConfirm(title, message, func(ok bool) { answer <- ok }, p.window)
		d.SetConfirmText(confirmText)
		d.SetDismissText(dismissText)
		p.window.RequestFocus()
		d.Show()
	})

	select {
	case ok := <-answer:
		return ok, nil
	case <-p.closed:
		return false, prompt.ErrClosed
	}
}
