// Package gui is the fyne status window and dialog prompts.
package gui

import (
	"context"
	"fmt"
	"sync"

	"fyne.io/fyne/v2"
	"fyne.io/fyne/v2/container"
	"fyne.io/fyne/v2/widget"

	"jordanella.com/tile-clicker-go/internal/controller"
)

// Shell owns the main window: controller status, round history and logs
type Shell struct {
	app    fyne.App
	window fyne.Window
	prompt *DialogPrompt

	logs    *LogPanel
	history *HistoryPanel // nil when history is disabled

	stateLabel *widget.Label
	roundLabel *widget.Label
	stopBtn    *widget.Button

	mu       sync.Mutex
	cancel   context.CancelFunc
	quitOnce sync.Once
}

// NewShell creates the main window. history may be nil.
func NewShell(app fyne.App, title string, logs *LogPanel, history RoundSource) *Shell {
	app.Settings().SetTheme(&ClickerTheme{})

	w := app.NewWindow(title)
	w.Resize(DefaultWindowSize)

	s := &Shell{
		app:    app,
		window: w,
		prompt: NewDialogPrompt(w),
		logs:   logs,
	}
	if history != nil {
		s.history = NewHistoryPanel(history, 200)
	}

	w.SetCloseIntercept(func() {
		s.stop()
		s.Quit()
	})
	w.SetContent(s.BuildUI())
	return s
}

// Prompt returns the dialog prompt bound to the main window
func (s *Shell) Prompt() *DialogPrompt {
	return s.prompt
}

// Window returns the main window
func (s *Shell) Window() fyne.Window {
	return s.window
}

// BuildUI constructs the window content
func (s *Shell) BuildUI() fyne.CanvasObject {
	s.stateLabel = widget.NewLabelWithStyle("State: "+controller.StateIdle.String(), fyne.TextAlignLeading, fyne.TextStyle{Bold: true})
	s.roundLabel = widget.NewLabel("No rounds yet")
	s.stopBtn = widget.NewButton("Stop after this round", func() {
		s.stop()
		s.stopBtn.Disable()
	})

	status := container.NewVBox(
		s.stateLabel,
		s.roundLabel,
		s.stopBtn,
	)

	tabs := container.NewAppTabs(
		container.NewTabItem("Log", s.logs.Build()),
	)
	if s.history != nil {
		tabs.Append(container.NewTabItem("History", s.history.Build()))
	}

	return container.NewBorder(status, nil, nil, nil, tabs)
}

// Attach follows c and lets the stop button and window close call cancel
func (s *Shell) Attach(c *controller.Controller, cancel context.CancelFunc) {
	s.mu.Lock()
	s.cancel = cancel
	s.mu.Unlock()

	c.AddListener(s.onStateChange)
	c.AddRoundListener(s.onRound)
}

// ShowAndRun shows the window and runs the fyne event loop
func (s *Shell) ShowAndRun() {
	s.window.ShowAndRun()
}

// Quit releases pending prompts and stops the fyne event loop
func (s *Shell) Quit() {
	s.quitOnce.Do(func() {
		s.prompt.Close()
		fyne.Do(func() {
			s.app.Quit()
		})
	})
}

func (s *Shell) stop() {
	s.mu.Lock()
	cancel := s.cancel
	s.mu.Unlock()
	if cancel != nil {
		cancel()
	}
}

func (s *Shell) onStateChange(prev, next controller.State) {
	fyne.Do(func() {
		s.stateLabel.SetText("State: " + next.String())
		if next == controller.StateTerminated {
			s.stopBtn.Disable()
		}
	})
}

func (s *Shell) onRound(r controller.RoundSummary) {
	text := fmt.Sprintf("Round %d: %d found, %d/%d clicks ok, detect %dms, click %dms, total %dms",
		r.Number, r.Detections, r.Clicks.Succeeded, r.Clicks.Attempted,
		r.DetectTime.Milliseconds(), r.ClickTime.Milliseconds(), r.Total.Milliseconds())
	if r.FrameUnchanged {
		text += " (board unchanged)"
	}
	fyne.Do(func() {
		s.roundLabel.SetText(text)
	})
	if s.history != nil {
		go s.history.Refresh()
	}
}
