// Package controller runs the locate, capture, detect and click cycle and
// asks the operator between rounds.
package controller

import (
	"context"
	"errors"
	"fmt"
	"image"
	"sync"
	"time"

	"github.com/google/uuid"

	"jordanella.com/tile-clicker-go/internal/actions"
	"jordanella.com/tile-clicker-go/internal/capture"
	"jordanella.com/tile-clicker-go/internal/config"
	"jordanella.com/tile-clicker-go/internal/cv"
	"jordanella.com/tile-clicker-go/internal/database"
	"jordanella.com/tile-clicker-go/internal/logging"
	"jordanella.com/tile-clicker-go/internal/prompt"
	"jordanella.com/tile-clicker-go/internal/stopwatch"
	"jordanella.com/tile-clicker-go/internal/window"
)

// unchangedDistance is the hash distance at which two frames count as the same board
const unchangedDistance = 0

// History records rounds. *database.DB implements it.
type History interface {
	StartRound(w database.RoundStart) (int64, error)
	CompleteRound(id int64, r database.RoundResult) error
	FailRound(id int64, errorMessage string, total time.Duration) error
}

// Deps are the collaborators of a controller
type Deps struct {
	Locator  window.Locator
	Capturer capture.Capturer
	Driver   actions.Clicker

	// Calibrator performs the calibration click; Driver is used when nil
	Calibrator actions.Clicker

	// Focus raises the window before each capture; optional
	Focus func(window.Geometry) error

	Prompt    prompt.Prompt
	Templates []cv.Template
	History   History // optional
	Logger    *logging.Logger
	Reporter  *logging.ErrorReporter
}

// RoundSummary describes one finished round
type RoundSummary struct {
	Number         int
	Window         window.Geometry
	Detections     int
	Clicks         actions.Report
	FrameHash      string
	FrameUnchanged bool
	DetectTime     time.Duration
	ClickTime      time.Duration
	Total          time.Duration
}

// Controller is the cycle state machine
type Controller struct {
	cfg      config.Config
	deps     Deps
	session  string
	logger   *logging.Logger
	detector *cv.Detector
	executor *actions.Executor
	watch    *stopwatch.Stopwatch
	tracker  *capture.ChangeTracker

	mu             sync.RWMutex
	state          State
	rounds         int
	last           RoundSummary
	listeners      []StateListener
	roundListeners []func(RoundSummary)
}

// New creates a controller in the Idle state
func New(deps Deps, cfg config.Config) (*Controller, error) {
	if deps.Locator == nil || deps.Capturer == nil || deps.Driver == nil || deps.Prompt == nil {
		return nil, errors.New("controller requires locator, capturer, driver and prompt")
	}
	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("invalid config: %w", err)
	}

	logger := deps.Logger
	if logger == nil {
		logger = logging.NewLogger("Controller")
	}
	if deps.Calibrator == nil {
		deps.Calibrator = deps.Driver
	}

	executor := actions.NewExecutor(cfg.ClickDelay, logger.Component("Executor"))
	if deps.Reporter != nil {
		executor.WithReporter(deps.Reporter)
	}

	return &Controller{
		cfg:      cfg,
		deps:     deps,
		session:  uuid.NewString(),
		logger:   logger,
		detector: cv.NewDetector(cfg.Threshold, cfg.DedupProximity, logger.Component("Detector")),
		executor: executor,
		watch:    stopwatch.New(logger.Component("Stopwatch")),
		tracker:  capture.NewChangeTracker(unchangedDistance),
		state:    StateIdle,
	}, nil
}

// Session identifies this controller's run in logs and round history
func (c *Controller) Session() string {
	return c.session
}

// State returns the current state
func (c *Controller) State() State {
	c.mu.RLock()
	defer c.mu.RUnlock()
	return c.state
}

// Rounds returns the number of rounds that reached the click phase
func (c *Controller) Rounds() int {
	c.mu.RLock()
	defer c.mu.RUnlock()
	return c.rounds
}

// LastRound returns the summary of the most recent completed round
func (c *Controller) LastRound() RoundSummary {
	c.mu.RLock()
	defer c.mu.RUnlock()
	return c.last
}

// AddListener registers fn for state transitions
func (c *Controller) AddListener(fn StateListener) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.listeners = append(c.listeners, fn)
}

// AddRoundListener registers fn for completed rounds
func (c *Controller) AddRoundListener(fn func(RoundSummary)) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.roundListeners = append(c.roundListeners, fn)
}

// Run drives the cycle until the operator stops it, a capture fails or ctx
// is cancelled. Cancellation is checked only between phases. Operator
// termination returns nil; a capture failure returns a wrapped
// *capture.CaptureError.
func (c *Controller) Run(ctx context.Context) error {
	if c.State() != StateIdle {
		return errors.New("controller already started")
	}

	if c.cfg.CalibrateClicks {
		c.transition(StateCalibrating)
		geom, ok := c.locate(ctx)
		if !ok {
			return c.terminate(ctx)
		}
		c.calibrate(geom)
	}

	for {
		if ctx.Err() != nil {
			return c.terminate(ctx)
		}

		c.transition(StateLocating)
		geom, ok := c.locate(ctx)
		if !ok {
			return c.terminate(ctx)
		}

		if ctx.Err() != nil {
			return c.terminate(ctx)
		}

		c.transition(StateCapturing)
		if err := c.runRound(geom); err != nil {
			c.transition(StateTerminated)
			return err
		}

		c.transition(StateAwaitingContinuation)
		again, err := c.deps.Prompt.ConfirmYesNo("Auto-click", "This round finished.\nWant a next round?")
		if err != nil {
			c.logger.WarnWithContext("Continuation prompt failed, stopping", map[string]interface{}{"error": err.Error()})
		}
		if err != nil || !again {
			c.logger.Info("The end of the program")
			return c.terminate(ctx)
		}
	}
}

// locate queries the window until it is found or the operator gives up
func (c *Controller) locate(ctx context.Context) (window.Geometry, bool) {
	title := c.cfg.WindowTitle
	for attempt := 1; ; attempt++ {
		geom, err := c.deps.Locator.Locate(title)
		if err == nil {
			c.logger.InfoWithContext("Window located", map[string]interface{}{
				"title":  geom.Title,
				"left":   geom.Left,
				"top":    geom.Top,
				"width":  geom.Width,
				"height": geom.Height,
			})
			return geom, true
		}

		fields := map[string]interface{}{"title": title, "attempt": attempt}
		if c.deps.Reporter != nil {
			c.deps.Reporter.ReportError(logging.ErrorCategoryWindow, logging.ErrorSeverityMedium, "Controller", "Failed to locate window", err, fields)
		} else {
			fields["error"] = err.Error()
			c.logger.WarnWithContext("Failed to locate window", fields)
		}

		retry, perr := c.deps.Prompt.ConfirmRetryCancel("Error", fmt.Sprintf("Can't locate the window:\n%v\n\nWant a retry?", err))
		if perr != nil {
			c.logger.WarnWithContext("Retry prompt failed, stopping", map[string]interface{}{"error": perr.Error()})
			return window.Geometry{}, false
		}
		if !retry || ctx.Err() != nil {
			return window.Geometry{}, false
		}
	}
}

// calibrate clicks the window center once and reports it. The outcome never
// blocks the cycle.
func (c *Controller) calibrate(geom window.Geometry) {
	rel := geom.Center()
	abs := rel.Add(geom.Origin())

	c.logger.InfoWithContext("Calibrating click at window center", map[string]interface{}{"x": rel.X, "y": rel.Y})
	if err := c.deps.Calibrator.Click(abs.X, abs.Y); err != nil {
		c.logger.WarnWithContext("Calibration click failed", map[string]interface{}{
			"x":     abs.X,
			"y":     abs.Y,
			"error": err.Error(),
		})
	}

	msg := fmt.Sprintf("Clicked at (%d,%d)\nPlease check if it's correct.", rel.X, rel.Y)
	if err := c.deps.Prompt.ConfirmInfo("Click calibrated", msg); err != nil {
		c.logger.DebugWithContext("Calibration prompt not acknowledged", map[string]interface{}{"error": err.Error()})
	}
}

// runRound captures, detects and clicks once
func (c *Controller) runRound(geom window.Geometry) error {
	c.mu.Lock()
	c.rounds++
	number := c.rounds
	c.mu.Unlock()

	c.watch.Start()
	roundID := c.startHistory(geom)

	if c.deps.Focus != nil {
		if err := c.deps.Focus(geom); err != nil {
			c.logger.WarnWithContext("Could not bring window to the foreground", map[string]interface{}{
				"title": geom.Title,
				"error": err.Error(),
			})
		}
	}

	rect := geom.Rect()
	frame, err := c.deps.Capturer.Capture(rect)
	if err != nil {
		if !capture.IsCaptureError(err) {
			err = &capture.CaptureError{Rect: rect, Err: err}
		}
		total, _ := c.watch.Stop()

		fields := map[string]interface{}{"round": number, "rect": rect.String()}
		if c.deps.Reporter != nil {
			c.deps.Reporter.ReportCriticalError(logging.ErrorCategoryCapture, "Controller", "Frame capture failed, stopping", err, fields)
		} else {
			c.logger.ErrorWithContext("Frame capture failed, stopping", err, fields)
		}
		c.failHistory(roundID, err, total)
		return fmt.Errorf("round %d: %w", number, err)
	}

	summary := RoundSummary{Number: number, Window: geom}

	hash, unchanged, err := c.tracker.Observe(frame)
	if err != nil {
		c.logger.DebugWithContext("Frame fingerprint unavailable", map[string]interface{}{"error": err.Error()})
	} else {
		summary.FrameHash = hash
		summary.FrameUnchanged = unchanged
		if unchanged {
			c.logger.WarnWithContext("Board unchanged since previous round", map[string]interface{}{"round": number, "hash": hash})
		}
	}

	detections := c.detector.Detect(frame, c.deps.Templates)
	summary.Detections = len(detections)
	summary.DetectTime, _ = c.watch.Lap()
	c.logger.InfoWithContext("Detection finished", map[string]interface{}{
		"round":      number,
		"detections": len(detections),
		"detect_ms":  summary.DetectTime.Milliseconds(),
	})

	offset := image.Point{X: c.cfg.TileOffsetX, Y: c.cfg.TileOffsetY}
	commands := actions.Schedule(detections, geom.Origin(), offset)
	summary.Clicks = c.executor.Execute(commands, c.deps.Driver)
	summary.ClickTime = summary.Clicks.Duration

	summary.Total, _ = c.watch.Stop()
	c.logger.InfoWithContext("Round finished", map[string]interface{}{
		"session":   c.session,
		"round":     number,
		"attempted": summary.Clicks.Attempted,
		"failed":    summary.Clicks.Failed,
		"click_ms":  summary.ClickTime.Milliseconds(),
		"total_ms":  summary.Total.Milliseconds(),
	})

	c.completeHistory(roundID, summary, detections)

	c.mu.Lock()
	c.last = summary
	listeners := append([]func(RoundSummary){}, c.roundListeners...)
	c.mu.Unlock()
	for _, fn := range listeners {
		fn(summary)
	}
	return nil
}

func (c *Controller) startHistory(geom window.Geometry) int64 {
	if c.deps.History == nil {
		return 0
	}
	id, err := c.deps.History.StartRound(database.RoundStart{
		Session: c.session,
		Title:   geom.Title,
		Left:    geom.Left,
		Top:     geom.Top,
		Width:   geom.Width,
		Height:  geom.Height,
	})
	if err != nil {
		c.reportHistory("Failed to record round start", err)
		return 0
	}
	return id
}

func (c *Controller) completeHistory(id int64, s RoundSummary, detections []cv.Detection) {
	if c.deps.History == nil || id == 0 {
		return
	}
	labels := make(map[string]int)
	for _, d := range detections {
		labels[d.Label]++
	}
	err := c.deps.History.CompleteRound(id, database.RoundResult{
		Detections:      s.Detections,
		ClicksAttempted: s.Clicks.Attempted,
		ClicksFailed:    s.Clicks.Failed,
		FrameHash:       s.FrameHash,
		FrameUnchanged:  s.FrameUnchanged,
		DetectDuration:  s.DetectTime,
		ClickDuration:   s.ClickTime,
		TotalDuration:   s.Total,
		Labels:          labels,
	})
	if err != nil {
		c.reportHistory("Failed to record round result", err)
	}
}

func (c *Controller) failHistory(id int64, cause error, total time.Duration) {
	if c.deps.History == nil || id == 0 {
		return
	}
	if err := c.deps.History.FailRound(id, cause.Error(), total); err != nil {
		c.reportHistory("Failed to record round failure", err)
	}
}

func (c *Controller) reportHistory(msg string, err error) {
	if c.deps.Reporter != nil {
		c.deps.Reporter.ReportError(logging.ErrorCategoryDatabase, logging.ErrorSeverityLow, "Controller", msg, err, nil)
		return
	}
	c.logger.WarnWithContext(msg, map[string]interface{}{"error": err.Error()})
}

func (c *Controller) terminate(ctx context.Context) error {
	c.transition(StateTerminated)
	return ctx.Err()
}

func (c *Controller) transition(next State) {
	c.mu.Lock()
	prev := c.state
	if prev == next {
		c.mu.Unlock()
		return
	}
	c.state = next
	listeners := append([]StateListener{}, c.listeners...)
	c.mu.Unlock()

	c.logger.DebugWithContext("Controller state transition", map[string]interface{}{
		"from": prev.String(),
		"to":   next.String(),
	})
	for _, l := range listeners {
		l(prev, next)
	}
}
