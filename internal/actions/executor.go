package actions

import (
	"time"

	"jordanella.com/tile-clicker-go/internal/logging"
)

// Clicker delivers one click at absolute screen coordinates
type Clicker interface {
	Click(x, y int) error
}

// Report summarizes one execution of a command sequence
type Report struct {
	Attempted int
	Succeeded int
	Failed    int
	Errors    []error
	Duration  time.Duration
}

// Executor delivers click commands sequentially
type Executor struct {
	Pacing   time.Duration // wait after each successful click
	Logger   *logging.Logger
	Reporter *logging.ErrorReporter

	sleep func(time.Duration)
}

// NewExecutor creates an executor with the given pacing
func NewExecutor(pacing time.Duration, logger *logging.Logger) *Executor {
	return &Executor{Pacing: pacing, Logger: logger}
}

// WithReporter records click failures in reporter
func (e *Executor) WithReporter(reporter *logging.ErrorReporter) *Executor {
	e.Reporter = reporter
	return e
}

// Execute clicks every command in order. A failed click is logged and the
// sequence continues; pacing follows successful clicks only.
func (e *Executor) Execute(commands []ClickCommand, clicker Clicker) Report {
	sleep := e.sleep
	if sleep == nil {
		sleep = time.Sleep
	}

	start := time.Now()
	report := Report{}

	for i, cmd := range commands {
		report.Attempted++

		if err := clicker.Click(cmd.X, cmd.Y); err != nil {
			report.Failed++
			report.Errors = append(report.Errors, err)
			e.logFailure(i, cmd, err)
			continue
		}

		report.Succeeded++
		if e.Pacing > 0 {
			sleep(e.Pacing)
		}
	}

	report.Duration = time.Since(start)
	return report
}

func (e *Executor) logFailure(index int, cmd ClickCommand, err error) {
	context := map[string]interface{}{
		"index": index,
		"label": cmd.Label,
		"x":     cmd.X,
		"y":     cmd.Y,
	}
	if e.Reporter != nil {
		e.Reporter.ReportError(logging.ErrorCategoryInput, logging.ErrorSeverityMedium, "Executor", "Click failed, continuing", err, context)
		return
	}
	if e.Logger != nil {
		context["error"] = err.Error()
		e.Logger.WarnWithContext("Click failed, continuing", context)
	}
}
