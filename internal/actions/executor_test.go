package actions

import (
	"fmt"
	"image"
	"testing"
	"time"

	"jordanella.com/tile-clicker-go/internal/logging"
)

// mockClicker records every click and fails on the configured call numbers
type mockClicker struct {
	calls  []image.Point
	failOn map[int]bool // 1-based call numbers
}

func (m *mockClicker) Click(x, y int) error {
	m.calls = append(m.calls, image.Point{X: x, Y: y})
	if m.failOn[len(m.calls)] {
		return fmt.Errorf("synthetic failure at (%d,%d)", x, y)
	}
	return nil
}

func newTestExecutor(pacing time.Duration) (*Executor, *[]time.Duration) {
	var sleeps []time.Duration
	e := NewExecutor(pacing, logging.NewDiscardLogger("Executor"))
	e.sleep = func(d time.Duration) { sleeps = append(sleeps, d) }
	return e, &sleeps
}

func TestExecuteDeliversInOrder(t *testing.T) {
	e, sleeps := newTestExecutor(5 * time.Millisecond)
	clicker := &mockClicker{}
	commands := []ClickCommand{{X: 3, Y: 4}, {X: 1, Y: 2}, {X: 0, Y: 9}}

	report := e.Execute(commands, clicker)

	if report.Attempted != 3 || report.Succeeded != 3 || report.Failed != 0 {
		t.Errorf("Unexpected report %+v", report)
	}
	for i, cmd := range commands {
		if clicker.calls[i] != (image.Point{X: cmd.X, Y: cmd.Y}) {
			t.Errorf("Call %d: expected %v, got %v", i, cmd, clicker.calls[i])
		}
	}
	if len(*sleeps) != 3 {
		t.Errorf("Expected pacing after each success, got %d sleeps", len(*sleeps))
	}
}

func TestExecuteContinuesAfterFailure(t *testing.T) {
	e, sleeps := newTestExecutor(time.Millisecond)
	reporter := logging.NewErrorReporter(logging.NewDiscardLogger("ErrorReporter"))
	e.WithReporter(reporter)
	clicker := &mockClicker{failOn: map[int]bool{1: true, 3: true}}

	report := e.Execute([]ClickCommand{{X: 1}, {X: 2}, {X: 3}, {X: 4}}, clicker)

	if len(clicker.calls) != 4 {
		t.Fatalf("Expected all 4 commands attempted, got %d", len(clicker.calls))
	}
	if report.Attempted != 4 || report.Succeeded != 2 || report.Failed != 2 {
		t.Errorf("Unexpected report %+v", report)
	}
	if len(report.Errors) != 2 {
		t.Errorf("Expected 2 recorded errors, got %d", len(report.Errors))
	}
	if len(*sleeps) != 2 {
		t.Errorf("Pacing should only follow successes, got %d sleeps", len(*sleeps))
	}
	if got := reporter.GetErrorStats()["category_input"]; got != 2 {
		t.Errorf("Expected 2 input errors reported, got %d", got)
	}
}

func TestExecuteWithoutPacingNeverSleeps(t *testing.T) {
	e, sleeps := newTestExecutor(0)
	e.Execute([]ClickCommand{{X: 1}, {X: 2}}, &mockClicker{})
	if len(*sleeps) != 0 {
		t.Errorf("Expected no sleeps, got %d", len(*sleeps))
	}
}

func TestExecuteAllFailing(t *testing.T) {
	e, _ := newTestExecutor(0)
	clicker := &mockClicker{failOn: map[int]bool{1: true, 2: true}}

	report := e.Execute([]ClickCommand{{X: 1}, {X: 2}}, clicker)

	if report.Succeeded != 0 || report.Failed != 2 {
		t.Errorf("Unexpected report %+v", report)
	}
	if len(report.Errors) != 2 || report.Errors[1].Error() != "synthetic failure at (2,0)" {
		t.Errorf("Unexpected errors %v", report.Errors)
	}
}
