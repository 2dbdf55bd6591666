package gui

import (
	"errors"
	"strings"
	"testing"
	"time"

	"jordanella.com/tile-clicker-go/internal/database"
	"jordanella.com/tile-clicker-go/internal/logging"
	"jordanella.com/tile-clicker-go/internal/prompt"
)

func TestLogPanelCollectsLoggerOutput(t *testing.T) {
	panel := NewLogPanel(10)
	logger := logging.NewWriterLogger("Controller", panel)

	logger.WarnWithContext("Board unchanged since previous round", map[string]interface{}{"round": 2})
	logger.Info("Window located")

	logs := panel.GetLogs()
	if len(logs) != 2 {
		t.Fatalf("Expected 2 entries, got %d", len(logs))
	}
	if logs[0].Level != "WARN" || logs[0].Component != "Controller" {
		t.Errorf("Unexpected first entry %+v", logs[0])
	}
	if logs[0].Message != "Board unchanged since previous round" || logs[0].Fields != "round=2" {
		t.Errorf("Unexpected message or fields %+v", logs[0])
	}
	if logs[1].Level != "INFO" {
		t.Errorf("Expected INFO, got %s", logs[1].Level)
	}
}

func TestLogPanelSplitWrites(t *testing.T) {
	panel := NewLogPanel(10)
	panel.Write([]byte(`{"level":"error","message":"cap`))
	if len(panel.GetLogs()) != 0 {
		t.Fatal("Partial line should be buffered")
	}
	panel.Write([]byte("ture failed\"}\nplain text\n"))

	logs := panel.GetLogs()
	if len(logs) != 2 {
		t.Fatalf("Expected 2 entries, got %d", len(logs))
	}
	if logs[0].Message != "capture failed" || logs[0].Level != "ERROR" {
		t.Errorf("Unexpected entry %+v", logs[0])
	}
	if logs[1].Message != "plain text" {
		t.Errorf("Non-JSON lines should be kept verbatim, got %q", logs[1].Message)
	}
}

func TestLogPanelTrimsOldest(t *testing.T) {
	panel := NewLogPanel(3)
	for i := 0; i < 5; i++ {
		panel.AddLog(LogEntry{Message: string(rune('a' + i))})
	}
	logs := panel.GetLogs()
	if len(logs) != 3 || logs[0].Message != "c" || logs[2].Message != "e" {
		t.Errorf("Expected last three entries, got %+v", logs)
	}
}

func TestClosedDialogPrompt(t *testing.T) {
	p := NewDialogPrompt(nil)
	p.Close()
	p.Close()

	if err := p.ConfirmInfo("t", "m"); !errors.Is(err, prompt.ErrClosed) {
		t.Errorf("Expected ErrClosed, got %v", err)
	}
	ok, err := p.ConfirmYesNo("t", "m")
	if ok || !errors.Is(err, prompt.ErrClosed) {
		t.Errorf("Expected false, ErrClosed; got %v, %v", ok, err)
	}
	ok, err = p.ConfirmRetryCancel("t", "m")
	if ok || !errors.Is(err, prompt.ErrClosed) {
		t.Errorf("Expected false, ErrClosed; got %v, %v", ok, err)
	}
}

func TestFormatRound(t *testing.T) {
	msg := "capture failed"
	completed := &database.Round{
		ID: 3, Status: database.RoundCompleted, StartedAt: time.Now(),
		Detections: 4, ClicksAttempted: 4, ClicksFailed: 1, TotalMs: 250, FrameUnchanged: true,
	}
	failed := &database.Round{ID: 4, Status: database.RoundCaptureFailed, StartedAt: time.Now(), ErrorMessage: &msg}

	if got := formatRound(completed); !strings.Contains(got, "3/4 clicks ok") || !strings.Contains(got, "board unchanged") {
		t.Errorf("Unexpected completed text %q", got)
	}
	if got := formatRound(failed); !strings.Contains(got, msg) {
		t.Errorf("Unexpected failed text %q", got)
	}
	if got := formatStats(&database.RoundStats{}); got != "No rounds recorded" {
		t.Errorf("Unexpected empty stats %q", got)
	}
}
