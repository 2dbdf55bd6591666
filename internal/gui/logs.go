package gui

import (
	"bytes"
	"encoding/json"
	"fmt"
	"sort"
	"strings"
	"sync"
	"time"

	"fyne.io/fyne/v2"
	"fyne.io/fyne/v2/container"
	"fyne.io/fyne/v2/widget"
)

// LogEntry represents a single log entry
type LogEntry struct {
	Timestamp time.Time
	Level     string
	Component string
	Message   string
	Fields    string
}

// LogPanel shows recent log lines. It is an io.Writer for the JSON lines the
// logging package emits, so it can be added as a logger output.
type LogPanel struct {
	logs    []LogEntry
	logsMu  sync.RWMutex
	maxLogs int
	partial []byte

	logList         *widget.List
	filterSelect    *widget.Select
	autoScrollCheck *widget.Check
}

// NewLogPanel creates a panel keeping the last maxLogs entries
func NewLogPanel(maxLogs int) *LogPanel {
	if maxLogs <= 0 {
		maxLogs = 1000
	}
	return &LogPanel{logs: make([]LogEntry, 0, maxLogs), maxLogs: maxLogs}
}

// Write implements io.Writer
func (l *LogPanel) Write(p []byte) (int, error) {
	l.logsMu.Lock()
	l.partial = append(l.partial, p...)
	var lines [][]byte
	for {
		i := bytes.IndexByte(l.partial, '\n')
		if i < 0 {
			break
		}
		lines = append(lines, append([]byte(nil), l.partial[:i]...))
		l.partial = l.partial[i+1:]
	}
	l.logsMu.Unlock()

	for _, line := range lines {
		if len(bytes.TrimSpace(line)) == 0 {
			continue
		}
		l.AddLog(parseLogLine(line))
	}
	return len(p), nil
}

// parseLogLine turns one JSON log line into an entry. Lines that are not
// JSON are kept verbatim as the message.
func parseLogLine(line []byte) LogEntry {
	var raw map[string]interface{}
	if err := json.Unmarshal(line, &raw); err != nil {
		return LogEntry{Timestamp: time.Now(), Level: "INFO", Message: string(line)}
	}

	entry := LogEntry{Timestamp: time.Now()}
	if v, ok := raw["time"].(string); ok {
		if ts, err := time.Parse(time.RFC3339, v); err == nil {
			entry.Timestamp = ts
		}
	}
	if v, ok := raw["level"].(string); ok {
		entry.Level = strings.ToUpper(v)
	}
	if v, ok := raw["component"].(string); ok {
		entry.Component = v
	}
	if v, ok := raw["message"].(string); ok {
		entry.Message = v
	}

	var keys []string
	for k := range raw {
		switch k {
		case "time", "level", "component", "message":
			continue
		}
		keys = append(keys, k)
	}
	sort.Strings(keys)
	fields := make([]string, 0, len(keys))
	for _, k := range keys {
		fields = append(fields, fmt.Sprintf("%s=%v", k, raw[k]))
	}
	entry.Fields = strings.Join(fields, " ")
	return entry
}

// Build constructs the log viewer UI
func (l *LogPanel) Build() fyne.CanvasObject {
	l.filterSelect = widget.NewSelect(
		[]string{"All", "DEBUG", "INFO", "WARN", "ERROR"},
		func(selected string) {
			if l.logList != nil {
				l.logList.Refresh()
			}
		},
	)
	l.filterSelect.PlaceHolder = "All"

	l.autoScrollCheck = widget.NewCheck("Auto-scroll", nil)
	l.autoScrollCheck.SetChecked(true)

	clearBtn := widget.NewButton("Clear", func() {
		l.ClearLogs()
	})

	controls := container.NewHBox(
		widget.NewLabel("Filter:"),
		l.filterSelect,
		l.autoScrollCheck,
		clearBtn,
	)

	l.logList = widget.NewList(
		func() int {
			return len(l.filtered())
		},
		func() fyne.CanvasObject {
			return container.NewHBox(
				widget.NewLabel("15:04:05"),
				widget.NewLabel("[LEVEL]"),
				widget.NewLabel("message"),
			)
		},
		func(id widget.ListItemID, item fyne.CanvasObject) {
			entries := l.filtered()
			if id < 0 || id >= len(entries) {
				return
			}
			entry := entries[id]
			box := item.(*fyne.Container)

			box.Objects[0].(*widget.Label).SetText(entry.Timestamp.Format("15:04:05"))

			levelLabel := box.Objects[1].(*widget.Label)
			levelLabel.SetText(fmt.Sprintf("[%s]", entry.Level))
			switch entry.Level {
			case "DEBUG":
				levelLabel.Importance = widget.LowImportance
			case "WARN":
				levelLabel.Importance = widget.WarningImportance
			case "ERROR", "FATAL":
				levelLabel.Importance = widget.DangerImportance
			default:
				levelLabel.Importance = widget.MediumImportance
			}
			levelLabel.Refresh()

			text := entry.Message
			if entry.Fields != "" {
				text += "  " + entry.Fields
			}
			box.Objects[2].(*widget.Label).SetText(text)
		},
	)

	return container.NewBorder(controls, nil, nil, nil, l.logList)
}

// AddLog adds a new log entry
func (l *LogPanel) AddLog(entry LogEntry) {
	l.logsMu.Lock()
	l.logs = append(l.logs, entry)
	if len(l.logs) > l.maxLogs {
		l.logs = l.logs[len(l.logs)-l.maxLogs:]
	}
	l.logsMu.Unlock()

	if l.logList != nil {
		fyne.Do(func() {
			l.logList.Refresh()
			if l.autoScrollCheck != nil && l.autoScrollCheck.Checked {
				l.logList.ScrollToBottom()
			}
		})
	}
}

// ClearLogs removes all log entries
func (l *LogPanel) ClearLogs() {
	l.logsMu.Lock()
	l.logs = make([]LogEntry, 0, l.maxLogs)
	l.logsMu.Unlock()

	if l.logList != nil {
		l.logList.Refresh()
	}
}

// GetLogs returns a copy of the stored entries
func (l *LogPanel) GetLogs() []LogEntry {
	l.logsMu.RLock()
	defer l.logsMu.RUnlock()

	logs := make([]LogEntry, len(l.logs))
	copy(logs, l.logs)
	return logs
}

func (l *LogPanel) filtered() []LogEntry {
	selected := "All"
	if l.filterSelect != nil && l.filterSelect.Selected != "" {
		selected = l.filterSelect.Selected
	}

	l.logsMu.RLock()
	defer l.logsMu.RUnlock()

	if selected == "All" {
		return l.logs
	}
	var out []LogEntry
	for _, entry := range l.logs {
		if entry.Level == selected {
			out = append(out, entry)
		}
	}
	return out
}
