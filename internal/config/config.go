package config

import (
	"fmt"
	"strings"
	"time"
)

// InputStrategy selects how synthetic clicks reach the target window
type InputStrategy int

const (
	// StrategyDirect moves the system pointer and synthesizes button events
	StrategyDirect InputStrategy = iota
	// StrategyAccessibility clicks through the target window's own handle
	StrategyAccessibility
)

func (s InputStrategy) String() string {
	switch s {
	case StrategyDirect:
		return "direct"
	case StrategyAccessibility:
		return "accessibility"
	default:
		return "unknown"
	}
}

// ParseInputStrategy converts a config token into an InputStrategy
func ParseInputStrategy(s string) (InputStrategy, error) {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "direct", "fast", "fastest":
		return StrategyDirect, nil
	case "accessibility", "window", "uia":
		return StrategyAccessibility, nil
	default:
		return StrategyDirect, fmt.Errorf("unknown input strategy %q", s)
	}
}

// PromptMode selects the operator prompt implementation
type PromptMode string

const (
	PromptModeGUI     PromptMode = "gui"
	PromptModeConsole PromptMode = "console"
)

// Config holds every setting of the clicker. It is built once at startup and
// passed by value afterwards.
type Config struct {
	// Detection
	TemplateFolder string
	Threshold      float64 // 0.0-1.0, TM_CCOEFF_NORMED confidence
	DedupProximity int     // pixels per axis

	// Target
	WindowTitle string

	// Clicking
	ClickDelay    time.Duration // pacing after each successful click
	ButtonHold    time.Duration // hold between button down and up
	InputStrategy InputStrategy
	TileOffsetX   int
	TileOffsetY   int

	// Flow
	CalibrateClicks bool
	PromptMode      PromptMode

	// History
	HistoryDB string // empty disables round history

	// Logging
	LogLevel string
	LogFile  string
}

// NewDefaultConfig creates a config with default values
func NewDefaultConfig() Config {
	return Config{
		TemplateFolder:  "figs",
		Threshold:       0.75,
		DedupProximity:  5,
		WindowTitle:     "Let's Minesweeper",
		ClickDelay:      5 * time.Millisecond,
		ButtonHold:      time.Millisecond,
		InputStrategy:   StrategyDirect,
		CalibrateClicks: true,
		PromptMode:      PromptModeGUI,
		LogLevel:        "INFO",
	}
}

// Validate ensures the configuration is usable
func (c Config) Validate() error {
	if c.TemplateFolder == "" {
		return fmt.Errorf("templateFolder cannot be empty")
	}
	if c.WindowTitle == "" {
		return fmt.Errorf("windowTitle cannot be empty")
	}
	if c.Threshold < 0 || c.Threshold > 1 {
		return fmt.Errorf("invalid threshold: %v (must be within 0.0-1.0)", c.Threshold)
	}
	if c.DedupProximity <= 0 {
		return fmt.Errorf("invalid dedupProximity: %d (must be > 0)", c.DedupProximity)
	}
	if c.ClickDelay < 0 {
		return fmt.Errorf("invalid clickDelay: %v (must be >= 0)", c.ClickDelay)
	}
	if c.ButtonHold < 0 {
		return fmt.Errorf("invalid buttonHold: %v (must be >= 0)", c.ButtonHold)
	}
	if c.InputStrategy != StrategyDirect && c.InputStrategy != StrategyAccessibility {
		return fmt.Errorf("invalid inputStrategy: %d", c.InputStrategy)
	}
	if c.PromptMode != PromptModeGUI && c.PromptMode != PromptModeConsole {
		return fmt.Errorf("invalid promptMode: %q", c.PromptMode)
	}
	return nil
}

// String returns a one-line summary for startup logs
func (c Config) String() string {
	return fmt.Sprintf("Config{Window: %q, Templates: %s, Threshold: %.2f, Delay: %v, Strategy: %s, Calibrate: %t}",
		c.WindowTitle, c.TemplateFolder, c.Threshold, c.ClickDelay, c.InputStrategy, c.CalibrateClicks)
}
