package config

import (
	"errors"
	"fmt"
	"io/fs"
	"math"
	"os"
	"strconv"
	"strings"
	"time"

	"github.com/joho/godotenv"
	"gopkg.in/ini.v1"
)

const sectionName = "Clicker"

// EnvPrefix prefixes every environment override
const EnvPrefix = "TILECLICKER_"

// LoadFromINI loads configuration from an INI file. A missing file yields the
// defaults; a malformed one is an error.
func LoadFromINI(path string) (Config, error) {
	config := NewDefaultConfig()

	if _, err := os.Stat(path); errors.Is(err, fs.ErrNotExist) {
		return config, nil
	}

	cfg, err := ini.Load(path)
	if err != nil {
		return config, fmt.Errorf("failed to load config file: %w", err)
	}

	section := cfg.Section(sectionName)

	// Detection
	config.TemplateFolder = section.Key("templateFolder").MustString(config.TemplateFolder)
	config.Threshold = section.Key("threshold").MustFloat64(config.Threshold)
	config.DedupProximity = section.Key("dedupProximity").MustInt(config.DedupProximity)

	// Target
	config.WindowTitle = section.Key("windowTitle").MustString(config.WindowTitle)

	// Clicking
	config.ClickDelay = secondsToDuration(section.Key("clickDelay").MustFloat64(config.ClickDelay.Seconds()))
	config.ButtonHold = time.Duration(section.Key("buttonHold").MustInt(int(config.ButtonHold/time.Millisecond))) * time.Millisecond
	config.TileOffsetX = section.Key("tileOffsetX").MustInt(0)
	config.TileOffsetY = section.Key("tileOffsetY").MustInt(0)

	switch {
	case section.HasKey("inputStrategy"):
		strategy, err := ParseInputStrategy(section.Key("inputStrategy").String())
		if err != nil {
			return config, err
		}
		config.InputStrategy = strategy
	case section.HasKey("useFastestMethod"):
		// Older settings files only carried the boolean switch
		if section.Key("useFastestMethod").MustBool(true) {
			config.InputStrategy = StrategyDirect
		} else {
			config.InputStrategy = StrategyAccessibility
		}
	}

	// Flow
	config.CalibrateClicks = section.Key("calibrateClicks").MustBool(config.CalibrateClicks)
	config.PromptMode = PromptMode(strings.ToLower(section.Key("promptMode").MustString(string(config.PromptMode))))

	// History
	config.HistoryDB = section.Key("historyDB").MustString("")

	// Logging
	config.LogLevel = section.Key("logLevel").MustString(config.LogLevel)
	config.LogFile = section.Key("logFile").MustString("")

	return config, nil
}

// ApplyEnv overrides config values from the environment. If envFile exists it
// is loaded first; variables already set in the process win over the file.
func ApplyEnv(config Config, envFile string) (Config, error) {
	if envFile != "" {
		if err := godotenv.Load(envFile); err != nil && !errors.Is(err, fs.ErrNotExist) {
			return config, fmt.Errorf("failed to load env file %s: %w", envFile, err)
		}
	}

	if v, ok := lookup("TEMPLATE_FOLDER"); ok {
		config.TemplateFolder = v
	}
	if v, ok := lookup("WINDOW_TITLE"); ok {
		config.WindowTitle = v
	}
	if v, ok := lookup("THRESHOLD"); ok {
		f, err := strconv.ParseFloat(v, 64)
		if err != nil {
			return config, fmt.Errorf("invalid %sTHRESHOLD: %w", EnvPrefix, err)
		}
		config.Threshold = f
	}
	if v, ok := lookup("CLICK_DELAY"); ok {
		f, err := strconv.ParseFloat(v, 64)
		if err != nil {
			return config, fmt.Errorf("invalid %sCLICK_DELAY: %w", EnvPrefix, err)
		}
		config.ClickDelay = secondsToDuration(f)
	}
	if v, ok := lookup("INPUT_STRATEGY"); ok {
		strategy, err := ParseInputStrategy(v)
		if err != nil {
			return config, err
		}
		config.InputStrategy = strategy
	}
	if v, ok := lookup("CALIBRATE_CLICKS"); ok {
		b, err := strconv.ParseBool(v)
		if err != nil {
			return config, fmt.Errorf("invalid %sCALIBRATE_CLICKS: %w", EnvPrefix, err)
		}
		config.CalibrateClicks = b
	}
	if v, ok := lookup("PROMPT_MODE"); ok {
		config.PromptMode = PromptMode(strings.ToLower(v))
	}
	if v, ok := lookup("HISTORY_DB"); ok {
		config.HistoryDB = v
	}
	if v, ok := lookup("LOG_LEVEL"); ok {
		config.LogLevel = v
	}

	return config, nil
}

// SaveToINI saves configuration to an INI file
func SaveToINI(config Config, path string) error {
	cfg := ini.Empty()
	section := cfg.Section(sectionName)

	// Detection
	section.Key("templateFolder").SetValue(config.TemplateFolder)
	section.Key("threshold").SetValue(strconv.FormatFloat(config.Threshold, 'f', -1, 64))
	section.Key("dedupProximity").SetValue(fmt.Sprintf("%d", config.DedupProximity))

	// Target
	section.Key("windowTitle").SetValue(config.WindowTitle)

	// Clicking
	section.Key("clickDelay").SetValue(strconv.FormatFloat(config.ClickDelay.Seconds(), 'f', -1, 64))
	section.Key("buttonHold").SetValue(fmt.Sprintf("%d", config.ButtonHold/time.Millisecond))
	section.Key("inputStrategy").SetValue(config.InputStrategy.String())
	section.Key("tileOffsetX").SetValue(fmt.Sprintf("%d", config.TileOffsetX))
	section.Key("tileOffsetY").SetValue(fmt.Sprintf("%d", config.TileOffsetY))

	// Flow
	section.Key("calibrateClicks").SetValue(fmt.Sprintf("%t", config.CalibrateClicks))
	section.Key("promptMode").SetValue(string(config.PromptMode))

	// History
	section.Key("historyDB").SetValue(config.HistoryDB)

	// Logging
	section.Key("logLevel").SetValue(config.LogLevel)
	section.Key("logFile").SetValue(config.LogFile)

	return cfg.SaveTo(path)
}

func lookup(key string) (string, bool) {
	v, ok := os.LookupEnv(EnvPrefix + key)
	if !ok || strings.TrimSpace(v) == "" {
		return "", false
	}
	return strings.TrimSpace(v), true
}

func secondsToDuration(s float64) time.Duration {
	return time.Duration(math.Round(s * float64(time.Second)))
}
