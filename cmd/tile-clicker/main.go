package main

import (
	"context"
	"errors"
	"flag"
	"fmt"
	"os"

	"fyne.io/fyne/v2/app"

	"jordanella.com/tile-clicker-go/internal/capture"
	"jordanella.com/tile-clicker-go/internal/config"
	"jordanella.com/tile-clicker-go/internal/controller"
	"jordanella.com/tile-clicker-go/internal/database"
	"jordanella.com/tile-clicker-go/internal/gui"
	"jordanella.com/tile-clicker-go/internal/input"
	"jordanella.com/tile-clicker-go/internal/logging"
	"jordanella.com/tile-clicker-go/internal/prompt"
	"jordanella.com/tile-clicker-go/internal/window"
	"jordanella.com/tile-clicker-go/pkg/templates"
)

func main() {
	os.Exit(run())
}

func run() int {
	configPath := flag.String("config", "settings.ini", "Path to the INI settings file")
	envFile := flag.String("env", ".env", "Optional .env file with TILECLICKER_* overrides")
	writeDefault := flag.Bool("write-default", false, "Write the effective settings to -config and exit")
	flag.Parse()

	cfg, err := config.LoadFromINI(*configPath)
	if err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		return 1
	}
	cfg, err = config.ApplyEnv(cfg, *envFile)
	if err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		return 1
	}
	if err := cfg.Validate(); err != nil {
		fmt.Fprintf(os.Stderr, "Invalid configuration: %v\n", err)
		return 1
	}

	if *writeDefault {
		if err := config.SaveToINI(cfg, *configPath); err != nil {
			fmt.Fprintf(os.Stderr, "Error: %v\n", err)
			return 1
		}
		fmt.Printf("Wrote settings to %s\n", *configPath)
		return 0
	}

	logger := logging.NewLogger("Main").SetMinLevel(logging.ParseLevel(cfg.LogLevel))
	if cfg.LogFile != "" {
		f, err := logging.OpenLogFile(cfg.LogFile)
		if err != nil {
			logger.Error("Failed to open log file", err)
			return 1
		}
		defer f.Close()
		logger.AddOutput(f)
	}

	// The GUI log panel must be attached before component loggers are derived
	var logPanel *gui.LogPanel
	if cfg.PromptMode == config.PromptModeGUI {
		logPanel = gui.NewLogPanel(1000)
		logger.AddOutput(logPanel)
	}

	reporter := logging.NewErrorReporter(logger.Component("Errors"))
	defer func() {
		if stats := reporter.GetErrorStats(); stats["total"] > 0 {
			fields := make(map[string]interface{}, len(stats))
			for k, v := range stats {
				fields[k] = v
			}
			logger.WarnWithContext("Errors during this session", fields)
		}
	}()

	logger.InfoWithContext("Loading templates", map[string]interface{}{"dir": cfg.TemplateFolder})
	lib, err := templates.NewLoader(cfg.TemplateFolder).WithLogger(logger.Component("Templates")).Load()
	if err != nil {
		reporter.ReportCriticalError(logging.ErrorCategoryTemplate, "Main", "Cannot load templates", err, nil)
		return 1
	}

	var history *database.DB
	if cfg.HistoryDB != "" {
		history, err = database.OpenAndMigrate(cfg.HistoryDB, logger.Component("Database"))
		if err != nil {
			reporter.ReportError(logging.ErrorCategoryDatabase, logging.ErrorSeverityHigh, "Main", "Round history disabled", err,
				map[string]interface{}{"path": cfg.HistoryDB})
			history = nil
		} else {
			defer history.Close()
		}
	}

	locator := window.NewLocator()
	driver, err := input.FromConfig(cfg, locator)
	if err != nil {
		logger.Error("Failed to create input driver", err)
		return 1
	}

	deps := controller.Deps{
		Locator:    locator,
		Capturer:   capture.NewScreenCapturer(),
		Driver:     driver,
		Calibrator: input.NewDirect(cfg.ButtonHold),
		Focus:      window.Activate,
		Templates:  lib.Templates(),
		Logger:     logger.Component("Controller"),
		Reporter:   reporter,
	}
	if history != nil {
		deps.History = history
	}

	logger.InfoWithContext("Starting", map[string]interface{}{"config": cfg.String()})

	if cfg.PromptMode == config.PromptModeConsole {
		deps.Prompt = prompt.NewStdConsole()
		return runController(context.Background(), deps, cfg, logger)
	}

	a := app.NewWithID("com.jordanella.tile-clicker-go")
	var source gui.RoundSource
	if history != nil {
		source = history
	}
	shell := gui.NewShell(a, "Tile Clicker", logPanel, source)
	deps.Prompt = shell.Prompt()

	ctrl, err := controller.New(deps, cfg)
	if err != nil {
		logger.Error("Failed to create controller", err)
		return 1
	}

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()
	shell.Attach(ctrl, cancel)

	code := make(chan int, 1)
	go func() {
		code <- exitCode(ctrl.Run(ctx), logger)
		shell.Quit()
	}()

	// Returns once the controller quits the app or the window is closed
	shell.ShowAndRun()
	return <-code
}

func runController(ctx context.Context, deps controller.Deps, cfg config.Config, logger *logging.Logger) int {
	ctrl, err := controller.New(deps, cfg)
	if err != nil {
		logger.Error("Failed to create controller", err)
		return 1
	}
	return exitCode(ctrl.Run(ctx), logger)
}

func exitCode(err error, logger *logging.Logger) int {
	switch {
	case err == nil, errors.Is(err, context.Canceled):
		logger.Info("Stopped")
		return 0
	case capture.IsCaptureError(err):
		logger.Error("Stopped after a capture failure", err)
		return 2
	default:
		logger.Error("Stopped", err)
		return 1
	}
}
