// Package main is the entry point for the agenthook runner.
package main

import (
	"fmt"
	"os"
	"os/signal"
	"path/filepath"
	"syscall"

	"github.com/alecthomas/kong"
	"github.com/joho/godotenv"

	"github.com/openclaw/agenthook/internal/config"
	"github.com/openclaw/agenthook/internal/diagnostics"
	"github.com/openclaw/agenthook/internal/discovery"
	"github.com/openclaw/agenthook/internal/engine"
	"github.com/openclaw/agenthook/internal/journal"
	"github.com/openclaw/agenthook/internal/registry"
	"github.com/openclaw/agenthook/internal/validator"
)

// Build-time variables (set via ldflags)
var (
	version   = "dev"
	commit    = "unknown"
	buildTime = "unknown"
)

// App carries the wired components into the command Run methods.
type App struct {
	Config        *config.Config
	Log           *diagnostics.Logger
	Reporter      *diagnostics.Reporter
	Engine        *engine.Engine
	Finder        *discovery.Finder
	Validator     *validator.Validator
	Journal       *journal.Journal
	WorkspaceRoot string
	Debug         bool
}

func main() {
	_ = godotenv.Load()

	// The one fatal configuration failure: an inconsistent constant set.
	if err := registry.Validate(); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(registry.ExitGeneralError)
	}

	var cli CLI
	kctx := kong.Parse(&cli,
		kong.Name("agenthook"),
		kong.Description("Event-driven agent hook runner."),
		kong.UsageOnError(),
	)

	app, err := buildApp(&cli)
	if err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(registry.ExitGeneralError)
	}

	// An interrupt triggers emergency cleanup before exiting with the
	// distinguished status code.
	sigCh := make(chan os.Signal, 1)
	signal.Notify(sigCh, syscall.SIGINT, syscall.SIGTERM)
	go func() {
		<-sigCh
		app.Log.Warn("interrupted, cleaning up")
		app.Reporter.SafeExit(registry.ExitInterrupted, app.Engine.EmergencyCleanup)
	}()

	err = kctx.Run(app)
	if err != nil {
		fmt.Fprintf(os.Stderr, "agenthook: %v\n", err)
		if hint := diagnostics.Suggestion(err); hint != "" {
			fmt.Fprintf(os.Stderr, "hint: %s\n", hint)
		}
	}
	app.Reporter.SafeExit(diagnostics.ExitCode(err), nil)
}

// buildApp wires the component graph for one invocation.
func buildApp(cli *CLI) (*App, error) {
	workspaceRoot, err := filepath.Abs(cli.Workspace)
	if err != nil {
		return nil, fmt.Errorf("resolve workspace root: %w", err)
	}

	cfg, err := config.Load(cli.Config, workspaceRoot)
	if err != nil {
		return nil, err
	}

	stateDir, err := registry.StateDir()
	if err != nil {
		return nil, err
	}

	log, err := diagnostics.New(filepath.Join(stateDir, "hooks.log"))
	if err != nil {
		return nil, err
	}
	log.SetLevel(logLevel(cli.Debug, cfg.Logging.Level))

	violations, err := diagnostics.OpenViolationLog(filepath.Join(stateDir, "violations.log"))
	if err != nil {
		return nil, err
	}

	notifier, err := diagnostics.NewNotifier(cfg.Notify.Target)
	if err != nil {
		// A broken sink must not keep hooks from running.
		log.Warn("notification sink unavailable", map[string]interface{}{"error": err.Error()})
		notifier = nil
	}

	reporter := &diagnostics.Reporter{Log: log, Violations: violations, Notify: notifier}
	finder := discovery.NewFinder(workspaceRoot, log.WithComponent("discovery"))

	allowedRoots := []string{workspaceRoot, os.TempDir()}
	if home, err := os.UserHomeDir(); err == nil {
		allowedRoots = append(allowedRoots, filepath.Join(home, ".claude"))
	}
	v := &validator.Validator{Reporter: reporter, AllowedRoots: allowedRoots}
	jnl := journal.Open(stateDir)

	eng := &engine.Engine{
		Finder:    finder,
		Validator: v,
		Reporter:  reporter,
		Invoker: &engine.CommandInvoker{
			Command: cfg.Collaborator.Command,
			Args:    cfg.Collaborator.Args,
		},
		Log:           log.WithComponent("engine"),
		WorkspaceRoot: workspaceRoot,
		Journal:       jnl,
	}

	return &App{
		Config:        cfg,
		Log:           log,
		Reporter:      reporter,
		Engine:        eng,
		Finder:        finder,
		Validator:     v,
		Journal:       jnl,
		WorkspaceRoot: workspaceRoot,
		Debug:         cli.Debug,
	}, nil
}

func logLevel(debug bool, configured string) diagnostics.Level {
	if debug {
		return diagnostics.LevelDebug
	}
	switch configured {
	case "debug":
		return diagnostics.LevelDebug
	case "warn":
		return diagnostics.LevelWarn
	case "error":
		return diagnostics.LevelError
	case "critical":
		return diagnostics.LevelCritical
	default:
		return diagnostics.LevelInfo
	}
}

func (v *VersionCmd) Run(app *App) error {
	fmt.Printf("agenthook %s (commit %s, built %s)\n", version, commit, buildTime)
	return nil
}
