package main

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/openclaw/agenthook/internal/invocation"
	"github.com/openclaw/agenthook/internal/setup"
	"github.com/openclaw/agenthook/internal/validator"
)

func (r *RunCmd) Run(app *App) error {
	inv, err := invocation.ParseSingle(r.Agent, r.Event, r.Context)
	if err != nil {
		return err
	}
	if err := inv.ApplyFlags(r.Timeout, r.Blocking, r.NonBlocking, r.DryRun, app.Debug); err != nil {
		return err
	}
	inv.TargetFile = r.Target
	inv.TriggeringTool = r.Tool
	inv.IncludeHost = r.IncludeHost
	inv.MappingPath = r.Mapping

	return app.Engine.RunAgent(context.Background(), inv)
}

func (e *EventCmd) Run(app *App) error {
	inv, err := invocation.ParseEventWide(e.Event)
	if err != nil {
		return err
	}
	if err := inv.ApplyFlags(e.Timeout, e.Blocking, e.NonBlocking, e.DryRun, app.Debug); err != nil {
		return err
	}
	inv.TargetFile = e.Target
	inv.TriggeringTool = e.Tool
	inv.IncludeHost = e.IncludeHost
	inv.MappingPath = e.Mapping

	result, err := app.Engine.RunEvent(context.Background(), inv)
	if result != nil {
		summarize(result.Executed, result.Skipped, result.NonFatalFailures)
	}
	return err
}

func summarize(executed, skipped, nonFatal []string) {
	if len(executed) > 0 {
		fmt.Printf("executed: %s\n", strings.Join(executed, ", "))
	}
	if len(skipped) > 0 {
		fmt.Printf("skipped:  %s\n", strings.Join(skipped, ", "))
	}
	if len(nonFatal) > 0 {
		fmt.Printf("failed (non-fatal): %s\n", strings.Join(nonFatal, ", "))
	}
}

func (v *ValidateCmd) Run(app *App) error {
	depth := validator.DepthBasic
	if v.Strict {
		depth = validator.DepthStrict
	}

	// Accept either a definition path or an agent name.
	path := v.Agent
	if !strings.HasSuffix(path, ".md") {
		def, err := app.Finder.FindAgent(v.Agent)
		if err != nil {
			return err
		}
		path = def.SourcePath
	}

	def, err := app.Validator.ValidateFile(path, depth)
	if err != nil {
		return err
	}
	fmt.Printf("%s: valid (%s)\n", def.Name, path)
	return nil
}

func (i *InitCmd) Run(app *App) error {
	res, err := setup.Scaffold(app.WorkspaceRoot)
	if err != nil {
		return err
	}
	for _, p := range res.Created {
		fmt.Printf("created %s\n", p)
	}
	for _, p := range res.Skipped {
		fmt.Printf("kept    %s\n", p)
	}
	return nil
}

func (h *HistoryCmd) Run(app *App) error {
	recs, err := app.Journal.Recent(h.Limit)
	if err != nil {
		return err
	}
	if len(recs) == 0 {
		fmt.Println("no recorded runs")
		return nil
	}
	for _, r := range recs {
		line := fmt.Sprintf("%s  %-10s %-24s %-12s %s",
			r.Started.Format("2006-01-02 15:04:05"),
			r.Status, r.Agent, r.Event, r.Duration.Round(time.Millisecond))
		if r.Error != "" {
			line += "  " + firstLine(r.Error)
		}
		fmt.Println(line)
	}
	return nil
}

func firstLine(s string) string {
	if i := strings.IndexByte(s, '\n'); i >= 0 {
		return s[:i]
	}
	return s
}
