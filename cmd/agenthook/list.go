package main

import (
	"fmt"
	"strings"

	"github.com/charmbracelet/lipgloss"
	"github.com/muesli/reflow/wordwrap"

	"github.com/openclaw/agenthook/internal/storage"
)

const descWidth = 72

var (
	nameStyle = lipgloss.NewStyle().Bold(true)
	tierStyle = lipgloss.NewStyle().Faint(true)
	descStyle = lipgloss.NewStyle().PaddingLeft(4)
	toolStyle = lipgloss.NewStyle().PaddingLeft(4).Faint(true)
)

func (l *ListCmd) Run(app *App) error {
	defs, err := app.Finder.ListAll()
	if err != nil {
		return err
	}
	if len(defs) == 0 {
		fmt.Println("no agents found")
		fmt.Printf("add definitions under %s or ~/.claude/agents\n",
			app.Finder.WorkspaceDir)
		return nil
	}

	for _, def := range defs {
		tier := "user"
		if def.OriginTier == storage.TierWorkspace {
			tier = "workspace"
		}
		fmt.Printf("%s %s\n", nameStyle.Render(def.Name),
			tierStyle.Render("("+tier+")"))
		fmt.Println(descStyle.Render(wordwrap.String(def.Description, descWidth)))
		if len(def.Tools) > 0 {
			fmt.Println(toolStyle.Render("tools: " + strings.Join(def.Tools, ", ")))
		}
	}
	fmt.Printf("\n%d agent(s)\n", len(defs))
	return nil
}
