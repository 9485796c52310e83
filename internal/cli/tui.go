package cli

import (
	"fmt"
	"os"

	tea "github.com/charmbracelet/bubbletea"

	"soberly/internal/tui"
)

type TuiCmd struct{}

func (c *TuiCmd) Run(ctx *Context) error {
	ctx.PerformAutomaticBackup()

	if _, err := ctx.Engine.CheckAndResetIfNewDay(); err != nil {
		return err
	}
	if err := ctx.Comfort.RestoreOnStartup(); err != nil {
		return err
	}

	p := tea.NewProgram(tui.NewModel(ctx.Store, ctx.KV, ctx.Engine, ctx.Comfort, ctx.Milestones), tea.WithAltScreen())
	if _, err := p.Run(); err != nil {
		fmt.Printf("Alas, there's been an error: %v", err)
		os.Exit(1)
	}
	return nil
}
