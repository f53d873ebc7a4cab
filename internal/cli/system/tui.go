package system

import (
	"fmt"

	tea "github.com/charmbracelet/bubbletea"

	"github.com/julianstephens/habitpulse/internal/cli"
	"github.com/julianstephens/habitpulse/internal/tui"
)

type TuiCmd struct{}

func (c *TuiCmd) Run(ctx *cli.Context) error {
	if err := ctx.Store.Load(); err != nil {
		return err
	}

	// Perform automatic backup on TUI startup (after successful load)
	ctx.PerformAutomaticBackup()

	return ctx.WithLock(func() error {
		p := tea.NewProgram(tui.NewModel(ctx.Store, ctx.Scheduler), tea.WithAltScreen())
		if _, err := p.Run(); err != nil {
			return fmt.Errorf("tui exited with error: %w", err)
		}
		return nil
	})
}
