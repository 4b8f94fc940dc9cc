package main

import (
	"context"
	"fmt"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/sobatea/chartsync/internal/shared"
	"github.com/sobatea/chartsync/internal/ui"
	"github.com/urfave/cli/v3"
)

// TUI launches the interactive terminal UI for chart syncing.
func (r *Runner) TUI(ctx context.Context, cmd *cli.Command) error {
	path := cmd.StringArg("path")
	if path == "" {
		return fmt.Errorf("%w: path to a chart file or directory is required", shared.ErrMissingArgument)
	}

	engine, db, err := r.buildEngine(cmd)
	if err != nil {
		return err
	}
	if db != nil {
		defer db.Close()
	}

	model := ui.NewModel(ctx, engine, path, r.resolveRecursive(cmd))
	p := tea.NewProgram(model)

	if _, err := p.Run(); err != nil {
		return fmt.Errorf("error running TUI: %w", err)
	}

	return nil
}
