package app

import (
	"runtime"

	"github.com/spf13/cobra"

	"github.com/agentstation/rollcall/cmd/rollcall/cmd/amount"
	"github.com/agentstation/rollcall/cmd/rollcall/cmd/canon"
	"github.com/agentstation/rollcall/cmd/rollcall/cmd/merge"
)

// CreateMergeCommand creates the merge command with app dependencies.
func (a *App) CreateMergeCommand() *cobra.Command {
	cmd := merge.NewCommand(a)
	cmd.GroupID = "core"
	return cmd
}

// CreateCanonCommand creates the canon command with app dependencies.
func (a *App) CreateCanonCommand() *cobra.Command {
	cmd := canon.NewCommand(a)
	cmd.GroupID = "inspect"
	return cmd
}

// CreateAmountCommand creates the amount command with app dependencies.
func (a *App) CreateAmountCommand() *cobra.Command {
	cmd := amount.NewCommand(a)
	cmd.GroupID = "inspect"
	return cmd
}

// CreateVersionCommand creates the version command.
func (a *App) CreateVersionCommand() *cobra.Command {
	return &cobra.Command{
		Use:   "version",
		Short: "Show version information",
		Run: func(cmd *cobra.Command, _ []string) {
			cmd.Printf("rollcall %s\n", a.version)
			if a.config.Verbose {
				cmd.Printf("  commit:   %s\n", a.commit)
				cmd.Printf("  built:    %s\n", a.date)
				cmd.Printf("  built by: %s\n", a.builtBy)
				cmd.Printf("  go:       %s %s/%s\n", runtime.Version(), runtime.GOOS, runtime.GOARCH)
			}
		},
	}
}
