package cli

import (
	"fmt"

	"github.com/fatih/color"
	"github.com/spf13/cobra"

	"github.com/claudesync/cli/internal/config"
	"github.com/claudesync/cli/internal/paths"
	"github.com/claudesync/cli/internal/sync"
)

func newSyncCmd() *cobra.Command {
	var message string
	var branch string
	var skipRedaction bool

	cmd := &cobra.Command{
		Use:   "sync",
		Short: "Pull remote changes, then push local changes",
		Long:  "Runs a pull followed by a push in one step, so a push immediately after never conflicts with changes that arrived during the pull.",
		RunE: func(cmd *cobra.Command, _ []string) error {
			return runSync(cmd, message, branch, skipRedaction)
		},
	}

	cmd.Flags().StringVarP(&message, "message", "m", "", "Commit message for the push step (default: auto-generated)")
	cmd.Flags().StringVar(&branch, "branch", "", "Branch to sync (default: current branch)")
	cmd.Flags().BoolVar(&skipRedaction, "skip-redaction", false, "Don't scan pushed content for secrets before committing")

	return cmd
}

func runSync(cmd *cobra.Command, message, branch string, skipRedaction bool) error {
	out := cmd.OutOrStdout()
	layout, err := resolveLayout()
	if err != nil {
		return err
	}

	claudeDir, err := paths.ClaudeProjectsDir()
	if err != nil {
		return err
	}

	orch, err := openOrchestrator(cmd.Context(), layout)
	if err != nil {
		return err
	}

	filterCfg, err := config.LoadFilterConfig(layout.ConfigPath())
	if err != nil {
		return fmt.Errorf("loading filter configuration: %w", err)
	}

	fmt.Fprintln(out, color.CyanString("=== Bidirectional Sync ==="))
	fmt.Fprintln(out, color.New(color.Bold).Sprint("Step 1: Pulling remote changes..."))

	result, err := orch.Bidirectional(cmd.Context(), claudeDir,
		sync.PullOptions{Branch: branch, Filter: filterCfg},
		sync.PushOptions{CommitMessage: message, PushRemote: true, Branch: branch, Filter: filterCfg, SkipRedaction: skipRedaction},
	)
	if result != nil && result.Pull != nil {
		printPullResult(out, result.Pull)
	}
	if err != nil {
		return fmt.Errorf("sync failed: %w", err)
	}

	fmt.Fprintln(out)
	fmt.Fprintln(out, color.New(color.Bold).Sprint("Step 2: Pushing local changes..."))
	if !result.Push.Committed {
		fmt.Fprintln(out, "Nothing new to push.")
	} else {
		fmt.Fprintf(out, "%s %d session(s)\n", color.GreenString("Pushed"), len(result.Push.Conversations))
	}

	fmt.Fprintln(out)
	fmt.Fprintln(out, color.GreenString("=== Sync Complete ==="))
	return nil
}
