package cli

import (
	"fmt"
	"io"

	"github.com/fatih/color"
	"github.com/spf13/cobra"

	"github.com/claudesync/cli/internal/config"
	"github.com/claudesync/cli/internal/history"
	"github.com/claudesync/cli/internal/paths"
	"github.com/claudesync/cli/internal/sync"
)

func newPullCmd() *cobra.Command {
	var branch string
	var noFetch bool

	cmd := &cobra.Command{
		Use:   "pull",
		Short: "Pull conversation history from the sync repository into local Claude Code history",
		RunE: func(cmd *cobra.Command, _ []string) error {
			return runPull(cmd, branch, noFetch)
		},
	}

	cmd.Flags().StringVar(&branch, "branch", "", "Branch to pull from (default: current branch)")
	cmd.Flags().BoolVar(&noFetch, "no-fetch", false, "Don't fetch from the configured remote first")

	return cmd
}

func runPull(cmd *cobra.Command, branch string, noFetch bool) error {
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

	result, err := orch.Pull(cmd.Context(), claudeDir, sync.PullOptions{
		FetchRemote: !noFetch,
		Branch:      branch,
		Filter:      filterCfg,
	})
	if err != nil {
		return fmt.Errorf("pull failed: %w", err)
	}

	printPullResult(out, result)
	return nil
}

func printPullResult(out io.Writer, result *sync.PullResult) {
	fmt.Fprintf(out, "%s %d session(s): %d added, %d modified, %d unchanged\n",
		color.GreenString("Pulled"),
		len(result.Conversations),
		result.Stats[history.ConversationAdded], result.Stats[history.ConversationModified], result.Stats[history.ConversationUnchanged])

	if len(result.Conflicts) > 0 {
		fmt.Fprintf(out, "  %s %d conflict(s) detected, %d resolved by smart merge\n",
			color.YellowString("Conflicts:"), len(result.Conflicts), result.SmartMerged)
	}
	if result.FetchWarning != nil {
		fmt.Fprintf(out, "  %s %v\n", color.YellowString("Remote fetch skipped:"), result.FetchWarning)
	}
	if result.HistoryWarning != nil {
		fmt.Fprintf(out, "  %s %v\n", color.YellowString("Warning:"), result.HistoryWarning)
	}
}
