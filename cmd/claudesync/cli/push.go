package cli

import (
	"fmt"

	"github.com/fatih/color"
	"github.com/spf13/cobra"

	"github.com/claudesync/cli/internal/config"
	"github.com/claudesync/cli/internal/history"
	"github.com/claudesync/cli/internal/paths"
	"github.com/claudesync/cli/internal/sync"
)

func newPushCmd() *cobra.Command {
	var message string
	var branch string
	var noRemotePush bool
	var skipRedaction bool

	cmd := &cobra.Command{
		Use:   "push",
		Short: "Push local conversation history to the sync repository",
		RunE: func(cmd *cobra.Command, _ []string) error {
			return runPush(cmd, message, branch, noRemotePush, skipRedaction)
		},
	}

	cmd.Flags().StringVarP(&message, "message", "m", "", "Commit message (default: auto-generated)")
	cmd.Flags().StringVar(&branch, "branch", "", "Branch to commit to (default: current branch)")
	cmd.Flags().BoolVar(&noRemotePush, "no-remote", false, "Commit locally only; don't push to the configured remote")
	cmd.Flags().BoolVar(&skipRedaction, "skip-redaction", false, "Don't scan pushed content for secrets before committing")

	return cmd
}

func runPush(cmd *cobra.Command, message, branch string, noRemotePush, skipRedaction bool) error {
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

	result, err := orch.Push(cmd.Context(), claudeDir, sync.PushOptions{
		CommitMessage: message,
		PushRemote:    !noRemotePush,
		Branch:        branch,
		Filter:        filterCfg,
		SkipRedaction: skipRedaction,
	})
	if err != nil {
		return fmt.Errorf("push failed: %w", err)
	}

	if !result.Committed {
		fmt.Fprintln(out, "Nothing to push; sync repository already up to date.")
		return nil
	}

	fmt.Fprintf(out, "%s %d session(s): %d added, %d modified, %d unchanged\n",
		color.GreenString("Pushed"),
		len(result.Conversations),
		result.Stats[history.ConversationAdded], result.Stats[history.ConversationModified], result.Stats[history.ConversationUnchanged])
	fmt.Fprintf(out, "  Commit: %s\n", result.CommitID)
	if result.Pushed {
		fmt.Fprintln(out, "  "+color.GreenString("Pushed to remote."))
	} else if result.PushWarning != nil {
		fmt.Fprintf(out, "  %s %v\n", color.YellowString("Remote push skipped:"), result.PushWarning)
	}
	if result.HistoryWarning != nil {
		fmt.Fprintf(out, "  %s %v\n", color.YellowString("Warning:"), result.HistoryWarning)
	}
	return nil
}
