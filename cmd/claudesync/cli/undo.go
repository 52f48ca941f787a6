package cli

import (
	"errors"
	"fmt"

	"github.com/fatih/color"
	"github.com/spf13/cobra"

	"github.com/claudesync/cli/internal/paths"
	"github.com/claudesync/cli/internal/sync"
)

func newUndoCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "undo",
		Short: "Undo the most recent push or pull",
	}
	cmd.AddCommand(newUndoPullCmd())
	cmd.AddCommand(newUndoPushCmd())
	return cmd
}

func newUndoPullCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "pull",
		Short: "Restore local conversation history to its state before the last pull",
		RunE: func(cmd *cobra.Command, _ []string) error {
			return runUndoPull(cmd)
		},
	}
}

func newUndoPushCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "push",
		Short: "Reset the sync repository to its state before the last push",
		RunE: func(cmd *cobra.Command, _ []string) error {
			return runUndoPush(cmd)
		},
	}
}

func runUndoPull(cmd *cobra.Command) error {
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

	result, err := orch.UndoPull(cmd.Context(), claudeDir)
	if err != nil {
		if errors.Is(err, sync.ErrNoOperationToUndo) {
			fmt.Fprintln(out, "No pull to undo.")
			return nil
		}
		return fmt.Errorf("undo pull failed: %w", err)
	}

	fmt.Fprintf(out, "%s %d file(s) restored from snapshot %s (taken %s)\n",
		color.GreenString("Undone."), result.RestoredFiles, result.SnapshotID, result.Timestamp)
	return nil
}

func runUndoPush(cmd *cobra.Command) error {
	out := cmd.OutOrStdout()
	layout, err := resolveLayout()
	if err != nil {
		return err
	}
	orch, err := openOrchestrator(cmd.Context(), layout)
	if err != nil {
		return err
	}

	result, err := orch.UndoPush(cmd.Context())
	if err != nil {
		if errors.Is(err, sync.ErrNoOperationToUndo) {
			fmt.Fprintln(out, "No push to undo.")
			return nil
		}
		return fmt.Errorf("undo push failed: %w", err)
	}

	fmt.Fprintf(out, "%s repository reset to %s (was at snapshot %s, taken %s)\n",
		color.GreenString("Undone."), result.ResetCommit, result.SnapshotID, result.Timestamp)
	if result.NeedsForcePush {
		fmt.Fprintln(out, "  "+color.YellowString("That push had already reached the remote; a force-push is now required to converge it."))
	}
	return nil
}
