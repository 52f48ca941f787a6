package cli

import (
	"fmt"

	"github.com/fatih/color"
	"github.com/spf13/cobra"

	"github.com/claudesync/cli/internal/config"
	"github.com/claudesync/cli/internal/scm/gitscm"
	"github.com/claudesync/cli/internal/sync"
)

func newRemoteCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "remote",
		Short: "Manage the sync repository's remotes",
	}
	cmd.AddCommand(newRemoteShowCmd())
	cmd.AddCommand(newRemoteSetCmd())
	cmd.AddCommand(newRemoteRemoveCmd())
	return cmd
}

func newRemoteShowCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "show",
		Short: "List configured remotes",
		RunE: func(cmd *cobra.Command, _ []string) error {
			return runRemoteShow(cmd)
		},
	}
}

func newRemoteSetCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "set <name> <url>",
		Short: "Configure (or replace) a remote",
		Args:  cobra.ExactArgs(2),
		RunE: func(cmd *cobra.Command, args []string) error {
			return runRemoteSet(cmd, args[0], args[1])
		},
	}
}

func newRemoteRemoveCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "remove <name>",
		Short: "Remove a configured remote",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			return runRemoteRemove(cmd, args[0])
		},
	}
}

func runRemoteShow(cmd *cobra.Command) error {
	out := cmd.OutOrStdout()
	layout, err := resolveLayout()
	if err != nil {
		return err
	}
	repo := gitscm.New()
	if err := repo.Open(cmd.Context(), layout.SyncRepoPath); err != nil {
		return fmt.Errorf("opening sync repository at %s: %w", layout.SyncRepoPath, err)
	}

	remotes, err := sync.ListRemotes(cmd.Context(), repo)
	if err != nil {
		return err
	}
	if len(remotes) == 0 {
		fmt.Fprintln(out, "No remotes configured.")
		return nil
	}
	for _, r := range remotes {
		fmt.Fprintf(out, "  %s\t%s\n", color.CyanString(r.Name), r.URL)
	}
	return nil
}

func runRemoteSet(cmd *cobra.Command, name, url string) error {
	out := cmd.OutOrStdout()
	layout, err := resolveLayout()
	if err != nil {
		return err
	}
	state, err := config.LoadState(layout.StatePath())
	if err != nil {
		return err
	}
	repo := gitscm.New()
	if err := repo.Open(cmd.Context(), layout.SyncRepoPath); err != nil {
		return fmt.Errorf("opening sync repository at %s: %w", layout.SyncRepoPath, err)
	}

	if err := sync.SetRemote(cmd.Context(), repo, layout, state, name, url); err != nil {
		return err
	}
	fmt.Fprintf(out, "%s remote %s -> %s\n", color.GreenString("Configured"), name, url)
	return nil
}

func runRemoteRemove(cmd *cobra.Command, name string) error {
	out := cmd.OutOrStdout()
	layout, err := resolveLayout()
	if err != nil {
		return err
	}
	state, err := config.LoadState(layout.StatePath())
	if err != nil {
		return err
	}
	repo := gitscm.New()
	if err := repo.Open(cmd.Context(), layout.SyncRepoPath); err != nil {
		return fmt.Errorf("opening sync repository at %s: %w", layout.SyncRepoPath, err)
	}

	if err := sync.RemoveRemote(cmd.Context(), repo, layout, state, name); err != nil {
		return err
	}
	fmt.Fprintf(out, "%s remote %s\n", color.GreenString("Removed"), name)
	return nil
}
