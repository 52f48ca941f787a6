package cli

import (
	"fmt"
	"path/filepath"

	"github.com/fatih/color"
	"github.com/spf13/cobra"

	"github.com/claudesync/cli/internal/paths"
	"github.com/claudesync/cli/internal/scm/gitscm"
	"github.com/claudesync/cli/internal/sync"
)

func newInitCmd() *cobra.Command {
	var repoPath string
	var remoteURL string
	var cloned bool

	cmd := &cobra.Command{
		Use:   "init",
		Short: "Create or connect the sync repository",
		Long:  "Initialize the local sync repository, optionally attaching a remote. Run once per machine before pushing or pulling.",
		RunE: func(cmd *cobra.Command, _ []string) error {
			return runInit(cmd, repoPath, remoteURL, cloned)
		},
	}

	cmd.Flags().StringVar(&repoPath, "path", "", "Directory to use as the sync repository (default: ~/.config/claude-sync/repo)")
	cmd.Flags().StringVar(&remoteURL, "remote", "", "Remote URL to attach as 'origin'")
	cmd.Flags().BoolVar(&cloned, "cloned", false, "Mark the repository as obtained via clone rather than created fresh")

	return cmd
}

func runInit(cmd *cobra.Command, repoPath, remoteURL string, cloned bool) error {
	out := cmd.OutOrStdout()
	layout, err := resolveLayout()
	if err != nil {
		return err
	}

	if repoPath == "" {
		repoPath = filepath.Join(layout.ConfigDir, "repo")
	}

	fmt.Fprintln(out, color.CyanString("Initializing claude-sync repository..."))

	repo := gitscm.New()
	state, err := sync.Init(cmd.Context(), repo, layout, sync.InitOptions{
		RepoPath:     repoPath,
		RemoteURL:    remoteURL,
		IsClonedRepo: cloned,
	})
	if err != nil {
		return fmt.Errorf("initializing sync repository: %w", err)
	}

	fmt.Fprintf(out, "  %s %s\n", color.GreenString("Repository:"), state.SyncRepoPath)
	if state.HasRemote {
		fmt.Fprintf(out, "  %s %s\n", color.GreenString("Remote:"), remoteURL)
	} else {
		fmt.Fprintln(out, "  "+color.YellowString("No remote configured; run 'claudesync remote set origin <url>' later."))
	}
	fmt.Fprintln(out, color.GreenString("Done.")+" Next: claudesync push")
	return nil
}
