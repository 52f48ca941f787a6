// Package cli wires claude-sync's cobra commands to the internal sync
// orchestrator, path layout, and configuration packages.
package cli

import (
	"context"
	"fmt"
	"os/exec"
	"strings"

	"github.com/spf13/cobra"

	"github.com/claudesync/cli/internal/config"
	"github.com/claudesync/cli/internal/logging"
	"github.com/claudesync/cli/internal/paths"
	"github.com/claudesync/cli/internal/scm"
	"github.com/claudesync/cli/internal/scm/gitscm"
	"github.com/claudesync/cli/internal/sync"
	"github.com/claudesync/cli/internal/telemetry"
	"github.com/claudesync/cli/internal/versioncheck"
)

// Version and Commit are set at build time via -ldflags.
var (
	Version = "dev"
	Commit  = "unknown"
)

const gettingStarted = `

Getting Started:
  Run 'claudesync init' to create or connect a sync repository, then
  'claudesync push' and 'claudesync pull' to move conversation history
  between machines. 'claudesync sync' does both in one step.
`

// NewRootCmd builds the claudesync command tree.
func NewRootCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:           "claudesync",
		Short:         "Synchronize Claude Code conversation history across machines",
		Long:          "claudesync keeps Claude Code's local conversation history in sync across machines, using a git repository as the transport." + gettingStarted,
		SilenceErrors: true,
		SilenceUsage:  true,
		CompletionOptions: cobra.CompletionOptions{
			HiddenDefaultCmd: true,
		},
		PersistentPreRun: func(cmd *cobra.Command, _ []string) {
			layout, err := paths.NewLayout("")
			if err == nil {
				_ = layout.EnsureConfigDir()
				_ = logging.Init(layout.LogPath(), layout.LogOldPath())
			}
		},
		PersistentPostRun: func(cmd *cobra.Command, _ []string) {
			logging.Close()

			layout, err := paths.NewLayout("")
			var telemetryEnabled *bool
			if err == nil {
				if state, stateErr := config.LoadState(layout.StatePath()); stateErr == nil {
					telemetryEnabled = state.Telemetry
				}
			}

			client := telemetry.NewClient(Version, telemetryEnabled)
			defer client.Close()
			client.TrackCommand(cmd, 0, true)

			versioncheck.CheckAndNotify(context.Background(), layoutConfigDirOrEmpty(layout, err), Version, cmd.Hidden, cmd.OutOrStdout())
		},
		RunE: func(cmd *cobra.Command, _ []string) error {
			return cmd.Help()
		},
	}

	cmd.AddCommand(newInitCmd())
	cmd.AddCommand(newPushCmd())
	cmd.AddCommand(newPullCmd())
	cmd.AddCommand(newSyncCmd())
	cmd.AddCommand(newUndoCmd())
	cmd.AddCommand(newStatusCmd())
	cmd.AddCommand(newRemoteCmd())
	cmd.AddCommand(newVersionCmd())

	return cmd
}

func layoutConfigDirOrEmpty(layout *paths.Layout, err error) string {
	if err != nil || layout == nil {
		return ""
	}
	return layout.ConfigDir
}

// resolveLayout builds the path layout for a command, using the sync
// repository path recorded in state.json once one exists.
func resolveLayout() (*paths.Layout, error) {
	layout, err := paths.NewLayout("")
	if err != nil {
		return nil, err
	}
	if state, err := config.LoadState(layout.StatePath()); err == nil {
		layout.SyncRepoPath = state.SyncRepoPath
	}
	return layout, nil
}

// openOrchestrator loads sync state and opens the sync repository backend,
// returning a ready-to-use Orchestrator. Commands that require prior
// initialization (everything except init) call this first.
func openOrchestrator(ctx context.Context, layout *paths.Layout) (*sync.Orchestrator, error) {
	state, err := config.LoadState(layout.StatePath())
	if err != nil {
		return nil, err
	}

	repo := gitscm.New()
	if err := repo.Open(ctx, state.SyncRepoPath); err != nil {
		return nil, fmt.Errorf("opening sync repository at %s: %w", state.SyncRepoPath, err)
	}

	return sync.New(repo, layout, state, resolveAuthor()), nil
}

// resolveAuthor reads the committer identity from the user's global git
// configuration, falling back to a generic claude-sync identity when git
// isn't configured (a bare commit identity is still better than failing
// every push outright).
func resolveAuthor() scm.Author {
	name := gitConfigValue("user.name")
	if name == "" {
		name = "claude-sync"
	}
	email := gitConfigValue("user.email")
	if email == "" {
		email = "claude-sync@localhost"
	}
	return scm.Author{Name: name, Email: email}
}

func gitConfigValue(key string) string {
	out, err := exec.Command("git", "config", "--global", key).Output() //nolint:gosec // key is a fixed internal constant
	if err != nil {
		return ""
	}
	return strings.TrimSpace(string(out))
}

func newVersionCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "version",
		Short: "Show version information",
		Run: func(cmd *cobra.Command, _ []string) {
			fmt.Fprintf(cmd.OutOrStdout(), "claude-sync %s (%s)\n", Version, Commit)
		},
	}
}

