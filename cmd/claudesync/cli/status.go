package cli

import (
	"fmt"

	"github.com/fatih/color"
	"github.com/spf13/cobra"

	"github.com/claudesync/cli/internal/paths"
)

func newStatusCmd() *cobra.Command {
	var showFiles bool
	var showConflicts bool

	cmd := &cobra.Command{
		Use:   "status",
		Short: "Show sync repository and local history status",
		RunE: func(cmd *cobra.Command, _ []string) error {
			return runStatus(cmd, showFiles, showConflicts)
		},
	}

	cmd.Flags().BoolVar(&showFiles, "files", false, "List local conversation files")
	cmd.Flags().BoolVar(&showConflicts, "conflicts", false, "Show the latest conflict report")

	return cmd
}

func runStatus(cmd *cobra.Command, showFiles, showConflicts bool) error {
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

	st, err := orch.BuildStatus(cmd.Context(), claudeDir, showFiles, showConflicts)
	if err != nil {
		return fmt.Errorf("building status: %w", err)
	}

	fmt.Fprintln(out, color.CyanString("=== Claude Code Sync Status ==="))
	fmt.Fprintln(out)
	fmt.Fprintln(out, color.New(color.Bold).Sprint("Repository:"))
	fmt.Fprintf(out, "  Path: %s\n", st.RepoPath)
	fmt.Fprintf(out, "  Backend: %s\n", st.Backend)
	if st.RemoteConfigured {
		fmt.Fprintf(out, "  Remote: %s\n", color.GreenString("Configured"))
	} else {
		fmt.Fprintf(out, "  Remote: %s\n", color.YellowString("Not configured"))
	}
	if st.Branch != "" {
		fmt.Fprintf(out, "  Branch: %s\n", color.CyanString(st.Branch))
	}
	if st.HasUncommitted {
		fmt.Fprintf(out, "  Uncommitted changes: %s\n", color.YellowString("Yes"))
	} else {
		fmt.Fprintf(out, "  Uncommitted changes: %s\n", color.GreenString("No"))
	}

	fmt.Fprintln(out)
	fmt.Fprintln(out, color.New(color.Bold).Sprint("Sessions:"))
	fmt.Fprintf(out, "  Local: %s\n", color.CyanString("%d", st.LocalSessionCount))
	if st.SyncRepoDirExists {
		fmt.Fprintf(out, "  Sync repo: %s\n", color.CyanString("%d", st.SyncRepoSessionCount))
	}

	if showFiles {
		fmt.Fprintln(out)
		fmt.Fprintln(out, color.New(color.Bold).Sprint("Local session files:"))
		for _, f := range st.LocalFiles {
			fmt.Fprintf(out, "  %s (%d messages)\n", f.RelativePath, f.MessageCount)
		}
		if st.LocalSessionCount > len(st.LocalFiles) {
			fmt.Fprintf(out, "  ... and %d more\n", st.LocalSessionCount-len(st.LocalFiles))
		}
	}

	if showConflicts {
		fmt.Fprintln(out)
		if st.LatestReport != nil && st.LatestReport.TotalConflicts > 0 {
			fmt.Fprint(out, st.LatestReport.ToMarkdown())
		} else {
			fmt.Fprintln(out, color.GreenString("No conflicts in last sync"))
		}
	}

	return nil
}
