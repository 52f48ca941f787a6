package sync

import (
	"context"
	"errors"
	"fmt"
	"os"
	"path/filepath"

	"github.com/claudesync/cli/internal/config"
	"github.com/claudesync/cli/internal/filter"
	"github.com/claudesync/cli/internal/report"
)

// FileSummary is one conversation file's entry in Status.LocalFiles.
type FileSummary struct {
	RelativePath string
	MessageCount int
}

// Status summarizes the current state of the sync repository and the local
// conversation history for the "status" command.
type Status struct {
	RepoPath             string
	Backend              string
	RemoteConfigured     bool
	Branch               string
	HasUncommitted       bool
	LocalSessionCount    int
	SyncRepoSessionCount int
	SyncRepoDirExists    bool
	LocalFiles           []FileSummary
	LatestReport         *report.ConflictReport
}

// maxStatusFilesListed caps how many local files Status.LocalFiles holds
// before a caller should collapse the rest into a "...and N more" line.
const maxStatusFilesListed = 20

// BuildStatus gathers repository, session-count, and optional file/conflict
// detail for claudeDir against the sync repository the Orchestrator was
// built with. filesRequested and conflictsRequested control whether the
// more expensive file listing and latest conflict report are populated.
func (o *Orchestrator) BuildStatus(ctx context.Context, claudeDir string, filesRequested, conflictsRequested bool) (*Status, error) {
	filterCfg, err := config.LoadFilterConfig(o.Layout.ConfigPath())
	if err != nil {
		return nil, fmt.Errorf("loading filter configuration: %w", err)
	}
	predicate := filter.New(filterCfg)

	st := &Status{
		RepoPath:         o.Layout.SyncRepoPath,
		Backend:          "git",
		RemoteConfigured: o.State.HasRemote,
	}

	if branch, err := o.Repo.CurrentBranch(ctx); err == nil {
		st.Branch = branch
	}
	if has, err := o.Repo.HasUncommittedChanges(ctx); err == nil {
		st.HasUncommitted = has
	}

	local, err := Discover(claudeDir, predicate)
	if err != nil {
		return nil, fmt.Errorf("discovering local sessions: %w", err)
	}
	st.LocalSessionCount = len(local)

	if _, err := os.Stat(o.Layout.ProjectsDir()); err == nil {
		st.SyncRepoDirExists = true
		remote, err := Discover(o.Layout.ProjectsDir(), predicate)
		if err != nil {
			return nil, fmt.Errorf("discovering sync repository sessions: %w", err)
		}
		st.SyncRepoSessionCount = len(remote)
	}

	if filesRequested {
		limit := len(local)
		if limit > maxStatusFilesListed {
			limit = maxStatusFilesListed
		}
		st.LocalFiles = make([]FileSummary, 0, limit)
		for _, d := range local[:limit] {
			st.LocalFiles = append(st.LocalFiles, FileSummary{
				RelativePath: filepath.ToSlash(d.RelativePath),
				MessageCount: d.Session.MessageCount(),
			})
		}
	}

	if conflictsRequested {
		rpt, err := report.Load(o.Layout.ConflictReportPath())
		if err != nil && !errors.Is(err, os.ErrNotExist) {
			return nil, fmt.Errorf("loading latest conflict report: %w", err)
		}
		st.LatestReport = rpt
	}

	return st, nil
}
