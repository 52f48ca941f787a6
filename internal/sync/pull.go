package sync

import (
	"context"
	"fmt"
	"os"
	"path/filepath"
	"time"

	"github.com/claudesync/cli/internal/config"
	"github.com/claudesync/cli/internal/conflict"
	"github.com/claudesync/cli/internal/filter"
	"github.com/claudesync/cli/internal/history"
	"github.com/claudesync/cli/internal/report"
	"github.com/claudesync/cli/internal/session"
	"github.com/claudesync/cli/internal/snapshot"
)

// PullOptions configures one Pull call.
type PullOptions struct {
	// FetchRemote, if true and a remote is configured, fetches and merges
	// the remote branch into the sync repository before discovery.
	FetchRemote bool
	Branch      string
	Filter      *config.FilterConfig
}

// PullResult summarizes what a Pull call did.
type PullResult struct {
	Branch          string
	Conversations   []history.ConversationSummary
	Stats           map[history.ConversationOp]int
	Conflicts       []*conflict.Conflict
	SmartMerged     int
	SnapshotID      string
	FetchWarning    error
	HistoryWarning  error
	ConflictReport  *report.ConflictReport
}

// Pull merges conversation sessions from the sync repository's projects/
// tree into claudeDir: non-conflicting remote sessions are copied straight
// across, and sessions that diverged on both sides go through conflict
// detection, attempting a smart merge first and falling back to
// conflict.ResolveAll (interactive prompt, or keep-both non-interactively)
// for anything the merge couldn't reconcile.
//
// A snapshot of the local files about to be touched is taken before any of
// that happens, and taking it is the one step whose failure aborts the
// pull — every later step (remote fetch, history recording) is best-effort.
func (o *Orchestrator) Pull(ctx context.Context, claudeDir string, opts PullOptions) (*PullResult, error) {
	branch := opts.Branch
	if branch == "" {
		if current, err := o.Repo.CurrentBranch(ctx); err == nil {
			branch = current
		} else {
			branch = "main"
		}
	}

	filterCfg := opts.Filter
	if filterCfg == nil {
		filterCfg = config.DefaultFilterConfig()
	}
	predicate := filter.New(filterCfg)

	result := &PullResult{Branch: branch, Stats: make(map[history.ConversationOp]int)}

	if opts.FetchRemote && o.State.HasRemote {
		if err := o.Repo.Fetch(ctx, "origin", branch); err != nil {
			result.FetchWarning = err
		} else if err := o.Repo.Pull(ctx, "origin", branch); err != nil {
			result.FetchWarning = err
		}
	}

	local, err := Discover(claudeDir, predicate)
	if err != nil {
		return nil, fmt.Errorf("discovering local sessions: %w", err)
	}
	remote, err := Discover(o.Layout.ProjectsDir(), predicate)
	if err != nil {
		return nil, fmt.Errorf("discovering sync repository sessions: %w", err)
	}

	var localPaths []string
	for _, d := range local {
		localPaths = append(localPaths, filepath.Join(claudeDir, d.RelativePath))
	}

	snap, err := snapshot.CreateDifferential(history.OperationPull, localPaths, nil, nil, o.Layout.SnapshotsDir())
	if err != nil {
		return nil, fmt.Errorf("creating snapshot before pull: %w", err)
	}
	if _, err := snap.Save(o.Layout.SnapshotsDir()); err != nil {
		return nil, fmt.Errorf("saving snapshot before pull: %w", err)
	}
	result.SnapshotID = snap.ID

	localSessions := make([]*session.Session, 0, len(local))
	localByID := make(map[string]*session.Session, len(local))
	for _, d := range local {
		localSessions = append(localSessions, d.Session)
		localByID[d.Session.SessionID] = d.Session
	}

	// Build remote sessions whose Path already points at the local
	// destination, so conflict.Apply's writes (and ResolveKeepBoth's
	// renamed path) land in claudeDir rather than the sync repository.
	remoteSessions := make([]*session.Session, 0, len(remote))
	remoteByID := make(map[string]*session.Session, len(remote))
	for _, d := range remote {
		destPath := filepath.Join(claudeDir, d.RelativePath)
		s := &session.Session{SessionID: d.Session.SessionID, Path: destPath, Entries: d.Session.Entries}
		remoteSessions = append(remoteSessions, s)
		remoteByID[s.SessionID] = s
	}

	conflicts, err := conflict.Detect(localSessions, remoteSessions)
	if err != nil {
		return nil, fmt.Errorf("detecting conflicts: %w", err)
	}
	result.Conflicts = conflicts
	conflictedIDs := make(map[string]bool, len(conflicts))

	var failed []*conflict.Conflict
	now := time.Now()
	for _, c := range conflicts {
		conflictedIDs[c.SessionID] = true
		c.ResolveSmartMerge()
		if err := conflict.Apply(c, localByID[c.SessionID], remoteByID[c.SessionID], now); err != nil {
			failed = append(failed, c)
			continue
		}
		result.SmartMerged++
		result.Conversations = append(result.Conversations, history.ConversationSummary{
			SessionID:    c.SessionID,
			ProjectPath:  relPath(claudeDir, remoteByID[c.SessionID].Path),
			Timestamp:    c.RemoteTimestamp,
			MessageCount: c.RemoteMessageCount,
			Operation:    history.ConversationConflict,
		})
	}

	if len(failed) > 0 {
		fallback := conflict.KeepBoth
		if err := conflict.ResolveAll(failed, fallback, os.Stderr); err != nil {
			return nil, fmt.Errorf("resolving remaining conflicts: %w", err)
		}
		for _, c := range failed {
			if err := conflict.Apply(c, localByID[c.SessionID], remoteByID[c.SessionID], now); err != nil {
				return nil, fmt.Errorf("applying resolution for session %s: %w", c.SessionID, err)
			}
			result.Conversations = append(result.Conversations, history.ConversationSummary{
				SessionID:    c.SessionID,
				ProjectPath:  relPath(claudeDir, remoteByID[c.SessionID].Path),
				Timestamp:    c.RemoteTimestamp,
				MessageCount: c.RemoteMessageCount,
				Operation:    history.ConversationConflict,
			})
		}
	}

	rpt := report.FromConflicts(conflicts, now)
	result.ConflictReport = rpt
	if err := saveConflictReport(rpt, o.Layout.ConflictReportPath()); err != nil {
		result.HistoryWarning = err
	}

	for _, d := range remote {
		if conflictedIDs[d.Session.SessionID] {
			continue
		}

		destPath := filepath.Join(claudeDir, d.RelativePath)
		op := history.ConversationAdded
		if localSession, ok := localByID[d.Session.SessionID]; ok {
			localHash, err := localSession.ContentHash()
			if err != nil {
				return nil, fmt.Errorf("hashing local session %s: %w", d.Session.SessionID, err)
			}
			remoteHash, err := d.Session.ContentHash()
			if err != nil {
				return nil, fmt.Errorf("hashing remote session %s: %w", d.Session.SessionID, err)
			}
			if localHash == remoteHash {
				op = history.ConversationUnchanged
			} else {
				op = history.ConversationModified
			}
		}

		if op != history.ConversationUnchanged {
			toWrite := &session.Session{SessionID: d.Session.SessionID, Path: destPath, Entries: d.Session.Entries}
			if err := session.Write(toWrite, destPath); err != nil {
				return nil, fmt.Errorf("writing session %s to local history: %w", d.Session.SessionID, err)
			}
		}

		result.Stats[op]++
		result.Conversations = append(result.Conversations, history.ConversationSummary{
			SessionID:    d.Session.SessionID,
			ProjectPath:  d.RelativePath,
			Timestamp:    d.Session.LatestTimestamp(),
			MessageCount: d.Session.MessageCount(),
			Operation:    op,
		})
	}

	record := history.NewRecord(history.OperationPull, &branch, result.Conversations)
	record.SnapshotID = &snap.ID
	log, err := o.loadHistory()
	if err != nil {
		result.HistoryWarning = err
	} else if err := log.Add(o.Layout.OperationHistoryPath(), record); err != nil {
		result.HistoryWarning = err
	}

	o.cleanupSnapshots()

	return result, nil
}

func relPath(base, path string) string {
	rel, err := filepath.Rel(base, path)
	if err != nil {
		return path
	}
	return rel
}

func saveConflictReport(r *report.ConflictReport, path string) error {
	data, err := r.ToJSON()
	if err != nil {
		return err
	}
	if dir := filepath.Dir(path); dir != "." {
		if err := os.MkdirAll(dir, 0o755); err != nil {
			return fmt.Errorf("creating conflict report directory %s: %w", dir, err)
		}
	}
	if err := os.WriteFile(path, []byte(data), 0o644); err != nil {
		return fmt.Errorf("writing conflict report %s: %w", path, err)
	}
	return nil
}
