package sync

import (
	"context"
	"fmt"
	"os"
	"path/filepath"
	"time"

	"github.com/claudesync/cli/internal/config"
	"github.com/claudesync/cli/internal/filter"
	"github.com/claudesync/cli/internal/history"
	"github.com/claudesync/cli/internal/session"
	"github.com/claudesync/cli/internal/snapshot"
	"github.com/claudesync/cli/redact"
)

// PushOptions configures one Push call.
type PushOptions struct {
	// CommitMessage overrides the generated "Sync N sessions at ..." message.
	CommitMessage string
	// PushRemote, if true and a remote is configured, pushes the branch
	// after committing.
	PushRemote bool
	// Branch overrides the branch recorded against this operation; empty
	// uses the repository's current branch.
	Branch string
	Filter *config.FilterConfig
	// SkipRedaction disables secret scanning over pushed conversation
	// content. Off by default: the sync repository is routinely pushed to
	// a remote, so high-entropy strings that look like API keys or tokens
	// get replaced with "REDACTED" before they ever leave the machine.
	SkipRedaction bool
}

// PushResult summarizes what a Push call did.
type PushResult struct {
	Branch         string
	Conversations  []history.ConversationSummary
	Stats          map[history.ConversationOp]int
	Committed      bool
	CommitID       string
	SnapshotID     string
	Pushed         bool
	PushWarning    error
	HistoryWarning error
}

// Push copies every local conversation session under claudeDir into the
// sync repository's projects/ tree, commits the result, and (if requested
// and configured) pushes it to the remote.
//
// The only failure-fatal step after discovery is snapshotting: without it
// UndoPush would have nothing to restore to. Pushing to the remote and
// recording operation history are both best-effort, surfaced on the result
// rather than returned as errors.
func (o *Orchestrator) Push(ctx context.Context, claudeDir string, opts PushOptions) (*PushResult, error) {
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

	local, err := Discover(claudeDir, predicate)
	if err != nil {
		return nil, fmt.Errorf("discovering local sessions: %w", err)
	}

	projectsDir := o.Layout.ProjectsDir()
	existing, err := Discover(projectsDir, predicate)
	if err != nil {
		return nil, fmt.Errorf("discovering sync repository sessions: %w", err)
	}
	existingByID := make(map[string]*session.Session, len(existing))
	for _, d := range existing {
		existingByID[d.Session.SessionID] = d.Session
	}

	result := &PushResult{Branch: branch, Stats: make(map[history.ConversationOp]int)}
	var affectedPaths []string

	for _, d := range local {
		destPath := filepath.Join(projectsDir, d.RelativePath)
		affectedPaths = append(affectedPaths, destPath)

		op := history.ConversationAdded
		if prior, ok := existingByID[d.Session.SessionID]; ok {
			priorHash, err := prior.ContentHash()
			if err != nil {
				return nil, fmt.Errorf("hashing existing session %s: %w", prior.SessionID, err)
			}
			newHash, err := d.Session.ContentHash()
			if err != nil {
				return nil, fmt.Errorf("hashing session %s: %w", d.Session.SessionID, err)
			}
			if priorHash == newHash {
				op = history.ConversationUnchanged
			} else {
				op = history.ConversationModified
			}
		}

		if op != history.ConversationUnchanged {
			toWrite := &session.Session{SessionID: d.Session.SessionID, Path: destPath, Entries: d.Session.Entries}
			if err := session.Write(toWrite, destPath); err != nil {
				return nil, fmt.Errorf("writing session %s to sync repository: %w", d.Session.SessionID, err)
			}
			if !opts.SkipRedaction {
				if err := redactFile(destPath); err != nil {
					return nil, fmt.Errorf("redacting secrets in %s: %w", destPath, err)
				}
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

	if err := o.Repo.StageAll(ctx, o.Layout.SyncRepoPath); err != nil {
		return nil, fmt.Errorf("staging sync repository changes: %w", err)
	}

	hasChanges, err := o.Repo.HasUncommittedChanges(ctx)
	if err != nil {
		return nil, fmt.Errorf("checking for uncommitted changes: %w", err)
	}
	if !hasChanges {
		return result, nil
	}

	// HeadCommit fails on a repository with no commits yet (the very first
	// push into a freshly initialized sync repository); that's not an error
	// here, just the absence of a commit to record as this snapshot's base.
	var commitBeforePtr *string
	if commitBefore, headErr := o.Repo.HeadCommit(ctx); headErr == nil {
		commitBeforePtr = &commitBefore
	}

	snap, err := snapshot.CreateDifferential(history.OperationPush, affectedPaths, commitBeforePtr, &branch, o.Layout.SnapshotsDir())
	if err != nil {
		return nil, fmt.Errorf("creating snapshot before push: %w", err)
	}
	if _, err := snap.Save(o.Layout.SnapshotsDir()); err != nil {
		return nil, fmt.Errorf("saving snapshot before push: %w", err)
	}
	result.SnapshotID = snap.ID

	message := opts.CommitMessage
	if message == "" {
		message = fmt.Sprintf("Sync %d sessions at %s", len(local), time.Now().UTC().Format("2006-01-02 15:04:05 UTC"))
	}

	commitID, err := o.Repo.Commit(ctx, message, o.Author)
	if err != nil {
		return nil, fmt.Errorf("committing sync repository changes: %w", err)
	}
	result.Committed = true
	result.CommitID = commitID

	if opts.PushRemote && o.State.HasRemote {
		if err := o.Repo.Push(ctx, "origin", branch); err != nil {
			result.PushWarning = err
		} else {
			result.Pushed = true
		}
	}

	record := history.NewRecord(history.OperationPush, &branch, result.Conversations)
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

// redactFile rewrites path in place with any high-entropy secret-looking
// values replaced, leaving lines with nothing to redact byte-identical.
func redactFile(path string) error {
	data, err := os.ReadFile(path)
	if err != nil {
		return err
	}
	redacted, err := redact.JSONLBytes(data)
	if err != nil {
		return err
	}
	if len(redacted) == len(data) && string(redacted) == string(data) {
		return nil
	}
	return os.WriteFile(path, redacted, 0o644)
}
