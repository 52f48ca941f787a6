package sync

import (
	"context"
	"errors"
	"fmt"
	"os"
	"path/filepath"

	"github.com/claudesync/cli/internal/history"
	"github.com/claudesync/cli/internal/snapshot"
)

// ErrNoOperationToUndo is returned when the operation history has no record
// of the kind being undone.
var ErrNoOperationToUndo = errors.New("sync: no matching operation in history to undo")

// ErrSnapshotMissing is returned when a history record names a snapshot
// that no longer exists on disk.
var ErrSnapshotMissing = errors.New("sync: snapshot for that operation is missing")

// UndoResult summarizes what an undo call restored.
type UndoResult struct {
	RestoredFiles int
	SnapshotID    string
	Timestamp     string
	// ResetCommit is set only by UndoPush: the commit the repository's
	// branch tip was moved back to.
	ResetCommit string
	// NeedsForcePush is set by UndoPush when the undone push had already
	// reached a configured remote, meaning the remote now disagrees with
	// the local branch tip.
	NeedsForcePush bool
}

// UndoPull restores every file touched by the most recent pull to its
// pre-pull state using that operation's snapshot, then removes the pull
// record from history.
//
// History is updated before the snapshot is restored: if restoration fails
// partway through, the history no longer claims to have an undoable pull,
// which is safer than leaving a stale record pointing at a
// partially-applied snapshot. The snapshot file itself is only removed
// after a successful restore.
func (o *Orchestrator) UndoPull(ctx context.Context, allowedBaseDir string) (*UndoResult, error) {
	return o.undo(history.OperationPull, allowedBaseDir)
}

// UndoPush resets the sync repository's current branch back to the commit
// recorded by the most recent push's snapshot, then removes the push
// record from history. If that push had already reached a remote, the
// result flags that a force-push is now required to converge it.
func (o *Orchestrator) UndoPush(ctx context.Context) (*UndoResult, error) {
	log, err := o.loadHistory()
	if err != nil {
		return nil, fmt.Errorf("loading operation history: %w", err)
	}

	last := log.LastByKind(history.OperationPush)
	if last == nil {
		return nil, ErrNoOperationToUndo
	}
	if last.SnapshotID == nil {
		return nil, fmt.Errorf("%w: push record has no snapshot id", ErrSnapshotMissing)
	}

	snapshotPath := filepath.Join(o.Layout.SnapshotsDir(), *last.SnapshotID+".json")
	if _, err := os.Stat(snapshotPath); err != nil {
		return nil, fmt.Errorf("%w: %s", ErrSnapshotMissing, snapshotPath)
	}

	snap, err := snapshot.Load(snapshotPath)
	if err != nil {
		return nil, fmt.Errorf("loading snapshot %s: %w", *last.SnapshotID, err)
	}
	if snap.CommitID == nil {
		return nil, fmt.Errorf("sync: snapshot %s has no recorded commit to reset to", snap.ID)
	}

	needsForcePush, _ := o.Repo.HasRemote(ctx, "origin")

	if _, err := log.RemoveLastByKind(o.Layout.OperationHistoryPath(), history.OperationPush); err != nil {
		return nil, fmt.Errorf("removing push record from history: %w", err)
	}

	if err := o.Repo.ResetSoft(ctx, *snap.CommitID); err != nil {
		return nil, fmt.Errorf("resetting sync repository to %s: %w", *snap.CommitID, err)
	}

	if err := os.Remove(snapshotPath); err != nil && !os.IsNotExist(err) {
		// The reset already succeeded; a leftover snapshot file is harmless
		// clutter, not a reason to report failure.
		_ = err
	}

	return &UndoResult{
		SnapshotID:     snap.ID,
		Timestamp:      snap.Timestamp.Format("2006-01-02 15:04:05 UTC"),
		ResetCommit:    *snap.CommitID,
		NeedsForcePush: needsForcePush,
	}, nil
}

func (o *Orchestrator) undo(kind history.OperationKind, allowedBaseDir string) (*UndoResult, error) {
	log, err := o.loadHistory()
	if err != nil {
		return nil, fmt.Errorf("loading operation history: %w", err)
	}

	last := log.LastByKind(kind)
	if last == nil {
		return nil, ErrNoOperationToUndo
	}
	if last.SnapshotID == nil {
		return nil, fmt.Errorf("%w: record has no snapshot id", ErrSnapshotMissing)
	}

	snapshotPath := filepath.Join(o.Layout.SnapshotsDir(), *last.SnapshotID+".json")
	if _, err := os.Stat(snapshotPath); err != nil {
		return nil, fmt.Errorf("%w: %s", ErrSnapshotMissing, snapshotPath)
	}

	snap, err := snapshot.Load(snapshotPath)
	if err != nil {
		return nil, fmt.Errorf("loading snapshot %s: %w", *last.SnapshotID, err)
	}

	fileCount := len(snap.Files)

	if _, err := log.RemoveLastByKind(o.Layout.OperationHistoryPath(), kind); err != nil {
		return nil, fmt.Errorf("removing record from history: %w", err)
	}

	if err := snap.Restore(allowedBaseDir, o.Layout.SnapshotsDir()); err != nil {
		return nil, fmt.Errorf("restoring snapshot %s: %w", snap.ID, err)
	}

	if err := os.Remove(snapshotPath); err != nil && !os.IsNotExist(err) {
		_ = err
	}

	return &UndoResult{
		RestoredFiles: fileCount,
		SnapshotID:    snap.ID,
		Timestamp:     snap.Timestamp.Format("2006-01-02 15:04:05 UTC"),
	}, nil
}
