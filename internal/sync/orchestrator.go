package sync

import (
	"time"

	"github.com/claudesync/cli/internal/config"
	"github.com/claudesync/cli/internal/history"
	"github.com/claudesync/cli/internal/paths"
	"github.com/claudesync/cli/internal/scm"
	"github.com/claudesync/cli/internal/snapshot"
)

// MaxConversationsDisplay bounds how many conversations a summary prints per
// project before a caller collapses the rest into a "...and N more" line.
const MaxConversationsDisplay = 10

// DefaultSnapshotMaxAge is how long a snapshot is kept once it is no longer
// the most recent of its kind, absent a referencing differential chain.
const DefaultSnapshotMaxAge = 7 * 24 * time.Hour

// Orchestrator drives a push, pull, or undo operation against one sync
// repository, wiring together discovery, conflict resolution, snapshotting,
// and operation history.
type Orchestrator struct {
	Repo   scm.Port
	Layout *paths.Layout
	State  *config.State
	Author scm.Author
}

// New builds an Orchestrator for the given repository, path layout, sync
// state, and commit author.
func New(repo scm.Port, layout *paths.Layout, state *config.State, author scm.Author) *Orchestrator {
	return &Orchestrator{Repo: repo, Layout: layout, State: state, Author: author}
}

func (o *Orchestrator) loadHistory() (*history.Log, error) {
	return history.LoadLog(o.Layout.OperationHistoryPath())
}

// cleanupSnapshots removes aged-out snapshots on a best-effort basis; a
// failure here never fails the sync operation that triggered it.
func (o *Orchestrator) cleanupSnapshots() {
	_, _ = snapshot.Cleanup(o.Layout.SnapshotsDir(), DefaultSnapshotMaxAge)
}
