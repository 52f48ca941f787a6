// Package conflict detects and resolves divergence between two copies of
// the same conversation session: a local file and the version sitting on a
// remote branch.
package conflict

import (
	"fmt"
	"time"

	"github.com/sergi/go-diff/diffmatchpatch"

	"github.com/claudesync/cli/internal/merge"
	"github.com/claudesync/cli/internal/session"
)

// Resolution names how a Conflict was (or should be) settled.
type Resolution int

const (
	// Pending means no resolution has been chosen yet.
	Pending Resolution = iota
	// SmartMerge reconstructs both conversation trees and unions them;
	// this is the default for divergent-but-compatible sessions.
	SmartMerge
	// KeepLocal discards the remote version entirely.
	KeepLocal
	// KeepRemote discards the local version entirely.
	KeepRemote
	// KeepBoth renames the remote copy aside instead of merging, so a
	// human can reconcile it later.
	KeepBoth
)

func (r Resolution) String() string {
	switch r {
	case Pending:
		return "pending"
	case SmartMerge:
		return "smart-merge"
	case KeepLocal:
		return "keep-local"
	case KeepRemote:
		return "keep-remote"
	case KeepBoth:
		return "keep-both"
	default:
		return "unknown"
	}
}

// Conflict describes one session whose local and remote copies have
// diverged: their content hashes differ, so neither can be assumed to be a
// strict superset of the other.
type Conflict struct {
	SessionID string

	LocalPath  string
	RemotePath string

	LocalTimestamp  *string
	RemoteTimestamp *string

	LocalMessageCount  int
	RemoteMessageCount int

	LocalHash  string
	RemoteHash string

	// DiffText is a line-level diff between the local and remote
	// transcripts, computed once at detection time so the expensive Myers
	// diff doesn't run again every time the conflict is displayed.
	DiffText string

	Resolution Resolution
	// RenamedRemotePath is set once Resolution is KeepBoth, naming where
	// the remote copy was moved.
	RenamedRemotePath string
	// MergeStats is set once Resolution is SmartMerge and Apply has run,
	// describing the shape of the merge for reporting.
	MergeStats *merge.Stats
}

// New builds a pending Conflict from two loaded copies of the same session.
// The caller is expected to have already confirmed local.SessionID ==
// remote.SessionID.
func New(local, remote *session.Session) (*Conflict, error) {
	localHash, err := local.ContentHash()
	if err != nil {
		return nil, fmt.Errorf("hashing local session %s: %w", local.SessionID, err)
	}
	remoteHash, err := remote.ContentHash()
	if err != nil {
		return nil, fmt.Errorf("hashing remote session %s: %w", remote.SessionID, err)
	}

	return &Conflict{
		SessionID:          local.SessionID,
		LocalPath:          local.Path,
		RemotePath:         remote.Path,
		LocalTimestamp:     local.LatestTimestamp(),
		RemoteTimestamp:    remote.LatestTimestamp(),
		LocalMessageCount:  local.MessageCount(),
		RemoteMessageCount: remote.MessageCount(),
		LocalHash:          localHash,
		RemoteHash:         remoteHash,
		DiffText:           DiffSummary(local, remote),
		Resolution:         Pending,
	}, nil
}

// IsReal reports whether this is an actual conflict — the two sides'
// content hashes differ — rather than two byte-identical copies that simply
// happened to be compared.
func (c *Conflict) IsReal() bool {
	return c.LocalHash != c.RemoteHash
}

// Describe returns a human-readable summary suitable for interactive
// prompts and status output.
func (c *Conflict) Describe() string {
	localTS := "unknown"
	if c.LocalTimestamp != nil {
		localTS = *c.LocalTimestamp
	}
	remoteTS := "unknown"
	if c.RemoteTimestamp != nil {
		remoteTS = *c.RemoteTimestamp
	}
	return fmt.Sprintf(
		"Session %s has diverged:\n  Local: %d messages, last update: %s\n  Remote: %d messages, last update: %s\n\n%s",
		c.SessionID, c.LocalMessageCount, localTS, c.RemoteMessageCount, remoteTS, c.DiffText,
	)
}

// DiffSummary returns a line-level diff between local and remote's
// rendered transcripts, formatted as unified-diff-style +/- lines. The
// caller is expected to pass the same two sessions New built c from.
func DiffSummary(local, remote *session.Session) string {
	dmp := diffmatchpatch.New()
	localLines, remoteLines, lineArray := dmp.DiffLinesToChars(local.TranscriptPreview(), remote.TranscriptPreview())
	diffs := dmp.DiffMain(localLines, remoteLines, false)
	diffs = dmp.DiffCharsToLines(diffs, lineArray)

	var out string
	for _, d := range diffs {
		for _, line := range splitNonEmptyLines(d.Text) {
			switch d.Type {
			case diffmatchpatch.DiffDelete:
				out += "- " + line + "\n"
			case diffmatchpatch.DiffInsert:
				out += "+ " + line + "\n"
			}
		}
	}
	if out == "" {
		return "(no line-level differences)"
	}
	return out
}

func splitNonEmptyLines(s string) []string {
	var lines []string
	start := 0
	for i := 0; i < len(s); i++ {
		if s[i] == '\n' {
			if i > start {
				lines = append(lines, s[start:i])
			}
			start = i + 1
		}
	}
	if start < len(s) {
		lines = append(lines, s[start:])
	}
	return lines
}

// conflictSuffix returns the "conflict-YYYYMMDD-HHMMSS" suffix used to name
// a remote copy kept aside under KeepBoth.
func conflictSuffix(now time.Time) string {
	return "conflict-" + now.Format("20060102-150405")
}
