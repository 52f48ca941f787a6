// Package report builds and persists the conflict report produced by a
// sync operation: what conflicted, how it was resolved, and when.
package report

import (
	"encoding/json"
	"fmt"
	"os"
	"strings"
	"time"

	"github.com/claudesync/cli/internal/conflict"
	"github.com/claudesync/cli/internal/jsonutil"
)

// Detail is one conflict's entry in a ConflictReport.
type Detail struct {
	SessionID       string `json:"session_id"`
	LocalFile       string `json:"local_file"`
	RemoteFile      string `json:"remote_file"`
	LocalMessages   int    `json:"local_messages"`
	RemoteMessages  int    `json:"remote_messages"`
	LocalTimestamp  string `json:"local_timestamp"`
	RemoteTimestamp string `json:"remote_timestamp"`
	Resolution      string `json:"resolution"`
}

// ConflictReport summarizes every conflict detected (and how each was
// resolved) during one sync operation.
type ConflictReport struct {
	Timestamp      string   `json:"timestamp"`
	TotalConflicts int      `json:"total_conflicts"`
	Conflicts      []Detail `json:"conflicts"`
}

// FromConflicts builds a ConflictReport from detected conflicts, stamped
// with now.
func FromConflicts(conflicts []*conflict.Conflict, now time.Time) *ConflictReport {
	details := make([]Detail, 0, len(conflicts))
	for _, c := range conflicts {
		details = append(details, Detail{
			SessionID:       c.SessionID,
			LocalFile:       c.LocalPath,
			RemoteFile:      c.RemotePath,
			LocalMessages:   c.LocalMessageCount,
			RemoteMessages:  c.RemoteMessageCount,
			LocalTimestamp:  orUnknown(c.LocalTimestamp),
			RemoteTimestamp: orUnknown(c.RemoteTimestamp),
			Resolution:      resolutionDetail(c),
		})
	}
	return &ConflictReport{
		Timestamp:      now.UTC().Format(time.RFC3339),
		TotalConflicts: len(details),
		Conflicts:      details,
	}
}

func orUnknown(ts *string) string {
	if ts == nil || *ts == "" {
		return "unknown"
	}
	return *ts
}

func resolutionDetail(c *conflict.Conflict) string {
	switch c.Resolution {
	case conflict.SmartMerge:
		if c.MergeStats != nil {
			return fmt.Sprintf("Smart merged (%d messages, %d branches)", c.MergeStats.MergedMessages, c.MergeStats.BranchesDetected)
		}
		return "Smart merged"
	case conflict.KeepBoth:
		return fmt.Sprintf("Keep both (remote renamed to %s)", c.RenamedRemotePath)
	case conflict.KeepLocal:
		return "Keep local"
	case conflict.KeepRemote:
		return "Keep remote"
	default:
		return "Pending"
	}
}

// Load reads a ConflictReport previously written to path. Returns
// os.ErrNotExist-wrapping error if no report has been saved there yet.
func Load(path string) (*ConflictReport, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("reading conflict report %s: %w", path, err)
	}
	var r ConflictReport
	if err := json.Unmarshal(data, &r); err != nil {
		return nil, fmt.Errorf("parsing conflict report %s: %w", path, err)
	}
	return &r, nil
}

// ToMarkdown renders the report as a markdown document.
func (r *ConflictReport) ToMarkdown() string {
	var b strings.Builder
	b.WriteString("# claude-sync Conflict Report\n\n")
	fmt.Fprintf(&b, "**Generated:** %s\n", r.Timestamp)
	fmt.Fprintf(&b, "**Total Conflicts:** %d\n\n", r.TotalConflicts)

	if len(r.Conflicts) == 0 {
		b.WriteString("No conflicts detected.\n")
		return b.String()
	}

	b.WriteString("## Conflicts\n\n")
	for i, c := range r.Conflicts {
		fmt.Fprintf(&b, "### %d. Session: `%s`\n\n", i+1, c.SessionID)
		fmt.Fprintf(&b, "- **Resolution:** %s\n", c.Resolution)
		fmt.Fprintf(&b, "- **Local File:** `%s`\n", c.LocalFile)
		fmt.Fprintf(&b, "  - Messages: %d\n", c.LocalMessages)
		fmt.Fprintf(&b, "  - Last Updated: %s\n", c.LocalTimestamp)
		fmt.Fprintf(&b, "- **Remote File:** `%s`\n", c.RemoteFile)
		fmt.Fprintf(&b, "  - Messages: %d\n", c.RemoteMessages)
		fmt.Fprintf(&b, "  - Last Updated: %s\n\n", c.RemoteTimestamp)
	}
	return b.String()
}

// ToJSON renders the report as indented JSON.
func (r *ConflictReport) ToJSON() (string, error) {
	data, err := jsonutil.MarshalIndentWithNewline(r, "", "  ")
	if err != nil {
		return "", fmt.Errorf("serializing conflict report: %w", err)
	}
	return string(data), nil
}
