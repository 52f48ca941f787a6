package conflict

import (
	"errors"
	"fmt"
	"time"

	"github.com/claudesync/cli/internal/merge"
	"github.com/claudesync/cli/internal/session"
)

// ErrUnresolved is returned by Apply when a Conflict still carries
// Resolution Pending.
var ErrUnresolved = errors.New("conflict: resolution still pending")

// Apply carries out c's resolution against local and remote, writing the
// result to local's path. For KeepBoth it also writes the remote copy aside
// at c.RenamedRemotePath (computed by ResolveKeepBoth, called here with now
// if the caller hasn't already set it).
func Apply(c *Conflict, local, remote *session.Session, now time.Time) error {
	switch c.Resolution {
	case Pending:
		return ErrUnresolved

	case KeepLocal:
		return nil

	case KeepRemote:
		return session.Write(remote, local.Path)

	case KeepBoth:
		if c.RenamedRemotePath == "" {
			c.ResolveKeepBoth(now)
		}
		return session.Write(remote, c.RenamedRemotePath)

	case SmartMerge:
		result, err := merge.Merge(local, remote)
		if err != nil {
			return fmt.Errorf("smart-merging session %s: %w", c.SessionID, err)
		}
		merged := &session.Session{
			SessionID: local.SessionID,
			Path:      local.Path,
			Entries:   result.Entries,
		}
		c.MergeStats = &result.Stats
		return session.Write(merged, local.Path)

	default:
		return fmt.Errorf("conflict: unknown resolution %v", c.Resolution)
	}
}
