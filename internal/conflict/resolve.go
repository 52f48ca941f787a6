package conflict

import (
	"path/filepath"
	"strings"
	"time"
)

// ResolveKeepBoth sets the conflict's resolution to KeepBoth and computes
// the path the remote copy is renamed to: <stem>-conflict-<timestamp><ext>,
// alongside the original remote file.
func (c *Conflict) ResolveKeepBoth(now time.Time) string {
	ext := filepath.Ext(c.RemotePath)
	stem := strings.TrimSuffix(filepath.Base(c.RemotePath), ext)
	dir := filepath.Dir(c.RemotePath)

	newName := stem + "-" + conflictSuffix(now) + ext
	renamed := filepath.Join(dir, newName)

	c.Resolution = KeepBoth
	c.RenamedRemotePath = renamed
	return renamed
}

// ResolveKeepLocal sets the conflict's resolution to KeepLocal: the remote
// copy is discarded.
func (c *Conflict) ResolveKeepLocal() {
	c.Resolution = KeepLocal
}

// ResolveKeepRemote sets the conflict's resolution to KeepRemote: the local
// copy is discarded.
func (c *Conflict) ResolveKeepRemote() {
	c.Resolution = KeepRemote
}

// ResolveSmartMerge sets the conflict's resolution to SmartMerge: both
// conversation trees are reconstructed and unioned via internal/merge.
func (c *Conflict) ResolveSmartMerge() {
	c.Resolution = SmartMerge
}
