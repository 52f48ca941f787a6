package conflict

import "github.com/claudesync/cli/internal/session"

// Detect compares local and remote sessions by session id and returns one
// Conflict for every id present on both sides whose content hashes differ.
// A session present on only one side is never a conflict — it is simply
// copied across by the caller.
func Detect(local, remote []*session.Session) ([]*Conflict, error) {
	localByID := make(map[string]*session.Session, len(local))
	for _, s := range local {
		localByID[s.SessionID] = s
	}

	var conflicts []*Conflict
	for _, remoteSession := range remote {
		localSession, ok := localByID[remoteSession.SessionID]
		if !ok {
			continue
		}

		c, err := New(localSession, remoteSession)
		if err != nil {
			return nil, err
		}
		if c.IsReal() {
			conflicts = append(conflicts, c)
		}
	}
	return conflicts, nil
}
