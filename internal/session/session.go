package session

import (
	"crypto/sha256"
	"encoding/hex"
	"strings"
)

// Session is the ordered sequence of Entries belonging to one conversation
// file, plus the session id and the path it was loaded from (or will be
// written to).
type Session struct {
	SessionID string
	Path      string
	Entries   []*Entry
}

// MessageCount returns the count of entries whose kind is "user" or
// "assistant".
func (s *Session) MessageCount() int {
	n := 0
	for _, e := range s.Entries {
		if e.IsCountedMessage() {
			n++
		}
	}
	return n
}

// LatestTimestamp returns the lexicographically greatest timestamp string
// among the session's entries, or nil if none carry one.
func (s *Session) LatestTimestamp() *string {
	var latest *string
	for _, e := range s.Entries {
		if e.Timestamp == nil {
			continue
		}
		if latest == nil || *e.Timestamp > *latest {
			latest = e.Timestamp
		}
	}
	return latest
}

// TranscriptPreview renders the session as newline-joined PreviewLine
// entries, suitable as input to a line-oriented text diff.
func (s *Session) TranscriptPreview() string {
	lines := make([]string, len(s.Entries))
	for i, e := range s.Entries {
		lines[i] = e.PreviewLine()
	}
	return strings.Join(lines, "\n")
}

// ContentHash returns a deterministic hash of the session's entries,
// serialized in order. Two sessions with identical ordered entries
// (including unknown fields) share one content hash; this is the sole
// equality signal conflict detection uses.
func (s *Session) ContentHash() (string, error) {
	h := sha256.New()
	for _, e := range s.Entries {
		data, err := e.MarshalJSON()
		if err != nil {
			return "", err
		}
		h.Write(data)
		h.Write([]byte{'\n'})
	}
	return hex.EncodeToString(h.Sum(nil)), nil
}
