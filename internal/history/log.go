package history

import (
	"encoding/json"
	"errors"
	"fmt"
	"os"
	"path/filepath"

	"github.com/claudesync/cli/internal/jsonutil"
)

// MaxEntries bounds how many operation records the log retains. Older
// entries are dropped once a new one would push the log past this size.
const MaxEntries = 5

// Log is a newest-first, capped history of operation Records, persisted as
// one JSON document.
type Log struct {
	Operations []*Record `json:"operations"`
}

// NewLog returns an empty Log.
func NewLog() *Log {
	return &Log{}
}

// LoadLog reads a Log from path. A missing file is not an error: it yields
// an empty Log, matching a freshly initialized sync repository.
func LoadLog(path string) (*Log, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		if errors.Is(err, os.ErrNotExist) {
			return NewLog(), nil
		}
		return nil, fmt.Errorf("reading operation history %s: %w", path, err)
	}

	var l Log
	if err := json.Unmarshal(data, &l); err != nil {
		return nil, fmt.Errorf("parsing operation history %s: %w", path, err)
	}
	return &l, nil
}

// Save persists the log to path, rewriting the whole file atomically: the
// new content is written to a temp file in the same directory, then moved
// into place with os.Rename so a crash mid-write can never leave a
// truncated or partially-written history file behind.
func (l *Log) Save(path string) error {
	dir := filepath.Dir(path)
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return fmt.Errorf("creating history directory %s: %w", dir, err)
	}

	data, err := jsonutil.MarshalIndentWithNewline(l, "", "  ")
	if err != nil {
		return fmt.Errorf("serializing operation history: %w", err)
	}

	tmp, err := os.CreateTemp(dir, ".operation-history-*.tmp")
	if err != nil {
		return fmt.Errorf("creating temp history file in %s: %w", dir, err)
	}
	tmpPath := tmp.Name()
	defer os.Remove(tmpPath)

	if _, err := tmp.Write(data); err != nil {
		tmp.Close()
		return fmt.Errorf("writing temp history file %s: %w", tmpPath, err)
	}
	if err := tmp.Close(); err != nil {
		return fmt.Errorf("closing temp history file %s: %w", tmpPath, err)
	}

	if err := os.Rename(tmpPath, path); err != nil {
		return fmt.Errorf("replacing history file %s: %w", path, err)
	}
	return nil
}

// Add inserts record at the front of the log (most recent first),
// truncating to MaxEntries if needed, then persists the result to path.
func (l *Log) Add(path string, record *Record) error {
	l.Operations = append([]*Record{record}, l.Operations...)
	if len(l.Operations) > MaxEntries {
		l.Operations = l.Operations[:MaxEntries]
	}
	return l.Save(path)
}

// Last returns the most recent record, or nil if the log is empty.
func (l *Log) Last() *Record {
	if len(l.Operations) == 0 {
		return nil
	}
	return l.Operations[0]
}

// LastByKind returns the most recent record of the given kind, or nil.
func (l *Log) LastByKind(kind OperationKind) *Record {
	for _, r := range l.Operations {
		if r.OperationType == kind {
			return r
		}
	}
	return nil
}

// Clear empties the log and persists the (now-empty) result to path.
func (l *Log) Clear(path string) error {
	l.Operations = nil
	return l.Save(path)
}

// RemoveLastByKind drops the most recent record of the given kind and
// persists the result to path. Returns the removed record, or nil if no
// record of that kind was present.
func (l *Log) RemoveLastByKind(path string, kind OperationKind) (*Record, error) {
	for i, r := range l.Operations {
		if r.OperationType == kind {
			l.Operations = append(l.Operations[:i], l.Operations[i+1:]...)
			if err := l.Save(path); err != nil {
				return nil, err
			}
			return r, nil
		}
	}
	return nil, nil
}
