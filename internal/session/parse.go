package session

import (
	"bufio"
	"bytes"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strings"
)

// Load reads a conversation file line by line into a Session. Blank lines
// are skipped; each non-blank line is parsed as one Entry. A parse failure
// names the file and 1-based line number via *ParseError.
//
// Uses bufio.Reader.ReadBytes instead of bufio.Scanner so arbitrarily long
// transcript lines never hit a fixed buffer ceiling.
func Load(path string) (*Session, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("opening conversation file %s: %w", path, err)
	}
	defer f.Close()

	reader := bufio.NewReader(f)
	var entries []*Entry
	var sessionID string
	lineNum := 0

	for {
		lineNum++
		lineBytes, readErr := reader.ReadBytes('\n')
		if readErr != nil && readErr != io.EOF {
			return nil, fmt.Errorf("reading %s: %w", path, readErr)
		}

		trimmed := bytes.TrimRight(lineBytes, "\r\n")
		if len(bytes.TrimSpace(trimmed)) == 0 {
			if readErr == io.EOF {
				break
			}
			continue
		}

		entry := &Entry{}
		if err := json.Unmarshal(trimmed, entry); err != nil {
			return nil, &ParseError{Path: path, Line: lineNum, Err: err}
		}
		if sessionID == "" && entry.SessionID != nil && *entry.SessionID != "" {
			sessionID = *entry.SessionID
		}
		entries = append(entries, entry)

		if readErr == io.EOF {
			break
		}
	}

	if sessionID == "" {
		stem := strings.TrimSuffix(filepath.Base(path), filepath.Ext(path))
		if stem == "" {
			return nil, fmt.Errorf("cannot derive a session id for %s: no entry carries session_id and the file has no stem", path)
		}
		sessionID = stem
	}

	return &Session{SessionID: sessionID, Path: path, Entries: entries}, nil
}

// Write serializes a Session to path, one JSON object per line terminated by
// '\n', in the Session's entry order. Missing parent directories are
// created.
func Write(s *Session, path string) error {
	if dir := filepath.Dir(path); dir != "." {
		if err := os.MkdirAll(dir, 0o755); err != nil {
			return fmt.Errorf("creating parent directory for %s: %w", path, err)
		}
	}

	var buf bytes.Buffer
	for _, e := range s.Entries {
		data, err := e.MarshalJSON()
		if err != nil {
			return fmt.Errorf("serializing entry in %s: %w", path, err)
		}
		buf.Write(data)
		buf.WriteByte('\n')
	}

	if err := os.WriteFile(path, buf.Bytes(), 0o644); err != nil {
		return fmt.Errorf("writing %s: %w", path, err)
	}
	return nil
}

// ErrNotConversationFile is a sentinel for callers filtering non-.jsonl
// paths; Session Parser itself doesn't enforce extension.
var ErrNotConversationFile = errors.New("not a conversation file")
