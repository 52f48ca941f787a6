// Package session loads and stores conversation files: ordered,
// line-delimited JSON logs identified by a stable session id.
package session

import (
	"bytes"
	"encoding/json"
	"sort"
)

// Entry is one line from a conversation file. Known fields are named;
// anything else present in the JSON object is preserved verbatim in Extra so
// that a round trip through Load/Write is lossless.
//
// Timestamp is kept as the raw RFC-3339 string rather than parsed into
// time.Time: conversation files are compared and sorted lexicographically by
// this string (valid for same-precision UTC RFC-3339 values), and keeping the
// original bytes means re-serialization never reformats a timestamp the
// producing agent wrote slightly differently than Go's time package would.
type Entry struct {
	// Kind is the entry's "type" field (e.g. "user", "assistant",
	// "summary", "file-history-snapshot"). Only "user" and "assistant"
	// count toward MessageCount; every other value passes through
	// unexamined.
	Kind string

	UUID       *string
	ParentUUID *string
	SessionID  *string
	Timestamp  *string

	// Message is the raw JSON value of the "message" field, kept as
	// RawMessage because its shape varies by agent and is never
	// interpreted by the merger (messages are merged whole, never
	// diffed semantically).
	Message json.RawMessage

	// CWD, Version, and GitBranch are common optional context fields
	// emitted by Claude Code and similar agents. They participate in no
	// invariant; they are named here only so they round-trip in the
	// declared field order instead of falling into Extra.
	CWD       *string
	Version   *string
	GitBranch *string

	// Extra holds every JSON field not named above, for forward
	// compatibility with agent transcript formats this package doesn't
	// know about yet.
	Extra map[string]json.RawMessage
}

// IsCountedMessage reports whether this entry's kind counts toward a
// session's message_count ("user" or "assistant").
func (e *Entry) IsCountedMessage() bool {
	return e.Kind == "user" || e.Kind == "assistant"
}

// PreviewLine renders a single-line, diff-friendly summary of the entry:
// its kind and a truncated view of its message payload. It is never parsed
// back and carries no round-trip guarantee; it exists only so two sessions
// can be compared line-by-line for a human-readable conflict preview.
func (e *Entry) PreviewLine() string {
	const maxLen = 120
	msg := string(e.Message)
	if len(msg) > maxLen {
		msg = msg[:maxLen] + "…"
	}
	uuid := ""
	if e.UUID != nil {
		uuid = *e.UUID
	}
	return e.Kind + " " + uuid + " " + msg
}

// entryWire is the on-the-wire shape of an Entry, used to decode known
// fields; any remaining object keys are captured separately into Extra.
type entryWire struct {
	Kind       string          `json:"type"`
	UUID       *string         `json:"uuid,omitempty"`
	ParentUUID *string         `json:"parentUuid,omitempty"`
	SessionID  *string         `json:"sessionId,omitempty"`
	Timestamp  *string         `json:"timestamp,omitempty"`
	Message    json.RawMessage `json:"message,omitempty"`
	CWD        *string         `json:"cwd,omitempty"`
	Version    *string         `json:"version,omitempty"`
	GitBranch  *string         `json:"gitBranch,omitempty"`
}

// knownKeys lists the JSON keys consumed by entryWire, used to split a raw
// object into known fields plus an Extra bag.
var knownKeys = map[string]bool{
	"type": true, "uuid": true, "parentUuid": true, "sessionId": true,
	"timestamp": true, "message": true, "cwd": true, "version": true,
	"gitBranch": true,
}

// UnmarshalJSON decodes one conversation-file line into an Entry, routing
// every field it doesn't recognize into Extra.
func (e *Entry) UnmarshalJSON(data []byte) error {
	var wire entryWire
	if err := json.Unmarshal(data, &wire); err != nil {
		return err
	}
	e.Kind = wire.Kind
	e.UUID = wire.UUID
	e.ParentUUID = wire.ParentUUID
	e.SessionID = wire.SessionID
	e.Timestamp = wire.Timestamp
	e.Message = wire.Message
	e.CWD = wire.CWD
	e.Version = wire.Version
	e.GitBranch = wire.GitBranch

	var raw map[string]json.RawMessage
	if err := json.Unmarshal(data, &raw); err != nil {
		return err
	}
	for k := range knownKeys {
		delete(raw, k)
	}
	if len(raw) > 0 {
		e.Extra = raw
	}
	return nil
}

// MarshalJSON re-serializes an Entry. Known fields are written in a fixed
// order first (matching entryWire's tags), then any Extra fields in sorted
// key order so the output is deterministic.
func (e *Entry) MarshalJSON() ([]byte, error) {
	var buf bytes.Buffer
	buf.WriteByte('{')
	first := true

	write := func(key string, raw json.RawMessage) error {
		if !first {
			buf.WriteByte(',')
		}
		first = false
		kb, err := json.Marshal(key)
		if err != nil {
			return err
		}
		buf.Write(kb)
		buf.WriteByte(':')
		buf.Write(raw)
		return nil
	}

	writeValue := func(key string, v any) error {
		vb, err := json.Marshal(v)
		if err != nil {
			return err
		}
		return write(key, vb)
	}

	if err := writeValue("type", e.Kind); err != nil {
		return nil, err
	}
	if e.UUID != nil {
		if err := writeValue("uuid", e.UUID); err != nil {
			return nil, err
		}
	}
	if e.ParentUUID != nil {
		if err := writeValue("parentUuid", e.ParentUUID); err != nil {
			return nil, err
		}
	}
	if e.SessionID != nil {
		if err := writeValue("sessionId", e.SessionID); err != nil {
			return nil, err
		}
	}
	if e.Timestamp != nil {
		if err := writeValue("timestamp", e.Timestamp); err != nil {
			return nil, err
		}
	}
	if len(e.Message) > 0 {
		if err := write("message", e.Message); err != nil {
			return nil, err
		}
	}
	if e.CWD != nil {
		if err := writeValue("cwd", e.CWD); err != nil {
			return nil, err
		}
	}
	if e.Version != nil {
		if err := writeValue("version", e.Version); err != nil {
			return nil, err
		}
	}
	if e.GitBranch != nil {
		if err := writeValue("gitBranch", e.GitBranch); err != nil {
			return nil, err
		}
	}

	if len(e.Extra) > 0 {
		keys := make([]string, 0, len(e.Extra))
		for k := range e.Extra {
			keys = append(keys, k)
		}
		sort.Strings(keys)
		for _, k := range keys {
			if err := write(k, e.Extra[k]); err != nil {
				return nil, err
			}
		}
	}

	buf.WriteByte('}')
	return buf.Bytes(), nil
}

// Clone returns a deep-enough copy of the entry suitable for building merge
// trees without aliasing the original's Extra map.
func (e *Entry) Clone() *Entry {
	clone := *e
	if e.Extra != nil {
		clone.Extra = make(map[string]json.RawMessage, len(e.Extra))
		for k, v := range e.Extra {
			clone.Extra[k] = v
		}
	}
	return &clone
}
