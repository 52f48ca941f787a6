// Package validation provides input validation functions for claude-sync.
// This package has no dependencies to avoid import cycles.
package validation

import (
	"errors"
	"fmt"
	"regexp"
	"strings"
)

// pathSafeRegex matches alphanumeric characters, underscores, and hyphens only.
// Used to validate IDs that will be used in file paths.
var pathSafeRegex = regexp.MustCompile(`^[a-zA-Z0-9_-]+$`)

// ValidateSessionID validates that a session ID doesn't contain path separators.
// This prevents path traversal attacks when session IDs are used in file paths.
func ValidateSessionID(id string) error {
	if id == "" {
		return errors.New("session ID cannot be empty")
	}
	if strings.ContainsAny(id, "/\\") {
		return fmt.Errorf("invalid session ID %q: contains path separators", id)
	}
	return nil
}

// ValidateSnapshotID validates that a snapshot ID is safe to use in a file path.
func ValidateSnapshotID(id string) error {
	if id == "" {
		return errors.New("snapshot ID cannot be empty")
	}
	if !pathSafeRegex.MatchString(id) {
		return fmt.Errorf("invalid snapshot ID %q: must be alphanumeric with underscores/hyphens only", id)
	}
	return nil
}

// ValidateDays validates a retention window expressed in days.
func ValidateDays(days int) error {
	if days < 0 {
		return fmt.Errorf("invalid day count %d: must be non-negative", days)
	}
	return nil
}

// acceptedRemoteSchemes lists the URL schemes the SCM port will accept for a remote.
var acceptedRemoteSchemes = []string{"https://", "http://", "git@", "ssh://"}

// ValidateRemoteURL validates that a remote URL uses one of the accepted schemes:
// https://, http://, git@ (SCP-like), or ssh://.
func ValidateRemoteURL(url string) error {
	if url == "" {
		return errors.New("remote URL cannot be empty")
	}
	for _, scheme := range acceptedRemoteSchemes {
		if strings.HasPrefix(url, scheme) {
			return nil
		}
	}
	return fmt.Errorf("invalid remote URL %q: must start with one of %s", url, strings.Join(acceptedRemoteSchemes, ", "))
}

// ValidateBranchName performs a conservative syntactic check on a branch name.
// It rejects the constructs that make a name unsafe to interpolate into a ref
// path or pass to a shell: empty names, path traversal segments, leading
// dashes (which can be misread as flags), and whitespace/control characters.
func ValidateBranchName(name string) error {
	if name == "" {
		return errors.New("branch name cannot be empty")
	}
	if strings.HasPrefix(name, "-") {
		return fmt.Errorf("invalid branch name %q: cannot start with '-'", name)
	}
	if strings.Contains(name, "..") || strings.ContainsAny(name, " \t\n\\~^:?*[") {
		return fmt.Errorf("invalid branch name %q: contains unsafe characters", name)
	}
	for _, seg := range strings.Split(name, "/") {
		if seg == "" || seg == "." {
			return fmt.Errorf("invalid branch name %q: empty or '.' path segment", name)
		}
	}
	return nil
}
