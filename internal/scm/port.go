// Package scm defines the narrow version-control interface claude-sync syncs
// through. It never names go-git or the git CLI directly; everything that
// needs a repository talks to a Port.
package scm

import (
	"context"
	"errors"
	"time"
)

// ErrNotARepository is returned by Open when path has no repository of the
// implementing backend's kind.
var ErrNotARepository = errors.New("scm: not a repository")

// ErrNoSuchRemote is returned when a remote operation names a remote that
// hasn't been configured.
var ErrNoSuchRemote = errors.New("scm: no such remote")

// Author identifies who a commit is attributed to.
type Author struct {
	Name  string
	Email string
}

// Commit describes one commit reachable from a branch tip.
type Commit struct {
	ID        string
	Message   string
	Author    Author
	Timestamp time.Time
	Parents   []string
}

// Port is the backend-agnostic surface the sync orchestrator drives. A
// concrete backend (gitscm.Backend) implements it against a real VCS; tests
// substitute an in-memory fake.
type Port interface {
	// Init creates a new repository at path if one doesn't already exist.
	Init(ctx context.Context, path string) error

	// Open opens an existing repository at path. Returns ErrNotARepository
	// if none exists there.
	Open(ctx context.Context, path string) error

	// Clone clones remoteURL into path.
	Clone(ctx context.Context, remoteURL, path string) error

	// CurrentBranch returns the short name of the branch HEAD points to.
	CurrentBranch(ctx context.Context) (string, error)

	// HasBranch reports whether a local branch by that name exists.
	HasBranch(ctx context.Context, name string) (bool, error)

	// CreateBranch creates a new branch named name pointing at startPoint
	// (empty string means the current HEAD, or an orphan root if the
	// repository has no commits yet).
	CreateBranch(ctx context.Context, name, startPoint string) error

	// CheckoutBranch switches the working tree to the named branch.
	CheckoutBranch(ctx context.Context, name string) error

	// StageAll stages every modification, addition, and deletion under
	// root into the index.
	StageAll(ctx context.Context, root string) error

	// HasUncommittedChanges reports whether the working tree has any
	// staged or unstaged modifications, respecting ignore rules.
	HasUncommittedChanges(ctx context.Context) (bool, error)

	// Commit records the index as a new commit on the current branch and
	// returns its commit ID. Returns ErrNothingToCommit if the index is
	// unchanged from HEAD.
	Commit(ctx context.Context, message string, author Author) (string, error)

	// HeadCommit returns the commit ID the current branch points at.
	HeadCommit(ctx context.Context) (string, error)

	// Log returns commits reachable from ref, newest first, at most
	// limit of them (0 means no limit).
	Log(ctx context.Context, ref string, limit int) ([]Commit, error)

	// ReadFileAtCommit returns the contents of path as it existed in the
	// given commit. Returns os.ErrNotExist-wrapping error if absent.
	ReadFileAtCommit(ctx context.Context, commitID, path string) ([]byte, error)

	// SetRemote configures (creating or replacing) a remote named name
	// pointing at url.
	SetRemote(ctx context.Context, name, url string) error

	// HasRemote reports whether a remote by that name is configured.
	HasRemote(ctx context.Context, name string) (bool, error)

	// ListRemotes returns the names of every configured remote.
	ListRemotes(ctx context.Context) ([]string, error)

	// GetRemoteURL returns the URL configured for the named remote.
	// Returns ErrNoSuchRemote if it isn't configured.
	GetRemoteURL(ctx context.Context, name string) (string, error)

	// RemoveRemote deletes the named remote. Returns ErrNoSuchRemote if it
	// isn't configured.
	RemoveRemote(ctx context.Context, name string) error

	// Fetch retrieves objects and refs for branch from the named remote.
	Fetch(ctx context.Context, remote, branch string) error

	// Push sends the named local branch to the named remote.
	Push(ctx context.Context, remote, branch string) error

	// Pull fetches and fast-forwards (or merges) the named branch from
	// the named remote into the current branch.
	Pull(ctx context.Context, remote, branch string) error

	// ResetSoft moves the current branch's tip to commitID without
	// touching the working tree or index.
	ResetSoft(ctx context.Context, commitID string) error

	// IsAncestor reports whether ancestor is reachable by following
	// parent links from descendant (or equals it).
	IsAncestor(ctx context.Context, ancestor, descendant string) (bool, error)
}

// ErrNothingToCommit is returned by Commit when the index matches HEAD.
var ErrNothingToCommit = errors.New("scm: nothing to commit")
