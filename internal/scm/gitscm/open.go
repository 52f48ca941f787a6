package gitscm

import (
	"context"
	"errors"
	"fmt"

	"github.com/go-git/go-git/v5"

	"github.com/claudesync/cli/internal/scm"
)

// Init creates a new repository at path if one doesn't already exist, and
// opens it.
func (b *Backend) Init(ctx context.Context, path string) error {
	b.mu.Lock()
	defer b.mu.Unlock()

	repo, err := git.PlainInit(path, false)
	if err != nil {
		if errors.Is(err, git.ErrRepositoryAlreadyExists) {
			return b.openLocked(path)
		}
		return wrapGitErr("init", err)
	}
	b.path = path
	b.repo = repo
	return nil
}

// Open opens an existing repository at path.
func (b *Backend) Open(ctx context.Context, path string) error {
	b.mu.Lock()
	defer b.mu.Unlock()
	return b.openLocked(path)
}

func (b *Backend) openLocked(path string) error {
	repo, err := git.PlainOpenWithOptions(path, &git.PlainOpenOptions{
		EnableDotGitCommonDir: true,
	})
	if err != nil {
		if errors.Is(err, git.ErrRepositoryNotExists) {
			return fmt.Errorf("%w: %s", scm.ErrNotARepository, path)
		}
		return wrapGitErr("open", err)
	}
	b.path = path
	b.repo = repo
	return nil
}

// Clone clones remoteURL into path and opens the result.
func (b *Backend) Clone(ctx context.Context, remoteURL, path string) error {
	b.mu.Lock()
	defer b.mu.Unlock()

	repo, err := git.PlainCloneContext(noopCtx(ctx), path, false, &git.CloneOptions{
		URL: remoteURL,
	})
	if err != nil {
		return wrapGitErr("clone", err)
	}
	b.path = path
	b.repo = repo
	return nil
}
