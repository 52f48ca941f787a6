package gitscm

import (
	"context"
	"errors"
	"fmt"
	"io/fs"

	"github.com/go-git/go-git/v5"
	"github.com/go-git/go-git/v5/plumbing"
	"github.com/go-git/go-git/v5/plumbing/object"

	"github.com/claudesync/cli/internal/scm"
)

// errStopIteration breaks out of a go-git commit iterator once enough
// results have been collected or a target has been found.
var errStopIteration = errors.New("gitscm: stop iteration")

// Log returns commits reachable from ref, newest first.
func (b *Backend) Log(ctx context.Context, ref string, limit int) ([]scm.Commit, error) {
	b.mu.Lock()
	defer b.mu.Unlock()
	repo, err := b.repository()
	if err != nil {
		return nil, err
	}

	hash, err := resolveHash(repo, ref)
	if err != nil {
		return nil, wrapGitErr("log", err)
	}

	iter, err := repo.Log(&git.LogOptions{From: hash})
	if err != nil {
		return nil, wrapGitErr("log", err)
	}
	defer iter.Close()

	var commits []scm.Commit
	err = iter.ForEach(func(c *object.Commit) error {
		if limit > 0 && len(commits) >= limit {
			return errStopIteration
		}
		var parents []string
		for _, p := range c.ParentHashes {
			parents = append(parents, p.String())
		}
		commits = append(commits, scm.Commit{
			ID:        c.Hash.String(),
			Message:   c.Message,
			Author:    scm.Author{Name: c.Author.Name, Email: c.Author.Email},
			Timestamp: c.Author.When,
			Parents:   parents,
		})
		return nil
	})
	if err != nil && !errors.Is(err, errStopIteration) {
		return nil, wrapGitErr("log", err)
	}
	return commits, nil
}

// ReadFileAtCommit returns the contents of path as it existed in commitID.
func (b *Backend) ReadFileAtCommit(ctx context.Context, commitID, path string) ([]byte, error) {
	b.mu.Lock()
	defer b.mu.Unlock()
	repo, err := b.repository()
	if err != nil {
		return nil, err
	}

	commit, err := repo.CommitObject(plumbing.NewHash(commitID))
	if err != nil {
		return nil, wrapGitErr("read file at commit", err)
	}
	tree, err := commit.Tree()
	if err != nil {
		return nil, wrapGitErr("read file at commit", err)
	}
	file, err := tree.File(path)
	if err != nil {
		if errors.Is(err, object.ErrFileNotFound) {
			return nil, fmt.Errorf("%s: %w", path, fs.ErrNotExist)
		}
		return nil, wrapGitErr("read file at commit", err)
	}
	content, err := file.Contents()
	if err != nil {
		return nil, wrapGitErr("read file at commit", err)
	}
	return []byte(content), nil
}

// IsAncestor reports whether ancestor is reachable from descendant by
// following parent links, capped at 10000 commits of traversal to bound
// worst-case cost on pathological histories.
func (b *Backend) IsAncestor(ctx context.Context, ancestor, descendant string) (bool, error) {
	b.mu.Lock()
	defer b.mu.Unlock()
	repo, err := b.repository()
	if err != nil {
		return false, err
	}

	ancestorHash := plumbing.NewHash(ancestor)
	descendantHash := plumbing.NewHash(descendant)
	if ancestorHash == descendantHash {
		return true, nil
	}

	iter, err := repo.Log(&git.LogOptions{From: descendantHash})
	if err != nil {
		return false, wrapGitErr("is ancestor", err)
	}
	defer iter.Close()

	found := false
	count := 0
	err = iter.ForEach(func(c *object.Commit) error {
		count++
		if count > 10000 {
			return errStopIteration
		}
		if c.Hash == ancestorHash {
			found = true
			return errStopIteration
		}
		return nil
	})
	if err != nil && !errors.Is(err, errStopIteration) {
		return false, wrapGitErr("is ancestor", err)
	}
	return found, nil
}

func resolveHash(repo *git.Repository, ref string) (plumbing.Hash, error) {
	resolved, err := repo.ResolveRevision(plumbing.Revision(ref))
	if err != nil {
		return plumbing.ZeroHash, err
	}
	return *resolved, nil
}
