// Package gitscm implements scm.Port against a real git repository, using
// go-git for object-level reads and writes and shelling out to the git CLI
// for the handful of operations go-git doesn't handle correctly.
package gitscm

import (
	"context"
	"fmt"
	"sync"

	"github.com/go-git/go-git/v5"

	"github.com/claudesync/cli/internal/scm"
)

// Backend implements scm.Port. It is not safe for concurrent use by
// multiple goroutines against the same repository.
type Backend struct {
	mu   sync.Mutex
	path string
	repo *git.Repository
}

// New returns an unopened Backend. Callers must call Init, Open, or Clone
// before any other method.
func New() *Backend {
	return &Backend{}
}

func (b *Backend) repository() (*git.Repository, error) {
	if b.repo == nil {
		return nil, fmt.Errorf("gitscm: repository not open")
	}
	return b.repo, nil
}

var _ scm.Port = (*Backend)(nil)

func wrapGitErr(op string, err error) error {
	if err == nil {
		return nil
	}
	return fmt.Errorf("gitscm: %s: %w", op, err)
}

func noopCtx(ctx context.Context) context.Context {
	if ctx == nil {
		return context.Background()
	}
	return ctx
}
