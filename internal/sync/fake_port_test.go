package sync

import (
	"context"
	"crypto/sha256"
	"encoding/hex"
	"fmt"
	"os"
	"path/filepath"
	"sort"
	"strconv"
	"time"

	"github.com/claudesync/cli/internal/scm"
)

// fakePort is an in-memory scm.Port used by this package's tests in place of
// gitscm.Backend, which shells out to a real git binary. It tracks just
// enough state — a simulated commit history keyed by a tree hash of the
// repository's working directory — to exercise push/pull/undo/remote
// without a real VCS underneath.
type fakePort struct {
	root   string
	branch string

	branches map[string]bool
	remotes  map[string]string

	commits    []fakeCommit
	lastTree   string
	stagedRoot string

	fetchCalls []fakeRemoteCall
	pullCalls  []fakeRemoteCall
	pushCalls  []fakeRemoteCall

	fetchErr error
	pullErr  error
	pushErr  error

	// forceNotARepoOnOpen makes the next Open call behave like an existing
	// directory that isn't a repository yet, mirroring what a real backend
	// reports for a plain directory with no VCS metadata.
	forceNotARepoOnOpen bool
}

type fakeRemoteCall struct {
	Remote string
	Branch string
}

type fakeCommit struct {
	id        string
	message   string
	author    scm.Author
	timestamp time.Time
	parent    string
	tree      string
	files     map[string][]byte
}

func newFakePort(branch string) *fakePort {
	return &fakePort{
		branch:   branch,
		branches: map[string]bool{branch: true},
		remotes:  map[string]string{},
	}
}

func (f *fakePort) Init(ctx context.Context, path string) error {
	f.root = path
	return os.MkdirAll(path, 0o755)
}

func (f *fakePort) Open(ctx context.Context, path string) error {
	f.root = path
	if f.forceNotARepoOnOpen {
		f.forceNotARepoOnOpen = false
		return fmt.Errorf("%w: %s", scm.ErrNotARepository, path)
	}
	if _, err := os.Stat(path); err != nil {
		return fmt.Errorf("%w: %s", scm.ErrNotARepository, path)
	}
	return nil
}

func (f *fakePort) Clone(ctx context.Context, remoteURL, path string) error {
	f.root = path
	f.remotes["origin"] = remoteURL
	return os.MkdirAll(path, 0o755)
}

func (f *fakePort) CurrentBranch(ctx context.Context) (string, error) {
	return f.branch, nil
}

func (f *fakePort) HasBranch(ctx context.Context, name string) (bool, error) {
	return f.branches[name], nil
}

func (f *fakePort) CreateBranch(ctx context.Context, name, startPoint string) error {
	f.branches[name] = true
	return nil
}

func (f *fakePort) CheckoutBranch(ctx context.Context, name string) error {
	if !f.branches[name] {
		return fmt.Errorf("scm: no such branch %s", name)
	}
	f.branch = name
	return nil
}

func (f *fakePort) StageAll(ctx context.Context, root string) error {
	f.stagedRoot = root
	return nil
}

func (f *fakePort) HasUncommittedChanges(ctx context.Context) (bool, error) {
	root := f.stagedRoot
	if root == "" {
		root = f.root
	}
	tree, err := hashTree(root)
	if err != nil {
		return false, err
	}
	return tree != f.lastTree, nil
}

func (f *fakePort) Commit(ctx context.Context, message string, author scm.Author) (string, error) {
	root := f.stagedRoot
	if root == "" {
		root = f.root
	}
	tree, err := hashTree(root)
	if err != nil {
		return "", err
	}
	if tree == f.lastTree {
		return "", scm.ErrNothingToCommit
	}

	files, err := snapshotDir(root)
	if err != nil {
		return "", err
	}

	parent := ""
	if len(f.commits) > 0 {
		parent = f.commits[len(f.commits)-1].id
	}

	id := strconv.Itoa(len(f.commits) + 1)
	f.commits = append(f.commits, fakeCommit{
		id:        id,
		message:   message,
		author:    author,
		timestamp: time.Now(),
		parent:    parent,
		tree:      tree,
		files:     files,
	})
	f.lastTree = tree
	return id, nil
}

func (f *fakePort) HeadCommit(ctx context.Context) (string, error) {
	if len(f.commits) == 0 {
		return "", fmt.Errorf("scm: repository has no commits yet")
	}
	return f.commits[len(f.commits)-1].id, nil
}

func (f *fakePort) Log(ctx context.Context, ref string, limit int) ([]scm.Commit, error) {
	var out []scm.Commit
	for i := len(f.commits) - 1; i >= 0; i-- {
		c := f.commits[i]
		var parents []string
		if c.parent != "" {
			parents = []string{c.parent}
		}
		out = append(out, scm.Commit{ID: c.id, Message: c.message, Author: c.author, Timestamp: c.timestamp, Parents: parents})
		if limit > 0 && len(out) >= limit {
			break
		}
	}
	return out, nil
}

func (f *fakePort) ReadFileAtCommit(ctx context.Context, commitID, path string) ([]byte, error) {
	for _, c := range f.commits {
		if c.id == commitID {
			content, ok := c.files[filepath.ToSlash(path)]
			if !ok {
				return nil, fmt.Errorf("%w: %s at %s", os.ErrNotExist, path, commitID)
			}
			return content, nil
		}
	}
	return nil, fmt.Errorf("scm: no such commit %s", commitID)
}

func (f *fakePort) SetRemote(ctx context.Context, name, url string) error {
	f.remotes[name] = url
	return nil
}

func (f *fakePort) HasRemote(ctx context.Context, name string) (bool, error) {
	_, ok := f.remotes[name]
	return ok, nil
}

func (f *fakePort) ListRemotes(ctx context.Context) ([]string, error) {
	names := make([]string, 0, len(f.remotes))
	for name := range f.remotes {
		names = append(names, name)
	}
	sort.Strings(names)
	return names, nil
}

func (f *fakePort) GetRemoteURL(ctx context.Context, name string) (string, error) {
	url, ok := f.remotes[name]
	if !ok {
		return "", scm.ErrNoSuchRemote
	}
	return url, nil
}

func (f *fakePort) RemoveRemote(ctx context.Context, name string) error {
	if _, ok := f.remotes[name]; !ok {
		return scm.ErrNoSuchRemote
	}
	delete(f.remotes, name)
	return nil
}

func (f *fakePort) Fetch(ctx context.Context, remote, branch string) error {
	f.fetchCalls = append(f.fetchCalls, fakeRemoteCall{remote, branch})
	return f.fetchErr
}

func (f *fakePort) Push(ctx context.Context, remote, branch string) error {
	f.pushCalls = append(f.pushCalls, fakeRemoteCall{remote, branch})
	return f.pushErr
}

func (f *fakePort) Pull(ctx context.Context, remote, branch string) error {
	f.pullCalls = append(f.pullCalls, fakeRemoteCall{remote, branch})
	return f.pullErr
}

func (f *fakePort) ResetSoft(ctx context.Context, commitID string) error {
	idx := -1
	for i, c := range f.commits {
		if c.id == commitID {
			idx = i
			break
		}
	}
	if idx < 0 {
		return fmt.Errorf("scm: no such commit %s", commitID)
	}
	f.commits = f.commits[:idx+1]
	f.lastTree = f.commits[idx].tree
	return nil
}

func (f *fakePort) IsAncestor(ctx context.Context, ancestor, descendant string) (bool, error) {
	for _, c := range f.commits {
		if c.id == descendant {
			for cur := c; ; {
				if cur.id == ancestor {
					return true, nil
				}
				if cur.parent == "" {
					return false, nil
				}
				cur = f.commitByID(cur.parent)
			}
		}
	}
	return false, fmt.Errorf("scm: no such commit %s", descendant)
}

func (f *fakePort) commitByID(id string) fakeCommit {
	for _, c := range f.commits {
		if c.id == id {
			return c
		}
	}
	return fakeCommit{}
}

// hashTree hashes the relative path and content of every regular file under
// root (skipping .git), giving a cheap stand-in for git's tree object hash.
func hashTree(root string) (string, error) {
	if _, err := os.Stat(root); os.IsNotExist(err) {
		return "", nil
	}

	var paths []string
	files := map[string][]byte{}
	err := filepath.Walk(root, func(p string, info os.FileInfo, err error) error {
		if err != nil {
			return err
		}
		if info.IsDir() {
			if info.Name() == ".git" {
				return filepath.SkipDir
			}
			return nil
		}
		rel, err := filepath.Rel(root, p)
		if err != nil {
			return err
		}
		rel = filepath.ToSlash(rel)
		data, err := os.ReadFile(p)
		if err != nil {
			return err
		}
		paths = append(paths, rel)
		files[rel] = data
		return nil
	})
	if err != nil {
		return "", err
	}
	sort.Strings(paths)

	h := sha256.New()
	for _, p := range paths {
		h.Write([]byte(p))
		h.Write([]byte{0})
		h.Write(files[p])
		h.Write([]byte{0})
	}
	return hex.EncodeToString(h.Sum(nil)), nil
}

func snapshotDir(root string) (map[string][]byte, error) {
	files := map[string][]byte{}
	if _, err := os.Stat(root); os.IsNotExist(err) {
		return files, nil
	}
	err := filepath.Walk(root, func(p string, info os.FileInfo, err error) error {
		if err != nil {
			return err
		}
		if info.IsDir() {
			if info.Name() == ".git" {
				return filepath.SkipDir
			}
			return nil
		}
		rel, err := filepath.Rel(root, p)
		if err != nil {
			return err
		}
		data, err := os.ReadFile(p)
		if err != nil {
			return err
		}
		files[filepath.ToSlash(rel)] = data
		return nil
	})
	return files, err
}
