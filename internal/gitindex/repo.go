// Package gitindex is the version-control collaborator: it answers which
// files a hook run should look at, re-adds fixer-mutated files to the index,
// and probes repository state such as an in-progress merge.
package gitindex

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"sort"
	"strings"

	git "github.com/go-git/go-git/v5"
	"github.com/go-git/go-git/v5/plumbing"
	"github.com/go-git/go-git/v5/plumbing/object"
)

var errNoUpstream = errors.New("no upstream tracking ref")

// Repo wraps an opened git repository rooted at the project directory.
type Repo struct {
	repo *git.Repository
	wt   *git.Worktree
	root string
}

// Open opens the repository containing dir. Failure to resolve the
// repository is a hard error; hook runs cannot proceed without it.
func Open(dir string) (*Repo, error) {
	repo, err := git.PlainOpenWithOptions(dir, &git.PlainOpenOptions{DetectDotGit: true})
	if err != nil {
		return nil, fmt.Errorf("open repository: %w", err)
	}
	wt, err := repo.Worktree()
	if err != nil {
		return nil, fmt.Errorf("open worktree: %w", err)
	}
	return &Repo{repo: repo, wt: wt, root: wt.Filesystem.Root()}, nil
}

// Root returns the worktree root directory.
func (r *Repo) Root() string { return r.root }

// StagedFiles lists the paths staged for commit, sorted, with vendored
// directories filtered out. Deletions are excluded: there is nothing on disk
// for a tool to check.
func (r *Repo) StagedFiles() ([]string, error) {
	status, err := r.wt.Status()
	if err != nil {
		return nil, fmt.Errorf("git status: %w", err)
	}
	var files []string
	for path, st := range status {
		switch st.Staging {
		case git.Added, git.Modified, git.Renamed, git.Copied:
			files = append(files, path)
		}
	}
	sort.Strings(files)
	return FilterVendored(files), nil
}

// ChangedSinceUpstream lists the files that differ between HEAD and its
// remote-tracking ref, for pre-push runs. Without an upstream (first push of
// a branch) it returns an empty list; pre-push tools that do not take a file
// list still run.
func (r *Repo) ChangedSinceUpstream() ([]string, error) {
	headRef, err := r.repo.Head()
	if err != nil {
		return nil, fmt.Errorf("resolve HEAD: %w", err)
	}
	headTree, err := treeAt(r.repo, headRef.Hash())
	if err != nil {
		return nil, err
	}
	remoteTree, err := r.upstreamTree(headRef)
	if errors.Is(err, errNoUpstream) {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}
	changes, err := object.DiffTree(remoteTree, headTree)
	if err != nil {
		return nil, fmt.Errorf("diff trees: %w", err)
	}
	var files []string
	for _, ch := range changes {
		name := ch.To.Name
		if name == "" {
			// Deleted upstream-relative; nothing on disk to check.
			continue
		}
		files = append(files, name)
	}
	sort.Strings(files)
	return FilterVendored(files), nil
}

func (r *Repo) upstreamTree(headRef *plumbing.Reference) (*object.Tree, error) {
	if !headRef.Name().IsBranch() {
		return nil, errNoUpstream
	}
	branch := headRef.Name().Short()
	remoteRef, err := r.repo.Reference(plumbing.NewRemoteReferenceName("origin", branch), true)
	if err != nil {
		return nil, errNoUpstream
	}
	return treeAt(r.repo, remoteRef.Hash())
}

func treeAt(repo *git.Repository, h plumbing.Hash) (*object.Tree, error) {
	commit, err := repo.CommitObject(h)
	if err != nil {
		return nil, fmt.Errorf("commit lookup: %w", err)
	}
	tree, err := commit.Tree()
	if err != nil {
		return nil, fmt.Errorf("tree lookup: %w", err)
	}
	return tree, nil
}

// Add re-stages the given worktree-relative paths. Used after a fixer tool
// succeeded so its mutations land in the same commit.
func (r *Repo) Add(paths []string) error {
	for _, p := range paths {
		if _, err := r.wt.Add(p); err != nil {
			return fmt.Errorf("git add %s: %w", p, err)
		}
	}
	return nil
}

// MergeInProgress reports whether the repository is mid-merge. Hook runs are
// skipped then: the index holds merge state, not reviewable work.
func (r *Repo) MergeInProgress() bool {
	gitDir, err := gitDirFor(r.root)
	if err != nil {
		return false
	}
	_, err = os.Stat(filepath.Join(gitDir, "MERGE_HEAD"))
	return err == nil
}

// gitDirFor resolves .git for both plain repositories and linked worktrees,
// where .git is a file pointing at the real directory.
func gitDirFor(root string) (string, error) {
	p := filepath.Join(root, ".git")
	st, err := os.Stat(p)
	if err != nil {
		return "", err
	}
	if st.IsDir() {
		return p, nil
	}
	b, err := os.ReadFile(p)
	if err != nil {
		return "", err
	}
	s := strings.TrimSpace(string(b))
	if !strings.HasPrefix(s, "gitdir:") {
		return "", errors.New("invalid .git file")
	}
	d := strings.TrimSpace(strings.TrimPrefix(s, "gitdir:"))
	if !filepath.IsAbs(d) {
		d = filepath.Clean(filepath.Join(root, d))
	}
	return d, nil
}
