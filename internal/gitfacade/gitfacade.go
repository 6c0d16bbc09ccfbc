// Package gitfacade is the thin contract over a git repository the core
// depends on: list tags, resolve refs, test ancestry, fetch,
// tag, push, verify push auth, read HEAD. Reads are served by go-git so
// the common path never shells out; the mutating and auth-sensitive
// operations (tag, push, fetch, verifyAuth) shell out to the real git
// binary, because go-git's pure-Go transport does not reproduce the
// credential-helper and dry-run auth behaviour a real clone relies on.
package gitfacade

import (
	"context"
	"fmt"
	"os/exec"

	"github.com/go-git/go-git/v5"
	"github.com/go-git/go-git/v5/plumbing"
	"github.com/go-git/go-git/v5/plumbing/object"
)

// GitFacade is the narrow contract the rest of relgate holds a git
// repository to. Operations that shell out to git either return the
// parsed value or fail with a structured *ExecError; the go-git-backed
// reads fail with a wrapped go-git error instead. tagHead,
// refExists, remoteHead, and isBranchUpToDate return ok=false on
// non-fatal absence instead of an error; the ref simply doesn't exist.
type GitFacade interface {
	Tags(ctx context.Context) ([]string, error)
	TagHead(ctx context.Context, name string) (hash string, ok bool)
	IsAncestor(ctx context.Context, ancestor, ref string) (bool, error)
	RefExists(ctx context.Context, ref string) bool
	Fetch(ctx context.Context) error
	Head(ctx context.Context) (string, error)
	RemoteURL(ctx context.Context, remote string) (string, error)
	IsRepo() bool

	VerifyAuth(ctx context.Context, url, branch string) error
	Tag(ctx context.Context, name, ref string) error
	Push(ctx context.Context, url, branch string) error
	CheckRefFormat(kind, name string) bool
	RemoteHead(ctx context.Context, url, branch string) (hash string, ok bool)
	IsBranchUpToDate(ctx context.Context, url, branch string) bool
}

// ExecError is the structured error every propagating operation returns on
// failure: the command that ran, its exit code, and its trimmed stderr.
type ExecError struct {
	Cmd      string
	Stderr   string
	ExitCode int
}

func (e *ExecError) Error() string {
	if e.Stderr != "" {
		return fmt.Sprintf("%s: %s (exit %d)", e.Cmd, e.Stderr, e.ExitCode)
	}
	return fmt.Sprintf("%s failed (exit %d)", e.Cmd, e.ExitCode)
}

// Repo is the production GitFacade: go-git for reads, git(1) for mutations.
type Repo struct {
	path        string
	repo        *git.Repository
	execCommand func(ctx context.Context, name string, arg ...string) *exec.Cmd
}

// Open opens the repository rooted at path. A non-existent or non-git
// directory is not itself an error here (IsRepo reports that), so the
// caller in internal/commands/pipeline can surface ENOGITREPO with its own
// message.
func Open(path string) *Repo {
	r := &Repo{path: path, execCommand: exec.CommandContext}
	repo, err := git.PlainOpen(path)
	if err == nil {
		r.repo = repo
	}
	return r
}

func (r *Repo) IsRepo() bool { return r.repo != nil }

// Tags returns every raw tag name in the repository, unfiltered; TagIndex
// is responsible for parsing and validating them against the tag format.
func (r *Repo) Tags(ctx context.Context) ([]string, error) {
	if r.repo == nil {
		return nil, fmt.Errorf("not a git repository: %s", r.path)
	}
	refs, err := r.repo.Tags()
	if err != nil {
		return nil, fmt.Errorf("listing tags: %w", err)
	}
	var names []string
	err = refs.ForEach(func(ref *plumbing.Reference) error {
		names = append(names, ref.Name().Short())
		return nil
	})
	if err != nil {
		return nil, fmt.Errorf("listing tags: %w", err)
	}
	return names, nil
}

// TagHead resolves a tag name to the commit hash it points at, dereferencing
// annotated tag objects to their target commit.
func (r *Repo) TagHead(ctx context.Context, name string) (string, bool) {
	if r.repo == nil {
		return "", false
	}
	ref, err := r.repo.Tag(name)
	if err != nil {
		return "", false
	}
	hash, err := r.resolveToCommit(ref.Hash())
	if err != nil {
		return "", false
	}
	return hash.String(), true
}

func (r *Repo) resolveToCommit(h plumbing.Hash) (plumbing.Hash, error) {
	obj, err := r.repo.TagObject(h)
	if err == nil {
		commit, err := obj.Commit()
		if err != nil {
			return plumbing.ZeroHash, err
		}
		return commit.Hash, nil
	}
	// Lightweight tags point directly at the commit.
	if _, err := r.repo.CommitObject(h); err == nil {
		return h, nil
	}
	return plumbing.ZeroHash, fmt.Errorf("tag does not resolve to a commit")
}

// IsAncestor reports whether ancestor is reachable from ref's history.
func (r *Repo) IsAncestor(ctx context.Context, ancestor, ref string) (bool, error) {
	if r.repo == nil {
		return false, fmt.Errorf("not a git repository: %s", r.path)
	}
	ancestorHash, err := r.repo.ResolveRevision(plumbing.Revision(ancestor))
	if err != nil {
		return false, fmt.Errorf("resolving %q: %w", ancestor, err)
	}
	refHash, err := r.repo.ResolveRevision(plumbing.Revision(ref))
	if err != nil {
		return false, fmt.Errorf("resolving %q: %w", ref, err)
	}
	ancestorCommit, err := r.repo.CommitObject(*ancestorHash)
	if err != nil {
		return false, fmt.Errorf("loading commit %q: %w", ancestor, err)
	}
	refCommit, err := r.repo.CommitObject(*refHash)
	if err != nil {
		return false, fmt.Errorf("loading commit %q: %w", ref, err)
	}
	if ancestorCommit.Hash == refCommit.Hash {
		return true, nil
	}
	isAncestor, err := ancestorCommit.IsAncestor(refCommit)
	if err != nil {
		return false, fmt.Errorf("checking ancestry: %w", err)
	}
	return isAncestor, nil
}

// RefExists reports whether ref resolves to an object, without erroring on
// absence.
func (r *Repo) RefExists(ctx context.Context, ref string) bool {
	if r.repo == nil {
		return false
	}
	_, err := r.repo.ResolveRevision(plumbing.Revision(ref))
	return err == nil
}

// Head returns the commit hash HEAD currently points at.
func (r *Repo) Head(ctx context.Context) (string, error) {
	if r.repo == nil {
		return "", fmt.Errorf("not a git repository: %s", r.path)
	}
	head, err := r.repo.Head()
	if err != nil {
		return "", fmt.Errorf("resolving HEAD: %w", err)
	}
	return head.Hash().String(), nil
}

// CurrentBranch returns the short name of the branch HEAD points at, with
// ok=false on a detached HEAD or outside a repository. Used to resolve the
// active branch when no CI environment supplies one.
func (r *Repo) CurrentBranch(ctx context.Context) (string, bool) {
	if r.repo == nil {
		return "", false
	}
	head, err := r.repo.Head()
	if err != nil || !head.Name().IsBranch() {
		return "", false
	}
	return head.Name().Short(), true
}

// RemoteURL returns the fetch URL configured for remote.
func (r *Repo) RemoteURL(ctx context.Context, remote string) (string, error) {
	if r.repo == nil {
		return "", fmt.Errorf("not a git repository: %s", r.path)
	}
	rem, err := r.repo.Remote(remote)
	if err != nil {
		return "", fmt.Errorf("resolving remote %q: %w", remote, err)
	}
	urls := rem.Config().URLs
	if len(urls) == 0 {
		return "", fmt.Errorf("remote %q has no URL", remote)
	}
	return urls[0], nil
}

// commitsBetween collects the commits reachable from ref but not from
// lastHead, newest first: the raw input the ReleasePlanner passes
// unfiltered to analyzeCommits.
func (r *Repo) commitsBetween(ctx context.Context, lastHead, ref string) ([]*object.Commit, error) {
	if r.repo == nil {
		return nil, fmt.Errorf("not a git repository: %s", r.path)
	}
	refHash, err := r.repo.ResolveRevision(plumbing.Revision(ref))
	if err != nil {
		return nil, fmt.Errorf("resolving %q: %w", ref, err)
	}

	var excluded map[plumbing.Hash]bool
	if lastHead != "" {
		excluded = map[plumbing.Hash]bool{}
		lastHash, err := r.repo.ResolveRevision(plumbing.Revision(lastHead))
		if err != nil {
			return nil, fmt.Errorf("resolving %q: %w", lastHead, err)
		}
		lastCommit, err := r.repo.CommitObject(*lastHash)
		if err != nil {
			return nil, fmt.Errorf("loading commit %q: %w", lastHead, err)
		}
		walker := object.NewCommitPreorderIter(lastCommit, nil, nil)
		_ = walker.ForEach(func(c *object.Commit) error {
			excluded[c.Hash] = true
			return nil
		})
	}

	refCommit, err := r.repo.CommitObject(*refHash)
	if err != nil {
		return nil, fmt.Errorf("loading commit %q: %w", ref, err)
	}

	var commits []*object.Commit
	walker := object.NewCommitPreorderIter(refCommit, nil, nil)
	err = walker.ForEach(func(c *object.Commit) error {
		if excluded[c.Hash] {
			return nil
		}
		commits = append(commits, c)
		return nil
	})
	if err != nil {
		return nil, fmt.Errorf("walking commits: %w", err)
	}
	return commits, nil
}

// CommitsBetween is the exported form of commitsBetween used by the
// release planner.
func (r *Repo) CommitsBetween(ctx context.Context, lastHead, ref string) ([]*object.Commit, error) {
	return r.commitsBetween(ctx, lastHead, ref)
}
