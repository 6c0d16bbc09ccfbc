package gitfacade

import (
	"bytes"
	"context"
	"os/exec"
	"strings"

	"github.com/relgate/relgate/internal/core"
)

// Mutating and auth-sensitive operations shell out using an injectable
// execCommand field; tests substitute a fake that returns a pre-scripted
// *exec.Cmd instead of spawning the real git binary.

func (r *Repo) runGit(ctx context.Context, args ...string) (string, error) {
	cmd := r.execCommand(ctx, "git", append([]string{"-C", r.path}, args...)...)
	var stdout, stderr bytes.Buffer
	cmd.Stdout = &stdout
	cmd.Stderr = &stderr

	if err := cmd.Run(); err != nil {
		exitCode := -1
		if exitErr, ok := err.(*exec.ExitError); ok {
			exitCode = exitErr.ExitCode()
		}
		return "", &ExecError{Cmd: "git " + strings.Join(args, " "), Stderr: strings.TrimSpace(stderr.String()), ExitCode: exitCode}
	}
	return strings.TrimSpace(stdout.String()), nil
}

// Fetch unshallows the repository (if shallow) and fetches every tag. It
// must succeed even when the repository is already complete.
func (r *Repo) Fetch(ctx context.Context) error {
	fctx, cancel := context.WithTimeout(ctx, core.TimeoutFetch)
	defer cancel()

	if _, err := r.runGit(fctx, "fetch", "--unshallow", "--tags", "--force"); err != nil {
		// A repository that was never shallow rejects --unshallow; retry
		// as a plain tag fetch, which is the behaviour we actually need.
		if _, err2 := r.runGit(fctx, "fetch", "--tags", "--force"); err2 != nil {
			return err2
		}
	}
	return nil
}

// Tag creates a lightweight tag named name at ref (HEAD if ref is empty).
func (r *Repo) Tag(ctx context.Context, name, ref string) error {
	tctx, cancel := context.WithTimeout(ctx, core.TimeoutGit)
	defer cancel()

	args := []string{"tag", name}
	if ref != "" {
		args = append(args, ref)
	}
	_, err := r.runGit(tctx, args...)
	return err
}

// Push pushes the current branch and all tags to url's remote.
func (r *Repo) Push(ctx context.Context, url, branch string) error {
	pctx, cancel := context.WithTimeout(ctx, core.TimeoutFetch)
	defer cancel()

	if _, err := r.runGit(pctx, "push", url, "HEAD:refs/heads/"+branch); err != nil {
		return err
	}
	_, err := r.runGit(pctx, "push", url, "--tags")
	return err
}

// VerifyAuth performs a push dry-run to url without mutating anything,
// surfacing an auth or permission failure before the real push is attempted.
func (r *Repo) VerifyAuth(ctx context.Context, url, branch string) error {
	vctx, cancel := context.WithTimeout(ctx, core.TimeoutVerify)
	defer cancel()

	_, err := r.runGit(vctx, "push", "--dry-run", url, "HEAD:refs/heads/"+branch)
	return err
}

// CheckRefFormat validates name as a git ref of the given kind ("heads",
// "tags", ...) using git check-ref-format against the fully-qualified ref.
func (r *Repo) CheckRefFormat(kind, name string) bool {
	ctx, cancel := context.WithTimeout(context.Background(), core.TimeoutGit)
	defer cancel()
	_, err := r.runGit(ctx, "check-ref-format", "refs/"+kind+"/"+name)
	return err == nil
}

// RemoteHead resolves branch's tip on the remote at url via ls-remote,
// returning ok=false (not an error) when the branch doesn't exist there.
func (r *Repo) RemoteHead(ctx context.Context, url, branch string) (string, bool) {
	lctx, cancel := context.WithTimeout(ctx, core.TimeoutVerify)
	defer cancel()

	out, err := r.runGit(lctx, "ls-remote", url, "refs/heads/"+branch)
	if err != nil || out == "" {
		return "", false
	}
	fields := strings.Fields(out)
	if len(fields) == 0 {
		return "", false
	}
	return fields[0], true
}

// IsBranchUpToDate reports whether the remote head of branch is an ancestor
// of the local branch tip, i.e. the local clone has not fallen behind.
func (r *Repo) IsBranchUpToDate(ctx context.Context, url, branch string) bool {
	remoteHash, ok := r.RemoteHead(ctx, url, branch)
	if !ok {
		// No remote branch yet: trivially up to date, nothing to be behind.
		return true
	}
	isAncestor, err := r.IsAncestor(ctx, remoteHash, branch)
	if err != nil {
		return false
	}
	return isAncestor
}

// WithExecCommand overrides the process constructor, used by tests to
// substitute a fake git binary via the re-exec TestHelperProcess trick.
func (r *Repo) WithExecCommand(fn func(ctx context.Context, name string, arg ...string) *exec.Cmd) *Repo {
	r.execCommand = fn
	return r
}
