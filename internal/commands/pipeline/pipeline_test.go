package pipeline

import (
	"context"
	"testing"
	"time"

	"github.com/go-git/go-git/v5/plumbing/object"

	"github.com/relgate/relgate/internal/branch"
	"github.com/relgate/relgate/internal/ci"
	"github.com/relgate/relgate/internal/config"
)

// fakeGit is a GitOps double covering the surface run() exercises: a single
// release branch at its tip, one conventional commit ahead of no prior tag.
type fakeGit struct {
	head    string
	commits []*object.Commit
	authOK  bool
}

func (f *fakeGit) Tags(ctx context.Context) ([]string, error)             { return nil, nil }
func (f *fakeGit) TagHead(ctx context.Context, name string) (string, bool) { return "", false }
func (f *fakeGit) IsAncestor(ctx context.Context, a, b string) (bool, error) {
	return true, nil
}
func (f *fakeGit) RefExists(ctx context.Context, ref string) bool { return true }
func (f *fakeGit) Fetch(ctx context.Context) error                { return nil }
func (f *fakeGit) Head(ctx context.Context) (string, error)       { return f.head, nil }
func (f *fakeGit) RemoteURL(ctx context.Context, remote string) (string, error) {
	return "https://example.com/r.git", nil
}
func (f *fakeGit) IsRepo() bool { return true }
func (f *fakeGit) VerifyAuth(ctx context.Context, url, branch string) error {
	if f.authOK {
		return nil
	}
	return &authError{}
}
func (f *fakeGit) Tag(ctx context.Context, name, ref string) error           { return nil }
func (f *fakeGit) Push(ctx context.Context, url, branch string) error       { return nil }
func (f *fakeGit) CheckRefFormat(kind, name string) bool                    { return true }
func (f *fakeGit) RemoteHead(ctx context.Context, url, branch string) (string, bool) {
	return "", false
}
func (f *fakeGit) IsBranchUpToDate(ctx context.Context, url, branch string) bool { return true }
func (f *fakeGit) CommitsBetween(ctx context.Context, lastHead, ref string) ([]*object.Commit, error) {
	return f.commits, nil
}

type authError struct{}

func (authError) Error() string { return "auth failed" }

func testConfig() *config.Config {
	return &config.Config{
		TagFormat: "v${version}",
		Branches: []branch.BranchSpec{
			{Name: "master"},
		},
	}
}

func TestRunAdmitsAndReleases(t *testing.T) {
	git := &fakeGit{head: "deadbeef", authOK: true, commits: []*object.Commit{{
		Hash:      [20]byte{1},
		Message:   "feat: add thing",
		Author:    object.Signature{When: time.Unix(0, 0)},
		Committer: object.Signature{When: time.Unix(0, 0)},
	}}}

	out, err := run(context.Background(), testConfig(), git, ci.Env{IsCI: true, Branch: "master"}, Options{})
	if err != nil {
		t.Fatalf("run() error = %v", err)
	}
	if !out.Admitted || !out.Ran || out.Branch != "master" {
		t.Fatalf("run() = %+v, want Admitted=true Ran=true Branch=master", out)
	}
}

func TestRunOutsideCIForcesDryRun(t *testing.T) {
	git := &fakeGit{head: "deadbeef", authOK: true, commits: []*object.Commit{{
		Hash:      [20]byte{1},
		Message:   "fix: bug",
		Author:    object.Signature{When: time.Unix(0, 0)},
		Committer: object.Signature{When: time.Unix(0, 0)},
	}}}

	out, err := run(context.Background(), testConfig(), git, ci.Env{IsCI: false, Branch: "master"}, Options{})
	if err != nil {
		t.Fatalf("run() error = %v", err)
	}
	if !out.Admitted || !out.DryRun {
		t.Fatalf("run() = %+v, want Admitted=true DryRun=true outside CI", out)
	}
}

func TestRunUnconfiguredBranchSkipsWithoutError(t *testing.T) {
	git := &fakeGit{head: "deadbeef", authOK: true}

	out, err := run(context.Background(), testConfig(), git, ci.Env{IsCI: true, Branch: "not-configured"}, Options{})
	if err != nil {
		t.Fatalf("run() error = %v", err)
	}
	if out.Admitted {
		t.Fatalf("run() = %+v, want Admitted=false for an unconfigured branch", out)
	}
}
