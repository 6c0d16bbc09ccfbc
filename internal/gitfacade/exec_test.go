package gitfacade

import (
	"context"
	"os"
	"os/exec"
	"strings"
	"testing"
)

var fakeGitCommands = map[string]string{}

func fakeExecCommand(_ context.Context, command string, args ...string) *exec.Cmd {
	cmdStr := command + " " + strings.Join(args, " ")
	cmd := exec.Command(os.Args[0], "-test.run=TestHelperProcess", "--", cmdStr) //nolint:gosec // standard test re-exec pattern

	cmd.Env = append(os.Environ(),
		"GO_TEST_HELPER_PROCESS=1",
		"MOCK_KEY="+cmdStr,
		"MOCK_VAL="+fakeGitCommands[cmdStr],
	)
	return cmd
}

// TestHelperProcess is not a real test; it is re-exec'd by fakeExecCommand
// to stand in for the git binary.
func TestHelperProcess(t *testing.T) {
	if os.Getenv("GO_TEST_HELPER_PROCESS") != "1" {
		return
	}

	val := os.Getenv("MOCK_VAL")
	if val == "ERROR" {
		_, _ = os.Stderr.WriteString("mock git failure")
		os.Exit(1)
	}
	_, _ = os.Stdout.WriteString(val)
	os.Exit(0)
}

func newFakeRepo(path string, commands map[string]string) *Repo {
	fakeGitCommands = commands
	return &Repo{path: path, execCommand: fakeExecCommand}
}

func TestTagCreatesLightweightTag(t *testing.T) {
	r := newFakeRepo("/repo", map[string]string{
		"git -C /repo tag v1.1.0 abc123": "",
	})
	if err := r.Tag(context.Background(), "v1.1.0", "abc123"); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
}

func TestTagPropagatesError(t *testing.T) {
	r := newFakeRepo("/repo", map[string]string{
		"git -C /repo tag v1.1.0 abc123": "ERROR",
	})
	err := r.Tag(context.Background(), "v1.1.0", "abc123")
	if err == nil {
		t.Fatal("expected error from failing git tag")
	}
	execErr, ok := err.(*ExecError)
	if !ok {
		t.Fatalf("expected *ExecError, got %T", err)
	}
	if execErr.Stderr == "" {
		t.Fatal("expected stderr to be captured")
	}
}

func TestPushPushesBranchThenTags(t *testing.T) {
	r := newFakeRepo("/repo", map[string]string{
		"git -C /repo push origin HEAD:refs/heads/master": "",
		"git -C /repo push origin --tags":                 "",
	})
	if err := r.Push(context.Background(), "origin", "master"); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
}

func TestVerifyAuthPropagatesFailure(t *testing.T) {
	r := newFakeRepo("/repo", map[string]string{
		"git -C /repo push --dry-run origin HEAD:refs/heads/master": "ERROR",
	})
	if err := r.VerifyAuth(context.Background(), "origin", "master"); err == nil {
		t.Fatal("expected verifyAuth failure to propagate")
	}
}

func TestCheckRefFormat(t *testing.T) {
	r := newFakeRepo("/repo", map[string]string{
		"git -C /repo check-ref-format refs/heads/master": "",
	})
	if !r.CheckRefFormat("heads", "master") {
		t.Fatal("expected valid ref name to pass")
	}
}

func TestRemoteHeadAbsentIsNotAnError(t *testing.T) {
	r := newFakeRepo("/repo", map[string]string{
		"git -C /repo ls-remote origin refs/heads/ghost": "",
	})
	if _, ok := r.RemoteHead(context.Background(), "origin", "ghost"); ok {
		t.Fatal("expected absent remote branch to report ok=false")
	}
}

func TestRemoteHeadParsesHash(t *testing.T) {
	r := newFakeRepo("/repo", map[string]string{
		"git -C /repo ls-remote origin refs/heads/master": "abc123\trefs/heads/master",
	})
	hash, ok := r.RemoteHead(context.Background(), "origin", "master")
	if !ok || hash != "abc123" {
		t.Fatalf("expected hash abc123, got %q ok=%v", hash, ok)
	}
}
