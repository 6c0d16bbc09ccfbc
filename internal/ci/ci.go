// Package ci detects the CI environment fields the GateController
// consumes: whether the process is running inside CI, the branch CI
// checked out, and whether the run is for a pull/merge request. The
// detection is plain environment-variable sniffing; internal/tui reuses
// it for its own "are we in CI" question.
package ci

import "os"

// Env is the CI state GateController reads.
type Env struct {
	IsCI   bool
	Branch string
	IsPR   bool
}

// ciEnvVars are generic or provider-specific markers that indicate a CI
// runner; internal/tui.IsInteractive consults them through Detect.
var ciEnvVars = []string{
	"CI",
	"CONTINUOUS_INTEGRATION",
	"GITHUB_ACTIONS",
	"GITLAB_CI",
	"CIRCLECI",
	"TRAVIS",
	"JENKINS_HOME",
	"BUILDKITE",
	"BITBUCKET_BUILD_NUMBER",
	"DRONE",
	"SEMAPHORE",
	"APPVEYOR",
	"CODEBUILD_BUILD_ID",
	"TF_BUILD",
}

// Detect reads the ambient environment into an Env. Branch and PR detection
// understand GitHub Actions and GitLab CI, the two hosted providers
// repositoryUrl resolution also special-cases; other providers are
// still recognised as "in CI", take Branch from BRANCH_NAME or CI_BRANCH
// when one is set, and never set IsPR. An empty Branch is what
// GateController treats as "no active branch configured".
func Detect() Env {
	env := Env{IsCI: isCI()}

	switch {
	case os.Getenv("GITHUB_ACTIONS") != "":
		env.Branch = githubBranch()
		env.IsPR = os.Getenv("GITHUB_EVENT_NAME") == "pull_request" || os.Getenv("GITHUB_EVENT_NAME") == "pull_request_target"
	case os.Getenv("GITLAB_CI") != "":
		env.Branch = firstNonEmpty(os.Getenv("CI_COMMIT_BRANCH"), os.Getenv("CI_COMMIT_REF_NAME"))
		env.IsPR = os.Getenv("CI_MERGE_REQUEST_IID") != ""
	default:
		env.Branch = firstNonEmpty(os.Getenv("BRANCH_NAME"), os.Getenv("CI_BRANCH"))
	}

	return env
}

func isCI() bool {
	for _, v := range ciEnvVars {
		if os.Getenv(v) != "" {
			return true
		}
	}
	return false
}

// githubBranch prefers GITHUB_HEAD_REF (set on pull_request events, naming
// the PR's source branch) and falls back to GITHUB_REF_NAME.
func githubBranch() string {
	return firstNonEmpty(os.Getenv("GITHUB_HEAD_REF"), os.Getenv("GITHUB_REF_NAME"))
}

func firstNonEmpty(values ...string) string {
	for _, v := range values {
		if v != "" {
			return v
		}
	}
	return ""
}

// identityDefaults are the fixed git author/committer values used when
// nothing in the surrounding environment already sets them.
var identityDefaults = map[string]string{
	"GIT_AUTHOR_NAME":     "relgate-bot",
	"GIT_AUTHOR_EMAIL":    "relgate-bot@users.noreply.github.com",
	"GIT_COMMITTER_NAME":  "relgate-bot",
	"GIT_COMMITTER_EMAIL": "relgate-bot@users.noreply.github.com",
}

// ApplyCIEnvironment sets the environment variables a release job needs
// before any plugin runs: the four git identity variables (existing values in the
// surrounding environment win) plus GIT_ASKPASS/GIT_TERMINAL_PROMPT, which
// are always forced so a push never blocks on an interactive credential
// prompt. No-op outside CI.
func ApplyCIEnvironment(env Env) {
	if !env.IsCI {
		return
	}
	for k, v := range identityDefaults {
		if os.Getenv(k) == "" {
			os.Setenv(k, v)
		}
	}
	os.Setenv("GIT_ASKPASS", "echo")
	os.Setenv("GIT_TERMINAL_PROMPT", "0")
}
