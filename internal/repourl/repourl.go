// Package repourl resolves the "repositoryUrl" option: expanding the
// shorthand forms a config file is allowed to spell a remote in, normalising
// the "git+https://" npm-ism, and injecting CI-provided push credentials
// into an https remote when a plain push would otherwise be rejected.
// Parsing/validation of the fully-formed cases is delegated to
// git-urls, which understands the scp-like git@host:path form on top of
// ordinary URLs.
package repourl

import (
	"fmt"
	"net/url"
	"os"
	"regexp"
	"strings"

	giturls "github.com/whilp/git-urls"
)

// hostedShorthand maps a provider shorthand to its hosted domain.
var hostedShorthand = map[string]string{
	"github":    "github.com",
	"gitlab":    "gitlab.com",
	"bitbucket": "bitbucket.org",
}

var providerShorthandRex = regexp.MustCompile(`^(github|gitlab|bitbucket):([\w.-]+)/([\w.-]+?)(\.git)?$`)
var bareShorthandRex = regexp.MustCompile(`^[\w.-]+/[\w.-]+?(\.git)?$`)

// Normalize expands a configured repositoryUrl into a URL git-urls can
// parse and go-urls-based tooling can push to: "git+https://" loses its
// "git+" prefix, "owner/repo" and "provider:owner/repo" expand against
// hostedShorthand, and anything else passes through git-urls.Parse
// unchanged (for validation only).
func Normalize(raw string) (string, error) {
	raw = strings.TrimSpace(raw)
	if raw == "" {
		return "", fmt.Errorf("repositoryUrl is empty")
	}

	if strings.HasPrefix(raw, "git+http://") || strings.HasPrefix(raw, "git+https://") {
		return strings.TrimPrefix(raw, "git+"), nil
	}

	if m := providerShorthandRex.FindStringSubmatch(raw); m != nil {
		host := hostedShorthand[m[1]]
		return fmt.Sprintf("https://%s/%s/%s.git", host, m[2], strings.TrimSuffix(m[3], ".git")), nil
	}

	if bareShorthandRex.MatchString(raw) {
		owner, repo, _ := strings.Cut(raw, "/")
		return fmt.Sprintf("https://github.com/%s/%s.git", owner, strings.TrimSuffix(repo, ".git")), nil
	}

	if _, err := giturls.Parse(raw); err != nil {
		return "", fmt.Errorf("invalid repositoryUrl %q: %w", raw, err)
	}
	return raw, nil
}

// credentialEnv is one entry of the priority-ordered credential lookup:
// the first populated environment variable wins, and its
// prefix becomes the URL's userinfo segment ahead of the token itself.
type credentialEnv struct {
	name   string
	prefix string
}

var credentialPriority = []credentialEnv{
	{"GIT_CREDENTIALS", ""},
	{"GH_TOKEN", ""},
	{"GITHUB_TOKEN", ""},
	{"GL_TOKEN", "gitlab-ci-token:"},
	{"GITLAB_TOKEN", "gitlab-ci-token:"},
	{"BB_TOKEN", "x-token-auth:"},
	{"BITBUCKET_TOKEN", "x-token-auth:"},
}

// WithCredentials rewrites an http(s) remote to carry the first configured
// credential as its userinfo, so a subsequent push authenticates the way a
// hosted CI runner's built-in token would. Non-http(s) remotes (ssh, git://)
// and URLs that already carry userinfo are returned unchanged, since an
// explicit credential in the config takes precedence over env discovery.
func WithCredentials(rawURL string) string {
	u, err := url.Parse(rawURL)
	if err != nil || (u.Scheme != "http" && u.Scheme != "https") || u.User != nil {
		return rawURL
	}
	for _, c := range credentialPriority {
		token := strings.TrimSpace(os.Getenv(c.name))
		if token == "" {
			continue
		}
		return fmt.Sprintf("%s://%s%s@%s%s", u.Scheme, c.prefix, token, u.Host, u.Path)
	}
	return rawURL
}
