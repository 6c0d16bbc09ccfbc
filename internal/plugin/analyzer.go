package plugin

import (
	"context"
	"regexp"
	"strings"

	"github.com/relgate/relgate/internal/semver"
)

// conventionalCommitRex and conventionalCommitTypes recognize Conventional
// Commits v1.0.0 headers: a leading "<type>(<scope>)!: " or "<type>: ",
// classified into the bump the type implies.
var conventionalCommitRex = regexp.MustCompile(`^\s*(?P<type>\w+)(?P<scope>(?:\([^()\r\n]*\)|\()?(?P<breaking>!)?)(?P<subject>:.*)?`)

// skipReleaseRex matches the "[skip release]" / "[release skip]" trailer
// commit authors use to keep a commit out of the next release. The core
// forwards every commit to analyzeCommits unfiltered;
// this reference analyzer is where that exclusion policy actually lives.
var skipReleaseRex = regexp.MustCompile(`(?i)\[\s*skip\s+release\s*\]|\[\s*release\s+skip\s*\]`)

var conventionalCommitTypes = map[string]semver.BumpLabel{
	"feat":     semver.BumpMinor,
	"fix":      semver.BumpPatch,
	"perf":     semver.BumpPatch,
	"revert":   semver.BumpPatch,
	"build":    semver.BumpPatch,
	"chore":    semver.BumpPatch,
	"ci":       semver.BumpPatch,
	"docs":     semver.BumpPatch,
	"refactor": semver.BumpPatch,
	"style":    semver.BumpPatch,
	"test":     semver.BumpPatch,
}

// ConventionalCommitAnalyzer is the reference analyzeCommits
// implementation. It classifies every commit
// subject against Conventional Commits v1.0.0 and returns the highest bump
// any commit implies; ok=false ("null", no release) when nothing matches.
func ConventionalCommitAnalyzer(ctx context.Context, pctx *Context) (semver.BumpLabel, bool, error) {
	found := false
	best := semver.BumpPatch

	for _, c := range pctx.Commits {
		msg := c.Message
		if skipReleaseRex.MatchString(msg) {
			continue
		}
		if strings.Contains(msg, "\nBREAKING CHANGE:") {
			return semver.BumpMajor, true, nil
		}

		matches := findNamedMatches(conventionalCommitRex, strings.SplitN(msg, "\n", 2)[0])
		if breaking, ok := matches["breaking"]; ok && breaking == "!" {
			return semver.BumpMajor, true, nil
		}

		label, authorized := conventionalCommitTypes[matches["type"]]
		if !authorized {
			continue
		}
		found = true
		if rank(label) > rank(best) {
			best = label
		}
	}

	if !found {
		return "", false, nil
	}
	return best, true, nil
}

func rank(l semver.BumpLabel) int {
	switch l {
	case semver.BumpMajor:
		return 2
	case semver.BumpMinor:
		return 1
	default:
		return 0
	}
}

// findNamedMatches runs re against s and returns a map of named capture
// group to matched text, omitting groups that didn't participate.
func findNamedMatches(re *regexp.Regexp, s string) map[string]string {
	match := re.FindStringSubmatch(s)
	out := map[string]string{}
	if match == nil {
		return out
	}
	for i, name := range re.SubexpNames() {
		if i == 0 || name == "" {
			continue
		}
		out[name] = match[i]
	}
	return out
}
