// Package release implements the ReleasePlanner: for one active
// branch, it produces the ordered back-port list (releasesToAdd) and the
// candidate next-release derived from new commits.
package release

import (
	"context"
	"fmt"
	"sort"

	"github.com/go-git/go-git/v5/plumbing/object"

	"github.com/relgate/relgate/internal/branch"
	"github.com/relgate/relgate/internal/relerrors"
	"github.com/relgate/relgate/internal/semver"
	"github.com/relgate/relgate/internal/tagindex"
)

// Release is one tagged (or about-to-be-tagged) version on a channel.
type Release struct {
	Type    semver.BumpLabel
	Version semver.Version
	Channel string
	GitHead string
	GitTag  string
	Name    string
	Notes   string
}

// PrereleaseBump marks a Release whose type is a prerelease-segment bump
// rather than a major/minor/patch increment.
const PrereleaseBump semver.BumpLabel = "prerelease-bump"

// ReleaseToAdd is one back-ported version: already released on a higher
// channel, not yet released on the active branch's channel.
type ReleaseToAdd struct {
	LastRelease    *Release
	CurrentRelease Release
	NextRelease    Release
}

// CommitsProvider is the subset of GitFacade the planner needs to collect
// the raw commit range for analyzeCommits.
type CommitsProvider interface {
	CommitsBetween(ctx context.Context, lastHead, ref string) ([]*object.Commit, error)
	Head(ctx context.Context) (string, error)
}

// AnalyzeFunc is the analyzeCommits plugin surface: it returns a
// bump label and ok=true, or ok=false for "null" (no release).
type AnalyzeFunc func(commits []*object.Commit) (semver.BumpLabel, bool)

// channelsEqual compares two channel values, where "" is the undefined
// default, distinct from any named channel.
func channelsEqual(a, b string) bool { return a == b }

// highestBelow returns the highest-versioned tag among tags with version <
// ceiling, or nil if there is none.
func highestBelow(tags []tagindex.Tag, ceiling semver.Version) *Release {
	var best *tagindex.Tag
	for i := range tags {
		if !tags[i].Version.LessThan(ceiling) {
			continue
		}
		if best == nil || best.Version.LessThan(tags[i].Version) {
			best = &tags[i]
		}
	}
	if best == nil {
		return nil
	}
	return &Release{Version: best.Version, Channel: best.Channel, GitHead: best.GitHead, GitTag: best.RawName, Name: best.RawName}
}

// highestOverall returns the highest-versioned tag on the branch,
// optionally excluding prerelease versions.
func highestOverall(tags []tagindex.Tag, excludePrerelease bool) *Release {
	var best *tagindex.Tag
	for i := range tags {
		if excludePrerelease && tags[i].Version.IsPrerelease() {
			continue
		}
		if best == nil || best.Version.LessThan(tags[i].Version) {
			best = &tags[i]
		}
	}
	if best == nil {
		return nil
	}
	return &Release{Version: best.Version, Channel: best.Channel, GitHead: best.GitHead, GitTag: best.RawName, Name: best.RawName}
}

func hasTagVersionOnChannel(tags []tagindex.Tag, v semver.Version, channel string) bool {
	for _, t := range tags {
		if t.Version.Compare(v) == 0 && channelsEqual(t.Channel, channel) {
			return true
		}
	}
	return false
}

// PlanBackports enumerates every branch ranked higher than active and, for
// each version already released there that active's history contains but
// whose channel has not yet released it, emits a ReleaseToAdd in ascending
// version order.
//
// ordered is the full classified branch slice in classifier ranking order;
// active must be one of its elements. Maintenance branches with a
// mergeRange reject out-of-range entries with EINVALIDLTSMERGE; those
// entries are dropped from the returned slice and their failures collected
// into the returned error, so valid entries still proceed.
func PlanBackports(active branch.Branch, ordered []branch.Branch, tagFormat string) ([]ReleaseToAdd, error) {
	activeIdx := -1
	for i, b := range ordered {
		if b.Name == active.Name {
			activeIdx = i
			break
		}
	}
	if activeIdx < 0 {
		return nil, fmt.Errorf("active branch %q not found in classified branch set", active.Name)
	}
	higher := ordered[activeIdx+1:]

	candidates := map[string]tagindex.Tag{}
	var order []string
	for _, h := range higher {
		if h.Type == branch.TypePrerelease {
			continue
		}
		for _, t := range active.Tags {
			if !channelsEqual(t.Channel, h.Channel) {
				continue
			}
			key := t.Version.String()
			if _, exists := candidates[key]; !exists {
				candidates[key] = t
				order = append(order, key)
			}
		}
	}

	sort.Slice(order, func(i, j int) bool {
		return candidates[order[i]].Version.LessThan(candidates[order[j]].Version)
	})

	var mergeRange *semver.Range
	if active.Type == branch.TypeMaintenance && active.MergeRange != "" {
		r, err := parseMergeRange(active.MergeRange)
		if err != nil {
			return nil, err
		}
		mergeRange = &r
	}

	c := relerrors.NewCollector()
	var result []ReleaseToAdd
	for _, key := range order {
		t := candidates[key]
		if hasTagVersionOnChannel(active.Tags, t.Version, active.Channel) {
			continue
		}

		last := highestBelow(active.Tags, t.Version)
		bumpType := diffTypeFrom(last, t.Version)

		nextTag := tagindex.Render(tagFormat, t.Version.String(), active.Channel)
		entry := ReleaseToAdd{
			LastRelease: last,
			CurrentRelease: Release{
				Type: bumpType, Version: t.Version, Channel: t.Channel, GitHead: t.GitHead, GitTag: t.RawName, Name: t.RawName,
			},
			NextRelease: Release{
				Type: bumpType, Version: t.Version, Channel: active.Channel, GitHead: t.GitHead, GitTag: nextTag, Name: nextTag,
			},
		}

		if mergeRange != nil && !mergeRange.Contains(t.Version) {
			c.Add(relerrors.New(relerrors.EInvalidLTSMerge,
				fmt.Sprintf("version %s is outside branch %q's merge range %s", t.Version, active.Name, mergeRange.String())))
			continue
		}
		result = append(result, entry)
	}

	return result, c.ErrorOrNil()
}

func diffTypeFrom(last *Release, v semver.Version) semver.BumpLabel {
	if last == nil {
		return semver.BumpMajor
	}
	return semver.DiffType(last.Version, v)
}

// parseMergeRange parses a maintenance branch's mergeRange config value
// (an upper-bounded range expression like ">=1.0.0 <1.5.0"); relgate
// reuses the same two-bound grammar Range.String renders.
func parseMergeRange(expr string) (semver.Range, error) {
	return semver.ParseRangeExpr(expr)
}

// NextReleasePlan is the candidate next-release computed from new commits,
// together with the inputs that produced it.
type NextReleasePlan struct {
	LastRelease *Release
	NextRelease Release
	Commits     []*object.Commit
}

// PlanNextRelease computes the active branch's next-release from new
// commits. A nil result with a nil error means
// analyzeCommits returned null: no release.
func PlanNextRelease(ctx context.Context, active branch.Branch, gf CommitsProvider, analyze AnalyzeFunc, tagFormat string) (*NextReleasePlan, error) {
	excludePrerelease := active.Type != branch.TypePrerelease
	last := highestOverall(active.Tags, excludePrerelease)

	var lastHead string
	if last != nil {
		lastHead = last.GitHead
	}

	commits, err := gf.CommitsBetween(ctx, lastHead, "HEAD")
	if err != nil {
		return nil, fmt.Errorf("collecting commits: %w", err)
	}

	bump, ok := analyze(commits)
	if !ok {
		return nil, nil
	}

	nextVersion, releaseType, err := nextVersion(active, last, bump)
	if err != nil {
		return nil, err
	}

	// Prerelease branches are exempt from the range check: their versions
	// carry a prerelease identifier and order below the final releases the
	// range bounds are made of, so containment is meaningless for them.
	if active.Type != branch.TypePrerelease && !active.Range.Contains(nextVersion) {
		return nil, relerrors.New(relerrors.EInvalidNextVersion,
			fmt.Sprintf("next version %s is outside branch %q's range %s", nextVersion, active.Name, active.Range.String()))
	}

	head, err := gf.Head(ctx)
	if err != nil {
		return nil, fmt.Errorf("resolving HEAD: %w", err)
	}

	gitTag := tagindex.Render(tagFormat, nextVersion.String(), active.Channel)
	return &NextReleasePlan{
		LastRelease: last,
		NextRelease: Release{Type: releaseType, Version: nextVersion, Channel: active.Channel, GitHead: head, GitTag: gitTag, Name: gitTag},
		Commits:     commits,
	}, nil
}

func nextVersion(active branch.Branch, last *Release, bump semver.BumpLabel) (semver.Version, semver.BumpLabel, error) {
	if active.Type != branch.TypePrerelease {
		base := semver.Version{}
		if last != nil {
			base = last.Version
		}
		v, err := semver.Bump(base, bump)
		return v, bump, err
	}

	if last != nil && semver.HasMatchingPrerelease(last.Version, active.Prerelease) {
		bumped := semver.IncrementPrerelease(last.Version.Prerelease(), active.Prerelease)
		v, err := semver.Parse(fmt.Sprintf("%d.%d.%d-%s", last.Version.Major(), last.Version.Minor(), last.Version.Patch(), bumped))
		return v, PrereleaseBump, err
	}

	base := semver.Version{}
	if last != nil {
		base = last.Version
	}
	v, err := semver.BumpToPrerelease(base, bump, active.Prerelease)
	return v, bump, err
}
