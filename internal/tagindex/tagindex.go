// Package tagindex builds, from a tagFormat template and the raw tag
// list a GitFacade returns, the per-branch list of parsed, ancestry-
// filtered tags the release planner consumes.
package tagindex

import (
	"context"
	"sort"
	"strings"

	"github.com/relgate/relgate/internal/relerrors"
	"github.com/relgate/relgate/internal/semver"
)

// placeholder is the literal template token a tagFormat renders ${version}
// into.
const placeholder = "${version}"

// Tag is one parsed, valid tag: its raw name, semver value, optional
// channel, and the commit it points at.
type Tag struct {
	RawName    string
	Version    semver.Version
	Channel    string
	HasChannel bool
	GitHead    string
}

// AncestorChecker is the subset of GitFacade the index needs to assign tags
// to branches, kept narrow so callers can pass a fake in tests.
type AncestorChecker interface {
	TagHead(ctx context.Context, name string) (hash string, ok bool)
	IsAncestor(ctx context.Context, ancestor, ref string) (bool, error)
}

// Index renders and parses tag names against one tagFormat template.
type Index struct {
	format string
	prefix string
	suffix string
}

// New validates tagFormat and returns an Index ready to
// classify raw tags.
func New(tagFormat string, refChecker interface {
	CheckRefFormat(kind, name string) bool
}) (*Index, error) {
	rendered := Render(tagFormat, " ", "")
	if strings.Count(rendered, " ") != 1 {
		return nil, relerrors.New(relerrors.ETagNoVersion,
			"tag format must contain exactly one ${version} placeholder",
			"Got: `"+tagFormat+"`")
	}

	sentinel := Render(tagFormat, "0.0.0", "")
	if refChecker != nil && !refChecker.CheckRefFormat("tags", sentinel) {
		return nil, relerrors.New(relerrors.EInvalidTagFormat,
			"tag format does not render to a valid git tag name",
			"Rendered sentinel: `"+sentinel+"`")
	}

	prefix, suffix, _ := strings.Cut(tagFormat, placeholder)
	return &Index{format: tagFormat, prefix: prefix, suffix: suffix}, nil
}

// Render renders a tagFormat template for a version and, if channel is
// non-empty, appends "@<channel>".
func Render(tagFormat, version, channel string) string {
	rendered := strings.ReplaceAll(tagFormat, placeholder, version)
	if channel != "" {
		rendered += "@" + channel
	}
	return rendered
}

// Parse attempts to parse one raw tag name against the format. It returns
// ok=false (never an error) when the tag cannot be unambiguously parsed;
// an unparseable tag is silently ignored rather than failing the run.
func (idx *Index) Parse(rawName string) (Tag, bool) {
	body, channel, hasChannel := splitChannel(rawName)

	if !strings.HasPrefix(body, idx.prefix) || !strings.HasSuffix(body, idx.suffix) {
		return Tag{}, false
	}
	versionPart := body[len(idx.prefix) : len(body)-len(idx.suffix)]
	if versionPart == "" {
		return Tag{}, false
	}

	v, err := semver.Parse(versionPart)
	if err != nil {
		return Tag{}, false
	}

	return Tag{RawName: rawName, Version: v, Channel: channel, HasChannel: hasChannel}, true
}

// splitChannel strips an optional trailing "@<channel>" suffix, matching
// the rightmost '@'.
func splitChannel(rawName string) (body, channel string, hasChannel bool) {
	idx := strings.LastIndex(rawName, "@")
	if idx < 0 {
		return rawName, "", false
	}
	return rawName[:idx], rawName[idx+1:], true
}

// Build classifies every raw tag and assigns it to every branch (named in
// branchTips, mapping branch name to its tip ref) whose history contains
// the tag's commit. The result is ordered ascending by semver per branch.
func Build(ctx context.Context, idx *Index, gf AncestorChecker, rawTags []string, branchTips map[string]string) (map[string][]Tag, error) {
	result := make(map[string][]Tag, len(branchTips))
	for name := range branchTips {
		result[name] = nil
	}

	for _, raw := range rawTags {
		tag, ok := idx.Parse(raw)
		if !ok {
			continue
		}
		head, ok := gf.TagHead(ctx, raw)
		if !ok {
			// gitHead missing from local history; fetch is expected to
			// have made it available. Ignore rather than fail the run.
			continue
		}
		tag.GitHead = head

		for branch, tip := range branchTips {
			isAncestor, err := gf.IsAncestor(ctx, head, tip)
			if err != nil || !isAncestor {
				continue
			}
			result[branch] = append(result[branch], tag)
		}
	}

	for branch := range result {
		tags := result[branch]
		sort.SliceStable(tags, func(i, j int) bool {
			return tags[i].Version.LessThan(tags[j].Version)
		})
		result[branch] = tags
	}
	return result, nil
}
