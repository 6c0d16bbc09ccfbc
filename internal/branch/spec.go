// Package branch implements the BranchClassifier: it validates a
// configured branch list, partitions it into release, maintenance, and
// prerelease branches, and computes each branch's semver range and
// distribution channel.
package branch

import (
	"fmt"
)

// PrereleaseValue models the `prerelease: <id>` / `prerelease: true` input
// shape: either an explicit identifier string, or the literal boolean true,
// which substitutes the branch's own name as the identifier.
type PrereleaseValue struct {
	ID      string
	UseName bool
	IsSet   bool
}

// UnmarshalYAML accepts either a bare boolean or a string, the two forms
// the prerelease field allows.
func (p *PrereleaseValue) UnmarshalYAML(unmarshal func(any) error) error {
	var asBool bool
	if err := unmarshal(&asBool); err == nil {
		p.IsSet = true
		p.UseName = asBool
		return nil
	}
	var asString string
	if err := unmarshal(&asString); err != nil {
		return fmt.Errorf("prerelease must be a boolean or a string: %w", err)
	}
	p.IsSet = true
	p.ID = asString
	return nil
}

// BranchSpec is the raw, user-authored branch entry.
type BranchSpec struct {
	Name       string           `yaml:"name"`
	Channel    string           `yaml:"channel,omitempty"`
	Range      string           `yaml:"range,omitempty"`
	Prerelease *PrereleaseValue `yaml:"prerelease,omitempty"`
	MergeRange string           `yaml:"mergeRange,omitempty"`
}

// Type is one of the three closed branch kinds.
type Type string

const (
	TypeRelease     Type = "release"
	TypeMaintenance Type = "maintenance"
	TypePrerelease  Type = "prerelease"
)

// RefFormatChecker is the subset of GitFacade branch validation needs.
type RefFormatChecker interface {
	CheckRefFormat(kind, name string) bool
}
