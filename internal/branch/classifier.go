package branch

import (
	"fmt"
	"sort"

	"github.com/relgate/relgate/internal/relerrors"
	"github.com/relgate/relgate/internal/semver"
	"github.com/relgate/relgate/internal/tagindex"
)

// Branch is the normalised branch record.
type Branch struct {
	Name       string
	Type       Type
	Channel    string // "" means the default (unlabelled) channel
	Range      semver.Range
	Tags       []tagindex.Tag // ascending by version
	Prerelease string         // set only for Type == TypePrerelease
	MergeRange string         // set only for Type == TypeMaintenance, raw config value
}

// defaultChannel resolves a branch's channel: explicit value wins; the
// first release branch defaults to the unlabelled channel; every other
// branch defaults to its own name.
func defaultChannel(spec BranchSpec, isFirstReleaseBranch bool) string {
	if spec.Channel != "" {
		return spec.Channel
	}
	if isFirstReleaseBranch {
		return ""
	}
	return spec.Name
}

// Validate runs the name-level checks common to every branch, independent
// of type.
func Validate(specs []BranchSpec, refChecker RefFormatChecker) error {
	c := relerrors.NewCollector()

	seen := make(map[string]bool, len(specs))
	for i, s := range specs {
		if s.Name == "" {
			c.Add(relerrors.New(relerrors.EInvalidBranch, fmt.Sprintf("branch entry %d has no name", i)))
			continue
		}
		if seen[s.Name] {
			c.Add(relerrors.New(relerrors.EDuplicateBranches, fmt.Sprintf("branch %q is configured more than once", s.Name)))
		}
		seen[s.Name] = true

		if refChecker != nil && !refChecker.CheckRefFormat("heads", s.Name) {
			c.Add(relerrors.New(relerrors.EInvalidBranchName, fmt.Sprintf("branch name %q is not a valid git ref", s.Name)))
		}
	}
	return c.ErrorOrNil()
}

// Partition splits specs into the three variants. Maintenance and
// prerelease claims are checked first; everything left over is a release
// branch; the evaluation order is fixed.
func Partition(specs []BranchSpec) (maintenance, release, prerelease []BranchSpec) {
	var mv maintenanceVariant
	var pv prereleaseVariant

	for _, s := range specs {
		switch {
		case mv.Filter(s):
			maintenance = append(maintenance, s)
		case pv.Filter(s):
			prerelease = append(prerelease, s)
		default:
			release = append(release, s)
		}
	}
	return maintenance, release, prerelease
}

// Classify validates, partitions, normalises, orders, and range-computes
// the full branch set. tagsByName supplies the tags TagIndex already
// assigned to each branch by ancestry, keyed by branch name.
func Classify(specs []BranchSpec, refChecker RefFormatChecker, tagsByName map[string][]tagindex.Tag) ([]Branch, error) {
	if err := Validate(specs, refChecker); err != nil {
		return nil, err
	}

	maintSpecs, releaseSpecs, preSpecs := Partition(specs)

	c := relerrors.NewCollector()
	var mv maintenanceVariant
	var pv prereleaseVariant
	var rv releaseVariant

	for _, s := range maintSpecs {
		c.Add(mv.ValidateOne(s, refChecker))
	}
	c.Add(mv.ValidateSet(maintSpecs))

	for _, s := range preSpecs {
		c.Add(pv.ValidateOne(s, refChecker))
	}
	c.Add(pv.ValidateSet(preSpecs))

	c.Add(rv.ValidateSet(releaseSpecs))

	if c.HasErrors() {
		return nil, c.ErrorOrNil()
	}

	sort.SliceStable(maintSpecs, func(i, j int) bool {
		majI, minI := maintenanceSortKey(maintSpecs[i].Name)
		majJ, minJ := maintenanceSortKey(maintSpecs[j].Name)
		if majI != majJ {
			return majI < majJ
		}
		return minI < minJ
	})

	branches := make([]Branch, 0, len(specs))
	for _, s := range maintSpecs {
		branches = append(branches, mv.Normalise(s))
	}
	for i, s := range releaseSpecs {
		branches = append(branches, rv.Normalise(s, i == 0))
	}
	for _, s := range preSpecs {
		branches = append(branches, pv.Normalise(s))
	}

	for i := range branches {
		branches[i].Tags = tagsByName[branches[i].Name]
	}

	if err := computeRanges(branches); err != nil {
		return nil, err
	}
	return branches, nil
}

// Tips returns the ref each configured branch's tip should be resolved
// from, for TagIndex.Build's ancestry pass. Called before Classify, using
// only the raw specs, since ancestry assignment doesn't depend on type.
func Tips(specs []BranchSpec) map[string]string {
	tips := make(map[string]string, len(specs))
	for _, s := range specs {
		tips[s.Name] = "refs/heads/" + s.Name
	}
	return tips
}

// highestVersion returns the highest final (non-prerelease) semver value
// among tags, or the zero Version if there is none. Prereleases never move
// a range boundary: a branch that has only published 2.0.0-beta.1 has not
// yet claimed the 2.0.0 floor.
func highestVersion(tags []tagindex.Tag) semver.Version {
	var highest semver.Version
	for _, t := range tags {
		if t.Version.IsPrerelease() {
			continue
		}
		if highest.Zero() || highest.LessThan(t.Version) {
			highest = t.Version
		}
	}
	return highest
}

// computeRanges implements the range-computation rule: branches ordered
// maintenance, then release, then prerelease; each branch's lower bound is the
// highest tagged version on it or any lower branch (default 1.0.0); its
// upper bound is the next branch's lower bound (unbounded for the last).
// Maintenance branches additionally intersect with their numeric bucket.
func computeRanges(branches []Branch) error {
	one00 := semver.MustParse("1.0.0")

	runningLow := one00
	lowerBounds := make([]semver.Version, len(branches))
	for i, b := range branches {
		h := highestVersion(b.Tags)
		if !h.Zero() && runningLow.LessThan(h) {
			runningLow = h
		}
		lowerBounds[i] = runningLow
	}

	for i := range branches {
		lower := lowerBounds[i]
		var upper semver.Version
		hasUpper := i < len(branches)-1
		if hasUpper {
			upper = lowerBounds[i+1]
		}

		r, err := semver.NewRange(lower, upper, hasUpper)
		if err != nil {
			return fmt.Errorf("computing range for branch %q: %w", branches[i].Name, err)
		}

		if branches[i].Type == TypeMaintenance {
			bucket, err := impliedRange(branches[i].Name)
			if err != nil {
				return err
			}
			r = intersect(r, bucket)
		}

		branches[i].Range = r
	}
	return nil
}

// intersect narrows a to the overlap with bucket; used only for maintenance
// branches, whose upper bound never exceeds their own numeric bucket.
func intersect(a, bucket semver.Range) semver.Range {
	lower := a.Lower
	if bucket.Lower.Compare(lower) > 0 {
		lower = bucket.Lower
	}
	upper := bucket.Upper
	upperExists := true
	if a.UpperExists && a.Upper.Compare(upper) < 0 {
		upper = a.Upper
	}
	r, err := semver.NewRange(lower, upper, upperExists)
	if err != nil {
		return a
	}
	return r
}
