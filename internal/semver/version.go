// Package semver wraps github.com/Masterminds/semver/v3 with the
// increment and prerelease-bump helpers the release-decision engine
// needs (plain Masterminds/semver gives ordering and ranges but no
// "bump by label" or "increment the trailing prerelease number"
// operations).
package semver

import (
	"fmt"
	"strconv"
	"strings"

	mmsemver "github.com/Masterminds/semver/v3"
)

// Version is a parsed semantic version. It holds the Masterminds value in an
// unexported field and exposes Compare/LessThan and the component accessors
// below, alongside the label-bump helpers relgate layers on top.
type Version struct {
	v *mmsemver.Version
}

// Parse parses a semver 2.0.0 string, tolerating a leading "v".
func Parse(s string) (Version, error) {
	v, err := mmsemver.NewVersion(strings.TrimSpace(s))
	if err != nil {
		return Version{}, fmt.Errorf("invalid version %q: %w", s, err)
	}
	return Version{v: v}, nil
}

// MustParse is Parse but panics on error; reserved for compile-time constants.
func MustParse(s string) Version {
	v, err := Parse(s)
	if err != nil {
		panic(err)
	}
	return v
}

// Zero reports whether this Version is the unset zero value.
func (v Version) Zero() bool { return v.v == nil }

func (v Version) Major() uint64 { return v.v.Major() }
func (v Version) Minor() uint64 { return v.v.Minor() }
func (v Version) Patch() uint64 { return v.v.Patch() }

// Prerelease returns the dash-delimited prerelease identifier, or "" for a
// final release.
func (v Version) Prerelease() string { return v.v.Prerelease() }

// IsPrerelease reports whether the version carries a prerelease identifier.
func (v Version) IsPrerelease() bool { return v.Prerelease() != "" }

func (v Version) String() string { return v.v.String() }

// Compare returns -1, 0, or +1 following semver 2.0.0 precedence; build
// metadata is ignored.
func (v Version) Compare(other Version) int { return v.v.Compare(other.v) }

// LessThan reports whether v orders strictly before other.
func (v Version) LessThan(other Version) bool { return v.Compare(other) < 0 }

// BumpLabel names an explicit increment.
type BumpLabel string

const (
	BumpMajor BumpLabel = "major"
	BumpMinor BumpLabel = "minor"
	BumpPatch BumpLabel = "patch"
)

// Bump applies an explicit major/minor/patch increment, discarding any
// prerelease/build metadata on the source version (a final release always
// follows a final release in the core's model; prerelease composition is
// handled separately by BumpToPrerelease).
func Bump(v Version, label BumpLabel) (Version, error) {
	if v.Zero() {
		return zeroBump(label)
	}
	switch label {
	case BumpMajor:
		nv := v.v.IncMajor()
		return Version{v: &nv}, nil
	case BumpMinor:
		nv := v.v.IncMinor()
		return Version{v: &nv}, nil
	case BumpPatch:
		nv := v.v.IncPatch()
		return Version{v: &nv}, nil
	default:
		return Version{}, fmt.Errorf("invalid bump label: %s", label)
	}
}

func zeroBump(label BumpLabel) (Version, error) {
	switch label {
	case BumpMajor, BumpMinor, BumpPatch:
		return Parse("1.0.0")
	default:
		return Version{}, fmt.Errorf("invalid bump label: %s", label)
	}
}

// BumpToPrerelease increments the version by label and appends
// "-<prerelease>.0", e.g. BumpToPrerelease(1.2.3, minor, "beta") -> 1.3.0-beta.0.
func BumpToPrerelease(v Version, label BumpLabel, prerelease string) (Version, error) {
	bumped, err := Bump(v, label)
	if err != nil {
		return Version{}, err
	}
	return Parse(fmt.Sprintf("%d.%d.%d-%s.0", bumped.Major(), bumped.Minor(), bumped.Patch(), prerelease))
}

// IncrementPrerelease bumps the numeric suffix of a version's existing
// prerelease identifier, preserving the separator style used by the current
// value ("beta.1" -> "beta.2", "beta-1" -> "beta-2", "beta1" -> "beta2",
// bare "beta" -> "beta.1"). If current does not extend base, the result
// restarts at "<base>.1".
func IncrementPrerelease(current, base string) string {
	if current == base || !strings.HasPrefix(current, base) {
		return base + ".1"
	}
	suffix := current[len(base):]
	if suffix == "" {
		return base + ".1"
	}

	var sep, numStr string
	switch suffix[0] {
	case '.':
		sep, numStr = ".", suffix[1:]
	case '-':
		sep, numStr = "-", suffix[1:]
	default:
		sep, numStr = "", suffix
	}

	if numStr == "" || !isAllDigits(numStr) {
		return base + ".1"
	}
	n, err := strconv.Atoi(numStr)
	if err != nil {
		return base + ".1"
	}
	return fmt.Sprintf("%s%s%d", base, sep, n+1)
}

// HasMatchingPrerelease reports whether v is a prerelease version whose
// prerelease identifier is base itself or starts with base followed by "."
// or "-" (e.g. base "beta" matches "1.0.0-beta.1" but not "1.0.0-rc.1" or
// "1.0.0-beta1").
func HasMatchingPrerelease(v Version, base string) bool {
	return v.IsPrerelease() && (v.Prerelease() == base || strings.HasPrefix(v.Prerelease(), base+".") || strings.HasPrefix(v.Prerelease(), base+"-"))
}

func isAllDigits(s string) bool {
	for i := 0; i < len(s); i++ {
		if s[i] < '0' || s[i] > '9' {
			return false
		}
	}
	return true
}

// DiffType returns the highest-order component that differs between from
// and to, used to classify a back-ported release's type when no explicit
// analyzeCommits result applies. If the versions are equal, DiffType
// returns BumpPatch as a harmless default; callers should not call it in
// that case.
func DiffType(from, to Version) BumpLabel {
	if from.Zero() {
		return BumpMajor
	}
	switch {
	case from.Major() != to.Major():
		return BumpMajor
	case from.Minor() != to.Minor():
		return BumpMinor
	default:
		return BumpPatch
	}
}
