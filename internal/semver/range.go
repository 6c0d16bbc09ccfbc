package semver

import (
	"fmt"
	"regexp"

	mmsemver "github.com/Masterminds/semver/v3"
)

// Range is a half-open version interval [Lower, Upper) as used for branch
// ranges: every branch is allowed to publish versions satisfying
// Lower <= v < Upper, where Upper may be unbounded.
type Range struct {
	Lower       Version
	Upper       Version
	UpperExists bool
	constraint  *mmsemver.Constraints
}

// NewRange builds a Range from an inclusive lower bound and an exclusive
// upper bound. Pass upperExists=false for an unbounded range (the highest
// branch in the ordering).
func NewRange(lower Version, upper Version, upperExists bool) (Range, error) {
	expr := fmt.Sprintf(">=%s", lower.String())
	if upperExists {
		expr = fmt.Sprintf("%s, <%s", expr, upper.String())
	}
	c, err := mmsemver.NewConstraint(expr)
	if err != nil {
		return Range{}, fmt.Errorf("invalid range %q: %w", expr, err)
	}
	return Range{Lower: lower, Upper: upper, UpperExists: upperExists, constraint: c}, nil
}

// Contains reports whether v falls within the range.
func (r Range) Contains(v Version) bool {
	if r.constraint == nil {
		return false
	}
	return r.constraint.Check(v.v)
}

// String renders the range the way branch-inspection output (the
// `relgate branches` command) shows it to a user.
func (r Range) String() string {
	if !r.UpperExists {
		return fmt.Sprintf(">=%s", r.Lower.String())
	}
	return fmt.Sprintf(">=%s <%s", r.Lower.String(), r.Upper.String())
}

var rangeExprRe = regexp.MustCompile(`^>=\s*([^\s]+)(?:\s+<\s*([^\s]+))?$`)

// ParseRangeExpr parses the ">=L" or ">=L <U" grammar Range.String renders,
// used to read a maintenance branch's mergeRange config value back into a
// Range.
func ParseRangeExpr(expr string) (Range, error) {
	m := rangeExprRe.FindStringSubmatch(expr)
	if m == nil {
		return Range{}, fmt.Errorf("invalid range expression %q, expected \">=L\" or \">=L <U\"", expr)
	}
	lower, err := Parse(m[1])
	if err != nil {
		return Range{}, fmt.Errorf("invalid lower bound in %q: %w", expr, err)
	}
	if m[2] == "" {
		return NewRange(lower, Version{}, false)
	}
	upper, err := Parse(m[2])
	if err != nil {
		return Range{}, fmt.Errorf("invalid upper bound in %q: %w", expr, err)
	}
	return NewRange(lower, upper, true)
}

// DisjointFrom reports whether r and other share no version. Used by the
// maintenance-branch set validator to enforce pairwise disjointness.
func (r Range) DisjointFrom(other Range) bool {
	rEndsBeforeOther := r.UpperExists && r.Upper.Compare(other.Lower) <= 0
	otherEndsBeforeR := other.UpperExists && other.Upper.Compare(r.Lower) <= 0
	return rEndsBeforeOther || otherEndsBeforeR
}
