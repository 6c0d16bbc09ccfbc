package branch

import (
	"fmt"
	"regexp"
	"strconv"
	"strings"

	"github.com/relgate/relgate/internal/relerrors"
	"github.com/relgate/relgate/internal/semver"
)

// maintenanceNameRe matches the two numeric-bucket branch name shapes: "N.x"
// (a whole major line) and "N.N.x" (a whole minor line).
var maintenanceNameRe = regexp.MustCompile(`^(\d+)\.(?:(\d+)\.)?x$`)

type maintenanceVariant struct{}

func (maintenanceVariant) Type() Type { return TypeMaintenance }

func (maintenanceVariant) Filter(spec BranchSpec) bool {
	return maintenanceNameRe.MatchString(spec.Name)
}

// impliedRange computes the numeric-bucket range a maintenance branch name
// implies: "1.x" -> [1.0.0, 2.0.0), "1.2.x" -> [1.2.0, 1.3.0).
func impliedRange(name string) (semver.Range, error) {
	m := maintenanceNameRe.FindStringSubmatch(name)
	if m == nil {
		return semver.Range{}, fmt.Errorf("branch name %q is not a maintenance bucket", name)
	}
	major, _ := strconv.Atoi(m[1])
	if m[2] == "" {
		lower := semver.MustParse(fmt.Sprintf("%d.0.0", major))
		upper := semver.MustParse(fmt.Sprintf("%d.0.0", major+1))
		return semver.NewRange(lower, upper, true)
	}
	minor, _ := strconv.Atoi(m[2])
	lower := semver.MustParse(fmt.Sprintf("%d.%d.0", major, minor))
	upper := semver.MustParse(fmt.Sprintf("%d.%d.0", major, minor+1))
	return semver.NewRange(lower, upper, true)
}

func (maintenanceVariant) ValidateOne(spec BranchSpec, _ RefFormatChecker) error {
	if spec.Range == "" {
		return nil
	}
	implied, err := impliedRange(spec.Name)
	if err != nil {
		return relerrors.New(relerrors.EMaintenanceBranch, err.Error())
	}
	// An explicit range must describe the same bucket as the name: compare
	// the rendered bounds rather than the input string, so ">=1.0.0 <2.0.0"
	// and "1.x"-implied are recognised as equivalent.
	explicit, err := semver.ParseRangeExpr(strings.TrimSpace(spec.Range))
	if err != nil || explicit.String() != implied.String() {
		return relerrors.New(relerrors.EMaintenanceBranch,
			fmt.Sprintf("maintenance branch %q declares range %q but its name implies %q", spec.Name, strings.TrimSpace(spec.Range), implied.String()))
	}
	return nil
}

func (maintenanceVariant) ValidateSet(specs []BranchSpec) error {
	ranges := make([]semver.Range, 0, len(specs))
	for _, s := range specs {
		r, err := impliedRange(s.Name)
		if err != nil {
			continue // already reported by ValidateOne / filter
		}
		ranges = append(ranges, r)
	}
	for i := 0; i < len(ranges); i++ {
		for j := i + 1; j < len(ranges); j++ {
			if !ranges[i].DisjointFrom(ranges[j]) {
				return relerrors.New(relerrors.EMaintenanceBranches,
					fmt.Sprintf("maintenance branches %q and %q overlap", specs[i].Name, specs[j].Name))
			}
		}
	}
	return nil
}

func (maintenanceVariant) Normalise(spec BranchSpec) Branch {
	return Branch{
		Name:       spec.Name,
		Type:       TypeMaintenance,
		Channel:    defaultChannel(spec, false),
		MergeRange: spec.MergeRange,
	}
}

// maintenanceSortKey orders maintenance branches by ascending major.minor.
func maintenanceSortKey(name string) (major, minor int) {
	m := maintenanceNameRe.FindStringSubmatch(name)
	if m == nil {
		return 0, 0
	}
	major, _ = strconv.Atoi(m[1])
	if m[2] != "" {
		minor, _ = strconv.Atoi(m[2])
	}
	return major, minor
}
