package branch

import (
	"fmt"
	"regexp"

	"github.com/relgate/relgate/internal/relerrors"
)

// prereleaseIDRe restricts prerelease identifiers to characters safe to
// embed in a semver prerelease segment and a tag name.
var prereleaseIDRe = regexp.MustCompile(`^[A-Za-z0-9][A-Za-z0-9.-]*$`)

type prereleaseVariant struct{}

func (prereleaseVariant) Type() Type { return TypePrerelease }

func (prereleaseVariant) Filter(spec BranchSpec) bool {
	return spec.Prerelease != nil && spec.Prerelease.IsSet
}

func resolvePrereleaseID(spec BranchSpec) string {
	if spec.Prerelease.UseName {
		return spec.Name
	}
	return spec.Prerelease.ID
}

func (prereleaseVariant) ValidateOne(spec BranchSpec, _ RefFormatChecker) error {
	id := resolvePrereleaseID(spec)
	if id == "" || !prereleaseIDRe.MatchString(id) {
		return relerrors.New(relerrors.EPrereleaseBranch,
			fmt.Sprintf("branch %q has an invalid prerelease identifier %q", spec.Name, id))
	}
	return nil
}

func (prereleaseVariant) ValidateSet(specs []BranchSpec) error {
	seen := make(map[string]string, len(specs))
	for _, s := range specs {
		id := resolvePrereleaseID(s)
		if prior, ok := seen[id]; ok {
			return relerrors.New(relerrors.EPrereleaseBranch,
				fmt.Sprintf("branches %q and %q share the prerelease identifier %q", prior, s.Name, id))
		}
		seen[id] = s.Name
	}
	return nil
}

func (prereleaseVariant) Normalise(spec BranchSpec) Branch {
	return Branch{
		Name:       spec.Name,
		Type:       TypePrerelease,
		Channel:    defaultChannel(spec, false),
		Prerelease: resolvePrereleaseID(spec),
	}
}
