package branch

import (
	"fmt"

	"github.com/relgate/relgate/internal/relerrors"
)

type releaseVariant struct{}

func (releaseVariant) Type() Type { return TypeRelease }

// Filter matches every branch not claimed by a more specific variant; the
// classifier runs maintenance and prerelease filters first and hands
// release whatever remains.
func (releaseVariant) Filter(BranchSpec) bool { return true }

func (releaseVariant) ValidateOne(BranchSpec, RefFormatChecker) error { return nil }

func (releaseVariant) ValidateSet(specs []BranchSpec) error {
	switch {
	case len(specs) == 0:
		return relerrors.New(relerrors.EReleaseBranches, "at least one release branch is required")
	case len(specs) > 7:
		return relerrors.New(relerrors.EReleaseBranches, fmt.Sprintf("at most 7 release branches are allowed, got %d", len(specs)))
	default:
		return nil
	}
}

func (releaseVariant) Normalise(spec BranchSpec, isFirst bool) Branch {
	return Branch{
		Name:    spec.Name,
		Type:    TypeRelease,
		Channel: defaultChannel(spec, isFirst),
	}
}
