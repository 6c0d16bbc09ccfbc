package branch

import (
	"testing"

	"github.com/relgate/relgate/internal/semver"
	"github.com/relgate/relgate/internal/tagindex"
)

type fakeRefChecker struct{ invalid map[string]bool }

func (f fakeRefChecker) CheckRefFormat(kind, name string) bool { return !f.invalid[name] }

func tag(v string) tagindex.Tag {
	return tagindex.Tag{Version: semver.MustParse(v)}
}

func TestClassifySingleReleaseBranch(t *testing.T) {
	specs := []BranchSpec{{Name: "master"}}
	branches, err := Classify(specs, fakeRefChecker{}, nil)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if len(branches) != 1 {
		t.Fatalf("expected 1 branch, got %d", len(branches))
	}
	if branches[0].Channel != "" {
		t.Errorf("expected primary release branch to default to the unlabelled channel, got %q", branches[0].Channel)
	}
	if branches[0].Range.UpperExists {
		t.Error("expected the sole release branch's range to be unbounded")
	}
}

func TestClassifyRejectsEmptyBranchList(t *testing.T) {
	if _, err := Classify(nil, fakeRefChecker{}, nil); err == nil {
		t.Fatal("expected error for empty branch list")
	}
}

func TestClassifyRejectsDuplicateNames(t *testing.T) {
	specs := []BranchSpec{{Name: "master"}, {Name: "master"}}
	if _, err := Classify(specs, fakeRefChecker{}, nil); err == nil {
		t.Fatal("expected error for duplicate branch names")
	}
}

func TestClassifyRejectsInvalidRefName(t *testing.T) {
	specs := []BranchSpec{{Name: "bad..name"}}
	checker := fakeRefChecker{invalid: map[string]bool{"bad..name": true}}
	if _, err := Classify(specs, checker, nil); err == nil {
		t.Fatal("expected error for invalid git ref name")
	}
}

func TestClassifyMaintenanceDefaultsChannelToName(t *testing.T) {
	specs := []BranchSpec{{Name: "1.x"}, {Name: "master"}}
	branches, err := Classify(specs, fakeRefChecker{}, nil)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	var maint Branch
	for _, b := range branches {
		if b.Type == TypeMaintenance {
			maint = b
		}
	}
	if maint.Channel != "1.x" {
		t.Errorf("expected maintenance branch channel to default to its name, got %q", maint.Channel)
	}
}

func TestClassifyOrdersMaintenanceBeforeReleaseBeforePrerelease(t *testing.T) {
	specs := []BranchSpec{
		{Name: "master"},
		{Name: "1.x"},
		{Name: "beta", Prerelease: &PrereleaseValue{IsSet: true, ID: "beta"}},
	}
	branches, err := Classify(specs, fakeRefChecker{}, nil)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if branches[0].Type != TypeMaintenance || branches[1].Type != TypeRelease || branches[2].Type != TypePrerelease {
		t.Fatalf("unexpected ordering: %v %v %v", branches[0].Type, branches[1].Type, branches[2].Type)
	}
}

func TestClassifyRangesFollowTagFloorsAndBuckets(t *testing.T) {
	tagsByName := map[string][]tagindex.Tag{
		"1.x":    {tag("1.2.0")},
		"master": {tag("2.3.0")},
	}
	specs := []BranchSpec{{Name: "1.x"}, {Name: "master"}}
	branches, err := Classify(specs, fakeRefChecker{}, tagsByName)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	maint := branches[0]
	release := branches[1]

	if !maint.Range.Contains(semver.MustParse("1.2.5")) {
		t.Error("expected maintenance range to contain 1.2.5")
	}
	if maint.Range.Contains(semver.MustParse("2.0.0")) {
		t.Error("maintenance range must not leak into the 2.x line")
	}
	if !release.Range.Contains(semver.MustParse("2.3.1")) {
		t.Error("expected release range to contain 2.3.1")
	}
}

func TestClassifyRejectsTooManyReleaseBranches(t *testing.T) {
	specs := make([]BranchSpec, 8)
	for i := range specs {
		specs[i] = BranchSpec{Name: "release-branch"}
		specs[i].Name = branchName(i)
	}
	if _, err := Classify(specs, fakeRefChecker{}, nil); err == nil {
		t.Fatal("expected error for more than 7 release branches")
	}
}

func branchName(i int) string {
	letters := []string{"a", "b", "c", "d", "e", "f", "g", "h"}
	return "release-" + letters[i]
}

func TestClassifyRejectsDuplicatePrereleaseIDs(t *testing.T) {
	specs := []BranchSpec{
		{Name: "master"},
		{Name: "beta1", Prerelease: &PrereleaseValue{IsSet: true, ID: "beta"}},
		{Name: "beta2", Prerelease: &PrereleaseValue{IsSet: true, ID: "beta"}},
	}
	if _, err := Classify(specs, fakeRefChecker{}, nil); err == nil {
		t.Fatal("expected error for duplicate prerelease identifiers")
	}
}

func TestClassifyPrereleaseTrueUsesBranchName(t *testing.T) {
	specs := []BranchSpec{
		{Name: "master"},
		{Name: "beta", Prerelease: &PrereleaseValue{IsSet: true, UseName: true}},
	}
	branches, err := Classify(specs, fakeRefChecker{}, nil)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	for _, b := range branches {
		if b.Type == TypePrerelease && b.Prerelease != "beta" {
			t.Errorf("expected prerelease id to default to branch name, got %q", b.Prerelease)
		}
	}
}

func TestClassifyRejectsOverlappingMaintenanceBranches(t *testing.T) {
	specs := []BranchSpec{{Name: "1.x"}, {Name: "1.2.x"}, {Name: "master"}}
	if _, err := Classify(specs, fakeRefChecker{}, nil); err == nil {
		t.Fatal("expected error for overlapping maintenance buckets")
	}
}
