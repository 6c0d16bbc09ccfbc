// Package gate is the GateController: the single admission check run
// once per invocation, before the PipelineDriver ever touches a branch. It
// decides whether this run should happen at all, which branch is active,
// whether the run is a preview, and which (possibly credentialed)
// repositoryUrl the driver should push to.
package gate

import (
	"context"
	"fmt"
	"strings"

	"github.com/relgate/relgate/internal/branch"
	"github.com/relgate/relgate/internal/ci"
	"github.com/relgate/relgate/internal/gitfacade"
	"github.com/relgate/relgate/internal/plugin"
	"github.com/relgate/relgate/internal/relerrors"
	"github.com/relgate/relgate/internal/repourl"
)

// Flags are the user-supplied overrides GateController reads alongside the
// ambient CI state.
type Flags struct {
	DryRun bool
	NoCI   bool
}

// Result is everything a successful Admit call resolves for the caller:
// whether to run at all, in preview mode or not, against which branch, and
// through which remote URL.
type Result struct {
	Admit         bool
	DryRun        bool
	Branch        branch.Branch
	RepositoryURL string
}

// Controller runs the admission check.
type Controller struct {
	Git    gitfacade.GitFacade
	Logger plugin.Logger
}

// NewController builds a Controller; a nil logger falls back to
// plugin.DefaultLogger.
func NewController(git gitfacade.GitFacade, logger plugin.Logger) *Controller {
	if logger == nil {
		logger = plugin.DefaultLogger
	}
	return &Controller{Git: git, Logger: logger}
}

// Admit runs the gate. branches is the full classified set; rawRepositoryURL
// is the configured (unresolved) repositoryUrl. A falsy, nil-error Result
// means "skip this run for a routine reason" (PR run, unconfigured branch,
// stale clone); a run outside CI is not skipped but forced into dry-run. A
// non-nil error is always one of the fourteen relerrors codes.
func (c *Controller) Admit(ctx context.Context, env ci.Env, flags Flags, branches []branch.Branch, rawRepositoryURL string) (Result, error) {
	dryRun := flags.DryRun
	if !env.IsCI && !dryRun && !flags.NoCI {
		dryRun = true
		c.Logger.Info("not running in a recognised CI environment; forcing --dry-run (pass --no-ci to release anyway)")
	}

	if env.IsCI && env.IsPR && !flags.NoCI {
		c.Logger.Info("skipping release: this run is for a pull/merge request")
		return Result{}, nil
	}

	active := findBranch(branches, env.Branch)
	if active == nil {
		c.Logger.Info(fmt.Sprintf("branch %q is not configured for release; allowed branches: %s", env.Branch, branchNames(branches)))
		return Result{}, nil
	}

	repoURL, err := repourl.Normalize(rawRepositoryURL)
	if err != nil {
		return Result{}, relerrors.New(relerrors.ENoRepoURL, err.Error())
	}

	if err := c.Git.VerifyAuth(ctx, repoURL, active.Name); err != nil {
		if credURL := repourl.WithCredentials(repoURL); credURL != repoURL {
			if err2 := c.Git.VerifyAuth(ctx, credURL, active.Name); err2 == nil {
				return Result{Admit: true, DryRun: dryRun, Branch: *active, RepositoryURL: credURL}, nil
			}
		}
		if !c.Git.IsBranchUpToDate(ctx, repoURL, active.Name) {
			c.Logger.Info("local branch is behind its remote; skipping this run")
			return Result{}, nil
		}
		return Result{}, relerrors.New(relerrors.EGitNoPermission, fmt.Sprintf("git push authentication failed for %s", repoURL))
	}

	return Result{Admit: true, DryRun: dryRun, Branch: *active, RepositoryURL: repoURL}, nil
}

func findBranch(branches []branch.Branch, name string) *branch.Branch {
	if name == "" {
		return nil
	}
	for i := range branches {
		if branches[i].Name == name {
			return &branches[i]
		}
	}
	return nil
}

func branchNames(branches []branch.Branch) string {
	names := make([]string, len(branches))
	for i, b := range branches {
		names[i] = b.Name
	}
	return strings.Join(names, ", ")
}
