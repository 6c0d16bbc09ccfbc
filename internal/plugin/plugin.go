// Package plugin is the PipelineDriver: it runs the fixed, ordered
// sequence of plugin steps for one invocation, guaranteeing ordering,
// accumulating plugin outputs, creating/pushing tags at the correct points,
// and invoking failure callbacks. Each step's aggregation mode is a
// small generic runner instead of one hard-coded driver method per step.
package plugin

import (
	"context"
	"fmt"

	"github.com/go-git/go-git/v5/plumbing/object"

	"github.com/relgate/relgate/internal/branch"
	"github.com/relgate/relgate/internal/gitfacade"
	"github.com/relgate/relgate/internal/printer"
	"github.com/relgate/relgate/internal/relerrors"
	"github.com/relgate/relgate/internal/release"
	"github.com/relgate/relgate/internal/semver"
)

// Logger is the "logger" field every plugin Context carries. The
// default implementation logs through internal/printer; a CLI tool has no
// use for a structured-logging pipeline here.
type Logger interface {
	Info(msg string)
	Warn(msg string)
	Error(msg string)
}

// printerLogger is the production Logger.
type printerLogger struct{}

func (printerLogger) Info(msg string)  { printer.PrintInfo(msg) }
func (printerLogger) Warn(msg string)  { printer.PrintWarning(msg) }
func (printerLogger) Error(msg string) { printer.PrintError(msg) }

// DefaultLogger is the printer-backed Logger used when no other is supplied.
var DefaultLogger Logger = printerLogger{}

// Context is the value passed to every plugin call. Only the subset
// relevant to the current step is populated; the rest hold zero values.
type Context struct {
	Branch   branch.Branch
	Branches []branch.Branch
	Logger   Logger

	LastRelease    *release.Release
	CurrentRelease *release.Release
	NextRelease    *release.Release
	Commits        []*object.Commit
	Releases       []release.Release
	Errors         []error
}

// Plugin function shapes, one per step kind. Resolution of plugins by
// name or path is a loader concern; the Steps table holds resolved Go
// callables directly.
type (
	VerifyFunc  func(ctx context.Context, pctx *Context) error
	AnalyzeFunc func(ctx context.Context, pctx *Context) (label semver.BumpLabel, ok bool, err error)
	NotesFunc   func(ctx context.Context, pctx *Context) (string, error)
	PrepareFunc func(ctx context.Context, pctx *Context) error
	ReleaseFunc func(ctx context.Context, pctx *Context) (*release.Release, error)
	SuccessFunc func(ctx context.Context, pctx *Context) error
	FailFunc    func(ctx context.Context, pctx *Context, errs []*relerrors.Error) error
)

// Steps is the configured plugin list for every step in the surface,
// "verifyConditions" through "fail".
type Steps struct {
	VerifyConditions []VerifyFunc
	AnalyzeCommits   []AnalyzeFunc
	VerifyRelease    []VerifyFunc
	GenerateNotes    []NotesFunc
	AddChannel       []ReleaseFunc
	Prepare          []PrepareFunc
	Publish          []ReleaseFunc
	Success          []SuccessFunc
	Fail             []FailFunc
}

// GitOps is the subset of GitFacade plus the commit-collection
// surface ReleasePlanner needs; *gitfacade.Repo satisfies it.
type GitOps interface {
	gitfacade.GitFacade
	release.CommitsProvider
}

// Driver runs Steps against one active branch.
type Driver struct {
	Git       GitOps
	TagFormat string
	RemoteURL string
	DryRun    bool

	activeBranch string
}

// NewDriver builds a Driver.
func NewDriver(git GitOps, tagFormat, remoteURL string, dryRun bool) *Driver {
	return &Driver{Git: git, TagFormat: tagFormat, RemoteURL: remoteURL, DryRun: dryRun}
}

// runVerifyAll is the all-must-succeed, collect-all-errors aggregation mode
// (verifyConditions, verifyRelease): every plugin runs regardless of earlier
// failures, and the result is the aggregate of whatever failed.
func runVerifyAll(ctx context.Context, fns []VerifyFunc, pctx *Context) error {
	c := relerrors.NewCollector()
	for _, fn := range fns {
		c.Add(fn(ctx, pctx))
	}
	return c.ErrorOrNil()
}

// runAnalyze is analyzeCommits' first-non-null-wins aggregation: later
// plugins in the list can still run and refine an earlier null, but the
// first non-null result returned by a later plugin wins over an earlier
// null. Plugins are tried in order and the first to answer ok=true stops
// the search.
func runAnalyze(ctx context.Context, fns []AnalyzeFunc, pctx *Context) (semver.BumpLabel, bool, error) {
	for _, fn := range fns {
		label, ok, err := fn(ctx, pctx)
		if err != nil {
			return "", false, err
		}
		if ok {
			return label, true, nil
		}
	}
	return "", false, nil
}

// runNotes concatenates generateNotes outputs with a blank-line separator,
// skipping plugins that produced nothing.
func runNotes(ctx context.Context, fns []NotesFunc, pctx *Context) (string, error) {
	var out string
	for _, fn := range fns {
		note, err := fn(ctx, pctx)
		if err != nil {
			return "", err
		}
		if note == "" {
			continue
		}
		if out != "" {
			out += "\n\n"
		}
		out += note
	}
	return out, nil
}

// runReleases runs addChannel/publish plugins sequentially, collecting every
// non-nil descriptor they return.
func runReleases(ctx context.Context, fns []ReleaseFunc, pctx *Context) ([]release.Release, error) {
	var out []release.Release
	for _, fn := range fns {
		r, err := fn(ctx, pctx)
		if err != nil {
			return nil, err
		}
		if r != nil {
			out = append(out, *r)
		}
	}
	return out, nil
}

// runPrepare runs prepare plugins sequentially, refreshing nextRelease's
// gitHead and regenerated notes after each one.
func (d *Driver) runPrepare(ctx context.Context, fns []PrepareFunc, pctx *Context, notes []NotesFunc) error {
	for _, fn := range fns {
		if err := fn(ctx, pctx); err != nil {
			return err
		}
		head, err := d.Git.Head(ctx)
		if err != nil {
			return fmt.Errorf("refreshing HEAD after prepare: %w", err)
		}
		pctx.NextRelease.GitHead = head
		regenerated, err := runNotes(ctx, notes, pctx)
		if err != nil {
			return err
		}
		pctx.NextRelease.Notes = regenerated
	}
	return nil
}

// runSuccess calls every success plugin even if one errors; failures are logged, not propagated.
func runSuccess(ctx context.Context, fns []SuccessFunc, pctx *Context, logger Logger) {
	for _, fn := range fns {
		if err := fn(ctx, pctx); err != nil {
			logger.Error(fmt.Sprintf("success plugin failed: %v", err))
		}
	}
}

// runFail invokes every fail plugin with the semantic-release errors that
// reached the top level, logging (not propagating) any error the fail
// plugins themselves raise.
func runFail(ctx context.Context, fns []FailFunc, pctx *Context, errs []*relerrors.Error, logger Logger) {
	for _, fn := range fns {
		if err := fn(ctx, pctx, errs); err != nil {
			logger.Error(fmt.Sprintf("fail plugin failed: %v", err))
		}
	}
}

// surface splits err into user-facing and internal parts and, unless dryRun, routes
// semantic-release members to the fail plugins; internal members are always
// just logged. It returns err unchanged so callers can still propagate it.
func (d *Driver) surface(ctx context.Context, steps Steps, pctx *Context, err error, logger Logger) error {
	if err == nil {
		return nil
	}
	semantic, internal := relerrors.Split(err)
	for _, ie := range internal {
		logger.Error(fmt.Sprintf("internal error: %v", ie))
	}
	if len(semantic) > 0 && !d.DryRun {
		runFail(ctx, steps.Fail, pctx, semantic, logger)
	}
	return err
}

// Run executes one invocation's pipeline for active, already admitted by
// GateController, against ordered (the full classified branch set in
// classifier ranking order). It returns ran=true if any back-port was
// processed (tagged, or only previewed in dry-run) or a new release (or its
// dry-run preview) was produced.
func (d *Driver) Run(ctx context.Context, steps Steps, active branch.Branch, ordered []branch.Branch) (ran bool, err error) {
	logger := DefaultLogger
	d.activeBranch = active.Name
	pctx := &Context{Branch: active, Branches: ordered, Logger: logger}

	if err := runVerifyAll(ctx, steps.VerifyConditions, pctx); err != nil {
		return false, d.surface(ctx, steps, pctx, err, logger)
	}

	backports, planErr := release.PlanBackports(active, ordered, d.TagFormat)

	for _, rta := range backports {
		if err := d.runBackport(ctx, steps, pctx, rta); err != nil {
			return ran, d.surface(ctx, steps, pctx, err, logger)
		}
		ran = true
	}

	// Entries rejected by the merge-range check were dropped from backports
	// so the valid ones above still proceeded; their collected failures
	// abort the run now that the valid entries are done.
	if planErr != nil {
		return ran, d.surface(ctx, steps, pctx, planErr, logger)
	}

	plan, err := release.PlanNextRelease(ctx, active, d.Git, analyzeAdapter(ctx, steps.AnalyzeCommits, pctx), d.TagFormat)
	if err != nil {
		return ran, d.surface(ctx, steps, pctx, err, logger)
	}
	if plan == nil {
		if len(pctx.Errors) > 0 {
			return ran, d.surface(ctx, steps, pctx, pctx.Errors[0], logger)
		}
		return ran, nil
	}

	pctx.LastRelease = plan.LastRelease
	pctx.CurrentRelease = nil
	pctx.NextRelease = &plan.NextRelease
	pctx.Commits = plan.Commits

	if err := runVerifyAll(ctx, steps.VerifyRelease, pctx); err != nil {
		return ran, d.surface(ctx, steps, pctx, err, logger)
	}

	if d.DryRun {
		notes, err := runNotes(ctx, steps.GenerateNotes, pctx)
		if err != nil {
			return ran, d.surface(ctx, steps, pctx, err, logger)
		}
		pctx.NextRelease.Notes = notes
		fmt.Println(notes)
		return true, nil
	}

	notes, err := runNotes(ctx, steps.GenerateNotes, pctx)
	if err != nil {
		return ran, d.surface(ctx, steps, pctx, err, logger)
	}
	pctx.NextRelease.Notes = notes

	if err := d.runPrepare(ctx, steps.Prepare, pctx, steps.GenerateNotes); err != nil {
		return ran, d.surface(ctx, steps, pctx, err, logger)
	}

	if err := d.tagAndPush(ctx, pctx.NextRelease.GitTag, pctx.NextRelease.GitHead); err != nil {
		return ran, d.surface(ctx, steps, pctx, err, logger)
	}

	published, err := runReleases(ctx, steps.Publish, pctx)
	if err != nil {
		return ran, d.surface(ctx, steps, pctx, err, logger)
	}
	pctx.Releases = append(pctx.Releases, published...)

	runSuccess(ctx, steps.Success, pctx, logger)
	return true, nil
}

// runBackport executes one releases-to-add entry: collect its
// commits, render notes, create+push its tag, call addChannel, then success.
// In dry-run mode it stops after the notes, with no tag, push, or plugin
// side effects.
func (d *Driver) runBackport(ctx context.Context, steps Steps, pctx *Context, rta release.ReleaseToAdd) error {
	var lastHead string
	if rta.LastRelease != nil {
		lastHead = rta.LastRelease.GitHead
	}
	commits, err := d.Git.CommitsBetween(ctx, lastHead, rta.NextRelease.GitHead)
	if err != nil {
		return fmt.Errorf("collecting back-port commits for %s: %w", rta.NextRelease.Version, err)
	}

	pctx.LastRelease = rta.LastRelease
	cr := rta.CurrentRelease
	pctx.CurrentRelease = &cr
	nr := rta.NextRelease
	pctx.NextRelease = &nr
	pctx.Commits = commits

	notes, err := runNotes(ctx, steps.GenerateNotes, pctx)
	if err != nil {
		return err
	}
	pctx.NextRelease.Notes = notes

	if d.DryRun {
		pctx.Logger.Info(fmt.Sprintf("skipping %s tag creation in dry-run mode", pctx.NextRelease.GitTag))
		return nil
	}

	if err := d.tagAndPush(ctx, pctx.NextRelease.GitTag, pctx.NextRelease.GitHead); err != nil {
		return err
	}

	added, err := runReleases(ctx, steps.AddChannel, pctx)
	if err != nil {
		return err
	}
	pctx.Releases = append(pctx.Releases, added...)

	runSuccess(ctx, steps.Success, pctx, pctx.Logger)
	return nil
}

// tagAndPush creates a local tag at ref and pushes it; a tag must exist
// locally and remotely before any publish/addChannel plugin runs.
func (d *Driver) tagAndPush(ctx context.Context, tagName, ref string) error {
	if err := d.Git.Tag(ctx, tagName, ref); err != nil {
		return fmt.Errorf("creating tag %q: %w", tagName, err)
	}
	if err := d.Git.Push(ctx, d.RemoteURL, d.activeBranch); err != nil {
		return fmt.Errorf("pushing tag %q: %w", tagName, err)
	}
	return nil
}

// analyzeAdapter bridges plugin.AnalyzeFunc (which wants the full Context)
// to release.AnalyzeFunc (which only ever sees the commit list), by closing
// over the one pctx a single Run call uses.
func analyzeAdapter(ctx context.Context, fns []AnalyzeFunc, pctx *Context) release.AnalyzeFunc {
	return func(commits []*object.Commit) (semver.BumpLabel, bool) {
		pctx.Commits = commits
		label, ok, err := runAnalyze(ctx, fns, pctx)
		if err != nil {
			pctx.Errors = append(pctx.Errors, err)
			return "", false
		}
		return label, ok
	}
}
