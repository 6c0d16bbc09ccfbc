// Package pipeline wires the core's components into the one code path
// "relgate run" and "relgate plan" both execute: load config, open the
// repository, build the tag index, classify branches, run the gate, and
// drive the pipeline. Everything here is glue over already-tested packages
// (config, gitfacade, tagindex, branch, gate, plugin) and carries no
// release-decision logic of its own.
package pipeline

import (
	"context"
	"fmt"

	"github.com/relgate/relgate/internal/branch"
	"github.com/relgate/relgate/internal/ci"
	"github.com/relgate/relgate/internal/config"
	"github.com/relgate/relgate/internal/core"
	"github.com/relgate/relgate/internal/gate"
	"github.com/relgate/relgate/internal/gitfacade"
	"github.com/relgate/relgate/internal/plugin"
	"github.com/relgate/relgate/internal/relerrors"
	"github.com/relgate/relgate/internal/scrub"
	"github.com/relgate/relgate/internal/tagindex"
)

// Options are the per-invocation knobs a command line supplies.
type Options struct {
	RepoPath   string
	ConfigPath string
	DryRun     bool
	NoCI       bool
}

// Outcome summarizes what happened, for the command layer to report.
type Outcome struct {
	Admitted bool
	DryRun   bool
	Ran      bool
	Branch   string
}

// Execute runs one full invocation end to end. A falsy,
// nil-error Outcome means the gate declined the run for a routine reason
// (already logged); a non-nil error is either a relerrors.Error or a
// wrapped failure from config loading, fetching, or tag listing.
func Execute(ctx context.Context, opts Options) (Outcome, error) {
	restore := scrub.Install()
	defer restore()

	fs := core.NewOSFileSystem()
	cfg, err := config.Load(fs, opts.ConfigPath)
	if err != nil {
		return Outcome{}, err
	}
	if opts.RepoPath != "" {
		cfg.RepoPath = opts.RepoPath
	}
	if cfg.RepoPath == "" {
		cfg.RepoPath = "."
	}

	repo := gitfacade.Open(cfg.RepoPath)
	if !repo.IsRepo() {
		return Outcome{}, relerrors.New(relerrors.ENoGitRepo, fmt.Sprintf("%q is not a git repository", cfg.RepoPath))
	}

	return run(ctx, cfg, repo, ci.Detect(), opts)
}

// run is Execute's testable core: everything after config load and
// repository discovery, parameterized over the GitOps collaborator so
// tests can substitute a fake instead of a real clone.
func run(ctx context.Context, cfg *config.Config, repo plugin.GitOps, env ci.Env, opts Options) (Outcome, error) {
	branches, repoURL, err := classify(ctx, cfg, repo)
	if err != nil {
		return Outcome{}, err
	}

	// Outside CI no provider supplies a branch name; resolve it from the
	// checkout so "relgate plan" works on a developer machine.
	if env.Branch == "" && !env.IsCI {
		if cb, ok := repo.(interface {
			CurrentBranch(context.Context) (string, bool)
		}); ok {
			if name, found := cb.CurrentBranch(ctx); found {
				env.Branch = name
			}
		}
	}

	gateCtl := gate.NewController(repo, nil)
	result, err := gateCtl.Admit(ctx, env, gate.Flags{DryRun: opts.DryRun, NoCI: opts.NoCI}, branches, repoURL)
	if err != nil {
		return Outcome{}, err
	}
	if !result.Admit {
		return Outcome{}, nil
	}

	ci.ApplyCIEnvironment(env)

	steps := defaultSteps(cfg)
	driver := plugin.NewDriver(repo, cfg.TagFormat, result.RepositoryURL, result.DryRun)
	ran, err := driver.Run(ctx, steps, result.Branch, branches)
	if err != nil {
		return Outcome{Admitted: true, DryRun: result.DryRun, Branch: result.Branch.Name}, err
	}

	return Outcome{Admitted: true, DryRun: result.DryRun, Ran: ran, Branch: result.Branch.Name}, nil
}

// classify fetches, builds the tag index, and classifies the configured
// branches, resolving the repository URL alongside them; the read-only
// subset of run() that "relgate branches" also needs.
func classify(ctx context.Context, cfg *config.Config, repo plugin.GitOps) ([]branch.Branch, string, error) {
	if err := repo.Fetch(ctx); err != nil {
		return nil, "", fmt.Errorf("fetching remote: %w", err)
	}

	idx, err := tagindex.New(cfg.TagFormat, repo)
	if err != nil {
		return nil, "", err
	}

	rawTags, err := repo.Tags(ctx)
	if err != nil {
		return nil, "", fmt.Errorf("listing tags: %w", err)
	}

	tips := branch.Tips(cfg.Branches)
	tagsByName, err := tagindex.Build(ctx, idx, repo, rawTags, tips)
	if err != nil {
		return nil, "", err
	}

	branches, err := branch.Classify(cfg.Branches, repo, tagsByName)
	if err != nil {
		return nil, "", err
	}

	repoURL := cfg.RepositoryURL
	if repoURL == "" {
		repoURL, err = repo.RemoteURL(ctx, "origin")
		if err != nil {
			return nil, "", relerrors.New(relerrors.ENoRepoURL, "no repositoryUrl configured and no origin remote found")
		}
	}

	return branches, repoURL, nil
}

// Discover loads config, opens the repository, and returns the classified
// branch model without running the gate or the pipeline; the read-only
// path "relgate branches" uses.
func Discover(ctx context.Context, opts Options) ([]branch.Branch, error) {
	fs := core.NewOSFileSystem()
	cfg, err := config.Load(fs, opts.ConfigPath)
	if err != nil {
		return nil, err
	}
	if opts.RepoPath != "" {
		cfg.RepoPath = opts.RepoPath
	}
	if cfg.RepoPath == "" {
		cfg.RepoPath = "."
	}

	repo := gitfacade.Open(cfg.RepoPath)
	if !repo.IsRepo() {
		return nil, relerrors.New(relerrors.ENoGitRepo, fmt.Sprintf("%q is not a git repository", cfg.RepoPath))
	}

	branches, _, err := classify(ctx, cfg, repo)
	return branches, err
}

// defaultSteps assembles the reference plugin set, honoring the
// config toggles for the optional ones.
func defaultSteps(cfg *config.Config) plugin.Steps {
	steps := plugin.Steps{
		VerifyConditions: []plugin.VerifyFunc{plugin.NoopVerify},
		VerifyRelease:    []plugin.VerifyFunc{plugin.NoopVerify},
		Success:          []plugin.SuccessFunc{plugin.LoggingSuccess},
		Fail:             []plugin.FailFunc{plugin.LoggingFail},
	}
	if cfg.CommitAnalyzerEnabled() {
		steps.AnalyzeCommits = []plugin.AnalyzeFunc{plugin.ConventionalCommitAnalyzer}
	}
	if cfg.NotesEnabled() {
		steps.GenerateNotes = []plugin.NotesFunc{plugin.PlainTextNotes}
	}
	return steps
}
