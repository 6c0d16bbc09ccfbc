// Package plan implements the "relgate plan" command: the same decision as
// "relgate run", always forced into GateController's dry-run path so a
// developer can preview a release locally without tripping the CI-only
// admission check.
package plan

import (
	"context"
	"fmt"

	"github.com/relgate/relgate/internal/commands/pipeline"
	"github.com/relgate/relgate/internal/printer"
	"github.com/relgate/relgate/internal/relerrors"
	"github.com/urfave/cli/v3"
)

// Run returns the "plan" command.
func Run() *cli.Command {
	return &cli.Command{
		Name:  "plan",
		Usage: "Preview the next release without tagging, pushing, or publishing",
		Action: func(ctx context.Context, cmd *cli.Command) error {
			opts := pipeline.Options{
				RepoPath:   cmd.String("repo"),
				ConfigPath: cmd.String("config"),
				DryRun:     true,
				NoCI:       true,
			}
			outcome, err := pipeline.Execute(ctx, opts)
			if err != nil {
				if re, ok := err.(*relerrors.Error); ok {
					printer.PrintError(re.Error())
					return fmt.Errorf("%s", re.Code)
				}
				return err
			}
			if !outcome.Admitted {
				printer.PrintInfo("no branch in this repository is configured for release")
				return nil
			}
			if !outcome.Ran {
				printer.PrintInfo(fmt.Sprintf("no release pending on %q", outcome.Branch))
				return nil
			}
			printer.PrintInfo(fmt.Sprintf("plan complete for %q", outcome.Branch))
			return nil
		},
	}
}
