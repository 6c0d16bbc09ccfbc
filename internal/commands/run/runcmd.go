// Package run implements the "relgate run" command: one full release
// decision, gated by CI detection unless overridden.
package run

import (
	"context"
	"fmt"

	"github.com/relgate/relgate/internal/commands/pipeline"
	"github.com/relgate/relgate/internal/printer"
	"github.com/relgate/relgate/internal/relerrors"
	"github.com/urfave/cli/v3"
)

// Run returns the "run" command.
func Run() *cli.Command {
	return &cli.Command{
		Name:  "run",
		Usage: "Execute one release decision against the current repository",
		Flags: []cli.Flag{
			&cli.BoolFlag{
				Name:  "dry-run",
				Usage: "Preview the next release without tagging or publishing",
			},
			&cli.BoolFlag{
				Name:  "no-ci",
				Usage: "Run even though this doesn't look like a CI environment, or on a pull/merge request",
			},
		},
		Action: func(ctx context.Context, cmd *cli.Command) error {
			opts := pipeline.Options{
				RepoPath:   cmd.String("repo"),
				ConfigPath: cmd.String("config"),
				DryRun:     cmd.Bool("dry-run"),
				NoCI:       cmd.Bool("no-ci"),
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
				return nil
			}
			if !outcome.Ran {
				printer.PrintInfo(fmt.Sprintf("no release needed on %q", outcome.Branch))
				return nil
			}
			if outcome.DryRun {
				printer.PrintInfo(fmt.Sprintf("dry-run preview complete for %q", outcome.Branch))
			} else {
				printer.PrintSuccess(fmt.Sprintf("released %q", outcome.Branch))
			}
			return nil
		},
	}
}
