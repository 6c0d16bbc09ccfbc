// Package initcmd implements "relgate init": an interactive wizard that
// writes a starter .relgate.yaml branch list, so a new repository gets a
// valid config without hand-writing YAML.
package initcmd

import (
	"context"
	"fmt"
	"os"

	"github.com/charmbracelet/huh"
	"github.com/urfave/cli/v3"

	"github.com/relgate/relgate/internal/branch"
	"github.com/relgate/relgate/internal/config"
	"github.com/relgate/relgate/internal/printer"
	"github.com/relgate/relgate/internal/tui"
)

// Run returns the "init" command.
func Run() *cli.Command {
	return &cli.Command{
		Name:  "init",
		Usage: "Interactively create a starter .relgate.yaml",
		Flags: []cli.Flag{
			&cli.BoolFlag{
				Name:  "force",
				Usage: "Overwrite an existing .relgate.yaml",
			},
		},
		Action: func(ctx context.Context, cmd *cli.Command) error {
			return runInit(cmd)
		},
	}
}

func runInit(cmd *cli.Command) error {
	if !cmd.Bool("force") {
		if _, err := os.Stat(config.DefaultPath); err == nil {
			return fmt.Errorf("%s already exists; pass --force to overwrite", config.DefaultPath)
		}
	}

	if !tui.IsInteractive() {
		return fmt.Errorf("relgate init requires an interactive terminal")
	}

	mainBranch := "main"
	tagFormat := config.DefaultTagFormat
	withCommitAnalyzer := true
	withNotes := true

	form := huh.NewForm(
		huh.NewGroup(
			huh.NewInput().
				Title("Main release branch").
				Description("The branch that publishes the default (unlabelled) channel.").
				Value(&mainBranch),
			huh.NewInput().
				Title("Tag format").
				Description("Must contain exactly one ${version} placeholder.").
				Value(&tagFormat),
			huh.NewConfirm().
				Title("Enable the Conventional Commits analyzer?").
				Value(&withCommitAnalyzer),
			huh.NewConfirm().
				Title("Enable the plain-text notes generator?").
				Value(&withNotes),
		),
	).WithTheme(tui.CurrentTheme())

	if err := form.Run(); err != nil {
		return fmt.Errorf("init wizard cancelled: %w", err)
	}

	cfg := &config.Config{
		TagFormat: tagFormat,
		Branches: []branch.BranchSpec{
			{Name: mainBranch},
		},
		Plugins: &config.PluginConfig{
			CommitAnalyzer: &withCommitAnalyzer,
			Notes:          &withNotes,
		},
	}

	saver := config.NewSaver(nil, nil, nil)
	if err := saver.Save(cfg); err != nil {
		return fmt.Errorf("writing %s: %w", config.DefaultPath, err)
	}

	printer.PrintSuccess(fmt.Sprintf("wrote %s", config.DefaultPath))
	return nil
}
