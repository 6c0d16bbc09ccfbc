// Package cli assembles relgate's root command: global flags resolved in
// Before, subcommands as *cli.Command values returned by per-package
// Run() constructors.
package cli

import (
	"context"
	"fmt"
	"os"
	"strings"

	urfavecli "github.com/urfave/cli/v3"

	"github.com/relgate/relgate/internal/commands/branches"
	"github.com/relgate/relgate/internal/commands/initcmd"
	"github.com/relgate/relgate/internal/commands/plan"
	"github.com/relgate/relgate/internal/commands/run"
	"github.com/relgate/relgate/internal/printer"
	"github.com/relgate/relgate/internal/tui"
)

var (
	noColorFlag bool
	themeFlag   string
)

// Version is set by the build (ldflags); "dev" outside a release build.
var Version = "dev"

// New builds the root relgate command.
func New() *urfavecli.Command {
	return &urfavecli.Command{
		Name:                  "relgate",
		Version:               fmt.Sprintf("v%s", Version),
		Usage:                 "CI-native release orchestrator for semantic versioning",
		EnableShellCompletion: true,
		Flags: []urfavecli.Flag{
			&urfavecli.StringFlag{
				Name:        "repo",
				Aliases:     []string{"C"},
				Usage:       "Path to the git repository",
				DefaultText: ".",
			},
			&urfavecli.StringFlag{
				Name:        "config",
				Usage:       "Path to the branch configuration file",
				DefaultText: ".relgate.yaml",
			},
			&urfavecli.BoolFlag{
				Name:        "no-color",
				Usage:       "Disable colored output",
				Destination: &noColorFlag,
			},
			&urfavecli.StringFlag{
				Name:        "theme",
				Usage:       "TUI theme (relgate, base, base16, catppuccin, charm, dracula)",
				Destination: &themeFlag,
			},
		},
		Before: func(ctx context.Context, cmd *urfavecli.Command) (context.Context, error) {
			printer.SetNoColor(noColorFlag)

			theme := themeFlag
			if envTheme := os.Getenv("RELGATE_THEME"); envTheme != "" && theme == "" {
				theme = envTheme
			}
			if theme != "" && !tui.IsValidTheme(theme) {
				return ctx, fmt.Errorf("invalid theme %q: valid themes are %s",
					theme, strings.Join(tui.ValidThemes, ", "))
			}
			tui.SetTheme(theme)
			return ctx, nil
		},
		Commands: []*urfavecli.Command{
			run.Run(),
			plan.Run(),
			branches.Run(),
			initcmd.Run(),
		},
	}
}
