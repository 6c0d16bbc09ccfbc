// Package branches implements the "relgate branches" command: a read-only
// rendering of the classified branch model so a maintainer can inspect how
// relgate currently sees the repository's release topology without
// triggering a run.
package branches

import (
	"context"
	"fmt"

	"github.com/charmbracelet/bubbles/table"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"
	"github.com/urfave/cli/v3"

	"github.com/relgate/relgate/internal/branch"
	"github.com/relgate/relgate/internal/commands/pipeline"
	"github.com/relgate/relgate/internal/printer"
	"github.com/relgate/relgate/internal/relerrors"
	"github.com/relgate/relgate/internal/tui"
)

// Run returns the "branches" command.
func Run() *cli.Command {
	return &cli.Command{
		Name:  "branches",
		Usage: "Show the classified branch model for the current repository",
		Action: func(ctx context.Context, cmd *cli.Command) error {
			opts := pipeline.Options{
				RepoPath:   cmd.String("repo"),
				ConfigPath: cmd.String("config"),
			}
			classified, err := pipeline.Discover(ctx, opts)
			if err != nil {
				if re, ok := err.(*relerrors.Error); ok {
					printer.PrintError(re.Error())
					return fmt.Errorf("%s", re.Code)
				}
				return err
			}
			if len(classified) == 0 {
				printer.PrintInfo("no branches configured")
				return nil
			}

			if !tui.IsInteractive() {
				printRows(classified)
				return nil
			}

			m := newModel(classified)
			if _, err := tea.NewProgram(m).Run(); err != nil {
				return fmt.Errorf("rendering branch table: %w", err)
			}
			return nil
		},
	}
}

// printRows is the non-interactive fallback (piped stdout, dumb terminal):
// a plain aligned table.
func printRows(branches []branch.Branch) {
	fmt.Printf("%-24s %-12s %-10s %-16s %s\n", "BRANCH", "TYPE", "CHANNEL", "RANGE", "TAGS")
	for _, b := range branches {
		fmt.Printf("%-24s %-12s %-10s %-16s %d\n", b.Name, b.Type, displayChannel(b.Channel), b.Range.String(), len(b.Tags))
	}
}

func displayChannel(channel string) string {
	if channel == "" {
		return "(default)"
	}
	return channel
}

var headerStyle = lipgloss.NewStyle().Bold(true).Padding(0, 1)

type model struct {
	table table.Model
}

func newModel(branches []branch.Branch) model {
	columns := []table.Column{
		{Title: "Branch", Width: 24},
		{Title: "Type", Width: 12},
		{Title: "Channel", Width: 10},
		{Title: "Range", Width: 18},
		{Title: "Tags", Width: 6},
	}

	rows := make([]table.Row, len(branches))
	for i, b := range branches {
		rows[i] = table.Row{
			b.Name,
			string(b.Type),
			displayChannel(b.Channel),
			b.Range.String(),
			fmt.Sprintf("%d", len(b.Tags)),
		}
	}

	t := table.New(
		table.WithColumns(columns),
		table.WithRows(rows),
		table.WithFocused(true),
		table.WithHeight(min(len(rows)+1, 15)),
	)

	style := table.DefaultStyles()
	style.Header = style.Header.Bold(true)
	style.Selected = style.Selected.Bold(true)
	t.SetStyles(style)

	return model{table: t}
}

func (m model) Init() tea.Cmd { return nil }

func (m model) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.KeyMsg:
		switch msg.String() {
		case "q", "esc", "ctrl+c", "enter":
			return m, tea.Quit
		}
	}
	var cmd tea.Cmd
	m.table, cmd = m.table.Update(msg)
	return m, cmd
}

func (m model) View() string {
	return headerStyle.Render("relgate branches") + "\n" + m.table.View() + "\n"
}
