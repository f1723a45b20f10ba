package cli

import (
	"fmt"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/spf13/cobra"

	"github.com/couchcryptid/boundary-layer-viewer/internal/tui"
)

func newTUICmd(a *app) *cobra.Command {
	var inline bool

	cmd := &cobra.Command{
		Use:   "tui",
		Short: "Scrub through stations in the terminal",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			p, ds, err := a.loadOnce(cmd.Context())
			if err != nil {
				return err
			}

			opts := []tea.ProgramOption{
				tea.WithContext(cmd.Context()),
				tea.WithInput(cmd.InOrStdin()),
				tea.WithOutput(cmd.OutOrStdout()),
			}
			if !inline {
				opts = append(opts, tea.WithAltScreen())
			}

			model := tui.New(ds, a.cfg.FreeStreamVelocity, p.Load)
			if _, err := tea.NewProgram(model, opts...).Run(); err != nil {
				return fmt.Errorf("run tui: %w", err)
			}
			return nil
		},
	}

	cmd.Flags().BoolVar(&inline, "inline", false, "render below the prompt instead of the alternate screen")
	return cmd
}
