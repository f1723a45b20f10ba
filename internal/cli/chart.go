package cli

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"github.com/couchcryptid/boundary-layer-viewer/internal/adapter/chart"
	"github.com/couchcryptid/boundary-layer-viewer/internal/domain"
)

type chartOptions struct {
	at     float64
	out    string
	width  int
	height int
}

func newChartCmd(a *app) *cobra.Command {
	var opts chartOptions

	cmd := &cobra.Command{
		Use:   "chart",
		Short: "Render the thickness chart for one station to a PNG file",
		Long: `Chart draws the full profile with the stations at or before --at highlighted
and the point within 0.01 of --at marked. Without --at the last station is
selected.`,
		Example: `  blview chart --at 0.5 -o growth.png`,
		Args:    cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			_, ds, err := a.loadOnce(cmd.Context())
			if err != nil {
				return err
			}

			selected := opts.at
			if !cmd.Flags().Changed("at") {
				selected = domain.SliderBounds(ds.Points).Max
			}

			width, height := a.cfg.ChartWidth, a.cfg.ChartHeight
			if opts.width > 0 {
				width = opts.width
			}
			if opts.height > 0 {
				height = opts.height
			}

			r := chart.NewRenderer(width, height, 1, oneShotMetrics(), a.logger)
			img, err := r.Render(ds, domain.NewViewState(selected))
			if err != nil {
				return err
			}
			if err := os.WriteFile(opts.out, img, 0o644); err != nil {
				return fmt.Errorf("write chart: %w", err)
			}

			w := cmd.OutOrStdout()
			fmt.Fprintln(w, styleSuccess.Render(iconSuccess)+" "+fmt.Sprintf("Rendered station %.2f", selected))
			printFile(w, opts.out)
			return nil
		},
	}

	cmd.Flags().Float64Var(&opts.at, "at", 0, "selected station (default: last station)")
	cmd.Flags().StringVarP(&opts.out, "output", "o", "chart.png", "output PNG path")
	cmd.Flags().IntVar(&opts.width, "width", 0, "image width in pixels (default CHART_WIDTH)")
	cmd.Flags().IntVar(&opts.height, "height", 0, "image height in pixels (default CHART_HEIGHT)")
	return cmd
}
