package cli

import (
	"encoding/csv"
	"encoding/json"
	"fmt"
	"io"
	"strconv"

	"github.com/charmbracelet/lipgloss"
	"github.com/charmbracelet/lipgloss/table"
	"github.com/spf13/cobra"

	"github.com/couchcryptid/boundary-layer-viewer/internal/domain"
)

// Output formats for extract.
const (
	FormatTable = "table"
	FormatJSON  = "json"
	FormatCSV   = "csv"
)

type extractOptions struct {
	format string
	at     float64
}

// extractResult is the JSON document written by extract --format json.
type extractResult struct {
	Source  string                      `json:"source"`
	Version uint64                      `json:"version"`
	Points  []domain.BoundaryLayerPoint `json:"points"`
	Summary domain.ProfileSummary       `json:"summary"`
	Report  domain.ExtractReport        `json:"report"`
	Readout *domain.Readout             `json:"readout,omitempty"`
}

func newExtractCmd(a *app) *cobra.Command {
	var opts extractOptions

	cmd := &cobra.Command{
		Use:   "extract",
		Short: "Print the boundary-layer thickness and Reynolds number per station",
		Long: `Extract loads the sample table and prints one point per station.

With --at, only the stations at or before the given station are printed and
the readout for that station is included.`,
		Example: `  blview extract
  blview extract --format json --at 0.5
  blview extract -s https://example.org/samples.xlsx --format csv > profile.csv`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			switch opts.format {
			case FormatTable, FormatJSON, FormatCSV:
			default:
				return fmt.Errorf("unknown format %q (want table, json or csv)", opts.format)
			}

			_, ds, err := a.loadOnce(cmd.Context())
			if err != nil {
				return err
			}

			points := ds.Points
			var readout *domain.Readout
			if cmd.Flags().Changed("at") {
				view := domain.NewViewState(opts.at)
				points = view.FilteredSequence(ds.Points)
				r := domain.NewReadout(a.cfg.FreeStreamVelocity, &view, ds.Points)
				readout = &r
			}

			out := cmd.OutOrStdout()
			switch opts.format {
			case FormatJSON:
				return writeExtractJSON(out, ds, points, readout)
			case FormatCSV:
				return writeExtractCSV(out, points)
			default:
				writeExtractTable(out, ds, points, readout)
				return nil
			}
		},
	}

	cmd.Flags().StringVarP(&opts.format, "format", "f", FormatTable, "output format: table, json or csv")
	cmd.Flags().Float64Var(&opts.at, "at", 0, "only print stations at or before this station")
	return cmd
}

func writeExtractJSON(w io.Writer, ds *domain.Dataset, points []domain.BoundaryLayerPoint, readout *domain.Readout) error {
	enc := json.NewEncoder(w)
	enc.SetIndent("", "  ")
	return enc.Encode(extractResult{
		Source:  ds.Source,
		Version: ds.Version,
		Points:  points,
		Summary: domain.Summarize(points),
		Report:  ds.Report,
		Readout: readout,
	})
}

func writeExtractCSV(w io.Writer, points []domain.BoundaryLayerPoint) error {
	cw := csv.NewWriter(w)
	if err := cw.Write([]string{"x", "delta", "Re"}); err != nil {
		return err
	}
	for _, p := range points {
		if err := cw.Write([]string{formatFloat(p.X), formatFloat(p.Delta), formatFloat(p.Re)}); err != nil {
			return err
		}
	}
	cw.Flush()
	return cw.Error()
}

func writeExtractTable(w io.Writer, ds *domain.Dataset, points []domain.BoundaryLayerPoint, readout *domain.Readout) {
	fmt.Fprintln(w, styleTitle.Render("Boundary-layer profile"))
	printKeyValue(w, "Source", ds.Source)
	printKeyValue(w, "Stations", fmt.Sprintf("%d emitted, %d skipped", ds.Report.Emitted, ds.Report.SkippedCount()))
	fmt.Fprintln(w)

	if len(points) == 0 {
		fmt.Fprintln(w, styleDim.Render("no stations to show"))
	} else {
		rows := make([][]string, 0, len(points))
		for _, p := range points {
			rows = append(rows, []string{
				strconv.FormatFloat(p.X, 'f', 2, 64),
				strconv.FormatFloat(p.Delta, 'f', 4, 64),
				strconv.FormatFloat(p.Re, 'f', 2, 64),
			})
		}
		t := table.New().
			Border(lipgloss.RoundedBorder()).
			BorderStyle(styleDim).
			Headers("x", "delta", "Re").
			Rows(rows...).
			StyleFunc(func(row, _ int) lipgloss.Style {
				if row == -1 {
					return styleHeader
				}
				return lipgloss.NewStyle()
			})
		fmt.Fprintln(w, t.Render())

		s := domain.Summarize(points)
		fmt.Fprintln(w)
		printKeyValue(w, "Thickness", fmt.Sprintf("min %.4f  max %.4f  mean %.4f  median %.4f",
			s.DeltaMin, s.DeltaMax, s.DeltaMean, s.DeltaMedian))
		printKeyValue(w, "Reynolds", fmt.Sprintf("min %.2f  max %.2f", s.ReMin, s.ReMax))
	}

	if readout != nil {
		fmt.Fprintln(w)
		for _, line := range readout.Lines() {
			fmt.Fprintln(w, line)
		}
	}
}

func formatFloat(v float64) string {
	return strconv.FormatFloat(v, 'g', -1, 64)
}
