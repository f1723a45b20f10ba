package cli

import (
	"fmt"
	"io"

	"github.com/spf13/cobra"

	"github.com/couchcryptid/boundary-layer-viewer/internal/domain"
)

// phase tracks pass/fail for a validation phase.
type phase struct {
	name     string
	errors   []string
	warnings []string
}

func (p *phase) errorf(format string, args ...any) {
	p.errors = append(p.errors, fmt.Sprintf(format, args...))
}

func (p *phase) warnf(format string, args ...any) {
	p.warnings = append(p.warnings, fmt.Sprintf(format, args...))
}

func (p *phase) passed() bool { return len(p.errors) == 0 }

func newValidateCmd(a *app) *cobra.Command {
	var strict bool

	cmd := &cobra.Command{
		Use:   "validate",
		Short: "Check the sample table and report what extraction dropped",
		Long: `Validate loads the sample table and checks the decoded columns, the
stations extraction skipped, and the orderings extraction and the slider
rely on. Findings are reported; with --strict any failed check exits with
status 3.`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			_, ds, err := a.loadOnce(cmd.Context())
			if err != nil {
				return err
			}

			phases := runValidation(ds)
			allPassed := printPhases(cmd.OutOrStdout(), ds, phases)
			if !allPassed && strict {
				return errValidationFailed
			}
			return nil
		},
	}

	cmd.Flags().BoolVar(&strict, "strict", false, "exit with status 3 when any check fails")
	return cmd
}

func runValidation(ds *domain.Dataset) []*phase {
	return []*phase{
		validateColumns(ds),
		validateExtraction(ds),
		validateOrdering(ds),
	}
}

func validateColumns(ds *domain.Dataset) *phase {
	p := &phase{name: "Columns present and readable"}
	if len(ds.Batch.MissingColumns) > 0 {
		p.errorf("missing columns: %v", ds.Batch.MissingColumns)
	}
	if ds.Batch.Rows == 0 {
		p.errorf("no data rows")
	}
	if ds.Batch.MalformedRows > 0 {
		p.warnf("%d of %d rows have empty or non-numeric cells", ds.Batch.MalformedRows, ds.Batch.Rows)
	}
	return p
}

func validateExtraction(ds *domain.Dataset) *phase {
	p := &phase{name: "Every station yields a point"}
	for _, s := range ds.Report.Skipped {
		p.errorf("station %g skipped: %s", s.X, s.Reason)
	}
	if n := ds.Report.RowsWithoutStation; n > 0 {
		p.errorf("%d rows have no station and were ignored", n)
	}
	return p
}

func validateOrdering(ds *domain.Dataset) *phase {
	p := &phase{name: "Rows listed wall-outward, stations ascending"}
	for _, x := range ds.Report.UnorderedStations {
		p.errorf("station %g: y is not non-decreasing in input order", x)
	}
	for i := 1; i < len(ds.Points); i++ {
		if ds.Points[i].X < ds.Points[i-1].X {
			p.errorf("station %g listed after station %g", ds.Points[i].X, ds.Points[i-1].X)
		}
	}
	return p
}

// printPhases reports each phase and its findings, returning whether all passed.
func printPhases(w io.Writer, ds *domain.Dataset, phases []*phase) bool {
	fmt.Fprintln(w, styleTitle.Render("Sample table validation"))
	printKeyValue(w, "Source", ds.Source)
	printKeyValue(w, "Rows", fmt.Sprintf("%d (%d malformed)", ds.Batch.Rows, ds.Batch.MalformedRows))
	printKeyValue(w, "Stations", fmt.Sprintf("%d seen, %d emitted", ds.Report.Stations, ds.Report.Emitted))
	fmt.Fprintln(w)

	allPassed := true
	for _, p := range phases {
		status := styleSuccess.Render(iconSuccess + " PASS")
		if !p.passed() {
			status = styleError.Render(fmt.Sprintf("%s FAIL (%d errors)", iconError, len(p.errors)))
			allPassed = false
		}
		fmt.Fprintf(w, "  %-46s %s\n", p.name, status)
	}

	for _, p := range phases {
		if p.passed() && len(p.warnings) == 0 {
			continue
		}
		fmt.Fprintf(w, "\n--- %s ---\n", p.name)
		for i, e := range p.errors {
			fmt.Fprintf(w, "  [%d] %s\n", i+1, e)
		}
		for _, warn := range p.warnings {
			fmt.Fprintln(w, "  "+styleWarning.Render(iconWarning)+" "+warn)
		}
	}

	fmt.Fprintln(w)
	if allPassed {
		fmt.Fprintln(w, "All validations passed.")
	} else {
		fmt.Fprintln(w, "Validation FAILED.")
	}
	return allPassed
}
