// Package cli implements the blview command-line interface.
//
// # Commands
//
//   - serve: run the ingestion pipeline and the web viewer
//   - tui: scrub stations in the terminal
//   - extract: print the extracted profile as a table, JSON or CSV
//   - chart: render the chart for one station to a PNG file
//   - validate: check the sample table and report what extraction dropped
//   - publish: run one pass and publish the profile to Kafka
//
// # Configuration
//
// Settings come from the environment (see internal/config). A .env file and
// an optional TOML file (--config) supply values the environment leaves
// unset. --source and --free-stream override both.
package cli

import (
	"context"
	"errors"
	"fmt"
	"io"
	"log/slog"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/spf13/cobra"

	"github.com/couchcryptid/boundary-layer-viewer/internal/adapter/ingest"
	"github.com/couchcryptid/boundary-layer-viewer/internal/config"
	"github.com/couchcryptid/boundary-layer-viewer/internal/domain"
	"github.com/couchcryptid/boundary-layer-viewer/internal/observability"
	"github.com/couchcryptid/boundary-layer-viewer/internal/pipeline"
)

var (
	version = "dev" // semantic version, set via ldflags
	commit  string  // git commit SHA
	date    string  // build timestamp
)

// Exit codes returned by ExitCode.
const (
	ExitOK                = 0
	ExitFailure           = 1
	ExitSourceUnavailable = 2
	ExitValidation        = 3
)

// errValidationFailed is returned by validate --strict when a check fails.
var errValidationFailed = errors.New("validation failed")

// SetVersion sets the version information displayed by --version.
func SetVersion(v, c, d string) {
	if v != "" {
		version = v
	}
	commit = c
	date = d
}

// ExitCode maps a command error onto the process exit status.
func ExitCode(err error) int {
	switch {
	case err == nil:
		return ExitOK
	case errors.Is(err, errValidationFailed):
		return ExitValidation
	case errors.Is(err, domain.ErrSourceUnavailable):
		return ExitSourceUnavailable
	default:
		return ExitFailure
	}
}

// Execute runs the blview CLI with the process arguments.
func Execute(ctx context.Context) error {
	return NewRootCommand(nil, nil).ExecuteContext(ctx)
}

// app is the state shared by all commands once flags and config are parsed.
type app struct {
	cfg    *config.Config
	logger *slog.Logger
}

type rootFlags struct {
	verbose    bool
	configFile string
	envFile    string
	source     string
	freeStream float64
}

// NewRootCommand builds the command tree. Nil writers default to the
// process stdout and stderr.
func NewRootCommand(out, errOut io.Writer) *cobra.Command {
	var (
		flags rootFlags
		a     = &app{}
	)

	root := &cobra.Command{
		Use:           "blview",
		Short:         "blview extracts and scrubs boundary-layer growth profiles",
		Long:          `blview reads a table of velocity samples, reduces it to one boundary-layer thickness and Reynolds number per streamwise station, and lets you scrub through the stations on the web or in the terminal.`,
		Version:       version,
		SilenceUsage:  true,
		SilenceErrors: true,
		PersistentPreRunE: func(cmd *cobra.Command, _ []string) error {
			return a.init(cmd, flags)
		},
	}
	if out != nil {
		root.SetOut(out)
	}
	if errOut != nil {
		root.SetErr(errOut)
	}

	root.SetVersionTemplate(fmt.Sprintf("blview %s\ncommit: %s\nbuilt: %s\n", version, commit, date))
	pf := root.PersistentFlags()
	pf.BoolVarP(&flags.verbose, "verbose", "v", false, "enable debug logging")
	pf.StringVarP(&flags.configFile, "config", "c", "", "TOML file with default settings")
	pf.StringVar(&flags.envFile, "env-file", ".env", "dotenv file to load if present")
	pf.StringVarP(&flags.source, "source", "s", "", "sample table path or URL (overrides DATA_SOURCE)")
	pf.Float64Var(&flags.freeStream, "free-stream", 0, "free-stream velocity (overrides FREE_STREAM_VELOCITY)")

	root.AddCommand(newServeCmd(a))
	root.AddCommand(newTUICmd(a))
	root.AddCommand(newExtractCmd(a))
	root.AddCommand(newChartCmd(a))
	root.AddCommand(newValidateCmd(a))
	root.AddCommand(newPublishCmd(a))

	return root
}

func (a *app) init(cmd *cobra.Command, flags rootFlags) error {
	if err := config.LoadDotEnv(flags.envFile); err != nil {
		return err
	}
	if flags.configFile != "" {
		if err := config.ApplyFile(flags.configFile); err != nil {
			return err
		}
	}

	cfg, err := config.Load()
	if err != nil {
		return fmt.Errorf("load config: %w", err)
	}
	if flags.source != "" {
		cfg.DataSource = flags.source
	}
	if cmd.Flags().Changed("free-stream") {
		if !config.ValidFreeStream(flags.freeStream) {
			return errors.New("--free-stream must be a finite positive number")
		}
		cfg.FreeStreamVelocity = flags.freeStream
	}
	if flags.verbose {
		cfg.LogLevel = "debug"
	}

	a.cfg = cfg
	a.logger = observability.NewLoggerTo(cmd.ErrOrStderr(), cfg.LogLevel, cfg.LogFormat)
	return nil
}

// newPipeline wires ingestion and extraction for the configured source.
func (a *app) newPipeline(metrics *observability.Metrics, opts ...pipeline.Option) *pipeline.Pipeline {
	source := ingest.NewSource(a.cfg.DataSource, a.cfg.FetchTimeout, a.logger)
	opts = append([]pipeline.Option{pipeline.WithAttempts(a.cfg.FetchAttempts)}, opts...)
	return pipeline.New(
		ingest.NewIngestor(source, a.logger),
		pipeline.NewTransformer(a.cfg.FreeStreamVelocity, a.logger),
		a.logger,
		metrics,
		opts...,
	)
}

// oneShotMetrics keeps short-lived commands off the process-wide registry.
func oneShotMetrics() *observability.Metrics {
	return observability.NewMetricsWith(prometheus.NewRegistry())
}

// loadOnce runs a single ingestion pass.
func (a *app) loadOnce(ctx context.Context, opts ...pipeline.Option) (*pipeline.Pipeline, *domain.Dataset, error) {
	p := a.newPipeline(oneShotMetrics(), opts...)
	ds, err := p.Load(ctx)
	if err != nil {
		return nil, nil, fmt.Errorf("load %s: %w", a.cfg.DataSource, err)
	}
	return p, ds, nil
}
