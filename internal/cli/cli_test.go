package cli

import (
	"bytes"
	"context"
	"encoding/csv"
	"encoding/json"
	"errors"
	"fmt"
	"image/png"
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/couchcryptid/boundary-layer-viewer/internal/domain"
)

const fixturePath = "../../data/mock/boundary_layer.csv"

// runCLI executes the root command with args against the given source and
// returns stdout.
func runCLI(t *testing.T, source string, args ...string) (string, error) {
	t.Helper()
	t.Setenv("DATA_SOURCE", source)
	t.Setenv("LOG_LEVEL", "error")
	t.Setenv("FETCH_ATTEMPTS", "1")

	var out, errOut bytes.Buffer
	root := NewRootCommand(&out, &errOut)
	root.SetArgs(append([]string{"--env-file", filepath.Join(t.TempDir(), "missing.env")}, args...))
	root.SetIn(strings.NewReader(""))

	err := root.ExecuteContext(context.Background())
	return out.String(), err
}

func writeTable(t *testing.T, content string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), "samples.csv")
	require.NoError(t, os.WriteFile(path, []byte(content), 0o600))
	return path
}

func TestSetVersion(t *testing.T) {
	defer SetVersion("dev", "", "")

	SetVersion("1.0.0", "abc123", "2024-01-01")
	assert.Equal(t, "1.0.0", version)
	assert.Equal(t, "abc123", commit)
	assert.Equal(t, "2024-01-01", date)

	SetVersion("", "", "")
	assert.Equal(t, "1.0.0", version, "empty version keeps the previous value")
}

func TestExitCode(t *testing.T) {
	tests := []struct {
		name string
		err  error
		want int
	}{
		{"nil", nil, ExitOK},
		{"generic", errors.New("boom"), ExitFailure},
		{"source unavailable", fmt.Errorf("load x: %w", domain.ErrSourceUnavailable), ExitSourceUnavailable},
		{"decode", fmt.Errorf("load x: %w", domain.ErrDecode), ExitFailure},
		{"validation", fmt.Errorf("wrapped: %w", errValidationFailed), ExitValidation},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, ExitCode(tt.err))
		})
	}
}

func TestSweepInterval(t *testing.T) {
	assert.Equal(t, time.Minute, sweepInterval(30*time.Minute))
	assert.Equal(t, 15*time.Second, sweepInterval(30*time.Second))
	assert.Equal(t, time.Second, sweepInterval(time.Millisecond))
}

func TestExtract_JSON(t *testing.T) {
	out, err := runCLI(t, fixturePath, "extract", "--format", "json")
	require.NoError(t, err)

	var res extractResult
	require.NoError(t, json.Unmarshal([]byte(out), &res))
	assert.Equal(t, fixturePath, res.Source)
	assert.Len(t, res.Points, 20)
	assert.Equal(t, 20, res.Summary.Points)
	assert.True(t, res.Report.Clean())
	assert.Nil(t, res.Readout)
}

func TestExtract_JSONAt(t *testing.T) {
	out, err := runCLI(t, fixturePath, "extract", "-f", "json", "--at", "0.5")
	require.NoError(t, err)

	var res extractResult
	require.NoError(t, json.Unmarshal([]byte(out), &res))
	assert.Len(t, res.Points, 10)
	require.NotNil(t, res.Readout)
	assert.Equal(t, "33333.33", res.Readout.ReynoldsNumber)
	assert.Equal(t, "0.50", res.Readout.SelectedStation)
}

func TestExtract_CSV(t *testing.T) {
	out, err := runCLI(t, fixturePath, "extract", "--format", "csv")
	require.NoError(t, err)

	records, err := csv.NewReader(strings.NewReader(out)).ReadAll()
	require.NoError(t, err)
	require.Len(t, records, 21)
	assert.Equal(t, []string{"x", "delta", "Re"}, records[0])
	assert.Equal(t, "0.05", records[1][0])
}

func TestExtract_Table(t *testing.T) {
	out, err := runCLI(t, fixturePath, "extract", "--at", "0.5")
	require.NoError(t, err)

	assert.Contains(t, out, "Boundary-layer profile")
	assert.Contains(t, out, "20 emitted, 0 skipped")
	assert.Contains(t, out, "0.50")
	assert.Contains(t, out, "Reynolds number: 33333.33")
	assert.Contains(t, out, "Boundary-layer thickness: 0.0115")
}

func TestExtract_FreeStreamFlag(t *testing.T) {
	// Nothing reaches 0.99 * 2.0, so every station is skipped.
	out, err := runCLI(t, fixturePath, "extract", "-f", "json", "--free-stream", "2")
	require.NoError(t, err)

	var res extractResult
	require.NoError(t, json.Unmarshal([]byte(out), &res))
	assert.Empty(t, res.Points)
	assert.Equal(t, 20, res.Report.SkippedCount())
}

func TestExtract_Errors(t *testing.T) {
	t.Run("unknown format", func(t *testing.T) {
		_, err := runCLI(t, fixturePath, "extract", "--format", "yaml")
		require.Error(t, err)
		assert.Equal(t, ExitFailure, ExitCode(err))
	})

	t.Run("missing source", func(t *testing.T) {
		_, err := runCLI(t, filepath.Join(t.TempDir(), "nope.csv"), "extract")
		require.Error(t, err)
		assert.Equal(t, ExitSourceUnavailable, ExitCode(err))
	})

	t.Run("bad config", func(t *testing.T) {
		t.Setenv("LOG_FORMAT", "xml")
		_, err := runCLI(t, fixturePath, "extract")
		require.Error(t, err)
		assert.Contains(t, err.Error(), "LOG_FORMAT")
	})

	for _, v := range []string{"0", "-1", "NaN", "Inf"} {
		t.Run("free stream "+v, func(t *testing.T) {
			_, err := runCLI(t, fixturePath, "extract", "--free-stream", v)
			require.Error(t, err)
			assert.Contains(t, err.Error(), "--free-stream")
		})
	}
}

func TestChart(t *testing.T) {
	out := filepath.Join(t.TempDir(), "growth.png")

	stdout, err := runCLI(t, fixturePath, "chart", "--at", "0.5", "-o", out, "--width", "300", "--height", "150")
	require.NoError(t, err)
	assert.Contains(t, stdout, "Rendered station 0.50")
	assert.Contains(t, stdout, out)

	f, err := os.Open(out)
	require.NoError(t, err)
	defer f.Close()
	img, err := png.Decode(f)
	require.NoError(t, err)
	assert.Equal(t, 300, img.Bounds().Dx())
	assert.Equal(t, 150, img.Bounds().Dy())
}

func TestChart_SizeFromConfigFile(t *testing.T) {
	t.Cleanup(func() {
		os.Unsetenv("CHART_WIDTH")
		os.Unsetenv("CHART_HEIGHT")
	})
	dir := t.TempDir()
	cfgPath := filepath.Join(dir, "blview.toml")
	require.NoError(t, os.WriteFile(cfgPath, []byte("chart_width = 240\nchart_height = 120\n"), 0o600))
	out := filepath.Join(dir, "chart.png")

	_, err := runCLI(t, fixturePath, "--config", cfgPath, "chart", "-o", out)
	require.NoError(t, err)

	data, err := os.ReadFile(out)
	require.NoError(t, err)
	img, err := png.Decode(bytes.NewReader(data))
	require.NoError(t, err)
	assert.Equal(t, 240, img.Bounds().Dx())
	assert.Equal(t, 120, img.Bounds().Dy())
}

func TestValidate_Fixture(t *testing.T) {
	out, err := runCLI(t, fixturePath, "validate", "--strict")
	require.NoError(t, err)
	assert.Contains(t, out, "All validations passed.")
	assert.NotContains(t, out, "FAIL")
}

func TestValidate_Findings(t *testing.T) {
	table := writeTable(t, `x,y,u,Re
0.3,0.0,0.1,300
0.3,0.1,1.0,300
0.1,0.0,0.2,100
0.1,0.1,0.5,100
0.2,0.2,0.5,200
0.2,0.1,1.0,200
,0.1,1.0,1
`)

	out, err := runCLI(t, table, "validate")
	require.NoError(t, err, "findings only fail with --strict")
	assert.Contains(t, out, "Validation FAILED.")
	assert.Contains(t, out, "station 0.1 skipped: no_crossing")
	assert.Contains(t, out, "1 rows have no station")
	assert.Contains(t, out, "station 0.2: y is not non-decreasing")
	assert.Contains(t, out, "station 0.2 listed after station 0.3")
	assert.NotContains(t, out, "0.1 listed after", "skipped stations are not ordered")

	_, err = runCLI(t, table, "validate", "--strict")
	require.Error(t, err)
	assert.Equal(t, ExitValidation, ExitCode(err))
}

func TestRunValidation(t *testing.T) {
	ds := &domain.Dataset{
		Batch: domain.BatchInfo{Rows: 4, MissingColumns: []string{"Re"}, MalformedRows: 4},
		Points: []domain.BoundaryLayerPoint{
			{X: 0.3}, {X: 0.1},
		},
	}

	phases := runValidation(ds)
	require.Len(t, phases, 3)

	assert.False(t, phases[0].passed())
	assert.Equal(t, []string{"missing columns: [Re]"}, phases[0].errors)
	assert.Len(t, phases[0].warnings, 1)

	assert.True(t, phases[1].passed())

	assert.False(t, phases[2].passed())
	assert.Equal(t, []string{"station 0.1 listed after station 0.3"}, phases[2].errors)
}

func TestPublish_RequiresBrokers(t *testing.T) {
	t.Setenv("KAFKA_BROKERS", "")
	_, err := runCLI(t, fixturePath, "publish")
	require.Error(t, err)
	assert.Contains(t, err.Error(), "KAFKA_BROKERS")
}

func TestTUI_QuitsOnKey(t *testing.T) {
	t.Setenv("DATA_SOURCE", fixturePath)
	t.Setenv("LOG_LEVEL", "error")

	var out bytes.Buffer
	root := NewRootCommand(&out, &bytes.Buffer{})
	root.SetArgs([]string{"--env-file", filepath.Join(t.TempDir(), "missing.env"), "tui", "--inline"})
	root.SetIn(strings.NewReader("lq"))

	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	require.NoError(t, root.ExecuteContext(ctx))
	assert.Contains(t, out.String(), "Boundary-layer growth")
}

func TestServe_ShutsDownOnCancel(t *testing.T) {
	t.Setenv("HTTP_ADDR", "127.0.0.1:0")
	t.Setenv("SHUTDOWN_TIMEOUT", "1s")

	ctx, cancel := context.WithTimeout(context.Background(), 300*time.Millisecond)
	defer cancel()

	t.Setenv("DATA_SOURCE", fixturePath)
	t.Setenv("LOG_LEVEL", "error")
	root := NewRootCommand(&bytes.Buffer{}, &bytes.Buffer{})
	root.SetArgs([]string{"--env-file", filepath.Join(t.TempDir(), "missing.env"), "serve"})

	done := make(chan error, 1)
	go func() { done <- root.ExecuteContext(ctx) }()

	select {
	case err := <-done:
		assert.NoError(t, err)
	case <-time.After(5 * time.Second):
		t.Fatal("serve did not shut down")
	}
}
