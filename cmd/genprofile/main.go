// Command genprofile writes a synthetic laminar boundary-layer sample table.
// Velocities follow the Pohlhausen quartic u/U = 2η - 2η³ + η⁴ with the
// Blasius thickness scaling δ = 5x/√Re_x, so the extracted thickness grows
// with √x.
//
// Usage:
//
//	go run ./cmd/genprofile -out data/mock/boundary_layer.csv
//	go run ./cmd/genprofile -format xlsx -out data/mock/boundary_layer.xlsx
package main

import (
	"encoding/csv"
	"flag"
	"fmt"
	"log"
	"math"
	"os"
	"path/filepath"
	"strconv"

	"github.com/xuri/excelize/v2"
)

type params struct {
	freeStream float64
	viscosity  float64
	stations   int
	dx         float64
	dy         float64
	ny         int
}

func main() {
	if err := run(); err != nil {
		log.Fatal(err)
	}
}

func run() error {
	out := flag.String("out", "data/mock/boundary_layer.csv", "output path")
	format := flag.String("format", "csv", "output format: csv or xlsx")
	p := params{}
	flag.Float64Var(&p.freeStream, "U", 1.0, "free-stream velocity")
	flag.Float64Var(&p.viscosity, "nu", 1.5e-5, "kinematic viscosity")
	flag.IntVar(&p.stations, "stations", 20, "number of streamwise stations")
	flag.Float64Var(&p.dx, "dx", 0.05, "station spacing")
	flag.Float64Var(&p.dy, "dy", 0.0005, "wall-normal spacing")
	flag.IntVar(&p.ny, "ny", 60, "samples per station")
	flag.Parse()

	if p.freeStream <= 0 || p.viscosity <= 0 || p.stations < 1 || p.ny < 1 {
		flag.Usage()
		return fmt.Errorf("U, nu, stations and ny must be positive")
	}

	rows := generate(p)

	if err := os.MkdirAll(filepath.Dir(*out), 0o755); err != nil {
		return fmt.Errorf("create output dir: %w", err)
	}

	switch *format {
	case "csv":
		if err := writeCSV(*out, rows); err != nil {
			return err
		}
	case "xlsx":
		if err := writeXLSX(*out, rows); err != nil {
			return err
		}
	default:
		return fmt.Errorf("unknown format %q", *format)
	}

	log.Printf("wrote %d samples over %d stations to %s", len(rows)-1, p.stations, *out)
	return nil
}

// generate returns the header followed by one row per sample, station-major
// with y ascending.
func generate(p params) [][]string {
	rows := make([][]string, 0, p.stations*p.ny+1)
	rows = append(rows, []string{"x", "y", "u", "Re"})

	for i := 1; i <= p.stations; i++ {
		x := math.Round(float64(i)*p.dx*1e10) / 1e10
		re := p.freeStream * x / p.viscosity
		delta := 5 * x / math.Sqrt(re)

		for j := 0; j < p.ny; j++ {
			y := float64(j) * p.dy
			u := p.freeStream * pohlhausen(y/delta)
			rows = append(rows, []string{
				strconv.FormatFloat(x, 'f', 2, 64),
				strconv.FormatFloat(y, 'f', 4, 64),
				strconv.FormatFloat(u, 'f', 6, 64),
				strconv.FormatFloat(re, 'f', 2, 64),
			})
		}
	}
	return rows
}

func pohlhausen(eta float64) float64 {
	if eta >= 1 {
		return 1
	}
	return 2*eta - 2*math.Pow(eta, 3) + math.Pow(eta, 4)
}

func writeCSV(path string, rows [][]string) error {
	f, err := os.Create(path)
	if err != nil {
		return fmt.Errorf("create %s: %w", path, err)
	}
	defer f.Close()

	w := csv.NewWriter(f)
	if err := w.WriteAll(rows); err != nil {
		return fmt.Errorf("write %s: %w", path, err)
	}
	return nil
}

func writeXLSX(path string, rows [][]string) error {
	f := excelize.NewFile()
	defer f.Close()
	sheet := f.GetSheetList()[0]

	for r, row := range rows {
		values := make([]any, len(row))
		for c, cell := range row {
			if r == 0 {
				values[c] = cell
				continue
			}
			v, err := strconv.ParseFloat(cell, 64)
			if err != nil {
				return fmt.Errorf("row %d: %w", r, err)
			}
			values[c] = v
		}
		cell, err := excelize.CoordinatesToCellName(1, r+1)
		if err != nil {
			return err
		}
		if err := f.SetSheetRow(sheet, cell, &values); err != nil {
			return fmt.Errorf("write row %d: %w", r, err)
		}
	}

	if err := f.SaveAs(path); err != nil {
		return fmt.Errorf("save %s: %w", path, err)
	}
	return nil
}
