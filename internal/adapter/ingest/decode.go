package ingest

import (
	"bytes"
	"encoding/csv"
	"errors"
	"fmt"
	"io"
	"path"
	"strings"

	"github.com/xuri/excelize/v2"

	"github.com/couchcryptid/boundary-layer-viewer/internal/domain"
)

// Format is a table container format.
type Format string

const (
	FormatCSV  Format = "csv"
	FormatXLSX Format = "xlsx"
)

// Required header names, matched exactly after trimming whitespace.
var columns = []string{"x", "y", "u", "Re"}

// xlsxMagic is the zip local-file header every .xlsx starts with.
var xlsxMagic = []byte("PK\x03\x04")

// DetectFormat picks the decoder from the location's extension, falling
// back to sniffing the content.
func DetectFormat(location string, data []byte) Format {
	loc := location
	if i := strings.IndexAny(loc, "?#"); i >= 0 {
		loc = loc[:i]
	}
	switch strings.ToLower(path.Ext(loc)) {
	case ".xlsx":
		return FormatXLSX
	case ".csv", ".txt":
		return FormatCSV
	}
	if bytes.HasPrefix(data, xlsxMagic) {
		return FormatXLSX
	}
	return FormatCSV
}

// Decode parses raw table bytes into a SampleBatch. Container-level
// failures wrap domain.ErrDecode; bad cells only produce invalid readings.
func Decode(data []byte, format Format) (domain.SampleBatch, error) {
	var (
		rows [][]string
		err  error
	)
	switch format {
	case FormatXLSX:
		rows, err = readXLSX(data)
	case FormatCSV:
		rows, err = readCSV(data)
	default:
		return domain.SampleBatch{}, fmt.Errorf("%w: unsupported format %q", domain.ErrDecode, format)
	}
	if err != nil {
		return domain.SampleBatch{}, err
	}
	return processRows(rows), nil
}

func readCSV(data []byte) ([][]string, error) {
	data = bytes.TrimPrefix(data, []byte("\xef\xbb\xbf"))

	r := csv.NewReader(bytes.NewReader(data))
	r.FieldsPerRecord = -1
	r.TrimLeadingSpace = true

	var rows [][]string
	for {
		rec, err := r.Read()
		if errors.Is(err, io.EOF) {
			break
		}
		if err != nil {
			return nil, fmt.Errorf("%w: csv: %w", domain.ErrDecode, err)
		}
		rows = append(rows, rec)
	}
	return rows, nil
}

func readXLSX(data []byte) ([][]string, error) {
	f, err := excelize.OpenReader(bytes.NewReader(data))
	if err != nil {
		return nil, fmt.Errorf("%w: xlsx: %w", domain.ErrDecode, err)
	}
	defer f.Close()

	sheets := f.GetSheetList()
	if len(sheets) == 0 {
		return nil, fmt.Errorf("%w: xlsx: workbook has no sheets", domain.ErrDecode)
	}
	rows, err := f.GetRows(sheets[0])
	if err != nil {
		return nil, fmt.Errorf("%w: xlsx sheet %s: %w", domain.ErrDecode, sheets[0], err)
	}
	return rows, nil
}

// processRows maps the header row onto the required columns and coerces
// every following row. An empty table yields an empty batch.
func processRows(rows [][]string) domain.SampleBatch {
	var batch domain.SampleBatch
	if len(rows) == 0 {
		batch.MissingColumns = append([]string(nil), columns...)
		return batch
	}

	index := make(map[string]int, len(columns))
	for i, h := range rows[0] {
		name := strings.TrimSpace(h)
		if _, dup := index[name]; !dup {
			index[name] = i
		}
	}
	for _, c := range columns {
		if _, ok := index[c]; !ok {
			batch.MissingColumns = append(batch.MissingColumns, c)
		}
	}

	cell := func(row []string, name string) domain.Reading {
		i, ok := index[name]
		if !ok || i >= len(row) {
			return domain.Reading{}
		}
		return domain.ParseReading(row[i])
	}

	batch.Samples = make([]domain.VelocitySample, 0, len(rows)-1)
	for n, row := range rows[1:] {
		if blankRow(row) {
			continue
		}
		s := domain.VelocitySample{
			X:   cell(row, "x"),
			Y:   cell(row, "y"),
			U:   cell(row, "u"),
			Re:  cell(row, "Re"),
			Row: n + 1,
		}
		if !s.X.Valid || !s.Y.Valid || !s.U.Valid || !s.Re.Valid {
			batch.MalformedRows++
		}
		batch.Samples = append(batch.Samples, s)
	}
	batch.Rows = len(batch.Samples)
	return batch
}

func blankRow(row []string) bool {
	for _, c := range row {
		if strings.TrimSpace(c) != "" {
			return false
		}
	}
	return true
}
