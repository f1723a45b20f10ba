package domain

import (
	"errors"
	"math"
	"strconv"
	"strings"
)

var (
	// ErrSourceUnavailable marks a failed fetch of the sample table
	// (missing file, network error, non-200 response).
	ErrSourceUnavailable = errors.New("sample source unavailable")

	// ErrDecode marks a sample table whose container format could not be read.
	ErrDecode = errors.New("sample table unreadable")
)

// Reading is one numeric cell of a sample row. Valid is false when the cell
// was absent, empty, non-numeric or not finite.
type Reading struct {
	Value float64
	Valid bool
}

// NewReading returns a valid reading holding v.
func NewReading(v float64) Reading {
	return Reading{Value: v, Valid: true}
}

// ParseReading coerces a raw cell into a Reading.
func ParseReading(s string) Reading {
	s = strings.TrimSpace(s)
	if s == "" {
		return Reading{}
	}
	v, err := strconv.ParseFloat(s, 64)
	if err != nil || math.IsNaN(v) || math.IsInf(v, 0) {
		return Reading{}
	}
	return NewReading(v)
}

// VelocitySample is one decoded row of the sample table.
type VelocitySample struct {
	X  Reading // streamwise station
	Y  Reading // wall-normal position
	U  Reading // local velocity
	Re Reading // Reynolds number

	// Row is the 1-based data row in the source table (header excluded), 0 when unknown.
	Row int
}

// SampleBatch is the output of one ingestion fetch.
type SampleBatch struct {
	Source  string
	Samples []VelocitySample

	// Rows is the number of data rows read, MissingColumns the required
	// header names that were not found, and MalformedRows the rows with at
	// least one invalid field.
	Rows           int
	MissingColumns []string
	MalformedRows  int
}

// BoundaryLayerPoint is the reduced value for one station.
type BoundaryLayerPoint struct {
	X     float64 `json:"x"`
	Delta float64 `json:"delta"`
	Re    float64 `json:"re"`
}
