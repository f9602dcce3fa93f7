// Package coercer converts arbitrary cell columns to numeric sequences.
// It is the single definition of "numeric" for cleaning, statistics and
// regression: a cell that cannot be parsed degrades to missing, never to an
// error.
package coercer

import (
	"math"
	"strconv"
	"strings"

	"olstudio/domain/dataset"
)

// Coerce projects a column of cells onto a numeric sequence of equal length.
// Missing cells and unparseable text map to NaN.
func Coerce(cells []dataset.Value) []float64 {
	series := make([]float64, len(cells))
	for i, cell := range cells {
		series[i] = coerceCell(cell)
	}
	return series
}

// CoerceColumn is a convenience wrapper over Coerce for a named column
func CoerceColumn(col dataset.Column) []float64 {
	return Coerce(col.Cells)
}

// Drop returns the series with NaN entries removed
func Drop(series []float64) []float64 {
	valid := make([]float64, 0, len(series))
	for _, v := range series {
		if !math.IsNaN(v) {
			valid = append(valid, v)
		}
	}
	return valid
}

// Cells converts a numeric series back to cells, NaN becoming missing
func Cells(series []float64) []dataset.Value {
	cells := make([]dataset.Value, len(series))
	for i, v := range series {
		if math.IsNaN(v) {
			cells[i] = dataset.NewMissingValue()
		} else {
			cells[i] = dataset.NewNumericValue(v)
		}
	}
	return cells
}

func coerceCell(cell dataset.Value) float64 {
	switch {
	case cell.IsMissing():
		return math.NaN()
	case cell.IsNumeric():
		return cell.AsFloat64()
	default:
		if v, ok := ParseNumber(cell.AsString()); ok {
			return v
		}
		return math.NaN()
	}
}

// ParseNumber attempts to parse text as a finite number. Scientific notation
// is accepted via ParseFloat; infinities and NaN tokens are rejected so a
// parsed series only ever carries NaN as the missing marker.
func ParseNumber(s string) (float64, bool) {
	cleaned := strings.TrimSpace(s)
	if cleaned == "" {
		return 0, false
	}

	val, err := strconv.ParseFloat(cleaned, 64)
	if err != nil {
		return 0, false
	}
	if math.IsInf(val, 0) || math.IsNaN(val) {
		return 0, false
	}
	return val, true
}
