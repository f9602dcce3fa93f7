// Package cleaning applies per-column cleaning policies to a dataset.
package cleaning

import (
	"math"

	"github.com/montanaflynn/stats"

	"olstudio/adapters/coercer"
	"olstudio/domain/dataset"
)

// Policy names one cleaning action for a column
type Policy string

const (
	PolicyDeleteRows       Policy = "delete_rows"
	PolicyImputeMean       Policy = "impute_mean"
	PolicyImputeMedian     Policy = "impute_median"
	PolicyForwardFill      Policy = "forward_fill"
	PolicyDropColumn       Policy = "drop_column"
	PolicyConvertToNumeric Policy = "convert_to_numeric"
)

// Step pairs a column with the policy to apply to it. Steps run in slice
// order, and each step observes the dataset as mutated by the steps before
// it; the ordering is part of the contract, so callers pass an explicit list
// rather than a map.
type Step struct {
	Column string
	Policy Policy
}

// Apply runs the steps against a copy of the dataset and returns the result.
// The input dataset is never modified. Steps naming a column that no longer
// exists (for example one already dropped) are skipped silently, as are
// unrecognized policies: cleaning is best-effort and idempotent.
func Apply(ds dataset.Dataset, steps []Step) dataset.Dataset {
	out := ds.Clone()

	for _, step := range steps {
		col, ok := out.Column(step.Column)
		if !ok {
			continue
		}

		switch step.Policy {
		case PolicyDeleteRows:
			deleteMissingRows(&out, col)
		case PolicyImputeMean:
			impute(&out, col, meanOf)
		case PolicyImputeMedian:
			impute(&out, col, medianOf)
		case PolicyForwardFill:
			forwardFill(&out, col)
		case PolicyDropColumn:
			out.DropColumn(col.Name)
		case PolicyConvertToNumeric:
			out.ReplaceColumn(col.Name, coercer.Cells(coercer.Coerce(col.Cells)))
		}
	}

	return out
}

// deleteMissingRows removes every row where the column's original value is
// missing. This is the pre-coercion null check: non-numeric text survives.
func deleteMissingRows(ds *dataset.Dataset, col dataset.Column) {
	keep := make([]bool, len(col.Cells))
	for i, cell := range col.Cells {
		keep[i] = !cell.IsMissing()
	}
	ds.FilterRows(keep)
}

// impute coerces the column and fills missing entries with a statistic of
// the valid values. Non-numeric text becomes missing first, then imputed;
// the column ends up fully numeric. A column with no valid values at all is
// left all-missing.
func impute(ds *dataset.Dataset, col dataset.Column, fill func([]float64) (float64, bool)) {
	series := coercer.Coerce(col.Cells)
	value, ok := fill(coercer.Drop(series))
	if ok {
		for i, v := range series {
			if math.IsNaN(v) {
				series[i] = value
			}
		}
	}
	ds.ReplaceColumn(col.Name, coercer.Cells(series))
}

// forwardFill replaces each missing cell with the nearest preceding
// non-missing cell; a leading run of missing values stays missing.
func forwardFill(ds *dataset.Dataset, col dataset.Column) {
	cells := make([]dataset.Value, len(col.Cells))
	last := dataset.NewMissingValue()
	for i, cell := range col.Cells {
		if cell.IsMissing() {
			cells[i] = last
		} else {
			cells[i] = cell
			last = cell
		}
	}
	ds.ReplaceColumn(col.Name, cells)
}

func meanOf(valid []float64) (float64, bool) {
	m, err := stats.Mean(valid)
	if err != nil {
		return 0, false
	}
	return m, true
}

func medianOf(valid []float64) (float64, bool) {
	m, err := stats.Median(valid)
	if err != nil {
		return 0, false
	}
	return m, true
}
