package tabular

import (
	"math"

	"olstudio/adapters/coercer"
	"olstudio/domain/dataset"
)

// maxMismatchRows caps how many offending row indices are reported per
// column in the upload response.
const maxMismatchRows = 10

// ValidationSummary flags data-quality issues found at upload time. Field
// names are part of the external contract.
type ValidationSummary struct {
	MissingData      map[string]int   `json:"missing_data"`
	TypeMismatches   map[string][]int `json:"type_mismatches"`
	CategoricalFlags []string         `json:"categorical_flags"`
}

// Validate profiles every column: missing counts, columns that look fully
// categorical, and mostly-numeric columns with scattered non-numeric cells
// (reported with the offending row indices).
func Validate(ds dataset.Dataset) ValidationSummary {
	summary := ValidationSummary{
		MissingData:      make(map[string]int),
		TypeMismatches:   make(map[string][]int),
		CategoricalFlags: []string{},
	}

	for _, col := range ds.Columns {
		if missing := col.MissingCount(); missing > 0 {
			summary.MissingData[col.Name] = missing
		}

		series := coercer.Coerce(col.Cells)
		var mismatchRows []int
		numericCount := 0
		presentCount := 0
		for pos, cell := range col.Cells {
			if cell.IsMissing() {
				continue
			}
			presentCount++
			if math.IsNaN(series[pos]) {
				mismatchRows = append(mismatchRows, ds.Index[pos])
			} else {
				numericCount++
			}
		}

		if len(mismatchRows) == 0 {
			continue
		}
		if numericCount == 0 && presentCount > 0 {
			summary.CategoricalFlags = append(summary.CategoricalFlags, col.Name)
			continue
		}
		if len(mismatchRows) > maxMismatchRows {
			mismatchRows = mismatchRows[:maxMismatchRows]
		}
		summary.TypeMismatches[col.Name] = mismatchRows
	}

	return summary
}
