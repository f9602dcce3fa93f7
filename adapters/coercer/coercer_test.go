package coercer

import (
	"math"
	"testing"

	"olstudio/domain/dataset"
)

func TestCoerce_MixedColumn(t *testing.T) {
	cells := []dataset.Value{
		dataset.NewNumericValue(1.5),
		dataset.NewStringValue("2.5"),
		dataset.NewStringValue(" 3 "),
		dataset.NewStringValue("1e2"),
		dataset.NewStringValue("not a number"),
		dataset.NewMissingValue(),
		dataset.NewStringValue("-7.25"),
	}

	series := Coerce(cells)
	if len(series) != len(cells) {
		t.Fatalf("Expected series length %d, got %d", len(cells), len(series))
	}

	want := []float64{1.5, 2.5, 3, 100, math.NaN(), math.NaN(), -7.25}
	for i, expected := range want {
		if math.IsNaN(expected) {
			if !math.IsNaN(series[i]) {
				t.Errorf("Position %d: expected NaN, got %v", i, series[i])
			}
			continue
		}
		if series[i] != expected {
			t.Errorf("Position %d: expected %v, got %v", i, expected, series[i])
		}
	}
}

func TestParseNumber_RejectsNonFinite(t *testing.T) {
	for _, s := range []string{"inf", "+Inf", "-inf", "NaN", "nan", ""} {
		if _, ok := ParseNumber(s); ok {
			t.Errorf("Expected %q to be rejected", s)
		}
	}
}

func TestDrop(t *testing.T) {
	series := []float64{1, math.NaN(), 2, math.NaN(), 3}
	valid := Drop(series)
	if len(valid) != 3 {
		t.Fatalf("Expected 3 valid values, got %d", len(valid))
	}
	if valid[0] != 1 || valid[1] != 2 || valid[2] != 3 {
		t.Errorf("Unexpected valid values: %v", valid)
	}
}

func TestCells_RoundTrip(t *testing.T) {
	cells := Cells([]float64{1, math.NaN(), 2})
	if !cells[0].IsNumeric() || cells[0].AsFloat64() != 1 {
		t.Errorf("Expected numeric 1, got %v", cells[0])
	}
	if !cells[1].IsMissing() {
		t.Errorf("Expected NaN to become missing, got %v", cells[1])
	}
	if !cells[2].IsNumeric() || cells[2].AsFloat64() != 2 {
		t.Errorf("Expected numeric 2, got %v", cells[2])
	}
}
