// Package testkit generates deterministic synthetic datasets for tests and
// demos.
package testkit

import (
	"math"
	"math/rand"

	"olstudio/domain/dataset"
)

// Generator produces synthetic regression datasets from a seeded source
type Generator struct {
	rng *rand.Rand
}

// NewGenerator creates a generator with the given seed
func NewGenerator(seed int64) *Generator {
	return &Generator{rng: rand.New(rand.NewSource(seed))}
}

// LinearDataset generates y = 5 + 2·x1 − 3·x2 + ε with homoscedastic noise.
// Columns: y, x1, x2.
func (g *Generator) LinearDataset(n int, noise float64) dataset.Dataset {
	x1 := make([]float64, n)
	x2 := make([]float64, n)
	y := make([]float64, n)
	for i := 0; i < n; i++ {
		x1[i] = g.rng.Float64() * 10
		x2[i] = g.rng.NormFloat64() * 3
		y[i] = 5 + 2*x1[i] - 3*x2[i] + g.rng.NormFloat64()*noise
	}
	return fromFloats([]string{"y", "x1", "x2"}, [][]float64{y, x1, x2})
}

// HeteroscedasticDataset generates y = 1 + 2·x + ε where the noise scale
// grows with x, so a Breusch-Pagan test should reject homoscedasticity.
// Columns: y, x.
func (g *Generator) HeteroscedasticDataset(n int) dataset.Dataset {
	x := make([]float64, n)
	y := make([]float64, n)
	for i := 0; i < n; i++ {
		x[i] = g.rng.Float64() * 10
		y[i] = 1 + 2*x[i] + g.rng.NormFloat64()*x[i]
	}
	return fromFloats([]string{"y", "x"}, [][]float64{y, x})
}

// CollinearDataset generates predictors with x2 = 2·x1 exactly, producing a
// rank-deficient design matrix. Columns: y, x1, x2.
func (g *Generator) CollinearDataset(n int) dataset.Dataset {
	x1 := make([]float64, n)
	x2 := make([]float64, n)
	y := make([]float64, n)
	for i := 0; i < n; i++ {
		x1[i] = g.rng.Float64() * 10
		x2[i] = 2 * x1[i]
		y[i] = 3 + x1[i] + g.rng.NormFloat64()
	}
	return fromFloats([]string{"y", "x1", "x2"}, [][]float64{y, x1, x2})
}

// WithMissing punches deterministic holes into the named column, replacing
// roughly the given fraction of cells with missing values.
func (g *Generator) WithMissing(ds dataset.Dataset, column string, fraction float64) dataset.Dataset {
	out := ds.Clone()
	col, ok := out.Column(column)
	if !ok {
		return out
	}
	cells := make([]dataset.Value, len(col.Cells))
	copy(cells, col.Cells)
	for i := range cells {
		if g.rng.Float64() < fraction {
			cells[i] = dataset.NewMissingValue()
		}
	}
	out.ReplaceColumn(column, cells)
	return out
}

func fromFloats(names []string, series [][]float64) dataset.Dataset {
	columns := make([]dataset.Column, len(names))
	for i, name := range names {
		cells := make([]dataset.Value, len(series[i]))
		for j, v := range series[i] {
			if math.IsNaN(v) {
				cells[j] = dataset.NewMissingValue()
			} else {
				cells[j] = dataset.NewNumericValue(v)
			}
		}
		columns[i] = dataset.Column{Name: name, Cells: cells}
	}
	ds, err := dataset.FromColumns(columns)
	if err != nil {
		panic(err)
	}
	return ds
}
