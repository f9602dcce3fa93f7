// Package descriptive computes moment statistics and outlier counts for
// dataset variables.
package descriptive

import (
	"encoding/json"
	"math"
	"sort"

	"github.com/montanaflynn/stats"
	"golang.org/x/sync/errgroup"

	"olstudio/adapters/coercer"
	"olstudio/domain/dataset"
)

// Record holds the descriptive statistics for one variable. Field names are
// part of the external JSON contract.
type Record struct {
	Mean          float64 `json:"mean"`
	Median        float64 `json:"median"`
	StdDev        float64 `json:"std_dev"`
	Min           float64 `json:"min"`
	Max           float64 `json:"max"`
	Skewness      float64 `json:"skewness"`
	Kurtosis      float64 `json:"kurtosis"`
	OutliersCount int     `json:"outliers_count"`
}

// MarshalJSON renders non-finite statistics as null. The sample standard
// deviation is NaN at n=1 and skewness/kurtosis are NaN below their minimum
// sample sizes; encoding/json refuses raw NaN.
func (r Record) MarshalJSON() ([]byte, error) {
	type jsonRecord struct {
		Mean          jsonNumber `json:"mean"`
		Median        jsonNumber `json:"median"`
		StdDev        jsonNumber `json:"std_dev"`
		Min           jsonNumber `json:"min"`
		Max           jsonNumber `json:"max"`
		Skewness      jsonNumber `json:"skewness"`
		Kurtosis      jsonNumber `json:"kurtosis"`
		OutliersCount int        `json:"outliers_count"`
	}
	return json.Marshal(jsonRecord{
		Mean:          jsonNumber(r.Mean),
		Median:        jsonNumber(r.Median),
		StdDev:        jsonNumber(r.StdDev),
		Min:           jsonNumber(r.Min),
		Max:           jsonNumber(r.Max),
		Skewness:      jsonNumber(r.Skewness),
		Kurtosis:      jsonNumber(r.Kurtosis),
		OutliersCount: r.OutliersCount,
	})
}

type jsonNumber float64

func (f jsonNumber) MarshalJSON() ([]byte, error) {
	v := float64(f)
	if math.IsNaN(v) || math.IsInf(v, 0) {
		return []byte("null"), nil
	}
	return json.Marshal(v)
}

// Compute returns a Record per requested variable. Variables are processed
// independently and concurrently; a variable absent from the dataset, or
// empty after coercion, is omitted from the result rather than reported as
// zeros or an error.
func Compute(ds dataset.Dataset, variables []string) (map[string]Record, error) {
	records := make([]*Record, len(variables))

	var g errgroup.Group
	for i, name := range variables {
		i, name := i, name
		g.Go(func() error {
			col, ok := ds.Column(name)
			if !ok {
				return nil
			}
			series := coercer.Drop(coercer.Coerce(col.Cells))
			if len(series) == 0 {
				return nil
			}
			rec, err := computeRecord(series)
			if err != nil {
				return err
			}
			records[i] = rec
			return nil
		})
	}
	if err := g.Wait(); err != nil {
		return nil, err
	}

	result := make(map[string]Record)
	for i, rec := range records {
		if rec != nil {
			result[variables[i]] = *rec
		}
	}
	return result, nil
}

func computeRecord(series []float64) (*Record, error) {
	mean, err := stats.Mean(series)
	if err != nil {
		return nil, err
	}
	median, err := stats.Median(series)
	if err != nil {
		return nil, err
	}
	min, err := stats.Min(series)
	if err != nil {
		return nil, err
	}
	max, err := stats.Max(series)
	if err != nil {
		return nil, err
	}
	stdDev, err := stats.StandardDeviationSample(series)
	if err != nil {
		return nil, err
	}

	return &Record{
		Mean:          mean,
		Median:        median,
		StdDev:        stdDev,
		Min:           min,
		Max:           max,
		Skewness:      sampleSkewness(series, mean),
		Kurtosis:      sampleExcessKurtosis(series, mean),
		OutliersCount: countOutliers(series),
	}, nil
}

// countOutliers applies the Tukey rule: values strictly outside
// [Q1−1.5·IQR, Q3+1.5·IQR], with quartiles from linear interpolation
// between order statistics.
func countOutliers(series []float64) int {
	sorted := make([]float64, len(series))
	copy(sorted, series)
	sort.Float64s(sorted)

	q1 := quantile(sorted, 0.25)
	q3 := quantile(sorted, 0.75)
	iqr := q3 - q1
	lower := q1 - 1.5*iqr
	upper := q3 + 1.5*iqr

	count := 0
	for _, v := range series {
		if v < lower || v > upper {
			count++
		}
	}
	return count
}

// quantile computes the q-th empirical quantile of a sorted series by
// linear interpolation between adjacent order statistics.
func quantile(sorted []float64, q float64) float64 {
	n := len(sorted)
	if n == 1 {
		return sorted[0]
	}
	h := q * float64(n-1)
	lo := int(math.Floor(h))
	hi := lo + 1
	if hi >= n {
		return sorted[n-1]
	}
	return sorted[lo] + (h-float64(lo))*(sorted[hi]-sorted[lo])
}

// sampleSkewness computes bias-adjusted Fisher skewness,
// G1 = sqrt(n(n-1))/(n-2) · m3/m2^1.5. Undefined below n=3 or for a
// constant series.
func sampleSkewness(series []float64, mean float64) float64 {
	n := float64(len(series))
	if n < 3 {
		return math.NaN()
	}

	var m2, m3 float64
	for _, x := range series {
		d := x - mean
		m2 += d * d
		m3 += d * d * d
	}
	m2 /= n
	m3 /= n
	if m2 == 0 {
		return math.NaN()
	}

	g1 := m3 / math.Pow(m2, 1.5)
	return math.Sqrt(n*(n-1)) / (n - 2) * g1
}

// sampleExcessKurtosis computes bias-adjusted excess kurtosis,
// G2 = (n-1)/((n-2)(n-3)) · ((n+1)·g2 + 6) with g2 = m4/m2² − 3.
// Undefined below n=4 or for a constant series.
func sampleExcessKurtosis(series []float64, mean float64) float64 {
	n := float64(len(series))
	if n < 4 {
		return math.NaN()
	}

	var m2, m4 float64
	for _, x := range series {
		d := x - mean
		m2 += d * d
		m4 += d * d * d * d
	}
	m2 /= n
	m4 /= n
	if m2 == 0 {
		return math.NaN()
	}

	g2 := m4/(m2*m2) - 3
	return (n - 1) / ((n - 2) * (n - 3)) * ((n+1)*g2 + 6)
}
