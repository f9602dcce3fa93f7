// Package regression fits ordinary-least-squares models and runs post-fit
// diagnostics.
package regression

import (
	"encoding/json"
	"errors"
	"math"

	"gonum.org/v1/gonum/mat"
	"gonum.org/v1/gonum/stat/distuv"

	"olstudio/adapters/coercer"
	"olstudio/domain/core"
	"olstudio/domain/dataset"
)

// InterceptTerm is the coefficient key for the always-included intercept.
// The name is part of the external contract.
const InterceptTerm = "const"

// Relative tolerance on the R diagonal below which the design matrix is
// treated as rank deficient.
const rankTolerance = 1e-10

// Coefficient holds the inferential statistics for one model term
type Coefficient struct {
	Coefficient float64 `json:"coefficient"`
	StdError    float64 `json:"std_error"`
	TStatistic  float64 `json:"t_statistic"`
	PValue      float64 `json:"p_value"`
}

// Model is an immutable fitted regression. Field names are part of the
// external JSON contract.
type Model struct {
	ModelName    string                 `json:"model_name"`
	Coefficients map[string]Coefficient `json:"coefficients"`
	RSquared     float64                `json:"r_squared"`
	AdjRSquared  float64                `json:"adj_r_squared"`
	FStatistic   float64                `json:"f_statistic"`
	FPValue      float64                `json:"f_p_value"`
	Warnings     []string               `json:"warnings"`
}

// Fit aligns the variables, builds the intercept-first design matrix, solves
// by QR least squares, and attaches coefficient-level inference plus
// diagnostic warnings.
func Fit(ds dataset.Dataset, dependent string, independents []string, modelName string) (*Model, error) {
	if len(independents) == 0 {
		return nil, core.ErrNoPredictors
	}
	depCol, ok := ds.Column(dependent)
	if !ok {
		return nil, core.NewVariableNotFoundError(dependent)
	}
	indepCols := make([]dataset.Column, len(independents))
	for i, name := range independents {
		col, ok := ds.Column(name)
		if !ok {
			return nil, core.NewVariableNotFoundError(name)
		}
		indepCols[i] = col
	}

	// Coerce every variable independently, then keep only rows valid across
	// the dependent and all independents (the intersection of the per-series
	// surviving row sets).
	depSeries := coercer.CoerceColumn(depCol)
	indepSeries := make([][]float64, len(indepCols))
	for i, col := range indepCols {
		indepSeries[i] = coercer.CoerceColumn(col)
	}

	rows := make([]int, 0, len(depSeries))
	for pos := range depSeries {
		if math.IsNaN(depSeries[pos]) {
			continue
		}
		valid := true
		for _, series := range indepSeries {
			if math.IsNaN(series[pos]) {
				valid = false
				break
			}
		}
		if valid {
			rows = append(rows, pos)
		}
	}

	n := len(rows)
	p := len(independents) + 1
	if n <= p {
		return nil, core.NewInsufficientDataError(n, p)
	}

	yData := make([]float64, n)
	xData := make([]float64, n*p)
	for i, pos := range rows {
		yData[i] = depSeries[pos]
		xData[i*p] = 1.0
		for j, series := range indepSeries {
			xData[i*p+j+1] = series[pos]
		}
	}
	X := mat.NewDense(n, p, xData)
	y := mat.NewVecDense(n, yData)

	beta, resid, ssr, xtxInv, err := leastSquares(X, y)
	if err != nil {
		return nil, err
	}

	dof := float64(n - p)
	sigma2 := ssr / dof
	tDist := distuv.StudentsT{Mu: 0, Sigma: 1, Nu: dof}

	terms := append([]string{InterceptTerm}, independents...)
	coefficients := make(map[string]Coefficient, p)
	for j, term := range terms {
		b := beta.AtVec(j)
		se := math.Sqrt(sigma2 * xtxInv.At(j, j))
		t := b / se
		coefficients[term] = Coefficient{
			Coefficient: b,
			StdError:    se,
			TStatistic:  t,
			PValue:      2 * (1 - tDist.CDF(math.Abs(t))),
		}
	}

	sst := totalSumSquares(yData)
	r2 := 1 - ssr/sst
	fStat := ((sst - ssr) / float64(p-1)) / (ssr / dof)
	fDist := distuv.F{D1: float64(p - 1), D2: dof}

	model := &Model{
		ModelName:    modelName,
		Coefficients: coefficients,
		RSquared:     r2,
		AdjRSquared:  adjRSquared(r2, n, p),
		FStatistic:   fStat,
		FPValue:      1 - fDist.CDF(fStat),
		Warnings:     []string{},
	}

	// Diagnostics are advisory: a check that failed numerically is
	// suppressed, never propagated.
	for _, check := range Diagnose(X, resid, len(independents)) {
		if check.Err == nil && check.Warning != "" {
			model.Warnings = append(model.Warnings, check.Warning)
		}
	}

	return model, nil
}

// leastSquares solves min ‖y − Xβ‖ via QR and returns the solution, the
// residuals, the residual sum of squares and (XᵀX)⁻¹ recovered from the R
// factor. Rank deficiency surfaces as ErrSingularMatrix; callers never see
// undefined coefficients.
func leastSquares(X *mat.Dense, y *mat.VecDense) (*mat.VecDense, []float64, float64, *mat.Dense, error) {
	n, p := X.Dims()

	var qr mat.QR
	qr.Factorize(X)
	var r mat.Dense
	qr.RTo(&r)

	maxDiag := 0.0
	minDiag := math.Inf(1)
	for i := 0; i < p; i++ {
		d := math.Abs(r.At(i, i))
		maxDiag = math.Max(maxDiag, d)
		minDiag = math.Min(minDiag, d)
	}
	if maxDiag == 0 || minDiag <= maxDiag*rankTolerance {
		return nil, nil, 0, nil, core.ErrSingularMatrix
	}

	var beta mat.VecDense
	if err := qr.SolveVecTo(&beta, false, y); err != nil && !isConditionWarning(err) {
		return nil, nil, 0, nil, core.ErrSingularMatrix
	}

	var fitted mat.VecDense
	fitted.MulVec(X, &beta)
	resid := make([]float64, n)
	ssr := 0.0
	for i := 0; i < n; i++ {
		resid[i] = y.AtVec(i) - fitted.AtVec(i)
		ssr += resid[i] * resid[i]
	}

	// (XᵀX)⁻¹ = R⁻¹·R⁻ᵀ using the leading p×p triangle of R.
	var rInv mat.Dense
	if err := rInv.Inverse(r.Slice(0, p, 0, p)); err != nil && !isConditionWarning(err) {
		return nil, nil, 0, nil, core.ErrSingularMatrix
	}
	var xtxInv mat.Dense
	xtxInv.Mul(&rInv, rInv.T())

	return &beta, resid, ssr, &xtxInv, nil
}

// isConditionWarning reports whether the error is gonum's ill-conditioning
// notice, which still carries a computed result. Rank deficiency is caught
// separately on the R diagonal.
func isConditionWarning(err error) bool {
	var cond mat.Condition
	return errors.As(err, &cond)
}

func totalSumSquares(y []float64) float64 {
	mean := 0.0
	for _, v := range y {
		mean += v
	}
	mean /= float64(len(y))

	sst := 0.0
	for _, v := range y {
		d := v - mean
		sst += d * d
	}
	return sst
}

// adjRSquared penalizes R² by the residual degrees of freedom; p counts the
// intercept column.
func adjRSquared(r2 float64, n, p int) float64 {
	return 1 - (1-r2)*float64(n-1)/float64(n-p)
}

// MarshalJSON renders non-finite statistics as null (a perfect fit yields
// infinite t statistics, which encoding/json refuses).
func (m Model) MarshalJSON() ([]byte, error) {
	coefficients := make(map[string]jsonCoefficient, len(m.Coefficients))
	for term, c := range m.Coefficients {
		coefficients[term] = jsonCoefficient{
			Coefficient: jsonNumber(c.Coefficient),
			StdError:    jsonNumber(c.StdError),
			TStatistic:  jsonNumber(c.TStatistic),
			PValue:      jsonNumber(c.PValue),
		}
	}
	type jsonModel struct {
		ModelName    string                     `json:"model_name"`
		Coefficients map[string]jsonCoefficient `json:"coefficients"`
		RSquared     jsonNumber                 `json:"r_squared"`
		AdjRSquared  jsonNumber                 `json:"adj_r_squared"`
		FStatistic   jsonNumber                 `json:"f_statistic"`
		FPValue      jsonNumber                 `json:"f_p_value"`
		Warnings     []string                   `json:"warnings"`
	}
	return json.Marshal(jsonModel{
		ModelName:    m.ModelName,
		Coefficients: coefficients,
		RSquared:     jsonNumber(m.RSquared),
		AdjRSquared:  jsonNumber(m.AdjRSquared),
		FStatistic:   jsonNumber(m.FStatistic),
		FPValue:      jsonNumber(m.FPValue),
		Warnings:     m.Warnings,
	})
}

type jsonCoefficient struct {
	Coefficient jsonNumber `json:"coefficient"`
	StdError    jsonNumber `json:"std_error"`
	TStatistic  jsonNumber `json:"t_statistic"`
	PValue      jsonNumber `json:"p_value"`
}

type jsonNumber float64

func (f jsonNumber) MarshalJSON() ([]byte, error) {
	v := float64(f)
	if math.IsNaN(v) || math.IsInf(v, 0) {
		return []byte("null"), nil
	}
	return json.Marshal(v)
}
