package regression

import (
	"fmt"

	"gonum.org/v1/gonum/mat"
	"gonum.org/v1/gonum/stat/distuv"
)

// Multicollinearity warning threshold on the design matrix condition number.
// Strictly above fires the warning; exactly at the boundary does not.
const conditionNumberThreshold = 30.0

// CheckResult is the outcome of one diagnostic check. A non-nil Err means
// the check could not run and its warning was suppressed, which is
// distinguishable from a clean pass (empty Warning, nil Err).
type CheckResult struct {
	Name    string
	Warning string
	Err     error
}

// Diagnose runs the post-fit checks against the design matrix and residuals,
// in a fixed order. Checks never fail the fit.
func Diagnose(X *mat.Dense, resid []float64, nPredictors int) []CheckResult {
	return []CheckResult{
		checkMulticollinearity(X),
		checkHeteroscedasticity(X, resid, nPredictors),
	}
}

// checkMulticollinearity computes the condition number of the design matrix,
// the ratio of its largest to smallest singular values.
func checkMulticollinearity(X *mat.Dense) CheckResult {
	result := CheckResult{Name: "multicollinearity"}

	var svd mat.SVD
	if !svd.Factorize(X, mat.SVDNone) {
		result.Err = fmt.Errorf("svd factorization failed")
		return result
	}
	values := svd.Values(nil)
	smax := values[0]
	smin := values[len(values)-1]
	if smin == 0 {
		result.Err = fmt.Errorf("condition number undefined: zero singular value")
		return result
	}

	cond := smax / smin
	if cond > conditionNumberThreshold {
		result.Warning = fmt.Sprintf(
			"High multicollinearity detected (Condition Number: %.1f). Results may be unreliable.", cond)
	}
	return result
}

// checkHeteroscedasticity runs the Breusch-Pagan procedure: regress squared
// residuals on the original design, form n·R²_aux, and compare against
// chi-square with one degree of freedom per non-intercept predictor.
func checkHeteroscedasticity(X *mat.Dense, resid []float64, nPredictors int) CheckResult {
	result := CheckResult{Name: "heteroscedasticity"}

	n := len(resid)
	sq := make([]float64, n)
	for i, e := range resid {
		sq[i] = e * e
	}

	_, _, auxSSR, _, err := leastSquares(X, mat.NewVecDense(n, sq))
	if err != nil {
		result.Err = err
		return result
	}

	auxSST := totalSumSquares(sq)
	auxR2 := 0.0
	if auxSST > 0 {
		auxR2 = 1 - auxSSR/auxSST
	}

	lm := float64(n) * auxR2
	chiDist := distuv.ChiSquared{K: float64(nPredictors)}
	pValue := 1 - chiDist.CDF(lm)

	if pValue < 0.05 {
		result.Warning = "Heteroscedasticity detected (Breusch-Pagan test p < 0.05). Consider using robust standard errors."
	}
	return result
}
