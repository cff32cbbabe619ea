package estimator

import (
	"errors"
	"fmt"

	"route-traffic-api/features"

	"gonum.org/v1/gonum/mat"
	"gonum.org/v1/gonum/stat"
)

// FitLinear fits a ridge regression with an unpenalized intercept by solving
// (XᵀX + λI)β = Xᵀy with a Cholesky factorization.
func FitLinear(rows [][]float64, labels []float64, lambda float64) (*Linear, error) {
	n := len(rows)
	if n == 0 {
		return nil, errors.New("no training rows")
	}
	if len(labels) != n {
		return nil, fmt.Errorf("%d rows but %d labels", n, len(labels))
	}
	if lambda < 0 {
		return nil, fmt.Errorf("negative ridge penalty %v", lambda)
	}
	p := len(rows[0]) + 1

	design := mat.NewDense(n, p, nil)
	for i, row := range rows {
		if len(row)+1 != p {
			return nil, fmt.Errorf("row %d has %d values, want %d", i, len(row), p-1)
		}
		design.Set(i, 0, 1)
		for j, v := range row {
			design.Set(i, j+1, v)
		}
	}

	var gram mat.SymDense
	gram.SymOuterK(1, design.T())
	for j := 1; j < p; j++ {
		gram.SetSym(j, j, gram.At(j, j)+lambda)
	}

	var rhs mat.VecDense
	rhs.MulVec(design.T(), mat.NewVecDense(n, labels))

	var chol mat.Cholesky
	if ok := chol.Factorize(&gram); !ok {
		return nil, errors.New("normal equations are not positive definite, increase the ridge penalty")
	}
	var beta mat.VecDense
	if err := chol.SolveVecTo(&beta, &rhs); err != nil {
		var cond mat.Condition
		if !errors.As(err, &cond) {
			return nil, fmt.Errorf("solve normal equations: %w", err)
		}
		// ill-conditioned but solved; the holdout score shows the damage
	}

	coef := make([]float64, p-1)
	for j := range coef {
		coef[j] = beta.AtVec(j + 1)
	}
	return &Linear{Intercept: beta.AtVec(0), Coefficients: coef}, nil
}

// FitBaseline fits a linear model on Schema-ordered rows and wraps it as an artifact.
func FitBaseline(rows [][]float64, labels []float64, lambda float64, version string) (*Artifact, error) {
	for i, row := range rows {
		if len(row) != features.NumFeatures() {
			return nil, fmt.Errorf("row %d has %d values, schema has %d", i, len(row), features.NumFeatures())
		}
	}
	model, err := FitLinear(rows, labels, lambda)
	if err != nil {
		return nil, err
	}
	return &Artifact{
		Kind:         KindLinear,
		Version:      version,
		Features:     features.Schema(),
		Intercept:    model.Intercept,
		Coefficients: model.Coefficients,
	}, nil
}

// Score returns the coefficient of determination of model on rows.
func Score(model Regressor, rows [][]float64, labels []float64) (float64, error) {
	if len(rows) == 0 || len(rows) != len(labels) {
		return 0, errors.New("score needs matching non-empty rows and labels")
	}
	estimates := make([]float64, len(rows))
	for i, row := range rows {
		y, err := model.Predict(row)
		if err != nil {
			return 0, err
		}
		estimates[i] = y
	}
	return stat.RSquaredFrom(estimates, labels, nil), nil
}
