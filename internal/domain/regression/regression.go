// Package regression holds the model capability the backtest trains once per
// season, plus the reference ridge implementation.
package regression

import (
	"errors"
	"fmt"
	"math"
	"slices"

	"gonum.org/v1/gonum/mat"
	"gonum.org/v1/gonum/stat"
)

// Model is fit on labelled rows and then scores unlabelled rows.
type Model interface {
	Fit(x mat.Matrix, y []float64) error
	Predict(x mat.Matrix) ([]float64, error)
}

// Factory returns a new, untrained Model on every call.
type Factory func() Model

// Ridge is L2-regularised least squares with an unpenalised intercept.
type Ridge struct {
	Alpha float64

	coef      []float64
	intercept float64
	fitted    bool
}

// NewRidge returns an untrained ridge model.
func NewRidge(alpha float64) *Ridge { return &Ridge{Alpha: alpha} }

// NewRidgeFactory returns a Factory producing fresh ridge models.
func NewRidgeFactory(alpha float64) Factory {
	return func() Model { return NewRidge(alpha) }
}

// Fit centres x and y, then solves (XcᵀXc + αI)β = Xcᵀyc. The intercept is
// ȳ − x̄·β.
func (r *Ridge) Fit(x mat.Matrix, y []float64) error {
	n, p := x.Dims()
	if n == 0 || p == 0 {
		return fmt.Errorf("%w: empty design matrix %dx%d", ErrDimensionMismatch, n, p)
	}
	if n != len(y) {
		return fmt.Errorf("%w: %d rows but %d targets", ErrDimensionMismatch, n, len(y))
	}

	means := make([]float64, p)
	xc := mat.NewDense(n, p, nil)
	for j := 0; j < p; j++ {
		col := mat.Col(nil, j, x)
		means[j] = stat.Mean(col, nil)
		for i := range col {
			col[i] -= means[j]
		}
		xc.SetCol(j, col)
	}

	yMean := stat.Mean(y, nil)
	yc := mat.NewVecDense(n, nil)
	for i, v := range y {
		yc.SetVec(i, v-yMean)
	}

	gram := mat.NewSymDense(p, nil)
	gram.SymOuterK(1, xc.T())
	for j := 0; j < p; j++ {
		gram.SetSym(j, j, gram.At(j, j)+r.Alpha)
	}

	rhs := mat.NewVecDense(p, nil)
	rhs.MulVec(xc.T(), yc)

	beta := mat.NewVecDense(p, nil)
	var chol mat.Cholesky
	if chol.Factorize(gram) {
		if err := chol.SolveVecTo(beta, rhs); err != nil && !usable(err) {
			return fmt.Errorf("%w: %w", ErrSingular, err)
		}
	} else if err := beta.SolveVec(gram, rhs); err != nil && !usable(err) {
		return fmt.Errorf("%w: %w", ErrSingular, err)
	}
	for j := 0; j < p; j++ {
		if v := beta.AtVec(j); math.IsNaN(v) || math.IsInf(v, 0) {
			return fmt.Errorf("%w: coefficient %d is %v", ErrSingular, j, v)
		}
	}

	r.coef = make([]float64, p)
	r.intercept = yMean
	for j := 0; j < p; j++ {
		r.coef[j] = beta.AtVec(j)
		r.intercept -= means[j] * r.coef[j]
	}
	r.fitted = true
	return nil
}

// usable reports an ill-conditioned solve whose result can still be used. An
// infinite condition number means the system is exactly singular.
func usable(err error) bool {
	var cond mat.Condition
	return errors.As(err, &cond) && !math.IsInf(float64(cond), 1)
}

// Predict returns x·β + intercept for each row.
func (r *Ridge) Predict(x mat.Matrix) ([]float64, error) {
	if !r.fitted {
		return nil, ErrNotFitted
	}
	n, p := x.Dims()
	if p != len(r.coef) {
		return nil, fmt.Errorf("%w: model has %d features, input has %d", ErrDimensionMismatch, len(r.coef), p)
	}
	if n == 0 {
		return []float64{}, nil
	}

	out := mat.NewVecDense(n, nil)
	out.MulVec(x, mat.NewVecDense(p, slices.Clone(r.coef)))
	preds := make([]float64, n)
	for i := range preds {
		preds[i] = out.AtVec(i) + r.intercept
	}
	return preds, nil
}

// Coefficients returns a copy of the fitted slopes.
func (r *Ridge) Coefficients() []float64 { return slices.Clone(r.coef) }

// Intercept returns the fitted intercept.
func (r *Ridge) Intercept() float64 { return r.intercept }
