package hyperbolic

import (
	"fmt"
	"math"

	"gonum.org/v1/gonum/diff/fd"
	"gonum.org/v1/gonum/floats"
	"gonum.org/v1/gonum/mat"
)

// InversionConfig configures the numerical inversion of ElementsFromEnergy.
type InversionConfig struct {
	Tolerance     float64 // on the relative residuals of n and et
	MaxIterations int
}

// DefaultInversionConfig returns the inversion settings from the configuration file.
func DefaultInversionConfig() InversionConfig {
	conf := pnConfig()
	return InversionConfig{Tolerance: conf.invTolerance, MaxIterations: conf.invIterations}
}

// InvertMeanMotion returns the energy and angular momentum for which ElementsFromEnergy yields
// the provided mean motion and time eccentricity exactly, rather than to the truncation order of
// the closed form used by ElementsFromMeanMotion.
// The Newton iteration runs on (ln E, ln L) starting from the closed form, with a central
// difference Jacobian.
func InvertMeanMotion(n, et float64, p Projections, sys System, order Order, cfg InversionConfig) (E, L float64, err error) {
	start, err := ElementsFromMeanMotion(n, et, p, sys, order)
	if err != nil {
		return math.NaN(), math.NaN(), err
	}
	residual := func(y, x []float64) {
		el, err := ElementsFromEnergy(math.Exp(x[0]), math.Exp(x[1]), p, sys, order)
		if err != nil {
			y[0], y[1] = math.NaN(), math.NaN()
			return
		}
		y[0] = el.N/n - 1
		y[1] = el.Et/et - 1
	}
	x := []float64{math.Log(start.E), math.Log(start.L)}
	res := make([]float64, 2)
	jacob := mat.NewDense(2, 2, nil)
	for iter := 0; iter < cfg.MaxIterations; iter++ {
		residual(res, x)
		if !isFinite(res...) {
			return math.NaN(), math.NaN(), fmt.Errorf("%w: inversion left the domain at E=%g, L=%g", ErrNumericalDomain, math.Exp(x[0]), math.Exp(x[1]))
		}
		if floats.Norm(res, math.Inf(1)) <= cfg.Tolerance {
			return math.Exp(x[0]), math.Exp(x[1]), nil
		}
		fd.Jacobian(jacob, residual, x, &fd.JacobianSettings{Formula: fd.Central})
		var Δx mat.VecDense
		if err := Δx.SolveVec(jacob, mat.NewVecDense(2, res)); err != nil {
			return math.NaN(), math.NaN(), fmt.Errorf("%w: singular jacobian at iteration %d: %v", ErrNoConvergence, iter, err)
		}
		x[0] -= Δx.AtVec(0)
		x[1] -= Δx.AtVec(1)
	}
	return math.NaN(), math.NaN(), fmt.Errorf("%w after %d iterations (n=%g, et=%g)", ErrNoConvergence, cfg.MaxIterations, n, et)
}
