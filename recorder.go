package hyperbolic

import (
	"fmt"

	"gonum.org/v1/gonum/interp"
	"gonum.org/v1/gonum/spatial/r3"
)

// Recorder is the append-only log of the quantities evaluated by the equations of motion at every call.
// The integrator only returns the state at the output times, so these logs are later interpolated
// onto the output grid. A Recorder is owned by a single propagation and must not be read while it
// is being written to.
type Recorder struct {
	T, E, L, U, Dphi []float64
	Dk               []r3.Vec
}

// NewRecorder returns a Recorder with the provided preallocated capacity.
func NewRecorder(capacity int) *Recorder {
	return &Recorder{
		T:    make([]float64, 0, capacity),
		E:    make([]float64, 0, capacity),
		L:    make([]float64, 0, capacity),
		U:    make([]float64, 0, capacity),
		Dphi: make([]float64, 0, capacity),
		Dk:   make([]r3.Vec, 0, capacity),
	}
}

func (r *Recorder) record(t, E, L, u float64, dk r3.Vec, dphi float64) {
	r.T = append(r.T, t)
	r.E = append(r.E, E)
	r.L = append(r.L, L)
	r.U = append(r.U, u)
	r.Dk = append(r.Dk, dk)
	r.Dphi = append(r.Dphi, dphi)
}

// Len returns the number of recorded evaluations.
func (r *Recorder) Len() int {
	return len(r.T)
}

// LogInterpolator predicts the recorded quantities at arbitrary times.
// Outside of the recorded time span, the first or last value is returned.
type LogInterpolator struct {
	E, L, U, Dphi interp.Predictor
	dkX, dkY, dkZ interp.Predictor
	TMin, TMax    float64
	Duplicates    int // number of entries dropped because they repeated a time
	Points        int // number of distinct times
}

// Dk returns the interpolated precession rate of the orbital angular momentum direction.
func (li *LogInterpolator) Dk(t float64) r3.Vec {
	return r3.Vec{X: li.dkX.Predict(t), Y: li.dkY.Predict(t), Z: li.dkZ.Predict(t)}
}

// Interpolator checks that the log times never decrease and returns the piecewise linear
// interpolation of every log. Consecutive entries with equal times keep the last one.
func (r *Recorder) Interpolator() (*LogInterpolator, error) {
	if r.Len() == 0 {
		return nil, fmt.Errorf("%w: empty recorder", ErrNumericalDomain)
	}
	keep := make([]int, 0, r.Len())
	for i, t := range r.T {
		if i > 0 {
			prev := r.T[i-1]
			if t < prev {
				return nil, fmt.Errorf("%w: t[%d]=%g after t[%d]=%g", ErrNonMonotonicLog, i, t, i-1, prev)
			}
			if t == prev {
				keep[len(keep)-1] = i
				continue
			}
		}
		keep = append(keep, i)
	}
	li := &LogInterpolator{TMin: r.T[keep[0]], TMax: r.T[keep[len(keep)-1]], Duplicates: r.Len() - len(keep), Points: len(keep)}
	column := func(get func(i int) float64) interp.Predictor {
		if len(keep) == 1 {
			return interp.Constant(get(keep[0]))
		}
		xs := make([]float64, len(keep))
		ys := make([]float64, len(keep))
		for j, i := range keep {
			xs[j] = r.T[i]
			ys[j] = get(i)
		}
		var pl interp.PiecewiseLinear
		// Fit only errors on malformed input, which was excluded above.
		_ = pl.Fit(xs, ys)
		return pl
	}
	li.E = column(func(i int) float64 { return r.E[i] })
	li.L = column(func(i int) float64 { return r.L[i] })
	li.U = column(func(i int) float64 { return r.U[i] })
	li.Dphi = column(func(i int) float64 { return r.Dphi[i] })
	li.dkX = column(func(i int) float64 { return r.Dk[i].X })
	li.dkY = column(func(i int) float64 { return r.Dk[i].Y })
	li.dkZ = column(func(i int) float64 { return r.Dk[i].Z })
	return li, nil
}
