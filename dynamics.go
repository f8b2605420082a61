package hyperbolic

import (
	"fmt"
	"math"

	"gonum.org/v1/gonum/spatial/r3"
)

// State is the integrated state of the encounter.
// The reduced (non-spinning) system only integrates (n, et, φ): K is always ẑ and both spins are zero.
type State struct {
	N, Et  float64 // mean motion and time eccentricity
	K      r3.Vec  // orbital angular momentum direction
	S1, S2 r3.Vec  // spin directions
	Phi    float64 // unwrapped orbital phase
}

func (s State) add(o State) State {
	return State{
		N:   s.N + o.N,
		Et:  s.Et + o.Et,
		K:   r3.Add(s.K, o.K),
		S1:  r3.Add(s.S1, o.S1),
		S2:  r3.Add(s.S2, o.S2),
		Phi: s.Phi + o.Phi,
	}
}

func (s State) slice(spinning bool) []float64 {
	if !spinning {
		return []float64{s.N, s.Et, s.Phi}
	}
	return []float64{s.N, s.Et, s.K.X, s.K.Y, s.K.Z, s.S1.X, s.S1.Y, s.S1.Z, s.S2.X, s.S2.Y, s.S2.Z, s.Phi}
}

func stateFromSlice(v []float64, spinning bool) State {
	if !spinning {
		return State{N: v[0], Et: v[1], K: zHat, Phi: v[2]}
	}
	return State{
		N:   v[0],
		Et:  v[1],
		K:   r3.Vec{X: v[2], Y: v[3], Z: v[4]},
		S1:  r3.Vec{X: v[5], Y: v[6], Z: v[7]},
		S2:  r3.Vec{X: v[8], Y: v[9], Z: v[10]},
		Phi: v[11],
	}
}

// Dynamics is the right hand side of the orbital differential system.
type Dynamics struct {
	System     System
	Order      Order
	T0         float64 // periastron passage, where the mean anomaly vanishes
	Spinning   bool    // integrate the precession of k, s1 and s2
	AnalyticEL bool    // (E, L) from the closed form, else from InvertMeanMotion
	Inversion  InversionConfig
	Perts      Perturbations
}

// orientation returns the normalized directions of the state and the spin-orbit projections.
// A spin is forced to zero when its magnitude is zero.
func (d *Dynamics) orientation(y State) (k, s1, s2 r3.Vec, p Projections, err error) {
	if !d.Spinning {
		return zHat, r3.Vec{}, r3.Vec{}, Projections{}, nil
	}
	k = unit(y.K)
	if k == (r3.Vec{}) {
		return k, s1, s2, p, fmt.Errorf("%w: vanishing angular momentum direction", ErrNumericalDomain)
	}
	s1 = spinDirection(d.System.S1, y.S1)
	s2 = spinDirection(d.System.S2, y.S2)
	p = Projections{KdS1: r3.Dot(k, s1), KdS2: r3.Dot(k, s2)}
	return
}

// elements returns the instantaneous elements at the integrated (n, et).
func (d *Dynamics) elements(n, et float64, p Projections) (Elements, error) {
	if d.AnalyticEL {
		return ElementsFromMeanMotion(n, et, p, d.System, d.Order)
	}
	E, L, err := InvertMeanMotion(n, et, p, d.System, d.Order, d.Inversion)
	if err != nil {
		return Elements{}, err
	}
	el, err := ElementsFromEnergy(E, L, p, d.System, d.Order)
	el.N, el.Et = n, et
	return el, err
}

// Derivative returns the time derivative of the state at t, and appends the evaluated
// quantities to the recorder.
func (d *Dynamics) Derivative(t float64, y State, rec *Recorder) (State, error) {
	k, s1, s2, p, err := d.orientation(y)
	if err != nil {
		return State{}, err
	}
	el, err := d.elements(y.N, y.Et, p)
	if err != nil {
		return State{}, err
	}
	u, _, err := anomalies(y.N*(t-d.T0), el)
	if err != nil {
		return State{}, err
	}
	r := el.Ar * (el.Er*math.Cosh(u) - 1)
	if !(r > 0) {
		return State{}, fmt.Errorf("%w: r=%g at u=%g", ErrNumericalDomain, r, u)
	}

	var dy State
	var dα float64
	if d.Spinning {
		prec := NewPrecession(r, el.E, el.L, d.System, d.Order)
		dy.K, dy.S1, dy.S2 = prec.Rates(k, s1, s2, d.System, el.L)
		dα = nodeRate(k, dy.K)
	}
	r2 := r * r
	dy.Phi = el.D2/r2 + el.D3/(r2*r) + el.D4/(r2*r2) + el.D5/(r2*r2*r) - dα*k.Z
	dy = dy.add(d.Perts.Perturb(t, y, u, d.System.Eta))

	if !isFinite(dy.slice(true)...) {
		return State{}, fmt.Errorf("%w: non finite derivative %+v", ErrNumericalDomain, dy)
	}
	if rec != nil {
		rec.record(t, el.E, el.L, u, dy.K, dy.Phi)
	}
	return dy, nil
}

// anomalies solves the Kepler equation with the PN time corrections at mean anomaly l.
// The first pass ignores them and only serves to evaluate the true anomaly they depend on.
func anomalies(l float64, el Elements) (u, ν float64, err error) {
	u1, err := eccentricAnomaly(el.Et, l)
	if err != nil {
		return math.NaN(), math.NaN(), err
	}
	ν1 := trueAnomaly(u1, el.Ephi)
	u, err = eccentricAnomaly(el.Et, l-(el.F4t+el.F5t)*ν1-(el.G4t+el.G5t)*math.Sin(ν1))
	if err != nil {
		return math.NaN(), math.NaN(), err
	}
	return u, trueAnomaly(u, el.Ephi), nil
}

// nodeRate returns the rate of the node angle α of the orbital plane, zero when k is along z.
func nodeRate(k, dk r3.Vec) float64 {
	ρ2 := k.X*k.X + k.Y*k.Y
	if ρ2 == 0 {
		return 0
	}
	return (k.X*dk.Y - dk.X*k.Y) / ρ2
}

// inclinationRate returns dι/dt, zero when k is along z.
func inclinationRate(k, dk r3.Vec) float64 {
	sι := math.Sqrt(1 - k.Z*k.Z)
	if sι == 0 || math.IsNaN(sι) {
		return 0
	}
	return -dk.Z / sι
}
