package hyperbolic

import (
	"fmt"
	"math"

	"gonum.org/v1/gonum/interp"
	"gonum.org/v1/gonum/spatial/r3"
)

// Trajectory is the reconstructed orbital motion at every output time.
type Trajectory struct {
	T     []float64
	N, Et []float64 // integrated mean motion and time eccentricity
	// Elements are recomputed from the interpolated (E, L) at each output time.
	Elements []Elements
	Proj     []Projections
	U, Nu    []float64
	R, Dr    []float64
	Phi      []float64
	Dphi     []float64
	NHat     []r3.Vec // unit separation
	K        []r3.Vec // orbital angular momentum direction
	Xi       []r3.Vec // K × NHat
	S1, S2   []r3.Vec
	V        []r3.Vec // relative velocity

	System   System
	Order    Order
	Spinning bool
}

func newTrajectory(size int, sys System, order Order, spinning bool) *Trajectory {
	return &Trajectory{
		T:        make([]float64, size),
		N:        make([]float64, size),
		Et:       make([]float64, size),
		Elements: make([]Elements, size),
		Proj:     make([]Projections, size),
		U:        make([]float64, size),
		Nu:       make([]float64, size),
		R:        make([]float64, size),
		Dr:       make([]float64, size),
		Phi:      make([]float64, size),
		Dphi:     make([]float64, size),
		NHat:     make([]r3.Vec, size),
		K:        make([]r3.Vec, size),
		Xi:       make([]r3.Vec, size),
		S1:       make([]r3.Vec, size),
		S2:       make([]r3.Vec, size),
		V:        make([]r3.Vec, size),
		System:   sys,
		Order:    order,
		Spinning: spinning,
	}
}

// Len returns the number of samples.
func (tr *Trajectory) Len() int {
	return len(tr.T)
}

// Sample returns the ADM kinematics of the i-th sample.
func (tr *Trajectory) Sample(i int) KinematicSample {
	return KinematicSample{R: tr.R[i], Dr: tr.Dr[i], N: tr.NHat[i], V: tr.V[i], S1: tr.S1[i], S2: tr.S2[i]}
}

// Harmonic returns every sample in harmonic coordinates.
func (tr *Trajectory) Harmonic() []KinematicSample {
	samples := make([]KinematicSample, tr.Len())
	for i := range samples {
		samples[i] = ToHarmonic(tr.Sample(i), tr.System, tr.Order)
	}
	return samples
}

// phaseCoefficients returns the periastron advance K and the oscillating terms of the
// analytic phase φ = φ0 + K(ν + f4φ sin 2ν + g4φ sin 3ν) of the reduced system.
func phaseCoefficients(E, L, η float64, g gates) (K, f4φ, g4φ float64) {
	L2 := L * L
	L4 := L2 * L2
	eL := 1 + 2*E*L2
	K = 1 + g.pn1*3/L2 - 0.25*g.pn2*3*(-35-10*E*L2+10*η+4*E*L2*η)/L4
	f4φ = -g.pn2 * eL * η * (3*η - 1) / (8 * L4)
	g4φ = -g.pn2 * 3 * math.Pow(eL, 1.5) * η * η / (32 * L4)
	return
}

// anomalyRates returns dν/du and dt/du.
func anomalyRates(u, ν float64, el Elements) (dνdu, dtdu float64) {
	ratio := (el.Ephi + 1) / (el.Ephi - 1)
	ch, sh := math.Cosh(u/2), math.Sinh(u/2)
	dνdu = math.Sqrt(ratio) / (ch*ch + ratio*sh*sh)
	dtdu = (el.Et*math.Cosh(u) - 1 + (el.F4t+el.F5t+math.Cos(ν)*(el.G4t+el.G5t))*dνdu) / el.N
	return
}

// reconstruct computes the orbital motion at the output times from the integrated states and
// the interpolated evaluation logs, analytically rather than by differentiation.
func (d *Dynamics) reconstruct(times []float64, states []State, li *LogInterpolator, φ0 float64) (*Trajectory, error) {
	tr := newTrajectory(len(times), d.System, d.Order, d.Spinning)
	g := d.Order.gates()

	// The integrated phase is shifted so that φ(t0) = φ0. When k starts along z, the node is
	// taken along the initial precession and φ is shifted by that node angle, so that n̂ stays
	// continuous and n̂(t0) is R3(φ0)x̂ up to the motion of k.
	var φShift, α float64
	if d.Spinning {
		φShift = φ0 - phaseAt(d.T0, times, states)
		if k0 := unit(states[0].K); k0.X == 0 && k0.Y == 0 {
			_, α = orbitalFrame(k0, li.Dk(times[0]), 0)
			φShift -= α
		}
	}

	for i, t := range times {
		y := states[i]
		k, s1, s2, p, err := d.orientation(y)
		if err != nil {
			return nil, fmt.Errorf("t=%g: %w", t, err)
		}
		E, L := li.E.Predict(t), li.L.Predict(t)
		el, err := ElementsFromEnergy(E, L, p, d.System, d.Order)
		if err != nil {
			return nil, fmt.Errorf("t=%g: %w", t, err)
		}
		// The Kepler equation uses the integrated n and et.
		kep := el
		kep.N, kep.Et = y.N, y.Et
		u, ν, err := anomalies(y.N*(t-d.T0), kep)
		if err != nil {
			return nil, fmt.Errorf("t=%g: %w", t, err)
		}
		r := el.Ar * (el.Er*math.Cosh(u) - 1)
		dνdu, dtdu := anomalyRates(u, ν, kep)
		dr := el.Ar * el.Er * math.Sinh(u) / dtdu

		var φ, dφ float64
		var nHat, ξ, v r3.Vec
		if d.Spinning {
			φ = y.Phi + φShift
			dφ = li.Dphi.Predict(t)
			dk := li.Dk(t)
			var ι float64
			ι, α = orbitalFrame(k, dk, α)
			nHat = Rot313Vec(-φ, -ι, -α, r3.Vec{X: 1})
			ξ = r3.Cross(k, nHat)
			dα := nodeRate(k, dk)
			dι := inclinationRate(k, dk)
			sφ, cφ := math.Sincos(φ)
			sι, cι := math.Sincos(ι)
			dnHat := r3.Add(r3.Scale(cι*dα+dφ, ξ), r3.Scale(sφ*dι-cφ*sι*dα, k))
			v = r3.Add(r3.Scale(dr, nHat), r3.Scale(r, dnHat))
		} else {
			K, f4φ, g4φ := phaseCoefficients(E, L, d.System.Eta, g)
			φ = φ0 + K*(ν+f4φ*math.Sin(2*ν)+g4φ*math.Sin(3*ν))
			dφ = K * (1 + 2*f4φ*math.Cos(2*ν) + 3*g4φ*math.Cos(3*ν)) * dνdu / dtdu
			sφ, cφ := math.Sincos(φ)
			nHat = r3.Vec{X: cφ, Y: sφ}
			ξ = r3.Vec{X: -sφ, Y: cφ}
			v = r3.Add(r3.Scale(dr, nHat), r3.Scale(r*dφ, ξ))
		}
		if !isFinite(r, dr, φ, dφ, v.X, v.Y, v.Z) {
			return nil, fmt.Errorf("%w: non finite reconstruction at t=%g", ErrNumericalDomain, t)
		}

		tr.T[i] = t
		tr.N[i], tr.Et[i] = y.N, y.Et
		tr.Elements[i] = el
		tr.Proj[i] = p
		tr.U[i], tr.Nu[i] = u, ν
		tr.R[i], tr.Dr[i] = r, dr
		tr.Phi[i], tr.Dphi[i] = φ, dφ
		tr.NHat[i], tr.K[i], tr.Xi[i] = nHat, k, ξ
		tr.S1[i], tr.S2[i] = s1, s2
		tr.V[i] = v
	}
	return tr, nil
}

// phaseAt linearly interpolates the integrated phase at t, flat outside of the output times.
func phaseAt(t float64, times []float64, states []State) float64 {
	if len(times) == 1 {
		return states[0].Phi
	}
	φ := make([]float64, len(states))
	for i, s := range states {
		φ[i] = s.Phi
	}
	var pl interp.PiecewiseLinear
	// The output times are strictly increasing.
	_ = pl.Fit(times, φ)
	return pl.Predict(t)
}
