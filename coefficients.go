package hyperbolic

import (
	"fmt"
	"math"
)

// Projections are the spin-orbit alignments k̂·ŝ1 and k̂·ŝ2.
type Projections struct {
	KdS1, KdS2 float64
}

// System holds the physical parameters of the binary which are constant over an integration.
type System struct {
	Eta    float64 // symmetric mass ratio m1*m2/(m1+m2)², in (0, 0.25]
	S1, S2 float64 // dimensionless spin magnitudes
}

// Validate returns an error if the mass ratio is outside (0, 0.25].
func (s System) Validate() error {
	if !(s.Eta > 0 && s.Eta <= 0.25) {
		return fmt.Errorf("%w: eta=%g not in (0, 0.25]", ErrNumericalDomain, s.Eta)
	}
	if math.IsNaN(s.S1) || math.IsNaN(s.S2) {
		return fmt.Errorf("%w: spin magnitude is NaN", ErrNumericalDomain)
	}
	return nil
}

// Elements are the instantaneous quasi-Keplerian elements of the orbit.
type Elements struct {
	E, L     float64 // reduced energy and angular momentum
	N, Et    float64 // mean motion and time eccentricity
	Ar       float64 // semi-major axis
	Er, Ephi float64 // radial and angular eccentricities
	// Angular equation: dφ/dt = D2/r² + D3/r³ + D4/r⁴ + D5/r⁵.
	D2, D3, D4, D5 float64
	// Kepler equation: n(t-t0) = Et*sinh(u) - u + (F4t+F5t)ν + (G4t+G5t)sin(ν).
	F4t, F5t, G4t, G5t float64
}

// ElementsFromMeanMotion returns the elements for a given mean motion n and time eccentricity et.
func ElementsFromMeanMotion(n, et float64, p Projections, sys System, order Order) (Elements, error) {
	if err := checkInputs(sys, order); err != nil {
		return Elements{}, err
	}
	if !(n > 0) || math.IsInf(n, 0) {
		return Elements{}, fmt.Errorf("%w: n=%g", ErrNumericalDomain, n)
	}
	g := order.gates()
	η, η2 := sys.Eta, sys.Eta*sys.Eta
	δ := math.Sqrt(1 - 4*η)
	S1, S2 := sys.S1, sys.S2
	kds1, kds2 := p.KdS1, p.KdS2
	et2 := et * et
	n13 := math.Cbrt(n)
	n23 := n13 * n13
	n43 := n23 * n23
	n2 := n * n

	E := n23/2 +
		g.pn1*(n43*(η - 15)/24) +
		g.pn2*(-n2*(η2 + 15*η - 15)/48)
	L := math.Sqrt(et2 - 1)/n13 +
		g.pn1*(n13*(et2*(5*η - 9) + η + 3)/(6*math.Sqrt(et2 - 1))) +
		g.pn15*(n23*(kds1*S1*(η - 2*(δ + 1)) + kds2*S2*(η + 2*δ - 2))/(2*(et2 - 1))) +
		g.pn2*(n*(-2*et2*(9*η2 - 26*η + 6) + (5*η2 - 73*η + 33)*et2*et2 + η2 - 21*η + 69)/(24*math.Pow(et2-1, 1.5))) +
		g.pn25*((kds1*n*S1*(-et2*(n13*(2*η2 - 64*δ*η - 169*η + 168) + 3*math.Sqrt(n23*(-4*η + 1))*(11*η + 56)) + (n13*(-94*η2 + 38*η*δ + 443*η - 42*δ - 312) + 135*math.Sqrt(n23*(-4*η + 1))*(η - 2))*et2*et2 + 6*(η + 9)*(-n13*δ + math.Sqrt(n23*(-4*η + 1)))) - kds2*n*S2*(et2*n13*(2*η2 + η*(64*δ - 169) + 168) - 3*et2*(11*η + 56)*math.Sqrt(n23*(-4*η + 1)) + (n13*(94*η2 + 38*η*δ - 443*η - 42*δ + 312) + 135*math.Sqrt(n23*(-4*η + 1))*(η - 2))*et2*et2 + 6*(η + 9)*(-n13*δ + math.Sqrt(n23*(-4*η + 1)))))/(48*et2*math.Pow(et2 - 1, 2)))

	el := quasiKeplerian(E, L, p, sys, g)
	el.N, el.Et = n, et
	return el, el.check()
}

// ElementsFromEnergy returns the elements for a given reduced energy E and angular momentum L.
func ElementsFromEnergy(E, L float64, p Projections, sys System, order Order) (Elements, error) {
	if err := checkInputs(sys, order); err != nil {
		return Elements{}, err
	}
	if !(E > 0) || !(L > 0) {
		return Elements{}, fmt.Errorf("%w: E=%g, L=%g", ErrNumericalDomain, E, L)
	}
	g := order.gates()
	η, η2 := sys.Eta, sys.Eta*sys.Eta
	δ := math.Sqrt(1 - 4*η)
	S1, S2 := sys.S1, sys.S2
	kds1, kds2 := p.KdS1, p.KdS2
	E2, L2 := E*E, L*L
	E3, L4 := E2*E, L2*L2
	L6 := L4 * L2
	E32 := E * math.Sqrt(E)
	E52, E72 := E32*E, E32*E2

	n := math.Pow(2*E, 3.0/2) +
		g.pn1*(-E52*(η - 15)/math.Sqrt2) +
		g.pn2*(E72*(11*η2 + 30*η + 555)/(8*math.Sqrt2))
	et2 := 2*L2*E + 1 +
		g.pn1*(-7*E2*η*L2 + 17*L2*E2 - 4*E*η + 4*E) +
		g.pn15*(2*E*(L*S1*kds1*(-η + 2*δ + 2) - L*S2*kds2*(η + 2*δ - 2))/L2) +
		g.pn2*((16*L4*E3*η2 - 47*E3*η*L4 + 112*L4*E3 + 10*L2*E2*η2 + 2*L2*E2*η + 4*L2*E2 + 11*E*η - 17*E)/L2) +
		g.pn25*((L*S1*kds1*(2*L4*E3*(32*η2 - 14*δ*η - 159*η + 34*δ + 124) - 90*E52*(η - 2)*L4*math.Sqrt(-4*E*η + E) + L2*E2*(48*η2 - 16*δ*η - 315*η + 16*δ + 252) + L2*E32*(-79*η + 236)*math.Sqrt(-4*E*η + E) + 2*math.Sqrt(E)*(-9*η + 32)*math.Sqrt(-4*E*η + E) + E*(8*η2 - 78*η + 64)) + L*S2*kds2*(2*L4*E3*(32*η2 + η*(14*δ - 159) - 34*δ + 124) + 90*L4*E52*(η - 2)*math.Sqrt(-4*E*η + E) + L2*E2*(48*η2 + η*(16*δ - 315) - 16*δ + 252) + L2*E32*(79*η - 236)*math.Sqrt(-4*E*η + E) + 2*math.Sqrt(E)*(9*η - 32)*math.Sqrt(-4*E*η + E) + E*(8*η2 - 78*η + 64)))/(2*(2*L6*E + L4)))

	el := quasiKeplerian(E, L, p, sys, g)
	el.N = n
	if et2 < 0 {
		return el, fmt.Errorf("%w: et²=%g", ErrNumericalDomain, et2)
	}
	el.Et = math.Sqrt(et2)
	return el, el.check()
}

// quasiKeplerian evaluates the elements shared by both parametrizations from (E, L).
// N and Et are left for the caller.
func quasiKeplerian(E, L float64, p Projections, sys System, g gates) Elements {
	η, η2 := sys.Eta, sys.Eta*sys.Eta
	δ := math.Sqrt(1 - 4*η)
	S1, S2 := sys.S1, sys.S2
	kds1, kds2 := p.KdS1, p.KdS2
	E2, L2 := E*E, L*L
	E3, L3, L4 := E2*E, L2*L, L2*L2
	E32 := E * math.Sqrt(E)

	// Orbital elements.
	er2 := 2*L2*E + 1 +
		g.pn1*(5*L2*E2*η - 15*E2*L2 + 2*E*η - 12*E) +
		g.pn15*(L*S1*kds1*(-4*E2*η + 8*E2*δ + 8*E2 + 8*E/L2 - 4*E*η/L2 + 8*E*δ/L2) + L*S2*kds2*(-4*E2*η - 8*E2*δ + 8*E2 + 8*E/L2 - 4*E*η/L2 - 8*E*δ/L2)) +
		g.pn2*(4*L2*E3*η2 - 55*E3*η*L2 + 80*L2*E3 + E2*η2 + E2*η + 26*E2 - 34*E/L2 + 22*E*η/L2) +
		g.pn25*(L*S1*kds1*E*(L4*E2*(-6*η2 + η*(19*δ + 49) - 80*(δ + 1)) + 2*L2*E*(5*η2 - 8*δ*η - 35*η + 2*δ + 2) + 8*η2 - 6*(3*δ + 13)*η + 64*(δ + 1))/L4 + L*S2*kds2*E*(L4*E2*(-6*η2 + η*(-19*δ + 49) + 80*(δ - 1)) + 2*L2*E*(5*η2 + η*(8*δ - 35) - 2*δ + 2) + 8*η2 + 18*η*δ - 78*η - 64*δ + 64)/L4)
	ar := 1/(2*E) +
		g.pn1*((7 - η)/4) +
		g.pn15*((L*S1*kds1*(η - 2*δ - 2) + L*S2*kds2*(η + 2*δ - 2))/(2*L2)) +
		g.pn2*((L2*E*(η2 + 10*η + 1) - 22*η + 34)/(8*L2)) +
		g.pn25*((L*S1*kds1*(L2*E*(-6*η2 + η*(5*δ + 19) - 8*(δ + 1)) - 8*η2 + 6*η*(3*δ + 13) - 64*(δ + 1)) - L*S2*kds2*(L2*E*(6*η2 + η*(5*δ - 19) - 8*δ + 8) + 8*η2 + 18*η*δ - 78*η - 64*δ + 64))/(8*L4))
	ephi2 := 2*L2*E + 1 +
		g.pn1*(L2*E2*η - 15*E2*L2 - 12*E) +
		g.pn15*(L*S1*kds1*(-4*E2*η + 8*E2*δ + 8*E2 + 8*E/L2 - 4*E*η/L2 + 8*E*δ/L2) + L*S2*kds2*(-4*E2*η - 8*E2*δ + 8*E2 + 8*E/L2 - 4*E*η/L2 - 8*E*δ/L2)) +
		g.pn2*(3*E3*η2*L2/2 - 15*E3*η*L2 + 80*L2*E3 + 44*E2*η - 8*E2 + 9*E2*η2/2 + 15*E*η2/(8*L2) - 51*E/L2 + 29*E*η/L2) +
		g.pn25*(L*S1*kds1*(E3*η*δ + 31*E3*η - 80*E3*δ - 80*E3 - 213*E*η/(2*L4) + 3*E*η2/(2*L4) - 33*E*η*δ/(2*L4) + 96*E/L4 + 96*E*δ/L4 + 68*E2/L2 - 144*E2*η/L2 + 4*E2*η2/L2 + 68*E2*δ/L2 - 30*E2*η*δ/L2) + L*S2*kds2*(E3*(-1)*δ*η + 31*E3*η + 80*E3*δ - 80*E3 - 213*E*η/(2*L4) + 3*E*η2/(2*L4) + 33*E*η*δ/(2*L4) + 96*E/L4 - 96*E*δ/L4 + 68*E2/L2 - 144*E2*η/L2 + 4*E2*η2/L2 - 68*E2*δ/L2 + 30*E2*η*δ/L2))

	// Kepler equation.
	f4t := g.pn2*(3*math.Sqrt2*E32*(-2*η + 5)/L)
	f5t := g.pn25*(E32*(L*S1*kds1*(-14*η2 + η*(35*δ + 73) - 48*(δ + 1)) + L*S2*kds2*(-14*η2 + η*(-35*δ + 73) + 48*(δ - 1)))/(2*math.Sqrt2*L3))
	g4t := g.pn2*(-E32*η*(η + 4)*math.Sqrt(4*L2*E + 2)/(4*L))
	g5t := g.pn25*(E32*math.Sqrt(4*L2*E + 2)*(L*S1*kds1*(-3*η2 + η*(9*δ + 11) - 4*(δ + 1)) + L*S2*kds2*(-3*η2 - 9*δ*η + 11*η + 4*δ - 4))/(2*L3))

	// Angular equation.
	d2 := L +
		g.pn1*(3*L*E*η - L*E) +
		g.pn2*(3*L*E2*η2 - 9*E2*η*L/2 + L*E2)
	d3 := g.pn1*(2*L*η - 4*L) +
		g.pn15*((L*S1*kds1*(-η + 2*δ + 2) + L*S2*kds2*(-η - 2*δ + 2))/(2*L)) +
		g.pn2*(8*L*E*η2 - 22*E*η*L + 4*L*E) +
		g.pn25*(E*η*(L*S1*kds1*(-18*η + 31*δ + 21) + L*S2*kds2*(-18*η - 31*δ + 21))/(8*L))
	d4 := g.pn2*(5*L*η2 - 11*η*L + 17*L/2) +
		g.pn25*((L*S1*kds1*(-18*η2 + 23*η*δ + 21*η - 24*δ - 24) + L*S2*kds2*(-18*η2 - 23*δ*η + 21*η + 24*δ - 24))/(8*L))
	d5 := g.pn2*(-L3*η2 + L3*η/2) +
		g.pn25*(L*S1*kds1*(-15*δ*η*L/4 + L*δ + L - 17*L*η/4 + 9*L*η2/4) + L*S2*kds2*(15*δ*η*L/4 - L*δ + L - 17*L*η/4 + 9*L*η2/4))

	return Elements{E: E, L: L, Ar: ar, Er: sqrtOrNaN(er2), Ephi: sqrtOrNaN(ephi2),
		D2: d2, D3: d3, D4: d4, D5: d5, F4t: f4t, F5t: f5t, G4t: g4t, G5t: g5t}
}

// check returns ErrNumericalDomain if any element is not finite.
func (el Elements) check() error {
	for _, v := range []float64{el.E, el.L, el.N, el.Et, el.Ar, el.Er, el.Ephi, el.D2, el.D3, el.D4, el.D5, el.F4t, el.F5t, el.G4t, el.G5t} {
		if math.IsNaN(v) || math.IsInf(v, 0) {
			return fmt.Errorf("%w: non finite element in %+v", ErrNumericalDomain, el)
		}
	}
	return nil
}

func checkInputs(sys System, order Order) error {
	if !order.Valid() {
		return fmt.Errorf("%w: %d", ErrInvalidOrder, int(order))
	}
	return sys.Validate()
}

func sqrtOrNaN(x float64) float64 {
	if x < 0 {
		return math.NaN()
	}
	return math.Sqrt(x)
}
