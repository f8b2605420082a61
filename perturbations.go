package hyperbolic

import (
	"math"

	"gonum.org/v1/gonum/spatial/r3"
)

// Perturbations defines which non-conservative effects are added to the orbit during the propagation.
type Perturbations struct {
	RadiationReaction bool                          // Secular and oscillating decay of n and et.
	Arbitrary         func(t float64, y State) State // Additional arbitrary perturbation added to the derivative.
}

// Perturb returns the contribution of the perturbations to the derivative of the state at time t,
// given the current eccentric anomaly u.
func (p Perturbations) Perturb(t float64, y State, u, η float64) State {
	var pert State
	if p.RadiationReaction {
		pert.N, pert.Et = radiationReaction(y.N, y.Et, u, η)
	}
	if p.Arbitrary != nil {
		pert = pert.add(p.Arbitrary(t, y))
	}
	return pert
}

// radiationReaction returns dn/dt and det/dt from the leading order fluxes,
// parametrized by β = et*cosh(u) - 1.
func radiationReaction(n, et, u, η float64) (dn, det float64) {
	β := et*math.Cosh(u) - 1
	β2 := β * β
	β3 := β2 * β
	β4 := β2 * β2
	β7 := β4 * β3
	et2 := et * et
	dn = -math.Pow(n, 11/3.) * 8 * η / (5 * β7) * (-49*β2 - 32*β3 + 35*(et2-1)*β - 6*β4 + 9*et2*β2)
	det = -math.Pow(n, 8/3.) * 8 * η * (et2 - 1) / (15 * β7 * et) * (-49*β2 - 17*β3 + 35*(et2-1)*β - 3*β4 + 9*et2*β2)
	return
}

// Precession stores the spin-orbit precession coefficients of both bodies.
type Precession struct {
	F3L, F5L float64 // body 1
	G3L, G5L float64 // body 2
}

// NewPrecession returns the precession coefficients at separation r for the given energy and angular momentum.
func NewPrecession(r, E, L float64, sys System, order Order) Precession {
	return precession(r, E, L, sys.Eta, math.Sqrt(1-4*sys.Eta), order.gates())
}

// precession is split out with an explicit δ = (m1-m2)/m so that the exchange of bodies is δ -> -δ.
func precession(r, E, L, η, δ float64, g gates) Precession {
	η2 := η * η
	r2 := r * r
	rc := r2 * r
	r5 := rc * r2
	L2 := L * L
	return Precession{
		F3L: g.pn15 * (-η/2 + δ + 1) / rc,
		F5L: g.pn25 * (6*L2*η*(η-δ-1) + E*η*r2*(-18*η+31*δ+21) + r*(-18*η2+23*η*δ+21*η-24*δ-24)) / (8 * r5),
		G3L: g.pn15 * (-η/2 - δ + 1) / rc,
		G5L: g.pn25 * (6*L2*η*(η+δ-1) + E*η*r2*(-18*η-31*δ+21) + r*(-18*η2-23*η*δ+21*η+24*δ-24)) / (8 * r5),
	}
}

// Rates returns the time derivatives of the orbital angular momentum direction and of both spin directions.
// The spin vectors must be unit vectors, or zero for a non-spinning body.
func (p Precession) Rates(k, s1, s2 r3.Vec, sys System, L float64) (dk, ds1, ds2 r3.Vec) {
	f := p.F3L + p.F5L
	g := p.G3L + p.G5L
	s1k := r3.Cross(s1, k)
	s2k := r3.Cross(s2, k)
	dk = r3.Add(r3.Scale(f*sys.S1, s1k), r3.Scale(g*sys.S2, s2k))
	ds1 = r3.Scale(-f*L, s1k)
	ds2 = r3.Scale(-g*L, s2k)
	return
}
