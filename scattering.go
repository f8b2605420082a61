package hyperbolic

import (
	"fmt"
	"math"

	"gonum.org/v1/gonum/spatial/r3"
)

// impactCorrection is the 1PN correction between the impact parameter and the semi-major axis.
func impactCorrection(η float64) float64 {
	return (η-1)/(η*η-1) + (7*η-6)/6
}

// MeanMotionFromImpact returns the initial mean motion n0 of an encounter with impact parameter b
// and time eccentricity et0.
func MeanMotionFromImpact(b, et0, η float64) (float64, error) {
	if !(b > 0) || !(et0 > 1) || !(η > 0 && η <= 0.25) {
		return math.NaN(), fmt.Errorf("%w: b=%g, et0=%g, eta=%g", ErrNumericalDomain, b, et0, η)
	}
	s := math.Sqrt(et0*et0 - 1)
	den := b + s*impactCorrection(η)
	if !(den > 0) {
		return math.NaN(), fmt.Errorf("%w: impact parameter b=%g too small for et0=%g", ErrNumericalDomain, b, et0)
	}
	return math.Pow(s/den, 1.5), nil
}

// ImpactParameter is the inverse of MeanMotionFromImpact.
func ImpactParameter(n, et, η float64) float64 {
	s := math.Sqrt(et*et - 1)
	return s/math.Pow(n, 2.0/3) - s*impactCorrection(η)
}

// NewtonianDeflection returns the scattering angle of a Keplerian hyperbola of eccentricity e.
func NewtonianDeflection(e float64) float64 {
	return math.Pi - 2*math.Acos(1/e)
}

// TurnAngle computes the Newtonian scattering angle from the asymptotic relative speed and the
// periastron distance, in units of the total mass.
func TurnAngle(vInf, rP float64) float64 {
	return NewtonianDeflection(1 + vInf*vInf*rP)
}

// Deflection returns the scattering angle of the reduced (non-spinning) system with the
// provided elements, from the asymptotic true anomaly and the periastron advance.
func Deflection(el Elements, η float64, order Order) float64 {
	νInf := math.Acos(-1 / el.Ephi)
	K, f4φ, g4φ := phaseCoefficients(el.E, el.L, η, order.gates())
	return 2*K*(νInf+f4φ*math.Sin(2*νInf)+g4φ*math.Sin(3*νInf)) - math.Pi
}

// Asymptotes describes a scattering from its incoming and outgoing relative velocities.
type Asymptotes struct {
	Psi float64 // angle between both velocities
	Rp  float64 // Newtonian periastron distance
	B   float64 // Newtonian impact parameter
}

// AsymptotesFromVelocities computes the Newtonian scattering geometry from the incoming and
// outgoing relative velocities, in units of the total mass.
func AsymptotesFromVelocities(vIn, vOut r3.Vec) Asymptotes {
	vInf := r3.Norm(vIn)
	ψ := math.Acos(math.Max(-1, math.Min(1, r3.Cos(vIn, vOut))))
	v2 := vInf * vInf
	rP := (1/math.Cos((math.Pi-ψ)/2) - 1) / v2
	b := math.Sqrt(math.Pow(1+v2*rP, 2)-1) / v2
	return Asymptotes{Psi: ψ, Rp: rP, B: b}
}
