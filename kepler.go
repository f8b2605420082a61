package hyperbolic

import (
	"fmt"
	"math"
)

const (
	// keplerPolish is the maximum number of Newton steps applied after the Danby-Burkardt corrector.
	keplerPolish = 8
	// keplerOuterIterations bounds the Newton iteration on the outer branch (e < 1, three real roots).
	keplerOuterIterations = 100
)

// SolveKepler returns the eccentric anomaly u solving the hyperbolic Kepler equation
// e*sinh(u) - u = l for the eccentricity e and the mean anomaly l.
// The starter is Mikkola's cubic approximation, refined by a fifth order Danby-Burkardt
// corrector and a few Newton steps.
func SolveKepler(e, l float64) (float64, error) {
	if l == 0 {
		return 0, ErrZeroMeanAnomaly
	}
	if !(e > 0) || math.IsInf(e, 0) || math.IsNaN(l) || math.IsInf(l, 0) {
		return math.NaN(), fmt.Errorf("%w: kepler(e=%g, l=%g)", ErrNumericalDomain, e, l)
	}
	u, ok := mikkola(e, l)
	if !ok {
		// The cubic has three real roots: pick the one continuous with large |l|.
		u = outerRoot(e, l)
	}
	u = danbyBurkardt(e, l, u)
	for i := 0; i < keplerPolish; i++ {
		f := e*math.Sinh(u) - u - l
		if math.Abs(f) <= 1e-13*math.Max(1, math.Abs(l)) {
			break
		}
		u -= f / (e*math.Cosh(u) - 1)
	}
	if math.IsNaN(u) || math.IsInf(u, 0) {
		return math.NaN(), fmt.Errorf("%w: kepler(e=%g, l=%g) diverged", ErrNumericalDomain, e, l)
	}
	return u, nil
}

// eccentricAnomaly is SolveKepler for internal callers which may land exactly on periastron.
func eccentricAnomaly(e, l float64) (float64, error) {
	if l == 0 {
		return 0, nil
	}
	return SolveKepler(e, l)
}

// mikkola returns the cubic starter, and false if the discriminant is negative.
func mikkola(e, l float64) (float64, bool) {
	α := (e - 1) / (4*e + 0.5)
	β := 0.5 * l / (4*e + 0.5)
	d := β*β + α*α*α
	if d < 0 {
		return 0, false
	}
	z := math.Cbrt(β + math.Copysign(math.Sqrt(d), β))
	s := z - α/z
	s += 0.0071 * math.Pow(s, 5) / ((1 + 0.45*s*s) * (1 + 4*s*s) * e)
	return 3 * math.Asinh(s), true
}

// danbyBurkardt applies the fifth order corrector once.
func danbyBurkardt(e, l, u float64) float64 {
	eshu := e * math.Sinh(u)
	echu := e * math.Cosh(u)
	fu := -u + eshu - l
	f1u := -1 + echu
	f2u, f3u, f4u, f5u := eshu, echu, eshu, echu

	u1 := -fu / f1u
	u2 := -fu / (f1u + f2u*u1/2)
	u3 := -fu / (f1u + f2u*u2/2 + f3u*(u2*u2)/6)
	u4 := -fu / (f1u + f2u*u3/2 + f3u*(u3*u3)/6 + f4u*(u3*u3*u3)/24)
	u5 := -fu / (f1u + f2u*u4/2 + f3u*(u4*u4)/6 + f4u*(u4*u4*u4)/24 + f5u*(u4*u4*u4*u4)/120)
	return u + u5
}

// outerRoot returns the sign-matched root beyond the minimum of e*sinh(u) - u, for e < 1.
// Newton converges monotonically from the right since the function is convex there.
func outerRoot(e, l float64) float64 {
	target := math.Abs(l)
	u := math.Acosh(1/e) + 1
	for e*math.Sinh(u)-u < target {
		u *= 2
	}
	for i := 0; i < keplerOuterIterations; i++ {
		δ := (e*math.Sinh(u) - u - target) / (e*math.Cosh(u) - 1)
		u -= δ
		if math.Abs(δ) <= 1e-15*math.Max(1, u) {
			break
		}
	}
	return math.Copysign(u, l)
}
