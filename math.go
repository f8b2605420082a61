package hyperbolic

import (
	"math"

	"gonum.org/v1/gonum/floats/scalar"
	"gonum.org/v1/gonum/spatial/r3"
)

const (
	deg2rad = math.Pi / 180
)

var zHat = r3.Vec{Z: 1}

// unit returns the unit vector of a given vector, or the zero vector if its norm vanishes.
func unit(a r3.Vec) r3.Vec {
	n := r3.Norm(a)
	if scalar.EqualWithinAbs(n, 0, 1e-12) {
		return r3.Vec{}
	}
	return r3.Scale(1/n, a)
}

// spinDirection returns the unit spin direction, or zero when the body does not spin.
func spinDirection(magnitude float64, s r3.Vec) r3.Vec {
	if magnitude == 0 {
		return r3.Vec{}
	}
	return unit(s)
}

// trueAnomaly returns the true anomaly for the eccentric anomaly u and angular eccentricity ephi.
func trueAnomaly(u, ephi float64) float64 {
	return 2 * math.Atan(math.Sqrt((ephi+1)/(ephi-1))*math.Tanh(u/2))
}

// isFinite returns whether none of the values is NaN or infinite.
func isFinite(vals ...float64) bool {
	for _, v := range vals {
		if math.IsNaN(v) || math.IsInf(v, 0) {
			return false
		}
	}
	return true
}

// Deg2rad converts degrees to radians, and enforced only positive numbers.
func Deg2rad(a float64) float64 {
	if a < 0 {
		a += 360
	}
	return math.Mod(a*deg2rad, 2*math.Pi)
}

// Rad2deg converts radians to degrees, and enforced only positive numbers.
func Rad2deg(a float64) float64 {
	if a < 0 {
		a += 2 * math.Pi
	}
	return math.Mod(a/deg2rad, 360)
}
