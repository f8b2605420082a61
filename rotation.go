package hyperbolic

import (
	"math"

	"gonum.org/v1/gonum/mat"
	"gonum.org/v1/gonum/spatial/r3"
)

// Rot313Vec rotates a vector with a 3-1-3 Euler rotation.
// With (θ1, θ2, θ3) = (-φ, -ι, -α), it maps the periastron direction of the orbital plane
// to the inertial frame where the angular momentum has inclination ι and node angle α.
func Rot313Vec(θ1, θ2, θ3 float64, vI r3.Vec) r3.Vec {
	return MxV33(R3R1R3(θ1, θ2, θ3), vI)
}

// R3R1R3 performs a 3-1-3 Euler parameter rotation, i.e. R3(θ3)·R1(θ2)·R3(θ1).
func R3R1R3(θ1, θ2, θ3 float64) *mat.Dense {
	var r13, r313 mat.Dense
	r13.Mul(R1(θ2), R3(θ1))
	r313.Mul(R3(θ3), &r13)
	return &r313
}

// R1 rotation about the 1st axis.
func R1(x float64) *mat.Dense {
	s, c := math.Sincos(x)
	return mat.NewDense(3, 3, []float64{1, 0, 0, 0, c, s, 0, -s, c})
}

// R3 rotation about the 3rd axis.
func R3(x float64) *mat.Dense {
	s, c := math.Sincos(x)
	return mat.NewDense(3, 3, []float64{c, s, 0, -s, c, 0, 0, 0, 1})
}

// MxV33 multiplies a 3x3 matrix with a vector.
func MxV33(m mat.Matrix, v r3.Vec) r3.Vec {
	var rVec mat.VecDense
	rVec.MulVec(m, mat.NewVecDense(3, []float64{v.X, v.Y, v.Z}))
	return r3.Vec{X: rVec.AtVec(0), Y: rVec.AtVec(1), Z: rVec.AtVec(2)}
}

// orbitalFrame returns the inclination ι and node angle α of the orbital plane normal to k,
// such that k = (sin α sin ι, -cos α sin ι, cos ι).
// When k is along z, the node is the direction in which k leaves the pole at the rate dk,
// and αPole when dk is along z too.
func orbitalFrame(k, dk r3.Vec, αPole float64) (ι, α float64) {
	ι = math.Acos(math.Max(-1, math.Min(1, k.Z)))
	switch {
	case k.X*k.X+k.Y*k.Y > 0:
		α = math.Atan2(k.X, -k.Y)
	case dk.X*dk.X+dk.Y*dk.Y > 0:
		α = math.Atan2(dk.X, -dk.Y)
	default:
		α = αPole
	}
	return
}
