package hyperbolic

import (
	"math"

	"github.com/go-kit/log"
	"gonum.org/v1/gonum/floats/scalar"
	"gonum.org/v1/gonum/spatial/r3"
)

const eps = 1e-9

func vectorsEqual(a, b r3.Vec) bool {
	return scalar.EqualWithinAbsOrRel(a.X, b.X, eps, eps) &&
		scalar.EqualWithinAbsOrRel(a.Y, b.Y, eps, eps) &&
		scalar.EqualWithinAbsOrRel(a.Z, b.Z, eps, eps)
}

func anglesEqual(a, b float64) bool {
	diff := math.Abs(a - b)
	return diff < eps || math.Abs(diff-2*math.Pi) < eps
}

// testEncounter returns an encounter which does not log.
func testEncounter(ic InitialConditions, sys System, order Order, opts Options) (*Encounter, error) {
	enc, err := NewEncounter(ic, sys, order, opts)
	if err != nil {
		return nil, err
	}
	enc.SetLogger(log.NewNopLogger())
	return enc, nil
}
