package hyperbolic

import (
	"errors"
	"math"
	"testing"

	"github.com/stretchr/testify/require"
)

func TestSolveKepler(t *testing.T) {
	for _, e := range []float64{0.05, 0.3, 0.9, 0.99, 1, 1.001, 1.2, 1.5, 3, 10, 100} {
		for _, l := range []float64{-500, -50, -3, -0.5, -1e-3, 1e-6, 1e-3, 0.1, 1, 2.5, 10, 123, 1e4} {
			u, err := SolveKepler(e, l)
			if err != nil {
				t.Fatalf("e=%g l=%g: %s", e, l, err)
			}
			if res := e*math.Sinh(u) - u - l; math.Abs(res) > 1e-10*math.Max(1, math.Abs(l)) {
				t.Fatalf("e=%g l=%g: residual %g at u=%g", e, l, res, u)
			}
			if math.Signbit(u) != math.Signbit(l) {
				t.Fatalf("e=%g l=%g: u=%g has the wrong sign", e, l, u)
			}
		}
	}
}

func TestSolveKeplerDomain(t *testing.T) {
	_, err := SolveKepler(1.5, 0)
	require.ErrorIs(t, err, ErrZeroMeanAnomaly)
	require.ErrorIs(t, err, ErrNumericalDomain)
	for _, e := range []float64{0, -1, math.NaN(), math.Inf(1)} {
		if _, err := SolveKepler(e, 1); !errors.Is(err, ErrNumericalDomain) {
			t.Fatalf("e=%g: expected a domain error, got %v", e, err)
		}
	}
	if _, err := SolveKepler(1.5, math.Inf(-1)); !errors.Is(err, ErrNumericalDomain) {
		t.Fatalf("l=-Inf: expected a domain error, got %v", err)
	}
	// Internal callers may land on periastron.
	if u, err := eccentricAnomaly(1.5, 0); err != nil || u != 0 {
		t.Fatalf("eccentricAnomaly(1.5, 0) = %g, %v", u, err)
	}
}
