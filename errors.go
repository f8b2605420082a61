package hyperbolic

import (
	"errors"
	"fmt"
)

var (
	// ErrNumericalDomain is returned when an input or an intermediate quantity leaves the
	// domain where the PN formulas are real and finite.
	ErrNumericalDomain = errors.New("numerical domain error")
	// ErrZeroMeanAnomaly is returned by SolveKepler for l == 0, where the cubic starter has no sign.
	ErrZeroMeanAnomaly = fmt.Errorf("%w: zero mean anomaly", ErrNumericalDomain)
	// ErrInvalidOrder is returned for a PN order outside {0,2,3,4,5}.
	ErrInvalidOrder = errors.New("invalid PN order")
	// ErrNonMonotonicLog is returned when the recorder saw time go backwards.
	ErrNonMonotonicLog = errors.New("recorder log is not monotonic in time")
	// ErrNoConvergence is returned when the numerical (E, L) inversion does not converge.
	ErrNoConvergence = errors.New("did not converge")
)
