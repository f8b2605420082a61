package hyperbolic

import (
	"errors"
	"math"
	"testing"

	"github.com/stretchr/testify/require"
	"gonum.org/v1/gonum/floats"
	"gonum.org/v1/gonum/floats/scalar"
	"gonum.org/v1/gonum/spatial/r3"
)

// Equal mass encounter with periastron at t=0, which is on the grid.
var (
	testInitial = InitialConditions{B: 100, Et0: 1.5, Phi0: 0.3, K: zHat}
	testSpins   = InitialConditions{B: 100, Et0: 1.5, Phi0: 0.3,
		K: r3.Vec{X: 0.1, Y: 0.2, Z: 1}, S1Dir: r3.Vec{X: 1, Z: 0.5}, S2Dir: r3.Vec{Y: 1, Z: -0.3}}
)

func testGrid() []float64 {
	return floats.Span(make([]float64, 61), -3000, 3000)
}

func propagate(t *testing.T, ic InitialConditions, sys System, order Order, opts Options, times []float64) *Trajectory {
	enc, err := testEncounter(ic, sys, order, opts)
	if err != nil {
		t.Fatal(err)
	}
	tr, err := enc.Propagate(times)
	if err != nil {
		t.Fatal(err)
	}
	if tr.Len() != len(times) {
		t.Fatalf("%d samples for %d times", tr.Len(), len(times))
	}
	return tr
}

func TestEncounterNewtonian(t *testing.T) {
	tr := propagate(t, testInitial, System{Eta: 0.25}, Newtonian, Options{AnalyticEL: true}, testGrid())
	n0, _ := MeanMotionFromImpact(testInitial.B, testInitial.Et0, 0.25)
	for i := range tr.T {
		if tr.N[i] != n0 || tr.Et[i] != testInitial.Et0 {
			t.Fatalf("t=%f: n=%g et=%g changed without radiation reaction", tr.T[i], tr.N[i], tr.Et[i])
		}
		el := tr.Elements[i]
		r := tr.R[i]
		// Vis-viva.
		v2 := r3.Dot(tr.V[i], tr.V[i])
		if exp := 1/el.Ar + 2/r; !scalar.EqualWithinRel(v2, exp, 1e-12) {
			t.Fatalf("t=%f: v²=%g expected %g", tr.T[i], v2, exp)
		}
		// Conic section.
		if exp := el.Ar * (el.Et*el.Et - 1); !scalar.EqualWithinRel(r*(1+el.Et*math.Cos(tr.Nu[i])), exp, 1e-12) {
			t.Fatalf("t=%f: r=%g is not on the conic", tr.T[i], r)
		}
		if tr.K[i] != zHat || tr.NHat[i].Z != 0 || tr.V[i].Z != 0 {
			t.Fatalf("t=%f: motion out of the xy plane", tr.T[i])
		}
		if !anglesEqual(math.Atan2(tr.NHat[i].Y, tr.NHat[i].X), math.Remainder(tr.Phi[i], 2*math.Pi)) {
			t.Fatalf("t=%f: separation not along φ", tr.T[i])
		}
	}
	require.InDelta(t, 89.53, tr.Elements[0].Ar, 0.01)
	// Periastron.
	require.Equal(t, testInitial.Phi0, tr.Phi[30])
	require.Equal(t, 0., tr.U[30])
	require.InDelta(t, tr.Elements[30].Ar*(testInitial.Et0-1), tr.R[30], 1e-10)
	require.InDelta(t, 0, tr.Dr[30], 1e-15)
	if tr.R[0] <= tr.R[30] || tr.R[60] <= tr.R[30] || tr.Dr[0] >= 0 || tr.Dr[60] <= 0 {
		t.Fatal("the bodies do not come closest at periastron")
	}
}

func TestEncounterRadiationReaction(t *testing.T) {
	sys := System{Eta: 0.25}
	ic := testInitial
	ic.B = 30
	n0, err := MeanMotionFromImpact(ic.B, ic.Et0, sys.Eta)
	require.NoError(t, err)
	T := 6 / n0
	times := floats.Span(make([]float64, 81), -T, T)
	tr := propagate(t, ic, sys, Order2_5PN, Options{RadiationReaction: true, AnalyticEL: true}, times)
	last := tr.Len() - 1
	if tr.N[0] != n0 || tr.Et[0] != ic.Et0 {
		t.Fatalf("initial state (%g, %g)", tr.N[0], tr.Et[0])
	}
	// The encounter radiates energy and angular momentum.
	if !(tr.N[last] < tr.N[0]*0.99) || !(tr.Et[last] < tr.Et[0]*0.995) {
		t.Fatalf("n: %g -> %g, et: %g -> %g", tr.N[0], tr.N[last], tr.Et[0], tr.Et[last])
	}
	if tr.Elements[last].E >= tr.Elements[0].E || tr.Elements[last].L >= tr.Elements[0].L {
		t.Fatalf("E: %g -> %g, L: %g -> %g", tr.Elements[0].E, tr.Elements[last].E, tr.Elements[0].L, tr.Elements[last].L)
	}

	// The same encounter without radiation keeps its elements.
	cons := propagate(t, ic, sys, Order2_5PN, Options{AnalyticEL: true}, times)
	if cons.N[last] != n0 || cons.Et[last] != ic.Et0 {
		t.Fatal("conservative encounter changed its elements")
	}
}

func TestEncounterSpinningReduces(t *testing.T) {
	// Without spins, the spinning system reduces to the planar one. The analytic phase of the
	// planar system and the integrated phase only agree up to the first neglected PN order.
	for _, tc := range []struct {
		order Order
		φTol  float64
	}{
		{Newtonian, 1e-8},
		{Order1PN, 5e-3},
		{Order2PN, 1e-3},
		{Order2_5PN, 1e-3},
	} {
		sys := System{Eta: 0.25}
		planar := propagate(t, testInitial, sys, tc.order, Options{AnalyticEL: true}, testGrid())
		spinning := propagate(t, testInitial, sys, tc.order, Options{Spinning: true, AnalyticEL: true}, testGrid())
		for i := range planar.T {
			if !scalar.EqualWithinRel(planar.R[i], spinning.R[i], 1e-12) {
				t.Fatalf("%s t=%f: r=%g vs %g", tc.order, planar.T[i], planar.R[i], spinning.R[i])
			}
			if spinning.K[i] != zHat || spinning.S1[i] != (r3.Vec{}) {
				t.Fatalf("%s t=%f: k=%+v s1=%+v", tc.order, planar.T[i], spinning.K[i], spinning.S1[i])
			}
			if !scalar.EqualWithinAbs(planar.Phi[i], spinning.Phi[i], tc.φTol) {
				t.Fatalf("%s t=%f: φ=%g vs %g", tc.order, planar.T[i], planar.Phi[i], spinning.Phi[i])
			}
			if !vectorsEqualWithin(planar.NHat[i], spinning.NHat[i], tc.φTol) || !vectorsEqualWithin(planar.V[i], spinning.V[i], 2*tc.φTol) {
				t.Fatalf("%s t=%f: v=%+v vs %+v", tc.order, planar.T[i], planar.V[i], spinning.V[i])
			}
		}
	}
}

func vectorsEqualWithin(a, b r3.Vec, tol float64) bool {
	return r3.Norm(r3.Sub(a, b)) <= tol*math.Max(1, r3.Norm(a))
}

func TestEncounterSpinning(t *testing.T) {
	sys := System{Eta: 0.25, S1: 0.5, S2: 0.3}
	tr := propagate(t, testSpins, sys, Order2_5PN, Options{Spinning: true, AnalyticEL: true}, testGrid())
	last := tr.Len() - 1
	for i := range tr.T {
		k, n := tr.K[i], tr.NHat[i]
		if !scalar.EqualWithinAbs(r3.Norm(k), 1, 1e-14) || !scalar.EqualWithinAbs(r3.Norm(n), 1, 1e-14) {
			t.Fatalf("t=%f: |k|=%g |n|=%g", tr.T[i], r3.Norm(k), r3.Norm(n))
		}
		if math.Abs(r3.Dot(k, n)) > 1e-14 || !vectorsEqual(tr.Xi[i], r3.Cross(k, n)) {
			t.Fatalf("t=%f: inconsistent orbital frame", tr.T[i])
		}
		if !scalar.EqualWithinAbs(r3.Norm(tr.S1[i]), 1, 1e-14) || !scalar.EqualWithinAbs(r3.Norm(tr.S2[i]), 1, 1e-14) {
			t.Fatalf("t=%f: spin directions are not unit vectors", tr.T[i])
		}
		if tr.Proj[i].KdS1 != r3.Dot(k, tr.S1[i]) {
			t.Fatalf("t=%f: stale projections", tr.T[i])
		}
	}
	require.InDelta(t, testSpins.Phi0, tr.Phi[30], 1e-14)
	// The orbital plane precesses.
	if vectorsEqualWithin(tr.K[0], tr.K[last], 1e-4) {
		t.Fatalf("k did not precess: %+v -> %+v", tr.K[0], tr.K[last])
	}
	// The total angular momentum is conserved.
	J := func(i int) r3.Vec {
		return r3.Add(r3.Scale(tr.Elements[i].L, tr.K[i]), r3.Add(r3.Scale(sys.S1, tr.S1[i]), r3.Scale(sys.S2, tr.S2[i])))
	}
	if !vectorsEqualWithin(J(0), J(last), 1e-8) {
		t.Fatalf("J: %+v -> %+v", J(0), J(last))
	}
}

func TestEncounterSpinningFromPole(t *testing.T) {
	// k starts along z and the misaligned spins tilt it right away.
	sys := System{Eta: 0.25, S1: 0.5, S2: 0.3}
	ic := testSpins
	ic.K = zHat
	times := floats.Span(make([]float64, 601), -3000, 3000)
	tr := propagate(t, ic, sys, Order2_5PN, Options{Spinning: true, AnalyticEL: true}, times)
	if tr.K[0] != zHat || tr.K[tr.Len()-1] == zHat {
		t.Fatalf("k: %+v -> %+v", tr.K[0], tr.K[tr.Len()-1])
	}
	Δt := times[1] - times[0]
	for i := 1; i < tr.Len(); i++ {
		// The separation turns by the orbital phase between two samples.
		turn := math.Acos(math.Min(1, r3.Dot(tr.NHat[i-1], tr.NHat[i])))
		exp := 0.5 * (math.Abs(tr.Dphi[i-1]) + math.Abs(tr.Dphi[i])) * Δt
		if math.Abs(turn-exp) > 5e-3 {
			t.Fatalf("t=%f: separation turned by %g, expected %g", tr.T[i], turn, exp)
		}
	}
}

func TestEncounterSpinningRadiation(t *testing.T) {
	sys := System{Eta: 0.25, S1: 0.5, S2: 0.3}
	n0, _ := MeanMotionFromImpact(testSpins.B, testSpins.Et0, sys.Eta)
	T := 6 / n0
	tr := propagate(t, testSpins, sys, Order2_5PN, Options{Spinning: true, RadiationReaction: true, AnalyticEL: true},
		floats.Span(make([]float64, 81), -T, T))
	last := tr.Len() - 1
	if !(tr.N[last] < tr.N[0]) || !(tr.Et[last] < tr.Et[0]) {
		t.Fatalf("n: %g -> %g, et: %g -> %g", tr.N[0], tr.N[last], tr.Et[0], tr.Et[last])
	}
	require.InDelta(t, 0.0011782507521264985, tr.N[last], 1e-9)
	require.InDelta(t, 1.4993160522982998, tr.Et[last], 1e-6)
}

func TestEncounterNumericalInversion(t *testing.T) {
	sys := System{Eta: 0.2}
	times := floats.Span(make([]float64, 11), -1000, 1000)
	analytic := propagate(t, testInitial, sys, Order2PN, Options{AnalyticEL: true}, times)
	numeric := propagate(t, testInitial, sys, Order2PN, Options{}, times)
	for i := range times {
		if !scalar.EqualWithinRel(analytic.R[i], numeric.R[i], 1e-3) {
			t.Fatalf("t=%f: r=%g vs %g", times[i], analytic.R[i], numeric.R[i])
		}
		// The inverted elements reproduce the integrated mean motion.
		if !scalar.EqualWithinRel(numeric.Elements[i].N, numeric.N[i], 1e-10) {
			t.Fatalf("t=%f: n=%g vs %g", times[i], numeric.Elements[i].N, numeric.N[i])
		}
	}
}

func TestEncounterArbitrary(t *testing.T) {
	sys := System{Eta: 0.25}
	opts := Options{Spinning: true, AnalyticEL: true}
	ref := propagate(t, testInitial, sys, Newtonian, opts, testGrid())
	enc, err := testEncounter(testInitial, sys, Newtonian, opts)
	require.NoError(t, err)
	const ω = 1e-4
	enc.Dynamics.Perts.Arbitrary = func(float64, State) State {
		return State{Phi: ω}
	}
	tr, err := enc.Propagate(testGrid())
	require.NoError(t, err)
	for i := range tr.T {
		if !scalar.EqualWithinAbs(tr.Phi[i]-ref.Phi[i], ω*tr.T[i], 1e-9) {
			t.Fatalf("t=%f: phase offset %g", tr.T[i], tr.Phi[i]-ref.Phi[i])
		}
		if tr.R[i] != ref.R[i] {
			t.Fatalf("t=%f: the phase perturbation changed r", tr.T[i])
		}
	}
}

func TestEncounterSingleTime(t *testing.T) {
	sys := System{Eta: 0.25, S1: 0.5}
	tr := propagate(t, testSpins, sys, Order2_5PN, Options{AnalyticEL: true}, []float64{-200})
	if tr.Phi[0] == testSpins.Phi0 || !(tr.R[0] > tr.Elements[0].Ar*(tr.Elements[0].Er-1)) || tr.Dr[0] >= 0 {
		t.Fatalf("unexpected sample before periastron: φ=%g r=%g dr=%g", tr.Phi[0], tr.R[0], tr.Dr[0])
	}
	// Without a second time, the integrated phase cannot be moved to the periastron.
	tr = propagate(t, testSpins, sys, Order2_5PN, Options{Spinning: true, AnalyticEL: true}, []float64{-200})
	if tr.Phi[0] != testSpins.Phi0 || !(tr.R[0] > 0) {
		t.Fatalf("unexpected spinning sample: φ=%g r=%g", tr.Phi[0], tr.R[0])
	}
}

func TestEncounterErrors(t *testing.T) {
	sys := System{Eta: 0.25}
	enc, err := testEncounter(testInitial, sys, Order2PN, Options{AnalyticEL: true})
	require.NoError(t, err)
	for _, times := range [][]float64{
		nil,
		{0, 1, 1},
		{0, 2, 1},
		{0, math.NaN()},
		{math.Inf(-1), 0},
	} {
		if _, err := enc.Propagate(times); !errors.Is(err, ErrNumericalDomain) {
			t.Fatalf("%v: expected a domain error, got %v", times, err)
		}
	}

	for _, ic := range []InitialConditions{
		{B: 0, Et0: 1.5},
		{B: 100, Et0: 1},
		{B: 100, Et0: 0.5},
		{B: 100, Et0: 1.5, Phi0: math.NaN()},
	} {
		if _, err := NewEncounter(ic, sys, Order2PN, Options{}); !errors.Is(err, ErrNumericalDomain) {
			t.Fatalf("%+v: expected a domain error, got %v", ic, err)
		}
	}
	_, err = NewEncounter(testInitial, sys, Order(1), Options{})
	require.ErrorIs(t, err, ErrInvalidOrder)
	_, err = NewEncounter(testInitial, System{Eta: 0.3}, Order2PN, Options{})
	require.ErrorIs(t, err, ErrNumericalDomain)
	// The spinning system needs the initial directions.
	_, err = NewEncounter(InitialConditions{B: 100, Et0: 1.5}, sys, Order2PN, Options{Spinning: true})
	require.ErrorIs(t, err, ErrNumericalDomain)
	_, err = NewEncounter(testInitial, System{Eta: 0.25, S1: 0.5}, Order2PN, Options{Spinning: true})
	require.ErrorIs(t, err, ErrNumericalDomain)
}

func TestStageTimes(t *testing.T) {
	it := &integration{t0: -3, t1: 7, steps: 3}
	var got []float64
	for it.done < it.steps {
		for i := 0; i < 4; i++ {
			got = append(got, it.stageTime())
			it.calls++
		}
		it.SetState(0, nil)
	}
	if got[len(got)-1] != 7 {
		t.Fatalf("last stage at %g", got[len(got)-1])
	}
	for i := 1; i < len(got); i++ {
		if got[i] < got[i-1] {
			t.Fatalf("stage times decrease: %v", got)
		}
	}
	if !scalar.EqualWithinAbs(got[1], -3+10./6, 1e-14) || !scalar.EqualWithinAbs(got[4], -3+10./3, 1e-14) {
		t.Fatalf("unexpected stage times %v", got)
	}
}
