package hyperbolic

import (
	"fmt"
	"math"
	"os"
	"time"

	"github.com/ChristopherRabotin/ode"
	"github.com/go-kit/log"
	"github.com/go-kit/log/level"
	"gonum.org/v1/gonum/floats"
	"gonum.org/v1/gonum/spatial/r3"
)

/* Handles the propagation of an encounter. */

// InitialConditions are the caller supplied elements of the encounter.
type InitialConditions struct {
	B    float64 // impact parameter
	Et0  float64 // initial time eccentricity, > 1
	Phi0 float64 // orbital phase at T0
	T0   float64 // periastron passage
	// Initial directions of the orbital angular momentum and of the spins.
	// They are only used by the spinning system.
	K, S1Dir, S2Dir r3.Vec
}

// Options selects the physics of the propagation.
type Options struct {
	RadiationReaction bool
	Spinning          bool
	AnalyticEL        bool
}

// Encounter defines a two-body encounter and does the propagation.
type Encounter struct {
	Initial  InitialConditions
	Dynamics Dynamics
	Substeps int     // minimum number of RK4 steps per output interval
	MaxStep  float64 // maximum RK4 step
	logger   log.Logger
}

// NewEncounter returns a new Encounter with the integrator settings from the configuration.
func NewEncounter(ic InitialConditions, sys System, order Order, opts Options) (*Encounter, error) {
	if err := checkInputs(sys, order); err != nil {
		return nil, err
	}
	if !isFinite(ic.B, ic.Et0, ic.Phi0, ic.T0) || !(ic.B > 0) || !(ic.Et0 > 1) {
		return nil, fmt.Errorf("%w: b=%g, et0=%g, phi0=%g, t0=%g", ErrNumericalDomain, ic.B, ic.Et0, ic.Phi0, ic.T0)
	}
	if opts.Spinning {
		if unit(ic.K) == (r3.Vec{}) {
			return nil, fmt.Errorf("%w: no initial angular momentum direction", ErrNumericalDomain)
		}
		if (sys.S1 != 0 && unit(ic.S1Dir) == r3.Vec{}) || (sys.S2 != 0 && unit(ic.S2Dir) == r3.Vec{}) {
			return nil, fmt.Errorf("%w: no initial direction for a spinning body", ErrNumericalDomain)
		}
	}
	conf := pnConfig()
	e := &Encounter{
		Initial: ic,
		Dynamics: Dynamics{
			System:     sys,
			Order:      order,
			T0:         ic.T0,
			Spinning:   opts.Spinning,
			AnalyticEL: opts.AnalyticEL,
			Inversion:  DefaultInversionConfig(),
			Perts:      Perturbations{RadiationReaction: opts.RadiationReaction},
		},
		Substeps: conf.substeps,
		MaxStep:  conf.maxStep,
	}
	e.SetLogger(log.NewLogfmtLogger(log.NewSyncWriter(os.Stdout)))
	return e, nil
}

// SetLogger sets the logger of the propagation.
func (e *Encounter) SetLogger(logger log.Logger) {
	e.logger = log.With(logger, "subsys", "encounter")
}

// initialState returns the state at the first output time.
func (e *Encounter) initialState(n0 float64) State {
	y := State{N: n0, Et: e.Initial.Et0, K: zHat, Phi: e.Initial.Phi0}
	if e.Dynamics.Spinning {
		y.K = unit(e.Initial.K)
		y.S1 = spinDirection(e.Dynamics.System.S1, e.Initial.S1Dir)
		y.S2 = spinDirection(e.Dynamics.System.S2, e.Initial.S2Dir)
	}
	return y
}

// Propagate integrates the encounter over the strictly increasing output times, and
// reconstructs the orbital motion at each of them.
func (e *Encounter) Propagate(times []float64) (*Trajectory, error) {
	if err := checkGrid(times); err != nil {
		return nil, err
	}
	n0, err := MeanMotionFromImpact(e.Initial.B, e.Initial.Et0, e.Dynamics.System.Eta)
	if err != nil {
		return nil, err
	}
	level.Info(e.logger).Log("status", "started", "order", e.Dynamics.Order, "spinning", e.Dynamics.Spinning, "rr", e.Dynamics.Perts.RadiationReaction, "n0", n0, "samples", len(times))
	start := time.Now()

	y := e.initialState(n0)
	rec := NewRecorder(4 * e.Substeps * len(times))
	// The first output time may not be reached by any RK4 stage when the grid has a single time.
	if _, err := e.Dynamics.Derivative(times[0], y, rec); err != nil {
		return nil, fmt.Errorf("t=%g: %w", times[0], err)
	}
	states := make([]State, len(times))
	states[0] = y
	for i := 1; i < len(times); i++ {
		if y, err = e.integrate(times[i-1], times[i], y, rec); err != nil {
			level.Error(e.logger).Log("status", "failed", "t", times[i-1], "err", err)
			return nil, err
		}
		states[i] = y
	}

	li, err := rec.Interpolator()
	if err != nil {
		return nil, err
	}
	if li.Duplicates > 0 {
		level.Debug(e.logger).Log("msg", "dropped repeated log times", "count", li.Duplicates)
	}
	if li.TMin > times[0] || li.TMax < times[len(times)-1] {
		level.Warn(e.logger).Log("msg", "flat extrapolation of the logs", "logged", fmt.Sprintf("[%g, %g]", li.TMin, li.TMax))
	}
	tr, err := e.Dynamics.reconstruct(times, states, li, e.Initial.Phi0)
	if err != nil {
		return nil, err
	}
	level.Info(e.logger).Log("status", "finished", "samples", len(times), "evaluations", rec.Len(), "duration", time.Since(start))
	return tr, nil
}

// integrate runs a fixed step RK4 from t0 to t1.
func (e *Encounter) integrate(t0, t1 float64, y State, rec *Recorder) (State, error) {
	steps := int(math.Max(float64(e.Substeps), math.Ceil((t1-t0)/e.MaxStep)))
	integ := &integration{
		dyn:      &e.Dynamics,
		rec:      rec,
		spinning: e.Dynamics.Spinning,
		state:    y.slice(e.Dynamics.Spinning),
		t0:       t0,
		t1:       t1,
		steps:    steps,
	}
	ode.NewRK4(0, (t1-t0)/float64(steps), integ).Solve() // Blocking.
	if integ.err != nil {
		return State{}, integ.err
	}
	return stateFromSlice(integ.state, integ.spinning), nil
}

func checkGrid(times []float64) error {
	if len(times) == 0 {
		return fmt.Errorf("%w: empty time grid", ErrNumericalDomain)
	}
	if floats.HasNaN(times) || math.IsInf(floats.Max(times), 1) || math.IsInf(floats.Min(times), -1) {
		return fmt.Errorf("%w: non finite time grid", ErrNumericalDomain)
	}
	for i := 1; i < len(times); i++ {
		if !(times[i] > times[i-1]) {
			return fmt.Errorf("%w: time grid not strictly increasing at %d (%g after %g)", ErrNumericalDomain, i, times[i], times[i-1])
		}
	}
	return nil
}

// stageOffsets are the fractions of a step at which RK4 evaluates the derivative.
var stageOffsets = [4]float64{0, 0.5, 0.5, 1}

// integration implements ode.Integrable over one output interval.
type integration struct {
	dyn      *Dynamics
	rec      *Recorder
	spinning bool
	state    []float64
	t0, t1   float64
	steps    int
	done     int // completed steps
	calls    int // derivative evaluations in the current step
	err      error
}

// GetState returns the state for the integrator.
func (it *integration) GetState() []float64 {
	s := make([]float64, len(it.state))
	copy(s, it.state)
	return s
}

// SetState sets the updated state.
func (it *integration) SetState(_ float64, s []float64) {
	copy(it.state, s)
	it.done++
	it.calls = 0
}

// Stop implements the stop call of the integrator.
func (it *integration) Stop(_ float64) bool {
	return it.err != nil || it.done >= it.steps
}

// Func is the integration function. The time of each stage is derived from the step count
// rather than accumulated, so that the recorded times never decrease and end exactly on t1.
func (it *integration) Func(_ float64, f []float64) []float64 {
	fDot := make([]float64, len(f))
	if it.err != nil {
		return fDot
	}
	t := it.stageTime()
	it.calls++
	dy, err := it.dyn.Derivative(t, stateFromSlice(f, it.spinning), it.rec)
	if err != nil {
		it.err = fmt.Errorf("t=%g: %w", t, err)
		return fDot
	}
	copy(fDot, dy.slice(it.spinning))
	return fDot
}

func (it *integration) stageTime() float64 {
	frac := (float64(it.done) + stageOffsets[it.calls%len(stageOffsets)]) / float64(it.steps)
	if frac >= 1 {
		return it.t1
	}
	return math.Min(it.t0+frac*(it.t1-it.t0), it.t1)
}
