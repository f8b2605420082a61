package main

import (
	"errors"
	"fmt"
	"math"
	"path/filepath"
	"strings"

	"github.com/spf13/pflag"
	"github.com/spf13/viper"
	"gonum.org/v1/gonum/floats"
	"gonum.org/v1/gonum/spatial/r3"

	hyperbolic "github.com/MathieuFerey/hyperbolic-orbit-2-5PN"
)

const defaultScenario = "~~unset~~"

func addScenarioFlags(fs *pflag.FlagSet) {
	fs.StringVar(&scenario, "scenario", defaultScenario, "scenario TOML file")
	fs.BoolVarP(&verbose, "verbose", "v", false, "log the debug messages")
}

// Scenario is everything read from a scenario file.
type Scenario struct {
	System   hyperbolic.System
	Order    hyperbolic.Order
	Initial  hyperbolic.InitialConditions
	Options  hyperbolic.Options
	Times    []float64
	Observer hyperbolic.Observer
	Waveform bool
	Export   hyperbolic.ExportConfig
}

// loadScenario reads the scenario file, where the extension is optional.
func loadScenario(path string) (Scenario, error) {
	if path == defaultScenario {
		return Scenario{}, errors.New("no scenario provided")
	}
	v := viper.New()
	v.SetConfigType("toml")
	v.SetConfigName(strings.TrimSuffix(filepath.Base(path), ".toml"))
	v.AddConfigPath(filepath.Dir(path))
	setScenarioDefaults(v)
	if err := v.ReadInConfig(); err != nil {
		return Scenario{}, fmt.Errorf("%s: %w", path, err)
	}
	return scenarioFrom(v)
}

func setScenarioDefaults(v *viper.Viper) {
	v.SetDefault("initial.k", []float64{0, 0, 1})
	v.SetDefault("grid.samples", 1001)
	v.SetDefault("options.order", 5)
	v.SetDefault("options.analytic_EL", true)
	v.SetDefault("waveform.order", 4)
	v.SetDefault("export.filename", "")
}

func scenarioFrom(v *viper.Viper) (Scenario, error) {
	var sc Scenario
	sc.System = hyperbolic.System{
		Eta: v.GetFloat64("system.eta"),
		S1:  v.GetFloat64("system.S1"),
		S2:  v.GetFloat64("system.S2"),
	}
	order, err := hyperbolic.ParseOrder(v.GetInt("options.order"))
	if err != nil {
		return sc, err
	}
	sc.Order = order

	k, err := readVec(v, "initial.k")
	if err != nil {
		return sc, err
	}
	s1, err := readVec(v, "initial.s1")
	if err != nil {
		return sc, err
	}
	s2, err := readVec(v, "initial.s2")
	if err != nil {
		return sc, err
	}
	sc.Initial = hyperbolic.InitialConditions{
		B:     v.GetFloat64("initial.b"),
		Et0:   v.GetFloat64("initial.et0"),
		Phi0:  v.GetFloat64("initial.phi0"),
		T0:    v.GetFloat64("initial.t0"),
		K:     k,
		S1Dir: s1,
		S2Dir: s2,
	}
	sc.Options = hyperbolic.Options{
		RadiationReaction: v.GetBool("options.radiation_reaction"),
		Spinning:          v.GetBool("options.spinning"),
		AnalyticEL:        v.GetBool("options.analytic_EL"),
	}

	samples := v.GetInt("grid.samples")
	if samples < 1 {
		return sc, fmt.Errorf("grid.samples=%d must be positive", samples)
	}
	start, end := v.GetFloat64("grid.start"), v.GetFloat64("grid.end")
	if samples == 1 {
		sc.Times = []float64{start}
	} else {
		sc.Times = floats.Span(make([]float64, samples), start, end)
	}

	sc.Waveform = v.GetBool("waveform.enabled")
	m1, m2 := v.GetFloat64("waveform.m1"), v.GetFloat64("waveform.m2")
	if m1 == 0 && m2 == 0 {
		// Unit total mass with the mass ratio of the system.
		δ := math.Sqrt(1 - 4*sc.System.Eta)
		m1, m2 = (1+δ)/2, (1-δ)/2
	}
	θ := v.GetFloat64("waveform.theta")
	if v.IsSet("waveform.theta_deg") {
		θ = hyperbolic.Deg2rad(v.GetFloat64("waveform.theta_deg"))
	}
	sc.Observer = hyperbolic.Observer{
		Theta:    θ,
		Distance: v.GetFloat64("waveform.distance"),
		M1:       m1,
		M2:       m2,
		Chi1:     v.GetFloat64("waveform.chi1"),
		Chi2:     v.GetFloat64("waveform.chi2"),
		GWOrder:  v.GetInt("waveform.order"),
	}
	sc.Export = hyperbolic.ExportConfig{
		Filename:  v.GetString("export.filename"),
		Timestamp: v.GetBool("export.timestamp"),
		Waveform:  sc.Waveform,
	}
	return sc, nil
}

// readVec reads an optional three component vector.
func readVec(v *viper.Viper, key string) (r3.Vec, error) {
	if !v.IsSet(key) {
		return r3.Vec{}, nil
	}
	var c []float64
	switch raw := v.Get(key).(type) {
	case []float64:
		c = raw
	case []interface{}:
		for _, x := range raw {
			switch x := x.(type) {
			case float64:
				c = append(c, x)
			case int64:
				c = append(c, float64(x))
			case int:
				c = append(c, float64(x))
			default:
				return r3.Vec{}, fmt.Errorf("%s: %v is not a number", key, x)
			}
		}
	default:
		return r3.Vec{}, fmt.Errorf("%s must be an array, got %T", key, raw)
	}
	if len(c) != 3 {
		return r3.Vec{}, fmt.Errorf("%s must have three components, got %v", key, c)
	}
	return r3.Vec{X: c[0], Y: c[1], Z: c[2]}, nil
}
