package hyperbolic

import (
	"math"

	"gonum.org/v1/gonum/floats"
	"gonum.org/v1/gonum/stat"
)

// Drift summarizes a series of relative deviations.
type Drift struct {
	Max, Mean, Std float64
}

func newDrift(dev []float64) Drift {
	if len(dev) == 1 {
		return Drift{Max: dev[0], Mean: dev[0]}
	}
	mean, std := stat.MeanStdDev(dev, nil)
	return Drift{Max: floats.Max(dev), Mean: mean, Std: std}
}

// ElementDrift holds the drift of each element of the orbit.
type ElementDrift struct {
	Et, Er, Ephi, Ar, N Drift
}

// Diagnostics are numerical checks of a trajectory.
type Diagnostics struct {
	// FromStart is the deviation of the elements from their value at the first sample.
	FromStart ElementDrift
	// SpinOrbit25 is the relative size of the 2.5PN corrections against the same (E, L) evaluated
	// at 1.5PN. It is nil unless the trajectory is at 2.5PN.
	SpinOrbit25 *ElementDrift
}

// relativeDeviation returns |x - ref|/|ref| for every pair.
func relativeDeviation(x, ref []float64) []float64 {
	dev := make([]float64, len(x))
	floats.SubTo(dev, x, ref)
	for i := range dev {
		dev[i] = math.Abs(dev[i] / ref[i])
	}
	return dev
}

func constant(v float64, size int) []float64 {
	s := make([]float64, size)
	for i := range s {
		s[i] = v
	}
	return s
}

func elementDrift(x, ref map[string][]float64) ElementDrift {
	return ElementDrift{
		Et:   newDrift(relativeDeviation(x["et"], ref["et"])),
		Er:   newDrift(relativeDeviation(x["er"], ref["er"])),
		Ephi: newDrift(relativeDeviation(x["ephi"], ref["ephi"])),
		Ar:   newDrift(relativeDeviation(x["ar"], ref["ar"])),
		N:    newDrift(relativeDeviation(x["n"], ref["n"])),
	}
}

// Diagnose returns the drift of the elements along the trajectory.
func Diagnose(tr *Trajectory) (Diagnostics, error) {
	size := tr.Len()
	if size == 0 {
		return Diagnostics{}, nil
	}
	series := map[string][]float64{
		"et":   make([]float64, size),
		"er":   make([]float64, size),
		"ephi": make([]float64, size),
		"ar":   make([]float64, size),
		"n":    tr.N,
	}
	for i, el := range tr.Elements {
		series["et"][i] = el.Et
		series["er"][i] = el.Er
		series["ephi"][i] = el.Ephi
		series["ar"][i] = el.Ar
	}
	start := make(map[string][]float64, len(series))
	for k, v := range series {
		start[k] = constant(v[0], size)
	}
	diag := Diagnostics{FromStart: elementDrift(series, start)}

	if tr.Order != Order2_5PN {
		return diag, nil
	}
	low := map[string][]float64{
		"et":   make([]float64, size),
		"er":   make([]float64, size),
		"ephi": make([]float64, size),
		"ar":   make([]float64, size),
		"n":    make([]float64, size),
	}
	full := map[string][]float64{
		"et":   series["et"],
		"er":   series["er"],
		"ephi": series["ephi"],
		"ar":   series["ar"],
		"n":    make([]float64, size),
	}
	for i, el := range tr.Elements {
		lo, err := ElementsFromEnergy(el.E, el.L, tr.Proj[i], tr.System, Order1_5PN)
		if err != nil {
			return diag, err
		}
		low["et"][i], low["er"][i], low["ephi"][i], low["ar"][i], low["n"][i] = lo.Et, lo.Er, lo.Ephi, lo.Ar, lo.N
		full["n"][i] = el.N
	}
	so := elementDrift(full, low)
	diag.SpinOrbit25 = &so
	return diag, nil
}
