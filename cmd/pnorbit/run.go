package main

import (
	"github.com/go-kit/log"
	"github.com/go-kit/log/level"
	"github.com/spf13/cobra"

	hyperbolic "github.com/MathieuFerey/hyperbolic-orbit-2-5PN"
)

var runCmd = &cobra.Command{
	Use:   "run",
	Short: "Propagate the encounter and compute its waveform",
	Long: `Propagate the encounter of the scenario over its time grid, log the drift of
the orbital elements, compute the polarizations if [waveform] is enabled, and
write the CSV files if [export] has a file name.`,
	RunE: func(cmd *cobra.Command, args []string) error {
		sc, err := loadScenario(scenario)
		if err != nil {
			return err
		}
		return run(sc, logger)
	},
}

func run(sc Scenario, logger log.Logger) error {
	enc, err := hyperbolic.NewEncounter(sc.Initial, sc.System, sc.Order, sc.Options)
	if err != nil {
		return err
	}
	enc.SetLogger(logger)
	tr, err := enc.Propagate(sc.Times)
	if err != nil {
		return err
	}
	diag, err := hyperbolic.Diagnose(tr)
	if err != nil {
		return err
	}
	logDrift(logger, "drift", diag.FromStart)
	if diag.SpinOrbit25 != nil {
		logDrift(logger, "2.5PN-vs-1.5PN", *diag.SpinOrbit25)
	}

	var wf *hyperbolic.Waveform
	if sc.Waveform {
		if wf, err = hyperbolic.Polarizations(sc.Observer, tr); err != nil {
			return err
		}
		if sc.Observer.Distance > 0 {
			wf = wf.AtDistance(sc.Observer.Distance)
		}
	}
	files, err := hyperbolic.Export(sc.Export, tr, wf)
	for _, f := range files {
		level.Info(logger).Log("subsys", "export", "file", f)
	}
	return err
}

func logDrift(logger log.Logger, what string, d hyperbolic.ElementDrift) {
	level.Debug(logger).Log("subsys", "diagnostics", "what", what,
		"et", d.Et.Max, "er", d.Er.Max, "ephi", d.Ephi.Max, "ar", d.Ar.Max, "n", d.N.Max)
}
