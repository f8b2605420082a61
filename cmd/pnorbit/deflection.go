package main

import (
	"fmt"
	"io"
	"os"
	"text/tabwriter"

	"github.com/spf13/cobra"
	"gonum.org/v1/gonum/floats"
	"gonum.org/v1/gonum/spatial/r3"

	hyperbolic "github.com/MathieuFerey/hyperbolic-orbit-2-5PN"
)

var propagateDeflection bool

var deflectionCmd = &cobra.Command{
	Use:   "deflection",
	Short: "Print the scattering angle of the encounter at every PN order",
	Long: `Print the Newtonian scattering angle of the initial time eccentricity and the
analytic scattering angle of the non-spinning system at every PN order.
With --propagate, the angle between the first and last velocities of the
propagated trajectory is printed too, next to the Newtonian turn angle of a
Kepler orbit with the same speed and closest approach.`,
	RunE: func(cmd *cobra.Command, args []string) error {
		sc, err := loadScenario(scenario)
		if err != nil {
			return err
		}
		return deflection(os.Stdout, sc)
	},
}

func init() {
	deflectionCmd.Flags().BoolVar(&propagateDeflection, "propagate", false, "also propagate the scenario")
}

func deflection(out io.Writer, sc Scenario) error {
	n0, err := hyperbolic.MeanMotionFromImpact(sc.Initial.B, sc.Initial.Et0, sc.System.Eta)
	if err != nil {
		return err
	}
	w := tabwriter.NewWriter(out, 0, 4, 2, ' ', 0)
	fmt.Fprintf(w, "order\tdeflection (rad)\tdeflection (deg)\n")
	χ := hyperbolic.NewtonianDeflection(sc.Initial.Et0)
	fmt.Fprintf(w, "Kepler\t%.10f\t%.6f\n", χ, hyperbolic.Rad2deg(χ))
	for _, order := range []hyperbolic.Order{hyperbolic.Newtonian, hyperbolic.Order1PN, hyperbolic.Order2PN} {
		el, err := hyperbolic.ElementsFromMeanMotion(n0, sc.Initial.Et0, hyperbolic.Projections{}, sc.System, order)
		if err != nil {
			return err
		}
		χ := hyperbolic.Deflection(el, sc.System.Eta, order)
		fmt.Fprintf(w, "%s\t%.10f\t%.6f\n", order, χ, hyperbolic.Rad2deg(χ))
	}
	if propagateDeflection {
		enc, err := hyperbolic.NewEncounter(sc.Initial, sc.System, sc.Order, sc.Options)
		if err != nil {
			return err
		}
		enc.SetLogger(logger)
		tr, err := enc.Propagate(sc.Times)
		if err != nil {
			return err
		}
		asym := hyperbolic.AsymptotesFromVelocities(tr.V[0], tr.V[tr.Len()-1])
		fmt.Fprintf(w, "%s (propagated)\t%.10f\t%.6f\n", sc.Order, asym.Psi, hyperbolic.Rad2deg(asym.Psi))
		turn := hyperbolic.TurnAngle(r3.Norm(tr.V[0]), floats.Min(tr.R))
		fmt.Fprintf(w, "Kepler (turn angle)\t%.10f\t%.6f\n", turn, hyperbolic.Rad2deg(turn))
		fmt.Fprintf(w, "\nNewtonian b from the velocities: %g (input %g, |v| %g)\n", asym.B, sc.Initial.B, r3.Norm(tr.V[0]))
	}
	return w.Flush()
}
