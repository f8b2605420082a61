package main

import (
	"context"
	"fmt"
	"io"
	"os"
	"runtime"
	"text/tabwriter"

	"github.com/go-kit/log"
	"github.com/go-kit/log/level"
	"github.com/spf13/cobra"
	"golang.org/x/sync/errgroup"
	"gonum.org/v1/gonum/floats"

	hyperbolic "github.com/MathieuFerey/hyperbolic-orbit-2-5PN"
)

var (
	cpus       int
	bMin, bMax float64
	bCount     int
)

var scanCmd = &cobra.Command{
	Use:   "scan",
	Short: "Propagate the scenario over a range of impact parameters",
	Long: `Propagate the encounter of the scenario once per impact parameter between
--bmin and --bmax and print the deflection measured from the velocities next
to the analytic deflection of the scenario order (capped at 2PN).`,
	RunE: func(cmd *cobra.Command, args []string) error {
		sc, err := loadScenario(scenario)
		if err != nil {
			return err
		}
		if cpus <= 0 || cpus > runtime.NumCPU() {
			cpus = runtime.NumCPU()
		}
		return scan(cmd.Context(), os.Stdout, sc, floats.Span(make([]float64, bCount), bMin, bMax), cpus, logger)
	},
}

func init() {
	scanCmd.Flags().IntVar(&cpus, "cpus", -1, "number of CPUs to use for this scan (set to 0 for max CPUs)")
	scanCmd.Flags().Float64Var(&bMin, "bmin", 50, "smallest impact parameter")
	scanCmd.Flags().Float64Var(&bMax, "bmax", 500, "largest impact parameter")
	scanCmd.Flags().IntVar(&bCount, "count", 10, "number of impact parameters (at least 2)")
}

type scanResult struct {
	b, n0, et, analytic, measured float64
}

// scan propagates one encounter per impact parameter with at most `workers`
// propagations in flight. The rows are printed in the order of bs.
func scan(ctx context.Context, out io.Writer, sc Scenario, bs []float64, workers int, logger log.Logger) error {
	if len(bs) < 2 {
		return fmt.Errorf("scan needs at least two impact parameters, got %d", len(bs))
	}
	if ctx == nil {
		ctx = context.Background()
	}
	analyticOrder := sc.Order
	if analyticOrder > hyperbolic.Order2PN {
		analyticOrder = hyperbolic.Order2PN
	}
	rslts := make([]scanResult, len(bs))
	eg, egCtx := errgroup.WithContext(ctx)
	eg.SetLimit(workers)
	for i, b := range bs {
		i, b := i, b
		eg.Go(func() error {
			if err := egCtx.Err(); err != nil {
				return err
			}
			ic := sc.Initial
			ic.B = b
			enc, err := hyperbolic.NewEncounter(ic, sc.System, sc.Order, sc.Options)
			if err != nil {
				return fmt.Errorf("b=%g: %w", b, err)
			}
			enc.SetLogger(log.With(logger, "b", b))
			n0, err := hyperbolic.MeanMotionFromImpact(b, ic.Et0, sc.System.Eta)
			if err != nil {
				return fmt.Errorf("b=%g: %w", b, err)
			}
			tr, err := enc.Propagate(sc.Times)
			if err != nil {
				return fmt.Errorf("b=%g: %w", b, err)
			}
			el, err := hyperbolic.ElementsFromMeanMotion(n0, ic.Et0, hyperbolic.Projections{}, sc.System, analyticOrder)
			if err != nil {
				return fmt.Errorf("b=%g: %w", b, err)
			}
			asym := hyperbolic.AsymptotesFromVelocities(tr.V[0], tr.V[tr.Len()-1])
			last := tr.Len() - 1
			rslts[i] = scanResult{b: b, n0: n0, et: tr.Et[last],
				analytic: hyperbolic.Deflection(el, sc.System.Eta, analyticOrder), measured: asym.Psi}
			level.Debug(logger).Log("subsys", "scan", "b", b, "psi", asym.Psi)
			return nil
		})
	}
	if err := eg.Wait(); err != nil {
		return err
	}
	w := tabwriter.NewWriter(out, 0, 4, 2, ' ', 0)
	fmt.Fprintf(w, "b\tn0\tet (last)\t%s deflection (deg)\tpropagated (deg)\n", analyticOrder)
	for _, r := range rslts {
		fmt.Fprintf(w, "%g\t%.6e\t%.6f\t%.6f\t%.6f\n", r.b, r.n0, r.et, hyperbolic.Rad2deg(r.analytic), hyperbolic.Rad2deg(r.measured))
	}
	return w.Flush()
}
