package main

import (
	"fmt"
	"os"

	"github.com/go-kit/log"
	"github.com/go-kit/log/level"
	"github.com/spf13/cobra"
)

// This code reads a scenario file and propagates the encounter it describes.

var (
	scenario string
	verbose  bool
	logger   log.Logger
)

var rootCmd = &cobra.Command{
	Use:   "pnorbit",
	Short: "Spinning hyperbolic encounters at 2.5PN",
	Long: `pnorbit propagates a two-body hyperbolic encounter in the post-Newtonian
quasi-Keplerian parametrization, with spin precession and radiation reaction,
and computes the gravitational wave polarizations seen by a distant observer.`,
	SilenceUsage: true,
	PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
		logger = log.NewLogfmtLogger(log.NewSyncWriter(os.Stderr))
		if verbose {
			logger = level.NewFilter(logger, level.AllowDebug())
		} else {
			logger = level.NewFilter(logger, level.AllowInfo())
		}
		logger = log.With(logger, "ts", log.DefaultTimestampUTC)
		return nil
	},
}

func init() {
	addScenarioFlags(rootCmd.PersistentFlags())
	rootCmd.AddCommand(runCmd, deflectionCmd, scanCmd)
}

func main() {
	if err := rootCmd.Execute(); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}
