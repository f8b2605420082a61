package hyperbolic

import (
	"fmt"
	"os"
	"sync"

	"github.com/spf13/viper"
)

var (
	cfgMu     sync.Mutex // guards cfgLoaded and config
	cfgLoaded = false
	config    = _pnconfig{}
)

// _pnconfig is a "hidden" struct, just use `pnConfig`
type _pnconfig struct {
	substeps      int     // minimum number of RK4 steps between two output times
	maxStep       float64 // maximum RK4 step, in units of GM/c³
	invTolerance  float64 // relative tolerance of the numerical (E, L) inversion
	invIterations int     // maximum Newton iterations of the numerical (E, L) inversion
	outputDir     string
}

func setConfigDefaults(v *viper.Viper) {
	v.SetDefault("integrator.substeps", 16)
	v.SetDefault("integrator.max_step", 5.0)
	v.SetDefault("inversion.tolerance", 1e-12)
	v.SetDefault("inversion.max_iterations", 50)
	v.SetDefault("general.output_path", ".")
}

// pnConfig returns the configuration, read from $PNORBIT_CONFIG/conf.toml when that variable is set.
// It is safe for concurrent use.
func pnConfig() _pnconfig {
	cfgMu.Lock()
	defer cfgMu.Unlock()
	if cfgLoaded {
		return config
	}
	v := viper.New()
	setConfigDefaults(v)
	if confPath := os.Getenv("PNORBIT_CONFIG"); confPath != "" {
		v.SetConfigName("conf")
		v.AddConfigPath(confPath)
		if err := v.ReadInConfig(); err != nil {
			panic(fmt.Errorf("%s/conf.toml not found", confPath))
		}
	}
	conf := _pnconfig{
		substeps:      v.GetInt("integrator.substeps"),
		maxStep:       v.GetFloat64("integrator.max_step"),
		invTolerance:  v.GetFloat64("inversion.tolerance"),
		invIterations: v.GetInt("inversion.max_iterations"),
		outputDir:     v.GetString("general.output_path"),
	}
	if conf.substeps < 1 || conf.maxStep <= 0 {
		panic("integrator.substeps must be at least 1 and integrator.max_step must be positive")
	}
	if conf.invTolerance <= 0 || conf.invIterations < 1 {
		panic("inversion.tolerance must be positive and inversion.max_iterations at least 1")
	}
	config = conf
	cfgLoaded = true
	return config
}
