package hyperbolic

import (
	"encoding/csv"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strconv"
	"time"

	"github.com/soniakeys/meeus/v3/julian"
)

// ExportConfig configures the exporting of the simulation.
type ExportConfig struct {
	Filename  string
	Timestamp bool // append the creation time to the file names
	Waveform  bool // also export the polarizations
}

// IsUseless returns whether this config doesn't actually do anything.
func (c ExportConfig) IsUseless() bool {
	return c.Filename == ""
}

// Export writes the trajectory, and the waveform if requested, to CSV files in the output
// directory of the configuration. It returns the names of the written files.
func Export(conf ExportConfig, tr *Trajectory, wf *Waveform) ([]string, error) {
	if conf.IsUseless() {
		return nil, nil
	}
	now := time.Now().UTC()
	var written []string
	name, err := writeFile(conf.path("trajectory", now), func(w io.Writer) error {
		return WriteTrajectoryCSV(w, tr, now)
	})
	if err != nil {
		return nil, err
	}
	written = append(written, name)
	if conf.Waveform && wf != nil {
		name, err = writeFile(conf.path("waveform", now), func(w io.Writer) error {
			return WriteWaveformCSV(w, wf, now)
		})
		if err != nil {
			return written, err
		}
		written = append(written, name)
	}
	return written, nil
}

func (c ExportConfig) path(kind string, now time.Time) string {
	dir := pnConfig().outputDir
	if c.Timestamp {
		return filepath.Join(dir, fmt.Sprintf("%s-%s-%d-%02d-%02dT%02d.%02d.%02d.csv", kind, c.Filename, now.Year(), now.Month(), now.Day(), now.Hour(), now.Minute(), now.Second()))
	}
	return filepath.Join(dir, fmt.Sprintf("%s-%s.csv", kind, c.Filename))
}

func writeFile(name string, write func(io.Writer) error) (string, error) {
	f, err := os.Create(name)
	if err != nil {
		return "", err
	}
	if err := write(f); err != nil {
		f.Close()
		return "", fmt.Errorf("writing %s: %w", name, err)
	}
	return name, f.Close()
}

func writeHeader(w io.Writer, created time.Time, legend string) error {
	_, err := fmt.Fprintf(w, `# Creation date (UTC): %s
# Creation Julian date: %f
# %s
#   Units are G = c = M = 1, with M the total mass
`, created.UTC(), julian.TimeToJD(created), legend)
	return err
}

func formatFloats(vals ...float64) []string {
	rec := make([]string, len(vals))
	for i, v := range vals {
		rec[i] = strconv.FormatFloat(v, 'g', -1, 64)
	}
	return rec
}

// WriteTrajectoryCSV writes one record per sample of the trajectory.
func WriteTrajectoryCSV(w io.Writer, tr *Trajectory, created time.Time) error {
	if err := writeHeader(w, created, fmt.Sprintf("Trajectory at %s, spinning: %v", tr.Order, tr.Spinning)); err != nil {
		return err
	}
	cw := csv.NewWriter(w)
	hdr := []string{"t", "n", "et", "E", "L", "u", "nu", "r", "dr", "phi", "dphi",
		"n_x", "n_y", "n_z", "k_x", "k_y", "k_z", "v_x", "v_y", "v_z",
		"s1_x", "s1_y", "s1_z", "s2_x", "s2_y", "s2_z"}
	if err := cw.Write(hdr); err != nil {
		return err
	}
	for i := range tr.T {
		n, k, v, s1, s2 := tr.NHat[i], tr.K[i], tr.V[i], tr.S1[i], tr.S2[i]
		rec := formatFloats(tr.T[i], tr.N[i], tr.Et[i], tr.Elements[i].E, tr.Elements[i].L, tr.U[i], tr.Nu[i],
			tr.R[i], tr.Dr[i], tr.Phi[i], tr.Dphi[i],
			n.X, n.Y, n.Z, k.X, k.Y, k.Z, v.X, v.Y, v.Z,
			s1.X, s1.Y, s1.Z, s2.X, s2.Y, s2.Z)
		if err := cw.Write(rec); err != nil {
			return err
		}
	}
	cw.Flush()
	return cw.Error()
}

// WriteWaveformCSV writes one record per sample of the waveform.
func WriteWaveformCSV(w io.Writer, wf *Waveform, created time.Time) error {
	if err := writeHeader(w, created, fmt.Sprintf("Polarizations without the μ/R amplitude, μ=%g", wf.Mu)); err != nil {
		return err
	}
	cw := csv.NewWriter(w)
	if err := cw.Write([]string{"t", "h_plus", "h_cross"}); err != nil {
		return err
	}
	for i := range wf.T {
		if err := cw.Write(formatFloats(wf.T[i], wf.Plus[i], wf.Cross[i])); err != nil {
			return err
		}
	}
	cw.Flush()
	return cw.Error()
}
