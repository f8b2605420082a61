package hyperbolic

import (
	"bytes"
	"encoding/csv"
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/require"
)

func TestWriteTrajectoryCSV(t *testing.T) {
	tr := propagate(t, testInitial, System{Eta: 0.25}, Order2PN, Options{AnalyticEL: true}, testGrid())
	var buf bytes.Buffer
	created := time.Date(2017, 1, 18, 1, 29, 17, 0, time.UTC)
	require.NoError(t, WriteTrajectoryCSV(&buf, tr, created))

	lines := strings.Split(strings.TrimSpace(buf.String()), "\n")
	require.Equal(t, "# Creation date (UTC): 2017-01-18 01:29:17 +0000 UTC", lines[0])
	require.True(t, strings.HasPrefix(lines[1], "# Creation Julian date: 2457771.5"), lines[1])
	require.Contains(t, lines[2], "2PN")

	var body []string
	for _, l := range lines {
		if !strings.HasPrefix(l, "#") {
			body = append(body, l)
		}
	}
	records, err := csv.NewReader(strings.NewReader(strings.Join(body, "\n"))).ReadAll()
	require.NoError(t, err)
	require.Len(t, records, tr.Len()+1)
	require.Equal(t, "t", records[0][0])
	require.Len(t, records[0], 26)
	require.Equal(t, "-3000", records[1][0])
	require.Equal(t, "0.3", records[31][9])
}

func TestWriteWaveformCSV(t *testing.T) {
	wf := &Waveform{T: []float64{0, 1}, Plus: []float64{0.5, -0.25}, Cross: []float64{1e-3, 2}, Mu: 0.25}
	var buf bytes.Buffer
	require.NoError(t, WriteWaveformCSV(&buf, wf, time.Now()))
	out := buf.String()
	require.Contains(t, out, "μ=0.25")
	require.True(t, strings.HasSuffix(out, "t,h_plus,h_cross\n0,0.5,0.001\n1,-0.25,2\n"), out)
}

func TestExport(t *testing.T) {
	dir := t.TempDir()
	setConfig(t, _pnconfig{substeps: 16, maxStep: 5, invTolerance: 1e-12, invIterations: 50, outputDir: dir})

	tr := propagate(t, testInitial, System{Eta: 0.25}, Newtonian, Options{AnalyticEL: true}, []float64{-10, 0, 10})
	wf, err := Polarizations(Observer{M1: 0.5, M2: 0.5}, tr)
	require.NoError(t, err)

	files, err := Export(ExportConfig{}, tr, wf)
	require.NoError(t, err)
	require.Empty(t, files)

	files, err = Export(ExportConfig{Filename: "test", Waveform: true}, tr, wf)
	require.NoError(t, err)
	require.Equal(t, []string{filepath.Join(dir, "trajectory-test.csv"), filepath.Join(dir, "waveform-test.csv")}, files)
	for _, f := range files {
		_, err := os.Stat(f)
		require.NoError(t, err)
	}

	files, err = Export(ExportConfig{Filename: "stamped", Timestamp: true}, tr, nil)
	require.NoError(t, err)
	require.Len(t, files, 1)
	require.True(t, strings.HasPrefix(filepath.Base(files[0]), "trajectory-stamped-"), files[0])
}
