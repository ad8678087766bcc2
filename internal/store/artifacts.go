package store

import (
	"encoding/csv"
	"fmt"
	"os"
	"path/filepath"
	"strconv"
	"strings"

	"github.com/sam-harri/GaussianPI/internal/engine"
	"github.com/sam-harri/GaussianPI/pkg/models"
)

// ArtifactWriter persists the raw output series of evaluated trials for
// later inspection by external tooling. Files are keyed by the trial's
// parameter values and id, one CSV per trial.
type ArtifactWriter struct {
	dir   string
	names []string
}

// NewArtifactWriter creates the artifact directory for a study
func NewArtifactWriter(dataDir, study string, paramNames []string) (*ArtifactWriter, error) {
	dir := filepath.Join(dataDir, "simulation_runs", study)
	if err := os.MkdirAll(dir, 0755); err != nil {
		return nil, fmt.Errorf("failed to create artifact directory %s: %w", dir, err)
	}
	return &ArtifactWriter{
		dir:   dir,
		names: append([]string(nil), paramNames...),
	}, nil
}

// Dir returns the study's artifact directory
func (w *ArtifactWriter) Dir() string {
	return w.dir
}

// paramsKey renders the parameter values in declaration order,
// e.g. "KC-0.3889_KI-0.0186"
func (w *ArtifactWriter) paramsKey(params map[string]float64) string {
	parts := make([]string, 0, len(w.names))
	for _, name := range w.names {
		parts = append(parts, fmt.Sprintf("%s-%.4f", name, params[name]))
	}
	return strings.Join(parts, "_")
}

// WriteTrialSeries persists a completed trial's three series and returns the
// artifact path
func (w *ArtifactWriter) WriteTrialSeries(t *models.Trial, res *engine.Result) (string, error) {
	name := fmt.Sprintf("%s_trial-%d.csv", w.paramsKey(t.Params), t.ID)
	path := filepath.Join(w.dir, name)
	if err := writeSeries(path, res); err != nil {
		return "", fmt.Errorf("failed to write artifact for trial %d: %w", t.ID, err)
	}
	return path, nil
}

// WriteBestSeries persists the re-run of the study's best parameters
func (w *ArtifactWriter) WriteBestSeries(params map[string]float64, res *engine.Result) (string, error) {
	name := fmt.Sprintf("best_%s.csv", w.paramsKey(params))
	path := filepath.Join(w.dir, name)
	if err := writeSeries(path, res); err != nil {
		return "", fmt.Errorf("failed to write best-series artifact: %w", err)
	}
	return path, nil
}

func writeSeries(path string, res *engine.Result) error {
	file, err := os.Create(path)
	if err != nil {
		return err
	}
	defer file.Close()

	cw := csv.NewWriter(file)
	if err := cw.Write([]string{"Time", "Actual", "Setpoint"}); err != nil {
		return err
	}
	for i := 0; i < res.Len(); i++ {
		row := []string{
			strconv.FormatFloat(res.Time[i], 'g', -1, 64),
			strconv.FormatFloat(res.Actual[i], 'g', -1, 64),
			strconv.FormatFloat(res.Setpoint[i], 'g', -1, 64),
		}
		if err := cw.Write(row); err != nil {
			return err
		}
	}
	cw.Flush()
	if err := cw.Error(); err != nil {
		return err
	}
	return file.Sync()
}
