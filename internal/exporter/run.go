package exporter

import (
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"time"
)

// ManifestName is the JSON run manifest written next to the tables.
const ManifestName = "run.json"

// RunDir builds the timestamped results directory path for one run, in
// UTC to keep directory names reproducible across machines.
func RunDir(baseDir string, now time.Time) string {
	return filepath.Join(baseDir, "met_mast_results_"+now.UTC().Format("2006-01-02_15-04"))
}

// Manifest summarizes one pipeline run for downstream consumers.
type Manifest struct {
	RunID        string    `json:"run_id"`
	InputFile    string    `json:"input_file"`
	Mode         string    `json:"mode"`
	StartedAt    time.Time `json:"started_at"`
	Rows         int       `json:"rows"`
	TurbineCount int       `json:"turbine_count"`
	MastCount    int       `json:"mast_count"`
	// BestMasts lists the selected mast ID(s): one for single mode, two
	// for pair mode.
	BestMasts []string `json:"best_masts"`
	// BestScore is the mean adjusted RSS for single mode, or the pair
	// total for pair mode.
	BestScore float64 `json:"best_score"`
}

// WriteManifest writes the run manifest into the run directory.
func WriteManifest(dir string, m Manifest) error {
	if err := os.MkdirAll(dir, 0755); err != nil {
		return fmt.Errorf("create output directory: %w", err)
	}

	data, err := json.MarshalIndent(m, "", "  ")
	if err != nil {
		return fmt.Errorf("marshal run manifest: %w", err)
	}

	path := filepath.Join(dir, ManifestName)
	if err := os.WriteFile(path, append(data, '\n'), 0644); err != nil {
		return fmt.Errorf("write run manifest: %w", err)
	}
	return nil
}
