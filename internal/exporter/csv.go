package exporter

import (
	"encoding/csv"
	"fmt"
	"log/slog"
	"os"
	"path/filepath"
	"strconv"

	"mastplanner/internal/selector"
	"mastplanner/internal/uncertainty"
)

// Result table file names, kept compatible with the original planner's
// output layout.
const (
	FileEnrichedRows = "mast_points_data_full.csv"
	FileTurbines     = "turbines_locations.csv"
	FileMasts        = "met_masts_locations.csv"
	FileGroupedMasts = "mast_points_data.csv"
	FileSingleResult = "optimal_single_mast.csv"
	FileBestPair     = "optimal_pair.csv"
	FileAllPairs     = "optimal_pair_all_pairs.csv"
)

// CSVWriter writes the result tables as CSV files into a run directory.
type CSVWriter struct {
	dir    string
	logger *slog.Logger
}

// NewCSVWriter creates a CSV writer targeting the given directory
func NewCSVWriter(dir string, logger *slog.Logger) *CSVWriter {
	if logger == nil {
		logger = slog.Default()
	}
	return &CSVWriter{dir: dir, logger: logger}
}

// WriteDataset writes the four aggregation tables: enriched rows, unique
// turbines, unique masts and grouped mast averages.
func (w *CSVWriter) WriteDataset(ds *uncertainty.Dataset) error {
	if err := w.writeTable(FileEnrichedRows, enrichedHeader, enrichedRecords(ds.Rows)); err != nil {
		return err
	}
	if err := w.writeTable(FileTurbines, turbineHeader, turbineRecords(ds.Turbines)); err != nil {
		return err
	}
	if err := w.writeTable(FileMasts, mastHeader, mastRecords(ds.Masts)); err != nil {
		return err
	}
	return w.writeTable(FileGroupedMasts, groupedHeader, groupedRecords(ds.Grouped))
}

// WriteSingleSelection writes the optimal single-mast row.
func (w *CSVWriter) WriteSingleSelection(best uncertainty.GroupedMast) error {
	return w.writeTable(FileSingleResult, groupedHeader, groupedRecords([]uncertainty.GroupedMast{best}))
}

// WritePairSelection writes the best pair and the full ranked pair list.
func (w *CSVWriter) WritePairSelection(result *selector.PairResult) error {
	// The best-pair file carries one row per mast of the pair; the
	// pair_total_rss column holds the per-turbine average, matching the
	// original shapefile attribute.
	bestHeader := []string{"mast_id", "x", "y", "z", "pair_total_rss"}
	bestRecords := [][]string{
		pairMastRecord(result.Best.Mast1, result.Best.AvgRSS),
		pairMastRecord(result.Best.Mast2, result.Best.AvgRSS),
	}
	if err := w.writeTable(FileBestPair, bestHeader, bestRecords); err != nil {
		return err
	}

	allHeader := []string{"mast_id_1", "mast_id_2", "total_rss", "avg_rss", "is_best"}
	allRecords := make([][]string, 0, len(result.AllPairs))
	for _, p := range result.AllPairs {
		allRecords = append(allRecords, []string{
			p.Mast1.ID,
			p.Mast2.ID,
			formatFloat(p.TotalRSS),
			formatFloat(p.AvgRSS),
			strconv.FormatBool(p.IsBest),
		})
	}
	return w.writeTable(FileAllPairs, allHeader, allRecords)
}

// writeTable writes one CSV file with a header row and records.
func (w *CSVWriter) writeTable(name string, header []string, records [][]string) error {
	if err := os.MkdirAll(w.dir, 0755); err != nil {
		return fmt.Errorf("create output directory: %w", err)
	}

	path := filepath.Join(w.dir, name)
	file, err := os.Create(path)
	if err != nil {
		return fmt.Errorf("create %s: %w", name, err)
	}
	defer file.Close()

	writer := csv.NewWriter(file)
	defer writer.Flush()

	if err := writer.Write(header); err != nil {
		return fmt.Errorf("write %s header: %w", name, err)
	}
	for i, record := range records {
		if err := writer.Write(record); err != nil {
			return fmt.Errorf("write %s record %d: %w", name, i, err)
		}
	}

	w.logger.Info("wrote CSV table",
		slog.String("path", path),
		slog.Int("records", len(records)))

	return writer.Error()
}

var enrichedHeader = []string{
	"WTG X [m]", "WTG Y [m]", "WTG Z [m]", "WTG RIX [%]",
	"Reference Point X [m]", "Reference Point Y [m]", "Reference Point Z [m]", "Reference RIX [%]",
	"Horizontal Distance [m]",
	"Horiz. Uc increase due to horiz. distance [%]",
	"Horiz. Uc increase due to vert. distance [%]",
	"Vertical uncertainty increase [%]",
	"turbine_id", "mast_id",
	"adj_horiz_uc_horiz_dist", "adj_sum_horiz_uc", "adj_RSS_uncertainty",
}

func enrichedRecords(rows []uncertainty.EnrichedRow) [][]string {
	records := make([][]string, 0, len(rows))
	for _, r := range rows {
		records = append(records, []string{
			formatFloat(r.TurbineX), formatFloat(r.TurbineY), formatFloat(r.TurbineZ), formatFloat(r.TurbineRIX),
			formatFloat(r.MastX), formatFloat(r.MastY), formatFloat(r.MastZ), formatFloat(r.MastRIX),
			formatFloat(r.HorizDistance),
			formatFloat(r.HorizUcHoriz),
			formatFloat(r.HorizUcVert),
			formatFloat(r.VertUc),
			r.TurbineID, r.MastID,
			formatFloat(r.AdjHorizUcHorizDist),
			formatFloat(r.AdjSumHorizUc),
			formatFloat(r.AdjRSSUncertainty),
		})
	}
	return records
}

var turbineHeader = []string{
	"WTG X [m]", "WTG Y [m]", "WTG Z [m]", "WTG RIX [%]", "turbine_id",
}

func turbineRecords(turbines []uncertainty.Turbine) [][]string {
	records := make([][]string, 0, len(turbines))
	for _, t := range turbines {
		records = append(records, []string{
			formatFloat(t.X), formatFloat(t.Y), formatFloat(t.Z), formatFloat(t.RIX), t.ID,
		})
	}
	return records
}

var mastHeader = []string{
	"Reference Point X [m]", "Reference Point Y [m]", "Reference Point Z [m]", "Reference RIX [%]", "mast_id",
}

func mastRecords(masts []uncertainty.Mast) [][]string {
	records := make([][]string, 0, len(masts))
	for _, m := range masts {
		records = append(records, []string{
			formatFloat(m.X), formatFloat(m.Y), formatFloat(m.Z), formatFloat(m.RIX), m.ID,
		})
	}
	return records
}

var groupedHeader = []string{
	"Reference Point X [m]", "Reference Point Y [m]", "Reference Point Z [m]", "Reference RIX [%]", "mast_id",
	"adj_RSS_uncertainty",
}

func groupedRecords(grouped []uncertainty.GroupedMast) [][]string {
	records := make([][]string, 0, len(grouped))
	for _, g := range grouped {
		records = append(records, []string{
			formatFloat(g.X), formatFloat(g.Y), formatFloat(g.Z), formatFloat(g.RIX), g.ID,
			formatFloat(g.MeanAdjRSS),
		})
	}
	return records
}

func pairMastRecord(m uncertainty.Mast, avgRSS float64) []string {
	return []string{m.ID, formatFloat(m.X), formatFloat(m.Y), formatFloat(m.Z), formatFloat(avgRSS)}
}

// formatFloat renders a float with the shortest exact representation, so
// re-running on identical input reproduces identical output bytes.
func formatFloat(v float64) string {
	return strconv.FormatFloat(v, 'g', -1, 64)
}
