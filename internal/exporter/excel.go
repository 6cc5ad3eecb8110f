package exporter

import (
	"fmt"
	"log/slog"
	"os"
	"path/filepath"

	"github.com/xuri/excelize/v2"

	"mastplanner/internal/selector"
	"mastplanner/internal/uncertainty"
)

// WorkbookName is the consolidated Excel results file.
const WorkbookName = "met_mast_results.xlsx"

// Workbook sheet names.
const (
	SheetEnriched   = "Enriched Data"
	SheetTurbines   = "Turbines"
	SheetMasts      = "Masts"
	SheetGrouped    = "Mast Averages"
	SheetBestSingle = "Best Single"
	SheetPairs      = "Mast Pairs"
)

// ExcelWriter writes all result tables into one workbook for review.
type ExcelWriter struct {
	dir    string
	logger *slog.Logger
}

// NewExcelWriter creates an Excel writer targeting the given directory
func NewExcelWriter(dir string, logger *slog.Logger) *ExcelWriter {
	if logger == nil {
		logger = slog.Default()
	}
	return &ExcelWriter{dir: dir, logger: logger}
}

// WriteWorkbook writes the dataset sheets plus the selection sheet for the
// mode that ran. Exactly one of best / pairResult is set by the caller.
func (w *ExcelWriter) WriteWorkbook(ds *uncertainty.Dataset, best *uncertainty.GroupedMast, pairResult *selector.PairResult) error {
	f := excelize.NewFile()
	defer f.Close()

	if err := writeSheet(f, SheetEnriched, enrichedHeader, enrichedRecords(ds.Rows)); err != nil {
		return err
	}
	if err := writeSheet(f, SheetTurbines, turbineHeader, turbineRecords(ds.Turbines)); err != nil {
		return err
	}
	if err := writeSheet(f, SheetMasts, mastHeader, mastRecords(ds.Masts)); err != nil {
		return err
	}
	if err := writeSheet(f, SheetGrouped, groupedHeader, groupedRecords(ds.Grouped)); err != nil {
		return err
	}

	if best != nil {
		if err := writeSheet(f, SheetBestSingle, groupedHeader, groupedRecords([]uncertainty.GroupedMast{*best})); err != nil {
			return err
		}
	}
	if pairResult != nil {
		header := []string{"mast_id_1", "mast_id_2", "total_rss", "avg_rss", "is_best"}
		records := make([][]string, 0, len(pairResult.AllPairs))
		for _, p := range pairResult.AllPairs {
			records = append(records, []string{
				p.Mast1.ID, p.Mast2.ID,
				formatFloat(p.TotalRSS), formatFloat(p.AvgRSS),
				fmt.Sprintf("%t", p.IsBest),
			})
		}
		if err := writeSheet(f, SheetPairs, header, records); err != nil {
			return err
		}
	}

	// Drop the default sheet left over from NewFile.
	if err := f.DeleteSheet("Sheet1"); err != nil {
		return fmt.Errorf("delete default sheet: %w", err)
	}

	if err := os.MkdirAll(w.dir, 0755); err != nil {
		return fmt.Errorf("create output directory: %w", err)
	}
	path := filepath.Join(w.dir, WorkbookName)
	if err := f.SaveAs(path); err != nil {
		return fmt.Errorf("save workbook: %w", err)
	}

	w.logger.Info("wrote results workbook", slog.String("path", path))
	return nil
}

// writeSheet creates a sheet and fills it row by row.
func writeSheet(f *excelize.File, name string, header []string, records [][]string) error {
	if _, err := f.NewSheet(name); err != nil {
		return fmt.Errorf("create sheet %s: %w", name, err)
	}

	if err := setRow(f, name, 1, header); err != nil {
		return err
	}
	for i, record := range records {
		if err := setRow(f, name, i+2, record); err != nil {
			return err
		}
	}
	return nil
}

func setRow(f *excelize.File, sheet string, rowNum int, values []string) error {
	cell, err := excelize.CoordinatesToCellName(1, rowNum)
	if err != nil {
		return fmt.Errorf("cell name for row %d: %w", rowNum, err)
	}
	row := make([]interface{}, len(values))
	for i, v := range values {
		row[i] = v
	}
	if err := f.SetSheetRow(sheet, cell, &row); err != nil {
		return fmt.Errorf("write row %d of %s: %w", rowNum, sheet, err)
	}
	return nil
}
