// Package trix reads TRIX measurement files: tab-delimited UTF-8 text with
// optional metadata lines, one header line, data rows, and a trailing
// annotation block introduced by "Assumptions:" or "*".
package trix

import (
	"bufio"
	"encoding/csv"
	"fmt"
	"io"
	"log/slog"
	"math"
	"os"
	"strconv"
	"strings"

	apperrors "mastplanner/internal/errors"
)

// Parser reads TRIX measurement files into typed rows.
type Parser struct {
	logger *slog.Logger
}

// NewParser creates a new TRIX parser
func NewParser(logger *slog.Logger) *Parser {
	if logger == nil {
		logger = slog.Default()
	}
	return &Parser{logger: logger}
}

// Parse reads the TRIX file at path and returns the measurement table.
func (p *Parser) Parse(path string) (*Table, error) {
	file, err := os.Open(path)
	if err != nil {
		return nil, apperrors.NewParseErrorWrap(apperrors.CodeFileOpen,
			fmt.Sprintf("open TRIX file %s", path), err)
	}
	defer file.Close()

	return p.ParseReader(file, path)
}

// ParseReader reads TRIX content from r. The name is used for logging only.
func (p *Parser) ParseReader(r io.Reader, name string) (*Table, error) {
	lines, err := readDataSection(r)
	if err != nil {
		return nil, apperrors.NewParseErrorWrap(apperrors.CodeFileOpen,
			fmt.Sprintf("read TRIX file %s", name), err)
	}

	p.logger.Debug("read TRIX data section",
		slog.String("file", name),
		slog.Int("lines", len(lines)))

	records, err := decodeTabDelimited(lines)
	if err != nil {
		return nil, apperrors.NewParseErrorWrap(apperrors.CodeNoHeader,
			fmt.Sprintf("decode TRIX file %s", name), err)
	}

	headerIdx, columnMap, columns, missing := findHeader(records)
	if headerIdx < 0 {
		if len(missing) > 0 && len(missing) < len(RequiredColumns) {
			return nil, apperrors.NewParseError(apperrors.CodeMissingColumn,
				fmt.Sprintf("missing required columns in %s: %s", name, strings.Join(missing, ", ")))
		}
		return nil, apperrors.NewParseError(apperrors.CodeNoHeader,
			fmt.Sprintf("no header row found in %s", name))
	}

	rows := make([]MeasurementRow, 0, len(records)-headerIdx-1)
	for i := headerIdx + 1; i < len(records); i++ {
		record := records[i]
		if isEmptyRecord(record) {
			continue
		}
		rows = append(rows, parseRow(record, columnMap))
	}

	if len(rows) == 0 {
		return nil, apperrors.NewParseError(apperrors.CodeNoData,
			fmt.Sprintf("no data rows before annotation block in %s", name))
	}

	p.logger.Info("parsed TRIX file",
		slog.String("file", name),
		slog.Int("rows", len(rows)),
		slog.Int("columns", len(columns)))

	return &Table{Rows: rows, Columns: columns}, nil
}

// readDataSection collects lines until EOF or a trailing-annotation marker.
func readDataSection(r io.Reader) ([]string, error) {
	scanner := bufio.NewScanner(r)
	scanner.Buffer(make([]byte, 0, 64*1024), 1024*1024)

	var lines []string
	for scanner.Scan() {
		line := scanner.Text()
		if strings.HasPrefix(line, "Assumptions:") || strings.HasPrefix(line, "*") {
			break
		}
		lines = append(lines, line)
	}
	return lines, scanner.Err()
}

// decodeTabDelimited decodes the data section with tab as field separator.
func decodeTabDelimited(lines []string) ([][]string, error) {
	reader := csv.NewReader(strings.NewReader(strings.Join(lines, "\n")))
	reader.Comma = '\t'
	reader.FieldsPerRecord = -1
	reader.LazyQuotes = true
	return reader.ReadAll()
}

// findHeader locates the column-header record: the first record that
// provides every required column name after trimming. When no record
// qualifies, the missing list of the closest candidate is returned so the
// caller can report which columns the file lacks.
func findHeader(records [][]string) (int, map[string]int, []string, []string) {
	bestMissing := RequiredColumns
	for i, record := range records {
		columnMap := make(map[string]int, len(RequiredColumns))
		columns := make([]string, len(record))
		for j, name := range record {
			trimmed := strings.TrimSpace(name)
			columns[j] = trimmed
			if _, ok := columnMap[trimmed]; !ok {
				columnMap[trimmed] = j
			}
		}
		missing := missingColumns(columnMap)
		if len(missing) == 0 {
			return i, columnMap, columns, nil
		}
		if len(missing) < len(bestMissing) {
			bestMissing = missing
		}
	}
	return -1, nil, nil, bestMissing
}

// missingColumns returns the required columns absent from the map.
func missingColumns(columnMap map[string]int) []string {
	var missing []string
	for _, col := range RequiredColumns {
		if _, ok := columnMap[col]; !ok {
			missing = append(missing, col)
		}
	}
	return missing
}

// isEmptyRecord reports whether every field is blank after trimming.
func isEmptyRecord(record []string) bool {
	for _, field := range record {
		if strings.TrimSpace(field) != "" {
			return false
		}
	}
	return true
}

// parseRow converts one record into a MeasurementRow using the column map.
func parseRow(record []string, columnMap map[string]int) MeasurementRow {
	field := func(col string) float64 {
		idx, ok := columnMap[col]
		if !ok || idx >= len(record) {
			return math.NaN()
		}
		return coerceFloat(record[idx])
	}

	return MeasurementRow{
		TurbineX:      field(ColTurbineX),
		TurbineY:      field(ColTurbineY),
		TurbineZ:      field(ColTurbineZ),
		TurbineRIX:    field(ColTurbineRIX),
		MastX:         field(ColMastX),
		MastY:         field(ColMastY),
		MastZ:         field(ColMastZ),
		MastRIX:       field(ColMastRIX),
		HorizDistance: field(ColHorizDistance),
		HorizUcHoriz:  field(ColHorizUcHoriz),
		HorizUcVert:   field(ColHorizUcVert),
		VertUc:        field(ColVertUc),
	}
}

// coerceFloat parses a numeric cell. Values that fail to parse become NaN
// (missing), never zero: the aggregation stage substitutes the documented
// worst case for missing uncertainty inputs.
func coerceFloat(s string) float64 {
	s = strings.ReplaceAll(strings.TrimSpace(s), ",", "")
	if s == "" {
		return math.NaN()
	}
	v, err := strconv.ParseFloat(s, 64)
	if err != nil {
		return math.NaN()
	}
	return v
}
