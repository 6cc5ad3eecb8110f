package trix

import (
	"math"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	apperrors "mastplanner/internal/errors"
)

// sampleTRIX builds a minimal TRIX file body. Header names are padded with
// spaces to exercise trimming, and the file carries metadata lines before
// the header plus a trailing annotation block.
func sampleTRIX(dataRows []string) string {
	header := strings.Join([]string{
		" WTG X [m] ", "WTG Y [m]", "WTG Z [m]", " WTG RIX [%]",
		"Reference Point X [m]", "Reference Point Y [m]", "Reference Point Z [m]", "Reference RIX [%] ",
		"Horizontal Distance [m]",
		"Horiz. Uc increase due to horiz. distance [%]",
		"Horiz. Uc increase due to vert. distance [%]",
		"Vertical uncertainty increase [%]",
	}, "\t")

	var b strings.Builder
	b.WriteString("Site assessment export\n")
	b.WriteString("Project: Test Ridge\n")
	b.WriteString(header + "\n")
	for _, row := range dataRows {
		b.WriteString(row + "\n")
	}
	b.WriteString("Assumptions:\n")
	b.WriteString("* uncertainty values are indicative only\n")
	return b.String()
}

func row(fields ...string) string {
	return strings.Join(fields, "\t")
}

func TestParseReader_BasicFile(t *testing.T) {
	content := sampleTRIX([]string{
		row("1000", "2000", "150", "5.2", "900", "1900", "140", "4.1", "500", "1.5", "2.0", "3.0"),
		row("1100", "2100", "155", "6.0", "900", "1900", "140", "4.1", "650", "1.8", "2.2", "3.1"),
	})

	parser := NewParser(nil)
	table, err := parser.ParseReader(strings.NewReader(content), "test.txt")
	require.NoError(t, err)
	require.Len(t, table.Rows, 2)

	first := table.Rows[0]
	assert.Equal(t, 1000.0, first.TurbineX)
	assert.Equal(t, 2000.0, first.TurbineY)
	assert.Equal(t, 150.0, first.TurbineZ)
	assert.Equal(t, 5.2, first.TurbineRIX)
	assert.Equal(t, 900.0, first.MastX)
	assert.Equal(t, 4.1, first.MastRIX)
	assert.Equal(t, 500.0, first.HorizDistance)
	assert.Equal(t, 1.5, first.HorizUcHoriz)
	assert.Equal(t, 2.0, first.HorizUcVert)
	assert.Equal(t, 3.0, first.VertUc)
	assert.False(t, first.HasMissingHorizUc())
}

func TestParseReader_TrimsColumnNames(t *testing.T) {
	content := sampleTRIX([]string{
		row("1", "2", "3", "4", "5", "6", "7", "8", "9", "10", "11", "12"),
	})

	parser := NewParser(nil)
	table, err := parser.ParseReader(strings.NewReader(content), "test.txt")
	require.NoError(t, err)

	assert.Contains(t, table.Columns, "WTG X [m]")
	assert.Contains(t, table.Columns, "Reference RIX [%]")
	for _, col := range table.Columns {
		assert.Equal(t, strings.TrimSpace(col), col)
	}
}

func TestParseReader_MissingValuesBecomeNaN(t *testing.T) {
	content := sampleTRIX([]string{
		row("1000", "2000", "150", "5.2", "900", "1900", "140", "4.1", "500", "", "n/a", "3.0"),
	})

	parser := NewParser(nil)
	table, err := parser.ParseReader(strings.NewReader(content), "test.txt")
	require.NoError(t, err)
	require.Len(t, table.Rows, 1)

	r := table.Rows[0]
	assert.True(t, math.IsNaN(r.HorizUcHoriz), "empty cell must coerce to NaN, not zero")
	assert.True(t, math.IsNaN(r.HorizUcVert), "non-numeric cell must coerce to NaN, not zero")
	assert.Equal(t, 3.0, r.VertUc)
	assert.True(t, r.HasMissingHorizUc())
}

func TestParseReader_ThousandsSeparators(t *testing.T) {
	content := sampleTRIX([]string{
		row("401,250", "6,100,500", "150", "5.2", "900", "1900", "140", "4.1", "1,500", "1.5", "2.0", "3.0"),
	})

	parser := NewParser(nil)
	table, err := parser.ParseReader(strings.NewReader(content), "test.txt")
	require.NoError(t, err)

	assert.Equal(t, 401250.0, table.Rows[0].TurbineX)
	assert.Equal(t, 6100500.0, table.Rows[0].TurbineY)
	assert.Equal(t, 1500.0, table.Rows[0].HorizDistance)
}

func TestParseReader_StopsAtAnnotationMarkers(t *testing.T) {
	tests := []struct {
		name   string
		marker string
	}{
		{"assumptions marker", "Assumptions: terrain model v2"},
		{"asterisk marker", "* see notes"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			var b strings.Builder
			b.WriteString(sampleTRIX([]string{
				row("1", "2", "3", "4", "5", "6", "7", "8", "9", "10", "11", "12"),
			}))
			// Replace the default footer with rows after the marker that
			// would parse as data if the marker were ignored.
			content := strings.Split(b.String(), "Assumptions:")[0]
			content += tt.marker + "\n"
			content += row("99", "99", "99", "99", "99", "99", "99", "99", "99", "99", "99", "99") + "\n"

			parser := NewParser(nil)
			table, err := parser.ParseReader(strings.NewReader(content), "test.txt")
			require.NoError(t, err)
			assert.Len(t, table.Rows, 1, "rows after the marker must be ignored")
		})
	}
}

func TestParseReader_NoDataRows(t *testing.T) {
	content := sampleTRIX(nil)

	parser := NewParser(nil)
	_, err := parser.ParseReader(strings.NewReader(content), "test.txt")
	require.Error(t, err)
	assert.True(t, apperrors.IsParseError(err))

	var pe *apperrors.ParseError
	require.ErrorAs(t, err, &pe)
	assert.Equal(t, apperrors.CodeNoData, pe.Code)
}

func TestParseReader_MissingRequiredColumn(t *testing.T) {
	// Header missing the vertical uncertainty column.
	header := strings.Join([]string{
		"WTG X [m]", "WTG Y [m]", "WTG Z [m]", "WTG RIX [%]",
		"Reference Point X [m]", "Reference Point Y [m]", "Reference Point Z [m]", "Reference RIX [%]",
		"Horizontal Distance [m]",
		"Horiz. Uc increase due to horiz. distance [%]",
		"Horiz. Uc increase due to vert. distance [%]",
	}, "\t")
	content := header + "\n" + row("1", "2", "3", "4", "5", "6", "7", "8", "9", "10", "11") + "\n"

	parser := NewParser(nil)
	_, err := parser.ParseReader(strings.NewReader(content), "test.txt")
	require.Error(t, err)

	var pe *apperrors.ParseError
	require.ErrorAs(t, err, &pe)
	assert.Equal(t, apperrors.CodeMissingColumn, pe.Code)
	assert.Contains(t, pe.Message, "Vertical uncertainty increase [%]")
}

func TestParseReader_EmptyFile(t *testing.T) {
	parser := NewParser(nil)
	_, err := parser.ParseReader(strings.NewReader(""), "empty.txt")
	require.Error(t, err)
	assert.True(t, apperrors.IsParseError(err))
}

func TestParseReader_SkipsBlankRows(t *testing.T) {
	content := sampleTRIX([]string{
		row("1", "2", "3", "4", "5", "6", "7", "8", "9", "10", "11", "12"),
		row("", "", "", "", "", "", "", "", "", "", "", ""),
		row("2", "3", "4", "5", "6", "7", "8", "9", "10", "11", "12", "13"),
	})

	parser := NewParser(nil)
	table, err := parser.ParseReader(strings.NewReader(content), "test.txt")
	require.NoError(t, err)
	assert.Len(t, table.Rows, 2)
}

func TestParse_File(t *testing.T) {
	path := filepath.Join(t.TempDir(), "site.txt")
	content := sampleTRIX([]string{
		row("1000", "2000", "150", "5.2", "900", "1900", "140", "4.1", "500", "1.5", "2.0", "3.0"),
	})
	require.NoError(t, os.WriteFile(path, []byte(content), 0644))

	parser := NewParser(nil)
	table, err := parser.Parse(path)
	require.NoError(t, err)
	assert.Len(t, table.Rows, 1)
}

func TestParse_FileNotFound(t *testing.T) {
	parser := NewParser(nil)
	_, err := parser.Parse(filepath.Join(t.TempDir(), "missing.txt"))
	require.Error(t, err)

	var pe *apperrors.ParseError
	require.ErrorAs(t, err, &pe)
	assert.Equal(t, apperrors.CodeFileOpen, pe.Code)
}
