package trix

import "math"

// TRIX column names, matched exactly after trimming surrounding whitespace.
const (
	ColTurbineX   = "WTG X [m]"
	ColTurbineY   = "WTG Y [m]"
	ColTurbineZ   = "WTG Z [m]"
	ColTurbineRIX = "WTG RIX [%]"

	ColMastX   = "Reference Point X [m]"
	ColMastY   = "Reference Point Y [m]"
	ColMastZ   = "Reference Point Z [m]"
	ColMastRIX = "Reference RIX [%]"

	ColHorizDistance = "Horizontal Distance [m]"
	ColHorizUcHoriz  = "Horiz. Uc increase due to horiz. distance [%]"
	ColHorizUcVert   = "Horiz. Uc increase due to vert. distance [%]"
	ColVertUc        = "Vertical uncertainty increase [%]"
)

// RequiredColumns lists every column a TRIX file must provide.
var RequiredColumns = []string{
	ColTurbineX, ColTurbineY, ColTurbineZ, ColTurbineRIX,
	ColMastX, ColMastY, ColMastZ, ColMastRIX,
	ColHorizDistance, ColHorizUcHoriz, ColHorizUcVert, ColVertUc,
}

// MeasurementRow is one raw TRIX record: a turbine position measured
// against a reference (mast) position with the associated uncertainty
// contributions. Missing numeric values are NaN, never zero.
type MeasurementRow struct {
	TurbineX   float64
	TurbineY   float64
	TurbineZ   float64
	TurbineRIX float64

	MastX   float64
	MastY   float64
	MastZ   float64
	MastRIX float64

	HorizDistance float64
	HorizUcHoriz  float64
	HorizUcVert   float64
	VertUc        float64
}

// HasMissingHorizUc reports whether either horizontal uncertainty
// component is missing and will be defaulted during aggregation.
func (r MeasurementRow) HasMissingHorizUc() bool {
	return math.IsNaN(r.HorizUcHoriz) || math.IsNaN(r.HorizUcVert)
}

// Table is the parsed TRIX dataset: the measurement rows and the trimmed
// column names in file order.
type Table struct {
	Rows    []MeasurementRow
	Columns []string
}
