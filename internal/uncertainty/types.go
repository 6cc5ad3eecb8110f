package uncertainty

import (
	"fmt"
	"math"

	"mastplanner/internal/trix"
)

// Turbine is a deduplicated wind turbine generator position. Identity is
// the exact (X, Y, Z, RIX) tuple.
type Turbine struct {
	X   float64
	Y   float64
	Z   float64
	RIX float64
	ID  string
}

// Mast is a deduplicated meteorological mast (reference point). Identity
// is the exact (X, Y, Z, RIX) tuple.
type Mast struct {
	X   float64
	Y   float64
	Z   float64
	RIX float64
	ID  string
}

// identityKey keys entities on the raw bit patterns of their defining
// fields, so dedup is exact structural equality and NaN-valued fields
// still compare equal to themselves.
type identityKey [4]uint64

func keyOf(x, y, z, rix float64) identityKey {
	return identityKey{
		math.Float64bits(x),
		math.Float64bits(y),
		math.Float64bits(z),
		math.Float64bits(rix),
	}
}

// TurbineID formats a 1-based turbine identifier, e.g. WTG_01.
func TurbineID(n int) string {
	return fmt.Sprintf("WTG_%02d", n)
}

// MastID formats a 1-based mast identifier, e.g. Mast_01.
func MastID(n int) string {
	return fmt.Sprintf("Mast_%02d", n)
}

// EnrichedRow is a measurement row joined with its entity IDs and the
// derived adjusted-uncertainty values.
type EnrichedRow struct {
	trix.MeasurementRow

	TurbineID string
	MastID    string

	// AdjHorizUcHorizDist is the horizontal uncertainty component with
	// the distance adjustment applied.
	AdjHorizUcHorizDist float64
	// AdjSumHorizUc is the summed horizontal uncertainty.
	AdjSumHorizUc float64
	// AdjRSSUncertainty is the root-sum-square of the horizontal and
	// vertical uncertainty contributions.
	AdjRSSUncertainty float64
}

// GroupedMast is one mast with its adjusted RSS uncertainty averaged over
// every turbine measured against it.
type GroupedMast struct {
	Mast
	MeanAdjRSS   float64
	TurbineCount int
}

// Dataset is the full output of one aggregation pass.
type Dataset struct {
	Rows     []EnrichedRow
	Turbines []Turbine
	Masts    []Mast
	Grouped  []GroupedMast
}
