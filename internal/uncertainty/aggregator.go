// Package uncertainty derives the adjusted RSS uncertainty metric from raw
// TRIX measurement rows and produces the entity and summary tables used by
// the optimal-mast selector.
//
// The metric combines horizontal and vertical uncertainty contributions:
//
//	adjHoriz = horizUcHoriz + horizDistance/1000
//	adjSum   = adjHoriz + horizUcVert
//	adjRSS   = sqrt(adjSum² + vertUc²)
//
// A missing horizontal component is substituted with the worst case (100%)
// before the arithmetic, never with zero.
package uncertainty

import (
	"context"
	"fmt"
	"log/slog"
	"math"

	apperrors "mastplanner/internal/errors"
	"mastplanner/internal/trix"
)

// WorstCaseUc is the substitution for a missing horizontal uncertainty
// component, in percent.
const WorstCaseUc = 100.0

// Aggregator assigns entity identities and computes the adjusted
// uncertainty metric over a parsed measurement table.
type Aggregator struct {
	logger *slog.Logger
}

// NewAggregator creates a new uncertainty aggregator
func NewAggregator(logger *slog.Logger) *Aggregator {
	if logger == nil {
		logger = slog.Default()
	}
	return &Aggregator{logger: logger}
}

// Aggregate deduplicates turbines and masts, joins their IDs onto every
// row, computes the per-row adjusted RSS uncertainty and builds the
// grouped per-mast averages. The input is not mutated.
func (a *Aggregator) Aggregate(ctx context.Context, rows []trix.MeasurementRow) (*Dataset, error) {
	if len(rows) == 0 {
		return nil, apperrors.NewAggregationError(apperrors.CodeNoRows,
			"no measurement rows to aggregate")
	}

	turbines, turbineIDs := dedupTurbines(rows)
	masts, mastIDs := dedupMasts(rows)

	a.logger.InfoContext(ctx, "identified site entities",
		slog.Int("rows", len(rows)),
		slog.Int("turbines", len(turbines)),
		slog.Int("masts", len(masts)))

	enriched := make([]EnrichedRow, len(rows))
	for i, row := range rows {
		adjHoriz := defaultWorstCase(row.HorizUcHoriz) + row.HorizDistance/1000
		adjSum := adjHoriz + defaultWorstCase(row.HorizUcVert)
		adjRSS := math.Sqrt(adjSum*adjSum + row.VertUc*row.VertUc)

		enriched[i] = EnrichedRow{
			MeasurementRow:      row,
			TurbineID:           turbineIDs[keyOf(row.TurbineX, row.TurbineY, row.TurbineZ, row.TurbineRIX)],
			MastID:              mastIDs[keyOf(row.MastX, row.MastY, row.MastZ, row.MastRIX)],
			AdjHorizUcHorizDist: adjHoriz,
			AdjSumHorizUc:       adjSum,
			AdjRSSUncertainty:   adjRSS,
		}
	}

	grouped, err := groupByMast(enriched, masts)
	if err != nil {
		return nil, err
	}

	a.logger.InfoContext(ctx, "aggregation complete",
		slog.Int("enriched_rows", len(enriched)),
		slog.Int("mast_groups", len(grouped)))

	return &Dataset{
		Rows:     enriched,
		Turbines: turbines,
		Masts:    masts,
		Grouped:  grouped,
	}, nil
}

// defaultWorstCase substitutes the worst-case percentage for a missing
// uncertainty component.
func defaultWorstCase(v float64) float64 {
	if math.IsNaN(v) {
		return WorstCaseUc
	}
	return v
}

// dedupTurbines extracts unique turbines in first-seen order and assigns
// sequential IDs.
func dedupTurbines(rows []trix.MeasurementRow) ([]Turbine, map[identityKey]string) {
	var turbines []Turbine
	ids := make(map[identityKey]string)
	for _, row := range rows {
		key := keyOf(row.TurbineX, row.TurbineY, row.TurbineZ, row.TurbineRIX)
		if _, seen := ids[key]; seen {
			continue
		}
		id := TurbineID(len(turbines) + 1)
		ids[key] = id
		turbines = append(turbines, Turbine{
			X: row.TurbineX, Y: row.TurbineY, Z: row.TurbineZ, RIX: row.TurbineRIX,
			ID: id,
		})
	}
	return turbines, ids
}

// dedupMasts extracts unique masts in first-seen order and assigns
// sequential IDs.
func dedupMasts(rows []trix.MeasurementRow) ([]Mast, map[identityKey]string) {
	var masts []Mast
	ids := make(map[identityKey]string)
	for _, row := range rows {
		key := keyOf(row.MastX, row.MastY, row.MastZ, row.MastRIX)
		if _, seen := ids[key]; seen {
			continue
		}
		id := MastID(len(masts) + 1)
		ids[key] = id
		masts = append(masts, Mast{
			X: row.MastX, Y: row.MastY, Z: row.MastZ, RIX: row.MastRIX,
			ID: id,
		})
	}
	return masts, ids
}

// groupByMast averages the adjusted RSS uncertainty over all rows sharing
// a mast identity, preserving first-seen mast order.
func groupByMast(rows []EnrichedRow, masts []Mast) ([]GroupedMast, error) {
	sums := make(map[identityKey]float64, len(masts))
	counts := make(map[identityKey]int, len(masts))
	for _, row := range rows {
		key := keyOf(row.MastX, row.MastY, row.MastZ, row.MastRIX)
		sums[key] += row.AdjRSSUncertainty
		counts[key]++
	}

	grouped := make([]GroupedMast, 0, len(masts))
	for _, mast := range masts {
		key := keyOf(mast.X, mast.Y, mast.Z, mast.RIX)
		count := counts[key]
		if count == 0 {
			return nil, apperrors.NewAggregationError(apperrors.CodeEmptyGroup,
				fmt.Sprintf("mast group %s has no rows", mast.ID))
		}
		grouped = append(grouped, GroupedMast{
			Mast:         mast,
			MeanAdjRSS:   sums[key] / float64(count),
			TurbineCount: count,
		})
	}
	return grouped, nil
}
