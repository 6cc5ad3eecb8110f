// Package selector finds the mast or pair of masts that minimizes the
// aggregate assessment uncertainty across all turbines.
//
// Single mode is a minimum lookup over the grouped per-mast averages. Pair
// mode is an exhaustive scan of all unordered mast pairs over a dense
// turbine-by-mast matrix: for each pair the per-turbine minimum of the two
// masts' adjusted RSS values is summed, and the pair with the smallest sum
// wins. The matrix is small (tens of masts) so O(M²·T) is fine and no
// pruning is used.
package selector

import (
	"context"
	"fmt"
	"log/slog"
	"math"

	apperrors "mastplanner/internal/errors"
	"mastplanner/internal/uncertainty"
)

// Mode selects the optimal-mast strategy.
type Mode int

const (
	// ModeSingle selects the one mast with the lowest mean uncertainty.
	ModeSingle Mode = iota
	// ModePair selects the pair of masts minimizing the summed
	// per-turbine best uncertainty.
	ModePair
)

// String returns the mode name
func (m Mode) String() string {
	switch m {
	case ModeSingle:
		return "single"
	case ModePair:
		return "pair"
	default:
		return "unknown"
	}
}

// ParseMode converts a mode name to a Mode.
func ParseMode(s string) (Mode, error) {
	switch s {
	case "single":
		return ModeSingle, nil
	case "pair":
		return ModePair, nil
	default:
		return 0, fmt.Errorf("unknown selection mode %q (want single or pair)", s)
	}
}

// PairCandidate is one unordered pair of distinct masts with its
// aggregate score. Exactly one candidate per run carries IsBest.
type PairCandidate struct {
	Mast1 uncertainty.Mast
	Mast2 uncertainty.Mast
	// TotalRSS is the sum over turbines of the smaller of the two
	// masts' adjusted RSS values; turbines with no defined value
	// against either mast contribute nothing.
	TotalRSS float64
	// AvgRSS is TotalRSS divided by the total turbine count.
	AvgRSS float64
	IsBest bool
}

// PairResult holds the winning pair and the complete candidate list in
// iteration order, for audit and export.
type PairResult struct {
	Best     PairCandidate
	AllPairs []PairCandidate
}

// Selector picks optimal masts from an aggregated dataset.
type Selector struct {
	logger *slog.Logger
}

// NewSelector creates a new selector
func NewSelector(logger *slog.Logger) *Selector {
	if logger == nil {
		logger = slog.Default()
	}
	return &Selector{logger: logger}
}

// SelectSingle returns the grouped mast row with the minimum mean adjusted
// RSS uncertainty. Ties break to the first row in table order.
func (s *Selector) SelectSingle(ctx context.Context, grouped []uncertainty.GroupedMast) (uncertainty.GroupedMast, error) {
	if len(grouped) == 0 {
		return uncertainty.GroupedMast{}, apperrors.NewSelectionError(apperrors.CodeNoMasts,
			"grouped mast table is empty")
	}

	best := grouped[0]
	for _, g := range grouped[1:] {
		if g.MeanAdjRSS < best.MeanAdjRSS {
			best = g
		}
	}

	s.logger.InfoContext(ctx, "selected optimal single mast",
		slog.String("mast_id", best.ID),
		slog.Float64("mean_adj_rss", best.MeanAdjRSS))

	return best, nil
}

// SelectPair exhaustively scores every unordered pair of distinct masts
// and returns the best pair plus the full candidate list. A (turbine,
// mast) combination absent from the source data is undefined and is
// excluded from both the per-turbine minimum and the pair total.
func (s *Selector) SelectPair(ctx context.Context, ds *uncertainty.Dataset) (*PairResult, error) {
	if len(ds.Masts) < 2 {
		return nil, apperrors.NewSelectionError(apperrors.CodeTooFewMasts,
			fmt.Sprintf("pair selection requires at least 2 masts, got %d", len(ds.Masts)))
	}
	if len(ds.Turbines) == 0 {
		return nil, apperrors.NewSelectionError(apperrors.CodeNoTurbines,
			"dataset has no turbines")
	}

	matrix := buildMatrix(ds)
	turbineCount := float64(len(ds.Turbines))

	var pairs []PairCandidate
	bestIdx := 0
	bestTotal := math.Inf(1)

	for i := 0; i < len(ds.Masts); i++ {
		for j := i + 1; j < len(ds.Masts); j++ {
			total := 0.0
			for t := range ds.Turbines {
				if v, ok := pairMin(matrix[t][i], matrix[t][j]); ok {
					total += v
				}
			}
			pairs = append(pairs, PairCandidate{
				Mast1:    ds.Masts[i],
				Mast2:    ds.Masts[j],
				TotalRSS: total,
				AvgRSS:   total / turbineCount,
			})
			if total < bestTotal {
				bestTotal = total
				bestIdx = len(pairs) - 1
			}
		}
	}

	pairs[bestIdx].IsBest = true
	best := pairs[bestIdx]

	s.logger.InfoContext(ctx, "selected optimal mast pair",
		slog.String("mast_id_1", best.Mast1.ID),
		slog.String("mast_id_2", best.Mast2.ID),
		slog.Float64("total_rss", best.TotalRSS),
		slog.Float64("avg_rss", best.AvgRSS),
		slog.Int("pairs_evaluated", len(pairs)))

	return &PairResult{Best: best, AllPairs: pairs}, nil
}

// buildMatrix lays the enriched rows out as a dense turbine-by-mast matrix
// of adjusted RSS values. Unmeasured cells stay NaN.
func buildMatrix(ds *uncertainty.Dataset) [][]float64 {
	turbineIdx := make(map[string]int, len(ds.Turbines))
	for i, t := range ds.Turbines {
		turbineIdx[t.ID] = i
	}
	mastIdx := make(map[string]int, len(ds.Masts))
	for i, m := range ds.Masts {
		mastIdx[m.ID] = i
	}

	matrix := make([][]float64, len(ds.Turbines))
	for i := range matrix {
		row := make([]float64, len(ds.Masts))
		for j := range row {
			row[j] = math.NaN()
		}
		matrix[i] = row
	}

	for _, row := range ds.Rows {
		matrix[turbineIdx[row.TurbineID]][mastIdx[row.MastID]] = row.AdjRSSUncertainty
	}
	return matrix
}

// pairMin returns the smaller defined value of the two cells. The second
// result is false when neither cell is defined.
func pairMin(a, b float64) (float64, bool) {
	switch {
	case math.IsNaN(a) && math.IsNaN(b):
		return 0, false
	case math.IsNaN(a):
		return b, true
	case math.IsNaN(b):
		return a, true
	case a < b:
		return a, true
	default:
		return b, true
	}
}
